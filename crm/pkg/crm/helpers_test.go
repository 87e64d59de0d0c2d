package crm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"crmbridge/tools/logger"
)

type journalEntry struct {
	category logger.Category
	message  string
}

type fakeJournal struct {
	mu      sync.Mutex
	entries []journalEntry
}

func (f *fakeJournal) Logf(category logger.Category, format string, args ...interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, journalEntry{category: category, message: fmt.Sprintf(format, args...)})
}

func (f *fakeJournal) count(category logger.Category) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.entries {
		if e.category == category {
			n++
		}
	}
	return n
}

func (f *fakeJournal) messages(category logger.Category) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, e := range f.entries {
		if e.category == category {
			out = append(out, e.message)
		}
	}
	return out
}

type reply struct {
	status int
	body   string
}

type capturedRequest struct {
	path string
	form url.Values
}

// scriptedServer 依次返回 replies，用完后重复最后一个
type scriptedServer struct {
	*httptest.Server
	mu       sync.Mutex
	replies  []reply
	requests []capturedRequest
}

func newScriptedServer(t *testing.T, replies ...reply) *scriptedServer {
	t.Helper()
	s := &scriptedServer{replies: replies}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		form, _ := url.ParseQuery(string(body))

		s.mu.Lock()
		idx := len(s.requests)
		s.requests = append(s.requests, capturedRequest{path: r.URL.Path, form: form})
		if idx >= len(s.replies) {
			idx = len(s.replies) - 1
		}
		rep := s.replies[idx]
		s.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(rep.status)
		_, _ = w.Write([]byte(rep.body))
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *scriptedServer) calls() []capturedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]capturedRequest(nil), s.requests...)
}

type waitCounter struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (w *waitCounter) wait(ctx context.Context, d time.Duration) error {
	w.mu.Lock()
	w.waits = append(w.waits, d)
	w.mu.Unlock()
	return ctx.Err()
}

func (w *waitCounter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.waits)
}

func newTestClient(t *testing.T, srv *scriptedServer) (*Client, *fakeJournal, *waitCounter) {
	t.Helper()
	j := &fakeJournal{}
	wc := &waitCounter{}
	c := NewClient(Options{
		BaseURL:   srv.URL + "/rest/1",
		AuthToken: "secret",
		Retry:     RetryPolicy{MaxAttempts: 3, Backoff: DefaultBackoff, Wait: wc.wait},
		Journal:   j,
		Logger:    logger.NewLoggerWithWriter("error", &bytes.Buffer{}),
	})
	return c, j, wc
}

func ok(body string) reply { return reply{status: http.StatusOK, body: body} }
