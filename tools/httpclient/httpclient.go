package httpclient

import (
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var defaultClient = &http.Client{Timeout: 30 * time.Second}

func CreateClient() *http.Client { return defaultClient }

// Options 连接池与 TLS 设置
type Options struct {
	Timeout             time.Duration
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration
	// InsecureSkipVerify 跳过证书校验，仅用于证书无法校验的内网 CRM
	InsecureSkipVerify bool
}

// NewClient 按配置创建独立的 http.Client
func NewClient(opts Options) *http.Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.MaxIdleConns > 0 {
		transport.MaxIdleConns = opts.MaxIdleConns
	}
	if opts.MaxIdleConnsPerHost > 0 {
		transport.MaxIdleConnsPerHost = opts.MaxIdleConnsPerHost
	}
	if opts.IdleConnTimeout > 0 {
		transport.IdleConnTimeout = opts.IdleConnTimeout
	}
	if opts.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // explicit opt-in
	}

	return &http.Client{Timeout: opts.Timeout, Transport: transport}
}

func RequestC(ctx context.Context, client *http.Client, method, url string, body io.Reader, headers map[string]string) ([]byte, int, error) {
	if client == nil {
		client = defaultClient
	}

	if headers == nil {
		headers = map[string]string{
			"Content-Type": "application/json",
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, 0, err
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}

	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return b, resp.StatusCode, nil
}

// PostForm 以 application/x-www-form-urlencoded 提交
func PostForm(ctx context.Context, client *http.Client, url string, form url.Values) ([]byte, int, error) {
	return RequestC(ctx, client, http.MethodPost, url, strings.NewReader(form.Encode()), map[string]string{
		"Content-Type": "application/x-www-form-urlencoded",
		"Accept":       "application/json",
	})
}
