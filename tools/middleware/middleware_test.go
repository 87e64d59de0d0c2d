package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var r Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &r))
	return r
}

func TestSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Success(gin.H{"id": 1}, c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":{"id":1}}`, w.Body.String())
}

func TestFailed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"validation", ErrValidateFailed("bad phone"), http.StatusBadRequest},
		{"not found", ErrNotFound("no client"), http.StatusBadRequest},
		{"gateway", ErrBadGateway("crm down"), http.StatusBadGateway},
		{"wrapped", fmt.Errorf("handler: %w", ErrValidateFailed("bad id")), http.StatusBadRequest},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
		{"no http code", NewApiException(1, "custom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			Failed(tc.err, c)

			assert.Equal(t, tc.code, w.Code)
			assert.True(t, c.IsAborted())
			r := decode(t, w)
			assert.False(t, r.Success)
			assert.NotEmpty(t, r.Message)
		})
	}
}

func TestStartRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		query string
		start int
		ok    bool
	}{
		{"", 0, true},
		{"?start=50", 50, true},
		{"?start=-1", 0, false},
		{"?start=abc", 0, false},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/deals"+tc.query, nil)

		p, err := NewStartRequestFromContext(c)
		if !tc.ok {
			assert.Error(t, err, tc.query)
			continue
		}
		require.NoError(t, err, tc.query)
		assert.Equal(t, tc.start, p.Start)
	}
}
