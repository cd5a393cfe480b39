package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestClientIdentity(t *testing.T) {
	cases := []struct {
		name   string
		header map[string]string
		remote string
		want   string
	}{
		{"forwarded", map[string]string{"X-Forwarded-For": " 10.0.0.1 , 10.0.0.2"}, "1.1.1.1:80", "10.0.0.1"},
		{"real ip", map[string]string{"X-Real-IP": "10.0.0.3"}, "1.1.1.1:80", "10.0.0.3"},
		{"remote", nil, "1.1.1.1:80", "1.1.1.1"},
		{"remote without port", nil, "1.1.1.1", "1.1.1.1"},
		{"unknown", nil, "", Unknown},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			is := is.New(t)
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = c.remote
			for k, v := range c.header {
				r.Header.Set(k, v)
			}
			is.Equal(ClientIdentity(r), c.want)
		})
	}
}

func TestMiddlewareThrottles(t *testing.T) {
	is := is.New(t)
	l, _, _ := newTestLimiter(t)
	cfg := Config{Name: "mw", Window: time.Minute, Max: 2}
	h := Middleware(l, cfg)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	do := func() *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/api/x", nil)
		r.RemoteAddr = "9.9.9.9:1234"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w
	}

	w := do()
	is.Equal(w.Code, http.StatusNoContent)
	is.Equal(w.Header().Get("X-RateLimit-Limit"), "2")
	is.Equal(w.Header().Get("X-RateLimit-Remaining"), "1")

	is.Equal(do().Code, http.StatusNoContent)

	w = do()
	is.Equal(w.Code, http.StatusTooManyRequests)
	is.Equal(w.Header().Get("X-RateLimit-Remaining"), "0")
	is.True(w.Header().Get("Retry-After") != "")

	var body struct {
		Error      string `json:"error"`
		RetryAfter int    `json:"retryAfter"`
	}
	is.NoErr(json.NewDecoder(w.Body).Decode(&body))
	is.True(body.Error != "")
	is.True(body.RetryAfter > 0)
}

type failingStore struct{}

func (failingStore) Hit(context.Context, string, time.Duration) (int, time.Time, error) {
	return 0, time.Time{}, errors.New("boom")
}

func TestMiddlewareFailsOpen(t *testing.T) {
	is := is.New(t)
	h := Middleware(New(failingStore{}), Strict)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
	is.Equal(w.Code, http.StatusOK)
}
