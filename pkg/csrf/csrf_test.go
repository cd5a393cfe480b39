package csrf

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matryer/is"
)

func request(method string, header map[string]string) *http.Request {
	r := httptest.NewRequest(method, "/api/activities", nil)
	for k, v := range header {
		r.Header.Set(k, v)
	}
	return r
}

func TestVerify(t *testing.T) {
	is := is.New(t)
	g, err := New([]string{"https://app.example.com/", "https://*.example.org"}, true)
	is.NoErr(err)

	cases := []struct {
		name   string
		method string
		header map[string]string
		want   bool
	}{
		{"safe method", http.MethodGet, map[string]string{"Origin": "https://evil.com"}, true},
		{"head", http.MethodHead, nil, true},
		{"options", http.MethodOptions, nil, true},
		{"exact origin", http.MethodPost, map[string]string{"Origin": "https://app.example.com"}, true},
		{"origin case", http.MethodPost, map[string]string{"Origin": "HTTPS://App.Example.com"}, true},
		{"different host", http.MethodPost, map[string]string{"Origin": "https://evil.com"}, false},
		{"different scheme", http.MethodPost, map[string]string{"Origin": "http://app.example.com"}, false},
		{"different port", http.MethodPost, map[string]string{"Origin": "https://app.example.com:8443"}, false},
		{"suffix host", http.MethodPost, map[string]string{"Origin": "https://app.example.com.evil.com"}, false},
		{"referer fallback", http.MethodDelete, map[string]string{"Referer": "https://app.example.com/settings?x=1"}, true},
		{"origin wins over referer", http.MethodPut, map[string]string{
			"Origin":  "https://evil.com",
			"Referer": "https://app.example.com/",
		}, false},
		{"pattern", http.MethodPatch, map[string]string{"Origin": "https://staging.example.org"}, true},
		{"pattern other domain", http.MethodPatch, map[string]string{"Origin": "https://staging.example.net"}, false},
		{"unparsable prefix", http.MethodPost, map[string]string{"Referer": "https://app.example.com/%zz"}, true},
		{"null origin", http.MethodPost, map[string]string{"Origin": "null"}, false},
		{"no headers", http.MethodPost, nil, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			is := is.New(t)
			is.Equal(g.Verify(request(c.method, c.header)), c.want)
		})
	}
}

func TestMissingHeadersAllowedWhenNotRequired(t *testing.T) {
	is := is.New(t)
	g, err := New([]string{"http://localhost:8080"}, false)
	is.NoErr(err)
	is.True(g.Verify(request(http.MethodPost, nil)))
	is.True(!g.Verify(request(http.MethodPost, map[string]string{"Origin": "http://localhost:3000"})))
}

func TestNewInvalidOrigin(t *testing.T) {
	is := is.New(t)
	_, err := New([]string{"not-an-origin"}, false)
	is.True(err != nil)
}

func TestMiddleware(t *testing.T) {
	is := is.New(t)
	g, err := New([]string{"https://app.example.com"}, true)
	is.NoErr(err)
	h := Middleware(g)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, request(http.MethodPost, map[string]string{"Origin": "https://app.example.com"}))
	is.Equal(w.Code, http.StatusCreated)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, request(http.MethodPost, map[string]string{"Origin": "https://evil.com"}))
	is.Equal(w.Code, http.StatusForbidden)

	var body map[string]string
	is.NoErr(json.NewDecoder(w.Body).Decode(&body))
	is.Equal(body["error"], ErrorMessage)
}
