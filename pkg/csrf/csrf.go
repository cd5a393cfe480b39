// Package csrf rejects cross-site state-changing requests by checking the
// Origin and Referer headers against a list of trusted origins.
package csrf

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gobwas/glob"
)

// Guard validates request origins.
type Guard struct {
	exact    map[string]struct{}
	prefixes []string
	patterns []glob.Glob
	// requireHeader rejects requests carrying neither Origin nor Referer.
	requireHeader bool
}

// New returns a Guard trusting origins. An origin is a scheme and host,
// such as "https://app.example.com", or a glob pattern like
// "https://*.example.com". When requireHeader is set, state-changing
// requests without Origin and Referer are rejected.
func New(origins []string, requireHeader bool) (*Guard, error) {
	g := &Guard{
		exact:         make(map[string]struct{}, len(origins)),
		requireHeader: requireHeader,
	}
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		if strings.ContainsAny(o, "*?[{") {
			p, err := glob.Compile(strings.ToLower(strings.TrimRight(o, "/")))
			if err != nil {
				return nil, fmt.Errorf("invalid origin pattern %q: %w", o, err)
			}
			g.patterns = append(g.patterns, p)
			continue
		}
		norm, ok := normalize(o)
		if !ok {
			return nil, fmt.Errorf("invalid origin %q", o)
		}
		g.exact[norm] = struct{}{}
		g.prefixes = append(g.prefixes, norm)
	}
	return g, nil
}

// Verify reports whether r may proceed. Safe methods always pass.
func (g *Guard) Verify(r *http.Request) bool {
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}

	value := r.Header.Get("Origin")
	if value == "" {
		value = r.Header.Get("Referer")
	}
	if value == "" {
		return !g.requireHeader
	}
	return g.Allowed(value)
}

// Allowed reports whether value, an Origin or Referer header value,
// belongs to a trusted origin. Values that do not parse as absolute URLs
// are compared by prefix.
func (g *Guard) Allowed(value string) bool {
	origin, ok := normalize(value)
	if !ok {
		for _, p := range g.prefixes {
			if strings.HasPrefix(strings.ToLower(value), p) {
				return true
			}
		}
		return false
	}

	if _, ok := g.exact[origin]; ok {
		return true
	}
	for _, p := range g.patterns {
		if p.Match(origin) {
			return true
		}
	}
	return false
}

// normalize returns the lower-cased scheme://host of s.
func normalize(s string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host), true
}
