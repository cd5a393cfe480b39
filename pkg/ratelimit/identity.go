package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

// Unknown is the shared identity of requests with no usable address.
const Unknown = "unknown"

// ClientIdentity returns the client address of r: the first
// X-Forwarded-For entry, then X-Real-IP, then the connection's remote
// host. Requests with none of those share the Unknown bucket.
func ClientIdentity(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if r.RemoteAddr != "" {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err == nil && host != "" {
			return host
		}
		if err != nil {
			return r.RemoteAddr
		}
	}
	return Unknown
}
