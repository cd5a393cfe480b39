package csrf

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var rejectedCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "pathway",
	Subsystem: "http",
	Name:      "rejected_origins_total",
	Help:      "The total number of state-changing requests rejected for their origin",
}, []string{"method"})

// ErrorMessage is the body of a rejected request.
const ErrorMessage = "Invalid origin. Cross-site requests are not allowed."

// Middleware rejects requests that fail g.Verify with 403.
func Middleware(g *Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if g.Verify(r) {
				next.ServeHTTP(w, r)
				return
			}

			rejectedCounter.WithLabelValues(r.Method).Inc()
			log.FromContext(r.Context()).WithPrefix("csrf").Warn("rejected origin",
				"method", r.Method,
				"path", r.URL.Path,
				"origin", r.Header.Get("Origin"),
				"referer", r.Header.Get("Referer"),
			)

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": ErrorMessage})
		})
	}
}
