package ratelimit

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var throttledCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "pathway",
	Subsystem: "http",
	Name:      "throttled_requests_total",
	Help:      "The total number of requests rejected by the rate limiter",
}, []string{"limit"})

// Middleware throttles requests per client identity using cfg. Store
// errors let the request through.
func Middleware(l *Limiter, cfg Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			logger := log.FromContext(ctx).WithPrefix("ratelimit")
			identity := ClientIdentity(r)

			res, err := l.Check(ctx, identity, cfg)
			if err != nil {
				logger.Error("failed to check rate limit", "err", err, "identity", identity)
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

			if !res.Allowed {
				retryAfter := int(math.Ceil(res.RetryAfter(l.now()).Seconds()))
				throttledCounter.WithLabelValues(cfg.Name).Inc()
				logger.Debug("throttled", "identity", identity, "limit", cfg.Name, "path", r.URL.Path)

				h.Set("Retry-After", strconv.Itoa(retryAfter))
				h.Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]interface{}{
					"error":      "Too many requests. Please try again later.",
					"retryAfter": retryAfter,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
