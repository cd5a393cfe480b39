package web

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/pathwayhq/pathway/pkg/backend"
	"github.com/pathwayhq/pathway/pkg/config"
	"github.com/pathwayhq/pathway/pkg/db"
	"github.com/pathwayhq/pathway/pkg/store"
)

const requestIDHeader = "X-Request-Id"

// NewContextHandler copies the server-wide dependencies held by ctx into
// every request context and tags the request logger with a request id.
// An incoming X-Request-Id is kept, otherwise a new one is generated and
// echoed back.
func NewContextHandler(ctx context.Context) func(http.Handler) http.Handler {
	var (
		cfg    = config.FromContext(ctx)
		be     = backend.FromContext(ctx)
		dbx    = db.FromContext(ctx)
		st     = store.FromContext(ctx)
		logger = log.FromContext(ctx).WithPrefix("http")
	)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestIDHeader)
			if _, err := uuid.Parse(id); err != nil {
				id = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, id)

			rctx := config.WithContext(r.Context(), cfg)
			rctx = backend.WithContext(rctx, be)
			rctx = db.WithContext(rctx, dbx)
			rctx = store.WithContext(rctx, st)
			rctx = log.WithContext(rctx, logger.With("request_id", id, "method", r.Method, "path", r.URL.Path))

			next.ServeHTTP(w, r.WithContext(rctx))
		})
	}
}
