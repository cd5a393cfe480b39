package web

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pathwayhq/pathway/pkg/config"
	"github.com/pathwayhq/pathway/pkg/ratelimit"
)

// NewRouter returns a new HTTP router. A nil limiter disables throttling.
func NewRouter(ctx context.Context, limiter *ratelimit.Limiter) (http.Handler, error) {
	cfg := config.FromContext(ctx)
	logger := log.FromContext(ctx).WithPrefix("http")
	router := mux.NewRouter()

	// Health routes
	HealthController(ctx, router)

	// API routes
	if err := APIController(ctx, router, limiter); err != nil {
		return nil, err
	}

	router.PathPrefix("/").HandlerFunc(renderNotFound)

	// Context handler
	// Adds context to the request
	h := NewLoggingMiddleware(router, logger)
	if cors := cfg.HTTP.CORS; len(cors.AllowedOrigins) > 0 {
		h = handlers.CORS(
			handlers.AllowedOrigins(cors.AllowedOrigins),
			handlers.AllowedHeaders(cors.AllowedHeaders),
			handlers.AllowedMethods(cors.AllowedMethods),
		)(h)
	}
	h = NewContextHandler(ctx)(h)
	h = handlers.CompressHandler(h)
	h = handlers.RecoveryHandler()(h)

	return h, nil
}
