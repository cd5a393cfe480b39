package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pathwayhq/pathway/pkg/config"
	"github.com/pathwayhq/pathway/pkg/ratelimit"
)

// HTTPServer is an http server.
type HTTPServer struct {
	ctx context.Context
	cfg *config.Config

	// limits is the rate limiter store, nil when throttling is disabled.
	limits    io.Closer
	closeOnce sync.Once

	Server *http.Server
}

// NewHTTPServer creates a new HTTP server.
func NewHTTPServer(ctx context.Context) (*HTTPServer, error) {
	cfg := config.FromContext(ctx)
	logger := log.FromContext(ctx)
	s := &HTTPServer{
		ctx: ctx,
		cfg: cfg,
	}

	var limiter *ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		store, err := newLimitStore(ctx, cfg.RateLimit)
		if err != nil {
			return nil, err
		}
		s.limits = store
		limiter = ratelimit.New(store)
	}

	router, err := NewRouter(ctx, limiter)
	if err != nil {
		s.closeLimits()
		return nil, err
	}

	s.Server = &http.Server{
		Addr:              cfg.HTTP.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: time.Second * 10,
		IdleTimeout:       time.Second * 10,
		MaxHeaderBytes:    http.DefaultMaxHeaderBytes,
		ErrorLog:          logger.StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel}),
	}

	return s, nil
}

type limitStore interface {
	ratelimit.Store
	io.Closer
}

func newLimitStore(ctx context.Context, cfg config.RateLimitConfig) (limitStore, error) {
	switch strings.ToLower(cfg.Store) {
	case "", "memory":
		return ratelimit.NewMemoryStore(ratelimit.WithSweepInterval(cfg.SweepInterval)), nil
	case "redis":
		store, err := ratelimit.NewRedisStoreFromURL(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("rate limit store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown rate limit store %q", cfg.Store)
	}
}

func (s *HTTPServer) closeLimits() (err error) {
	s.closeOnce.Do(func() {
		if s.limits != nil {
			err = s.limits.Close()
		}
	})
	return err
}

// Close closes the HTTP server.
func (s *HTTPServer) Close() error {
	err := s.Server.Close()
	if cerr := s.closeLimits(); err == nil {
		err = cerr
	}
	return err
}

// ListenAndServe starts the HTTP server.
func (s *HTTPServer) ListenAndServe() error {
	return s.Server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	err := s.Server.Shutdown(ctx)
	if cerr := s.closeLimits(); err == nil {
		err = cerr
	}
	return err
}
