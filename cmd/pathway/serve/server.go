package serve

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/pathwayhq/pathway/pkg/backend"
	"github.com/pathwayhq/pathway/pkg/config"
	"github.com/pathwayhq/pathway/pkg/cron"
	"github.com/pathwayhq/pathway/pkg/db"
	"github.com/pathwayhq/pathway/pkg/jobs"
	"github.com/pathwayhq/pathway/pkg/stats"
	"github.com/pathwayhq/pathway/pkg/web"
	"golang.org/x/sync/errgroup"
)

// Server is the Pathway server.
type Server struct {
	HTTPServer  *web.HTTPServer
	StatsServer *stats.StatsServer
	Cron        *cron.Scheduler
	Config      *config.Config
	Backend     *backend.Backend
	DB          *db.DB

	logger *log.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer returns a new *Server. It expects a context with
// *backend.Backend, *db.DB, *log.Logger, and *config.Config attached.
func NewServer(ctx context.Context) (*Server, error) {
	var err error
	cfg := config.FromContext(ctx)
	be := backend.FromContext(ctx)
	if cfg == nil || be == nil {
		return nil, errors.New("server context requires a config and a backend")
	}

	ctx, cancel := context.WithCancel(ctx)
	srv := &Server{
		Config:  cfg,
		Backend: be,
		DB:      db.FromContext(ctx),
		logger:  log.FromContext(ctx).WithPrefix("server"),
		ctx:     ctx,
		cancel:  cancel,
	}

	srv.Cron = cron.NewScheduler(ctx)
	if err := jobs.Schedule(ctx, srv.Cron); err != nil {
		cancel()
		return nil, err
	}

	srv.HTTPServer, err = web.NewHTTPServer(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("create http server: %w", err)
	}

	srv.StatsServer, err = stats.NewStatsServer(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("create stats server: %w", err)
	}

	return srv, nil
}

// Start starts the servers, the scheduler and the background task queue.
// It returns when any of them fails or after Shutdown.
func (s *Server) Start() error {
	errg, ctx := errgroup.WithContext(s.ctx)

	errg.Go(func() error {
		s.logger.Print("Starting HTTP server", "addr", s.Config.HTTP.ListenAddr)
		if err := s.HTTPServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// optionally start the Stats server
	if s.StatsServer.Enabled() {
		errg.Go(func() error {
			s.logger.Print("Starting Stats server", "addr", s.Config.Stats.ListenAddr)
			if err := s.StatsServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	errg.Go(func() error {
		if err := s.Backend.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("task queue: %w", err)
		}
		return nil
	})

	errg.Go(func() error {
		s.Cron.Start()
		return nil
	})
	return errg.Wait()
}

// Shutdown lets the server gracefully shutdown.
func (s *Server) Shutdown(ctx context.Context) error {
	defer s.cancel()
	errg, ctx := errgroup.WithContext(ctx)
	errg.Go(func() error {
		return s.HTTPServer.Shutdown(ctx)
	})
	errg.Go(func() error {
		return s.StatsServer.Shutdown(ctx)
	})
	errg.Go(func() error {
		for _, j := range jobs.List() {
			s.Cron.Remove(j.ID)
		}
		s.Cron.Shutdown()
		return nil
	})
	errg.Go(s.Backend.Close)
	return errg.Wait()
}

// Close closes the server immediately.
func (s *Server) Close() error {
	defer s.cancel()
	var errg errgroup.Group
	errg.Go(s.HTTPServer.Close)
	errg.Go(s.StatsServer.Close)
	errg.Go(func() error {
		s.Cron.Stop()
		return nil
	})
	errg.Go(s.Backend.Close)
	return errg.Wait()
}
