package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pathwayhq/pathway/pkg/config"
	"github.com/pathwayhq/pathway/pkg/db"
	"github.com/pathwayhq/pathway/pkg/email"
	"github.com/pathwayhq/pathway/pkg/search"
	"github.com/pathwayhq/pathway/pkg/store"
	"github.com/pathwayhq/pathway/pkg/task"
)

// Backend is the Pathway backend that handles users, opportunities,
// student records, advisory groups and settings.
type Backend struct {
	ctx      context.Context
	cfg      *config.Config
	db       *db.DB
	store    store.Store
	logger   *log.Logger
	cache    *cache
	queue    *task.Queue
	mailer   email.Mailer
	embedder search.Embedder
	now      func() time.Time
}

// Option configures a Backend.
type Option func(*Backend)

// WithClock sets the backend's time source.
func WithClock(now func() time.Time) Option {
	return func(b *Backend) {
		b.now = now
	}
}

// WithMailer replaces the mailer built from the configuration.
func WithMailer(m email.Mailer) Option {
	return func(b *Backend) {
		b.mailer = m
	}
}

// WithEmbedder replaces the embedder built from the configuration.
func WithEmbedder(e search.Embedder) Option {
	return func(b *Backend) {
		b.embedder = e
	}
}

// New returns a new Pathway backend.
func New(ctx context.Context, cfg *config.Config, db *db.DB, st store.Store, opts ...Option) (*Backend, error) {
	if cfg == nil {
		return nil, config.ErrNilConfig
	}

	logger := log.FromContext(ctx).WithPrefix("backend")
	b := &Backend{
		ctx:      ctx,
		cfg:      cfg,
		db:       db,
		store:    st,
		logger:   logger,
		mailer:   email.New(cfg.Email, logger),
		embedder: search.NewEmbedder(cfg.Search),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}

	b.cache = newCache(b, 1000)

	queue, err := task.NewQueue(ctx, task.Options{
		MaxRetries:    cfg.Task.MaxRetries,
		RetryInterval: cfg.Task.RetryInterval,
		Buffer:        int64(cfg.Task.Buffer),
	})
	if err != nil {
		return nil, fmt.Errorf("create task queue: %w", err)
	}
	b.queue = queue
	if err := b.registerTasks(); err != nil {
		return nil, err
	}

	return b, nil
}

// Run processes background tasks until ctx is done or the backend is
// closed.
func (b *Backend) Run(ctx context.Context) error {
	return b.queue.Run(ctx)
}

// Running is closed once background tasks are being processed.
func (b *Backend) Running() chan struct{} {
	return b.queue.Running()
}

// Close stops background processing.
func (b *Backend) Close() error {
	return b.queue.Close()
}
