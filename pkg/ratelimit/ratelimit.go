// Package ratelimit implements fixed-window request throttling keyed by
// client identity.
package ratelimit

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Config is a fixed window and the number of requests allowed in it.
type Config struct {
	// Name prefixes the store keys so presets do not share counters.
	Name   string
	Window time.Duration
	Max    int
}

// Presets for the endpoint classes.
var (
	// Strict guards expensive writes.
	Strict = Config{Name: "strict", Window: time.Minute, Max: 10}
	// Normal guards ordinary state-changing endpoints.
	Normal = Config{Name: "normal", Window: time.Minute, Max: 60}
	// Relaxed guards cheap beacons.
	Relaxed = Config{Name: "relaxed", Window: time.Minute, Max: 120}
	// Auth guards token minting.
	Auth = Config{Name: "auth", Window: 15 * time.Minute, Max: 5}
	// AI guards calls to the embedding provider.
	AI = Config{Name: "ai", Window: time.Minute, Max: 20}
)

// Result is the outcome of a Check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter returns the time left until the window resets, rounded up to
// a whole second.
func (r Result) RetryAfter(now time.Time) time.Duration {
	d := r.ResetAt.Sub(now)
	if d <= 0 {
		return 0
	}
	return time.Duration(math.Ceil(d.Seconds())) * time.Second
}

// Store counts hits per key.
type Store interface {
	// Hit records one request for key. A key with no window, or whose
	// window has elapsed, starts a fresh window of the given length with a
	// count of 1. It returns the count in the current window and when that
	// window resets.
	Hit(ctx context.Context, key string, window time.Duration) (count int, resetAt time.Time, err error)
}

// Limiter checks requests against a Store.
type Limiter struct {
	store Store
	now   func() time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithNow sets the time source used to compute Retry-After.
func WithNow(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// New returns a Limiter backed by store.
func New(store Store, opts ...Option) *Limiter {
	l := &Limiter{store: store, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Check records a request from identity and reports whether it is within
// cfg.
func (l *Limiter) Check(ctx context.Context, identity string, cfg Config) (Result, error) {
	count, resetAt, err := l.store.Hit(ctx, key(cfg, identity), cfg.Window)
	if err != nil {
		return Result{}, fmt.Errorf("rate limit %s: %w", cfg.Name, err)
	}

	remaining := cfg.Max - count
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Allowed:   count <= cfg.Max,
		Limit:     cfg.Max,
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}

func key(cfg Config, identity string) string {
	if cfg.Name == "" {
		return identity
	}
	return cfg.Name + ":" + identity
}
