package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/matryer/is"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *clock {
	return &clock{t: time.Date(2024, time.May, 1, 8, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(t *testing.T) (*Limiter, *MemoryStore, *clock) {
	t.Helper()
	c := newClock()
	s := NewMemoryStore(WithClock(c.Now), WithSweepInterval(0))
	t.Cleanup(func() { _ = s.Close() })
	return New(s, WithNow(c.Now)), s, c
}

func TestWindowAllowsExactlyMax(t *testing.T) {
	is := is.New(t)
	l, _, c := newTestLimiter(t)
	ctx := context.Background()
	cfg := Config{Name: "test", Window: time.Minute, Max: 5}

	for i := 1; i <= cfg.Max; i++ {
		res, err := l.Check(ctx, "1.2.3.4", cfg)
		is.NoErr(err)
		is.True(res.Allowed) // request within the window
		is.Equal(res.Remaining, cfg.Max-i)
		is.Equal(res.ResetAt, c.Now().Add(time.Minute))
	}

	res, err := l.Check(ctx, "1.2.3.4", cfg)
	is.NoErr(err)
	is.True(!res.Allowed)
	is.Equal(res.Remaining, 0)
}

func TestWindowResets(t *testing.T) {
	is := is.New(t)
	l, _, c := newTestLimiter(t)
	ctx := context.Background()
	cfg := Config{Name: "test", Window: time.Minute, Max: 2}

	for i := 0; i < 5; i++ {
		_, err := l.Check(ctx, "ip", cfg)
		is.NoErr(err)
	}

	c.Advance(59 * time.Second)
	res, err := l.Check(ctx, "ip", cfg)
	is.NoErr(err)
	is.True(!res.Allowed)

	c.Advance(time.Second)
	res, err = l.Check(ctx, "ip", cfg)
	is.NoErr(err)
	is.True(res.Allowed)
	is.Equal(res.Remaining, cfg.Max-1) // count is 1
	is.Equal(res.ResetAt, c.Now().Add(time.Minute))
}

func TestIdentitiesAndPresetsAreIndependent(t *testing.T) {
	is := is.New(t)
	l, s, _ := newTestLimiter(t)
	ctx := context.Background()
	cfg := Config{Name: "a", Window: time.Minute, Max: 1}

	res, err := l.Check(ctx, "x", cfg)
	is.NoErr(err)
	is.True(res.Allowed)

	res, err = l.Check(ctx, "y", cfg)
	is.NoErr(err)
	is.True(res.Allowed)

	other := cfg
	other.Name = "b"
	res, err = l.Check(ctx, "x", other)
	is.NoErr(err)
	is.True(res.Allowed)

	is.Equal(s.Len(), 3)
}

func TestSweep(t *testing.T) {
	is := is.New(t)
	_, s, c := newTestLimiter(t)
	ctx := context.Background()

	_, _, err := s.Hit(ctx, "short", time.Second)
	is.NoErr(err)
	_, _, err = s.Hit(ctx, "long", time.Hour)
	is.NoErr(err)

	is.Equal(s.Sweep(), 0)
	c.Advance(time.Second)
	is.Equal(s.Sweep(), 1)
	is.Equal(s.Len(), 1)
}

func TestHitCanceledContext(t *testing.T) {
	is := is.New(t)
	_, s, _ := newTestLimiter(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := s.Hit(ctx, "k", time.Minute)
	is.True(errors.Is(err, context.Canceled))
}

func TestRetryAfter(t *testing.T) {
	is := is.New(t)
	now := time.Date(2024, time.May, 1, 8, 0, 0, 0, time.UTC)
	res := Result{ResetAt: now.Add(1500 * time.Millisecond)}
	is.Equal(res.RetryAfter(now), 2*time.Second)
	is.Equal(res.RetryAfter(now.Add(500*time.Millisecond)), time.Second)
	is.Equal(res.RetryAfter(now.Add(-3500*time.Millisecond)), 5*time.Second)
	is.Equal(res.RetryAfter(now.Add(time.Hour)), time.Duration(0))
}

func TestPresets(t *testing.T) {
	is := is.New(t)
	for _, cfg := range []Config{Strict, Normal, Relaxed, Auth, AI} {
		is.True(cfg.Name != "")
		is.True(cfg.Max > 0)
		is.True(cfg.Window > 0)
	}
	is.True(Strict.Max < Normal.Max)
	is.True(Normal.Max < Relaxed.Max)
}
