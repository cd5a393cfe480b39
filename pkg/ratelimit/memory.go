package ratelimit

import (
	"context"
	"sync"
	"time"
)

// DefaultSweepInterval is how often a MemoryStore purges elapsed windows.
const DefaultSweepInterval = time.Minute

type entry struct {
	count   int
	resetAt time.Time
}

// MemoryStore is a process-local Store. Counters are lost on restart and
// are not shared between processes.
type MemoryStore struct {
	mu       sync.Mutex
	entries  map[string]*entry
	now      func() time.Time
	interval time.Duration
	done     chan struct{}
	once     sync.Once
}

var _ Store = (*MemoryStore)(nil)

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock sets the store's time source.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		s.now = now
	}
}

// WithSweepInterval sets how often elapsed windows are purged. A
// non-positive interval disables the background sweep.
func WithSweepInterval(d time.Duration) MemoryOption {
	return func(s *MemoryStore) {
		s.interval = d
	}
}

// NewMemoryStore returns a MemoryStore and starts its sweeper. Call Close
// to stop it.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		entries:  make(map[string]*entry),
		now:      time.Now,
		interval: DefaultSweepInterval,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.interval > 0 {
		go s.sweepLoop()
	}
	return s
}

// Hit implements Store.
func (s *MemoryStore) Hit(ctx context.Context, key string, window time.Duration) (int, time.Time, error) {
	if err := ctx.Err(); err != nil {
		return 0, time.Time{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e, ok := s.entries[key]
	if !ok || !now.Before(e.resetAt) {
		e = &entry{count: 1, resetAt: now.Add(window)}
		s.entries[key] = e
		return e.count, e.resetAt, nil
	}

	e.count++
	return e.count, e.resetAt, nil
}

// Sweep removes every entry whose window has elapsed and returns how many
// were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var n int
	for k, e := range s.entries {
		if !now.Before(e.resetAt) {
			delete(s.entries, k)
			n++
		}
	}
	return n
}

// Len returns the number of tracked keys.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Close stops the sweeper.
func (s *MemoryStore) Close() error {
	s.once.Do(func() {
		close(s.done)
	})
	return nil
}

func (s *MemoryStore) sweepLoop() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
