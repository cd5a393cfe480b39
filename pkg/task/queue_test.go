package task

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matryer/is"
)

func newTestQueue(t *testing.T, retries int) *Queue {
	t.Helper()
	q, err := NewQueue(context.TODO(), Options{
		MaxRetries:    retries,
		RetryInterval: time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := q.Close(); err != nil {
			t.Errorf("close queue: %v", err)
		}
	})
	return q
}

func start(t *testing.T, q *Queue) {
	t.Helper()
	go func() { _ = q.Run(context.TODO()) }()
	select {
	case <-q.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("queue did not start")
	}
}

func TestEnqueueRunsHandler(t *testing.T) {
	is := is.New(t)
	q := newTestQueue(t, 0)

	got := make(chan string, 1)
	is.NoErr(q.Handle("greet", func(_ context.Context, payload []byte) error {
		var name string
		if err := json.Unmarshal(payload, &name); err != nil {
			return err
		}
		got <- name
		return nil
	}))
	start(t, q)

	is.NoErr(q.Enqueue(context.TODO(), "greet", "ada"))
	select {
	case name := <-got:
		is.Equal(name, "ada")
	case <-time.After(5 * time.Second):
		t.Fatal("task did not run")
	}
}

func TestRetryThenDeadLetter(t *testing.T) {
	is := is.New(t)
	q := newTestQueue(t, 2)

	var calls atomic.Int32
	is.NoErr(q.Handle("flaky", func(context.Context, []byte) error {
		calls.Add(1)
		return errors.New("nope")
	}))
	dead := make(chan string, 1)
	q.OnDeadLetter(func(topic string, _ []byte) {
		dead <- topic
	})
	start(t, q)

	is.NoErr(q.Enqueue(context.TODO(), "flaky", struct{}{}))
	select {
	case topic := <-dead:
		is.Equal(topic, "flaky")
	case <-time.After(5 * time.Second):
		t.Fatal("task was not dead-lettered")
	}
	is.Equal(calls.Load(), int32(3)) // first attempt and two retries
	is.Equal(q.DeadLetters(), 1)
}

func TestEnqueueUnknownTopic(t *testing.T) {
	is := is.New(t)
	q := newTestQueue(t, 0)
	err := q.Enqueue(context.TODO(), "missing", nil)
	is.True(errors.Is(err, ErrUnknownTopic))
}

func TestHandleAfterRun(t *testing.T) {
	is := is.New(t)
	q := newTestQueue(t, 0)
	start(t, q)
	err := q.Handle("late", func(context.Context, []byte) error { return nil })
	is.True(errors.Is(err, ErrAlreadyStarted))
}

func TestCloseWithoutRun(t *testing.T) {
	is := is.New(t)
	q := newTestQueue(t, 0)
	is.NoErr(q.Handle("idle", func(context.Context, []byte) error { return nil }))

	done := make(chan error, 1)
	go func() { done <- q.Close() }()
	select {
	case err := <-done:
		is.NoErr(err)
	case <-time.After(2 * time.Second):
		t.Fatal("close blocked on a queue that never ran")
	}

	is.True(errors.Is(q.Run(context.TODO()), ErrClosed))
}

func TestCloseAfterRun(t *testing.T) {
	is := is.New(t)
	q := newTestQueue(t, 0)
	is.NoErr(q.Handle("busy", func(context.Context, []byte) error { return nil }))
	start(t, q)
	is.NoErr(q.Close())
}
