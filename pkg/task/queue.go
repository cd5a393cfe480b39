// Package task runs side effects in the background with retries and a
// dead-letter topic.
package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// DeadLetterTopic receives messages whose handler kept failing.
const DeadLetterTopic = "dead_letter"

var (
	// ErrUnknownTopic is returned when enqueuing to a topic with no
	// handler.
	ErrUnknownTopic = errors.New("task: no handler for topic")

	// ErrAlreadyStarted is returned when registering a handler after Run.
	ErrAlreadyStarted = errors.New("task: queue already started")

	// ErrClosed is returned when running a closed queue.
	ErrClosed = errors.New("task: queue closed")
)

// Handler processes one task payload.
type Handler func(ctx context.Context, payload []byte) error

// Options configures a Queue.
type Options struct {
	// MaxRetries is how many times a failing task is retried before it is
	// moved to the dead-letter topic.
	MaxRetries int
	// RetryInterval is the first backoff interval.
	RetryInterval time.Duration
	// Buffer is the size of each topic's channel.
	Buffer int64
}

// Queue is an in-process task queue.
type Queue struct {
	ctx    context.Context
	logger *log.Logger
	pubsub *gochannel.GoChannel
	router *message.Router

	mu       sync.Mutex
	topics   map[string]struct{}
	started  bool
	closed   bool
	deadMu   sync.Mutex
	dead     int
	onDead   func(topic string, payload []byte)
	closeErr error
	once     sync.Once
}

// NewQueue returns a Queue. Handlers run with ctx.
func NewQueue(ctx context.Context, opts Options) (*Queue, error) {
	logger := log.FromContext(ctx).WithPrefix("task")
	wl := wmLogger{logger}

	if opts.Buffer <= 0 {
		opts.Buffer = 128
	}
	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: opts.Buffer,
	}, wl)

	router, err := message.NewRouter(message.RouterConfig{
		CloseTimeout: 30 * time.Second,
	}, wl)
	if err != nil {
		return nil, fmt.Errorf("create router: %w", err)
	}

	poison, err := middleware.PoisonQueue(pubsub, DeadLetterTopic)
	if err != nil {
		return nil, fmt.Errorf("create poison queue: %w", err)
	}

	router.AddMiddleware(
		poison,
		middleware.Retry{
			MaxRetries:      opts.MaxRetries,
			InitialInterval: opts.RetryInterval,
			MaxInterval:     opts.RetryInterval * 10,
			Multiplier:      2,
			Logger:          wl,
		}.Middleware,
		middleware.Recoverer,
	)

	q := &Queue{
		ctx:    ctx,
		logger: logger,
		pubsub: pubsub,
		router: router,
		topics: map[string]struct{}{},
	}

	router.AddNoPublisherHandler("dead_letter_logger", DeadLetterTopic, pubsub, q.handleDead)

	return q, nil
}

// Handle registers h for topic. It must be called before Run.
func (q *Queue) Handle(topic string, h Handler) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.started {
		return ErrAlreadyStarted
	}
	q.topics[topic] = struct{}{}
	q.router.AddNoPublisherHandler(topic, topic, q.pubsub, func(msg *message.Message) error {
		ctx := log.WithContext(q.ctx, q.logger.With("topic", topic, "task", msg.UUID))
		return h(ctx, msg.Payload)
	})
	return nil
}

// OnDeadLetter sets a callback invoked for each dead-lettered task.
func (q *Queue) OnDeadLetter(fn func(topic string, payload []byte)) {
	q.deadMu.Lock()
	defer q.deadMu.Unlock()
	q.onDead = fn
}

// Enqueue JSON-encodes payload and publishes it to topic. It does not wait
// for the task to run.
func (q *Queue) Enqueue(ctx context.Context, topic string, payload interface{}) error {
	q.mu.Lock()
	_, ok := q.topics[topic]
	q.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTopic, topic)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode task: %w", err)
	}

	msg := message.NewMessage(uuid.NewString(), data)
	msg.SetContext(ctx)
	if err := q.pubsub.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish task: %w", err)
	}

	q.logger.Debug("enqueued", "topic", topic, "task", msg.UUID)
	return nil
}

// Run starts processing and blocks until the queue is closed or ctx is
// done.
func (q *Queue) Run(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	q.started = true
	q.mu.Unlock()
	return q.router.Run(ctx)
}

// Running is closed once the queue processes tasks.
func (q *Queue) Running() chan struct{} {
	return q.router.Running()
}

// DeadLetters returns the number of tasks moved to the dead-letter topic.
func (q *Queue) DeadLetters() int {
	q.deadMu.Lock()
	defer q.deadMu.Unlock()
	return q.dead
}

// Close stops the router and the underlying channels. A queue that never
// ran only closes its channels: the router waits on handlers that only
// Run releases.
func (q *Queue) Close() error {
	q.once.Do(func() {
		q.mu.Lock()
		q.closed = true
		started := q.started
		q.mu.Unlock()

		var routerErr error
		if started {
			routerErr = q.router.Close()
		}
		q.closeErr = errors.Join(routerErr, q.pubsub.Close())
	})
	return q.closeErr
}

func (q *Queue) handleDead(msg *message.Message) error {
	topic := msg.Metadata.Get(middleware.PoisonedTopicKey)
	q.logger.Error("task failed permanently",
		"topic", topic,
		"task", msg.UUID,
		"reason", msg.Metadata.Get(middleware.ReasonForPoisonedKey),
	)

	q.deadMu.Lock()
	q.dead++
	fn := q.onDead
	q.deadMu.Unlock()

	if fn != nil {
		fn(topic, msg.Payload)
	}
	return nil
}
