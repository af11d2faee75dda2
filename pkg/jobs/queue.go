package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Event is a domain occurrence dispatched to external notification channels.
// Dispatch is fire-and-forget: a failed event is retried a bounded number of
// times and then dropped with a log line, never surfaced to the request that
// produced it.
type Event struct {
	ID         string
	Kind       string
	Payload    map[string]string
	Attempt    int
	OccurredAt time.Time
}

// Dispatcher delivers a single event.
type Dispatcher func(context.Context, Event) error

// Options configures the worker pool.
type Options struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

// EventQueue fans events out to a bounded pool of dispatch workers.
type EventQueue struct {
	name     string
	dispatch Dispatcher
	opts     Options

	events  chan Event
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewEventQueue builds a queue delivering through dispatch.
func NewEventQueue(name string, dispatch Dispatcher, opts Options) *EventQueue {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = opts.Workers * 4
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &EventQueue{
		name:     name,
		dispatch: dispatch,
		opts:     opts,
		events:   make(chan Event, opts.BufferSize),
	}
}

// Start launches the workers. Safe to call once.
func (q *EventQueue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.opts.Workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	q.started = true
	q.opts.Logger.Sugar().Infow("event queue started", "queue", q.name, "workers", q.opts.Workers)
}

// Stop cancels workers and waits for them to drain.
func (q *EventQueue) Stop() {
	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return
	}
	q.cancel()
	q.mu.Unlock()
	q.wg.Wait()
	q.opts.Logger.Sugar().Infow("event queue stopped", "queue", q.name)
}

// Publish enqueues an event without blocking the caller beyond buffer capacity.
func (q *EventQueue) Publish(event Event) error {
	q.mu.Lock()
	ctx := q.ctx
	started := q.started
	q.mu.Unlock()

	if !started {
		return fmt.Errorf("event queue %s not started", q.name)
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("event queue %s stopped: %w", q.name, ctx.Err())
	case q.events <- event:
		return nil
	}
}

func (q *EventQueue) worker() {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case event := <-q.events:
			if err := q.dispatch(q.ctx, event); err != nil {
				q.retry(event, err)
			}
		}
	}
}

func (q *EventQueue) retry(event Event, err error) {
	event.Attempt++
	log := q.opts.Logger.Sugar()
	if event.Attempt > q.opts.MaxRetries {
		log.Errorw("event dropped after retries", "queue", q.name, "event_id", event.ID, "kind", event.Kind, "error", err)
		return
	}
	log.Warnw("event dispatch failed, retrying", "queue", q.name, "event_id", event.ID, "kind", event.Kind, "attempt", event.Attempt, "error", err)

	go func(e Event) {
		timer := time.NewTimer(q.opts.RetryDelay)
		defer timer.Stop()
		select {
		case <-q.ctx.Done():
			return
		case <-timer.C:
			if err := q.Publish(e); err != nil {
				log.Errorw("failed to requeue event", "queue", q.name, "event_id", e.ID, "error", err)
			}
		}
	}(event)
}
