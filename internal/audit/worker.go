package audit

import (
	"context"
	"errors"
	"log/slog"

	"visitflow/pkg/requestcontext"
)

// Worker consumes audit events from a channel and persists them. It lets callers on hot
// paths hand events off without waiting on the store.
type Worker struct {
	store  Store
	inbox  <-chan Event
	logger *slog.Logger
}

type WorkerOption func(*Worker)

func WithWorkerLogger(logger *slog.Logger) WorkerOption {
	return func(w *Worker) {
		w.logger = logger
	}
}

func NewWorker(store Store, inbox <-chan Event, opts ...WorkerOption) *Worker {
	w := &Worker{store: store, inbox: inbox}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run persists events until ctx ends or the inbox is closed. A failed append is logged and
// the event dropped; the worker keeps consuming.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain(context.WithoutCancel(ctx))
			return ctx.Err()
		case event, ok := <-w.inbox:
			if !ok {
				return nil
			}
			w.persist(ctx, event)
		}
	}
}

func (w *Worker) persist(ctx context.Context, event Event) {
	if err := w.store.Append(ctx, event); err != nil && w.logger != nil {
		w.logger.WarnContext(ctx, "failed to persist audit event",
			"event", event.Action,
			"visitor_id", event.VisitorID,
			"error", err,
		)
	}
}

// drain persists events already buffered when the worker is told to stop.
func (w *Worker) drain(ctx context.Context) {
	for {
		select {
		case event, ok := <-w.inbox:
			if !ok {
				return
			}
			w.persist(ctx, event)
		default:
			return
		}
	}
}

// ErrQueueFull is returned by Queue.Emit when the worker has fallen behind.
var ErrQueueFull = errors.New("audit queue is full")

// Queue is an Emitter that hands events to a Worker through a buffered channel.
type Queue struct {
	ch chan Event
}

func NewQueue(size int) *Queue {
	if size <= 0 {
		size = 1
	}
	return &Queue{ch: make(chan Event, size)}
}

// Emit never blocks; a full queue drops the event and reports ErrQueueFull.
func (q *Queue) Emit(ctx context.Context, base Event) error {
	if base.Timestamp.IsZero() {
		base.Timestamp = requestcontext.Now(ctx)
	}
	select {
	case q.ch <- base:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *Queue) Inbox() <-chan Event {
	return q.ch
}
