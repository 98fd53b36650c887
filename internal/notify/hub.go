// Package notify fans engine events out to presentation listeners.
package notify

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"visitflow/internal/visit/models"
	"visitflow/internal/visit/ports"
	id "visitflow/pkg/domain"
)

// Hub is a ports.Listener that forwards every event to its subscribers. A hub with no
// subscribers drops events.
type Hub struct {
	mu        sync.RWMutex
	nextID    uint64
	listeners map[uint64]ports.Listener
	logger    *slog.Logger
}

type Option func(*Hub)

func WithLogger(logger *slog.Logger) Option {
	return func(h *Hub) {
		h.logger = logger
	}
}

func NewHub(opts ...Option) *Hub {
	h := &Hub{listeners: make(map[uint64]ports.Listener)}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Subscribe registers l and returns the function that removes it. Calling the returned
// function more than once is harmless.
func (h *Hub) Subscribe(l ports.Listener) (unsubscribe func()) {
	h.mu.Lock()
	subID := h.nextID
	h.nextID++
	h.listeners[subID] = l
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.listeners, subID)
			h.mu.Unlock()
		})
	}
}

// Len reports the number of subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners)
}

func (h *Hub) OverdueListReady(ctx context.Context, visits []models.OverdueVisit) {
	h.each(ctx, "overdue_list_ready", func(l ports.Listener) {
		l.OverdueListReady(ctx, slices.Clone(visits))
	})
}

func (h *Hub) NoOverdueFound(ctx context.Context) {
	h.each(ctx, "no_overdue_found", func(l ports.Listener) { l.NoOverdueFound(ctx) })
}

func (h *Hub) ScanFailed(ctx context.Context, err error) {
	h.each(ctx, "scan_failed", func(l ports.Listener) { l.ScanFailed(ctx, err) })
}

func (h *Hub) VisitCompleted(ctx context.Context, scheduleID id.ScheduleID) {
	h.each(ctx, "visit_completed", func(l ports.Listener) { l.VisitCompleted(ctx, scheduleID) })
}

// each calls fn for a snapshot of the subscribers in subscription order. A panicking
// listener is logged and skipped.
func (h *Hub) each(ctx context.Context, event string, fn func(ports.Listener)) {
	h.mu.RLock()
	subIDs := make([]uint64, 0, len(h.listeners))
	for subID := range h.listeners {
		subIDs = append(subIDs, subID)
	}
	slices.Sort(subIDs)
	snapshot := make([]ports.Listener, 0, len(subIDs))
	for _, subID := range subIDs {
		snapshot = append(snapshot, h.listeners[subID])
	}
	h.mu.RUnlock()

	for _, l := range snapshot {
		h.deliver(ctx, event, l, fn)
	}
}

func (h *Hub) deliver(ctx context.Context, event string, l ports.Listener, fn func(ports.Listener)) {
	defer func() {
		if r := recover(); r != nil && h.logger != nil {
			h.logger.ErrorContext(ctx, "listener panicked", "event", event, "panic", r)
		}
	}()
	fn(l)
}
