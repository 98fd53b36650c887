package audit

import (
	"context"
	"log/slog"

	"visitflow/pkg/attrs"
	id "visitflow/pkg/domain"
	"visitflow/pkg/requestcontext"
)

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByVisitor(ctx context.Context, visitorID string) ([]Event, error)
}

// Publisher captures structured audit events. It is append-only and uses the
// storage layer for persistence so tests can swap sinks easily.
type Publisher struct {
	store Store
}

func NewPublisher(store Store) *Publisher {
	return &Publisher{store: store}
}

func (p *Publisher) Emit(ctx context.Context, base Event) error {
	if base.Timestamp.IsZero() {
		base.Timestamp = requestcontext.Now(ctx)
	}
	return p.store.Append(ctx, base)
}

func (p *Publisher) List(ctx context.Context, visitorID id.VisitorID) ([]Event, error) {
	return p.store.ListByVisitor(ctx, visitorID.String())
}

// Emitter is what services depend on.
type Emitter interface {
	Emit(ctx context.Context, base Event) error
}

// Log writes an audit line and, when a publisher is set, appends the event to the trail.
// attributes are slog key/value pairs; values under agent_id, visitor_id,
// schedule_id and pavilion_id are copied onto the event.
func Log(ctx context.Context, logger *slog.Logger, publisher Emitter, event string, attributes ...any) {
	requestID := requestcontext.RequestID(ctx)
	if requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	if logger != nil {
		args := append(attributes, "event", event, "log_type", "audit")
		logger.InfoContext(ctx, event, args...)
	}
	if publisher == nil {
		return
	}
	err := publisher.Emit(ctx, Event{
		Action:     event,
		AgentID:    attrs.ExtractString(attributes, "agent_id"),
		VisitorID:  attrs.ExtractString(attributes, "visitor_id"),
		ScheduleID: attrs.ExtractString(attributes, "schedule_id"),
		PavilionID: attrs.ExtractString(attributes, "pavilion_id"),
		RequestID:  requestID,
	})
	if err != nil && logger != nil {
		logger.WarnContext(ctx, "failed to append audit event", "event", event, "error", err)
	}
}
