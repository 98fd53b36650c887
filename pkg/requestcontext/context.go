// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// Middleware sets these values; services read them. Keeping this package free of net/http
// lets the visit services depend on it without pulling in transport code.
//
// Usage in services (read values):
//
//	agentID := requestcontext.AgentID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
//	ctx = requestcontext.WithAgent(ctx, agentID, pavilionID)
package requestcontext

import (
	"context"
	"time"

	id "visitflow/pkg/domain"
)

type (
	agentIDKey       struct{}
	agentPavilionKey struct{}
	requestIDKey     struct{}
	requestTimeKey   struct{}
)

// Exported context keys for direct use in tests that need context.WithValue.
var (
	ContextKeyAgentID       = agentIDKey{}
	ContextKeyAgentPavilion = agentPavilionKey{}
	ContextKeyRequestID     = requestIDKey{}
	ContextKeyRequestTime   = requestTimeKey{}
)

// -----------------------------------------------------------------------------
// Identity (supplied by the identity collaborator)
// -----------------------------------------------------------------------------

// AgentID retrieves the authenticated agent ID. Returns the zero value if not set.
func AgentID(ctx context.Context) id.AgentID {
	if agentID, ok := ctx.Value(ContextKeyAgentID).(id.AgentID); ok {
		return agentID
	}
	return id.AgentID{}
}

// AgentPavilion retrieves the pavilion the current agent is assigned to, if any.
func AgentPavilion(ctx context.Context) (id.PavilionID, bool) {
	pavilionID, ok := ctx.Value(ContextKeyAgentPavilion).(id.PavilionID)
	if !ok || pavilionID.IsNil() {
		return id.PavilionID{}, false
	}
	return pavilionID, true
}

// WithAgent injects the agent identity and its assigned pavilion. A nil pavilion is not stored.
func WithAgent(ctx context.Context, agentID id.AgentID, pavilionID id.PavilionID) context.Context {
	ctx = context.WithValue(ctx, ContextKeyAgentID, agentID)
	if !pavilionID.IsNil() {
		ctx = context.WithValue(ctx, ContextKeyAgentPavilion, pavilionID)
	}
	return ctx
}

// -----------------------------------------------------------------------------
// Request metadata
// -----------------------------------------------------------------------------

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// -----------------------------------------------------------------------------
// Request time
// -----------------------------------------------------------------------------

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set (scanner ticks, CLI commands).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
// Scanner ticks use it so every schedule in one scan is judged against the same instant.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
