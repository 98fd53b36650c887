package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	txcontext "visitflow/pkg/platform/tx"
)

// PostgresStore persists audit events in the audit_events table created by the visit
// store schema.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// Append writes an audit event. Joining an ambient transaction keeps the event atomic
// with the change it describes.
func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	query := `
		INSERT INTO audit_events (id, occurred_at, action, agent_id, visitor_id, schedule_id, pavilion_id, request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.New(),
		event.Timestamp,
		event.Action,
		event.AgentID,
		event.VisitorID,
		event.ScheduleID,
		event.PavilionID,
		event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByVisitor returns the visitor's events, oldest first.
func (s *PostgresStore) ListByVisitor(ctx context.Context, visitorID string) ([]Event, error) {
	query := `
		SELECT occurred_at, action, agent_id, visitor_id, schedule_id, pavilion_id, request_id
		FROM audit_events
		WHERE visitor_id = $1
		ORDER BY occurred_at, id
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, visitorID)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Timestamp, &e.Action, &e.AgentID, &e.VisitorID, &e.ScheduleID, &e.PavilionID, &e.RequestID); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
