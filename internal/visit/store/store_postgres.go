package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"visitflow/internal/visit/models"
	id "visitflow/pkg/domain"
	"visitflow/pkg/platform/sentinel"
	"visitflow/pkg/platform/tx"
)

//go:embed schema.sql
var schemaSQL string

const uniqueViolation = "23505"

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresStore persists the visit domain in PostgreSQL.
type PostgresStore struct {
	db  *sql.DB
	loc *time.Location
}

// PostgresOption configures a PostgresStore.
type PostgresOption func(*PostgresStore)

// WithLocation sets the zone scheduled dates are interpreted in. Defaults to time.Local.
func WithLocation(loc *time.Location) PostgresOption {
	return func(s *PostgresStore) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// NewPostgres constructs a PostgreSQL-backed visit store.
func NewPostgres(db *sql.DB, opts ...PostgresOption) *PostgresStore {
	s := &PostgresStore{db: db, loc: time.Local}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureSchema creates the visit tables when they do not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure visit schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) conn(ctx context.Context) dbtx {
	if t, ok := tx.From(ctx); ok {
		return t
	}
	return s.db
}

func (s *PostgresStore) SavePavilion(ctx context.Context, pavilion *models.Pavilion) error {
	_, err := s.conn(ctx).ExecContext(ctx, `
		INSERT INTO pavilions (id, name, latitude, longitude, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, latitude = EXCLUDED.latitude, longitude = EXCLUDED.longitude`,
		uuid.UUID(pavilion.ID), pavilion.Name, nullFloat(pavilion.Latitude), nullFloat(pavilion.Longitude), pavilion.CreatedAt)
	if err != nil {
		return fmt.Errorf("save pavilion: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindPavilion(ctx context.Context, pavilionID id.PavilionID) (*models.Pavilion, error) {
	row := s.conn(ctx).QueryRowContext(ctx, `
		SELECT id, name, latitude, longitude, created_at FROM pavilions WHERE id = $1`,
		uuid.UUID(pavilionID))
	p, err := scanPavilion(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find pavilion: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) ListPavilions(ctx context.Context) ([]*models.Pavilion, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT id, name, latitude, longitude, created_at FROM pavilions ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list pavilions: %w", err)
	}
	defer rows.Close()

	var out []*models.Pavilion
	for rows.Next() {
		p, err := scanPavilion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pavilion: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pavilions: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) SaveVisitor(ctx context.Context, visitor *models.Visitor) error {
	_, err := s.conn(ctx).ExecContext(ctx, `
		INSERT INTO visitors (id, name, document, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, document = EXCLUDED.document`,
		uuid.UUID(visitor.ID), visitor.Name, visitor.Document, visitor.CreatedAt)
	if err != nil {
		return fmt.Errorf("save visitor: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindVisitor(ctx context.Context, visitorID id.VisitorID) (*models.Visitor, error) {
	var (
		rawID uuid.UUID
		v     models.Visitor
	)
	err := s.conn(ctx).QueryRowContext(ctx, `
		SELECT id, name, document, created_at FROM visitors WHERE id = $1`,
		uuid.UUID(visitorID)).Scan(&rawID, &v.Name, &v.Document, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find visitor: %w", err)
	}
	v.ID = id.VisitorID(rawID)
	return &v, nil
}

// SaveRoute upserts the route and replaces its checkpoint list in one transaction.
func (s *PostgresStore) SaveRoute(ctx context.Context, route *models.Route) error {
	return tx.Run(ctx, s.db, func(ctx context.Context) error {
		_, err := s.conn(ctx).ExecContext(ctx, `
			INSERT INTO routes (id, name, created_at, updated_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, updated_at = EXCLUDED.updated_at`,
			uuid.UUID(route.ID), route.Name, route.CreatedAt, route.UpdatedAt)
		if err != nil {
			return fmt.Errorf("save route: %w", err)
		}
		if _, err := s.conn(ctx).ExecContext(ctx, `DELETE FROM route_checkpoints WHERE route_id = $1`, uuid.UUID(route.ID)); err != nil {
			return fmt.Errorf("clear route checkpoints: %w", err)
		}
		for _, cp := range route.Checkpoints {
			_, err := s.conn(ctx).ExecContext(ctx, `
				INSERT INTO route_checkpoints (route_id, pavilion_id, checkpoint_order, allow_override)
				VALUES ($1, $2, $3, $4)`,
				uuid.UUID(route.ID), uuid.UUID(cp.PavilionID), cp.Order, cp.AllowOverride)
			if err != nil {
				return fmt.Errorf("insert route checkpoint: %w", err)
			}
		}
		return nil
	})
}

func (s *PostgresStore) FindRoute(ctx context.Context, routeID id.RouteID) (*models.Route, error) {
	var (
		rawID uuid.UUID
		r     models.Route
	)
	err := s.conn(ctx).QueryRowContext(ctx, `
		SELECT id, name, created_at, updated_at FROM routes WHERE id = $1`,
		uuid.UUID(routeID)).Scan(&rawID, &r.Name, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find route: %w", err)
	}
	r.ID = id.RouteID(rawID)

	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT pavilion_id, checkpoint_order, allow_override
		FROM route_checkpoints WHERE route_id = $1 ORDER BY checkpoint_order`,
		uuid.UUID(routeID))
	if err != nil {
		return nil, fmt.Errorf("list route checkpoints: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			pavilionID uuid.UUID
			cp         models.RouteCheckpoint
		)
		if err := rows.Scan(&pavilionID, &cp.Order, &cp.AllowOverride); err != nil {
			return nil, fmt.Errorf("scan route checkpoint: %w", err)
		}
		cp.PavilionID = id.PavilionID(pavilionID)
		r.Checkpoints = append(r.Checkpoints, cp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate route checkpoints: %w", err)
	}
	return &r, nil
}

const scheduleColumns = `id, visitor_id, route_id, scheduled_date, scheduled_time, expected_duration,
	motive, notes, created_by, status, created_at, updated_at`

func (s *PostgresStore) CreateSchedule(ctx context.Context, schedule *models.Schedule) error {
	_, err := s.conn(ctx).ExecContext(ctx, `
		INSERT INTO schedules (`+scheduleColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		uuid.UUID(schedule.ID),
		uuid.UUID(schedule.VisitorID),
		uuid.UUID(schedule.RouteID),
		schedule.ScheduledDate.Format(time.DateOnly),
		nullString(schedule.ScheduledTime),
		schedule.ExpectedDuration,
		schedule.Motive,
		schedule.Notes,
		uuid.UUID(schedule.CreatedBy),
		string(schedule.Status),
		schedule.CreatedAt,
		schedule.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create schedule: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindSchedule(ctx context.Context, scheduleID id.ScheduleID) (*models.Schedule, error) {
	row := s.conn(ctx).QueryRowContext(ctx, `
		SELECT `+scheduleColumns+` FROM schedules WHERE id = $1`, uuid.UUID(scheduleID))
	sc, err := s.scanSchedule(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find schedule: %w", err)
	}
	return sc, nil
}

func (s *PostgresStore) ListSchedulesByVisitor(ctx context.Context, visitorID id.VisitorID, statuses ...models.ScheduleStatus) ([]*models.Schedule, error) {
	if len(statuses) == 0 {
		return s.querySchedules(ctx, `
			SELECT `+scheduleColumns+` FROM schedules
			WHERE visitor_id = $1 ORDER BY created_at, id`, uuid.UUID(visitorID))
	}
	return s.querySchedules(ctx, `
		SELECT `+scheduleColumns+` FROM schedules
		WHERE visitor_id = $1 AND status = ANY($2) ORDER BY created_at, id`,
		uuid.UUID(visitorID), pq.Array(statusStrings(statuses)))
}

func (s *PostgresStore) ListSchedulesByStatus(ctx context.Context, statuses ...models.ScheduleStatus) ([]*models.Schedule, error) {
	if len(statuses) == 0 {
		return s.querySchedules(ctx, `
			SELECT `+scheduleColumns+` FROM schedules ORDER BY created_at, id`)
	}
	return s.querySchedules(ctx, `
		SELECT `+scheduleColumns+` FROM schedules
		WHERE status = ANY($1) ORDER BY created_at, id`,
		pq.Array(statusStrings(statuses)))
}

func (s *PostgresStore) querySchedules(ctx context.Context, query string, args ...any) ([]*models.Schedule, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	defer rows.Close()

	var out []*models.Schedule
	for rows.Next() {
		sc, err := s.scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schedules: %w", err)
	}
	return out, nil
}

// UpdateScheduleStatus changes the status only when the row still holds from.
func (s *PostgresStore) UpdateScheduleStatus(ctx context.Context, scheduleID id.ScheduleID, from, to models.ScheduleStatus, now time.Time) error {
	res, err := s.conn(ctx).ExecContext(ctx, `
		UPDATE schedules SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2`,
		uuid.UUID(scheduleID), string(from), string(to), now)
	if err != nil {
		return fmt.Errorf("update schedule status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update schedule status rows: %w", err)
	}
	if affected == 1 {
		return nil
	}

	var exists bool
	err = s.conn(ctx).QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM schedules WHERE id = $1)`,
		uuid.UUID(scheduleID)).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check schedule exists: %w", err)
	}
	if !exists {
		return sentinel.ErrNotFound
	}
	return sentinel.ErrInvalidState
}

// CreateScheduledCheckpoints inserts the whole snapshot in a single statement.
func (s *PostgresStore) CreateScheduledCheckpoints(ctx context.Context, checkpoints []*models.ScheduledCheckpoint) error {
	if len(checkpoints) == 0 {
		return nil
	}
	var (
		sb   strings.Builder
		args = make([]any, 0, len(checkpoints)*6)
	)
	sb.WriteString(`INSERT INTO scheduled_checkpoints
		(id, schedule_id, pavilion_id, checkpoint_order, estimated_duration, notes) VALUES `)
	for i, cp := range checkpoints {
		if i > 0 {
			sb.WriteString(", ")
		}
		n := i * 6
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5, n+6)
		args = append(args,
			uuid.UUID(cp.ID), uuid.UUID(cp.ScheduleID), uuid.UUID(cp.PavilionID),
			cp.Order, cp.EstimatedDuration, cp.Notes)
	}
	if _, err := s.conn(ctx).ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("create scheduled checkpoints: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListScheduledCheckpoints(ctx context.Context, scheduleID id.ScheduleID) ([]*models.ScheduledCheckpoint, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT id, schedule_id, pavilion_id, checkpoint_order, estimated_duration, notes
		FROM scheduled_checkpoints WHERE schedule_id = $1 ORDER BY checkpoint_order`,
		uuid.UUID(scheduleID))
	if err != nil {
		return nil, fmt.Errorf("list scheduled checkpoints: %w", err)
	}
	defer rows.Close()

	var out []*models.ScheduledCheckpoint
	for rows.Next() {
		var (
			rawID, rawSchedule, rawPavilion uuid.UUID
			cp                              models.ScheduledCheckpoint
		)
		if err := rows.Scan(&rawID, &rawSchedule, &rawPavilion, &cp.Order, &cp.EstimatedDuration, &cp.Notes); err != nil {
			return nil, fmt.Errorf("scan scheduled checkpoint: %w", err)
		}
		cp.ID = id.CheckpointID(rawID)
		cp.ScheduleID = id.ScheduleID(rawSchedule)
		cp.PavilionID = id.PavilionID(rawPavilion)
		out = append(out, &cp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scheduled checkpoints: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) AppendCheckpoint(ctx context.Context, record *models.CheckpointRecord) error {
	_, err := s.conn(ctx).ExecContext(ctx, `
		INSERT INTO checkpoint_records (id, visitor_id, pavilion_id, recorded_at, registered_by, status)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.UUID(record.ID), uuid.UUID(record.VisitorID), uuid.UUID(record.PavilionID),
		record.Timestamp, uuid.UUID(record.RegisteredBy), string(record.Status))
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("append checkpoint: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListCheckpointsByVisitor(ctx context.Context, visitorID id.VisitorID, status *models.RecordStatus) ([]*models.CheckpointRecord, error) {
	query := `
		SELECT id, visitor_id, pavilion_id, recorded_at, registered_by, status
		FROM checkpoint_records WHERE visitor_id = $1`
	args := []any{uuid.UUID(visitorID)}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, string(*status))
	}
	query += ` ORDER BY recorded_at, id`

	rows, err := s.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list checkpoint records: %w", err)
	}
	defer rows.Close()

	var out []*models.CheckpointRecord
	for rows.Next() {
		var (
			rawID, rawVisitor, rawPavilion, rawAgent uuid.UUID
			rawStatus                                string
			rec                                      models.CheckpointRecord
		)
		if err := rows.Scan(&rawID, &rawVisitor, &rawPavilion, &rec.Timestamp, &rawAgent, &rawStatus); err != nil {
			return nil, fmt.Errorf("scan checkpoint record: %w", err)
		}
		rec.ID = id.RecordID(rawID)
		rec.VisitorID = id.VisitorID(rawVisitor)
		rec.PavilionID = id.PavilionID(rawPavilion)
		rec.RegisteredBy = id.AgentID(rawAgent)
		rec.Status = models.RecordStatus(rawStatus)
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate checkpoint records: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPavilion(row rowScanner) (*models.Pavilion, error) {
	var (
		rawID    uuid.UUID
		lat, lng sql.NullFloat64
		p        models.Pavilion
	)
	if err := row.Scan(&rawID, &p.Name, &lat, &lng, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.ID = id.PavilionID(rawID)
	if lat.Valid && lng.Valid {
		p.Latitude, p.Longitude = &lat.Float64, &lng.Float64
	}
	return &p, nil
}

func (s *PostgresStore) scanSchedule(row rowScanner) (*models.Schedule, error) {
	var (
		rawID, rawVisitor, rawRoute, rawAgent uuid.UUID
		date                                  time.Time
		clock                                 sql.NullString
		status                                string
		sc                                    models.Schedule
	)
	err := row.Scan(&rawID, &rawVisitor, &rawRoute, &date, &clock, &sc.ExpectedDuration,
		&sc.Motive, &sc.Notes, &rawAgent, &status, &sc.CreatedAt, &sc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	sc.ID = id.ScheduleID(rawID)
	sc.VisitorID = id.VisitorID(rawVisitor)
	sc.RouteID = id.RouteID(rawRoute)
	sc.CreatedBy = id.AgentID(rawAgent)
	y, m, d := date.Date()
	sc.ScheduledDate = time.Date(y, m, d, 0, 0, 0, 0, s.loc)
	sc.ScheduledTime = clock.String
	sc.Status = models.ScheduleStatus(status)
	return &sc, nil
}

func statusStrings(statuses []models.ScheduleStatus) []string {
	out := make([]string, len(statuses))
	for i, st := range statuses {
		out[i] = string(st)
	}
	return out
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolation
	}
	return false
}
