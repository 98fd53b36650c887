// Package compliance drives schedule status from the visitor's checkpoint history.
package compliance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"visitflow/internal/audit"
	"visitflow/internal/visit/metrics"
	"visitflow/internal/visit/models"
	"visitflow/internal/visit/ports"
	id "visitflow/pkg/domain"
	dErrors "visitflow/pkg/domain-errors"
	"visitflow/pkg/platform/sentinel"
	"visitflow/pkg/requestcontext"
)

// Scope selects which checkpoint records count toward a schedule.
type Scope string

const (
	// ScopeVisitorLifetime counts every confirmed record of the visitor, including ones
	// from earlier, unrelated visits.
	ScopeVisitorLifetime Scope = "visitor_lifetime"
	// ScopeScheduleWindow counts only records taken at or after the schedule was created.
	ScopeScheduleWindow Scope = "schedule_window"
)

func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case "":
		return ScopeVisitorLifetime, nil
	case ScopeVisitorLifetime, ScopeScheduleWindow:
		return Scope(s), nil
	}
	return "", fmt.Errorf("unknown compliance scope %q", s)
}

// Service is the compliance evaluator.
type Service struct {
	schedules      ports.ScheduleStore
	checkpoints    ports.CheckpointStore
	scope          Scope
	listener       ports.Listener
	logger         *slog.Logger
	auditPublisher audit.Emitter
	metrics        *metrics.Metrics
	tracer         trace.Tracer
}

type Option func(*Service)

func WithScope(scope Scope) Option {
	return func(s *Service) {
		if scope != "" {
			s.scope = scope
		}
	}
}

// WithListener sets who is told about completed visits.
func WithListener(l ports.Listener) Option {
	return func(s *Service) {
		s.listener = l
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher audit.Emitter) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(schedules ports.ScheduleStore, checkpoints ports.CheckpointStore, opts ...Option) (*Service, error) {
	if schedules == nil {
		return nil, errors.New("schedule store is required")
	}
	if checkpoints == nil {
		return nil, errors.New("checkpoint store is required")
	}
	s := &Service{
		schedules:   schedules,
		checkpoints: checkpoints,
		scope:       ScopeVisitorLifetime,
		tracer:      otel.Tracer("visitflow/visit/compliance"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Service) Scope() Scope {
	return s.scope
}

// Evaluate applies the status transitions the visitor's history now supports to every
// active schedule of the visitor:
//
//   - confirmada -> em_andamento when exactly one qualifying record exists
//   - -> concluida when every planned pavilion has a qualifying record
//
// Terminal schedules are never loaded, so re-running is idempotent. Schedules without a
// snapshot are skipped. A failure on one schedule does not stop the others; the applied
// transitions are returned along with the joined errors.
func (s *Service) Evaluate(ctx context.Context, visitorID id.VisitorID) (_ []models.Transition, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "compliance.Evaluate", trace.WithAttributes(
		attribute.String("visitor_id", visitorID.String()),
		attribute.String("scope", string(s.scope)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		s.metrics.ObserveEvaluate(start)
	}()

	active, err := s.schedules.ListSchedulesByVisitor(ctx, visitorID, models.ActiveStatuses...)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load active schedules")
	}
	if len(active) == 0 {
		return nil, nil
	}
	check := models.RecordStatusCheck
	records, err := s.checkpoints.ListCheckpointsByVisitor(ctx, visitorID, &check)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load checkpoint records")
	}

	var (
		transitions []models.Transition
		errs        []error
	)
	for _, sc := range active {
		applied, err := s.evaluateSchedule(ctx, sc, records)
		transitions = append(transitions, applied...)
		if err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return transitions, dErrors.Wrap(errors.Join(errs...), dErrors.CodeInternal, "failed to evaluate schedules")
	}
	return transitions, nil
}

func (s *Service) evaluateSchedule(ctx context.Context, sc *models.Schedule, records []*models.CheckpointRecord) ([]models.Transition, error) {
	cps, err := s.schedules.ListScheduledCheckpoints(ctx, sc.ID)
	if err != nil {
		return nil, fmt.Errorf("schedule %s: %w", sc.ID, err)
	}
	if len(cps) == 0 {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "schedule has no checkpoints, skipping evaluation",
				"schedule_id", sc.ID.String(),
				"error", models.ErrIncompleteSchedule,
			)
		}
		return nil, nil
	}

	qualifying := s.qualifying(sc, records)
	visited := make(map[id.PavilionID]bool, len(qualifying))
	for _, rec := range qualifying {
		visited[rec.PavilionID] = true
	}

	var applied []models.Transition
	status := sc.Status

	if status == models.ScheduleStatusConfirmed && len(qualifying) == 1 {
		ok, err := s.move(ctx, sc, status, models.ScheduleStatusInProgress)
		if err != nil {
			return applied, err
		}
		if !ok {
			return applied, nil
		}
		applied = append(applied, models.Transition{ScheduleID: sc.ID, From: status, To: models.ScheduleStatusInProgress})
		status = models.ScheduleStatusInProgress
		s.logAudit(ctx, audit.ActionVisitStarted,
			"schedule_id", sc.ID.String(),
			"visitor_id", sc.VisitorID.String(),
		)
	}

	for _, pavilionID := range models.PlannedPavilions(cps) {
		if !visited[pavilionID] {
			return applied, nil
		}
	}
	ok, err := s.move(ctx, sc, status, models.ScheduleStatusCompleted)
	if err != nil || !ok {
		return applied, err
	}
	applied = append(applied, models.Transition{ScheduleID: sc.ID, From: status, To: models.ScheduleStatusCompleted})
	s.metrics.IncrementVisitsCompleted()
	s.logAudit(ctx, audit.ActionVisitCompleted,
		"schedule_id", sc.ID.String(),
		"visitor_id", sc.VisitorID.String(),
	)
	if s.listener != nil {
		s.listener.VisitCompleted(ctx, sc.ID)
	}
	return applied, nil
}

func (s *Service) qualifying(sc *models.Schedule, records []*models.CheckpointRecord) []*models.CheckpointRecord {
	if s.scope != ScopeScheduleWindow {
		return records
	}
	out := make([]*models.CheckpointRecord, 0, len(records))
	for _, rec := range records {
		if !rec.Timestamp.Before(sc.CreatedAt) {
			out = append(out, rec)
		}
	}
	return out
}

// move writes from -> to. It reports false without error when another writer changed
// the status first.
func (s *Service) move(ctx context.Context, sc *models.Schedule, from, to models.ScheduleStatus) (bool, error) {
	err := s.schedules.UpdateScheduleStatus(ctx, sc.ID, from, to, requestcontext.Now(ctx))
	if err != nil {
		if errors.Is(err, sentinel.ErrInvalidState) {
			if s.logger != nil {
				s.logger.InfoContext(ctx, "schedule status changed concurrently, skipping",
					"schedule_id", sc.ID.String(),
					"from", string(from),
					"to", string(to),
				)
			}
			return false, nil
		}
		return false, fmt.Errorf("schedule %s: move %s to %s: %w", sc.ID, from, to, err)
	}
	s.metrics.IncrementTransition(string(from), string(to))
	return true, nil
}

func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	audit.Log(ctx, s.logger, s.auditPublisher, event, attributes...)
}
