// Package checkpoint admits checkpoint registrations against the visitor's active plan.
package checkpoint

import (
	"context"
	"errors"
	"log/slog"
	"slices"
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

// Evaluator is the compliance step run after every accepted record.
type Evaluator interface {
	Evaluate(ctx context.Context, visitorID id.VisitorID) ([]models.Transition, error)
}

// RegisterResult is the outcome of an accepted registration. EvaluationErr is set when the
// record was written but the follow-up evaluation failed; the record stands either way.
type RegisterResult struct {
	Record        *models.CheckpointRecord
	Transitions   []models.Transition
	EvaluationErr error
}

// Service is the checkpoint recorder.
type Service struct {
	pavilions      ports.PavilionStore
	schedules      ports.ScheduleStore
	checkpoints    ports.CheckpointStore
	locker         ports.VisitorLocker
	evaluator      Evaluator
	logger         *slog.Logger
	auditPublisher audit.Emitter
	metrics        *metrics.Metrics
	tracer         trace.Tracer
}

type Option func(*Service)

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

func New(
	pavilions ports.PavilionStore,
	schedules ports.ScheduleStore,
	checkpoints ports.CheckpointStore,
	locker ports.VisitorLocker,
	evaluator Evaluator,
	opts ...Option,
) (*Service, error) {
	switch {
	case pavilions == nil:
		return nil, errors.New("pavilion store is required")
	case schedules == nil:
		return nil, errors.New("schedule store is required")
	case checkpoints == nil:
		return nil, errors.New("checkpoint store is required")
	case locker == nil:
		return nil, errors.New("visitor locker is required")
	case evaluator == nil:
		return nil, errors.New("compliance evaluator is required")
	}
	s := &Service{
		pavilions:   pavilions,
		schedules:   schedules,
		checkpoints: checkpoints,
		locker:      locker,
		evaluator:   evaluator,
		tracer:      otel.Tracer("visitflow/visit/checkpoint"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// RegisterCheckpoint records that visitorID passed pavilionID.
//
// Visitors with no usable active schedule may check in anywhere. Otherwise the pavilion
// must belong to one of their active plans, or a route violation carrying the allowed
// pavilions is returned and nothing is written. Accepted records are evaluated for
// compliance before returning, under the same per-visitor lock. A nil registeredBy
// falls back to the agent on the request context.
func (s *Service) RegisterCheckpoint(ctx context.Context, visitorID id.VisitorID, pavilionID id.PavilionID, registeredBy id.AgentID) (_ *RegisterResult, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "checkpoint.Register", trace.WithAttributes(
		attribute.String("visitor_id", visitorID.String()),
		attribute.String("pavilion_id", pavilionID.String()),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			if !dErrors.HasCode(err, dErrors.CodeRouteViolation) {
				s.metrics.IncrementRegistration(metrics.OutcomeError)
			}
		}
		span.End()
		s.metrics.ObserveRegister(start)
	}()

	if visitorID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "visitor_id is required")
	}
	if pavilionID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "pavilion_id is required")
	}
	if registeredBy.IsNil() {
		registeredBy = requestcontext.AgentID(ctx)
	}
	if _, err := s.pavilions.FindPavilion(ctx, pavilionID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "pavilion not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load pavilion")
	}

	unlock, err := s.locker.Lock(ctx, visitorID)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "timed out waiting for visitor lock")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to lock visitor")
	}
	defer unlock()

	allowed, planned, err := s.allowedPavilions(ctx, visitorID)
	if err != nil {
		return nil, err
	}
	if planned && !slices.Contains(allowed, pavilionID) {
		s.metrics.IncrementRegistration(metrics.OutcomeRouteViolation)
		s.logAudit(ctx, audit.ActionRouteViolation,
			"visitor_id", visitorID.String(),
			"pavilion_id", pavilionID.String(),
			"agent_id", registeredBy.String(),
			"allowed", len(allowed),
		)
		return nil, dErrors.Wrap(&models.RouteViolation{
			VisitorID:  visitorID,
			PavilionID: pavilionID,
			Allowed:    allowed,
		}, dErrors.CodeRouteViolation, "pavilion is not part of the visitor's active route")
	}

	record := &models.CheckpointRecord{
		ID:           id.NewRecordID(),
		VisitorID:    visitorID,
		PavilionID:   pavilionID,
		Timestamp:    requestcontext.Now(ctx),
		RegisteredBy: registeredBy,
		Status:       models.RecordStatusCheck,
	}
	if err := s.checkpoints.AppendCheckpoint(ctx, record); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record checkpoint")
	}
	s.metrics.IncrementRegistration(metrics.OutcomeRecorded)
	s.logAudit(ctx, audit.ActionCheckpointRecorded,
		"visitor_id", visitorID.String(),
		"pavilion_id", pavilionID.String(),
		"agent_id", registeredBy.String(),
		"record_id", record.ID.String(),
	)

	result := &RegisterResult{Record: record}
	result.Transitions, result.EvaluationErr = s.evaluator.Evaluate(ctx, visitorID)
	if result.EvaluationErr != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "compliance evaluation failed after checkpoint was recorded",
			"visitor_id", visitorID.String(),
			"record_id", record.ID.String(),
			"error", result.EvaluationErr,
		)
	}
	return result, nil
}

// allowedPavilions returns the union of planned pavilions over the visitor's active
// schedules, ordered by schedule age then checkpoint order. planned is false when no
// active schedule has a snapshot.
func (s *Service) allowedPavilions(ctx context.Context, visitorID id.VisitorID) (allowed []id.PavilionID, planned bool, err error) {
	active, err := s.schedules.ListSchedulesByVisitor(ctx, visitorID, models.ActiveStatuses...)
	if err != nil {
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load active schedules")
	}
	seen := make(map[id.PavilionID]bool)
	for _, sc := range active {
		cps, err := s.schedules.ListScheduledCheckpoints(ctx, sc.ID)
		if err != nil {
			return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load scheduled checkpoints")
		}
		if len(cps) == 0 {
			if s.logger != nil {
				s.logger.WarnContext(ctx, "ignoring active schedule without checkpoints",
					"schedule_id", sc.ID.String(),
					"visitor_id", visitorID.String(),
					"error", models.ErrIncompleteSchedule,
				)
			}
			continue
		}
		planned = true
		for _, pavilionID := range models.PlannedPavilions(cps) {
			if !seen[pavilionID] {
				seen[pavilionID] = true
				allowed = append(allowed, pavilionID)
			}
		}
	}
	return allowed, planned, nil
}

// ListByVisitor returns every record of the visitor, oldest first.
func (s *Service) ListByVisitor(ctx context.Context, visitorID id.VisitorID) ([]*models.CheckpointRecord, error) {
	records, err := s.checkpoints.ListCheckpointsByVisitor(ctx, visitorID, nil)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list checkpoint records")
	}
	return records, nil
}

func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	audit.Log(ctx, s.logger, s.auditPublisher, event, attributes...)
}
