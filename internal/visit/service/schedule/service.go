// Package schedule creates visit schedules and snapshots their routes.
package schedule

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"visitflow/internal/audit"
	"visitflow/internal/visit/duration"
	"visitflow/internal/visit/metrics"
	"visitflow/internal/visit/models"
	"visitflow/internal/visit/ports"
	id "visitflow/pkg/domain"
	dErrors "visitflow/pkg/domain-errors"
	"visitflow/pkg/platform/sentinel"
	"visitflow/pkg/requestcontext"
)

// Service is the schedule manager.
type Service struct {
	visitors       ports.VisitorStore
	routes         ports.RouteStore
	schedules      ports.ScheduleStore
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

func New(visitors ports.VisitorStore, routes ports.RouteStore, schedules ports.ScheduleStore, opts ...Option) (*Service, error) {
	if visitors == nil {
		return nil, errors.New("visitor store is required")
	}
	if routes == nil {
		return nil, errors.New("route store is required")
	}
	if schedules == nil {
		return nil, errors.New("schedule store is required")
	}
	s := &Service{
		visitors:  visitors,
		routes:    routes,
		schedules: schedules,
		tracer:    otel.Tracer("visitflow/visit/schedule"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// CreateScheduleRequest carries the inputs of CreateSchedule.
type CreateScheduleRequest struct {
	VisitorID id.VisitorID
	RouteID   id.RouteID
	// ScheduledAt is the visit day; its clock part is kept only when HasTime is set.
	ScheduledAt      time.Time
	HasTime          bool
	ExpectedDuration string
	Motive           string
	Notes            string
	CreatedBy        id.AgentID
}

func (r *CreateScheduleRequest) Normalize() {
	r.Motive = strings.TrimSpace(r.Motive)
	r.Notes = strings.TrimSpace(r.Notes)
	r.ExpectedDuration = strings.TrimSpace(r.ExpectedDuration)
}

func (r *CreateScheduleRequest) Validate() error {
	if r.VisitorID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "visitor_id is required")
	}
	if r.RouteID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "route_id is required")
	}
	if r.ScheduledAt.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "scheduled date is required")
	}
	if r.Motive == "" {
		return dErrors.New(dErrors.CodeValidation, "motive is required")
	}
	return nil
}

// CreateSchedule stores a confirmed schedule and a frozen copy of its route.
//
// The two inserts are independent round trips. When the snapshot insert fails the
// schedule row stays behind without checkpoints; the returned error names it and every
// reader treats it as incomplete.
func (s *Service) CreateSchedule(ctx context.Context, req CreateScheduleRequest) (_ *models.Schedule, err error) {
	ctx, span := s.tracer.Start(ctx, "schedule.Create")
	defer func() { endSpan(span, err) }()

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.CreatedBy.IsNil() {
		req.CreatedBy = requestcontext.AgentID(ctx)
	}

	if _, err := s.visitors.FindVisitor(ctx, req.VisitorID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "visitor not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load visitor")
	}
	route, err := s.routes.FindRoute(ctx, req.RouteID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "route not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load route")
	}
	if len(route.Checkpoints) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "route has no checkpoints")
	}
	if _, perr := duration.ParseStrict(req.ExpectedDuration); perr != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "expected duration treated as zero",
			"expected_duration", req.ExpectedDuration,
			"error", perr,
		)
	}

	now := requestcontext.Now(ctx)
	sc := &models.Schedule{
		ID:               id.NewScheduleID(),
		VisitorID:        req.VisitorID,
		RouteID:          req.RouteID,
		ScheduledDate:    req.ScheduledAt,
		ExpectedDuration: req.ExpectedDuration,
		Motive:           req.Motive,
		Notes:            req.Notes,
		CreatedBy:        req.CreatedBy,
		Status:           models.ScheduleStatusConfirmed,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if req.HasTime {
		sc.ScheduledTime = models.FormatClock(req.ScheduledAt)
	}
	span.SetAttributes(attribute.String("schedule_id", sc.ID.String()))

	if err := s.schedules.CreateSchedule(ctx, sc); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create schedule")
	}

	snapshot := models.SnapshotRoute(sc.ID, route, sc.ExpectedDuration)
	if err := s.schedules.CreateScheduledCheckpoints(ctx, snapshot); err != nil {
		s.logAudit(ctx, audit.ActionScheduleIncomplete,
			"schedule_id", sc.ID.String(),
			"visitor_id", sc.VisitorID.String(),
			"error", err.Error(),
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal,
			"schedule "+sc.ID.String()+" was created without its checkpoints")
	}

	s.metrics.IncrementSchedulesCreated()
	s.logAudit(ctx, audit.ActionScheduleCreated,
		"schedule_id", sc.ID.String(),
		"visitor_id", sc.VisitorID.String(),
		"route_id", sc.RouteID.String(),
		"agent_id", sc.CreatedBy.String(),
		"checkpoints", len(snapshot),
	)
	return sc, nil
}

// Get returns the schedule with its checkpoint snapshot.
func (s *Service) Get(ctx context.Context, scheduleID id.ScheduleID) (*models.ScheduleDetails, error) {
	sc, err := s.load(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	cps, err := s.schedules.ListScheduledCheckpoints(ctx, scheduleID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load scheduled checkpoints")
	}
	return &models.ScheduleDetails{Schedule: sc, Checkpoints: cps, Incomplete: len(cps) == 0}, nil
}

// ListByVisitor returns every schedule of the visitor, oldest first.
func (s *Service) ListByVisitor(ctx context.Context, visitorID id.VisitorID) ([]*models.Schedule, error) {
	list, err := s.schedules.ListSchedulesByVisitor(ctx, visitorID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list schedules")
	}
	return list, nil
}

// Confirm moves a pending schedule to confirmada.
func (s *Service) Confirm(ctx context.Context, scheduleID id.ScheduleID) (*models.Schedule, error) {
	sc, err := s.transition(ctx, scheduleID, models.ScheduleStatusConfirmed)
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, audit.ActionScheduleConfirmed,
		"schedule_id", sc.ID.String(),
		"visitor_id", sc.VisitorID.String(),
		"agent_id", requestcontext.AgentID(ctx).String(),
	)
	return sc, nil
}

// Cancel moves any non-terminal schedule to cancelada.
func (s *Service) Cancel(ctx context.Context, scheduleID id.ScheduleID, reason string) (*models.Schedule, error) {
	sc, err := s.transition(ctx, scheduleID, models.ScheduleStatusCancelled)
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, audit.ActionScheduleCancelled,
		"schedule_id", sc.ID.String(),
		"visitor_id", sc.VisitorID.String(),
		"agent_id", requestcontext.AgentID(ctx).String(),
		"reason", strings.TrimSpace(reason),
	)
	return sc, nil
}

func (s *Service) transition(ctx context.Context, scheduleID id.ScheduleID, next models.ScheduleStatus) (_ *models.Schedule, err error) {
	ctx, span := s.tracer.Start(ctx, "schedule.Transition", trace.WithAttributes(
		attribute.String("schedule_id", scheduleID.String()),
		attribute.String("to", string(next)),
	))
	defer func() { endSpan(span, err) }()

	sc, err := s.load(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if err := sc.CanTransitionTo(next); err != nil {
		return nil, err
	}
	from := sc.Status
	now := requestcontext.Now(ctx)
	if err := s.schedules.UpdateScheduleStatus(ctx, scheduleID, from, next, now); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrInvalidState):
			return nil, dErrors.New(dErrors.CodeConflict, "schedule status changed concurrently")
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "schedule not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update schedule status")
	}
	sc.ApplyTransition(next, now)
	s.metrics.IncrementTransition(string(from), string(next))
	return sc, nil
}

func (s *Service) load(ctx context.Context, scheduleID id.ScheduleID) (*models.Schedule, error) {
	sc, err := s.schedules.FindSchedule(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "schedule not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load schedule")
	}
	return sc, nil
}

func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	audit.Log(ctx, s.logger, s.auditPublisher, event, attributes...)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
