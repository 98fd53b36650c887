// Package handler exposes the visit engine over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"visitflow/internal/audit"
	"visitflow/internal/visit/models"
	"visitflow/internal/visit/service/catalog"
	"visitflow/internal/visit/service/checkpoint"
	"visitflow/internal/visit/service/schedule"
	id "visitflow/pkg/domain"
	dErrors "visitflow/pkg/domain-errors"
	"visitflow/pkg/platform/httputil"
	"visitflow/pkg/requestcontext"
)

// CatalogService manages pavilions, visitors and routes.
type CatalogService interface {
	CreatePavilion(ctx context.Context, req catalog.CreatePavilionRequest) (*models.Pavilion, error)
	ListPavilions(ctx context.Context) ([]*models.Pavilion, error)
	CreateVisitor(ctx context.Context, req catalog.CreateVisitorRequest) (*models.Visitor, error)
	GetVisitor(ctx context.Context, visitorID id.VisitorID) (*models.Visitor, error)
	CreateRoute(ctx context.Context, req catalog.CreateRouteRequest) (*models.Route, error)
	GetRoute(ctx context.Context, routeID id.RouteID) (*models.Route, error)
	ReplaceRouteCheckpoints(ctx context.Context, routeID id.RouteID, checkpoints []models.RouteCheckpoint) (*models.Route, error)
}

// ScheduleService creates and moves schedules.
type ScheduleService interface {
	CreateSchedule(ctx context.Context, req schedule.CreateScheduleRequest) (*models.Schedule, error)
	Get(ctx context.Context, scheduleID id.ScheduleID) (*models.ScheduleDetails, error)
	ListByVisitor(ctx context.Context, visitorID id.VisitorID) ([]*models.Schedule, error)
	Confirm(ctx context.Context, scheduleID id.ScheduleID) (*models.Schedule, error)
	Cancel(ctx context.Context, scheduleID id.ScheduleID, reason string) (*models.Schedule, error)
}

// CheckpointService records checkpoint passages.
type CheckpointService interface {
	RegisterCheckpoint(ctx context.Context, visitorID id.VisitorID, pavilionID id.PavilionID, registeredBy id.AgentID) (*checkpoint.RegisterResult, error)
	ListByVisitor(ctx context.Context, visitorID id.VisitorID) ([]*models.CheckpointRecord, error)
}

// OverdueService builds the overdue report.
type OverdueService interface {
	Detect(ctx context.Context) ([]models.OverdueVisit, error)
}

// AuditTrail reads the persisted audit events of a visitor.
type AuditTrail interface {
	List(ctx context.Context, visitorID id.VisitorID) ([]audit.Event, error)
}

// Services groups the collaborators the handler delegates to. Audit may be nil.
type Services struct {
	Catalog     CatalogService
	Schedules   ScheduleService
	Checkpoints CheckpointService
	Overdue     OverdueService
	Audit       AuditTrail
}

// Handler wires visit endpoints to the visit services.
type Handler struct {
	services Services
	location *time.Location
	logger   *slog.Logger
}

// New constructs a visit handler. Schedule dates and times in requests are read in loc.
func New(services Services, loc *time.Location, logger *slog.Logger) *Handler {
	if loc == nil {
		loc = time.Local
	}
	return &Handler{services: services, location: loc, logger: logger}
}

// Register mounts visit endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/pavilions", h.HandleCreatePavilion)
	r.Get("/pavilions", h.HandleListPavilions)

	r.Post("/visitors", h.HandleCreateVisitor)
	r.Get("/visitors/{id}", h.HandleGetVisitor)
	r.Get("/visitors/{id}/schedules", h.HandleListVisitorSchedules)
	r.Get("/visitors/{id}/checkpoints", h.HandleListVisitorCheckpoints)
	r.Get("/visitors/{id}/audit", h.HandleVisitorAudit)

	r.Post("/routes", h.HandleCreateRoute)
	r.Get("/routes/{id}", h.HandleGetRoute)
	r.Put("/routes/{id}/checkpoints", h.HandleReplaceRouteCheckpoints)

	r.Post("/schedules", h.HandleCreateSchedule)
	r.Get("/schedules/{id}", h.HandleGetSchedule)
	r.Post("/schedules/{id}/confirm", h.HandleConfirmSchedule)
	r.Post("/schedules/{id}/cancel", h.HandleCancelSchedule)

	r.Post("/checkpoints", h.HandleRegisterCheckpoint)
	r.Get("/overdue", h.HandleListOverdue)
}

// HandleCreatePavilion handles POST /pavilions.
func (h *Handler) HandleCreatePavilion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[CreatePavilionRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	pavilion, err := h.services.Catalog.CreatePavilion(ctx, catalog.CreatePavilionRequest{
		Name:      req.Name,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
	if err != nil {
		h.fail(ctx, w, "create pavilion failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, pavilion)
}

// HandleListPavilions handles GET /pavilions.
func (h *Handler) HandleListPavilions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pavilions, err := h.services.Catalog.ListPavilions(ctx)
	if err != nil {
		h.fail(ctx, w, "list pavilions failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, nonNil(pavilions))
}

// HandleCreateVisitor handles POST /visitors.
func (h *Handler) HandleCreateVisitor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[CreateVisitorRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	visitor, err := h.services.Catalog.CreateVisitor(ctx, catalog.CreateVisitorRequest{Name: req.Name, Document: req.Document})
	if err != nil {
		h.fail(ctx, w, "create visitor failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, visitor)
}

// HandleGetVisitor handles GET /visitors/{id}.
func (h *Handler) HandleGetVisitor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	visitorID, err := id.ParseVisitorID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	visitor, err := h.services.Catalog.GetVisitor(ctx, visitorID)
	if err != nil {
		h.fail(ctx, w, "get visitor failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, visitor)
}

// HandleListVisitorSchedules handles GET /visitors/{id}/schedules.
func (h *Handler) HandleListVisitorSchedules(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	visitorID, err := id.ParseVisitorID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	schedules, err := h.services.Schedules.ListByVisitor(ctx, visitorID)
	if err != nil {
		h.fail(ctx, w, "list schedules failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, nonNil(schedules))
}

// HandleListVisitorCheckpoints handles GET /visitors/{id}/checkpoints.
func (h *Handler) HandleListVisitorCheckpoints(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	visitorID, err := id.ParseVisitorID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	records, err := h.services.Checkpoints.ListByVisitor(ctx, visitorID)
	if err != nil {
		h.fail(ctx, w, "list checkpoint records failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, nonNil(records))
}

// HandleVisitorAudit handles GET /visitors/{id}/audit.
func (h *Handler) HandleVisitorAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.services.Audit == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "audit trail is not enabled"))
		return
	}
	visitorID, err := id.ParseVisitorID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	events, err := h.services.Audit.List(ctx, visitorID)
	if err != nil {
		h.fail(ctx, w, "list audit events failed", dErrors.Wrap(err, dErrors.CodeInternal, "failed to list audit events"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, AuditResponse{Events: nonNil(events)})
}

// HandleCreateRoute handles POST /routes.
func (h *Handler) HandleCreateRoute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[CreateRouteRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	route, err := h.services.Catalog.CreateRoute(ctx, catalog.CreateRouteRequest{Name: req.Name, Checkpoints: req.parsedCheckpoints})
	if err != nil {
		h.fail(ctx, w, "create route failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, route)
}

// HandleGetRoute handles GET /routes/{id}.
func (h *Handler) HandleGetRoute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	routeID, err := id.ParseRouteID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	route, err := h.services.Catalog.GetRoute(ctx, routeID)
	if err != nil {
		h.fail(ctx, w, "get route failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, route)
}

// HandleReplaceRouteCheckpoints handles PUT /routes/{id}/checkpoints.
func (h *Handler) HandleReplaceRouteCheckpoints(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	routeID, err := id.ParseRouteID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[ReplaceCheckpointsRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	route, err := h.services.Catalog.ReplaceRouteCheckpoints(ctx, routeID, req.parsedCheckpoints)
	if err != nil {
		h.fail(ctx, w, "replace route checkpoints failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, route)
}

// HandleCreateSchedule handles POST /schedules.
func (h *Handler) HandleCreateSchedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[CreateScheduleRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	sc, err := h.services.Schedules.CreateSchedule(ctx, schedule.CreateScheduleRequest{
		VisitorID:        req.visitorID,
		RouteID:          req.routeID,
		ScheduledAt:      req.ScheduledAt(h.location),
		HasTime:          req.hasTime,
		ExpectedDuration: req.ExpectedDuration,
		Motive:           req.Motive,
		Notes:            req.Notes,
		CreatedBy:        requestcontext.AgentID(ctx),
	})
	if err != nil {
		h.fail(ctx, w, "create schedule failed", err)
		return
	}
	h.logger.InfoContext(ctx, "schedule created",
		"request_id", requestID,
		"schedule_id", sc.ID.String(),
		"visitor_id", sc.VisitorID.String(),
	)
	httputil.WriteJSON(w, http.StatusCreated, sc)
}

// HandleGetSchedule handles GET /schedules/{id}.
func (h *Handler) HandleGetSchedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	scheduleID, err := id.ParseScheduleID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	details, err := h.services.Schedules.Get(ctx, scheduleID)
	if err != nil {
		h.fail(ctx, w, "get schedule failed", err)
		return
	}
	details.Checkpoints = nonNil(details.Checkpoints)
	httputil.WriteJSON(w, http.StatusOK, details)
}

// HandleConfirmSchedule handles POST /schedules/{id}/confirm.
func (h *Handler) HandleConfirmSchedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	scheduleID, err := id.ParseScheduleID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	sc, err := h.services.Schedules.Confirm(ctx, scheduleID)
	if err != nil {
		h.fail(ctx, w, "confirm schedule failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sc)
}

// HandleCancelSchedule handles POST /schedules/{id}/cancel. The body is optional.
func (h *Handler) HandleCancelSchedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	scheduleID, err := id.ParseScheduleID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var reason string
	if r.ContentLength != 0 && r.Body != http.NoBody {
		req, ok := httputil.DecodeAndPrepare[CancelScheduleRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
		if !ok {
			return
		}
		reason = req.Reason
	}
	sc, err := h.services.Schedules.Cancel(ctx, scheduleID, reason)
	if err != nil {
		h.fail(ctx, w, "cancel schedule failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sc)
}

// HandleRegisterCheckpoint handles POST /checkpoints.
func (h *Handler) HandleRegisterCheckpoint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[RegisterCheckpointRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	pavilionID := req.pavilionID
	if pavilionID.IsNil() {
		posted, ok := requestcontext.AgentPavilion(ctx)
		if !ok {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "pavilion_id is required"))
			return
		}
		pavilionID = posted
	}

	result, err := h.services.Checkpoints.RegisterCheckpoint(ctx, req.visitorID, pavilionID, requestcontext.AgentID(ctx))
	if err != nil {
		if violation, ok := models.AsRouteViolation(err); ok {
			h.logger.InfoContext(ctx, "checkpoint rejected by route",
				"request_id", requestID,
				"visitor_id", req.visitorID.String(),
				"pavilion_id", pavilionID.String(),
			)
			httputil.WriteJSON(w, http.StatusUnprocessableEntity, RouteViolationResponse{
				Error:            string(dErrors.CodeRouteViolation),
				ErrorDescription: "pavilion is not part of the visitor's active route",
				AllowedPavilions: nonNil(violation.Allowed),
			})
			return
		}
		h.fail(ctx, w, "register checkpoint failed", err)
		return
	}

	h.logger.InfoContext(ctx, "checkpoint registered",
		"request_id", requestID,
		"visitor_id", req.visitorID.String(),
		"pavilion_id", pavilionID.String(),
		"transitions", len(result.Transitions),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, fromRegisterResult(result))
}

// HandleListOverdue handles GET /overdue.
func (h *Handler) HandleListOverdue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	visits, err := h.services.Overdue.Detect(ctx)
	if err != nil {
		h.fail(ctx, w, "overdue detection failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, OverdueResponse{Count: len(visits), Visits: nonNil(visits)})
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	level := slog.LevelInfo
	if httputil.StatusFor(err) >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}
