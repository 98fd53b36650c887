// Package catalog manages the reference data schedules are built from: pavilions,
// visitors and route templates.
package catalog

import (
	"context"
	"errors"
	"log/slog"

	"visitflow/internal/audit"
	"visitflow/internal/visit/models"
	"visitflow/internal/visit/ports"
	id "visitflow/pkg/domain"
	dErrors "visitflow/pkg/domain-errors"
	"visitflow/pkg/platform/sentinel"
	"visitflow/pkg/requestcontext"
)

type Service struct {
	pavilions      ports.PavilionStore
	visitors       ports.VisitorStore
	routes         ports.RouteStore
	logger         *slog.Logger
	auditPublisher audit.Emitter
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

func New(pavilions ports.PavilionStore, visitors ports.VisitorStore, routes ports.RouteStore, opts ...Option) (*Service, error) {
	switch {
	case pavilions == nil:
		return nil, errors.New("pavilion store is required")
	case visitors == nil:
		return nil, errors.New("visitor store is required")
	case routes == nil:
		return nil, errors.New("route store is required")
	}
	s := &Service{pavilions: pavilions, visitors: visitors, routes: routes}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

type CreatePavilionRequest struct {
	Name      string   `json:"name"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

func (s *Service) CreatePavilion(ctx context.Context, req CreatePavilionRequest) (*models.Pavilion, error) {
	pavilion, err := models.NewPavilion(id.NewPavilionID(), req.Name, req.Latitude, req.Longitude, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.pavilions.SavePavilion(ctx, pavilion); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save pavilion")
	}
	return pavilion, nil
}

func (s *Service) ListPavilions(ctx context.Context) ([]*models.Pavilion, error) {
	pavilions, err := s.pavilions.ListPavilions(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list pavilions")
	}
	return pavilions, nil
}

type CreateVisitorRequest struct {
	Name     string `json:"name"`
	Document string `json:"document,omitempty"`
}

func (s *Service) CreateVisitor(ctx context.Context, req CreateVisitorRequest) (*models.Visitor, error) {
	visitor, err := models.NewVisitor(id.NewVisitorID(), req.Name, req.Document, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.visitors.SaveVisitor(ctx, visitor); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save visitor")
	}
	return visitor, nil
}

func (s *Service) GetVisitor(ctx context.Context, visitorID id.VisitorID) (*models.Visitor, error) {
	visitor, err := s.visitors.FindVisitor(ctx, visitorID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "visitor not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load visitor")
	}
	return visitor, nil
}

type CreateRouteRequest struct {
	Name        string                   `json:"name"`
	Checkpoints []models.RouteCheckpoint `json:"checkpoints"`
}

func (s *Service) CreateRoute(ctx context.Context, req CreateRouteRequest) (*models.Route, error) {
	if err := s.requirePavilions(ctx, req.Checkpoints); err != nil {
		return nil, err
	}
	route, err := models.NewRoute(id.NewRouteID(), req.Name, req.Checkpoints, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.routes.SaveRoute(ctx, route); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save route")
	}
	return route, nil
}

func (s *Service) GetRoute(ctx context.Context, routeID id.RouteID) (*models.Route, error) {
	route, err := s.routes.FindRoute(ctx, routeID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "route not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load route")
	}
	return route, nil
}

// ReplaceRouteCheckpoints installs a new checkpoint list on a route template. Schedules
// already created from the route keep their snapshot.
func (s *Service) ReplaceRouteCheckpoints(ctx context.Context, routeID id.RouteID, checkpoints []models.RouteCheckpoint) (*models.Route, error) {
	route, err := s.GetRoute(ctx, routeID)
	if err != nil {
		return nil, err
	}
	if err := s.requirePavilions(ctx, checkpoints); err != nil {
		return nil, err
	}
	if err := route.ReplaceCheckpoints(checkpoints, requestcontext.Now(ctx)); err != nil {
		return nil, err
	}
	if err := s.routes.SaveRoute(ctx, route); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save route")
	}
	audit.Log(ctx, s.logger, s.auditPublisher, audit.ActionRouteCheckpointsSet,
		"route_id", routeID.String(),
		"agent_id", requestcontext.AgentID(ctx).String(),
		"checkpoints", len(checkpoints),
	)
	return route, nil
}

func (s *Service) requirePavilions(ctx context.Context, checkpoints []models.RouteCheckpoint) error {
	checked := make(map[id.PavilionID]bool, len(checkpoints))
	for _, cp := range checkpoints {
		if cp.PavilionID.IsNil() || checked[cp.PavilionID] {
			continue
		}
		if _, err := s.pavilions.FindPavilion(ctx, cp.PavilionID); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeValidation, "route references unknown pavilion "+cp.PavilionID.String())
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load pavilion")
		}
		checked[cp.PavilionID] = true
	}
	return nil
}
