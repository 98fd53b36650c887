package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"visitflow/internal/visit/models"
	"visitflow/internal/visit/service/schedule"
	"visitflow/internal/visit/store"
	id "visitflow/pkg/domain"
	dErrors "visitflow/pkg/domain-errors"
	"visitflow/pkg/requestcontext"
)

type CatalogSuite struct {
	suite.Suite
	ctx     context.Context
	store   *store.InMemory
	service *Service
}

func TestCatalogSuite(t *testing.T) {
	suite.Run(t, new(CatalogSuite))
}

func (s *CatalogSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	s.store = store.NewInMemory()
	svc, err := New(s.store, s.store, s.store)
	s.Require().NoError(err)
	s.service = svc
}

func (s *CatalogSuite) pavilion(name string) *models.Pavilion {
	p, err := s.service.CreatePavilion(s.ctx, CreatePavilionRequest{Name: name})
	s.Require().NoError(err)
	return p
}

func (s *CatalogSuite) TestPavilions() {
	s.pavilion("Bloco B")
	s.pavilion("Bloco A")

	_, err := s.service.CreatePavilion(s.ctx, CreatePavilionRequest{Name: "  "})
	s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))

	lat := -23.5
	_, err = s.service.CreatePavilion(s.ctx, CreatePavilionRequest{Name: "Portaria", Latitude: &lat})
	s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation), "coordinates come in pairs")

	list, err := s.service.ListPavilions(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal("Bloco A", list[0].Name)
}

func (s *CatalogSuite) TestVisitors() {
	v, err := s.service.CreateVisitor(s.ctx, CreateVisitorRequest{Name: " Maria ", Document: "123"})
	s.Require().NoError(err)
	s.Equal("Maria", v.Name)

	got, err := s.service.GetVisitor(s.ctx, v.ID)
	s.Require().NoError(err)
	s.Equal(v.ID, got.ID)

	_, err = s.service.GetVisitor(s.ctx, id.NewVisitorID())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *CatalogSuite) TestCreateRoute() {
	a, b := s.pavilion("A"), s.pavilion("B")

	route, err := s.service.CreateRoute(s.ctx, CreateRouteRequest{
		Name: "Triagem",
		Checkpoints: []models.RouteCheckpoint{
			{PavilionID: b.ID, Order: 20},
			{PavilionID: a.ID, Order: 10},
		},
	})
	s.Require().NoError(err)
	s.Equal(a.ID, route.Checkpoints[0].PavilionID)

	s.Run("unknown pavilion", func() {
		_, err := s.service.CreateRoute(s.ctx, CreateRouteRequest{
			Name:        "Quebrada",
			Checkpoints: []models.RouteCheckpoint{{PavilionID: id.NewPavilionID(), Order: 1}},
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
	s.Run("duplicate order", func() {
		_, err := s.service.CreateRoute(s.ctx, CreateRouteRequest{
			Name:        "Duplicada",
			Checkpoints: []models.RouteCheckpoint{{PavilionID: a.ID, Order: 1}, {PavilionID: b.ID, Order: 1}},
		})
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func (s *CatalogSuite) TestReplaceCheckpointsLeavesSnapshotsAlone() {
	a, b, c := s.pavilion("A"), s.pavilion("B"), s.pavilion("C")
	visitor, err := s.service.CreateVisitor(s.ctx, CreateVisitorRequest{Name: "João"})
	s.Require().NoError(err)
	route, err := s.service.CreateRoute(s.ctx, CreateRouteRequest{
		Name:        "Visita",
		Checkpoints: []models.RouteCheckpoint{{PavilionID: a.ID, Order: 1}, {PavilionID: b.ID, Order: 2}},
	})
	s.Require().NoError(err)

	schedules, err := schedule.New(s.store, s.store, s.store)
	s.Require().NoError(err)
	sc, err := schedules.CreateSchedule(s.ctx, schedule.CreateScheduleRequest{
		VisitorID:        visitor.ID,
		RouteID:          route.ID,
		ScheduledAt:      time.Date(2024, 3, 1, 14, 0, 0, 0, time.UTC),
		HasTime:          true,
		ExpectedDuration: "1h",
		Motive:           "visita",
	})
	s.Require().NoError(err)

	updated, err := s.service.ReplaceRouteCheckpoints(s.ctx, route.ID, []models.RouteCheckpoint{{PavilionID: c.ID, Order: 1}})
	s.Require().NoError(err)
	s.Len(updated.Checkpoints, 1)

	details, err := schedules.Get(s.ctx, sc.ID)
	s.Require().NoError(err)
	s.Equal([]id.PavilionID{a.ID, b.ID}, models.PlannedPavilions(details.Checkpoints))

	_, err = s.service.ReplaceRouteCheckpoints(s.ctx, id.NewRouteID(), nil)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
