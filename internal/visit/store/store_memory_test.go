package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"visitflow/internal/visit/models"
	id "visitflow/pkg/domain"
	"visitflow/pkg/platform/sentinel"
)

type InMemorySuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
	now   time.Time
}

func TestInMemorySuite(t *testing.T) {
	suite.Run(t, new(InMemorySuite))
}

func (s *InMemorySuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.now = time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
}

func (s *InMemorySuite) newSchedule(visitorID id.VisitorID, status models.ScheduleStatus, createdAt time.Time) *models.Schedule {
	return &models.Schedule{
		ID:            id.NewScheduleID(),
		VisitorID:     visitorID,
		RouteID:       id.NewRouteID(),
		ScheduledDate: createdAt,
		Status:        status,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
}

func (s *InMemorySuite) TestReferenceData() {
	s.Run("pavilions are listed by name", func() {
		b, err := models.NewPavilion(id.NewPavilionID(), "B Block", nil, nil, s.now)
		s.Require().NoError(err)
		a, err := models.NewPavilion(id.NewPavilionID(), "A Block", nil, nil, s.now)
		s.Require().NoError(err)
		s.Require().NoError(s.store.SavePavilion(s.ctx, b))
		s.Require().NoError(s.store.SavePavilion(s.ctx, a))

		list, err := s.store.ListPavilions(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(list, 2)
		s.Equal("A Block", list[0].Name)
		s.Equal("B Block", list[1].Name)
	})

	s.Run("unknown ids return ErrNotFound", func() {
		_, err := s.store.FindPavilion(s.ctx, id.NewPavilionID())
		s.ErrorIs(err, sentinel.ErrNotFound)
		_, err = s.store.FindVisitor(s.ctx, id.NewVisitorID())
		s.ErrorIs(err, sentinel.ErrNotFound)
		_, err = s.store.FindRoute(s.ctx, id.NewRouteID())
		s.ErrorIs(err, sentinel.ErrNotFound)
		_, err = s.store.FindSchedule(s.ctx, id.NewScheduleID())
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("stored route is isolated from caller mutation", func() {
		p := id.NewPavilionID()
		route, err := models.NewRoute(id.NewRouteID(), "Main", []models.RouteCheckpoint{{PavilionID: p, Order: 1}}, s.now)
		s.Require().NoError(err)
		s.Require().NoError(s.store.SaveRoute(s.ctx, route))

		route.Checkpoints[0].Order = 99
		found, err := s.store.FindRoute(s.ctx, route.ID)
		s.Require().NoError(err)
		s.Equal(1, found.Checkpoints[0].Order)

		found.Checkpoints[0].Order = 42
		again, err := s.store.FindRoute(s.ctx, route.ID)
		s.Require().NoError(err)
		s.Equal(1, again.Checkpoints[0].Order)
	})
}

func (s *InMemorySuite) TestScheduleListing() {
	visitor := id.NewVisitorID()
	other := id.NewVisitorID()

	second := s.newSchedule(visitor, models.ScheduleStatusInProgress, s.now.Add(time.Minute))
	first := s.newSchedule(visitor, models.ScheduleStatusConfirmed, s.now)
	done := s.newSchedule(visitor, models.ScheduleStatusCompleted, s.now.Add(2*time.Minute))
	foreign := s.newSchedule(other, models.ScheduleStatusConfirmed, s.now)
	for _, sc := range []*models.Schedule{second, first, done, foreign} {
		s.Require().NoError(s.store.CreateSchedule(s.ctx, sc))
	}

	s.Run("filters by visitor and status, oldest first", func() {
		list, err := s.store.ListSchedulesByVisitor(s.ctx, visitor, models.ActiveStatuses...)
		s.Require().NoError(err)
		s.Require().Len(list, 2)
		s.Equal(first.ID, list[0].ID)
		s.Equal(second.ID, list[1].ID)
	})

	s.Run("no statuses returns every schedule of the visitor", func() {
		list, err := s.store.ListSchedulesByVisitor(s.ctx, visitor)
		s.Require().NoError(err)
		s.Len(list, 3)
	})

	s.Run("lists across visitors by status", func() {
		list, err := s.store.ListSchedulesByStatus(s.ctx, models.ScheduleStatusConfirmed)
		s.Require().NoError(err)
		s.Len(list, 2)
	})

	s.Run("duplicate id conflicts", func() {
		s.ErrorIs(s.store.CreateSchedule(s.ctx, first), sentinel.ErrConflict)
	})
}

func (s *InMemorySuite) TestUpdateScheduleStatus() {
	sc := s.newSchedule(id.NewVisitorID(), models.ScheduleStatusConfirmed, s.now)
	s.Require().NoError(s.store.CreateSchedule(s.ctx, sc))

	s.Run("moves when current status matches", func() {
		later := s.now.Add(time.Hour)
		err := s.store.UpdateScheduleStatus(s.ctx, sc.ID, models.ScheduleStatusConfirmed, models.ScheduleStatusInProgress, later)
		s.Require().NoError(err)

		found, err := s.store.FindSchedule(s.ctx, sc.ID)
		s.Require().NoError(err)
		s.Equal(models.ScheduleStatusInProgress, found.Status)
		s.True(found.UpdatedAt.Equal(later))
	})

	s.Run("stale from status is rejected", func() {
		err := s.store.UpdateScheduleStatus(s.ctx, sc.ID, models.ScheduleStatusConfirmed, models.ScheduleStatusCompleted, s.now)
		s.ErrorIs(err, sentinel.ErrInvalidState)
	})

	s.Run("unknown schedule", func() {
		err := s.store.UpdateScheduleStatus(s.ctx, id.NewScheduleID(), models.ScheduleStatusConfirmed, models.ScheduleStatusCompleted, s.now)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *InMemorySuite) TestScheduledCheckpoints() {
	sc := s.newSchedule(id.NewVisitorID(), models.ScheduleStatusPending, s.now)
	s.Require().NoError(s.store.CreateSchedule(s.ctx, sc))

	s.Run("returned sorted by order", func() {
		cps := []*models.ScheduledCheckpoint{
			{ID: id.NewCheckpointID(), ScheduleID: sc.ID, PavilionID: id.NewPavilionID(), Order: 2},
			{ID: id.NewCheckpointID(), ScheduleID: sc.ID, PavilionID: id.NewPavilionID(), Order: 1},
		}
		s.Require().NoError(s.store.CreateScheduledCheckpoints(s.ctx, cps))

		list, err := s.store.ListScheduledCheckpoints(s.ctx, sc.ID)
		s.Require().NoError(err)
		s.Require().Len(list, 2)
		s.Equal(1, list[0].Order)
		s.Equal(2, list[1].Order)
	})

	s.Run("unknown schedule rejects the whole batch", func() {
		cps := []*models.ScheduledCheckpoint{
			{ID: id.NewCheckpointID(), ScheduleID: id.NewScheduleID(), PavilionID: id.NewPavilionID(), Order: 1},
		}
		s.ErrorIs(s.store.CreateScheduledCheckpoints(s.ctx, cps), sentinel.ErrNotFound)
	})

	s.Run("schedule without snapshot lists empty", func() {
		list, err := s.store.ListScheduledCheckpoints(s.ctx, id.NewScheduleID())
		s.Require().NoError(err)
		s.Empty(list)
	})
}

func (s *InMemorySuite) TestCheckpointLog() {
	visitor := id.NewVisitorID()
	pavilion := id.NewPavilionID()
	late := &models.CheckpointRecord{ID: id.NewRecordID(), VisitorID: visitor, PavilionID: pavilion, Timestamp: s.now.Add(time.Hour), Status: models.RecordStatusCheck}
	early := &models.CheckpointRecord{ID: id.NewRecordID(), VisitorID: visitor, PavilionID: pavilion, Timestamp: s.now, Status: models.RecordStatusCheck}
	void := &models.CheckpointRecord{ID: id.NewRecordID(), VisitorID: visitor, PavilionID: pavilion, Timestamp: s.now, Status: models.RecordStatusVoid}
	foreign := &models.CheckpointRecord{ID: id.NewRecordID(), VisitorID: id.NewVisitorID(), PavilionID: pavilion, Timestamp: s.now, Status: models.RecordStatusCheck}
	for _, rec := range []*models.CheckpointRecord{late, early, void, foreign} {
		s.Require().NoError(s.store.AppendCheckpoint(s.ctx, rec))
	}

	s.Run("filters confirmed records in time order", func() {
		check := models.RecordStatusCheck
		list, err := s.store.ListCheckpointsByVisitor(s.ctx, visitor, &check)
		s.Require().NoError(err)
		s.Require().Len(list, 2)
		s.Equal(early.ID, list[0].ID)
		s.Equal(late.ID, list[1].ID)
	})

	s.Run("nil status returns everything for the visitor", func() {
		list, err := s.store.ListCheckpointsByVisitor(s.ctx, visitor, nil)
		s.Require().NoError(err)
		s.Len(list, 3)
	})
}
