package models

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "visitflow/pkg/domain"
	dErrors "visitflow/pkg/domain-errors"
)

func TestSchedule_Anchor(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("uses scheduled time when present", func(t *testing.T) {
		s := &Schedule{ScheduledDate: day, ScheduledTime: "10:00"}
		assert.Equal(t, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), s.Anchor())
	})

	t.Run("accepts seconds", func(t *testing.T) {
		s := &Schedule{ScheduledDate: day, ScheduledTime: "10:00:30"}
		assert.Equal(t, time.Date(2024, 1, 1, 10, 0, 30, 0, time.UTC), s.Anchor())
	})

	t.Run("falls back to midnight", func(t *testing.T) {
		s := &Schedule{ScheduledDate: day.Add(15 * time.Hour)}
		assert.Equal(t, day, s.Anchor())
	})

	t.Run("unparsable time falls back to midnight", func(t *testing.T) {
		s := &Schedule{ScheduledDate: day, ScheduledTime: "late morning"}
		assert.Equal(t, day, s.Anchor())
	})

	t.Run("keeps the wall clock hour on a DST change day", func(t *testing.T) {
		loc, err := time.LoadLocation("America/New_York")
		require.NoError(t, err)
		// Clocks jump from 02:00 to 03:00 on this day.
		springForward := time.Date(2024, 3, 10, 0, 0, 0, 0, loc)
		s := &Schedule{ScheduledDate: springForward, ScheduledTime: "09:00"}

		anchor := s.Anchor()
		assert.True(t, anchor.Equal(time.Date(2024, 3, 10, 9, 0, 0, 0, loc)), "got %s", anchor)
		assert.Equal(t, 9, anchor.Hour())
	})
}

func TestRoute_Invariants(t *testing.T) {
	now := time.Now()
	a, b := id.NewPavilionID(), id.NewPavilionID()

	t.Run("sorts checkpoints by order", func(t *testing.T) {
		r, err := NewRoute(id.NewRouteID(), "Main", []RouteCheckpoint{
			{PavilionID: b, Order: 2},
			{PavilionID: a, Order: 1},
		}, now)
		require.NoError(t, err)
		assert.Equal(t, a, r.Checkpoints[0].PavilionID)
		assert.Equal(t, b, r.Checkpoints[1].PavilionID)
	})

	t.Run("rejects duplicate orders", func(t *testing.T) {
		_, err := NewRoute(id.NewRouteID(), "Main", []RouteCheckpoint{
			{PavilionID: a, Order: 1},
			{PavilionID: b, Order: 1},
		}, now)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("rejects non-positive orders", func(t *testing.T) {
		_, err := NewRoute(id.NewRouteID(), "Main", []RouteCheckpoint{{PavilionID: a, Order: 0}}, now)
		require.Error(t, err)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewRoute(id.NewRouteID(), "  ", nil, now)
		require.Error(t, err)
	})
}

func TestSnapshotRoute(t *testing.T) {
	a, b, c := id.NewPavilionID(), id.NewPavilionID(), id.NewPavilionID()
	route := &Route{Checkpoints: []RouteCheckpoint{
		{PavilionID: c, Order: 30},
		{PavilionID: a, Order: 10},
		{PavilionID: b, Order: 20},
	}}
	scheduleID := id.NewScheduleID()

	snapshot := SnapshotRoute(scheduleID, route, "1h30min")

	require.Len(t, snapshot, 3)
	for i, cp := range snapshot {
		assert.Equal(t, i+1, cp.Order, "orders are contiguous from 1")
		assert.Equal(t, scheduleID, cp.ScheduleID)
		assert.Equal(t, "1h30min", cp.EstimatedDuration, "whole-visit duration is stamped on every checkpoint")
	}
	assert.Equal(t, []id.PavilionID{a, b, c}, PlannedPavilions(snapshot))

	t.Run("later route edits do not reach the snapshot", func(t *testing.T) {
		route.Checkpoints[0].PavilionID = id.NewPavilionID()
		assert.Equal(t, []id.PavilionID{a, b, c}, PlannedPavilions(snapshot))
	})
}

func TestPlannedPavilions_Distinct(t *testing.T) {
	a, b := id.NewPavilionID(), id.NewPavilionID()
	cps := []*ScheduledCheckpoint{
		{PavilionID: b, Order: 3},
		{PavilionID: a, Order: 1},
		{PavilionID: b, Order: 2},
	}
	assert.Equal(t, []id.PavilionID{a, b}, PlannedPavilions(cps))
}

func TestNewPavilion_Coordinates(t *testing.T) {
	lat := -23.5
	_, err := NewPavilion(id.NewPavilionID(), "Hall A", &lat, nil, time.Now())
	require.Error(t, err)

	lng := -46.6
	p, err := NewPavilion(id.NewPavilionID(), " Hall A ", &lat, &lng, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "Hall A", p.Name)
}

func TestAsRouteViolation(t *testing.T) {
	rv := &RouteViolation{Allowed: []id.PavilionID{id.NewPavilionID()}}
	wrapped := dErrors.Wrap(rv, dErrors.CodeRouteViolation, "not allowed")

	got, ok := AsRouteViolation(wrapped)
	require.True(t, ok)
	assert.Len(t, got.Allowed, 1)
}
