// Package store persists the visit domain: pavilions, visitors, routes, schedules with
// their checkpoint snapshots, and the append-only checkpoint log.
package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"visitflow/internal/visit/models"
	id "visitflow/pkg/domain"
	"visitflow/pkg/platform/sentinel"
)

// InMemory is a process-local VisitStore. Values are copied on the way in and out so
// callers cannot mutate stored state.
type InMemory struct {
	mu sync.RWMutex

	pavilions map[id.PavilionID]models.Pavilion
	visitors  map[id.VisitorID]models.Visitor
	routes    map[id.RouteID]models.Route

	schedules     map[id.ScheduleID]models.Schedule
	scheduleOrder []id.ScheduleID
	snapshots     map[id.ScheduleID][]models.ScheduledCheckpoint

	records []models.CheckpointRecord
}

func NewInMemory() *InMemory {
	return &InMemory{
		pavilions: make(map[id.PavilionID]models.Pavilion),
		visitors:  make(map[id.VisitorID]models.Visitor),
		routes:    make(map[id.RouteID]models.Route),
		schedules: make(map[id.ScheduleID]models.Schedule),
		snapshots: make(map[id.ScheduleID][]models.ScheduledCheckpoint),
	}
}

func (s *InMemory) SavePavilion(_ context.Context, pavilion *models.Pavilion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pavilions[pavilion.ID] = *pavilion
	return nil
}

func (s *InMemory) FindPavilion(_ context.Context, pavilionID id.PavilionID) (*models.Pavilion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pavilions[pavilionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &p, nil
}

// ListPavilions returns every pavilion sorted by name.
func (s *InMemory) ListPavilions(_ context.Context) ([]*models.Pavilion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Pavilion, 0, len(s.pavilions))
	for _, p := range s.pavilions {
		out = append(out, &p)
	}
	slices.SortFunc(out, func(a, b *models.Pavilion) int {
		if a.Name < b.Name {
			return -1
		}
		if a.Name > b.Name {
			return 1
		}
		return 0
	})
	return out, nil
}

func (s *InMemory) SaveVisitor(_ context.Context, visitor *models.Visitor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visitors[visitor.ID] = *visitor
	return nil
}

func (s *InMemory) FindVisitor(_ context.Context, visitorID id.VisitorID) (*models.Visitor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.visitors[visitorID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &v, nil
}

func (s *InMemory) SaveRoute(_ context.Context, route *models.Route) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := *route
	r.Checkpoints = slices.Clone(route.Checkpoints)
	s.routes[route.ID] = r
	return nil
}

func (s *InMemory) FindRoute(_ context.Context, routeID id.RouteID) (*models.Route, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.routes[routeID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	r.Checkpoints = slices.Clone(r.Checkpoints)
	slices.SortStableFunc(r.Checkpoints, func(a, b models.RouteCheckpoint) int { return a.Order - b.Order })
	return &r, nil
}

func (s *InMemory) CreateSchedule(_ context.Context, schedule *models.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.schedules[schedule.ID]; exists {
		return sentinel.ErrConflict
	}
	s.schedules[schedule.ID] = *schedule
	s.scheduleOrder = append(s.scheduleOrder, schedule.ID)
	return nil
}

func (s *InMemory) FindSchedule(_ context.Context, scheduleID id.ScheduleID) (*models.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sc, ok := s.schedules[scheduleID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &sc, nil
}

func (s *InMemory) ListSchedulesByVisitor(_ context.Context, visitorID id.VisitorID, statuses ...models.ScheduleStatus) ([]*models.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterSchedules(func(sc *models.Schedule) bool {
		return sc.VisitorID == visitorID && matchStatus(sc.Status, statuses)
	}), nil
}

func (s *InMemory) ListSchedulesByStatus(_ context.Context, statuses ...models.ScheduleStatus) ([]*models.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterSchedules(func(sc *models.Schedule) bool {
		return matchStatus(sc.Status, statuses)
	}), nil
}

// filterSchedules walks schedules in insertion order, then orders by CreatedAt. Callers
// hold the read lock.
func (s *InMemory) filterSchedules(keep func(*models.Schedule) bool) []*models.Schedule {
	var out []*models.Schedule
	for _, scheduleID := range s.scheduleOrder {
		sc := s.schedules[scheduleID]
		if keep(&sc) {
			out = append(out, &sc)
		}
	}
	slices.SortStableFunc(out, func(a, b *models.Schedule) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out
}

func matchStatus(status models.ScheduleStatus, statuses []models.ScheduleStatus) bool {
	return len(statuses) == 0 || slices.Contains(statuses, status)
}

// UpdateScheduleStatus is a compare-and-set on the status column.
func (s *InMemory) UpdateScheduleStatus(_ context.Context, scheduleID id.ScheduleID, from, to models.ScheduleStatus, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.schedules[scheduleID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if sc.Status != from {
		return sentinel.ErrInvalidState
	}
	sc.Status = to
	sc.UpdatedAt = now
	s.schedules[scheduleID] = sc
	return nil
}

func (s *InMemory) CreateScheduledCheckpoints(_ context.Context, checkpoints []*models.ScheduledCheckpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cp := range checkpoints {
		if _, ok := s.schedules[cp.ScheduleID]; !ok {
			return sentinel.ErrNotFound
		}
	}
	for _, cp := range checkpoints {
		s.snapshots[cp.ScheduleID] = append(s.snapshots[cp.ScheduleID], *cp)
	}
	return nil
}

func (s *InMemory) ListScheduledCheckpoints(_ context.Context, scheduleID id.ScheduleID) ([]*models.ScheduledCheckpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.snapshots[scheduleID]
	out := make([]*models.ScheduledCheckpoint, 0, len(stored))
	for _, cp := range stored {
		out = append(out, &cp)
	}
	slices.SortStableFunc(out, func(a, b *models.ScheduledCheckpoint) int { return a.Order - b.Order })
	return out, nil
}

func (s *InMemory) AppendCheckpoint(_ context.Context, record *models.CheckpointRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, *record)
	return nil
}

func (s *InMemory) ListCheckpointsByVisitor(_ context.Context, visitorID id.VisitorID, status *models.RecordStatus) ([]*models.CheckpointRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.CheckpointRecord
	for _, rec := range s.records {
		if rec.VisitorID != visitorID {
			continue
		}
		if status != nil && rec.Status != *status {
			continue
		}
		out = append(out, &rec)
	}
	slices.SortStableFunc(out, func(a, b *models.CheckpointRecord) int { return a.Timestamp.Compare(b.Timestamp) })
	return out, nil
}
