package models

import (
	"slices"
	"strings"
	"time"

	id "visitflow/pkg/domain"
	dErrors "visitflow/pkg/domain-errors"
)

// Pavilion is a physical checkpoint location. Reference data.
type Pavilion struct {
	ID        id.PavilionID `json:"id" yaml:"id"`
	Name      string        `json:"name" yaml:"name"`
	Latitude  *float64      `json:"latitude,omitempty" yaml:"latitude,omitempty"`
	Longitude *float64      `json:"longitude,omitempty" yaml:"longitude,omitempty"`
	CreatedAt time.Time     `json:"created_at" yaml:"-"`
}

func NewPavilion(pavilionID id.PavilionID, name string, lat, lng *float64, now time.Time) (*Pavilion, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "pavilion name cannot be empty")
	}
	if len(name) > 128 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "pavilion name must be 128 characters or less")
	}
	if (lat == nil) != (lng == nil) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "latitude and longitude must be set together")
	}
	return &Pavilion{ID: pavilionID, Name: name, Latitude: lat, Longitude: lng, CreatedAt: now}, nil
}

// Visitor is the person whose passage is tracked.
type Visitor struct {
	ID        id.VisitorID `json:"id" yaml:"id"`
	Name      string       `json:"name" yaml:"name"`
	Document  string       `json:"document,omitempty" yaml:"document,omitempty"`
	CreatedAt time.Time    `json:"created_at" yaml:"-"`
}

func NewVisitor(visitorID id.VisitorID, name, document string, now time.Time) (*Visitor, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "visitor name cannot be empty")
	}
	return &Visitor{ID: visitorID, Name: name, Document: strings.TrimSpace(document), CreatedAt: now}, nil
}

// RouteCheckpoint is one stop of a route template.
type RouteCheckpoint struct {
	PavilionID    id.PavilionID `json:"pavilion_id" yaml:"pavilion_id"`
	Order         int           `json:"order" yaml:"order"`
	AllowOverride bool          `json:"allow_override" yaml:"allow_override"`
}

// Route is an ordered template of pavilions.
//
// Invariants:
//   - Name is non-empty
//   - Checkpoint orders are positive and unique
//
// Editing a route never changes schedules created from it: schedules keep their own
// ScheduledCheckpoint snapshot.
type Route struct {
	ID          id.RouteID        `json:"id" yaml:"id"`
	Name        string            `json:"name" yaml:"name"`
	Checkpoints []RouteCheckpoint `json:"checkpoints" yaml:"checkpoints"`
	CreatedAt   time.Time         `json:"created_at" yaml:"-"`
	UpdatedAt   time.Time         `json:"updated_at" yaml:"-"`
}

func NewRoute(routeID id.RouteID, name string, checkpoints []RouteCheckpoint, now time.Time) (*Route, error) {
	r := &Route{
		ID:        routeID,
		Name:      strings.TrimSpace(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if r.Name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "route name cannot be empty")
	}
	if err := r.ReplaceCheckpoints(checkpoints, now); err != nil {
		return nil, err
	}
	return r, nil
}

// ReplaceCheckpoints validates and installs a new checkpoint list, sorted by order.
func (r *Route) ReplaceCheckpoints(checkpoints []RouteCheckpoint, now time.Time) error {
	seen := make(map[int]bool, len(checkpoints))
	for _, cp := range checkpoints {
		if cp.PavilionID.IsNil() {
			return dErrors.New(dErrors.CodeInvariantViolation, "route checkpoint pavilion is required")
		}
		if cp.Order < 1 {
			return dErrors.New(dErrors.CodeInvariantViolation, "route checkpoint order must be positive")
		}
		if seen[cp.Order] {
			return dErrors.New(dErrors.CodeInvariantViolation, "route checkpoint orders must be unique")
		}
		seen[cp.Order] = true
	}
	sorted := slices.Clone(checkpoints)
	slices.SortStableFunc(sorted, func(a, b RouteCheckpoint) int { return a.Order - b.Order })
	r.Checkpoints = sorted
	r.UpdatedAt = now
	return nil
}

// Schedule ("agendamento") is one visitor's time-bound instance of a route.
type Schedule struct {
	ID        id.ScheduleID `json:"id"`
	VisitorID id.VisitorID  `json:"visitor_id"`
	RouteID   id.RouteID    `json:"route_id"`
	// ScheduledDate carries the calendar day; only its date part and location are used.
	ScheduledDate time.Time `json:"scheduled_date"`
	// ScheduledTime is an optional "HH:MM[:SS]" clock time on ScheduledDate.
	ScheduledTime    string         `json:"scheduled_time,omitempty"`
	ExpectedDuration string         `json:"expected_duration"`
	Motive           string         `json:"motive"`
	Notes            string         `json:"notes,omitempty"`
	CreatedBy        id.AgentID     `json:"created_by"`
	Status           ScheduleStatus `json:"status"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// Anchor is the moment the visit is expected to start: ScheduledTime on ScheduledDate,
// or midnight when no (parsable) time is set.
func (s *Schedule) Anchor() time.Time {
	y, m, d := s.ScheduledDate.Date()
	loc := s.ScheduledDate.Location()
	offset, ok := ParseClock(s.ScheduledTime)
	if !ok {
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	}
	// Wall-clock fields, not elapsed time from midnight, so DST days keep the stated hour.
	return time.Date(y, m, d,
		int(offset/time.Hour), int(offset%time.Hour/time.Minute), int(offset%time.Minute/time.Second),
		0, loc)
}

// ParseClock parses "HH:MM" or "HH:MM:SS" into an offset from midnight.
func ParseClock(s string) (time.Duration, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, true
		}
	}
	return 0, false
}

// FormatClock renders the clock part of t the way ScheduledTime stores it.
func FormatClock(t time.Time) string {
	return t.Format("15:04:05")
}

// ScheduledCheckpoint is the frozen copy of a route stop taken when a schedule is created.
type ScheduledCheckpoint struct {
	ID                id.CheckpointID `json:"id"`
	ScheduleID        id.ScheduleID   `json:"schedule_id"`
	PavilionID        id.PavilionID   `json:"pavilion_id"`
	Order             int             `json:"order"`
	EstimatedDuration string          `json:"estimated_duration"`
	Notes             string          `json:"notes,omitempty"`
}

// SnapshotRoute copies the route's stops into schedule checkpoints. Orders are renumbered
// 1..n following the route order so the per-schedule orders are contiguous. Every
// checkpoint carries the whole-visit expected duration, not a per-leg estimate.
func SnapshotRoute(scheduleID id.ScheduleID, route *Route, expectedDuration string) []*ScheduledCheckpoint {
	stops := slices.Clone(route.Checkpoints)
	slices.SortStableFunc(stops, func(a, b RouteCheckpoint) int { return a.Order - b.Order })

	out := make([]*ScheduledCheckpoint, 0, len(stops))
	for i, stop := range stops {
		out = append(out, &ScheduledCheckpoint{
			ID:                id.NewCheckpointID(),
			ScheduleID:        scheduleID,
			PavilionID:        stop.PavilionID,
			Order:             i + 1,
			EstimatedDuration: expectedDuration,
		})
	}
	return out
}

// PlannedPavilions returns the distinct pavilion ids of a snapshot in checkpoint order.
func PlannedPavilions(checkpoints []*ScheduledCheckpoint) []id.PavilionID {
	sorted := slices.Clone(checkpoints)
	slices.SortStableFunc(sorted, func(a, b *ScheduledCheckpoint) int { return a.Order - b.Order })

	seen := make(map[id.PavilionID]bool, len(sorted))
	out := make([]id.PavilionID, 0, len(sorted))
	for _, cp := range sorted {
		if seen[cp.PavilionID] {
			continue
		}
		seen[cp.PavilionID] = true
		out = append(out, cp.PavilionID)
	}
	return out
}

// ScheduleDetails bundles a schedule with its snapshot. Incomplete marks an orphaned
// schedule whose checkpoint insert never happened.
type ScheduleDetails struct {
	Schedule    *Schedule              `json:"schedule"`
	Checkpoints []*ScheduledCheckpoint `json:"checkpoints"`
	Incomplete  bool                   `json:"incomplete"`
}

// CheckpointRecord is the immutable fact that a visitor passed a pavilion.
type CheckpointRecord struct {
	ID           id.RecordID   `json:"id"`
	VisitorID    id.VisitorID  `json:"visitor_id"`
	PavilionID   id.PavilionID `json:"pavilion_id"`
	Timestamp    time.Time     `json:"timestamp"`
	RegisteredBy id.AgentID    `json:"registered_by"`
	Status       RecordStatus  `json:"status"`
}

// PavilionRef is a pavilion id with its display name.
type PavilionRef struct {
	ID   id.PavilionID `json:"id"`
	Name string        `json:"name"`
}

// OverdueVisit is one row of the overdue report.
type OverdueVisit struct {
	ScheduleID       id.ScheduleID  `json:"schedule_id"`
	VisitorID        id.VisitorID   `json:"visitor_id"`
	RouteID          id.RouteID     `json:"route_id"`
	Status           ScheduleStatus `json:"status"`
	Motive           string         `json:"motive"`
	ExpectedDuration string         `json:"expected_duration"`
	Anchor           time.Time      `json:"anchor"`
	EstimatedEnd     time.Time      `json:"estimated_end"`
	OverdueMinutes   int64          `json:"overdue_minutes"`
	Pavilions        []PavilionRef  `json:"pavilions"`
	// MissingCheckpoints flags an orphaned schedule with no snapshot rows.
	MissingCheckpoints bool `json:"missing_checkpoints,omitempty"`
}
