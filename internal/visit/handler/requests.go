package handler

import (
	"strings"
	"time"

	"visitflow/internal/visit/models"
	id "visitflow/pkg/domain"
	dErrors "visitflow/pkg/domain-errors"
)

// CreatePavilionRequest is the body of POST /pavilions.
type CreatePavilionRequest struct {
	Name      string   `json:"name"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

func (r *CreatePavilionRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	return nil
}

// CreateVisitorRequest is the body of POST /visitors.
type CreateVisitorRequest struct {
	Name     string `json:"name"`
	Document string `json:"document,omitempty"`
}

func (r *CreateVisitorRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if len(r.Document) > 64 {
		return dErrors.New(dErrors.CodeValidation, "document must be at most 64 characters")
	}
	return nil
}

// RouteCheckpointRequest is one stop in a route body.
type RouteCheckpointRequest struct {
	PavilionID    string `json:"pavilion_id"`
	Order         int    `json:"order"`
	AllowOverride bool   `json:"allow_override"`
}

func parseCheckpoints(in []RouteCheckpointRequest) ([]models.RouteCheckpoint, error) {
	out := make([]models.RouteCheckpoint, 0, len(in))
	for _, cp := range in {
		pavilionID, err := id.ParsePavilionID(cp.PavilionID)
		if err != nil {
			return nil, err
		}
		out = append(out, models.RouteCheckpoint{PavilionID: pavilionID, Order: cp.Order, AllowOverride: cp.AllowOverride})
	}
	return out, nil
}

// CreateRouteRequest is the body of POST /routes.
type CreateRouteRequest struct {
	Name        string                   `json:"name"`
	Checkpoints []RouteCheckpointRequest `json:"checkpoints"`

	parsedCheckpoints []models.RouteCheckpoint
}

func (r *CreateRouteRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	checkpoints, err := parseCheckpoints(r.Checkpoints)
	if err != nil {
		return err
	}
	r.parsedCheckpoints = checkpoints
	return nil
}

// ReplaceCheckpointsRequest is the body of PUT /routes/{id}/checkpoints.
type ReplaceCheckpointsRequest struct {
	Checkpoints []RouteCheckpointRequest `json:"checkpoints"`

	parsedCheckpoints []models.RouteCheckpoint
}

func (r *ReplaceCheckpointsRequest) Validate() error {
	checkpoints, err := parseCheckpoints(r.Checkpoints)
	if err != nil {
		return err
	}
	r.parsedCheckpoints = checkpoints
	return nil
}

// CreateScheduleRequest is the body of POST /schedules. ScheduledDate is "YYYY-MM-DD";
// ScheduledTime is an optional "HH:MM[:SS]" in the server's time zone.
type CreateScheduleRequest struct {
	VisitorID        string `json:"visitor_id"`
	RouteID          string `json:"route_id"`
	ScheduledDate    string `json:"scheduled_date"`
	ScheduledTime    string `json:"scheduled_time,omitempty"`
	ExpectedDuration string `json:"expected_duration"`
	Motive           string `json:"motive"`
	Notes            string `json:"notes,omitempty"`

	visitorID id.VisitorID
	routeID   id.RouteID
	date      time.Time
	clock     time.Duration
	hasTime   bool
}

func (r *CreateScheduleRequest) Validate() error {
	if len(r.Motive) > 512 || len(r.Notes) > 2048 {
		return dErrors.New(dErrors.CodeValidation, "motive or notes too long")
	}
	var err error
	if r.visitorID, err = id.ParseVisitorID(r.VisitorID); err != nil {
		return err
	}
	if r.routeID, err = id.ParseRouteID(r.RouteID); err != nil {
		return err
	}
	r.ScheduledDate = strings.TrimSpace(r.ScheduledDate)
	if r.ScheduledDate == "" {
		return dErrors.New(dErrors.CodeValidation, "scheduled_date is required")
	}
	if r.date, err = time.Parse(time.DateOnly, r.ScheduledDate); err != nil {
		return dErrors.New(dErrors.CodeValidation, "scheduled_date must be YYYY-MM-DD")
	}
	if strings.TrimSpace(r.ScheduledTime) != "" {
		clock, ok := models.ParseClock(r.ScheduledTime)
		if !ok {
			return dErrors.New(dErrors.CodeValidation, "scheduled_time must be HH:MM or HH:MM:SS")
		}
		r.clock, r.hasTime = clock, true
	}
	if strings.TrimSpace(r.Motive) == "" {
		return dErrors.New(dErrors.CodeValidation, "motive is required")
	}
	return nil
}

// ScheduledAt combines date and time in loc.
func (r *CreateScheduleRequest) ScheduledAt(loc *time.Location) time.Time {
	y, m, d := r.date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc).Add(r.clock)
}

// CancelScheduleRequest is the optional body of POST /schedules/{id}/cancel.
type CancelScheduleRequest struct {
	Reason string `json:"reason"`
}

func (r *CancelScheduleRequest) Validate() error {
	r.Reason = strings.TrimSpace(r.Reason)
	if len(r.Reason) > 512 {
		return dErrors.New(dErrors.CodeValidation, "reason must be at most 512 characters")
	}
	return nil
}

// RegisterCheckpointRequest is the body of POST /checkpoints. PavilionID may be omitted
// when the agent's token names the pavilion they are posted at.
type RegisterCheckpointRequest struct {
	VisitorID  string `json:"visitor_id"`
	PavilionID string `json:"pavilion_id,omitempty"`

	visitorID  id.VisitorID
	pavilionID id.PavilionID
}

func (r *RegisterCheckpointRequest) Validate() error {
	var err error
	if r.visitorID, err = id.ParseVisitorID(r.VisitorID); err != nil {
		return err
	}
	if strings.TrimSpace(r.PavilionID) != "" {
		if r.pavilionID, err = id.ParsePavilionID(r.PavilionID); err != nil {
			return err
		}
	}
	return nil
}
