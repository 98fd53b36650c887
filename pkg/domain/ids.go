// Package domain holds typed identifiers shared across the visit modules.
//
// Every identifier is a distinct UUID type so a PavilionID can never be passed where a
// VisitorID is expected. Construct them with the Parse functions at trust boundaries.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "visitflow/pkg/domain-errors"
)

type (
	VisitorID    uuid.UUID
	PavilionID   uuid.UUID
	RouteID      uuid.UUID
	ScheduleID   uuid.UUID
	CheckpointID uuid.UUID
	RecordID     uuid.UUID
	AgentID      uuid.UUID
)

// maxIDLength bounds input before handing it to uuid.Parse.
const maxIDLength = 64

func parseUUID(kind, s string) (uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" is required")
	}
	if len(s) > maxIDLength {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" is too long")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" cannot be nil")
	}
	return u, nil
}

func ParseVisitorID(s string) (VisitorID, error) {
	u, err := parseUUID("visitor_id", s)
	return VisitorID(u), err
}

func ParsePavilionID(s string) (PavilionID, error) {
	u, err := parseUUID("pavilion_id", s)
	return PavilionID(u), err
}

func ParseRouteID(s string) (RouteID, error) {
	u, err := parseUUID("route_id", s)
	return RouteID(u), err
}

func ParseScheduleID(s string) (ScheduleID, error) {
	u, err := parseUUID("schedule_id", s)
	return ScheduleID(u), err
}

func ParseAgentID(s string) (AgentID, error) {
	u, err := parseUUID("agent_id", s)
	return AgentID(u), err
}

func NewVisitorID() VisitorID       { return VisitorID(uuid.New()) }
func NewPavilionID() PavilionID     { return PavilionID(uuid.New()) }
func NewRouteID() RouteID           { return RouteID(uuid.New()) }
func NewScheduleID() ScheduleID     { return ScheduleID(uuid.New()) }
func NewCheckpointID() CheckpointID { return CheckpointID(uuid.New()) }
func NewRecordID() RecordID         { return RecordID(uuid.New()) }

func (id VisitorID) String() string    { return uuid.UUID(id).String() }
func (id PavilionID) String() string   { return uuid.UUID(id).String() }
func (id RouteID) String() string      { return uuid.UUID(id).String() }
func (id ScheduleID) String() string   { return uuid.UUID(id).String() }
func (id CheckpointID) String() string { return uuid.UUID(id).String() }
func (id RecordID) String() string     { return uuid.UUID(id).String() }
func (id AgentID) String() string      { return uuid.UUID(id).String() }

func (id VisitorID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id PavilionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id RouteID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id ScheduleID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id AgentID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// Text encoding lets the ids travel through JSON and YAML as canonical UUID strings.

func (id VisitorID) MarshalText() ([]byte, error)    { return uuid.UUID(id).MarshalText() }
func (id PavilionID) MarshalText() ([]byte, error)   { return uuid.UUID(id).MarshalText() }
func (id RouteID) MarshalText() ([]byte, error)      { return uuid.UUID(id).MarshalText() }
func (id ScheduleID) MarshalText() ([]byte, error)   { return uuid.UUID(id).MarshalText() }
func (id CheckpointID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id RecordID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }
func (id AgentID) MarshalText() ([]byte, error)      { return uuid.UUID(id).MarshalText() }

func (id *VisitorID) UnmarshalText(b []byte) error    { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *PavilionID) UnmarshalText(b []byte) error   { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *RouteID) UnmarshalText(b []byte) error      { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *ScheduleID) UnmarshalText(b []byte) error   { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *CheckpointID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *RecordID) UnmarshalText(b []byte) error     { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *AgentID) UnmarshalText(b []byte) error      { return (*uuid.UUID)(id).UnmarshalText(b) }
