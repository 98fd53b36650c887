package audit

import "time"

// Action names of the visit audit trail.
const (
	ActionScheduleCreated     = "schedule_created"
	ActionScheduleIncomplete  = "schedule_incomplete"
	ActionScheduleConfirmed   = "schedule_confirmed"
	ActionScheduleCancelled   = "schedule_cancelled"
	ActionCheckpointRecorded  = "checkpoint_recorded"
	ActionRouteViolation      = "route_violation"
	ActionVisitStarted        = "visit_started"
	ActionVisitCompleted      = "visit_completed"
	ActionRouteCheckpointsSet = "route_checkpoints_replaced"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp  time.Time `json:"timestamp"`
	Action     string    `json:"action"`
	AgentID    string    `json:"agent_id,omitempty"`
	VisitorID  string    `json:"visitor_id,omitempty"`
	ScheduleID string    `json:"schedule_id,omitempty"`
	PavilionID string    `json:"pavilion_id,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
}
