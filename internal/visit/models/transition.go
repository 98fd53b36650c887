package models

import id "visitflow/pkg/domain"

// Transition is a status change applied by the compliance evaluator.
type Transition struct {
	ScheduleID id.ScheduleID  `json:"schedule_id"`
	From       ScheduleStatus `json:"from"`
	To         ScheduleStatus `json:"to"`
}
