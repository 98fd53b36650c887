package models

import (
	"time"

	dErrors "visitflow/pkg/domain-errors"
)

// ScheduleStatus is the lifecycle state of a visit schedule.
//
// State machine:
//
//	pendente -[explicit]-> confirmada -[1st check]-> em_andamento -[all planned visited]-> concluida
//	confirmada -[all planned visited]-> concluida
//	{pendente, confirmada, em_andamento} -[external]-> cancelada
//
// concluida and cancelada are terminal.
type ScheduleStatus string

const (
	ScheduleStatusPending    ScheduleStatus = "pendente"
	ScheduleStatusConfirmed  ScheduleStatus = "confirmada"
	ScheduleStatusInProgress ScheduleStatus = "em_andamento"
	ScheduleStatusCompleted  ScheduleStatus = "concluida"
	ScheduleStatusCancelled  ScheduleStatus = "cancelada"
)

var scheduleTransitions = map[ScheduleStatus][]ScheduleStatus{
	ScheduleStatusPending:    {ScheduleStatusConfirmed, ScheduleStatusCancelled},
	ScheduleStatusConfirmed:  {ScheduleStatusInProgress, ScheduleStatusCompleted, ScheduleStatusCancelled},
	ScheduleStatusInProgress: {ScheduleStatusCompleted, ScheduleStatusCancelled},
}

// ActiveStatuses are the statuses the recorder, evaluator and overdue detector work on.
var ActiveStatuses = []ScheduleStatus{ScheduleStatusConfirmed, ScheduleStatusInProgress}

func ParseScheduleStatus(s string) (ScheduleStatus, error) {
	st := ScheduleStatus(s)
	if !st.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid schedule status")
	}
	return st, nil
}

func (s ScheduleStatus) IsValid() bool {
	switch s {
	case ScheduleStatusPending, ScheduleStatusConfirmed, ScheduleStatusInProgress,
		ScheduleStatusCompleted, ScheduleStatusCancelled:
		return true
	}
	return false
}

func (s ScheduleStatus) IsTerminal() bool {
	return s == ScheduleStatusCompleted || s == ScheduleStatusCancelled
}

// IsActive reports whether a visit is underway or about to start.
func (s ScheduleStatus) IsActive() bool {
	return s == ScheduleStatusConfirmed || s == ScheduleStatusInProgress
}

// CanTransitionTo reports whether next is a legal forward move from s.
func (s ScheduleStatus) CanTransitionTo(next ScheduleStatus) bool {
	for _, allowed := range scheduleTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s ScheduleStatus) String() string {
	return string(s)
}

// CanTransitionTo checks the schedule's current status against the state machine.
func (s *Schedule) CanTransitionTo(next ScheduleStatus) error {
	if s.Status.IsTerminal() {
		return dErrors.New(dErrors.CodeInvariantViolation, "schedule is already "+string(s.Status))
	}
	if !s.Status.CanTransitionTo(next) {
		return dErrors.New(dErrors.CodeInvariantViolation,
			"schedule cannot move from "+string(s.Status)+" to "+string(next))
	}
	return nil
}

// ApplyTransition sets the new status. Call CanTransitionTo first.
func (s *Schedule) ApplyTransition(next ScheduleStatus, now time.Time) {
	s.Status = next
	s.UpdatedAt = now
}

// RecordStatus qualifies a checkpoint record. Only RecordStatusCheck is a confirmed passage.
type RecordStatus string

const (
	RecordStatusCheck RecordStatus = "check"
	// RecordStatusVoid marks an attempt that was captured but never committed.
	RecordStatusVoid RecordStatus = "void"
)

func (s RecordStatus) IsConfirmed() bool {
	return s == RecordStatusCheck
}
