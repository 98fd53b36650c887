package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "visitflow/pkg/domain-errors"
)

var allStatuses = []ScheduleStatus{
	ScheduleStatusPending,
	ScheduleStatusConfirmed,
	ScheduleStatusInProgress,
	ScheduleStatusCompleted,
	ScheduleStatusCancelled,
}

// rank orders the forward chain; cancelada sits outside it.
var rank = map[ScheduleStatus]int{
	ScheduleStatusPending:    0,
	ScheduleStatusConfirmed:  1,
	ScheduleStatusInProgress: 2,
	ScheduleStatusCompleted:  3,
}

// TestScheduleStatus_MonotonicTransitions checks every pair of statuses: a legal move is
// either strictly forward along the chain or into cancelada from a non-terminal state.
func TestScheduleStatus_MonotonicTransitions(t *testing.T) {
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			if !from.CanTransitionTo(to) {
				continue
			}
			assert.False(t, from.IsTerminal(), "%s is terminal but allows %s", from, to)
			if to == ScheduleStatusCancelled {
				continue
			}
			fromRank, ok := rank[from]
			require.True(t, ok)
			assert.Greater(t, rank[to], fromRank, "%s -> %s moves backwards", from, to)
		}
	}
}

func TestScheduleStatus_CancelReachableFromNonTerminal(t *testing.T) {
	for _, st := range allStatuses {
		if st.IsTerminal() {
			assert.False(t, st.CanTransitionTo(ScheduleStatusCancelled), st)
			continue
		}
		assert.True(t, st.CanTransitionTo(ScheduleStatusCancelled), st)
	}
}

func TestSchedule_CanTransitionTo(t *testing.T) {
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	t.Run("terminal schedule rejects any move", func(t *testing.T) {
		s := &Schedule{Status: ScheduleStatusCompleted}
		err := s.CanTransitionTo(ScheduleStatusCancelled)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("backwards move is rejected", func(t *testing.T) {
		s := &Schedule{Status: ScheduleStatusInProgress}
		err := s.CanTransitionTo(ScheduleStatusConfirmed)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("forward move applies", func(t *testing.T) {
		s := &Schedule{Status: ScheduleStatusConfirmed}
		require.NoError(t, s.CanTransitionTo(ScheduleStatusInProgress))
		s.ApplyTransition(ScheduleStatusInProgress, now)
		assert.Equal(t, ScheduleStatusInProgress, s.Status)
		assert.Equal(t, now, s.UpdatedAt)
	})
}

func TestParseScheduleStatus(t *testing.T) {
	st, err := ParseScheduleStatus("em_andamento")
	require.NoError(t, err)
	assert.Equal(t, ScheduleStatusInProgress, st)

	_, err = ParseScheduleStatus("done")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestRecordStatus_OnlyCheckIsConfirmed(t *testing.T) {
	assert.True(t, RecordStatusCheck.IsConfirmed())
	assert.False(t, RecordStatusVoid.IsConfirmed())
	assert.False(t, RecordStatus("").IsConfirmed())
}
