package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visitflow/internal/visit/models"
	id "visitflow/pkg/domain"
	"visitflow/pkg/platform/sentinel"
)

var scheduleCols = []string{
	"id", "visitor_id", "route_id", "scheduled_date", "scheduled_time", "expected_duration",
	"motive", "notes", "created_by", "status", "created_at", "updated_at",
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresStore) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock, NewPostgres(db, WithLocation(time.UTC))
}

func TestFindSchedule_RebuildsDateInStoreLocation(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	store := NewPostgres(db, WithLocation(loc))

	scheduleID := id.NewScheduleID()
	visitorID := id.NewVisitorID()
	routeID := id.NewRouteID()
	agentID := id.AgentID(uuid.New())
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(scheduleCols).AddRow(
		scheduleID.String(), visitorID.String(), routeID.String(),
		time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), "14:30", "2h",
		"meeting", "", agentID.String(), "confirmada", created, created,
	)
	mock.ExpectQuery(`FROM schedules WHERE id = \$1`).
		WithArgs(uuid.UUID(scheduleID)).
		WillReturnRows(rows)

	sc, err := store.FindSchedule(context.Background(), scheduleID)
	require.NoError(t, err)
	assert.Equal(t, visitorID, sc.VisitorID)
	assert.Equal(t, models.ScheduleStatusConfirmed, sc.Status)
	assert.Equal(t, "14:30", sc.ScheduledTime)
	assert.True(t, sc.Anchor().Equal(time.Date(2024, 5, 10, 14, 30, 0, 0, loc)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindSchedule_NotFound(t *testing.T) {
	_, mock, store := setupMockDB(t)
	mock.ExpectQuery(`FROM schedules WHERE id`).WillReturnError(sql.ErrNoRows)

	_, err := store.FindSchedule(context.Background(), id.NewScheduleID())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListSchedulesByVisitor_FiltersByStatusArray(t *testing.T) {
	_, mock, store := setupMockDB(t)
	visitorID := id.NewVisitorID()

	mock.ExpectQuery(`WHERE visitor_id = \$1 AND status = ANY\(\$2\)`).
		WithArgs(uuid.UUID(visitorID), pq.Array([]string{"confirmada", "em_andamento"})).
		WillReturnRows(sqlmock.NewRows(scheduleCols))

	list, err := store.ListSchedulesByVisitor(context.Background(), visitorID, models.ActiveStatuses...)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateScheduleStatus(t *testing.T) {
	t.Run("applies when the row holds the expected status", func(t *testing.T) {
		_, mock, store := setupMockDB(t)
		scheduleID := id.NewScheduleID()
		mock.ExpectExec(`UPDATE schedules SET status`).
			WithArgs(uuid.UUID(scheduleID), "confirmada", "em_andamento", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := store.UpdateScheduleStatus(context.Background(), scheduleID,
			models.ScheduleStatusConfirmed, models.ScheduleStatusInProgress, time.Now())
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports invalid state when the status moved on", func(t *testing.T) {
		_, mock, store := setupMockDB(t)
		mock.ExpectExec(`UPDATE schedules SET status`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT EXISTS`).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		err := store.UpdateScheduleStatus(context.Background(), id.NewScheduleID(),
			models.ScheduleStatusConfirmed, models.ScheduleStatusInProgress, time.Now())
		assert.ErrorIs(t, err, sentinel.ErrInvalidState)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports not found for unknown schedules", func(t *testing.T) {
		_, mock, store := setupMockDB(t)
		mock.ExpectExec(`UPDATE schedules SET status`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT EXISTS`).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		err := store.UpdateScheduleStatus(context.Background(), id.NewScheduleID(),
			models.ScheduleStatusConfirmed, models.ScheduleStatusInProgress, time.Now())
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}

func TestCreateScheduledCheckpoints_SingleStatement(t *testing.T) {
	_, mock, store := setupMockDB(t)
	scheduleID := id.NewScheduleID()
	cps := []*models.ScheduledCheckpoint{
		{ID: id.NewCheckpointID(), ScheduleID: scheduleID, PavilionID: id.NewPavilionID(), Order: 1, EstimatedDuration: "1h"},
		{ID: id.NewCheckpointID(), ScheduleID: scheduleID, PavilionID: id.NewPavilionID(), Order: 2, EstimatedDuration: "1h"},
	}
	mock.ExpectExec(`INSERT INTO scheduled_checkpoints`).
		WithArgs(
			uuid.UUID(cps[0].ID), uuid.UUID(scheduleID), uuid.UUID(cps[0].PavilionID), 1, "1h", "",
			uuid.UUID(cps[1].ID), uuid.UUID(scheduleID), uuid.UUID(cps[1].PavilionID), 2, "1h", "",
		).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, store.CreateScheduledCheckpoints(context.Background(), cps))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSchedule_UniqueViolationIsConflict(t *testing.T) {
	_, mock, store := setupMockDB(t)
	mock.ExpectExec(`INSERT INTO schedules`).WillReturnError(&pgconn.PgError{Code: "23505"})

	err := store.CreateSchedule(context.Background(), &models.Schedule{
		ID:            id.NewScheduleID(),
		ScheduledDate: time.Now(),
		Status:        models.ScheduleStatusPending,
	})
	assert.ErrorIs(t, err, sentinel.ErrConflict)
}

func TestAppendCheckpoint_WrapsDriverErrors(t *testing.T) {
	_, mock, store := setupMockDB(t)
	boom := errors.New("connection reset")
	mock.ExpectExec(`INSERT INTO checkpoint_records`).WillReturnError(boom)

	err := store.AppendCheckpoint(context.Background(), &models.CheckpointRecord{
		ID:        id.NewRecordID(),
		VisitorID: id.NewVisitorID(),
		Status:    models.RecordStatusCheck,
		Timestamp: time.Now(),
	})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "append checkpoint")
}

func TestListCheckpointsByVisitor_StatusFilter(t *testing.T) {
	_, mock, store := setupMockDB(t)
	visitorID := id.NewVisitorID()
	pavilionID := id.NewPavilionID()
	agentID := uuid.New()
	ts := time.Date(2024, 5, 10, 10, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "visitor_id", "pavilion_id", "recorded_at", "registered_by", "status"}).
		AddRow(uuid.NewString(), visitorID.String(), pavilionID.String(), ts, agentID.String(), "check")
	mock.ExpectQuery(`FROM checkpoint_records WHERE visitor_id = \$1 AND status = \$2`).
		WithArgs(uuid.UUID(visitorID), "check").
		WillReturnRows(rows)

	check := models.RecordStatusCheck
	list, err := store.ListCheckpointsByVisitor(context.Background(), visitorID, &check)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, pavilionID, list[0].PavilionID)
	assert.True(t, list[0].Status.IsConfirmed())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRoute_ReplacesCheckpointsInTransaction(t *testing.T) {
	_, mock, store := setupMockDB(t)
	now := time.Now()
	route, err := models.NewRoute(id.NewRouteID(), "Main", []models.RouteCheckpoint{
		{PavilionID: id.NewPavilionID(), Order: 1},
	}, now)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO routes`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM route_checkpoints`).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`INSERT INTO route_checkpoints`).
		WithArgs(uuid.UUID(route.ID), uuid.UUID(route.Checkpoints[0].PavilionID), 1, false).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, store.SaveRoute(context.Background(), route))
	assert.NoError(t, mock.ExpectationsWereMet())
}
