// Package ports defines the interfaces the visit services consume.
// Interfaces are placed here when more than one service needs them.
package ports

import (
	"context"
	"time"

	"visitflow/internal/visit/models"
	id "visitflow/pkg/domain"
)

// PavilionStore reads and writes pavilion reference data.
type PavilionStore interface {
	SavePavilion(ctx context.Context, pavilion *models.Pavilion) error
	FindPavilion(ctx context.Context, pavilionID id.PavilionID) (*models.Pavilion, error)
	ListPavilions(ctx context.Context) ([]*models.Pavilion, error)
}

// VisitorStore resolves visitors.
type VisitorStore interface {
	SaveVisitor(ctx context.Context, visitor *models.Visitor) error
	FindVisitor(ctx context.Context, visitorID id.VisitorID) (*models.Visitor, error)
}

// RouteStore manages route templates. FindRoute returns checkpoints sorted by order.
type RouteStore interface {
	SaveRoute(ctx context.Context, route *models.Route) error
	FindRoute(ctx context.Context, routeID id.RouteID) (*models.Route, error)
}

// ScheduleStore persists schedules and their checkpoint snapshots.
//
// There is no multi-row transaction: CreateSchedule and CreateScheduledCheckpoints are
// independent round trips.
type ScheduleStore interface {
	CreateSchedule(ctx context.Context, schedule *models.Schedule) error
	FindSchedule(ctx context.Context, scheduleID id.ScheduleID) (*models.Schedule, error)
	// ListSchedulesByVisitor returns the visitor's schedules, oldest first. With no
	// statuses given every schedule is returned.
	ListSchedulesByVisitor(ctx context.Context, visitorID id.VisitorID, statuses ...models.ScheduleStatus) ([]*models.Schedule, error)
	// ListSchedulesByStatus returns schedules in any of the given statuses, oldest first.
	ListSchedulesByStatus(ctx context.Context, statuses ...models.ScheduleStatus) ([]*models.Schedule, error)
	// UpdateScheduleStatus moves a schedule from -> to. It returns sentinel.ErrInvalidState
	// when the stored status is not from, and sentinel.ErrNotFound for unknown ids.
	UpdateScheduleStatus(ctx context.Context, scheduleID id.ScheduleID, from, to models.ScheduleStatus, now time.Time) error
	CreateScheduledCheckpoints(ctx context.Context, checkpoints []*models.ScheduledCheckpoint) error
	ListScheduledCheckpoints(ctx context.Context, scheduleID id.ScheduleID) ([]*models.ScheduledCheckpoint, error)
}

// CheckpointStore is the append-only log of checkpoint passages.
type CheckpointStore interface {
	AppendCheckpoint(ctx context.Context, record *models.CheckpointRecord) error
	// ListCheckpointsByVisitor returns the visitor's records, oldest first. A nil status
	// returns every record.
	ListCheckpointsByVisitor(ctx context.Context, visitorID id.VisitorID, status *models.RecordStatus) ([]*models.CheckpointRecord, error)
}

// VisitStore is the full persistence collaborator.
type VisitStore interface {
	PavilionStore
	VisitorStore
	RouteStore
	ScheduleStore
	CheckpointStore
}

// VisitorLocker serialises work per visitor. Different visitors never contend.
type VisitorLocker interface {
	// Lock blocks until the visitor's lock is held or ctx ends. The returned function
	// releases it and is safe to call once.
	Lock(ctx context.Context, visitorID id.VisitorID) (unlock func(), err error)
}

// Listener is the presentation collaborator. It owns no business logic; the engine works
// the same with no listener attached.
type Listener interface {
	OverdueListReady(ctx context.Context, visits []models.OverdueVisit)
	NoOverdueFound(ctx context.Context)
	ScanFailed(ctx context.Context, err error)
	VisitCompleted(ctx context.Context, scheduleID id.ScheduleID)
}

//go:generate mockgen -destination=mocks/mocks.go -package=mocks visitflow/internal/visit/ports VisitorStore,RouteStore,ScheduleStore,CheckpointStore,VisitorLocker,Listener
