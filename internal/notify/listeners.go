package notify

import (
	"context"
	"log/slog"

	"visitflow/internal/visit/models"
	id "visitflow/pkg/domain"
)

// Funcs adapts plain functions to ports.Listener. Nil fields ignore their event.
type Funcs struct {
	OnOverdueListReady func(ctx context.Context, visits []models.OverdueVisit)
	OnNoOverdueFound   func(ctx context.Context)
	OnScanFailed       func(ctx context.Context, err error)
	OnVisitCompleted   func(ctx context.Context, scheduleID id.ScheduleID)
}

func (f Funcs) OverdueListReady(ctx context.Context, visits []models.OverdueVisit) {
	if f.OnOverdueListReady != nil {
		f.OnOverdueListReady(ctx, visits)
	}
}

func (f Funcs) NoOverdueFound(ctx context.Context) {
	if f.OnNoOverdueFound != nil {
		f.OnNoOverdueFound(ctx)
	}
}

func (f Funcs) ScanFailed(ctx context.Context, err error) {
	if f.OnScanFailed != nil {
		f.OnScanFailed(ctx, err)
	}
}

func (f Funcs) VisitCompleted(ctx context.Context, scheduleID id.ScheduleID) {
	if f.OnVisitCompleted != nil {
		f.OnVisitCompleted(ctx, scheduleID)
	}
}

// LogListener writes every event as a structured log line.
type LogListener struct {
	logger *slog.Logger
}

func NewLogListener(logger *slog.Logger) *LogListener {
	return &LogListener{logger: logger}
}

func (l *LogListener) OverdueListReady(ctx context.Context, visits []models.OverdueVisit) {
	most := int64(0)
	if len(visits) > 0 {
		most = visits[0].OverdueMinutes
	}
	l.logger.WarnContext(ctx, "overdue visits found",
		"count", len(visits),
		"max_overdue_minutes", most,
	)
}

func (l *LogListener) NoOverdueFound(ctx context.Context) {
	l.logger.InfoContext(ctx, "no overdue visits")
}

func (l *LogListener) ScanFailed(ctx context.Context, err error) {
	l.logger.ErrorContext(ctx, "overdue scan failed", "error", err)
}

func (l *LogListener) VisitCompleted(ctx context.Context, scheduleID id.ScheduleID) {
	l.logger.InfoContext(ctx, "visit completed", "schedule_id", scheduleID.String())
}
