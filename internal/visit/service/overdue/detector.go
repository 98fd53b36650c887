// Package overdue finds active visits that have run past their estimated end, on demand
// and on a timer.
package overdue

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"visitflow/internal/visit/duration"
	"visitflow/internal/visit/metrics"
	"visitflow/internal/visit/models"
	"visitflow/internal/visit/ports"
	id "visitflow/pkg/domain"
	dErrors "visitflow/pkg/domain-errors"
)

const (
	defaultConcurrency = 8
	scanKey            = "overdue"
)

// Compute derives the estimated end of a visit anchored at anchor and how far now is past
// it. overdue is true only when now is strictly after end; minutes are floored.
func Compute(anchor time.Time, d duration.Duration, now time.Time) (end time.Time, minutes int64, overdue bool) {
	end = anchor.Add(d.Std())
	if !now.After(end) {
		return end, 0, false
	}
	return end, int64(now.Sub(end) / time.Minute), true
}

// Detector builds the overdue report. Concurrent Detect calls share a single scan.
type Detector struct {
	schedules   ports.ScheduleStore
	pavilions   ports.PavilionStore
	now         func() time.Time
	concurrency int
	logger      *slog.Logger
	metrics     *metrics.Metrics
	tracer      trace.Tracer
	group       singleflight.Group
}

type Option func(*Detector)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(d *Detector) {
		if now != nil {
			d.now = now
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(d *Detector) {
		d.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Detector) {
		d.metrics = m
	}
}

// WithConcurrency bounds how many snapshots are loaded in parallel.
func WithConcurrency(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.concurrency = n
		}
	}
}

func New(schedules ports.ScheduleStore, pavilions ports.PavilionStore, opts ...Option) (*Detector, error) {
	if schedules == nil {
		return nil, errors.New("schedule store is required")
	}
	if pavilions == nil {
		return nil, errors.New("pavilion store is required")
	}
	d := &Detector{
		schedules:   schedules,
		pavilions:   pavilions,
		now:         time.Now,
		concurrency: defaultConcurrency,
		tracer:      otel.Tracer("visitflow/visit/overdue"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Detect returns every confirmed or in-progress visit past its estimated end, most
// overdue first. A caller that gives up via ctx does not cancel the shared scan.
func (d *Detector) Detect(ctx context.Context) ([]models.OverdueVisit, error) {
	ch := d.group.DoChan(scanKey, func() (any, error) {
		return d.scan(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, dErrors.Wrap(ctx.Err(), dErrors.CodeTimeout, "overdue scan abandoned")
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return slices.Clone(res.Val.([]models.OverdueVisit)), nil
	}
}

func (d *Detector) scan(ctx context.Context) (_ []models.OverdueVisit, err error) {
	start := time.Now()
	ctx, span := d.tracer.Start(ctx, "overdue.Scan")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			d.metrics.IncrementScanFailures()
		}
		span.End()
	}()

	now := d.now()
	active, err := d.schedules.ListSchedulesByStatus(ctx, models.ActiveStatuses...)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load active schedules")
	}
	names, err := d.pavilionNames(ctx)
	if err != nil {
		return nil, err
	}

	var late []models.OverdueVisit
	for _, sc := range active {
		expected, perr := duration.ParseStrict(sc.ExpectedDuration)
		if errors.Is(perr, duration.ErrMalformed) && d.logger != nil {
			d.logger.WarnContext(ctx, "malformed expected duration treated as zero",
				"schedule_id", sc.ID.String(),
				"expected_duration", sc.ExpectedDuration,
			)
		}
		anchor := sc.Anchor()
		end, minutes, overdue := Compute(anchor, expected, now)
		if !overdue {
			continue
		}
		late = append(late, models.OverdueVisit{
			ScheduleID:       sc.ID,
			VisitorID:        sc.VisitorID,
			RouteID:          sc.RouteID,
			Status:           sc.Status,
			Motive:           sc.Motive,
			ExpectedDuration: sc.ExpectedDuration,
			Anchor:           anchor,
			EstimatedEnd:     end,
			OverdueMinutes:   minutes,
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)
	for i := range late {
		g.Go(func() error {
			cps, err := d.schedules.ListScheduledCheckpoints(gctx, late[i].ScheduleID)
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load scheduled checkpoints")
			}
			late[i].MissingCheckpoints = len(cps) == 0
			late[i].Pavilions = refs(models.PlannedPavilions(cps), names)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.SortStableFunc(late, func(a, b models.OverdueVisit) int {
		if a.OverdueMinutes != b.OverdueMinutes {
			if a.OverdueMinutes > b.OverdueMinutes {
				return -1
			}
			return 1
		}
		return strings.Compare(a.ScheduleID.String(), b.ScheduleID.String())
	})
	span.SetAttributes(attribute.Int("overdue", len(late)))
	d.metrics.ObserveScan(start, len(late))
	return late, nil
}

func (d *Detector) pavilionNames(ctx context.Context) (map[id.PavilionID]string, error) {
	pavilions, err := d.pavilions.ListPavilions(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load pavilions")
	}
	names := make(map[id.PavilionID]string, len(pavilions))
	for _, p := range pavilions {
		names[p.ID] = p.Name
	}
	return names, nil
}

func refs(pavilionIDs []id.PavilionID, names map[id.PavilionID]string) []models.PavilionRef {
	out := make([]models.PavilionRef, 0, len(pavilionIDs))
	for _, pid := range pavilionIDs {
		out = append(out, models.PavilionRef{ID: pid, Name: names[pid]})
	}
	return out
}
