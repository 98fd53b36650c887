package kafka

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"visitflow/internal/visit/models"
	"visitflow/internal/visit/ports"
	id "visitflow/pkg/domain"
)

var _ ports.Listener = (*Publisher)(nil)

type fakeProducer struct {
	mu      sync.Mutex
	records []*kgo.Record
	err     error
}

func (f *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	f.mu.Lock()
	defer f.mu.Unlock()
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		if f.err == nil {
			f.records = append(f.records, r)
		}
		results = append(results, kgo.ProduceResult{Record: r, Err: f.err})
	}
	return results
}

func decode(t *testing.T, rec *kgo.Record) Event {
	t.Helper()
	var e Event
	require.NoError(t, json.Unmarshal(rec.Value, &e))
	return e
}

func TestNewPublisher_Validates(t *testing.T) {
	_, err := NewPublisher(nil, "visits")
	require.Error(t, err)
	_, err = NewPublisher(&fakeProducer{}, "")
	require.Error(t, err)
}

func TestPublisher_OverdueListReady_OneRecordPerVisit(t *testing.T) {
	fp := &fakeProducer{}
	now := time.Date(2024, 1, 1, 11, 5, 0, 0, time.UTC)
	p, err := NewPublisher(fp, "visit-events", WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	first := models.OverdueVisit{ScheduleID: id.NewScheduleID(), VisitorID: id.NewVisitorID(), OverdueMinutes: 120}
	second := models.OverdueVisit{ScheduleID: id.NewScheduleID(), VisitorID: id.NewVisitorID(), OverdueMinutes: 5}
	p.OverdueListReady(context.Background(), []models.OverdueVisit{first, second})

	require.Len(t, fp.records, 2)
	assert.Equal(t, "visit-events", fp.records[0].Topic)
	assert.Equal(t, first.ScheduleID.String(), string(fp.records[0].Key))

	e := decode(t, fp.records[0])
	assert.Equal(t, EventVisitOverdue, e.Type)
	assert.Equal(t, int64(120), e.OverdueMinutes)
	assert.True(t, e.OccurredAt.Equal(now))
	assert.Equal(t, EventVisitOverdue, string(fp.records[0].Headers[0].Value))
}

func TestPublisher_ScanEventsShareKey(t *testing.T) {
	fp := &fakeProducer{}
	p, err := NewPublisher(fp, "visit-events")
	require.NoError(t, err)

	p.NoOverdueFound(context.Background())
	p.ScanFailed(context.Background(), errors.New("store unavailable"))

	require.Len(t, fp.records, 2)
	assert.Equal(t, scanKey, string(fp.records[0].Key))
	assert.Equal(t, scanKey, string(fp.records[1].Key))
	assert.Equal(t, EventOverdueScanClear, decode(t, fp.records[0]).Type)
	failed := decode(t, fp.records[1])
	assert.Equal(t, EventOverdueScanFailed, failed.Type)
	assert.Equal(t, "store unavailable", failed.Error)
}

func TestPublisher_VisitCompleted(t *testing.T) {
	fp := &fakeProducer{}
	p, err := NewPublisher(fp, "visit-events")
	require.NoError(t, err)

	scheduleID := id.NewScheduleID()
	p.VisitCompleted(context.Background(), scheduleID)

	require.Len(t, fp.records, 1)
	e := decode(t, fp.records[0])
	assert.Equal(t, EventVisitCompleted, e.Type)
	assert.Equal(t, scheduleID.String(), e.ScheduleID)
}

func TestPublisher_ProduceErrorsAreLogged(t *testing.T) {
	fp := &fakeProducer{err: errors.New("broker down")}
	var buf bytes.Buffer
	p, err := NewPublisher(fp, "visit-events", WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	require.NoError(t, err)

	assert.NotPanics(t, func() { p.VisitCompleted(context.Background(), id.NewScheduleID()) })
	assert.Contains(t, buf.String(), "failed to publish event")
	assert.Contains(t, buf.String(), "broker down")
}

func TestPublisher_EmptyOverdueListProducesNothing(t *testing.T) {
	fp := &fakeProducer{}
	p, err := NewPublisher(fp, "visit-events")
	require.NoError(t, err)

	p.OverdueListReady(context.Background(), nil)
	assert.Empty(t, fp.records)
}
