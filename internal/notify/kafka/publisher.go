// Package kafka publishes engine events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"visitflow/internal/visit/models"
	id "visitflow/pkg/domain"
)

// Event types written to the topic.
const (
	EventVisitCompleted    = "visit_completed"
	EventVisitOverdue      = "visit_overdue"
	EventOverdueScanClear  = "overdue_scan_clear"
	EventOverdueScanFailed = "overdue_scan_failed"
)

const scanKey = "overdue-scan"

// Event is the JSON payload of every record.
type Event struct {
	Type           string    `json:"type"`
	OccurredAt     time.Time `json:"occurred_at"`
	ScheduleID     string    `json:"schedule_id,omitempty"`
	VisitorID      string    `json:"visitor_id,omitempty"`
	OverdueMinutes int64     `json:"overdue_minutes,omitempty"`
	EstimatedEnd   time.Time `json:"estimated_end,omitzero"`
	Error          string    `json:"error,omitempty"`
}

type producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Publisher is a ports.Listener that writes events to Kafka. Produce errors are logged;
// the engine never waits on a broken broker for longer than the produce timeout.
type Publisher struct {
	client  producer
	topic   string
	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func WithProduceTimeout(d time.Duration) Option {
	return func(p *Publisher) {
		if d > 0 {
			p.timeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Publisher) {
		if now != nil {
			p.now = now
		}
	}
}

func NewPublisher(client producer, topic string, opts ...Option) (*Publisher, error) {
	if client == nil {
		return nil, errors.New("kafka client is required")
	}
	if topic == "" {
		return nil, errors.New("kafka topic is required")
	}
	p := &Publisher{
		client:  client,
		topic:   topic,
		timeout: 5 * time.Second,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// NewClient builds a franz-go client for the given seed brokers.
func NewClient(brokers []string, clientID string) (*kgo.Client, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka publisher requires at least one broker")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ClientID(clientID),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerLinger(10*time.Millisecond),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return client, nil
}

// EnsureTopic creates topic when it does not exist yet.
func EnsureTopic(ctx context.Context, client *kgo.Client, topic string, partitions int32, replicationFactor int16) error {
	adm := kadm.NewClient(client)
	resp, err := adm.CreateTopic(ctx, partitions, replicationFactor, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("create topic %s: %w", topic, resp.Err)
	}
	return nil
}

func (p *Publisher) OverdueListReady(ctx context.Context, visits []models.OverdueVisit) {
	records := make([]*kgo.Record, 0, len(visits))
	for _, v := range visits {
		rec, err := p.record(v.ScheduleID.String(), Event{
			Type:           EventVisitOverdue,
			ScheduleID:     v.ScheduleID.String(),
			VisitorID:      v.VisitorID.String(),
			OverdueMinutes: v.OverdueMinutes,
			EstimatedEnd:   v.EstimatedEnd,
		})
		if err != nil {
			p.logError(ctx, EventVisitOverdue, err)
			continue
		}
		records = append(records, rec)
	}
	p.produce(ctx, EventVisitOverdue, records...)
}

func (p *Publisher) NoOverdueFound(ctx context.Context) {
	rec, err := p.record(scanKey, Event{Type: EventOverdueScanClear})
	if err != nil {
		p.logError(ctx, EventOverdueScanClear, err)
		return
	}
	p.produce(ctx, EventOverdueScanClear, rec)
}

func (p *Publisher) ScanFailed(ctx context.Context, scanErr error) {
	rec, err := p.record(scanKey, Event{Type: EventOverdueScanFailed, Error: scanErr.Error()})
	if err != nil {
		p.logError(ctx, EventOverdueScanFailed, err)
		return
	}
	p.produce(ctx, EventOverdueScanFailed, rec)
}

func (p *Publisher) VisitCompleted(ctx context.Context, scheduleID id.ScheduleID) {
	rec, err := p.record(scheduleID.String(), Event{Type: EventVisitCompleted, ScheduleID: scheduleID.String()})
	if err != nil {
		p.logError(ctx, EventVisitCompleted, err)
		return
	}
	p.produce(ctx, EventVisitCompleted, rec)
}

func (p *Publisher) record(key string, event Event) (*kgo.Record, error) {
	event.OccurredAt = p.now().UTC()
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal %s event: %w", event.Type, err)
	}
	return &kgo.Record{
		Topic:     p.topic,
		Key:       []byte(key),
		Value:     payload,
		Timestamp: event.OccurredAt,
		Headers:   []kgo.RecordHeader{{Key: "event_type", Value: []byte(event.Type)}},
	}, nil
}

func (p *Publisher) produce(ctx context.Context, eventType string, records ...*kgo.Record) {
	if len(records) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()
	if err := p.client.ProduceSync(ctx, records...).FirstErr(); err != nil {
		p.logError(ctx, eventType, err)
	}
}

func (p *Publisher) logError(ctx context.Context, eventType string, err error) {
	if p.logger == nil {
		return
	}
	p.logger.ErrorContext(ctx, "failed to publish event",
		"event_type", eventType,
		"topic", p.topic,
		"error", err,
	)
}
