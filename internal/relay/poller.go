package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ksrtc-reservation/internal/data/entity"
	"ksrtc-reservation/internal/data/repository"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var (
	eventsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ksrtc_outbox_events_published_total",
		Help: "Outbox events published to Kafka",
	})
	publishErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ksrtc_outbox_publish_errors_total",
		Help: "Failed outbox publish attempts",
	})
)

const sendTimeout = 5 * time.Second

type Publisher interface {
	Publish(ctx context.Context, key, value []byte) error
}

// Message is the envelope written to the broker for every outbox event
type Message struct {
	ID          uuid.UUID       `json:"id"`
	Type        string          `json:"type"`
	AggregateID uuid.UUID       `json:"aggregate_id"`
	OccurredAt  time.Time       `json:"occurred_at"`
	Payload     json.RawMessage `json:"payload"`
}

type Config struct {
	Interval  time.Duration
	BatchSize int
	// VisibilityTimeout is how long a claimed event may stay in processing
	// before another poll claims it again
	VisibilityTimeout time.Duration
}

// OutboxPoller moves committed outbox events to the broker
type OutboxPoller struct {
	outbox    repository.OutboxRepository
	publisher Publisher
	cfg       Config
	log       *zap.Logger
}

func NewOutboxPoller(outbox repository.OutboxRepository, publisher Publisher, cfg Config, log *zap.Logger) *OutboxPoller {
	if cfg.Interval <= 0 {
		cfg.Interval = 2 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.VisibilityTimeout < sendTimeout {
		cfg.VisibilityTimeout = time.Minute
	}

	return &OutboxPoller{
		outbox:    outbox,
		publisher: publisher,
		cfg:       cfg,
		log:       log.With(zap.String("worker", "outbox_relay")),
	}
}

// Run polls until ctx is cancelled
func (p *OutboxPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	p.log.Info("Outbox relay started",
		zap.Duration("interval", p.cfg.Interval),
		zap.Int("batch_size", p.cfg.BatchSize),
		zap.Duration("visibility_timeout", p.cfg.VisibilityTimeout))

	for {
		select {
		case <-ctx.Done():
			p.log.Info("Outbox relay stopped")
			return
		case <-ticker.C:
			if _, err := p.ProcessBatch(ctx); err != nil {
				p.log.Error("Failed to process outbox batch", zap.Error(err))
			}
		}
	}
}

// ProcessBatch publishes one claimed batch and returns how many events went out.
// Every claimed event is marked either processed or new again, even when ctx is
// cancelled mid-batch.
func (p *OutboxPoller) ProcessBatch(ctx context.Context) (int, error) {
	events, err := p.outbox.FetchBatch(ctx, p.cfg.BatchSize, p.cfg.VisibilityTimeout)
	if err != nil {
		return 0, fmt.Errorf("fetch outbox batch: %w", err)
	}
	if len(events) == 0 {
		return 0, nil
	}

	var processed, failed []uuid.UUID
	for _, e := range events {
		if err := p.publish(ctx, e); err != nil {
			p.log.Warn("Failed to publish event",
				zap.Error(err),
				zap.String("event_id", e.ID.String()),
				zap.String("event_type", e.EventType))
			publishErrors.Inc()
			failed = append(failed, e.ID)
			continue
		}
		eventsPublished.Inc()
		processed = append(processed, e.ID)
	}

	markCtx := context.WithoutCancel(ctx)
	if err := errors.Join(
		p.outbox.MarkProcessed(markCtx, processed),
		p.outbox.MarkFailed(markCtx, failed),
	); err != nil {
		p.log.Error("Failed to mark outbox events",
			zap.Error(err),
			zap.Int("processed", len(processed)),
			zap.Int("failed", len(failed)))
		return len(processed), err
	}

	if len(processed) > 0 {
		p.log.Debug("Published outbox events", zap.Int("count", len(processed)))
	}

	return len(processed), nil
}

func (p *OutboxPoller) publish(ctx context.Context, e *entity.OutboxEvent) error {
	value, err := json.Marshal(Message{
		ID:          e.ID,
		Type:        e.EventType,
		AggregateID: e.AggregateID,
		OccurredAt:  e.CreatedAt.UTC(),
		Payload:     e.Payload,
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	return p.publisher.Publish(sendCtx, []byte(e.AggregateID.String()), value)
}
