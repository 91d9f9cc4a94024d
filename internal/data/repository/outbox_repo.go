package repository

import (
	"context"
	"fmt"
	"time"

	"ksrtc-reservation/internal/data/entity"
	"ksrtc-reservation/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OutboxRepository interface {
	// Create stores an event; call it inside the transaction that made the change
	Create(ctx context.Context, event *entity.OutboxEvent) error

	// FetchBatch claims up to limit new events by moving them to processing.
	// Events left in processing for longer than staleAfter are claimed again,
	// which covers a relay that died between claim and mark.
	// Rows claimed by another relay are skipped.
	FetchBatch(ctx context.Context, limit int, staleAfter time.Duration) ([]*entity.OutboxEvent, error)

	MarkProcessed(ctx context.Context, ids []uuid.UUID) error

	// MarkFailed hands the events back to the next poll
	MarkFailed(ctx context.Context, ids []uuid.UUID) error
}

type outboxRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewOutboxRepository(db database.PgxIface, log *zap.Logger) OutboxRepository {
	return &outboxRepository{
		db:  db,
		log: log.With(zap.String("repository", "outbox")),
	}
}

func (r *outboxRepository) Create(ctx context.Context, event *entity.OutboxEvent) error {
	query := `
		INSERT INTO outbox_events (id, aggregate_id, event_type, payload, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
	`

	_, err := database.Conn(ctx, r.db).Exec(ctx, query,
		event.ID,
		event.AggregateID,
		event.EventType,
		event.Payload,
		event.Status,
		event.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create outbox event",
			zap.Error(err),
			zap.String("event_type", event.EventType),
			zap.String("aggregate_id", event.AggregateID.String()),
		)
		return fmt.Errorf("insert outbox event %s: %w", event.EventType, err)
	}

	return nil
}

func (r *outboxRepository) FetchBatch(ctx context.Context, limit int, staleAfter time.Duration) ([]*entity.OutboxEvent, error) {
	query := `
		WITH claimed AS (
			SELECT id
			FROM outbox_events
			WHERE status = 'new'
			   OR (status = 'processing' AND updated_at < NOW() - make_interval(secs => $2))
			ORDER BY created_at ASC
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		UPDATE outbox_events
		SET status = 'processing', updated_at = NOW()
		WHERE id IN (SELECT id FROM claimed)
		RETURNING id, aggregate_id, event_type, payload, status, created_at, updated_at
	`

	rows, err := database.Conn(ctx, r.db).Query(ctx, query, limit, staleAfter.Seconds())
	if err != nil {
		r.log.Error("Failed to claim outbox events", zap.Error(err))
		return nil, fmt.Errorf("claim outbox events: %w", err)
	}
	defer rows.Close()

	var events []*entity.OutboxEvent
	for rows.Next() {
		var e entity.OutboxEvent
		if err := rows.Scan(
			&e.ID,
			&e.AggregateID,
			&e.EventType,
			&e.Payload,
			&e.Status,
			&e.CreatedAt,
			&e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox events: %w", err)
	}

	return events, nil
}

func (r *outboxRepository) MarkProcessed(ctx context.Context, ids []uuid.UUID) error {
	return r.setStatus(ctx, ids, entity.OutboxStatusProcessed)
}

func (r *outboxRepository) MarkFailed(ctx context.Context, ids []uuid.UUID) error {
	return r.setStatus(ctx, ids, entity.OutboxStatusNew)
}

func (r *outboxRepository) setStatus(ctx context.Context, ids []uuid.UUID, status entity.OutboxStatus) error {
	if len(ids) == 0 {
		return nil
	}

	query := `
		UPDATE outbox_events
		SET status = $2, updated_at = NOW()
		WHERE id = ANY($1)
	`

	if _, err := database.Conn(ctx, r.db).Exec(ctx, query, ids, status); err != nil {
		r.log.Error("Failed to update outbox events",
			zap.Error(err),
			zap.String("status", string(status)),
			zap.Int("count", len(ids)),
		)
		return fmt.Errorf("mark outbox events %s: %w", status, err)
	}

	return nil
}
