package relay

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"ksrtc-reservation/internal/data/entity"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type fakeOutbox struct {
	batch      []*entity.OutboxEvent
	staleAfter time.Duration
	processed  []uuid.UUID
	failed     []uuid.UUID

	processedErr error
	markCtxErrs  []error
}

func (f *fakeOutbox) Create(context.Context, *entity.OutboxEvent) error { return nil }

func (f *fakeOutbox) FetchBatch(_ context.Context, limit int, staleAfter time.Duration) ([]*entity.OutboxEvent, error) {
	f.staleAfter = staleAfter
	if len(f.batch) > limit {
		return f.batch[:limit], nil
	}
	return f.batch, nil
}

func (f *fakeOutbox) MarkProcessed(ctx context.Context, ids []uuid.UUID) error {
	f.markCtxErrs = append(f.markCtxErrs, ctx.Err())
	if f.processedErr != nil {
		return f.processedErr
	}
	f.processed = append(f.processed, ids...)
	return nil
}

func (f *fakeOutbox) MarkFailed(ctx context.Context, ids []uuid.UUID) error {
	f.markCtxErrs = append(f.markCtxErrs, ctx.Err())
	f.failed = append(f.failed, ids...)
	return nil
}

type fakePublisher struct {
	failKey string
	keys    []string
	values  [][]byte
}

func (f *fakePublisher) Publish(ctx context.Context, key, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if string(key) == f.failKey {
		return errors.New("broker unavailable")
	}
	f.keys = append(f.keys, string(key))
	f.values = append(f.values, value)
	return nil
}

func newEvent(aggregateID uuid.UUID) *entity.OutboxEvent {
	return &entity.OutboxEvent{
		ID:          uuid.New(),
		AggregateID: aggregateID,
		EventType:   entity.EventReservationCreated,
		Payload:     []byte(`{"seats":["A1"]}`),
		Status:      entity.OutboxStatusProcessing,
		CreatedAt:   time.Now(),
	}
}

func newPoller(outbox *fakeOutbox, pub *fakePublisher) *OutboxPoller {
	return NewOutboxPoller(outbox, pub, Config{
		Interval:          10 * time.Millisecond,
		BatchSize:         10,
		VisibilityTimeout: 90 * time.Second,
	}, zap.NewNop())
}

func TestProcessBatchPublishesKeyedByReservation(t *testing.T) {
	reservationID := uuid.New()
	event := newEvent(reservationID)
	outbox := &fakeOutbox{batch: []*entity.OutboxEvent{event}}
	pub := &fakePublisher{}

	n, err := newPoller(outbox, pub).ProcessBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if n != 1 || len(outbox.processed) != 1 || outbox.processed[0] != event.ID {
		t.Fatalf("expected event marked processed, got %v", outbox.processed)
	}
	if outbox.staleAfter != 90*time.Second {
		t.Fatalf("expected visibility timeout passed to fetch, got %v", outbox.staleAfter)
	}
	if pub.keys[0] != reservationID.String() {
		t.Fatalf("expected key %s, got %s", reservationID, pub.keys[0])
	}

	var msg Message
	if err := json.Unmarshal(pub.values[0], &msg); err != nil {
		t.Fatalf("decode message: %v", err)
	}
	if msg.Type != entity.EventReservationCreated || string(msg.Payload) != `{"seats":["A1"]}` {
		t.Fatalf("unexpected message: %+v", msg)
	}
}

func TestProcessBatchReturnsFailuresToQueue(t *testing.T) {
	ok := newEvent(uuid.New())
	bad := newEvent(uuid.New())
	outbox := &fakeOutbox{batch: []*entity.OutboxEvent{ok, bad}}
	pub := &fakePublisher{failKey: bad.AggregateID.String()}

	n, err := newPoller(outbox, pub).ProcessBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 published, got %d", n)
	}
	if len(outbox.failed) != 1 || outbox.failed[0] != bad.ID {
		t.Fatalf("expected failed event returned, got %v", outbox.failed)
	}
}

func TestProcessBatchReturnsFailuresWhenMarkProcessedFails(t *testing.T) {
	ok := newEvent(uuid.New())
	bad := newEvent(uuid.New())
	dbDown := errors.New("db down")
	outbox := &fakeOutbox{batch: []*entity.OutboxEvent{ok, bad}, processedErr: dbDown}
	pub := &fakePublisher{failKey: bad.AggregateID.String()}

	_, err := newPoller(outbox, pub).ProcessBatch(context.Background())
	if !errors.Is(err, dbDown) {
		t.Fatalf("expected mark error surfaced, got %v", err)
	}
	if len(outbox.failed) != 1 || outbox.failed[0] != bad.ID {
		t.Fatalf("failed event must still go back to new, got %v", outbox.failed)
	}
}

func TestProcessBatchMarksEventsAfterShutdown(t *testing.T) {
	outbox := &fakeOutbox{batch: []*entity.OutboxEvent{newEvent(uuid.New()), newEvent(uuid.New())}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n, err := newPoller(outbox, &fakePublisher{}).ProcessBatch(ctx)
	if err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if n != 0 || len(outbox.failed) != 2 {
		t.Fatalf("expected both events returned to new, published=%d failed=%v", n, outbox.failed)
	}
	for _, markErr := range outbox.markCtxErrs {
		if markErr != nil {
			t.Fatalf("marks must not use the cancelled context: %v", markErr)
		}
	}
}

func TestRunStopsWithContext(t *testing.T) {
	outbox := &fakeOutbox{batch: []*entity.OutboxEvent{newEvent(uuid.New())}}
	poller := newPoller(outbox, &fakePublisher{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		poller.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("poller did not stop")
	}
}
