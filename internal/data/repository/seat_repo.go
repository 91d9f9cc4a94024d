package repository

import (
	"context"
	"fmt"

	"ksrtc-reservation/internal/data/entity"
	"ksrtc-reservation/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SeatRepository interface {
	// LockForBooking row-locks the named seats of the bus until the surrounding
	// transaction ends. Rows are locked in seat_number order so two bookings
	// with overlapping seats cannot deadlock.
	LockForBooking(ctx context.Context, busID uuid.UUID, seatNumbers []string) ([]*entity.Seat, error)

	// MarkUnavailable flips available seats to unavailable and returns how many flipped
	MarkUnavailable(ctx context.Context, busID uuid.UUID, seatNumbers []string) (int64, error)

	// Release flips unavailable seats back to available and returns how many flipped
	Release(ctx context.Context, busID uuid.UUID, seatNumbers []string) (int64, error)
}

type seatRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewSeatRepository(db database.PgxIface, log *zap.Logger) SeatRepository {
	return &seatRepository{
		db:  db,
		log: log.With(zap.String("repository", "seat")),
	}
}

const seatColumns = `id, bus_id, seat_number, is_available, updated_at`

func (r *seatRepository) LockForBooking(ctx context.Context, busID uuid.UUID, seatNumbers []string) ([]*entity.Seat, error) {
	if database.TxFromContext(ctx) == nil {
		return nil, fmt.Errorf("lock seats on bus %s: no transaction in context", busID)
	}

	query := `
		SELECT ` + seatColumns + `
		FROM seats
		WHERE bus_id = $1 AND seat_number = ANY($2)
		ORDER BY seat_number
		FOR UPDATE
	`
	return r.querySeats(ctx, query, busID, seatNumbers)
}

func (r *seatRepository) MarkUnavailable(ctx context.Context, busID uuid.UUID, seatNumbers []string) (int64, error) {
	query := `
		UPDATE seats
		SET is_available = false, updated_at = NOW()
		WHERE bus_id = $1 AND seat_number = ANY($2) AND is_available = true
	`

	result, err := database.Conn(ctx, r.db).Exec(ctx, query, busID, seatNumbers)
	if err != nil {
		r.log.Error("Failed to mark seats unavailable",
			zap.Error(err),
			zap.String("bus_id", busID.String()),
			zap.Strings("seats", seatNumbers),
		)
		return 0, fmt.Errorf("mark seats unavailable on bus %s: %w", busID, err)
	}

	return result.RowsAffected(), nil
}

func (r *seatRepository) Release(ctx context.Context, busID uuid.UUID, seatNumbers []string) (int64, error) {
	query := `
		UPDATE seats
		SET is_available = true, updated_at = NOW()
		WHERE bus_id = $1 AND seat_number = ANY($2) AND is_available = false
	`

	result, err := database.Conn(ctx, r.db).Exec(ctx, query, busID, seatNumbers)
	if err != nil {
		r.log.Error("Failed to release seats",
			zap.Error(err),
			zap.String("bus_id", busID.String()),
			zap.Strings("seats", seatNumbers),
		)
		return 0, fmt.Errorf("release seats on bus %s: %w", busID, err)
	}

	return result.RowsAffected(), nil
}

func (r *seatRepository) querySeats(ctx context.Context, query string, busID uuid.UUID, seatNumbers []string) ([]*entity.Seat, error) {
	rows, err := database.Conn(ctx, r.db).Query(ctx, query, busID, seatNumbers)
	if err != nil {
		r.log.Error("Failed to query seats",
			zap.Error(err),
			zap.String("bus_id", busID.String()),
			zap.Int("seat_count", len(seatNumbers)),
		)
		return nil, fmt.Errorf("query seats on bus %s: %w", busID, err)
	}
	defer rows.Close()

	var seats []*entity.Seat
	for rows.Next() {
		var seat entity.Seat
		if err := rows.Scan(
			&seat.ID,
			&seat.BusID,
			&seat.SeatNumber,
			&seat.IsAvailable,
			&seat.UpdatedAt,
		); err != nil {
			r.log.Error("Failed to scan seat row", zap.Error(err))
			return nil, fmt.Errorf("scan seat: %w", err)
		}
		seats = append(seats, &seat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate seats: %w", err)
	}

	return seats, nil
}
