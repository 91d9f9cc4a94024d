package repository

import (
	"context"
	"errors"
	"fmt"

	"ksrtc-reservation/internal/data/entity"
	"ksrtc-reservation/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ReservationRepository interface {
	Create(ctx context.Context, reservation *entity.Reservation) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Reservation, error)

	// FindByIDForUpdate locks the reservation row for the rest of the transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Reservation, error)

	FindByCustomerID(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*entity.Reservation, error)
	CountByCustomerID(ctx context.Context, customerID uuid.UUID) (int64, error)

	// UpdateStatus moves the reservation from one status to another. It returns
	// ErrNotUpdated when the row is no longer in the from status.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to entity.ReservationStatus, paymentID *uuid.UUID) error
}

type reservationRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewReservationRepository(db database.PgxIface, log *zap.Logger) ReservationRepository {
	return &reservationRepository{
		db:  db,
		log: log.With(zap.String("repository", "reservation")),
	}
}

const reservationColumns = `id, customer_id, schedule_id, seats_booked, status, payment_id, reservation_date, updated_at`

func (r *reservationRepository) Create(ctx context.Context, reservation *entity.Reservation) error {
	query := `
		INSERT INTO reservations (` + reservationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := database.Conn(ctx, r.db).Exec(ctx, query,
		reservation.ID,
		reservation.CustomerID,
		reservation.ScheduleID,
		reservation.SeatsBooked,
		reservation.Status,
		reservation.PaymentID,
		reservation.ReservationDate,
		reservation.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create reservation",
			zap.Error(err),
			zap.String("reservation_id", reservation.ID.String()),
			zap.String("customer_id", reservation.CustomerID.String()),
		)
		return fmt.Errorf("create reservation %s: %w", reservation.ID, err)
	}

	return nil
}

func (r *reservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE id = $1
	`
	return r.findOne(ctx, query, id)
}

func (r *reservationRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE id = $1
		FOR UPDATE
	`
	return r.findOne(ctx, query, id)
}

func (r *reservationRepository) findOne(ctx context.Context, query string, id uuid.UUID) (*entity.Reservation, error) {
	reservation, err := scanReservation(database.Conn(ctx, r.db).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find reservation by ID",
			zap.Error(err),
			zap.String("reservation_id", id.String()),
		)
		return nil, fmt.Errorf("find reservation by ID %s: %w", id, err)
	}

	return reservation, nil
}

func (r *reservationRepository) FindByCustomerID(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*entity.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE customer_id = $1
		ORDER BY reservation_date DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := database.Conn(ctx, r.db).Query(ctx, query, customerID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find reservations by customer",
			zap.Error(err),
			zap.String("customer_id", customerID.String()),
		)
		return nil, fmt.Errorf("find reservations by customer %s: %w", customerID, err)
	}
	defer rows.Close()

	var reservations []*entity.Reservation
	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			r.log.Error("Failed to scan reservation row", zap.Error(err))
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		reservations = append(reservations, reservation)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservations: %w", err)
	}

	return reservations, nil
}

func (r *reservationRepository) CountByCustomerID(ctx context.Context, customerID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM reservations WHERE customer_id = $1`

	var count int64
	if err := database.Conn(ctx, r.db).QueryRow(ctx, query, customerID).Scan(&count); err != nil {
		r.log.Error("Failed to count reservations by customer",
			zap.Error(err),
			zap.String("customer_id", customerID.String()),
		)
		return 0, fmt.Errorf("count reservations by customer %s: %w", customerID, err)
	}

	return count, nil
}

func (r *reservationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to entity.ReservationStatus, paymentID *uuid.UUID) error {
	query := `
		UPDATE reservations
		SET status = $3, payment_id = COALESCE($4, payment_id), updated_at = NOW()
		WHERE id = $1 AND status = $2
	`

	result, err := database.Conn(ctx, r.db).Exec(ctx, query, id, from, to, paymentID)
	if err != nil {
		r.log.Error("Failed to update reservation status",
			zap.Error(err),
			zap.String("reservation_id", id.String()),
			zap.String("status", string(to)),
		)
		return fmt.Errorf("update reservation %s status: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("update reservation %s from %s: %w", id, from, ErrNotUpdated)
	}

	return nil
}

func scanReservation(row scanner) (*entity.Reservation, error) {
	var res entity.Reservation
	err := row.Scan(
		&res.ID,
		&res.CustomerID,
		&res.ScheduleID,
		&res.SeatsBooked,
		&res.Status,
		&res.PaymentID,
		&res.ReservationDate,
		&res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &res, nil
}
