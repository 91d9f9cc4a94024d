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

type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	FindByReservationID(ctx context.Context, reservationID uuid.UUID) (*entity.Payment, error)
}

type paymentRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewPaymentRepository(db database.PgxIface, log *zap.Logger) PaymentRepository {
	return &paymentRepository{
		db:  db,
		log: log.With(zap.String("repository", "payment")),
	}
}

func (r *paymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	query := `
		INSERT INTO payments (id, reservation_id, customer_id, amount, payment_status, payment_method, payment_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := database.Conn(ctx, r.db).Exec(ctx, query,
		payment.ID,
		payment.ReservationID,
		payment.CustomerID,
		payment.Amount,
		payment.Status,
		payment.Method,
		payment.PaymentDate,
	)

	if err != nil {
		r.log.Error("Failed to create payment",
			zap.Error(err),
			zap.String("reservation_id", payment.ReservationID.String()),
		)
		return fmt.Errorf("create payment for reservation %s: %w", payment.ReservationID, err)
	}

	return nil
}

func (r *paymentRepository) FindByReservationID(ctx context.Context, reservationID uuid.UUID) (*entity.Payment, error) {
	query := `
		SELECT id, reservation_id, customer_id, amount, payment_status, payment_method, payment_date
		FROM payments
		WHERE reservation_id = $1
	`

	var p entity.Payment
	err := database.Conn(ctx, r.db).QueryRow(ctx, query, reservationID).Scan(
		&p.ID,
		&p.ReservationID,
		&p.CustomerID,
		&p.Amount,
		&p.Status,
		&p.Method,
		&p.PaymentDate,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find payment by reservation",
			zap.Error(err),
			zap.String("reservation_id", reservationID.String()),
		)
		return nil, fmt.Errorf("find payment by reservation %s: %w", reservationID, err)
	}

	return &p, nil
}
