package entity

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Payment is written once, when a reservation is confirmed
type Payment struct {
	ID            uuid.UUID     `db:"id"`
	ReservationID uuid.UUID     `db:"reservation_id"`
	CustomerID    uuid.UUID     `db:"customer_id"`
	Amount        float64       `db:"amount"`
	Status        PaymentStatus `db:"payment_status"`
	Method        string        `db:"payment_method"`
	PaymentDate   time.Time     `db:"payment_date"`
}
