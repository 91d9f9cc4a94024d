package entity

import (
	"time"

	"github.com/google/uuid"
)

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
)

// CanTransitionTo reports whether the reservation state machine allows moving to next.
// pending is the only state with outgoing transitions.
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	if s != ReservationStatusPending {
		return false
	}
	return next == ReservationStatusConfirmed || next == ReservationStatusCancelled
}

type Reservation struct {
	ID              uuid.UUID         `db:"id"`
	CustomerID      uuid.UUID         `db:"customer_id"`
	ScheduleID      uuid.UUID         `db:"schedule_id"`
	SeatsBooked     []string          `db:"seats_booked"` // in the order they were picked
	Status          ReservationStatus `db:"status"`
	PaymentID       *uuid.UUID        `db:"payment_id"`
	ReservationDate time.Time         `db:"reservation_date"`
	UpdatedAt       time.Time         `db:"updated_at"`
}
