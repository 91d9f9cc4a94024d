package entity

import (
	"time"

	"github.com/google/uuid"
)

// Ticket only exists as part of a confirmed reservation, one per booked seat
type Ticket struct {
	ID            uuid.UUID `db:"id"`
	ReservationID uuid.UUID `db:"reservation_id"`
	TicketNo      string    `db:"ticket_no"` // T001, T002, ...
	SeatNo        string    `db:"seat_no"`
	IssueDate     time.Time `db:"issue_date"`
}
