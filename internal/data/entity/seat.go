package entity

import (
	"time"

	"github.com/google/uuid"
)

type Seat struct {
	ID          uuid.UUID `db:"id"`
	BusID       uuid.UUID `db:"bus_id"`
	SeatNumber  string    `db:"seat_number"` // A1, A2, B1, ...
	IsAvailable bool      `db:"is_available"`
	UpdatedAt   time.Time `db:"updated_at"`
}
