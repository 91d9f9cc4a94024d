package entity

import (
	"time"

	"github.com/google/uuid"
)

// Schedule assigns a bus to a route. The ledger only reads it.
type Schedule struct {
	ID            uuid.UUID `db:"id"`
	BusID         uuid.UUID `db:"bus_id"`
	RouteID       uuid.UUID `db:"route_id"`
	DepartureTime time.Time `db:"departure_time"`
	ArrivalTime   time.Time `db:"arrival_time"`
	Fare          float64   `db:"fare"`
}

// ScheduleDetail is a schedule joined with its route and bus
type ScheduleDetail struct {
	Schedule
	Route Route
	Bus   Bus
}
