package entity

import "github.com/google/uuid"

type Route struct {
	ID          uuid.UUID `db:"id"`
	Source      string    `db:"source"`
	Destination string    `db:"destination"`
	DistanceKm  float64   `db:"distance_km"`
}

type Bus struct {
	ID        uuid.UUID `db:"id"`
	BusNumber string    `db:"bus_number"`
	Capacity  int       `db:"capacity"`
}
