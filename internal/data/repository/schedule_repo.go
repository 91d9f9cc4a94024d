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

type ScheduleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Schedule, error)

	// FindDetailByID joins the schedule with its route and bus
	FindDetailByID(ctx context.Context, id uuid.UUID) (*entity.ScheduleDetail, error)
}

type scheduleRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewScheduleRepository(db database.PgxIface, log *zap.Logger) ScheduleRepository {
	return &scheduleRepository{
		db:  db,
		log: log.With(zap.String("repository", "schedule")),
	}
}

func (r *scheduleRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Schedule, error) {
	query := `
		SELECT id, bus_id, route_id, departure_time, arrival_time, fare
		FROM schedules
		WHERE id = $1
	`

	var s entity.Schedule
	err := database.Conn(ctx, r.db).QueryRow(ctx, query, id).Scan(
		&s.ID,
		&s.BusID,
		&s.RouteID,
		&s.DepartureTime,
		&s.ArrivalTime,
		&s.Fare,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find schedule by ID",
			zap.Error(err),
			zap.String("schedule_id", id.String()),
		)
		return nil, fmt.Errorf("find schedule by ID %s: %w", id, err)
	}

	return &s, nil
}

func (r *scheduleRepository) FindDetailByID(ctx context.Context, id uuid.UUID) (*entity.ScheduleDetail, error) {
	query := `
		SELECT
			s.id, s.bus_id, s.route_id, s.departure_time, s.arrival_time, s.fare,
			rt.id, rt.source, rt.destination, rt.distance_km,
			b.id, b.bus_number, b.capacity
		FROM schedules s
		JOIN routes rt ON rt.id = s.route_id
		JOIN buses b ON b.id = s.bus_id
		WHERE s.id = $1
	`

	var d entity.ScheduleDetail
	err := database.Conn(ctx, r.db).QueryRow(ctx, query, id).Scan(
		&d.ID,
		&d.BusID,
		&d.RouteID,
		&d.DepartureTime,
		&d.ArrivalTime,
		&d.Fare,
		&d.Route.ID,
		&d.Route.Source,
		&d.Route.Destination,
		&d.Route.DistanceKm,
		&d.Bus.ID,
		&d.Bus.BusNumber,
		&d.Bus.Capacity,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find schedule detail",
			zap.Error(err),
			zap.String("schedule_id", id.String()),
		)
		return nil, fmt.Errorf("find schedule detail %s: %w", id, err)
	}

	return &d, nil
}
