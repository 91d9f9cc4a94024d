package repository

import (
	"errors"

	"ksrtc-reservation/pkg/database"

	"go.uber.org/zap"
)

// ErrNotUpdated means a guarded UPDATE matched no row, usually because
// the row changed state since it was read
var ErrNotUpdated = errors.New("no rows updated")

// ErrDuplicate means an INSERT hit a unique constraint
var ErrDuplicate = errors.New("duplicate key")

const uniqueViolation = "23505"

type scanner interface {
	Scan(dest ...any) error
}

type Repository struct {
	Customer    CustomerRepository
	Schedule    ScheduleRepository
	Seat        SeatRepository
	Reservation ReservationRepository
	Payment     PaymentRepository
	Ticket      TicketRepository
	Outbox      OutboxRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		Customer:    NewCustomerRepository(db, log),
		Schedule:    NewScheduleRepository(db, log),
		Seat:        NewSeatRepository(db, log),
		Reservation: NewReservationRepository(db, log),
		Payment:     NewPaymentRepository(db, log),
		Ticket:      NewTicketRepository(db, log),
		Outbox:      NewOutboxRepository(db, log),
	}
}
