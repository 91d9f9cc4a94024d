package repository

import (
	"context"
	"fmt"
	"strings"

	"ksrtc-reservation/internal/data/entity"
	"ksrtc-reservation/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TicketRepository interface {
	// CreateBatch inserts all tickets of a reservation in one statement
	CreateBatch(ctx context.Context, tickets []*entity.Ticket) error
	FindByReservationID(ctx context.Context, reservationID uuid.UUID) ([]*entity.Ticket, error)
}

type ticketRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewTicketRepository(db database.PgxIface, log *zap.Logger) TicketRepository {
	return &ticketRepository{
		db:  db,
		log: log.With(zap.String("repository", "ticket")),
	}
}

func (r *ticketRepository) CreateBatch(ctx context.Context, tickets []*entity.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO tickets (id, reservation_id, ticket_no, seat_no, issue_date) VALUES ")

	args := make([]any, 0, len(tickets)*5)
	for i, t := range tickets {
		if i > 0 {
			sb.WriteString(", ")
		}
		n := i * 5
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5)
		args = append(args, t.ID, t.ReservationID, t.TicketNo, t.SeatNo, t.IssueDate)
	}

	_, err := database.Conn(ctx, r.db).Exec(ctx, sb.String(), args...)
	if err != nil {
		r.log.Error("Failed to create tickets",
			zap.Error(err),
			zap.String("reservation_id", tickets[0].ReservationID.String()),
			zap.Int("count", len(tickets)),
		)
		return fmt.Errorf("create %d tickets for reservation %s: %w", len(tickets), tickets[0].ReservationID, err)
	}

	return nil
}

func (r *ticketRepository) FindByReservationID(ctx context.Context, reservationID uuid.UUID) ([]*entity.Ticket, error) {
	query := `
		SELECT id, reservation_id, ticket_no, seat_no, issue_date
		FROM tickets
		WHERE reservation_id = $1
		ORDER BY ticket_no
	`

	rows, err := database.Conn(ctx, r.db).Query(ctx, query, reservationID)
	if err != nil {
		r.log.Error("Failed to find tickets by reservation",
			zap.Error(err),
			zap.String("reservation_id", reservationID.String()),
		)
		return nil, fmt.Errorf("find tickets by reservation %s: %w", reservationID, err)
	}
	defer rows.Close()

	var tickets []*entity.Ticket
	for rows.Next() {
		var t entity.Ticket
		if err := rows.Scan(
			&t.ID,
			&t.ReservationID,
			&t.TicketNo,
			&t.SeatNo,
			&t.IssueDate,
		); err != nil {
			r.log.Error("Failed to scan ticket row", zap.Error(err))
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		tickets = append(tickets, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tickets: %w", err)
	}

	return tickets, nil
}
