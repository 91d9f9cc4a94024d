package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ksrtc-reservation/internal/data/entity"
	"ksrtc-reservation/internal/data/repository"
	"ksrtc-reservation/internal/dto/request"
	"ksrtc-reservation/internal/dto/response"
	"ksrtc-reservation/pkg/database"
	"ksrtc-reservation/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReservationService interface {
	ReserveSeats(ctx context.Context, customerID uuid.UUID, req *request.ReserveSeatsRequest) (*response.ReservationResponse, error)
	ConfirmPayment(ctx context.Context, customerID uuid.UUID, req *request.ConfirmPaymentRequest) (*response.PaymentConfirmationResponse, error)
	CancelReservation(ctx context.Context, customerID, reservationID uuid.UUID) (*response.ReservationResponse, error)

	// Reads, owner only
	GetReservation(ctx context.Context, customerID, reservationID uuid.UUID) (*response.ReservationDetailResponse, error)
	GetTickets(ctx context.Context, customerID, reservationID uuid.UUID) (*response.TicketListResponse, error)
	DownloadTickets(ctx context.Context, customerID, reservationID uuid.UUID) (*response.TicketDownloadResponse, error)
	ListCustomerReservations(ctx context.Context, customerID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReservationResponse], error)
}

type reservationService struct {
	repo *repository.Repository
	tx   database.Transactor
	log  *zap.Logger
	now  func() time.Time
}

func NewReservationService(repo *repository.Repository, tx database.Transactor, log *zap.Logger) ReservationService {
	return &reservationService{
		repo: repo,
		tx:   tx,
		log:  log.With(zap.String("service", "reservation")),
		now:  time.Now,
	}
}

type reservationEvent struct {
	ReservationID uuid.UUID                `json:"reservation_id"`
	CustomerID    uuid.UUID                `json:"customer_id"`
	ScheduleID    uuid.UUID                `json:"schedule_id"`
	Seats         []string                 `json:"seats"`
	Status        entity.ReservationStatus `json:"status"`
	PaymentID     *uuid.UUID               `json:"payment_id,omitempty"`
	Amount        float64                  `json:"amount,omitempty"`
	OccurredAt    time.Time                `json:"occurred_at"`
}

func (s *reservationService) ReserveSeats(ctx context.Context, customerID uuid.UUID, req *request.ReserveSeatsRequest) (*response.ReservationResponse, error) {
	if len(req.Seats) == 0 {
		return nil, ErrEmptySeatSelection
	}

	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Reserve seats validation failed", zap.Any("errors", errs))
		return nil, &ValidationError{Fields: errs}
	}

	scheduleID, err := uuid.Parse(req.ScheduleID)
	if err != nil {
		return nil, newValidationError("schedule_id", "Must be a valid UUID")
	}

	seats := append([]string(nil), req.Seats...)
	var (
		reservation *entity.Reservation
		fare        float64
	)

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		schedule, err := s.repo.Schedule.FindByID(ctx, scheduleID)
		if err != nil {
			return fmt.Errorf("find schedule: %w", err)
		}
		if schedule == nil {
			return ErrScheduleNotFound
		}
		fare = schedule.Fare

		// held until commit, so availability cannot change under us
		locked, err := s.repo.Seat.LockForBooking(ctx, schedule.BusID, seats)
		if err != nil {
			return fmt.Errorf("lock seats: %w", err)
		}

		byNumber := make(map[string]*entity.Seat, len(locked))
		for _, seat := range locked {
			byNumber[seat.SeatNumber] = seat
		}

		var missing, taken []string
		for _, number := range seats {
			seat, ok := byNumber[number]
			switch {
			case !ok:
				missing = append(missing, number)
			case !seat.IsAvailable:
				taken = append(taken, number)
			}
		}
		if len(missing) > 0 {
			return &SeatNotFoundError{Seats: missing}
		}
		if len(taken) > 0 {
			return &SeatUnavailableError{Seats: taken}
		}

		now := s.now()
		reservation = &entity.Reservation{
			ID:              uuid.New(),
			CustomerID:      customerID,
			ScheduleID:      schedule.ID,
			SeatsBooked:     seats,
			Status:          entity.ReservationStatusPending,
			ReservationDate: now,
			UpdatedAt:       now,
		}
		if err := s.repo.Reservation.Create(ctx, reservation); err != nil {
			return err
		}

		flipped, err := s.repo.Seat.MarkUnavailable(ctx, schedule.BusID, seats)
		if err != nil {
			return err
		}
		if flipped != int64(len(seats)) {
			return &SeatUnavailableError{Seats: seats}
		}

		return s.writeEvent(ctx, entity.EventReservationCreated, reservation, 0)
	})

	if err != nil {
		var unavailable *SeatUnavailableError
		if errors.As(err, &unavailable) {
			seatConflicts.Inc()
			s.log.Info("Seats already taken",
				zap.String("customer_id", customerID.String()),
				zap.String("schedule_id", scheduleID.String()),
				zap.Strings("seats", unavailable.Seats),
			)
		}
		return nil, err
	}

	reservationsCreated.Inc()
	s.log.Info("Reservation created",
		zap.String("reservation_id", reservation.ID.String()),
		zap.String("customer_id", customerID.String()),
		zap.Strings("seats", reservation.SeatsBooked),
	)

	resp := response.ReservationToResponse(reservation, fare)
	return &resp, nil
}

func (s *reservationService) ConfirmPayment(ctx context.Context, customerID uuid.UUID, req *request.ConfirmPaymentRequest) (*response.PaymentConfirmationResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Confirm payment validation failed", zap.Any("errors", errs))
		return nil, &ValidationError{Fields: errs}
	}

	reservationID, err := uuid.Parse(req.ReservationID)
	if err != nil {
		return nil, newValidationError("reservation_id", "Must be a valid UUID")
	}

	var (
		reservation *entity.Reservation
		payment     *entity.Payment
		tickets     []*entity.Ticket
		fare        float64
	)

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		reservation, err = s.repo.Reservation.FindByIDForUpdate(ctx, reservationID)
		if err != nil {
			return fmt.Errorf("find reservation: %w", err)
		}
		if reservation == nil || reservation.CustomerID != customerID {
			return ErrReservationNotFound
		}

		if !reservation.Status.CanTransitionTo(entity.ReservationStatusConfirmed) {
			return &InvalidStateError{
				ReservationID: reservation.ID,
				Status:        reservation.Status,
				Target:        entity.ReservationStatusConfirmed,
			}
		}

		schedule, err := s.repo.Schedule.FindByID(ctx, reservation.ScheduleID)
		if err != nil {
			return fmt.Errorf("find schedule: %w", err)
		}
		if schedule == nil {
			return ErrScheduleNotFound
		}
		fare = schedule.Fare

		expected := utils.ToMinorUnits(schedule.Fare) * int64(len(reservation.SeatsBooked))
		if utils.ToMinorUnits(req.Amount) != expected {
			return &AmountMismatchError{Expected: float64(expected) / 100, Got: req.Amount}
		}

		now := s.now()
		payment = &entity.Payment{
			ID:            uuid.New(),
			ReservationID: reservation.ID,
			CustomerID:    customerID,
			Amount:        float64(expected) / 100,
			Status:        entity.PaymentStatusCompleted,
			Method:        req.PaymentMethod,
			PaymentDate:   now,
		}
		if err := s.repo.Payment.Create(ctx, payment); err != nil {
			return err
		}

		err = s.repo.Reservation.UpdateStatus(ctx, reservation.ID,
			entity.ReservationStatusPending, entity.ReservationStatusConfirmed, &payment.ID)
		if errors.Is(err, repository.ErrNotUpdated) {
			return &InvalidStateError{
				ReservationID: reservation.ID,
				Status:        reservation.Status,
				Target:        entity.ReservationStatusConfirmed,
			}
		}
		if err != nil {
			return err
		}
		reservation.Status = entity.ReservationStatusConfirmed
		reservation.PaymentID = &payment.ID
		reservation.UpdatedAt = now

		tickets = issueTickets(reservation, now)
		if err := s.repo.Ticket.CreateBatch(ctx, tickets); err != nil {
			return err
		}

		return s.writeEvent(ctx, entity.EventReservationConfirmed, reservation, payment.Amount)
	})

	if err != nil {
		return nil, err
	}

	paymentsConfirmed.Inc()
	ticketsIssued.Add(float64(len(tickets)))
	s.log.Info("Reservation confirmed",
		zap.String("reservation_id", reservation.ID.String()),
		zap.String("payment_id", payment.ID.String()),
		zap.Int("tickets", len(tickets)),
	)

	return &response.PaymentConfirmationResponse{
		Reservation: response.ReservationToResponse(reservation, fare),
		Payment:     response.PaymentToResponse(payment),
		Tickets:     response.TicketsToResponse(tickets),
	}, nil
}

// issueTickets numbers tickets T001..Tn following the booking order of the seats
func issueTickets(reservation *entity.Reservation, issuedAt time.Time) []*entity.Ticket {
	tickets := make([]*entity.Ticket, 0, len(reservation.SeatsBooked))
	for i, seat := range reservation.SeatsBooked {
		tickets = append(tickets, &entity.Ticket{
			ID:            uuid.New(),
			ReservationID: reservation.ID,
			TicketNo:      fmt.Sprintf("T%03d", i+1),
			SeatNo:        seat,
			IssueDate:     issuedAt,
		})
	}
	return tickets
}

func (s *reservationService) CancelReservation(ctx context.Context, customerID, reservationID uuid.UUID) (*response.ReservationResponse, error) {
	var (
		reservation *entity.Reservation
		fare        float64
	)

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		reservation, err = s.repo.Reservation.FindByIDForUpdate(ctx, reservationID)
		if err != nil {
			return fmt.Errorf("find reservation: %w", err)
		}
		if reservation == nil || reservation.CustomerID != customerID {
			return ErrReservationNotFound
		}

		if !reservation.Status.CanTransitionTo(entity.ReservationStatusCancelled) {
			return &InvalidStateError{
				ReservationID: reservation.ID,
				Status:        reservation.Status,
				Target:        entity.ReservationStatusCancelled,
			}
		}

		schedule, err := s.repo.Schedule.FindByID(ctx, reservation.ScheduleID)
		if err != nil {
			return fmt.Errorf("find schedule: %w", err)
		}
		if schedule == nil {
			return ErrScheduleNotFound
		}
		fare = schedule.Fare

		err = s.repo.Reservation.UpdateStatus(ctx, reservation.ID,
			entity.ReservationStatusPending, entity.ReservationStatusCancelled, nil)
		if errors.Is(err, repository.ErrNotUpdated) {
			return &InvalidStateError{
				ReservationID: reservation.ID,
				Status:        reservation.Status,
				Target:        entity.ReservationStatusCancelled,
			}
		}
		if err != nil {
			return err
		}
		reservation.Status = entity.ReservationStatusCancelled
		reservation.UpdatedAt = s.now()

		released, err := s.repo.Seat.Release(ctx, schedule.BusID, reservation.SeatsBooked)
		if err != nil {
			return err
		}
		if released != int64(len(reservation.SeatsBooked)) {
			s.log.Warn("Released fewer seats than booked",
				zap.String("reservation_id", reservation.ID.String()),
				zap.Int64("released", released),
				zap.Int("booked", len(reservation.SeatsBooked)),
			)
		}

		return s.writeEvent(ctx, entity.EventReservationCancelled, reservation, 0)
	})

	if err != nil {
		return nil, err
	}

	reservationsCancelled.Inc()
	s.log.Info("Reservation cancelled",
		zap.String("reservation_id", reservation.ID.String()),
		zap.Strings("seats", reservation.SeatsBooked),
	)

	resp := response.ReservationToResponse(reservation, fare)
	return &resp, nil
}

func (s *reservationService) GetReservation(ctx context.Context, customerID, reservationID uuid.UUID) (*response.ReservationDetailResponse, error) {
	reservation, err := s.findOwned(ctx, customerID, reservationID)
	if err != nil {
		return nil, err
	}

	detail, err := s.repo.Schedule.FindDetailByID(ctx, reservation.ScheduleID)
	if err != nil {
		return nil, fmt.Errorf("find schedule detail: %w", err)
	}
	if detail == nil {
		return nil, ErrScheduleNotFound
	}

	payment, err := s.repo.Payment.FindByReservationID(ctx, reservation.ID)
	if err != nil {
		return nil, fmt.Errorf("find payment: %w", err)
	}

	tickets, err := s.repo.Ticket.FindByReservationID(ctx, reservation.ID)
	if err != nil {
		return nil, fmt.Errorf("find tickets: %w", err)
	}

	resp := &response.ReservationDetailResponse{
		ReservationResponse: response.ReservationToResponse(reservation, detail.Fare),
		Schedule:            response.ScheduleToSummary(detail),
		Tickets:             response.TicketsToResponse(tickets),
	}
	if payment != nil {
		p := response.PaymentToResponse(payment)
		resp.Payment = &p
	}

	return resp, nil
}

func (s *reservationService) GetTickets(ctx context.Context, customerID, reservationID uuid.UUID) (*response.TicketListResponse, error) {
	reservation, err := s.findOwned(ctx, customerID, reservationID)
	if err != nil {
		return nil, err
	}

	tickets, err := s.repo.Ticket.FindByReservationID(ctx, reservation.ID)
	if err != nil {
		return nil, fmt.Errorf("find tickets: %w", err)
	}

	return &response.TicketListResponse{
		ReservationID: reservation.ID.String(),
		Status:        reservation.Status,
		Tickets:       response.TicketsToResponse(tickets),
	}, nil
}

// DownloadTickets only serves confirmed reservations that have tickets
func (s *reservationService) DownloadTickets(ctx context.Context, customerID, reservationID uuid.UUID) (*response.TicketDownloadResponse, error) {
	reservation, err := s.findOwned(ctx, customerID, reservationID)
	if err != nil {
		return nil, err
	}
	if reservation.Status != entity.ReservationStatusConfirmed {
		return nil, ErrNotFound
	}

	tickets, err := s.repo.Ticket.FindByReservationID(ctx, reservation.ID)
	if err != nil {
		return nil, fmt.Errorf("find tickets: %w", err)
	}
	if len(tickets) == 0 {
		return nil, ErrNotFound
	}

	customer, err := s.repo.Customer.FindByID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("find customer: %w", err)
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}

	detail, err := s.repo.Schedule.FindDetailByID(ctx, reservation.ScheduleID)
	if err != nil {
		return nil, fmt.Errorf("find schedule detail: %w", err)
	}
	if detail == nil {
		return nil, ErrScheduleNotFound
	}

	payment, err := s.repo.Payment.FindByReservationID(ctx, reservation.ID)
	if err != nil {
		return nil, fmt.Errorf("find payment: %w", err)
	}

	resp := &response.TicketDownloadResponse{
		ReservationID:  reservation.ID.String(),
		PassengerName:  customer.Name,
		PassengerEmail: customer.Email,
		PassengerPhone: customer.Phone,
		Schedule:       response.ScheduleToSummary(detail),
		Tickets:        response.TicketsToResponse(tickets),
		BookingDate:    reservation.ReservationDate,
	}
	if payment != nil {
		p := response.PaymentToResponse(payment)
		resp.Payment = &p
	}

	return resp, nil
}

func (s *reservationService) ListCustomerReservations(ctx context.Context, customerID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReservationResponse], error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	reservations, err := s.repo.Reservation.FindByCustomerID(ctx, customerID, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}

	total, err := s.repo.Reservation.CountByCustomerID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("count reservations: %w", err)
	}

	fares := make(map[uuid.UUID]float64)
	data := make([]response.ReservationResponse, 0, len(reservations))
	for _, r := range reservations {
		fare, ok := fares[r.ScheduleID]
		if !ok {
			schedule, err := s.repo.Schedule.FindByID(ctx, r.ScheduleID)
			if err != nil {
				return nil, fmt.Errorf("find schedule: %w", err)
			}
			if schedule != nil {
				fare = schedule.Fare
			}
			fares[r.ScheduleID] = fare
		}
		data = append(data, response.ReservationToResponse(r, fare))
	}

	return response.NewPaginatedResponse(data, req.Page, req.Limit(), total), nil
}

func (s *reservationService) findOwned(ctx context.Context, customerID, reservationID uuid.UUID) (*entity.Reservation, error) {
	reservation, err := s.repo.Reservation.FindByID(ctx, reservationID)
	if err != nil {
		return nil, fmt.Errorf("find reservation: %w", err)
	}
	if reservation == nil || reservation.CustomerID != customerID {
		return nil, ErrNotFound
	}
	return reservation, nil
}

func (s *reservationService) writeEvent(ctx context.Context, eventType string, r *entity.Reservation, amount float64) error {
	payload, err := json.Marshal(reservationEvent{
		ReservationID: r.ID,
		CustomerID:    r.CustomerID,
		ScheduleID:    r.ScheduleID,
		Seats:         r.SeatsBooked,
		Status:        r.Status,
		PaymentID:     r.PaymentID,
		Amount:        amount,
		OccurredAt:    r.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", eventType, err)
	}

	return s.repo.Outbox.Create(ctx, &entity.OutboxEvent{
		ID:          uuid.New(),
		AggregateID: r.ID,
		EventType:   eventType,
		Payload:     payload,
		Status:      entity.OutboxStatusNew,
		CreatedAt:   r.UpdatedAt,
	})
}
