package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"ksrtc-reservation/internal/data/entity"
	"ksrtc-reservation/internal/data/repository"

	"github.com/google/uuid"
)

// memStore is an in-memory stand-in for PostgreSQL. Transactions are
// serialized by txMu and rolled back by restoring a snapshot, so the
// concurrency tests here check the ledger's all-or-nothing outcome, not row
// locking. The FOR UPDATE path runs against a real database in
// reservation_pg_test.go (build tag integration).
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	customers    map[uuid.UUID]entity.Customer
	schedules    map[uuid.UUID]entity.ScheduleDetail
	seats        map[uuid.UUID]map[string]entity.Seat
	reservations map[uuid.UUID]entity.Reservation
	payments     map[uuid.UUID]entity.Payment
	tickets      map[uuid.UUID][]entity.Ticket
	outbox       []entity.OutboxEvent

	failTickets bool
}

var errInjected = errors.New("injected failure")

func newMemStore() *memStore {
	return &memStore{
		customers:    make(map[uuid.UUID]entity.Customer),
		schedules:    make(map[uuid.UUID]entity.ScheduleDetail),
		seats:        make(map[uuid.UUID]map[string]entity.Seat),
		reservations: make(map[uuid.UUID]entity.Reservation),
		payments:     make(map[uuid.UUID]entity.Payment),
		tickets:      make(map[uuid.UUID][]entity.Ticket),
	}
}

// addSchedule creates a bus with the given seats, all available
func (s *memStore) addSchedule(fare float64, seatNumbers ...string) entity.ScheduleDetail {
	s.mu.Lock()
	defer s.mu.Unlock()

	bus := entity.Bus{ID: uuid.New(), BusNumber: "KL-15-A-1234", Capacity: len(seatNumbers)}
	route := entity.Route{ID: uuid.New(), Source: "Thiruvananthapuram", Destination: "Kochi", DistanceKm: 205}
	departure := time.Date(2026, 11, 2, 6, 30, 0, 0, time.UTC)

	detail := entity.ScheduleDetail{
		Schedule: entity.Schedule{
			ID:            uuid.New(),
			BusID:         bus.ID,
			RouteID:       route.ID,
			DepartureTime: departure,
			ArrivalTime:   departure.Add(5 * time.Hour),
			Fare:          fare,
		},
		Route: route,
		Bus:   bus,
	}
	s.schedules[detail.ID] = detail

	seats := make(map[string]entity.Seat, len(seatNumbers))
	for _, n := range seatNumbers {
		seats[n] = entity.Seat{ID: uuid.New(), BusID: bus.ID, SeatNumber: n, IsAvailable: true}
	}
	s.seats[bus.ID] = seats

	return detail
}

func (s *memStore) addCustomer(name string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New()
	s.customers[id] = entity.Customer{
		Base:  entity.Base{ID: id, CreatedAt: time.Now()},
		Name:  name,
		Email: name + "@example.com",
	}
	return id
}

func (s *memStore) seatAvailable(busID uuid.UUID, number string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seats[busID][number].IsAvailable
}

func (s *memStore) reservation(id uuid.UUID) entity.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reservations[id]
}

func (s *memStore) counts() (reservations, payments, tickets, events int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ts := range s.tickets {
		tickets += len(ts)
	}
	return len(s.reservations), len(s.payments), tickets, len(s.outbox)
}

type snapshot struct {
	seats        map[uuid.UUID]map[string]entity.Seat
	reservations map[uuid.UUID]entity.Reservation
	payments     map[uuid.UUID]entity.Payment
	tickets      map[uuid.UUID][]entity.Ticket
	outbox       []entity.OutboxEvent
}

func (s *memStore) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := snapshot{
		seats:        make(map[uuid.UUID]map[string]entity.Seat, len(s.seats)),
		reservations: make(map[uuid.UUID]entity.Reservation, len(s.reservations)),
		payments:     make(map[uuid.UUID]entity.Payment, len(s.payments)),
		tickets:      make(map[uuid.UUID][]entity.Ticket, len(s.tickets)),
		outbox:       append([]entity.OutboxEvent(nil), s.outbox...),
	}
	for bus, seats := range s.seats {
		cp := make(map[string]entity.Seat, len(seats))
		for n, seat := range seats {
			cp[n] = seat
		}
		snap.seats[bus] = cp
	}
	for k, v := range s.reservations {
		snap.reservations[k] = v
	}
	for k, v := range s.payments {
		snap.payments[k] = v
	}
	for k, v := range s.tickets {
		snap.tickets[k] = append([]entity.Ticket(nil), v...)
	}
	return snap
}

func (s *memStore) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seats = snap.seats
	s.reservations = snap.reservations
	s.payments = snap.payments
	s.tickets = snap.tickets
	s.outbox = snap.outbox
}

func (s *memStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(ctx); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *memStore) repository() *repository.Repository {
	return &repository.Repository{
		Customer:    fakeCustomers{s},
		Schedule:    fakeSchedules{s},
		Seat:        fakeSeats{s},
		Reservation: fakeReservations{s},
		Payment:     fakePayments{s},
		Ticket:      fakeTickets{s},
		Outbox:      fakeOutbox{s},
	}
}

type fakeCustomers struct{ s *memStore }

func (f fakeCustomers) Create(_ context.Context, c *entity.Customer) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, existing := range f.s.customers {
		if existing.Email == c.Email {
			return repository.ErrDuplicate
		}
	}
	f.s.customers[c.ID] = *c
	return nil
}

func (f fakeCustomers) FindByID(_ context.Context, id uuid.UUID) (*entity.Customer, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	c, ok := f.s.customers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (f fakeCustomers) FindByEmail(_ context.Context, email string) (*entity.Customer, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, c := range f.s.customers {
		if c.Email == email {
			return &c, nil
		}
	}
	return nil, nil
}

type fakeSchedules struct{ s *memStore }

func (f fakeSchedules) FindByID(_ context.Context, id uuid.UUID) (*entity.Schedule, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	d, ok := f.s.schedules[id]
	if !ok {
		return nil, nil
	}
	sch := d.Schedule
	return &sch, nil
}

func (f fakeSchedules) FindDetailByID(_ context.Context, id uuid.UUID) (*entity.ScheduleDetail, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	d, ok := f.s.schedules[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

type fakeSeats struct{ s *memStore }

// LockForBooking needs no row locks here; memStore already runs one transaction at a time
func (f fakeSeats) LockForBooking(_ context.Context, busID uuid.UUID, numbers []string) ([]*entity.Seat, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	var out []*entity.Seat
	for _, n := range numbers {
		if seat, ok := f.s.seats[busID][n]; ok {
			out = append(out, &seat)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeatNumber < out[j].SeatNumber })
	return out, nil
}

func (f fakeSeats) MarkUnavailable(_ context.Context, busID uuid.UUID, numbers []string) (int64, error) {
	return f.flip(busID, numbers, true, false), nil
}

func (f fakeSeats) Release(_ context.Context, busID uuid.UUID, numbers []string) (int64, error) {
	return f.flip(busID, numbers, false, true), nil
}

func (f fakeSeats) flip(busID uuid.UUID, numbers []string, from, to bool) int64 {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	var n int64
	for _, number := range numbers {
		seat, ok := f.s.seats[busID][number]
		if !ok || seat.IsAvailable != from {
			continue
		}
		seat.IsAvailable = to
		f.s.seats[busID][number] = seat
		n++
	}
	return n
}

type fakeReservations struct{ s *memStore }

func (f fakeReservations) Create(_ context.Context, r *entity.Reservation) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.reservations[r.ID] = *r
	return nil
}

func (f fakeReservations) FindByID(_ context.Context, id uuid.UUID) (*entity.Reservation, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	r, ok := f.s.reservations[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (f fakeReservations) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Reservation, error) {
	return f.FindByID(ctx, id)
}

func (f fakeReservations) FindByCustomerID(_ context.Context, customerID uuid.UUID, limit, offset int) ([]*entity.Reservation, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	var all []*entity.Reservation
	for _, r := range f.s.reservations {
		if r.CustomerID == customerID {
			r := r
			all = append(all, &r)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ReservationDate.After(all[j].ReservationDate) })

	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (f fakeReservations) CountByCustomerID(_ context.Context, customerID uuid.UUID) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	var n int64
	for _, r := range f.s.reservations {
		if r.CustomerID == customerID {
			n++
		}
	}
	return n, nil
}

func (f fakeReservations) UpdateStatus(_ context.Context, id uuid.UUID, from, to entity.ReservationStatus, paymentID *uuid.UUID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	r, ok := f.s.reservations[id]
	if !ok || r.Status != from {
		return repository.ErrNotUpdated
	}
	r.Status = to
	if paymentID != nil {
		r.PaymentID = paymentID
	}
	f.s.reservations[id] = r
	return nil
}

type fakePayments struct{ s *memStore }

func (f fakePayments) Create(_ context.Context, p *entity.Payment) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.payments[p.ReservationID]; ok {
		return repository.ErrDuplicate
	}
	f.s.payments[p.ReservationID] = *p
	return nil
}

func (f fakePayments) FindByReservationID(_ context.Context, reservationID uuid.UUID) (*entity.Payment, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	p, ok := f.s.payments[reservationID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

type fakeTickets struct{ s *memStore }

func (f fakeTickets) CreateBatch(_ context.Context, tickets []*entity.Ticket) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.failTickets {
		return errInjected
	}
	for _, t := range tickets {
		f.s.tickets[t.ReservationID] = append(f.s.tickets[t.ReservationID], *t)
	}
	return nil
}

func (f fakeTickets) FindByReservationID(_ context.Context, reservationID uuid.UUID) ([]*entity.Ticket, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	var out []*entity.Ticket
	for _, t := range f.s.tickets[reservationID] {
		t := t
		out = append(out, &t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TicketNo < out[j].TicketNo })
	return out, nil
}

type fakeOutbox struct{ s *memStore }

func (f fakeOutbox) Create(_ context.Context, e *entity.OutboxEvent) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.outbox = append(f.s.outbox, *e)
	return nil
}

func (f fakeOutbox) FetchBatch(context.Context, int, time.Duration) ([]*entity.OutboxEvent, error) {
	return nil, nil
}
func (f fakeOutbox) MarkProcessed(context.Context, []uuid.UUID) error { return nil }
func (f fakeOutbox) MarkFailed(context.Context, []uuid.UUID) error { return nil }
