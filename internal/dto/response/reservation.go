package response

import (
	"time"

	"ksrtc-reservation/internal/data/entity"
)

type ReservationResponse struct {
	ID              string                   `json:"id"`
	CustomerID      string                   `json:"customer_id"`
	ScheduleID      string                   `json:"schedule_id"`
	SeatsBooked     []string                 `json:"seats_booked"`
	Status          entity.ReservationStatus `json:"status"`
	PaymentID       *string                  `json:"payment_id,omitempty"`
	Fare            float64                  `json:"fare,omitempty"`
	TotalAmount     float64                  `json:"total_amount,omitempty"`
	ReservationDate time.Time                `json:"reservation_date"`
}

type ScheduleSummary struct {
	Source        string    `json:"source"`
	Destination   string    `json:"destination"`
	DistanceKm    float64   `json:"distance_km"`
	BusNumber     string    `json:"bus_number"`
	DepartureTime time.Time `json:"departure_time"`
	ArrivalTime   time.Time `json:"arrival_time"`
	Fare          float64   `json:"fare"`
}

type PaymentResponse struct {
	ID            string               `json:"id"`
	ReservationID string               `json:"reservation_id"`
	Amount        float64              `json:"amount"`
	Status        entity.PaymentStatus `json:"payment_status"`
	PaymentMethod string               `json:"payment_method"`
	PaymentDate   time.Time            `json:"payment_date"`
}

type TicketResponse struct {
	ID        string    `json:"id"`
	TicketNo  string    `json:"ticket_no"`
	SeatNo    string    `json:"seat_no"`
	IssueDate time.Time `json:"issue_date"`
}

type ReservationDetailResponse struct {
	ReservationResponse
	Schedule ScheduleSummary  `json:"schedule"`
	Payment  *PaymentResponse `json:"payment,omitempty"`
	Tickets  []TicketResponse `json:"tickets"`
}

type PaymentConfirmationResponse struct {
	Reservation ReservationResponse `json:"reservation"`
	Payment     PaymentResponse     `json:"payment"`
	Tickets     []TicketResponse    `json:"tickets"`
}

type TicketListResponse struct {
	ReservationID string                   `json:"reservation_id"`
	Status        entity.ReservationStatus `json:"status"`
	Tickets       []TicketResponse         `json:"tickets"`
}

// TicketDownloadResponse is the printable document for a confirmed reservation
type TicketDownloadResponse struct {
	ReservationID  string           `json:"reservation_id"`
	PassengerName  string           `json:"passenger_name"`
	PassengerEmail string           `json:"passenger_email"`
	PassengerPhone *string          `json:"passenger_phone,omitempty"`
	Schedule       ScheduleSummary  `json:"schedule"`
	Payment        *PaymentResponse `json:"payment,omitempty"`
	Tickets        []TicketResponse `json:"tickets"`
	BookingDate    time.Time        `json:"booking_date"`
}

// Helper converters
func ReservationToResponse(r *entity.Reservation, fare float64) ReservationResponse {
	resp := ReservationResponse{
		ID:              r.ID.String(),
		CustomerID:      r.CustomerID.String(),
		ScheduleID:      r.ScheduleID.String(),
		SeatsBooked:     r.SeatsBooked,
		Status:          r.Status,
		Fare:            fare,
		TotalAmount:     fare * float64(len(r.SeatsBooked)),
		ReservationDate: r.ReservationDate,
	}

	if r.PaymentID != nil {
		id := r.PaymentID.String()
		resp.PaymentID = &id
	}

	return resp
}

func ScheduleToSummary(d *entity.ScheduleDetail) ScheduleSummary {
	return ScheduleSummary{
		Source:        d.Route.Source,
		Destination:   d.Route.Destination,
		DistanceKm:    d.Route.DistanceKm,
		BusNumber:     d.Bus.BusNumber,
		DepartureTime: d.DepartureTime,
		ArrivalTime:   d.ArrivalTime,
		Fare:          d.Fare,
	}
}

func PaymentToResponse(p *entity.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID.String(),
		ReservationID: p.ReservationID.String(),
		Amount:        p.Amount,
		Status:        p.Status,
		PaymentMethod: p.Method,
		PaymentDate:   p.PaymentDate,
	}
}

func TicketsToResponse(tickets []*entity.Ticket) []TicketResponse {
	out := make([]TicketResponse, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, TicketResponse{
			ID:        t.ID.String(),
			TicketNo:  t.TicketNo,
			SeatNo:    t.SeatNo,
			IssueDate: t.IssueDate,
		})
	}
	return out
}
