package usecase

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reservationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ksrtc_reservations_created_total",
		Help: "Reservations created in pending state",
	})
	seatConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ksrtc_seat_conflicts_total",
		Help: "Reservation attempts rejected because a seat was taken",
	})
	paymentsConfirmed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ksrtc_payments_confirmed_total",
		Help: "Reservations confirmed by payment",
	})
	ticketsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ksrtc_tickets_issued_total",
		Help: "Tickets issued on confirmation",
	})
	reservationsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ksrtc_reservations_cancelled_total",
		Help: "Pending reservations cancelled by their owner",
	})
)
