package wire

import (
	"ksrtc-reservation/internal/adaptor"
	"ksrtc-reservation/pkg/middleware"
	"ksrtc-reservation/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireReservation(
	r chi.Router,
	reservationHandler *adaptor.ReservationHandler,
	tokens *utils.TokenIssuer,
	idempotency middleware.IdempotencyStore,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES (require auth) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(tokens, log))

		// Writes a client may retry. Idempotency runs after auth so keys are scoped per customer.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Idempotency(idempotency, config.Redis.IdempotencyTTL, log))

			// POST /api/reservations - hold seats as a pending reservation
			r.Post("/api/reservations", reservationHandler.ReserveSeats)

			// POST /api/payments - pay for a pending reservation and issue tickets
			r.Post("/api/payments", reservationHandler.ConfirmPayment)
		})

		// GET /api/reservations/{id} - reservation with schedule, payment and tickets
		r.Get("/api/reservations/{id}", reservationHandler.GetReservation)

		// POST /api/reservations/{id}/cancel - release the seats of a pending reservation
		r.Post("/api/reservations/{id}/cancel", reservationHandler.CancelReservation)

		// GET /api/tickets/{reservationId}
		r.Get("/api/tickets/{reservationId}", reservationHandler.GetTickets)

		// GET /api/tickets/download/{reservationId} - printable ticket document
		r.Get("/api/tickets/download/{reservationId}", reservationHandler.DownloadTickets)
	})
}
