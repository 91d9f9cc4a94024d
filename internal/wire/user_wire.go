package wire

import (
	"ksrtc-reservation/internal/adaptor"
	"ksrtc-reservation/pkg/middleware"
	"ksrtc-reservation/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireUser(
	r chi.Router,
	userHandler *adaptor.UserHandler,
	tokens *utils.TokenIssuer,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES ====================
	r.Route("/api/user", func(r chi.Router) {
		r.Use(middleware.Auth(tokens, log))

		// GET /api/user/profile - customer with latest reservations
		r.Get("/profile", userHandler.GetProfile)

		// GET /api/user/reservations?page=&per_page= - reservation history
		r.Get("/reservations", userHandler.GetReservations)
	})
}
