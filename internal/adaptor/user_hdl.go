package adaptor

import (
	"net/http"

	"ksrtc-reservation/internal/dto/request"
	"ksrtc-reservation/internal/usecase"
	"ksrtc-reservation/pkg/utils"

	"go.uber.org/zap"
)

type UserHandler struct {
	customers    usecase.CustomerService
	reservations usecase.ReservationService
	log          *zap.Logger
}

func NewUserHandler(customers usecase.CustomerService, reservations usecase.ReservationService, log *zap.Logger) *UserHandler {
	return &UserHandler{
		customers:    customers,
		reservations: reservations,
		log:          log.With(zap.String("handler", "user")),
	}
}

// GetProfile handles GET /api/user/profile (protected)
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	customerID, ok := utils.GetCustomerIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	profile, err := h.customers.GetProfile(r.Context(), customerID)
	if err != nil {
		handleServiceError(w, h.log, err, "get profile")
		return
	}

	utils.ResponseSuccess(w, "success", profile)
}

// GetReservations handles GET /api/user/reservations (protected)
func (h *UserHandler) GetReservations(w http.ResponseWriter, r *http.Request) {
	customerID, ok := utils.GetCustomerIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	query := r.URL.Query()
	req := &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}

	reservations, err := h.reservations.ListCustomerReservations(r.Context(), customerID, req)
	if err != nil {
		handleServiceError(w, h.log, err, "list reservations")
		return
	}

	utils.ResponseSuccess(w, "success", reservations)
}
