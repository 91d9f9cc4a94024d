package adaptor

import (
	"fmt"
	"net/http"

	"ksrtc-reservation/internal/dto/request"
	"ksrtc-reservation/internal/usecase"
	"ksrtc-reservation/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReservationHandler struct {
	service usecase.ReservationService
	log     *zap.Logger
}

func NewReservationHandler(service usecase.ReservationService, log *zap.Logger) *ReservationHandler {
	return &ReservationHandler{
		service: service,
		log:     log.With(zap.String("handler", "reservation")),
	}
}

// ReserveSeats handles POST /api/reservations (protected)
func (h *ReservationHandler) ReserveSeats(w http.ResponseWriter, r *http.Request) {
	customerID, ok := utils.GetCustomerIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.ReserveSeatsRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	reservation, err := h.service.ReserveSeats(r.Context(), customerID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "reserve seats")
		return
	}

	utils.ResponseCreated(w, "Reservation created", reservation)
}

// GetReservation handles GET /api/reservations/{id} (protected)
func (h *ReservationHandler) GetReservation(w http.ResponseWriter, r *http.Request) {
	customerID, reservationID, ok := h.ownerAndReservation(w, r, "id")
	if !ok {
		return
	}

	reservation, err := h.service.GetReservation(r.Context(), customerID, reservationID)
	if err != nil {
		handleServiceError(w, h.log, err, "get reservation")
		return
	}

	utils.ResponseSuccess(w, "success", reservation)
}

// CancelReservation handles POST /api/reservations/{id}/cancel (protected)
func (h *ReservationHandler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	customerID, reservationID, ok := h.ownerAndReservation(w, r, "id")
	if !ok {
		return
	}

	reservation, err := h.service.CancelReservation(r.Context(), customerID, reservationID)
	if err != nil {
		handleServiceError(w, h.log, err, "cancel reservation")
		return
	}

	utils.ResponseSuccess(w, "Reservation cancelled", reservation)
}

// ConfirmPayment handles POST /api/payments (protected)
func (h *ReservationHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	customerID, ok := utils.GetCustomerIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.ConfirmPaymentRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	confirmation, err := h.service.ConfirmPayment(r.Context(), customerID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "confirm payment")
		return
	}

	utils.ResponseSuccess(w, "Payment successful", confirmation)
}

// GetTickets handles GET /api/tickets/{reservationId} (protected)
func (h *ReservationHandler) GetTickets(w http.ResponseWriter, r *http.Request) {
	customerID, reservationID, ok := h.ownerAndReservation(w, r, "reservationId")
	if !ok {
		return
	}

	tickets, err := h.service.GetTickets(r.Context(), customerID, reservationID)
	if err != nil {
		handleServiceError(w, h.log, err, "get tickets")
		return
	}

	utils.ResponseSuccess(w, "success", tickets)
}

// DownloadTickets handles GET /api/tickets/download/{reservationId} (protected)
func (h *ReservationHandler) DownloadTickets(w http.ResponseWriter, r *http.Request) {
	customerID, reservationID, ok := h.ownerAndReservation(w, r, "reservationId")
	if !ok {
		return
	}

	doc, err := h.service.DownloadTickets(r.Context(), customerID, reservationID)
	if err != nil {
		handleServiceError(w, h.log, err, "download tickets")
		return
	}

	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="KSRTC_Tickets_%s.json"`, reservationID))
	utils.ResponseSuccess(w, "success", doc)
}

// ownerAndReservation reads the authenticated customer and the reservation id
// path param, writing the error response itself when either is missing
func (h *ReservationHandler) ownerAndReservation(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, uuid.UUID, bool) {
	customerID, ok := utils.GetCustomerIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return uuid.Nil, uuid.Nil, false
	}

	reservationID, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid reservation ID", nil)
		return uuid.Nil, uuid.Nil, false
	}

	return customerID, reservationID, true
}
