package adaptor

import (
	"errors"
	"net/http"

	"ksrtc-reservation/internal/usecase"
	"ksrtc-reservation/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Auth        *AuthHandler
	User        *UserHandler
	Reservation *ReservationHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth:        NewAuthHandler(service.Auth, log),
		User:        NewUserHandler(service.Customer, service.Reservation, log),
		Reservation: NewReservationHandler(service.Reservation, log),
	}
}

// handleServiceError maps usecase errors to status codes. Anything untyped is a 500.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	var (
		validation  *usecase.ValidationError
		unavailable *usecase.SeatUnavailableError
		missing     *usecase.SeatNotFoundError
		mismatch    *usecase.AmountMismatchError
		invalid     *usecase.InvalidStateError
	)

	switch {
	case errors.As(err, &validation):
		log.Warn(operation+" validation failed", zap.Any("errors", validation.Fields))
		utils.ResponseBadRequest(w, "Validation failed", validation.Fields)

	case errors.Is(err, usecase.ErrEmptySeatSelection):
		log.Warn(operation+" failed - no seats", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	case errors.As(err, &unavailable):
		log.Info(operation+" failed - seats unavailable", zap.Strings("seats", unavailable.Seats))
		utils.ResponseBadRequest(w, "Seats unavailable", map[string][]string{"unavailable_seats": unavailable.Seats})

	case errors.As(err, &missing):
		log.Warn(operation+" failed - seats not on bus", zap.Strings("seats", missing.Seats))
		utils.ResponseBadRequest(w, "Seats not found on this bus", map[string][]string{"unknown_seats": missing.Seats})

	case errors.As(err, &mismatch):
		log.Warn(operation+" failed - amount mismatch",
			zap.Float64("expected", mismatch.Expected),
			zap.Float64("got", mismatch.Got))
		utils.ResponseBadRequest(w, err.Error(), map[string]float64{"expected_amount": mismatch.Expected})

	case errors.Is(err, usecase.ErrNotFound),
		errors.Is(err, usecase.ErrReservationNotFound),
		errors.Is(err, usecase.ErrScheduleNotFound),
		errors.Is(err, usecase.ErrCustomerNotFound):
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case errors.As(err, &invalid):
		log.Warn(operation+" failed - invalid state",
			zap.String("reservation_id", invalid.ReservationID.String()),
			zap.String("status", string(invalid.Status)))
		utils.ResponseConflict(w, err.Error(), map[string]string{"status": string(invalid.Status)})

	case errors.Is(err, usecase.ErrEmailTaken):
		log.Warn(operation+" failed - already exists", zap.Error(err))
		utils.ResponseConflict(w, err.Error(), nil)

	case errors.Is(err, usecase.ErrInvalidCredentials):
		log.Warn(operation+" failed - invalid credentials")
		utils.ResponseUnauthorized(w, err.Error())

	default:
		log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
