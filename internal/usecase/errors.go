package usecase

import (
	"errors"
	"fmt"
	"strings"

	"ksrtc-reservation/internal/data/entity"
	"ksrtc-reservation/pkg/utils"

	"github.com/google/uuid"
)

var (
	ErrEmptySeatSelection  = errors.New("at least one seat must be selected")
	ErrScheduleNotFound    = errors.New("schedule not found")
	ErrReservationNotFound = errors.New("reservation not found")

	// ErrNotFound is returned for reads of missing reservations and of
	// reservations owned by someone else alike
	ErrNotFound = errors.New("not found")

	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrCustomerNotFound   = errors.New("customer not found")
)

// ValidationError carries per-field messages keyed by json name
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + utils.FormatValidationErrors(e.Fields)
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// SeatNotFoundError lists requested seats that do not exist on the schedule's bus
type SeatNotFoundError struct {
	Seats []string
}

func (e *SeatNotFoundError) Error() string {
	return "seats not found on bus: " + strings.Join(e.Seats, ", ")
}

// SeatUnavailableError lists requested seats that are already taken
type SeatUnavailableError struct {
	Seats []string
}

func (e *SeatUnavailableError) Error() string {
	return "seats unavailable: " + strings.Join(e.Seats, ", ")
}

type InvalidStateError struct {
	ReservationID uuid.UUID
	Status        entity.ReservationStatus
	Target        entity.ReservationStatus
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("reservation %s is %s and cannot become %s", e.ReservationID, e.Status, e.Target)
}

type AmountMismatchError struct {
	Expected float64
	Got      float64
}

func (e *AmountMismatchError) Error() string {
	return fmt.Sprintf("amount %.2f does not match expected %.2f", e.Got, e.Expected)
}
