package usecase

import (
	"ksrtc-reservation/internal/data/repository"
	"ksrtc-reservation/pkg/database"
	"ksrtc-reservation/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth        AuthService
	Customer    CustomerService
	Reservation ReservationService
}

func NewService(repo *repository.Repository, tx database.Transactor, tokens *utils.TokenIssuer, log *zap.Logger) *Service {
	reservation := NewReservationService(repo, tx, log)

	return &Service{
		Auth:        NewAuthService(repo.Customer, tokens, log),
		Customer:    NewCustomerService(repo.Customer, reservation, log),
		Reservation: reservation,
	}
}
