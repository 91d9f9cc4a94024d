package usecase

import (
	"context"
	"fmt"

	"ksrtc-reservation/internal/data/repository"
	"ksrtc-reservation/internal/dto/request"
	"ksrtc-reservation/internal/dto/response"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CustomerService interface {
	GetProfile(ctx context.Context, customerID uuid.UUID) (*response.ProfileResponse, error)
}

type customerService struct {
	customers    repository.CustomerRepository
	reservations ReservationService
	log          *zap.Logger
}

func NewCustomerService(customers repository.CustomerRepository, reservations ReservationService, log *zap.Logger) CustomerService {
	return &customerService{
		customers:    customers,
		reservations: reservations,
		log:          log.With(zap.String("service", "customer")),
	}
}

// GetProfile returns the customer with the first page of their reservations
func (s *customerService) GetProfile(ctx context.Context, customerID uuid.UUID) (*response.ProfileResponse, error) {
	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("find customer: %w", err)
	}
	if customer == nil {
		s.log.Warn("Profile requested for unknown customer", zap.String("customer_id", customerID.String()))
		return nil, ErrCustomerNotFound
	}

	reservations, err := s.reservations.ListCustomerReservations(ctx, customerID, &request.PaginatedRequest{Page: 1, PerPage: 10})
	if err != nil {
		return nil, err
	}

	return &response.ProfileResponse{
		Customer:     response.CustomerToResponse(customer),
		Reservations: reservations,
	}, nil
}
