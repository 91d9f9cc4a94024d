package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ksrtc-reservation/internal/data/entity"
	"ksrtc-reservation/internal/data/repository"
	"ksrtc-reservation/internal/dto/request"
	"ksrtc-reservation/internal/dto/response"
	"ksrtc-reservation/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthService interface {
	Signup(ctx context.Context, req *request.SignupRequest) (*response.AuthResponse, error)
	Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error)
}

type authService struct {
	customers repository.CustomerRepository
	tokens    *utils.TokenIssuer
	log       *zap.Logger
}

func NewAuthService(customers repository.CustomerRepository, tokens *utils.TokenIssuer, log *zap.Logger) AuthService {
	return &authService{
		customers: customers,
		tokens:    tokens,
		log:       log.With(zap.String("service", "auth")),
	}
}

func (s *authService) Signup(ctx context.Context, req *request.SignupRequest) (*response.AuthResponse, error) {
	// 1. Validate
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Signup validation failed", zap.Any("errors", errs))
		return nil, &ValidationError{Fields: errs}
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	// 2. Email must be unused
	existing, err := s.customers.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	// 3. Hash password
	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("hash password: %w", err)
	}

	// 4. Save customer
	now := time.Now()
	customer := &entity.Customer{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hashed,
		Phone:        req.Phone,
	}

	if err := s.customers.Create(ctx, customer); err != nil {
		// lost a race with a concurrent signup
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	// 5. Signed in right away
	token, expiresAt, err := s.tokens.Issue(customer.ID)
	if err != nil {
		s.log.Error("Failed to issue token", zap.Error(err), zap.String("customer_id", customer.ID.String()))
		return nil, err
	}

	s.log.Info("Customer signed up",
		zap.String("customer_id", customer.ID.String()),
		zap.String("email", customer.Email))

	resp := response.AuthToResponse(customer, token, expiresAt)
	return &resp, nil
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Login validation failed", zap.Any("errors", errs))
		return nil, &ValidationError{Fields: errs}
	}

	customer, err := s.customers.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, fmt.Errorf("find customer: %w", err)
	}

	// unknown email and wrong password look the same to the caller
	if customer == nil {
		s.log.Warn("Customer not found for login", zap.String("email", req.Email))
		return nil, ErrInvalidCredentials
	}
	if !utils.CheckPasswordHash(req.Password, customer.PasswordHash) {
		s.log.Warn("Invalid password", zap.String("customer_id", customer.ID.String()))
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(customer.ID)
	if err != nil {
		s.log.Error("Failed to issue token", zap.Error(err), zap.String("customer_id", customer.ID.String()))
		return nil, err
	}

	s.log.Info("Customer logged in", zap.String("customer_id", customer.ID.String()))

	resp := response.AuthToResponse(customer, token, expiresAt)
	return &resp, nil
}
