package response

import (
	"time"

	"ksrtc-reservation/internal/data/entity"
)

type AuthResponse struct {
	CustomerID string    `json:"customer_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Token      string    `json:"token"`
	ExpiresAt  time.Time `json:"expires_at"`
}

type CustomerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type ProfileResponse struct {
	Customer     CustomerResponse                        `json:"customer"`
	Reservations *PaginatedResponse[ReservationResponse] `json:"reservations"`
}

// Helper converters
func CustomerToResponse(c *entity.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		CreatedAt: c.CreatedAt,
	}
}

func AuthToResponse(c *entity.Customer, token string, expiresAt time.Time) AuthResponse {
	return AuthResponse{
		CustomerID: c.ID.String(),
		Name:       c.Name,
		Email:      c.Email,
		Token:      token,
		ExpiresAt:  expiresAt,
	}
}
