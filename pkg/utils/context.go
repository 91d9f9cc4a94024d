package utils

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const CustomerIDKey contextKey = "customer_id"

func GetCustomerIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	customerID, ok := ctx.Value(CustomerIDKey).(uuid.UUID)
	if !ok || customerID == uuid.Nil {
		return uuid.Nil, false
	}
	return customerID, true
}

func SetCustomerContext(ctx context.Context, customerID uuid.UUID) context.Context {
	return context.WithValue(ctx, CustomerIDKey, customerID)
}
