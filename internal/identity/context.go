package identity

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey string

const cashierIDKey ctxKey = "identity/cashier-id"

// WithCashierID stores the acting cashier identifier on the provided context.
func WithCashierID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, cashierIDKey, id)
}

// CashierID extracts the acting cashier identifier from the context if present.
func CashierID(ctx context.Context) (uuid.UUID, bool) {
	v := ctx.Value(cashierIDKey)
	if v == nil {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
