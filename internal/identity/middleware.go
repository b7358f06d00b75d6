package identity

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/noah-isme/pos-api/internal/common"
)

// HeaderCashierID names the header the register client sends to identify
// the operator. Authentication itself happens upstream; the API only needs
// the id to stamp transactions.
const HeaderCashierID = "X-Cashier-ID"

// Middleware parses the cashier header and attaches the id to the request
// context. Requests without a valid id pass through unannotated; handlers
// that need the id enforce its presence themselves.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(HeaderCashierID)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid cashier id", nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithCashierID(r.Context(), id)))
	})
}

// Require rejects requests that carry no cashier id.
func Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CashierID(r.Context()); !ok {
			common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "cashier identification required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
