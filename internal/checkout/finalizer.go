package checkout

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/noah-isme/pos-api/internal/cart"
	"github.com/noah-isme/pos-api/internal/pricing"
)

var (
	// ErrEmptyCart is returned when finalizing with no lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrNoEligibleItems is returned for assistance tender with nothing eligible.
	ErrNoEligibleItems = errors.New("no food-assistance-eligible items in cart")
	// ErrSplitPaymentRequired is returned for assistance tender on a mixed cart.
	ErrSplitPaymentRequired = errors.New("mixed cart requires split payment")
	// ErrInsufficientPayment is returned when cash tendered is below the total.
	ErrInsufficientPayment = errors.New("insufficient payment")
	// ErrInvalidPaymentMethod is returned for an unknown tender type.
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
)

// MixedCartError carries the amount the customer must settle separately when
// an assistance tender is presented against a cart containing non-eligible
// items. The whole transaction is rejected; the register never auto-splits.
type MixedCartError struct {
	NonEligibleTotal pricing.Money
}

func (e *MixedCartError) Error() string {
	return fmt.Sprintf("mixed cart requires split payment: non-eligible total %d", e.NonEligibleTotal)
}

func (e *MixedCartError) Unwrap() error {
	return ErrSplitPaymentRequired
}

// State tracks finalizer progress. Rejected is recoverable: the caller
// adjusts inputs and calls Finalize again. Submitted is terminal for the
// session.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateSubmitted
	StateRejected
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateSubmitted:
		return "submitted"
	case StateRejected:
		return "rejected"
	}
	return "unknown"
}

// TransactionLine is one immutable line of a finalized transaction.
type TransactionLine struct {
	ProductID uuid.UUID     `json:"productId"`
	Name      string        `json:"name"`
	Quantity  int           `json:"quantity"`
	UnitPrice pricing.Money `json:"unitPrice"`
	LineTotal pricing.Money `json:"lineTotal"`
}

// FinalizedTransaction is the immutable submission payload produced by a
// successful finalization.
type FinalizedTransaction struct {
	PaymentMethod PaymentMethod     `json:"paymentMethod"`
	CashierID     uuid.UUID         `json:"cashierId"`
	Subtotal      pricing.Money     `json:"subtotal"`
	Tax           pricing.Money     `json:"tax"`
	Discount      pricing.Money     `json:"discount"`
	Total         pricing.Money     `json:"total"`
	Tendered      pricing.Money     `json:"tendered"`
	Change        pricing.Money     `json:"change"`
	Notes         string            `json:"notes,omitempty"`
	Lines         []TransactionLine `json:"lines"`
}

// Finalizer validates payment-method constraints and builds the submission
// payload. A single finalizer belongs to one checkout session.
type Finalizer struct {
	state State
}

// NewFinalizer returns a finalizer in the Idle state.
func NewFinalizer() *Finalizer {
	return &Finalizer{state: StateIdle}
}

// State returns the current finalizer state.
func (f *Finalizer) State() State {
	return f.state
}

// Finalize runs the validation chain in order, first failure wins:
// empty cart, then assistance-tender cart composition, then cash coverage.
// On failure the cart and breakdown are untouched and the finalizer lands in
// Rejected; calling Finalize again retries from scratch.
func (f *Finalizer) Finalize(c *cart.Cart, b Breakdown, method PaymentMethod, tendered pricing.Money, cashierID uuid.UUID, notes string) (FinalizedTransaction, error) {
	f.state = StateValidating
	if err := f.validate(c, b, method, tendered); err != nil {
		f.state = StateRejected
		return FinalizedTransaction{}, err
	}

	var change pricing.Money
	if method == MethodCash {
		change = tendered - b.GrandTotal
		if change < 0 {
			change = 0
		}
	}

	lines := make([]TransactionLine, 0, c.Len())
	for _, l := range c.Lines() {
		lines = append(lines, TransactionLine{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.Product.Price,
			LineTotal: l.Total(),
		})
	}

	f.state = StateSubmitted
	return FinalizedTransaction{
		PaymentMethod: method,
		CashierID:     cashierID,
		Subtotal:      b.Subtotal,
		Tax:           b.TotalTax,
		Discount:      b.TotalDiscount,
		Total:         b.GrandTotal,
		Tendered:      tendered,
		Change:        change,
		Notes:         notes,
		Lines:         lines,
	}, nil
}

func (f *Finalizer) validate(c *cart.Cart, b Breakdown, method PaymentMethod, tendered pricing.Money) error {
	if !method.Valid() {
		return ErrInvalidPaymentMethod
	}
	if c.Len() == 0 {
		return ErrEmptyCart
	}
	if method.Assistance() {
		if b.AssistanceSubtotal == 0 {
			return ErrNoEligibleItems
		}
		if b.StandardSubtotal != 0 {
			return &MixedCartError{NonEligibleTotal: b.StandardSubtotal + b.StandardTax}
		}
	}
	if method == MethodCash && tendered < b.GrandTotal {
		return ErrInsufficientPayment
	}
	return nil
}
