package checkout

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/noah-isme/pos-api/internal/cart"
)

func TestFinalizeEmptyCart(t *testing.T) {
	f := NewFinalizer()
	c := cart.New()
	b := Compute(c, nil, MethodCash, 0, now)

	_, err := f.Finalize(c, b, MethodCash, 1000, uuid.New(), "")
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
	if f.State() != StateRejected {
		t.Fatalf("state = %v, want rejected", f.State())
	}
}

func TestFinalizeAssistanceNoEligibleItems(t *testing.T) {
	f := NewFinalizer()
	c := cart.New()
	mustAdd(t, c, standardProduct(899, 1550), 1)
	b := Compute(c, nil, MethodEBT, 0, now)

	_, err := f.Finalize(c, b, MethodEBT, 0, uuid.New(), "")
	if !errors.Is(err, ErrNoEligibleItems) {
		t.Fatalf("expected ErrNoEligibleItems, got %v", err)
	}
}

func TestFinalizeMixedCartAlwaysRejected(t *testing.T) {
	f := NewFinalizer()
	c := cart.New()
	mustAdd(t, c, eligibleProduct(299, 600), 1)
	mustAdd(t, c, standardProduct(899, 1550), 1)
	b := Compute(c, nil, MethodEBT, 0, now)

	_, err := f.Finalize(c, b, MethodEBT, 0, uuid.New(), "")
	if !errors.Is(err, ErrSplitPaymentRequired) {
		t.Fatalf("expected ErrSplitPaymentRequired, got %v", err)
	}
	var mixed *MixedCartError
	if !errors.As(err, &mixed) {
		t.Fatalf("expected MixedCartError, got %T", err)
	}
	// The register reports the amount to settle with a second tender:
	// the standard subtotal plus its tax.
	want := int64(899) + int64(899*1550/10000)
	if mixed.NonEligibleTotal != want {
		t.Fatalf("non-eligible total = %d, want %d", mixed.NonEligibleTotal, want)
	}
	if c.Len() != 2 {
		t.Fatal("cart mutated by rejected finalization")
	}
}

func TestFinalizeCashCoverage(t *testing.T) {
	f := NewFinalizer()
	c := cart.New()
	mustAdd(t, c, standardProduct(952, 0), 1)
	b := Compute(c, nil, MethodCash, 0, now)

	if _, err := f.Finalize(c, b, MethodCash, 900, uuid.New(), ""); !errors.Is(err, ErrInsufficientPayment) {
		t.Fatalf("expected ErrInsufficientPayment, got %v", err)
	}
	if f.State() != StateRejected {
		t.Fatalf("state = %v, want rejected", f.State())
	}

	tx, err := f.Finalize(c, b, MethodCash, 1000, uuid.New(), "")
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if tx.Change != 48 {
		t.Fatalf("change = %d, want 48", tx.Change)
	}
	if f.State() != StateSubmitted {
		t.Fatalf("state = %v, want submitted", f.State())
	}
}

func TestFinalizeNonCashIgnoresTendered(t *testing.T) {
	f := NewFinalizer()
	c := cart.New()
	mustAdd(t, c, standardProduct(1500, 825), 1)
	b := Compute(c, nil, MethodCreditCard, 0, now)

	tx, err := f.Finalize(c, b, MethodCreditCard, 0, uuid.New(), "")
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if tx.Change != 0 {
		t.Fatalf("change = %d, want 0 for card tender", tx.Change)
	}
}

func TestFinalizePayloadShape(t *testing.T) {
	f := NewFinalizer()
	c := cart.New()
	a := standardProduct(250, 825)
	mustAdd(t, c, a, 2)
	b := Compute(c, nil, MethodCash, 0, now)
	cashier := uuid.New()

	tx, err := f.Finalize(c, b, MethodCash, 10000, cashier, "register 1")
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if tx.CashierID != cashier {
		t.Fatalf("cashier = %v, want %v", tx.CashierID, cashier)
	}
	if tx.PaymentMethod != MethodCash || tx.Notes != "register 1" {
		t.Fatalf("payload = %+v", tx)
	}
	if len(tx.Lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(tx.Lines))
	}
	l := tx.Lines[0]
	if l.ProductID != a.ID || l.Quantity != 2 || l.UnitPrice != 250 || l.LineTotal != 500 {
		t.Fatalf("line = %+v", l)
	}
	if tx.Subtotal != b.Subtotal || tx.Tax != b.TotalTax || tx.Total != b.GrandTotal {
		t.Fatalf("totals mismatch: %+v vs %+v", tx, b)
	}
}

func TestFinalizeInvalidMethod(t *testing.T) {
	f := NewFinalizer()
	c := cart.New()
	mustAdd(t, c, standardProduct(100, 0), 1)
	b := Compute(c, nil, MethodCash, 0, now)

	if _, err := f.Finalize(c, b, PaymentMethod("BARTER"), 0, uuid.New(), ""); !errors.Is(err, ErrInvalidPaymentMethod) {
		t.Fatalf("expected ErrInvalidPaymentMethod, got %v", err)
	}
}

func TestValidationOrderFirstFailureWins(t *testing.T) {
	// Empty cart with EBT must report EmptyCart, not NoEligibleItems.
	f := NewFinalizer()
	c := cart.New()
	b := Compute(c, nil, MethodEBT, 0, now)
	if _, err := f.Finalize(c, b, MethodEBT, 0, uuid.New(), ""); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart first, got %v", err)
	}
}
