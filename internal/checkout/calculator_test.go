package checkout

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/pos-api/internal/cart"
	"github.com/noah-isme/pos-api/internal/catalog"
	"github.com/noah-isme/pos-api/internal/promo"
)

var now = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func eligibleProduct(price int64, taxBps int64) catalog.Product {
	return catalog.Product{
		ID:                     uuid.New(),
		Name:                   "eligible",
		Price:                  price,
		CurrentStock:           100,
		TaxRateBps:             taxBps,
		FoodAssistanceEligible: true,
		Active:                 true,
	}
}

func standardProduct(price int64, taxBps int64) catalog.Product {
	return catalog.Product{
		ID:           uuid.New(),
		Name:         "standard",
		Price:        price,
		CurrentStock: 100,
		TaxRateBps:   taxBps,
		Active:       true,
	}
}

func mustAdd(t *testing.T, c *cart.Cart, p catalog.Product, qty int) {
	t.Helper()
	if err := c.Add(p, qty); err != nil {
		t.Fatalf("add %s: %v", p.Name, err)
	}
}

func activePromo(p promo.Promotion) promo.Promotion {
	p.Active = true
	p.StartsAt = now.Add(-time.Hour)
	p.EndsAt = now.Add(time.Hour)
	return p
}

func TestAssistanceTenderZeroesEligibleTaxOnly(t *testing.T) {
	c := cart.New()
	mustAdd(t, c, eligibleProduct(299, 600), 2)
	mustAdd(t, c, standardProduct(899, 1550), 1)

	b := Compute(c, nil, MethodEBT, 0, now)
	if b.AssistanceTax != 0 {
		t.Fatalf("assistance tax = %d, want 0 under EBT", b.AssistanceTax)
	}
	wantStandardTax := int64(899 * 1550 / 10000)
	if b.StandardTax != wantStandardTax {
		t.Fatalf("standard tax = %d, want %d", b.StandardTax, wantStandardTax)
	}

	// Any other tender taxes both partitions.
	b = Compute(c, nil, MethodCash, 0, now)
	wantEligibleTax := int64(2 * 299 * 600 / 10000)
	if b.AssistanceTax != wantEligibleTax {
		t.Fatalf("assistance tax = %d, want %d under cash", b.AssistanceTax, wantEligibleTax)
	}
	if b.StandardTax != wantStandardTax {
		t.Fatalf("standard tax changed with tender: %d", b.StandardTax)
	}
}

func TestAssistanceScenarioExactTotals(t *testing.T) {
	// $2.00 x 3 at 8% tax, eligible, paid with EBT: no tax, total $6.00.
	c := cart.New()
	mustAdd(t, c, eligibleProduct(200, 800), 3)

	b := Compute(c, nil, MethodEBT, 0, now)
	if b.TotalTax != 0 {
		t.Fatalf("total tax = %d, want 0", b.TotalTax)
	}
	if b.GrandTotal != 600 {
		t.Fatalf("grand total = %d, want 600", b.GrandTotal)
	}
}

func TestPromotionDiscountComesOffPostTaxTotal(t *testing.T) {
	// $10.00 at 10% tax, 20% promotion with $5.00 min purchase:
	// tax on the pre-discount price, so 1000 + 100 - 200 = 900.
	c := cart.New()
	mustAdd(t, c, standardProduct(1000, 1000), 1)

	p := activePromo(promo.Promotion{
		ID:          uuid.New(),
		Name:        "twenty off",
		Kind:        promo.KindPercentage,
		PercentBps:  2000,
		MinPurchase: 500,
	})
	b := Compute(c, []promo.Promotion{p}, MethodCash, 0, now)
	if b.PromotionDiscount != 200 {
		t.Fatalf("promotion discount = %d, want 200", b.PromotionDiscount)
	}
	if b.TotalTax != 100 {
		t.Fatalf("tax = %d, want 100 on the pre-discount price", b.TotalTax)
	}
	if b.GrandTotal != 900 {
		t.Fatalf("grand total = %d, want 900", b.GrandTotal)
	}
	if len(b.AppliedPromotions) != 1 || b.AppliedPromotions[0].ID != p.ID {
		t.Fatalf("applied promotions = %+v", b.AppliedPromotions)
	}
}

func TestManualDiscountStacksWithPromotions(t *testing.T) {
	c := cart.New()
	mustAdd(t, c, standardProduct(1000, 0), 1)

	p := activePromo(promo.Promotion{ID: uuid.New(), Kind: promo.KindFixedAmount, Value: 150})
	b := Compute(c, []promo.Promotion{p}, MethodCash, 100, now)
	if b.TotalDiscount != 250 {
		t.Fatalf("total discount = %d, want 250", b.TotalDiscount)
	}
	if b.GrandTotal != 750 {
		t.Fatalf("grand total = %d, want 750", b.GrandTotal)
	}
}

func TestGrandTotalNotClamped(t *testing.T) {
	c := cart.New()
	mustAdd(t, c, standardProduct(100, 0), 1)

	b := Compute(c, nil, MethodCash, 500, now)
	if b.GrandTotal != -400 {
		t.Fatalf("grand total = %d, want -400 (caller validates, not the calculator)", b.GrandTotal)
	}
}

func TestEmptyCartBreakdownIsZero(t *testing.T) {
	b := Compute(cart.New(), nil, MethodCash, 0, now)
	if b.Subtotal != 0 || b.TotalTax != 0 || b.GrandTotal != 0 {
		t.Fatalf("empty cart breakdown = %+v", b)
	}
}
