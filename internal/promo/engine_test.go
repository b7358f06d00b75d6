package promo

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/pos-api/internal/cart"
	"github.com/noah-isme/pos-api/internal/catalog"
)

var now = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func window(p Promotion) Promotion {
	p.Active = true
	p.StartsAt = now.Add(-24 * time.Hour)
	p.EndsAt = now.Add(24 * time.Hour)
	return p
}

func cartWith(t *testing.T, products ...catalog.Product) *cart.Cart {
	t.Helper()
	c := cart.New()
	for _, p := range products {
		if err := c.Add(p, 1); err != nil {
			t.Fatalf("add %s: %v", p.Name, err)
		}
	}
	return c
}

func TestUnrestrictedScopeCoversWholeCart(t *testing.T) {
	a := catalog.Product{ID: uuid.New(), Name: "a", Price: 1000, CurrentStock: 5}
	b := catalog.Product{ID: uuid.New(), Name: "b", Price: 500, CurrentStock: 5}
	c := cartWith(t, a, b)

	p := window(Promotion{ID: uuid.New(), Name: "ten off", Kind: KindPercentage, PercentBps: 1000})
	res := Match(c, []Promotion{p}, now)
	if len(res.Applied) != 1 {
		t.Fatalf("applied = %d, want 1", len(res.Applied))
	}
	if res.Applied[0].ApplicableAmount != 1500 {
		t.Fatalf("applicable = %d, want 1500", res.Applied[0].ApplicableAmount)
	}
	if res.Discount != 150 {
		t.Fatalf("discount = %d, want 150", res.Discount)
	}
}

func TestScopeExcludingAllLinesContributesNothing(t *testing.T) {
	a := catalog.Product{ID: uuid.New(), Name: "a", Price: 1000, CurrentStock: 5}
	c := cartWith(t, a)

	p := window(Promotion{
		ID:    uuid.New(),
		Kind:  KindFixedAmount,
		Value: 100,
		Scope: RestrictedTo([]uuid.UUID{uuid.New()}, nil),
	})
	res := Match(c, []Promotion{p}, now)
	if len(res.Applied) != 0 || res.Discount != 0 {
		t.Fatalf("expected no applied promotions, got %+v", res)
	}
}

func TestCategoryScope(t *testing.T) {
	catID := uuid.New()
	inCat := catalog.Product{ID: uuid.New(), Name: "in", Price: 400, CurrentStock: 5, CategoryID: &catID}
	outCat := catalog.Product{ID: uuid.New(), Name: "out", Price: 600, CurrentStock: 5}
	c := cartWith(t, inCat, outCat)

	p := window(Promotion{
		ID:         uuid.New(),
		Kind:       KindPercentage,
		PercentBps: 5000,
		Scope:      RestrictedTo(nil, []uuid.UUID{catID}),
	})
	res := Match(c, []Promotion{p}, now)
	if len(res.Applied) != 1 {
		t.Fatalf("applied = %d, want 1", len(res.Applied))
	}
	if res.Applied[0].ApplicableAmount != 400 {
		t.Fatalf("applicable = %d, want 400", res.Applied[0].ApplicableAmount)
	}
	if res.Discount != 200 {
		t.Fatalf("discount = %d, want 200", res.Discount)
	}
}

func TestMinPurchaseChecksWholeCartSubtotal(t *testing.T) {
	scoped := catalog.Product{ID: uuid.New(), Name: "scoped", Price: 300, CurrentStock: 5}
	filler := catalog.Product{ID: uuid.New(), Name: "filler", Price: 900, CurrentStock: 5}
	c := cartWith(t, scoped, filler)

	// Covered amount (300) is below the threshold but the whole cart (1200)
	// clears it, so the promotion still applies.
	p := window(Promotion{
		ID:          uuid.New(),
		Kind:        KindFixedAmount,
		Value:       100,
		MinPurchase: 1000,
		Scope:       RestrictedTo([]uuid.UUID{scoped.ID}, nil),
	})
	res := Match(c, []Promotion{p}, now)
	if res.Discount != 100 {
		t.Fatalf("discount = %d, want 100", res.Discount)
	}

	p.MinPurchase = 1500
	res = Match(c, []Promotion{p}, now)
	if len(res.Applied) != 0 {
		t.Fatalf("expected promotion skipped below min purchase, got %+v", res)
	}
}

func TestFixedAmountClampsToApplicable(t *testing.T) {
	a := catalog.Product{ID: uuid.New(), Name: "a", Price: 250, CurrentStock: 5}
	c := cartWith(t, a)

	p := window(Promotion{ID: uuid.New(), Kind: KindFixedAmount, Value: 1000})
	res := Match(c, []Promotion{p}, now)
	if res.Discount != 250 {
		t.Fatalf("discount = %d, want clamp to 250", res.Discount)
	}
}

func TestBuyOneGetOneUsesFixedAmountMath(t *testing.T) {
	a := catalog.Product{ID: uuid.New(), Name: "a", Price: 800, CurrentStock: 5}
	c := cartWith(t, a)

	p := window(Promotion{ID: uuid.New(), Kind: KindBuyOneGetOne, Value: 189})
	res := Match(c, []Promotion{p}, now)
	if res.Discount != 189 {
		t.Fatalf("discount = %d, want 189", res.Discount)
	}
}

func TestPromotionsStackAdditively(t *testing.T) {
	a := catalog.Product{ID: uuid.New(), Name: "a", Price: 1000, CurrentStock: 5}
	c := cartWith(t, a)

	ps := []Promotion{
		window(Promotion{ID: uuid.New(), Kind: KindPercentage, PercentBps: 1000}),
		window(Promotion{ID: uuid.New(), Kind: KindFixedAmount, Value: 50}),
	}
	res := Match(c, ps, now)
	if len(res.Applied) != 2 {
		t.Fatalf("applied = %d, want 2", len(res.Applied))
	}
	if res.Discount != 150 {
		t.Fatalf("discount = %d, want 150", res.Discount)
	}
}

func TestActivityWindowInclusive(t *testing.T) {
	p := Promotion{Active: true, StartsAt: now, EndsAt: now}
	if !p.ActiveAt(now) {
		t.Fatal("promotion should be active at its exact boundaries")
	}
	if p.ActiveAt(now.Add(time.Second)) {
		t.Fatal("promotion active past end")
	}
	if p.ActiveAt(now.Add(-time.Second)) {
		t.Fatal("promotion active before start")
	}
	p.Active = false
	if p.ActiveAt(now) {
		t.Fatal("inactive flag must win over the window")
	}
}

func TestInactiveOrExpiredPromotionsSkipped(t *testing.T) {
	a := catalog.Product{ID: uuid.New(), Name: "a", Price: 1000, CurrentStock: 5}
	c := cartWith(t, a)

	expired := window(Promotion{ID: uuid.New(), Kind: KindFixedAmount, Value: 100})
	expired.EndsAt = now.Add(-time.Hour)
	disabled := window(Promotion{ID: uuid.New(), Kind: KindFixedAmount, Value: 100})
	disabled.Active = false

	res := Match(c, []Promotion{expired, disabled}, now)
	if len(res.Applied) != 0 || res.Discount != 0 {
		t.Fatalf("expected nothing applied, got %+v", res)
	}
}
