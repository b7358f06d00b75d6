package promo

import (
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/pos-api/internal/cart"
	"github.com/noah-isme/pos-api/internal/pricing"
)

// Kind enumerates the promotion discount types.
type Kind string

const (
	KindPercentage  Kind = "PERCENTAGE"
	KindFixedAmount Kind = "FIXED_AMOUNT"
	// KindBuyOneGetOne shares the fixed-amount discount math. True pairing
	// semantics (halving qualifying quantities) are not implemented.
	KindBuyOneGetOne Kind = "BUY_ONE_GET_ONE"
)

// Scope describes which cart lines a promotion covers. The zero value is
// unrestricted and covers every line.
type Scope struct {
	productIDs  map[uuid.UUID]struct{}
	categoryIDs map[uuid.UUID]struct{}
}

// Unrestricted returns a scope covering the entire cart.
func Unrestricted() Scope {
	return Scope{}
}

// RestrictedTo returns a scope covering only the given products and
// categories. Passing two empty sets yields an unrestricted scope.
func RestrictedTo(productIDs, categoryIDs []uuid.UUID) Scope {
	s := Scope{}
	if len(productIDs) > 0 {
		s.productIDs = make(map[uuid.UUID]struct{}, len(productIDs))
		for _, id := range productIDs {
			s.productIDs[id] = struct{}{}
		}
	}
	if len(categoryIDs) > 0 {
		s.categoryIDs = make(map[uuid.UUID]struct{}, len(categoryIDs))
		for _, id := range categoryIDs {
			s.categoryIDs[id] = struct{}{}
		}
	}
	return s
}

// Restricted reports whether the scope limits coverage at all.
func (s Scope) Restricted() bool {
	return len(s.productIDs) > 0 || len(s.categoryIDs) > 0
}

// Covers reports whether a line with the given product and category falls
// inside the scope. A product matches if either set names it.
func (s Scope) Covers(productID uuid.UUID, categoryID *uuid.UUID) bool {
	if !s.Restricted() {
		return true
	}
	if _, ok := s.productIDs[productID]; ok {
		return true
	}
	if categoryID != nil {
		if _, ok := s.categoryIDs[*categoryID]; ok {
			return true
		}
	}
	return false
}

// ProductIDs returns the restricted product set, nil when unrestricted.
func (s Scope) ProductIDs() []uuid.UUID {
	return keys(s.productIDs)
}

// CategoryIDs returns the restricted category set, nil when unrestricted.
func (s Scope) CategoryIDs() []uuid.UUID {
	return keys(s.categoryIDs)
}

func keys(m map[uuid.UUID]struct{}) []uuid.UUID {
	if len(m) == 0 {
		return nil
	}
	out := make([]uuid.UUID, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	return out
}

// Promotion is a read-only snapshot of a discount rule. Value holds the
// discount in minor units for fixed-amount kinds; PercentBps holds the rate
// in basis points for percentage kinds.
type Promotion struct {
	ID          uuid.UUID
	Name        string
	Kind        Kind
	Value       pricing.Money
	PercentBps  int64
	MinPurchase pricing.Money
	Scope       Scope
	Active      bool
	StartsAt    time.Time
	EndsAt      time.Time
}

// ActiveAt reports whether the promotion may run at the given instant. The
// activity window is inclusive on both ends.
func (p Promotion) ActiveAt(now time.Time) bool {
	if !p.Active {
		return false
	}
	return !now.Before(p.StartsAt) && !now.After(p.EndsAt)
}

// Discount computes the promotion's discount against the applicable amount.
func (p Promotion) Discount(applicable pricing.Money) pricing.Money {
	if applicable <= 0 {
		return 0
	}
	switch p.Kind {
	case KindPercentage:
		return pricing.Percentage(applicable, p.PercentBps)
	case KindFixedAmount, KindBuyOneGetOne:
		return pricing.Clamp(p.Value, applicable)
	}
	return 0
}

// Applied records one promotion's contribution to a cart.
type Applied struct {
	ID               uuid.UUID     `json:"id"`
	Name             string        `json:"name"`
	Kind             Kind          `json:"kind"`
	ApplicableAmount pricing.Money `json:"applicableAmount"`
	Discount         pricing.Money `json:"discount"`
}

// Result aggregates every qualifying promotion. Discounts stack additively;
// there is no mutual exclusion or best-of selection.
type Result struct {
	Applied  []Applied
	Discount pricing.Money
}

// Match evaluates each promotion independently against the cart. A promotion
// qualifies when it is active at now, at least one line falls inside its
// scope, and any minimum-purchase threshold is met by the whole-cart
// subtotal, not just the covered portion.
func Match(c *cart.Cart, promos []Promotion, now time.Time) Result {
	var res Result
	subtotal := c.Subtotal()
	for _, p := range promos {
		if !p.ActiveAt(now) {
			continue
		}
		applicable := c.SubtotalFor(func(l cart.Line) bool {
			return p.Scope.Covers(l.Product.ID, l.Product.CategoryID)
		})
		if applicable == 0 {
			continue
		}
		if p.MinPurchase > 0 && subtotal < p.MinPurchase {
			continue
		}
		d := p.Discount(applicable)
		res.Applied = append(res.Applied, Applied{
			ID:               p.ID,
			Name:             p.Name,
			Kind:             p.Kind,
			ApplicableAmount: applicable,
			Discount:         d,
		})
		res.Discount += d
	}
	return res
}
