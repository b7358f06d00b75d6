package checkout

import (
	"time"

	"github.com/noah-isme/pos-api/internal/cart"
	"github.com/noah-isme/pos-api/internal/pricing"
	"github.com/noah-isme/pos-api/internal/promo"
)

// PaymentMethod identifies a tender type accepted at the register.
type PaymentMethod string

const (
	MethodCash       PaymentMethod = "CASH"
	MethodCreditCard PaymentMethod = "CREDIT_CARD"
	MethodDebitCard  PaymentMethod = "DEBIT_CARD"
	MethodCheck      PaymentMethod = "CHECK"
	MethodEBT        PaymentMethod = "EBT"
	MethodGiftCard   PaymentMethod = "GIFT_CARD"
)

// Valid reports whether the method is one the register accepts.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodCreditCard, MethodDebitCard, MethodCheck, MethodEBT, MethodGiftCard:
		return true
	}
	return false
}

// Assistance reports whether the method is the food-assistance instrument,
// which exempts eligible items from sales tax.
func (m PaymentMethod) Assistance() bool {
	return m == MethodEBT
}

// Breakdown is a full price decomposition of a cart for a given tender.
// It is recomputed wholesale after every mutation and never patched in place.
type Breakdown struct {
	AssistanceSubtotal pricing.Money   `json:"assistanceSubtotal"`
	AssistanceTax      pricing.Money   `json:"assistanceTax"`
	StandardSubtotal   pricing.Money   `json:"standardSubtotal"`
	StandardTax        pricing.Money   `json:"standardTax"`
	Subtotal           pricing.Money   `json:"subtotal"`
	TotalTax           pricing.Money   `json:"totalTax"`
	AppliedPromotions  []promo.Applied `json:"appliedPromotions"`
	PromotionDiscount  pricing.Money   `json:"promotionDiscount"`
	ManualDiscount     pricing.Money   `json:"manualDiscount"`
	TotalDiscount      pricing.Money   `json:"totalDiscount"`
	GrandTotal         pricing.Money   `json:"grandTotal"`
}

// Compute derives the price breakdown for a cart, promotion set, and tender.
// Lines are partitioned by food-assistance eligibility; the eligible
// partition's tax is zeroed when paying with the assistance instrument,
// the standard partition is taxed regardless. Tax is assessed on
// pre-discount prices; discounts come off the grand total only. The grand
// total is not clamped and can go negative when discounts exceed the cart.
func Compute(c *cart.Cart, promotions []promo.Promotion, method PaymentMethod, manualDiscount pricing.Money, now time.Time) Breakdown {
	var b Breakdown
	for _, l := range c.Lines() {
		if l.Product.FoodAssistanceEligible {
			b.AssistanceSubtotal += l.Total()
			if !method.Assistance() {
				b.AssistanceTax += l.Tax()
			}
		} else {
			b.StandardSubtotal += l.Total()
			b.StandardTax += l.Tax()
		}
	}
	b.Subtotal = b.AssistanceSubtotal + b.StandardSubtotal
	b.TotalTax = b.AssistanceTax + b.StandardTax

	res := promo.Match(c, promotions, now)
	b.AppliedPromotions = res.Applied
	b.PromotionDiscount = res.Discount
	b.ManualDiscount = manualDiscount
	b.TotalDiscount = res.Discount + manualDiscount
	b.GrandTotal = b.Subtotal + b.TotalTax - b.TotalDiscount
	return b
}
