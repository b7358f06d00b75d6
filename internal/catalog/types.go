package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/pos-api/internal/pricing"
)

// Category is a read-only snapshot of a product category. TaxRateBps carries
// the sales tax rate in basis points (825 == 8.25%).
type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	TaxRateBps  int64     `json:"taxRateBps"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Product is a read-only snapshot of a sellable item. Price and Cost are in
// minor units. CategoryID is nil for uncategorized products, which are untaxed.
type Product struct {
	ID                     uuid.UUID     `json:"id"`
	Name                   string        `json:"name"`
	Description            string        `json:"description,omitempty"`
	Barcode                string        `json:"barcode,omitempty"`
	Price                  pricing.Money `json:"price"`
	Cost                   pricing.Money `json:"cost"`
	CurrentStock           int           `json:"currentStock"`
	CategoryID             *uuid.UUID    `json:"categoryId,omitempty"`
	TaxRateBps             int64         `json:"taxRateBps"`
	FoodAssistanceEligible bool          `json:"foodAssistanceEligible"`
	Active                 bool          `json:"active"`
	CreatedAt              time.Time     `json:"createdAt"`
	UpdatedAt              time.Time     `json:"updatedAt"`
}
