package cart

import (
	"errors"
	"sort"

	"github.com/google/uuid"

	"github.com/noah-isme/pos-api/internal/catalog"
	"github.com/noah-isme/pos-api/internal/pricing"
)

var (
	// ErrOutOfStock is returned when adding a product whose stock is zero.
	ErrOutOfStock = errors.New("product out of stock")
	// ErrInsufficientStock is returned when a mutation would push a line past available stock.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidQuantity is returned when an add receives a non-positive quantity.
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

// Line is a single cart entry. The product snapshot is captured at add time;
// stock is not re-validated against the store until finalization.
type Line struct {
	Product  catalog.Product
	Quantity int
}

// Total returns the extended price of the line.
func (l Line) Total() pricing.Money {
	return pricing.LineTotal(l.Quantity, l.Product.Price)
}

// Tax returns the line's sales tax at the product's category rate.
func (l Line) Tax() pricing.Money {
	return pricing.LineTax(l.Total(), l.Product.TaxRateBps)
}

// Cart holds at most one line per product. A rejected mutation leaves the
// cart exactly as it was.
type Cart struct {
	lines map[uuid.UUID]*Line
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{lines: make(map[uuid.UUID]*Line)}
}

// Add merges quantity into an existing line or creates a new one. The
// resulting line quantity must not exceed the product's current stock.
func (c *Cart) Add(p catalog.Product, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if p.CurrentStock == 0 {
		return ErrOutOfStock
	}
	existing := 0
	if l, ok := c.lines[p.ID]; ok {
		existing = l.Quantity
	}
	if existing+qty > p.CurrentStock {
		return ErrInsufficientStock
	}
	if l, ok := c.lines[p.ID]; ok {
		l.Quantity += qty
		return nil
	}
	c.lines[p.ID] = &Line{Product: p, Quantity: qty}
	return nil
}

// SetQuantity replaces a line's quantity. Zero or negative removes the line.
func (c *Cart) SetQuantity(productID uuid.UUID, qty int) error {
	l, ok := c.lines[productID]
	if !ok {
		return nil
	}
	if qty <= 0 {
		delete(c.lines, productID)
		return nil
	}
	if qty > l.Product.CurrentStock {
		return ErrInsufficientStock
	}
	l.Quantity = qty
	return nil
}

// Remove deletes a line. Absent product ids are a no-op.
func (c *Cart) Remove(productID uuid.UUID) {
	delete(c.lines, productID)
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = make(map[uuid.UUID]*Line)
}

// Len reports the number of distinct lines.
func (c *Cart) Len() int {
	return len(c.lines)
}

// Line returns the line for a product, if present.
func (c *Cart) Line(productID uuid.UUID) (Line, bool) {
	l, ok := c.lines[productID]
	if !ok {
		return Line{}, false
	}
	return *l, true
}

// Lines returns the cart contents in a stable order keyed by product id.
func (c *Cart) Lines() []Line {
	out := make([]Line, 0, len(c.lines))
	for _, l := range c.lines {
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Product.ID.String() < out[j].Product.ID.String()
	})
	return out
}

// Subtotal sums the extended price of every line.
func (c *Cart) Subtotal() pricing.Money {
	return c.SubtotalFor(func(Line) bool { return true })
}

// SubtotalFor sums the extended price of lines matching the predicate.
func (c *Cart) SubtotalFor(match func(Line) bool) pricing.Money {
	var total pricing.Money
	for _, l := range c.lines {
		if match(*l) {
			total += l.Total()
		}
	}
	return total
}
