package pricing

// Money represents a monetary value stored in minor units.
type Money = int64

// Percentage applies a basis-point rate to an amount, truncating toward zero.
// 825 bps == 8.25%.
func Percentage(amount Money, bps int64) Money {
	if amount <= 0 || bps <= 0 {
		return 0
	}
	return (amount * bps) / 10000
}

// LineTotal computes the extended price of a line item.
func LineTotal(qty int, unitPrice Money) Money {
	if qty <= 0 {
		return 0
	}
	return Money(qty) * unitPrice
}

// LineTax computes sales tax for a single line at the category rate.
// Tax is assessed per line on the pre-discount extended price.
func LineTax(lineTotal Money, taxBps int64) Money {
	return Percentage(lineTotal, taxBps)
}

// Clamp bounds a discount to the amount it applies against and floors it at zero.
func Clamp(discount, applicable Money) Money {
	if discount > applicable {
		discount = applicable
	}
	if discount < 0 {
		return 0
	}
	return discount
}
