package coupon

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Discount computes the discount amount the coupon yields against the given
// subtotal. The result is clamped to [0, subtotal] and rounded to 2 decimal
// places, so the discounted total can never go negative.
func Discount(c *Coupon, subtotal decimal.Decimal) decimal.Decimal {
	var amount decimal.Decimal
	switch {
	case c.Percentage != nil:
		amount = subtotal.Mul(*c.Percentage).Div(hundred)
	case c.Amount != nil:
		amount = *c.Amount
	default:
		return decimal.Zero
	}

	if amount.IsNegative() {
		return decimal.Zero
	}
	return decimal.Min(amount, subtotal).Round(2)
}
