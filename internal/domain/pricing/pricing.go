// Package pricing contains the pure order pricing computation: subtotal,
// coupon discount, shipping, and total. It performs no I/O.
package pricing

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/shopline/internal/domain/coupon"
)

// ErrEmptyCart is returned when pricing is attempted over zero line items.
var ErrEmptyCart = errors.New("cart is empty")

// LineItem is a (product, quantity) pairing with the unit price and weight
// captured at pricing time.
type LineItem struct {
	ProductID  string
	UnitPrice  decimal.Decimal
	UnitWeight decimal.Decimal
	Quantity   int
}

// Quote is the result of pricing a cart.
//
// Invariants: DiscountAmount <= Subtotal, and
// Total = Subtotal - DiscountAmount + ShippingCost >= ShippingCost.
type Quote struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	ShippingCost   decimal.Decimal
	Total          decimal.Decimal
}

// Subtotal returns the sum of unit price times quantity across all items,
// rounded to 2 decimal places.
func Subtotal(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sum.Round(2)
}

// TotalWeight returns the sum of unit weight times quantity across all items.
func TotalWeight(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.UnitWeight.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sum
}

// Price computes the full quote for the given items, optional validated
// coupon, and shipping cost. The discount is clamped to the subtotal, so the
// total never drops below the shipping cost.
func Price(items []LineItem, cpn *coupon.Coupon, shippingCost decimal.Decimal) (Quote, error) {
	if len(items) == 0 {
		return Quote{}, ErrEmptyCart
	}

	subtotal := Subtotal(items)

	discount := decimal.Zero
	if cpn != nil {
		discount = coupon.Discount(cpn, subtotal)
	}

	total := subtotal.Sub(discount).Add(shippingCost).Round(2)

	return Quote{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		ShippingCost:   shippingCost,
		Total:          total,
	}, nil
}
