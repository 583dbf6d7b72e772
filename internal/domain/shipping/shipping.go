// Package shipping computes delivery costs from order weight and subtotal.
// Costs are a flat base plus a per-kilogram rate, with free shipping above a
// subtotal threshold. No address-based geo logic.
package shipping

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNegativeWeight is returned when the total weight is below zero.
var ErrNegativeWeight = errors.New("weight cannot be negative")

var (
	baseCost      = decimal.RequireFromString("5.00")
	costPerKg     = decimal.RequireFromString("2.00")
	freeThreshold = decimal.RequireFromString("100.00")
)

const (
	// MethodStandard is the only supported delivery method.
	MethodStandard = "Standard Shipping"

	freeShippingDays = 3
	standardDays     = 5
)

// Estimate holds the computed shipping cost and delivery window.
type Estimate struct {
	Cost          decimal.Decimal
	EstimatedDays int
	Method        string
}

// Calculate returns the shipping estimate for the given total weight (kg) and
// order subtotal. Orders at or above the free-shipping threshold ship free
// regardless of weight. The subtotal is the pre-discount subtotal; discounts
// do not affect the free-shipping eligibility.
func Calculate(totalWeight, subtotal decimal.Decimal) (Estimate, error) {
	if totalWeight.IsNegative() {
		return Estimate{}, ErrNegativeWeight
	}

	cost := baseCost.Add(totalWeight.Mul(costPerKg)).Round(2)
	if subtotal.GreaterThanOrEqual(freeThreshold) {
		cost = decimal.Zero
	}

	days := standardDays
	if cost.IsZero() {
		days = freeShippingDays
	}

	return Estimate{
		Cost:          cost,
		EstimatedDays: days,
		Method:        MethodStandard,
	}, nil
}
