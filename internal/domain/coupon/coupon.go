package coupon

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when no coupon with the given code exists.
	ErrNotFound = errors.New("coupon not found")
	// ErrInactive is returned when the coupon has been deactivated.
	ErrInactive = errors.New("coupon is inactive")
	// ErrExpired is returned when the coupon's expiry date has passed.
	ErrExpired = errors.New("coupon has expired")
	// ErrExhausted is returned when the coupon has reached its usage limit.
	ErrExhausted = errors.New("coupon usage limit reached")
	// ErrInvalidConfig is returned when a coupon is created without exactly
	// one of a percentage or a fixed discount amount.
	ErrInvalidConfig = errors.New("coupon must have exactly one of discount_percentage or discount_amount")
	// ErrDuplicateCode is returned when creating a coupon whose code is
	// already taken.
	ErrDuplicateCode = errors.New("coupon code already exists")
)

// Coupon defines a discount that can be applied to a cart at checkout.
// Exactly one of Percentage or Amount is set.
type Coupon struct {
	ID         string
	Code       string
	Percentage *decimal.Decimal
	Amount     *decimal.Decimal
	IsActive   bool
	MaxUses    int // 0 means unlimited
	Uses       int
	ExpiresAt  *time.Time
	CreatedAt  time.Time
}

// Validate checks that the coupon configuration is internally consistent.
// It enforces the exactly-one-of rule and value ranges.
func (c *Coupon) Validate() error {
	if (c.Percentage == nil) == (c.Amount == nil) {
		return ErrInvalidConfig
	}
	if c.Percentage != nil {
		if c.Percentage.IsNegative() || c.Percentage.GreaterThan(decimal.NewFromInt(100)) {
			return ErrInvalidConfig
		}
	}
	if c.Amount != nil && c.Amount.IsNegative() {
		return ErrInvalidConfig
	}
	return nil
}

// Repository provides lookup and creation of coupons. Usage redemption is not
// exposed here: incrementing Uses happens inside the checkout transaction so
// it commits atomically with the order.
type Repository interface {
	Create(ctx context.Context, c *Coupon) error
	FindByCode(ctx context.Context, code string) (*Coupon, error)
	GetByID(ctx context.Context, id string) (*Coupon, error)
}
