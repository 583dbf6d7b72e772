package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a requested order does not exist.
	ErrNotFound = errors.New("order not found")
	// ErrForbidden is returned when the caller does not own the order.
	ErrForbidden = errors.New("not authorized to view this order")
	// ErrMissingAddress is returned when checkout is attempted without a
	// shipping address.
	ErrMissingAddress = errors.New("shipping address is required")
)

// Order is the immutable record produced by checkout. Only Status changes
// after creation, and only through the transition table in status.go.
//
// Invariant: TotalAmount = Subtotal - DiscountAmount + ShippingCost, where
// the subtotal is recoverable from the items' frozen prices.
type Order struct {
	ID              string
	UserID          string
	Status          Status
	TotalAmount     decimal.Decimal
	ShippingAddress string
	ShippingCost    decimal.Decimal
	DiscountAmount  decimal.Decimal
	CouponCode      string
	Items           []Item
	CreatedAt       time.Time
}

// Item is one order line with the product price frozen at checkout time.
type Item struct {
	ID        string
	OrderID   string
	ProductID string
	Quantity  int
	Price     decimal.Decimal
}

// Checkout bundles every write the checkout transaction must commit
// atomically: the order with its items, the coupon redemption, and the cart
// deletion. Either all land or none do.
type Checkout struct {
	Order *Order
	// RedeemCouponCode, when non-empty, increments the coupon's usage
	// counter with a compare-and-increment guarded by its max_uses.
	RedeemCouponCode string
	// ClearCartUserID identifies the cart drained by this checkout.
	ClearCartUserID string
}

// Repository defines persistence operations for orders.
type Repository interface {
	// CreateCheckout commits the order, its items, the optional coupon
	// redemption, and the cart deletion in a single transaction. It returns
	// coupon.ErrExhausted when the redemption would exceed the coupon's
	// usage limit.
	CreateCheckout(ctx context.Context, co Checkout) error
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]Order, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
}
