package order

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/xenking/shopline/internal/domain/cart"
	"github.com/xenking/shopline/internal/domain/coupon"
	"github.com/xenking/shopline/internal/domain/pricing"
	"github.com/xenking/shopline/internal/domain/product"
	"github.com/xenking/shopline/internal/domain/shipping"
	"github.com/xenking/shopline/internal/domain/user"
)

// CheckoutRequest holds the caller-supplied input for a checkout.
type CheckoutRequest struct {
	ShippingAddress string
	CouponCode      string
}

// Service is the checkout orchestrator: it converts a user's cart into an
// order, applying coupon validation, pricing, and shipping estimation, and
// persists the result as one atomic unit.
type Service struct {
	carts    cart.Repository
	products product.Repository
	coupons  coupon.Validator
	orders   Repository
}

// NewService creates an order Service with the required domain dependencies.
func NewService(
	carts cart.Repository,
	products product.Repository,
	coupons coupon.Validator,
	orders Repository,
) *Service {
	return &Service{
		carts:    carts,
		products: products,
		coupons:  coupons,
		orders:   orders,
	}
}

// Checkout reads the caller's cart, validates the optional coupon, prices the
// order including shipping, and persists it. The order insert, item inserts,
// coupon redemption, and cart deletion commit together or not at all; any
// validation failure aborts the whole checkout with the cart untouched.
//
// Shipping is computed from the pre-discount subtotal, matching the
// standalone shipping endpoint, so the free-shipping threshold ignores
// coupon discounts.
func (s *Service) Checkout(ctx context.Context, ident user.Identity, req CheckoutRequest) (*Order, error) {
	if req.ShippingAddress == "" {
		return nil, ErrMissingAddress
	}

	lines, err := s.carts.ListByUser(ctx, ident.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "list cart items")
	}
	if len(lines) == 0 {
		return nil, pricing.ErrEmptyCart
	}

	items, err := s.lineItems(ctx, lines)
	if err != nil {
		return nil, err
	}

	var cpn *coupon.Coupon
	if req.CouponCode != "" {
		cpn, err = s.coupons.Validate(ctx, req.CouponCode)
		if err != nil {
			return nil, err
		}
	}

	est, err := shipping.Calculate(pricing.TotalWeight(items), pricing.Subtotal(items))
	if err != nil {
		return nil, errors.Wrap(err, "calculate shipping")
	}

	quote, err := pricing.Price(items, cpn, est.Cost)
	if err != nil {
		return nil, err
	}

	orderID := uuid.New().String()
	orderItems := make([]Item, len(items))
	for i, it := range items {
		orderItems[i] = Item{
			ID:        uuid.New().String(),
			OrderID:   orderID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.UnitPrice,
		}
	}

	o := &Order{
		ID:              orderID,
		UserID:          ident.UserID,
		Status:          StatusPending,
		TotalAmount:     quote.Total,
		ShippingAddress: req.ShippingAddress,
		ShippingCost:    quote.ShippingCost,
		DiscountAmount:  quote.DiscountAmount,
		CouponCode:      req.CouponCode,
		Items:           orderItems,
	}

	co := Checkout{
		Order:           o,
		ClearCartUserID: ident.UserID,
	}
	if cpn != nil {
		co.RedeemCouponCode = cpn.Code
	}

	if err := s.orders.CreateCheckout(ctx, co); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	return o, nil
}

// Get returns an order owned by the caller.
func (s *Service) Get(ctx context.Context, ident user.Identity, orderID string) (*Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "get order %s", orderID)
	}
	if o.UserID != ident.UserID {
		return nil, ErrForbidden
	}
	return o, nil
}

// ListForUser returns the caller's order history, newest first.
func (s *Service) ListForUser(ctx context.Context, ident user.Identity, offset, limit int) ([]Order, error) {
	return s.orders.ListByUser(ctx, ident.UserID, offset, limit)
}

// UpdateStatus moves an order to a new status, enforcing the transition
// table: delivered and cancelled orders never change again.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, newStatus Status) (*Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "get order %s", orderID)
	}

	if !CanTransition(o.Status, newStatus) {
		return nil, &InvalidTransitionError{From: o.Status, To: newStatus}
	}

	if o.Status != newStatus {
		if err := s.orders.UpdateStatus(ctx, orderID, newStatus); err != nil {
			return nil, errors.Wrap(err, "update order status")
		}
		o.Status = newStatus
	}
	return o, nil
}

// lineItems resolves cart lines into priced line items using a single batch
// product fetch.
func (s *Service) lineItems(ctx context.Context, lines []cart.LineItem) ([]pricing.LineItem, error) {
	ids := make([]string, len(lines))
	for i, l := range lines {
		ids[i] = l.ProductID
	}

	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}
	byID := make(map[string]product.Product, len(fetched))
	for _, p := range fetched {
		byID[p.ID] = p
	}

	items := make([]pricing.LineItem, len(lines))
	for i, l := range lines {
		p, ok := byID[l.ProductID]
		if !ok {
			return nil, errors.Wrapf(product.ErrNotFound, "product %s", l.ProductID)
		}
		items[i] = pricing.LineItem{
			ProductID:  l.ProductID,
			UnitPrice:  p.Price,
			UnitWeight: p.Weight,
			Quantity:   l.Quantity,
		}
	}
	return items, nil
}
