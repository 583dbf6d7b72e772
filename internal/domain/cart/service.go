package cart

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/shopline/internal/domain/coupon"
	"github.com/xenking/shopline/internal/domain/pricing"
	"github.com/xenking/shopline/internal/domain/product"
	"github.com/xenking/shopline/internal/domain/user"
)

// ViewItem is a cart line joined with its product snapshot.
type ViewItem struct {
	LineItem
	Product product.Product
}

// View is the full contents of a user's cart with the current total.
type View struct {
	Items []ViewItem
	Total decimal.Decimal
}

// CouponPreview is the outcome of applying a coupon to the current cart
// without redeeming it.
type CouponPreview struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	Total          decimal.Decimal
	CouponCode     string
}

// Service owns per-user cart line items. Every mutation is ownership-checked
// against the caller's identity.
type Service struct {
	carts    Repository
	products product.Repository
	users    user.Repository
	coupons  coupon.Validator
}

// NewService creates a cart Service with the required dependencies.
func NewService(carts Repository, products product.Repository, users user.Repository, coupons coupon.Validator) *Service {
	return &Service{
		carts:    carts,
		products: products,
		users:    users,
		coupons:  coupons,
	}
}

// Add puts quantity units of the product into the caller's cart. If the cart
// already holds the product, the quantities merge into the existing line.
func (s *Service) Add(ctx context.Context, ident user.Identity, productID string, quantity int) (*LineItem, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	if _, err := s.products.GetByID(ctx, productID); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return nil, product.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get product %s", productID)
	}

	item, err := s.carts.Upsert(ctx, &LineItem{
		ID:        uuid.New().String(),
		UserID:    ident.UserID,
		ProductID: productID,
		Quantity:  quantity,
	})
	if err != nil {
		return nil, errors.Wrap(err, "upsert cart item")
	}
	return item, nil
}

// UpdateItem replaces the quantity of an existing line item owned by the
// caller.
func (s *Service) UpdateItem(ctx context.Context, ident user.Identity, itemID string, quantity int) (*LineItem, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	item, err := s.ownedItem(ctx, ident, itemID)
	if err != nil {
		return nil, err
	}

	if err := s.carts.UpdateQuantity(ctx, itemID, quantity); err != nil {
		return nil, errors.Wrap(err, "update cart item")
	}
	item.Quantity = quantity
	return item, nil
}

// Remove deletes a line item owned by the caller.
func (s *Service) Remove(ctx context.Context, ident user.Identity, itemID string) error {
	if _, err := s.ownedItem(ctx, ident, itemID); err != nil {
		return err
	}
	return s.carts.Delete(ctx, itemID)
}

// Clear deletes every line item in the given user's cart. Callers may only
// clear their own cart.
func (s *Service) Clear(ctx context.Context, ident user.Identity, userID string) error {
	if ident.UserID != userID {
		return ErrForbidden
	}
	return s.carts.Clear(ctx, userID)
}

// View returns the cart contents and total for the given user.
func (s *Service) View(ctx context.Context, userID string) (*View, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get user %s", userID)
	}

	items, err := s.viewItems(ctx, userID)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	return &View{Items: items, Total: total.Round(2)}, nil
}

// ApplyCoupon previews the discount a coupon code yields against the
// caller's current cart. The coupon is validated but not redeemed; usage
// counters only move at checkout.
func (s *Service) ApplyCoupon(ctx context.Context, ident user.Identity, code string) (*CouponPreview, error) {
	items, err := s.viewItems(ctx, ident.UserID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, pricing.ErrEmptyCart
	}

	cpn, err := s.coupons.Validate(ctx, code)
	if err != nil {
		return nil, err
	}

	lineItems := make([]pricing.LineItem, len(items))
	for i, it := range items {
		lineItems[i] = pricing.LineItem{
			ProductID: it.ProductID,
			UnitPrice: it.Product.Price,
			Quantity:  it.Quantity,
		}
	}

	subtotal := pricing.Subtotal(lineItems)
	discount := coupon.Discount(cpn, subtotal)

	return &CouponPreview{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		Total:          subtotal.Sub(discount),
		CouponCode:     cpn.Code,
	}, nil
}

// ownedItem loads a line item and verifies the caller owns it.
func (s *Service) ownedItem(ctx context.Context, ident user.Identity, itemID string) (*LineItem, error) {
	item, err := s.carts.GetItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, errors.Wrapf(err, "get cart item %s", itemID)
	}
	if item.UserID != ident.UserID {
		return nil, ErrForbidden
	}
	return item, nil
}

// viewItems loads the user's cart lines joined with product snapshots.
func (s *Service) viewItems(ctx context.Context, userID string) ([]ViewItem, error) {
	lines, err := s.carts.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list cart items")
	}
	if len(lines) == 0 {
		return nil, nil
	}

	ids := make([]string, len(lines))
	for i, l := range lines {
		ids[i] = l.ProductID
	}

	// Batch fetch all products in a single query.
	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}
	byID := make(map[string]product.Product, len(fetched))
	for _, p := range fetched {
		byID[p.ID] = p
	}

	items := make([]ViewItem, 0, len(lines))
	for _, l := range lines {
		p, ok := byID[l.ProductID]
		if !ok {
			return nil, errors.Wrapf(product.ErrNotFound, "product %s", l.ProductID)
		}
		items = append(items, ViewItem{LineItem: l, Product: p})
	}
	return items, nil
}
