package order

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/shopline/internal/domain/cart"
	"github.com/xenking/shopline/internal/domain/coupon"
	"github.com/xenking/shopline/internal/domain/pricing"
	"github.com/xenking/shopline/internal/domain/product"
	"github.com/xenking/shopline/internal/domain/user"
)

// --- Mock implementations ---

type mockCartRepo struct {
	lines    []cart.LineItem
	listErr  error
	cleared  bool
	clearErr error
}

func (m *mockCartRepo) Upsert(_ context.Context, item *cart.LineItem) (*cart.LineItem, error) {
	return item, nil
}

func (m *mockCartRepo) GetItem(_ context.Context, _ string) (*cart.LineItem, error) {
	return nil, cart.ErrItemNotFound
}

func (m *mockCartRepo) ListByUser(_ context.Context, _ string) ([]cart.LineItem, error) {
	return m.lines, m.listErr
}

func (m *mockCartRepo) UpdateQuantity(_ context.Context, _ string, _ int) error { return nil }

func (m *mockCartRepo) Delete(_ context.Context, _ string) error { return nil }

func (m *mockCartRepo) Clear(_ context.Context, _ string) error {
	m.cleared = true
	return m.clearErr
}

type mockProductRepo struct {
	byID map[string]product.Product
}

func (m *mockProductRepo) Create(_ context.Context, _ *product.Product) error { return nil }

func (m *mockProductRepo) List(_ context.Context, _ product.Filter) ([]product.Product, error) {
	return nil, nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id string) (*product.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

func (m *mockProductRepo) GetByIDs(_ context.Context, ids []string) ([]product.Product, error) {
	var out []product.Product
	for _, id := range ids {
		if p, ok := m.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProductRepo) Update(_ context.Context, _ string, _ product.Update) (*product.Product, error) {
	return nil, product.ErrNotFound
}

func (m *mockProductRepo) Delete(_ context.Context, _ string) error { return nil }

type mockCouponValidator struct {
	coupon *coupon.Coupon
	err    error
}

func (m *mockCouponValidator) Validate(_ context.Context, _ string) (*coupon.Coupon, error) {
	return m.coupon, m.err
}

type mockOrderRepo struct {
	lastCheckout *Checkout
	byID         map[string]*Order
	createErr    error
	statusErr    error
	lastStatus   Status
}

func (m *mockOrderRepo) CreateCheckout(_ context.Context, co Checkout) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.lastCheckout = &co
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id string) (*Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return o, nil
}

func (m *mockOrderRepo) ListByUser(_ context.Context, _ string, _, _ int) ([]Order, error) {
	return nil, nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, _ string, status Status) error {
	if m.statusErr != nil {
		return m.statusErr
	}
	m.lastStatus = status
	return nil
}

// --- Helpers ---

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testProduct(id, price, weight string) product.Product {
	return product.Product{
		ID:         id,
		Name:       "Product " + id,
		Price:      d(price),
		Weight:     d(weight),
		CategoryID: "cat-1",
	}
}

func testIdentity() user.Identity {
	return user.Identity{UserID: "u1", Email: "u1@example.com"}
}

func newCheckoutService(carts *mockCartRepo, products *mockProductRepo, cv *mockCouponValidator, orders *mockOrderRepo) *Service {
	return NewService(carts, products, cv, orders)
}

// --- Tests ---

func TestCheckout_MissingAddress(t *testing.T) {
	svc := newCheckoutService(&mockCartRepo{}, &mockProductRepo{}, &mockCouponValidator{}, &mockOrderRepo{})

	_, err := svc.Checkout(context.Background(), testIdentity(), CheckoutRequest{})
	require.ErrorIs(t, err, ErrMissingAddress)
}

func TestCheckout_EmptyCart(t *testing.T) {
	svc := newCheckoutService(&mockCartRepo{}, &mockProductRepo{}, &mockCouponValidator{}, &mockOrderRepo{})

	_, err := svc.Checkout(context.Background(), testIdentity(), CheckoutRequest{
		ShippingAddress: "1 Main St",
	})
	require.ErrorIs(t, err, pricing.ErrEmptyCart)
}

func TestCheckout_NoCoupon(t *testing.T) {
	carts := &mockCartRepo{lines: []cart.LineItem{
		{ID: "l1", UserID: "u1", ProductID: "p1", Quantity: 2},
	}}
	products := &mockProductRepo{byID: map[string]product.Product{
		"p1": testProduct("p1", "20.00", "1.5"),
	}}
	orders := &mockOrderRepo{}
	svc := newCheckoutService(carts, products, &mockCouponValidator{}, orders)

	o, err := svc.Checkout(context.Background(), testIdentity(), CheckoutRequest{
		ShippingAddress: "1 Main St",
	})

	require.NoError(t, err)
	// Subtotal 40.00, shipping 5.00 + 3kg*2.00 = 11.00.
	assert.True(t, d("51.00").Equal(o.TotalAmount), "got %s", o.TotalAmount)
	assert.True(t, d("11.00").Equal(o.ShippingCost), "got %s", o.ShippingCost)
	assert.True(t, o.DiscountAmount.IsZero())
	assert.Equal(t, StatusPending, o.Status)
	require.Len(t, o.Items, 1)
	assert.True(t, d("20.00").Equal(o.Items[0].Price))
	assert.Equal(t, 2, o.Items[0].Quantity)

	require.NotNil(t, orders.lastCheckout)
	assert.Empty(t, orders.lastCheckout.RedeemCouponCode)
	assert.Equal(t, "u1", orders.lastCheckout.ClearCartUserID)
}

func TestCheckout_WithPercentageCoupon(t *testing.T) {
	carts := &mockCartRepo{lines: []cart.LineItem{
		{ID: "l1", UserID: "u1", ProductID: "p1", Quantity: 4},
	}}
	products := &mockProductRepo{byID: map[string]product.Product{
		"p1": testProduct("p1", "25.00", "0.5"),
	}}
	pct := d("10")
	cv := &mockCouponValidator{coupon: &coupon.Coupon{Code: "SAVE10", Percentage: &pct, IsActive: true}}
	orders := &mockOrderRepo{}
	svc := newCheckoutService(carts, products, cv, orders)

	o, err := svc.Checkout(context.Background(), testIdentity(), CheckoutRequest{
		ShippingAddress: "1 Main St",
		CouponCode:      "SAVE10",
	})

	require.NoError(t, err)
	// Subtotal 100.00 qualifies for free shipping; 10% off -> 90.00.
	assert.True(t, d("90.00").Equal(o.TotalAmount), "got %s", o.TotalAmount)
	assert.True(t, o.ShippingCost.IsZero())
	assert.True(t, d("10.00").Equal(o.DiscountAmount))

	require.NotNil(t, orders.lastCheckout)
	assert.Equal(t, "SAVE10", orders.lastCheckout.RedeemCouponCode)
}

func TestCheckout_FreeShippingIgnoresDiscount(t *testing.T) {
	carts := &mockCartRepo{lines: []cart.LineItem{
		{ID: "l1", UserID: "u1", ProductID: "p1", Quantity: 1},
	}}
	products := &mockProductRepo{byID: map[string]product.Product{
		"p1": testProduct("p1", "100.00", "2"),
	}}
	pct := d("50")
	cv := &mockCouponValidator{coupon: &coupon.Coupon{Code: "HALF", Percentage: &pct, IsActive: true}}
	svc := newCheckoutService(carts, products, cv, &mockOrderRepo{})

	o, err := svc.Checkout(context.Background(), testIdentity(), CheckoutRequest{
		ShippingAddress: "1 Main St",
		CouponCode:      "HALF",
	})

	require.NoError(t, err)
	// The pre-discount subtotal hits the threshold even though the
	// discounted total is 50.00.
	assert.True(t, o.ShippingCost.IsZero())
	assert.True(t, d("50.00").Equal(o.TotalAmount), "got %s", o.TotalAmount)
}

func TestCheckout_InvalidCouponAborts(t *testing.T) {
	carts := &mockCartRepo{lines: []cart.LineItem{
		{ID: "l1", UserID: "u1", ProductID: "p1", Quantity: 1},
	}}
	products := &mockProductRepo{byID: map[string]product.Product{
		"p1": testProduct("p1", "10.00", "1"),
	}}
	cv := &mockCouponValidator{err: coupon.ErrExpired}
	orders := &mockOrderRepo{}
	svc := newCheckoutService(carts, products, cv, orders)

	_, err := svc.Checkout(context.Background(), testIdentity(), CheckoutRequest{
		ShippingAddress: "1 Main St",
		CouponCode:      "OLD",
	})

	require.ErrorIs(t, err, coupon.ErrExpired)
	assert.Nil(t, orders.lastCheckout)
}

func TestCheckout_MissingProductAborts(t *testing.T) {
	carts := &mockCartRepo{lines: []cart.LineItem{
		{ID: "l1", UserID: "u1", ProductID: "ghost", Quantity: 1},
	}}
	svc := newCheckoutService(carts, &mockProductRepo{}, &mockCouponValidator{}, &mockOrderRepo{})

	_, err := svc.Checkout(context.Background(), testIdentity(), CheckoutRequest{
		ShippingAddress: "1 Main St",
	})
	require.ErrorIs(t, err, product.ErrNotFound)
}

func TestCheckout_RepoErrorPropagates(t *testing.T) {
	carts := &mockCartRepo{lines: []cart.LineItem{
		{ID: "l1", UserID: "u1", ProductID: "p1", Quantity: 1},
	}}
	products := &mockProductRepo{byID: map[string]product.Product{
		"p1": testProduct("p1", "10.00", "1"),
	}}
	orders := &mockOrderRepo{createErr: errors.New("db write failed")}
	svc := newCheckoutService(carts, products, &mockCouponValidator{}, orders)

	_, err := svc.Checkout(context.Background(), testIdentity(), CheckoutRequest{
		ShippingAddress: "1 Main St",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "create order")
}

func TestGet_Ownership(t *testing.T) {
	orders := &mockOrderRepo{byID: map[string]*Order{
		"o1": {ID: "o1", UserID: "u2"},
	}}
	svc := newCheckoutService(&mockCartRepo{}, &mockProductRepo{}, &mockCouponValidator{}, orders)

	_, err := svc.Get(context.Background(), testIdentity(), "o1")
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Get(context.Background(), testIdentity(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStatus_ValidTransition(t *testing.T) {
	orders := &mockOrderRepo{byID: map[string]*Order{
		"o1": {ID: "o1", UserID: "u1", Status: StatusPending},
	}}
	svc := newCheckoutService(&mockCartRepo{}, &mockProductRepo{}, &mockCouponValidator{}, orders)

	o, err := svc.UpdateStatus(context.Background(), "o1", StatusConfirmed)

	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, o.Status)
	assert.Equal(t, StatusConfirmed, orders.lastStatus)
}

func TestUpdateStatus_InvalidTransition(t *testing.T) {
	orders := &mockOrderRepo{byID: map[string]*Order{
		"o1": {ID: "o1", UserID: "u1", Status: StatusDelivered},
	}}
	svc := newCheckoutService(&mockCartRepo{}, &mockProductRepo{}, &mockCouponValidator{}, orders)

	_, err := svc.UpdateStatus(context.Background(), "o1", StatusCancelled)

	var transition *InvalidTransitionError
	require.ErrorAs(t, err, &transition)
	assert.Equal(t, StatusDelivered, transition.From)
	assert.Equal(t, StatusCancelled, transition.To)
}

func TestUpdateStatus_SameStatusNoOp(t *testing.T) {
	orders := &mockOrderRepo{byID: map[string]*Order{
		"o1": {ID: "o1", UserID: "u1", Status: StatusShipped},
	}}
	svc := newCheckoutService(&mockCartRepo{}, &mockProductRepo{}, &mockCouponValidator{}, orders)

	o, err := svc.UpdateStatus(context.Background(), "o1", StatusShipped)

	require.NoError(t, err)
	assert.Equal(t, StatusShipped, o.Status)
	// The repository is never hit for a same-status update.
	assert.Equal(t, Status(""), orders.lastStatus)
}
