//go:build integration

package integration

import (
	"math"
	"net/http"
	"regexp"
	"testing"
)

var uuidPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func approx(got, want float64) bool {
	return math.Abs(got-want) < 0.001
}

// findProduct looks up a seeded product by name through the public catalog.
func findProduct(t *testing.T, name string) productResponse {
	t.Helper()

	resp := doGet(t, "/api/products?limit=100")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list products: expected 200, got %d", resp.StatusCode)
	}

	for _, p := range decodeJSON[[]productResponse](t, resp) {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("seeded product %q not found", name)
	return productResponse{}
}

func addToCart(t *testing.T, token, productID string, quantity int) cartLineResponse {
	t.Helper()

	resp := doAuthed(t, http.MethodPost, "/api/cart", map[string]any{
		"product_id": productID,
		"quantity":   quantity,
	}, token)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add to cart: expected 201, got %d", resp.StatusCode)
	}
	return decodeJSON[cartLineResponse](t, resp)
}

func TestCart_RequiresAuth(t *testing.T) {
	resp := doGet(t, "/api/cart")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestCart_AddMergesQuantities(t *testing.T) {
	token := registerAndLogin(t, "merge@test.local", "hunter22")
	p := findProduct(t, "Cotton T-Shirt")

	first := addToCart(t, token, p.ID, 2)
	second := addToCart(t, token, p.ID, 3)

	if first.ID != second.ID {
		t.Errorf("expected same cart line, got %q and %q", first.ID, second.ID)
	}
	if second.Quantity != 5 {
		t.Errorf("quantity: got %d, want 5", second.Quantity)
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	token := registerAndLogin(t, "empty@test.local", "hunter22")

	resp := doAuthed(t, http.MethodPost, "/api/orders/checkout", map[string]any{
		"shipping_address": "1 Main St",
	}, token)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCheckout_MissingAddress(t *testing.T) {
	token := registerAndLogin(t, "noaddr@test.local", "hunter22")
	p := findProduct(t, "Desk Lamp")
	addToCart(t, token, p.ID, 1)

	resp := doAuthed(t, http.MethodPost, "/api/orders/checkout", map[string]any{}, token)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCheckout_NoCoupon(t *testing.T) {
	token := registerAndLogin(t, "plain@test.local", "hunter22")
	// French Press: 24.50, 0.850kg.
	p := findProduct(t, "French Press")
	addToCart(t, token, p.ID, 2)

	resp := doAuthed(t, http.MethodPost, "/api/orders/checkout", map[string]any{
		"shipping_address": "1 Main St",
	}, token)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	order := decodeJSON[orderResponse](t, resp)
	// Subtotal 49.00, shipping 5.00 + 1.7kg*2.00 = 8.40, total 57.40.
	if !approx(order.ShippingCost, 8.40) {
		t.Errorf("shipping: got %v, want 8.40", order.ShippingCost)
	}
	if !approx(order.TotalAmount, 57.40) {
		t.Errorf("total: got %v, want 57.40", order.TotalAmount)
	}
	if order.Status != "pending" {
		t.Errorf("status: got %q, want pending", order.Status)
	}
	if !uuidPattern.MatchString(order.ID) {
		t.Errorf("order ID %q is not a valid UUID", order.ID)
	}
	if len(order.Items) != 1 || order.Items[0].Quantity != 2 {
		t.Errorf("unexpected items: %+v", order.Items)
	}

	// Checkout drains the cart.
	cart := doAuthed(t, http.MethodGet, "/api/cart", nil, token)
	defer cart.Body.Close()
	view := decodeJSON[cartResponse](t, cart)
	if len(view.Items) != 0 {
		t.Errorf("cart not cleared: %d items remain", len(view.Items))
	}
}

func TestCheckout_WithCouponAndFreeShipping(t *testing.T) {
	token := registerAndLogin(t, "coupon@test.local", "hunter22")
	// Mechanical Keyboard: 129.00, above the free-shipping threshold.
	p := findProduct(t, "Mechanical Keyboard")
	addToCart(t, token, p.ID, 1)

	resp := doAuthed(t, http.MethodPost, "/api/orders/checkout", map[string]any{
		"shipping_address": "1 Main St",
		"coupon_code":      "SAVE10",
	}, token)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	order := decodeJSON[orderResponse](t, resp)
	// 129.00 - 10% = 116.10, free shipping.
	if !approx(order.DiscountAmount, 12.90) {
		t.Errorf("discount: got %v, want 12.90", order.DiscountAmount)
	}
	if !approx(order.ShippingCost, 0) {
		t.Errorf("shipping: got %v, want 0", order.ShippingCost)
	}
	if !approx(order.TotalAmount, 116.10) {
		t.Errorf("total: got %v, want 116.10", order.TotalAmount)
	}
	if order.CouponCode != "SAVE10" {
		t.Errorf("coupon code: got %q, want SAVE10", order.CouponCode)
	}
}

func TestCheckout_UnknownCoupon(t *testing.T) {
	token := registerAndLogin(t, "badcoupon@test.local", "hunter22")
	p := findProduct(t, "Wool Sweater")
	addToCart(t, token, p.ID, 1)

	resp := doAuthed(t, http.MethodPost, "/api/orders/checkout", map[string]any{
		"shipping_address": "1 Main St",
		"coupon_code":      "NONEXISTENT",
	}, token)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	// The cart survives the failed checkout.
	cart := doAuthed(t, http.MethodGet, "/api/cart", nil, token)
	defer cart.Body.Close()
	view := decodeJSON[cartResponse](t, cart)
	if len(view.Items) != 1 {
		t.Errorf("cart should be untouched, got %d items", len(view.Items))
	}
}

func TestOrders_OwnershipIsolated(t *testing.T) {
	alice := registerAndLogin(t, "alice@test.local", "hunter22")
	bob := registerAndLogin(t, "bob@test.local", "hunter22")

	p := findProduct(t, "USB-C Charger 65W")
	addToCart(t, alice, p.ID, 1)

	resp := doAuthed(t, http.MethodPost, "/api/orders/checkout", map[string]any{
		"shipping_address": "1 Main St",
	}, alice)
	order := decodeJSON[orderResponse](t, resp)
	resp.Body.Close()

	stolen := doAuthed(t, http.MethodGet, "/api/orders/"+order.ID, nil, bob)
	defer stolen.Body.Close()
	if stolen.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", stolen.StatusCode)
	}
}

func TestOrderStatus_Transitions(t *testing.T) {
	token := registerAndLogin(t, "status@test.local", "hunter22")
	p := findProduct(t, "Standing Desk Mat")
	addToCart(t, token, p.ID, 1)

	resp := doAuthed(t, http.MethodPost, "/api/orders/checkout", map[string]any{
		"shipping_address": "1 Main St",
	}, token)
	order := decodeJSON[orderResponse](t, resp)
	resp.Body.Close()

	confirm := doAuthed(t, http.MethodPut, "/api/orders/"+order.ID+"/status", map[string]any{
		"status": "confirmed",
	}, token)
	defer confirm.Body.Close()
	if confirm.StatusCode != http.StatusOK {
		t.Fatalf("confirm: expected 200, got %d", confirm.StatusCode)
	}

	// pending is behind confirmed; the transition table rejects going back.
	back := doAuthed(t, http.MethodPut, "/api/orders/"+order.ID+"/status", map[string]any{
		"status": "pending",
	}, token)
	defer back.Body.Close()
	if back.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("revert: expected 422, got %d", back.StatusCode)
	}
}
