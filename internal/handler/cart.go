package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xenking/shopline/internal/auth"
	"github.com/xenking/shopline/internal/domain/cart"
)

type addToCartRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type applyCouponRequest struct {
	Code string `json:"code"`
}

type cartLineResponse struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type cartItemResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Product   productResponse `json:"product"`
}

func toCartLineResponse(item *cart.LineItem) cartLineResponse {
	return cartLineResponse{
		ID:        item.ID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
	}
}

type cartResponse struct {
	Items []cartItemResponse `json:"items"`
	Total float64            `json:"total"`
}

type couponPreviewResponse struct {
	Subtotal       float64 `json:"subtotal"`
	DiscountAmount float64 `json:"discount_amount"`
	Total          float64 `json:"total"`
	CouponCode     string  `json:"coupon_code"`
}

// GetCart returns the caller's cart with its total.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, r, auth.ErrUnauthorized)
		return
	}

	view, err := h.carts.View(r.Context(), ident.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	items := make([]cartItemResponse, len(view.Items))
	for i, it := range view.Items {
		items[i] = cartItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Product:   toProductResponse(&it.Product),
		}
	}
	writeJSON(w, http.StatusOK, cartResponse{
		Items: items,
		Total: view.Total.InexactFloat64(),
	})
}

// AddToCart adds a product to the caller's cart, merging quantities when the
// product is already present.
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, r, auth.ErrUnauthorized)
		return
	}

	var req addToCartRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	item, err := h.carts.Add(r.Context(), ident, req.ProductID, req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCartLineResponse(item))
}

// UpdateCartItem replaces the quantity of a cart line owned by the caller.
func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, r, auth.ErrUnauthorized)
		return
	}

	var req updateCartItemRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	item, err := h.carts.UpdateItem(r.Context(), ident, chi.URLParam(r, "itemID"), req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartLineResponse(item))
}

// RemoveCartItem deletes a cart line owned by the caller.
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, r, auth.ErrUnauthorized)
		return
	}

	if err := h.carts.Remove(r.Context(), ident, chi.URLParam(r, "itemID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearCart deletes every line in the caller's cart.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, r, auth.ErrUnauthorized)
		return
	}

	if err := h.carts.Clear(r.Context(), ident, ident.UserID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ApplyCoupon previews a coupon against the caller's cart without redeeming
// it.
func (h *Handler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, r, auth.ErrUnauthorized)
		return
	}

	var req applyCouponRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.Code == "" {
		badRequest(w, "code is required")
		return
	}

	preview, err := h.carts.ApplyCoupon(r.Context(), ident, req.Code)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, couponPreviewResponse{
		Subtotal:       preview.Subtotal.InexactFloat64(),
		DiscountAmount: preview.DiscountAmount.InexactFloat64(),
		Total:          preview.Total.InexactFloat64(),
		CouponCode:     preview.CouponCode,
	})
}
