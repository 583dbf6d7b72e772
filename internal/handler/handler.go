// Package handler exposes the REST API. Handlers decode requests, delegate
// to the domain services, and map domain errors to HTTP statuses.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xenking/shopline/internal/auth"
	"github.com/xenking/shopline/internal/domain/cart"
	"github.com/xenking/shopline/internal/domain/category"
	"github.com/xenking/shopline/internal/domain/coupon"
	"github.com/xenking/shopline/internal/domain/order"
	"github.com/xenking/shopline/internal/domain/product"
	"github.com/xenking/shopline/internal/domain/review"
)

// Handler carries the domain dependencies for every route.
type Handler struct {
	auth       *auth.Service
	products   product.Repository
	categories category.Repository
	coupons    coupon.Repository
	validator  coupon.Validator
	carts      *cart.Service
	orders     *order.Service
	reviews    *review.Service
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	authSvc *auth.Service,
	products product.Repository,
	categories category.Repository,
	coupons coupon.Repository,
	validator coupon.Validator,
	carts *cart.Service,
	orders *order.Service,
	reviews *review.Service,
) *Handler {
	return &Handler{
		auth:       authSvc,
		products:   products,
		categories: categories,
		coupons:    coupons,
		validator:  validator,
		carts:      carts,
		orders:     orders,
		reviews:    reviews,
	}
}

// Routes builds the API router. Mutating cart, order, and review routes
// require a bearer token; catalog reads are public.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)

	r.Get("/categories", h.ListCategories)
	r.Post("/categories", h.CreateCategory)
	r.Get("/categories/{categoryID}", h.GetCategory)

	r.Get("/products", h.ListProducts)
	r.Post("/products", h.CreateProduct)
	r.Get("/products/{productID}", h.GetProduct)
	r.Put("/products/{productID}", h.UpdateProduct)
	r.Delete("/products/{productID}", h.DeleteProduct)
	r.Get("/products/{productID}/reviews", h.ListReviews)

	r.Post("/coupons", h.CreateCoupon)
	r.Post("/coupons/validate", h.ValidateCoupon)
	r.Get("/coupons/{couponID}", h.GetCoupon)

	r.Post("/shipping/calculate", h.CalculateShipping)

	// Authenticated routes.
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)

		r.Get("/auth/me", h.Me)

		r.Get("/cart", h.GetCart)
		r.Post("/cart", h.AddToCart)
		r.Post("/cart/apply-coupon", h.ApplyCoupon)
		r.Put("/cart/{itemID}", h.UpdateCartItem)
		r.Delete("/cart/{itemID}", h.RemoveCartItem)
		r.Delete("/cart", h.ClearCart)

		r.Post("/orders/checkout", h.Checkout)
		r.Get("/orders", h.ListOrders)
		r.Get("/orders/{orderID}", h.GetOrder)
		r.Put("/orders/{orderID}/status", h.UpdateOrderStatus)

		r.Post("/products/{productID}/reviews", h.CreateReview)
		r.Put("/products/{productID}/reviews/{reviewID}", h.UpdateReview)
		r.Delete("/products/{productID}/reviews/{reviewID}", h.DeleteReview)
	})

	return r
}
