package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/shopline/internal/domain/coupon"
)

type createCouponRequest struct {
	Code               string     `json:"code"`
	DiscountPercentage *float64   `json:"discount_percentage"`
	DiscountAmount     *float64   `json:"discount_amount"`
	MaxUses            int        `json:"max_uses"`
	ExpiresAt          *time.Time `json:"expires_at"`
}

type validateCouponRequest struct {
	Code string `json:"code"`
}

type couponResponse struct {
	ID                 string     `json:"id"`
	Code               string     `json:"code"`
	DiscountPercentage *float64   `json:"discount_percentage,omitempty"`
	DiscountAmount     *float64   `json:"discount_amount,omitempty"`
	IsActive           bool       `json:"is_active"`
	MaxUses            int        `json:"max_uses"`
	Uses               int        `json:"uses"`
	ExpiresAt          *time.Time `json:"expires_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

type validateCouponResponse struct {
	Valid  bool           `json:"valid"`
	Coupon couponResponse `json:"coupon"`
}

func toCouponResponse(c *coupon.Coupon) couponResponse {
	resp := couponResponse{
		ID:        c.ID,
		Code:      c.Code,
		IsActive:  c.IsActive,
		MaxUses:   c.MaxUses,
		Uses:      c.Uses,
		ExpiresAt: c.ExpiresAt,
		CreatedAt: c.CreatedAt,
	}
	if c.Percentage != nil {
		v := c.Percentage.InexactFloat64()
		resp.DiscountPercentage = &v
	}
	if c.Amount != nil {
		v := c.Amount.InexactFloat64()
		resp.DiscountAmount = &v
	}
	return resp
}

// CreateCoupon registers a new discount code. Exactly one of
// discount_percentage or discount_amount must be set.
func (h *Handler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	var req createCouponRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	if req.Code == "" {
		badRequest(w, "code is required")
		return
	}
	if req.MaxUses < 0 {
		badRequest(w, "max_uses must not be negative")
		return
	}

	c := &coupon.Coupon{
		ID:        uuid.New().String(),
		Code:      req.Code,
		IsActive:  true,
		MaxUses:   req.MaxUses,
		ExpiresAt: req.ExpiresAt,
	}
	if req.DiscountPercentage != nil {
		d := decimal.NewFromFloat(*req.DiscountPercentage)
		c.Percentage = &d
	}
	if req.DiscountAmount != nil {
		d := decimal.NewFromFloat(*req.DiscountAmount)
		c.Amount = &d
	}
	if err := c.Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.coupons.Create(r.Context(), c); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCouponResponse(c))
}

// ValidateCoupon checks a code against the active/expiry/usage rules without
// redeeming it.
func (h *Handler) ValidateCoupon(w http.ResponseWriter, r *http.Request) {
	var req validateCouponRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.Code == "" {
		badRequest(w, "code is required")
		return
	}

	c, err := h.validator.Validate(r.Context(), req.Code)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, validateCouponResponse{
		Valid:  true,
		Coupon: toCouponResponse(c),
	})
}

// GetCoupon returns a coupon by id.
func (h *Handler) GetCoupon(w http.ResponseWriter, r *http.Request) {
	c, err := h.coupons.GetByID(r.Context(), chi.URLParam(r, "couponID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCouponResponse(c))
}
