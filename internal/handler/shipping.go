package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/xenking/shopline/internal/domain/shipping"
)

type calculateShippingRequest struct {
	TotalWeight float64 `json:"total_weight"`
	Subtotal    float64 `json:"subtotal"`
}

type shippingResponse struct {
	Cost          float64 `json:"cost"`
	EstimatedDays int     `json:"estimated_days"`
	Method        string  `json:"method"`
}

// CalculateShipping estimates delivery cost for a given weight and subtotal.
func (h *Handler) CalculateShipping(w http.ResponseWriter, r *http.Request) {
	var req calculateShippingRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.Subtotal < 0 {
		badRequest(w, "subtotal must not be negative")
		return
	}

	est, err := shipping.Calculate(
		decimal.NewFromFloat(req.TotalWeight),
		decimal.NewFromFloat(req.Subtotal),
	)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, shippingResponse{
		Cost:          est.Cost.InexactFloat64(),
		EstimatedDays: est.EstimatedDays,
		Method:        est.Method,
	})
}
