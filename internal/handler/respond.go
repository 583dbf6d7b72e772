package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/shopline/internal/auth"
	"github.com/xenking/shopline/internal/domain/cart"
	"github.com/xenking/shopline/internal/domain/category"
	"github.com/xenking/shopline/internal/domain/coupon"
	"github.com/xenking/shopline/internal/domain/order"
	"github.com/xenking/shopline/internal/domain/pricing"
	"github.com/xenking/shopline/internal/domain/product"
	"github.com/xenking/shopline/internal/domain/review"
	"github.com/xenking/shopline/internal/domain/shipping"
	"github.com/xenking/shopline/internal/domain/user"
)

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps a domain error to its HTTP status. Unrecognized errors are
// logged and reported as a generic 500 without leaking storage details.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := classify(err)
	if status == http.StatusInternalServerError {
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		msg = "internal server error"
	}
	writeJSON(w, status, errorResponse{Code: status, Message: msg})
}

// badRequest reports a malformed request body or parameter.
func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Code: http.StatusBadRequest, Message: msg})
}

// classify assigns each domain error kind a distinct status so clients can
// render a specific message.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, pricing.ErrEmptyCart),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, shipping.ErrNegativeWeight),
		errors.Is(err, coupon.ErrInvalidConfig),
		errors.Is(err, order.ErrMissingAddress),
		errors.Is(err, review.ErrInvalidRating):
		return http.StatusBadRequest, err.Error()

	case errors.Is(err, auth.ErrUnauthorized),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, err.Error()

	case errors.Is(err, cart.ErrForbidden),
		errors.Is(err, order.ErrForbidden),
		errors.Is(err, review.ErrForbidden):
		return http.StatusForbidden, err.Error()

	case errors.Is(err, user.ErrNotFound),
		errors.Is(err, product.ErrNotFound),
		errors.Is(err, category.ErrNotFound),
		errors.Is(err, cart.ErrItemNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, coupon.ErrNotFound),
		errors.Is(err, review.ErrNotFound):
		return http.StatusNotFound, err.Error()

	case errors.Is(err, user.ErrEmailTaken),
		errors.Is(err, category.ErrDuplicateName),
		errors.Is(err, coupon.ErrDuplicateCode),
		errors.Is(err, review.ErrDuplicate):
		return http.StatusConflict, err.Error()

	case errors.Is(err, coupon.ErrInactive),
		errors.Is(err, coupon.ErrExpired),
		errors.Is(err, coupon.ErrExhausted):
		return http.StatusUnprocessableEntity, err.Error()
	}

	var statusErr *order.InvalidStatusError
	if errors.As(err, &statusErr) {
		return http.StatusBadRequest, statusErr.Error()
	}
	var transitionErr *order.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		return http.StatusUnprocessableEntity, transitionErr.Error()
	}

	return http.StatusInternalServerError, ""
}

// decode reads the request body into v.
func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// parsePagination reads skip/limit query parameters, clamping to sane
// defaults.
func parsePagination(r *http.Request) (offset, limit int) {
	limit = 10
	q := r.URL.Query()
	if v := q.Get("skip"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= 100 {
			limit = n
		}
	}
	return offset, limit
}
