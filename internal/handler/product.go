package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/shopline/internal/domain/category"
	"github.com/xenking/shopline/internal/domain/product"
)

type createProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Weight      float64 `json:"weight"`
	CategoryID  string  `json:"category_id"`
}

type updateProductRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
	Weight      *float64 `json:"weight"`
	CategoryID  *string  `json:"category_id"`
}

type productResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	Weight      float64   `json:"weight"`
	CategoryID  string    `json:"category_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateProduct adds a new catalog item.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.Name == "" || req.Price < 0 || req.Weight < 0 || req.Stock < 0 {
		badRequest(w, "name is required; price, weight, and stock must be non-negative")
		return
	}

	if _, err := h.categories.GetByID(r.Context(), req.CategoryID); err != nil {
		if errors.Is(err, category.ErrNotFound) {
			writeError(w, r, category.ErrNotFound)
			return
		}
		writeError(w, r, err)
		return
	}

	p := &product.Product{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		Price:       decimal.NewFromFloat(req.Price).Round(2),
		Stock:       req.Stock,
		Weight:      decimal.NewFromFloat(req.Weight),
		CategoryID:  req.CategoryID,
	}
	if err := h.products.Create(r.Context(), p); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductResponse(p))
}

// ListProducts returns catalog items matching the query filters.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	f, err := parseProductFilter(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	products, err := h.products.List(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]productResponse, len(products))
	for i := range products {
		out[i] = toProductResponse(&products[i])
	}
	writeJSON(w, http.StatusOK, out)
}

// GetProduct returns a single catalog item.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetByID(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

// UpdateProduct applies a partial update to a catalog item.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req updateProductRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	u := product.Update{
		Name:        req.Name,
		Description: req.Description,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
	}
	if req.Price != nil {
		if *req.Price < 0 {
			badRequest(w, "price must be non-negative")
			return
		}
		price := decimal.NewFromFloat(*req.Price).Round(2)
		u.Price = &price
	}
	if req.Weight != nil {
		if *req.Weight < 0 {
			badRequest(w, "weight must be non-negative")
			return
		}
		weight := decimal.NewFromFloat(*req.Weight)
		u.Weight = &weight
	}
	if req.CategoryID != nil {
		if _, err := h.categories.GetByID(r.Context(), *req.CategoryID); err != nil {
			writeError(w, r, err)
			return
		}
	}

	p, err := h.products.Update(r.Context(), chi.URLParam(r, "productID"), u)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

// DeleteProduct removes a catalog item.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), chi.URLParam(r, "productID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseProductFilter(r *http.Request) (product.Filter, error) {
	q := r.URL.Query()
	f := product.Filter{
		CategoryID: q.Get("category_id"),
		Query:      q.Get("q"),
		Limit:      10,
	}

	if v := q.Get("min_price"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil || d.IsNegative() {
			return f, errors.New("min_price must be a non-negative number")
		}
		f.MinPrice = &d
	}
	if v := q.Get("max_price"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil || d.IsNegative() {
			return f, errors.New("max_price must be a non-negative number")
		}
		f.MaxPrice = &d
	}
	if v := q.Get("skip"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, errors.New("skip must be a non-negative integer")
		}
		f.Offset = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			return f, errors.New("limit must be between 1 and 100")
		}
		f.Limit = n
	}
	return f, nil
}

func toProductResponse(p *product.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.InexactFloat64(),
		Stock:       p.Stock,
		Weight:      p.Weight.InexactFloat64(),
		CategoryID:  p.CategoryID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
