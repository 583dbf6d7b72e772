package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/xenking/shopline/internal/domain/category"
	"github.com/xenking/shopline/internal/domain/product"
)

type createCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type categoryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateCategory adds a new product category.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.Name == "" {
		badRequest(w, "name is required")
		return
	}

	c := &category.Category{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
	}
	if err := h.categories.Create(r.Context(), c); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryResponse(c))
}

// ListCategories returns every category.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.categories.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]categoryResponse, len(cats))
	for i := range cats {
		out[i] = toCategoryResponse(&cats[i])
	}
	writeJSON(w, http.StatusOK, out)
}

type categoryDetailResponse struct {
	categoryResponse
	Products []productResponse `json:"products"`
}

// GetCategory returns a single category together with its products.
func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	c, err := h.categories.GetByID(r.Context(), chi.URLParam(r, "categoryID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	products, err := h.products.List(r.Context(), product.Filter{CategoryID: c.ID, Limit: 100})
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := categoryDetailResponse{
		categoryResponse: toCategoryResponse(c),
		Products:         make([]productResponse, len(products)),
	}
	for i := range products {
		out.Products[i] = toProductResponse(&products[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func toCategoryResponse(c *category.Category) categoryResponse {
	return categoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
	}
}
