package product

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase. Price and Weight
// are read at pricing time; the price is copied into order items at checkout
// so later catalog changes never affect historical orders.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Weight      decimal.Decimal
	CategoryID  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Filter narrows List results. Zero values mean "no constraint".
type Filter struct {
	CategoryID string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Query      string
	Offset     int
	Limit      int
}

// Update holds optional field changes for a product. Nil fields are left
// untouched.
type Update struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
	Weight      *decimal.Decimal
	CategoryID  *string
}

// Repository defines persistence operations for the product catalog.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	List(ctx context.Context, f Filter) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
	Update(ctx context.Context, id string, u Update) (*Product, error)
	Delete(ctx context.Context, id string) error
}
