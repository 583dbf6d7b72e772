package category

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

var (
	// ErrNotFound is returned when a requested category does not exist.
	ErrNotFound = errors.New("category not found")
	// ErrDuplicateName is returned when creating a category whose name is
	// already taken.
	ErrDuplicateName = errors.New("category name already exists")
)

// Category groups products in the catalog.
type Category struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}

// Repository defines persistence operations for categories.
type Repository interface {
	Create(ctx context.Context, c *Category) error
	List(ctx context.Context) ([]Category, error)
	GetByID(ctx context.Context, id string) (*Category, error)
}
