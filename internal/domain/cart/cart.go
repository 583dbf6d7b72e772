package cart

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

var (
	// ErrItemNotFound is returned when a cart line item does not exist.
	ErrItemNotFound = errors.New("cart item not found")
	// ErrForbidden is returned when the caller does not own the cart item.
	ErrForbidden = errors.New("not authorized to modify this cart item")
	// ErrInvalidQuantity is returned when a quantity below 1 is requested.
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")
)

// LineItem is one (user, product) row in a cart. The pair is unique per
// user: adding the same product again merges quantities instead of creating
// a second row.
type LineItem struct {
	ID        string
	UserID    string
	ProductID string
	Quantity  int
	CreatedAt time.Time
}

// Repository defines persistence operations for cart line items.
//
// Upsert implements the merge-on-add contract: when a row for the item's
// (user, product) pair already exists, its quantity is incremented by the
// item's quantity and the stored row is returned; otherwise the item is
// inserted as-is.
type Repository interface {
	Upsert(ctx context.Context, item *LineItem) (*LineItem, error)
	GetItem(ctx context.Context, id string) (*LineItem, error)
	ListByUser(ctx context.Context, userID string) ([]LineItem, error)
	UpdateQuantity(ctx context.Context, id string, quantity int) error
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context, userID string) error
}
