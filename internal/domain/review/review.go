package review

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

var (
	// ErrNotFound is returned when a requested review does not exist.
	ErrNotFound = errors.New("review not found")
	// ErrForbidden is returned when the caller does not own the review.
	ErrForbidden = errors.New("not authorized to modify this review")
	// ErrDuplicate is returned when a user reviews the same product twice.
	ErrDuplicate = errors.New("product already reviewed by this user")
	// ErrInvalidRating is returned when the rating is outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)

// Review is a user's rating and comment on a product. One review per
// (product, user) pair.
type Review struct {
	ID        string
	ProductID string
	UserID    string
	Rating    int
	Comment   string
	CreatedAt time.Time
}

// Repository defines persistence operations for reviews.
type Repository interface {
	Create(ctx context.Context, r *Review) error
	GetByID(ctx context.Context, id string) (*Review, error)
	ListByProduct(ctx context.Context, productID string) ([]Review, error)
	Update(ctx context.Context, id string, rating int, comment string) error
	Delete(ctx context.Context, id string) error
}
