package review

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/xenking/shopline/internal/domain/product"
	"github.com/xenking/shopline/internal/domain/user"
)

// Service manages product reviews with ownership checks.
type Service struct {
	reviews  Repository
	products product.Repository
}

// NewService creates a review Service.
func NewService(reviews Repository, products product.Repository) *Service {
	return &Service{reviews: reviews, products: products}
}

// Create submits a review for a product. Each user may review a product at
// most once.
func (s *Service) Create(ctx context.Context, ident user.Identity, productID string, rating int, comment string) (*Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	if _, err := s.products.GetByID(ctx, productID); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return nil, product.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get product %s", productID)
	}

	r := &Review{
		ID:        uuid.New().String(),
		ProductID: productID,
		UserID:    ident.UserID,
		Rating:    rating,
		Comment:   comment,
	}
	if err := s.reviews.Create(ctx, r); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, ErrDuplicate
		}
		return nil, errors.Wrap(err, "create review")
	}
	return r, nil
}

// ListByProduct returns every review for a product.
func (s *Service) ListByProduct(ctx context.Context, productID string) ([]Review, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return nil, product.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get product %s", productID)
	}
	return s.reviews.ListByProduct(ctx, productID)
}

// Update modifies the caller's own review.
func (s *Service) Update(ctx context.Context, ident user.Identity, reviewID string, rating int, comment string) (*Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	r, err := s.owned(ctx, ident, reviewID)
	if err != nil {
		return nil, err
	}

	if err := s.reviews.Update(ctx, reviewID, rating, comment); err != nil {
		return nil, errors.Wrap(err, "update review")
	}
	r.Rating = rating
	r.Comment = comment
	return r, nil
}

// Delete removes the caller's own review.
func (s *Service) Delete(ctx context.Context, ident user.Identity, reviewID string) error {
	if _, err := s.owned(ctx, ident, reviewID); err != nil {
		return err
	}
	return s.reviews.Delete(ctx, reviewID)
}

func (s *Service) owned(ctx context.Context, ident user.Identity, reviewID string) (*Review, error) {
	r, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "get review %s", reviewID)
	}
	if r.UserID != ident.UserID {
		return nil, ErrForbidden
	}
	return r, nil
}
