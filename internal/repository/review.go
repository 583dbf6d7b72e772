package repository

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/xenking/shopline/internal/domain/review"
)

const (
	createReviewSQL = `INSERT INTO reviews (id, product_id, user_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	getReviewByIDSQL = `SELECT id, product_id, user_id, rating, comment, created_at
		FROM reviews WHERE id = $1`

	listReviewsByProductSQL = `SELECT id, product_id, user_id, rating, comment, created_at
		FROM reviews WHERE product_id = $1 ORDER BY created_at DESC`

	updateReviewSQL = `UPDATE reviews SET rating = $2, comment = $3 WHERE id = $1`

	deleteReviewSQL = `DELETE FROM reviews WHERE id = $1`
)

var _ review.Repository = (*ReviewRepository)(nil)

// ReviewRepository implements review.Repository backed by PostgreSQL.
type ReviewRepository struct {
	db DB
}

// NewReviewRepository returns a ReviewRepository that uses the given pool.
func NewReviewRepository(db DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create persists a new review. Returns review.ErrDuplicate when the user
// has already reviewed the product.
func (r *ReviewRepository) Create(ctx context.Context, rv *review.Review) error {
	err := r.db.QueryRow(ctx, createReviewSQL,
		rv.ID, rv.ProductID, rv.UserID, rv.Rating, rv.Comment,
	).Scan(&rv.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return review.ErrDuplicate
		}
		return errors.Wrap(err, "creating review")
	}
	return nil
}

// GetByID returns a review by id. Returns review.ErrNotFound when absent.
func (r *ReviewRepository) GetByID(ctx context.Context, id string) (*review.Review, error) {
	rows, err := r.db.Query(ctx, getReviewByIDSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "getting review %q", id)
	}

	rv, err := pgx.CollectExactlyOneRow(rows, scanReview)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, review.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting review %q", id)
	}
	return &rv, nil
}

// ListByProduct returns every review for the product, newest first.
func (r *ReviewRepository) ListByProduct(ctx context.Context, productID string) ([]review.Review, error) {
	rows, err := r.db.Query(ctx, listReviewsByProductSQL, productID)
	if err != nil {
		return nil, errors.Wrap(err, "listing reviews")
	}
	return pgx.CollectRows(rows, scanReview)
}

// Update replaces the rating and comment of a review.
func (r *ReviewRepository) Update(ctx context.Context, id string, rating int, comment string) error {
	tag, err := r.db.Exec(ctx, updateReviewSQL, id, rating, comment)
	if err != nil {
		return errors.Wrapf(err, "updating review %q", id)
	}
	if tag.RowsAffected() == 0 {
		return review.ErrNotFound
	}
	return nil
}

// Delete removes a review.
func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, deleteReviewSQL, id)
	if err != nil {
		return errors.Wrapf(err, "deleting review %q", id)
	}
	if tag.RowsAffected() == 0 {
		return review.ErrNotFound
	}
	return nil
}

func scanReview(row pgx.CollectableRow) (review.Review, error) {
	var rv review.Review
	err := row.Scan(&rv.ID, &rv.ProductID, &rv.UserID, &rv.Rating, &rv.Comment, &rv.CreatedAt)
	return rv, err
}
