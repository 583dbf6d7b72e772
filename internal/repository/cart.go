package repository

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/xenking/shopline/internal/domain/cart"
)

const (
	// Merge-on-add: a second insert for the same (user, product) pair adds
	// to the existing quantity instead of creating a duplicate row.
	upsertCartItemSQL = `INSERT INTO cart_items (id, user_id, product_id, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING id, user_id, product_id, quantity, created_at`

	getCartItemSQL = `SELECT id, user_id, product_id, quantity, created_at
		FROM cart_items WHERE id = $1`

	listCartItemsSQL = `SELECT id, user_id, product_id, quantity, created_at
		FROM cart_items WHERE user_id = $1 ORDER BY created_at`

	updateCartQuantitySQL = `UPDATE cart_items SET quantity = $2 WHERE id = $1`

	deleteCartItemSQL = `DELETE FROM cart_items WHERE id = $1`

	clearCartSQL = `DELETE FROM cart_items WHERE user_id = $1`
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL.
type CartRepository struct {
	db DB
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(db DB) *CartRepository {
	return &CartRepository{db: db}
}

// Upsert inserts the line item, merging quantities into an existing
// (user, product) row when one exists. The stored row is returned.
func (r *CartRepository) Upsert(ctx context.Context, item *cart.LineItem) (*cart.LineItem, error) {
	rows, err := r.db.Query(ctx, upsertCartItemSQL,
		item.ID, item.UserID, item.ProductID, item.Quantity,
	)
	if err != nil {
		return nil, errors.Wrap(err, "upserting cart item")
	}

	stored, err := pgx.CollectExactlyOneRow(rows, scanCartItem)
	if err != nil {
		return nil, errors.Wrap(err, "upserting cart item")
	}
	return &stored, nil
}

// GetItem returns a single line item. Returns cart.ErrItemNotFound when
// absent.
func (r *CartRepository) GetItem(ctx context.Context, id string) (*cart.LineItem, error) {
	rows, err := r.db.Query(ctx, getCartItemSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "getting cart item %q", id)
	}

	item, err := pgx.CollectExactlyOneRow(rows, scanCartItem)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cart.ErrItemNotFound
		}
		return nil, errors.Wrapf(err, "getting cart item %q", id)
	}
	return &item, nil
}

// ListByUser returns every line item in the user's cart.
func (r *CartRepository) ListByUser(ctx context.Context, userID string) ([]cart.LineItem, error) {
	rows, err := r.db.Query(ctx, listCartItemsSQL, userID)
	if err != nil {
		return nil, errors.Wrap(err, "listing cart items")
	}
	return pgx.CollectRows(rows, scanCartItem)
}

// UpdateQuantity replaces the quantity of a line item.
func (r *CartRepository) UpdateQuantity(ctx context.Context, id string, quantity int) error {
	tag, err := r.db.Exec(ctx, updateCartQuantitySQL, id, quantity)
	if err != nil {
		return errors.Wrapf(err, "updating cart item %q", id)
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrItemNotFound
	}
	return nil
}

// Delete removes a line item.
func (r *CartRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, deleteCartItemSQL, id)
	if err != nil {
		return errors.Wrapf(err, "deleting cart item %q", id)
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrItemNotFound
	}
	return nil
}

// Clear removes every line item in the user's cart.
func (r *CartRepository) Clear(ctx context.Context, userID string) error {
	if _, err := r.db.Exec(ctx, clearCartSQL, userID); err != nil {
		return errors.Wrap(err, "clearing cart")
	}
	return nil
}

func scanCartItem(row pgx.CollectableRow) (cart.LineItem, error) {
	var item cart.LineItem
	err := row.Scan(&item.ID, &item.UserID, &item.ProductID, &item.Quantity, &item.CreatedAt)
	return item, err
}
