package repository

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/xenking/shopline/internal/domain/coupon"
	"github.com/xenking/shopline/internal/domain/order"
)

const (
	createOrderSQL = `INSERT INTO orders
		(id, user_id, status, total_amount, shipping_address, shipping_cost, discount_amount, coupon_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`

	createOrderItemSQL = `INSERT INTO order_items (id, order_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4, $5)`

	// Compare-and-increment: the max_uses guard makes concurrent checkouts
	// against the same coupon lose the race cleanly instead of oversubscribing.
	redeemCouponSQL = `UPDATE coupons SET current_uses = current_uses + 1
		WHERE UPPER(code) = UPPER($1)
		AND (max_uses IS NULL OR current_uses < max_uses)`

	clearUserCartSQL = `DELETE FROM cart_items WHERE user_id = $1`

	orderColumns = `id, user_id, status, total_amount, shipping_address,
		shipping_cost, discount_amount, coupon_code, created_at`

	getOrderByIDSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	listOrdersByUserSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	listOrderItemsSQL = `SELECT id, order_id, product_id, quantity, price
		FROM order_items WHERE order_id = ANY($1) ORDER BY id`

	updateOrderStatusSQL = `UPDATE orders SET status = $2 WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	db DB
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(db DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// CreateCheckout commits the order with its items, the optional coupon
// redemption, and the cart deletion in one transaction. A mid-flight failure
// rolls everything back: no order without a drained cart and vice versa.
func (r *OrderRepository) CreateCheckout(ctx context.Context, co order.Checkout) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin checkout transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	o := co.Order
	err = tx.QueryRow(ctx, createOrderSQL,
		o.ID, o.UserID, string(o.Status), o.TotalAmount,
		o.ShippingAddress, o.ShippingCost, o.DiscountAmount, o.CouponCode,
	).Scan(&o.CreatedAt)
	if err != nil {
		return errors.Wrapf(err, "creating order %q", o.ID)
	}

	for _, item := range o.Items {
		_, err = tx.Exec(ctx, createOrderItemSQL,
			item.ID, item.OrderID, item.ProductID, item.Quantity, item.Price,
		)
		if err != nil {
			return errors.Wrapf(err, "creating order item for product %q", item.ProductID)
		}
	}

	if co.RedeemCouponCode != "" {
		tag, err := tx.Exec(ctx, redeemCouponSQL, co.RedeemCouponCode)
		if err != nil {
			return errors.Wrapf(err, "redeeming coupon %q", co.RedeemCouponCode)
		}
		if tag.RowsAffected() == 0 {
			return coupon.ErrExhausted
		}
	}

	if _, err := tx.Exec(ctx, clearUserCartSQL, co.ClearCartUserID); err != nil {
		return errors.Wrap(err, "clearing cart")
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "commit checkout transaction")
	}
	return nil
}

// GetByID returns an order with its items. Returns order.ErrNotFound when
// absent.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.db.Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "getting order %q", id)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting order %q", id)
	}

	if err := r.attachItems(ctx, []*order.Order{&o}); err != nil {
		return nil, err
	}
	return &o, nil
}

// ListByUser returns the user's orders with items, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string, offset, limit int) ([]order.Order, error) {
	rows, err := r.db.Query(ctx, listOrdersByUserSQL, userID, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "listing orders")
	}

	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, errors.Wrap(err, "listing orders")
	}
	if len(orders) == 0 {
		return orders, nil
	}

	refs := make([]*order.Order, len(orders))
	for i := range orders {
		refs[i] = &orders[i]
	}
	if err := r.attachItems(ctx, refs); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateStatus overwrites the status column. Transition rules are enforced
// by the order service.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status order.Status) error {
	tag, err := r.db.Exec(ctx, updateOrderStatusSQL, id, string(status))
	if err != nil {
		return errors.Wrapf(err, "updating status of order %q", id)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// attachItems loads order items for all given orders in a single query.
func (r *OrderRepository) attachItems(ctx context.Context, orders []*order.Order) error {
	ids := make([]string, len(orders))
	byID := make(map[string]*order.Order, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		byID[o.ID] = o
	}

	rows, err := r.db.Query(ctx, listOrderItemsSQL, ids)
	if err != nil {
		return errors.Wrap(err, "listing order items")
	}

	items, err := pgx.CollectRows(rows, scanOrderItem)
	if err != nil {
		return errors.Wrap(err, "listing order items")
	}

	for _, item := range items {
		if o, ok := byID[item.OrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o      order.Order
		status string
	)
	err := row.Scan(
		&o.ID, &o.UserID, &status, &o.TotalAmount, &o.ShippingAddress,
		&o.ShippingCost, &o.DiscountAmount, &o.CouponCode, &o.CreatedAt,
	)
	o.Status = order.Status(status)
	return o, err
}

func scanOrderItem(row pgx.CollectableRow) (order.Item, error) {
	var item order.Item
	err := row.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price)
	return item, err
}
