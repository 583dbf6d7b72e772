package repository

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/xenking/shopline/internal/domain/coupon"
)

const (
	couponColumns = `id, code, discount_percentage, discount_amount, is_active,
		max_uses, current_uses, expiry_date, created_at`

	createCouponSQL = `INSERT INTO coupons
		(id, code, discount_percentage, discount_amount, is_active, max_uses, expiry_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	getCouponByCodeSQL = `SELECT ` + couponColumns + `
		FROM coupons WHERE UPPER(code) = UPPER($1)`

	getCouponByIDSQL = `SELECT ` + couponColumns + `
		FROM coupons WHERE id = $1`
)

var _ coupon.Repository = (*CouponRepository)(nil)

// CouponRepository implements coupon.Repository backed by PostgreSQL.
type CouponRepository struct {
	db DB
}

// NewCouponRepository returns a CouponRepository that uses the given pool.
func NewCouponRepository(db DB) *CouponRepository {
	return &CouponRepository{db: db}
}

// Create persists a new coupon. Returns coupon.ErrDuplicateCode when the
// code is already taken.
func (r *CouponRepository) Create(ctx context.Context, c *coupon.Coupon) error {
	var maxUses *int
	if c.MaxUses > 0 {
		maxUses = &c.MaxUses
	}

	err := r.db.QueryRow(ctx, createCouponSQL,
		c.ID, c.Code, c.Percentage, c.Amount, c.IsActive, maxUses, c.ExpiresAt,
	).Scan(&c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return coupon.ErrDuplicateCode
		}
		return errors.Wrapf(err, "creating coupon %q", c.Code)
	}
	return nil
}

// FindByCode looks up a coupon by its code (case-insensitive). Returns
// coupon.ErrNotFound when no such code exists.
func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	return r.getOne(ctx, getCouponByCodeSQL, code)
}

// GetByID returns a coupon by id. Returns coupon.ErrNotFound when absent.
func (r *CouponRepository) GetByID(ctx context.Context, id string) (*coupon.Coupon, error) {
	return r.getOne(ctx, getCouponByIDSQL, id)
}

func (r *CouponRepository) getOne(ctx context.Context, query, arg string) (*coupon.Coupon, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, errors.Wrap(err, "querying coupon")
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCoupon)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, coupon.ErrNotFound
		}
		return nil, errors.Wrap(err, "querying coupon")
	}
	return &c, nil
}

func scanCoupon(row pgx.CollectableRow) (coupon.Coupon, error) {
	var (
		c          coupon.Coupon
		percentage *decimal.Decimal
		amount     *decimal.Decimal
		maxUses    *int32
		expiresAt  *time.Time
	)
	err := row.Scan(
		&c.ID, &c.Code, &percentage, &amount, &c.IsActive,
		&maxUses, &c.Uses, &expiresAt, &c.CreatedAt,
	)
	c.Percentage = percentage
	c.Amount = amount
	if maxUses != nil {
		c.MaxUses = int(*maxUses)
	}
	c.ExpiresAt = expiresAt
	return c, err
}
