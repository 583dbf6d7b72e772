package repository

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/xenking/shopline/internal/domain/category"
)

const (
	createCategorySQL = `INSERT INTO categories (id, name, description)
		VALUES ($1, $2, $3)
		RETURNING created_at`

	listCategoriesSQL = `SELECT id, name, description, created_at
		FROM categories ORDER BY name`

	getCategoryByIDSQL = `SELECT id, name, description, created_at
		FROM categories WHERE id = $1`
)

var _ category.Repository = (*CategoryRepository)(nil)

// CategoryRepository implements category.Repository backed by PostgreSQL.
type CategoryRepository struct {
	db DB
}

// NewCategoryRepository returns a CategoryRepository that uses the given pool.
func NewCategoryRepository(db DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create persists a new category. Returns category.ErrDuplicateName when the
// name is already taken.
func (r *CategoryRepository) Create(ctx context.Context, c *category.Category) error {
	err := r.db.QueryRow(ctx, createCategorySQL, c.ID, c.Name, c.Description).Scan(&c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return category.ErrDuplicateName
		}
		return errors.Wrapf(err, "creating category %q", c.Name)
	}
	return nil
}

// List returns all categories ordered by name.
func (r *CategoryRepository) List(ctx context.Context) ([]category.Category, error) {
	rows, err := r.db.Query(ctx, listCategoriesSQL)
	if err != nil {
		return nil, errors.Wrap(err, "listing categories")
	}
	return pgx.CollectRows(rows, scanCategory)
}

// GetByID returns a single category. Returns category.ErrNotFound when
// absent.
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*category.Category, error) {
	rows, err := r.db.Query(ctx, getCategoryByIDSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "getting category %q", id)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCategory)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, category.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting category %q", id)
	}
	return &c, nil
}

func scanCategory(row pgx.CollectableRow) (category.Category, error) {
	var c category.Category
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt)
	return c, err
}
