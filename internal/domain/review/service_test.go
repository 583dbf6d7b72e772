package review

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/shopline/internal/domain/product"
	"github.com/xenking/shopline/internal/domain/user"
)

type mockReviewRepo struct {
	byID      map[string]*Review
	byProduct map[string][]Review
	createErr error
	deleted   []string
}

func (m *mockReviewRepo) Create(_ context.Context, r *Review) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.byID == nil {
		m.byID = make(map[string]*Review)
	}
	m.byID[r.ID] = r
	return nil
}

func (m *mockReviewRepo) GetByID(_ context.Context, id string) (*Review, error) {
	r, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r, nil
}

func (m *mockReviewRepo) ListByProduct(_ context.Context, productID string) ([]Review, error) {
	return m.byProduct[productID], nil
}

func (m *mockReviewRepo) Update(_ context.Context, id string, rating int, comment string) error {
	r, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	r.Rating = rating
	r.Comment = comment
	return nil
}

func (m *mockReviewRepo) Delete(_ context.Context, id string) error {
	delete(m.byID, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockProductRepo struct {
	byID map[string]*product.Product
}

func (m *mockProductRepo) Create(context.Context, *product.Product) error { return nil }

func (m *mockProductRepo) List(context.Context, product.Filter) ([]product.Product, error) {
	return nil, nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id string) (*product.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return p, nil
}

func (m *mockProductRepo) GetByIDs(context.Context, []string) ([]product.Product, error) {
	return nil, nil
}

func (m *mockProductRepo) Update(context.Context, string, product.Update) (*product.Product, error) {
	return nil, nil
}

func (m *mockProductRepo) Delete(context.Context, string) error { return nil }

func newTestService() (*Service, *mockReviewRepo) {
	reviews := &mockReviewRepo{byID: make(map[string]*Review)}
	products := &mockProductRepo{byID: map[string]*product.Product{
		"p1": {ID: "p1", Name: "Widget"},
	}}
	return NewService(reviews, products), reviews
}

func ident(userID string) user.Identity {
	return user.Identity{UserID: userID}
}

func TestCreate(t *testing.T) {
	svc, repo := newTestService()

	r, err := svc.Create(context.Background(), ident("u1"), "p1", 4, "solid")
	require.NoError(t, err)
	require.NotEmpty(t, r.ID)
	assert.Equal(t, "p1", r.ProductID)
	assert.Equal(t, "u1", r.UserID)
	assert.Equal(t, 4, r.Rating)
	assert.Contains(t, repo.byID, r.ID)
}

func TestCreateRatingOutOfRange(t *testing.T) {
	svc, _ := newTestService()

	for _, rating := range []int{0, 6, -1} {
		_, err := svc.Create(context.Background(), ident("u1"), "p1", rating, "")
		require.ErrorIs(t, err, ErrInvalidRating)
	}
}

func TestCreateUnknownProduct(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), ident("u1"), "missing", 5, "")
	require.ErrorIs(t, err, product.ErrNotFound)
}

func TestCreateDuplicate(t *testing.T) {
	svc, repo := newTestService()
	repo.createErr = ErrDuplicate

	_, err := svc.Create(context.Background(), ident("u1"), "p1", 5, "")
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestListByProductUnknownProduct(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.ListByProduct(context.Background(), "missing")
	require.ErrorIs(t, err, product.ErrNotFound)
}

func TestUpdateOwnReview(t *testing.T) {
	svc, repo := newTestService()
	repo.byID["r1"] = &Review{ID: "r1", ProductID: "p1", UserID: "u1", Rating: 2}

	r, err := svc.Update(context.Background(), ident("u1"), "r1", 5, "changed my mind")
	require.NoError(t, err)
	assert.Equal(t, 5, r.Rating)
	assert.Equal(t, "changed my mind", r.Comment)
	assert.Equal(t, 5, repo.byID["r1"].Rating)
}

func TestUpdateForeignReview(t *testing.T) {
	svc, repo := newTestService()
	repo.byID["r1"] = &Review{ID: "r1", ProductID: "p1", UserID: "u1", Rating: 2}

	_, err := svc.Update(context.Background(), ident("u2"), "r1", 5, "")
	require.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, 2, repo.byID["r1"].Rating)
}

func TestUpdateMissingReview(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Update(context.Background(), ident("u1"), "missing", 5, "")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteOwnReview(t *testing.T) {
	svc, repo := newTestService()
	repo.byID["r1"] = &Review{ID: "r1", ProductID: "p1", UserID: "u1", Rating: 2}

	err := svc.Delete(context.Background(), ident("u1"), "r1")
	require.NoError(t, err)
	assert.NotContains(t, repo.byID, "r1")
}

func TestDeleteForeignReview(t *testing.T) {
	svc, repo := newTestService()
	repo.byID["r1"] = &Review{ID: "r1", ProductID: "p1", UserID: "u1", Rating: 2}

	err := svc.Delete(context.Background(), ident("u2"), "r1")
	require.ErrorIs(t, err, ErrForbidden)
	assert.Empty(t, repo.deleted)
}

func TestRepoErrorWrapped(t *testing.T) {
	svc, repo := newTestService()
	repo.createErr = errors.New("connection reset")

	_, err := svc.Create(context.Background(), ident("u1"), "p1", 3, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create review")
}
