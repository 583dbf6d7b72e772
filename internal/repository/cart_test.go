package repository

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/shopline/internal/domain/cart"
)

func cartRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "user_id", "product_id", "quantity", "created_at"})
}

func TestCartUpsert_ReturnsStoredRow(t *testing.T) {
	mock := newMock(t)
	repo := NewCartRepository(mock)

	// The conflict branch keeps the original row id and merges quantities.
	mock.ExpectQuery("INSERT INTO cart_items").
		WithArgs("new-id", "u1", "p1", 2).
		WillReturnRows(cartRows().AddRow("existing-id", "u1", "p1", 5, time.Now()))

	stored, err := repo.Upsert(context.Background(), &cart.LineItem{
		ID: "new-id", UserID: "u1", ProductID: "p1", Quantity: 2,
	})

	require.NoError(t, err)
	assert.Equal(t, "existing-id", stored.ID)
	assert.Equal(t, 5, stored.Quantity)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCartGetItem_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewCartRepository(mock)

	mock.ExpectQuery("SELECT (.+) FROM cart_items WHERE id").
		WithArgs("ghost").
		WillReturnRows(cartRows())

	_, err := repo.GetItem(context.Background(), "ghost")

	require.ErrorIs(t, err, cart.ErrItemNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCartUpdateQuantity_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewCartRepository(mock)

	mock.ExpectExec("UPDATE cart_items SET quantity").
		WithArgs("ghost", 3).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.UpdateQuantity(context.Background(), "ghost", 3)

	require.ErrorIs(t, err, cart.ErrItemNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCartDelete_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewCartRepository(mock)

	mock.ExpectExec("DELETE FROM cart_items WHERE id").
		WithArgs("ghost").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), "ghost")

	require.ErrorIs(t, err, cart.ErrItemNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
