package services

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/SigNoz/store-api-go/internal/metrics"
	"github.com/SigNoz/store-api-go/internal/models"
	"github.com/go-sql-driver/mysql"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const addFavoriteSQL = "INSERT INTO favorites (product_id) VALUES (?) ON DUPLICATE KEY UPDATE product_id = product_id"

func TestFavoriteService_List(t *testing.T) {
	database, mock := newMockDB(t)
	svc := NewFavoriteService(database, metrics.NewNoop())
	p1, p2 := randomProduct(5), randomProduct(2)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM favorites f JOIN products p ON p.id = f.product_id ORDER BY f.id")).
		WillReturnRows(productRows(p1, p2))
	mock.ExpectCommit()

	got, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff([]models.Product{p1, p2}, got))
}

func TestFavoriteService_ListEmpty(t *testing.T) {
	database, mock := newMockDB(t)
	svc := NewFavoriteService(database, metrics.NewNoop())

	mock.ExpectBegin()
	mock.ExpectQuery("FROM favorites").WillReturnRows(sqlmock.NewRows(productCols))
	mock.ExpectCommit()

	got, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFavoriteService_Add(t *testing.T) {
	ctx := context.Background()

	for _, tc := range []struct {
		name     string
		affected int64
	}{
		{name: "first add", affected: 1},
		{name: "repeat add is idempotent", affected: 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			database, mock := newMockDB(t)
			svc := NewFavoriteService(database, metrics.NewNoop())
			p := randomProduct(3)

			mock.ExpectBegin()
			mock.ExpectQuery(regexp.QuoteMeta(shareProdSQL)).WithArgs(int64(3)).
				WillReturnRows(productRows(p))
			mock.ExpectExec(regexp.QuoteMeta(addFavoriteSQL)).WithArgs(int64(3)).
				WillReturnResult(sqlmock.NewResult(1, tc.affected))
			mock.ExpectCommit()

			got, err := svc.Add(ctx, 3)
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(p, *got))
		})
	}

	t.Run("missing product", func(t *testing.T) {
		database, mock := newMockDB(t)
		svc := NewFavoriteService(database, metrics.NewNoop())

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(shareProdSQL)).
			WillReturnRows(sqlmock.NewRows(productCols))
		mock.ExpectRollback()

		_, err := svc.Add(ctx, 404)
		require.ErrorIs(t, err, ErrNotFound)
		assert.EqualError(t, err, "Product not found")
	})

	t.Run("foreign key violation", func(t *testing.T) {
		database, mock := newMockDB(t)
		svc := NewFavoriteService(database, metrics.NewNoop())

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(shareProdSQL)).
			WillReturnRows(productRows(randomProduct(3)))
		mock.ExpectExec(regexp.QuoteMeta(addFavoriteSQL)).
			WillReturnError(&mysql.MySQLError{Number: 1452})
		mock.ExpectRollback()

		_, err := svc.Add(ctx, 3)
		assert.EqualError(t, err, "Product not found")
	})
}

func TestFavoriteService_Remove(t *testing.T) {
	ctx := context.Background()

	t.Run("ok", func(t *testing.T) {
		database, mock := newMockDB(t)
		svc := NewFavoriteService(database, metrics.NewNoop())

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM favorites WHERE product_id = ?")).WithArgs(int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, svc.Remove(ctx, 3))
	})

	t.Run("not a favorite", func(t *testing.T) {
		database, mock := newMockDB(t)
		svc := NewFavoriteService(database, metrics.NewNoop())

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM favorites WHERE product_id = ?")).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := svc.Remove(ctx, 3)
		require.ErrorIs(t, err, ErrNotFound)
		assert.EqualError(t, err, "Favorite not found")
	})
}
