package services

import (
	"database/sql/driver"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/SigNoz/store-api-go/internal/db"
	"github.com/SigNoz/store-api-go/internal/models"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/require"
)

var productCols = []string{
	"id", "name", "description", "price", "discount_percentage",
	"rating", "stock", "brand", "category", "thumbnail", "images",
}

func newMockDB(t *testing.T) (*db.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		conn.Close()
	})
	return db.Wrap(conn), mock
}

func ptr[T any](v T) *T { return &v }

func nullable[T any](v *T) driver.Value {
	if v == nil {
		return nil
	}
	return *v
}

func productRows(products ...models.Product) *sqlmock.Rows {
	rows := sqlmock.NewRows(productCols)
	for _, p := range products {
		var stock driver.Value
		if p.Stock != nil {
			stock = int64(*p.Stock)
		}
		rows.AddRow(
			p.ID, p.Name, nullable(p.Description), p.Price, nullable(p.DiscountPercentage),
			nullable(p.Rating), stock, nullable(p.Brand), nullable(p.Category),
			nullable(p.Thumbnail), nullable(p.Images),
		)
	}
	return rows
}

func randomProduct(id int64) models.Product {
	return models.Product{
		ID:                 id,
		Name:               gofakeit.ProductName(),
		Description:        ptr(gofakeit.ProductDescription()),
		Price:              gofakeit.Price(1, 100),
		DiscountPercentage: ptr(gofakeit.Float64Range(0, 30)),
		Rating:             ptr(gofakeit.Float64Range(1, 5)),
		Stock:              ptr(gofakeit.IntRange(0, 500)),
		Brand:              ptr(gofakeit.Company()),
		Category:           ptr(gofakeit.ProductCategory()),
		Thumbnail:          ptr(gofakeit.URL()),
		Images:             ptr(gofakeit.URL() + ", " + gofakeit.URL()),
	}
}
