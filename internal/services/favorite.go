package services

import (
	"context"
	"fmt"
	"time"

	"github.com/SigNoz/store-api-go/internal/db"
	"github.com/SigNoz/store-api-go/internal/metrics"
	"github.com/SigNoz/store-api-go/internal/models"
	"go.opentelemetry.io/otel/attribute"
)

// FavoriteService handles favorite products
type FavoriteService struct {
	db      *db.DB
	metrics *metrics.AppMetrics
}

// NewFavoriteService creates a new favorite service
func NewFavoriteService(db *db.DB, metrics *metrics.AppMetrics) *FavoriteService {
	return &FavoriteService{
		db:      db,
		metrics: metrics,
	}
}

// List returns favorited products in the order they were added
func (s *FavoriteService) List(ctx context.Context) ([]models.Product, error) {
	products := []models.Product{}
	err := s.db.WithTx(ctx, db.ReadOnly, func(tx db.Querier) error {
		start := time.Now()
		query := `SELECT ` + productColumns + ` FROM favorites f JOIN products p ON p.id = f.product_id ORDER BY f.id`
		rows, err := tx.QueryContext(ctx, query)
		s.metrics.RecordDBQuery(ctx, "SELECT", "favorites", query, start, err == nil)
		if err != nil {
			return fmt.Errorf("failed to list favorites: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			p, err := scanProduct(rows)
			if err != nil {
				return fmt.Errorf("failed to scan favorite: %w", err)
			}
			products = append(products, p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return products, nil
}

// Add marks a product as favorite. Adding it again is a no-op.
func (s *FavoriteService) Add(ctx context.Context, productID int64) (*models.Product, error) {
	var (
		p       *models.Product
		created bool
	)
	err := s.db.WithTx(ctx, db.ReadWrite, func(tx db.Querier) error {
		var err error
		p, err = getProduct(ctx, tx, s.metrics, productID, " FOR SHARE")
		if err != nil {
			return err
		}

		// MySQL reports 1 affected row for an insert and 0 for an unchanged duplicate
		start := time.Now()
		query := `INSERT INTO favorites (product_id) VALUES (?) ON DUPLICATE KEY UPDATE product_id = product_id`
		result, err := tx.ExecContext(ctx, query, productID)
		s.metrics.RecordDBQuery(ctx, "INSERT", "favorites", query, start, err == nil)
		if db.IsForeignKeyViolation(err) {
			return NotFound("Product")
		}
		if err != nil {
			return fmt.Errorf("failed to add favorite: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}
		created = affected == 1
		return nil
	})
	if err != nil {
		return nil, err
	}

	if created {
		s.metrics.Inc(ctx, s.metrics.FavoritesAdded, 1, attribute.Int64("product_id", productID))
	}
	return p, nil
}

// Remove deletes the favorite row for productID
func (s *FavoriteService) Remove(ctx context.Context, productID int64) error {
	return s.db.WithTx(ctx, db.ReadWrite, func(tx db.Querier) error {
		start := time.Now()
		query := `DELETE FROM favorites WHERE product_id = ?`
		result, err := tx.ExecContext(ctx, query, productID)
		s.metrics.RecordDBQuery(ctx, "DELETE", "favorites", query, start, err == nil)
		if err != nil {
			return fmt.Errorf("failed to remove favorite: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}
		if affected == 0 {
			return NotFound("Favorite")
		}
		return nil
	})
}
