package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/SigNoz/store-api-go/internal/db"
	"github.com/SigNoz/store-api-go/internal/metrics"
	"github.com/SigNoz/store-api-go/internal/models"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// cartLinesQuery fetches line items with their product price in one round
// trip. The LEFT JOIN keeps a line whose product is gone; it then counts as 0.
const cartLinesQuery = `SELECT ci.cart_id, ci.product_id, ci.quantity, p.price
		FROM cart_items ci
		LEFT JOIN products p ON p.id = ci.product_id`

// CartService handles cart-related operations
type CartService struct {
	db      *db.DB
	metrics *metrics.AppMetrics
}

// NewCartService creates a new cart service
func NewCartService(db *db.DB, metrics *metrics.AppMetrics) *CartService {
	return &CartService{
		db:      db,
		metrics: metrics,
	}
}

// CreateCart creates an empty cart
func (s *CartService) CreateCart(ctx context.Context) (*models.Cart, error) {
	var id int64
	err := s.db.WithTx(ctx, db.ReadWrite, func(tx db.Querier) error {
		start := time.Now()
		query := `INSERT INTO carts () VALUES ()`
		result, err := tx.ExecContext(ctx, query)
		s.metrics.RecordDBQuery(ctx, "INSERT", "carts", query, start, err == nil)
		if err != nil {
			return fmt.Errorf("failed to create cart: %w", err)
		}

		id, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get cart ID: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Inc(ctx, s.metrics.CartsCreated, 1)
	return &models.Cart{ID: id, Items: []models.CartItem{}}, nil
}

// ListCarts returns every cart with its total
func (s *CartService) ListCarts(ctx context.Context) ([]models.CartSummary, error) {
	var summaries []models.CartSummary
	err := s.db.WithTx(ctx, db.ReadOnly, func(tx db.Querier) error {
		start := time.Now()
		query := `SELECT id FROM carts ORDER BY id`
		rows, err := tx.QueryContext(ctx, query)
		s.metrics.RecordDBQuery(ctx, "SELECT", "carts", query, start, err == nil)
		if err != nil {
			return fmt.Errorf("failed to list carts: %w", err)
		}

		var ids []int64
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan cart: %w", err)
			}
			ids = append(ids, id)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("failed to list carts: %w", err)
		}

		lines, err := s.loadLines(ctx, tx, cartLinesQuery+` ORDER BY ci.cart_id, ci.id`)
		if err != nil {
			return err
		}

		byCart := make(map[int64][]models.CartLine, len(ids))
		for _, line := range lines {
			byCart[line.CartID] = append(byCart[line.CartID], line)
		}

		summaries = make([]models.CartSummary, 0, len(ids))
		for _, id := range ids {
			summaries = append(summaries, *summarize(id, byCart[id]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

// GetCart returns the cart summary
func (s *CartService) GetCart(ctx context.Context, id int64) (*models.CartSummary, error) {
	var summary *models.CartSummary
	err := s.db.WithTx(ctx, db.ReadOnly, func(tx db.Querier) error {
		if err := s.lockCart(ctx, tx, id, ""); err != nil {
			return err
		}
		var err error
		summary, err = s.cartSummary(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// AddItem adds quantity of a product to a cart. A product already in the
// cart has its quantity incremented; the (cart, product) unique key makes
// the increment atomic under concurrent adds.
func (s *CartService) AddItem(ctx context.Context, cartID, productID int64, quantity int) (*models.CartSummary, error) {
	if quantity < 1 {
		return nil, models.NewValidationError("quantity", "must be greater than or equal to 1")
	}
	if quantity > models.MaxQuantity {
		return nil, quantityTooLarge()
	}

	var summary *models.CartSummary
	err := s.db.WithTx(ctx, db.ReadWrite, func(tx db.Querier) error {
		if err := s.lockCart(ctx, tx, cartID, " FOR UPDATE"); err != nil {
			return err
		}
		if _, err := getProduct(ctx, tx, s.metrics, productID, " FOR SHARE"); err != nil {
			return err
		}

		start := time.Now()
		query := `INSERT INTO cart_items (cart_id, product_id, quantity) VALUES (?, ?, ?)
			ON DUPLICATE KEY UPDATE quantity = quantity + VALUES(quantity)`
		_, err := tx.ExecContext(ctx, query, cartID, productID, quantity)
		s.metrics.RecordDBQuery(ctx, "INSERT", "cart_items", query, start, err == nil)
		if db.IsForeignKeyViolation(err) {
			return NotFound("Product")
		}
		if db.IsOutOfRange(err) {
			return quantityTooLarge()
		}
		if err != nil {
			return fmt.Errorf("failed to add item to cart: %w", err)
		}

		summary, err = s.cartSummary(ctx, tx, cartID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Inc(ctx, s.metrics.CartItemsAdded, int64(quantity), attribute.Int64("product_id", productID))
	s.metrics.CartTotalValue.Record(ctx, summary.Total, metric.WithAttributes(s.metrics.WithServiceName(nil)...))
	return summary, nil
}

// RemoveItem deletes the line item for productID. Removing a product that is
// not in the cart is not an error.
func (s *CartService) RemoveItem(ctx context.Context, cartID, productID int64) (*models.CartSummary, error) {
	var summary *models.CartSummary
	err := s.db.WithTx(ctx, db.ReadWrite, func(tx db.Querier) error {
		if err := s.lockCart(ctx, tx, cartID, " FOR UPDATE"); err != nil {
			return err
		}

		start := time.Now()
		query := `DELETE FROM cart_items WHERE cart_id = ? AND product_id = ?`
		_, err := tx.ExecContext(ctx, query, cartID, productID)
		s.metrics.RecordDBQuery(ctx, "DELETE", "cart_items", query, start, err == nil)
		if err != nil {
			return fmt.Errorf("failed to remove item from cart: %w", err)
		}

		summary, err = s.cartSummary(ctx, tx, cartID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.CartTotalValue.Record(ctx, summary.Total, metric.WithAttributes(s.metrics.WithServiceName(nil)...))
	return summary, nil
}

// DeleteCart deletes a cart and, through ON DELETE CASCADE, its line items
func (s *CartService) DeleteCart(ctx context.Context, id int64) error {
	return s.db.WithTx(ctx, db.ReadWrite, func(tx db.Querier) error {
		start := time.Now()
		query := `DELETE FROM carts WHERE id = ?`
		result, err := tx.ExecContext(ctx, query, id)
		s.metrics.RecordDBQuery(ctx, "DELETE", "carts", query, start, err == nil)
		if err != nil {
			return fmt.Errorf("failed to delete cart: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}
		if affected == 0 {
			return NotFound("Cart")
		}
		return nil
	})
}

// lockCart checks that the cart exists. With lock " FOR UPDATE" concurrent
// mutations of the same cart are serialized until the transaction ends.
func (s *CartService) lockCart(ctx context.Context, tx db.Querier, id int64, lock string) error {
	start := time.Now()
	query := `SELECT id FROM carts WHERE id = ?` + lock
	var found int64
	err := tx.QueryRowContext(ctx, query, id).Scan(&found)
	s.metrics.RecordDBQuery(ctx, "SELECT", "carts", query, start, queryOK(err))

	if errors.Is(err, sql.ErrNoRows) {
		return NotFound("Cart")
	}
	if err != nil {
		return fmt.Errorf("failed to get cart: %w", err)
	}
	return nil
}

func (s *CartService) cartSummary(ctx context.Context, tx db.Querier, cartID int64) (*models.CartSummary, error) {
	lines, err := s.loadLines(ctx, tx, cartLinesQuery+` WHERE ci.cart_id = ? ORDER BY ci.id`, cartID)
	if err != nil {
		return nil, err
	}
	return summarize(cartID, lines), nil
}

func (s *CartService) loadLines(ctx context.Context, tx db.Querier, query string, args ...any) ([]models.CartLine, error) {
	start := time.Now()
	rows, err := tx.QueryContext(ctx, query, args...)
	s.metrics.RecordDBQuery(ctx, "SELECT", "cart_items", query, start, err == nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart items: %w", err)
	}
	defer rows.Close()

	var lines []models.CartLine
	for rows.Next() {
		var line models.CartLine
		if err := rows.Scan(&line.CartID, &line.ProductID, &line.Quantity, &line.Price); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// quantityTooLarge is returned when a line would hold more than the
// quantity column can store, including after merging with an existing line.
func quantityTooLarge() error {
	return models.NewValidationError("quantity", fmt.Sprintf("must be less than or equal to %d", models.MaxQuantity))
}
