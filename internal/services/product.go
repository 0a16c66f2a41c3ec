package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SigNoz/store-api-go/internal/db"
	"github.com/SigNoz/store-api-go/internal/metrics"
	"github.com/SigNoz/store-api-go/internal/models"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const productColumns = `p.id, p.name, p.description, p.price, p.discount_percentage, p.rating, p.stock, p.brand, p.category, p.thumbnail, p.images`

// searchFilter matches the lower-cased query against every text column. The
// pattern is bound once per column.
const searchFilter = ` WHERE LOWER(p.name) LIKE ? ESCAPE '!'` +
	` OR LOWER(p.description) LIKE ? ESCAPE '!'` +
	` OR LOWER(p.brand) LIKE ? ESCAPE '!'` +
	` OR LOWER(p.category) LIKE ? ESCAPE '!'`

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// containsPattern turns q into a LIKE pattern for a literal substring match.
func containsPattern(q string) string {
	return "%" + likeEscaper.Replace(cases.Lower(language.Und).String(q)) + "%"
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (models.Product, error) {
	var p models.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.DiscountPercentage,
		&p.Rating, &p.Stock, &p.Brand, &p.Category, &p.Thumbnail, &p.Images,
	)
	return p, err
}

// ProductService handles product-related operations
type ProductService struct {
	db      *db.DB
	metrics *metrics.AppMetrics
}

// NewProductService creates a new product service
func NewProductService(db *db.DB, metrics *metrics.AppMetrics) *ProductService {
	return &ProductService{
		db:      db,
		metrics: metrics,
	}
}

// List returns one page of products, optionally filtered by a
// case-insensitive substring of name, description, brand or category.
func (s *ProductService) List(ctx context.Context, q models.ProductQuery) (*models.ProductPage, error) {
	if err := models.Validate(q); err != nil {
		return nil, err
	}

	where := ""
	var args []any
	if q.Q != "" {
		pattern := containsPattern(q.Q)
		where = searchFilter
		args = []any{pattern, pattern, pattern, pattern}
	}

	page := &models.ProductPage{
		Page:     q.Page,
		Limit:    q.Limit,
		Products: []models.Product{},
	}

	err := s.db.WithTx(ctx, db.ReadOnly, func(tx db.Querier) error {
		start := time.Now()
		countQuery := `SELECT COUNT(*) FROM products p` + where
		err := tx.QueryRowContext(ctx, countQuery, args...).Scan(&page.Total)
		s.metrics.RecordDBQuery(ctx, "SELECT", "products", countQuery, start, err == nil)
		if err != nil {
			return fmt.Errorf("failed to count products: %w", err)
		}
		if q.Beyond(page.Total) {
			return nil
		}

		start = time.Now()
		listQuery := `SELECT ` + productColumns + ` FROM products p` + where + ` ORDER BY p.id LIMIT ? OFFSET ?`
		rows, err := tx.QueryContext(ctx, listQuery, append(args, q.Limit, q.Offset())...)
		s.metrics.RecordDBQuery(ctx, "SELECT", "products", listQuery, start, err == nil)
		if err != nil {
			return fmt.Errorf("failed to query products: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			p, err := scanProduct(rows)
			if err != nil {
				return fmt.Errorf("failed to scan product: %w", err)
			}
			page.Products = append(page.Products, p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	page.Pages = models.PageCount(page.Total, page.Limit)
	return page, nil
}

// Get returns a product by ID
func (s *ProductService) Get(ctx context.Context, id int64) (*models.Product, error) {
	var p *models.Product
	err := s.db.WithTx(ctx, db.ReadOnly, func(tx db.Querier) error {
		var err error
		p, err = getProduct(ctx, tx, s.metrics, id, "")
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Inc(ctx, s.metrics.ProductsViewed, 1,
		attribute.Int64("product_id", id),
		attribute.String("product_category", deref(p.Category)),
	)
	return p, nil
}

// Create validates and stores a new product
func (s *ProductService) Create(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	if err := models.Validate(in); err != nil {
		return nil, err
	}

	var p *models.Product
	err := s.db.WithTx(ctx, db.ReadWrite, func(tx db.Querier) error {
		start := time.Now()
		query := `INSERT INTO products (name, description, price, discount_percentage, rating, stock, brand, category, thumbnail, images)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		result, err := tx.ExecContext(ctx, query,
			in.Name, in.Description, in.Price, in.DiscountPercentage, in.Rating,
			in.Stock, in.Brand, in.Category, in.Thumbnail, in.Images,
		)
		s.metrics.RecordDBQuery(ctx, "INSERT", "products", query, start, err == nil)
		if err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get product ID: %w", err)
		}

		p, err = getProduct(ctx, tx, s.metrics, id, "")
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Inc(ctx, s.metrics.ProductsCreated, 1, attribute.String("product_category", deref(p.Category)))
	return p, nil
}

// Update applies a partial update; fields absent from patch keep their value.
func (s *ProductService) Update(ctx context.Context, id int64, patch models.ProductPatch) (*models.Product, error) {
	if err := models.Validate(patch); err != nil {
		return nil, err
	}

	var p *models.Product
	err := s.db.WithTx(ctx, db.ReadWrite, func(tx db.Querier) error {
		var err error
		p, err = getProduct(ctx, tx, s.metrics, id, " FOR UPDATE")
		if err != nil || patch.Empty() {
			return err
		}

		sets, args := patchAssignments(patch)
		start := time.Now()
		query := `UPDATE products SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
		_, err = tx.ExecContext(ctx, query, append(args, id)...)
		s.metrics.RecordDBQuery(ctx, "UPDATE", "products", query, start, err == nil)
		if err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}

		p, err = getProduct(ctx, tx, s.metrics, id, "")
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a product. Cart items and the favorite row referencing it
// go with it through ON DELETE CASCADE.
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	err := s.db.WithTx(ctx, db.ReadWrite, func(tx db.Querier) error {
		start := time.Now()
		query := `DELETE FROM products WHERE id = ?`
		result, err := tx.ExecContext(ctx, query, id)
		s.metrics.RecordDBQuery(ctx, "DELETE", "products", query, start, err == nil)
		if err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}
		if affected == 0 {
			return NotFound("Product")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.metrics.Inc(ctx, s.metrics.ProductsDeleted, 1)
	return nil
}

// getProduct loads one product inside tx. lock is appended verbatim, e.g.
// " FOR UPDATE".
func getProduct(ctx context.Context, tx db.Querier, m *metrics.AppMetrics, id int64, lock string) (*models.Product, error) {
	start := time.Now()
	query := `SELECT ` + productColumns + ` FROM products p WHERE p.id = ?` + lock
	p, err := scanProduct(tx.QueryRowContext(ctx, query, id))
	m.RecordDBQuery(ctx, "SELECT", "products", query, start, queryOK(err))

	if errors.Is(err, sql.ErrNoRows) {
		return nil, NotFound("Product")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &p, nil
}

func patchAssignments(patch models.ProductPatch) ([]string, []any) {
	var (
		sets []string
		args []any
	)
	add := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Price != nil {
		add("price", *patch.Price)
	}
	if patch.DiscountPercentage != nil {
		add("discount_percentage", *patch.DiscountPercentage)
	}
	if patch.Rating != nil {
		add("rating", *patch.Rating)
	}
	if patch.Stock != nil {
		add("stock", *patch.Stock)
	}
	if patch.Brand != nil {
		add("brand", *patch.Brand)
	}
	if patch.Category != nil {
		add("category", *patch.Category)
	}
	if patch.Thumbnail != nil {
		add("thumbnail", *patch.Thumbnail)
	}
	if patch.Images != nil {
		add("images", *patch.Images)
	}
	return sets, args
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
