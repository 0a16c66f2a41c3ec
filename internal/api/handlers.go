package api

import (
	"context"
	"log"
	"net/http"

	"github.com/SigNoz/store-api-go/internal/metrics"
	"github.com/SigNoz/store-api-go/internal/middleware"
	"github.com/SigNoz/store-api-go/internal/models"
	"github.com/SigNoz/store-api-go/pkg/config"
	"github.com/gorilla/mux"
)

// ProductStore is the catalog backend, implemented by services.ProductService
type ProductStore interface {
	List(ctx context.Context, q models.ProductQuery) (*models.ProductPage, error)
	Get(ctx context.Context, id int64) (*models.Product, error)
	Create(ctx context.Context, in models.ProductInput) (*models.Product, error)
	Update(ctx context.Context, id int64, patch models.ProductPatch) (*models.Product, error)
	Delete(ctx context.Context, id int64) error
}

// CartStore is the cart backend, implemented by services.CartService
type CartStore interface {
	CreateCart(ctx context.Context) (*models.Cart, error)
	ListCarts(ctx context.Context) ([]models.CartSummary, error)
	GetCart(ctx context.Context, id int64) (*models.CartSummary, error)
	AddItem(ctx context.Context, cartID, productID int64, quantity int) (*models.CartSummary, error)
	RemoveItem(ctx context.Context, cartID, productID int64) (*models.CartSummary, error)
	DeleteCart(ctx context.Context, id int64) error
}

// FavoriteStore is the favorites backend, implemented by services.FavoriteService
type FavoriteStore interface {
	List(ctx context.Context) ([]models.Product, error)
	Add(ctx context.Context, productID int64) (*models.Product, error)
	Remove(ctx context.Context, productID int64) error
}

// Pinger reports whether the database is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// App holds application dependencies
type App struct {
	config    *config.Config
	db        Pinger
	metrics   *metrics.AppMetrics
	products  ProductStore
	carts     CartStore
	favorites FavoriteStore
}

// NewApp creates a new application instance
func NewApp(
	cfg *config.Config,
	database Pinger,
	m *metrics.AppMetrics,
	ps ProductStore,
	cs CartStore,
	fs FavoriteStore,
) *App {
	return &App{
		config:    cfg,
		db:        database,
		metrics:   m,
		products:  ps,
		carts:     cs,
		favorites: fs,
	}
}

// Handler builds the router and wraps it in the request-wide middleware.
// CORS sits outside the router so preflight requests never reach route
// matching.
func (a *App) Handler() http.Handler {
	r := mux.NewRouter()
	a.SetupRoutes(r)

	var h http.Handler = r
	h = middleware.ErrorHandlerMiddleware(h)
	h = middleware.CORS(a.config.CORSAllowOrigins)(h)
	h = middleware.RequestIDMiddleware(h)
	return h
}

// SetupRoutes configures the HTTP routes
func (a *App) SetupRoutes(r *mux.Router) {
	r.Use(middleware.MetricsMiddleware(a.metrics))

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Detail: "Not Found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Detail: "Method Not Allowed"})
	})

	r.HandleFunc("/", a.RootHandler).Methods(http.MethodGet)
	r.HandleFunc("/health", a.HealthHandler).Methods(http.MethodGet)

	// Products
	r.HandleFunc("/products", a.ListProductsHandler).Methods(http.MethodGet)
	r.HandleFunc("/products", a.CreateProductHandler).Methods(http.MethodPost)
	r.HandleFunc("/products/{id}", a.GetProductHandler).Methods(http.MethodGet)
	r.HandleFunc("/products/{id}", a.UpdateProductHandler).Methods(http.MethodPut)
	r.HandleFunc("/products/{id}", a.DeleteProductHandler).Methods(http.MethodDelete)

	// Carts
	r.HandleFunc("/carts", a.ListCartsHandler).Methods(http.MethodGet)
	r.HandleFunc("/carts", a.CreateCartHandler).Methods(http.MethodPost)
	r.HandleFunc("/carts/{id}", a.GetCartHandler).Methods(http.MethodGet)
	r.HandleFunc("/carts/{id}", a.DeleteCartHandler).Methods(http.MethodDelete)
	r.HandleFunc("/carts/{id}/items", a.AddCartItemHandler).Methods(http.MethodPost)
	r.HandleFunc("/carts/{id}/items/{productId}", a.RemoveCartItemHandler).Methods(http.MethodDelete)

	// Favorites
	r.HandleFunc("/favorites", a.ListFavoritesHandler).Methods(http.MethodGet)
	r.HandleFunc("/favorites/{productId}", a.AddFavoriteHandler).Methods(http.MethodPost)
	r.HandleFunc("/favorites/{productId}", a.RemoveFavoriteHandler).Methods(http.MethodDelete)
}

// RootHandler handles GET /
func (a *App) RootHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Store API",
		"version": a.config.OTELServiceVersion,
		"endpoints": map[string]string{
			"products":  "/products",
			"carts":     "/carts",
			"favorites": "/favorites",
		},
	})
}

// HealthHandler handles health check requests
func (a *App) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.db.PingContext(r.Context()); err != nil {
		log.Printf("Health check failed: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
