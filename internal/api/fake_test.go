package api

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/SigNoz/store-api-go/internal/models"
	"github.com/SigNoz/store-api-go/internal/services"
)

// memStore is an in-memory backend with the same observable behavior as the
// MySQL services, including cascades.
type memStore struct {
	mu          sync.Mutex
	nextProduct int64
	nextCart    int64
	products    map[int64]models.Product
	carts       map[int64][]models.CartItem
	favorites   []int64
	err         error
}

func newMemStore() *memStore {
	return &memStore{
		products: map[int64]models.Product{},
		carts:    map[int64][]models.CartItem{},
	}
}

type fakeProducts struct{ *memStore }
type fakeCarts struct{ *memStore }
type fakeFavorites struct{ *memStore }

func (s fakeProducts) List(_ context.Context, q models.ProductQuery) (*models.ProductPage, error) {
	if err := models.Validate(q); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}

	needle := strings.ToLower(q.Q)
	var matched []models.Product
	for _, id := range s.sortedIDs() {
		p := s.products[id]
		if needle == "" || matches(p, needle) {
			matched = append(matched, p)
		}
	}

	page := &models.ProductPage{
		Page:     q.Page,
		Limit:    q.Limit,
		Total:    len(matched),
		Pages:    models.PageCount(len(matched), q.Limit),
		Products: []models.Product{},
	}
	if off := q.Offset(); !q.Beyond(len(matched)) && off < len(matched) {
		page.Products = append(page.Products, matched[off:min(off+q.Limit, len(matched))]...)
	}
	return page, nil
}

func matches(p models.Product, needle string) bool {
	for _, field := range []*string{&p.Name, p.Description, p.Brand, p.Category} {
		if field != nil && strings.Contains(strings.ToLower(*field), needle) {
			return true
		}
	}
	return false
}

func (s fakeProducts) Get(_ context.Context, id int64) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, services.NotFound("Product")
	}
	return &p, nil
}

func (s fakeProducts) Create(_ context.Context, in models.ProductInput) (*models.Product, error) {
	if err := models.Validate(in); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}

	s.nextProduct++
	p := models.Product{
		ID:                 s.nextProduct,
		Name:               in.Name,
		Description:        in.Description,
		Price:              in.Price,
		DiscountPercentage: in.DiscountPercentage,
		Rating:             in.Rating,
		Stock:              in.Stock,
		Brand:              in.Brand,
		Category:           in.Category,
		Thumbnail:          in.Thumbnail,
		Images:             in.Images,
	}
	s.products[p.ID] = p
	return &p, nil
}

func (s fakeProducts) Update(_ context.Context, id int64, patch models.ProductPatch) (*models.Product, error) {
	if err := models.Validate(patch); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, services.NotFound("Product")
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.DiscountPercentage != nil {
		p.DiscountPercentage = patch.DiscountPercentage
	}
	if patch.Rating != nil {
		p.Rating = patch.Rating
	}
	if patch.Stock != nil {
		p.Stock = patch.Stock
	}
	if patch.Brand != nil {
		p.Brand = patch.Brand
	}
	if patch.Category != nil {
		p.Category = patch.Category
	}
	if patch.Thumbnail != nil {
		p.Thumbnail = patch.Thumbnail
	}
	if patch.Images != nil {
		p.Images = patch.Images
	}
	s.products[id] = p
	return &p, nil
}

func (s fakeProducts) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return services.NotFound("Product")
	}
	delete(s.products, id)
	for cartID, items := range s.carts {
		s.carts[cartID] = slices.DeleteFunc(items, func(it models.CartItem) bool { return it.ProductID == id })
	}
	s.favorites = slices.DeleteFunc(s.favorites, func(pid int64) bool { return pid == id })
	return nil
}

func (s fakeCarts) CreateCart(context.Context) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextCart++
	s.carts[s.nextCart] = []models.CartItem{}
	return &models.Cart{ID: s.nextCart, Items: []models.CartItem{}}, nil
}

func (s fakeCarts) ListCarts(context.Context) ([]models.CartSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(s.carts))
	for id := range s.carts {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := []models.CartSummary{}
	for _, id := range ids {
		out = append(out, *s.summary(id))
	}
	return out, nil
}

func (s fakeCarts) GetCart(_ context.Context, id int64) (*models.CartSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.carts[id]; !ok {
		return nil, services.NotFound("Cart")
	}
	return s.summary(id), nil
}

func (s fakeCarts) AddItem(_ context.Context, cartID, productID int64, quantity int) (*models.CartSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, ok := s.carts[cartID]
	if !ok {
		return nil, services.NotFound("Cart")
	}
	if _, ok := s.products[productID]; !ok {
		return nil, services.NotFound("Product")
	}

	i := slices.IndexFunc(items, func(it models.CartItem) bool { return it.ProductID == productID })
	if i >= 0 {
		if items[i].Quantity > models.MaxQuantity-quantity {
			return nil, models.NewValidationError("quantity", "must be less than or equal to 2147483647")
		}
		items[i].Quantity += quantity
	} else {
		items = append(items, models.CartItem{ProductID: productID, Quantity: quantity})
	}
	s.carts[cartID] = items
	return s.summary(cartID), nil
}

func (s fakeCarts) RemoveItem(_ context.Context, cartID, productID int64) (*models.CartSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, ok := s.carts[cartID]
	if !ok {
		return nil, services.NotFound("Cart")
	}
	s.carts[cartID] = slices.DeleteFunc(items, func(it models.CartItem) bool { return it.ProductID == productID })
	return s.summary(cartID), nil
}

func (s fakeCarts) DeleteCart(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.carts[id]; !ok {
		return services.NotFound("Cart")
	}
	delete(s.carts, id)
	return nil
}

func (s fakeFavorites) List(context.Context) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Product{}
	for _, id := range s.favorites {
		out = append(out, s.products[id])
	}
	return out, nil
}

func (s fakeFavorites) Add(_ context.Context, productID int64) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return nil, services.NotFound("Product")
	}
	if !slices.Contains(s.favorites, productID) {
		s.favorites = append(s.favorites, productID)
	}
	return &p, nil
}

func (s fakeFavorites) Remove(_ context.Context, productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.Index(s.favorites, productID)
	if i < 0 {
		return services.NotFound("Favorite")
	}
	s.favorites = slices.Delete(s.favorites, i, i+1)
	return nil
}

func (s *memStore) sortedIDs() []int64 {
	ids := make([]int64, 0, len(s.products))
	for id := range s.products {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// summary must be called with mu held.
func (s *memStore) summary(cartID int64) *models.CartSummary {
	items := slices.Clone(s.carts[cartID])
	lines := make([]models.CartLine, 0, len(items))
	for _, it := range items {
		line := models.CartLine{CartID: cartID, ProductID: it.ProductID, Quantity: it.Quantity}
		if p, ok := s.products[it.ProductID]; ok {
			line.Price = &p.Price
		}
		lines = append(lines, line)
	}
	if items == nil {
		items = []models.CartItem{}
	}
	return &models.CartSummary{ID: cartID, Items: items, Total: services.CartTotal(lines)}
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }
