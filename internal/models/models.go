package models

// MaxQuantity is the largest value the INT quantity and stock columns hold.
const MaxQuantity = 2147483647

// Product represents a product in the catalog
type Product struct {
	ID                 int64    `json:"id"`
	Name               string   `json:"name"`
	Description        *string  `json:"description"`
	Price              float64  `json:"price"`
	DiscountPercentage *float64 `json:"discount_percentage"`
	Rating             *float64 `json:"rating"`
	Stock              *int     `json:"stock"`
	Brand              *string  `json:"brand"`
	Category           *string  `json:"category"`
	Thumbnail          *string  `json:"thumbnail"`
	Images             *string  `json:"images"`
}

// ProductInput is the payload for creating a product
type ProductInput struct {
	Name               string   `json:"name" validate:"required,max=120"`
	Description        *string  `json:"description" validate:"omitempty,max=500"`
	Price              float64  `json:"price" validate:"gt=0"`
	DiscountPercentage *float64 `json:"discount_percentage"`
	Rating             *float64 `json:"rating"`
	Stock              *int     `json:"stock" validate:"omitempty,gte=-2147483648,lte=2147483647"`
	Brand              *string  `json:"brand"`
	Category           *string  `json:"category"`
	Thumbnail          *string  `json:"thumbnail"`
	Images             *string  `json:"images" validate:"omitempty,max=1000"`
}

// ProductPatch is a partial update. Nil fields are left untouched.
type ProductPatch struct {
	Name               *string  `json:"name" validate:"omitempty,min=1,max=120"`
	Description        *string  `json:"description" validate:"omitempty,max=500"`
	Price              *float64 `json:"price" validate:"omitempty,gt=0"`
	DiscountPercentage *float64 `json:"discount_percentage"`
	Rating             *float64 `json:"rating"`
	Stock              *int     `json:"stock" validate:"omitempty,gte=-2147483648,lte=2147483647"`
	Brand              *string  `json:"brand"`
	Category           *string  `json:"category"`
	Thumbnail          *string  `json:"thumbnail"`
	Images             *string  `json:"images" validate:"omitempty,max=1000"`
}

// Empty reports whether the patch changes nothing.
func (p ProductPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil &&
		p.DiscountPercentage == nil && p.Rating == nil && p.Stock == nil &&
		p.Brand == nil && p.Category == nil && p.Thumbnail == nil && p.Images == nil
}

// ProductQuery selects one page of the catalog
type ProductQuery struct {
	Q     string
	Page  int `validate:"gte=1"`
	Limit int `validate:"gte=1,lte=100"`
}

// Beyond reports whether a page after the first starts past the last of total
// rows. When it returns false, Offset fits in an int.
func (q ProductQuery) Beyond(total int) bool {
	return q.Page > 1 && q.Page-1 >= PageCount(total, q.Limit)
}

// Offset returns the number of rows skipped before the page starts.
func (q ProductQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// ProductPage is one page of products plus pagination metadata
type ProductPage struct {
	Page     int       `json:"page"`
	Pages    int       `json:"pages"`
	Limit    int       `json:"limit"`
	Total    int       `json:"total"`
	Products []Product `json:"products"`
}

// PageCount returns ceil(total/limit), or 0 for an empty result.
func PageCount(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// CartItem is a line item of a cart
type CartItem struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// Cart is returned when a cart is created
type Cart struct {
	ID    int64      `json:"id"`
	Items []CartItem `json:"items"`
}

// CartSummary is a cart with its computed total
type CartSummary struct {
	ID    int64      `json:"id"`
	Items []CartItem `json:"items"`
	Total float64    `json:"total"`
}

// CartLine is a line item joined with its product's price. Price is nil when
// the product row is missing.
type CartLine struct {
	CartID    int64
	ProductID int64
	Quantity  int
	Price     *float64
}

// AddCartItemRequest represents a request to add a product to a cart
type AddCartItemRequest struct {
	ProductID      *int64 `json:"productId"`
	ProductIDSnake *int64 `json:"product_id"`
	Quantity       *int   `json:"quantity" validate:"omitempty,gte=1,lte=2147483647"`
}

// Normalize folds the snake_case alias and applies the default quantity.
func (r AddCartItemRequest) Normalize() (productID int64, quantity int, err error) {
	id := r.ProductID
	if id == nil {
		id = r.ProductIDSnake
	}
	if id == nil {
		return 0, 0, &ValidationError{Fields: []FieldError{{Field: "productId", Message: "field required"}}}
	}
	if err := Validate(r); err != nil {
		return 0, 0, err
	}
	quantity = 1
	if r.Quantity != nil {
		quantity = *r.Quantity
	}
	return *id, quantity, nil
}
