package store

import "atrangi/pkg/domain"

// ProductFilter describes the combinable catalog query: all set fields apply
// simultaneously.
type ProductFilter struct {
	Search   string
	Category string
	Artist   string
	MinPrice *float64
	MaxPrice *float64
	Sort     string // "price_asc", "price_desc", "newest"
	Page     int
	Limit    int
}

// Store defines persistence for users, catalog, orders, commissions and
// reviews. The backing engine is treated as a generic document store: entity
// snapshots (carts, line items, timelines) are stored as JSON blobs.
type Store interface {
	// users
	SaveUser(domain.User) error
	GetUserByEmail(email string) (domain.User, bool, error)
	GetUserByID(id string) (domain.User, bool, error)
	ListUsers() ([]domain.User, error)

	// products
	SaveProduct(domain.Product) error
	GetProduct(catalogID int64) (domain.Product, bool, error)
	ListProducts(ProductFilter) ([]domain.Product, int64, error)
	ListProductsByCategory(category string) ([]domain.Product, error)
	ListProductsByArtist(artist string) ([]domain.Product, error)
	UpdateProductFields(catalogID int64, fields map[string]any) (bool, error)
	DeleteProduct(catalogID int64) error
	SetProductStock(catalogID int64, inStock bool) error
	MarkSoldIfInStock(catalogID int64) (bool, error)

	// artists
	SaveArtist(domain.Artist) error
	GetArtist(catalogID int64) (domain.Artist, bool, error)
	ListArtists() ([]domain.Artist, error)
	UpdateArtistFields(catalogID int64, fields map[string]any) (bool, error)
	DeleteArtist(catalogID int64) error

	// orders
	SaveOrder(domain.Order) error
	GetOrder(id string) (domain.Order, bool, error)
	ListOrdersByUser(userID string) ([]domain.Order, error)
	ListOrders() ([]domain.Order, error)

	// commissions
	SaveCommission(domain.Commission) error
	GetCommission(id string) (domain.Commission, bool, error)
	ListCommissionsByUser(userRef string) ([]domain.Commission, error)
	ListCommissions() ([]domain.Commission, error)

	// reviews
	SaveReview(domain.Review) error
	ListReviewsByProduct(productID int64) ([]domain.Review, error)
}

// productColumns maps JSON payload keys to storage columns for partial
// product updates. Unknown keys are dropped, never interpolated.
var productColumns = map[string]string{
	"title":       "title",
	"artist":      "artist",
	"price":       "price",
	"category":    "category",
	"image":       "image",
	"description": "description",
	"dimensions":  "dimensions",
	"materials":   "materials",
	"inStock":     "in_stock",
	"featured":    "featured",
}

// artistColumns is the artist counterpart of productColumns.
var artistColumns = map[string]string{
	"name":       "name",
	"expertise":  "expertise",
	"university": "university",
	"image":      "image",
	"bio":        "bio",
}
