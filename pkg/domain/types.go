package domain

import "time"

// Role labels a user's permission context. Five fixed roles; the matrix in
// pkg/auth decides what each one may touch.
type Role string

const (
	RoleUser         Role = "user"
	RoleAdmin        Role = "admin"
	RoleCreativeHead Role = "creative_head"
	RoleContentTeam  Role = "content_team"
	RoleMarketingEM  Role = "marketing_em"
)

// Roles lists every valid role value, in the order the admin UI shows them.
func Roles() []Role {
	return []Role{RoleUser, RoleAdmin, RoleCreativeHead, RoleContentTeam, RoleMarketingEM}
}

// ValidRole reports whether the raw value is one of the five known roles.
func ValidRole(raw string) bool {
	for _, r := range Roles() {
		if string(r) == raw {
			return true
		}
	}
	return false
}

// OrderStatus values are display strings; the engine allows any-to-any
// transitions by an authorized admin.
type OrderStatus string

const (
	OrderProcessing OrderStatus = "Processing"
	OrderShipped    OrderStatus = "Shipped"
	OrderDelivered  OrderStatus = "Delivered"
	OrderCancelled  OrderStatus = "Cancelled"
)

// CommissionPending is the only server-assigned commission status; everything
// after that is free text set by admin/marketing.
const CommissionPending = "Pending"

// Address is one shipping address in a user's address book.
type Address struct {
	Label   string `json:"label,omitempty"`
	Line1   string `json:"line1"`
	Line2   string `json:"line2,omitempty"`
	City    string `json:"city"`
	State   string `json:"state,omitempty"`
	Zip     string `json:"zip"`
	Country string `json:"country,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// User carries the account record plus the denormalized cart/wishlist
// snapshots synced from client state. The server copy is authoritative after
// any sync call.
type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	Avatar       string     `json:"avatar,omitempty"`
	Cart         []CartItem `json:"cart"`
	Wishlist     []Product  `json:"wishlist"`
	Addresses    []Address  `json:"addresses,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// Product is a unique art piece. ID is the user-facing catalog id, distinct
// from any storage-internal key. Artist is a display name, not a foreign key
// into the Artist table; renaming an artist does not cascade.
type Product struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Artist      string    `json:"artist"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	Image       string    `json:"image,omitempty"`
	Description string    `json:"description,omitempty"`
	Dimensions  string    `json:"dimensions,omitempty"`
	Materials   string    `json:"materials,omitempty"`
	InStock     bool      `json:"inStock"`
	Featured    bool      `json:"featured"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Artist is a catalog-facing profile with its own numeric id.
type Artist struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Expertise  string    `json:"expertise,omitempty"`
	University string    `json:"university,omitempty"`
	Image      string    `json:"image,omitempty"`
	Bio        string    `json:"bio,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// CartItem is a denormalized product snapshot plus a quantity. Cart items and
// order line items share this shape; once an order is placed the snapshot is
// frozen and never re-synced from the live product.
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}

// ShippingDetails is the free-form checkout blob attached to an order.
type ShippingDetails struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state,omitempty"`
	Zip       string `json:"zip"`
	Country   string `json:"country,omitempty"`
}

// TimelineEntry records one status the order has passed through.
type TimelineEntry struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Order is created only through the order engine and never deleted.
type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	Items           []CartItem      `json:"items"`
	Total           float64         `json:"total"`
	ShippingDetails ShippingDetails `json:"shippingDetails"`
	PaymentMethod   string          `json:"paymentMethod,omitempty"`
	Status          OrderStatus     `json:"status"`
	Timeline        []TimelineEntry `json:"timeline"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// Commission is an append-only request from a user; UserID holds the
// requester's email, matching the upstream contract.
type Commission struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Style       string    `json:"style"`
	Budget      string    `json:"budget"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Review is append-only; UserName is frozen at write time and never
// re-resolved against the user record.
type Review struct {
	ID        string    `json:"id"`
	ProductID int64     `json:"productId"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
