package store

import (
	"time"

	"gorm.io/datatypes"
)

// GORM models used for persistence. Catalog ids are user-facing and kept
// separate from the storage-internal primary keys.
type UserModel struct {
	ID           string `gorm:"primaryKey"`
	Name         string
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"not null"`
	Avatar       string
	Cart         datatypes.JSON `gorm:"type:jsonb"`
	Wishlist     datatypes.JSON `gorm:"type:jsonb"`
	Addresses    datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt    time.Time      `gorm:"not null;index"`
}

type ProductModel struct {
	ID          uint  `gorm:"primaryKey;autoIncrement"`
	CatalogID   int64 `gorm:"uniqueIndex;not null"`
	Title       string
	Artist      string `gorm:"index"`
	Price       float64
	Category    string `gorm:"index"`
	Image       string
	Description string
	Dimensions  string
	Materials   string
	InStock     bool
	Featured    bool
	CreatedAt   time.Time `gorm:"not null"`
}

type ArtistModel struct {
	ID         uint  `gorm:"primaryKey;autoIncrement"`
	CatalogID  int64 `gorm:"uniqueIndex;not null"`
	Name       string
	Expertise  string
	University string
	Image      string
	Bio        string
	CreatedAt  time.Time `gorm:"not null"`
}

type OrderModel struct {
	ID              string `gorm:"primaryKey"`
	UserID          string `gorm:"not null;index"`
	Items           datatypes.JSON `gorm:"type:jsonb"`
	Total           float64
	ShippingDetails datatypes.JSON `gorm:"type:jsonb"`
	PaymentMethod   string
	Status          string         `gorm:"not null"`
	Timeline        datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt       time.Time      `gorm:"not null;index"`
}

type CommissionModel struct {
	ID          string `gorm:"primaryKey"`
	UserID      string `gorm:"not null;index"`
	Style       string
	Budget      string
	Description string
	Status      string    `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null;index"`
}

type ReviewModel struct {
	ID        string `gorm:"primaryKey"`
	ProductID int64  `gorm:"not null;index"`
	UserID    string `gorm:"not null"`
	UserName  string
	Rating    int
	Comment   string
	CreatedAt time.Time `gorm:"not null;index"`
}
