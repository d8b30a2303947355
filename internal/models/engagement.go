package models

import (
	"time"

	"github.com/google/uuid"
)

// Cart holds the items a user intends to buy. One cart per user.
type Cart struct {
	BaseModel
	UserID uuid.UUID  `gorm:"type:uuid;uniqueIndex" json:"user_id"`
	Items  []CartItem `json:"items,omitempty"`
}

type CartItem struct {
	BaseModel
	CartID     uuid.UUID `gorm:"type:uuid;index" json:"cart_id"`
	ProductRef uuid.UUID `gorm:"type:uuid;index" json:"product_ref"`
	Size       string    `json:"size"`
	Quantity   int       `json:"quantity"`
}

// Review is a product review left by a user.
type Review struct {
	BaseModel
	UserID     uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	ProductRef uuid.UUID `gorm:"type:uuid;index" json:"product_ref"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
}

// WishlistItem marks a product a user has saved for later.
type WishlistItem struct {
	BaseModel
	UserID     uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	ProductRef uuid.UUID `gorm:"type:uuid;index" json:"product_ref"`
}

// Coupon is a flat-amount discount code applied at checkout.
type Coupon struct {
	BaseModel
	Code      string    `gorm:"uniqueIndex" json:"code"`
	Discount  float64   `json:"discount"`
	ExpiresAt time.Time `json:"expires_at"`
}
