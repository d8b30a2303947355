package models

import "github.com/google/uuid"

// Product is a catalog entry. Pricing lives on the size variants; Discount is
// a percentage taken off each line total at checkout.
//
// ProductID is the stable business id, so the child associations key on
// ProductRef (the uuid primary key) explicitly.
type Product struct {
	BaseModel
	ProductID   string  `gorm:"uniqueIndex" json:"product_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Discount    float64 `json:"discount"`

	Sizes          []ProductSize          `gorm:"foreignKey:ProductRef" json:"quantities,omitempty"`
	Images         []ProductImage         `gorm:"foreignKey:ProductRef" json:"images,omitempty"`
	Ingredients    []ProductIngredient    `gorm:"foreignKey:ProductRef" json:"ingredients,omitempty"`
	Specifications []ProductSpecification `gorm:"foreignKey:ProductRef" json:"specifications,omitempty"`
}

// ProductSize is one purchasable size/price variant, e.g. "500ml" at 250.
type ProductSize struct {
	BaseModel
	ProductRef uuid.UUID `gorm:"type:uuid;index" json:"product_ref"`
	Size       string    `json:"size"`
	Price      float64   `json:"price"`
}

type ProductImage struct {
	BaseModel
	ProductRef   uuid.UUID `gorm:"type:uuid;index" json:"product_ref"`
	URL          string    `json:"url"`
	DisplayOrder int       `json:"display_order"`
}

type ProductIngredient struct {
	BaseModel
	ProductRef uuid.UUID `gorm:"type:uuid;index" json:"product_ref"`
	Name       string    `json:"name"`
	Quantity   string    `json:"quantity"`
}

type ProductSpecification struct {
	BaseModel
	ProductRef uuid.UUID `gorm:"type:uuid;index" json:"product_ref"`
	Name       string    `json:"name"`
	Value      string    `json:"value"`
}
