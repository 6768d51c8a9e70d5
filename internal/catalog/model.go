package catalog

import (
	"time"
)

// Product is a sellable catalog entry owned by the merchant.
type Product struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductUnit is one measurement unit of a product (box, pack, piece).
// Exactly one unit per product is the base unit; every other unit expresses
// how many base units it contains via MultiplierToBase.
type ProductUnit struct {
	ID               int64   `json:"id"`
	ProductID        int64   `json:"product_id"`
	Name             string  `json:"name"`
	SKU              *string `json:"sku,omitempty"`
	IsBase           bool    `json:"is_base"`
	MultiplierToBase float64 `json:"multiplier_to_base"`
}

// CatalogItem is a fully materialized product with its ordered unit set:
// base unit first, remaining units ascending by multiplier.
type CatalogItem struct {
	Product Product       `json:"product"`
	Units   []ProductUnit `json:"units"`
}
