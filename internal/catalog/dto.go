package catalog

// UnitSpec describes one desired unit inside an upsert. A nil ID means
// "insert"; a concrete ID must belong to the product being updated.
type UnitSpec struct {
	ID               *int64  `json:"id,omitempty"`
	Name             string  `json:"name" validate:"required"`
	SKU              *string `json:"sku,omitempty"`
	IsBase           bool    `json:"is_base"`
	MultiplierToBase float64 `json:"multiplier_to_base" validate:"gt=0"`
}

// UpsertProductInput carries the full desired product state. Units replace
// the persisted unit list atomically: persisted units missing from the list
// are deleted, cascading to assignment-unit rows that reference them.
type UpsertProductInput struct {
	ID          *int64     `json:"id,omitempty"`
	Code        string     `json:"code" validate:"required"`
	Name        string     `json:"name" validate:"required"`
	Description *string    `json:"description,omitempty"`
	IsActive    *bool      `json:"is_active,omitempty"`
	Units       []UnitSpec `json:"units" validate:"required,min=1,dive"`
}
