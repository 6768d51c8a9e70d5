package assignment

// UnitDesire is one entry of the complete desired state sent to Reconcile.
type UnitDesire struct {
	UnitID  int64   `json:"unit_id" validate:"required,gt=0"`
	PricePC float64 `json:"price_pc"`
	Enabled bool    `json:"enabled"`
}

// ReconcileInput is the full desired unit set for one (product, employee,
// store) assignment, not a delta.
type ReconcileInput struct {
	ProductID  int64        `json:"product_id" validate:"required,gt=0"`
	EmployeeID int64        `json:"employee_id" validate:"required,gt=0"`
	StoreID    *int64       `json:"store_id,omitempty"`
	Units      []UnitDesire `json:"units" validate:"dive"`
}

// ListFilter narrows the assignment listing.
type ListFilter struct {
	EmployeeID      *int64
	StoreID         *int64
	OnlyActiveUnits bool
}

// UnitView is one assignment unit resolved against catalog identity.
type UnitView struct {
	ID               int64      `json:"id"`
	UnitID           int64      `json:"unit_id"`
	UnitName         string     `json:"unit_name"`
	MultiplierToBase float64    `json:"multiplier_to_base"`
	PricePC          float64    `json:"price_pc"`
	Status           UnitStatus `json:"status"`
}

// View is one assignment with resolved product identity and its unit rows,
// ascending by multiplier.
type View struct {
	ID          int64      `json:"id"`
	ProductID   int64      `json:"product_id"`
	ProductCode string     `json:"product_code"`
	ProductName string     `json:"product_name"`
	EmployeeID  int64      `json:"employee_id"`
	StoreID     *int64     `json:"store_id,omitempty"`
	Units       []UnitView `json:"units"`
}
