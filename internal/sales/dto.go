package sales

import "time"

// RecordLineInput is one desired sale line; price is resolved server-side
// from the referenced assignment unit.
type RecordLineInput struct {
	AssignmentUnitID int64   `json:"assignment_unit_id" validate:"required,gt=0"`
	Quantity         float64 `json:"quantity" validate:"required,gt=0"`
}

// RecordSaleInput records one sale for an employee.
type RecordSaleInput struct {
	EmployeeID int64             `json:"employee_id" validate:"required,gt=0"`
	StoreID    *int64            `json:"store_id,omitempty"`
	SoldAt     *time.Time        `json:"sold_at,omitempty"`
	Lines      []RecordLineInput `json:"lines" validate:"required,min=1,dive"`
}

// ListFilter narrows the sales listing.
type ListFilter struct {
	EmployeeID *int64
	StoreID    *int64
	From       *time.Time
	To         *time.Time
}
