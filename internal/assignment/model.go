package assignment

import (
	"time"
)

// UnitStatus is the lifecycle state of an assignment unit. Reconciliation
// only ever moves a row between active and inactive; rows leave storage only
// when the catalog unit, the product, or the whole assignment is deleted.
type UnitStatus string

const (
	UnitStatusActive   UnitStatus = "active"
	UnitStatusInactive UnitStatus = "inactive"
)

// Assignment binds a product to an employee, optionally scoped to one store.
// A nil StoreID means the assignment applies at all stores and is a distinct
// key from any concrete store id.
type Assignment struct {
	ID         int64     `json:"id"`
	ProductID  int64     `json:"product_id"`
	EmployeeID int64     `json:"employee_id"`
	StoreID    *int64    `json:"store_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// AssignmentUnit enables one product unit for an assignment at a PC price.
// Historical sales rows reference these ids, hence the soft deactivation.
type AssignmentUnit struct {
	ID           int64      `json:"id"`
	AssignmentID int64      `json:"assignment_id"`
	UnitID       int64      `json:"unit_id"`
	PricePC      float64    `json:"price_pc"`
	Status       UnitStatus `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
