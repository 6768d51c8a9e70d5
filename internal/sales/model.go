package sales

import "time"

// Sale is one recorded sale by an employee, optionally at a store.
type Sale struct {
	ID         int64     `json:"id"`
	DocRef     string    `json:"doc_ref"`
	EmployeeID int64     `json:"employee_id"`
	StoreID    *int64    `json:"store_id,omitempty"`
	SoldAt     time.Time `json:"sold_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// SaleLine references the exact assignment-unit row that priced the sale.
// The reference must stay resolvable even after the unit is deactivated by a
// later reconciliation, which is why reconciliation never deletes rows.
type SaleLine struct {
	ID               int64   `json:"id"`
	SaleID           int64   `json:"sale_id"`
	AssignmentUnitID int64   `json:"assignment_unit_id"`
	Quantity         float64 `json:"quantity"`
	PricePC          float64 `json:"price_pc"`
	Total            float64 `json:"total"`
}

// LineView resolves a sale line back to catalog identity for reporting.
type LineView struct {
	SaleLine
	ProductCode string `json:"product_code"`
	ProductName string `json:"product_name"`
	UnitName    string `json:"unit_name"`
}

// SaleView is a sale with resolved lines.
type SaleView struct {
	Sale
	Lines []LineView `json:"lines"`
	Total float64    `json:"total"`
}
