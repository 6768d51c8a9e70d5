package attendance

import "time"

// Entry is one attendance record: a clock-in, optionally closed by a
// clock-out. Geofencing checks happen upstream and are not modelled here.
type Entry struct {
	ID         int64      `json:"id"`
	EmployeeID int64      `json:"employee_id"`
	StoreID    int64      `json:"store_id"`
	ClockInAt  time.Time  `json:"clock_in_at"`
	ClockOutAt *time.Time `json:"clock_out_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ListFilter narrows the attendance listing.
type ListFilter struct {
	EmployeeID *int64
	StoreID    *int64
	From       *time.Time
	To         *time.Time
}
