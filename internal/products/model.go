package products

import (
	"database/sql"
	"time"
)

const (
	StatusAvailable   = "AVAILABLE"
	StatusRented      = "RENTED"
	StatusMaintenance = "MAINTENANCE"
	StatusRetired     = "RETIRED"
)

func validStatus(s string) bool {
	switch s {
	case StatusAvailable, StatusRented, StatusMaintenance, StatusRetired:
		return true
	}
	return false
}

// Product is one row of the products table. Quantity and status are owned here;
// the contract workflow adjusts them through its own transactional stores.
type Product struct {
	ProductID   int64
	CategoryID  sql.NullInt64
	Name        string
	Description sql.NullString
	Size        sql.NullString
	Color       sql.NullString
	RentalPrice float64
	Quantity    int
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Category struct {
	CategoryID  int64
	Name        string
	Description sql.NullString
}

type Image struct {
	ImageID   int64
	ProductID int64
	URL       string
	IsPrimary bool
}

type MaintenanceRecord struct {
	MaintenanceID int64
	ProductID     int64
	Reason        string
	Cost          sql.NullFloat64
	StartedAt     time.Time
	CompletedAt   sql.NullTime
}
