package customers

import (
	"database/sql"
	"time"
)

// Customer is one row of the customers table.
type Customer struct {
	CustomerID    int64
	Name          string
	Email         string
	Phone         sql.NullString
	Document      sql.NullString
	BirthDate     sql.NullTime
	Address       sql.NullString
	LoyaltyPoints int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
