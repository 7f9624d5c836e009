package contractitems

import "time"

// Item is one row of the contract_items table.
type Item struct {
	ItemID     int64
	ContractID int64
	ProductID  int64
	Quantity   int
	UnitPrice  float64
	Subtotal   float64
	CreatedAt  time.Time
}

// ProductRef carries the product fields the item workflow checks.
type ProductRef struct {
	ProductID   int64
	RentalPrice float64
	Quantity    int
	Status      string
}
