package contracts

import (
	"database/sql"
	"time"
)

type Status string

const (
	StatusDraft            Status = "DRAFT"
	StatusFittingScheduled Status = "FITTING_SCHEDULED"
	StatusSigned           Status = "SIGNED"
	StatusPaid             Status = "PAID"
	StatusPickedUp         Status = "PICKED_UP"
	StatusReturned         Status = "RETURNED"
	StatusLate             Status = "LATE"
	StatusCompleted        Status = "COMPLETED"
	StatusCancelled        Status = "CANCELLED"
)

func ValidStatus(s Status) bool {
	_, ok := transitions[s]
	return ok
}

// transitions holds the allowed next states per state. CANCELLED and COMPLETED
// are terminal.
var transitions = map[Status][]Status{
	StatusDraft:            {StatusFittingScheduled, StatusSigned, StatusCancelled},
	StatusFittingScheduled: {StatusSigned, StatusDraft, StatusCancelled},
	StatusSigned:           {StatusPaid, StatusCancelled},
	StatusPaid:             {StatusPickedUp, StatusCancelled},
	StatusPickedUp:         {StatusReturned, StatusLate},
	StatusLate:             {StatusReturned},
	StatusReturned:         {StatusCompleted},
	StatusCancelled:        {},
	StatusCompleted:        {},
}

func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// restockOnCancel lists the statuses a contract may be in right before
// cancellation that trigger a stock return. Cancelling from DRAFT or
// FITTING_SCHEDULED leaves stock untouched.
var restockOnCancel = map[Status]bool{
	StatusSigned:   true,
	StatusPaid:     true,
	StatusPickedUp: true,
	StatusLate:     true,
	StatusReturned: true,
}

// Contract is one row of the contracts table.
type Contract struct {
	ContractID        int64
	ContractNumber    string
	CustomerID        int64
	EmployeeID        int64
	EventID           sql.NullInt64
	FittingDate       sql.NullTime
	PickupDate        time.Time
	ReturnDate        time.Time
	Status            Status
	TotalAmount       float64
	DepositAmount     sql.NullFloat64
	SpecialConditions sql.NullString
	Observations      sql.NullString
	CreatedAt         time.Time
	UpdatedAt         time.Time

	// loaded relations, populated by GetByID
	Items    []Item
	Payments []PaymentRow
}

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

// PaymentRow is the read-side projection of a payment attached to a contract.
// The payments package owns writes.
type PaymentRow struct {
	PaymentID int64      `json:"payment_id"`
	Amount    float64    `json:"amount"`
	Method    string     `json:"method"`
	Status    string     `json:"status"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
}

// ProductRef is the slice of a product the contract workflow needs.
type ProductRef struct {
	ProductID   int64
	RentalPrice float64
	Quantity    int
	Status      string
}

type MonthlyCount struct {
	Year  int   `json:"year"`
	Month int   `json:"month"`
	Count int64 `json:"count"`
}

type MonthlyRevenue struct {
	Year  int     `json:"year"`
	Month int     `json:"month"`
	Total float64 `json:"total"`
}
