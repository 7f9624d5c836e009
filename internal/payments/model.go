package payments

import (
	"database/sql"
	"time"
)

type Method string

const (
	MethodCash         Method = "CASH"
	MethodCreditCard   Method = "CREDIT_CARD"
	MethodDebitCard    Method = "DEBIT_CARD"
	MethodPix          Method = "PIX"
	MethodBankTransfer Method = "BANK_TRANSFER"
)

var validMethods = map[Method]bool{
	MethodCash:         true,
	MethodCreditCard:   true,
	MethodDebitCard:    true,
	MethodPix:          true,
	MethodBankTransfer: true,
}

type Status string

const (
	StatusPending       Status = "PENDING"
	StatusPaid          Status = "PAID"
	StatusPartiallyPaid Status = "PARTIALLY_PAID"
	StatusCancelled     Status = "CANCELLED"
	StatusRefunded      Status = "REFUNDED"
)

var validStatuses = map[Status]bool{
	StatusPending:       true,
	StatusPaid:          true,
	StatusPartiallyPaid: true,
	StatusCancelled:     true,
	StatusRefunded:      true,
}

// Payment is one row of the payments table. PaymentULID is the public
// reference printed on receipts.
type Payment struct {
	PaymentID    int64
	PaymentULID  string
	ContractID   int64
	Amount       float64
	Method       Method
	Status       Status
	Installments int
	Reference    sql.NullString
	DueDate      sql.NullTime
	PaidAt       sql.NullTime
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ContractRef is the slice of a contract the payment workflow needs.
type ContractRef struct {
	ContractID  int64
	CustomerID  int64
	Status      string
	TotalAmount float64
}
