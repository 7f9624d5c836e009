package payments

import "time"

type CreatePaymentRequest struct {
	ContractID   int64      `json:"contract_id" binding:"required"`
	Amount       float64    `json:"amount" binding:"required"`
	Method       string     `json:"method" binding:"required"`
	Status       *string    `json:"status,omitempty"` // defaults to PENDING
	Installments *int       `json:"installments,omitempty"`
	Reference    *string    `json:"reference,omitempty"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	PaidAt       *time.Time `json:"paid_at,omitempty"`
}

type UpdatePaymentRequest struct {
	Amount       *float64   `json:"amount,omitempty"`
	Method       *string    `json:"method,omitempty"`
	Status       *string    `json:"status,omitempty"`
	Installments *int       `json:"installments,omitempty"`
	Reference    *string    `json:"reference,omitempty"`
	DueDate      *time.Time `json:"due_date,omitempty"`
}

type PaymentResponse struct {
	PaymentID    int64      `json:"payment_id"`
	PaymentULID  string     `json:"payment_ulid"`
	ContractID   int64      `json:"contract_id"`
	Amount       float64    `json:"amount"`
	Method       Method     `json:"method"`
	Status       Status     `json:"status"`
	Installments int        `json:"installments"`
	Reference    *string    `json:"reference,omitempty"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	PaidAt       *time.Time `json:"paid_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (p *Payment) toDTO() PaymentResponse {
	resp := PaymentResponse{
		PaymentID:    p.PaymentID,
		PaymentULID:  p.PaymentULID,
		ContractID:   p.ContractID,
		Amount:       p.Amount,
		Method:       p.Method,
		Status:       p.Status,
		Installments: p.Installments,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	if p.Reference.Valid {
		val := p.Reference.String
		resp.Reference = &val
	}
	if p.DueDate.Valid {
		val := p.DueDate.Time
		resp.DueDate = &val
	}
	if p.PaidAt.Valid {
		val := p.PaidAt.Time
		resp.PaidAt = &val
	}
	return resp
}
