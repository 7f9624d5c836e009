package contracts

import "time"

type CreateItemRequest struct {
	ProductID int64    `json:"product_id" binding:"required"`
	Quantity  int      `json:"quantity" binding:"required"`
	UnitPrice *float64 `json:"unit_price,omitempty"` // defaults to the product's rental price
}

type CreateContractRequest struct {
	CustomerID        int64               `json:"customer_id" binding:"required"`
	EmployeeID        int64               `json:"employee_id" binding:"required"`
	EventID           *int64              `json:"event_id,omitempty"`
	FittingDate       *time.Time          `json:"fitting_date,omitempty"`
	PickupDate        time.Time           `json:"pickup_date" binding:"required"`
	ReturnDate        time.Time           `json:"return_date" binding:"required"`
	Status            *string             `json:"status,omitempty"` // defaults to DRAFT
	DepositAmount     *float64            `json:"deposit_amount,omitempty"`
	SpecialConditions *string             `json:"special_conditions,omitempty"`
	Observations      *string             `json:"observations,omitempty"`
	Items             []CreateItemRequest `json:"items"`
}

type UpdateContractRequest struct {
	EmployeeID        *int64     `json:"employee_id,omitempty"`
	EventID           *int64     `json:"event_id,omitempty"`
	FittingDate       *time.Time `json:"fitting_date,omitempty"`
	PickupDate        *time.Time `json:"pickup_date,omitempty"`
	ReturnDate        *time.Time `json:"return_date,omitempty"`
	DepositAmount     *float64   `json:"deposit_amount,omitempty"`
	SpecialConditions *string    `json:"special_conditions,omitempty"`
	Observations      *string    `json:"observations,omitempty"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type ItemResponse struct {
	ItemID     int64     `json:"item_id"`
	ContractID int64     `json:"contract_id"`
	ProductID  int64     `json:"product_id"`
	Quantity   int       `json:"quantity"`
	UnitPrice  float64   `json:"unit_price"`
	Subtotal   float64   `json:"subtotal"`
	CreatedAt  time.Time `json:"created_at"`
}

type ContractResponse struct {
	ContractID        int64          `json:"contract_id"`
	ContractNumber    string         `json:"contract_number"`
	CustomerID        int64          `json:"customer_id"`
	EmployeeID        int64          `json:"employee_id"`
	EventID           *int64         `json:"event_id,omitempty"`
	FittingDate       *time.Time     `json:"fitting_date,omitempty"`
	PickupDate        time.Time      `json:"pickup_date"`
	ReturnDate        time.Time      `json:"return_date"`
	Status            Status         `json:"status"`
	TotalAmount       float64        `json:"total_amount"`
	DepositAmount     *float64       `json:"deposit_amount,omitempty"`
	SpecialConditions *string        `json:"special_conditions,omitempty"`
	Observations      *string        `json:"observations,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	Items             []ItemResponse `json:"items"`
	Payments          []PaymentRow   `json:"payments"`
}

func (it *Item) toDTO() ItemResponse {
	return ItemResponse{
		ItemID:     it.ItemID,
		ContractID: it.ContractID,
		ProductID:  it.ProductID,
		Quantity:   it.Quantity,
		UnitPrice:  it.UnitPrice,
		Subtotal:   it.Subtotal,
		CreatedAt:  it.CreatedAt,
	}
}

func (c *Contract) toDTO() ContractResponse {
	resp := ContractResponse{
		ContractID:     c.ContractID,
		ContractNumber: c.ContractNumber,
		CustomerID:     c.CustomerID,
		EmployeeID:     c.EmployeeID,
		PickupDate:     c.PickupDate,
		ReturnDate:     c.ReturnDate,
		Status:         c.Status,
		TotalAmount:    c.TotalAmount,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
		Items:          make([]ItemResponse, 0, len(c.Items)),
		Payments:       c.Payments,
	}
	if c.EventID.Valid {
		val := c.EventID.Int64
		resp.EventID = &val
	}
	if c.FittingDate.Valid {
		val := c.FittingDate.Time
		resp.FittingDate = &val
	}
	if c.DepositAmount.Valid {
		val := c.DepositAmount.Float64
		resp.DepositAmount = &val
	}
	if c.SpecialConditions.Valid {
		val := c.SpecialConditions.String
		resp.SpecialConditions = &val
	}
	if c.Observations.Valid {
		val := c.Observations.String
		resp.Observations = &val
	}
	for i := range c.Items {
		resp.Items = append(resp.Items, c.Items[i].toDTO())
	}
	if resp.Payments == nil {
		resp.Payments = []PaymentRow{}
	}
	return resp
}
