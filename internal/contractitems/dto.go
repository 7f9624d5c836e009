package contractitems

import "time"

type CreateItemRequest struct {
	ContractID int64    `json:"contract_id" binding:"required"`
	ProductID  int64    `json:"product_id" binding:"required"`
	Quantity   int      `json:"quantity" binding:"required"`
	UnitPrice  *float64 `json:"unit_price,omitempty"` // defaults to the product's rental price
}

type UpdateItemRequest struct {
	Quantity  *int     `json:"quantity,omitempty"`
	UnitPrice *float64 `json:"unit_price,omitempty"`
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
