package products

import "time"

type CreateProductRequest struct {
	CategoryID  *int64  `json:"category_id,omitempty"`
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description,omitempty"`
	Size        *string `json:"size,omitempty"`
	Color       *string `json:"color,omitempty"`
	RentalPrice float64 `json:"rental_price" binding:"required"`
	Quantity    int     `json:"quantity"`
}

type UpdateProductRequest struct {
	CategoryID  *int64   `json:"category_id,omitempty"`
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Size        *string  `json:"size,omitempty"`
	Color       *string  `json:"color,omitempty"`
	RentalPrice *float64 `json:"rental_price,omitempty"`
	Quantity    *int     `json:"quantity,omitempty"`
	Status      *string  `json:"status,omitempty"`
}

type ProductResponse struct {
	ProductID   int64     `json:"product_id"`
	CategoryID  *int64    `json:"category_id,omitempty"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Size        *string   `json:"size,omitempty"`
	Color       *string   `json:"color,omitempty"`
	RentalPrice float64   `json:"rental_price"`
	Quantity    int       `json:"quantity"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateCategoryRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description,omitempty"`
}

type CategoryResponse struct {
	CategoryID  int64   `json:"category_id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

type AddImageRequest struct {
	URL       string `json:"url" binding:"required"`
	IsPrimary bool   `json:"is_primary"`
}

type ImageResponse struct {
	ImageID   int64  `json:"image_id"`
	ProductID int64  `json:"product_id"`
	URL       string `json:"url"`
	IsPrimary bool   `json:"is_primary"`
}

type StartMaintenanceRequest struct {
	Reason string   `json:"reason" binding:"required"`
	Cost   *float64 `json:"cost,omitempty"`
}

type MaintenanceResponse struct {
	MaintenanceID int64      `json:"maintenance_id"`
	ProductID     int64      `json:"product_id"`
	Reason        string     `json:"reason"`
	Cost          *float64   `json:"cost,omitempty"`
	StartedAt     time.Time  `json:"started_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

func (p *Product) toDTO() ProductResponse {
	resp := ProductResponse{
		ProductID:   p.ProductID,
		Name:        p.Name,
		RentalPrice: p.RentalPrice,
		Quantity:    p.Quantity,
		Status:      p.Status,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.CategoryID.Valid {
		val := p.CategoryID.Int64
		resp.CategoryID = &val
	}
	if p.Description.Valid {
		val := p.Description.String
		resp.Description = &val
	}
	if p.Size.Valid {
		val := p.Size.String
		resp.Size = &val
	}
	if p.Color.Valid {
		val := p.Color.String
		resp.Color = &val
	}
	return resp
}

func (m *MaintenanceRecord) toDTO() MaintenanceResponse {
	resp := MaintenanceResponse{
		MaintenanceID: m.MaintenanceID,
		ProductID:     m.ProductID,
		Reason:        m.Reason,
		StartedAt:     m.StartedAt,
	}
	if m.Cost.Valid {
		val := m.Cost.Float64
		resp.Cost = &val
	}
	if m.CompletedAt.Valid {
		val := m.CompletedAt.Time
		resp.CompletedAt = &val
	}
	return resp
}
