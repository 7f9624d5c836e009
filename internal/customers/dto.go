package customers

import "time"

const DateLayout = "2006-01-02"

type CreateCustomerRequest struct {
	Name      string  `json:"name" binding:"required"`
	Email     string  `json:"email" binding:"required,email"`
	Phone     *string `json:"phone,omitempty"`
	Document  *string `json:"document,omitempty"`
	BirthDate *string `json:"birth_date,omitempty"` // YYYY-MM-DD
	Address   *string `json:"address,omitempty"`
}

type UpdateCustomerRequest struct {
	Name      *string `json:"name,omitempty"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Document  *string `json:"document,omitempty"`
	BirthDate *string `json:"birth_date,omitempty"`
	Address   *string `json:"address,omitempty"`
}

type LoyaltyRequest struct {
	// positive adds points, negative redeems them
	Points int     `json:"points" binding:"required"`
	Reason *string `json:"reason,omitempty"`
}

type CustomerResponse struct {
	CustomerID    int64     `json:"customer_id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         *string   `json:"phone,omitempty"`
	Document      *string   `json:"document,omitempty"`
	BirthDate     *string   `json:"birth_date,omitempty"`
	Address       *string   `json:"address,omitempty"`
	LoyaltyPoints int       `json:"loyalty_points"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (c *Customer) toDTO() CustomerResponse {
	resp := CustomerResponse{
		CustomerID:    c.CustomerID,
		Name:          c.Name,
		Email:         c.Email,
		LoyaltyPoints: c.LoyaltyPoints,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
	if c.Phone.Valid {
		val := c.Phone.String
		resp.Phone = &val
	}
	if c.Document.Valid {
		val := c.Document.String
		resp.Document = &val
	}
	if c.BirthDate.Valid {
		val := c.BirthDate.Time.Format(DateLayout)
		resp.BirthDate = &val
	}
	if c.Address.Valid {
		val := c.Address.String
		resp.Address = &val
	}
	return resp
}
