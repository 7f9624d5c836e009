package employees

import (
	"database/sql"
	"time"
)

type Employee struct {
	EmployeeID int64
	Name       string
	Email      string
	Phone      sql.NullString
	Position   sql.NullString
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type CreateEmployeeRequest struct {
	Name     string  `json:"name" binding:"required"`
	Email    string  `json:"email" binding:"required,email"`
	Phone    *string `json:"phone,omitempty"`
	Position *string `json:"position,omitempty"`
}

type UpdateEmployeeRequest struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Position *string `json:"position,omitempty"`
	Active   *bool   `json:"active,omitempty"`
}

type EmployeeResponse struct {
	EmployeeID int64     `json:"employee_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      *string   `json:"phone,omitempty"`
	Position   *string   `json:"position,omitempty"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (e *Employee) toDTO() EmployeeResponse {
	resp := EmployeeResponse{
		EmployeeID: e.EmployeeID,
		Name:       e.Name,
		Email:      e.Email,
		Active:     e.Active,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
	if e.Phone.Valid {
		val := e.Phone.String
		resp.Phone = &val
	}
	if e.Position.Valid {
		val := e.Position.String
		resp.Position = &val
	}
	return resp
}
