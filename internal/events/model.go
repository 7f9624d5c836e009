package events

import (
	"database/sql"
	"time"
)

type Location struct {
	LocationID int64
	Name       string
	Address    sql.NullString
	Capacity   sql.NullInt64
}

type Event struct {
	EventID    int64
	Name       string
	EventDate  time.Time
	LocationID sql.NullInt64
	Notes      sql.NullString
	CreatedAt  time.Time
}

type CreateLocationRequest struct {
	Name     string  `json:"name" binding:"required"`
	Address  *string `json:"address,omitempty"`
	Capacity *int64  `json:"capacity,omitempty"`
}

type LocationResponse struct {
	LocationID int64   `json:"location_id"`
	Name       string  `json:"name"`
	Address    *string `json:"address,omitempty"`
	Capacity   *int64  `json:"capacity,omitempty"`
}

type CreateEventRequest struct {
	Name       string  `json:"name" binding:"required"`
	EventDate  string  `json:"event_date" binding:"required"` // YYYY-MM-DD
	LocationID *int64  `json:"location_id,omitempty"`
	Notes      *string `json:"notes,omitempty"`
}

type UpdateEventRequest struct {
	Name       *string `json:"name,omitempty"`
	EventDate  *string `json:"event_date,omitempty"`
	LocationID *int64  `json:"location_id,omitempty"`
	Notes      *string `json:"notes,omitempty"`
}

type EventResponse struct {
	EventID    int64     `json:"event_id"`
	Name       string    `json:"name"`
	EventDate  string    `json:"event_date"`
	LocationID *int64    `json:"location_id,omitempty"`
	Notes      *string   `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func (e *Event) toDTO() EventResponse {
	resp := EventResponse{
		EventID:   e.EventID,
		Name:      e.Name,
		EventDate: e.EventDate.Format("2006-01-02"),
		CreatedAt: e.CreatedAt,
	}
	if e.LocationID.Valid {
		val := e.LocationID.Int64
		resp.LocationID = &val
	}
	if e.Notes.Valid {
		val := e.Notes.String
		resp.Notes = &val
	}
	return resp
}

func (l *Location) toDTO() LocationResponse {
	resp := LocationResponse{LocationID: l.LocationID, Name: l.Name}
	if l.Address.Valid {
		val := l.Address.String
		resp.Address = &val
	}
	if l.Capacity.Valid {
		val := l.Capacity.Int64
		resp.Capacity = &val
	}
	return resp
}
