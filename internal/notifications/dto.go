package notifications

import "time"

type CreateNotificationRequest struct {
	CustomerID int64      `json:"customer_id" binding:"required"`
	Type       string     `json:"type" binding:"required"`
	Title      string     `json:"title" binding:"required"`
	Message    string     `json:"message" binding:"required"`
	SentAt     *time.Time `json:"sent_at,omitempty"`
}

type NotificationResponse struct {
	NotificationID int64      `json:"notification_id"`
	CustomerID     int64      `json:"customer_id"`
	Type           string     `json:"type"`
	Title          string     `json:"title"`
	Message        string     `json:"message"`
	IsRead         bool       `json:"is_read"`
	SentAt         time.Time  `json:"sent_at"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
}

func (n *Notification) toDTO() NotificationResponse {
	resp := NotificationResponse{
		NotificationID: n.NotificationID,
		CustomerID:     n.CustomerID,
		Type:           n.Type,
		Title:          n.Title,
		Message:        n.Message,
		IsRead:         n.IsRead,
		SentAt:         n.SentAt,
	}
	if n.ReadAt.Valid {
		val := n.ReadAt.Time
		resp.ReadAt = &val
	}
	return resp
}
