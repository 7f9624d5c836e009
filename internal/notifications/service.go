package notifications

import (
	"context"
	"database/sql"
	"log"
	"time"

	"arc-backend/internal/platform/apierr"
)

type Service struct {
	store NotificationStore
	now   func() time.Time
}

func NewService(db *sql.DB) *Service {
	return &Service{store: NewStore(db), now: time.Now}
}

func NewServiceWithStore(store NotificationStore) *Service {
	return &Service{store: store, now: time.Now}
}

func (s *Service) Create(ctx context.Context, req CreateNotificationRequest) (*NotificationResponse, error) {
	if !validType(req.Type) {
		return nil, apierr.Invalidf("invalid notification type %q", req.Type)
	}
	ok, err := s.store.CustomerExists(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apierr.NotFound("customer not found")
	}

	sentAt := s.now()
	if req.SentAt != nil {
		sentAt = *req.SentAt
	}

	n := &Notification{
		CustomerID: req.CustomerID,
		Type:       req.Type,
		Title:      req.Title,
		Message:    req.Message,
		SentAt:     sentAt,
	}
	if err := s.store.Insert(ctx, n); err != nil {
		return nil, err
	}
	resp := n.toDTO()
	return &resp, nil
}

// Notify is the fire-and-forget entry point used by the contract and payment
// workflows. Failures are logged, never propagated.
func (s *Service) Notify(ctx context.Context, customerID int64, typ, title, message string) {
	_, err := s.Create(ctx, CreateNotificationRequest{
		CustomerID: customerID,
		Type:       typ,
		Title:      title,
		Message:    message,
	})
	if err != nil {
		log.Printf("[WARN] notification %s for customer %d not sent: %v", typ, customerID, err)
	}
}

// MarkAsRead is idempotent: an already-read notification is returned unchanged.
func (s *Service) MarkAsRead(ctx context.Context, id int64) (*NotificationResponse, error) {
	n, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.IsRead {
		resp := n.toDTO()
		return &resp, nil
	}

	readAt := s.now()
	if err := s.store.MarkRead(ctx, id, readAt); err != nil {
		return nil, err
	}
	n.IsRead = true
	n.ReadAt = sql.NullTime{Time: readAt, Valid: true}
	resp := n.toDTO()
	return &resp, nil
}

func (s *Service) MarkAllAsRead(ctx context.Context, customerID int64) (int64, error) {
	ok, err := s.store.CustomerExists(ctx, customerID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, apierr.NotFound("customer not found")
	}
	return s.store.MarkAllRead(ctx, customerID, s.now())
}

func (s *Service) CountUnreadByCustomerID(ctx context.Context, customerID int64) (int64, error) {
	ok, err := s.store.CustomerExists(ctx, customerID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, apierr.NotFound("customer not found")
	}
	return s.store.CountUnread(ctx, customerID)
}

func (s *Service) ListByCustomer(ctx context.Context, customerID int64, onlyUnread bool, limit, offset int) ([]NotificationResponse, error) {
	ok, err := s.store.CustomerExists(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apierr.NotFound("customer not found")
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.store.ListByCustomer(ctx, customerID, onlyUnread, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]NotificationResponse, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDTO())
	}
	return out, nil
}
