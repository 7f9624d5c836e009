package notifications

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"arc-backend/internal/platform/apierr"
)

type NotificationStore interface {
	Insert(ctx context.Context, n *Notification) error
	GetByID(ctx context.Context, id int64) (*Notification, error)
	ListByCustomer(ctx context.Context, customerID int64, onlyUnread bool, limit, offset int) ([]Notification, error)
	MarkRead(ctx context.Context, id int64, readAt time.Time) error
	MarkAllRead(ctx context.Context, customerID int64, readAt time.Time) (int64, error)
	CountUnread(ctx context.Context, customerID int64) (int64, error)
	CustomerExists(ctx context.Context, customerID int64) (bool, error)
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) NotificationStore { return &Store{db: db} }

func (s *Store) Insert(ctx context.Context, n *Notification) error {
	const q = `
INSERT INTO notifications (customer_id, type, title, message, is_read, sent_at)
VALUES (?, ?, ?, ?, 0, ?)
`
	res, err := s.db.ExecContext(ctx, q, n.CustomerID, n.Type, n.Title, n.Message, n.SentAt)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	n.NotificationID = id
	return nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (*Notification, error) {
	const q = `
SELECT notification_id, customer_id, type, title, message, is_read, sent_at, read_at
FROM notifications WHERE notification_id = ?
`
	var n Notification
	var isRead int
	err := s.db.QueryRowContext(ctx, q, id).Scan(
		&n.NotificationID, &n.CustomerID, &n.Type, &n.Title, &n.Message, &isRead, &n.SentAt, &n.ReadAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierr.NotFound("notification not found")
	}
	if err != nil {
		return nil, err
	}
	n.IsRead = isRead != 0
	return &n, nil
}

func (s *Store) ListByCustomer(ctx context.Context, customerID int64, onlyUnread bool, limit, offset int) ([]Notification, error) {
	q := `
SELECT notification_id, customer_id, type, title, message, is_read, sent_at, read_at
FROM notifications WHERE customer_id = ?`
	args := []any{customerID}
	if onlyUnread {
		q += ` AND is_read = 0`
	}
	q += ` ORDER BY sent_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		var isRead int
		if err := rows.Scan(&n.NotificationID, &n.CustomerID, &n.Type, &n.Title, &n.Message, &isRead, &n.SentAt, &n.ReadAt); err != nil {
			return nil, err
		}
		n.IsRead = isRead != 0
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) MarkRead(ctx context.Context, id int64, readAt time.Time) error {
	const q = `UPDATE notifications SET is_read = 1, read_at = ? WHERE notification_id = ?`
	_, err := s.db.ExecContext(ctx, q, readAt, id)
	return err
}

// MarkAllRead only touches unread rows so read_at of already-read rows is preserved.
func (s *Store) MarkAllRead(ctx context.Context, customerID int64, readAt time.Time) (int64, error) {
	const q = `UPDATE notifications SET is_read = 1, read_at = ? WHERE customer_id = ? AND is_read = 0`
	res, err := s.db.ExecContext(ctx, q, readAt, customerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) CountUnread(ctx context.Context, customerID int64) (int64, error) {
	const q = `SELECT COUNT(*) FROM notifications WHERE customer_id = ? AND is_read = 0`
	var n int64
	if err := s.db.QueryRowContext(ctx, q, customerID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Store) CustomerExists(ctx context.Context, customerID int64) (bool, error) {
	const q = `SELECT 1 FROM customers WHERE customer_id = ? LIMIT 1`
	var one int
	err := s.db.QueryRowContext(ctx, q, customerID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
