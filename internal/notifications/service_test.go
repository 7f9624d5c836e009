package notifications

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arc-backend/internal/platform/apierr"
)

type fakeStore struct {
	customers map[int64]bool
	rows      map[int64]*Notification
	nextID    int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{customers: map[int64]bool{}, rows: map[int64]*Notification{}, nextID: 1}
}

func (f *fakeStore) Insert(_ context.Context, n *Notification) error {
	n.NotificationID = f.nextID
	f.nextID++
	cp := *n
	f.rows[n.NotificationID] = &cp
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (*Notification, error) {
	n, ok := f.rows[id]
	if !ok {
		return nil, apierr.NotFound("notification not found")
	}
	cp := *n
	return &cp, nil
}

func (f *fakeStore) ListByCustomer(_ context.Context, customerID int64, onlyUnread bool, _, _ int) ([]Notification, error) {
	var out []Notification
	for _, n := range f.rows {
		if n.CustomerID != customerID {
			continue
		}
		if onlyUnread && n.IsRead {
			continue
		}
		out = append(out, *n)
	}
	return out, nil
}

func (f *fakeStore) MarkRead(_ context.Context, id int64, readAt time.Time) error {
	n, ok := f.rows[id]
	if !ok {
		return apierr.NotFound("notification not found")
	}
	n.IsRead = true
	n.ReadAt = sql.NullTime{Time: readAt, Valid: true}
	return nil
}

func (f *fakeStore) MarkAllRead(_ context.Context, customerID int64, readAt time.Time) (int64, error) {
	var count int64
	for _, n := range f.rows {
		if n.CustomerID == customerID && !n.IsRead {
			n.IsRead = true
			n.ReadAt = sql.NullTime{Time: readAt, Valid: true}
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) CountUnread(_ context.Context, customerID int64) (int64, error) {
	var count int64
	for _, n := range f.rows {
		if n.CustomerID == customerID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) CustomerExists(_ context.Context, customerID int64) (bool, error) {
	return f.customers[customerID], nil
}

func TestCreateNotification(t *testing.T) {
	store := newFakeStore()
	store.customers[1] = true
	svc := NewServiceWithStore(store)

	res, err := svc.Create(context.Background(), CreateNotificationRequest{
		CustomerID: 1, Type: "GENERAL", Title: "hello", Message: "welcome",
	})
	require.NoError(t, err)
	assert.False(t, res.IsRead)
	assert.False(t, res.SentAt.IsZero())

	_, err = svc.Create(context.Background(), CreateNotificationRequest{
		CustomerID: 2, Type: "GENERAL", Title: "hello", Message: "welcome",
	})
	require.Error(t, err)
	assert.Equal(t, 404, apierr.ToHTTPStatus(err))

	_, err = svc.Create(context.Background(), CreateNotificationRequest{
		CustomerID: 1, Type: "SMOKE_SIGNAL", Title: "hello", Message: "welcome",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SMOKE_SIGNAL")
}

func TestMarkAsReadIdempotent(t *testing.T) {
	store := newFakeStore()
	store.customers[1] = true
	svc := NewServiceWithStore(store)

	created, err := svc.Create(context.Background(), CreateNotificationRequest{
		CustomerID: 1, Type: "RETURN_ALERT", Title: "return due", Message: "tomorrow",
	})
	require.NoError(t, err)

	first, err := svc.MarkAsRead(context.Background(), created.NotificationID)
	require.NoError(t, err)
	assert.True(t, first.IsRead)
	require.NotNil(t, first.ReadAt)

	second, err := svc.MarkAsRead(context.Background(), created.NotificationID)
	require.NoError(t, err)
	assert.True(t, second.IsRead)
	assert.Equal(t, first.ReadAt.Unix(), second.ReadAt.Unix())
}

func TestMarkAllAndUnreadCount(t *testing.T) {
	store := newFakeStore()
	store.customers[1] = true
	svc := NewServiceWithStore(store)

	for i := 0; i < 3; i++ {
		_, err := svc.Create(context.Background(), CreateNotificationRequest{
			CustomerID: 1, Type: "GENERAL", Title: "t", Message: "m",
		})
		require.NoError(t, err)
	}

	n, err := svc.CountUnreadByCustomerID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	marked, err := svc.MarkAllAsRead(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), marked)

	// a second pass touches nothing
	marked, err = svc.MarkAllAsRead(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), marked)

	n, err = svc.CountUnreadByCustomerID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestNotifyNeverFails(t *testing.T) {
	store := newFakeStore()
	svc := NewServiceWithStore(store)

	// unknown customer, creation fails internally but Notify stays silent
	svc.Notify(context.Background(), 99, "GENERAL", "t", "m")
	assert.Empty(t, store.rows)
}
