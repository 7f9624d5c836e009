package customers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Validation paths below reject before any query is issued, so a nil DB is fine.

func TestCreateCustomerRequiresName(t *testing.T) {
	svc := NewService(nil)
	_, err := svc.Create(context.Background(), CreateCustomerRequest{Name: "  ", Email: "a@b.c"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name")
}

func TestCreateCustomerBadBirthDate(t *testing.T) {
	svc := NewService(nil)
	bd := "01/02/1990"
	_, err := svc.Create(context.Background(), CreateCustomerRequest{Name: "Ana", Email: "a@b.c", BirthDate: &bd})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YYYY-MM-DD")
}

func TestBirthMonthRange(t *testing.T) {
	svc := NewService(nil)
	for _, month := range []int{0, 13, -1} {
		_, err := svc.ListByBirthMonth(context.Background(), month)
		require.Error(t, err, "month %d", month)
	}
}

func TestAdjustLoyaltyZeroPoints(t *testing.T) {
	svc := NewService(nil)
	_, err := svc.AdjustLoyalty(context.Background(), 1, LoyaltyRequest{Points: 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-zero")
}
