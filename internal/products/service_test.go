package products

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Validation paths below reject before any query is issued, so a nil DB is fine.

func TestCreateProductValidation(t *testing.T) {
	svc := NewService(nil)

	_, err := svc.Create(context.Background(), CreateProductRequest{Name: " ", RentalPrice: 10})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name")

	_, err = svc.Create(context.Background(), CreateProductRequest{Name: "Tux", RentalPrice: 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rental_price")

	_, err = svc.Create(context.Background(), CreateProductRequest{Name: "Tux", RentalPrice: 10, Quantity: -1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quantity")
}

func TestListRejectsUnknownStatus(t *testing.T) {
	svc := NewService(nil)
	bad := "BROKEN"
	_, err := svc.List(context.Background(), ListFilter{Status: &bad})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BROKEN")
}

func TestProductStatusSet(t *testing.T) {
	for _, st := range []string{StatusAvailable, StatusRented, StatusMaintenance, StatusRetired} {
		assert.True(t, validStatus(st), st)
	}
	assert.False(t, validStatus("LOST"))
}
