package contractitems

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arc-backend/internal/platform/apierr"
)

type fakeStore struct {
	contractStatus map[int64]string
	products       map[int64]*ProductRef
	items          map[int64]*Item
	totals         map[int64]float64
	nextID         int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		contractStatus: map[int64]string{},
		products:       map[int64]*ProductRef{},
		items:          map[int64]*Item{},
		totals:         map[int64]float64{},
		nextID:         1,
	}
}

func (f *fakeStore) ContractStatus(_ context.Context, contractID int64) (string, error) {
	st, ok := f.contractStatus[contractID]
	if !ok {
		return "", apierr.NotFound("contract not found")
	}
	return st, nil
}

func (f *fakeStore) GetProduct(_ context.Context, productID int64) (*ProductRef, error) {
	p, ok := f.products[productID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) GetByID(_ context.Context, itemID int64) (*Item, error) {
	it, ok := f.items[itemID]
	if !ok {
		return nil, apierr.NotFound("contract item not found")
	}
	cp := *it
	return &cp, nil
}

func (f *fakeStore) ListByContract(_ context.Context, contractID int64) ([]Item, error) {
	var out []Item
	for _, it := range f.items {
		if it.ContractID == contractID {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (f *fakeStore) ListByProduct(_ context.Context, productID int64) ([]Item, error) {
	var out []Item
	for _, it := range f.items {
		if it.ProductID == productID {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (f *fakeStore) recompute(contractID int64) {
	total := 0.0
	for _, it := range f.items {
		if it.ContractID == contractID {
			total += it.Subtotal
		}
	}
	f.totals[contractID] = total
}

func (f *fakeStore) Insert(_ context.Context, it *Item) error {
	if p := f.products[it.ProductID]; p != nil {
		p.Quantity -= it.Quantity
	}
	it.ItemID = f.nextID
	f.nextID++
	cp := *it
	f.items[it.ItemID] = &cp
	f.recompute(it.ContractID)
	return nil
}

func (f *fakeStore) Update(_ context.Context, it *Item, stockDelta int) error {
	if p := f.products[it.ProductID]; p != nil {
		p.Quantity -= stockDelta
	}
	cp := *it
	f.items[it.ItemID] = &cp
	f.recompute(it.ContractID)
	return nil
}

func (f *fakeStore) Delete(_ context.Context, it *Item) error {
	if p := f.products[it.ProductID]; p != nil {
		p.Quantity += it.Quantity
	}
	delete(f.items, it.ItemID)
	f.recompute(it.ContractID)
	return nil
}

func TestCreateItemDefaultsUnitPrice(t *testing.T) {
	store := newFakeStore()
	store.contractStatus[1] = "DRAFT"
	store.products[10] = &ProductRef{ProductID: 10, RentalPrice: 80, Quantity: 4, Status: "AVAILABLE"}
	svc := NewServiceWithStore(store)

	res, err := svc.Create(context.Background(), CreateItemRequest{ContractID: 1, ProductID: 10, Quantity: 3})
	require.NoError(t, err)

	assert.Equal(t, 80.0, res.UnitPrice)
	assert.Equal(t, 240.0, res.Subtotal)
	assert.Equal(t, 1, store.products[10].Quantity)
	assert.Equal(t, 240.0, store.totals[1])
}

func TestCreateItemInsufficientStock(t *testing.T) {
	store := newFakeStore()
	store.contractStatus[1] = "DRAFT"
	store.products[10] = &ProductRef{ProductID: 10, RentalPrice: 80, Quantity: 2, Status: "AVAILABLE"}
	svc := NewServiceWithStore(store)

	_, err := svc.Create(context.Background(), CreateItemRequest{ContractID: 1, ProductID: 10, Quantity: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requested 3, available 2")
	assert.Equal(t, 409, apierr.ToHTTPStatus(err))
}

func TestCreateItemProductNotAvailable(t *testing.T) {
	store := newFakeStore()
	store.contractStatus[1] = "DRAFT"
	store.products[10] = &ProductRef{ProductID: 10, RentalPrice: 80, Quantity: 2, Status: "MAINTENANCE"}
	svc := NewServiceWithStore(store)

	_, err := svc.Create(context.Background(), CreateItemRequest{ContractID: 1, ProductID: 10, Quantity: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAINTENANCE")
}

func TestCreateItemContractNotEditable(t *testing.T) {
	store := newFakeStore()
	store.contractStatus[1] = "SIGNED"
	store.products[10] = &ProductRef{ProductID: 10, RentalPrice: 80, Quantity: 2, Status: "AVAILABLE"}
	svc := NewServiceWithStore(store)

	_, err := svc.Create(context.Background(), CreateItemRequest{ContractID: 1, ProductID: 10, Quantity: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SIGNED")
}

func seedItem(store *fakeStore, contractID, productID int64, qty int, price float64) int64 {
	id := store.nextID
	store.nextID++
	store.items[id] = &Item{
		ItemID:     id,
		ContractID: contractID,
		ProductID:  productID,
		Quantity:   qty,
		UnitPrice:  price,
		Subtotal:   float64(qty) * price,
	}
	store.recompute(contractID)
	return id
}

func TestUpdateItemQuantityIncrease(t *testing.T) {
	store := newFakeStore()
	store.contractStatus[1] = "FITTING_SCHEDULED"
	store.products[10] = &ProductRef{ProductID: 10, RentalPrice: 80, Quantity: 3, Status: "AVAILABLE"}
	id := seedItem(store, 1, 10, 2, 80)
	svc := NewServiceWithStore(store)

	qty := 4
	res, err := svc.Update(context.Background(), id, UpdateItemRequest{Quantity: &qty})
	require.NoError(t, err)

	assert.Equal(t, 4, res.Quantity)
	assert.Equal(t, 320.0, res.Subtotal)
	assert.Equal(t, 1, store.products[10].Quantity)
	assert.Equal(t, 320.0, store.totals[1])
}

func TestUpdateItemIncreaseBeyondStock(t *testing.T) {
	store := newFakeStore()
	store.contractStatus[1] = "DRAFT"
	store.products[10] = &ProductRef{ProductID: 10, RentalPrice: 80, Quantity: 1, Status: "AVAILABLE"}
	id := seedItem(store, 1, 10, 2, 80)
	svc := NewServiceWithStore(store)

	qty := 4
	_, err := svc.Update(context.Background(), id, UpdateItemRequest{Quantity: &qty})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requested 2 more, available 1")
}

func TestUpdateItemQuantityDecreaseReturnsStock(t *testing.T) {
	store := newFakeStore()
	store.contractStatus[1] = "DRAFT"
	store.products[10] = &ProductRef{ProductID: 10, RentalPrice: 80, Quantity: 0, Status: "AVAILABLE"}
	id := seedItem(store, 1, 10, 3, 80)
	svc := NewServiceWithStore(store)

	qty := 1
	res, err := svc.Update(context.Background(), id, UpdateItemRequest{Quantity: &qty})
	require.NoError(t, err)

	assert.Equal(t, 80.0, res.Subtotal)
	assert.Equal(t, 2, store.products[10].Quantity)
	assert.Equal(t, 80.0, store.totals[1])
}

func TestDeleteItemRestoresStockAndTotal(t *testing.T) {
	store := newFakeStore()
	store.contractStatus[1] = "DRAFT"
	store.products[10] = &ProductRef{ProductID: 10, RentalPrice: 80, Quantity: 0, Status: "AVAILABLE"}
	seedItem(store, 1, 10, 1, 50)
	id := seedItem(store, 1, 10, 2, 80)
	svc := NewServiceWithStore(store)

	require.NoError(t, svc.Delete(context.Background(), id))
	assert.Equal(t, 2, store.products[10].Quantity)
	assert.Equal(t, 50.0, store.totals[1])
}
