package contracts

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arc-backend/internal/platform/apierr"
)

type sentNote struct {
	customerID int64
	typ        string
}

type fakeNotifier struct{ sent []sentNote }

func (f *fakeNotifier) Notify(_ context.Context, customerID int64, typ, _, _ string) {
	f.sent = append(f.sent, sentNote{customerID: customerID, typ: typ})
}

type fakeStore struct {
	customers map[int64]bool
	products  map[int64]*ProductRef
	contracts map[int64]*Contract
	items     map[int64][]Item
	nextID    int64
	restocked []int64

	lastRangeField string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		customers: map[int64]bool{},
		products:  map[int64]*ProductRef{},
		contracts: map[int64]*Contract{},
		items:     map[int64][]Item{},
		nextID:    1,
	}
}

func (f *fakeStore) CustomerExists(_ context.Context, id int64) (bool, error) {
	return f.customers[id], nil
}

func (f *fakeStore) GetProduct(_ context.Context, id int64) (*ProductRef, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) CreateWithItems(_ context.Context, c *Contract, items []Item) error {
	c.ContractID = f.nextID
	f.nextID++
	cp := *c
	f.contracts[c.ContractID] = &cp
	for i := range items {
		items[i].ContractID = c.ContractID
		if p, ok := f.products[items[i].ProductID]; ok {
			p.Quantity -= items[i].Quantity
		}
	}
	f.items[c.ContractID] = items
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (*Contract, error) {
	c, ok := f.contracts[id]
	if !ok {
		return nil, apierr.NotFound("contract not found")
	}
	cp := *c
	cp.Items = f.items[id]
	return &cp, nil
}

func (f *fakeStore) GetByNumber(_ context.Context, number string) (*Contract, error) {
	for id, c := range f.contracts {
		if c.ContractNumber == number {
			return f.GetByID(context.Background(), id)
		}
	}
	return nil, apierr.NotFound("contract not found")
}

func (f *fakeStore) List(_ context.Context, _ Filter) ([]Contract, error) { return nil, nil }

func (f *fakeStore) ListLate(_ context.Context, _ time.Time) ([]Contract, error) { return nil, nil }

func (f *fakeStore) ListByDateRange(_ context.Context, field string, _, _ time.Time) ([]Contract, error) {
	f.lastRangeField = field
	return nil, nil
}

func (f *fakeStore) Update(_ context.Context, id int64, upd ContractUpdate) error {
	c, ok := f.contracts[id]
	if !ok {
		return apierr.NotFound("contract not found")
	}
	if upd.PickupDate != nil {
		c.PickupDate = *upd.PickupDate
	}
	if upd.ReturnDate != nil {
		c.ReturnDate = *upd.ReturnDate
	}
	return nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, id int64, st Status) error {
	c, ok := f.contracts[id]
	if !ok {
		return apierr.NotFound("contract not found")
	}
	c.Status = st
	return nil
}

func (f *fakeStore) Restock(_ context.Context, contractID int64) error {
	f.restocked = append(f.restocked, contractID)
	for _, it := range f.items[contractID] {
		if p, ok := f.products[it.ProductID]; ok {
			p.Quantity += it.Quantity
		}
	}
	return nil
}

func (f *fakeStore) DeleteCascade(_ context.Context, contractID int64) error {
	if _, ok := f.contracts[contractID]; !ok {
		return apierr.NotFound("contract not found")
	}
	for _, it := range f.items[contractID] {
		if p, ok := f.products[it.ProductID]; ok {
			p.Quantity += it.Quantity
		}
	}
	delete(f.contracts, contractID)
	delete(f.items, contractID)
	return nil
}

func (f *fakeStore) MonthlyCounts(_ context.Context) ([]MonthlyCount, error) { return nil, nil }

func (f *fakeStore) MonthlyRevenue(_ context.Context) ([]MonthlyRevenue, error) { return nil, nil }

func newTestService(store *fakeStore, notifier *fakeNotifier) *Service {
	svc := NewServiceWithStore(store, notifier)
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	svc.randN = func(int) int { return 42 }
	return svc
}

func TestCreateContractWithItems(t *testing.T) {
	store := newFakeStore()
	store.customers[1] = true
	store.products[10] = &ProductRef{ProductID: 10, RentalPrice: 50, Quantity: 5, Status: "AVAILABLE"}
	notifier := &fakeNotifier{}
	svc := newTestService(store, notifier)

	res, err := svc.Create(context.Background(), CreateContractRequest{
		CustomerID: 1,
		EmployeeID: 2,
		PickupDate: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		ReturnDate: time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
		Items:      []CreateItemRequest{{ProductID: 10, Quantity: 2}},
	})
	require.NoError(t, err)

	assert.Equal(t, 100.0, res.TotalAmount)
	assert.Equal(t, StatusDraft, res.Status)
	assert.Equal(t, 3, store.products[10].Quantity)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "RESERVATION_CONFIRMATION", notifier.sent[0].typ)
	assert.Equal(t, int64(1), notifier.sent[0].customerID)
}

func TestCreateContractNumberFormat(t *testing.T) {
	store := newFakeStore()
	store.customers[1] = true
	svc := newTestService(store, &fakeNotifier{})

	res, err := svc.Create(context.Background(), CreateContractRequest{
		CustomerID: 1,
		EmployeeID: 2,
		PickupDate: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		ReturnDate: time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^ARC-\d{4}-\d{5}$`), res.ContractNumber)
	assert.Equal(t, "ARC-2025-00042", res.ContractNumber)
}

func TestCreateContractFittingNotification(t *testing.T) {
	store := newFakeStore()
	store.customers[1] = true
	notifier := &fakeNotifier{}
	svc := newTestService(store, notifier)

	fitting := time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)
	_, err := svc.Create(context.Background(), CreateContractRequest{
		CustomerID:  1,
		EmployeeID:  2,
		FittingDate: &fitting,
		PickupDate:  time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		ReturnDate:  time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, notifier.sent, 2)
	assert.Equal(t, "FITTING_REMINDER", notifier.sent[1].typ)
}

func TestCreateContractRejectsBadDates(t *testing.T) {
	store := newFakeStore()
	store.customers[1] = true
	svc := newTestService(store, &fakeNotifier{})

	_, err := svc.Create(context.Background(), CreateContractRequest{
		CustomerID: 1,
		EmployeeID: 2,
		PickupDate: time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
		ReturnDate: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "return_date")
}

func TestCreateContractUnknownCustomer(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeNotifier{})
	_, err := svc.Create(context.Background(), CreateContractRequest{
		CustomerID: 99,
		EmployeeID: 2,
		PickupDate: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		ReturnDate: time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
	})
	require.Error(t, err)
	assert.Equal(t, 404, apierr.ToHTTPStatus(err))
}

func seedContract(store *fakeStore, status Status) int64 {
	id := store.nextID
	store.nextID++
	store.contracts[id] = &Contract{
		ContractID:     id,
		ContractNumber: "ARC-2025-11111",
		CustomerID:     1,
		EmployeeID:     2,
		PickupDate:     time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		ReturnDate:     time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
		Status:         status,
	}
	return id
}

func TestStatusTransitionTable(t *testing.T) {
	all := []Status{
		StatusDraft, StatusFittingScheduled, StatusSigned, StatusPaid,
		StatusPickedUp, StatusReturned, StatusLate, StatusCompleted, StatusCancelled,
	}
	allowed := map[Status][]Status{
		StatusDraft:            {StatusFittingScheduled, StatusSigned, StatusCancelled},
		StatusFittingScheduled: {StatusSigned, StatusDraft, StatusCancelled},
		StatusSigned:           {StatusPaid, StatusCancelled},
		StatusPaid:             {StatusPickedUp, StatusCancelled},
		StatusPickedUp:         {StatusReturned, StatusLate},
		StatusLate:             {StatusReturned},
		StatusReturned:         {StatusCompleted},
		StatusCompleted:        {},
		StatusCancelled:        {},
	}

	for _, from := range all {
		for _, to := range all {
			ok := false
			for _, a := range allowed[from] {
				if a == to {
					ok = true
				}
			}
			store := newFakeStore()
			store.customers[1] = true
			id := seedContract(store, from)
			svc := newTestService(store, &fakeNotifier{})

			_, err := svc.UpdateStatus(context.Background(), id, to)
			if ok {
				assert.NoError(t, err, "%s -> %s should be allowed", from, to)
			} else {
				require.Error(t, err, "%s -> %s should be rejected", from, to)
				assert.Contains(t, err.Error(), string(from))
				assert.Contains(t, err.Error(), string(to))
			}
		}
	}
}

func TestDraftToReturnedRejected(t *testing.T) {
	store := newFakeStore()
	id := seedContract(store, StatusDraft)
	svc := newTestService(store, &fakeNotifier{})

	_, err := svc.UpdateStatus(context.Background(), id, StatusReturned)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid status transition from DRAFT to RETURNED")
}

func TestReturnedTriggersRestock(t *testing.T) {
	store := newFakeStore()
	id := seedContract(store, StatusPickedUp)
	svc := newTestService(store, &fakeNotifier{})

	_, err := svc.UpdateStatus(context.Background(), id, StatusReturned)
	require.NoError(t, err)
	assert.Equal(t, []int64{id}, store.restocked)
}

func TestCancelRestocksOnlyAfterSigning(t *testing.T) {
	// cancel from SIGNED restocks
	store := newFakeStore()
	id := seedContract(store, StatusSigned)
	svc := newTestService(store, &fakeNotifier{})
	_, err := svc.UpdateStatus(context.Background(), id, StatusCancelled)
	require.NoError(t, err)
	assert.Len(t, store.restocked, 1)

	// cancel from DRAFT does not
	store = newFakeStore()
	id = seedContract(store, StatusDraft)
	svc = newTestService(store, &fakeNotifier{})
	_, err = svc.UpdateStatus(context.Background(), id, StatusCancelled)
	require.NoError(t, err)
	assert.Empty(t, store.restocked)
}

func TestFindByDateRange(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeNotifier{})
	day := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	// start == end is a valid single-day window
	_, err := svc.FindByDateRange(context.Background(), day, day, "pickupDate")
	require.NoError(t, err)
	assert.Equal(t, "pickup_date", store.lastRangeField)

	_, err = svc.FindByDateRange(context.Background(), day, day, "returnDate")
	require.NoError(t, err)
	assert.Equal(t, "return_date", store.lastRangeField)

	_, err = svc.FindByDateRange(context.Background(), day.AddDate(0, 0, 1), day, "pickupDate")
	require.Error(t, err)

	_, err = svc.FindByDateRange(context.Background(), day, day, "createdAt")
	require.Error(t, err)
}

func TestDeleteOnlyDraft(t *testing.T) {
	store := newFakeStore()
	store.products[10] = &ProductRef{ProductID: 10, RentalPrice: 50, Quantity: 3, Status: "AVAILABLE"}
	id := seedContract(store, StatusDraft)
	store.items[id] = []Item{{ContractID: id, ProductID: 10, Quantity: 2, UnitPrice: 50, Subtotal: 100}}
	svc := newTestService(store, &fakeNotifier{})

	require.NoError(t, svc.Delete(context.Background(), id))
	assert.Equal(t, 5, store.products[10].Quantity)
	_, err := svc.Get(context.Background(), id)
	require.Error(t, err)

	id = seedContract(store, StatusSigned)
	err = svc.Delete(context.Background(), id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DRAFT")
}

func TestUpdateFrozenContract(t *testing.T) {
	store := newFakeStore()
	id := seedContract(store, StatusCompleted)
	svc := newTestService(store, &fakeNotifier{})

	obs := "late pickup"
	_, err := svc.Update(context.Background(), id, UpdateContractRequest{Observations: &obs})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COMPLETED")
}
