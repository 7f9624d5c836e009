package payments

import (
	"context"
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
	contracts map[int64]*ContractRef
	payments  map[int64]*Payment
	nextID    int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		contracts: map[int64]*ContractRef{},
		payments:  map[int64]*Payment{},
		nextID:    1,
	}
}

func (f *fakeStore) GetContract(_ context.Context, contractID int64) (*ContractRef, error) {
	c, ok := f.contracts[contractID]
	if !ok {
		return nil, apierr.NotFound("contract not found")
	}
	cp := *c
	return &cp, nil
}

func (f *fakeStore) SetContractStatus(_ context.Context, contractID int64, status string) error {
	f.contracts[contractID].Status = status
	return nil
}

func (f *fakeStore) SumPaid(_ context.Context, contractID int64) (float64, error) {
	sum := 0.0
	for _, p := range f.payments {
		if p.ContractID == contractID && p.Status == StatusPaid {
			sum += p.Amount
		}
	}
	return sum, nil
}

func (f *fakeStore) Insert(_ context.Context, p *Payment) error {
	p.PaymentID = f.nextID
	f.nextID++
	cp := *p
	f.payments[p.PaymentID] = &cp
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (*Payment, error) {
	p, ok := f.payments[id]
	if !ok {
		return nil, apierr.NotFound("payment not found")
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) List(_ context.Context, _ Filter) ([]Payment, error) { return nil, nil }

func (f *fakeStore) Update(_ context.Context, p *Payment) error {
	if _, ok := f.payments[p.PaymentID]; !ok {
		return apierr.NotFound("payment not found")
	}
	cp := *p
	f.payments[p.PaymentID] = &cp
	return nil
}

func (f *fakeStore) MarkAsPaid(_ context.Context, id int64, paidAt time.Time) error {
	p, ok := f.payments[id]
	if !ok {
		return apierr.NotFound("payment not found")
	}
	p.Status = StatusPaid
	p.PaidAt.Time = paidAt
	p.PaidAt.Valid = true
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id int64) error {
	if _, ok := f.payments[id]; !ok {
		return apierr.NotFound("payment not found")
	}
	delete(f.payments, id)
	return nil
}

func newTestService(store *fakeStore, notifier *fakeNotifier) *Service {
	svc := NewServiceWithStore(store, notifier)
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestCreatePaymentOnDraftRejected(t *testing.T) {
	store := newFakeStore()
	store.contracts[1] = &ContractRef{ContractID: 1, CustomerID: 5, Status: "DRAFT", TotalAmount: 100}
	svc := newTestService(store, &fakeNotifier{})

	_, err := svc.Create(context.Background(), CreatePaymentRequest{ContractID: 1, Amount: 50, Method: "CASH"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DRAFT")
}

func TestCreatePaymentExceedsPending(t *testing.T) {
	store := newFakeStore()
	store.contracts[1] = &ContractRef{ContractID: 1, CustomerID: 5, Status: "SIGNED", TotalAmount: 100}
	svc := newTestService(store, &fakeNotifier{})

	_, err := svc.Create(context.Background(), CreatePaymentRequest{ContractID: 1, Amount: 150, Method: "PIX"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pending balance of 100.00")
	assert.Equal(t, 409, apierr.ToHTTPStatus(err))
}

func TestCreatePaidPaymentFlipsSignedContract(t *testing.T) {
	store := newFakeStore()
	store.contracts[1] = &ContractRef{ContractID: 1, CustomerID: 5, Status: "SIGNED", TotalAmount: 100}
	notifier := &fakeNotifier{}
	svc := newTestService(store, notifier)

	paid := "PAID"
	res, err := svc.Create(context.Background(), CreatePaymentRequest{
		ContractID: 1, Amount: 100, Method: "CREDIT_CARD", Status: &paid,
	})
	require.NoError(t, err)

	assert.Equal(t, StatusPaid, res.Status)
	require.NotNil(t, res.PaidAt)
	assert.Equal(t, "PAID", store.contracts[1].Status)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "PAYMENT_CONFIRMATION", notifier.sent[0].typ)
	assert.Equal(t, int64(5), notifier.sent[0].customerID)
}

func TestPartialPaymentsThenMarkAsPaid(t *testing.T) {
	store := newFakeStore()
	store.contracts[1] = &ContractRef{ContractID: 1, CustomerID: 5, Status: "SIGNED", TotalAmount: 100}
	notifier := &fakeNotifier{}
	svc := newTestService(store, notifier)

	paid := "PAID"
	_, err := svc.Create(context.Background(), CreatePaymentRequest{
		ContractID: 1, Amount: 60, Method: "CASH", Status: &paid,
	})
	require.NoError(t, err)
	assert.Equal(t, "SIGNED", store.contracts[1].Status)

	pending, err := svc.Create(context.Background(), CreatePaymentRequest{
		ContractID: 1, Amount: 40, Method: "CASH",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, pending.Status)
	assert.Equal(t, "SIGNED", store.contracts[1].Status)

	res, err := svc.MarkAsPaid(context.Background(), pending.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, res.Status)
	assert.Equal(t, "PAID", store.contracts[1].Status)
}

func TestMarkAsPaidTwiceRejected(t *testing.T) {
	store := newFakeStore()
	store.contracts[1] = &ContractRef{ContractID: 1, CustomerID: 5, Status: "SIGNED", TotalAmount: 100}
	svc := newTestService(store, &fakeNotifier{})

	paid := "PAID"
	res, err := svc.Create(context.Background(), CreatePaymentRequest{
		ContractID: 1, Amount: 50, Method: "CASH", Status: &paid,
	})
	require.NoError(t, err)

	_, err = svc.MarkAsPaid(context.Background(), res.PaymentID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already PAID")
}

func TestDeletePaidPaymentRejected(t *testing.T) {
	store := newFakeStore()
	store.contracts[1] = &ContractRef{ContractID: 1, CustomerID: 5, Status: "SIGNED", TotalAmount: 100}
	svc := newTestService(store, &fakeNotifier{})

	paid := "PAID"
	res, err := svc.Create(context.Background(), CreatePaymentRequest{
		ContractID: 1, Amount: 50, Method: "CASH", Status: &paid,
	})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), res.PaymentID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PAID")

	pending, err := svc.Create(context.Background(), CreatePaymentRequest{
		ContractID: 1, Amount: 20, Method: "CASH",
	})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), pending.PaymentID))
}

func TestUpdatePaymentExcludesOwnContribution(t *testing.T) {
	store := newFakeStore()
	store.contracts[1] = &ContractRef{ContractID: 1, CustomerID: 5, Status: "PICKED_UP", TotalAmount: 100}
	svc := newTestService(store, &fakeNotifier{})

	paid := "PAID"
	res, err := svc.Create(context.Background(), CreatePaymentRequest{
		ContractID: 1, Amount: 60, Method: "CASH", Status: &paid,
	})
	require.NoError(t, err)

	// raising this payment to the full total is fine, its own 60 is excluded
	amount := 100.0
	upd, err := svc.Update(context.Background(), res.PaymentID, UpdatePaymentRequest{Amount: &amount})
	require.NoError(t, err)
	assert.Equal(t, 100.0, upd.Amount)

	// but beyond the total is not
	amount = 120.0
	_, err = svc.Update(context.Background(), res.PaymentID, UpdatePaymentRequest{Amount: &amount})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pending balance of 100.00")
}

func TestUpdatePendingAmountCheckedAgainstBalance(t *testing.T) {
	store := newFakeStore()
	store.contracts[1] = &ContractRef{ContractID: 1, CustomerID: 5, Status: "SIGNED", TotalAmount: 100}
	svc := newTestService(store, &fakeNotifier{})

	res, err := svc.Create(context.Background(), CreatePaymentRequest{
		ContractID: 1, Amount: 50, Method: "CASH",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, res.Status)

	// a PENDING payment does not count toward SumPaid, so the full total is
	// still pending and the amount may grow up to it
	amount := 100.0
	upd, err := svc.Update(context.Background(), res.PaymentID, UpdatePaymentRequest{Amount: &amount})
	require.NoError(t, err)
	assert.Equal(t, 100.0, upd.Amount)

	amount = 150.0
	_, err = svc.Update(context.Background(), res.PaymentID, UpdatePaymentRequest{Amount: &amount})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pending balance of 100.00")
	assert.Equal(t, 409, apierr.ToHTTPStatus(err))
}

func TestUpdateBecomingPaidNotifies(t *testing.T) {
	store := newFakeStore()
	store.contracts[1] = &ContractRef{ContractID: 1, CustomerID: 5, Status: "SIGNED", TotalAmount: 100}
	notifier := &fakeNotifier{}
	svc := newTestService(store, notifier)

	res, err := svc.Create(context.Background(), CreatePaymentRequest{
		ContractID: 1, Amount: 100, Method: "BANK_TRANSFER",
	})
	require.NoError(t, err)
	assert.Empty(t, notifier.sent)

	paid := "PAID"
	upd, err := svc.Update(context.Background(), res.PaymentID, UpdatePaymentRequest{Status: &paid})
	require.NoError(t, err)
	require.NotNil(t, upd.PaidAt)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "PAYMENT_CONFIRMATION", notifier.sent[0].typ)
	assert.Equal(t, "PAID", store.contracts[1].Status)
}

func TestCreatePaymentInvalidMethod(t *testing.T) {
	store := newFakeStore()
	store.contracts[1] = &ContractRef{ContractID: 1, CustomerID: 5, Status: "SIGNED", TotalAmount: 100}
	svc := newTestService(store, &fakeNotifier{})

	_, err := svc.Create(context.Background(), CreatePaymentRequest{ContractID: 1, Amount: 10, Method: "CHECK"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CHECK")
}
