package payments

import (
	"context"
	"crypto/rand"
	"database/sql"
	"log"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"arc-backend/internal/platform/apierr"
)

// Notifier is the fire-and-forget notification hook; satisfied by
// notifications.Service.
type Notifier interface {
	Notify(ctx context.Context, customerID int64, typ, title, message string)
}

const notifyPayment = "PAYMENT_CONFIRMATION"

// payableStatuses are the contract states that accept new payments.
var payableStatuses = map[string]bool{
	"SIGNED":    true,
	"PAID":      true,
	"PICKED_UP": true,
}

type Service struct {
	store    PaymentStore
	notifier Notifier
	now      func() time.Time
	money    *message.Printer
}

func NewService(conn *sql.DB, notifier Notifier) *Service {
	return NewServiceWithStore(NewStore(conn), notifier)
}

func NewServiceWithStore(store PaymentStore, notifier Notifier) *Service {
	return &Service{
		store:    store,
		notifier: notifier,
		now:      time.Now,
		money:    message.NewPrinter(language.English),
	}
}

func (s *Service) newULID() string {
	id, err := ulid.New(ulid.Timestamp(s.now().UTC()), ulid.Monotonic(rand.Reader, 0))
	if err != nil {
		return ""
	}
	return id.String()
}

// pending is the amount still owed on the contract, PAID rows only.
func (s *Service) pending(ctx context.Context, c *ContractRef) (float64, error) {
	paid, err := s.store.SumPaid(ctx, c.ContractID)
	if err != nil {
		return 0, err
	}
	return c.TotalAmount - paid, nil
}

func (s *Service) Create(ctx context.Context, req CreatePaymentRequest) (*PaymentResponse, error) {
	if req.Amount <= 0 {
		return nil, apierr.Invalid("amount must be positive")
	}
	method := Method(req.Method)
	if !validMethods[method] {
		return nil, apierr.Invalidf("invalid payment method %q", req.Method)
	}
	status := StatusPending
	if req.Status != nil {
		status = Status(*req.Status)
		if !validStatuses[status] {
			return nil, apierr.Invalidf("invalid payment status %q", *req.Status)
		}
	}
	installments := 1
	if req.Installments != nil {
		if *req.Installments < 1 {
			return nil, apierr.Invalid("installments must be >= 1")
		}
		installments = *req.Installments
	}

	c, err := s.store.GetContract(ctx, req.ContractID)
	if err != nil {
		return nil, err
	}
	if !payableStatuses[c.Status] {
		return nil, apierr.Invalidf("contract %d does not accept payments while %s", c.ContractID, c.Status)
	}

	pending, err := s.pending(ctx, c)
	if err != nil {
		return nil, err
	}
	if req.Amount > pending {
		return nil, apierr.Conflict(s.money.Sprintf("amount exceeds pending balance of %.2f", pending))
	}

	p := &Payment{
		PaymentULID:  s.newULID(),
		ContractID:   req.ContractID,
		Amount:       req.Amount,
		Method:       method,
		Status:       status,
		Installments: installments,
	}
	if req.Reference != nil {
		p.Reference = sql.NullString{String: *req.Reference, Valid: true}
	}
	if req.DueDate != nil {
		p.DueDate = sql.NullTime{Time: *req.DueDate, Valid: true}
	}
	if req.PaidAt != nil {
		p.PaidAt = sql.NullTime{Time: *req.PaidAt, Valid: true}
	}
	if status == StatusPaid && !p.PaidAt.Valid {
		p.PaidAt = sql.NullTime{Time: s.now(), Valid: true}
	}

	if err := s.store.Insert(ctx, p); err != nil {
		return nil, err
	}

	if status == StatusPaid {
		s.notifyPaid(ctx, c.CustomerID, p)
		if err := s.checkContractFullyPaid(ctx, p.ContractID); err != nil {
			log.Printf("[WARN] payment %s: fully-paid check failed: %v", p.PaymentULID, err)
		}
	}

	return s.Get(ctx, p.PaymentID)
}

func (s *Service) Get(ctx context.Context, id int64) (*PaymentResponse, error) {
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := p.toDTO()
	return &resp, nil
}

func (s *Service) List(ctx context.Context, f Filter) ([]PaymentResponse, error) {
	if f.Status != nil && !validStatuses[*f.Status] {
		return nil, apierr.Invalidf("invalid payment status %q", *f.Status)
	}
	rows, err := s.store.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]PaymentResponse, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDTO())
	}
	return out, nil
}

// Update edits a payment. Any amount change, and any edit that puts the
// payment in PAID, is re-checked against the pending balance with this
// payment's own prior contribution excluded when it is already PAID.
func (s *Service) Update(ctx context.Context, id int64, req UpdatePaymentRequest) (*PaymentResponse, error) {
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	newAmount := p.Amount
	if req.Amount != nil {
		if *req.Amount <= 0 {
			return nil, apierr.Invalid("amount must be positive")
		}
		newAmount = *req.Amount
	}
	newMethod := p.Method
	if req.Method != nil {
		newMethod = Method(*req.Method)
		if !validMethods[newMethod] {
			return nil, apierr.Invalidf("invalid payment method %q", *req.Method)
		}
	}
	newStatus := p.Status
	if req.Status != nil {
		newStatus = Status(*req.Status)
		if !validStatuses[newStatus] {
			return nil, apierr.Invalidf("invalid payment status %q", *req.Status)
		}
	}
	newInstallments := p.Installments
	if req.Installments != nil {
		if *req.Installments < 1 {
			return nil, apierr.Invalid("installments must be >= 1")
		}
		newInstallments = *req.Installments
	}

	if req.Amount != nil || newStatus == StatusPaid {
		c, err := s.store.GetContract(ctx, p.ContractID)
		if err != nil {
			return nil, err
		}
		pending, err := s.pending(ctx, c)
		if err != nil {
			return nil, err
		}
		if p.Status == StatusPaid {
			pending += p.Amount
		}
		if newAmount > pending {
			return nil, apierr.Conflict(s.money.Sprintf("amount exceeds pending balance of %.2f", pending))
		}
	}

	becomingPaid := p.Status != StatusPaid && newStatus == StatusPaid

	p.Amount = newAmount
	p.Method = newMethod
	p.Status = newStatus
	p.Installments = newInstallments
	if req.Reference != nil {
		p.Reference = sql.NullString{String: *req.Reference, Valid: true}
	}
	if req.DueDate != nil {
		p.DueDate = sql.NullTime{Time: *req.DueDate, Valid: true}
	}
	if becomingPaid && !p.PaidAt.Valid {
		p.PaidAt = sql.NullTime{Time: s.now(), Valid: true}
	}

	if err := s.store.Update(ctx, p); err != nil {
		return nil, err
	}

	if becomingPaid {
		if c, err := s.store.GetContract(ctx, p.ContractID); err == nil {
			s.notifyPaid(ctx, c.CustomerID, p)
		}
		if err := s.checkContractFullyPaid(ctx, p.ContractID); err != nil {
			log.Printf("[WARN] payment %s: fully-paid check failed: %v", p.PaymentULID, err)
		}
	}

	return s.Get(ctx, id)
}

// MarkAsPaid settles a pending payment.
func (s *Service) MarkAsPaid(ctx context.Context, id int64) (*PaymentResponse, error) {
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status == StatusPaid {
		return nil, apierr.Conflict("payment is already PAID")
	}

	c, err := s.store.GetContract(ctx, p.ContractID)
	if err != nil {
		return nil, err
	}
	pending, err := s.pending(ctx, c)
	if err != nil {
		return nil, err
	}
	if p.Amount > pending {
		return nil, apierr.Conflict(s.money.Sprintf("amount exceeds pending balance of %.2f", pending))
	}

	paidAt := s.now()
	if err := s.store.MarkAsPaid(ctx, id, paidAt); err != nil {
		return nil, err
	}

	p.Status = StatusPaid
	p.PaidAt = sql.NullTime{Time: paidAt, Valid: true}
	s.notifyPaid(ctx, c.CustomerID, p)
	if err := s.checkContractFullyPaid(ctx, p.ContractID); err != nil {
		log.Printf("[WARN] payment %s: fully-paid check failed: %v", p.PaymentULID, err)
	}

	return s.Get(ctx, id)
}

// Delete removes a payment; settled payments are immutable.
func (s *Service) Delete(ctx context.Context, id int64) error {
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p.Status == StatusPaid {
		return apierr.Conflict("a PAID payment cannot be deleted")
	}
	return s.store.Delete(ctx, id)
}

func (s *Service) notifyPaid(ctx context.Context, customerID int64, p *Payment) {
	s.notifier.Notify(ctx, customerID, notifyPayment,
		"Payment received",
		s.money.Sprintf("Payment %s of %.2f was received.", p.PaymentULID, p.Amount))
}

// checkContractFullyPaid flips a SIGNED contract to PAID once the settled
// payments cover its total.
func (s *Service) checkContractFullyPaid(ctx context.Context, contractID int64) error {
	c, err := s.store.GetContract(ctx, contractID)
	if err != nil {
		return err
	}
	if c.Status != "SIGNED" {
		return nil
	}
	paid, err := s.store.SumPaid(ctx, contractID)
	if err != nil {
		return err
	}
	if paid >= c.TotalAmount {
		return s.store.SetContractStatus(ctx, contractID, "PAID")
	}
	return nil
}
