package contracts

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"arc-backend/internal/platform/apierr"
)

// Notifier is the fire-and-forget notification hook; satisfied by
// notifications.Service.
type Notifier interface {
	Notify(ctx context.Context, customerID int64, typ, title, message string)
}

const (
	notifyReservation = "RESERVATION_CONFIRMATION"
	notifyFitting     = "FITTING_REMINDER"
)

type Service struct {
	store    ContractStore
	notifier Notifier
	now      func() time.Time
	randN    func(n int) int
}

func NewService(conn *sql.DB, notifier Notifier) *Service {
	return &Service{store: NewStore(conn), notifier: notifier, now: time.Now, randN: rand.IntN}
}

func NewServiceWithStore(store ContractStore, notifier Notifier) *Service {
	return &Service{store: store, notifier: notifier, now: time.Now, randN: rand.IntN}
}

// newContractNumber builds "ARC-<year>-<5-digit-random>". Collisions are not
// checked here; the unique index on contract_number backstops the negligible
// probability.
func (s *Service) newContractNumber() string {
	return fmt.Sprintf("ARC-%d-%05d", s.now().Year(), s.randN(100000))
}

func (s *Service) Create(ctx context.Context, req CreateContractRequest) (*ContractResponse, error) {
	ok, err := s.store.CustomerExists(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apierr.NotFound("customer not found")
	}
	if req.ReturnDate.Before(req.PickupDate) {
		return nil, apierr.Invalid("return_date must not be before pickup_date")
	}

	status := StatusDraft
	if req.Status != nil {
		status = Status(*req.Status)
		if !ValidStatus(status) {
			return nil, apierr.Invalidf("invalid status %q", *req.Status)
		}
	}

	var items []Item
	var total float64
	for _, in := range req.Items {
		if in.Quantity < 1 {
			return nil, apierr.Invalid("item quantity must be >= 1")
		}
		price := 0.0
		if in.UnitPrice != nil {
			price = *in.UnitPrice
		} else {
			p, err := s.store.GetProduct(ctx, in.ProductID)
			if err != nil {
				return nil, err
			}
			if p != nil {
				price = p.RentalPrice
			} else {
				log.Printf("[WARN] contract create: product %d missing, unit price defaults to 0", in.ProductID)
			}
		}
		subtotal := float64(in.Quantity) * price
		total += subtotal
		items = append(items, Item{
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			UnitPrice: price,
			Subtotal:  subtotal,
		})
	}

	c := &Contract{
		ContractNumber: s.newContractNumber(),
		CustomerID:     req.CustomerID,
		EmployeeID:     req.EmployeeID,
		PickupDate:     req.PickupDate,
		ReturnDate:     req.ReturnDate,
		Status:         status,
		TotalAmount:    total,
	}
	if req.EventID != nil {
		c.EventID = sql.NullInt64{Int64: *req.EventID, Valid: true}
	}
	if req.FittingDate != nil {
		c.FittingDate = sql.NullTime{Time: *req.FittingDate, Valid: true}
	}
	if req.DepositAmount != nil {
		c.DepositAmount = sql.NullFloat64{Float64: *req.DepositAmount, Valid: true}
	}
	if req.SpecialConditions != nil {
		c.SpecialConditions = sql.NullString{String: *req.SpecialConditions, Valid: true}
	}
	if req.Observations != nil {
		c.Observations = sql.NullString{String: *req.Observations, Valid: true}
	}

	if err := s.store.CreateWithItems(ctx, c, items); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, c.CustomerID, notifyReservation,
		"Reservation confirmed",
		fmt.Sprintf("Your reservation %s is confirmed. Pickup on %s.", c.ContractNumber, c.PickupDate.Format("2006-01-02")))
	if c.FittingDate.Valid {
		s.notifier.Notify(ctx, c.CustomerID, notifyFitting,
			"Fitting scheduled",
			fmt.Sprintf("A fitting for reservation %s is scheduled on %s.", c.ContractNumber, c.FittingDate.Time.Format("2006-01-02")))
	}

	return s.Get(ctx, c.ContractID)
}

func (s *Service) Get(ctx context.Context, id int64) (*ContractResponse, error) {
	c, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := c.toDTO()
	return &resp, nil
}

func (s *Service) GetByNumber(ctx context.Context, number string) (*ContractResponse, error) {
	c, err := s.store.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	resp := c.toDTO()
	return &resp, nil
}

func (s *Service) List(ctx context.Context, f Filter) ([]ContractResponse, error) {
	if f.Status != nil && !ValidStatus(*f.Status) {
		return nil, apierr.Invalidf("invalid status %q", *f.Status)
	}
	rows, err := s.store.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return toDTOs(rows), nil
}

func (s *Service) ListLate(ctx context.Context) ([]ContractResponse, error) {
	rows, err := s.store.ListLate(ctx, s.now())
	if err != nil {
		return nil, err
	}
	return toDTOs(rows), nil
}

var rangeFields = map[string]string{
	"pickupDate": "pickup_date",
	"returnDate": "return_date",
}

// FindByDateRange accepts start == end; start after end is rejected.
func (s *Service) FindByDateRange(ctx context.Context, start, end time.Time, field string) ([]ContractResponse, error) {
	col, ok := rangeFields[field]
	if !ok {
		return nil, apierr.Invalidf("field must be pickupDate or returnDate, got %q", field)
	}
	if start.After(end) {
		return nil, apierr.Invalid("start date must not be after end date")
	}
	rows, err := s.store.ListByDateRange(ctx, col, start, end)
	if err != nil {
		return nil, err
	}
	return toDTOs(rows), nil
}

// Update edits contract fields. COMPLETED and CANCELLED contracts are frozen.
func (s *Service) Update(ctx context.Context, id int64, req UpdateContractRequest) (*ContractResponse, error) {
	c, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status == StatusCompleted || c.Status == StatusCancelled {
		return nil, apierr.Invalidf("cannot update a %s contract", c.Status)
	}

	now := s.now()
	if req.FittingDate != nil && !req.FittingDate.After(now) {
		return nil, apierr.Invalid("fitting_date must be in the future")
	}
	if req.PickupDate != nil && !req.PickupDate.After(now) {
		return nil, apierr.Invalid("pickup_date must be in the future")
	}

	// return/pickup ordering: compare whichever of the new and stored values apply
	switch {
	case req.ReturnDate != nil && req.PickupDate != nil:
		if !req.ReturnDate.After(*req.PickupDate) {
			return nil, apierr.Invalid("return_date must be after pickup_date")
		}
	case req.ReturnDate != nil:
		if !req.ReturnDate.After(c.PickupDate) {
			return nil, apierr.Invalid("return_date must be after pickup_date")
		}
	case req.PickupDate != nil:
		if !c.ReturnDate.After(*req.PickupDate) {
			return nil, apierr.Invalid("return_date must be after pickup_date")
		}
	}

	upd := ContractUpdate{
		EmployeeID:        req.EmployeeID,
		EventID:           req.EventID,
		FittingDate:       req.FittingDate,
		PickupDate:        req.PickupDate,
		ReturnDate:        req.ReturnDate,
		DepositAmount:     req.DepositAmount,
		SpecialConditions: req.SpecialConditions,
		Observations:      req.Observations,
	}
	if err := s.store.Update(ctx, id, upd); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// UpdateStatus validates the transition against the state machine and runs the
// transition side effects after the new status is persisted.
func (s *Service) UpdateStatus(ctx context.Context, id int64, newStatus Status) (*ContractResponse, error) {
	if !ValidStatus(newStatus) {
		return nil, apierr.Invalidf("invalid status %q", newStatus)
	}
	c, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(c.Status, newStatus) {
		return nil, apierr.Invalidf("invalid status transition from %s to %s", c.Status, newStatus)
	}

	if err := s.store.UpdateStatus(ctx, id, newStatus); err != nil {
		return nil, err
	}

	switch {
	case newStatus == StatusReturned:
		if err := s.store.Restock(ctx, id); err != nil {
			return nil, err
		}
	case newStatus == StatusCancelled && restockOnCancel[c.Status]:
		if err := s.store.Restock(ctx, id); err != nil {
			return nil, err
		}
	}

	return s.Get(ctx, id)
}

// Delete removes a contract; only DRAFT contracts can be deleted. Item
// quantities go back to stock first.
func (s *Service) Delete(ctx context.Context, id int64) error {
	c, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c.Status != StatusDraft {
		return apierr.Invalidf("only DRAFT contracts can be deleted, current status is %s", c.Status)
	}
	return s.store.DeleteCascade(ctx, id)
}

func (s *Service) MonthlyCounts(ctx context.Context) ([]MonthlyCount, error) {
	return s.store.MonthlyCounts(ctx)
}

func (s *Service) MonthlyRevenue(ctx context.Context) ([]MonthlyRevenue, error) {
	return s.store.MonthlyRevenue(ctx)
}

func toDTOs(rows []Contract) []ContractResponse {
	out := make([]ContractResponse, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDTO())
	}
	return out
}
