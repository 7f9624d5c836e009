package contractitems

import (
	"context"
	"database/sql"

	"arc-backend/internal/platform/apierr"
)

type Service struct {
	store ItemStore
}

func NewService(conn *sql.DB) *Service { return &Service{store: NewStore(conn)} }

func NewServiceWithStore(store ItemStore) *Service { return &Service{store: store} }

// editable reports whether items on a contract in the given status may change.
func editable(status string) bool {
	return status == "DRAFT" || status == "FITTING_SCHEDULED"
}

func (s *Service) guardContract(ctx context.Context, contractID int64) error {
	st, err := s.store.ContractStatus(ctx, contractID)
	if err != nil {
		return err
	}
	if !editable(st) {
		return apierr.Invalidf("items can only be modified while the contract is DRAFT or FITTING_SCHEDULED, current status is %s", st)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, req CreateItemRequest) (*ItemResponse, error) {
	if req.Quantity < 1 {
		return nil, apierr.Invalid("quantity must be >= 1")
	}
	if err := s.guardContract(ctx, req.ContractID); err != nil {
		return nil, err
	}

	p, err := s.store.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apierr.NotFound("product not found")
	}
	if p.Status != "AVAILABLE" {
		return nil, apierr.Conflictf("product %d is %s, not AVAILABLE", p.ProductID, p.Status)
	}
	if p.Quantity < req.Quantity {
		return nil, apierr.Conflictf("insufficient stock for product %d: requested %d, available %d",
			p.ProductID, req.Quantity, p.Quantity)
	}

	price := p.RentalPrice
	if req.UnitPrice != nil {
		price = *req.UnitPrice
	}

	it := &Item{
		ContractID: req.ContractID,
		ProductID:  req.ProductID,
		Quantity:   req.Quantity,
		UnitPrice:  price,
		Subtotal:   float64(req.Quantity) * price,
	}
	if err := s.store.Insert(ctx, it); err != nil {
		return nil, err
	}
	return s.Get(ctx, it.ItemID)
}

func (s *Service) Get(ctx context.Context, itemID int64) (*ItemResponse, error) {
	it, err := s.store.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	resp := it.toDTO()
	return &resp, nil
}

func (s *Service) ListByContract(ctx context.Context, contractID int64) ([]ItemResponse, error) {
	items, err := s.store.ListByContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	return toDTOs(items), nil
}

func (s *Service) ListByProduct(ctx context.Context, productID int64) ([]ItemResponse, error) {
	items, err := s.store.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return toDTOs(items), nil
}

func toDTOs(items []Item) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for i := range items {
		out = append(out, items[i].toDTO())
	}
	return out
}

// Update changes quantity or unit price. A quantity increase takes the delta
// from product stock; a decrease returns it.
func (s *Service) Update(ctx context.Context, itemID int64, req UpdateItemRequest) (*ItemResponse, error) {
	it, err := s.store.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.guardContract(ctx, it.ContractID); err != nil {
		return nil, err
	}

	newQty := it.Quantity
	if req.Quantity != nil {
		if *req.Quantity < 1 {
			return nil, apierr.Invalid("quantity must be >= 1")
		}
		newQty = *req.Quantity
	}
	newPrice := it.UnitPrice
	if req.UnitPrice != nil {
		newPrice = *req.UnitPrice
	}

	delta := newQty - it.Quantity
	if delta > 0 {
		p, err := s.store.GetProduct(ctx, it.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, apierr.NotFound("product not found")
		}
		if p.Quantity < delta {
			return nil, apierr.Conflictf("insufficient stock for product %d: requested %d more, available %d",
				p.ProductID, delta, p.Quantity)
		}
	}

	it.Quantity = newQty
	it.UnitPrice = newPrice
	it.Subtotal = float64(newQty) * newPrice
	if err := s.store.Update(ctx, it, delta); err != nil {
		return nil, err
	}
	return s.Get(ctx, itemID)
}

// Delete removes the item and returns its full quantity to stock.
func (s *Service) Delete(ctx context.Context, itemID int64) error {
	it, err := s.store.GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	if err := s.guardContract(ctx, it.ContractID); err != nil {
		return err
	}
	return s.store.Delete(ctx, it)
}
