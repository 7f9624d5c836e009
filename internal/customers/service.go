package customers

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	mysql "github.com/go-sql-driver/mysql"

	"arc-backend/internal/platform/apierr"
)

type Service struct {
	db    *sql.DB
	store *Store
}

func NewService(db *sql.DB) *Service { return &Service{db: db, store: NewStore(db)} }

func parseBirthDate(s string) (sql.NullTime, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return sql.NullTime{}, apierr.Invalid("birth_date must be YYYY-MM-DD")
	}
	return sql.NullTime{Time: t, Valid: true}, nil
}

func (s *Service) Create(ctx context.Context, req CreateCustomerRequest) (*CustomerResponse, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, apierr.Invalid("name is required")
	}

	c := &Customer{Name: req.Name, Email: req.Email}
	if req.Phone != nil {
		c.Phone = sql.NullString{String: *req.Phone, Valid: true}
	}
	if req.Document != nil {
		c.Document = sql.NullString{String: *req.Document, Valid: true}
	}
	if req.Address != nil {
		c.Address = sql.NullString{String: *req.Address, Valid: true}
	}
	if req.BirthDate != nil && *req.BirthDate != "" {
		bd, err := parseBirthDate(*req.BirthDate)
		if err != nil {
			return nil, err
		}
		c.BirthDate = bd
	}

	if err := s.store.Insert(ctx, c); err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			return nil, apierr.Conflict("email or document already registered")
		}
		return nil, err
	}
	return s.Get(ctx, c.CustomerID)
}

func (s *Service) Get(ctx context.Context, id int64) (*CustomerResponse, error) {
	c, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := c.toDTO()
	return &resp, nil
}

func (s *Service) List(ctx context.Context, search string, limit, offset int) ([]CustomerResponse, error) {
	rows, err := s.store.List(ctx, search, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]CustomerResponse, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDTO())
	}
	return out, nil
}

func (s *Service) ListByBirthMonth(ctx context.Context, month int) ([]CustomerResponse, error) {
	if month < 1 || month > 12 {
		return nil, apierr.Invalid("month must be between 1 and 12")
	}
	rows, err := s.store.ListByBirthMonth(ctx, month)
	if err != nil {
		return nil, err
	}
	out := make([]CustomerResponse, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDTO())
	}
	return out, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateCustomerRequest) (*CustomerResponse, error) {
	if _, err := s.store.GetByID(ctx, id); err != nil {
		return nil, err
	}

	sets := []string{}
	args := []any{}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, apierr.Invalid("name must not be empty")
		}
		sets = append(sets, "name = ?")
		args = append(args, *req.Name)
	}
	if req.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *req.Email)
	}
	if req.Phone != nil {
		sets = append(sets, "phone = ?")
		args = append(args, *req.Phone)
	}
	if req.Document != nil {
		sets = append(sets, "document = ?")
		args = append(args, *req.Document)
	}
	if req.Address != nil {
		sets = append(sets, "address = ?")
		args = append(args, *req.Address)
	}
	if req.BirthDate != nil && *req.BirthDate != "" {
		bd, err := parseBirthDate(*req.BirthDate)
		if err != nil {
			return nil, err
		}
		sets = append(sets, "birth_date = ?")
		args = append(args, bd)
	}

	if err := s.store.Update(ctx, id, sets, args); err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			return nil, apierr.Conflict("email or document already registered")
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

// AdjustLoyalty adds (positive) or redeems (negative) points; the balance never
// goes below zero.
func (s *Service) AdjustLoyalty(ctx context.Context, id int64, req LoyaltyRequest) (*CustomerResponse, error) {
	if req.Points == 0 {
		return nil, apierr.Invalid("points must be non-zero")
	}
	if _, err := s.store.GetByID(ctx, id); err != nil {
		return nil, err
	}

	n, err := s.store.AdjustLoyalty(ctx, id, req.Points)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, apierr.Conflict("insufficient loyalty points")
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	n, err := s.store.Delete(ctx, id)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1451 {
			return apierr.Conflict("customer is referenced by contracts")
		}
		return err
	}
	if n == 0 {
		return apierr.NotFound("customer not found")
	}
	return nil
}
