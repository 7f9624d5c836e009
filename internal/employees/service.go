package employees

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	mysql "github.com/go-sql-driver/mysql"

	"arc-backend/internal/platform/apierr"
)

type Service struct {
	db    *sql.DB
	store *Store
}

func NewService(db *sql.DB) *Service { return &Service{db: db, store: NewStore(db)} }

func (s *Service) Create(ctx context.Context, req CreateEmployeeRequest) (*EmployeeResponse, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, apierr.Invalid("name is required")
	}

	e := &Employee{Name: req.Name, Email: req.Email, Active: true}
	if req.Phone != nil {
		e.Phone = sql.NullString{String: *req.Phone, Valid: true}
	}
	if req.Position != nil {
		e.Position = sql.NullString{String: *req.Position, Valid: true}
	}

	if err := s.store.Insert(ctx, e); err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			return nil, apierr.Conflict("email already registered")
		}
		return nil, err
	}
	return s.Get(ctx, e.EmployeeID)
}

func (s *Service) Get(ctx context.Context, id int64) (*EmployeeResponse, error) {
	e, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := e.toDTO()
	return &resp, nil
}

func (s *Service) List(ctx context.Context, activeOnly bool, limit, offset int) ([]EmployeeResponse, error) {
	rows, err := s.store.List(ctx, activeOnly, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]EmployeeResponse, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDTO())
	}
	return out, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateEmployeeRequest) (*EmployeeResponse, error) {
	if _, err := s.store.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, id, req); err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			return nil, apierr.Conflict("email already registered")
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	n, err := s.store.Delete(ctx, id)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1451 {
			return apierr.Conflict("employee is referenced by contracts")
		}
		return err
	}
	if n == 0 {
		return apierr.NotFound("employee not found")
	}
	return nil
}
