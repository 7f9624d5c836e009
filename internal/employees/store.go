package employees

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"arc-backend/internal/platform/apierr"
)

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

const employeeCols = `employee_id, name, email, phone, position, active, created_at, updated_at`

func scanEmployee(row interface{ Scan(...any) error }) (*Employee, error) {
	var e Employee
	var active int
	err := row.Scan(&e.EmployeeID, &e.Name, &e.Email, &e.Phone, &e.Position, &active, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.Active = active != 0
	return &e, nil
}

func (s *Store) Insert(ctx context.Context, e *Employee) error {
	const q = `
INSERT INTO employees (name, email, phone, position, active, created_at, updated_at)
VALUES (?, ?, ?, ?, 1, NOW(6), NOW(6))
`
	res, err := s.db.ExecContext(ctx, q, e.Name, e.Email, e.Phone, e.Position)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	e.EmployeeID = id
	return nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (*Employee, error) {
	e, err := scanEmployee(s.db.QueryRowContext(ctx, `SELECT `+employeeCols+` FROM employees WHERE employee_id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierr.NotFound("employee not found")
	}
	return e, err
}

func (s *Store) List(ctx context.Context, activeOnly bool, limit, offset int) ([]Employee, error) {
	q := `SELECT ` + employeeCols + ` FROM employees`
	if activeOnly {
		q += ` WHERE active = 1`
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	q += ` ORDER BY name LIMIT ? OFFSET ?`

	rows, err := s.db.QueryContext(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func (s *Store) Update(ctx context.Context, id int64, req UpdateEmployeeRequest) error {
	sets := []string{}
	args := []any{}
	if req.Name != nil {
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
	if req.Position != nil {
		sets = append(sets, "position = ?")
		args = append(args, *req.Position)
	}
	if req.Active != nil {
		sets = append(sets, "active = ?")
		args = append(args, *req.Active)
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = NOW(6)")

	q := `UPDATE employees SET ` + strings.Join(sets, ", ") + ` WHERE employee_id = ?`
	args = append(args, id)
	_, err := s.db.ExecContext(ctx, q, args...)
	return err
}

func (s *Store) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM employees WHERE employee_id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
