package customers

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"arc-backend/internal/platform/apierr"
)

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

const customerCols = `customer_id, name, email, phone, document, birth_date, address, loyalty_points, created_at, updated_at`

func scanCustomer(row interface{ Scan(...any) error }) (*Customer, error) {
	var c Customer
	err := row.Scan(
		&c.CustomerID, &c.Name, &c.Email, &c.Phone, &c.Document,
		&c.BirthDate, &c.Address, &c.LoyaltyPoints, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) Insert(ctx context.Context, c *Customer) error {
	const q = `
INSERT INTO customers (name, email, phone, document, birth_date, address, loyalty_points, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, 0, NOW(6), NOW(6))
`
	res, err := s.db.ExecContext(ctx, q, c.Name, c.Email, c.Phone, c.Document, c.BirthDate, c.Address)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	c.CustomerID = id
	return nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (*Customer, error) {
	c, err := scanCustomer(s.db.QueryRowContext(ctx, `SELECT `+customerCols+` FROM customers WHERE customer_id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierr.NotFound("customer not found")
	}
	return c, err
}

func (s *Store) List(ctx context.Context, search string, limit, offset int) ([]Customer, error) {
	sb := strings.Builder{}
	sb.WriteString(`SELECT ` + customerCols + ` FROM customers WHERE 1=1`)

	args := []any{}
	if search != "" {
		sb.WriteString(` AND (name LIKE ? OR email LIKE ?)`)
		like := "%" + search + "%"
		args = append(args, like, like)
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	sb.WriteString(` ORDER BY name LIMIT ? OFFSET ?`)
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (s *Store) ListByBirthMonth(ctx context.Context, month int) ([]Customer, error) {
	const q = `SELECT ` + customerCols + ` FROM customers WHERE birth_date IS NOT NULL AND MONTH(birth_date) = ? ORDER BY DAY(birth_date)`
	rows, err := s.db.QueryContext(ctx, q, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (s *Store) Update(ctx context.Context, id int64, sets []string, args []any) error {
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = NOW(6)")
	q := `UPDATE customers SET ` + strings.Join(sets, ", ") + ` WHERE customer_id = ?`
	args = append(args, id)
	_, err := s.db.ExecContext(ctx, q, args...)
	return err
}

// AdjustLoyalty applies the delta only when it cannot push the balance negative.
func (s *Store) AdjustLoyalty(ctx context.Context, id int64, delta int) (int64, error) {
	const q = `
UPDATE customers
SET loyalty_points = loyalty_points + ?, updated_at = NOW(6)
WHERE customer_id = ? AND loyalty_points + ? >= 0
`
	res, err := s.db.ExecContext(ctx, q, delta, id, delta)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM customers WHERE customer_id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
