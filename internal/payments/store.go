package payments

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"arc-backend/internal/platform/apierr"
)

type Filter struct {
	ContractID *int64
	Status     *Status
	Limit      int
	Offset     int
}

type PaymentStore interface {
	GetContract(ctx context.Context, contractID int64) (*ContractRef, error)
	SetContractStatus(ctx context.Context, contractID int64, status string) error
	SumPaid(ctx context.Context, contractID int64) (float64, error)
	Insert(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, id int64) (*Payment, error)
	List(ctx context.Context, f Filter) ([]Payment, error)
	Update(ctx context.Context, p *Payment) error
	MarkAsPaid(ctx context.Context, id int64, paidAt time.Time) error
	Delete(ctx context.Context, id int64) error
}

type Store struct{ db *sql.DB }

func NewStore(conn *sql.DB) PaymentStore { return &Store{db: conn} }

func (s *Store) GetContract(ctx context.Context, contractID int64) (*ContractRef, error) {
	const q = `SELECT contract_id, customer_id, status, total_amount FROM contracts WHERE contract_id = ?`
	var c ContractRef
	err := s.db.QueryRowContext(ctx, q, contractID).Scan(&c.ContractID, &c.CustomerID, &c.Status, &c.TotalAmount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierr.NotFound("contract not found")
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) SetContractStatus(ctx context.Context, contractID int64, status string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE contracts SET status = ?, updated_at = NOW(6) WHERE contract_id = ?`, status, contractID)
	return err
}

// SumPaid totals only PAID rows.
func (s *Store) SumPaid(ctx context.Context, contractID int64) (float64, error) {
	var sum float64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM payments WHERE contract_id = ? AND status = 'PAID'`,
		contractID).Scan(&sum)
	return sum, err
}

const paymentCols = `payment_id, payment_ulid, contract_id, amount, method, status, installments,
reference, due_date, paid_at, created_at, updated_at`

func scanPayment(row interface{ Scan(...any) error }) (*Payment, error) {
	var p Payment
	err := row.Scan(
		&p.PaymentID, &p.PaymentULID, &p.ContractID, &p.Amount, &p.Method, &p.Status,
		&p.Installments, &p.Reference, &p.DueDate, &p.PaidAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) Insert(ctx context.Context, p *Payment) error {
	const q = `
INSERT INTO payments
(payment_ulid, contract_id, amount, method, status, installments, reference, due_date, paid_at, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(6), NOW(6))
`
	res, err := s.db.ExecContext(ctx, q,
		p.PaymentULID, p.ContractID, p.Amount, p.Method, p.Status, p.Installments,
		p.Reference, p.DueDate, p.PaidAt)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	p.PaymentID = id
	return nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (*Payment, error) {
	p, err := scanPayment(s.db.QueryRowContext(ctx,
		`SELECT `+paymentCols+` FROM payments WHERE payment_id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierr.NotFound("payment not found")
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) List(ctx context.Context, f Filter) ([]Payment, error) {
	sb := strings.Builder{}
	sb.WriteString(`SELECT ` + paymentCols + ` FROM payments WHERE 1=1`)

	args := []any{}
	if f.ContractID != nil {
		sb.WriteString(` AND contract_id = ?`)
		args = append(args, *f.ContractID)
	}
	if f.Status != nil {
		sb.WriteString(` AND status = ?`)
		args = append(args, *f.Status)
	}
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	sb.WriteString(` ORDER BY created_at DESC LIMIT ? OFFSET ?`)
	args = append(args, f.Limit, f.Offset)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *Store) Update(ctx context.Context, p *Payment) error {
	const q = `
UPDATE payments
SET amount = ?, method = ?, status = ?, installments = ?, reference = ?, due_date = ?, paid_at = ?, updated_at = NOW(6)
WHERE payment_id = ?`
	res, err := s.db.ExecContext(ctx, q,
		p.Amount, p.Method, p.Status, p.Installments, p.Reference, p.DueDate, p.PaidAt, p.PaymentID)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return apierr.NotFound("payment not found")
	}
	return nil
}

func (s *Store) MarkAsPaid(ctx context.Context, id int64, paidAt time.Time) error {
	const q = `UPDATE payments SET status = 'PAID', paid_at = ?, updated_at = NOW(6) WHERE payment_id = ?`
	res, err := s.db.ExecContext(ctx, q, paidAt, id)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return apierr.NotFound("payment not found")
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM payments WHERE payment_id = ?`, id)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return apierr.NotFound("payment not found")
	}
	return nil
}
