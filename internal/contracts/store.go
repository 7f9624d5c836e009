package contracts

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strings"
	"time"

	"arc-backend/internal/platform/apierr"
	"arc-backend/internal/platform/db"
)

type Filter struct {
	CustomerID *int64
	EmployeeID *int64
	EventID    *int64
	Status     *Status
	Limit      int
	Offset     int
}

type ContractUpdate struct {
	EmployeeID        *int64
	EventID           *int64
	FittingDate       *time.Time
	PickupDate        *time.Time
	ReturnDate        *time.Time
	DepositAmount     *float64
	SpecialConditions *string
	Observations      *string
}

type ContractStore interface {
	CustomerExists(ctx context.Context, id int64) (bool, error)
	GetProduct(ctx context.Context, id int64) (*ProductRef, error)
	CreateWithItems(ctx context.Context, c *Contract, items []Item) error
	GetByID(ctx context.Context, id int64) (*Contract, error)
	GetByNumber(ctx context.Context, number string) (*Contract, error)
	List(ctx context.Context, f Filter) ([]Contract, error)
	ListLate(ctx context.Context, now time.Time) ([]Contract, error)
	ListByDateRange(ctx context.Context, field string, start, end time.Time) ([]Contract, error)
	Update(ctx context.Context, id int64, upd ContractUpdate) error
	UpdateStatus(ctx context.Context, id int64, st Status) error
	Restock(ctx context.Context, contractID int64) error
	DeleteCascade(ctx context.Context, contractID int64) error
	MonthlyCounts(ctx context.Context) ([]MonthlyCount, error)
	MonthlyRevenue(ctx context.Context) ([]MonthlyRevenue, error)
}

type Store struct{ db *sql.DB }

func NewStore(conn *sql.DB) ContractStore { return &Store{db: conn} }

const contractCols = `contract_id, contract_number, customer_id, employee_id, event_id, fitting_date,
pickup_date, return_date, status, total_amount, deposit_amount, special_conditions, observations,
created_at, updated_at`

func scanContract(row interface{ Scan(...any) error }) (*Contract, error) {
	var c Contract
	err := row.Scan(
		&c.ContractID, &c.ContractNumber, &c.CustomerID, &c.EmployeeID, &c.EventID, &c.FittingDate,
		&c.PickupDate, &c.ReturnDate, &c.Status, &c.TotalAmount, &c.DepositAmount,
		&c.SpecialConditions, &c.Observations, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) CustomerExists(ctx context.Context, id int64) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM customers WHERE customer_id = ? LIMIT 1`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetProduct returns (nil, nil) when the product does not exist.
func (s *Store) GetProduct(ctx context.Context, id int64) (*ProductRef, error) {
	const q = `SELECT product_id, rental_price, quantity, status FROM products WHERE product_id = ?`
	var p ProductRef
	err := s.db.QueryRowContext(ctx, q, id).Scan(&p.ProductID, &p.RentalPrice, &p.Quantity, &p.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// adjustProductStock is the single authoritative stock mutation. It locks the
// product row, applies the delta and, when available is true, flips the status
// back to AVAILABLE. A missing product is reported via the bool, not an error.
func adjustProductStock(ctx context.Context, tx *sql.Tx, productID int64, delta int, available bool) (bool, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT product_id FROM products WHERE product_id = ? FOR UPDATE`, productID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if available {
		_, err = tx.ExecContext(ctx,
			`UPDATE products SET quantity = quantity + ?, status = 'AVAILABLE', updated_at = NOW(6) WHERE product_id = ?`,
			delta, productID)
	} else {
		_, err = tx.ExecContext(ctx,
			`UPDATE products SET quantity = quantity + ?, updated_at = NOW(6) WHERE product_id = ?`,
			delta, productID)
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateWithItems inserts the contract and its items and decrements product
// stock, all in one transaction. Items whose product vanished are kept but
// their stock adjustment is skipped and logged.
func (s *Store) CreateWithItems(ctx context.Context, c *Contract, items []Item) error {
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		const q = `
INSERT INTO contracts
(contract_number, customer_id, employee_id, event_id, fitting_date, pickup_date, return_date,
 status, total_amount, deposit_amount, special_conditions, observations, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(6), NOW(6))
`
		res, err := tx.ExecContext(ctx, q,
			c.ContractNumber, c.CustomerID, c.EmployeeID, c.EventID, c.FittingDate,
			c.PickupDate, c.ReturnDate, c.Status, c.TotalAmount, c.DepositAmount,
			c.SpecialConditions, c.Observations)
		if err != nil {
			return err
		}
		id, _ := res.LastInsertId()
		c.ContractID = id

		for i := range items {
			items[i].ContractID = id
			res, err := tx.ExecContext(ctx, `
INSERT INTO contract_items (contract_id, product_id, quantity, unit_price, subtotal, created_at)
VALUES (?, ?, ?, ?, ?, NOW(6))`,
				items[i].ContractID, items[i].ProductID, items[i].Quantity, items[i].UnitPrice, items[i].Subtotal)
			if err != nil {
				return err
			}
			itemID, _ := res.LastInsertId()
			items[i].ItemID = itemID

			ok, err := adjustProductStock(ctx, tx, items[i].ProductID, -items[i].Quantity, false)
			if err != nil {
				return err
			}
			if !ok {
				log.Printf("[WARN] contract %s: product %d missing, stock decrement skipped", c.ContractNumber, items[i].ProductID)
			}
		}
		return nil
	})
}

func loadRelations(ctx context.Context, q db.DBTX, c *Contract) error {
	rows, err := q.QueryContext(ctx, `
SELECT item_id, contract_id, product_id, quantity, unit_price, subtotal, created_at
FROM contract_items WHERE contract_id = ? ORDER BY item_id`, c.ContractID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ItemID, &it.ContractID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.Subtotal, &it.CreatedAt); err != nil {
			return err
		}
		c.Items = append(c.Items, it)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	prows, err := q.QueryContext(ctx, `
SELECT payment_id, amount, method, status, paid_at
FROM payments WHERE contract_id = ? ORDER BY payment_id`, c.ContractID)
	if err != nil {
		return err
	}
	defer prows.Close()
	for prows.Next() {
		var p PaymentRow
		var paidAt sql.NullTime
		if err := prows.Scan(&p.PaymentID, &p.Amount, &p.Method, &p.Status, &paidAt); err != nil {
			return err
		}
		if paidAt.Valid {
			val := paidAt.Time
			p.PaidAt = &val
		}
		c.Payments = append(c.Payments, p)
	}
	return prows.Err()
}

// getContract loads the contract row plus its items and payments inside one
// read-only transaction, so the three reads see the same snapshot.
func (s *Store) getContract(ctx context.Context, where string, arg any) (*Contract, error) {
	var c *Contract
	err := db.ReadOnly(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		got, err := scanContract(tx.QueryRowContext(ctx, `SELECT `+contractCols+` FROM contracts WHERE `+where, arg))
		if errors.Is(err, sql.ErrNoRows) {
			return apierr.NotFound("contract not found")
		}
		if err != nil {
			return err
		}
		if err := loadRelations(ctx, tx, got); err != nil {
			return err
		}
		c = got
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (*Contract, error) {
	return s.getContract(ctx, `contract_id = ?`, id)
}

func (s *Store) GetByNumber(ctx context.Context, number string) (*Contract, error) {
	return s.getContract(ctx, `contract_number = ?`, number)
}

func (s *Store) List(ctx context.Context, f Filter) ([]Contract, error) {
	sb := strings.Builder{}
	sb.WriteString(`SELECT ` + contractCols + ` FROM contracts WHERE 1=1`)

	args := []any{}
	if f.CustomerID != nil {
		sb.WriteString(` AND customer_id = ?`)
		args = append(args, *f.CustomerID)
	}
	if f.EmployeeID != nil {
		sb.WriteString(` AND employee_id = ?`)
		args = append(args, *f.EmployeeID)
	}
	if f.EventID != nil {
		sb.WriteString(` AND event_id = ?`)
		args = append(args, *f.EventID)
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

	return queryContracts(ctx, s.db, sb.String(), args...)
}

// ListLate returns contracts still out past their return date.
func (s *Store) ListLate(ctx context.Context, now time.Time) ([]Contract, error) {
	const q = `SELECT ` + contractCols + ` FROM contracts
WHERE status IN ('PICKED_UP', 'LATE') AND return_date < ? ORDER BY return_date`
	return queryContracts(ctx, s.db, q, now)
}

func (s *Store) ListByDateRange(ctx context.Context, field string, start, end time.Time) ([]Contract, error) {
	// field is validated by the service against a fixed set
	q := `SELECT ` + contractCols + ` FROM contracts WHERE ` + field + ` >= ? AND ` + field + ` <= ? ORDER BY ` + field
	return queryContracts(ctx, s.db, q, start, end)
}

func queryContracts(ctx context.Context, conn db.DBTX, q string, args ...any) ([]Contract, error) {
	rows, err := conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (s *Store) Update(ctx context.Context, id int64, upd ContractUpdate) error {
	sets := []string{}
	args := []any{}
	if upd.EmployeeID != nil {
		sets = append(sets, "employee_id = ?")
		args = append(args, *upd.EmployeeID)
	}
	if upd.EventID != nil {
		sets = append(sets, "event_id = ?")
		args = append(args, *upd.EventID)
	}
	if upd.FittingDate != nil {
		sets = append(sets, "fitting_date = ?")
		args = append(args, *upd.FittingDate)
	}
	if upd.PickupDate != nil {
		sets = append(sets, "pickup_date = ?")
		args = append(args, *upd.PickupDate)
	}
	if upd.ReturnDate != nil {
		sets = append(sets, "return_date = ?")
		args = append(args, *upd.ReturnDate)
	}
	if upd.DepositAmount != nil {
		sets = append(sets, "deposit_amount = ?")
		args = append(args, *upd.DepositAmount)
	}
	if upd.SpecialConditions != nil {
		sets = append(sets, "special_conditions = ?")
		args = append(args, *upd.SpecialConditions)
	}
	if upd.Observations != nil {
		sets = append(sets, "observations = ?")
		args = append(args, *upd.Observations)
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = NOW(6)")

	q := `UPDATE contracts SET ` + strings.Join(sets, ", ") + ` WHERE contract_id = ?`
	args = append(args, id)
	_, err := s.db.ExecContext(ctx, q, args...)
	return err
}

func (s *Store) UpdateStatus(ctx context.Context, id int64, st Status) error {
	const q = `UPDATE contracts SET status = ?, updated_at = NOW(6) WHERE contract_id = ?`
	res, err := s.db.ExecContext(ctx, q, st, id)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return apierr.NotFound("contract not found")
	}
	return nil
}

// Restock returns every item's quantity to its product and flips the product
// back to AVAILABLE, in one transaction.
func (s *Store) Restock(ctx context.Context, contractID int64) error {
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		return restockItems(ctx, tx, contractID)
	})
}

func restockItems(ctx context.Context, tx *sql.Tx, contractID int64) error {
	rows, err := tx.QueryContext(ctx,
		`SELECT product_id, quantity FROM contract_items WHERE contract_id = ?`, contractID)
	if err != nil {
		return err
	}
	type line struct {
		productID int64
		quantity  int
	}
	var lines []line
	for rows.Next() {
		var l line
		if err := rows.Scan(&l.productID, &l.quantity); err != nil {
			rows.Close()
			return err
		}
		lines = append(lines, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, l := range lines {
		ok, err := adjustProductStock(ctx, tx, l.productID, l.quantity, true)
		if err != nil {
			return err
		}
		if !ok {
			log.Printf("[WARN] contract %d: product %d missing, stock return skipped", contractID, l.productID)
		}
	}
	return nil
}

// DeleteCascade restocks the items and removes payments, items and the
// contract row in one transaction.
func (s *Store) DeleteCascade(ctx context.Context, contractID int64) error {
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		if err := restockItems(ctx, tx, contractID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM payments WHERE contract_id = ?`, contractID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM contract_items WHERE contract_id = ?`, contractID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM contracts WHERE contract_id = ?`, contractID)
		if err != nil {
			return err
		}
		if aff, _ := res.RowsAffected(); aff == 0 {
			return apierr.NotFound("contract not found")
		}
		return nil
	})
}

func (s *Store) MonthlyCounts(ctx context.Context) ([]MonthlyCount, error) {
	const q = `
SELECT YEAR(created_at) AS y, MONTH(created_at) AS m, COUNT(*)
FROM contracts
GROUP BY y, m
ORDER BY y, m`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MonthlyCount
	for rows.Next() {
		var r MonthlyCount
		if err := rows.Scan(&r.Year, &r.Month, &r.Count); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// MonthlyRevenue excludes CANCELLED and DRAFT contracts.
func (s *Store) MonthlyRevenue(ctx context.Context) ([]MonthlyRevenue, error) {
	const q = `
SELECT YEAR(created_at) AS y, MONTH(created_at) AS m, COALESCE(SUM(total_amount), 0)
FROM contracts
WHERE status NOT IN ('CANCELLED', 'DRAFT')
GROUP BY y, m
ORDER BY y, m`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MonthlyRevenue
	for rows.Next() {
		var r MonthlyRevenue
		if err := rows.Scan(&r.Year, &r.Month, &r.Total); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
