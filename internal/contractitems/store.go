package contractitems

import (
	"context"
	"database/sql"
	"errors"

	"arc-backend/internal/platform/apierr"
	"arc-backend/internal/platform/db"
)

type ItemStore interface {
	ContractStatus(ctx context.Context, contractID int64) (string, error)
	GetProduct(ctx context.Context, productID int64) (*ProductRef, error)
	GetByID(ctx context.Context, itemID int64) (*Item, error)
	ListByContract(ctx context.Context, contractID int64) ([]Item, error)
	ListByProduct(ctx context.Context, productID int64) ([]Item, error)
	Insert(ctx context.Context, it *Item) error
	Update(ctx context.Context, it *Item, stockDelta int) error
	Delete(ctx context.Context, it *Item) error
}

type Store struct{ db *sql.DB }

func NewStore(conn *sql.DB) ItemStore { return &Store{db: conn} }

func (s *Store) ContractStatus(ctx context.Context, contractID int64) (string, error) {
	var st string
	err := s.db.QueryRowContext(ctx, `SELECT status FROM contracts WHERE contract_id = ?`, contractID).Scan(&st)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apierr.NotFound("contract not found")
	}
	if err != nil {
		return "", err
	}
	return st, nil
}

// GetProduct returns (nil, nil) when the product does not exist.
func (s *Store) GetProduct(ctx context.Context, productID int64) (*ProductRef, error) {
	const q = `SELECT product_id, rental_price, quantity, status FROM products WHERE product_id = ?`
	var p ProductRef
	err := s.db.QueryRowContext(ctx, q, productID).Scan(&p.ProductID, &p.RentalPrice, &p.Quantity, &p.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) GetByID(ctx context.Context, itemID int64) (*Item, error) {
	const q = `SELECT item_id, contract_id, product_id, quantity, unit_price, subtotal, created_at
FROM contract_items WHERE item_id = ?`
	var it Item
	err := s.db.QueryRowContext(ctx, q, itemID).Scan(
		&it.ItemID, &it.ContractID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.Subtotal, &it.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierr.NotFound("contract item not found")
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (s *Store) ListByContract(ctx context.Context, contractID int64) ([]Item, error) {
	return queryItems(ctx, s.db, `
SELECT item_id, contract_id, product_id, quantity, unit_price, subtotal, created_at
FROM contract_items WHERE contract_id = ? ORDER BY item_id`, contractID)
}

func (s *Store) ListByProduct(ctx context.Context, productID int64) ([]Item, error) {
	return queryItems(ctx, s.db, `
SELECT item_id, contract_id, product_id, quantity, unit_price, subtotal, created_at
FROM contract_items WHERE product_id = ? ORDER BY item_id`, productID)
}

func queryItems(ctx context.Context, conn db.DBTX, q string, args ...any) ([]Item, error) {
	rows, err := conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ItemID, &it.ContractID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.Subtotal, &it.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// takeStock decrements product stock inside the transaction. The quantity
// guard re-checks under the row lock; RowsAffected 0 means the stock moved
// since the service checked.
func takeStock(ctx context.Context, tx *sql.Tx, productID int64, qty int) error {
	res, err := tx.ExecContext(ctx, `
UPDATE products SET quantity = quantity - ?, updated_at = NOW(6)
WHERE product_id = ? AND quantity >= ?`, qty, productID, qty)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return apierr.Conflictf("insufficient stock for product %d", productID)
	}
	return nil
}

func returnStock(ctx context.Context, tx *sql.Tx, productID int64, qty int) error {
	_, err := tx.ExecContext(ctx, `
UPDATE products SET quantity = quantity + ?, updated_at = NOW(6)
WHERE product_id = ?`, qty, productID)
	return err
}

// recomputeTotal rewrites the contract's total from its surviving items.
func recomputeTotal(ctx context.Context, tx *sql.Tx, contractID int64) error {
	_, err := tx.ExecContext(ctx, `
UPDATE contracts
SET total_amount = (SELECT COALESCE(SUM(subtotal), 0) FROM contract_items WHERE contract_id = ?),
    updated_at = NOW(6)
WHERE contract_id = ?`, contractID, contractID)
	return err
}

func (s *Store) Insert(ctx context.Context, it *Item) error {
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		if err := takeStock(ctx, tx, it.ProductID, it.Quantity); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `
INSERT INTO contract_items (contract_id, product_id, quantity, unit_price, subtotal, created_at)
VALUES (?, ?, ?, ?, ?, NOW(6))`,
			it.ContractID, it.ProductID, it.Quantity, it.UnitPrice, it.Subtotal)
		if err != nil {
			return err
		}
		id, _ := res.LastInsertId()
		it.ItemID = id
		return recomputeTotal(ctx, tx, it.ContractID)
	})
}

// Update persists the item and moves stock by stockDelta (positive takes
// stock, negative returns it).
func (s *Store) Update(ctx context.Context, it *Item, stockDelta int) error {
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		switch {
		case stockDelta > 0:
			if err := takeStock(ctx, tx, it.ProductID, stockDelta); err != nil {
				return err
			}
		case stockDelta < 0:
			if err := returnStock(ctx, tx, it.ProductID, -stockDelta); err != nil {
				return err
			}
		}
		_, err := tx.ExecContext(ctx, `
UPDATE contract_items SET quantity = ?, unit_price = ?, subtotal = ? WHERE item_id = ?`,
			it.Quantity, it.UnitPrice, it.Subtotal, it.ItemID)
		if err != nil {
			return err
		}
		return recomputeTotal(ctx, tx, it.ContractID)
	})
}

func (s *Store) Delete(ctx context.Context, it *Item) error {
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		if err := returnStock(ctx, tx, it.ProductID, it.Quantity); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM contract_items WHERE item_id = ?`, it.ItemID)
		if err != nil {
			return err
		}
		if aff, _ := res.RowsAffected(); aff == 0 {
			return apierr.NotFound("contract item not found")
		}
		return recomputeTotal(ctx, tx, it.ContractID)
	})
}
