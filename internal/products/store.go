package products

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"arc-backend/internal/platform/apierr"
)

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

const productCols = `product_id, category_id, name, description, size, color, rental_price, quantity, status, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (*Product, error) {
	var p Product
	err := row.Scan(
		&p.ProductID, &p.CategoryID, &p.Name, &p.Description, &p.Size, &p.Color,
		&p.RentalPrice, &p.Quantity, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) Insert(ctx context.Context, p *Product) error {
	const q = `
INSERT INTO products (category_id, name, description, size, color, rental_price, quantity, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, NOW(6), NOW(6))
`
	res, err := s.db.ExecContext(ctx, q,
		p.CategoryID, p.Name, p.Description, p.Size, p.Color, p.RentalPrice, p.Quantity, p.Status)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	p.ProductID = id
	return nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (*Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx, `SELECT `+productCols+` FROM products WHERE product_id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierr.NotFound("product not found")
	}
	return p, err
}

type ListFilter struct {
	CategoryID *int64
	Status     *string
	Name       *string
	Limit      int
	Offset     int
}

func (s *Store) List(ctx context.Context, f ListFilter) ([]Product, error) {
	sb := strings.Builder{}
	sb.WriteString(`SELECT ` + productCols + ` FROM products WHERE 1=1`)

	args := []any{}
	if f.CategoryID != nil {
		sb.WriteString(` AND category_id = ?`)
		args = append(args, *f.CategoryID)
	}
	if f.Status != nil {
		sb.WriteString(` AND status = ?`)
		args = append(args, *f.Status)
	}
	if f.Name != nil {
		sb.WriteString(` AND name LIKE ?`)
		args = append(args, "%"+*f.Name+"%")
	}
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	sb.WriteString(` ORDER BY product_id DESC LIMIT ? OFFSET ?`)
	args = append(args, f.Limit, f.Offset)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// Update applies only the supplied fields.
func (s *Store) Update(ctx context.Context, id int64, req UpdateProductRequest) error {
	sets := []string{}
	args := []any{}
	if req.CategoryID != nil {
		sets = append(sets, "category_id = ?")
		args = append(args, *req.CategoryID)
	}
	if req.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *req.Name)
	}
	if req.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *req.Description)
	}
	if req.Size != nil {
		sets = append(sets, "size = ?")
		args = append(args, *req.Size)
	}
	if req.Color != nil {
		sets = append(sets, "color = ?")
		args = append(args, *req.Color)
	}
	if req.RentalPrice != nil {
		sets = append(sets, "rental_price = ?")
		args = append(args, *req.RentalPrice)
	}
	if req.Quantity != nil {
		sets = append(sets, "quantity = ?")
		args = append(args, *req.Quantity)
	}
	if req.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *req.Status)
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = NOW(6)")

	q := `UPDATE products SET ` + strings.Join(sets, ", ") + ` WHERE product_id = ?`
	args = append(args, id)
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		// may legitimately be 0 when values are unchanged; existence is checked by the service
		return nil
	}
	return nil
}

func (s *Store) UpdateStatus(ctx context.Context, id int64, status string) error {
	const q = `UPDATE products SET status = ?, updated_at = NOW(6) WHERE product_id = ?`
	_, err := s.db.ExecContext(ctx, q, status, id)
	return err
}

func (s *Store) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE product_id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ---- categories ----

func (s *Store) InsertCategory(ctx context.Context, cat *Category) error {
	res, err := s.db.ExecContext(ctx, `INSERT INTO categories (name, description) VALUES (?, ?)`, cat.Name, cat.Description)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	cat.CategoryID = id
	return nil
}

func (s *Store) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT category_id, name, description FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.CategoryID, &c.Name, &c.Description); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) CategoryExists(ctx context.Context, id int64) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM categories WHERE category_id = ? LIMIT 1`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ---- images ----

func (s *Store) InsertImage(ctx context.Context, img *Image) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO product_images (product_id, url, is_primary) VALUES (?, ?, ?)`,
		img.ProductID, img.URL, img.IsPrimary)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	img.ImageID = id
	return nil
}

func (s *Store) ClearPrimaryImage(ctx context.Context, productID int64) error {
	_, err := s.db.ExecContext(ctx, `UPDATE product_images SET is_primary = 0 WHERE product_id = ?`, productID)
	return err
}

func (s *Store) ListImages(ctx context.Context, productID int64) ([]Image, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT image_id, product_id, url, is_primary FROM product_images WHERE product_id = ? ORDER BY image_id`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Image
	for rows.Next() {
		var img Image
		var primary int
		if err := rows.Scan(&img.ImageID, &img.ProductID, &img.URL, &primary); err != nil {
			return nil, err
		}
		img.IsPrimary = primary != 0
		out = append(out, img)
	}
	return out, rows.Err()
}

// ---- maintenance ----

func (s *Store) InsertMaintenance(ctx context.Context, m *MaintenanceRecord) error {
	const q = `
INSERT INTO maintenance_records (product_id, reason, cost, started_at)
VALUES (?, ?, ?, NOW(6))
`
	res, err := s.db.ExecContext(ctx, q, m.ProductID, m.Reason, m.Cost)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	m.MaintenanceID = id
	return nil
}

func (s *Store) GetMaintenance(ctx context.Context, id int64) (*MaintenanceRecord, error) {
	const q = `
SELECT maintenance_id, product_id, reason, cost, started_at, completed_at
FROM maintenance_records WHERE maintenance_id = ?
`
	var m MaintenanceRecord
	err := s.db.QueryRowContext(ctx, q, id).Scan(
		&m.MaintenanceID, &m.ProductID, &m.Reason, &m.Cost, &m.StartedAt, &m.CompletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierr.NotFound("maintenance record not found")
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) CompleteMaintenance(ctx context.Context, id int64) error {
	const q = `UPDATE maintenance_records SET completed_at = NOW(6) WHERE maintenance_id = ? AND completed_at IS NULL`
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return apierr.Conflict("maintenance already completed")
	}
	return nil
}
