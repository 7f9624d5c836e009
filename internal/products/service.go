package products

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

func (s *Service) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, apierr.Invalid("name is required")
	}
	if req.RentalPrice <= 0 {
		return nil, apierr.Invalid("rental_price must be > 0")
	}
	if req.Quantity < 0 {
		return nil, apierr.Invalid("quantity must be >= 0")
	}
	if req.CategoryID != nil {
		ok, err := s.store.CategoryExists(ctx, *req.CategoryID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apierr.NotFound("category not found")
		}
	}

	p := &Product{
		Name:        req.Name,
		RentalPrice: req.RentalPrice,
		Quantity:    req.Quantity,
		Status:      StatusAvailable,
	}
	if req.CategoryID != nil {
		p.CategoryID = sql.NullInt64{Int64: *req.CategoryID, Valid: true}
	}
	if req.Description != nil {
		p.Description = sql.NullString{String: *req.Description, Valid: true}
	}
	if req.Size != nil {
		p.Size = sql.NullString{String: *req.Size, Valid: true}
	}
	if req.Color != nil {
		p.Color = sql.NullString{String: *req.Color, Valid: true}
	}

	if err := s.store.Insert(ctx, p); err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1452 {
			return nil, apierr.Invalid("invalid category_id")
		}
		return nil, err
	}
	return s.Get(ctx, p.ProductID)
}

func (s *Service) Get(ctx context.Context, id int64) (*ProductResponse, error) {
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := p.toDTO()
	return &resp, nil
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]ProductResponse, error) {
	if f.Status != nil && !validStatus(*f.Status) {
		return nil, apierr.Invalidf("invalid status %q", *f.Status)
	}
	rows, err := s.store.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]ProductResponse, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDTO())
	}
	return out, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateProductRequest) (*ProductResponse, error) {
	if _, err := s.store.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if req.Status != nil && !validStatus(*req.Status) {
		return nil, apierr.Invalidf("invalid status %q", *req.Status)
	}
	if req.RentalPrice != nil && *req.RentalPrice <= 0 {
		return nil, apierr.Invalid("rental_price must be > 0")
	}
	if req.Quantity != nil && *req.Quantity < 0 {
		return nil, apierr.Invalid("quantity must be >= 0")
	}

	if err := s.store.Update(ctx, id, req); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	n, err := s.store.Delete(ctx, id)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1451 {
			return apierr.Conflict("product is referenced by contracts")
		}
		return err
	}
	if n == 0 {
		return apierr.NotFound("product not found")
	}
	return nil
}

// ---- categories ----

func (s *Service) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*CategoryResponse, error) {
	cat := &Category{Name: req.Name}
	if req.Description != nil {
		cat.Description = sql.NullString{String: *req.Description, Valid: true}
	}
	if err := s.store.InsertCategory(ctx, cat); err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			return nil, apierr.Conflict("category name already exists")
		}
		return nil, err
	}
	resp := CategoryResponse{CategoryID: cat.CategoryID, Name: cat.Name}
	if cat.Description.Valid {
		val := cat.Description.String
		resp.Description = &val
	}
	return &resp, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]CategoryResponse, error) {
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CategoryResponse, 0, len(cats))
	for _, c := range cats {
		resp := CategoryResponse{CategoryID: c.CategoryID, Name: c.Name}
		if c.Description.Valid {
			val := c.Description.String
			resp.Description = &val
		}
		out = append(out, resp)
	}
	return out, nil
}

// ---- images ----

func (s *Service) AddImage(ctx context.Context, productID int64, req AddImageRequest) (*ImageResponse, error) {
	if _, err := s.store.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	if req.IsPrimary {
		if err := s.store.ClearPrimaryImage(ctx, productID); err != nil {
			return nil, err
		}
	}
	img := &Image{ProductID: productID, URL: req.URL, IsPrimary: req.IsPrimary}
	if err := s.store.InsertImage(ctx, img); err != nil {
		return nil, err
	}
	return &ImageResponse{ImageID: img.ImageID, ProductID: img.ProductID, URL: img.URL, IsPrimary: img.IsPrimary}, nil
}

func (s *Service) ListImages(ctx context.Context, productID int64) ([]ImageResponse, error) {
	if _, err := s.store.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	imgs, err := s.store.ListImages(ctx, productID)
	if err != nil {
		return nil, err
	}
	out := make([]ImageResponse, 0, len(imgs))
	for _, img := range imgs {
		out = append(out, ImageResponse{ImageID: img.ImageID, ProductID: img.ProductID, URL: img.URL, IsPrimary: img.IsPrimary})
	}
	return out, nil
}

// ---- maintenance ----

// StartMaintenance opens a maintenance record and flips the product to MAINTENANCE
// so it stops being rentable.
func (s *Service) StartMaintenance(ctx context.Context, productID int64, req StartMaintenanceRequest) (*MaintenanceResponse, error) {
	p, err := s.store.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.Status == StatusMaintenance {
		return nil, apierr.Conflict("product is already in maintenance")
	}

	m := &MaintenanceRecord{ProductID: productID, Reason: req.Reason}
	if req.Cost != nil {
		m.Cost = sql.NullFloat64{Float64: *req.Cost, Valid: true}
	}
	if err := s.store.InsertMaintenance(ctx, m); err != nil {
		return nil, err
	}
	if err := s.store.UpdateStatus(ctx, productID, StatusMaintenance); err != nil {
		return nil, err
	}

	out, err := s.store.GetMaintenance(ctx, m.MaintenanceID)
	if err != nil {
		return nil, err
	}
	resp := out.toDTO()
	return &resp, nil
}

func (s *Service) CompleteMaintenance(ctx context.Context, maintenanceID int64) (*MaintenanceResponse, error) {
	m, err := s.store.GetMaintenance(ctx, maintenanceID)
	if err != nil {
		return nil, err
	}
	if err := s.store.CompleteMaintenance(ctx, maintenanceID); err != nil {
		return nil, err
	}
	if err := s.store.UpdateStatus(ctx, m.ProductID, StatusAvailable); err != nil {
		return nil, err
	}

	out, err := s.store.GetMaintenance(ctx, maintenanceID)
	if err != nil {
		return nil, err
	}
	resp := out.toDTO()
	return &resp, nil
}
