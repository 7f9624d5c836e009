package events

import (
	"context"
	"database/sql"
	"errors"
	"time"

	mysql "github.com/go-sql-driver/mysql"

	"arc-backend/internal/platform/apierr"
)

const dateLayout = "2006-01-02"

type Service struct {
	db    *sql.DB
	store *Store
}

func NewService(db *sql.DB) *Service { return &Service{db: db, store: NewStore(db)} }

func (s *Service) CreateLocation(ctx context.Context, req CreateLocationRequest) (*LocationResponse, error) {
	l := &Location{Name: req.Name}
	if req.Address != nil {
		l.Address = sql.NullString{String: *req.Address, Valid: true}
	}
	if req.Capacity != nil {
		l.Capacity = sql.NullInt64{Int64: *req.Capacity, Valid: true}
	}
	if err := s.store.InsertLocation(ctx, l); err != nil {
		return nil, err
	}
	resp := l.toDTO()
	return &resp, nil
}

func (s *Service) ListLocations(ctx context.Context) ([]LocationResponse, error) {
	rows, err := s.store.ListLocations(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]LocationResponse, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDTO())
	}
	return out, nil
}

func (s *Service) CreateEvent(ctx context.Context, req CreateEventRequest) (*EventResponse, error) {
	date, err := time.ParseInLocation(dateLayout, req.EventDate, time.UTC)
	if err != nil {
		return nil, apierr.Invalid("event_date must be YYYY-MM-DD")
	}
	if req.LocationID != nil {
		ok, err := s.store.LocationExists(ctx, *req.LocationID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apierr.NotFound("location not found")
		}
	}

	e := &Event{Name: req.Name, EventDate: date}
	if req.LocationID != nil {
		e.LocationID = sql.NullInt64{Int64: *req.LocationID, Valid: true}
	}
	if req.Notes != nil {
		e.Notes = sql.NullString{String: *req.Notes, Valid: true}
	}
	if err := s.store.InsertEvent(ctx, e); err != nil {
		return nil, err
	}
	return s.GetEvent(ctx, e.EventID)
}

func (s *Service) GetEvent(ctx context.Context, id int64) (*EventResponse, error) {
	e, err := s.store.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := e.toDTO()
	return &resp, nil
}

func (s *Service) ListEvents(ctx context.Context, limit, offset int) ([]EventResponse, error) {
	rows, err := s.store.ListEvents(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]EventResponse, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDTO())
	}
	return out, nil
}

func (s *Service) UpdateEvent(ctx context.Context, id int64, req UpdateEventRequest) (*EventResponse, error) {
	if _, err := s.store.GetEvent(ctx, id); err != nil {
		return nil, err
	}

	sets := []string{}
	args := []any{}
	if req.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *req.Name)
	}
	if req.EventDate != nil {
		date, err := time.ParseInLocation(dateLayout, *req.EventDate, time.UTC)
		if err != nil {
			return nil, apierr.Invalid("event_date must be YYYY-MM-DD")
		}
		sets = append(sets, "event_date = ?")
		args = append(args, date)
	}
	if req.LocationID != nil {
		ok, err := s.store.LocationExists(ctx, *req.LocationID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apierr.NotFound("location not found")
		}
		sets = append(sets, "location_id = ?")
		args = append(args, *req.LocationID)
	}
	if req.Notes != nil {
		sets = append(sets, "notes = ?")
		args = append(args, *req.Notes)
	}

	if err := s.store.UpdateEvent(ctx, id, sets, args); err != nil {
		return nil, err
	}
	return s.GetEvent(ctx, id)
}

func (s *Service) DeleteEvent(ctx context.Context, id int64) error {
	n, err := s.store.DeleteEvent(ctx, id)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1451 {
			return apierr.Conflict("event is referenced by contracts")
		}
		return err
	}
	if n == 0 {
		return apierr.NotFound("event not found")
	}
	return nil
}
