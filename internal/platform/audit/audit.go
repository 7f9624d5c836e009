package audit

import (
	"context"
	"crypto/rand"
	"database/sql"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"

	"arc-backend/internal/platform/apierr"
	"arc-backend/internal/platform/auth"
)

type Entry struct {
	EntryID   int64     `json:"entry_id"`
	EntryULID string    `json:"entry_ulid"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Entity    string    `json:"entity"`
	EntityID  string    `json:"entity_id,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Filter struct {
	Actor  *string
	Entity *string
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Insert(ctx context.Context, e *Entry) error {
	const q = `
INSERT INTO audit_logs (entry_ulid, actor, action, entity, entity_id, detail, created_at)
VALUES (?, ?, ?, ?, ?, ?, NOW(6))
`
	res, err := s.db.ExecContext(ctx, q, e.EntryULID, e.Actor, e.Action, e.Entity, e.EntityID, e.Detail)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	e.EntryID = id
	return nil
}

func (s *Store) List(ctx context.Context, f Filter) ([]Entry, error) {
	sb := strings.Builder{}
	sb.WriteString(`
SELECT entry_id, entry_ulid, actor, action, entity, entity_id, detail, created_at
FROM audit_logs
WHERE 1=1`)

	args := []any{}
	if f.Actor != nil {
		sb.WriteString(` AND actor = ?`)
		args = append(args, *f.Actor)
	}
	if f.Entity != nil {
		sb.WriteString(` AND entity = ?`)
		args = append(args, *f.Entity)
	}
	if f.From != nil {
		sb.WriteString(` AND created_at >= ?`)
		args = append(args, *f.From)
	}
	if f.To != nil {
		sb.WriteString(` AND created_at < ?`)
		args = append(args, *f.To)
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

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.EntryID, &e.EntryULID, &e.Actor, &e.Action, &e.Entity, &e.EntityID, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type Service struct{ store *Store }

func NewService(db *sql.DB) *Service { return &Service{store: NewStore(db)} }

func (s *Service) Record(ctx context.Context, actor, action, entity, entityID, detail string) {
	id, err := ulid.New(ulid.Timestamp(time.Now().UTC()), ulid.Monotonic(rand.Reader, 0))
	if err != nil {
		log.Printf("[WARN] audit: ulid generation failed: %v", err)
		return
	}
	e := &Entry{EntryULID: id.String(), Actor: actor, Action: action, Entity: entity, EntityID: entityID, Detail: detail}
	// audit writes never fail the request they describe
	if err := s.store.Insert(ctx, e); err != nil {
		log.Printf("[WARN] audit: insert failed: %v", err)
	}
}

func (s *Service) List(ctx context.Context, f Filter) ([]Entry, error) {
	return s.store.List(ctx, f)
}

// Middleware records every authenticated mutating request after it completes.
func Middleware(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			return
		}
		actor := c.GetString(auth.CtxUserIDKey)
		if actor == "" {
			return
		}
		// entity is the first path segment after the API prefix
		entity := c.Request.URL.Path
		if i := strings.Index(entity, "/api/v1/"); i >= 0 {
			entity = entity[i+len("/api/v1/"):]
		}
		if i := strings.IndexByte(entity, '/'); i >= 0 {
			entity = entity[:i]
		}
		svc.Record(c.Request.Context(), actor, c.Request.Method, entity, c.Param("id"), c.Request.URL.Path)
	}
}

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.GET("/audit-logs", h.List)
}

func (h *Handler) List(c *gin.Context) {
	f := Filter{}
	if v := c.Query("actor"); v != "" {
		f.Actor = &v
	}
	if v := c.Query("entity"); v != "" {
		f.Entity = &v
	}
	if v := c.Query("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.From = &t
		}
	}
	if v := c.Query("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.To = &t
		}
	}
	f.Limit = parseIntDefault(c.Query("limit"), 50)
	f.Offset = parseIntDefault(c.Query("offset"), 0)

	out, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.Body(err))
		return
	}
	c.JSON(http.StatusOK, out)
}

func parseIntDefault(s string, d int) int {
	if s == "" {
		return d
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}
