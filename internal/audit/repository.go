package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists audit entries in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert appends one entry.
func (r *Repository) Insert(ctx context.Context, e Entry) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO audit_entries (id, actor_id, action, entity, entity_id, at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.ActorID, e.Action, e.Entity, e.EntityID, e.At)
	return err
}

// List returns entries newest first, filtered and paged.
func (r *Repository) List(ctx context.Context, f ListFilters) ([]Entry, int, error) {
	where := "WHERE 1=1"
	args := []any{}
	argPos := 1

	if f.Actor != nil {
		where += fmt.Sprintf(" AND actor_id = $%d", argPos)
		args = append(args, *f.Actor)
		argPos++
	}
	if f.Entity != "" {
		where += fmt.Sprintf(" AND entity = $%d", argPos)
		args = append(args, f.Entity)
		argPos++
	}
	if f.Action != "" {
		where += fmt.Sprintf(" AND action = $%d", argPos)
		args = append(args, f.Action)
		argPos++
	}
	if !f.From.IsZero() {
		where += fmt.Sprintf(" AND at >= $%d", argPos)
		args = append(args, f.From)
		argPos++
	}
	if !f.To.IsZero() {
		where += fmt.Sprintf(" AND at <= $%d", argPos)
		args = append(args, f.To)
		argPos++
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM audit_entries "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	pageSize := f.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 50
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	query := fmt.Sprintf(`
		SELECT id, actor_id, action, entity, entity_id, at
		FROM audit_entries %s
		ORDER BY at DESC, id DESC
		LIMIT $%d OFFSET $%d`, where, argPos, argPos+1)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.Entity, &e.EntityID, &e.At); err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}
