package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventide-agency/eventide/internal/shared"
)

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const eventColumns = `id, client_id, name, kind, date, location, guest_count, status, description, created_at, updated_at`

func scanEvent(row pgx.Row) (*Event, error) {
	var e Event
	var kind, location, description pgtype.Text
	err := row.Scan(
		&e.ID, &e.ClientID, &e.Name, &kind, &e.Date, &location,
		&e.GuestCount, &e.Status, &description, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if kind.Valid {
		e.Kind = &kind.String
	}
	if location.Valid {
		e.Location = &location.String
	}
	if description.Valid {
		e.Description = &description.String
	}
	return &e, nil
}

// Get fetches a single event.
func (r *repository) Get(ctx context.Context, id int64) (*Event, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	return scanEvent(row)
}

// List returns events matching the filter plus the unpaged total.
func (r *repository) List(ctx context.Context, req ListEventsRequest) ([]Event, int, error) {
	where := "WHERE 1=1"
	args := []any{}
	argPos := 1

	if req.ClientID != nil {
		where += fmt.Sprintf(" AND client_id = $%d", argPos)
		args = append(args, *req.ClientID)
		argPos++
	}
	if req.Status != nil {
		where += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, *req.Status)
		argPos++
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM events "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(
		"SELECT "+eventColumns+" FROM events %s ORDER BY date DESC, id DESC LIMIT $%d OFFSET $%d",
		where, argPos, argPos+1,
	)
	args = append(args, limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *e)
	}
	return out, total, rows.Err()
}

// Create inserts an event in PLANNED status.
func (r *repository) Create(ctx context.Context, e Event) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO events (client_id, name, kind, date, location, guest_count, status, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id`,
		e.ClientID, e.Name, optText(e.Kind), e.Date, optText(e.Location),
		e.GuestCount, e.Status, optText(e.Description),
	).Scan(&id)
	return id, err
}

// Update applies the provided header fields.
func (r *repository) Update(ctx context.Context, id int64, req UpdateEventRequest) error {
	query := "UPDATE events SET updated_at = NOW()"
	args := []any{}
	argPos := 1

	set := func(col string, v any) {
		query += fmt.Sprintf(", %s = $%d", col, argPos)
		args = append(args, v)
		argPos++
	}
	if req.Name != nil {
		set("name", *req.Name)
	}
	if req.Kind != nil {
		set("kind", *req.Kind)
	}
	if req.Date != nil {
		set("date", *req.Date)
	}
	if req.Location != nil {
		set("location", *req.Location)
	}
	if req.GuestCount != nil {
		set("guest_count", *req.GuestCount)
	}
	if req.Description != nil {
		set("description", *req.Description)
	}
	if req.Status != nil {
		set("status", *req.Status)
	}

	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// UpdateStatus sets the event status.
func (r *repository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE events SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes an event.
func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func optText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}
