package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

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

const taskColumns = `id, title, description, assignee_id, event_id, due_date, status, created_at, updated_at`

func scanTask(row pgx.Row) (*Task, error) {
	var t Task
	var description pgtype.Text
	var assigneeID, eventID pgtype.Int8
	var dueDate pgtype.Timestamptz
	err := row.Scan(
		&t.ID, &t.Title, &description, &assigneeID, &eventID,
		&dueDate, &t.Status, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if description.Valid {
		t.Description = &description.String
	}
	if assigneeID.Valid {
		t.AssigneeID = &assigneeID.Int64
	}
	if eventID.Valid {
		t.EventID = &eventID.Int64
	}
	if dueDate.Valid {
		t.DueDate = &dueDate.Time
	}
	return &t, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Task, error) {
	return scanTask(r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
}

func (r *repository) List(ctx context.Context, req ListTasksRequest) ([]Task, int, error) {
	where := "WHERE 1=1"
	args := []any{}
	argPos := 1

	if req.AssigneeID != nil {
		where += fmt.Sprintf(" AND assignee_id = $%d", argPos)
		args = append(args, *req.AssigneeID)
		argPos++
	}
	if req.EventID != nil {
		where += fmt.Sprintf(" AND event_id = $%d", argPos)
		args = append(args, *req.EventID)
		argPos++
	}
	if req.Status != nil {
		where += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, *req.Status)
		argPos++
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM tasks "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(
		"SELECT "+taskColumns+" FROM tasks %s ORDER BY due_date NULLS LAST, id LIMIT $%d OFFSET $%d",
		where, argPos, argPos+1,
	)
	args = append(args, limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *t)
	}
	return out, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, t Task) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO tasks (title, description, assignee_id, event_id, due_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id`,
		t.Title, optText(t.Description), optInt8(t.AssigneeID), optInt8(t.EventID), optTime(t.DueDate), t.Status,
	).Scan(&id)
	return id, err
}

func (r *repository) Update(ctx context.Context, id int64, req UpdateTaskRequest) error {
	query := "UPDATE tasks SET updated_at = NOW()"
	args := []any{}
	argPos := 1

	set := func(col string, v any) {
		query += fmt.Sprintf(", %s = $%d", col, argPos)
		args = append(args, v)
		argPos++
	}
	if req.Title != nil {
		set("title", *req.Title)
	}
	if req.Description != nil {
		set("description", *req.Description)
	}
	if req.AssigneeID != nil {
		set("assignee_id", *req.AssigneeID)
	}
	if req.EventID != nil {
		set("event_id", *req.EventID)
	}
	if req.DueDate != nil {
		set("due_date", *req.DueDate)
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

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
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

func optInt8(v *int64) pgtype.Int8 {
	if v == nil {
		return pgtype.Int8{}
	}
	return pgtype.Int8{Int64: *v, Valid: true}
}

func optTime(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}
