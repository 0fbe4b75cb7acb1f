package contact

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

const messageColumns = `id, name, email, subject, body, handled_at, handled_by, created_at`

func scanMessage(row pgx.Row) (*Message, error) {
	var m Message
	var subject pgtype.Text
	var handledAt pgtype.Timestamptz
	var handledBy pgtype.Int8
	err := row.Scan(
		&m.ID, &m.Name, &m.Email, &subject, &m.Body,
		&handledAt, &handledBy, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if subject.Valid {
		m.Subject = &subject.String
	}
	if handledAt.Valid {
		m.HandledAt = &handledAt.Time
	}
	if handledBy.Valid {
		m.HandledBy = &handledBy.Int64
	}
	return &m, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Message, error) {
	return scanMessage(r.pool.QueryRow(ctx, `SELECT `+messageColumns+` FROM contact_messages WHERE id = $1`, id))
}

func (r *repository) List(ctx context.Context, req ListMessagesRequest) ([]Message, int, error) {
	where := "WHERE 1=1"
	if req.Unhandled {
		where += " AND handled_at IS NULL"
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM contact_messages "+where).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(
		"SELECT "+messageColumns+" FROM contact_messages %s ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2",
		where,
	)

	rows, err := r.pool.Query(ctx, query, limit, req.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *m)
	}
	return out, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, m Message) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO contact_messages (name, email, subject, body, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id`,
		m.Name, m.Email, optText(m.Subject), m.Body,
	).Scan(&id)
	return id, err
}

// MarkHandled stamps the message with the handling staff member.
func (r *repository) MarkHandled(ctx context.Context, id, userID int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE contact_messages SET handled_at = NOW(), handled_by = $1 WHERE id = $2`, userID, id)
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
