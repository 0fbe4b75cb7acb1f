package clients

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

const clientColumns = `id, user_id, first_name, last_name, company, email, phone, address, created_at, updated_at`

func scanClient(row pgx.Row) (*Client, error) {
	var c Client
	var company, phone, address pgtype.Text
	err := row.Scan(
		&c.ID, &c.UserID, &c.FirstName, &c.LastName, &company,
		&c.Email, &phone, &address, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if company.Valid {
		c.Company = &company.String
	}
	if phone.Valid {
		c.Phone = &phone.String
	}
	if address.Valid {
		c.Address = &address.String
	}
	return &c, nil
}

// Get fetches a client by id.
func (r *repository) Get(ctx context.Context, id int64) (*Client, error) {
	return scanClient(r.pool.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id))
}

// FindByUserID resolves the client record linked to a user account.
func (r *repository) FindByUserID(ctx context.Context, userID int64) (*Client, error) {
	return scanClient(r.pool.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE user_id = $1`, userID))
}

// List returns clients matching the filter plus the unpaged total.
func (r *repository) List(ctx context.Context, req ListClientsRequest) ([]Client, int, error) {
	where := "WHERE 1=1"
	args := []any{}
	argPos := 1

	if req.Search != nil {
		term := shared.NormalizeSearch(*req.Search)
		if term != "" {
			where += fmt.Sprintf(" AND (lower(first_name || ' ' || last_name) LIKE $%d OR lower(coalesce(company, '')) LIKE $%d OR lower(email) LIKE $%d)", argPos, argPos, argPos)
			args = append(args, "%"+term+"%")
			argPos++
		}
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM clients "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(
		"SELECT "+clientColumns+" FROM clients %s ORDER BY last_name, first_name, id LIMIT $%d OFFSET $%d",
		where, argPos, argPos+1,
	)
	args = append(args, limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *c)
	}
	return out, total, rows.Err()
}

// Create inserts a client record.
func (r *repository) Create(ctx context.Context, c Client) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO clients (user_id, first_name, last_name, company, email, phone, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id`,
		c.UserID, c.FirstName, c.LastName, optText(c.Company), c.Email, optText(c.Phone), optText(c.Address),
	).Scan(&id)
	return id, err
}

// Update applies the provided fields.
func (r *repository) Update(ctx context.Context, id int64, req UpdateClientRequest) error {
	query := "UPDATE clients SET updated_at = NOW()"
	args := []any{}
	argPos := 1

	set := func(col string, v any) {
		query += fmt.Sprintf(", %s = $%d", col, argPos)
		args = append(args, v)
		argPos++
	}
	if req.FirstName != nil {
		set("first_name", *req.FirstName)
	}
	if req.LastName != nil {
		set("last_name", *req.LastName)
	}
	if req.Company != nil {
		set("company", *req.Company)
	}
	if req.Email != nil {
		set("email", *req.Email)
	}
	if req.Phone != nil {
		set("phone", *req.Phone)
	}
	if req.Address != nil {
		set("address", *req.Address)
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

// Delete removes a client record.
func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
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
