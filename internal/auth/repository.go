package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventide-agency/eventide/internal/shared"
)

// Repository loads user accounts from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `u.id, u.email, u.password_hash, u.full_name, u.role, u.is_active, u.created_at, c.id`

func scanUser(row pgx.Row) (*User, *int64, error) {
	var u User
	var clientID pgtype.Int8
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Role, &u.IsActive, &u.CreatedAt, &clientID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, shared.ErrNotFound
		}
		return nil, nil, err
	}
	if clientID.Valid {
		return &u, &clientID.Int64, nil
	}
	return &u, nil, nil
}

// FindByEmail loads a user and, when present, the linked client id.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*User, *int64, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users u LEFT JOIN clients c ON c.user_id = u.id
		WHERE lower(u.email) = lower($1)`, email))
}

// FindByID loads a user by primary key.
func (r *Repository) FindByID(ctx context.Context, id int64) (*User, *int64, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users u LEFT JOIN clients c ON c.user_id = u.id
		WHERE u.id = $1`, id))
}
