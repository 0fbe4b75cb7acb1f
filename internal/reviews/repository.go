package reviews

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventide-agency/eventide/internal/shared"
)

// Repository provides PostgreSQL backed persistence for reviews.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const reviewColumns = `id, client_id, event_id, rating, comment, published, created_at, updated_at`

func scanReview(row pgx.Row) (*Review, error) {
	var rv Review
	var comment pgtype.Text
	err := row.Scan(
		&rv.ID, &rv.ClientID, &rv.EventID, &rv.Rating, &comment,
		&rv.Published, &rv.CreatedAt, &rv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if comment.Valid {
		rv.Comment = &comment.String
	}
	return &rv, nil
}

func (r *Repository) Get(ctx context.Context, id int64) (*Review, error) {
	return scanReview(r.pool.QueryRow(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, id))
}

// EventOwner returns the client owning an event, or shared.ErrNotFound.
func (r *Repository) EventOwner(ctx context.Context, eventID int64) (int64, error) {
	var clientID int64
	err := r.pool.QueryRow(ctx, `SELECT client_id FROM events WHERE id = $1`, eventID).Scan(&clientID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, shared.ErrNotFound
		}
		return 0, err
	}
	return clientID, nil
}

// ExistsForEvent reports whether the client already reviewed the event.
func (r *Repository) ExistsForEvent(ctx context.Context, clientID, eventID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM reviews WHERE client_id = $1 AND event_id = $2)`,
		clientID, eventID).Scan(&exists)
	return exists, err
}

func (r *Repository) List(ctx context.Context, req ListReviewsRequest) ([]Review, int, error) {
	where := "WHERE 1=1"
	args := []any{}
	argPos := 1

	if req.EventID != nil {
		where += fmt.Sprintf(" AND event_id = $%d", argPos)
		args = append(args, *req.EventID)
		argPos++
	}
	if req.ClientID != nil {
		where += fmt.Sprintf(" AND client_id = $%d", argPos)
		args = append(args, *req.ClientID)
		argPos++
	}
	if req.PublishedOnly {
		where += " AND published"
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM reviews "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(
		"SELECT "+reviewColumns+" FROM reviews %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d",
		where, argPos, argPos+1,
	)
	args = append(args, limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Review
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *rv)
	}
	return out, total, rows.Err()
}

func (r *Repository) Create(ctx context.Context, rv Review) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO reviews (client_id, event_id, rating, comment, published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, FALSE, NOW(), NOW())
		RETURNING id`,
		rv.ClientID, rv.EventID, rv.Rating, optText(rv.Comment),
	).Scan(&id)
	return id, err
}

func (r *Repository) SetPublished(ctx context.Context, id int64, published bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE reviews SET published = $1, updated_at = NOW() WHERE id = $2`, published, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
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
