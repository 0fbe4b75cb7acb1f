package prospects

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventide-agency/eventide/internal/platform/db"
	"github.com/eventide-agency/eventide/internal/shared"
)

// Repository is the persistence contract for prospects.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id int64) (*Prospect, error)
	List(ctx context.Context, req ListProspectsRequest) ([]Prospect, int, error)
	Create(ctx context.Context, p Prospect) (int64, error)
	Update(ctx context.Context, id int64, req UpdateProspectRequest) error
	Delete(ctx context.Context, id int64) error
	AddNote(ctx context.Context, n Note) (int64, error)
	ListNotes(ctx context.Context, prospectID int64) ([]Note, error)
}

// TxRepository exposes the conversion steps that must run in one transaction.
type TxRepository interface {
	GetForUpdate(ctx context.Context, id int64) (*Prospect, error)
	InsertUser(ctx context.Context, email, passwordHash, fullName string) (int64, error)
	InsertClient(ctx context.Context, userID int64, p Prospect, address *string) (int64, error)
	MarkConverted(ctx context.Context, id, clientID int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

const prospectColumns = `id, first_name, last_name, company, email, phone, source, status, client_id, created_at, updated_at`

func scanProspect(row pgx.Row) (*Prospect, error) {
	var p Prospect
	var company, phone, source pgtype.Text
	var clientID pgtype.Int8
	err := row.Scan(
		&p.ID, &p.FirstName, &p.LastName, &company, &p.Email,
		&phone, &source, &p.Status, &clientID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if company.Valid {
		p.Company = &company.String
	}
	if phone.Valid {
		p.Phone = &phone.String
	}
	if source.Valid {
		p.Source = &source.String
	}
	if clientID.Valid {
		p.ClientID = &clientID.Int64
	}
	return &p, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Prospect, error) {
	return scanProspect(r.pool.QueryRow(ctx, `SELECT `+prospectColumns+` FROM prospects WHERE id = $1`, id))
}

func (r *repository) List(ctx context.Context, req ListProspectsRequest) ([]Prospect, int, error) {
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
	if req.Status != nil {
		where += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, *req.Status)
		argPos++
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM prospects "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(
		"SELECT "+prospectColumns+" FROM prospects %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d",
		where, argPos, argPos+1,
	)
	args = append(args, limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Prospect
	for rows.Next() {
		p, err := scanProspect(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *p)
	}
	return out, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, p Prospect) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO prospects (first_name, last_name, company, email, phone, source, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id`,
		p.FirstName, p.LastName, optText(p.Company), p.Email, optText(p.Phone), optText(p.Source), p.Status,
	).Scan(&id)
	return id, err
}

func (r *repository) Update(ctx context.Context, id int64, req UpdateProspectRequest) error {
	query := "UPDATE prospects SET updated_at = NOW()"
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
	if req.Source != nil {
		set("source", *req.Source)
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
	tag, err := r.pool.Exec(ctx, `DELETE FROM prospects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) AddNote(ctx context.Context, n Note) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO prospect_notes (prospect_id, author_id, body, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id`,
		n.ProspectID, n.AuthorID, n.Body,
	).Scan(&id)
	return id, err
}

func (r *repository) ListNotes(ctx context.Context, prospectID int64) ([]Note, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, prospect_id, author_id, body, created_at
		FROM prospect_notes WHERE prospect_id = $1
		ORDER BY created_at DESC, id DESC`, prospectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.ProspectID, &n.AuthorID, &n.Body, &n.CreatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// --- transaction-scoped operations ---

type txRepo struct {
	tx pgx.Tx
}

// GetForUpdate locks the prospect row so two conversions cannot race.
func (t *txRepo) GetForUpdate(ctx context.Context, id int64) (*Prospect, error) {
	return scanProspect(t.tx.QueryRow(ctx,
		`SELECT `+prospectColumns+` FROM prospects WHERE id = $1 FOR UPDATE`, id))
}

func (t *txRepo) InsertUser(ctx context.Context, email, passwordHash, fullName string) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, full_name, role, is_active, created_at)
		VALUES ($1, $2, $3, 'client', TRUE, NOW())
		RETURNING id`,
		email, passwordHash, fullName,
	).Scan(&id)
	return id, err
}

func (t *txRepo) InsertClient(ctx context.Context, userID int64, p Prospect, address *string) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `
		INSERT INTO clients (user_id, first_name, last_name, company, email, phone, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id`,
		userID, p.FirstName, p.LastName, optText(p.Company), p.Email, optText(p.Phone), optText(address),
	).Scan(&id)
	return id, err
}

func (t *txRepo) MarkConverted(ctx context.Context, id, clientID int64) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE prospects SET status = $1, client_id = $2, updated_at = NOW()
		WHERE id = $3`, StatusConverted, clientID, id)
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
