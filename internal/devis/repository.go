package devis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventide-agency/eventide/internal/platform/db"
	"github.com/eventide-agency/eventide/internal/shared"
)

// Repository reads quotes and opens transactions for compound mutations.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id int64) (*Devis, error)
	List(ctx context.Context, req ListDevisRequest) ([]Devis, int, error)
	ListByClient(ctx context.Context, clientID int64) ([]Devis, error)
	SetDocumentPath(ctx context.Context, id int64, path string) error
}

// StatusUpdate carries a transition's persisted side effects.
type StatusUpdate struct {
	Status             Status
	SentAt             *time.Time
	RespondedAt        *time.Time
	ModificationReason *string
	ClearReason        bool
}

// TxRepository exposes the operations that must run inside one transaction.
type TxRepository interface {
	EventExists(ctx context.Context, eventID int64) (bool, error)
	ActiveForEvent(ctx context.Context, eventID int64) (*Devis, error)
	NextNumber(ctx context.Context, year int) (int64, error)
	Insert(ctx context.Context, d Devis) (int64, error)
	InsertLine(ctx context.Context, line Prestation) (int64, error)
	DeleteLines(ctx context.Context, devisID int64) error
	UpdateTaxRate(ctx context.Context, id int64, rate float64) error
	UpdateStatus(ctx context.Context, id int64, upd StatusUpdate) error
	ConfirmEvent(ctx context.Context, eventID int64) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// WithTx runs fn against a tx-scoped repository, committing only when fn
// returns nil. The pooled connection is always released.
func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const devisColumns = `d.id, d.number, d.event_id, d.tax_rate, d.status, d.modification_reason,
	d.document_path, d.sent_at, d.responded_at, d.created_at, d.updated_at, e.client_id`

func scanDevis(row pgx.Row) (*Devis, error) {
	var d Devis
	var reason, docPath pgtype.Text
	var sentAt, respondedAt pgtype.Timestamptz
	err := row.Scan(
		&d.ID, &d.Number, &d.EventID, &d.TaxRate, &d.Status, &reason,
		&docPath, &sentAt, &respondedAt, &d.CreatedAt, &d.UpdatedAt, &d.EventClientID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if reason.Valid {
		d.ModificationReason = &reason.String
	}
	if docPath.Valid {
		d.DocumentPath = &docPath.String
	}
	if sentAt.Valid {
		d.SentAt = &sentAt.Time
	}
	if respondedAt.Valid {
		d.RespondedAt = &respondedAt.Time
	}
	return &d, nil
}

func loadLines(ctx context.Context, q querier, devisID int64) ([]Prestation, error) {
	rows, err := q.Query(ctx, `
		SELECT id, devis_id, label, amount, line_order, created_at
		FROM prestations WHERE devis_id = $1
		ORDER BY line_order, id`, devisID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []Prestation
	for rows.Next() {
		var p Prestation
		if err := rows.Scan(&p.ID, &p.DevisID, &p.Label, &p.Amount, &p.LineOrder, &p.CreatedAt); err != nil {
			return nil, err
		}
		lines = append(lines, p)
	}
	return lines, rows.Err()
}

func getDevis(ctx context.Context, q querier, id int64) (*Devis, error) {
	d, err := scanDevis(q.QueryRow(ctx, `
		SELECT `+devisColumns+`
		FROM devis d JOIN events e ON e.id = d.event_id
		WHERE d.id = $1`, id))
	if err != nil {
		return nil, err
	}
	d.Lines, err = loadLines(ctx, q, id)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Devis, error) {
	return getDevis(ctx, r.pool, id)
}

func (r *repository) List(ctx context.Context, req ListDevisRequest) ([]Devis, int, error) {
	where := "WHERE 1=1"
	args := []any{}
	argPos := 1

	if req.EventID != nil {
		where += fmt.Sprintf(" AND d.event_id = $%d", argPos)
		args = append(args, *req.EventID)
		argPos++
	}
	if req.Status != nil {
		where += fmt.Sprintf(" AND d.status = $%d", argPos)
		args = append(args, *req.Status)
		argPos++
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM devis d "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`
		SELECT `+devisColumns+`
		FROM devis d JOIN events e ON e.id = d.event_id
		%s ORDER BY d.created_at DESC, d.id DESC LIMIT $%d OFFSET $%d`,
		where, argPos, argPos+1)
	args = append(args, limit, req.Offset)

	out, err := r.queryMany(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *repository) ListByClient(ctx context.Context, clientID int64) ([]Devis, error) {
	return r.queryMany(ctx, `
		SELECT `+devisColumns+`
		FROM devis d JOIN events e ON e.id = d.event_id
		WHERE e.client_id = $1
		ORDER BY d.created_at DESC, d.id DESC`, clientID)
}

func (r *repository) queryMany(ctx context.Context, query string, args ...any) ([]Devis, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Devis
	for rows.Next() {
		d, err := scanDevis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		lines, err := loadLines(ctx, r.pool, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Lines = lines
	}
	return out, nil
}

func (r *repository) SetDocumentPath(ctx context.Context, id int64, path string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE devis SET document_path = $1, updated_at = NOW() WHERE id = $2`, path, id)
	return err
}

// --- transaction-scoped operations ---

type txRepo struct {
	tx pgx.Tx
}

func (t *txRepo) EventExists(ctx context.Context, eventID int64) (bool, error) {
	var exists bool
	err := t.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, eventID).Scan(&exists)
	return exists, err
}

// ActiveForEvent returns the quote blocking new creation for the event, or
// shared.ErrNotFound when every prior quote is refused or cancelled.
func (t *txRepo) ActiveForEvent(ctx context.Context, eventID int64) (*Devis, error) {
	return scanDevis(t.tx.QueryRow(ctx, `
		SELECT `+devisColumns+`
		FROM devis d JOIN events e ON e.id = d.event_id
		WHERE d.event_id = $1 AND d.status NOT IN ($2, $3)
		ORDER BY d.id DESC LIMIT 1`,
		eventID, StatusRefused, StatusCancelled))
}

// NextNumber atomically advances the per-year sequence. The upsert makes
// concurrent creations serialize on the sequence row, so two transactions
// cannot observe the same value.
func (t *txRepo) NextNumber(ctx context.Context, year int) (int64, error) {
	var seq int64
	err := t.tx.QueryRow(ctx, `
		INSERT INTO devis_sequences (year, seq)
		VALUES ($1, 1)
		ON CONFLICT (year)
		DO UPDATE SET seq = devis_sequences.seq + 1
		RETURNING seq`, year).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next devis number: %w", err)
	}
	return seq, nil
}

func (t *txRepo) Insert(ctx context.Context, d Devis) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `
		INSERT INTO devis (number, event_id, tax_rate, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id`,
		d.Number, d.EventID, d.TaxRate, d.Status,
	).Scan(&id)
	return id, err
}

func (t *txRepo) InsertLine(ctx context.Context, line Prestation) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `
		INSERT INTO prestations (devis_id, label, amount, line_order, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id`,
		line.DevisID, line.Label, line.Amount, line.LineOrder,
	).Scan(&id)
	return id, err
}

func (t *txRepo) DeleteLines(ctx context.Context, devisID int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM prestations WHERE devis_id = $1`, devisID)
	return err
}

func (t *txRepo) UpdateTaxRate(ctx context.Context, id int64, rate float64) error {
	_, err := t.tx.Exec(ctx,
		`UPDATE devis SET tax_rate = $1, updated_at = NOW() WHERE id = $2`, rate, id)
	return err
}

func (t *txRepo) UpdateStatus(ctx context.Context, id int64, upd StatusUpdate) error {
	query := "UPDATE devis SET status = $1, updated_at = NOW()"
	args := []any{upd.Status}
	argPos := 2

	if upd.SentAt != nil {
		query += fmt.Sprintf(", sent_at = $%d", argPos)
		args = append(args, *upd.SentAt)
		argPos++
	}
	if upd.RespondedAt != nil {
		query += fmt.Sprintf(", responded_at = $%d", argPos)
		args = append(args, *upd.RespondedAt)
		argPos++
	}
	if upd.ModificationReason != nil {
		query += fmt.Sprintf(", modification_reason = $%d", argPos)
		args = append(args, *upd.ModificationReason)
		argPos++
	} else if upd.ClearReason {
		query += ", modification_reason = NULL"
	}

	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	tag, err := t.tx.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (t *txRepo) ConfirmEvent(ctx context.Context, eventID int64) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE events SET status = 'CONFIRMED', updated_at = NOW() WHERE id = $1`, eventID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes the quote header; prestations go with it via the cascade,
// and the explicit delete keeps the invariant even without one.
func (t *txRepo) Delete(ctx context.Context, id int64) error {
	if err := t.DeleteLines(ctx, id); err != nil {
		return err
	}
	tag, err := t.tx.Exec(ctx, `DELETE FROM devis WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// IsUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation, used to retry number assignment on the rare collision.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
