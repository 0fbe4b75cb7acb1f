package devis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/eventide-agency/eventide/internal/audit"
	"github.com/eventide-agency/eventide/internal/clients"
	"github.com/eventide-agency/eventide/internal/shared"
)

// ClientDirectory resolves a caller's user account to their client record.
type ClientDirectory interface {
	FindByUserID(ctx context.Context, userID int64) (*clients.Client, error)
}

// Notifier delivers quote lifecycle emails. Best-effort: failures are
// logged by the service and never fail the triggering operation.
type Notifier interface {
	DevisSent(ctx context.Context, d WithTotals, document []byte) error
	DevisResponse(ctx context.Context, d WithTotals, action string, reason *string) error
}

// DocumentRenderer produces the PDF for a quote.
type DocumentRenderer interface {
	RenderDevis(ctx context.Context, d WithTotals) ([]byte, error)
}

// Auditor records mutating operations. Best-effort.
type Auditor interface {
	Record(ctx context.Context, e audit.Entry)
}

// Service orchestrates the quote lifecycle.
type Service struct {
	repo      Repository
	clientDir ClientDirectory
	notifier  Notifier
	documents DocumentRenderer
	auditor   Auditor
	logger    *slog.Logger
}

// NewService constructs a Service. notifier, documents and auditor may be
// nil; the matching side effects are then skipped.
func NewService(
	repo Repository,
	clientDir ClientDirectory,
	notifier Notifier,
	documents DocumentRenderer,
	auditor Auditor,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:      repo,
		clientDir: clientDir,
		notifier:  notifier,
		documents: documents,
		auditor:   auditor,
		logger:    logger,
	}
}

// Get returns one quote with fresh totals.
func (s *Service) Get(ctx context.Context, id int64) (*WithTotals, error) {
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return withTotals(d), nil
}

// List returns quotes matching the filter.
func (s *Service) List(ctx context.Context, req ListDevisRequest) ([]WithTotals, int, error) {
	list, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, 0, err
	}
	out := make([]WithTotals, 0, len(list))
	for i := range list {
		out = append(out, *withTotals(&list[i]))
	}
	return out, total, nil
}

// ListMine returns the quotes belonging to the calling client.
func (s *Service) ListMine(ctx context.Context, userID int64) ([]WithTotals, error) {
	client, err := s.clientDir.FindByUserID(ctx, userID)
	if err != nil || client == nil {
		return nil, shared.ErrForbidden
	}
	list, err := s.repo.ListByClient(ctx, client.ID)
	if err != nil {
		return nil, err
	}
	out := make([]WithTotals, 0, len(list))
	for i := range list {
		out = append(out, *withTotals(&list[i]))
	}
	return out, nil
}

// Create opens a transaction that verifies the event, rejects a second
// active quote, assigns the next number for the current year and inserts
// header plus line items as one unit. Nothing survives a mid-way failure.
func (s *Service) Create(ctx context.Context, req CreateDevisRequest) (*WithTotals, error) {
	lines, err := buildLines(req.LineItems)
	if err != nil {
		return nil, err
	}
	taxRate := DefaultTaxRate
	if req.TaxRate != nil {
		taxRate = *req.TaxRate
	}

	var devisID int64
	create := func() error {
		return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
			exists, err := tx.EventExists(ctx, req.EventID)
			if err != nil {
				return err
			}
			if !exists {
				return fmt.Errorf("%w: event %d", shared.ErrNotFound, req.EventID)
			}

			blocking, err := tx.ActiveForEvent(ctx, req.EventID)
			if err == nil {
				return fmt.Errorf("%w: event %d already has active devis %s",
					shared.ErrConflict, req.EventID, blocking.Number)
			}
			if !errors.Is(err, shared.ErrNotFound) {
				return err
			}

			year := time.Now().Year()
			seq, err := tx.NextNumber(ctx, year)
			if err != nil {
				return err
			}

			id, err := tx.Insert(ctx, Devis{
				Number:  FormatNumber(year, seq),
				EventID: req.EventID,
				TaxRate: taxRate,
				Status:  StatusDraft,
			})
			if err != nil {
				return fmt.Errorf("insert devis: %w", err)
			}
			devisID = id

			for i := range lines {
				lines[i].DevisID = id
				lines[i].LineOrder = i + 1
				if _, err := tx.InsertLine(ctx, lines[i]); err != nil {
					return fmt.Errorf("insert prestation: %w", err)
				}
			}
			return nil
		})
	}

	err = create()
	if IsUniqueViolation(err) {
		// The unique index on the number column caught a concurrent
		// assignment; one retry picks up the next sequence value.
		err = create()
	}
	if err != nil {
		return nil, err
	}

	s.audit(ctx, "devis.create", devisID)
	return s.Get(ctx, devisID)
}

// Update applies header changes and, when line items are provided, replaces
// the full set inside one transaction. An edit on a quote whose client
// requested changes also moves it back to draft and clears the reason.
func (s *Service) Update(ctx context.Context, id int64, req UpdateDevisRequest) (*WithTotals, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Status == StatusAccepted {
		return nil, fmt.Errorf("%w: devis %s has been accepted", shared.ErrImmutable, existing.Number)
	}

	var lines []Prestation
	if req.LineItems != nil {
		lines, err = buildLines(*req.LineItems)
		if err != nil {
			return nil, err
		}
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if req.TaxRate != nil {
			if err := tx.UpdateTaxRate(ctx, id, *req.TaxRate); err != nil {
				return fmt.Errorf("update tax rate: %w", err)
			}
		}
		if req.LineItems != nil {
			if err := tx.DeleteLines(ctx, id); err != nil {
				return fmt.Errorf("delete prestations: %w", err)
			}
			for i := range lines {
				lines[i].DevisID = id
				lines[i].LineOrder = i + 1
				if _, err := tx.InsertLine(ctx, lines[i]); err != nil {
					return fmt.Errorf("insert prestation: %w", err)
				}
			}
		}
		if existing.Status.CanTransition(TransitionRework) {
			// The edit resolves the pending modification request.
			if err := tx.UpdateStatus(ctx, id, StatusUpdate{Status: StatusDraft, ClearReason: true}); err != nil {
				return fmt.Errorf("rework devis: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, "devis.update", id)
	return s.Get(ctx, id)
}

// Delete removes a quote and its line items, unless it was accepted.
func (s *Service) Delete(ctx context.Context, id int64) error {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing.Status == StatusAccepted {
		return fmt.Errorf("%w: devis %s has been accepted", shared.ErrImmutable, existing.Number)
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.audit(ctx, "devis.delete", id)
	return nil
}

// Send moves a draft quote under client review, then renders the document
// and notifies the client. Rendering and notification failures are logged
// and swallowed; the committed transition is the authoritative outcome.
func (s *Service) Send(ctx context.Context, id int64) (*WithTotals, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !existing.Status.CanTransition(TransitionSend) {
		return nil, fmt.Errorf("%w: cannot send devis in status %s", shared.ErrInvalidTransition, existing.Status)
	}

	now := time.Now()
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.UpdateStatus(ctx, id, StatusUpdate{Status: StatusUnderClientReview, SentAt: &now})
	})
	if err != nil {
		return nil, err
	}

	out, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.dispatchSent(ctx, out)
	s.audit(ctx, "devis.send", id)
	return out, nil
}

// Accept records the client's acceptance and confirms the parent event in
// the same transaction.
func (s *Service) Accept(ctx context.Context, id, callerUserID int64) (*WithTotals, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeOwner(ctx, existing, callerUserID); err != nil {
		return nil, err
	}
	if !existing.Status.CanTransition(TransitionAccept) {
		return nil, fmt.Errorf("%w: cannot accept devis in status %s", shared.ErrInvalidTransition, existing.Status)
	}

	now := time.Now()
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.UpdateStatus(ctx, id, StatusUpdate{Status: StatusAccepted, RespondedAt: &now}); err != nil {
			return err
		}
		return tx.ConfirmEvent(ctx, existing.EventID)
	})
	if err != nil {
		return nil, err
	}

	out, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.dispatchResponse(ctx, out, "accepted", nil)
	s.audit(ctx, "devis.accept", id)
	return out, nil
}

// Refuse records the client's refusal.
func (s *Service) Refuse(ctx context.Context, id, callerUserID int64) (*WithTotals, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeOwner(ctx, existing, callerUserID); err != nil {
		return nil, err
	}
	if !existing.Status.CanTransition(TransitionRefuse) {
		return nil, fmt.Errorf("%w: cannot refuse devis in status %s", shared.ErrInvalidTransition, existing.Status)
	}

	now := time.Now()
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.UpdateStatus(ctx, id, StatusUpdate{Status: StatusRefused, RespondedAt: &now})
	})
	if err != nil {
		return nil, err
	}

	out, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.dispatchResponse(ctx, out, "refused", nil)
	s.audit(ctx, "devis.refuse", id)
	return out, nil
}

// RequestModification stores the client's change request and parks the
// quote until staff reworks it.
func (s *Service) RequestModification(ctx context.Context, id, callerUserID int64, reason string) (*WithTotals, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeOwner(ctx, existing, callerUserID); err != nil {
		return nil, err
	}
	if !existing.Status.CanTransition(TransitionRequestModification) {
		return nil, fmt.Errorf("%w: cannot request changes on devis in status %s", shared.ErrInvalidTransition, existing.Status)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: a reason is required", shared.ErrValidation)
	}

	now := time.Now()
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.UpdateStatus(ctx, id, StatusUpdate{
			Status:             StatusModificationRequested,
			RespondedAt:        &now,
			ModificationReason: &reason,
		})
	})
	if err != nil {
		return nil, err
	}

	out, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.dispatchResponse(ctx, out, "modification_requested", &reason)
	s.audit(ctx, "devis.modify", id)
	return out, nil
}

// RenderPDF produces the quote document, returning the quote alongside the
// bytes so callers need no second read. Unlike the send flow, a rendering
// failure here surfaces to the caller who explicitly asked for the file.
func (s *Service) RenderPDF(ctx context.Context, id int64) (*WithTotals, []byte, error) {
	if s.documents == nil {
		return nil, nil, errors.New("devis: document renderer not configured")
	}
	out, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	document, err := s.documents.RenderDevis(ctx, *out)
	if err != nil {
		return nil, nil, fmt.Errorf("render devis document: %w", err)
	}
	s.storeDocumentPath(ctx, out)
	return out, document, nil
}

// authorizeOwner admits only the client linked to the quote's parent event.
// The error reveals nothing about the quote.
func (s *Service) authorizeOwner(ctx context.Context, d *Devis, userID int64) error {
	if s.clientDir == nil {
		return shared.ErrForbidden
	}
	client, err := s.clientDir.FindByUserID(ctx, userID)
	if err != nil || client == nil {
		return shared.ErrForbidden
	}
	if client.ID != d.EventClientID {
		return shared.ErrForbidden
	}
	return nil
}

func (s *Service) dispatchSent(ctx context.Context, out *WithTotals) {
	var document []byte
	if s.documents != nil {
		var err error
		document, err = s.documents.RenderDevis(ctx, *out)
		if err != nil {
			s.logger.Warn("render devis document", slog.String("number", out.Number), slog.Any("error", err))
			document = nil
		} else {
			s.storeDocumentPath(ctx, out)
		}
	}
	if s.notifier != nil {
		if err := s.notifier.DevisSent(ctx, *out, document); err != nil {
			s.logger.Warn("notify devis sent", slog.String("number", out.Number), slog.Any("error", err))
		}
	}
}

func (s *Service) dispatchResponse(ctx context.Context, out *WithTotals, action string, reason *string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.DevisResponse(ctx, *out, action, reason); err != nil {
		s.logger.Warn("notify devis response",
			slog.String("number", out.Number), slog.String("action", action), slog.Any("error", err))
	}
}

func (s *Service) storeDocumentPath(ctx context.Context, out *WithTotals) {
	path := fmt.Sprintf("documents/devis/%s.pdf", out.Number)
	if err := s.repo.SetDocumentPath(ctx, out.ID, path); err != nil {
		s.logger.Warn("store document path", slog.String("number", out.Number), slog.Any("error", err))
		return
	}
	out.DocumentPath = &path
}

func (s *Service) audit(ctx context.Context, action string, entityID int64) {
	if s.auditor == nil {
		return
	}
	var actor int64
	if id := shared.IdentityFromContext(ctx); id != nil {
		actor = id.UserID
	}
	s.auditor.Record(ctx, audit.Entry{
		ActorID:  actor,
		Action:   action,
		Entity:   "devis",
		EntityID: entityID,
	})
}

func buildLines(reqs []LineItemRequest) ([]Prestation, error) {
	lines := make([]Prestation, 0, len(reqs))
	for i, lr := range reqs {
		label := strings.TrimSpace(lr.Label)
		if label == "" {
			return nil, fmt.Errorf("%w: line item %d has an empty label", shared.ErrValidation, i+1)
		}
		if lr.Amount < 0 {
			return nil, fmt.Errorf("%w: line item %d has a negative amount", shared.ErrValidation, i+1)
		}
		lines = append(lines, Prestation{Label: label, Amount: lr.Amount})
	}
	return lines, nil
}
