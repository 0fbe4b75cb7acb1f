package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Store is the persistence contract of the audit trail.
type Store interface {
	Insert(ctx context.Context, e Entry) error
	List(ctx context.Context, f ListFilters) ([]Entry, int, error)
}

// Service records and lists audit entries. Recording is best-effort: a
// failed write is logged and never fails the triggering operation.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService constructs a Service.
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Record appends an entry, filling id and timestamp when unset.
func (s *Service) Record(ctx context.Context, e Entry) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	if err := s.store.Insert(ctx, e); err != nil {
		s.logger.Warn("audit record",
			slog.String("action", e.Action),
			slog.String("entity", e.Entity),
			slog.Int64("entity_id", e.EntityID),
			slog.Any("error", err))
	}
}

// List returns entries newest first.
func (s *Service) List(ctx context.Context, f ListFilters) ([]Entry, int, error) {
	return s.store.List(ctx, f)
}
