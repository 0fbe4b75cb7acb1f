package reviews

import (
	"context"
	"fmt"

	"github.com/eventide-agency/eventide/internal/shared"
)

// Store is the persistence contract for reviews.
type Store interface {
	Get(ctx context.Context, id int64) (*Review, error)
	EventOwner(ctx context.Context, eventID int64) (int64, error)
	ExistsForEvent(ctx context.Context, clientID, eventID int64) (bool, error)
	List(ctx context.Context, req ListReviewsRequest) ([]Review, int, error)
	Create(ctx context.Context, rv Review) (int64, error)
	SetPublished(ctx context.Context, id int64, published bool) error
	Delete(ctx context.Context, id int64) error
}

// Service implements review submission and moderation.
type Service struct {
	store Store
}

// NewService constructs a Service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) Get(ctx context.Context, id int64) (*Review, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListReviewsRequest) ([]Review, int, error) {
	return s.store.List(ctx, req)
}

// Create records a review by the owning client. The event must belong to
// the caller's client record, and each event takes at most one review.
func (s *Service) Create(ctx context.Context, clientID int64, req CreateReviewRequest) (*Review, error) {
	owner, err := s.store.EventOwner(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	if owner != clientID {
		return nil, shared.ErrForbidden
	}
	exists, err := s.store.ExistsForEvent(ctx, clientID, req.EventID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: event already reviewed", shared.ErrConflict)
	}

	id, err := s.store.Create(ctx, Review{
		ClientID: clientID,
		EventID:  req.EventID,
		Rating:   req.Rating,
		Comment:  req.Comment,
	})
	if err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}
	return s.store.Get(ctx, id)
}

// Moderate publishes or hides a review.
func (s *Service) Moderate(ctx context.Context, id int64, req ModerateReviewRequest) (*Review, error) {
	if err := s.store.SetPublished(ctx, id, req.Published); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}
