package events

import (
	"context"
	"fmt"
	"strings"

	"github.com/eventide-agency/eventide/internal/shared"
)

// Repository is the persistence contract the service works against.
type Repository interface {
	Get(ctx context.Context, id int64) (*Event, error)
	List(ctx context.Context, req ListEventsRequest) ([]Event, int, error)
	Create(ctx context.Context, e Event) (int64, error)
	Update(ctx context.Context, id int64, req UpdateEventRequest) error
	UpdateStatus(ctx context.Context, id int64, status Status) error
	Delete(ctx context.Context, id int64) error
}

// Service wraps event business rules.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns the event or shared.ErrNotFound.
func (s *Service) Get(ctx context.Context, id int64) (*Event, error) {
	return s.repo.Get(ctx, id)
}

// List returns events matching the filter.
func (s *Service) List(ctx context.Context, req ListEventsRequest) ([]Event, int, error) {
	return s.repo.List(ctx, req)
}

// Create registers a new event in PLANNED status.
func (s *Service) Create(ctx context.Context, req CreateEventRequest) (*Event, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: event name is required", shared.ErrValidation)
	}
	id, err := s.repo.Create(ctx, Event{
		ClientID:    req.ClientID,
		Name:        strings.TrimSpace(req.Name),
		Kind:        req.Kind,
		Date:        req.Date,
		Location:    req.Location,
		GuestCount:  req.GuestCount,
		Status:      StatusPlanned,
		Description: req.Description,
	})
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Update applies header changes, validating any status value.
func (s *Service) Update(ctx context.Context, id int64, req UpdateEventRequest) (*Event, error) {
	if req.Status != nil && !req.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", shared.ErrValidation, *req.Status)
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, id, req); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// UpdateStatus moves the event to the given status without touching the
// rest of the header.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status Status) (*Event, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", shared.ErrValidation, status)
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Delete removes an event.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
