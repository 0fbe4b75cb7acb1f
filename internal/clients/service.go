package clients

import (
	"context"
	"fmt"
)

// Repository is the persistence contract for client records.
type Repository interface {
	Get(ctx context.Context, id int64) (*Client, error)
	FindByUserID(ctx context.Context, userID int64) (*Client, error)
	List(ctx context.Context, req ListClientsRequest) ([]Client, int, error)
	Create(ctx context.Context, c Client) (int64, error)
	Update(ctx context.Context, id int64, req UpdateClientRequest) error
	Delete(ctx context.Context, id int64) error
}

// Service wraps client directory operations.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id int64) (*Client, error) {
	return s.repo.Get(ctx, id)
}

// FindByUserID resolves a caller's user account to their client record.
// Used by the quote lifecycle to check ownership of client transitions.
func (s *Service) FindByUserID(ctx context.Context, userID int64) (*Client, error) {
	return s.repo.FindByUserID(ctx, userID)
}

func (s *Service) List(ctx context.Context, req ListClientsRequest) ([]Client, int, error) {
	return s.repo.List(ctx, req)
}

func (s *Service) Create(ctx context.Context, req CreateClientRequest) (*Client, error) {
	id, err := s.repo.Create(ctx, Client{
		UserID:    req.UserID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Company:   req.Company,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
	})
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateClientRequest) (*Client, error) {
	if err := s.repo.Update(ctx, id, req); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
