package tasks

import (
	"context"
	"fmt"

	"github.com/eventide-agency/eventide/internal/shared"
)

// Repository is the persistence contract for tasks.
type Repository interface {
	Get(ctx context.Context, id int64) (*Task, error)
	List(ctx context.Context, req ListTasksRequest) ([]Task, int, error)
	Create(ctx context.Context, t Task) (int64, error)
	Update(ctx context.Context, id int64, req UpdateTaskRequest) error
	Delete(ctx context.Context, id int64) error
}

// Service implements staff task management.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id int64) (*Task, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListTasksRequest) ([]Task, int, error) {
	if req.Status != nil && !req.Status.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", shared.ErrValidation, *req.Status)
	}
	return s.repo.List(ctx, req)
}

func (s *Service) Create(ctx context.Context, req CreateTaskRequest) (*Task, error) {
	id, err := s.repo.Create(ctx, Task{
		Title:       req.Title,
		Description: req.Description,
		AssigneeID:  req.AssigneeID,
		EventID:     req.EventID,
		DueDate:     req.DueDate,
		Status:      StatusTodo,
	})
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateTaskRequest) (*Task, error) {
	if req.Status != nil && !req.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", shared.ErrValidation, *req.Status)
	}
	if err := s.repo.Update(ctx, id, req); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
