package contact

import (
	"context"
	"fmt"
	"log/slog"
)

// Acknowledger enqueues the acknowledgment email for a new message.
// Best-effort: failures are logged and never fail the submission.
type Acknowledger interface {
	ContactAck(ctx context.Context, email, name string) error
}

// Repository is the persistence contract for the inbox.
type Repository interface {
	Get(ctx context.Context, id int64) (*Message, error)
	List(ctx context.Context, req ListMessagesRequest) ([]Message, int, error)
	Create(ctx context.Context, m Message) (int64, error)
	MarkHandled(ctx context.Context, id, userID int64) error
}

// Service implements the contact inbox.
type Service struct {
	repo   Repository
	ack    Acknowledger
	logger *slog.Logger
}

// NewService constructs a Service. ack may be nil; the acknowledgment
// email is then skipped.
func NewService(repo Repository, ack Acknowledger, logger *slog.Logger) *Service {
	return &Service{repo: repo, ack: ack, logger: logger}
}

func (s *Service) Get(ctx context.Context, id int64) (*Message, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListMessagesRequest) ([]Message, int, error) {
	return s.repo.List(ctx, req)
}

// Submit stores an inbound message and enqueues the acknowledgment.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*Message, error) {
	id, err := s.repo.Create(ctx, Message{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Body:    req.Body,
	})
	if err != nil {
		return nil, fmt.Errorf("store contact message: %w", err)
	}

	if s.ack != nil {
		if err := s.ack.ContactAck(ctx, req.Email, req.Name); err != nil {
			s.logger.Warn("contact acknowledgment not enqueued",
				slog.Int64("message_id", id), slog.Any("error", err))
		}
	}
	return s.repo.Get(ctx, id)
}

// MarkHandled records which staff member dealt with the message.
func (s *Service) MarkHandled(ctx context.Context, id, userID int64) (*Message, error) {
	if err := s.repo.MarkHandled(ctx, id, userID); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}
