package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/eventide-agency/eventide/internal/shared"
)

// UserStore loads user accounts with their optional client link.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*User, *int64, error)
	FindByID(ctx context.Context, id int64) (*User, *int64, error)
}

// Service authenticates users and manages their bearer tokens.
type Service struct {
	repo   UserStore
	tokens *TokenStore
	logger *slog.Logger
}

func NewService(repo UserStore, tokens *TokenStore, logger *slog.Logger) *Service {
	return &Service{repo: repo, tokens: tokens, logger: logger}
}

// Authenticate verifies credentials and issues a token. All credential
// failures collapse to shared.ErrInvalidCredentials so callers cannot
// distinguish unknown accounts from wrong passwords.
func (s *Service) Authenticate(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, clientID, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("auth: lookup user: %w", err)
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}

	identity := shared.Identity{
		UserID:   user.ID,
		Email:    user.Email,
		Role:     user.Role,
		ClientID: clientID,
	}
	token, err := s.tokens.Issue(ctx, identity)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user logged in", "user_id", user.ID, "role", user.Role)
	return &LoginResponse{Token: token, Identity: identity}, nil
}

// Logout revokes the caller's token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}
