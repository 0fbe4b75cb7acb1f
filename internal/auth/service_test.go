package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/eventide-agency/eventide/internal/shared"
)

type stubUserStore struct {
	user     *User
	clientID *int64
}

func (s *stubUserStore) FindByEmail(ctx context.Context, email string) (*User, *int64, error) {
	if s.user == nil || s.user.Email != email {
		return nil, nil, shared.ErrNotFound
	}
	return s.user, s.clientID, nil
}

func (s *stubUserStore) FindByID(ctx context.Context, id int64) (*User, *int64, error) {
	if s.user == nil || s.user.ID != id {
		return nil, nil, shared.ErrNotFound
	}
	return s.user, s.clientID, nil
}

func newAuthFixture(t *testing.T, user *User, clientID *int64) (*Service, *TokenStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	tokens := NewTokenStore(client, time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(&stubUserStore{user: user, clientID: clientID}, tokens, logger), tokens
}

func hash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestAuthenticateIssuesToken(t *testing.T) {
	clientID := int64(42)
	service, tokens := newAuthFixture(t, &User{
		ID:           7,
		Email:        "claire@example.com",
		PasswordHash: hash(t, "s3cret-pass"),
		Role:         shared.RoleClient,
		IsActive:     true,
	}, &clientID)

	resp, err := service.Authenticate(context.Background(), LoginRequest{
		Email:    "claire@example.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	require.Equal(t, int64(7), resp.Identity.UserID)
	require.Equal(t, shared.RoleClient, resp.Identity.Role)
	require.NotNil(t, resp.Identity.ClientID)
	require.Equal(t, int64(42), *resp.Identity.ClientID)

	resolved, err := tokens.Resolve(context.Background(), resp.Token)
	require.NoError(t, err)
	require.Equal(t, resp.Identity, *resolved)
}

func TestAuthenticateFailuresCollapse(t *testing.T) {
	service, _ := newAuthFixture(t, &User{
		ID:           7,
		Email:        "claire@example.com",
		PasswordHash: hash(t, "s3cret-pass"),
		Role:         shared.RoleClient,
		IsActive:     true,
	}, nil)

	_, err := service.Authenticate(context.Background(), LoginRequest{
		Email: "nobody@example.com", Password: "whatever",
	})
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = service.Authenticate(context.Background(), LoginRequest{
		Email: "claire@example.com", Password: "wrong",
	})
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateInactiveAccount(t *testing.T) {
	service, _ := newAuthFixture(t, &User{
		ID:           7,
		Email:        "claire@example.com",
		PasswordHash: hash(t, "s3cret-pass"),
		Role:         shared.RoleClient,
		IsActive:     false,
	}, nil)

	_, err := service.Authenticate(context.Background(), LoginRequest{
		Email: "claire@example.com", Password: "s3cret-pass",
	})
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestLogoutRevokesToken(t *testing.T) {
	service, tokens := newAuthFixture(t, &User{
		ID:           7,
		Email:        "claire@example.com",
		PasswordHash: hash(t, "s3cret-pass"),
		Role:         shared.RoleAdmin,
		IsActive:     true,
	}, nil)

	resp, err := service.Authenticate(context.Background(), LoginRequest{
		Email: "claire@example.com", Password: "s3cret-pass",
	})
	require.NoError(t, err)

	require.NoError(t, service.Logout(context.Background(), resp.Token))
	_, err = tokens.Resolve(context.Background(), resp.Token)
	require.ErrorIs(t, err, shared.ErrUnauthorized)
}
