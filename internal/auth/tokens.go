package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/eventide-agency/eventide/internal/shared"
)

// TokenStore issues and resolves opaque bearer tokens backed by Redis.
type TokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTokenStore constructs a TokenStore.
func NewTokenStore(client *redis.Client, ttl time.Duration) *TokenStore {
	return &TokenStore{client: client, ttl: ttl}
}

func (ts *TokenStore) key(token string) string {
	return "authtok:" + token
}

// Issue stores the identity under a fresh random token.
func (ts *TokenStore) Issue(ctx context.Context, id shared.Identity) (string, error) {
	token := uuid.NewString()
	payload, err := json.Marshal(id)
	if err != nil {
		return "", err
	}
	if err := ts.client.Set(ctx, ts.key(token), payload, ts.ttl).Err(); err != nil {
		return "", fmt.Errorf("auth: store token: %w", err)
	}
	return token, nil
}

// Resolve maps a bearer token back to its identity and refreshes the TTL.
// Unknown or expired tokens yield shared.ErrUnauthorized.
func (ts *TokenStore) Resolve(ctx context.Context, token string) (*shared.Identity, error) {
	if token == "" {
		return nil, shared.ErrUnauthorized
	}
	payload, err := ts.client.Get(ctx, ts.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, shared.ErrUnauthorized
		}
		return nil, fmt.Errorf("auth: load token: %w", err)
	}
	var id shared.Identity
	if err := json.Unmarshal(payload, &id); err != nil {
		return nil, shared.ErrUnauthorized
	}
	_ = ts.client.Expire(ctx, ts.key(token), ts.ttl).Err()
	return &id, nil
}

// Revoke deletes a token, ending the session.
func (ts *TokenStore) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := ts.client.Del(ctx, ts.key(token)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("auth: revoke token: %w", err)
	}
	return nil
}
