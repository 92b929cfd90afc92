package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/your-org/donate-storefront/internal/store"
)

const (
	stateKeyPrefix = "app-storage:"
	tokenKeyPrefix = "auth_token:"
)

// StateKey returns the key holding a session's persisted store subset
func StateKey(sessionID string) string {
	return stateKeyPrefix + sessionID
}

// TokenKey returns the key holding a session's bearer token
func TokenKey(sessionID string) string {
	return tokenKeyPrefix + sessionID
}

// SessionState persists one session's store subset and bearer token.
// It implements store.Persister and api.TokenStore.
type SessionState struct {
	client    *Client
	sessionID string
	ttl       time.Duration
}

// NewSessionState binds the session keys; ttl 0 keeps them forever
func NewSessionState(client *Client, sessionID string, ttl time.Duration) *SessionState {
	return &SessionState{client: client, sessionID: sessionID, ttl: ttl}
}

// Load returns the saved subset, nil when the session has never been saved
func (s *SessionState) Load(ctx context.Context) (*store.Persisted, error) {
	var p store.Persisted
	found, err := s.client.GetJSON(ctx, StateKey(s.sessionID), &p)
	if err != nil {
		return nil, fmt.Errorf("failed to load session state: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &p, nil
}

// Save overwrites the saved subset and refreshes the expiry
func (s *SessionState) Save(ctx context.Context, p store.Persisted) error {
	if err := s.client.SetJSON(ctx, StateKey(s.sessionID), p, s.ttl); err != nil {
		return fmt.Errorf("failed to save session state: %w", err)
	}
	return nil
}

// LoadToken returns the bearer token, empty when signed out
func (s *SessionState) LoadToken(ctx context.Context) (string, error) {
	token, err := s.client.Redis.Get(ctx, TokenKey(s.sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return token, err
}

// SaveToken stores the bearer token
func (s *SessionState) SaveToken(ctx context.Context, token string) error {
	return s.client.Redis.Set(ctx, TokenKey(s.sessionID), token, s.ttl).Err()
}

// ClearToken removes the bearer token
func (s *SessionState) ClearToken(ctx context.Context) error {
	return s.client.Redis.Del(ctx, TokenKey(s.sessionID)).Err()
}
