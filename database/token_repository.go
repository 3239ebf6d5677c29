package database

import (
	"context"
	"time"
)

// TokenRepository keeps the admin bearer token of each session.
type TokenRepository struct {
	store KVStore
	ttl   time.Duration
}

func NewTokenRepository(store KVStore, ttl time.Duration) *TokenRepository {
	return &TokenRepository{store: store, ttl: ttl}
}

func (r *TokenRepository) getKey(sessionID string) string {
	return "auth:token:" + sessionID
}

// Get returns the stored token, or "" when there is none.
func (r *TokenRepository) Get(ctx context.Context, sessionID string) string {
	token, found, err := r.store.Get(ctx, r.getKey(sessionID))
	if err != nil || !found {
		return ""
	}
	return token
}

func (r *TokenRepository) Set(ctx context.Context, sessionID, token string) error {
	return r.store.Set(ctx, r.getKey(sessionID), token, r.ttl)
}

func (r *TokenRepository) Clear(ctx context.Context, sessionID string) error {
	return r.store.Delete(ctx, r.getKey(sessionID))
}
