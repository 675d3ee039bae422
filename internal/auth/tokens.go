package auth

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/warungpos/warungpos/internal/shared"
)

// TokenStore keeps opaque bearer tokens in Redis. Only an HMAC of the token
// is stored, never the token itself.
type TokenStore struct {
	client *redis.Client
	secret []byte
	ttl    time.Duration
}

// NewTokenStore constructs a TokenStore.
func NewTokenStore(client *redis.Client, secret string, ttl time.Duration) *TokenStore {
	return &TokenStore{
		client: client,
		secret: []byte(secret),
		ttl:    ttl,
	}
}

type tokenPayload struct {
	UserID int64       `json:"user_id"`
	Name   string      `json:"name"`
	Role   shared.Role `json:"role"`
}

// Issue creates a fresh bearer token for the user.
func (ts *TokenStore) Issue(ctx context.Context, user *User) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	token := base64.RawURLEncoding.EncodeToString(raw)

	actor := user.Actor()
	payload, err := json.Marshal(tokenPayload{UserID: actor.ID, Name: actor.Name, Role: actor.Role})
	if err != nil {
		return "", err
	}
	if err := ts.client.Set(ctx, ts.redisKey(token), payload, ts.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Resolve maps a bearer token onto its actor and refreshes the TTL.
func (ts *TokenStore) Resolve(ctx context.Context, token string) (shared.Actor, error) {
	if token == "" {
		return shared.Actor{}, shared.ErrUnauthenticated
	}
	key := ts.redisKey(token)
	payload, err := ts.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return shared.Actor{}, shared.ErrUnauthenticated
		}
		return shared.Actor{}, err
	}
	var stored tokenPayload
	if err := json.Unmarshal(payload, &stored); err != nil {
		return shared.Actor{}, err
	}
	_ = ts.client.Expire(ctx, key, ts.ttl).Err()
	return shared.Actor{ID: stored.UserID, Name: stored.Name, Role: stored.Role}, nil
}

// Revoke deletes the token, signing the caller out.
func (ts *TokenStore) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := ts.client.Del(ctx, ts.redisKey(token)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

// TTL exposes the configured token lifetime.
func (ts *TokenStore) TTL() time.Duration { return ts.ttl }

func (ts *TokenStore) redisKey(token string) string {
	mac := hmac.New(sha256.New, ts.secret)
	mac.Write([]byte(token))
	return "auth:token:" + hex.EncodeToString(mac.Sum(nil))
}
