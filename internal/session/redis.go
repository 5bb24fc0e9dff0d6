package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fennlabs/fennlingo/internal/dialogue"
)

const keyPrefix = "fennlingo:session:"

// RedisStore is a Redis-backed Store. Each session lives under one key
// as a JSON snapshot with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(userID string) string { return keyPrefix + userID }

func (s *RedisStore) Get(ctx context.Context, userID string) (dialogue.Session, bool, error) {
	raw, err := s.client.Get(ctx, sessionKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return dialogue.Session{}, false, nil
	}
	if err != nil {
		return dialogue.Session{}, false, fmt.Errorf("reading session %s: %w", userID, err)
	}

	var sess dialogue.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		// A snapshot that no longer parses is unrecoverable; drop it and
		// let the dialogue restart.
		_ = s.client.Del(ctx, sessionKey(userID)).Err()
		return dialogue.Session{}, false, nil
	}
	return sess, true, nil
}

func (s *RedisStore) Put(ctx context.Context, userID string, sess dialogue.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encoding session %s: %w", userID, err)
	}
	if err := s.client.Set(ctx, sessionKey(userID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("writing session %s: %w", userID, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("deleting session %s: %w", userID, err)
	}
	return nil
}
