package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/coachkit/livechat/internal/domain"
)

const sessionKeyPrefix = "session:"

// RedisStore resolves sessions from the shared redis the web
// application writes them to. One GET per handshake; the record is a
// JSON document {userId, expiresAt}.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Lookup(ctx context.Context, sessionID string) (domain.Session, error) {
	raw, err := s.rdb.Get(ctx, sessionKeyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return domain.Session{}, ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("session lookup: %w", err)
	}

	var sess domain.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return domain.Session{}, fmt.Errorf("%w: %v", ErrBadSessionRecord, err)
	}
	return sess, nil
}
