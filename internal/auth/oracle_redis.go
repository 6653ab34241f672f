package auth

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/coachkit/livechat/internal/domain"
)

// RedisOracle reads ownership facts from the set the client-management
// service maintains per coach: coach:<userId>:clients.
type RedisOracle struct {
	rdb *redis.Client
}

func NewRedisOracle(rdb *redis.Client) *RedisOracle {
	return &RedisOracle{rdb: rdb}
}

func (o *RedisOracle) OwnsClient(ctx context.Context, coach domain.UserID, client domain.ClientID) (bool, error) {
	ok, err := o.rdb.SIsMember(ctx, fmt.Sprintf("coach:%s:clients", coach), string(client)).Result()
	if err != nil {
		return false, fmt.Errorf("ownership lookup: %w", err)
	}
	return ok, nil
}
