package history

import (
	"context"
	"errors"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

// redisClient is the subset of the go-redis client the persister needs.
type redisClient interface {
	Get(ctx context.Context, key string) *redisv9.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redisv9.StatusCmd
}

// RedisPersister stores the slot under a single key with no expiry.
type RedisPersister struct {
	client redisClient
	key    string
}

func NewRedisPersister(client redisClient, key string) *RedisPersister {
	return &RedisPersister{client: client, key: key}
}

func (p *RedisPersister) Read(ctx context.Context) ([]byte, error) {
	b, err := p.client.Get(ctx, p.key).Bytes()
	if errors.Is(err, redisv9.Nil) {
		return nil, ErrSlotEmpty
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (p *RedisPersister) Write(ctx context.Context, data []byte) error {
	return p.client.Set(ctx, p.key, data, 0).Err()
}
