package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// keyPrefix namespaces storefront slots in a shared Redis instance.
const keyPrefix = "storefront:slot:"

// redisStorage implements Storage on a Redis string key per slot.
type redisStorage struct {
	client *redis.Client
}

// NewRedisStorage creates a Storage backed by the given Redis client.
func NewRedisStorage(client *redis.Client) Storage {
	return &redisStorage{client: client}
}

// Load retrieves the blob stored under slot.
func (s *redisStorage) Load(ctx context.Context, slot string) ([]byte, error) {
	data, err := s.client.Get(ctx, keyPrefix+slot).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("failed to read slot %s: %w", slot, err)
	}
	return data, nil
}

// Save stores the blob under slot. Slots never expire; last write wins.
func (s *redisStorage) Save(ctx context.Context, slot string, data []byte) error {
	if err := s.client.Set(ctx, keyPrefix+slot, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write slot %s: %w", slot, err)
	}
	return nil
}
