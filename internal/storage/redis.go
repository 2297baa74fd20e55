package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements SnapshotStore using Redis as the data store.
// Snapshots are plain string values keyed by namespace, written with SET and
// read with GET, matching the overwrite-wholesale persistence contract.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a new instance of SnapshotStore using the provided
// Redis client. Keys are prefixed to keep the service's snapshots apart from
// other tenants of the same instance.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) Save(ctx context.Context, namespace string, data []byte) error {
	if err := s.client.Set(ctx, s.key(namespace), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", namespace, err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, namespace string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(namespace)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to read snapshot %s: %w", namespace, err)
	}
	return data, nil
}

func (s *RedisStore) Delete(ctx context.Context, namespace string) error {
	if err := s.client.Del(ctx, s.key(namespace)).Err(); err != nil {
		return fmt.Errorf("failed to delete snapshot %s: %w", namespace, err)
	}
	return nil
}

func (s *RedisStore) key(namespace string) string {
	return s.prefix + namespace
}
