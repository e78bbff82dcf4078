package redisstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces slot keys when no prefix is configured.
const DefaultPrefix = "flowboard:"

// SlotRepository implements repository.SlotStorage on top of Redis string keys.
type SlotRepository struct {
	client *redis.Client
	prefix string
}

// Open parses a redis:// URL and returns a connected client.
func Open(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// NewSlotRepository wraps client. An empty prefix falls back to DefaultPrefix.
func NewSlotRepository(client *redis.Client, prefix string) *SlotRepository {
	if client == nil {
		panic("redisstore.NewSlotRepository: client is nil")
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &SlotRepository{client: client, prefix: prefix}
}

// Get returns the value stored under key. A missing key reports found=false.
func (r *SlotRepository) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get slot %q: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key with no expiry, replacing any previous value.
func (r *SlotRepository) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("set slot %q: %w", key, err)
	}
	return nil
}

func (r *SlotRepository) key(slot string) string {
	return r.prefix + slot
}
