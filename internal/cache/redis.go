package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisPrefix = "fleetadmin:"

// RedisStore shares cached reads between console processes. Each tag keeps a
// set of the keys that provide it.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient opens a client for addr.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// NewRedisStore wraps client.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func entryKey(key string) string { return redisPrefix + "cache:" + key }

func tagKey(t Tag) string { return redisPrefix + "tag:" + t.String() }

// Get decodes the entry for key into dest.
func (s *RedisStore) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, entryKey(key)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal([]byte(data), dest)
}

// Set stores value and indexes it under each provided tag. An id tag is also
// indexed under its type so type-wide invalidation reaches it.
func (s *RedisStore) Set(ctx context.Context, key string, value interface{}, tags []Tag) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	ek := entryKey(key)
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, ek, data, s.ttl)
	for _, t := range tags {
		pipe.SAdd(ctx, tagKey(t), ek)
		if t.ID != "" {
			pipe.SAdd(ctx, tagKey(TypeTag(t.Type)), ek)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis cache set: %w", err)
	}
	return nil
}

// Invalidate deletes every key indexed under tags.
func (s *RedisStore) Invalidate(ctx context.Context, tags ...Tag) error {
	for _, t := range tags {
		tk := tagKey(t)
		keys, err := s.client.SMembers(ctx, tk).Result()
		if err != nil {
			return fmt.Errorf("redis cache invalidate %s: %w", t, err)
		}
		if err := s.client.Del(ctx, append(keys, tk)...).Err(); err != nil {
			return fmt.Errorf("redis cache invalidate %s: %w", t, err)
		}
	}
	return nil
}
