package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ukydev/fleet-admin/internal/cache"
)

// CacheStore is a cache.Store on a MongoDB collection.
type CacheStore struct {
	Collection *mongo.Collection
	ttl        time.Duration
	now        func() time.Time
}

// NewCacheStore wraps coll. A ttl of zero keeps entries until invalidated.
func NewCacheStore(coll *mongo.Collection, ttl time.Duration) *CacheStore {
	return &CacheStore{Collection: coll, ttl: ttl, now: time.Now}
}

// EnsureIndexes creates the tag index and the TTL index MongoDB uses to reap
// expired entries.
func (s *CacheStore) EnsureIndexes(ctx context.Context) error {
	if s.Collection == nil {
		return errNilCollection
	}
	_, err := s.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "tags", Value: 1}}},
		{Keys: bson.D{{Key: "expiresAt", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
	})
	if err != nil {
		return fmt.Errorf("mongo cache indexes: %w", err)
	}
	return nil
}

// Get decodes the entry for key into dest. Expired entries the TTL monitor
// has not reaped yet count as missing.
func (s *CacheStore) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if s.Collection == nil {
		return false, errNilCollection
	}
	var e CacheEntry
	err := s.Collection.FindOne(ctx, bson.M{"_id": key}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if e.ExpiresAt != nil && !s.now().Before(*e.ExpiresAt) {
		return false, nil
	}
	return true, json.Unmarshal([]byte(e.Value), dest)
}

// Set upserts value under key.
func (s *CacheStore) Set(ctx context.Context, key string, value interface{}, tags []cache.Tag) error {
	if s.Collection == nil {
		return errNilCollection
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	e := CacheEntry{Key: key, Value: string(data), Tags: tagNames(tags)}
	if s.ttl > 0 {
		exp := s.now().Add(s.ttl)
		e.ExpiresAt = &exp
	}
	_, err = s.Collection.ReplaceOne(ctx, bson.M{"_id": key}, e, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo cache set: %w", err)
	}
	return nil
}

// Invalidate deletes every entry indexed under tags.
func (s *CacheStore) Invalidate(ctx context.Context, tags ...cache.Tag) error {
	if s.Collection == nil {
		return errNilCollection
	}
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.String()
	}
	if _, err := s.Collection.DeleteMany(ctx, bson.M{"tags": bson.M{"$in": names}}); err != nil {
		return fmt.Errorf("mongo cache invalidate: %w", err)
	}
	return nil
}
