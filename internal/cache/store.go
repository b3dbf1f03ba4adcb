package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Store keeps JSON-encoded reads indexed by the tags they provide.
type Store interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, tags []Tag) error
	Invalidate(ctx context.Context, tags ...Tag) error
}

type memoryEntry struct {
	data    []byte
	tags    []Tag
	expires time.Time
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates a store whose entries live for ttl (0 = no expiry).
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get decodes the entry for key into dest.
func (s *MemoryStore) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	s.mu.Lock()
	entry, ok := s.entries[key]
	if ok && !entry.expires.IsZero() && !s.now().Before(entry.expires) {
		delete(s.entries, key)
		ok = false
	}
	s.mu.Unlock()

	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(entry.data, dest)
}

// Set stores value under key, provided by tags.
func (s *MemoryStore) Set(ctx context.Context, key string, value interface{}, tags []Tag) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	entry := memoryEntry{data: data, tags: append([]Tag(nil), tags...)}
	if s.ttl > 0 {
		entry.expires = s.now().Add(s.ttl)
	}

	s.mu.Lock()
	s.entries[key] = entry
	s.mu.Unlock()
	return nil
}

// Invalidate drops every entry providing a tag reached by tags.
func (s *MemoryStore) Invalidate(ctx context.Context, tags ...Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, entry := range s.entries {
		if anyInvalidates(tags, entry.tags) {
			delete(s.entries, key)
		}
	}
	return nil
}

// Len returns the number of live entries.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
