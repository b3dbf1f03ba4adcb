package cache

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Cache couples a Store with the Bus that tells live reads to refetch.
type Cache struct {
	store Store
	bus   *Bus
	log   logrus.FieldLogger

	// mu orders guarded writes against invalidations. gens counts the
	// invalidations seen per tag (type tags under their bare type).
	mu   sync.Mutex
	gens map[Tag]uint64
}

// New creates a cache. A nil store means an unbounded in-memory store.
func New(store Store, bus *Bus, log logrus.FieldLogger) *Cache {
	if store == nil {
		store = NewMemoryStore(0)
	}
	if bus == nil {
		bus = NewBus()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Cache{store: store, bus: bus, log: log, gens: make(map[Tag]uint64)}
}

// Bus returns the invalidation bus.
func (c *Cache) Bus() *Bus { return c.bus }

// Get reads a cached value. Store failures are logged and read as a miss.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) bool {
	ok, err := c.store.Get(ctx, key, dest)
	if err != nil {
		c.log.WithError(err).WithField("key", key).Warn("Cache read failed")
		return false
	}
	return ok
}

// Set caches a value. Store failures are logged; the read still succeeds.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, tags []Tag) {
	if err := c.store.Set(ctx, key, value, tags); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("Cache write failed")
	}
}

// Generation stamps the invalidation state of tags. A read takes it before
// fetching and hands it to SetIfCurrent.
func (c *Cache) Generation(tags []Tag) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation(tags)
}

func (c *Cache) generation(tags []Tag) uint64 {
	var gen uint64
	for _, t := range tags {
		gen += c.gens[TypeTag(t.Type)]
		if t.ID != "" {
			gen += c.gens[t]
		}
	}
	return gen
}

// SetIfCurrent caches value only if no invalidation matching tags happened
// since gen was taken. It reports whether the value was stored.
func (c *Cache) SetIfCurrent(ctx context.Context, key string, value interface{}, tags []Tag, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation(tags) != gen {
		c.log.WithField("key", key).Debug("Discarding read that raced an invalidation")
		return false
	}
	c.Set(ctx, key, value, tags)
	return true
}

// Invalidate drops cached reads for tags after a local mutation and tells
// every live read that depends on them.
func (c *Cache) Invalidate(ctx context.Context, tags ...Tag) {
	c.drop(ctx, tags)
	c.bus.Publish(ctx, tags...)
}

// ApplyRemote handles an invalidation announced by another console.
func (c *Cache) ApplyRemote(ctx context.Context, tags ...Tag) {
	c.drop(ctx, tags)
	c.bus.Deliver(ctx, tags...)
}

func (c *Cache) drop(ctx context.Context, tags []Tag) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range tags {
		c.gens[t]++
	}
	if err := c.store.Invalidate(ctx, tags...); err != nil {
		c.log.WithError(err).WithField("tags", tags).Error("Cache invalidation failed")
	}
}
