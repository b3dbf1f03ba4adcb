package cache

import (
	"context"
	"sync"
)

// Listener receives the tags of an invalidation.
type Listener func(ctx context.Context, tags []Tag)

type subscription struct {
	provides []Tag
	fn       Listener
}

// Bus fans invalidation events out to the reads that depend on them.
type Bus struct {
	mu    sync.RWMutex
	next  int
	subs  map[int]subscription
	hooks []Listener
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]subscription)}
}

// Subscribe registers fn for invalidations reaching any of provides. The
// returned func removes the subscription.
func (b *Bus) Subscribe(provides []Tag, fn Listener) (unsubscribe func()) {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = subscription{provides: append([]Tag(nil), provides...), fn: fn}
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// OnPublish registers fn for every locally published invalidation.
func (b *Bus) OnPublish(fn Listener) {
	b.mu.Lock()
	b.hooks = append(b.hooks, fn)
	b.mu.Unlock()
}

// Publish announces a local invalidation to subscribers and hooks.
func (b *Bus) Publish(ctx context.Context, tags ...Tag) {
	b.notify(ctx, tags)

	b.mu.RLock()
	hooks := append([]Listener(nil), b.hooks...)
	b.mu.RUnlock()
	for _, fn := range hooks {
		fn(ctx, tags)
	}
}

// Deliver announces an invalidation that originated elsewhere. Hooks are not
// called so remote events are never echoed back.
func (b *Bus) Deliver(ctx context.Context, tags ...Tag) {
	b.notify(ctx, tags)
}

// Subscribers returns the number of active subscriptions.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *Bus) notify(ctx context.Context, tags []Tag) {
	b.mu.RLock()
	var matched []Listener
	for _, sub := range b.subs {
		if anyInvalidates(tags, sub.provides) {
			matched = append(matched, sub.fn)
		}
	}
	b.mu.RUnlock()

	for _, fn := range matched {
		fn(ctx, tags)
	}
}
