package gateway

import (
	"context"
	"sync"

	"github.com/ukydev/fleet-admin/internal/cache"
)

// State is the observable snapshot of a Query.
type State[T any] struct {
	Loading bool
	Err     error
	Data    T
	HasData bool
}

// Fetcher performs one read.
type Fetcher[T any] func(ctx context.Context) (T, error)

// Query is a live read: it re-executes whenever an invalidation reaches the
// tags it provides. Each execution takes a request token; a response is
// applied only if no newer one has already been applied.
type Query[T any] struct {
	mu        sync.Mutex
	bus       *cache.Bus
	fetch     Fetcher[T]
	provides  []cache.Tag
	issued    uint64
	applied   uint64
	state     State[T]
	observers []func(State[T])
	unsub     func()
}

// NewQuery creates an idle query. Call Start to subscribe and load.
func NewQuery[T any](bus *cache.Bus, provides []cache.Tag, fetch Fetcher[T]) *Query[T] {
	return &Query[T]{bus: bus, provides: provides, fetch: fetch}
}

// Start subscribes to invalidations and runs the first fetch.
func (q *Query[T]) Start(ctx context.Context) State[T] {
	q.mu.Lock()
	if q.unsub == nil && q.bus != nil {
		q.unsub = q.bus.Subscribe(q.provides, func(ctx context.Context, _ []cache.Tag) {
			q.Refetch(ctx)
		})
	}
	q.mu.Unlock()
	return q.Refetch(ctx)
}

// Observe registers fn for every state change.
func (q *Query[T]) Observe(fn func(State[T])) {
	q.mu.Lock()
	q.observers = append(q.observers, fn)
	q.mu.Unlock()
}

// Reset swaps the read, e.g. after the search term changes. Responses of
// requests issued before Reset can still resolve but lose to newer ones.
func (q *Query[T]) Reset(provides []cache.Tag, fetch Fetcher[T]) {
	q.mu.Lock()
	q.fetch = fetch
	if !sameTags(q.provides, provides) {
		q.provides = provides
		if q.unsub != nil {
			q.unsub()
			q.unsub = q.bus.Subscribe(provides, func(ctx context.Context, _ []cache.Tag) {
				q.Refetch(ctx)
			})
		}
	}
	q.mu.Unlock()
}

// Refetch runs the read and returns the resulting state.
func (q *Query[T]) Refetch(ctx context.Context) State[T] {
	q.mu.Lock()
	q.issued++
	token := q.issued
	fetch := q.fetch
	q.state.Loading = true
	snapshot := q.state
	observers := append([]func(State[T]){}, q.observers...)
	q.mu.Unlock()
	notify(observers, snapshot)

	data, err := fetch(ctx)
	return q.resolve(token, data, err)
}

func (q *Query[T]) resolve(token uint64, data T, err error) State[T] {
	q.mu.Lock()
	if token <= q.applied {
		state := q.state
		q.mu.Unlock()
		return state
	}
	q.applied = token
	q.state.Loading = q.issued > q.applied
	q.state.Err = err
	if err == nil {
		q.state.Data = data
		q.state.HasData = true
	}
	state := q.state
	observers := append([]func(State[T]){}, q.observers...)
	q.mu.Unlock()

	notify(observers, state)
	return state
}

// State returns the current snapshot.
func (q *Query[T]) State() State[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

// Close stops listening for invalidations.
func (q *Query[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.unsub != nil {
		q.unsub()
		q.unsub = nil
	}
}

func notify[T any](observers []func(State[T]), state State[T]) {
	for _, fn := range observers {
		fn(state)
	}
}

func sameTags(a, b []cache.Tag) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
