package catalog

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry[T any] struct {
	value     T
	fetchedAt time.Time
}

// DefaultFetchTimeout bounds a shared detail fetch.
const DefaultFetchTimeout = 30 * time.Second

// DetailCache keeps single records by id, independent of any list. Entries
// expire after ttl; concurrent misses for one id share a single fetch.
type DetailCache[T any] struct {
	ttl   time.Duration
	fetch func(ctx context.Context, id string) (T, error)
	Now   func() time.Time
	// FetchTimeout bounds the shared fetch, which outlives any one caller.
	FetchTimeout time.Duration

	group   singleflight.Group
	mu      sync.RWMutex
	entries map[string]entry[T]
}

func NewDetailCache[T any](ttl time.Duration, fetch func(ctx context.Context, id string) (T, error)) *DetailCache[T] {
	return &DetailCache[T]{
		ttl:          ttl,
		fetch:        fetch,
		Now:          time.Now,
		FetchTimeout: DefaultFetchTimeout,
		entries:      make(map[string]entry[T]),
	}
}

// Get returns the cached record or fetches it. The fetch is shared by every
// caller waiting on id and does not stop when one of them gives up; ctx only
// ends this caller's wait.
func (c *DetailCache[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	if v, ok := c.lookup(id); ok {
		return v, nil
	}
	ch := c.group.DoChan(id, func() (interface{}, error) {
		fctx := context.WithoutCancel(ctx)
		if c.FetchTimeout > 0 {
			var cancel context.CancelFunc
			fctx, cancel = context.WithTimeout(fctx, c.FetchTimeout)
			defer cancel()
		}
		v, err := c.fetch(fctx, id)
		if err != nil {
			return v, err
		}
		c.Put(id, v)
		return v, nil
	})
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

// Refresh drops id and fetches it again. Other entries are untouched.
func (c *DetailCache[T]) Refresh(ctx context.Context, id string) (T, error) {
	c.Invalidate(id)
	c.group.Forget(id)
	return c.Get(ctx, id)
}

func (c *DetailCache[T]) Put(id string, v T) {
	c.mu.Lock()
	c.entries[id] = entry[T]{value: v, fetchedAt: c.Now()}
	c.mu.Unlock()
}

func (c *DetailCache[T]) Invalidate(id string) {
	c.mu.Lock()
	delete(c.entries, id)
	c.mu.Unlock()
}

// Cached reports whether id holds a fresh entry.
func (c *DetailCache[T]) Cached(id string) bool {
	_, ok := c.lookup(id)
	return ok
}

func (c *DetailCache[T]) lookup(id string) (T, bool) {
	c.mu.RLock()
	e, ok := c.entries[id]
	c.mu.RUnlock()
	if !ok || (c.ttl > 0 && c.Now().Sub(e.fetchedAt) >= c.ttl) {
		var zero T
		return zero, false
	}
	return e.value, true
}
