// Package cache memoizes computed values by (spec fingerprint, source
// identity). Entries are dropped wholesale when their source is invalidated.
package cache

import (
	"fmt"
	"sync"
	"time"
)

// Key identifies a cached value. Spec is a period fingerprint and Source is
// the identity token of the dataset the value was computed from.
type Key struct {
	Spec   string
	Source string
}

func (k Key) String() string {
	return k.Spec + "@" + k.Source
}

// Entry is a cached value with its creation time.
type Entry[V any] struct {
	Key       Key
	Value     V
	CreatedAt time.Time
}

// ComputeError wraps a failed computation. Nothing is stored for Key.
type ComputeError struct {
	Key Key
	Err error
}

func (e *ComputeError) Error() string {
	return fmt.Sprintf("cache compute %s: %v", e.Key, e.Err)
}

func (e *ComputeError) Unwrap() error {
	return e.Err
}

// Cache is a mutex-guarded memo table. GetOrCompute and Invalidate are
// serialized against each other, including while compute runs, so at most
// one computation runs per cache and Invalidate removes the value of a
// computation that was running when it was called.
type Cache[V any] struct {
	mu      sync.Mutex
	entries map[Key]Entry[V]
	now     func() time.Time
}

// New creates an empty cache.
func New[V any]() *Cache[V] {
	return &Cache[V]{
		entries: make(map[Key]Entry[V]),
		now:     time.Now,
	}
}

// GetOrCompute returns the value stored under key, computing and storing it
// on a miss. The boolean reports whether the value came from the cache.
func (c *Cache[V]) GetOrCompute(key Key, compute func() (V, error)) (V, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		return e.Value, true, nil
	}

	v, err := compute()
	if err != nil {
		var zero V
		return zero, false, &ComputeError{Key: key, Err: err}
	}

	c.entries[key] = Entry[V]{Key: key, Value: v, CreatedAt: c.now()}
	return v, false, nil
}

// Get returns the entry stored under key.
func (c *Cache[V]) Get(key Key) (Entry[V], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	return e, ok
}

// Invalidate drops every entry computed from source and returns how many
// were removed.
func (c *Cache[V]) Invalidate(source string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for k := range c.entries {
		if k.Source == source {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// Len returns the number of entries.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
