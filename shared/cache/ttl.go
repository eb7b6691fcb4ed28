// Package cache holds small best-effort in-memory caches. Losing them on
// restart only costs extra upstream calls.
package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// TTL is a bounded cache whose entries expire after a fixed duration.
type TTL[K comparable, V any] struct {
	lru *expirable.LRU[K, V]
}

func NewTTL[K comparable, V any](size int, ttl time.Duration) *TTL[K, V] {
	return &TTL[K, V]{lru: expirable.NewLRU[K, V](size, nil, ttl)}
}

func (c *TTL[K, V]) Get(key K) (V, bool) {
	return c.lru.Get(key)
}

func (c *TTL[K, V]) Set(key K, value V) {
	c.lru.Add(key, value)
}

func (c *TTL[K, V]) Delete(key K) {
	c.lru.Remove(key)
}

func (c *TTL[K, V]) Len() int {
	return c.lru.Len()
}

// GetOrLoad returns the cached value for key or stores the result of load.
// Concurrent misses may both call load; the values are interchangeable.
func (c *TTL[K, V]) GetOrLoad(ctx context.Context, key K, load func(ctx context.Context) (V, error)) (V, error) {
	if v, ok := c.lru.Get(key); ok {
		return v, nil
	}
	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	c.lru.Add(key, v)
	return v, nil
}
