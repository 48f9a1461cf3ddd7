// Package cache holds short-lived derived views keyed by string.
package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache is a keyed store of values that may be dropped at any time.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	// Purge drops every entry.
	Purge()
	Size() int
}

// LRU evicts the least recently used entry beyond maxSize and expires
// entries ttl after they were set.
type LRU[T any] struct {
	lru *expirable.LRU[string, T]
}

var _ Cache[int] = (*LRU[int])(nil)

func NewLRU[T any](maxSize int, ttl time.Duration) *LRU[T] {
	return &LRU[T]{lru: expirable.NewLRU[string, T](maxSize, nil, ttl)}
}

func (c *LRU[T]) Get(key string) (T, bool) {
	return c.lru.Get(key)
}

func (c *LRU[T]) Set(key string, data T) {
	c.lru.Add(key, data)
}

func (c *LRU[T]) Purge() {
	c.lru.Purge()
}

func (c *LRU[T]) Size() int {
	return c.lru.Len()
}
