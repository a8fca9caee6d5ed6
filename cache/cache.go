// Package cache memoises expensive results, such as solved puzzles, for
// long-running processes like the solve bot. It is bounded: once full,
// the oldest entry is evicted.
package cache

import (
	"container/list"
	"sync"

	"github.com/rs/zerolog/log"
)

type LoadFunc[V any] func(key string) (V, error)

type entry[V any] struct {
	key string
	val V
}

type Cache[V any] struct {
	sync.Mutex
	capacity int
	objects  map[string]*list.Element
	order    *list.List
	hits     uint64
	misses   uint64
}

func New[V any](capacity int) *Cache[V] {
	return &Cache[V]{
		capacity: max(1, capacity),
		objects:  make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Get returns the cached value for key, calling load on a miss. The lock
// is not held while load runs, so two concurrent misses on the same key
// may both load; the last one stored wins.
func (c *Cache[V]) Get(key string, load LoadFunc[V]) (V, error) {
	c.Lock()
	if el, ok := c.objects[key]; ok {
		c.hits++
		c.order.MoveToFront(el)
		v := el.Value.(*entry[V]).val
		c.Unlock()
		log.Debug().Str("key", key).Msg("getting obj from cache")
		return v, nil
	}
	c.misses++
	c.Unlock()

	log.Debug().Str("key", key).Msg("loading into cache")
	v, err := load(key)
	if err != nil {
		return v, err
	}
	c.Put(key, v)
	return v, nil
}

func (c *Cache[V]) Put(key string, v V) {
	c.Lock()
	defer c.Unlock()
	if el, ok := c.objects[key]; ok {
		el.Value.(*entry[V]).val = v
		c.order.MoveToFront(el)
		return
	}
	c.objects[key] = c.order.PushFront(&entry[V]{key: key, val: v})
	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.objects, oldest.Value.(*entry[V]).key)
	}
}

func (c *Cache[V]) Len() int {
	c.Lock()
	defer c.Unlock()
	return c.order.Len()
}

// Stats returns the hit and miss counts.
func (c *Cache[V]) Stats() (hits, misses uint64) {
	c.Lock()
	defer c.Unlock()
	return c.hits, c.misses
}
