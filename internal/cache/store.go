// Package cache implements the bounded, time-expiring in-memory store used
// for real-time ticker snapshots.
package cache

import (
	"container/list"
	"sync"
	"time"
)

const (
	DefaultTTL      = 60 * time.Second
	DefaultCapacity = 1024
)

type Options struct {
	// TTL is measured from insertion. Zero means DefaultTTL.
	TTL time.Duration
	// Capacity bounds the number of entries. Zero means DefaultCapacity.
	Capacity int
	// Now overrides the clock, for tests.
	Now func() time.Time
}

type entry[K comparable, V any] struct {
	key        K
	value      V
	insertedAt time.Time
}

// Store is a bounded map whose entries expire TTL after insertion. When a new
// key would exceed Capacity, expired entries are dropped first and then the
// least recently inserted entry is evicted. Storing an existing key counts as
// a fresh insertion. Safe for concurrent use.
type Store[K comparable, V any] struct {
	mu       sync.RWMutex
	ttl      time.Duration
	capacity int
	now      func() time.Time
	items    map[K]*list.Element
	order    *list.List // front is the oldest insertion
}

func New[K comparable, V any](opts Options) *Store[K, V] {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store[K, V]{
		ttl:      opts.TTL,
		capacity: opts.Capacity,
		now:      opts.Now,
		items:    make(map[K]*list.Element),
		order:    list.New(),
	}
}

func (s *Store[K, V]) TTL() time.Duration { return s.ttl }

func (s *Store[K, V]) Capacity() int { return s.capacity }

// Get returns the live value stored under key.
func (s *Store[K, V]) Get(key K) (V, bool) {
	var zero V

	s.mu.RLock()
	el, ok := s.items[key]
	if !ok {
		s.mu.RUnlock()
		return zero, false
	}
	e := el.Value.(*entry[K, V])
	value, expired := e.value, s.expired(e, s.now())
	s.mu.RUnlock()

	if !expired {
		return value, true
	}

	s.mu.Lock()
	if cur, ok := s.items[key]; ok && cur == el {
		s.removeElement(el)
	}
	s.mu.Unlock()
	return zero, false
}

// Set stores value under key and reports whether another entry was evicted
// to make room.
func (s *Store[K, V]) Set(key K, value V) (evicted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if el, ok := s.items[key]; ok {
		s.removeElement(el)
	} else if len(s.items) >= s.capacity {
		s.purgeExpired(now)
		if len(s.items) >= s.capacity {
			s.removeElement(s.order.Front())
			evicted = true
		}
	}
	s.items[key] = s.order.PushBack(&entry[K, V]{key: key, value: value, insertedAt: now})
	return evicted
}

func (s *Store[K, V]) Delete(key K) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if el, ok := s.items[key]; ok {
		s.removeElement(el)
	}
}

// Len returns the number of live entries.
func (s *Store[K, V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeExpired(s.now())
	return len(s.items)
}

func (s *Store[K, V]) Purge() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[K]*list.Element)
	s.order.Init()
}

func (s *Store[K, V]) expired(e *entry[K, V], now time.Time) bool {
	return !now.Before(e.insertedAt.Add(s.ttl))
}

// purgeExpired walks from the oldest insertion; insertion order is also
// expiry order, so it stops at the first live entry.
func (s *Store[K, V]) purgeExpired(now time.Time) {
	for el := s.order.Front(); el != nil; {
		e := el.Value.(*entry[K, V])
		if !s.expired(e, now) {
			return
		}
		next := el.Next()
		s.removeElement(el)
		el = next
	}
}

func (s *Store[K, V]) removeElement(el *list.Element) {
	e := s.order.Remove(el).(*entry[K, V])
	delete(s.items, e.key)
}
