// Package shardmap provides a generic map split into independently locked
// shards, so operations on different keys rarely contend.
package shardmap

import (
	"hash/maphash"
	"sync"
)

// DefaultShards is used when New is given a non-positive shard count.
const DefaultShards = 64

type shard[K comparable, V any] struct {
	mu sync.Mutex
	m  map[K]V
}

// Map is a concurrent map. All operations on a single key are serialized by
// that key's shard lock.
type Map[K comparable, V any] struct {
	seed   maphash.Seed
	shards []*shard[K, V]
}

// New returns a map with n shards.
func New[K comparable, V any](n int) *Map[K, V] {
	if n <= 0 {
		n = DefaultShards
	}
	m := &Map[K, V]{seed: maphash.MakeSeed(), shards: make([]*shard[K, V], n)}
	for i := range m.shards {
		m.shards[i] = &shard[K, V]{m: make(map[K]V)}
	}
	return m
}

func (m *Map[K, V]) shardFor(key K) *shard[K, V] {
	return m.shards[maphash.Comparable(m.seed, key)%uint64(len(m.shards))]
}

// Compute runs fn under the key's lock. fn receives the current value and
// whether it exists; it returns the value to store and whether to keep it.
// Returning keep=false deletes the key (or leaves it absent).
func (m *Map[K, V]) Compute(key K, fn func(cur V, loaded bool) (next V, keep bool)) {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, loaded := s.m[key]
	next, keep := fn(cur, loaded)
	switch {
	case keep:
		s.m[key] = next
	case loaded:
		delete(s.m, key)
	}
}

// DeleteFunc removes every entry for which del returns true and reports how
// many were removed. Shards are visited one at a time.
func (m *Map[K, V]) DeleteFunc(del func(key K, value V) bool) int {
	removed := 0
	for _, s := range m.shards {
		s.mu.Lock()
		for k, v := range s.m {
			if del(k, v) {
				delete(s.m, k)
				removed++
			}
		}
		s.mu.Unlock()
	}
	return removed
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int {
	n := 0
	for _, s := range m.shards {
		s.mu.Lock()
		n += len(s.m)
		s.mu.Unlock()
	}
	return n
}
