package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Entry is a single cached value. Entries are replaced wholesale on Set,
// never mutated in place, so readers can hand out the value without copying.
type Entry struct {
	Value    any
	StoredAt time.Time
	TTL      time.Duration
}

func (e Entry) expired(now time.Time) bool {
	return now.Sub(e.StoredAt) >= e.TTL
}

// Stats is a snapshot of the store for the admin cache endpoints.
type Stats struct {
	Size   int      `json:"size"`
	Keys   []string `json:"keys"`
	Hits   uint64   `json:"hits"`
	Misses uint64   `json:"misses"`
}

// Store is an in-process key/value cache with per-entry TTLs.
//
// Expiration is lazy: Get treats an expired entry as absent but leaves it in
// the map until the janitor sweeps it, which is what lets GetStale serve
// last-known values when the database is unavailable. Pattern invalidation
// uses substring containment: Invalidate(p) removes every key containing p,
// and since every key contains "", Invalidate("") clears the store.
type Store struct {
	mu      sync.RWMutex
	entries map[string]Entry
	hits    uint64
	misses  uint64

	now func() time.Time
}

func New() *Store {
	return &Store{
		entries: make(map[string]Entry),
		now:     time.Now,
	}
}

// Get returns the value for key if present and unexpired.
func (s *Store) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || e.expired(s.now()) {
		s.misses++
		return nil, false
	}
	s.hits++
	return e.Value, true
}

// GetStale returns the value for key even if the entry has expired, as long
// as the janitor has not reclaimed it yet. Used as a last resort on backend
// failure; does not count as a hit or miss.
func (s *Store) GetStale(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	return e.Value, true
}

// Set inserts or replaces the entry for key, resetting its stored-at time.
func (s *Store) Set(key string, value any, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = Entry{
		Value:    value,
		StoredAt: s.now(),
		TTL:      ttl,
	}
}

// Delete removes exactly one key.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Invalidate removes every entry whose key contains pattern and returns the
// number removed. Invalidate("") clears the whole store.
func (s *Store) Invalidate(pattern string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key := range s.entries {
		if strings.Contains(key, pattern) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// InvalidateNamespace removes every entry under the "<name>:" prefix.
func (s *Store) InvalidateNamespace(name string) int {
	return s.Invalidate(name + ":")
}

// Stats returns a snapshot of the store's contents and counters.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.entries))
	for key := range s.entries {
		keys = append(keys, key)
	}
	return Stats{
		Size:   len(s.entries),
		Keys:   keys,
		Hits:   s.hits,
		Misses: s.misses,
	}
}

// StartJanitor sweeps expired entries every interval until ctx is done.
// The sweep only reclaims memory; correctness does not depend on it.
func (s *Store) StartJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

func (s *Store) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, key)
		}
	}
}
