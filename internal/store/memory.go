// Package store keeps the last successful weather snapshot per favorite
// city in memory. There is deliberately no history and no eviction policy
// beyond "replace on success".
package store

import (
	"errors"
	"sync"
	"time"

	"github.com/LeoCrisGG/Clima/internal/weather"
)

// ErrNotFound is returned when no snapshot exists for a given city.
var ErrNotFound = errors.New("no weather data for city")

// MemoryStore is a concurrency-safe last-snapshot cache keyed by city name.
type MemoryStore struct {
	mu sync.RWMutex

	data   map[string]weather.Snapshot
	maxAge time.Duration // optional; 0 = never expires
}

// NewMemoryStore creates an empty store. Snapshots older than maxAge are
// treated as absent; maxAge <= 0 disables the check.
func NewMemoryStore(maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:   make(map[string]weather.Snapshot),
		maxAge: maxAge,
	}
}

// Save replaces the snapshot for a city wholesale.
func (s *MemoryStore) Save(city string, snapshot weather.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[city] = snapshot
}

// Get returns the last snapshot for a city, if present and fresh enough.
func (s *MemoryStore) Get(city string) (weather.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.data[city]
	if !ok {
		return weather.Snapshot{}, ErrNotFound
	}
	if s.maxAge > 0 && time.Since(snap.FetchedAt) > s.maxAge {
		return weather.Snapshot{}, ErrNotFound
	}
	return snap, nil
}

// Delete drops the snapshot for a city, if any.
func (s *MemoryStore) Delete(city string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, city)
}
