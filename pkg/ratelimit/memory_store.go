package ratelimit

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	count     int64
	expiresAt time.Time
}

// MemoryStore is a process-local Store. Expired keys are dropped lazily on
// access and by a sweep every cleanupEvery increments.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ops     int
	now     func() time.Time
}

const cleanupEvery = 1024

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

func (s *MemoryStore) IncrementAndGet(_ context.Context, key string, incr int, window time.Duration) (int64, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.ops++
	if s.ops%cleanupEvery == 0 {
		for k, e := range s.entries {
			if !now.Before(e.expiresAt) {
				delete(s.entries, k)
			}
		}
	}

	e, ok := s.entries[key]
	if !ok || !now.Before(e.expiresAt) {
		e = memoryEntry{expiresAt: now.Add(window)}
	}
	e.count += int64(incr)
	s.entries[key] = e
	return e.count, e.expiresAt.Sub(now), nil
}
