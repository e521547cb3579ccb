package quota

import (
	"context"
	"sync"
	"time"

	"codeberg.org/printableperks/server/internal/datekey"
)

// implements AnonymousStore using in-memory storage. Suitable for tests
// and redis-less development runs; counters do not survive a restart.
type MemoryAnonymousStore struct {
	mu     sync.RWMutex
	counts map[string]map[datekey.DayKey]int
	done   chan struct{}
	closed bool
}

// creates a new in-memory anonymous quota store
func NewMemoryAnonymousStore() *MemoryAnonymousStore {
	store := &MemoryAnonymousStore{
		counts: make(map[string]map[datekey.DayKey]int),
		done:   make(chan struct{}),
	}

	go store.cleanupLoop()

	return store
}

// returns the recorded count for the device on the given day
func (s *MemoryAnonymousStore) Count(_ context.Context, deviceKey string, day datekey.DayKey) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.counts[deviceKey][day], nil
}

// adds one generation for the device on the given day
func (s *MemoryAnonymousStore) Increment(_ context.Context, deviceKey string, day datekey.DayKey) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	days, exists := s.counts[deviceKey]
	if !exists {
		days = make(map[datekey.DayKey]int)
		s.counts[deviceKey] = days
	}

	days[day]++
	return days[day], nil
}

// stops the background cleanup goroutine
func (s *MemoryAnonymousStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		close(s.done)
		s.closed = true
	}
}

// periodically drops counters for days that have passed
func (s *MemoryAnonymousStore) cleanupLoop() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.pruneStaleDays(datekey.Today())
		}
	}
}

func (s *MemoryAnonymousStore) pruneStaleDays(today datekey.DayKey) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for deviceKey, days := range s.counts {
		for day := range days {
			if day != today {
				delete(days, day)
			}
		}

		if len(days) == 0 {
			delete(s.counts, deviceKey)
		}
	}
}
