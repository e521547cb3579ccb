package generations

import (
	"context"
	"sync"
	"time"

	"codeberg.org/printableperks/server/internal/datekey"
	"codeberg.org/printableperks/server/internal/quota"
)

// implements quota.StatsStore using in-memory storage with the same
// rollover semantics as the Postgres repository. Suitable for tests and
// database-less development runs.
type MemoryStore struct {
	mu     sync.RWMutex
	latest map[string]*quota.StatSnapshot
}

// creates a new in-memory generation stats store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{latest: make(map[string]*quota.StatSnapshot)}
}

// returns the newest usage row for the user, or nil if none exists
func (s *MemoryStore) Latest(_ context.Context, userID string) (*quota.StatSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, exists := s.latest[userID]
	if !exists {
		return nil, nil
	}

	snapshot := *record
	return &snapshot, nil
}

// returns the cumulative monthly count for the current month window
func (s *MemoryStore) MonthlyUsage(_ context.Context, userID string, monthStart time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, exists := s.latest[userID]
	if !exists || record.CreatedAt.Before(monthStart) {
		return 0, nil
	}

	return record.MonthlyCount, nil
}

// adds one generation at the given instant, rolling the day and month
// windows independently
func (s *MemoryStore) Record(_ context.Context, userID string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	latest := s.latest[userID]

	switch {
	case latest == nil || !datekey.SameMonth(latest.CreatedAt, now):
		s.latest[userID] = &quota.StatSnapshot{DailyCount: 1, MonthlyCount: 1, CreatedAt: now, UpdatedAt: now}
	case datekey.SameDay(latest.CreatedAt, now):
		latest.DailyCount++
		latest.MonthlyCount++
		latest.UpdatedAt = now
	default:
		s.latest[userID] = &quota.StatSnapshot{
			DailyCount:   1,
			MonthlyCount: latest.MonthlyCount + 1,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
	}

	return nil
}
