package subscriptions

import (
	"context"
	"sync"

	"codeberg.org/printableperks/server/internal/quota"
)

// implements quota.SubscriptionResolver using in-memory storage, for
// tests and database-less development runs
type MemoryResolver struct {
	mu   sync.RWMutex
	rows map[string][]Subscription
}

// creates a new in-memory subscription resolver
func NewMemoryResolver() *MemoryResolver {
	return &MemoryResolver{rows: make(map[string][]Subscription)}
}

// adds a subscription row
func (m *MemoryResolver) Add(sub Subscription) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rows[sub.UserID] = append(m.rows[sub.UserID], sub)
}

// returns the entitlement granted by the user's newest active row
func (m *MemoryResolver) EntitlementFor(_ context.Context, userID string) (quota.Entitlement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var newest *Subscription

	for i := range m.rows[userID] {
		sub := &m.rows[userID][i]

		if sub.Status != StatusActive {
			continue
		}

		if newest == nil || sub.CreatedAt.After(newest.CreatedAt) {
			newest = sub
		}
	}

	return newest.Entitlement(), nil
}
