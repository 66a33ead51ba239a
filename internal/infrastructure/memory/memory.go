// Package memory provides process-local storage drivers for development and
// single-instance deployments. Nothing survives a restart.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/speaky/gateway/internal/core/domain"
)

type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]domain.User
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: make(map[string]domain.User)}
}

func (r *SessionRepository) Save(_ context.Context, clientID string, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[clientID] = user
	return nil
}

func (r *SessionRepository) Load(_ context.Context, clientID string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.sessions[clientID]
	if !ok {
		return domain.User{}, domain.ErrSessionNotFound
	}
	return u, nil
}

func (r *SessionRepository) Delete(_ context.Context, clientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, clientID)
	return nil
}

// LedgerRepository keeps entries per user in insertion order.
type LedgerRepository struct {
	mu      sync.RWMutex
	entries map[int64][]domain.LedgerEntry
}

func NewLedgerRepository() *LedgerRepository {
	return &LedgerRepository{entries: make(map[int64][]domain.LedgerEntry)}
}

func (r *LedgerRepository) Append(_ context.Context, entry domain.LedgerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.UserID] = append(r.entries[entry.UserID], entry)
	return nil
}

func (r *LedgerRepository) List(_ context.Context, userID int64, limit int) ([]domain.LedgerEntry, error) {
	r.mu.RLock()
	all := slices.Clone(r.entries[userID])
	r.mu.RUnlock()

	slices.SortStableFunc(all, func(a, b domain.LedgerEntry) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	if all == nil {
		all = []domain.LedgerEntry{}
	}
	return all, nil
}

type SubmitGuard struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewSubmitGuard() *SubmitGuard {
	return &SubmitGuard{held: make(map[string]struct{})}
}

func (g *SubmitGuard) Acquire(_ context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.held[key]; busy {
		return false, nil
	}
	g.held[key] = struct{}{}
	return true, nil
}

func (g *SubmitGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.held, key)
	return nil
}
