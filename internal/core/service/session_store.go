package service

import (
	"fmt"
	"sync"

	"github.com/speaky/gateway/internal/api/metrics"
	"github.com/speaky/gateway/internal/core/domain"
)

// allFields is stamped on a whole-record replace.
var allFields = []domain.Field{
	domain.FieldNickname, domain.FieldUsername, domain.FieldAvatarURL, domain.FieldBannerURL,
	domain.FieldVerified, domain.FieldLanguage, domain.FieldTheme,
}

// SessionStore holds the authenticated user of one workspace. Every write
// carries the version it was computed from and is rejected when that base is
// stale for the fields it touches.
type SessionStore struct {
	mu      sync.RWMutex
	user    domain.User
	version uint64
	changed map[domain.Field]uint64

	// notifyMu serializes observer calls so they see increasing versions.
	notifyMu  sync.Mutex
	notified  uint64
	observers []func(domain.Snapshot)
}

// NewSessionStore returns a store holding user at version 1.
func NewSessionStore(user domain.User) (*SessionStore, error) {
	user = user.Normalize()
	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSession, err)
	}
	s := &SessionStore{
		user:    user,
		version: 1,
		changed: make(map[domain.Field]uint64, len(allFields)),
	}
	for _, f := range allFields {
		s.changed[f] = 1
	}
	return s, nil
}

// Current returns the latest snapshot.
func (s *SessionStore) Current() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Snapshot{User: s.user, Version: s.version}
}

// OnChange registers fn to receive every snapshot produced by a write.
// Observers run on the writer's goroutine and must not write to the store.
func (s *SessionStore) OnChange(fn func(domain.Snapshot)) {
	s.notifyMu.Lock()
	s.observers = append(s.observers, fn)
	s.notifyMu.Unlock()
}

// Replace overwrites the whole record. base must equal the current version.
func (s *SessionStore) Replace(next domain.User, base uint64) (domain.Snapshot, error) {
	next = next.Normalize()
	if err := next.Validate(); err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: %v", domain.ErrInvalidSession, err)
	}

	s.mu.Lock()
	if base != s.version {
		s.mu.Unlock()
		metrics.SessionConflictsTotal.WithLabelValues("replace").Inc()
		return domain.Snapshot{}, fmt.Errorf("replace at version %d: %w", base, domain.ErrStaleSession)
	}
	s.version++
	s.user = next
	for _, f := range allFields {
		s.changed[f] = s.version
	}
	snap := domain.Snapshot{User: s.user, Version: s.version}
	s.mu.Unlock()

	s.notify(snap)
	return snap, nil
}

// Patch applies p computed at version base. Absolute fields conflict when any
// of them changed after base; the enots delta is applied to the live balance
// and only fails when the result would be negative.
func (s *SessionStore) Patch(base uint64, p domain.UserPatch) (domain.Snapshot, error) {
	if p.Empty() {
		return domain.Snapshot{}, domain.ErrEmptyPatch
	}
	fields := p.Fields()

	s.mu.Lock()
	for _, f := range fields {
		if s.changed[f] > base {
			s.mu.Unlock()
			metrics.SessionConflictsTotal.WithLabelValues("patch").Inc()
			return domain.Snapshot{}, fmt.Errorf("patch %s at version %d: %w", f, base, domain.ErrStaleSession)
		}
	}
	next := p.ApplyTo(s.user)
	if err := next.Validate(); err != nil {
		s.mu.Unlock()
		return domain.Snapshot{}, err
	}
	s.version++
	s.user = next
	for _, f := range fields {
		s.changed[f] = s.version
	}
	snap := domain.Snapshot{User: s.user, Version: s.version}
	s.mu.Unlock()

	s.notify(snap)
	return snap, nil
}

func (s *SessionStore) notify(snap domain.Snapshot) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	if snap.Version <= s.notified {
		return
	}
	s.notified = snap.Version
	for _, fn := range s.observers {
		fn(snap)
	}
}
