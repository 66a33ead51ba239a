package service

import (
	"errors"
	"sync"
	"testing"

	"github.com/speaky/gateway/internal/core/domain"
)

func newStore(t *testing.T, u domain.User) *SessionStore {
	t.Helper()
	s, err := NewSessionStore(u)
	if err != nil {
		t.Fatalf("NewSessionStore: %v", err)
	}
	return s
}

func TestSessionStore_New_AppliesDefaults(t *testing.T) {
	s := newStore(t, domain.User{ID: 1, Nickname: "Ivan"})
	snap := s.Current()
	if snap.Version != 1 {
		t.Fatalf("expected version 1, got %d", snap.Version)
	}
	if snap.User.Language != domain.LanguageRU || snap.User.Theme != domain.ThemeDark {
		t.Fatalf("defaults not applied: %+v", snap.User)
	}
}

func TestSessionStore_New_RejectsNegativeBalance(t *testing.T) {
	if _, err := NewSessionStore(domain.User{ID: 1, Enots: -1}); !errors.Is(err, domain.ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
}

func TestSessionStore_Replace(t *testing.T) {
	s := newStore(t, domain.User{ID: 1, Nickname: "Ivan"})

	snap, err := s.Replace(domain.User{ID: 1, Nickname: "Ivan P", Enots: 10}, 1)
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if snap.Version != 2 || snap.User.Nickname != "Ivan P" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}

	if _, err := s.Replace(domain.User{ID: 1}, 1); !errors.Is(err, domain.ErrStaleSession) {
		t.Fatalf("expected ErrStaleSession for old base, got %v", err)
	}
	if _, err := s.Replace(domain.User{ID: 1, Language: "xx"}, 2); !errors.Is(err, domain.ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
	if got := s.Current().Version; got != 2 {
		t.Fatalf("rejected writes must not bump the version, got %d", got)
	}
}

func TestSessionStore_Patch_DisjointFieldsBothApply(t *testing.T) {
	s := newStore(t, domain.User{ID: 1, Nickname: "Ivan"})
	base := s.Current().Version

	if _, err := s.Patch(base, domain.UserPatch{Language: domain.Ptr(domain.LanguageEN)}); err != nil {
		t.Fatalf("first patch: %v", err)
	}
	snap, err := s.Patch(base, domain.UserPatch{Theme: domain.Ptr(domain.ThemeLight)})
	if err != nil {
		t.Fatalf("second patch on a disjoint field: %v", err)
	}
	if snap.User.Language != domain.LanguageEN || snap.User.Theme != domain.ThemeLight {
		t.Fatalf("both patches should apply: %+v", snap.User)
	}
}

func TestSessionStore_Patch_StaleSameFieldRejected(t *testing.T) {
	s := newStore(t, domain.User{ID: 1, Nickname: "Ivan"})
	base := s.Current().Version

	if _, err := s.Patch(base, domain.UserPatch{Nickname: domain.Ptr("A")}); err != nil {
		t.Fatalf("first patch: %v", err)
	}
	_, err := s.Patch(base, domain.UserPatch{Nickname: domain.Ptr("B")})
	if !errors.Is(err, domain.ErrStaleSession) {
		t.Fatalf("expected ErrStaleSession, got %v", err)
	}
	if got := s.Current().User.Nickname; got != "A" {
		t.Fatalf("stale patch must not apply, nickname = %q", got)
	}
}

func TestSessionStore_Patch_ReplaceInvalidatesEveryField(t *testing.T) {
	s := newStore(t, domain.User{ID: 1, Nickname: "Ivan"})
	base := s.Current().Version
	if _, err := s.Replace(domain.User{ID: 1, Nickname: "Fresh"}, base); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if _, err := s.Patch(base, domain.UserPatch{Theme: domain.Ptr(domain.ThemeLight)}); !errors.Is(err, domain.ErrStaleSession) {
		t.Fatalf("expected ErrStaleSession after replace, got %v", err)
	}
}

func TestSessionStore_Patch_Delta(t *testing.T) {
	s := newStore(t, domain.User{ID: 1, Enots: 50})

	snap, err := s.Patch(0, domain.UserPatch{EnotsDelta: -50})
	if err != nil {
		t.Fatalf("debit to zero: %v", err)
	}
	if snap.User.Enots != 0 {
		t.Fatalf("expected 0 enots, got %d", snap.User.Enots)
	}
	if _, err := s.Patch(0, domain.UserPatch{EnotsDelta: -1}); !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if _, err := s.Patch(0, domain.UserPatch{}); !errors.Is(err, domain.ErrEmptyPatch) {
		t.Fatalf("expected ErrEmptyPatch, got %v", err)
	}
}

func TestSessionStore_ConcurrentDebitsNeverGoNegative(t *testing.T) {
	s := newStore(t, domain.User{ID: 1, Enots: 100})

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Patch(0, domain.UserPatch{EnotsDelta: -30}); err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if accepted != 3 {
		t.Fatalf("expected exactly 3 debits of 30 from 100, got %d", accepted)
	}
	if got := s.Current().User.Enots; got != 10 {
		t.Fatalf("expected 10 enots left, got %d", got)
	}
}

func TestSessionStore_ObserversSeeIncreasingVersions(t *testing.T) {
	s := newStore(t, domain.User{ID: 1})

	var (
		mu   sync.Mutex
		seen []uint64
	)
	s.OnChange(func(snap domain.Snapshot) {
		mu.Lock()
		seen = append(seen, snap.Version)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Patch(0, domain.UserPatch{EnotsDelta: 1})
		}()
	}
	wg.Wait()

	if len(seen) == 0 {
		t.Fatal("observer never called")
	}
	for i := 1; i < len(seen); i++ {
		if seen[i] <= seen[i-1] {
			t.Fatalf("versions out of order: %v", seen)
		}
	}
	if last := seen[len(seen)-1]; last != s.Current().Version {
		t.Fatalf("last observed version %d, current %d", last, s.Current().Version)
	}
}
