package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/speaky/gateway/internal/core/domain"
)

func TestSessionRepository(t *testing.T) {
	repo := NewSessionRepository()
	ctx := context.Background()

	if _, err := repo.Load(ctx, "c1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	_ = repo.Save(ctx, "c1", domain.User{ID: 1, Enots: 5})
	_ = repo.Save(ctx, "c1", domain.User{ID: 1, Enots: 9})
	got, err := repo.Load(ctx, "c1")
	if err != nil || got.Enots != 9 {
		t.Fatalf("Load: %+v, %v", got, err)
	}
	_ = repo.Delete(ctx, "c1")
	if _, err := repo.Load(ctx, "c1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after delete, got %v", err)
	}
}

func TestLedgerRepository_NewestFirstWithLimit(t *testing.T) {
	repo := NewLedgerRepository()
	ctx := context.Background()
	base := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

	_ = repo.Append(ctx, domain.LedgerEntry{ID: "a", UserID: 1, CreatedAt: base})
	_ = repo.Append(ctx, domain.LedgerEntry{ID: "b", UserID: 1, CreatedAt: base.Add(2 * time.Minute)})
	_ = repo.Append(ctx, domain.LedgerEntry{ID: "c", UserID: 1, CreatedAt: base.Add(time.Minute)})
	_ = repo.Append(ctx, domain.LedgerEntry{ID: "x", UserID: 2, CreatedAt: base})

	got, _ := repo.List(ctx, 1, 2)
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "c" {
		t.Fatalf("unexpected entries: %+v", got)
	}

	empty, _ := repo.List(ctx, 99, 10)
	if empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", empty)
	}
}

func TestSubmitGuard_OneHolder(t *testing.T) {
	guard := NewSubmitGuard()
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := guard.Acquire(ctx, "shop:purchase:c1"); ok {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if winners != 1 {
		t.Fatalf("expected exactly one holder, got %d", winners)
	}

	_ = guard.Release(ctx, "shop:purchase:c1")
	if ok, _ := guard.Acquire(ctx, "shop:purchase:c1"); !ok {
		t.Fatal("Acquire after Release must succeed")
	}
}
