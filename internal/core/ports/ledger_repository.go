package ports

import (
	"context"

	"github.com/speaky/gateway/internal/core/domain"
)

// LedgerRepository stores the wallet history of a user.
type LedgerRepository interface {
	Append(ctx context.Context, entry domain.LedgerEntry) error
	// List returns at most limit entries, newest first.
	List(ctx context.Context, userID int64, limit int) ([]domain.LedgerEntry, error)
}
