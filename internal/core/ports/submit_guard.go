package ports

import "context"

// SubmitGuard rejects a second submission of the same action while the first is in flight.
type SubmitGuard interface {
	// Acquire returns false when key is already held.
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}
