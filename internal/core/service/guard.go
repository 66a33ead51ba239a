package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/speaky/gateway/internal/core/domain"
	"github.com/speaky/gateway/internal/core/ports"
)

// guarded runs fn while holding the submit guard for key. A second call with
// the same key while fn runs returns domain.ErrBusy. A failing guard store
// does not block the action.
func guarded(ctx context.Context, guard ports.SubmitGuard, log zerolog.Logger, key string, fn func() error) error {
	if guard == nil {
		return fn()
	}
	ok, err := guard.Acquire(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("submit guard unavailable, proceeding without it")
		return fn()
	}
	if !ok {
		return domain.ErrBusy
	}
	defer func() {
		if err := guard.Release(context.WithoutCancel(ctx), key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to release submit guard")
		}
	}()
	return fn()
}
