package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/speaky/gateway/internal/core/domain"
	"github.com/speaky/gateway/internal/core/ports"
)

// LedgerHistoryLimit is the number of wallet entries loaded on mount.
const LedgerHistoryLimit = 50

// panelEnv is what every panel of a workspace shares.
type panelEnv struct {
	clientID string
	store    *SessionStore
	remote   ports.Remote
	ledger   ports.LedgerRepository
	guard    ports.SubmitGuard
	catalog  ports.Catalog
	notes    *Notifications
	now      func() time.Time
	log      zerolog.Logger
}

// mounter is implemented by every panel. Mount runs the panel's initial
// reads; failures are reported through notifications or the log.
type mounter interface {
	Mount(ctx context.Context)
}

func (e *panelEnv) user() domain.User {
	return e.store.Current().User
}

// guarded runs fn under the submit guard of action for this client.
func (e *panelEnv) guarded(ctx context.Context, action string, fn func() error) error {
	return guarded(ctx, e.guard, e.log, action+":"+e.clientID, fn)
}

// fold applies p at base and logs a rejected write.
func (e *panelEnv) fold(base uint64, p domain.UserPatch) (domain.Snapshot, error) {
	snap, err := e.store.Patch(base, p)
	if err != nil {
		e.log.Warn().Err(err).Str("client_id", e.clientID).Uint64("base", base).Msg("session patch rejected")
	}
	return snap, err
}

// record appends a wallet history entry. The ledger is local history only,
// so a failure is logged and never undoes the balance change.
func (e *panelEnv) record(ctx context.Context, userID int64, kind domain.LedgerKind, title string, amount int64) {
	if e.ledger == nil {
		return
	}
	entry := domain.LedgerEntry{
		ID:        uuid.NewString(),
		UserID:    userID,
		Kind:      kind,
		Title:     title,
		Amount:    amount,
		CreatedAt: e.now().UTC(),
	}
	if err := e.ledger.Append(context.WithoutCancel(ctx), entry); err != nil {
		e.log.Error().Err(err).Int64("user_id", userID).Str("kind", string(kind)).Msg("failed to append ledger entry")
	}
}

// failed reports a remote failure of an action as an error notification.
// ErrBusy and local errors pass through silently.
func (e *panelEnv) failed(err error, msg string) error {
	if domain.IsRemote(err) {
		e.notes.RemoteFailure(err, msg)
	}
	return err
}
