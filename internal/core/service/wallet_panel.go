package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/speaky/gateway/internal/core/domain"
)

const msgTopUpFailed = "top-up failed"

// WalletPanel shows the balance history and tops the balance up.
type WalletPanel struct {
	env *panelEnv

	mu      sync.Mutex
	history []domain.LedgerEntry
}

func newWalletPanel(env *panelEnv) *WalletPanel {
	return &WalletPanel{env: env}
}

func (p *WalletPanel) Mount(ctx context.Context) {
	p.reload(ctx)
}

func (p *WalletPanel) reload(ctx context.Context) {
	if p.env.ledger == nil {
		return
	}
	u := p.env.user()
	entries, err := p.env.ledger.List(ctx, u.ID, LedgerHistoryLimit)
	if err != nil {
		p.env.log.Error().Err(err).Int64("user_id", u.ID).Msg("failed to load wallet history")
		p.env.notes.Error("failed to load wallet history")
		return
	}
	p.mu.Lock()
	p.history = entries
	p.mu.Unlock()
}

// History returns the wallet entries as last loaded, newest first.
func (p *WalletPanel) History() []domain.LedgerEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.LedgerEntry(nil), p.history...)
}

// Quote returns the enots a top-up of amount would credit.
func (p *WalletPanel) Quote(amount int64) int64 {
	return domain.TopUpCredit(amount)
}

// TopUp parses input as an amount of real currency, charges it through
// method and credits twice the amount in enots.
func (p *WalletPanel) TopUp(ctx context.Context, input string, method domain.PaymentMethod) (domain.Snapshot, error) {
	amount, ok := domain.ParseAmount(input)
	if !ok || amount <= 0 {
		return domain.Snapshot{}, domain.ErrInvalidAmount
	}
	if !method.Valid() {
		return domain.Snapshot{}, fmt.Errorf("%w: unknown payment method %q", domain.ErrValidation, method)
	}
	credit := domain.TopUpCredit(amount)

	u := p.env.user()
	err := p.env.guarded(ctx, "wallet:top_up", func() error {
		return p.env.remote.Wallet.TopUp(ctx, u.ID, amount, credit, method)
	})
	if err != nil {
		return domain.Snapshot{}, p.env.failed(err, msgTopUpFailed)
	}

	next, err := p.env.fold(0, domain.UserPatch{EnotsDelta: credit})
	if err != nil {
		return domain.Snapshot{}, err
	}
	p.env.record(ctx, u.ID, domain.LedgerTopUp, fmt.Sprintf("top-up via %s", method), credit)
	p.env.notes.Success(fmt.Sprintf("topped up by %d enots", credit))
	p.reload(ctx)

	p.env.log.Info().Str("client_id", p.env.clientID).Int64("user_id", u.ID).Int64("credit", credit).Msg("wallet topped up")
	return next, nil
}
