package service

import (
	"context"
	"fmt"

	"github.com/speaky/gateway/internal/core/domain"
)

const msgPurchaseFailed = "purchase failed"

// ShopPanel sells catalog gifts for enots.
type ShopPanel struct {
	env   *panelEnv
	gifts []domain.Gift
}

func newShopPanel(env *panelEnv) *ShopPanel {
	return &ShopPanel{env: env}
}

// Mount snapshots the catalog. The panel keeps that snapshot while mounted.
func (p *ShopPanel) Mount(context.Context) {
	if p.env.catalog != nil {
		p.gifts = p.env.catalog.Gifts()
	}
}

func (p *ShopPanel) Gifts() []domain.Gift {
	return append([]domain.Gift(nil), p.gifts...)
}

// Purchase buys the catalog gift giftID. The balance is checked before the
// request and again when the debit is applied.
func (p *ShopPanel) Purchase(ctx context.Context, giftID int64) (domain.Snapshot, error) {
	gift, ok := p.find(giftID)
	if !ok {
		return domain.Snapshot{}, fmt.Errorf("gift %d: %w", giftID, domain.ErrGiftNotFound)
	}
	u := p.env.user()
	if u.Enots < gift.Price {
		return domain.Snapshot{}, domain.ErrInsufficientFunds
	}

	err := p.env.guarded(ctx, "shop:purchase", func() error {
		return p.env.remote.Wallet.PurchaseGift(ctx, u.ID, gift.ID, gift.Price)
	})
	if err != nil {
		return domain.Snapshot{}, p.env.failed(err, msgPurchaseFailed)
	}

	next, err := p.env.fold(0, domain.UserPatch{EnotsDelta: -gift.Price})
	if err != nil {
		return domain.Snapshot{}, err
	}
	p.env.record(ctx, u.ID, domain.LedgerPurchase, gift.Emoji+" "+gift.Name, -gift.Price)
	p.env.notes.Success(fmt.Sprintf("purchased: %s %s", gift.Emoji, gift.Name))
	return next, nil
}

func (p *ShopPanel) find(id int64) (domain.Gift, bool) {
	for _, g := range p.gifts {
		if g.ID == id {
			return g, true
		}
	}
	return domain.Gift{}, false
}
