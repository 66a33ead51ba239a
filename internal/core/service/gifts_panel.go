package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/speaky/gateway/internal/core/domain"
)

const (
	msgGiftsLoadFailed = "failed to load gifts"
	msgSaleFailed      = "sale failed"
)

// GiftsPanel lists received and sent gifts and sells received ones.
type GiftsPanel struct {
	env *panelEnv

	mu  sync.Mutex
	box domain.GiftBox
}

func newGiftsPanel(env *panelEnv) *GiftsPanel {
	return &GiftsPanel{env: env}
}

func (p *GiftsPanel) Mount(ctx context.Context) {
	u := p.env.user()
	box, err := p.env.remote.Users.Gifts(ctx, u.ID)
	if err != nil {
		p.env.log.Warn().Err(err).Int64("user_id", u.ID).Msg("failed to load gifts")
		p.env.notes.RemoteFailure(err, msgGiftsLoadFailed)
		return
	}
	p.mu.Lock()
	p.box = box
	p.mu.Unlock()
}

func (p *GiftsPanel) Box() domain.GiftBox {
	p.mu.Lock()
	defer p.mu.Unlock()
	return domain.GiftBox{
		Received: append([]domain.OwnedGift{}, p.box.Received...),
		Sent:     append([]domain.OwnedGift{}, p.box.Sent...),
	}
}

// Sell sells the received gift ownedID back for 70% of its price.
func (p *GiftsPanel) Sell(ctx context.Context, ownedID int64) (domain.Snapshot, error) {
	gift, ok := p.received(ownedID)
	if !ok {
		return domain.Snapshot{}, fmt.Errorf("received gift %d: %w", ownedID, domain.ErrGiftNotFound)
	}
	credit := domain.SaleCredit(gift.Price)

	u := p.env.user()
	err := p.env.guarded(ctx, "gifts:sell", func() error {
		return p.env.remote.Wallet.SellGift(ctx, u.ID, gift.ID, credit)
	})
	if err != nil {
		return domain.Snapshot{}, p.env.failed(err, msgSaleFailed)
	}

	p.mu.Lock()
	kept := p.box.Received[:0:0]
	for _, g := range p.box.Received {
		if g.ID != ownedID {
			kept = append(kept, g)
		}
	}
	p.box.Received = kept
	p.mu.Unlock()

	var next domain.Snapshot
	if credit > 0 {
		if next, err = p.env.fold(0, domain.UserPatch{EnotsDelta: credit}); err != nil {
			return domain.Snapshot{}, err
		}
	} else {
		next = p.env.store.Current()
	}
	p.env.record(ctx, u.ID, domain.LedgerSale, gift.Emoji+" "+gift.Name, credit)
	p.env.notes.Success(fmt.Sprintf("sold for %d enots", credit))
	return next, nil
}

func (p *GiftsPanel) received(id int64) (domain.OwnedGift, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, g := range p.box.Received {
		if g.ID == id {
			return g, true
		}
	}
	return domain.OwnedGift{}, false
}
