package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/speaky/gateway/internal/core/domain"
	"github.com/speaky/gateway/internal/core/ports"
)

const (
	msgLanguageChanged   = "language changed"
	msgThemeChanged      = "theme changed"
	msgSettingsFailed    = "failed to save settings"
	msgBlocked           = "user blocked"
	msgUnblocked         = "user unblocked"
	msgBlockFailed       = "failed to update block list"
	msgBlockedLoadFailed = "failed to load block list"
)

// SettingsPanel edits interface preferences and the block list.
type SettingsPanel struct {
	env *panelEnv

	mu      sync.Mutex
	blocked []domain.PublicUser
}

func newSettingsPanel(env *panelEnv) *SettingsPanel {
	return &SettingsPanel{env: env}
}

func (p *SettingsPanel) Mount(ctx context.Context) {
	if err := p.reloadBlocked(ctx); err != nil {
		p.env.notes.RemoteFailure(err, msgBlockedLoadFailed)
	}
}

// Blocked returns the block list as last loaded.
func (p *SettingsPanel) Blocked() []domain.PublicUser {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.PublicUser(nil), p.blocked...)
}

func (p *SettingsPanel) ChangeLanguage(ctx context.Context, lang domain.Language) (domain.Snapshot, error) {
	if !lang.Valid() {
		return domain.Snapshot{}, domain.ErrInvalidLanguage
	}
	return p.save(ctx, ports.ProfileUpdate{Language: &lang}, domain.UserPatch{Language: &lang}, msgLanguageChanged)
}

func (p *SettingsPanel) ChangeTheme(ctx context.Context, theme domain.Theme) (domain.Snapshot, error) {
	if !theme.Valid() {
		return domain.Snapshot{}, domain.ErrInvalidTheme
	}
	return p.save(ctx, ports.ProfileUpdate{Theme: &theme}, domain.UserPatch{Theme: &theme}, msgThemeChanged)
}

func (p *SettingsPanel) save(ctx context.Context, upd ports.ProfileUpdate, patch domain.UserPatch, okMsg string) (domain.Snapshot, error) {
	snap := p.env.store.Current()
	if _, err := p.env.remote.Users.UpdateProfile(ctx, snap.User.ID, upd); err != nil {
		return domain.Snapshot{}, p.env.failed(err, msgSettingsFailed)
	}
	next, err := p.env.fold(snap.Version, patch)
	if err != nil {
		return domain.Snapshot{}, err
	}
	p.env.notes.Success(okMsg)
	return next, nil
}

// Block adds targetID to the block list and reloads it.
func (p *SettingsPanel) Block(ctx context.Context, targetID int64) ([]domain.PublicUser, error) {
	return p.changeBlock(ctx, targetID, true)
}

// Unblock removes targetID from the block list and reloads it.
func (p *SettingsPanel) Unblock(ctx context.Context, targetID int64) ([]domain.PublicUser, error) {
	return p.changeBlock(ctx, targetID, false)
}

func (p *SettingsPanel) changeBlock(ctx context.Context, targetID int64, block bool) ([]domain.PublicUser, error) {
	u := p.env.user()
	if targetID <= 0 {
		return nil, fmt.Errorf("%w: invalid user id %d", domain.ErrValidation, targetID)
	}
	if targetID == u.ID {
		return nil, fmt.Errorf("%w: cannot block yourself", domain.ErrValidation)
	}

	call, okMsg := p.env.remote.Users.Unblock, msgUnblocked
	if block {
		call, okMsg = p.env.remote.Users.Block, msgBlocked
	}
	if err := call(ctx, u.ID, targetID); err != nil {
		return nil, p.env.failed(err, msgBlockFailed)
	}
	p.env.notes.Success(okMsg)

	if err := p.reloadBlocked(ctx); err != nil {
		p.env.notes.RemoteFailure(err, msgBlockedLoadFailed)
	}
	return p.Blocked(), nil
}

func (p *SettingsPanel) reloadBlocked(ctx context.Context) error {
	u := p.env.user()
	list, err := p.env.remote.Users.Blocked(ctx, u.ID)
	if err != nil {
		p.env.log.Warn().Err(err).Int64("user_id", u.ID).Msg("failed to load block list")
		return err
	}
	p.mu.Lock()
	p.blocked = list
	p.mu.Unlock()
	return nil
}
