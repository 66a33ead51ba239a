package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/speaky/gateway/internal/core/domain"
	"github.com/speaky/gateway/internal/core/ports"
)

const (
	msgProfileUpdated       = "profile updated"
	msgProfileUpdateFailed  = "profile update failed"
	msgAvatarChanged        = "avatar changed"
	msgBannerChanged        = "banner changed"
	msgUploadFailed         = "upload failed"
	msgVerificationReceived = "verification request submitted"
)

// ProfilePanel edits the public profile of the session owner.
type ProfilePanel struct {
	env *panelEnv

	mu    sync.Mutex
	stats domain.ProfileStats
}

func newProfilePanel(env *panelEnv) *ProfilePanel {
	return &ProfilePanel{env: env}
}

// Mount loads the profile counters. Failures leave them at zero.
func (p *ProfilePanel) Mount(ctx context.Context) {
	u := p.env.user()
	stats, err := p.env.remote.Users.Stats(ctx, u.ID)
	if err != nil {
		p.env.log.Warn().Err(err).Int64("user_id", u.ID).Msg("failed to load profile stats")
		return
	}
	p.mu.Lock()
	p.stats = stats
	p.mu.Unlock()
}

func (p *ProfilePanel) Stats() domain.ProfileStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// UpdateProfile saves nickname and username and folds the authoritative values back.
func (p *ProfilePanel) UpdateProfile(ctx context.Context, nickname, username string) (domain.Snapshot, error) {
	nickname = strings.TrimSpace(nickname)
	username = strings.TrimSpace(username)
	if nickname == "" {
		return domain.Snapshot{}, domain.ErrNicknameRequired
	}
	if !domain.ValidUsername(username) {
		return domain.Snapshot{}, domain.ErrInvalidUsername
	}

	snap := p.env.store.Current()
	var updated domain.User
	err := p.env.guarded(ctx, "profile:update", func() error {
		var err error
		updated, err = p.env.remote.Users.UpdateProfile(ctx, snap.User.ID, ports.ProfileUpdate{
			Nickname: &nickname,
			Username: &username,
		})
		return err
	})
	if err != nil {
		return domain.Snapshot{}, p.env.failed(err, msgProfileUpdateFailed)
	}

	next, err := p.env.fold(snap.Version, domain.UserPatch{
		Nickname: orDefault(updated.Nickname, nickname),
		Username: orDefault(updated.Username, username),
	})
	if err != nil {
		return domain.Snapshot{}, err
	}
	p.env.notes.Success(msgProfileUpdated)
	return next, nil
}

// UploadAvatar stores a new avatar image and points the profile at it.
func (p *ProfilePanel) UploadAvatar(ctx context.Context, data []byte) (domain.Snapshot, error) {
	return p.upload(ctx, ports.UploadAvatar, data)
}

// UploadBanner stores a new banner image and points the profile at it.
func (p *ProfilePanel) UploadBanner(ctx context.Context, data []byte) (domain.Snapshot, error) {
	return p.upload(ctx, ports.UploadBanner, data)
}

func (p *ProfilePanel) upload(ctx context.Context, kind ports.UploadKind, data []byte) (domain.Snapshot, error) {
	if len(data) == 0 {
		return domain.Snapshot{}, fmt.Errorf("%w: empty %s image", domain.ErrValidation, kind)
	}

	snap := p.env.store.Current()
	var url string
	err := p.env.guarded(ctx, "profile:"+string(kind), func() error {
		var err error
		url, err = p.env.remote.Upload.Upload(ctx, snap.User.ID, kind, data)
		if err != nil {
			return err
		}
		upd := ports.ProfileUpdate{AvatarURL: &url}
		if kind == ports.UploadBanner {
			upd = ports.ProfileUpdate{BannerURL: &url}
		}
		_, err = p.env.remote.Users.UpdateProfile(ctx, snap.User.ID, upd)
		return err
	})
	if err != nil {
		return domain.Snapshot{}, p.env.failed(err, msgUploadFailed)
	}

	patch := domain.UserPatch{AvatarURL: &url}
	msg := msgAvatarChanged
	if kind == ports.UploadBanner {
		patch = domain.UserPatch{BannerURL: &url}
		msg = msgBannerChanged
	}
	next, err := p.env.fold(snap.Version, patch)
	if err != nil {
		return domain.Snapshot{}, err
	}
	p.env.notes.Success(msg)
	return next, nil
}

// RequestVerification acknowledges a verification request locally.
func (p *ProfilePanel) RequestVerification() error {
	if p.env.user().Verified {
		return domain.ErrAlreadyVerified
	}
	p.env.notes.Success(msgVerificationReceived)
	return nil
}

// orDefault returns a pointer to v, or to fallback when v is empty.
func orDefault(v, fallback string) *string {
	if v == "" {
		return &fallback
	}
	return &v
}
