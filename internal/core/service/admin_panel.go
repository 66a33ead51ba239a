package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/speaky/gateway/internal/core/domain"
)

const (
	msgUserNotFound   = "user not found"
	msgSearchFailed   = "search failed"
	msgVerified       = "verification badge granted"
	msgUnverified     = "verification badge removed"
	msgVerifyFailed   = "verification failed"
	msgUnverifyFailed = "failed to remove verification"
)

// AdminPanel grants and removes verification badges. Every operation checks
// the live session, so losing admin rights takes effect immediately.
type AdminPanel struct {
	env *panelEnv

	mu    sync.Mutex
	found *domain.PublicUser
}

func newAdminPanel(env *panelEnv) *AdminPanel {
	return &AdminPanel{env: env}
}

func (p *AdminPanel) Mount(context.Context) {}

// Found returns the result of the last search.
func (p *AdminPanel) Found() (domain.PublicUser, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.found == nil {
		return domain.PublicUser{}, false
	}
	return *p.found, true
}

func (p *AdminPanel) authorize() (domain.User, error) {
	u := p.env.user()
	if !u.IsAdmin {
		return u, domain.ErrForbidden
	}
	return u, nil
}

// Search looks a user up by username. A miss clears the previous result.
func (p *AdminPanel) Search(ctx context.Context, username string) (domain.PublicUser, error) {
	if _, err := p.authorize(); err != nil {
		return domain.PublicUser{}, err
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.PublicUser{}, fmt.Errorf("%w: username is required", domain.ErrValidation)
	}

	var found domain.PublicUser
	err := p.env.guarded(ctx, "admin:search", func() error {
		var err error
		found, err = p.env.remote.Users.Search(ctx, username)
		return err
	})
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		p.setFound(nil)
		p.env.notes.Error(msgUserNotFound)
		return domain.PublicUser{}, err
	case err != nil:
		return domain.PublicUser{}, p.env.failed(err, msgSearchFailed)
	}
	p.setFound(&found)
	return found, nil
}

// Verify grants the verification badge to targetID.
func (p *AdminPanel) Verify(ctx context.Context, targetID int64) (domain.PublicUser, error) {
	return p.setVerified(ctx, targetID, true)
}

// Unverify removes the verification badge from targetID.
func (p *AdminPanel) Unverify(ctx context.Context, targetID int64) (domain.PublicUser, error) {
	return p.setVerified(ctx, targetID, false)
}

func (p *AdminPanel) setVerified(ctx context.Context, targetID int64, verified bool) (domain.PublicUser, error) {
	admin, err := p.authorize()
	if err != nil {
		return domain.PublicUser{}, err
	}
	if targetID <= 0 {
		return domain.PublicUser{}, fmt.Errorf("%w: invalid user id %d", domain.ErrValidation, targetID)
	}
	call, okMsg, failMsg := p.env.remote.Users.UnverifyUser, msgUnverified, msgUnverifyFailed
	if verified {
		call, okMsg, failMsg = p.env.remote.Users.VerifyUser, msgVerified, msgVerifyFailed
	}

	var result domain.PublicUser
	err = p.env.guarded(ctx, "admin:verify", func() error {
		base := p.env.store.Current().Version
		if err := call(ctx, admin.ID, targetID); err != nil {
			return p.env.failed(err, failMsg)
		}

		p.mu.Lock()
		if p.found != nil && p.found.ID == targetID {
			p.found.Verified = verified
			result = *p.found
		} else {
			result = domain.PublicUser{ID: targetID, Verified: verified}
		}
		p.mu.Unlock()

		if targetID == admin.ID {
			if _, err := p.env.fold(base, domain.UserPatch{Verified: &verified}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.PublicUser{}, err
	}
	p.env.notes.Success(okMsg)
	p.env.log.Info().Int64("admin_id", admin.ID).Int64("target_id", targetID).Bool("verified", verified).Msg("verification changed")
	return result, nil
}

func (p *AdminPanel) setFound(u *domain.PublicUser) {
	p.mu.Lock()
	p.found = u
	p.mu.Unlock()
}
