package service

import (
	"context"
	"strings"
	"sync"

	"github.com/speaky/gateway/internal/core/domain"
)

const (
	msgFriendRequested   = "friend request sent"
	msgFriendFailed      = "failed to send friend request"
	msgFriendsLoadFailed = "failed to load friends"
)

// FriendsPanel lists friends and sends friend requests.
type FriendsPanel struct {
	env *panelEnv

	mu      sync.Mutex
	friends []domain.PublicUser
}

func newFriendsPanel(env *panelEnv) *FriendsPanel {
	return &FriendsPanel{env: env}
}

func (p *FriendsPanel) Mount(ctx context.Context) {
	u := p.env.user()
	list, err := p.env.remote.Users.Friends(ctx, u.ID)
	if err != nil {
		p.env.log.Warn().Err(err).Int64("user_id", u.ID).Msg("failed to load friends")
		p.env.notes.RemoteFailure(err, msgFriendsLoadFailed)
		return
	}
	p.mu.Lock()
	p.friends = list
	p.mu.Unlock()
}

func (p *FriendsPanel) Friends() []domain.PublicUser {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.PublicUser(nil), p.friends...)
}

// AddFriend sends a friend request to the @handle username.
func (p *FriendsPanel) AddFriend(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)
	if !strings.HasPrefix(username, "@") || len(username) < 2 {
		return domain.ErrUsernamePrefix
	}
	u := p.env.user()
	err := p.env.guarded(ctx, "friends:add", func() error {
		return p.env.remote.Users.AddFriend(ctx, u.ID, username)
	})
	if err != nil {
		return p.env.failed(err, msgFriendFailed)
	}
	p.env.notes.Success(msgFriendRequested)
	return nil
}
