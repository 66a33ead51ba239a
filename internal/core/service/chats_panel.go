package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/speaky/gateway/internal/core/domain"
)

const (
	msgChatsLoadFailed = "failed to load chats"
	msgChatCreateFail  = "failed to create chat"
)

// ChatsPanel is the chat list together with the open conversation.
type ChatsPanel struct {
	env       *panelEnv
	selection *ChatSelection

	mu    sync.Mutex
	chats []domain.Chat
}

func newChatsPanel(env *panelEnv) *ChatsPanel {
	return &ChatsPanel{env: env, selection: newChatSelection(env.now)}
}

func (p *ChatsPanel) Mount(ctx context.Context) {
	u := p.env.user()
	chats, err := p.env.remote.Chats.List(ctx, u.ID)
	if err != nil {
		p.env.log.Warn().Err(err).Int64("user_id", u.ID).Msg("failed to load chats")
		p.env.notes.RemoteFailure(err, msgChatsLoadFailed)
		return
	}
	p.mu.Lock()
	p.chats = chats
	p.mu.Unlock()
}

// Selection returns the open-conversation state of this panel.
func (p *ChatsPanel) Selection() *ChatSelection {
	return p.selection
}

// List returns the chats under tab whose name or username contains query,
// ignoring case.
func (p *ChatsPanel) List(tab domain.ChatTab, query string) []domain.Chat {
	query = strings.ToLower(strings.TrimSpace(query))
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.Chat, 0, len(p.chats))
	for _, c := range p.chats {
		if !tab.Matches(c) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(c.Name), query) &&
			!strings.Contains(strings.ToLower(c.Username), query) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Select opens the listed chat chatID.
func (p *ChatsPanel) Select(chatID int64) (domain.SelectedChat, error) {
	p.mu.Lock()
	var (
		chat  domain.Chat
		found bool
	)
	for _, c := range p.chats {
		if c.ID == chatID {
			chat, found = c, true
			break
		}
	}
	p.mu.Unlock()
	if !found {
		return domain.SelectedChat{}, fmt.Errorf("chat %d: %w", chatID, domain.ErrChatNotFound)
	}
	return p.selection.Select(chat), nil
}

// CreateChat creates a group or a channel and puts it on top of the list.
func (p *ChatsPanel) CreateChat(ctx context.Context, chatType domain.ChatType, name string) (domain.Chat, error) {
	if !chatType.Creatable() {
		return domain.Chat{}, domain.ErrInvalidChatType
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Chat{}, domain.ErrChatNameRequired
	}

	u := p.env.user()
	var chat domain.Chat
	err := p.env.guarded(ctx, "chats:create", func() error {
		var err error
		chat, err = p.env.remote.Chats.Create(ctx, u.ID, chatType, name)
		return err
	})
	if err != nil {
		return domain.Chat{}, p.env.failed(err, msgChatCreateFail)
	}
	if chat.Type == "" {
		chat.Type = chatType
	}

	p.mu.Lock()
	p.chats = append([]domain.Chat{chat}, p.chats...)
	p.mu.Unlock()

	kind := "group"
	if chatType == domain.ChatChannel {
		kind = "channel"
	}
	p.env.notes.Success(kind + " created")
	return chat, nil
}
