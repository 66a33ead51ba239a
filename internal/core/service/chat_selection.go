package service

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/speaky/gateway/internal/core/domain"
)

// ChatSelection is the conversation open in the chats view. It belongs to one
// chats panel and disappears with it.
type ChatSelection struct {
	mu       sync.Mutex
	selected *domain.SelectedChat
	now      func() time.Time
}

func newChatSelection(now func() time.Time) *ChatSelection {
	if now == nil {
		now = time.Now
	}
	return &ChatSelection{now: now}
}

// Select opens chat with an empty message list and an empty draft.
func (s *ChatSelection) Select(chat domain.Chat) domain.SelectedChat {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = &domain.SelectedChat{Chat: chat, Messages: []domain.Message{}}
	return s.copyLocked()
}

// Current returns the open conversation. ok is false when none is open.
func (s *ChatSelection) Current() (chat domain.SelectedChat, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		return domain.SelectedChat{}, false
	}
	return s.copyLocked(), true
}

func (s *ChatSelection) Clear() {
	s.mu.Lock()
	s.selected = nil
	s.mu.Unlock()
}

func (s *ChatSelection) SetDraft(text string) (domain.SelectedChat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		return domain.SelectedChat{}, domain.ErrNoChatSelected
	}
	s.selected.Draft = text
	return s.copyLocked(), nil
}

// SendMessage appends the draft as an outgoing message and clears the draft.
func (s *ChatSelection) SendMessage() (domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		return domain.Message{}, domain.ErrNoChatSelected
	}
	if strings.TrimSpace(s.selected.Draft) == "" {
		return domain.Message{}, domain.ErrEmptyMessage
	}
	msg := domain.Message{
		ID:     uuid.NewString(),
		Text:   s.selected.Draft,
		Sender: domain.SenderMe,
		Time:   s.now().Format("15:04"),
	}
	s.selected.Messages = append(s.selected.Messages, msg)
	s.selected.Draft = ""
	return msg, nil
}

func (s *ChatSelection) ClearMessages() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		return domain.ErrNoChatSelected
	}
	s.selected.Messages = []domain.Message{}
	return nil
}

func (s *ChatSelection) copyLocked() domain.SelectedChat {
	out := *s.selected
	out.Messages = append([]domain.Message{}, s.selected.Messages...)
	return out
}
