package service

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/speaky/gateway/internal/api/metrics"
	"github.com/speaky/gateway/internal/core/domain"
)

// NotificationLimit is the number of undrained notifications kept per workspace.
const NotificationLimit = 50

const msgUnreachable = "cannot reach server"

// Notifications is the bounded feed of transient messages of one workspace.
// When full, the oldest entry is dropped.
type Notifications struct {
	mu     sync.Mutex
	items  []domain.Notification
	limit  int
	now    func() time.Time
	onPush func(domain.Notification)
}

// NewNotifications returns a feed holding at most limit entries. onPush, when
// set, is called with every pushed notification after the feed is unlocked.
func NewNotifications(limit int, onPush func(domain.Notification)) *Notifications {
	if limit <= 0 {
		limit = NotificationLimit
	}
	return &Notifications{limit: limit, now: time.Now, onPush: onPush}
}

func (n *Notifications) Push(level domain.NotificationLevel, msg string) domain.Notification {
	note := domain.Notification{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   msg,
		CreatedAt: n.now().UTC(),
	}

	n.mu.Lock()
	if len(n.items) == n.limit {
		n.items = append(n.items[:0], n.items[1:]...)
	}
	n.items = append(n.items, note)
	n.mu.Unlock()

	metrics.NotificationsTotal.WithLabelValues(string(level)).Inc()
	if n.onPush != nil {
		n.onPush(note)
	}
	return note
}

func (n *Notifications) Success(msg string) { n.Push(domain.LevelSuccess, msg) }
func (n *Notifications) Error(msg string) { n.Push(domain.LevelError, msg) }
func (n *Notifications) Info(msg string) { n.Push(domain.LevelInfo, msg) }

// RemoteFailure pushes the error notification for a failed remote call:
// the generic unreachable message for transport failures, rejected otherwise.
func (n *Notifications) RemoteFailure(err error, rejected string) {
	if errors.Is(err, domain.ErrTransport) {
		n.Error(msgUnreachable)
		return
	}
	n.Error(rejected)
}

// Drain returns the pending notifications, oldest first, and empties the feed.
func (n *Notifications) Drain() []domain.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := n.items
	n.items = nil
	if out == nil {
		out = []domain.Notification{}
	}
	return out
}

// Pending returns the number of undrained notifications.
func (n *Notifications) Pending() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.items)
}
