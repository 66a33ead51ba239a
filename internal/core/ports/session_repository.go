package ports

import (
	"context"

	"github.com/speaky/gateway/internal/core/domain"
)

// SessionRepository persists the authenticated user of a client.
type SessionRepository interface {
	Save(ctx context.Context, clientID string, user domain.User) error
	// Load returns domain.ErrSessionNotFound when nothing is stored for the client.
	Load(ctx context.Context, clientID string) (domain.User, error)
	Delete(ctx context.Context, clientID string) error
}

// SessionKey is the storage key of a client's persisted session.
func SessionKey(clientID string) string {
	return "speaky_user:" + clientID
}
