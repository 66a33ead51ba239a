package remote

import (
	"context"
	"net/http"

	"github.com/speaky/gateway/internal/core/domain"
)

// ChatsClient implements ports.ChatsAPI.
type ChatsClient struct {
	ep endpoint
}

func (c *ChatsClient) List(ctx context.Context, userID int64) ([]domain.Chat, error) {
	out := []domain.Chat{}
	err := c.ep.get(ctx, "list", byUser(userID), &out)
	return out, err
}

func (c *ChatsClient) Create(ctx context.Context, userID int64, chatType domain.ChatType, name string) (domain.Chat, error) {
	var out struct {
		Chat domain.Chat `json:"chat"`
	}
	err := c.ep.send(ctx, http.MethodPost, "create", map[string]any{
		"user_id": userID, "type": chatType, "name": name,
	}, &out)
	return out.Chat, err
}
