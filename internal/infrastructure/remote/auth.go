package remote

import (
	"context"
	"net/http"

	"github.com/speaky/gateway/internal/core/domain"
)

const (
	actionRegister = "register"
	actionLogin    = "login"
)

type userReply struct {
	User domain.User `json:"user"`
}

// AuthClient implements ports.AuthAPI.
type AuthClient struct {
	ep endpoint
}

func (c *AuthClient) Register(ctx context.Context, phone, nickname, username string) (domain.User, error) {
	var out userReply
	err := c.ep.send(ctx, http.MethodPost, actionRegister, map[string]any{
		"phone":    phone,
		"nickname": nickname,
		"username": username,
	}, &out)
	return out.User, err
}

func (c *AuthClient) Login(ctx context.Context, phone string) (domain.User, error) {
	var out userReply
	err := c.ep.send(ctx, http.MethodPost, actionLogin, map[string]any{"phone": phone}, &out)
	return out.User, err
}
