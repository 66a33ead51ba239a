package middleware

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/speaky/gateway/internal/core/service"
)

// Resolver finds or restores the workspace of a client.
type Resolver interface {
	Resolve(ctx context.Context, clientID string) (*service.Workspace, error)
}

// Workspace resolves the workspace of the authenticated client and stores it
// under "workspace". It must run after Auth.
func Workspace(r Resolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			clientID, _ := c.Get("client_id").(string)
			w, err := r.Resolve(c.Request().Context(), clientID)
			if err != nil {
				return err
			}
			c.Set("workspace", w)
			return next(c)
		}
	}
}
