package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/speaky/gateway/internal/core/domain"
	"github.com/speaky/gateway/internal/core/service"
)

type sessionHolder interface {
	Session() (*service.SessionStore, error)
}

// RequireAdmin admits the request only when the live session is an admin.
// The flag is read on every request, so revoking it takes effect at once.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h, ok := c.Get("workspace").(sessionHolder)
			if !ok || h == nil {
				return domain.ErrNotAuthenticated
			}
			store, err := h.Session()
			if err != nil {
				return err
			}
			if !store.Current().User.IsAdmin {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
