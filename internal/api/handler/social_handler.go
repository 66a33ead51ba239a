package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/speaky/gateway/internal/core/domain"
	"github.com/speaky/gateway/internal/core/service"
)

// Friends returns the friend list.
//
// @Summary      List friends
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.PublicUser
// @Failure      409  {object}  errorResponse
// @Router       /v1/friends [get]
func (h *PanelHandler) Friends(c echo.Context) error {
	v, err := active[service.FriendsView](c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orEmpty(v.Panel.Friends()))
}

// AddFriend sends a friend request by @handle.
//
// @Summary      Add a friend
// @Tags         friends
// @Accept       json
// @Security     BearerAuth
// @Param        body  body      addFriendRequest  true  "Username"
// @Success      202
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/friends [post]
func (h *PanelHandler) AddFriend(c echo.Context) error {
	var req addFriendRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	v, err := active[service.FriendsView](c)
	if err != nil {
		return err
	}
	if err := v.Panel.AddFriend(c.Request().Context(), req.Username); err != nil {
		return err
	}
	return c.NoContent(http.StatusAccepted)
}

// Admin returns the last search result.
//
// @Summary      Get the admin panel
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  adminPanelState
// @Failure      403  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/admin [get]
func (h *PanelHandler) Admin(c echo.Context) error {
	v, err := active[service.AdminView](c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, adminState(v.Panel))
}

// SearchUser looks a user up by @handle.
//
// @Summary      Search a user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      searchRequest  true  "Username"
// @Success      200   {object}  domain.PublicUser
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/admin/search [post]
func (h *PanelHandler) SearchUser(c echo.Context) error {
	var req searchRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	v, err := active[service.AdminView](c)
	if err != nil {
		return err
	}
	u, err := v.Panel.Search(c.Request().Context(), req.Username)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

// Verify grants the verified badge.
//
// @Summary      Verify a user
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User id"
// @Success      200  {object}  domain.PublicUser
// @Failure      403  {object}  errorResponse
// @Router       /v1/admin/users/{id}/verification [put]
func (h *PanelHandler) Verify(c echo.Context) error {
	return h.verification(c, (*service.AdminPanel).Verify)
}

// Unverify revokes the verified badge.
//
// @Summary      Unverify a user
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User id"
// @Success      200  {object}  domain.PublicUser
// @Failure      403  {object}  errorResponse
// @Router       /v1/admin/users/{id}/verification [delete]
func (h *PanelHandler) Unverify(c echo.Context) error {
	return h.verification(c, (*service.AdminPanel).Unverify)
}

type verificationFunc = func(*service.AdminPanel, context.Context, int64) (domain.PublicUser, error)

func (h *PanelHandler) verification(c echo.Context, fn verificationFunc) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	v, err := active[service.AdminView](c)
	if err != nil {
		return err
	}
	u, err := fn(v.Panel, c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}
