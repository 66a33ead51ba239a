package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/speaky/gateway/internal/core/domain"
	"github.com/speaky/gateway/internal/core/service"
)

// SessionHandler serves the session, the notifications and the view router.
type SessionHandler struct{}

func NewSessionHandler() *SessionHandler {
	return &SessionHandler{}
}

// Session returns the versioned session record.
//
// @Summary      Get the session
// @Tags         session
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Snapshot
// @Failure      401  {object}  errorResponse
// @Router       /v1/session [get]
func (h *SessionHandler) Session(c echo.Context) error {
	w, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	store, err := w.Session()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, store.Current())
}

// Notifications drains the pending notifications, oldest first.
//
// @Summary      Drain notifications
// @Tags         session
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Notification
// @Failure      401  {object}  errorResponse
// @Router       /v1/notifications [get]
func (h *SessionHandler) Notifications(c echo.Context) error {
	w, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, w.Notifications().Drain())
}

// View returns the mounted view and its panel state.
//
// @Summary      Get the mounted view
// @Tags         view
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  viewResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/view [get]
func (h *SessionHandler) View(c echo.Context) error {
	w, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	r, err := w.Router()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, describe(w, r.Current()))
}

// SetView mounts a view.
//
// @Summary      Switch view
// @Tags         view
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      setViewRequest  true  "View id"
// @Success      200   {object}  viewResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/view [put]
func (h *SessionHandler) SetView(c echo.Context) error {
	var req setViewRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	w, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	r, err := w.Router()
	if err != nil {
		return err
	}
	v, err := r.SetView(c.Request().Context(), req.View)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, describe(w, v))
}

// describe renders the state a client needs to draw view v.
func describe(w *service.Workspace, v service.View) viewResponse {
	resp := viewResponse{View: v.ID()}
	var user domain.User
	if store, err := w.Session(); err == nil {
		user = store.Current().User
	}

	switch v := v.(type) {
	case service.AccessDeniedView:
		resp.AccessDenied = true
	case service.ChatsView:
		resp.Panel = chatsState(v.Panel, domain.TabAll, "")
	case service.ProfileView:
		resp.Panel = profilePanelState{User: user, Stats: v.Panel.Stats()}
	case service.SettingsView:
		resp.Panel = settingsPanelState{Language: user.Language, Theme: user.Theme, Blocked: orEmpty(v.Panel.Blocked())}
	case service.MusicView:
		resp.Panel = musicPanelState{MusicState: v.Panel.State(), Results: v.Panel.Search("")}
	case service.WalletView:
		resp.Panel = walletPanelState{Balance: user.Enots, History: orEmpty(v.Panel.History())}
	case service.ShopView:
		resp.Panel = shopPanelState{Balance: user.Enots, Gifts: orEmpty(v.Panel.Gifts())}
	case service.FriendsView:
		resp.Panel = orEmpty(v.Panel.Friends())
	case service.GiftsView:
		resp.Panel = v.Panel.Box()
	case service.AdminView:
		resp.Panel = adminState(v.Panel)
	}
	return resp
}

func chatsState(p *service.ChatsPanel, tab domain.ChatTab, query string) chatsPanelState {
	st := chatsPanelState{Chats: p.List(tab, query)}
	if sel, ok := p.Selection().Current(); ok {
		st.Selected = &sel
	}
	return st
}

func adminState(p *service.AdminPanel) adminPanelState {
	var st adminPanelState
	if u, ok := p.Found(); ok {
		st.Found = &u
	}
	return st
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
