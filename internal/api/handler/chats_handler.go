package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/speaky/gateway/internal/core/domain"
	"github.com/speaky/gateway/internal/core/service"
)

// PanelHandler serves the actions of the mounted panel. Every endpoint
// answers 409 when its view is not the active one.
type PanelHandler struct{}

func NewPanelHandler() *PanelHandler {
	return &PanelHandler{}
}

// ListChats filters the chat list.
//
// @Summary      List chats
// @Tags         chats
// @Produce      json
// @Security     BearerAuth
// @Param        tab  query     string  false  "all, groups or channels"
// @Param        q    query     string  false  "Name or username filter"
// @Success      200  {object}  chatsPanelState
// @Failure      409  {object}  errorResponse
// @Router       /v1/chats [get]
func (h *PanelHandler) ListChats(c echo.Context) error {
	v, err := active[service.ChatsView](c)
	if err != nil {
		return err
	}
	tab := domain.ChatTab(c.QueryParam("tab"))
	return c.JSON(http.StatusOK, chatsState(v.Panel, tab, c.QueryParam("q")))
}

// CreateChat creates a group or a channel.
//
// @Summary      Create a group or channel
// @Tags         chats
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createChatRequest  true  "Chat"
// @Success      201   {object}  domain.Chat
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/chats [post]
func (h *PanelHandler) CreateChat(c echo.Context) error {
	var req createChatRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	v, err := active[service.ChatsView](c)
	if err != nil {
		return err
	}
	chat, err := v.Panel.CreateChat(c.Request().Context(), req.Type, req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, chat)
}

// Selection returns the open conversation.
//
// @Summary      Get the open conversation
// @Tags         chats
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.SelectedChat
// @Success      204
// @Failure      409  {object}  errorResponse
// @Router       /v1/chats/selection [get]
func (h *PanelHandler) Selection(c echo.Context) error {
	v, err := active[service.ChatsView](c)
	if err != nil {
		return err
	}
	sel, ok := v.Panel.Selection().Current()
	if !ok {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, sel)
}

// SelectChat opens a listed chat.
//
// @Summary      Open a chat
// @Tags         chats
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      selectChatRequest  true  "Chat id"
// @Success      200   {object}  domain.SelectedChat
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/chats/selection [put]
func (h *PanelHandler) SelectChat(c echo.Context) error {
	var req selectChatRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	v, err := active[service.ChatsView](c)
	if err != nil {
		return err
	}
	sel, err := v.Panel.Select(req.ChatID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sel)
}

// CloseChat closes the open conversation.
//
// @Summary      Close the open conversation
// @Tags         chats
// @Security     BearerAuth
// @Success      204
// @Failure      409  {object}  errorResponse
// @Router       /v1/chats/selection [delete]
func (h *PanelHandler) CloseChat(c echo.Context) error {
	v, err := active[service.ChatsView](c)
	if err != nil {
		return err
	}
	v.Panel.Selection().Clear()
	return c.NoContent(http.StatusNoContent)
}

// SetDraft replaces the draft of the open conversation.
//
// @Summary      Set the message draft
// @Tags         chats
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      draftRequest  true  "Draft"
// @Success      200   {object}  domain.SelectedChat
// @Failure      409   {object}  errorResponse
// @Router       /v1/chats/selection/draft [put]
func (h *PanelHandler) SetDraft(c echo.Context) error {
	var req draftRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	v, err := active[service.ChatsView](c)
	if err != nil {
		return err
	}
	sel, err := v.Panel.Selection().SetDraft(req.Text)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sel)
}

// SendMessage sends the draft.
//
// @Summary      Send the draft
// @Tags         chats
// @Produce      json
// @Security     BearerAuth
// @Success      201  {object}  domain.Message
// @Failure      409  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /v1/chats/selection/messages [post]
func (h *PanelHandler) SendMessage(c echo.Context) error {
	v, err := active[service.ChatsView](c)
	if err != nil {
		return err
	}
	msg, err := v.Panel.Selection().SendMessage()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, msg)
}

// ClearMessages empties the open conversation.
//
// @Summary      Clear the conversation
// @Tags         chats
// @Security     BearerAuth
// @Success      204
// @Failure      409  {object}  errorResponse
// @Router       /v1/chats/selection/messages [delete]
func (h *PanelHandler) ClearMessages(c echo.Context) error {
	v, err := active[service.ChatsView](c)
	if err != nil {
		return err
	}
	if err := v.Panel.Selection().ClearMessages(); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
