package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/speaky/gateway/internal/core/service"
)

// Registry is the part of the workspace registry the client endpoints use.
type Registry interface {
	Open(ctx context.Context) *service.Workspace
	Close(ctx context.Context, clientID string) error
}

// TokenIssuer signs client tokens.
type TokenIssuer interface {
	Issue(clientID string) (string, error)
}

// Disconnector drops the push subscriptions of a client on logout.
type Disconnector interface {
	CloseClient(clientID string)
}

// AuthHandler opens client workspaces and drives the sign-up steps.
type AuthHandler struct {
	registry Registry
	tokens   TokenIssuer
	push     Disconnector
}

// NewAuthHandler builds the handler. push may be nil.
func NewAuthHandler(registry Registry, tokens TokenIssuer, push Disconnector) *AuthHandler {
	return &AuthHandler{registry: registry, tokens: tokens, push: push}
}

// OpenClient creates a workspace and returns the token that addresses it.
//
// @Summary      Open a client workspace
// @Tags         clients
// @Produce      json
// @Success      201  {object}  openClientResponse
// @Failure      500  {object}  errorResponse
// @Router       /v1/clients [post]
func (h *AuthHandler) OpenClient(c echo.Context) error {
	w := h.registry.Open(c.Request().Context())
	token, err := h.tokens.Issue(w.ID())
	if err != nil {
		return err
	}
	flow, err := w.Auth()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, openClientResponse{
		ClientID: w.ID(),
		Token:    token,
		Auth:     flow.Progress(),
	})
}

// Logout discards the session and its persisted record.
//
// @Summary      Log out
// @Tags         clients
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  errorResponse
// @Router       /v1/clients/me [delete]
func (h *AuthHandler) Logout(c echo.Context) error {
	clientID, err := ctxClientID(c)
	if err != nil {
		return err
	}
	if err := h.registry.Close(c.Request().Context(), clientID); err != nil {
		return err
	}
	if h.push != nil {
		h.push.CloseClient(clientID)
	}
	return c.NoContent(http.StatusNoContent)
}

// State returns the sign-up progress, or the session once signed in.
//
// @Summary      Get auth state
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  authStateResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/auth [get]
func (h *AuthHandler) State(c echo.Context) error {
	w, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	if store, err := w.Session(); err == nil {
		snap := store.Current()
		return c.JSON(http.StatusOK, authStateResponse{Authenticated: true, Session: &snap})
	}
	flow, err := w.Auth()
	if err != nil {
		return err
	}
	p := flow.Progress()
	return c.JSON(http.StatusOK, authStateResponse{Auth: &p})
}

// SubmitPhone moves to the code step.
//
// @Summary      Submit the phone number
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      phoneRequest  true  "Phone"
// @Success      200   {object}  domain.AuthProgress
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/auth/phone [post]
func (h *AuthHandler) SubmitPhone(c echo.Context) error {
	var req phoneRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	return h.step(c, func(f *service.AuthFlow) error { return f.SubmitPhone(req.Phone) })
}

// SubmitCode moves to the profile step.
//
// @Summary      Submit the confirmation code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      codeRequest  true  "Code"
// @Success      200   {object}  domain.AuthProgress
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/auth/code [post]
func (h *AuthHandler) SubmitCode(c echo.Context) error {
	var req codeRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	return h.step(c, func(f *service.AuthFlow) error { return f.SubmitCode(req.Code) })
}

// Back returns from the code step to the phone step.
//
// @Summary      Go back to the phone step
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.AuthProgress
// @Failure      409  {object}  errorResponse
// @Router       /v1/auth/back [post]
func (h *AuthHandler) Back(c echo.Context) error {
	return h.step(c, (*service.AuthFlow).Back)
}

// SubmitProfile registers the user and opens the session.
//
// @Summary      Submit the profile and register
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      profileStepRequest  true  "Nickname"
// @Success      201   {object}  domain.Snapshot
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /v1/auth/profile [post]
func (h *AuthHandler) SubmitProfile(c echo.Context) error {
	var req profileStepRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	w, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	snap, err := w.SubmitProfile(c.Request().Context(), req.Nickname)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, snap)
}

func (h *AuthHandler) step(c echo.Context, fn func(*service.AuthFlow) error) error {
	w, err := ctxWorkspace(c)
	if err != nil {
		return err
	}
	flow, err := w.Auth()
	if err != nil {
		return err
	}
	if err := fn(flow); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, flow.Progress())
}
