package handler

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/speaky/gateway/internal/core/domain"
	"github.com/speaky/gateway/internal/core/service"
)

// Profile returns the profile card.
//
// @Summary      Get the profile
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  profilePanelState
// @Failure      409  {object}  errorResponse
// @Router       /v1/profile [get]
func (h *PanelHandler) Profile(c echo.Context) error {
	v, err := active[service.ProfileView](c)
	if err != nil {
		return err
	}
	w, _ := ctxWorkspace(c)
	return c.JSON(http.StatusOK, describe(w, v).Panel)
}

// UpdateProfile changes the nickname and the username.
//
// @Summary      Update the profile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Profile"
// @Success      200   {object}  domain.Snapshot
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/profile [put]
func (h *PanelHandler) UpdateProfile(c echo.Context) error {
	var req updateProfileRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	v, err := active[service.ProfileView](c)
	if err != nil {
		return err
	}
	snap, err := v.Panel.UpdateProfile(c.Request().Context(), req.Nickname, req.Username)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snap)
}

// UploadAvatar stores a new avatar image.
//
// @Summary      Upload the avatar
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      uploadRequest  true  "Base64 image"
// @Success      200   {object}  domain.Snapshot
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/profile/avatar [post]
func (h *PanelHandler) UploadAvatar(c echo.Context) error {
	return h.upload(c, (*service.ProfilePanel).UploadAvatar)
}

// UploadBanner stores a new banner image.
//
// @Summary      Upload the banner
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      uploadRequest  true  "Base64 image"
// @Success      200   {object}  domain.Snapshot
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/profile/banner [post]
func (h *PanelHandler) UploadBanner(c echo.Context) error {
	return h.upload(c, (*service.ProfilePanel).UploadBanner)
}

type uploadFunc = func(*service.ProfilePanel, context.Context, []byte) (domain.Snapshot, error)

func (h *PanelHandler) upload(c echo.Context, fn uploadFunc) error {
	var req uploadRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	data, err := base64.StdEncoding.DecodeString(req.File)
	if err != nil {
		return fmt.Errorf("file: %w", domain.ErrValidation)
	}
	v, err := active[service.ProfileView](c)
	if err != nil {
		return err
	}
	snap, err := fn(v.Panel, c.Request().Context(), data)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snap)
}

// RequestVerification asks for the verified badge.
//
// @Summary      Request verification
// @Tags         profile
// @Security     BearerAuth
// @Success      202
// @Failure      409  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /v1/profile/verification [post]
func (h *PanelHandler) RequestVerification(c echo.Context) error {
	v, err := active[service.ProfileView](c)
	if err != nil {
		return err
	}
	if err := v.Panel.RequestVerification(); err != nil {
		return err
	}
	return c.NoContent(http.StatusAccepted)
}

// Settings returns the preferences and the block list.
//
// @Summary      Get the settings
// @Tags         settings
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  settingsPanelState
// @Failure      409  {object}  errorResponse
// @Router       /v1/settings [get]
func (h *PanelHandler) Settings(c echo.Context) error {
	v, err := active[service.SettingsView](c)
	if err != nil {
		return err
	}
	w, _ := ctxWorkspace(c)
	return c.JSON(http.StatusOK, describe(w, v).Panel)
}

// ChangeLanguage switches the interface language.
//
// @Summary      Change the language
// @Tags         settings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      languageRequest  true  "Language"
// @Success      200   {object}  domain.Snapshot
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/settings/language [put]
func (h *PanelHandler) ChangeLanguage(c echo.Context) error {
	var req languageRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	v, err := active[service.SettingsView](c)
	if err != nil {
		return err
	}
	snap, err := v.Panel.ChangeLanguage(c.Request().Context(), req.Language)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snap)
}

// ChangeTheme switches the colour theme.
//
// @Summary      Change the theme
// @Tags         settings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      themeRequest  true  "Theme"
// @Success      200   {object}  domain.Snapshot
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/settings/theme [put]
func (h *PanelHandler) ChangeTheme(c echo.Context) error {
	var req themeRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	v, err := active[service.SettingsView](c)
	if err != nil {
		return err
	}
	snap, err := v.Panel.ChangeTheme(c.Request().Context(), req.Theme)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snap)
}

// Block adds a user to the block list.
//
// @Summary      Block a user
// @Tags         settings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      blockRequest  true  "User id"
// @Success      200   {array}   domain.PublicUser
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/settings/blocked [post]
func (h *PanelHandler) Block(c echo.Context) error {
	var req blockRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	v, err := active[service.SettingsView](c)
	if err != nil {
		return err
	}
	list, err := v.Panel.Block(c.Request().Context(), req.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orEmpty(list))
}

// Unblock removes a user from the block list.
//
// @Summary      Unblock a user
// @Tags         settings
// @Produce      json
// @Security     BearerAuth
// @Param        user_id  path      int  true  "User id"
// @Success      200      {array}   domain.PublicUser
// @Failure      409      {object}  errorResponse
// @Failure      422      {object}  errorResponse
// @Router       /v1/settings/blocked/{user_id} [delete]
func (h *PanelHandler) Unblock(c echo.Context) error {
	id, err := pathID(c, "user_id")
	if err != nil {
		return err
	}
	v, err := active[service.SettingsView](c)
	if err != nil {
		return err
	}
	list, err := v.Panel.Unblock(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orEmpty(list))
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be a positive integer")
	}
	return id, nil
}
