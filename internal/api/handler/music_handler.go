package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/speaky/gateway/internal/core/service"
)

// Music returns the playback state and the tracks matching q.
//
// @Summary      Browse music
// @Tags         music
// @Produce      json
// @Security     BearerAuth
// @Param        q    query     string  false  "Title or artist filter"
// @Success      200  {object}  musicPanelState
// @Failure      409  {object}  errorResponse
// @Router       /v1/music [get]
func (h *PanelHandler) Music(c echo.Context) error {
	v, err := active[service.MusicView](c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, musicPanelState{
		MusicState: v.Panel.State(),
		Results:    v.Panel.Search(c.QueryParam("q")),
	})
}

// Play starts a track.
//
// @Summary      Play a track
// @Tags         music
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      trackRequest  true  "Track"
// @Success      200   {object}  service.MusicState
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/music/play [post]
func (h *PanelHandler) Play(c echo.Context) error {
	var req trackRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	v, err := active[service.MusicView](c)
	if err != nil {
		return err
	}
	st, err := v.Panel.Play(req.TrackID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, st)
}

// TogglePlayback pauses or resumes the current track.
//
// @Summary      Toggle playback
// @Tags         music
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  service.MusicState
// @Failure      409  {object}  errorResponse
// @Router       /v1/music/toggle [post]
func (h *PanelHandler) TogglePlayback(c echo.Context) error {
	v, err := active[service.MusicView](c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v.Panel.TogglePlayback())
}

// AddToPlaylist appends a track to the playlist.
//
// @Summary      Add to playlist
// @Tags         music
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      trackRequest  true  "Track"
// @Success      200   {object}  service.MusicState
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/music/playlist [post]
func (h *PanelHandler) AddToPlaylist(c echo.Context) error {
	var req trackRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	v, err := active[service.MusicView](c)
	if err != nil {
		return err
	}
	st, err := v.Panel.AddToPlaylist(req.TrackID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, st)
}
