package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/speaky/gateway/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that maps domain
// errors to status codes and renders {"error": "<message>"}. Unexpected
// errors are logged and answered with a generic 500.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

var statusByKind = []struct {
	target error
	code   int
}{
	{domain.ErrInvalidTransition, http.StatusConflict},
	{domain.ErrViewNotActive, http.StatusConflict},
	{domain.ErrStaleSession, http.StatusConflict},
	{domain.ErrBusy, http.StatusConflict},
	{domain.ErrNoChatSelected, http.StatusConflict},
	{domain.ErrForbidden, http.StatusForbidden},
	{domain.ErrNotAuthenticated, http.StatusUnauthorized},
	{domain.ErrWorkspaceClosed, http.StatusUnauthorized},
	{domain.ErrUnknownView, http.StatusNotFound},
	{domain.ErrChatNotFound, http.StatusNotFound},
	{domain.ErrGiftNotFound, http.StatusNotFound},
	{domain.ErrTrackNotFound, http.StatusNotFound},
	{domain.ErrUserNotFound, http.StatusNotFound},
	{domain.ErrSessionNotFound, http.StatusNotFound},
	{domain.ErrRemoteRejected, http.StatusBadGateway},
	{domain.ErrTransport, http.StatusServiceUnavailable},
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	if domain.IsValidation(err) {
		return http.StatusUnprocessableEntity, err.Error()
	}
	for _, k := range statusByKind {
		if errors.Is(err, k.target) {
			if k.code >= http.StatusInternalServerError {
				log.Warn().Err(err).Str("path", c.Path()).Msg("remote failure")
			}
			return k.code, err.Error()
		}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
