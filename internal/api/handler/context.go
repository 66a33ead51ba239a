package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/speaky/gateway/internal/core/service"
)

// ctxClientID returns the client id injected by the Auth middleware.
func ctxClientID(c echo.Context) (string, error) {
	id, _ := c.Get("client_id").(string)
	if id == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing client identity")
	}
	return id, nil
}

// ctxWorkspace returns the workspace resolved by the Workspace middleware.
func ctxWorkspace(c echo.Context) (*service.Workspace, error) {
	w, _ := c.Get("workspace").(*service.Workspace)
	if w == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing workspace")
	}
	return w, nil
}

// active returns the mounted view of the request's workspace when it is a V.
func active[V service.View](c echo.Context) (V, error) {
	var zero V
	w, err := ctxWorkspace(c)
	if err != nil {
		return zero, err
	}
	r, err := w.Router()
	if err != nil {
		return zero, err
	}
	return service.Active[V](r)
}

// bindValid binds and validates the request body into req.
func bindValid(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return nil
}
