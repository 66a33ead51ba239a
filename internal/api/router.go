package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/speaky/gateway/internal/api/handler"
	"github.com/speaky/gateway/internal/api/middleware"
)

// Registry is what the API needs from the workspace registry.
type Registry interface {
	handler.Registry
	middleware.Resolver
}

// Push is the websocket hub.
type Push interface {
	handler.Subscriber
	handler.Disconnector
}

// Deps are the collaborators of the HTTP API.
type Deps struct {
	Registry  Registry
	Tokens    handler.TokenIssuer
	Push      Push
	JWTSecret string
	// Probes are pinged by /health/ready, keyed by dependency name.
	Probes map[string]handler.Pinger
	// Metrics receives the HTTP request metrics. Nil uses the default registry,
	// which also holds the domain metrics.
	Metrics *prometheus.Registry
	Log     zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())

	var registerer prometheus.Registerer = prometheus.DefaultRegisterer
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if d.Metrics != nil {
		registerer = d.Metrics
		gatherer = prometheus.Gatherers{d.Metrics, prometheus.DefaultGatherer}
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "speaky",
		Registerer: registerer,
	}))

	// --- Probes and docs (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Probes)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(d.Registry, d.Tokens, d.Push)
	sessionHandler := handler.NewSessionHandler()
	panels := handler.NewPanelHandler()
	eventsHandler := handler.NewEventsHandler(d.Push, d.Log)

	auth := middleware.Auth(d.JWTSecret)
	workspace := middleware.Workspace(d.Registry)
	admin := middleware.RequireAdmin()

	v1 := e.Group("/v1")

	// --- Clients ---
	v1.POST("/clients", authHandler.OpenClient)
	v1.DELETE("/clients/me", authHandler.Logout, auth)
	v1.GET("/events", eventsHandler.Subscribe, auth)

	// Everything below runs against the caller's workspace.
	ws := []echo.MiddlewareFunc{auth, workspace}
	route := func(method, path string, h echo.HandlerFunc, extra ...echo.MiddlewareFunc) {
		v1.Add(method, path, h, append(append([]echo.MiddlewareFunc{}, ws...), extra...)...)
	}

	// --- Auth steps ---
	route(http.MethodGet, "/auth", authHandler.State)
	route(http.MethodPost, "/auth/phone", authHandler.SubmitPhone)
	route(http.MethodPost, "/auth/code", authHandler.SubmitCode)
	route(http.MethodPost, "/auth/back", authHandler.Back)
	route(http.MethodPost, "/auth/profile", authHandler.SubmitProfile)

	// --- Session and view ---
	route(http.MethodGet, "/session", sessionHandler.Session)
	route(http.MethodGet, "/notifications", sessionHandler.Notifications)
	route(http.MethodGet, "/view", sessionHandler.View)
	route(http.MethodPut, "/view", sessionHandler.SetView)

	// --- Chats ---
	route(http.MethodGet, "/chats", panels.ListChats)
	route(http.MethodPost, "/chats", panels.CreateChat)
	route(http.MethodGet, "/chats/selection", panels.Selection)
	route(http.MethodPut, "/chats/selection", panels.SelectChat)
	route(http.MethodDelete, "/chats/selection", panels.CloseChat)
	route(http.MethodPut, "/chats/selection/draft", panels.SetDraft)
	route(http.MethodPost, "/chats/selection/messages", panels.SendMessage)
	route(http.MethodDelete, "/chats/selection/messages", panels.ClearMessages)

	// --- Profile and settings ---
	route(http.MethodGet, "/profile", panels.Profile)
	route(http.MethodPut, "/profile", panels.UpdateProfile)
	route(http.MethodPost, "/profile/avatar", panels.UploadAvatar)
	route(http.MethodPost, "/profile/banner", panels.UploadBanner)
	route(http.MethodPost, "/profile/verification", panels.RequestVerification)
	route(http.MethodGet, "/settings", panels.Settings)
	route(http.MethodPut, "/settings/language", panels.ChangeLanguage)
	route(http.MethodPut, "/settings/theme", panels.ChangeTheme)
	route(http.MethodPost, "/settings/blocked", panels.Block)
	route(http.MethodDelete, "/settings/blocked/:user_id", panels.Unblock)

	// --- Wallet, shop and gifts ---
	route(http.MethodGet, "/wallet", panels.Wallet)
	route(http.MethodGet, "/wallet/quote", panels.Quote)
	route(http.MethodPost, "/wallet/top-up", panels.TopUp)
	route(http.MethodGet, "/shop", panels.Shop)
	route(http.MethodPost, "/shop/purchases", panels.Purchase)
	route(http.MethodGet, "/gifts", panels.Gifts)
	route(http.MethodPost, "/gifts/:id/sell", panels.SellGift)

	// --- Friends and music ---
	route(http.MethodGet, "/friends", panels.Friends)
	route(http.MethodPost, "/friends", panels.AddFriend)
	route(http.MethodGet, "/music", panels.Music)
	route(http.MethodPost, "/music/play", panels.Play)
	route(http.MethodPost, "/music/toggle", panels.TogglePlayback)
	route(http.MethodPost, "/music/playlist", panels.AddToPlaylist)

	// --- Admin (live admin flag) ---
	route(http.MethodGet, "/admin", panels.Admin, admin)
	route(http.MethodPost, "/admin/search", panels.SearchUser, admin)
	route(http.MethodPut, "/admin/users/:id/verification", panels.Verify, admin)
	route(http.MethodDelete, "/admin/users/:id/verification", panels.Unverify, admin)

	return e
}
