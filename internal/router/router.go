package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bola-na-rede/internal/handler"
	"github.com/iliyamo/bola-na-rede/internal/kvstore"
	"github.com/iliyamo/bola-na-rede/internal/middleware"
	"github.com/iliyamo/bola-na-rede/internal/model"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check that probes the match store.
func RegisterRoutes(e *echo.Echo, store kvstore.Store) {
	e.GET("/healthz", handler.Health(store))
}

// RegisterAuth registers the sign-up/sign-in flow under /v1/auth and the
// current-user endpoint under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// rotates the refresh token
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout takes either a refresh_token body or a bearer token, so it is
	// not behind JWTAuth.
	g.POST("/logout", a.Logout)
	e.POST("/v1/logout", a.Logout)

	auth := e.Group("/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RolePlayer, model.RoleAdmin),
	)
	auth.GET("/me", a.Me)
}
