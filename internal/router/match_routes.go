package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bola-na-rede/internal/handler"
	"github.com/iliyamo/bola-na-rede/internal/middleware"
	"github.com/iliyamo/bola-na-rede/internal/model"
)

// RegisterMatches registers the match endpoints under /v1/matches.  Every
// route requires a signed-in PLAYER or ADMIN; limit runs after
// authentication so it can key buckets by user.
func RegisterMatches(e *echo.Echo, h *handler.MatchHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group(
		"/v1/matches",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RolePlayer, model.RoleAdmin),
		limit,
	)
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/split", h.Split)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// RegisterAddress registers the postal code lookup used by the match form.
// Responses are shared by every user, so cache sits in front of the handler
// after the rate limiter.
func RegisterAddress(e *echo.Echo, h *handler.AddressHandler, jwtSecret string, limit, cache echo.MiddlewareFunc) {
	e.GET("/v1/address/:cep", h.Lookup,
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RolePlayer, model.RoleAdmin),
		limit,
		cache,
	)
}

// RegisterAdmin registers collection-wide maintenance endpoints.  ADMIN only.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)
	g.GET("/matches", h.All)
	g.POST("/sweep", h.SweepNow)
	g.DELETE("/matches", h.Purge)
}
