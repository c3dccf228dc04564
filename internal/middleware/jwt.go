package middleware // reusable HTTP middleware for the match API

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bola-na-rede/internal/model"
	"github.com/iliyamo/bola-na-rede/internal/utils"
)

// Context keys set by JWTAuth.
const (
	ctxUserID  = "user_id"
	ctxEmail   = "email"
	ctxRole    = "role"
	ctxSession = "session"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// stores the caller's identity in the request context.  Handlers read it back
// with SessionFrom; the individual claims are also available via
// c.Get("user_id"), c.Get("email") and c.Get("role").
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// A valid header is "Bearer <jwt>".
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

			claims, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			c.Set(ctxUserID, claims.UserID)
			c.Set(ctxEmail, claims.Email)
			c.Set(ctxRole, claims.Role)
			c.Set(ctxSession, model.Session{
				UserID: claims.UserID,
				Email:  model.NormalizeEmail(claims.Email),
				Role:   claims.Role,
			})
			return next(c)
		}
	}
}
