package middleware

// identity.go holds the helpers that read the caller's identity back out of
// the Echo context once JWTAuth has run.

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bola-na-rede/internal/model"
)

// SessionFrom returns the authenticated session.  The boolean is false on
// routes that are not behind JWTAuth.
func SessionFrom(c echo.Context) (model.Session, bool) {
	s, ok := c.Get(ctxSession).(model.Session)
	if !ok || s.Email == "" {
		return model.Session{}, false
	}
	return s, true
}

// userKey identifies the caller for rate limiting: the user id when signed
// in, "anon" otherwise.
func userKey(c echo.Context) string {
	if s, ok := SessionFrom(c); ok && s.UserID != 0 {
		return strconv.FormatUint(s.UserID, 10)
	}
	return "anon"
}
