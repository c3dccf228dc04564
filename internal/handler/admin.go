package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bola-na-rede/internal/logger"
	"github.com/iliyamo/bola-na-rede/internal/middleware"
	"github.com/iliyamo/bola-na-rede/internal/service"
)

// AdminHandler exposes collection-wide operations.  Routes are mounted
// behind RequireRole(ADMIN).
type AdminHandler struct {
	Matches *service.MatchService
}

func NewAdminHandler(s *service.MatchService) *AdminHandler {
	if s == nil {
		panic("nil service passed to NewAdminHandler")
	}
	return &AdminHandler{Matches: s}
}

// All returns every stored match regardless of participants.
func (h *AdminHandler) All(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ms, err := h.Matches.All(ctx)
	if err != nil {
		return matchError(c, "list", err)
	}
	return c.JSON(http.StatusOK, toMatchList(ms))
}

// SweepNow removes expired matches immediately.
func (h *AdminHandler) SweepNow(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	n, err := h.Matches.SweepNow(ctx)
	if err != nil {
		return matchError(c, "sweep", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"removed": n})
}

// Purge deletes the whole collection.
func (h *AdminHandler) Purge(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Matches.Purge(ctx); err != nil {
		return matchError(c, "purge", err)
	}
	if s, ok := middleware.SessionFrom(c); ok {
		logger.Warn("match collection purged by %s", s.Email)
	}
	return c.NoContent(http.StatusNoContent)
}
