package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bola-na-rede/internal/geo"
	"github.com/iliyamo/bola-na-rede/internal/logger"
	"github.com/iliyamo/bola-na-rede/internal/middleware"
	"github.com/iliyamo/bola-na-rede/internal/model"
	"github.com/iliyamo/bola-na-rede/internal/repository"
	"github.com/iliyamo/bola-na-rede/internal/service"
)

// MatchHandler serves the /v1/matches endpoints.
type MatchHandler struct {
	Matches *service.MatchService
}

func NewMatchHandler(s *service.MatchService) *MatchHandler {
	if s == nil {
		panic("nil service passed to NewMatchHandler")
	}
	return &MatchHandler{Matches: s}
}

// amount accepts rent typed either as a JSON number or as a string such as
// "90,00".
type amount string

func (a *amount) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*a = amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*a = amount(n.String())
	return nil
}

// ----- DTOs -----

type matchReq struct {
	Name         string   `json:"name" validate:"required,max=120"`
	Date         string   `json:"date" validate:"required"`
	Time         string   `json:"time" validate:"required"`
	VenueName    string   `json:"venue_name" validate:"required,max=120"`
	PostalCode   string   `json:"postal_code" validate:"required"`
	Street       string   `json:"street" validate:"max=200"`
	Number       string   `json:"number" validate:"required,max=20"`
	Neighborhood string   `json:"neighborhood" validate:"max=120"`
	City         string   `json:"city" validate:"max=120"`
	Region       string   `json:"region" validate:"max=2"`
	Latitude     *float64 `json:"latitude" validate:"required_with=Longitude"`
	Longitude    *float64 `json:"longitude" validate:"required_with=Latitude"`
	RentCost     amount   `json:"rent_cost" validate:"required"`
	Roster       []string `json:"roster"`
}

func (r matchReq) input() service.MatchInput {
	in := service.MatchInput{
		Name: r.Name,
		Date: r.Date,
		Time: r.Time,
		Location: model.Location{
			PostalCode:   r.PostalCode,
			Street:       r.Street,
			Number:       r.Number,
			Neighborhood: r.Neighborhood,
			City:         r.City,
			Region:       r.Region,
			VenueName:    r.VenueName,
		},
		RentCost: string(r.RentCost),
		Roster:   r.Roster,
	}
	if r.Latitude != nil && r.Longitude != nil {
		in.Coordinates = &model.Coordinates{Lat: *r.Latitude, Lng: *r.Longitude}
	}
	return in
}

type locationResp struct {
	VenueName    string `json:"venue_name"`
	PostalCode   string `json:"postal_code"`
	Street       string `json:"street"`
	Number       string `json:"number"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	Region       string `json:"region"`
	FullAddress  string `json:"full_address"`
}

type matchResp struct {
	ID             int64              `json:"id"`
	Name           string             `json:"name"`
	Date           string             `json:"date"`
	Time           string             `json:"time"`
	Location       locationResp       `json:"location"`
	Coordinates    *model.Coordinates `json:"coordinates,omitempty"`
	MapsURL        string             `json:"maps_url,omitempty"`
	RentCost       string             `json:"rent_cost"`
	PerPersonCost  string             `json:"per_person_cost"`
	PlayerCount    int                `json:"player_count"`
	OrganizerEmail string             `json:"organizer_email"`
	Roster         []string           `json:"roster"`
}

func toMatchResp(m model.Match) matchResp {
	out := matchResp{
		ID:   m.ID,
		Name: m.Name,
		Date: m.Date,
		Time: m.Time,
		Location: locationResp{
			VenueName:    m.Location.VenueName,
			PostalCode:   m.Location.PostalCode,
			Street:       m.Location.Street,
			Number:       m.Location.Number,
			Neighborhood: m.Location.Neighborhood,
			City:         m.Location.City,
			Region:       m.Location.Region,
			FullAddress:  m.Location.FullAddress(),
		},
		Coordinates:    m.Coordinates,
		RentCost:       service.FormatMoney(m.RentCost),
		PerPersonCost:  service.FormatMoney(service.PerPerson(m.RentCost, len(m.Roster))),
		PlayerCount:    m.PlayerCount(),
		OrganizerEmail: m.OrganizerEmail,
		Roster:         m.Roster,
	}
	if m.Coordinates != nil {
		out.MapsURL = geo.MapsURL(*m.Coordinates)
	}
	if out.Roster == nil {
		out.Roster = []string{}
	}
	return out
}

func toMatchList(ms []model.Match) []matchResp {
	out := make([]matchResp, 0, len(ms))
	for _, m := range ms {
		out = append(out, toMatchResp(m))
	}
	return out
}

// matchError maps service errors to status codes.
func matchError(c echo.Context, op string, err error) error {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": verr.Msg, "field": verr.Field})
	case errors.Is(err, service.ErrScheduleConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "match was changed concurrently, retry"})
	case service.IsNotFound(err):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "match not found"})
	}
	logger.Error("%s match: %v", op, err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": op + " failed"})
}

func matchID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

// bindMatch decodes and validates the body.  When ok is false the error
// response has already been written and err is what the handler returns.
func bindMatch(c echo.Context) (in service.MatchInput, ok bool, err error) {
	var req matchReq
	if err := c.Bind(&req); err != nil {
		return in, false, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		field, _ := firstFailure(err)
		return in, false, c.JSON(http.StatusBadRequest, echo.Map{"error": validationMessage(err), "field": field})
	}
	return req.input(), true, nil
}

// List returns the caller's upcoming matches.  Expired matches are swept as
// part of the read.
func (h *MatchHandler) List(c echo.Context) error {
	s, ok := middleware.SessionFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ms, err := h.Matches.List(ctx, s)
	if err != nil {
		return matchError(c, "list", err)
	}
	return c.JSON(http.StatusOK, toMatchList(ms))
}

// Get handles GET /v1/matches/:id.
func (h *MatchHandler) Get(c echo.Context) error {
	s, ok := middleware.SessionFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := matchID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Matches.Get(ctx, s, id)
	if err != nil {
		return matchError(c, "get", err)
	}
	return c.JSON(http.StatusOK, toMatchResp(m))
}

// Create handles POST /v1/matches.  The caller becomes the organizer.
func (h *MatchHandler) Create(c echo.Context) error {
	s, ok := middleware.SessionFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	in, ok, err := bindMatch(c)
	if !ok {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Matches.Create(ctx, s, in)
	if err != nil {
		return matchError(c, "create", err)
	}
	return c.JSON(http.StatusCreated, toMatchResp(m))
}

// Update handles PUT/PATCH /v1/matches/:id.  Both verbs replace every
// editable field.
func (h *MatchHandler) Update(c echo.Context) error {
	s, ok := middleware.SessionFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := matchID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	in, ok, err := bindMatch(c)
	if !ok {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Matches.Update(ctx, s, id, in)
	if err != nil {
		return matchError(c, "update", err)
	}
	return c.JSON(http.StatusOK, toMatchResp(m))
}

// Delete handles DELETE /v1/matches/:id.
func (h *MatchHandler) Delete(c echo.Context) error {
	s, ok := middleware.SessionFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := matchID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Matches.Delete(ctx, s, id); err != nil {
		return matchError(c, "delete", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Split handles GET /v1/matches/split?rent=90,00&players=2 where players is
// the number of invited players; the organizer is added automatically.
func (h *MatchHandler) Split(c echo.Context) error {
	rent := c.QueryParam("rent")
	if _, err := service.ParseRent(rent); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid rent", "field": "rent"})
	}
	players := 0
	if raw := c.QueryParam("players"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid players", "field": "players"})
		}
		players = n
	}
	return c.JSON(http.StatusOK, echo.Map{
		"player_count":    players + 1,
		"per_person_cost": service.FormatMoney(h.Matches.SplitPreview(rent, players)),
	})
}
