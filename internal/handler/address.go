package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bola-na-rede/internal/geo"
	"github.com/iliyamo/bola-na-rede/internal/logger"
	"github.com/iliyamo/bola-na-rede/internal/model"
)

// Resolver turns a postal code into an address and, when the geocoder knows
// it, coordinates.  *geo.Client implements it.
type Resolver interface {
	Resolve(ctx context.Context, postalCode string) (geo.Address, *model.Coordinates, error)
}

// AddressHandler serves GET /v1/address/:cep, used to autofill the match form.
type AddressHandler struct {
	Geo Resolver
}

func NewAddressHandler(r Resolver) *AddressHandler {
	return &AddressHandler{Geo: r}
}

type addressResp struct {
	geo.Address
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
	MapsURL string   `json:"maps_url,omitempty"`
}

func (h *AddressHandler) Lookup(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	addr, coords, err := h.Geo.Resolve(ctx, c.Param("cep"))
	switch {
	case errors.Is(err, geo.ErrInvalidPostalCode):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error(), "field": "postal_code"})
	case errors.Is(err, geo.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "postal code not found"})
	case errors.Is(err, geo.ErrUpstream):
		logger.Warn("address lookup %s: %v", c.Param("cep"), err)
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "address lookup unavailable"})
	case err != nil:
		logger.Error("address lookup %s: %v", c.Param("cep"), err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "address lookup failed"})
	}

	out := addressResp{Address: addr}
	if coords != nil {
		out.Lat, out.Lng = &coords.Lat, &coords.Lng
		out.MapsURL = geo.MapsURL(*coords)
	}
	return c.JSON(http.StatusOK, out)
}
