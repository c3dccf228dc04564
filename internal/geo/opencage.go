package geo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/iliyamo/bola-na-rede/internal/logger"
	"github.com/iliyamo/bola-na-rede/internal/model"
)

type openCageResponse struct {
	Results []struct {
		Geometry struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"geometry"`
	} `json:"results"`
}

// Geocode returns the coordinates of the first OpenCage result for address.
// Hits are cached by the normalized address; misses are not.  An entry that
// no longer decodes is dropped and fetched again.
func (c *Client) Geocode(ctx context.Context, address string) (model.Coordinates, error) {
	if c.apiKey == "" {
		return model.Coordinates{}, ErrGeocoderDisabled
	}
	key := cacheKey(address)
	if key == "" {
		return model.Coordinates{}, ErrNotFound
	}
	if c.cache != nil {
		if coords, ok, err := c.cache.Get(key); err != nil {
			logger.Warn("geocode cache: %v", err)
			if err := c.cache.Delete(key); err != nil {
				logger.Warn("geocode cache: drop %q: %v", key, err)
			}
		} else if ok {
			return coords, nil
		}
	}

	q := url.Values{}
	q.Set("q", address)
	q.Set("key", c.apiKey)
	q.Set("limit", "1")
	q.Set("no_annotations", "1")
	var body openCageResponse
	status, err := c.getJSON(ctx, c.openCageURL+"?"+q.Encode(), &body)
	if err != nil {
		return model.Coordinates{}, err
	}
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusPaymentRequired, http.StatusTooManyRequests:
		return model.Coordinates{}, fmt.Errorf("%w: geocoder answered %d", ErrUpstream, status)
	}
	if status >= 400 || len(body.Results) == 0 {
		return model.Coordinates{}, ErrNotFound
	}

	g := body.Results[0].Geometry
	coords := model.Coordinates{Lat: g.Lat, Lng: g.Lng}
	if c.cache != nil {
		if err := c.cache.Set(key, coords); err != nil {
			logger.Warn("geocode cache: %v", err)
		}
	}
	return coords, nil
}

// Resolve looks up a postal code and, when possible, its coordinates.  A
// geocoding miss (or a disabled geocoder) still returns the address with nil
// coordinates.
func (c *Client) Resolve(ctx context.Context, postalCode string) (Address, *model.Coordinates, error) {
	addr, err := c.LookupAddress(ctx, postalCode)
	if err != nil {
		return Address{}, nil, err
	}
	coords, err := c.Geocode(ctx, addr.Full())
	if err != nil {
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrGeocoderDisabled) {
			logger.Warn("geocode %s: %v", addr.PostalCode, err)
		}
		return addr, nil, nil
	}
	return addr, &coords, nil
}

func cacheKey(address string) string {
	return strings.Join(strings.Fields(strings.ToLower(address)), " ")
}
