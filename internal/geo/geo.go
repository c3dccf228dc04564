// Package geo resolves Brazilian postal codes (CEP) to street addresses via
// ViaCEP and addresses to coordinates via OpenCage.
package geo

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/bola-na-rede/internal/config"
	"github.com/iliyamo/bola-na-rede/internal/model"
)

var (
	ErrInvalidPostalCode = errors.New("postal code must have 8 digits")
	ErrNotFound          = errors.New("address not found")
	ErrUpstream          = errors.New("lookup service unavailable")
	// ErrGeocoderDisabled is returned by Geocode when no OpenCage key is set.
	ErrGeocoderDisabled = errors.New("geocoding is not configured")
)

// Address is what ViaCEP knows about a postal code.
type Address struct {
	PostalCode   string `json:"postal_code"`
	Street       string `json:"street"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	Region       string `json:"region"`
}

// Full is the one-line address sent to the geocoder.
func (a Address) Full() string {
	return model.Location{
		Street:       a.Street,
		Neighborhood: a.Neighborhood,
		City:         a.City,
		Region:       a.Region,
	}.FullAddress()
}

// Client talks to both lookup services.  A nil cache disables geocode
// caching.
type Client struct {
	http        *http.Client
	viaCEPURL   string
	openCageURL string
	apiKey      string
	cache       *Cache
}

func NewClient(cfg config.GeoConfig, cache *Cache) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		http:        &http.Client{Timeout: timeout},
		viaCEPURL:   strings.TrimRight(cfg.ViaCEPURL, "/"),
		openCageURL: cfg.OpenCageURL,
		apiKey:      cfg.OpenCageAPIKey,
		cache:       cache,
	}
}

// MapsURL links to the coordinates on Google Maps.
func MapsURL(c model.Coordinates) string {
	return fmt.Sprintf("https://www.google.com/maps/search/?api=1&query=%s,%s",
		strconv.FormatFloat(c.Lat, 'f', -1, 64),
		strconv.FormatFloat(c.Lng, 'f', -1, 64))
}
