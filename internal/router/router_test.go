package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/bola-na-rede/internal/config"
	"github.com/iliyamo/bola-na-rede/internal/geo"
	"github.com/iliyamo/bola-na-rede/internal/handler"
	"github.com/iliyamo/bola-na-rede/internal/kvstore"
	"github.com/iliyamo/bola-na-rede/internal/middleware"
	"github.com/iliyamo/bola-na-rede/internal/model"
	"github.com/iliyamo/bola-na-rede/internal/repository"
	"github.com/iliyamo/bola-na-rede/internal/service"
	"github.com/iliyamo/bola-na-rede/internal/utils"
)

const secret = "router-secret"

type countingResolver struct{ calls int }

func (r *countingResolver) Resolve(_ context.Context, cep string) (geo.Address, *model.Coordinates, error) {
	r.calls++
	if cep != "01310100" {
		return geo.Address{}, nil, geo.ErrNotFound
	}
	return geo.Address{PostalCode: cep, Street: "Avenida Paulista", City: "São Paulo", Region: "SP"}, nil, nil
}

type app struct {
	e        *echo.Echo
	resolver *countingResolver
}

func newApp(t *testing.T, capacity int) *app {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	st, err := kvstore.NewBoltStore(filepath.Join(t.TempDir(), "matches.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	svc := service.NewMatchService(repository.NewMatchRepo(st, "partidas", service.PerPerson), nil, service.MatchRules{})
	limit := middleware.NewTokenBucket(config.RateLimitConfig{
		Enabled:        true,
		Capacity:       capacity,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            time.Hour,
		KeyStrategy:    "user",
		Prefix:         "rl",
	}, rdb)
	cache := middleware.NewRedisCache(config.CacheConfig{
		Enabled:     true,
		Methods:     map[string]bool{http.MethodGet: true},
		TTL:         time.Minute,
		KeyStrategy: "route_params",
		Prefix:      "cache",
	}, rdb)

	a := &app{e: echo.New(), resolver: &countingResolver{}}
	a.e.Validator = handler.NewRequestValidator()
	RegisterRoutes(a.e, st)
	RegisterAuth(a.e, handler.NewAuthHandler(config.Config{JWTSecret: secret, BcryptCost: bcrypt.MinCost}, nil, nil), secret)
	RegisterMatches(a.e, handler.NewMatchHandler(svc), secret, limit)
	RegisterAddress(a.e, handler.NewAddressHandler(a.resolver), secret, limit, cache)
	RegisterAdmin(a.e, handler.NewAdminHandler(svc), secret)
	return a
}

func (a *app) get(t *testing.T, path string, id uint64, role string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if role != "" {
		tok, err := utils.NewAccessToken(secret, id, "user@x.com", role, 5)
		require.NoError(t, err)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok.Token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func TestRoutes(t *testing.T) {
	a := newApp(t, 100)

	rec := a.get(t, "/healthz", 0, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.get(t, "/v1/me", 1, model.RolePlayer)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"user@x.com"`)

	assert.Equal(t, http.StatusUnauthorized, a.get(t, "/v1/matches", 0, "").Code)
	assert.Equal(t, http.StatusForbidden, a.get(t, "/v1/matches", 1, "GUEST").Code)
	assert.Equal(t, http.StatusOK, a.get(t, "/v1/matches", 1, model.RolePlayer).Code)

	rec = a.get(t, "/v1/matches/split?rent=90&players=2", 1, model.RolePlayer)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"per_person_cost":"30.00"`)

	assert.Equal(t, http.StatusForbidden, a.get(t, "/v1/admin/matches", 1, model.RolePlayer).Code)
	assert.Equal(t, http.StatusOK, a.get(t, "/v1/admin/matches", 2, model.RoleAdmin).Code)
}

func TestAddressRouteIsCached(t *testing.T) {
	a := newApp(t, 100)

	rec := a.get(t, "/v1/address/01310100", 1, model.RolePlayer)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))

	rec = a.get(t, "/v1/address/01310100", 2, model.RolePlayer)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Contains(t, rec.Body.String(), "Avenida Paulista")
	assert.Equal(t, 1, a.resolver.calls)

	assert.Equal(t, http.StatusNotFound, a.get(t, "/v1/address/00000000", 1, model.RolePlayer).Code)
	assert.Equal(t, http.StatusNotFound, a.get(t, "/v1/address/00000000", 1, model.RolePlayer).Code)
	assert.Equal(t, 3, a.resolver.calls)
}

func TestMatchRoutesAreRateLimited(t *testing.T) {
	a := newApp(t, 2)

	assert.Equal(t, http.StatusOK, a.get(t, "/v1/matches", 1, model.RolePlayer).Code)
	assert.Equal(t, http.StatusOK, a.get(t, "/v1/matches", 1, model.RolePlayer).Code)
	rec := a.get(t, "/v1/matches", 1, model.RolePlayer)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, a.get(t, "/v1/matches", 2, model.RolePlayer).Code)
}
