package handler

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/bola-na-rede/internal/kvstore"
	"github.com/iliyamo/bola-na-rede/internal/middleware"
	"github.com/iliyamo/bola-na-rede/internal/model"
	"github.com/iliyamo/bola-na-rede/internal/repository"
	"github.com/iliyamo/bola-na-rede/internal/service"
)

var brt = time.FixedZone("BRT", -3*3600)

type matchServer struct {
	e     *echo.Echo
	svc   *service.MatchService
	clock time.Time
}

func newMatchServer(t *testing.T) *matchServer {
	t.Helper()
	st, err := kvstore.NewBoltStore(filepath.Join(t.TempDir(), "matches.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	s := &matchServer{clock: time.Date(2025, 5, 1, 12, 0, 0, 0, brt)}
	repo := repository.NewMatchRepo(st, "partidas", service.PerPerson)
	s.svc = service.NewMatchService(repo, nil, service.MatchRules{
		Location: brt,
		Grace:    time.Hour,
		Now:      func() time.Time { return s.clock },
	})

	s.e = newEcho()
	mh := NewMatchHandler(s.svc)
	g := s.e.Group("/v1/matches", middleware.JWTAuth(secret))
	g.GET("", mh.List)
	g.POST("", mh.Create)
	g.GET("/split", mh.Split)
	g.GET("/:id", mh.Get)
	g.PUT("/:id", mh.Update)
	g.PATCH("/:id", mh.Update)
	g.DELETE("/:id", mh.Delete)

	ah := NewAdminHandler(s.svc)
	a := s.e.Group("/v1/admin", middleware.JWTAuth(secret), middleware.RequireRole(model.RoleAdmin))
	a.GET("/matches", ah.All)
	a.POST("/sweep", ah.SweepNow)
	a.DELETE("/matches", ah.Purge)
	return s
}

func matchBody(date, clock string, rent any, roster ...string) map[string]any {
	if roster == nil {
		roster = []string{}
	}
	return map[string]any{
		"name":        "Pelada de quinta",
		"date":        date,
		"time":        clock,
		"venue_name":  "Quadra Central",
		"postal_code": "01310-100",
		"street":      "Avenida Paulista",
		"number":      "1000",
		"city":        "São Paulo",
		"region":      "SP",
		"rent_cost":   rent,
		"roster":      roster,
	}
}

func (s *matchServer) create(t *testing.T, auth string, body map[string]any) matchResp {
	t.Helper()
	rec := call(t, s.e, http.MethodPost, "/v1/matches", body, auth)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[matchResp](t, rec)
}

func TestCreateMatchSplitsRent(t *testing.T) {
	s := newMatchServer(t)
	org := bearer(t, 1, "org@x.com", model.RolePlayer)

	m := s.create(t, org, matchBody("10/05/2025", "18:00", 90, "A@x.com", "b@x.com"))
	assert.NotZero(t, m.ID)
	assert.Equal(t, "org@x.com", m.OrganizerEmail)
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, m.Roster)
	assert.Equal(t, "90.00", m.RentCost)
	assert.Equal(t, "30.00", m.PerPersonCost)
	assert.Equal(t, 3, m.PlayerCount)
	assert.Equal(t, "01310100", m.Location.PostalCode)
	assert.Empty(t, m.MapsURL)

	m = s.create(t, org, matchBody("11/05/2025", "18:00", "100,00"))
	assert.Equal(t, "100.00", m.PerPersonCost)
	assert.Equal(t, []string{}, m.Roster)
}

func TestCreateMatchWithCoordinates(t *testing.T) {
	s := newMatchServer(t)
	body := matchBody("10/05/2025", "18:00", "60")
	body["latitude"] = -23.5614
	body["longitude"] = -46.6559

	m := s.create(t, bearer(t, 1, "org@x.com", model.RolePlayer), body)
	require.NotNil(t, m.Coordinates)
	assert.Equal(t, "https://www.google.com/maps/search/?api=1&query=-23.5614,-46.6559", m.MapsURL)

	delete(body, "longitude")
	body["date"] = "12/05/2025"
	rec := call(t, s.e, http.MethodPost, "/v1/matches", body, bearer(t, 1, "org@x.com", model.RolePlayer))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "longitude", decode[map[string]any](t, rec)["field"])
}

func TestCreateMatchRejects(t *testing.T) {
	s := newMatchServer(t)
	org := bearer(t, 1, "org@x.com", model.RolePlayer)
	s.create(t, org, matchBody("10/05/2025", "18:00", 90))

	rec := call(t, s.e, http.MethodPost, "/v1/matches", matchBody("10/05/2025", "18:00", 50), bearer(t, 2, "other@x.com", model.RolePlayer))
	assert.Equal(t, http.StatusConflict, rec.Code)

	nextDoor := matchBody("10/05/2025", "18:00", 50)
	nextDoor["number"] = "1001"
	rec = call(t, s.e, http.MethodPost, "/v1/matches", nextDoor, bearer(t, 2, "other@x.com", model.RolePlayer))
	assert.Equal(t, http.StatusConflict, rec.Code, "same postal code, different number")

	cases := map[string]struct {
		body  map[string]any
		field string
	}{
		"past date":     {matchBody("30/04/2025", "18:00", 90), "date"},
		"bad time":      {matchBody("10/05/2025", "25:00", 90), "date"},
		"bad rent":      {matchBody("10/05/2025", "19:00", "abc"), "rent_cost"},
		"bad email":     {matchBody("10/05/2025", "19:00", 90, "nope"), "roster"},
		"organizer":     {matchBody("10/05/2025", "19:00", 90, "org@x.com"), "roster"},
		"duplicate":     {matchBody("10/05/2025", "19:00", 90, "a@x.com", "A@x.com"), "roster"},
		"short postal":  {func() map[string]any { b := matchBody("10/05/2025", "19:00", 90); b["postal_code"] = "0131"; return b }(), "postal_code"},
		"missing venue": {func() map[string]any { b := matchBody("10/05/2025", "19:00", 90); delete(b, "venue_name"); return b }(), "venue_name"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec := call(t, s.e, http.MethodPost, "/v1/matches", tc.body, org)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Equal(t, tc.field, decode[map[string]any](t, rec)["field"])
		})
	}

	rec = call(t, s.e, http.MethodPost, "/v1/matches", "{", org)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = call(t, s.e, http.MethodPost, "/v1/matches", matchBody("10/05/2025", "20:00", 90), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMatchVisibility(t *testing.T) {
	s := newMatchServer(t)
	org := bearer(t, 1, "org@x.com", model.RolePlayer)
	player := bearer(t, 2, "a@x.com", model.RolePlayer)
	stranger := bearer(t, 3, "nobody@x.com", model.RolePlayer)
	admin := bearer(t, 4, "admin@x.com", model.RoleAdmin)

	m := s.create(t, org, matchBody("10/05/2025", "18:00", 90, "a@x.com"))
	path := "/v1/matches/" + strconv.FormatInt(m.ID, 10)

	assert.Equal(t, http.StatusOK, call(t, s.e, http.MethodGet, path, nil, player).Code)
	assert.Equal(t, http.StatusOK, call(t, s.e, http.MethodGet, path, nil, admin).Code)
	rec := call(t, s.e, http.MethodGet, path, nil, stranger)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "match not found", errorCode(t, rec))
	assert.Equal(t, http.StatusBadRequest, call(t, s.e, http.MethodGet, "/v1/matches/abc", nil, org).Code)

	list := decode[[]matchResp](t, call(t, s.e, http.MethodGet, "/v1/matches", nil, player))
	require.Len(t, list, 1)
	assert.Equal(t, m.ID, list[0].ID)
	list = decode[[]matchResp](t, call(t, s.e, http.MethodGet, "/v1/matches", nil, stranger))
	assert.Empty(t, list)
}

func TestUpdateAndDeleteMatch(t *testing.T) {
	s := newMatchServer(t)
	org := bearer(t, 1, "org@x.com", model.RolePlayer)
	player := bearer(t, 2, "a@x.com", model.RolePlayer)

	m := s.create(t, org, matchBody("10/05/2025", "18:00", 90, "a@x.com"))
	path := "/v1/matches/" + strconv.FormatInt(m.ID, 10)

	rec := call(t, s.e, http.MethodPut, path, matchBody("10/05/2025", "20:30", 120, "a@x.com", "b@x.com"), player)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[matchResp](t, rec)
	assert.Equal(t, m.ID, updated.ID)
	assert.Equal(t, "org@x.com", updated.OrganizerEmail)
	assert.Equal(t, "20:30", updated.Time)
	assert.Equal(t, "40.00", updated.PerPersonCost)

	rec = call(t, s.e, http.MethodPatch, path, matchBody("10/05/2025", "20:30", 120, "a@x.com"), org)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "60.00", decode[matchResp](t, rec).PerPersonCost)

	assert.Equal(t, http.StatusNotFound,
		call(t, s.e, http.MethodDelete, path, nil, bearer(t, 3, "nobody@x.com", model.RolePlayer)).Code)
	assert.Equal(t, http.StatusNoContent, call(t, s.e, http.MethodDelete, path, nil, player).Code)
	assert.Equal(t, http.StatusNotFound, call(t, s.e, http.MethodGet, path, nil, org).Code)
	assert.Equal(t, http.StatusNotFound, call(t, s.e, http.MethodDelete, path, nil, org).Code)
}

func TestSplitPreview(t *testing.T) {
	s := newMatchServer(t)
	org := bearer(t, 1, "org@x.com", model.RolePlayer)

	rec := call(t, s.e, http.MethodGet, "/v1/matches/split?rent=90,00&players=2", nil, org)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "30.00", body["per_person_cost"])
	assert.EqualValues(t, 3, body["player_count"])

	rec = call(t, s.e, http.MethodGet, "/v1/matches/split?rent=100", nil, org)
	assert.Equal(t, "100.00", decode[map[string]any](t, rec)["per_person_cost"])

	assert.Equal(t, http.StatusBadRequest, call(t, s.e, http.MethodGet, "/v1/matches/split?rent=x", nil, org).Code)
	assert.Equal(t, http.StatusBadRequest, call(t, s.e, http.MethodGet, "/v1/matches/split?rent=10&players=-1", nil, org).Code)
}

func TestAdminEndpoints(t *testing.T) {
	s := newMatchServer(t)
	org := bearer(t, 1, "org@x.com", model.RolePlayer)
	admin := bearer(t, 4, "admin@x.com", model.RoleAdmin)

	s.create(t, org, matchBody("01/05/2025", "18:00", 90))
	s.create(t, bearer(t, 2, "b@x.com", model.RolePlayer), matchBody("20/05/2025", "18:00", 90))

	assert.Equal(t, http.StatusForbidden, call(t, s.e, http.MethodGet, "/v1/admin/matches", nil, org).Code)

	rec := call(t, s.e, http.MethodGet, "/v1/admin/matches", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]matchResp](t, rec), 2)

	s.clock = time.Date(2025, 5, 1, 19, 0, 0, 0, brt)
	rec = call(t, s.e, http.MethodPost, "/v1/admin/sweep", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[map[string]any](t, rec)["removed"])

	assert.Equal(t, http.StatusNoContent, call(t, s.e, http.MethodDelete, "/v1/admin/matches", nil, admin).Code)
	all, err := s.svc.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("store down")
}
func (failingStore) Set(context.Context, string, string) error { return errors.New("store down") }
func (failingStore) Remove(context.Context, string) error { return errors.New("store down") }

func TestStoreFailureIs500(t *testing.T) {
	repo := repository.NewMatchRepo(failingStore{}, "partidas", service.PerPerson)
	svc := service.NewMatchService(repo, nil, service.MatchRules{})
	e := newEcho()
	e.GET("/v1/matches", NewMatchHandler(svc).List, middleware.JWTAuth(secret))

	rec := call(t, e, http.MethodGet, "/v1/matches", nil, bearer(t, 1, "org@x.com", model.RolePlayer))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "list failed", errorCode(t, rec))
}

func TestHealth(t *testing.T) {
	st, err := kvstore.NewBoltStore(filepath.Join(t.TempDir(), "health.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	e := newEcho()
	e.GET("/healthz", Health(st))
	e.GET("/down", Health(failingStore{}))

	rec := call(t, e, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.Equal(t, http.StatusServiceUnavailable, call(t, e, http.MethodGet, "/down", nil, "").Code)
}
