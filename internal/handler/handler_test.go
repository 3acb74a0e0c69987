package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v3"

	"github.com/maxviazov/movedex/internal/handler"
	"github.com/maxviazov/movedex/internal/model"
	"github.com/maxviazov/movedex/internal/pokeapi"
	"github.com/maxviazov/movedex/internal/repository"
	"github.com/maxviazov/movedex/internal/service"
)

// stubPinger implements handler.Pinger for health endpoints.
type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

// fakeInvalid replicates aggregated validation error semantics.
type fakeInvalid struct{ fe []service.FieldError }

func (f *fakeInvalid) Error() string                { return service.ErrInvalidInput.Error() }
func (f *fakeInvalid) Unwrap() error                { return service.ErrInvalidInput }
func (f *fakeInvalid) Fields() []service.FieldError { return f.fe }

// stubMoveService records the last call and returns the configured error.
type stubMoveService struct {
	err      error
	lastKind model.Kind
	lastID   string
	lastPage repository.Page
	lastKeys []string
	warmed   int
}

func (s *stubMoveService) record(kind model.Kind, id string) error {
	s.lastKind, s.lastID = kind, id
	return s.err
}

func (s *stubMoveService) GetMove(_ context.Context, id string) (model.Move, error) {
	if err := s.record(model.KindMove, id); err != nil {
		return model.Move{}, err
	}
	return model.Move{ID: 1, Name: "pound", Accuracy: null.IntFrom(100), PP: null.IntFrom(35), Power: null.IntFrom(40)}, nil
}

func (s *stubMoveService) GetMoveAilment(_ context.Context, id string) (model.MoveAilment, error) {
	return model.MoveAilment{ID: 1, Name: "paralysis"}, s.record(model.KindMoveAilment, id)
}

func (s *stubMoveService) GetMoveBattleStyle(_ context.Context, id string) (model.MoveBattleStyle, error) {
	return model.MoveBattleStyle{ID: 1, Name: "attack"}, s.record(model.KindMoveBattleStyle, id)
}

func (s *stubMoveService) GetMoveCategory(_ context.Context, id string) (model.MoveCategory, error) {
	return model.MoveCategory{ID: 1, Name: "ailment"}, s.record(model.KindMoveCategory, id)
}

func (s *stubMoveService) GetMoveDamageClass(_ context.Context, id string) (model.MoveDamageClass, error) {
	return model.MoveDamageClass{ID: 1, Name: "status"}, s.record(model.KindMoveDamageClass, id)
}

func (s *stubMoveService) GetMoveLearnMethod(_ context.Context, id string) (model.MoveLearnMethod, error) {
	return model.MoveLearnMethod{ID: 1, Name: "level-up"}, s.record(model.KindMoveLearnMethod, id)
}

func (s *stubMoveService) GetMoveTarget(_ context.Context, id string) (model.MoveTarget, error) {
	return model.MoveTarget{ID: 10, Name: "selected-pokemon"}, s.record(model.KindMoveTarget, id)
}

func (s *stubMoveService) List(_ context.Context, kind model.Kind, p repository.Page) (model.NamedAPIResourceList, error) {
	s.lastKind, s.lastPage = kind, p
	if s.err != nil {
		return model.NamedAPIResourceList{}, s.err
	}
	return model.NamedAPIResourceList{Count: 1, Results: []model.NamedAPIResource{{Name: "pound", URL: "u"}}}, nil
}

func (s *stubMoveService) Warm(_ context.Context, kind model.Kind, keys []string) (int, error) {
	s.lastKind, s.lastKeys = kind, keys
	if s.err != nil {
		return 0, s.err
	}
	return s.warmed, nil
}

type stubCacheService struct {
	err      error
	lastKind model.Kind
	lastID   string
	lastPage repository.Page
}

func (s *stubCacheService) ListCached(_ context.Context, kind model.Kind, p repository.Page) (repository.PageResult[repository.Document], error) {
	s.lastKind, s.lastPage = kind, p
	if s.err != nil {
		return repository.PageResult[repository.Document]{}, s.err
	}
	return repository.PageResult[repository.Document]{Items: []repository.Document{{Kind: kind, Key: "pound"}}, Total: 1}, nil
}

func (s *stubCacheService) Evict(_ context.Context, kind model.Kind, id string) error {
	s.lastKind, s.lastID = kind, id
	return s.err
}

func (s *stubCacheService) Purge(context.Context) (int64, error) { return 3, s.err }

type fixture struct {
	r     *gin.Engine
	moves *stubMoveService
	cache *stubCacheService
}

func newFixture(t *testing.T, deps handler.Deps) fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	f := fixture{r: gin.New(), moves: &stubMoveService{}, cache: &stubCacheService{}}
	deps.Moves, deps.Cache = f.moves, f.cache
	if deps.Ready == nil {
		deps.Ready = stubPinger{}
	}
	handler.Register(f.r, deps)
	return f
}

func (f fixture) do(method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	f.r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	ok := newFixture(t, handler.Deps{})
	for _, p := range []string{"/live", "/ready", handler.APIV1Prefix + "/health/live", handler.APIV1Prefix + "/health/ready"} {
		assert.Equal(t, http.StatusOK, ok.do(http.MethodGet, p, "").Code, p)
	}

	down := newFixture(t, handler.Deps{Ready: stubPinger{err: errors.New("db down")}})
	w := down.do(http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "db down")
	assert.Equal(t, http.StatusOK, down.do(http.MethodGet, "/live", "").Code)
}

func TestGetMove(t *testing.T) {
	f := newFixture(t, handler.Deps{})
	w := f.do(http.MethodGet, handler.APIV1Prefix+"/move/pound", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "pound", f.moves.lastID)

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.EqualValues(t, 1, got["id"])
	assert.EqualValues(t, 40, got["power"])
	assert.Nil(t, got["effect_chance"], "unset nullable numerics are written as null")
}

func TestGetByKind_RoutesEveryKind(t *testing.T) {
	f := newFixture(t, handler.Deps{})
	for _, kind := range model.Kinds() {
		w := f.do(http.MethodGet, handler.APIV1Prefix+"/"+string(kind)+"/1", "")
		assert.Equal(t, http.StatusOK, w.Code, string(kind))
		assert.Equal(t, kind, f.moves.lastKind)
		assert.Equal(t, "1", f.moves.lastID)
	}
}

func TestGetMove_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"invalid", &fakeInvalid{fe: []service.FieldError{{Field: "id", Message: "must be > 0"}}}, http.StatusBadRequest},
		{"not_found", pokeapi.ErrNotFound, http.StatusNotFound},
		{"rate_limited", pokeapi.ErrRateLimited, http.StatusTooManyRequests},
		{"upstream", &pokeapi.StatusError{Method: "GET", Path: "/move/1/", Code: 500}, http.StatusBadGateway},
		{"internal", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, handler.Deps{})
			f.moves.err = tc.err
			w := f.do(http.MethodGet, handler.APIV1Prefix+"/move/0", "")
			assert.Equal(t, tc.code, w.Code)
			if tc.code == http.StatusBadRequest {
				assert.Contains(t, w.Body.String(), `"field":"id"`)
			}
		})
	}
}

func TestList_PassesPage(t *testing.T) {
	f := newFixture(t, handler.Deps{})
	w := f.do(http.MethodGet, handler.APIV1Prefix+"/move-target?limit=5&offset=10", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.KindMoveTarget, f.moves.lastKind)
	assert.Equal(t, repository.Page{Limit: 5, Offset: 10}, f.moves.lastPage)
	assert.Contains(t, w.Body.String(), `"count":1`)

	// malformed values fall through as zero and the service applies defaults
	f.do(http.MethodGet, handler.APIV1Prefix+"/move?limit=abc", "")
	assert.Equal(t, repository.Page{}, f.moves.lastPage)
}

func TestCacheRoutes(t *testing.T) {
	f := newFixture(t, handler.Deps{})

	w := f.do(http.MethodGet, handler.APIV1Prefix+"/cache/move?limit=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.KindMove, f.cache.lastKind)
	assert.Equal(t, 2, f.cache.lastPage.Limit)
	assert.Contains(t, w.Body.String(), `"total":1`)

	w = f.do(http.MethodDelete, handler.APIV1Prefix+"/cache/move-ailment/paralysis", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "paralysis", f.cache.lastID)

	w = f.do(http.MethodDelete, handler.APIV1Prefix+"/cache", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"purged":3}`, w.Body.String())

	f.cache.err = repository.ErrNotFound
	w = f.do(http.MethodDelete, handler.APIV1Prefix+"/cache/move/pound", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWarm(t *testing.T) {
	f := newFixture(t, handler.Deps{})
	f.moves.warmed = 4

	w := f.do(http.MethodPost, handler.APIV1Prefix+"/cache/move/warm", `{"keys":["1","swords-dance"]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"kind":"move","written":4}`, w.Body.String())
	assert.Equal(t, []string{"1", "swords-dance"}, f.moves.lastKeys)

	w = f.do(http.MethodPost, handler.APIV1Prefix+"/cache/move/warm", `{"keys":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	f.moves.err = pokeapi.ErrNotFound
	w = f.do(http.MethodPost, handler.APIV1Prefix+"/cache/move/warm", `{"keys":["missing"]}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRateLimit(t *testing.T) {
	f := newFixture(t, handler.Deps{RateLimit: 2, RateWindow: time.Minute})
	path := handler.APIV1Prefix + "/move/pound"

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, path, "").Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, path, "").Code)
	w := f.do(http.MethodGet, path, "")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), `"error":"rate_limited"`)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))

	// probes are outside the limited group
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, handler.APIV1Prefix+"/health/live", "").Code)
}

func TestRateLimit_Disabled(t *testing.T) {
	f := newFixture(t, handler.Deps{})
	for i := 0; i < 20; i++ {
		require.Equal(t, http.StatusOK, f.do(http.MethodGet, handler.APIV1Prefix+"/move/1", "").Code)
	}
}

func TestDocs(t *testing.T) {
	f := newFixture(t, handler.Deps{})
	w := f.do(http.MethodGet, "/openapi.yaml", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "openapi: 3.0.3")
	w = f.do(http.MethodGet, "/docs", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "swagger-ui")
}
