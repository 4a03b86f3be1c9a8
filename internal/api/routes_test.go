package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MassBabyGeek/SocialPixel-backend/internal/game"
	"github.com/MassBabyGeek/SocialPixel-backend/internal/logger"
	"github.com/MassBabyGeek/SocialPixel-backend/internal/testutil"
	"github.com/MassBabyGeek/SocialPixel-backend/internal/utils"
)

func TestMain(m *testing.M) {
	logger.SetOutput(io.Discard)
	os.Exit(m.Run())
}

type routerEnv struct {
	handler http.Handler
	tokens  *utils.TokenIssuer
	store   *testutil.MemStore
}

func newRouterEnv() *routerEnv {
	store := testutil.NewMemStore()
	tokens := utils.NewTokenIssuer("secret", time.Hour)
	return &routerEnv{
		store:  store,
		tokens: tokens,
		handler: SetupRouter(Deps{
			Tokens:         tokens,
			RefreshTTL:     time.Hour,
			Games:          game.NewService(store),
			CORSOrigins:    []string{"https://app.example"},
			RequestTimeout: 5 * time.Second,
		}),
	}
}

func (e *routerEnv) serve(t *testing.T, method, path, body string, userID int64) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	r := httptest.NewRequest(method, path, reader)
	if userID != 0 {
		token, _, err := e.tokens.Issue(userID, "user")
		require.NoError(t, err)
		r.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, r)
	return rec
}

func TestRouter_PublicEndpoints(t *testing.T) {
	e := newRouterEnv()

	rec := e.serve(t, http.MethodGet, "/health", "", 0)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = e.serve(t, http.MethodGet, "/metrics", "", 0)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "socialpixel_http_request_duration_seconds")

	rec = e.serve(t, http.MethodGet, "/nope", "", 0)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_RouteIndex(t *testing.T) {
	e := newRouterEnv()
	rec := e.serve(t, http.MethodGet, "/", "", 0)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Name   string `json:"name"`
			Routes []struct {
				Method string `json:"method"`
				Path   string `json:"path"`
			} `json:"routes"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "SocialPixel API", resp.Data.Name)

	var found []string
	for _, r := range resp.Data.Routes {
		found = append(found, r.Method+" "+r.Path)
	}
	assert.Contains(t, found, "POST /submissions/{id:[0-9]+}/decision")
	assert.Contains(t, found, "GET /games/{id:[0-9]+}/leaderboard")
	assert.Contains(t, found, "POST /auth/login")
}

func TestRouter_AuthenticatedRoutesRequireToken(t *testing.T) {
	e := newRouterEnv()

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/me"},
		{http.MethodPost, "/channels/1/games"},
		{http.MethodPost, "/submissions/1/decision"},
		{http.MethodGet, "/chat/rooms"},
		{http.MethodDelete, "/games/1"},
		{http.MethodPost, "/games/1/submissions"},
	} {
		rec := e.serve(t, tc.method, tc.path, "", 0)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.method+" "+tc.path)

		var body struct {
			Success bool   `json:"success"`
			Code    string `json:"code"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), tc.path)
		assert.False(t, body.Success)
		assert.Equal(t, "Unauthenticated", body.Code, tc.method+" "+tc.path)
	}
}

func TestRouter_GameLifecycle(t *testing.T) {
	e := newRouterEnv()
	creator := e.store.AddUser("creator")
	other := e.store.AddUser("other")
	channel := e.store.AddChannel("streetart", creator.ID, other.ID)

	rec := e.serve(t, http.MethodPost, fmt.Sprintf("/channels/%d/games", channel.ID), `{"name":"murals"}`, creator.ID)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		Data struct {
			ID int64 `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	gamePath := fmt.Sprintf("/games/%d", created.Data.ID)

	rec = e.serve(t, http.MethodGet, gamePath, "", 0)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = e.serve(t, http.MethodGet, gamePath+"/leaderboard", "", 0)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = e.serve(t, http.MethodDelete, gamePath, "", other.ID)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.serve(t, http.MethodDelete, gamePath, "", creator.ID)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = e.serve(t, http.MethodGet, gamePath, "", 0)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_CORS(t *testing.T) {
	e := newRouterEnv()

	r := httptest.NewRequest(http.MethodOptions, "/games", nil)
	r.Header.Set("Origin", "https://app.example")
	r.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, r)

	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Less(t, rec.Code, 300)
}
