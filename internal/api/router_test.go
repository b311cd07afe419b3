package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/crewchat/internal/api"
	"github.com/Rrens/crewchat/internal/config"
	"github.com/Rrens/crewchat/internal/realtime"
	"github.com/Rrens/crewchat/internal/repository/sqlite"
	"github.com/Rrens/crewchat/internal/service"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	store, err := sqlite.Open(context.Background(), sqlite.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cfg := &config.Config{Server: config.ServerConfig{MiddlewareTimeout: 5 * time.Second}}
	return api.NewRouter(cfg, api.Dependencies{
		Store: store,
		Chats: service.NewChatService(store.Chats(), store.Messages(), realtime.NewLocalBus(), nil),
		Hub:   realtime.NewHub(),
	})
}

func TestRouter_ExecutePaths(t *testing.T) {
	router := newRouter(t)

	for _, path := range []string{"/server/app_function/execute", "/api/v1/execute"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path+"?mode=list_chats", nil))

		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "[]\n", rec.Body.String(), path)
	}
}

func TestRouter_CreateThenList(t *testing.T) {
	router := newRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/execute", strings.NewReader(`{"mode":"create_chat","title":"A"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/server/app_function/execute", strings.NewReader(`{"mode":"list_chats"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	var chats []map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&chats))
	require.Len(t, chats, 1)
	assert.Equal(t, "A", chats[0]["title"])
}

func TestRouter_Health(t *testing.T) {
	router := newRouter(t)

	for _, path := range []string{"/api/v1/health", "/api/v1/ready"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.NotEmpty(t, rec.Header().Get("Content-Type"), path)
	}
}
