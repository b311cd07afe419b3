package handler_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/crewchat/internal/api/handler"
	"github.com/Rrens/crewchat/internal/dispatch"
	"github.com/Rrens/crewchat/internal/domain"
	"github.com/Rrens/crewchat/internal/realtime"
	"github.com/Rrens/crewchat/internal/repository/sqlite"
	"github.com/Rrens/crewchat/internal/service"
)

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func newService(t *testing.T, bus realtime.Bus) *service.ChatService {
	t.Helper()
	store, err := sqlite.Open(context.Background(), sqlite.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return service.NewChatService(store.Chats(), store.Messages(), bus, nil)
}

func TestHealthCheck(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()

	handler.HealthCheck(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, true, resp["success"])

	data, ok := resp["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ok", data["status"])
}

func TestReadyCheck(t *testing.T) {
	rec := httptest.NewRecorder()
	handler.ReadyCheck(fakePinger{})(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ReadyCheck(fakePinger{err: errors.New("down")})(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDispatchHandler_GetAndPost(t *testing.T) {
	h := handler.NewDispatchHandler(dispatch.New(newService(t, nil)))

	body := bytes.NewBufferString(`{"mode":"create_chat","title":"Trip"}`)
	rec := httptest.NewRecorder()
	h.Execute(rec, httptest.NewRequest(http.MethodPost, "/api/v1/execute", body))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var chat domain.Chat
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&chat))
	assert.Equal(t, "Trip", chat.Title)

	rec = httptest.NewRecorder()
	h.Execute(rec, httptest.NewRequest(http.MethodGet, "/api/v1/execute?mode=list_chats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var chats []map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&chats))
	require.Len(t, chats, 1)
	assert.Equal(t, map[string]any{"id": chat.ID.String(), "title": "Trip"}, chats[0])
}

func TestDispatchHandler_Errors(t *testing.T) {
	h := handler.NewDispatchHandler(dispatch.New(newService(t, nil)))

	tests := []struct {
		name string
		req  *http.Request
		want string
	}{
		{"invalid mode", httptest.NewRequest(http.MethodGet, "/x?mode=nope", nil), "Invalid mode"},
		{"empty body", httptest.NewRequest(http.MethodPost, "/x", nil), "Invalid mode"},
		{"bad json", httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("{")), "Invalid request body"},
		{"bad is_bot", httptest.NewRequest(http.MethodGet, "/x?mode=send_message&is_bot=maybe", nil), "Invalid is_bot"},
		{"delete without id", httptest.NewRequest(http.MethodGet, "/x?mode=delete_chat", nil), "chat_id is required to delete chat"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Execute(rec, tt.req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var body map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.want, body["error"])
		})
	}
}

func TestStreamHandler(t *testing.T) {
	bus := realtime.NewLocalBus()
	hub := realtime.NewHub()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, bus.StartForwarder(ctx, hub.Broadcast))

	svc := newService(t, bus)
	chat, err := svc.CreateChat(ctx, "Trip")
	require.NoError(t, err)
	_, err = svc.SendMessage(ctx, service.SendMessageInput{ChatID: chat.ID.String(), Content: "first"})
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Get("/chats/{chatID}/stream", handler.NewStreamHandler(svc, hub).Stream)
	srv := httptest.NewServer(r)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/chats/" + url.PathEscape(chat.ID.String()) + "/stream")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := make(chan string, 8)
	go func() {
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			if name, ok := strings.CutPrefix(scanner.Text(), "event: "); ok {
				events <- name
			}
		}
		close(events)
	}()

	next := func() string {
		select {
		case ev := <-events:
			return ev
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for event")
			return ""
		}
	}

	assert.Equal(t, "snapshot", next())

	assert.Eventually(t, func() bool { return hub.Subscribers(chat.ID) == 1 }, time.Second, 10*time.Millisecond)
	_, err = svc.SendMessage(ctx, service.SendMessageInput{ChatID: chat.ID.String(), Content: "second", IsBot: true})
	require.NoError(t, err)
	assert.Equal(t, "message", next())

	require.NoError(t, svc.DeleteChat(ctx, chat.ID.String()))
	assert.Equal(t, "chat_deleted", next())
}

func TestStreamHandler_InvalidChatID(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/chats/{chatID}/stream", handler.NewStreamHandler(newService(t, nil), realtime.NewHub()).Stream)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chats/not-a-uuid/stream", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
