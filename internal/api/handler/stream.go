package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/crewchat/internal/api/response"
	"github.com/Rrens/crewchat/internal/domain"
	"github.com/Rrens/crewchat/internal/realtime"
)

// MessageLister loads a chat's history for the stream snapshot
type MessageLister interface {
	ListMessages(ctx context.Context, rawChatID string) ([]domain.Message, error)
}

type StreamHandler struct {
	messages MessageLister
	hub      *realtime.Hub
}

func NewStreamHandler(messages MessageLister, hub *realtime.Hub) *StreamHandler {
	return &StreamHandler{messages: messages, hub: hub}
}

// Stream serves a chat's message feed as server-sent events
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	chatID, err := uuid.Parse(chi.URLParam(r, "chatID"))
	if err != nil {
		response.BadRequest(w, "Invalid chat_id")
		return
	}

	// subscribe before loading history so nothing written in between is lost
	sub := h.hub.Subscribe(chatID)
	defer h.hub.Unsubscribe(sub)

	messages, err := h.messages.ListMessages(r.Context(), chatID.String())
	if err != nil {
		log.Error().Err(err).Str("chat_id", chatID.String()).Msg("failed to load stream snapshot")
		response.Error(w, http.StatusInternalServerError, "Failed to load messages")
		return
	}

	if err := realtime.PrepareStream(w); err != nil {
		response.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := realtime.WriteEvent(w, realtime.Snapshot(chatID, messages)); err != nil {
		return
	}

	if err := realtime.Pump(r.Context(), w, sub); err != nil {
		log.Debug().Err(err).Str("chat_id", chatID.String()).Msg("stream closed")
	}
}
