package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/Rrens/crewchat/internal/api/response"
	"github.com/Rrens/crewchat/internal/dispatch"
)

const maxBodyBytes = 64 << 10

type DispatchHandler struct {
	dispatcher *dispatch.Dispatcher
}

func NewDispatchHandler(dispatcher *dispatch.Dispatcher) *DispatchHandler {
	return &DispatchHandler{dispatcher: dispatcher}
}

// Execute runs one dispatch request. GET reads query parameters, POST a JSON body.
func (h *DispatchHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req dispatch.Request

	if r.Method == http.MethodGet {
		q := r.URL.Query()
		req = dispatch.Request{
			Mode:    q.Get("mode"),
			Title:   q.Get("title"),
			ChatID:  q.Get("chat_id"),
			Content: q.Get("content"),
		}
		if v := q.Get("is_bot"); v != "" {
			isBot, err := strconv.ParseBool(v)
			if err != nil {
				response.Raw(w, http.StatusBadRequest, dispatch.ErrorBody{Error: "Invalid is_bot"})
				return
			}
			req.IsBot = isBot
		}
	} else {
		err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req)
		if err != nil && !errors.Is(err, io.EOF) {
			response.Raw(w, http.StatusBadRequest, dispatch.ErrorBody{Error: "Invalid request body"})
			return
		}
	}

	res := h.dispatcher.Dispatch(r.Context(), req)
	response.Raw(w, res.Status, res.Body)
}
