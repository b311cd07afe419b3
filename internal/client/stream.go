package client

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/crewchat/internal/realtime"
)

const maxEventBytes = 1 << 20

// StreamFeed follows the server-sent event stream of a chat and reconnects
// after failures.
type StreamFeed struct {
	baseURL string
	http    *http.Client
	retry   time.Duration
}

func NewStreamFeed(baseURL string, retry time.Duration) *StreamFeed {
	if retry <= 0 {
		retry = 2 * time.Second
	}
	return &StreamFeed{
		baseURL: strings.TrimRight(baseURL, "/"),
		// no client timeout, streams stay open
		http:  &http.Client{},
		retry: retry,
	}
}

func (f *StreamFeed) Watch(ctx context.Context, chatID uuid.UUID, emit func(Update)) {
	for {
		deleted, err := f.follow(ctx, chatID, emit)
		if ctx.Err() != nil || deleted {
			return
		}
		if err != nil {
			log.Debug().Err(err).Str("chat_id", chatID.String()).Msg("stream interrupted")
			emit(Update{ChatID: chatID, Err: err})
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(f.retry):
		}
	}
}

// follow reads one connection. It reports whether the chat was deleted.
func (f *StreamFeed) follow(ctx context.Context, chatID uuid.UUID, emit func(Update)) (bool, error) {
	url := fmt.Sprintf("%s/api/v1/chats/%s/stream", f.baseURL, chatID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := f.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to connect: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("stream returned status %d", resp.StatusCode)
	}

	deleted := false
	err = ReadEvents(resp.Body, func(ev realtime.Event) bool {
		if ev.ChatID != chatID {
			return true
		}
		switch ev.Type {
		case realtime.EventSnapshot:
			emit(Update{ChatID: chatID, Messages: ev.Messages})
		case realtime.EventMessage:
			if ev.Message != nil {
				emit(Update{ChatID: chatID, Message: ev.Message})
			}
		case realtime.EventChatDeleted:
			emit(Update{ChatID: chatID, Deleted: true})
			deleted = true
			return false
		}
		return true
	})
	if deleted {
		return true, nil
	}
	if err == nil {
		err = io.ErrUnexpectedEOF
	}
	return false, err
}

// ReadEvents parses an SSE body and calls handle for each data frame until it
// returns false or the body ends. Comment lines are ignored.
func ReadEvents(r io.Reader, handle func(realtime.Event) bool) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxEventBytes)

	var data strings.Builder
	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case line == "":
			if data.Len() == 0 {
				continue
			}
			var ev realtime.Event
			err := json.Unmarshal([]byte(data.String()), &ev)
			data.Reset()
			if err != nil {
				log.Warn().Err(err).Msg("bad stream event")
				continue
			}
			if !handle(ev) {
				return nil
			}
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read stream: %w", err)
	}
	return nil
}
