package client

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/crewchat/internal/domain"
)

// Update is one delivery from a feed, always tagged with the chat it belongs to.
// Messages replaces the thread, Message appends one entry.
type Update struct {
	ChatID   uuid.UUID
	Messages []domain.Message
	Message  *domain.Message
	Deleted  bool
	Err      error
}

// Feed delivers updates for one chat until ctx is cancelled
type Feed interface {
	Watch(ctx context.Context, chatID uuid.UUID, emit func(Update))
}

// PollFeed re-fetches the whole thread on an interval
type PollFeed struct {
	client   *Client
	interval time.Duration
}

func NewPollFeed(client *Client, interval time.Duration) *PollFeed {
	if interval <= 0 {
		interval = 800 * time.Millisecond
	}
	return &PollFeed{client: client, interval: interval}
}

func (f *PollFeed) Watch(ctx context.Context, chatID uuid.UUID, emit func(Update)) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		messages, err := f.client.ListMessages(ctx, chatID)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			log.Debug().Err(err).Str("chat_id", chatID.String()).Msg("poll failed")
			emit(Update{ChatID: chatID, Err: err})
		} else {
			emit(Update{ChatID: chatID, Messages: messages})
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
