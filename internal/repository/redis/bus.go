package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/crewchat/internal/realtime"
)

// Bus publishes chat events on a Redis channel so every API instance can
// feed its own stream hub.
type Bus struct {
	client  *Client
	channel string
}

// NewBus creates a pub/sub bus on channel
func NewBus(client *Client, channel string) *Bus {
	return &Bus{client: client, channel: channel}
}

func (b *Bus) Publish(ctx context.Context, ev realtime.Event) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return b.client.rdb.Publish(ctx, b.channel, raw).Err()
}

// StartForwarder subscribes to the channel and calls onEvent for each event
// until ctx is cancelled.
func (b *Bus) StartForwarder(ctx context.Context, onEvent func(realtime.Event)) error {
	if onEvent == nil {
		return errors.New("onEvent callback required")
	}

	sub := b.client.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				var ev realtime.Event
				if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
					log.Warn().Err(err).Msg("bad event payload on bus")
					continue
				}
				onEvent(ev)
			}
		}
	}()

	return nil
}

// Close is a no-op; the shared client is closed by its owner
func (b *Bus) Close() error {
	return nil
}

var _ realtime.Bus = (*Bus)(nil)
