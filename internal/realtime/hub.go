package realtime

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const outboundBuffer = 16

// Subscriber receives the events of one chat
type Subscriber struct {
	ID       uuid.UUID
	ChatID   uuid.UUID
	Outbound chan Event
}

// Hub fans events out to stream subscribers by chat id
type Hub struct {
	mu            sync.RWMutex
	subscriptions map[uuid.UUID]map[*Subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{subscriptions: make(map[uuid.UUID]map[*Subscriber]struct{})}
}

// Subscribe registers a subscriber for chatID
func (h *Hub) Subscribe(chatID uuid.UUID) *Subscriber {
	sub := &Subscriber{
		ID:       uuid.New(),
		ChatID:   chatID,
		Outbound: make(chan Event, outboundBuffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.subscriptions[chatID]
	if !ok {
		subs = make(map[*Subscriber]struct{})
		h.subscriptions[chatID] = subs
	}
	subs[sub] = struct{}{}

	log.Debug().Str("subscriber", sub.ID.String()).Str("chat_id", chatID.String()).Msg("stream subscribed")
	return sub
}

// Unsubscribe removes sub and closes its channel. Safe to call twice.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.subscriptions[sub.ChatID]
	if !ok {
		return
	}
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(h.subscriptions, sub.ChatID)
	}
	close(sub.Outbound)
}

// Broadcast delivers ev to every subscriber of its chat. Slow subscribers drop events.
func (h *Hub) Broadcast(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subscriptions[ev.ChatID] {
		select {
		case sub.Outbound <- ev:
		default:
			log.Warn().Str("subscriber", sub.ID.String()).Msg("dropping event; outbound buffer full")
		}
	}
}

// Subscribers returns the number of subscribers for chatID
func (h *Hub) Subscribers(chatID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscriptions[chatID])
}
