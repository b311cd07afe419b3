package realtime

import (
	"github.com/google/uuid"

	"github.com/Rrens/crewchat/internal/domain"
)

// EventType names an SSE event
type EventType string

const (
	EventSnapshot    EventType = "snapshot"
	EventMessage     EventType = "message"
	EventChatDeleted EventType = "chat_deleted"
)

// Event is a change to one chat, fanned out to its stream subscribers
type Event struct {
	Type     EventType        `json:"type"`
	ChatID   uuid.UUID        `json:"chat_id"`
	Message  *domain.Message  `json:"message,omitempty"`
	Messages []domain.Message `json:"messages,omitempty"`
}

// MessageCreated builds the event for a stored message
func MessageCreated(m domain.Message) Event {
	return Event{Type: EventMessage, ChatID: m.ChatID, Message: &m}
}

// ChatDeleted builds the event for a removed chat
func ChatDeleted(chatID uuid.UUID) Event {
	return Event{Type: EventChatDeleted, ChatID: chatID}
}

// Snapshot builds the initial event of a stream
func Snapshot(chatID uuid.UUID, messages []domain.Message) Event {
	if messages == nil {
		messages = []domain.Message{}
	}
	return Event{Type: EventSnapshot, ChatID: chatID, Messages: messages}
}
