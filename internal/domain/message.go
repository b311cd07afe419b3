package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Message is one turn in a chat, authored by the user or the bot
type Message struct {
	ID          uuid.UUID `json:"id"`
	ChatID      uuid.UUID `json:"chat_id"`
	Content     string    `json:"content"`
	IsBot       bool      `json:"is_bot"`
	CreatedTime time.Time `json:"created_time"`
}

// MessageRepository defines the interface for message storage.
// ListByChat returns messages ascending by creation time, ties in insertion order.
type MessageRepository interface {
	Create(ctx context.Context, chatID uuid.UUID, content string, isBot bool) (*Message, error)
	ListByChat(ctx context.Context, chatID uuid.UUID) ([]Message, error)
}

// Store bundles the repositories of one backend
type Store interface {
	Chats() ChatRepository
	Messages() MessageRepository
	Ping(ctx context.Context) error
	Close() error
}
