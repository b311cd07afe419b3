package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Chat is a named conversation thread
type Chat struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	CreatedTime time.Time `json:"created_time"`
}

// ChatSummary is the list_chats projection of a chat
type ChatSummary struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

// Summary returns the list projection of the chat
func (c Chat) Summary() ChatSummary {
	return ChatSummary{ID: c.ID, Title: c.Title}
}

// ChatRepository defines the interface for chat storage.
// List returns chats ascending by creation time. Delete is idempotent and
// removes the chat's messages.
type ChatRepository interface {
	List(ctx context.Context) ([]Chat, error)
	Create(ctx context.Context, title string) (*Chat, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
