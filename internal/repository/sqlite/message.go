package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Rrens/crewchat/internal/domain"
)

// MessageRepository implements domain.MessageRepository
type MessageRepository struct {
	store *Store
}

// Create inserts a message into a chat
func (r *MessageRepository) Create(ctx context.Context, chatID uuid.UUID, content string, isBot bool) (*domain.Message, error) {
	m := domain.Message{
		ID:          uuid.New(),
		ChatID:      chatID,
		Content:     content,
		IsBot:       isBot,
		CreatedTime: r.store.timestamp(),
	}

	_, err := r.store.db.ExecContext(ctx,
		`INSERT INTO messages (id, chat_id, content, is_bot, created_time) VALUES (?, ?, ?, ?, ?)`,
		m.ID.String(), m.ChatID.String(), m.Content, m.IsBot, m.CreatedTime.UnixNano(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return nil, domain.ErrChatNotFound
		}
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	return &m, nil
}

// ListByChat retrieves a chat's messages in chronological order
func (r *MessageRepository) ListByChat(ctx context.Context, chatID uuid.UUID) ([]domain.Message, error) {
	rows, err := r.store.db.QueryContext(ctx, `
		SELECT id, chat_id, content, is_bot, created_time
		FROM messages
		WHERE chat_id = ?
		ORDER BY created_time ASC, rowid ASC
	`, chatID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	messages := []domain.Message{}
	for rows.Next() {
		var (
			m        domain.Message
			id, chat string
			created  int64
		)
		if err := rows.Scan(&id, &chat, &m.Content, &m.IsBot, &created); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		if m.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("failed to parse message id: %w", err)
		}
		if m.ChatID, err = uuid.Parse(chat); err != nil {
			return nil, fmt.Errorf("failed to parse chat id: %w", err)
		}
		m.CreatedTime = time.Unix(0, created).UTC()
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	return messages, nil
}
