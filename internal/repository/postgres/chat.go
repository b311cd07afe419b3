package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Rrens/crewchat/internal/domain"
)

// ChatRepository implements domain.ChatRepository
type ChatRepository struct {
	db *DB
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db *DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// List returns all chats, oldest first
func (r *ChatRepository) List(ctx context.Context) ([]domain.Chat, error) {
	query := `
		SELECT id, title, created_time
		FROM chats
		ORDER BY created_time ASC, seq ASC
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	defer rows.Close()

	chats := []domain.Chat{}
	for rows.Next() {
		var c domain.Chat
		if err := rows.Scan(&c.ID, &c.Title, &c.CreatedTime); err != nil {
			return nil, fmt.Errorf("failed to scan chat: %w", err)
		}
		chats = append(chats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}

	return chats, nil
}

// Create inserts a chat; id and created_time are assigned by the database
func (r *ChatRepository) Create(ctx context.Context, title string) (*domain.Chat, error) {
	query := `
		INSERT INTO chats (title)
		VALUES ($1)
		RETURNING id, title, created_time
	`

	var c domain.Chat
	if err := r.db.Pool.QueryRow(ctx, query, title).Scan(&c.ID, &c.Title, &c.CreatedTime); err != nil {
		return nil, fmt.Errorf("failed to create chat: %w", err)
	}

	return &c, nil
}

// Delete removes a chat and, by cascade, its messages. Missing ids are not an error.
func (r *ChatRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM chats WHERE id = $1`
	if _, err := r.db.Pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete chat: %w", err)
	}
	return nil
}
