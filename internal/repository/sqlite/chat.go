package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Rrens/crewchat/internal/domain"
)

// ChatRepository implements domain.ChatRepository
type ChatRepository struct {
	store *Store
}

// List returns all chats, oldest first. rowid breaks created_time ties.
func (r *ChatRepository) List(ctx context.Context) ([]domain.Chat, error) {
	rows, err := r.store.db.QueryContext(ctx, `
		SELECT id, title, created_time
		FROM chats
		ORDER BY created_time ASC, rowid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	defer rows.Close()

	chats := []domain.Chat{}
	for rows.Next() {
		var (
			c       domain.Chat
			id      string
			created int64
		)
		if err := rows.Scan(&id, &c.Title, &created); err != nil {
			return nil, fmt.Errorf("failed to scan chat: %w", err)
		}
		if c.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("failed to parse chat id: %w", err)
		}
		c.CreatedTime = time.Unix(0, created).UTC()
		chats = append(chats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}

	return chats, nil
}

// Create inserts a chat
func (r *ChatRepository) Create(ctx context.Context, title string) (*domain.Chat, error) {
	c := domain.Chat{
		ID:          uuid.New(),
		Title:       title,
		CreatedTime: r.store.timestamp(),
	}

	_, err := r.store.db.ExecContext(ctx,
		`INSERT INTO chats (id, title, created_time) VALUES (?, ?, ?)`,
		c.ID.String(), c.Title, c.CreatedTime.UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat: %w", err)
	}

	return &c, nil
}

// Delete removes a chat and its messages. Missing ids are not an error.
func (r *ChatRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.store.db.ExecContext(ctx, `DELETE FROM chats WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to delete chat: %w", err)
	}
	return nil
}
