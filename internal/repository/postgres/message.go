package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Rrens/crewchat/internal/domain"
)

// foreign_key_violation
const pgForeignKeyViolation = "23503"

// MessageRepository implements domain.MessageRepository
type MessageRepository struct {
	db *DB
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create inserts a message into a chat
func (r *MessageRepository) Create(ctx context.Context, chatID uuid.UUID, content string, isBot bool) (*domain.Message, error) {
	query := `
		INSERT INTO messages (chat_id, content, is_bot)
		VALUES ($1, $2, $3)
		RETURNING id, chat_id, content, is_bot, created_time
	`

	var m domain.Message
	err := r.db.Pool.QueryRow(ctx, query, chatID, content, isBot).Scan(
		&m.ID,
		&m.ChatID,
		&m.Content,
		&m.IsBot,
		&m.CreatedTime,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return nil, domain.ErrChatNotFound
		}
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	return &m, nil
}

// ListByChat retrieves a chat's messages in chronological order
func (r *MessageRepository) ListByChat(ctx context.Context, chatID uuid.UUID) ([]domain.Message, error) {
	query := `
		SELECT id, chat_id, content, is_bot, created_time
		FROM messages
		WHERE chat_id = $1
		ORDER BY created_time ASC, seq ASC
	`

	rows, err := r.db.Pool.Query(ctx, query, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	messages := []domain.Message{}
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(
			&m.ID,
			&m.ChatID,
			&m.Content,
			&m.IsBot,
			&m.CreatedTime,
		); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	return messages, nil
}
