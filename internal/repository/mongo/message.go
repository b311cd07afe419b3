package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Rrens/crewchat/internal/domain"
)

type messageDocument struct {
	ID          string    `bson:"_id"`
	ChatID      string    `bson:"chat_id"`
	Content     string    `bson:"content"`
	IsBot       bool      `bson:"is_bot"`
	CreatedTime time.Time `bson:"created_time"`
	Seq         int64     `bson:"seq"`
}

func (d messageDocument) toDomain() (domain.Message, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return domain.Message{}, fmt.Errorf("failed to parse message id: %w", err)
	}
	chatID, err := uuid.Parse(d.ChatID)
	if err != nil {
		return domain.Message{}, fmt.Errorf("failed to parse chat id: %w", err)
	}
	return domain.Message{
		ID:          id,
		ChatID:      chatID,
		Content:     d.Content,
		IsBot:       d.IsBot,
		CreatedTime: d.CreatedTime.UTC(),
	}, nil
}

// MessageRepository implements domain.MessageRepository
type MessageRepository struct {
	store *Store
	coll  *mongo.Collection
}

// Create inserts a message into an existing chat
func (r *MessageRepository) Create(ctx context.Context, chatID uuid.UUID, content string, isBot bool) (*domain.Message, error) {
	// no foreign keys here, so the parent is checked explicitly
	err := r.store.db.Collection(chatsCollection).
		FindOne(ctx, bson.D{{Key: "_id", Value: chatID.String()}}, options.FindOne().SetProjection(bson.D{{Key: "_id", Value: 1}})).
		Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrChatNotFound
		}
		return nil, fmt.Errorf("failed to look up chat: %w", err)
	}

	doc := messageDocument{
		ID:          uuid.NewString(),
		ChatID:      chatID.String(),
		Content:     content,
		IsBot:       isBot,
		CreatedTime: time.Now().UTC().Truncate(time.Millisecond),
		Seq:         r.store.nextSeq(),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	m, err := doc.toDomain()
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListByChat retrieves a chat's messages in chronological order
func (r *MessageRepository) ListByChat(ctx context.Context, chatID uuid.UUID) ([]domain.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_time", Value: 1}, {Key: "seq", Value: 1}})

	cursor, err := r.coll.Find(ctx, bson.D{{Key: "chat_id", Value: chatID.String()}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []messageDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}

	messages := make([]domain.Message, 0, len(docs))
	for _, d := range docs {
		m, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, nil
}
