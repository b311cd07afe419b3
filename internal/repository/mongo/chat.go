package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Rrens/crewchat/internal/domain"
)

type chatDocument struct {
	ID          string    `bson:"_id"`
	Title       string    `bson:"title"`
	CreatedTime time.Time `bson:"created_time"`
	Seq         int64     `bson:"seq"`
}

func (d chatDocument) toDomain() (domain.Chat, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return domain.Chat{}, fmt.Errorf("failed to parse chat id: %w", err)
	}
	return domain.Chat{ID: id, Title: d.Title, CreatedTime: d.CreatedTime.UTC()}, nil
}

// ChatRepository implements domain.ChatRepository
type ChatRepository struct {
	store *Store
	coll  *mongo.Collection
}

// List returns all chats, oldest first
func (r *ChatRepository) List(ctx context.Context) ([]domain.Chat, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_time", Value: 1}, {Key: "seq", Value: 1}})

	cursor, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []chatDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode chats: %w", err)
	}

	chats := make([]domain.Chat, 0, len(docs))
	for _, d := range docs {
		c, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		chats = append(chats, c)
	}
	return chats, nil
}

// Create inserts a chat
func (r *ChatRepository) Create(ctx context.Context, title string) (*domain.Chat, error) {
	doc := chatDocument{
		ID:          uuid.NewString(),
		Title:       title,
		CreatedTime: time.Now().UTC().Truncate(time.Millisecond),
		Seq:         r.store.nextSeq(),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to create chat: %w", err)
	}

	c, err := doc.toDomain()
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Delete removes a chat and its messages. Missing ids are not an error.
func (r *ChatRepository) Delete(ctx context.Context, id uuid.UUID) error {
	key := id.String()

	if _, err := r.store.db.Collection(messagesCollection).DeleteMany(ctx, bson.D{{Key: "chat_id", Value: key}}); err != nil {
		return fmt.Errorf("failed to delete chat messages: %w", err)
	}
	if _, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: key}}); err != nil {
		return fmt.Errorf("failed to delete chat: %w", err)
	}
	return nil
}
