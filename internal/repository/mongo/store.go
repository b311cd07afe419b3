package mongo

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Rrens/crewchat/internal/domain"
)

const (
	chatsCollection    = "chats"
	messagesCollection = "messages"
)

// Store implements domain.Store on MongoDB collections
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	// seq orders documents written in the same instant
	seq atomic.Int64
}

// Open connects to uri and prepares the chat indexes in database
func Open(ctx context.Context, uri, database string) (*Store, error) {
	clientOpts := options.Client().ApplyURI(uri).SetConnectTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping: %w", err)
	}

	s := &Store{client: client, db: client.Database(database)}
	s.seq.Store(time.Now().UnixNano())

	if err := s.ensureIndexes(ctx); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}

	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(chatsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_time", Value: 1}, {Key: "seq", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create chat index: %w", err)
	}

	_, err = s.db.Collection(messagesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "chat_id", Value: 1}, {Key: "created_time", Value: 1}, {Key: "seq", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create message index: %w", err)
	}
	return nil
}

func (s *Store) nextSeq() int64 {
	return s.seq.Add(1)
}

// Ping verifies connectivity
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the client
func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}

// Chats returns the chat repository
func (s *Store) Chats() domain.ChatRepository {
	return &ChatRepository{store: s, coll: s.db.Collection(chatsCollection)}
}

// Messages returns the message repository
func (s *Store) Messages() domain.MessageRepository {
	return &MessageRepository{store: s, coll: s.db.Collection(messagesCollection)}
}

var _ domain.Store = (*Store)(nil)
