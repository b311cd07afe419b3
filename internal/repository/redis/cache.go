package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Rrens/crewchat/internal/domain"
)

const (
	chatListKey           = "crewchat:chats"
	chatListGenerationKey = "crewchat:chats:generation"
	chatListTTL           = time.Minute
)

// ChatListCache caches the list_chats projection. Every invalidation bumps a
// generation counter; a list read before the bump is never written back.
type ChatListCache struct {
	client *Client
	ttl    time.Duration
}

// NewChatListCache creates a new chat list cache
func NewChatListCache(client *Client) *ChatListCache {
	return &ChatListCache{client: client, ttl: chatListTTL}
}

// Get returns the cached list (nil on a miss) and the current generation
func (c *ChatListCache) Get(ctx context.Context) ([]domain.ChatSummary, int64, error) {
	values, err := c.client.rdb.MGet(ctx, chatListKey, chatListGenerationKey).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read chat list: %w", err)
	}

	generation, err := parseGeneration(values[1])
	if err != nil {
		return nil, 0, err
	}

	raw, ok := values[0].(string)
	if !ok {
		return nil, generation, nil
	}

	chats := []domain.ChatSummary{}
	if err := json.Unmarshal([]byte(raw), &chats); err != nil {
		return nil, generation, fmt.Errorf("failed to unmarshal chat list: %w", err)
	}

	return chats, generation, nil
}

// Set stores the list if the generation still matches. A mismatch is not an error.
func (c *ChatListCache) Set(ctx context.Context, generation int64, chats []domain.ChatSummary) error {
	data, err := json.Marshal(chats)
	if err != nil {
		return fmt.Errorf("failed to marshal chat list: %w", err)
	}

	err = c.client.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, chatListGenerationKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return errGenerationChanged
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, chatListKey, data, c.ttl)
			return nil
		})
		return err
	}, chatListGenerationKey)

	if errors.Is(err, errGenerationChanged) || errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to write chat list: %w", err)
	}
	return nil
}

// Invalidate drops the cached list and bumps the generation
func (c *ChatListCache) Invalidate(ctx context.Context) error {
	_, err := c.client.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, chatListGenerationKey)
		pipe.Del(ctx, chatListKey)
		return nil
	})
	return err
}

var errGenerationChanged = errors.New("chat list generation changed")

func parseGeneration(v any) (int64, error) {
	if v == nil {
		return 0, nil
	}
	s, ok := v.(string)
	if !ok {
		return 0, fmt.Errorf("unexpected chat list generation %T", v)
	}
	generation, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse chat list generation: %w", err)
	}
	return generation, nil
}
