package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/crewchat/internal/domain"
	"github.com/Rrens/crewchat/internal/realtime"
)

var validate = validator.New()

// ChatListCache caches the list_chats projection. Get returns the cached list
// (nil on a miss) and the current generation; Set stores a list only if the
// generation is still the one Get returned. Invalidate bumps the generation.
type ChatListCache interface {
	Get(ctx context.Context) ([]domain.ChatSummary, int64, error)
	Set(ctx context.Context, generation int64, chats []domain.ChatSummary) error
	Invalidate(ctx context.Context) error
}

// CreateChatInput is a validated create_chat request
type CreateChatInput struct {
	Title string `validate:"required,max=255"`
}

// SendMessageInput is a validated send_message request
type SendMessageInput struct {
	ChatID  string `validate:"required"`
	Content string `validate:"required"`
	IsBot   bool
}

// ChatService handles chat and message operations
type ChatService struct {
	chats    domain.ChatRepository
	messages domain.MessageRepository
	bus      realtime.Bus
	cache    ChatListCache
}

// NewChatService creates a new chat service. bus and cache may be nil.
func NewChatService(chats domain.ChatRepository, messages domain.MessageRepository, bus realtime.Bus, cache ChatListCache) *ChatService {
	return &ChatService{
		chats:    chats,
		messages: messages,
		bus:      bus,
		cache:    cache,
	}
}

// ListChats returns chat summaries ordered by creation time
func (s *ChatService) ListChats(ctx context.Context) ([]domain.ChatSummary, error) {
	var generation int64
	cacheable := false
	if s.cache != nil {
		cached, gen, err := s.cache.Get(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("chat list cache read failed")
		} else if cached != nil {
			return cached, nil
		} else {
			generation, cacheable = gen, true
		}
	}

	chats, err := s.chats.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}

	summaries := make([]domain.ChatSummary, 0, len(chats))
	for _, c := range chats {
		summaries = append(summaries, c.Summary())
	}

	// A write committed after the store read bumps the generation and the Set is skipped
	if cacheable {
		if err := s.cache.Set(ctx, generation, summaries); err != nil {
			log.Warn().Err(err).Msg("chat list cache write failed")
		}
	}

	return summaries, nil
}

// CreateChat validates the title and stores a new chat
func (s *ChatService) CreateChat(ctx context.Context, title string) (*domain.Chat, error) {
	input := CreateChatInput{Title: strings.TrimSpace(title)}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	chat, err := s.chats.Create(ctx, input.Title)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat: %w", err)
	}

	s.invalidateChats(ctx)
	return chat, nil
}

// DeleteChat removes a chat and its messages. Unknown ids succeed.
func (s *ChatService) DeleteChat(ctx context.Context, rawID string) error {
	id, err := parseChatID(rawID)
	if err != nil {
		return err
	}

	if err := s.chats.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete chat: %w", err)
	}

	s.invalidateChats(ctx)
	s.publish(ctx, realtime.ChatDeleted(id))
	return nil
}

// ListMessages returns the messages of a chat in display order
func (s *ChatService) ListMessages(ctx context.Context, rawChatID string) ([]domain.Message, error) {
	id, err := parseChatID(rawChatID)
	if err != nil {
		return nil, err
	}

	messages, err := s.messages.ListByChat(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return messages, nil
}

// SendMessage stores a message and announces it to stream subscribers
func (s *ChatService) SendMessage(ctx context.Context, input SendMessageInput) (*domain.Message, error) {
	input.ChatID = strings.TrimSpace(input.ChatID)
	input.Content = strings.TrimSpace(input.Content)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	chatID, err := uuid.Parse(input.ChatID)
	if err != nil {
		return nil, domain.ErrInvalidChatID
	}

	msg, err := s.messages.Create(ctx, chatID, input.Content, input.IsBot)
	if err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	s.publish(ctx, realtime.MessageCreated(*msg))
	return msg, nil
}

func (s *ChatService) invalidateChats(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("chat list cache invalidation failed")
	}
}

// publish is best effort; the write already succeeded
func (s *ChatService) publish(ctx context.Context, ev realtime.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, ev); err != nil {
		log.Warn().Err(err).Str("event", string(ev.Type)).Str("chat_id", ev.ChatID.String()).Msg("failed to publish event")
	}
}

func parseChatID(raw string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, domain.ErrChatIDRequired
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.ErrInvalidChatID
	}
	return id, nil
}

// validateInput maps validator failures onto domain errors
func validateInput(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("invalid input: %w", err)
	}

	fe := verrs[0]
	switch fe.Field() {
	case "Title":
		if fe.Tag() == "max" {
			return domain.ErrTitleTooLong
		}
		return domain.ErrTitleRequired
	case "ChatID":
		return domain.ErrChatIDRequired
	case "Content":
		return domain.ErrContentRequired
	}
	return fmt.Errorf("invalid %s: %w", strings.ToLower(fe.Field()), err)
}
