// Package session holds the client-side chat state: selection, optimistic
// sends, bot replies and the live feed of the selected chat.
package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/crewchat/internal/client"
	"github.com/Rrens/crewchat/internal/domain"
	"github.com/Rrens/crewchat/internal/llm"
)

// FallbackReply is stored as the bot message when inference fails
const FallbackReply = "Sorry, I'm having trouble connecting right now. Please try again."

// Notification texts
const (
	MsgLoadMessagesFailed = "Failed to load messages"
	MsgLoadChatsFailed    = "Failed to load chats"
	MsgCreateChatFailed   = "Failed to create chat"
	MsgDeleteChatFailed   = "Failed to delete chat"
	MsgSendFailed         = "Failed to send message"
	MsgReplyFailed        = "Failed to save reply"
	MsgChatCreated        = "Chat created"
	MsgChatDeleted        = "Chat deleted"
)

// Backend is the chat store as seen from the client
type Backend interface {
	ListChats(ctx context.Context) ([]domain.ChatSummary, error)
	CreateChat(ctx context.Context, title string) (*domain.Chat, error)
	DeleteChat(ctx context.Context, id uuid.UUID) error
	CreateMessage(ctx context.Context, chatID uuid.UUID, content string, isBot bool) (*domain.Message, error)
}

// Inference produces bot replies
type Inference interface {
	Reply(ctx context.Context, req llm.Request) (*llm.Response, error)
}

// Confirmer asks the user to approve a destructive action
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// Level is the severity of a notification
type Level int

const (
	LevelInfo Level = iota
	LevelError
)

// Notification is a transient message for the user
type Notification struct {
	Level Level
	Text  string
}

// Notifier shows notifications
type Notifier interface {
	Notify(n Notification)
}

// Options wires a Session to its collaborators
type Options struct {
	Backend   Backend
	Feed      client.Feed
	Inference Inference
	Confirmer Confirmer
	Notifier  Notifier
}

// Session is the client state controller. All methods are safe for concurrent use.
type Session struct {
	backend   Backend
	feed      client.Feed
	inference Inference
	confirmer Confirmer
	notifier  Notifier

	base       context.Context
	cancelBase context.CancelFunc

	mu           sync.Mutex
	chats        []domain.ChatSummary
	selected     uuid.UUID
	feedGen      uint64
	cancelFeed   context.CancelFunc
	loading      bool
	replyPending bool
	confirmed    []domain.Message
	pending      []Entry
	tempSeq      uint64

	subMu       sync.Mutex
	subscribers map[int]chan struct{}
	nextSub     int
}

// New creates a session. Call Close to stop the active feed.
func New(opts Options) *Session {
	base, cancel := context.WithCancel(context.Background())
	return &Session{
		backend:     opts.Backend,
		feed:        opts.Feed,
		inference:   opts.Inference,
		confirmer:   opts.Confirmer,
		notifier:    opts.Notifier,
		base:        base,
		cancelBase:  cancel,
		chats:       []domain.ChatSummary{},
		subscribers: make(map[int]chan struct{}),
	}
}

// Close stops the feed and any background work
func (s *Session) Close() {
	s.cancelBase()
}

// LoadChats fetches the chat list. On failure the list is emptied.
func (s *Session) LoadChats(ctx context.Context) error {
	chats, err := s.backend.ListChats(ctx)

	s.mu.Lock()
	if err != nil {
		s.chats = []domain.ChatSummary{}
	} else {
		s.chats = append([]domain.ChatSummary{}, chats...)
	}
	s.mu.Unlock()
	s.changed()

	if err != nil {
		s.notify(LevelError, MsgLoadChatsFailed)
		return fmt.Errorf("failed to load chats: %w", err)
	}
	return nil
}

// SelectChat switches the thread to id and starts its feed. uuid.Nil deselects.
func (s *Session) SelectChat(id uuid.UUID) {
	s.mu.Lock()
	gen := s.resetSelectionLocked(id)
	var ctx context.Context
	if id != uuid.Nil && s.feed != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithCancel(s.base)
		s.cancelFeed = cancel
		s.loading = true
	}
	s.mu.Unlock()
	s.changed()

	if ctx == nil {
		return
	}
	go s.feed.Watch(ctx, id, func(u client.Update) {
		s.applyUpdate(gen, u)
	})
}

// resetSelectionLocked cancels the current feed and clears the thread
func (s *Session) resetSelectionLocked(id uuid.UUID) uint64 {
	if s.cancelFeed != nil {
		s.cancelFeed()
		s.cancelFeed = nil
	}
	s.feedGen++
	s.selected = id
	s.confirmed = nil
	s.pending = nil
	s.loading = false
	return s.feedGen
}

// CreateChat creates a chat and selects it
func (s *Session) CreateChat(ctx context.Context, title string) (*domain.Chat, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, domain.ErrTitleRequired
	}

	chat, err := s.backend.CreateChat(ctx, title)
	if err != nil {
		s.notify(LevelError, MsgCreateChatFailed)
		return nil, fmt.Errorf("failed to create chat: %w", err)
	}

	s.mu.Lock()
	s.chats = append(s.chats, chat.Summary())
	s.mu.Unlock()

	s.notify(LevelInfo, MsgChatCreated)
	s.SelectChat(chat.ID)
	return chat, nil
}

// DeleteChat removes a chat after confirmation. It reports whether the chat was deleted.
func (s *Session) DeleteChat(ctx context.Context, id uuid.UUID) (bool, error) {
	if s.confirmer == nil {
		return false, errors.New("no confirmer configured")
	}

	ok, err := s.confirmer.Confirm(ctx, fmt.Sprintf("Delete chat %q and all its messages?", s.chatTitle(id)))
	if err != nil {
		return false, fmt.Errorf("failed to confirm: %w", err)
	}
	if !ok {
		return false, nil
	}

	if err := s.backend.DeleteChat(ctx, id); err != nil {
		s.notify(LevelError, MsgDeleteChatFailed)
		return false, fmt.Errorf("failed to delete chat: %w", err)
	}

	s.mu.Lock()
	s.removeChatLocked(id)
	s.mu.Unlock()
	s.changed()

	s.notify(LevelInfo, MsgChatDeleted)
	return true, nil
}

func (s *Session) removeChatLocked(id uuid.UUID) {
	chats := s.chats[:0]
	for _, c := range s.chats {
		if c.ID != id {
			chats = append(chats, c)
		}
	}
	s.chats = chats

	if s.selected == id {
		s.resetSelectionLocked(uuid.Nil)
	}
}

func (s *Session) chatTitle(id uuid.UUID) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.chats {
		if c.ID == id {
			return c.Title
		}
	}
	return id.String()
}

// SendMessage posts content to the selected chat and, unless a reply is
// already in flight, asks the inference service for a bot reply.
func (s *Session) SendMessage(ctx context.Context, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.ErrContentRequired
	}

	s.mu.Lock()
	chatID := s.selected
	if chatID == uuid.Nil {
		s.mu.Unlock()
		return domain.ErrNoChatSelected
	}
	s.tempSeq++
	tempID := fmt.Sprintf("temp-%d-%d", time.Now().UnixMilli(), s.tempSeq)
	s.pending = append(s.pending, Entry{
		ID:      tempID,
		Pending: true,
		Message: domain.Message{ChatID: chatID, Content: content},
	})
	history := turns(s.confirmed)
	s.mu.Unlock()
	s.changed()

	msg, err := s.backend.CreateMessage(ctx, chatID, content, false)
	if err != nil {
		s.mu.Lock()
		s.removePendingLocked(tempID)
		s.mu.Unlock()
		s.changed()

		s.notify(LevelError, MsgSendFailed)
		return fmt.Errorf("failed to send message: %w", err)
	}
	s.confirm(tempID, *msg)

	s.mu.Lock()
	if s.replyPending {
		s.mu.Unlock()
		return nil
	}
	s.replyPending = true
	s.mu.Unlock()
	s.changed()

	defer func() {
		s.mu.Lock()
		s.replyPending = false
		s.mu.Unlock()
		s.changed()
	}()

	reply := s.reply(ctx, llm.Request{Topic: content, ChatID: chatID.String(), History: history})

	bot, err := s.backend.CreateMessage(ctx, chatID, reply, true)
	if err != nil {
		s.notify(LevelError, MsgReplyFailed)
		return fmt.Errorf("failed to save reply: %w", err)
	}
	s.confirm("", *bot)
	return nil
}

// reply returns the inference answer, or FallbackReply on failure or empty output
func (s *Session) reply(ctx context.Context, req llm.Request) string {
	if s.inference == nil {
		return FallbackReply
	}

	resp, err := s.inference.Reply(ctx, req)
	if err != nil {
		log.Warn().Err(err).Str("chat_id", req.ChatID).Msg("inference failed")
		return FallbackReply
	}
	if resp == nil || strings.TrimSpace(resp.Text) == "" {
		log.Warn().Str("chat_id", req.ChatID).Msg("inference returned an empty reply")
		return FallbackReply
	}
	return strings.TrimSpace(resp.Text)
}

// confirm swaps the pending entry tempID for msg. If the feed already
// delivered msg, the pending entry is only dropped.
func (s *Session) confirm(tempID string, msg domain.Message) {
	s.mu.Lock()
	if tempID != "" {
		s.removePendingLocked(tempID)
	}
	if s.selected == msg.ChatID {
		s.insertConfirmedLocked(msg)
	}
	s.mu.Unlock()
	s.changed()
}

func (s *Session) removePendingLocked(tempID string) {
	pending := s.pending[:0]
	for _, e := range s.pending {
		if e.ID != tempID {
			pending = append(pending, e)
		}
	}
	s.pending = pending
}

func (s *Session) insertConfirmedLocked(msg domain.Message) {
	for _, m := range s.confirmed {
		if m.ID == msg.ID {
			return
		}
	}
	s.confirmed = append(s.confirmed, msg)
	sort.SliceStable(s.confirmed, func(i, j int) bool {
		return s.confirmed[i].CreatedTime.Before(s.confirmed[j].CreatedTime)
	})
}

// applyUpdate folds a feed update into the state. Updates from an older
// selection are discarded.
func (s *Session) applyUpdate(gen uint64, u client.Update) {
	s.mu.Lock()
	if gen != s.feedGen || u.ChatID != s.selected {
		s.mu.Unlock()
		log.Debug().Str("chat_id", u.ChatID.String()).Msg("discarding stale feed update")
		return
	}

	wasLoading := s.loading
	s.loading = false

	switch {
	case u.Err != nil:
		s.mu.Unlock()
		s.changed()
		if wasLoading {
			s.notify(LevelError, MsgLoadMessagesFailed)
		}
		return

	case u.Deleted:
		s.removeChatLocked(u.ChatID)

	case u.Messages != nil:
		s.confirmed = append([]domain.Message{}, u.Messages...)
		sort.SliceStable(s.confirmed, func(i, j int) bool {
			return s.confirmed[i].CreatedTime.Before(s.confirmed[j].CreatedTime)
		})

	case u.Message != nil:
		s.insertConfirmedLocked(*u.Message)
	}
	s.mu.Unlock()
	s.changed()
}

// Subscribe returns a channel signalled after every state change and a
// function that ends the subscription.
func (s *Session) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = ch
	s.subMu.Unlock()

	return ch, func() {
		s.subMu.Lock()
		delete(s.subscribers, id)
		s.subMu.Unlock()
	}
}

func (s *Session) changed() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (s *Session) notify(level Level, text string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(Notification{Level: level, Text: text})
}

func turns(messages []domain.Message) []llm.Turn {
	out := make([]llm.Turn, 0, len(messages))
	for _, m := range messages {
		out = append(out, llm.Turn{Content: m.Content, IsBot: m.IsBot})
	}
	return out
}
