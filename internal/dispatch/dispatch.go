// Package dispatch implements the mode-keyed backend function shared by the
// HTTP endpoints.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/crewchat/internal/domain"
	"github.com/Rrens/crewchat/internal/service"
)

// Modes
const (
	ModeListChats   = "list_chats"
	ModeCreateChat  = "create_chat"
	ModeDeleteChat  = "delete_chat"
	ModeGetMessages = "get_messages"
	ModeSendMessage = "send_message"
)

// Request carries the mode and its arguments
type Request struct {
	Mode    string `json:"mode"`
	Title   string `json:"title,omitempty"`
	ChatID  string `json:"chat_id,omitempty"`
	Content string `json:"content,omitempty"`
	IsBot   bool   `json:"is_bot,omitempty"`
}

// Result is a JSON body plus the HTTP status it should be served with
type Result struct {
	Status int
	Body   any
}

// ErrorBody is the failure shape. Success is only set for unexpected failures.
type ErrorBody struct {
	Error   string `json:"error"`
	Success *bool  `json:"success,omitempty"`
}

// DeleteBody is the delete_chat success shape
type DeleteBody struct {
	Success bool `json:"success"`
}

// MessagesBody is the get_messages success shape
type MessagesBody struct {
	Messages []domain.Message `json:"messages"`
}

// ChatService is the subset of service.ChatService used by the dispatcher
type ChatService interface {
	ListChats(ctx context.Context) ([]domain.ChatSummary, error)
	CreateChat(ctx context.Context, title string) (*domain.Chat, error)
	DeleteChat(ctx context.Context, rawID string) error
	ListMessages(ctx context.Context, rawChatID string) ([]domain.Message, error)
	SendMessage(ctx context.Context, input service.SendMessageInput) (*domain.Message, error)
}

// Dispatcher routes requests by mode
type Dispatcher struct {
	chats ChatService
}

func New(chats ChatService) *Dispatcher {
	return &Dispatcher{chats: chats}
}

// Dispatch executes req. It never panics; every failure becomes an ErrorBody.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("mode", req.Mode).Msg("dispatch panicked")
			res = internalError(fmt.Errorf("internal server error"))
		}
	}()

	switch req.Mode {
	case ModeListChats:
		chats, err := d.chats.ListChats(ctx)
		if err != nil {
			return d.fail(req, err)
		}
		return Result{Status: http.StatusOK, Body: chats}

	case ModeCreateChat:
		chat, err := d.chats.CreateChat(ctx, req.Title)
		if err != nil {
			return d.fail(req, err)
		}
		return Result{Status: http.StatusCreated, Body: chat}

	case ModeDeleteChat:
		if err := d.chats.DeleteChat(ctx, req.ChatID); err != nil {
			return d.fail(req, err)
		}
		return Result{Status: http.StatusOK, Body: DeleteBody{Success: true}}

	case ModeGetMessages:
		messages, err := d.chats.ListMessages(ctx, req.ChatID)
		if err != nil {
			return d.fail(req, err)
		}
		return Result{Status: http.StatusOK, Body: MessagesBody{Messages: messages}}

	case ModeSendMessage:
		msg, err := d.chats.SendMessage(ctx, service.SendMessageInput{
			ChatID:  req.ChatID,
			Content: req.Content,
			IsBot:   req.IsBot,
		})
		if err != nil {
			return d.fail(req, err)
		}
		return Result{Status: http.StatusCreated, Body: msg}
	}

	return d.fail(req, domain.ErrInvalidMode)
}

func (d *Dispatcher) fail(req Request, err error) Result {
	if msg, ok := validationMessage(req.Mode, err); ok {
		return Result{Status: http.StatusBadRequest, Body: ErrorBody{Error: msg}}
	}
	if errors.Is(err, domain.ErrChatNotFound) {
		return Result{Status: http.StatusNotFound, Body: ErrorBody{Error: "Chat not found"}}
	}

	log.Error().Err(err).Str("mode", req.Mode).Msg("dispatch failed")
	return internalError(err)
}

func internalError(err error) Result {
	success := false
	return Result{
		Status: http.StatusInternalServerError,
		Body:   ErrorBody{Error: err.Error(), Success: &success},
	}
}

// validationMessage returns the client-facing text for input errors
func validationMessage(mode string, err error) (string, bool) {
	switch {
	case errors.Is(err, domain.ErrInvalidMode):
		return "Invalid mode", true
	case errors.Is(err, domain.ErrTitleRequired):
		return "Title is required", true
	case errors.Is(err, domain.ErrTitleTooLong):
		return "Title is too long", true
	case errors.Is(err, domain.ErrChatIDRequired):
		if mode == ModeDeleteChat {
			return "chat_id is required to delete chat", true
		}
		return "chat_id is required", true
	case errors.Is(err, domain.ErrInvalidChatID):
		return "Invalid chat_id", true
	case errors.Is(err, domain.ErrContentRequired):
		return "Content is required", true
	}
	return "", false
}
