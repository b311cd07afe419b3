// Package client talks to the crewchat HTTP API: dispatch calls plus the
// live message feeds.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Rrens/crewchat/internal/dispatch"
	"github.com/Rrens/crewchat/internal/domain"
)

const executePath = "/api/v1/execute"

// APIError is a failure reported by the dispatch endpoint
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}

// Client calls the dispatch endpoint
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the API at baseURL
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the API root
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListChats returns chat summaries oldest first
func (c *Client) ListChats(ctx context.Context) ([]domain.ChatSummary, error) {
	chats := []domain.ChatSummary{}
	if err := c.execute(ctx, dispatch.Request{Mode: dispatch.ModeListChats}, &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

// CreateChat creates a chat with title
func (c *Client) CreateChat(ctx context.Context, title string) (*domain.Chat, error) {
	var chat domain.Chat
	if err := c.execute(ctx, dispatch.Request{Mode: dispatch.ModeCreateChat, Title: title}, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

// DeleteChat removes a chat and its messages
func (c *Client) DeleteChat(ctx context.Context, id uuid.UUID) error {
	var body dispatch.DeleteBody
	if err := c.execute(ctx, dispatch.Request{Mode: dispatch.ModeDeleteChat, ChatID: id.String()}, &body); err != nil {
		return err
	}
	if !body.Success {
		return fmt.Errorf("delete chat %s was not acknowledged", id)
	}
	return nil
}

// ListMessages returns a chat's messages in display order
func (c *Client) ListMessages(ctx context.Context, chatID uuid.UUID) ([]domain.Message, error) {
	var body dispatch.MessagesBody
	if err := c.execute(ctx, dispatch.Request{Mode: dispatch.ModeGetMessages, ChatID: chatID.String()}, &body); err != nil {
		return nil, err
	}
	if body.Messages == nil {
		body.Messages = []domain.Message{}
	}
	return body.Messages, nil
}

// CreateMessage stores a message in a chat
func (c *Client) CreateMessage(ctx context.Context, chatID uuid.UUID, content string, isBot bool) (*domain.Message, error) {
	var msg domain.Message
	req := dispatch.Request{
		Mode:    dispatch.ModeSendMessage,
		ChatID:  chatID.String(),
		Content: content,
		IsBot:   isBot,
	}
	if err := c.execute(ctx, req, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (c *Client) execute(ctx context.Context, req dispatch.Request, out any) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+executePath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", req.Mode, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var errBody dispatch.ErrorBody
		if json.Unmarshal(raw, &errBody) != nil || errBody.Error == "" {
			errBody.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: errBody.Error}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", req.Mode, err)
	}
	return nil
}
