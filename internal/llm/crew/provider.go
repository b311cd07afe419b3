package crew

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Rrens/crewchat/internal/llm"
)

const messagePath = "/crew/message"

// Provider implements llm.Provider for the crew agent service
type Provider struct {
	baseURL string
	client  *http.Client
}

// NewProvider creates a new crew provider
func NewProvider(baseURL string, timeout time.Duration) *Provider {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Provider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return "crew"
}

// DefaultModel returns the agent crew name
func (p *Provider) DefaultModel() string {
	return "crew"
}

// IsConfigured checks if provider has an endpoint
func (p *Provider) IsConfigured() bool {
	return p.baseURL != ""
}

type crewRequest struct {
	Topic  string `json:"topic"`
	ChatID string `json:"chat_id"`
}

type crewResponse struct {
	Response string `json:"response"`
}

// Reply posts the topic and chat id and returns the crew's answer
func (p *Provider) Reply(ctx context.Context, req llm.Request) (*llm.Response, error) {
	body, err := json.Marshal(crewRequest{Topic: req.Topic, ChatID: req.ChatID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	start := time.Now()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+messagePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("crew returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var crewResp crewResponse
	if err := json.NewDecoder(resp.Body).Decode(&crewResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &llm.Response{
		Text:      llm.CleanReply(crewResp.Response),
		Model:     p.DefaultModel(),
		LatencyMs: time.Since(start).Milliseconds(),
	}, nil
}
