package llm

import "context"

// Turn is one earlier message of the conversation
type Turn struct {
	Content string
	IsBot   bool
}

// Request contains reply generation parameters
type Request struct {
	// Topic is the user message to answer
	Topic   string
	ChatID  string
	History []Turn
}

// Response contains a generated reply
type Response struct {
	Text       string
	Model      string
	TokensUsed int
	LatencyMs  int64
}

// Provider defines the interface for inference providers
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// DefaultModel returns the model used for replies
	DefaultModel() string

	// IsConfigured checks if provider has what it needs to be called
	IsConfigured() bool

	// Reply generates the bot answer to req.Topic
	Reply(ctx context.Context, req Request) (*Response, error)
}
