// Package llm provides chat-completion providers used to translate questions
// into graph queries.
package llm

import (
	"context"
	"fmt"

	"github.com/maraichr/gdcgraph/internal/config"
)

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Completer returns a model reply for a conversation.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
	Model() string
}

// New auto-selects a provider: OpenAI-compatible (if API key set) >
// Bedrock (if model id set) > nil.
func New(ctx context.Context, cfg config.LLMConfig) (Completer, error) {
	if cfg.APIKey != "" {
		return NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil
	}
	if cfg.BedrockModelID != "" {
		client, err := NewBedrockClient(ctx, cfg.BedrockRegion, cfg.BedrockModelID)
		if err != nil {
			return nil, fmt.Errorf("bedrock client: %w", err)
		}
		return client, nil
	}
	return nil, nil
}
