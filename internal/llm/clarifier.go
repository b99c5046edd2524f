// Package llm implements the optional request clarifier on top of
// OpenAI-compatible chat completion APIs.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/pkravets/claimpilot/internal/model"
)

const systemPrompt = "You restate insurance claim requests. " +
	"Given a user message, reply with one short sentence that names the claim " +
	"identifier (format: two or three letters, a hyphen, one to four digits) " +
	"if the message contains or implies one. Reply with the original message " +
	"unchanged if you cannot identify a claim."

// Clarifier rewrites ambiguous claim requests using a chat model so the
// claim identifier can be extracted on a second pass.
type Clarifier struct {
	client *openai.Client
	config model.LLMConfig
}

// NewClarifier creates a clarifier for the configured provider. Supported
// providers are "openai" and "azure"; an empty provider is an error, callers
// should skip construction when clarification is disabled.
func NewClarifier(config model.LLMConfig) (*Clarifier, error) {
	if config.Provider == "" {
		return nil, fmt.Errorf("clarifier provider not configured")
	}
	if config.APIKey == "" {
		return nil, fmt.Errorf("%s API key is required", config.Provider)
	}

	var clientConfig openai.ClientConfig
	switch config.Provider {
	case "openai":
		clientConfig = openai.DefaultConfig(config.APIKey)
		if config.BaseURL != "" {
			clientConfig.BaseURL = config.BaseURL
		}
	case "azure":
		if config.BaseURL == "" {
			return nil, fmt.Errorf("azure provider requires base_url")
		}
		clientConfig = openai.DefaultAzureConfig(config.APIKey, config.BaseURL)
	default:
		return nil, fmt.Errorf("unknown clarifier provider: %s", config.Provider)
	}

	return &Clarifier{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Name returns the configured provider name.
func (c *Clarifier) Name() string {
	return c.config.Provider
}

// IsAvailable checks that the API answers with the configured credentials.
func (c *Clarifier) IsAvailable(ctx context.Context) bool {
	_, err := c.client.ListModels(ctx)
	return err == nil
}

// Clarify asks the model to restate the request with an explicit claim
// identifier. The rewritten text is returned verbatim; extraction happens
// at the caller.
func (c *Clarifier) Clarify(ctx context.Context, text string) (string, error) {
	modelName := c.config.Model
	if modelName == "" {
		modelName = openai.GPT4oMini
	}

	maxTokens := c.config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 500
	}

	timeout := c.config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctxWithTimeout, openai.ChatCompletionRequest{
		Model: modelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.1,
	})
	if err != nil {
		return "", fmt.Errorf("clarifier API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("clarifier returned no choices")
	}

	clarified := strings.TrimSpace(resp.Choices[0].Message.Content)
	if clarified == "" {
		return "", fmt.Errorf("clarifier returned empty text")
	}
	return clarified, nil
}
