// internal/adapter/openai/client.go

package openai

import (
	"context"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"gathering/internal/domain/plan"
	"gathering/internal/observability"
)

// DefaultModel is used when no model is configured
const DefaultModel = goopenai.GPT3Dot5Turbo

// Config contains configuration for the chat completion client
type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
	// BaseURL overrides the API endpoint, for tests and compatible gateways
	BaseURL string
}

// Client sends chat conversations to the OpenAI API
type Client struct {
	client  *goopenai.Client
	model   string
	metrics *observability.Collector
}

// NewClient creates a new chat completion client
func NewClient(cfg Config, metrics *observability.Collector) *Client {
	config := goopenai.DefaultConfig(cfg.APIKey)
	config.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	if cfg.BaseURL != "" {
		config.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Client{
		client:  goopenai.NewClientWithConfig(config),
		model:   model,
		metrics: metrics,
	}
}

// Complete returns the first choice of the completion for messages
func (c *Client) Complete(ctx context.Context, messages []plan.ChatMessage) (string, error) {
	const op = "openai.complete"
	start := time.Now()

	req := goopenai.ChatCompletionRequest{
		Model:    c.model,
		Messages: make([]goopenai.ChatCompletionMessage, len(messages)),
	}
	for i, m := range messages {
		req.Messages[i] = goopenai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		c.metrics.ObserveCall("chat_completion", observability.OutcomeUnavailable, time.Since(start))
		return "", plan.E(plan.KindServiceUnavailable, op, "the text generation service is unavailable", err)
	}
	if len(resp.Choices) == 0 {
		c.metrics.ObserveCall("chat_completion", observability.OutcomeEmpty, time.Since(start))
		return "", plan.E(plan.KindServiceUnavailable, op, "the text generation service returned no answer", nil)
	}

	c.metrics.ObserveCall("chat_completion", observability.OutcomeOK, time.Since(start))
	return resp.Choices[0].Message.Content, nil
}
