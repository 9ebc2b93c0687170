package llms

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/meguminnnnnnnnn/go-openai"

	"youassist/internal/rag/interfaces"
)

// OpenAI is a chat-completion client for the OpenAI API.
type OpenAI struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAI creates a new OpenAI client. baseURL is optional and overrides
// the default API endpoint.
func NewOpenAI(apiKey, model, baseURL string, timeout time.Duration) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAI{
		client:  openai.NewClientWithConfig(cfg),
		model:   model,
		timeout: timeout,
	}, nil
}

// Complete runs one chat completion with a fixed system and user prompt.
func (o *OpenAI) Complete(ctx context.Context, systemPrompt, userPrompt string, opts interfaces.CompletionOptions) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: &opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}

	var resp openai.ChatCompletionResponse
	err := withRetry(ctx, "openai", o.timeout, func(ctx context.Context) error {
		var err error
		resp, err = o.client.CreateChatCompletion(ctx, req)
		return err
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", &GenerationError{Provider: "openai", Err: fmt.Errorf("no completion choices returned")}
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

var _ interfaces.LLM = (*OpenAI)(nil)
