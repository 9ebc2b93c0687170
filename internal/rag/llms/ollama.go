package llms

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	ollama "github.com/ollama/ollama/api"

	"youassist/internal/rag/interfaces"
)

// Ollama is a chat-completion client for a local Ollama instance.
type Ollama struct {
	client  *ollama.Client
	model   string
	timeout time.Duration
}

// NewOllama creates a new Ollama client. An empty baseURL defaults to the
// standard local Ollama address.
func NewOllama(model, baseURL string, timeout time.Duration) (*Ollama, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	hc := &http.Client{Timeout: 120 * time.Second}
	return &Ollama{
		client:  ollama.NewClient(parsedURL, hc),
		model:   model,
		timeout: timeout,
	}, nil
}

// Complete runs one chat completion with a fixed system and user prompt.
func (o *Ollama) Complete(ctx context.Context, systemPrompt, userPrompt string, opts interfaces.CompletionOptions) (string, error) {
	stream := false
	req := &ollama.ChatRequest{
		Model: o.model,
		Messages: []ollama.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Stream: &stream,
		Options: map[string]interface{}{
			"temperature": opts.Temperature,
			"num_predict": opts.MaxTokens,
		},
	}

	var sb strings.Builder
	err := withRetry(ctx, "ollama", o.timeout, func(ctx context.Context) error {
		sb.Reset()
		return o.client.Chat(ctx, req, func(resp ollama.ChatResponse) error {
			sb.WriteString(resp.Message.Content)
			return nil
		})
	})
	if err != nil {
		return "", err
	}

	answer := strings.TrimSpace(sb.String())
	if answer == "" {
		return "", &GenerationError{Provider: "ollama", Err: fmt.Errorf("empty completion returned")}
	}
	return answer, nil
}

var _ interfaces.LLM = (*Ollama)(nil)
