package aiprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/lullaby-ai/server/internal/port/outbound"
	"github.com/lullaby-ai/server/internal/shared/metrics"
)

// ChatAdapterConfig configures an OpenAI-compatible chat adapter.
type ChatAdapterConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature *float64
	MaxTokens   int
}

// ChatAdapter calls an OpenAI-compatible /chat/completions endpoint. The same
// adapter serves plain text completions and vision description, since vision
// requests are chat completions with image content parts.
type ChatAdapter struct {
	*BaseAdapter
	model       string
	temperature *float64
	maxTokens   int
	operation   string
}

// NewChatAdapter creates a new chat adapter. The operation label is used for
// request metrics.
func NewChatAdapter(client *http.Client, cfg ChatAdapterConfig, operation string, m *metrics.Metrics) *ChatAdapter {
	return &ChatAdapter{
		BaseAdapter: NewBaseAdapter(client, cfg.BaseURL, cfg.APIKey, operation, m),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		operation:   operation,
	}
}

// Complete performs a non-streaming chat completion and returns the assistant
// message content.
func (a *ChatAdapter) Complete(ctx context.Context, req *outbound.ChatRequest) (string, error) {
	messages := make([]map[string]any, 0, 2)
	if req.System != "" {
		messages = append(messages, map[string]any{"role": "system", "content": req.System})
	}
	messages = append(messages, map[string]any{"role": "user", "content": req.User})

	body := map[string]any{
		"model":    a.model,
		"messages": messages,
	}
	a.applyOptions(body, req.Temperature, req.MaxTokens)

	return a.complete(ctx, body)
}

// DescribeImage asks the model to describe an image given by URL or data URI.
func (a *ChatAdapter) DescribeImage(ctx context.Context, prompt, imageURL string) (string, error) {
	body := map[string]any{
		"model": a.model,
		"messages": []map[string]any{
			{
				"role": "user",
				"content": []map[string]any{
					{"type": "text", "text": prompt},
					{"type": "image_url", "image_url": map[string]any{"url": imageURL}},
				},
			},
		},
	}
	a.applyOptions(body, nil, 0)

	return a.complete(ctx, body)
}

func (a *ChatAdapter) applyOptions(body map[string]any, temperature *float64, maxTokens int) {
	if temperature == nil {
		temperature = a.temperature
	}
	if temperature != nil {
		body["temperature"] = *temperature
	}
	if maxTokens <= 0 {
		maxTokens = a.maxTokens
	}
	if maxTokens > 0 {
		body["max_tokens"] = maxTokens
	}
}

func (a *ChatAdapter) complete(ctx context.Context, body map[string]any) (string, error) {
	respBody, err := a.doRequest(ctx, a.operation, "/chat/completions", body)
	if err != nil {
		return "", err
	}

	var openaiResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &openaiResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(openaiResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return openaiResp.Choices[0].Message.Content, nil
}

// Compile-time interface assertions
var (
	_ outbound.TextModelPort   = (*ChatAdapter)(nil)
	_ outbound.VisionModelPort = (*ChatAdapter)(nil)
)
