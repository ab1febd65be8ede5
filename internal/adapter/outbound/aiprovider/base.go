package aiprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/lullaby-ai/server/internal/shared/metrics"
)

// APIError is a non-2xx response from an AI provider.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
}

// BaseAdapter provides the shared HTTP plumbing for provider adapters:
// authenticated requests, circuit breaking and request metrics.
type BaseAdapter struct {
	client  *http.Client
	baseURL string
	apiKey  string
	breaker *gobreaker.CircuitBreaker[[]byte]
	metrics *metrics.Metrics
}

// NewBaseAdapter creates a base adapter for the given endpoint.
func NewBaseAdapter(client *http.Client, baseURL, apiKey, name string, m *metrics.Metrics) *BaseAdapter {
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}

	return &BaseAdapter{
		client:  client,
		baseURL: baseURL,
		apiKey:  apiKey,
		breaker: gobreaker.NewCircuitBreaker[[]byte](settings),
		metrics: m,
	}
}

// doRequest performs a POST to the provider API and returns the raw response
// body. Non-2xx responses are turned into an APIError carrying the provider's
// error message when one can be extracted.
func (a *BaseAdapter) doRequest(ctx context.Context, operation, path string, body map[string]any) ([]byte, error) {
	start := time.Now()

	data, err := a.breaker.Execute(func() ([]byte, error) {
		return a.post(ctx, path, body)
	})

	if a.metrics != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		a.metrics.RecordAIRequest(operation, status, time.Since(start))
	}

	return data, err
}

func (a *BaseAdapter) post(ctx context.Context, path string, body map[string]any) ([]byte, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", a.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    extractErrorMessage(respBody),
		}
	}

	return respBody, nil
}

// extractErrorMessage pulls the message out of an OpenAI-style error payload,
// falling back to the raw body.
func extractErrorMessage(body []byte) string {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Message != "" {
		return payload.Error.Message
	}
	if len(body) > 0 {
		return string(body)
	}
	return "empty response body"
}
