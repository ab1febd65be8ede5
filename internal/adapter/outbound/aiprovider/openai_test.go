package aiprovider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lullaby-ai/server/internal/port/outbound"
)

func chatServer(t *testing.T, handler func(body map[string]any) any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(handler(body)))
	}))
}

func chatResponse(content string) any {
	return map[string]any{
		"choices": []any{
			map[string]any{"message": map[string]any{"content": content}},
		},
	}
}

func TestChatAdapter_Complete(t *testing.T) {
	t.Run("sends system and user messages", func(t *testing.T) {
		var got map[string]any
		srv := chatServer(t, func(body map[string]any) any {
			got = body
			return chatResponse("Once upon a time.")
		})
		defer srv.Close()

		adapter := NewChatAdapter(srv.Client(), ChatAdapterConfig{
			BaseURL: srv.URL,
			APIKey:  "test-key",
			Model:   "test-model",
		}, "narrative", nil)

		out, err := adapter.Complete(context.Background(), &outbound.ChatRequest{
			System: "You are an author.",
			User:   "Write a story.",
		})
		require.NoError(t, err)
		assert.Equal(t, "Once upon a time.", out)

		assert.Equal(t, "test-model", got["model"])
		messages := got["messages"].([]any)
		require.Len(t, messages, 2)
		assert.Equal(t, "system", messages[0].(map[string]any)["role"])
		assert.Equal(t, "user", messages[1].(map[string]any)["role"])
	})

	t.Run("request options override adapter defaults", func(t *testing.T) {
		var got map[string]any
		srv := chatServer(t, func(body map[string]any) any {
			got = body
			return chatResponse("ok")
		})
		defer srv.Close()

		defaultTemp := 0.7
		adapter := NewChatAdapter(srv.Client(), ChatAdapterConfig{
			BaseURL:     srv.URL,
			APIKey:      "test-key",
			Model:       "test-model",
			Temperature: &defaultTemp,
			MaxTokens:   2000,
		}, "narrative", nil)

		reqTemp := 0.2
		_, err := adapter.Complete(context.Background(), &outbound.ChatRequest{
			User:        "hi",
			Temperature: &reqTemp,
			MaxTokens:   60,
		})
		require.NoError(t, err)

		assert.Equal(t, 0.2, got["temperature"])
		assert.Equal(t, float64(60), got["max_tokens"])
	})

	t.Run("empty choices is an error", func(t *testing.T) {
		srv := chatServer(t, func(map[string]any) any {
			return map[string]any{"choices": []any{}}
		})
		defer srv.Close()

		adapter := NewChatAdapter(srv.Client(), ChatAdapterConfig{BaseURL: srv.URL, APIKey: "test-key", Model: "m"}, "narrative", nil)

		_, err := adapter.Complete(context.Background(), &outbound.ChatRequest{User: "hi"})
		assert.Error(t, err)
	})

	t.Run("API errors carry status and message", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error": {"message": "rate limit exceeded"}}`)) //nolint:errcheck
		}))
		defer srv.Close()

		adapter := NewChatAdapter(srv.Client(), ChatAdapterConfig{BaseURL: srv.URL, APIKey: "test-key", Model: "m"}, "narrative", nil)

		_, err := adapter.Complete(context.Background(), &outbound.ChatRequest{User: "hi"})
		require.Error(t, err)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
		assert.Equal(t, "rate limit exceeded", apiErr.Message)
	})
}

func TestChatAdapter_DescribeImage(t *testing.T) {
	var got map[string]any
	srv := chatServer(t, func(body map[string]any) any {
		got = body
		return chatResponse(`{"subjects": ["a child"]}`)
	})
	defer srv.Close()

	adapter := NewChatAdapter(srv.Client(), ChatAdapterConfig{BaseURL: srv.URL, APIKey: "test-key", Model: "vision-model"}, "vision", nil)

	out, err := adapter.DescribeImage(context.Background(), "Describe this photo.", "https://cdn.example.com/photo.png")
	require.NoError(t, err)
	assert.Contains(t, out, "a child")

	messages := got["messages"].([]any)
	require.Len(t, messages, 1)
	content := messages[0].(map[string]any)["content"].([]any)
	require.Len(t, content, 2)
	assert.Equal(t, "text", content[0].(map[string]any)["type"])
	assert.Equal(t, "image_url", content[1].(map[string]any)["type"])
}

func TestExtractErrorMessage(t *testing.T) {
	assert.Equal(t, "boom", extractErrorMessage([]byte(`{"error": {"message": "boom"}}`)))
	assert.Equal(t, "plain text", extractErrorMessage([]byte("plain text")))
	assert.Equal(t, "empty response body", extractErrorMessage(nil))
}
