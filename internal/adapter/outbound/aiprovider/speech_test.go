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

func TestSpeechAdapter_Synthesize(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/speech", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		got = map[string]any{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte("binary audio")) //nolint:errcheck
	}))
	defer srv.Close()

	adapter := NewSpeechAdapter(srv.Client(), SpeechAdapterConfig{
		BaseURL:      srv.URL,
		APIKey:       "test-key",
		Model:        "tts-model",
		OutputFormat: "mp3",
	}, nil)

	t.Run("returns raw audio bytes", func(t *testing.T) {
		audio, err := adapter.Synthesize(context.Background(), &outbound.SpeechRequest{
			Input:    "Once upon a time.",
			Voice:    "v1",
			Language: "fr",
		})
		require.NoError(t, err)
		assert.Equal(t, []byte("binary audio"), audio)

		assert.Equal(t, "tts-model", got["model"])
		assert.Equal(t, "Once upon a time.", got["input"])
		assert.Equal(t, "v1", got["voice"])
		assert.Equal(t, "mp3", got["response_format"])
		assert.Equal(t, "fr", got["language"])
	})

	t.Run("omits language when empty", func(t *testing.T) {
		_, err := adapter.Synthesize(context.Background(), &outbound.SpeechRequest{
			Input: "Hello.",
			Voice: "v1",
		})
		require.NoError(t, err)
		_, present := got["language"]
		assert.False(t, present)
	})

	t.Run("request format overrides the default", func(t *testing.T) {
		_, err := adapter.Synthesize(context.Background(), &outbound.SpeechRequest{
			Input:          "Hello.",
			Voice:          "v1",
			ResponseFormat: "wav",
		})
		require.NoError(t, err)
		assert.Equal(t, "wav", got["response_format"])
	})

	t.Run("propagates API errors", func(t *testing.T) {
		failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer failing.Close()

		bad := NewSpeechAdapter(failing.Client(), SpeechAdapterConfig{BaseURL: failing.URL, APIKey: "k", Model: "m"}, nil)

		_, err := bad.Synthesize(context.Background(), &outbound.SpeechRequest{Input: "x", Voice: "v"})
		require.Error(t, err)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	})
}
