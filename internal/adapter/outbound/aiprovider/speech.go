package aiprovider

import (
	"context"
	"net/http"

	"github.com/lullaby-ai/server/internal/port/outbound"
	"github.com/lullaby-ai/server/internal/shared/metrics"
)

// SpeechAdapterConfig configures an OpenAI-compatible speech adapter.
type SpeechAdapterConfig struct {
	BaseURL      string
	APIKey       string
	Model        string
	OutputFormat string
}

// SpeechAdapter calls an OpenAI-compatible /audio/speech endpoint and returns
// the raw audio bytes.
type SpeechAdapter struct {
	*BaseAdapter
	model        string
	outputFormat string
}

// NewSpeechAdapter creates a new speech adapter.
func NewSpeechAdapter(client *http.Client, cfg SpeechAdapterConfig, m *metrics.Metrics) *SpeechAdapter {
	return &SpeechAdapter{
		BaseAdapter:  NewBaseAdapter(client, cfg.BaseURL, cfg.APIKey, "speech", m),
		model:        cfg.Model,
		outputFormat: cfg.OutputFormat,
	}
}

// Synthesize converts text to speech audio.
func (a *SpeechAdapter) Synthesize(ctx context.Context, req *outbound.SpeechRequest) ([]byte, error) {
	format := req.ResponseFormat
	if format == "" {
		format = a.outputFormat
	}

	body := map[string]any{
		"model":           a.model,
		"input":           req.Input,
		"voice":           req.Voice,
		"response_format": format,
	}
	if req.Language != "" {
		body["language"] = req.Language
	}

	return a.doRequest(ctx, "speech", "/audio/speech", body)
}

// Compile-time interface assertion
var _ outbound.SpeechPort = (*SpeechAdapter)(nil)
