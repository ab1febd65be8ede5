package outbound

import "context"

// ChatRequest describes a single text completion exchange.
type ChatRequest struct {
	System      string
	User        string
	Temperature *float64
	MaxTokens   int
}

// SpeechRequest describes a text-to-speech synthesis call. Language is a
// short language code hint for the speech service.
type SpeechRequest struct {
	Input          string
	Voice          string
	Language       string
	ResponseFormat string
}

// TextModelPort generates text from a chat-style prompt.
type TextModelPort interface {
	Complete(ctx context.Context, req *ChatRequest) (string, error)
}

// VisionModelPort describes an image in natural language.
type VisionModelPort interface {
	DescribeImage(ctx context.Context, prompt, imageURL string) (string, error)
}

// SpeechPort synthesizes narration audio from text.
type SpeechPort interface {
	Synthesize(ctx context.Context, req *SpeechRequest) ([]byte, error)
}
