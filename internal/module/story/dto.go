package story

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/lullaby-ai/server/internal/shared/errors"
)

// MaxImagesPerRequest caps how many photos one generation may carry.
const MaxImagesPerRequest = 5

// CharacterInput is one named character in a generation request.
type CharacterInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// GenerationRequest is the input contract for one pipeline run.
type GenerationRequest struct {
	Images          []string         `json:"images"`
	Characters      []CharacterInput `json:"characters"`
	Theme           string           `json:"theme"`
	Duration        string           `json:"duration"`
	Language        string           `json:"language"`
	BackgroundMusic string           `json:"background_music,omitempty"`
	VoiceID         string           `json:"voice_id"`
}

// Validate checks the mandatory fields of a generation request.
func (r *GenerationRequest) Validate() error {
	if r.Theme == "" {
		return apperrors.ValidationError("theme is required")
	}
	if r.Duration == "" {
		return apperrors.ValidationError("duration is required")
	}
	if r.Language == "" {
		return apperrors.ValidationError("language is required")
	}
	if r.VoiceID == "" {
		return apperrors.ValidationError("voice_id is required")
	}
	if len(r.Images) > MaxImagesPerRequest {
		return apperrors.ValidationError("at most 5 images are allowed")
	}
	return nil
}

// GenerationAccepted is the response for an accepted asynchronous generation.
type GenerationAccepted struct {
	RequestID uuid.UUID `json:"request_id"`
	Status    string    `json:"status"`
}

// JobStatusResponse reports the state of a generation job.
type JobStatusResponse struct {
	RequestID uuid.UUID      `json:"request_id"`
	Status    string         `json:"status"`
	Progress  float64        `json:"progress"`
	Result    map[string]any `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// StoryResponse is the API representation of a persisted story.
type StoryResponse struct {
	ID                uuid.UUID  `json:"id"`
	Title             string     `json:"title"`
	TextContent       string     `json:"text_content"`
	Theme             string     `json:"theme"`
	DurationSeconds   int        `json:"duration_seconds"`
	Language          string     `json:"language"`
	AudioURL          *string    `json:"audio_url,omitempty"`
	BackgroundMusicID *uuid.UUID `json:"background_music_id,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// ToResponse converts a story to its API representation.
func (s *Story) ToResponse() *StoryResponse {
	return &StoryResponse{
		ID:                s.ID,
		Title:             s.Title,
		TextContent:       s.TextContent,
		Theme:             s.Theme,
		DurationSeconds:   s.DurationSeconds,
		Language:          s.Language,
		AudioURL:          s.AudioURL,
		BackgroundMusicID: s.BackgroundMusicID,
		CreatedAt:         s.CreatedAt,
	}
}
