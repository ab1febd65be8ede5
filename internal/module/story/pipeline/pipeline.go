package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lullaby-ai/server/internal/module/story"
	"github.com/lullaby-ai/server/internal/port/outbound"
	"github.com/lullaby-ai/server/internal/shared/metrics"
	"github.com/lullaby-ai/server/internal/shared/task"
)

// SceneDescription is the structured analysis of one source photo. It lives
// only for the duration of a run; a summary is persisted with the image row.
type SceneDescription struct {
	Subjects []string `json:"subjects"`
	Setting  string   `json:"setting"`
	Mood     string   `json:"mood"`
	Details  []string `json:"details"`
	RawText  string   `json:"-"`
}

// GeneratedStory is the parsed output of the narrative model.
type GeneratedStory struct {
	Title   string
	Content string
}

// NarrationAsset is the outcome of speech synthesis. AudioURL is nil when
// synthesis failed, which is a valid terminal state for the job.
type NarrationAsset struct {
	AudioURL   *string
	SourceText string
}

// Config contains pipeline configuration.
type Config struct {
	MaxImages           int
	NarrationMaxChars   int
	PlaceholderImageURL string
}

// DefaultConfig returns the default pipeline configuration.
func DefaultConfig() Config {
	return Config{
		MaxImages:           story.MaxImagesPerRequest,
		NarrationMaxChars:   5000,
		PlaceholderImageURL: "/images/story-placeholder.png",
	}
}

// Pipeline runs one story generation end to end: ingest photos, analyze
// scenes, generate the narrative, synthesize narration and persist the story.
type Pipeline struct {
	repo    story.Repository
	media   outbound.MediaStoragePort
	text    outbound.TextModelPort
	titler  outbound.TextModelPort
	vision  outbound.VisionModelPort
	speech  outbound.SpeechPort
	logger  *zap.Logger
	metrics *metrics.Metrics
	config  Config
}

// New creates a new generation pipeline. titler is the model used for title
// repair; pass the main text port when no cheaper model is configured.
func New(
	repo story.Repository,
	media outbound.MediaStoragePort,
	text outbound.TextModelPort,
	titler outbound.TextModelPort,
	vision outbound.VisionModelPort,
	speech outbound.SpeechPort,
	logger *zap.Logger,
	m *metrics.Metrics,
	config Config,
) *Pipeline {
	if titler == nil {
		titler = text
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MaxImages <= 0 {
		config.MaxImages = story.MaxImagesPerRequest
	}
	if config.NarrationMaxChars <= 0 {
		config.NarrationMaxChars = 5000
	}
	if config.PlaceholderImageURL == "" {
		config.PlaceholderImageURL = DefaultConfig().PlaceholderImageURL
	}

	return &Pipeline{
		repo:    repo,
		media:   media,
		text:    text,
		titler:  titler,
		vision:  vision,
		speech:  speech,
		logger:  logger,
		metrics: m,
		config:  config,
	}
}

// Run executes one generation job. It satisfies task.Runner. Stages run in
// strict sequence; asset, generation and synthesis failures degrade the
// result, only the primary story insert can fail the job.
func (p *Pipeline) Run(ctx context.Context, job *task.Job, input any, onProgress func(float64)) (map[string]any, error) {
	req, ok := input.(*story.GenerationRequest)
	if !ok {
		return nil, newStageError(KindValidation, "input", errors.New("unexpected job payload type"))
	}

	storyID := uuid.New()
	log := p.logger.With(
		zap.String("request_id", job.RequestID.String()),
		zap.String("story_id", storyID.String()),
	)

	stageStart := time.Now()
	imageURLs := p.ingestAssets(ctx, storyID, req.Images, log)
	p.recordStage("ingest", stageStart)
	onProgress(0.2)

	stageStart = time.Now()
	scenes := p.analyzeScenes(ctx, imageURLs, log)
	p.recordStage("analyze", stageStart)
	onProgress(0.4)

	prompt := ComposePrompt(scenes, req.Characters, story.Theme(req.Theme), story.DurationBucket(req.Duration), req.Language)

	stageStart = time.Now()
	generated, err := p.generateNarrative(ctx, prompt, req.Language)
	if err != nil {
		log.Warn("narrative generation failed, using fallback story", zap.Error(err))
		generated = FallbackStory()
	}
	p.recordStage("narrative", stageStart)
	onProgress(0.8)

	stageStart = time.Now()
	narration, err := p.synthesizeNarration(ctx, storyID, generated.Content, req.VoiceID, req.Language)
	if err != nil {
		log.Warn("narration synthesis failed, story will have no audio", zap.Error(err))
	}
	p.recordStage("synthesize", stageStart)
	onProgress(0.9)

	stageStart = time.Now()
	persisted, err := p.persist(ctx, storyID, job.UserID, req, generated, narration, imageURLs, scenes, log)
	p.recordStage("persist", stageStart)
	if err != nil {
		return nil, err
	}

	log.Info("story generated",
		zap.String("title", persisted.Title),
		zap.Int("duration_seconds", persisted.DurationSeconds),
		zap.Bool("has_audio", persisted.AudioURL != nil),
	)

	result := map[string]any{
		"story_id":         persisted.ID.String(),
		"title":            persisted.Title,
		"duration_seconds": persisted.DurationSeconds,
		"language":         persisted.Language,
	}
	if persisted.AudioURL != nil {
		result["audio_url"] = *persisted.AudioURL
	}
	return result, nil
}

func (p *Pipeline) recordStage(stage string, start time.Time) {
	if p.metrics != nil {
		p.metrics.RecordStage(stage, time.Since(start))
	}
}

// Compile-time check
var _ task.Runner = (*Pipeline)(nil).Run
