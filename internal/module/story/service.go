package story

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lullaby-ai/server/internal/shared/task"
)

// Service coordinates story generation and retrieval.
type Service struct {
	repo    Repository
	manager *task.Manager
	runner  task.Runner
	logger  *zap.Logger
}

// NewService creates a new story service. runner is the generation pipeline;
// it is invoked directly for synchronous generations and through the manager
// for asynchronous ones.
func NewService(repo Repository, manager *task.Manager, runner task.Runner, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:    repo,
		manager: manager,
		runner:  runner,
		logger:  logger,
	}
}

// Generate starts an asynchronous generation job for the user.
func (s *Service) Generate(ctx context.Context, userID uuid.UUID, req *GenerationRequest) (*task.Job, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	job, err := s.manager.Submit(ctx, userID, req)
	if err != nil {
		return nil, fmt.Errorf("submit generation job: %w", err)
	}

	s.logger.Info("generation job submitted",
		zap.String("request_id", job.RequestID.String()),
		zap.String("user_id", userID.String()),
	)
	return job, nil
}

// GenerateSync runs the generation pipeline inline and returns the persisted
// story. Intended for callers that cannot poll for status.
func (s *Service) GenerateSync(ctx context.Context, userID uuid.UUID, req *GenerationRequest) (*Story, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	job := &task.Job{
		RequestID: uuid.New(),
		UserID:    userID,
		Status:    task.StatusRunning,
	}

	result, err := s.runner(ctx, job, req, func(float64) {})
	if err != nil {
		return nil, err
	}

	storyID, err := resultStoryID(result)
	if err != nil {
		return nil, err
	}
	return s.repo.GetStory(ctx, storyID, userID)
}

// Status returns the job status for a generation owned by the user.
func (s *Service) Status(ctx context.Context, userID, requestID uuid.UUID) (*task.Job, error) {
	job, err := s.manager.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if job.UserID != userID {
		return nil, task.ErrJobNotFound
	}
	return job, nil
}

// Get returns one of the user's stories.
func (s *Service) Get(ctx context.Context, userID, storyID uuid.UUID) (*Story, error) {
	return s.repo.GetStory(ctx, storyID, userID)
}

// List returns the user's stories, newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Story, error) {
	return s.repo.ListStories(ctx, userID, limit, offset)
}

// Images returns the image rows of one of the user's stories.
func (s *Service) Images(ctx context.Context, userID, storyID uuid.UUID) ([]*StoryImage, error) {
	if _, err := s.repo.GetStory(ctx, storyID, userID); err != nil {
		return nil, err
	}
	return s.repo.ListImages(ctx, storyID)
}

func resultStoryID(result map[string]any) (uuid.UUID, error) {
	raw, ok := result["story_id"].(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("generation result missing story_id")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse story_id: %w", err)
	}
	return id, nil
}
