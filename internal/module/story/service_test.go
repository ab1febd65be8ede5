package story

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lullaby-ai/server/internal/shared/task"
)

// --- Mocks ---

type mockStoryRepo struct {
	mu      sync.Mutex
	stories map[uuid.UUID]*Story
	images  map[uuid.UUID][]*StoryImage
	err     error
}

func newMockStoryRepo() *mockStoryRepo {
	return &mockStoryRepo{
		stories: make(map[uuid.UUID]*Story),
		images:  make(map[uuid.UUID][]*StoryImage),
	}
}

func (m *mockStoryRepo) CreateStory(_ context.Context, s *Story) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stories[s.ID] = s
	return nil
}

func (m *mockStoryRepo) CreateImages(_ context.Context, images []*StoryImage) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, img := range images {
		m.images[img.StoryID] = append(m.images[img.StoryID], img)
	}
	return nil
}

func (m *mockStoryRepo) CreateCharacters(_ context.Context, _ []*StoryCharacter) error {
	return m.err
}

func (m *mockStoryRepo) GetStory(_ context.Context, id, userID uuid.UUID) (*Story, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stories[id]
	if !ok || s.UserID != userID {
		return nil, ErrStoryNotFound
	}
	return s, nil
}

func (m *mockStoryRepo) ListStories(_ context.Context, userID uuid.UUID, _, _ int) ([]*Story, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Story
	for _, s := range m.stories {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockStoryRepo) ListImages(_ context.Context, storyID uuid.UUID) ([]*StoryImage, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.images[storyID], nil
}

func (m *mockStoryRepo) FindMusicByCategory(_ context.Context, _ string) (*BackgroundMusic, error) {
	return nil, ErrMusicNotFound
}

type mockJobRepo struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*task.Job
}

func newMockJobRepo() *mockJobRepo {
	return &mockJobRepo{jobs: make(map[uuid.UUID]*task.Job)}
}

func (m *mockJobRepo) Create(_ context.Context, job *task.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *job
	m.jobs[job.RequestID] = &stored
	return nil
}

func (m *mockJobRepo) Get(_ context.Context, requestID uuid.UUID) (*task.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[requestID]
	if !ok {
		return nil, task.ErrJobNotFound
	}
	copied := *job
	return &copied, nil
}

func (m *mockJobRepo) List(_ context.Context, _ *task.Filter) ([]*task.Job, error) {
	return nil, nil
}

func (m *mockJobRepo) Update(_ context.Context, job *task.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *job
	m.jobs[job.RequestID] = &stored
	return nil
}

func (m *mockJobRepo) UpdateProgress(_ context.Context, requestID uuid.UUID, status task.Status, progress float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job, ok := m.jobs[requestID]; ok {
		job.Status = status
		job.Progress = progress
	}
	return nil
}

// persistingRunner writes one story row and reports it in the result, the
// way the real pipeline does.
func persistingRunner(repo Repository) task.Runner {
	return func(ctx context.Context, job *task.Job, input any, _ func(float64)) (map[string]any, error) {
		storyID := uuid.New()
		err := repo.CreateStory(ctx, &Story{
			ID:     storyID,
			UserID: job.UserID,
			Title:  "A Test Story",
		})
		if err != nil {
			return nil, err
		}
		return map[string]any{"story_id": storyID.String()}, nil
	}
}

func newTestService(t *testing.T, repo Repository, runner task.Runner) *Service {
	t.Helper()
	manager := task.NewManager(newMockJobRepo(), runner, nil, nil, nil, nil)
	t.Cleanup(manager.Stop)
	return NewService(repo, manager, runner, nil)
}

// --- Tests ---

func TestService_Generate(t *testing.T) {
	t.Run("submits an asynchronous job", func(t *testing.T) {
		repo := newMockStoryRepo()
		svc := newTestService(t, repo, persistingRunner(repo))

		userID := uuid.New()
		job, err := svc.Generate(context.Background(), userID, validRequest())
		require.NoError(t, err)
		assert.Equal(t, userID, job.UserID)
		assert.NotEqual(t, uuid.Nil, job.RequestID)

		time.Sleep(100 * time.Millisecond)

		status, err := svc.Status(context.Background(), userID, job.RequestID)
		require.NoError(t, err)
		assert.Equal(t, task.StatusCompleted, status.Status)
		assert.NotEmpty(t, status.Result["story_id"])
	})

	t.Run("rejects an invalid request without submitting", func(t *testing.T) {
		repo := newMockStoryRepo()
		svc := newTestService(t, repo, persistingRunner(repo))

		req := validRequest()
		req.Theme = ""

		_, err := svc.Generate(context.Background(), uuid.New(), req)
		require.Error(t, err)
	})
}

func TestService_GenerateSync(t *testing.T) {
	t.Run("returns the persisted story", func(t *testing.T) {
		repo := newMockStoryRepo()
		svc := newTestService(t, repo, persistingRunner(repo))

		userID := uuid.New()
		s, err := svc.GenerateSync(context.Background(), userID, validRequest())
		require.NoError(t, err)
		assert.Equal(t, userID, s.UserID)
		assert.Equal(t, "A Test Story", s.Title)
	})

	t.Run("propagates runner failure", func(t *testing.T) {
		repo := newMockStoryRepo()
		failing := func(_ context.Context, _ *task.Job, _ any, _ func(float64)) (map[string]any, error) {
			return nil, errors.New("pipeline exploded")
		}
		svc := newTestService(t, repo, failing)

		_, err := svc.GenerateSync(context.Background(), uuid.New(), validRequest())
		require.Error(t, err)
	})
}

func TestService_Status_OwnershipCheck(t *testing.T) {
	repo := newMockStoryRepo()
	svc := newTestService(t, repo, persistingRunner(repo))

	owner := uuid.New()
	job, err := svc.Generate(context.Background(), owner, validRequest())
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)

	_, err = svc.Status(context.Background(), uuid.New(), job.RequestID)
	assert.ErrorIs(t, err, task.ErrJobNotFound)
}

func TestService_Images(t *testing.T) {
	repo := newMockStoryRepo()
	svc := newTestService(t, repo, persistingRunner(repo))

	owner := uuid.New()
	storyID := uuid.New()
	require.NoError(t, repo.CreateStory(context.Background(), &Story{ID: storyID, UserID: owner}))
	require.NoError(t, repo.CreateImages(context.Background(), []*StoryImage{{StoryID: storyID, URL: "/images/1.png", SequenceIndex: 1}}))

	t.Run("owner sees image rows", func(t *testing.T) {
		images, err := svc.Images(context.Background(), owner, storyID)
		require.NoError(t, err)
		require.Len(t, images, 1)
		assert.Equal(t, "/images/1.png", images[0].URL)
	})

	t.Run("other users get not found", func(t *testing.T) {
		_, err := svc.Images(context.Background(), uuid.New(), storyID)
		assert.ErrorIs(t, err, ErrStoryNotFound)
	})
}
