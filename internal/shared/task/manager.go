package task

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lullaby-ai/server/internal/shared/metrics"
)

// Runner executes one generation job. The input is the payload the job was
// submitted with. Progress is reported through onProgress (values in [0,1])
// and the job result is returned on success.
type Runner func(ctx context.Context, job *Job, input any, onProgress func(float64)) (map[string]any, error)

// Manager runs generation jobs in the background and tracks their status.
type Manager struct {
	mu sync.RWMutex

	repo     Repository
	cache    StatusCache
	registry *FlightRegistry
	runner   Runner
	logger   *zap.Logger
	metrics  *metrics.Metrics

	// Concurrency control
	semaphore chan struct{}

	// Status subscriptions, keyed by request ID and subscriber token.
	subscribers map[uuid.UUID]map[int]func(*Job)
	nextSubID   int

	// Lifecycle
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// ManagerConfig contains manager configuration.
type ManagerConfig struct {
	MaxConcurrent int
}

// DefaultManagerConfig returns the default manager configuration.
func DefaultManagerConfig() *ManagerConfig {
	return &ManagerConfig{
		MaxConcurrent: 10,
	}
}

// NewManager creates a new job manager. The cache and metrics are optional.
func NewManager(repo Repository, runner Runner, cache StatusCache, m *metrics.Metrics, logger *zap.Logger, config *ManagerConfig) *Manager {
	if config == nil {
		config = DefaultManagerConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Manager{
		repo:        repo,
		cache:       cache,
		registry:    NewFlightRegistry(),
		runner:      runner,
		logger:      logger,
		metrics:     m,
		semaphore:   make(chan struct{}, config.MaxConcurrent),
		subscribers: make(map[uuid.UUID]map[int]func(*Job)),
		stopCh:      make(chan struct{}),
	}
}

// Stop waits for in-flight jobs to finish.
func (m *Manager) Stop() {
	close(m.stopCh)
	m.wg.Wait()
}

// Submit creates a new job for the user and starts executing it in the
// background. Any previous in-flight job of the same user is superseded:
// its subscribers stop being notified, but the job itself runs to completion.
func (m *Manager) Submit(ctx context.Context, userID uuid.UUID, input any) (*Job, error) {
	job := &Job{
		RequestID: uuid.New(),
		UserID:    userID,
		Status:    StatusPending,
		Progress:  0,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := m.repo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	deliveryCtx := m.registry.Supersede(userID, job.RequestID)

	m.wg.Add(1)
	go m.executeJob(job, input, deliveryCtx)

	// The worker goroutine mutates job as it runs; callers get a snapshot.
	return job.Clone(), nil
}

// Get retrieves a job by request ID, serving from the status cache when
// possible.
func (m *Manager) Get(ctx context.Context, requestID uuid.UUID) (*Job, error) {
	if m.cache != nil {
		if job, ok := m.cache.Get(ctx, requestID); ok {
			return job, nil
		}
	}

	job, err := m.repo.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if m.cache != nil {
		m.cache.Set(ctx, job)
	}
	return job, nil
}

// List lists jobs for a user.
func (m *Manager) List(ctx context.Context, userID uuid.UUID, filter *Filter) ([]*Job, error) {
	if filter == nil {
		filter = &Filter{}
	}
	filter.UserID = &userID
	return m.repo.List(ctx, filter)
}

// OnUpdate subscribes to status updates for a job. The returned function
// unsubscribes.
func (m *Manager) OnUpdate(requestID uuid.UUID, callback func(*Job)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.subscribers[requestID] == nil {
		m.subscribers[requestID] = make(map[int]func(*Job))
	}
	id := m.nextSubID
	m.nextSubID++
	m.subscribers[requestID][id] = callback

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subscribers[requestID], id)
		if len(m.subscribers[requestID]) == 0 {
			delete(m.subscribers, requestID)
		}
	}
}

// executeJob runs a single job through the runner.
func (m *Manager) executeJob(job *Job, input any, deliveryCtx context.Context) {
	defer m.wg.Done()

	// Acquire semaphore
	select {
	case <-m.stopCh:
		return
	case m.semaphore <- struct{}{}:
		defer func() { <-m.semaphore }()
	}

	// The job runs detached from the submitting request; superseding a job
	// cancels delivery, not execution.
	ctx := context.Background()

	job.Status = StatusRunning
	job.UpdatedAt = time.Now()
	if err := m.repo.Update(ctx, job); err != nil {
		m.logger.Error("mark job running", zap.String("request_id", job.RequestID.String()), zap.Error(err))
		return
	}
	m.publish(job, deliveryCtx)

	onProgress := func(progress float64) {
		// Progress is monotonic within a run.
		if progress < job.Progress {
			return
		}
		job.Progress = progress
		job.UpdatedAt = time.Now()
		if err := m.repo.UpdateProgress(ctx, job.RequestID, job.Status, progress); err != nil {
			m.logger.Warn("update job progress", zap.String("request_id", job.RequestID.String()), zap.Error(err))
		}
		m.publish(job, deliveryCtx)
	}

	result, err := m.runner(ctx, job, input, onProgress)
	if err != nil {
		m.failJob(ctx, job, deliveryCtx, err)
		return
	}

	job.Status = StatusCompleted
	job.Progress = 1.0
	job.Result = result
	now := time.Now()
	job.CompletedAt = &now
	job.UpdatedAt = now

	if err := m.repo.Update(ctx, job); err != nil {
		m.logger.Error("mark job completed", zap.String("request_id", job.RequestID.String()), zap.Error(err))
		return
	}
	if m.metrics != nil {
		m.metrics.RecordJob(string(StatusCompleted))
	}
	m.publish(job, deliveryCtx)
	m.registry.Finish(job.UserID, job.RequestID)
}

// failJob marks a job as failed.
func (m *Manager) failJob(ctx context.Context, job *Job, deliveryCtx context.Context, cause error) {
	job.Status = StatusFailed
	job.Error = cause.Error()
	now := time.Now()
	job.CompletedAt = &now
	job.UpdatedAt = now

	if err := m.repo.Update(ctx, job); err != nil {
		m.logger.Error("mark job failed", zap.String("request_id", job.RequestID.String()), zap.Error(err))
	}
	if m.metrics != nil {
		m.metrics.RecordJob(string(StatusFailed))
	}
	m.logger.Warn("generation job failed",
		zap.String("request_id", job.RequestID.String()),
		zap.String("user_id", job.UserID.String()),
		zap.Error(cause),
	)
	m.publish(job, deliveryCtx)
	m.registry.Finish(job.UserID, job.RequestID)
}

// publish refreshes the status cache and notifies subscribers, unless the
// job's delivery handle was superseded.
func (m *Manager) publish(job *Job, deliveryCtx context.Context) {
	snapshot := job.Clone()
	if m.cache != nil {
		m.cache.Set(context.Background(), snapshot)
	}

	select {
	case <-deliveryCtx.Done():
		return
	default:
	}

	m.mu.RLock()
	subs := make([]func(*Job), 0, len(m.subscribers[job.RequestID]))
	for _, sub := range m.subscribers[job.RequestID] {
		subs = append(subs, sub)
	}
	m.mu.RUnlock()

	for _, sub := range subs {
		sub(snapshot)
	}
}
