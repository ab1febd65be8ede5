package task

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrJobNotFound = errors.New("job not found")
)

// Repository defines the interface for job data access.
type Repository interface {
	Create(ctx context.Context, job *Job) error
	Get(ctx context.Context, requestID uuid.UUID) (*Job, error)
	List(ctx context.Context, filter *Filter) ([]*Job, error)
	Update(ctx context.Context, job *Job) error
	UpdateProgress(ctx context.Context, requestID uuid.UUID, status Status, progress float64) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new job repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Create creates a new job.
func (r *repository) Create(ctx context.Context, job *Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// Get retrieves a job by request ID.
func (r *repository) Get(ctx context.Context, requestID uuid.UUID) (*Job, error) {
	var job Job
	err := r.db.WithContext(ctx).First(&job, "request_id = ?", requestID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &job, nil
}

// List lists jobs with optional filters.
func (r *repository) List(ctx context.Context, filter *Filter) ([]*Job, error) {
	var jobs []*Job
	query := r.db.WithContext(ctx).Order("created_at DESC")

	if filter != nil {
		if filter.UserID != nil {
			query = query.Where("user_id = ?", *filter.UserID)
		}
		if filter.Status != nil {
			query = query.Where("status = ?", *filter.Status)
		}
		if filter.Limit > 0 {
			query = query.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			query = query.Offset(filter.Offset)
		}
	}

	if err := query.Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

// Update updates a job.
func (r *repository) Update(ctx context.Context, job *Job) error {
	result := r.db.WithContext(ctx).Save(job)
	if result.Error != nil {
		return fmt.Errorf("update job: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrJobNotFound
	}
	return nil
}

// UpdateProgress updates only the status and progress of a job.
func (r *repository) UpdateProgress(ctx context.Context, requestID uuid.UUID, status Status, progress float64) error {
	result := r.db.WithContext(ctx).
		Model(&Job{}).
		Where("request_id = ?", requestID).
		Updates(map[string]any{
			"status":   status,
			"progress": progress,
		})
	if result.Error != nil {
		return fmt.Errorf("update job progress: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrJobNotFound
	}
	return nil
}
