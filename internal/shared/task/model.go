package task

import (
	"maps"
	"time"

	"github.com/google/uuid"
)

// Status represents the status of a generation job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Job represents one asynchronous story-generation run. The request ID
// doubles as the job's primary key and is what clients poll with.
type Job struct {
	RequestID   uuid.UUID      `json:"request_id" gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID      `json:"user_id" gorm:"type:uuid;not null;index"`
	Status      Status         `json:"status" gorm:"not null"`
	Progress    float64        `json:"progress" gorm:"default:0"`
	Result      map[string]any `json:"result,omitempty" gorm:"type:jsonb;serializer:json"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}

// TableName returns the table name for Job.
func (Job) TableName() string {
	return "generation_jobs"
}

// Clone returns a copy of the job that is safe to hand to code running
// outside the worker goroutine.
func (j *Job) Clone() *Job {
	c := *j
	if j.Result != nil {
		c.Result = maps.Clone(j.Result)
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

// IsTerminal checks if the job is in a terminal state.
func (j *Job) IsTerminal() bool {
	return j.Status == StatusCompleted || j.Status == StatusFailed
}

// Filter represents job filter options.
type Filter struct {
	UserID *uuid.UUID
	Status *Status
	Limit  int
	Offset int
}
