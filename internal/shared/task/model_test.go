package task

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestJob_IsTerminal(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusPending, false},
		{StatusRunning, false},
		{StatusCompleted, true},
		{StatusFailed, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			job := &Job{Status: tt.status}
			assert.Equal(t, tt.want, job.IsTerminal())
		})
	}
}

func TestJob_Clone(t *testing.T) {
	now := time.Now()
	job := &Job{
		RequestID:   uuid.New(),
		UserID:      uuid.New(),
		Status:      StatusCompleted,
		Progress:    1.0,
		Result:      map[string]any{"story_id": "abc"},
		CompletedAt: &now,
	}

	clone := job.Clone()
	assert.Equal(t, job, clone)

	clone.Status = StatusFailed
	clone.Result["story_id"] = "xyz"
	*clone.CompletedAt = now.Add(time.Hour)

	assert.Equal(t, StatusCompleted, job.Status)
	assert.Equal(t, "abc", job.Result["story_id"])
	assert.Equal(t, now, *job.CompletedAt)
}
