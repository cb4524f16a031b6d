package services

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/hybridq/internal/core/domain"
)

// JobTracker records the progress of ingestion batches.
// All methods are safe for concurrent use; snapshots are copies.
type JobTracker struct {
	mu   sync.RWMutex
	jobs map[string]*domain.IngestionJob
	now  func() time.Time
}

// NewJobTracker creates an empty tracker.
func NewJobTracker() *JobTracker {
	return &JobTracker{
		jobs: make(map[string]*domain.IngestionJob),
		now:  time.Now,
	}
}

// Create allocates a running job for total files and returns its id.
// A batch with no files is finished immediately.
func (t *JobTracker) Create(total int) string {
	if total < 0 {
		total = 0
	}
	id := uuid.New().String()
	now := t.now()

	job := &domain.IngestionJob{
		ID:        id,
		Total:     total,
		Status:    domain.JobRunning,
		StartedAt: now,
	}
	if total == 0 {
		job.Status = domain.JobFinished
		job.FinishedAt = &now
	}

	t.mu.Lock()
	t.jobs[id] = job
	t.mu.Unlock()
	return id
}

// Advance adds delta to the processed count and finishes the job once
// processed reaches total. Non-positive deltas are ignored. It returns the
// updated snapshot, or false if the id is unknown.
func (t *JobTracker) Advance(id string, delta int) (domain.IngestionJob, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[id]
	if !ok {
		return domain.IngestionJob{}, false
	}
	if delta > 0 {
		job.Processed += delta
	}
	if job.Status == domain.JobRunning && job.Processed >= job.Total {
		now := t.now()
		job.Status = domain.JobFinished
		job.FinishedAt = &now
	}
	return snapshot(job), true
}

// Status returns a snapshot of the job, or false if the id is unknown.
func (t *JobTracker) Status(id string) (domain.IngestionJob, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	job, ok := t.jobs[id]
	if !ok {
		return domain.IngestionJob{}, false
	}
	return snapshot(job), true
}

// Len returns the number of tracked jobs.
func (t *JobTracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.jobs)
}

func snapshot(job *domain.IngestionJob) domain.IngestionJob {
	c := *job
	if job.FinishedAt != nil {
		at := *job.FinishedAt
		c.FinishedAt = &at
	}
	return c
}
