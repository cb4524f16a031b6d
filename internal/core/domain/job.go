package domain

import "time"

// JobStatus is the lifecycle state of an ingestion job.
type JobStatus string

// Job states. A job moves from running to finished exactly once.
const (
	JobRunning  JobStatus = "running"
	JobFinished JobStatus = "finished"
)

// IngestionJob tracks one ingestion batch.
type IngestionJob struct {
	// ID is an opaque unique token.
	ID string `json:"id"`

	// Total is the file count at creation.
	Total int `json:"total"`

	// Processed is the number of files handled so far. It never decreases.
	Processed int `json:"processed"`

	// Status is running until Processed reaches Total.
	Status JobStatus `json:"status"`

	// StartedAt is when the job was created.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is nil until the job finishes.
	FinishedAt *time.Time `json:"finished_at"`
}

// Finished reports whether the job has completed.
func (j IngestionJob) Finished() bool {
	return j.Status == JobFinished
}
