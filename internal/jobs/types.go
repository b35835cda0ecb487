package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeExtractStatement represents a statement extraction job.
	JobTypeExtractStatement JobType = "extract_statement"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting for a worker.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the extractor is running.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the extractor produced a payload.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the extraction failed. Jobs are never retried.
	JobStatusFailed JobStatus = "failed"
)

// ErrQueueClosed is returned when publishing to or waiting on a stopped queue.
var ErrQueueClosed = errors.New("queue is closed")

// ErrJobAbandoned is recorded for a job whose requester stopped waiting
// before a worker picked it up.
var ErrJobAbandoned = errors.New("job abandoned by requester")

// ExtractJob is one run of the statement extractor for a stored document.
type ExtractJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// OwnerID is the subject of the user who owns the document.
	OwnerID string `json:"sub"`

	// DocumentID is the stored document being extracted.
	DocumentID string `json:"document_id"`

	// Status is the current status of the job.
	Status JobStatus `json:"status"`

	// CreatedAt is when the job was published.
	CreatedAt time.Time `json:"created_at"`

	// StartedAt is when a worker picked the job up.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt is when the job completed (success or failure).
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains error details if the job failed.
	Error string `json:"error,omitempty"`

	// FilePath is the staged copy of the document handed to the extractor.
	FilePath string `json:"-"`

	// Password unlocks an encrypted statement. Never persisted.
	Password string `json:"-"`

	output    map[string]interface{}
	err       error
	done      chan struct{}
	abandoned *atomic.Bool
}

// NewExtractJob creates a pending job ready to publish.
func NewExtractJob(ownerID, documentID, filePath, password string) *ExtractJob {
	return &ExtractJob{
		OwnerID:    ownerID,
		DocumentID: documentID,
		FilePath:   filePath,
		Password:   password,
		Status:     JobStatusPending,
		done:       make(chan struct{}),
		abandoned:  new(atomic.Bool),
	}
}

// GetID returns the unique job identifier.
func (j *ExtractJob) GetID() string {
	return j.JobID
}

// GetType returns the job type.
func (j *ExtractJob) GetType() JobType {
	return JobTypeExtractStatement
}

// GetStatus returns the current job status.
func (j *ExtractJob) GetStatus() JobStatus {
	return j.Status
}

// Complete records the outcome and releases waiters. It must be called once.
func (j *ExtractJob) Complete(output map[string]interface{}, err error) {
	j.output = output
	j.err = err
	if j.done != nil {
		close(j.done)
	}
}

// Wait blocks until the job completes or ctx is done.
func (j *ExtractJob) Wait(ctx context.Context) (map[string]interface{}, error) {
	if j.done == nil {
		return nil, errors.New("job was not created with NewExtractJob")
	}
	select {
	case <-j.done:
		return j.output, j.err
	case <-ctx.Done():
		j.Abandon()
		return nil, ctx.Err()
	}
}

// Abandon marks the job as no longer wanted. Workers skip abandoned jobs
// they have not started.
func (j *ExtractJob) Abandon() {
	if j.abandoned != nil {
		j.abandoned.Store(true)
	}
}

// Abandoned reports whether Abandon was called.
func (j *ExtractJob) Abandoned() bool {
	return j.abandoned != nil && j.abandoned.Load()
}

// Publisher enqueues extraction jobs.
type Publisher interface {
	// PublishExtract enqueues a job for the worker pool.
	PublishExtract(ctx context.Context, job *ExtractJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer runs published jobs through a handler.
type Consumer interface {
	// Start begins consuming jobs from the queue.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// Runner publishes a job and waits for its outcome.
type Runner interface {
	Run(ctx context.Context, job *ExtractJob) (map[string]interface{}, error)
}

// JobHandler processes a job and returns the raw extractor payload.
type JobHandler func(ctx context.Context, job *ExtractJob) (map[string]interface{}, error)

// JobStore records job state for the jobs API.
type JobStore interface {
	// SaveJob saves or updates a job's state.
	SaveJob(ctx context.Context, job *ExtractJob) error

	// GetJob retrieves a job by ID.
	GetJob(ctx context.Context, jobID string) (*ExtractJob, error)

	// ListJobs retrieves jobs with optional filtering, newest first.
	ListJobs(ctx context.Context, filter JobFilter) ([]*ExtractJob, error)
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	// OwnerID restricts results to one user's jobs.
	OwnerID string

	// DocumentID filters jobs by document ID.
	DocumentID string

	// Status filters jobs by status.
	Status JobStatus

	// Limit limits the number of results.
	Limit int

	// Offset for pagination.
	Offset int
}
