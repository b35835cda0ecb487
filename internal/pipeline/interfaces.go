package pipeline

import (
	"context"

	"github.com/joshua-paul-1/fintrackr/internal/extractor"
	"github.com/joshua-paul-1/fintrackr/internal/jobs"
)

// Auditor records one parsing run per extraction.
// infra/bigquery.Recorder is the production implementation.
type Auditor interface {
	// StartRun opens a run and returns its id.
	StartRun(ctx context.Context, ownerID, documentID string) (string, error)
	// FinishRun closes a run. It logs its own failures.
	FinishRun(ctx context.Context, runID string, added int, runErr error)
}

// NoopAuditor discards parsing runs.
type NoopAuditor struct{}

func (NoopAuditor) StartRun(ctx context.Context, ownerID, documentID string) (string, error) {
	return "", nil
}

func (NoopAuditor) FinishRun(ctx context.Context, runID string, added int, runErr error) {}

// ExtractHandler adapts an extractor to the worker pool.
func ExtractHandler(ext extractor.Extractor) jobs.JobHandler {
	return func(ctx context.Context, job *jobs.ExtractJob) (map[string]interface{}, error) {
		return ext.Extract(ctx, extractor.Request{
			OwnerID:    job.OwnerID,
			DocumentID: job.DocumentID,
			Password:   job.Password,
			FilePath:   job.FilePath,
		})
	}
}
