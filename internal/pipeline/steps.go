package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/joshua-paul-1/fintrackr/internal/domain"
	"github.com/joshua-paul-1/fintrackr/internal/jobs"
	"github.com/joshua-paul-1/fintrackr/internal/logger"
	"github.com/joshua-paul-1/fintrackr/internal/storage"
)

// PipelineStep represents a single step in the ingestion pipeline.
type PipelineStep interface {
	Execute(ctx context.Context, state *PipelineState) error
}

// PipelineState holds the shared state across all pipeline steps.
type PipelineState struct {
	OwnerID      string
	Filename     string
	Password     string
	PDFBytes     []byte
	Document     *domain.Document
	ParsingRunID string
	FilePath     string
	JobID        string
	RawOutput    map[string]interface{}
	Transactions []domain.Transaction
	Appended     domain.AppendResult
}

// StoreDocumentStep writes the raw bytes to the blob store and records the document.
type StoreDocumentStep struct {
	blobs     storage.BlobStore
	documents domain.DocumentStore
	now       func() time.Time
}

func (s *StoreDocumentStep) Execute(ctx context.Context, state *PipelineState) error {
	id := uuid.NewString()
	doc := &domain.Document{
		ID:         id,
		OwnerID:    state.OwnerID,
		Filename:   state.Filename,
		BlobKey:    storage.ObjectKey(state.OwnerID, id),
		Size:       int64(len(state.PDFBytes)),
		Checksum:   storage.Checksum(state.PDFBytes),
		UploadedAt: s.now().UTC(),
	}

	if err := s.blobs.Put(ctx, doc.BlobKey, state.PDFBytes, DefaultContentType); err != nil {
		return domain.Upstream("Error storing PDF", err)
	}
	if err := s.documents.CreateDocument(ctx, doc); err != nil {
		_ = s.blobs.Delete(ctx, doc.BlobKey) // orphaned blob

		return domain.Upstream("Error storing PDF", err)
	}

	state.Document = doc
	return nil
}

// LoadDocumentStep reads an already stored document owned by the caller.
type LoadDocumentStep struct {
	blobs      storage.BlobStore
	documents  domain.DocumentStore
	documentID string
}

func (s *LoadDocumentStep) Execute(ctx context.Context, state *PipelineState) error {
	doc, err := s.documents.GetDocument(ctx, state.OwnerID, s.documentID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NotFound("PDF not found")
	}
	if err != nil {
		return domain.Upstream("Error loading PDF", err)
	}

	data, err := s.blobs.Get(ctx, doc.BlobKey)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NotFound("PDF not found")
	}
	if err != nil {
		return domain.Upstream("Error loading PDF", err)
	}

	state.Document = doc
	state.PDFBytes = data
	return nil
}

// StartRunStep opens an audit record for the extraction.
type StartRunStep struct {
	auditor Auditor
}

func (s *StartRunStep) Execute(ctx context.Context, state *PipelineState) error {
	runID, err := s.auditor.StartRun(ctx, state.OwnerID, state.Document.ID)
	if err != nil {
		logger.FromContext(ctx).Warn().
			Err(err).
			Str("document_id", state.Document.ID).
			Msg("Failed to record parsing run")
		return nil
	}
	state.ParsingRunID = runID
	return nil
}

// StageFileStep copies the document to a temporary file for the extractor.
// The caller removes state.FilePath once the pipeline returns.
type StageFileStep struct {
	dir string
}

func (s *StageFileStep) Execute(ctx context.Context, state *PipelineState) error {
	f, err := os.CreateTemp(s.dir, tempFilePattern)
	if err != nil {
		return domain.Upstream("Error staging PDF", err)
	}
	state.FilePath = f.Name()

	if _, err := f.Write(state.PDFBytes); err != nil {
		_ = f.Close()
		return domain.Upstream("Error staging PDF", err)
	}
	if err := f.Close(); err != nil {
		return domain.Upstream("Error staging PDF", err)
	}
	return nil
}

// ExtractStep runs the extractor through the worker pool.
type ExtractStep struct {
	runner jobs.Runner
}

func (s *ExtractStep) Execute(ctx context.Context, state *PipelineState) error {
	job := jobs.NewExtractJob(state.OwnerID, state.Document.ID, state.FilePath, state.Password)
	out, err := s.runner.Run(ctx, job)
	state.JobID = job.JobID
	if err != nil {
		if domain.KindOf(err) == domain.KindUpstream {
			return domain.ParseFailure("PDF parsing failed", err)
		}
		return err
	}
	state.RawOutput = out
	return nil
}

// NormalizeStep converts the raw extractor payload into transactions.
type NormalizeStep struct {
	now func() time.Time
}

func (s *NormalizeStep) Execute(ctx context.Context, state *PipelineState) error {
	txs, err := transformExtractorOutput(state.RawOutput, s.now().UTC())
	if err != nil {
		return domain.ParseFailure("PDF parsing failed", err)
	}
	state.Transactions = txs
	return nil
}

// AppendStep appends the normalized transactions to the owner's ledger in one
// atomic write.
type AppendStep struct {
	transactions domain.TransactionStore
}

func (s *AppendStep) Execute(ctx context.Context, state *PipelineState) error {
	if len(state.Transactions) == 0 {
		return nil
	}

	res, err := s.transactions.AppendTransactions(ctx, state.OwnerID, state.Transactions)
	if err != nil {
		return domain.Upstream("Error uploading transactions", err)
	}
	state.Appended = res
	return nil
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []PipelineStep
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...PipelineStep) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps in the pipeline sequentially.
func (p *Pipeline) Execute(ctx context.Context, state *PipelineState) error {
	for i, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d failed: %w", i+1, err)
		}
	}
	return nil
}
