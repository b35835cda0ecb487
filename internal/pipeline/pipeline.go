// Package pipeline turns uploaded statements into ledger entries: store the
// document, stage it, run the extractor, normalize and append.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/joshua-paul-1/fintrackr/internal/domain"
	"github.com/joshua-paul-1/fintrackr/internal/jobs"
	"github.com/joshua-paul-1/fintrackr/internal/logger"
	"github.com/joshua-paul-1/fintrackr/internal/storage"
)

// Result is the outcome of a successful ingestion.
type Result struct {
	Status            string `json:"status"`
	Message           string `json:"message"`
	Details           string `json:"details"`
	TransactionsAdded int    `json:"transactionsAdded"`
	DocumentID        string `json:"documentId"`
	JobID             string `json:"jobId,omitempty"`
}

// Service runs the ingestion and reprocessing pipelines.
type Service struct {
	blobs        storage.BlobStore
	documents    domain.DocumentStore
	transactions domain.TransactionStore
	runner       jobs.Runner
	auditor      Auditor
	log          zerolog.Logger
	tempDir      string
	now          func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithAuditor records parsing runs with a.
func WithAuditor(a Auditor) Option {
	return func(s *Service) { s.auditor = a }
}

// WithTempDir stages documents under dir instead of the OS default.
func WithTempDir(dir string) Option {
	return func(s *Service) { s.tempDir = dir }
}

// NewService creates the ingestion service.
func NewService(
	blobs storage.BlobStore,
	documents domain.DocumentStore,
	transactions domain.TransactionStore,
	runner jobs.Runner,
	log zerolog.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		blobs:        blobs,
		documents:    documents,
		transactions: transactions,
		runner:       runner,
		auditor:      NoopAuditor{},
		log:          log,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest stores a new statement for ownerID and appends its transactions.
func (s *Service) Ingest(ctx context.Context, ownerID string, pdfBytes []byte, filename, password string) (*Result, error) {
	if len(pdfBytes) == 0 {
		return nil, domain.Validation("No file uploaded.")
	}

	state := &PipelineState{
		OwnerID:  ownerID,
		Filename: filename,
		Password: password,
		PDFBytes: pdfBytes,
	}

	stored := NewPipeline(&StoreDocumentStep{blobs: s.blobs, documents: s.documents, now: s.now})
	if err := stored.Execute(ctx, state); err != nil {
		s.log.Error().Err(err).Str("sub", ownerID).Msg("Failed to store uploaded PDF")
		return nil, err
	}

	return s.process(ctx, state)
}

// Reprocess runs the extractor again over a stored document owned by ownerID.
func (s *Service) Reprocess(ctx context.Context, ownerID, documentID, password string) (*Result, error) {
	if ownerID == "" || documentID == "" {
		return nil, domain.Validation("User ID and PDF ID are required.")
	}

	state := &PipelineState{OwnerID: ownerID, Password: password}

	load := NewPipeline(&LoadDocumentStep{blobs: s.blobs, documents: s.documents, documentID: documentID})
	if err := load.Execute(ctx, state); err != nil {
		return nil, err
	}

	return s.process(ctx, state)
}

// process extracts a stored document and appends the result to the ledger.
func (s *Service) process(ctx context.Context, state *PipelineState) (res *Result, err error) {
	log := s.log.With().Str("sub", state.OwnerID).Str("document_id", state.Document.ID).Logger()
	ctx = logger.WithContext(ctx, log)

	defer func() {
		if state.FilePath == "" {
			return
		}
		if rmErr := os.Remove(state.FilePath); rmErr != nil && !os.IsNotExist(rmErr) {
			log.Warn().Err(rmErr).Str("path", state.FilePath).Msg("Failed to remove staged PDF")
		}
	}()

	p := NewPipeline(
		&StartRunStep{auditor: s.auditor},
		&StageFileStep{dir: s.tempDir},
		&ExtractStep{runner: s.runner},
		&NormalizeStep{now: s.now},
		&AppendStep{transactions: s.transactions},
	)

	err = p.Execute(ctx, state)
	if state.ParsingRunID != "" {
		s.auditor.FinishRun(ctx, state.ParsingRunID, state.Appended.Appended, err)
	}
	if err != nil {
		log.Error().Err(err).Str("job_id", state.JobID).Msg("Statement ingestion failed")
		return nil, err
	}

	res = &Result{
		Status:            "success",
		TransactionsAdded: state.Appended.Appended,
		DocumentID:        state.Document.ID,
		JobID:             state.JobID,
	}
	switch {
	case len(state.Transactions) == 0:
		res.Details = DetailsEmpty
		res.Message = "No transactions to upload."
	case state.Appended.Created:
		res.Details = DetailsCreated
		res.Message = fmt.Sprintf("Created new transaction document for user %s and uploaded %d transactions.", state.OwnerID, res.TransactionsAdded)
	default:
		res.Details = DetailsAppended
		res.Message = fmt.Sprintf("Appended %d transactions to existing document for user %s.", res.TransactionsAdded, state.OwnerID)
	}

	log.Info().
		Int("transactions_added", res.TransactionsAdded).
		Str("details", res.Details).
		Msg("Statement ingested")
	return res, nil
}

// IsPasswordError reports whether err asks the user to re-enter the PDF password.
func IsPasswordError(err error) bool {
	return domain.KindOf(err) == domain.KindIncorrectPassword
}

// SafeFilename strips any directory component from a client-supplied name.
func SafeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if name == "" || name == "." || name == ".." {
		return "statement.pdf"
	}
	return name
}
