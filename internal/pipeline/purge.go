package pipeline

import (
	"context"

	"github.com/joshua-paul-1/fintrackr/internal/domain"
)

// RunDeleter is implemented by auditors that can forget a user's parsing runs.
type RunDeleter interface {
	DeleteRuns(ctx context.Context, ownerID string) error
}

// PurgeResult counts what Purge removed.
type PurgeResult struct {
	DeletedDocuments    int   `json:"deletedPdfs"`
	DeletedTransactions int64 `json:"deletedTransactions"`
}

// Purge deletes every stored document, blob and ledger of ownerID. Other
// users' data is untouched.
func (s *Service) Purge(ctx context.Context, ownerID string) (PurgeResult, error) {
	if ownerID == "" {
		return PurgeResult{}, domain.Validation("User ID is required.")
	}
	log := s.log.With().Str("sub", ownerID).Logger()

	docs, err := s.documents.DeleteDocuments(ctx, ownerID)
	if err != nil {
		return PurgeResult{}, domain.Upstream("Error deleting transactions and PDFs", err)
	}

	for _, doc := range docs {
		if err := s.blobs.Delete(ctx, doc.BlobKey); err != nil {
			// metadata is already gone
			log.Warn().Err(err).Str("document_id", doc.ID).Msg("Failed to delete statement blob")
		}
	}

	deleted, err := s.transactions.DeleteLedger(ctx, ownerID)
	if err != nil {
		return PurgeResult{}, domain.Upstream("Error deleting transactions and PDFs", err)
	}

	if d, ok := s.auditor.(RunDeleter); ok {
		if err := d.DeleteRuns(ctx, ownerID); err != nil {
			log.Warn().Err(err).Msg("Failed to delete parsing runs")
		}
	}

	log.Info().
		Int("deleted_pdfs", len(docs)).
		Int64("deleted_transactions", deleted).
		Msg("User data purged")

	return PurgeResult{DeletedDocuments: len(docs), DeletedTransactions: deleted}, nil
}
