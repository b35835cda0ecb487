package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshua-paul-1/fintrackr/internal/domain"
)

type deletingAuditor struct {
	recordingAuditor
	deleted []string
	err     error
}

func (a *deletingAuditor) DeleteRuns(ctx context.Context, ownerID string) error {
	a.deleted = append(a.deleted, ownerID)
	return a.err
}

func TestPurge_RemovesOnlyOwnersData(t *testing.T) {
	f := newFixture(t, &fakeExtractor{out: successOutput(2)})
	auditor := &deletingAuditor{err: errors.New("bigquery unavailable")}
	f.svc.auditor = auditor
	ctx := context.Background()

	_, err := f.svc.Ingest(ctx, "sub-1", []byte("%PDF-1"), "a.pdf", "")
	require.NoError(t, err)
	_, err = f.svc.Ingest(ctx, "sub-1", []byte("%PDF-2"), "b.pdf", "")
	require.NoError(t, err)
	other, err := f.svc.Ingest(ctx, "sub-2", []byte("%PDF-3"), "c.pdf", "")
	require.NoError(t, err)

	res, err := f.svc.Purge(ctx, "sub-1")
	require.NoError(t, err, "audit cleanup failures are not fatal")
	assert.Equal(t, PurgeResult{DeletedDocuments: 2, DeletedTransactions: 1}, res)
	assert.Equal(t, []string{"sub-1"}, auditor.deleted)

	_, err = f.txs.GetLedger(ctx, "sub-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 1, f.blobs.Len())

	ledger, err := f.txs.GetLedger(ctx, "sub-2")
	require.NoError(t, err)
	assert.Len(t, ledger.Transactions, 2)
	_, err = f.docs.GetDocument(ctx, "sub-2", other.DocumentID)
	assert.NoError(t, err)
}

func TestPurge_NothingStored(t *testing.T) {
	f := newFixture(t, &fakeExtractor{})

	res, err := f.svc.Purge(context.Background(), "sub-1")
	require.NoError(t, err)
	assert.Equal(t, PurgeResult{}, res)
}

func TestPurge_RequiresOwner(t *testing.T) {
	f := newFixture(t, &fakeExtractor{})

	_, err := f.svc.Purge(context.Background(), "")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}
