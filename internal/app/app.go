// Package app opens the backends selected by configuration. It is shared by
// the API server and the operator CLI.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/joshua-paul-1/fintrackr/internal/config"
	"github.com/joshua-paul-1/fintrackr/internal/domain"
	infraBQ "github.com/joshua-paul-1/fintrackr/internal/infra/bigquery"
	"github.com/joshua-paul-1/fintrackr/internal/repository/memory"
	"github.com/joshua-paul-1/fintrackr/internal/repository/postgres"
	"github.com/joshua-paul-1/fintrackr/internal/storage"
	"github.com/joshua-paul-1/fintrackr/internal/storage/gcs"
	blobmemory "github.com/joshua-paul-1/fintrackr/internal/storage/memory"
	"github.com/joshua-paul-1/fintrackr/internal/storage/minio"
)

// Stores holds the four persistent collections.
type Stores struct {
	Documents    domain.DocumentStore
	Transactions domain.TransactionStore
	Budgets      domain.BudgetStore
	Friends      domain.FriendStore
	// Persistent is false for the in-memory stores.
	Persistent bool

	close func() error
}

func (s *Stores) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// OpenStores connects to PostgreSQL, or falls back to in-memory stores when
// no DSN is configured.
func OpenStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Stores, error) {
	if cfg.Database.DSN == "" {
		log.Warn().Msg("DB_DSN is not set - using in-memory stores, data is lost on restart")
		return &Stores{
			Documents:    memory.NewDocumentStore(),
			Transactions: memory.NewTransactionStore(),
			Budgets:      memory.NewBudgetStore(),
			Friends:      memory.NewFriendStore(),
		}, nil
	}

	conn, err := postgres.NewConnection(ctx, cfg.Database.DSN, cfg.Database.MaxConns)
	if err != nil {
		return nil, err
	}

	return &Stores{
		Documents:    postgres.NewDocumentRepository(conn),
		Transactions: postgres.NewTransactionRepository(conn),
		Budgets:      postgres.NewBudgetRepository(conn),
		Friends:      postgres.NewFriendRepository(conn),
		Persistent:   true,
		close:        conn.Close,
	}, nil
}

// OpenBlobs returns the configured blob store and its close function.
func OpenBlobs(ctx context.Context, cfg *config.Config) (storage.BlobStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Storage.Backend {
	case config.BackendGCS:
		store, err := gcs.New(ctx, cfg.Storage.Bucket, cfg.Google.CredentialsFile)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case config.BackendMinio:
		client, err := minio.Dial(ctx, minio.Options{
			Endpoint:  cfg.Storage.MinioEndpoint,
			AccessKey: cfg.Storage.MinioAccessKey,
			SecretKey: cfg.Storage.MinioSecretKey,
			UseSSL:    cfg.Storage.MinioUseSSL,
			Bucket:    cfg.Storage.Bucket,
		})
		if err != nil {
			return nil, nil, err
		}
		return client, noop, nil
	case config.BackendMemory:
		return blobmemory.New(), noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// OpenRecorder returns the parsing run recorder, or nil when auditing is off.
func OpenRecorder(ctx context.Context, cfg *config.Config) (*infraBQ.Recorder, error) {
	if cfg.Audit.ProjectID == "" {
		return nil, nil
	}
	return infraBQ.NewRecorder(ctx, cfg.Audit.ProjectID, cfg.Audit.Dataset, cfg.Extractor.Command, cfg.Google.CredentialsFile)
}
