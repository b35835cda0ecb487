package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"

	"github.com/joshua-paul-1/fintrackr/internal/domain"
)

var _ domain.DocumentStore = (*DocumentRepository)(nil)

type DocumentRepository struct {
	db *Connection
}

func NewDocumentRepository(db *Connection) *DocumentRepository {
	return &DocumentRepository{
		db: db,
	}
}

func (r *DocumentRepository) CreateDocument(ctx context.Context, doc *domain.Document) error {
	query := `INSERT INTO pdf_files (id, sub, filename, blob_key, size, checksum, upload_date)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		doc.ID, doc.OwnerID, doc.Filename, doc.BlobKey, doc.Size, int64(doc.Checksum), doc.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}

	return nil
}

func (r *DocumentRepository) GetDocument(ctx context.Context, ownerID, documentID string) (*domain.Document, error) {
	query := `SELECT id, sub, filename, blob_key, size, checksum, upload_date
			  FROM pdf_files WHERE id = $1 AND sub = $2`

	doc, err := scanDocument(r.db.QueryRow(ctx, query, documentID, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	return &doc, nil
}

func (r *DocumentRepository) DeleteDocuments(ctx context.Context, ownerID string) ([]domain.Document, error) {
	query := `DELETE FROM pdf_files WHERE sub = $1
			  RETURNING id, sub, filename, blob_key, size, checksum, upload_date`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete documents: %w", err)
	}
	defer rows.Close()

	var deleted []domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deleted document: %w", err)
		}
		deleted = append(deleted, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to delete documents: %w", err)
	}

	sort.Slice(deleted, func(i, j int) bool {
		return deleted[i].UploadedAt.Before(deleted[j].UploadedAt)
	})
	return deleted, nil
}

func scanDocument(row pgx.Row) (domain.Document, error) {
	var (
		doc      domain.Document
		checksum int64
	)
	err := row.Scan(&doc.ID, &doc.OwnerID, &doc.Filename, &doc.BlobKey, &doc.Size, &checksum, &doc.UploadedAt)
	if err != nil {
		return domain.Document{}, err
	}
	doc.Checksum = uint32(checksum)
	return doc, nil
}
