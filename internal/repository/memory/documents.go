package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/joshua-paul-1/fintrackr/internal/domain"
)

// DocumentStore is an in-memory domain.DocumentStore.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]domain.Document
}

// NewDocumentStore creates an empty store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]domain.Document)}
}

// CreateDocument implements domain.DocumentStore.
func (s *DocumentStore) CreateDocument(ctx context.Context, doc *domain.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("document ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.docs[doc.ID]; exists {
		return fmt.Errorf("document %s already exists", doc.ID)
	}
	s.docs[doc.ID] = *doc
	return nil
}

// GetDocument implements domain.DocumentStore.
func (s *DocumentStore) GetDocument(ctx context.Context, ownerID, documentID string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[documentID]
	if !ok || doc.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// DeleteDocuments implements domain.DocumentStore.
func (s *DocumentStore) DeleteDocuments(ctx context.Context, ownerID string) ([]domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted []domain.Document
	for id, doc := range s.docs {
		if doc.OwnerID == ownerID {
			deleted = append(deleted, doc)
			delete(s.docs, id)
		}
	}
	sort.Slice(deleted, func(i, j int) bool {
		return deleted[i].UploadedAt.Before(deleted[j].UploadedAt)
	})
	return deleted, nil
}

var _ domain.DocumentStore = (*DocumentStore)(nil)
