package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/joshua-paul-1/fintrackr/internal/domain"
)

// FriendStore is an in-memory domain.FriendStore. Relations are kept in
// insertion order so listings are stable.
type FriendStore struct {
	mu        sync.RWMutex
	relations []domain.FriendRelation
}

// NewFriendStore creates an empty store.
func NewFriendStore() *FriendStore {
	return &FriendStore{}
}

func active(r domain.FriendRelation) bool {
	return r.Status == domain.RelationPending || r.Status == domain.RelationAccepted
}

// CreateRelation implements domain.FriendStore.
func (s *FriendStore) CreateRelation(ctx context.Context, rel *domain.FriendRelation) error {
	if rel.ID == "" {
		return fmt.Errorf("relation ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.relations {
		if r.SenderSub == rel.SenderSub && r.RecipientEmail == rel.RecipientEmail && active(r) {
			return domain.ErrDuplicateRequest
		}
	}
	s.relations = append(s.relations, *rel)
	return nil
}

// FindActiveRelation implements domain.FriendStore.
func (s *FriendStore) FindActiveRelation(ctx context.Context, senderSub, recipientEmail string) (*domain.FriendRelation, error) {
	return s.first(func(r domain.FriendRelation) bool {
		return r.SenderSub == senderSub && r.RecipientEmail == recipientEmail && active(r)
	})
}

// ListReceivedPending implements domain.FriendStore.
func (s *FriendStore) ListReceivedPending(ctx context.Context, recipientEmail string) ([]domain.FriendRelation, error) {
	return s.filter(func(r domain.FriendRelation) bool {
		return r.RecipientEmail == recipientEmail && r.Status == domain.RelationPending
	}), nil
}

// ListSentPending implements domain.FriendStore.
func (s *FriendStore) ListSentPending(ctx context.Context, senderSub string) ([]domain.FriendRelation, error) {
	return s.filter(func(r domain.FriendRelation) bool {
		return r.SenderSub == senderSub && r.Status == domain.RelationPending
	}), nil
}

// ListAccepted implements domain.FriendStore.
func (s *FriendStore) ListAccepted(ctx context.Context, sub, email string) ([]domain.FriendRelation, error) {
	return s.filter(func(r domain.FriendRelation) bool {
		return r.Status == domain.RelationAccepted && (r.SenderSub == sub || r.RecipientEmail == email)
	}), nil
}

// FindAccepted implements domain.FriendStore.
func (s *FriendStore) FindAccepted(ctx context.Context, q domain.RelationQuery) (*domain.FriendRelation, error) {
	return s.first(func(r domain.FriendRelation) bool {
		if r.Status != domain.RelationAccepted {
			return false
		}
		if q.SenderEmail != "" && r.SenderEmail != q.SenderEmail {
			return false
		}
		if q.RecipientEmail != "" && r.RecipientEmail != q.RecipientEmail {
			return false
		}
		return true
	})
}

// AcceptRelation implements domain.FriendStore.
func (s *FriendStore) AcceptRelation(ctx context.Context, id, recipientEmail, recipientSub string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, r := range s.relations {
		if r.ID == id && r.RecipientEmail == recipientEmail && r.Status == domain.RelationPending {
			acceptedAt := at
			s.relations[i].Status = domain.RelationAccepted
			s.relations[i].AcceptedAt = &acceptedAt
			s.relations[i].RecipientSub = recipientSub
			return nil
		}
	}
	return domain.ErrNotFound
}

// DeletePendingRelation implements domain.FriendStore.
func (s *FriendStore) DeletePendingRelation(ctx context.Context, id, recipientEmail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, r := range s.relations {
		if r.ID == id && r.RecipientEmail == recipientEmail && r.Status == domain.RelationPending {
			s.relations = append(s.relations[:i], s.relations[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *FriendStore) first(match func(domain.FriendRelation) bool) (*domain.FriendRelation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.relations {
		if match(r) {
			cp := r
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *FriendStore) filter(match func(domain.FriendRelation) bool) []domain.FriendRelation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []domain.FriendRelation{}
	for _, r := range s.relations {
		if match(r) {
			result = append(result, r)
		}
	}
	return result
}

var _ domain.FriendStore = (*FriendStore)(nil)
