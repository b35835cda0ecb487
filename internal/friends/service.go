package friends

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/joshua-paul-1/fintrackr/internal/domain"
)

// Service manages friend requests and friendships.
type Service struct {
	store domain.FriendStore
	log   zerolog.Logger
	now   func() time.Time
}

// NewService creates a friends service.
func NewService(store domain.FriendStore, log zerolog.Logger) *Service {
	return &Service{
		store: store,
		log:   log,
		now:   time.Now,
	}
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SendRequest creates a pending request from caller to recipientEmail.
func (s *Service) SendRequest(ctx context.Context, caller domain.Identity, recipientEmail string) (*domain.FriendRelation, error) {
	recipientEmail = NormalizeEmail(recipientEmail)
	if recipientEmail == "" {
		return nil, domain.Validation("Recipient email is required")
	}
	if recipientEmail == NormalizeEmail(caller.Email) {
		return nil, domain.ErrInvalidTarget
	}

	_, err := s.store.FindActiveRelation(ctx, caller.Subject, recipientEmail)
	switch {
	case err == nil:
		return nil, domain.ErrDuplicateRequest
	case !errors.Is(err, domain.ErrNotFound):
		return nil, domain.Upstream("Error sending friend request", err)
	}

	rel := &domain.FriendRelation{
		ID:             uuid.NewString(),
		SenderSub:      caller.Subject,
		SenderEmail:    NormalizeEmail(caller.Email),
		RecipientEmail: recipientEmail,
		Status:         domain.RelationPending,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.store.CreateRelation(ctx, rel); err != nil {
		if errors.Is(err, domain.ErrDuplicateRequest) {
			return nil, err
		}
		return nil, domain.Upstream("Error sending friend request", err)
	}

	s.log.Info().Str("sub", caller.Subject).Str("request_id", rel.ID).Msg("Friend request sent")
	return rel, nil
}

// ListRelations returns the received, sent and accepted views for caller.
func (s *Service) ListRelations(ctx context.Context, caller domain.Identity) (domain.Relations, error) {
	email := NormalizeEmail(caller.Email)

	received, err := s.store.ListReceivedPending(ctx, email)
	if err != nil {
		return domain.Relations{}, domain.Upstream("Error fetching friend requests", err)
	}
	sent, err := s.store.ListSentPending(ctx, caller.Subject)
	if err != nil {
		return domain.Relations{}, domain.Upstream("Error fetching friend requests", err)
	}
	accepted, err := s.store.ListAccepted(ctx, caller.Subject, email)
	if err != nil {
		return domain.Relations{}, domain.Upstream("Error fetching friend requests", err)
	}

	friends := make([]domain.Friend, 0, len(accepted))
	for _, rel := range accepted {
		other, _ := rel.OtherParty(caller.Subject)
		friends = append(friends, domain.Friend{FriendRelation: rel, FriendEmail: other})
	}

	return domain.Relations{
		Received: nonNil(received),
		Sent:     nonNil(sent),
		Friends:  friends,
	}, nil
}

// Accept moves a pending request addressed to caller into accepted and
// records the caller's subject on it.
func (s *Service) Accept(ctx context.Context, caller domain.Identity, requestID string) error {
	if strings.TrimSpace(requestID) == "" {
		return domain.Validation("Request ID is required")
	}

	err := s.store.AcceptRelation(ctx, requestID, NormalizeEmail(caller.Email), caller.Subject, s.now().UTC())
	if err != nil {
		return s.mapMutationError(err, "Error accepting friend request")
	}

	s.log.Info().Str("sub", caller.Subject).Str("request_id", requestID).Msg("Friend request accepted")
	return nil
}

// Ignore deletes a pending request addressed to caller.
func (s *Service) Ignore(ctx context.Context, caller domain.Identity, requestID string) error {
	if strings.TrimSpace(requestID) == "" {
		return domain.Validation("Request ID is required")
	}

	if err := s.store.DeletePendingRelation(ctx, requestID, NormalizeEmail(caller.Email)); err != nil {
		return s.mapMutationError(err, "Error ignoring friend request")
	}

	s.log.Info().Str("sub", caller.Subject).Str("request_id", requestID).Msg("Friend request ignored")
	return nil
}

// AcceptedFriends returns the accepted relations of caller.
func (s *Service) AcceptedFriends(ctx context.Context, caller domain.Identity) ([]domain.FriendRelation, error) {
	rels, err := s.store.ListAccepted(ctx, caller.Subject, NormalizeEmail(caller.Email))
	if err != nil {
		return nil, domain.Upstream("Error fetching friends", err)
	}
	return rels, nil
}

// ResolveSubject recovers the subject of a friend known only by email. It
// looks for an accepted relation the friend sent, then for a relation the
// friend received and a reverse relation authored by the friend.
func (s *Service) ResolveSubject(ctx context.Context, friendEmail string) (string, bool, error) {
	asSender, err := s.store.FindAccepted(ctx, domain.RelationQuery{SenderEmail: friendEmail})
	if err == nil {
		return asSender.SenderSub, true, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return "", false, err
	}

	asRecipient, err := s.store.FindAccepted(ctx, domain.RelationQuery{RecipientEmail: friendEmail})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	if asRecipient.RecipientSub != "" {
		return asRecipient.RecipientSub, true, nil
	}

	reverse, err := s.store.FindAccepted(ctx, domain.RelationQuery{
		SenderEmail:    friendEmail,
		RecipientEmail: asRecipient.SenderEmail,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return reverse.SenderSub, true, nil
}

func (s *Service) mapMutationError(err error, msg string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NotFound("Friend request not found")
	}
	return domain.Upstream(msg, err)
}

func nonNil(rels []domain.FriendRelation) []domain.FriendRelation {
	if rels == nil {
		return []domain.FriendRelation{}
	}
	return rels
}
