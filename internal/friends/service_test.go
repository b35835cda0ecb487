package friends

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/joshua-paul-1/fintrackr/internal/domain"
	"github.com/joshua-paul-1/fintrackr/internal/mocks"
	"github.com/joshua-paul-1/fintrackr/internal/repository/memory"
)

var (
	alice = domain.Identity{Subject: "sub-alice", Email: "alice@example.com"}
	bob   = domain.Identity{Subject: "sub-bob", Email: "bob@example.com"}
	carol = domain.Identity{Subject: "sub-carol", Email: "carol@example.com"}
)

func newService() *Service {
	return NewService(memory.NewFriendStore(), zerolog.New(io.Discard))
}

func TestSendRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("creates pending relation", func(t *testing.T) {
		svc := newService()
		rel, err := svc.SendRequest(ctx, alice, "  Bob@Example.com ")
		require.NoError(t, err)
		assert.Equal(t, domain.RelationPending, rel.Status)
		assert.Equal(t, "bob@example.com", rel.RecipientEmail)
		assert.Equal(t, alice.Subject, rel.SenderSub)
		assert.NotEmpty(t, rel.ID)
	})

	t.Run("rejects missing recipient", func(t *testing.T) {
		_, err := newService().SendRequest(ctx, alice, " ")
		assert.Equal(t, domain.KindValidation, domain.KindOf(err))
		assert.Equal(t, "Recipient email is required", domain.MessageOf(err))
	})

	t.Run("rejects self request", func(t *testing.T) {
		_, err := newService().SendRequest(ctx, alice, "alice@example.com")
		assert.ErrorIs(t, err, domain.ErrInvalidTarget)
	})

	t.Run("rejects duplicate pending request", func(t *testing.T) {
		svc := newService()
		_, err := svc.SendRequest(ctx, alice, bob.Email)
		require.NoError(t, err)

		_, err = svc.SendRequest(ctx, alice, bob.Email)
		assert.ErrorIs(t, err, domain.ErrDuplicateRequest)
	})

	t.Run("rejects request to existing friend", func(t *testing.T) {
		svc := newService()
		rel, err := svc.SendRequest(ctx, alice, bob.Email)
		require.NoError(t, err)
		require.NoError(t, svc.Accept(ctx, bob, rel.ID))

		_, err = svc.SendRequest(ctx, alice, bob.Email)
		assert.ErrorIs(t, err, domain.ErrDuplicateRequest)
	})

	t.Run("allows resend after ignore", func(t *testing.T) {
		svc := newService()
		rel, err := svc.SendRequest(ctx, alice, bob.Email)
		require.NoError(t, err)
		require.NoError(t, svc.Ignore(ctx, bob, rel.ID))

		_, err = svc.SendRequest(ctx, alice, bob.Email)
		assert.NoError(t, err)
	})

	t.Run("store failure is upstream", func(t *testing.T) {
		store := &mocks.FriendStore{}
		store.On("FindActiveRelation", ctx, alice.Subject, bob.Email).Return(nil, errors.New("timeout"))

		_, err := NewService(store, zerolog.New(io.Discard)).SendRequest(ctx, alice, bob.Email)
		assert.Equal(t, domain.KindUpstream, domain.KindOf(err))
	})

	t.Run("lost race on insert is a duplicate", func(t *testing.T) {
		store := &mocks.FriendStore{}
		store.On("FindActiveRelation", ctx, alice.Subject, bob.Email).Return(nil, domain.ErrNotFound)
		store.On("CreateRelation", ctx, mock.Anything).Return(domain.ErrDuplicateRequest)

		_, err := NewService(store, zerolog.New(io.Discard)).SendRequest(ctx, alice, bob.Email)
		assert.ErrorIs(t, err, domain.ErrDuplicateRequest)
	})
}

func TestAcceptAndIgnore(t *testing.T) {
	ctx := context.Background()

	t.Run("accept requires matching recipient", func(t *testing.T) {
		svc := newService()
		rel, err := svc.SendRequest(ctx, alice, bob.Email)
		require.NoError(t, err)

		err = svc.Accept(ctx, carol, rel.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Equal(t, "Friend request not found", domain.MessageOf(err))

		require.NoError(t, svc.Accept(ctx, bob, rel.ID))
	})

	t.Run("accept backfills recipient subject", func(t *testing.T) {
		svc := newService()
		rel, err := svc.SendRequest(ctx, alice, bob.Email)
		require.NoError(t, err)
		require.NoError(t, svc.Accept(ctx, bob, rel.ID))

		friends, err := svc.AcceptedFriends(ctx, alice)
		require.NoError(t, err)
		require.Len(t, friends, 1)
		assert.Equal(t, bob.Subject, friends[0].RecipientSub)
		assert.NotNil(t, friends[0].AcceptedAt)
	})

	t.Run("missing request id", func(t *testing.T) {
		svc := newService()
		assert.Equal(t, domain.KindValidation, domain.KindOf(svc.Accept(ctx, bob, "")))
		assert.Equal(t, domain.KindValidation, domain.KindOf(svc.Ignore(ctx, bob, "")))
	})

	t.Run("ignore after accept is not found", func(t *testing.T) {
		svc := newService()
		rel, err := svc.SendRequest(ctx, alice, bob.Email)
		require.NoError(t, err)
		require.NoError(t, svc.Accept(ctx, bob, rel.ID))

		assert.ErrorIs(t, svc.Ignore(ctx, bob, rel.ID), domain.ErrNotFound)
	})

	t.Run("unknown id", func(t *testing.T) {
		assert.ErrorIs(t, newService().Ignore(ctx, bob, "nope"), domain.ErrNotFound)
	})
}

func TestListRelations(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	toBob, err := svc.SendRequest(ctx, alice, bob.Email)
	require.NoError(t, err)
	_, err = svc.SendRequest(ctx, alice, carol.Email)
	require.NoError(t, err)
	fromCarol, err := svc.SendRequest(ctx, carol, bob.Email)
	require.NoError(t, err)
	require.NoError(t, svc.Accept(ctx, bob, toBob.ID))

	rels, err := svc.ListRelations(ctx, bob)
	require.NoError(t, err)

	require.Len(t, rels.Received, 1)
	assert.Equal(t, fromCarol.ID, rels.Received[0].ID)
	assert.Empty(t, rels.Sent)
	require.Len(t, rels.Friends, 1)
	assert.Equal(t, alice.Email, rels.Friends[0].FriendEmail)

	rels, err = svc.ListRelations(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, rels.Received)
	require.Len(t, rels.Sent, 1)
	assert.Equal(t, carol.Email, rels.Sent[0].RecipientEmail)
	require.Len(t, rels.Friends, 1)
	assert.Equal(t, bob.Email, rels.Friends[0].FriendEmail)
}

func TestResolveSubject(t *testing.T) {
	ctx := context.Background()

	t.Run("friend found as sender", func(t *testing.T) {
		svc := newService()
		rel, err := svc.SendRequest(ctx, bob, alice.Email)
		require.NoError(t, err)
		require.NoError(t, svc.Accept(ctx, alice, rel.ID))

		sub, ok, err := svc.ResolveSubject(ctx, bob.Email)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, bob.Subject, sub)
	})

	t.Run("friend found as recipient via backfill", func(t *testing.T) {
		svc := newService()
		rel, err := svc.SendRequest(ctx, alice, bob.Email)
		require.NoError(t, err)
		require.NoError(t, svc.Accept(ctx, bob, rel.ID))

		sub, ok, err := svc.ResolveSubject(ctx, bob.Email)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, bob.Subject, sub)
	})

	t.Run("legacy relation without reverse is unresolved", func(t *testing.T) {
		store := memory.NewFriendStore()
		require.NoError(t, store.CreateRelation(ctx, &domain.FriendRelation{
			ID: "legacy", SenderSub: alice.Subject, SenderEmail: alice.Email,
			RecipientEmail: bob.Email, Status: domain.RelationAccepted,
		}))

		_, ok, err := NewService(store, zerolog.New(io.Discard)).ResolveSubject(ctx, bob.Email)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
