package leaderboard

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshua-paul-1/fintrackr/internal/domain"
	"github.com/joshua-paul-1/fintrackr/internal/friends"
	"github.com/joshua-paul-1/fintrackr/internal/repository/memory"
)

var (
	alice = domain.Identity{Subject: "sub-alice", Email: "alice@example.com"}
	bob   = domain.Identity{Subject: "sub-bob", Email: "bob@example.com"}
	carol = domain.Identity{Subject: "sub-carol", Email: "carol@example.com"}
)

type fixture struct {
	friendStore *memory.FriendStore
	friends     *friends.Service
	txs         *memory.TransactionStore
	budgets     *memory.BudgetStore
}

func newFixture() *fixture {
	fs := memory.NewFriendStore()
	return &fixture{
		friendStore: fs,
		friends:     friends.NewService(fs, zerolog.New(io.Discard)),
		txs:         memory.NewTransactionStore(),
		budgets:     memory.NewBudgetStore(),
	}
}

func (f *fixture) aggregator(log zerolog.Logger) *Aggregator {
	return NewAggregator(f.friends, f.txs, f.budgets, log)
}

func (f *fixture) spend(t *testing.T, sub, total string) {
	t.Helper()
	_, err := f.txs.AppendTransactions(context.Background(), sub, []domain.Transaction{
		{MerchantName: "shop", Total: decimal.RequireFromString(total), Count: 1},
	})
	require.NoError(t, err)
}

func (f *fixture) budget(t *testing.T, sub, amount string) {
	t.Helper()
	_, err := f.budgets.UpsertBudget(context.Background(), domain.Budget{
		OwnerID: sub, Amount: decimal.RequireFromString(amount), Period: domain.PeriodMonthly, LastUpdated: time.Now(),
	})
	require.NoError(t, err)
}

func (f *fixture) befriend(t *testing.T, sender, recipient domain.Identity) {
	t.Helper()
	ctx := context.Background()
	rel, err := f.friends.SendRequest(ctx, sender, recipient.Email)
	require.NoError(t, err)
	require.NoError(t, f.friends.Accept(ctx, recipient, rel.ID))
}

func TestBuild_RanksByDifference(t *testing.T) {
	f := newFixture()
	f.befriend(t, alice, bob)
	f.befriend(t, carol, alice)

	f.budget(t, alice.Subject, "100")
	f.spend(t, alice.Subject, "50") // +50
	f.budget(t, bob.Subject, "80")
	f.spend(t, bob.Subject, "100") // -20
	f.budget(t, carol.Subject, "150")
	f.spend(t, carol.Subject, "50") // +100

	entries, err := f.aggregator(zerolog.New(io.Discard)).Build(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, carol.Email, entries[0].Email)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, carol.Subject, entries[0].Subject)

	assert.Equal(t, alice.Email, entries[1].Email)
	assert.Equal(t, 2, entries[1].Rank)
	assert.True(t, entries[1].IsSelf)

	assert.Equal(t, bob.Email, entries[2].Email)
	assert.Equal(t, 3, entries[2].Rank)
	assert.True(t, decimal.NewFromInt(-20).Equal(entries[2].Difference))
}

func TestBuild_NoFriends(t *testing.T) {
	f := newFixture()
	f.spend(t, alice.Subject, "30")

	entries, err := f.aggregator(zerolog.New(io.Discard)).Build(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].IsSelf)
	assert.Equal(t, 1, entries[0].Rank)
	assert.True(t, decimal.Zero.Equal(entries[0].Budget))
	assert.True(t, decimal.NewFromInt(-30).Equal(entries[0].Difference))
}

func TestBuild_OmitsUnresolvableFriend(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// accepted before recipient subjects were recorded
	require.NoError(t, f.friendStore.CreateRelation(ctx, &domain.FriendRelation{
		ID: "legacy", SenderSub: alice.Subject, SenderEmail: alice.Email,
		RecipientEmail: bob.Email, Status: domain.RelationAccepted, CreatedAt: time.Now(),
	}))

	var buf bytes.Buffer
	entries, err := f.aggregator(zerolog.New(&buf)).Build(ctx, alice)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].IsSelf)
	assert.Contains(t, buf.String(), "bob@example.com")
}

func TestBuild_LegacyRelationResolvedThroughReverse(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// alice is the recipient of a legacy relation from bob; bob's subject is on it
	require.NoError(t, f.friendStore.CreateRelation(ctx, &domain.FriendRelation{
		ID: "legacy", SenderSub: bob.Subject, SenderEmail: bob.Email,
		RecipientEmail: alice.Email, Status: domain.RelationAccepted, CreatedAt: time.Now(),
	}))
	f.budget(t, bob.Subject, "10")

	entries, err := f.aggregator(zerolog.New(io.Discard)).Build(ctx, alice)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, bob.Subject, entries[0].Subject)
}

func TestRank_StableOnTies(t *testing.T) {
	entries := []Entry{
		{Email: "a", Difference: decimal.NewFromInt(50)},
		{Email: "b", Difference: decimal.NewFromInt(-20)},
		{Email: "c", Difference: decimal.NewFromInt(100)},
		{Email: "d", Difference: decimal.NewFromInt(50)},
	}

	Rank(entries)

	got := make([]string, len(entries))
	for i, e := range entries {
		got[i] = e.Email
		assert.Equal(t, i+1, e.Rank)
	}
	assert.Equal(t, []string{"c", "a", "d", "b"}, got)
}
