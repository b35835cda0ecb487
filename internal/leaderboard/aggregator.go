package leaderboard

import (
	"context"
	"errors"
	"sort"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/joshua-paul-1/fintrackr/internal/domain"
)

// Entry is one row of the leaderboard.
type Entry struct {
	Email      string          `json:"email"`
	Subject    string          `json:"sub"`
	Spending   decimal.Decimal `json:"spending"`
	Budget     decimal.Decimal `json:"budget"`
	Difference decimal.Decimal `json:"difference"`
	IsSelf     bool            `json:"isCurrentUser"`
	Rank       int             `json:"rank"`
}

// FriendGraph is the part of the friends service the leaderboard needs.
type FriendGraph interface {
	AcceptedFriends(ctx context.Context, caller domain.Identity) ([]domain.FriendRelation, error)
	ResolveSubject(ctx context.Context, friendEmail string) (string, bool, error)
}

// Aggregator builds ranked spending comparisons between a user and friends.
type Aggregator struct {
	graph        FriendGraph
	transactions domain.TransactionStore
	budgets      domain.BudgetStore
	log          zerolog.Logger
}

// NewAggregator creates a leaderboard aggregator.
func NewAggregator(graph FriendGraph, transactions domain.TransactionStore, budgets domain.BudgetStore, log zerolog.Logger) *Aggregator {
	return &Aggregator{
		graph:        graph,
		transactions: transactions,
		budgets:      budgets,
		log:          log,
	}
}

type friendRef struct {
	email   string
	subject string
}

// Build returns caller and resolved friends ordered by budget minus spending,
// highest first, with 1-based ranks. Ties keep input order.
func (a *Aggregator) Build(ctx context.Context, caller domain.Identity) ([]Entry, error) {
	relations, err := a.graph.AcceptedFriends(ctx, caller)
	if err != nil {
		return nil, err
	}

	self, err := a.entry(ctx, caller.Email, caller.Subject)
	if err != nil {
		return nil, err
	}
	self.IsSelf = true
	entries := []Entry{self}

	for _, ref := range friendRefs(caller.Subject, relations) {
		sub := ref.subject
		if sub == "" {
			resolved, ok, err := a.graph.ResolveSubject(ctx, ref.email)
			if err != nil {
				return nil, domain.Upstream("Error fetching leaderboard", err)
			}
			if !ok {
				a.log.Warn().
					Str("sub", caller.Subject).
					Str("friend_email", ref.email).
					Msg("Friend has no resolvable subject, omitting from leaderboard")
				continue
			}
			sub = resolved
		}

		e, err := a.entry(ctx, ref.email, sub)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	Rank(entries)
	return entries, nil
}

// Rank sorts entries by difference descending and assigns ranks.
func Rank(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Difference.GreaterThan(entries[j].Difference)
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
}

func (a *Aggregator) entry(ctx context.Context, email, sub string) (Entry, error) {
	spending, err := a.transactions.TotalSpending(ctx, sub)
	if err != nil {
		return Entry{}, domain.Upstream("Error fetching leaderboard", err)
	}

	budget := decimal.Zero
	b, err := a.budgets.GetBudget(ctx, sub)
	switch {
	case err == nil:
		budget = b.Amount
	case !errors.Is(err, domain.ErrNotFound):
		return Entry{}, domain.Upstream("Error fetching leaderboard", err)
	}

	return Entry{
		Email:      email,
		Subject:    sub,
		Spending:   spending,
		Budget:     budget,
		Difference: budget.Sub(spending),
	}, nil
}

// friendRefs returns one reference per distinct friend email, in relation order.
func friendRefs(callerSub string, relations []domain.FriendRelation) []friendRef {
	seen := make(map[string]int, len(relations))
	refs := make([]friendRef, 0, len(relations))
	for _, rel := range relations {
		email, sub := rel.OtherParty(callerSub)
		if i, ok := seen[email]; ok {
			if refs[i].subject == "" {
				refs[i].subject = sub
			}
			continue
		}
		seen[email] = len(refs)
		refs = append(refs, friendRef{email: email, subject: sub})
	}
	return refs
}
