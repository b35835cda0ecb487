package analytics

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshua-paul-1/fintrackr/internal/domain"
	"github.com/joshua-paul-1/fintrackr/internal/repository/memory"
)

type fakeModel struct {
	prompt string
	reply  string
	err    error
}

func (m *fakeModel) Generate(ctx context.Context, prompt string) (string, error) {
	m.prompt = prompt
	return m.reply, m.err
}

func tx(name, total string, date *civil.Date) domain.Transaction {
	return domain.Transaction{MerchantName: name, Total: decimal.RequireFromString(total), Count: 1, Date: date}
}

func TestSummarize(t *testing.T) {
	jan := civil.Date{Year: 2025, Month: 1, Day: 3}
	feb := civil.Date{Year: 2025, Month: 2, Day: 9}

	s := Summarize([]domain.Transaction{
		tx("Tesco", "20", &jan),
		tx("Uber", "15", &feb),
		tx("Tesco", "10", &feb),
		tx("Amazon", "30", nil),
	})

	assert.True(t, decimal.NewFromInt(75).Equal(s.TotalSpending))
	assert.Equal(t, 4, s.TransactionCount)

	require.Len(t, s.TopMerchants, 3)
	assert.Equal(t, "Amazon", s.TopMerchants[0].Name)
	assert.Equal(t, "Tesco", s.TopMerchants[1].Name)
	assert.Equal(t, 2, s.TopMerchants[1].Count)
	assert.Equal(t, "Uber", s.TopMerchants[2].Name)

	require.Len(t, s.Monthly, 2)
	assert.Equal(t, "2025-01", s.Monthly[0].Month)
	assert.True(t, decimal.NewFromInt(25).Equal(s.Monthly[1].Total))
}

func TestCleanModelJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```\n", `{"a":1}`},
		{"prose", "Here you go: {\"a\":{\"b\":2}} hope it helps", `{"a":{"b":2}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanModelJSON(tt.raw))
		})
	}
}

func TestAnalyze(t *testing.T) {
	ctx := context.Background()
	store := memory.NewTransactionStore()
	_, err := store.AppendTransactions(ctx, "sub-1", []domain.Transaction{tx("Tesco", "20", nil)})
	require.NoError(t, err)

	model := &fakeModel{reply: "```json\n{\"summary\":\"Mostly groceries\",\"categories\":[{\"name\":\"Groceries\",\"share\":100}],\"tips\":[\"Plan meals\"]}\n```"}
	a := NewAnalyzer(store, model, zerolog.New(io.Discard))

	report, err := a.Analyze(ctx, "sub-1")
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, "Mostly groceries", report.Insights.Summary)
	assert.Equal(t, []string{"Plan meals"}, report.Insights.Tips)
	assert.Equal(t, 1, report.Spending.TransactionCount)
	assert.True(t, strings.Contains(model.prompt, `"Tesco"`))
}

func TestAnalyze_NoTransactions(t *testing.T) {
	model := &fakeModel{}
	a := NewAnalyzer(memory.NewTransactionStore(), model, zerolog.New(io.Discard))

	report, err := a.Analyze(context.Background(), "sub-1")
	require.NoError(t, err)
	assert.Nil(t, report)
	assert.Empty(t, model.prompt, "model must not be called")
}

func TestAnalyze_ModelFailures(t *testing.T) {
	ctx := context.Background()
	store := memory.NewTransactionStore()
	_, err := store.AppendTransactions(ctx, "sub-1", []domain.Transaction{tx("Tesco", "20", nil)})
	require.NoError(t, err)

	for name, model := range map[string]*fakeModel{
		"error":   {err: errors.New("quota")},
		"empty":   {reply: ""},
		"invalid": {reply: "sorry, I cannot"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewAnalyzer(store, model, zerolog.New(io.Discard)).Analyze(ctx, "sub-1")
			assert.Equal(t, domain.KindUpstream, domain.KindOf(err))
			assert.Equal(t, "Error generating analytics", domain.MessageOf(err))
		})
	}
}
