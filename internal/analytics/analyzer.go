// Package analytics produces AI-generated spending insights from a user's ledger.
package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/joshua-paul-1/fintrackr/internal/domain"
)

// DefaultModelName is the default Gemini model used for analysis.
const DefaultModelName = "gemini-2.5-flash"

// Model generates text for a prompt.
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// CategoryShare is the model's estimate of one spending category.
type CategoryShare struct {
	Name  string  `json:"name"`
	Share float64 `json:"share"`
}

// Insights is the structured model answer.
type Insights struct {
	Summary      string          `json:"summary"`
	Categories   []CategoryShare `json:"categories"`
	Observations []string        `json:"observations"`
	Tips         []string        `json:"tips"`
}

// Report is returned to the client.
type Report struct {
	Spending Summary  `json:"spending"`
	Insights Insights `json:"insights"`
}

// Analyzer turns a ledger into a Report.
type Analyzer struct {
	transactions domain.TransactionStore
	model        Model
	log          zerolog.Logger
}

// NewAnalyzer creates an analyzer over the transaction store.
func NewAnalyzer(transactions domain.TransactionStore, model Model, log zerolog.Logger) *Analyzer {
	return &Analyzer{transactions: transactions, model: model, log: log}
}

// Analyze returns nil without error when ownerID has no transactions.
func (a *Analyzer) Analyze(ctx context.Context, ownerID string) (*Report, error) {
	ledger, err := a.transactions.GetLedger(ctx, ownerID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.Upstream("Error generating analytics", err)
	}
	if len(ledger.Transactions) == 0 {
		return nil, nil
	}

	summary := Summarize(ledger.Transactions)
	prompt, err := buildPrompt(summary)
	if err != nil {
		return nil, domain.Upstream("Error generating analytics", err)
	}

	raw, err := a.model.Generate(ctx, prompt)
	if err != nil {
		return nil, domain.Upstream("Error generating analytics", err)
	}
	if raw == "" {
		return nil, domain.Upstream("Error generating analytics", errors.New("empty response from model"))
	}

	var insights Insights
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &insights); err != nil {
		a.log.Warn().Str("sub", ownerID).Str("raw_response", raw).Msg("Model returned invalid JSON")
		return nil, domain.Upstream("Error generating analytics", fmt.Errorf("unmarshal JSON: %w", err))
	}

	return &Report{Spending: summary, Insights: insights}, nil
}

// Gemini is a Model backed by the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini client. Credentials come from the environment
// (GOOGLE_API_KEY, or Vertex AI project settings).
func NewGemini(ctx context.Context, model string) (*Gemini, error) {
	if model == "" {
		model = DefaultModelName
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("NewGemini: create genai client: %w", err)
	}

	return &Gemini{client: client, model: model}, nil
}

// Generate implements Model.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return resp.Text(), nil
}

var _ Model = (*Gemini)(nil)
