// Package ai wraps the local language model behind a narrow capability
// interface. Every call made through Client is serialized by the AI queue.
package ai

import (
	"context"

	"github.com/dtnitsch/actionsense/models"
)

// Queue labels. Budgets are looked up by label; unknown labels use the
// default budget.
const (
	LabelSummarize    = "summarizeWithAI"
	LabelClassify     = "classifyWithAI"
	LabelActions      = "generateActionsWithAI"
	LabelOneLiner     = models.LabelOneLiner
	LabelProductValue = "analyzeProductValue"
	LabelFocusCoach   = models.LabelFocusCoach
)

// UnknownVersion is reported when the model version cannot be determined.
const UnknownVersion = "unknown"

// Classification is a parsed classify response.
type Classification struct {
	Category models.Category `json:"category"`
	Reason   string          `json:"reason,omitempty"`
}

// SummaryContext carries page hints that steer a summary.
type SummaryContext struct {
	Title       string
	Description string
	Keywords    []string
	Products    []models.Product
	Language    string
}

// OneLinerContext is the input for a one-line activity description.
type OneLinerContext struct {
	Title    string
	Text     string
	Category models.Category
}

// PriceContext accompanies product candidates sent for advice.
type PriceContext struct {
	Title      string  `json:"title"`
	BestPrice  float64 `json:"bestPrice"`
	Currency   string  `json:"currency"`
	Comparison string  `json:"comparison,omitempty"`
}

// HistoryItem is one line of recent browsing fed to the focus coach.
type HistoryItem struct {
	Category models.Category `json:"category"`
	Activity string          `json:"activity"`
	URL      string          `json:"url,omitempty"`
}

// CoachInput is everything the focus coach sees.
type CoachInput struct {
	Analytics models.CategoryAnalytics `json:"analytics"`
	History   []HistoryItem            `json:"browsingHistory"`
	Focus     models.FocusStats        `json:"focusStats"`
}

// Provider is the model capability the pipeline depends on. An unavailable
// model is reported as a zero result with a nil error, never as an error.
type Provider interface {
	Classify(ctx context.Context, text, title, url string) (*Classification, error)
	Summarize(ctx context.Context, text string, sc SummaryContext) (string, error)
	GenerateActions(ctx context.Context, category models.Category, summary, url string) ([]string, error)
	OneLiner(ctx context.Context, oc OneLinerContext) (string, error)
	AdviseProducts(ctx context.Context, candidates []models.ScoredItem, pc PriceContext) (*models.ProductAdvice, error)
	Coach(ctx context.Context, in CoachInput) (string, error)
	ModelVersion(ctx context.Context) (string, error)
}

// Unavailable is the provider used when AI is disabled.
type Unavailable struct{}

func (Unavailable) Classify(context.Context, string, string, string) (*Classification, error) {
	return nil, nil
}

func (Unavailable) Summarize(context.Context, string, SummaryContext) (string, error) {
	return "", nil
}

func (Unavailable) GenerateActions(context.Context, models.Category, string, string) ([]string, error) {
	return nil, nil
}

func (Unavailable) OneLiner(context.Context, OneLinerContext) (string, error) { return "", nil }

func (Unavailable) AdviseProducts(context.Context, []models.ScoredItem, PriceContext) (*models.ProductAdvice, error) {
	return nil, nil
}

func (Unavailable) Coach(context.Context, CoachInput) (string, error) { return "", nil }

func (Unavailable) ModelVersion(context.Context) (string, error) { return UnknownVersion, nil }
