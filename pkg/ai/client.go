package ai

import (
	"context"

	"github.com/dtnitsch/actionsense/models"
	"github.com/dtnitsch/actionsense/pkg/aiqueue"
)

// Client routes every provider call through the AI queue under its label,
// so calls are serialized, time-bounded and battery-gated.
type Client struct {
	provider Provider
	queue    *aiqueue.Queue
}

func NewClient(p Provider, q *aiqueue.Queue) *Client {
	return &Client{provider: p, queue: q}
}

func (c *Client) Classify(ctx context.Context, text, title, url string) (*Classification, error) {
	return aiqueue.Do(ctx, c.queue, LabelClassify, func(ctx context.Context) (*Classification, error) {
		return c.provider.Classify(ctx, text, title, url)
	})
}

func (c *Client) Summarize(ctx context.Context, text string, sc SummaryContext) (string, error) {
	return aiqueue.Do(ctx, c.queue, LabelSummarize, func(ctx context.Context) (string, error) {
		return c.provider.Summarize(ctx, text, sc)
	})
}

func (c *Client) GenerateActions(ctx context.Context, category models.Category, summary, url string) ([]string, error) {
	return aiqueue.Do(ctx, c.queue, LabelActions, func(ctx context.Context) ([]string, error) {
		return c.provider.GenerateActions(ctx, category, summary, url)
	})
}

func (c *Client) OneLiner(ctx context.Context, oc OneLinerContext) (string, error) {
	return aiqueue.Do(ctx, c.queue, LabelOneLiner, func(ctx context.Context) (string, error) {
		return c.provider.OneLiner(ctx, oc)
	})
}

func (c *Client) AdviseProducts(ctx context.Context, candidates []models.ScoredItem, pc PriceContext) (*models.ProductAdvice, error) {
	return aiqueue.Do(ctx, c.queue, LabelProductValue, func(ctx context.Context) (*models.ProductAdvice, error) {
		return c.provider.AdviseProducts(ctx, candidates, pc)
	})
}

func (c *Client) Coach(ctx context.Context, in CoachInput) (string, error) {
	return aiqueue.Do(ctx, c.queue, LabelFocusCoach, func(ctx context.Context) (string, error) {
		return c.provider.Coach(ctx, in)
	})
}

// ModelVersion bypasses the queue; it is a metadata lookup, not generation.
func (c *Client) ModelVersion(ctx context.Context) (string, error) {
	return c.provider.ModelVersion(ctx)
}
