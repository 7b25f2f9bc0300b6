package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dtnitsch/actionsense/models"
	"github.com/dtnitsch/actionsense/pkg/ai"
	"github.com/dtnitsch/actionsense/pkg/aiqueue"
	"github.com/dtnitsch/actionsense/pkg/categorize"
	"github.com/dtnitsch/actionsense/pkg/snapshot"
)

// Outcome says how a RequestEnrichment call ended.
type Outcome string

const (
	OutcomeNoSnapshot Outcome = "no_snapshot"
	OutcomeCooldown   Outcome = "cooldown"
	OutcomeUpToDate   Outcome = "up_to_date"
	OutcomeInFlight   Outcome = "in_flight"
	OutcomeNoText     Outcome = "no_text"
	OutcomeEnriched   Outcome = "enriched"
	// OutcomeFallback means every AI step failed or returned nothing; the
	// snapshot is untouched and the result carries heuristic content.
	OutcomeFallback Outcome = "fallback"
)

// minSummaryText is the text length above which a page is worth summarizing.
const minSummaryText = 180

// EnrichmentResult is returned by RequestEnrichment. Summary and Actions are
// always renderable: AI output when there was some, fallbacks otherwise.
type EnrichmentResult struct {
	Outcome   Outcome                  `json:"outcome"`
	Snapshot  *models.PageSnapshot     `json:"snapshot,omitempty"`
	Analytics models.CategoryAnalytics `json:"analytics,omitempty"`
	Summary   string                   `json:"summary,omitempty"`
	Actions   []string                 `json:"actions,omitempty"`
}

// RequestEnrichment runs the AI pipeline for a tab: summary, classification,
// actions, one-liner and product advice, each falling back independently.
// Only a successful classification changes the category.
func (s *Service) RequestEnrichment(ctx context.Context, tabID int, force bool) (EnrichmentResult, error) {
	log := s.logger.With("tab_id", tabID)

	snap, err := s.engine.Get(ctx, tabID)
	if err != nil {
		return EnrichmentResult{}, err
	}
	if snap == nil {
		return EnrichmentResult{Outcome: OutcomeNoSnapshot}, nil
	}

	now := s.now()
	if !force && !snap.LastAIAt.IsZero() && now.Sub(snap.LastAIAt) < s.cfg.AI.Cooldown {
		return s.settled(OutcomeCooldown, snap), nil
	}

	refresh := force || snap.NeedsAIRefresh
	textSource := snap.Text
	if strings.TrimSpace(textSource) == "" {
		textSource = snap.Description
	}
	needSummary := refresh || (snap.AISummary == "" && len([]rune(textSource)) > minSummaryText)
	needCategory := refresh || snap.CategorySource != models.SourceAI
	needActions := refresh || len(snap.AIActions) == 0
	if !needSummary && !needCategory && !needActions {
		return s.settled(OutcomeUpToDate, snap), nil
	}

	if !s.arena.TryBeginEnrichment(tabID) {
		return EnrichmentResult{Outcome: OutcomeInFlight, Snapshot: snap}, nil
	}
	defer s.arena.EndEnrichment(tabID)

	if strings.TrimSpace(textSource) == "" {
		return s.settled(OutcomeNoText, snap), nil
	}

	var result models.AIResult
	summary := snap.AISummary
	if needSummary {
		out, err := s.ai.Summarize(ctx, textSource, ai.SummaryContext{
			Title:       snap.Title,
			Description: snap.Description,
			Keywords:    snap.Keywords,
			Products:    snap.Products,
			Language:    snap.Language,
		})
		s.logFailure(log, ai.LabelSummarize, err)
		if out = strings.TrimSpace(out); out != "" {
			result.Summary = out
			summary = out
		}
	}
	if summary == "" {
		summary = ai.FallbackSummary(textSource)
	}

	category := snap.Category
	if needCategory {
		c, err := s.ai.Classify(ctx, textSource, snap.Title, snap.URL)
		s.logFailure(log, ai.LabelClassify, err)
		if c != nil && c.Category.Valid() {
			category = c.Category
			result.Category = string(c.Category)
			result.Reason = c.Reason
		}
	}

	actions := snap.AIActions
	if needActions {
		out, err := s.ai.GenerateActions(ctx, category, summary, snap.URL)
		s.logFailure(log, ai.LabelActions, err)
		if len(out) > 0 {
			result.Actions = out
			actions = out
		}
	}
	if len(actions) == 0 {
		actions = categorize.ActionPoints(category)
	}

	if refresh || snap.OneLiner == "" {
		out, err := s.ai.OneLiner(ctx, ai.OneLinerContext{Title: snap.Title, Text: textSource, Category: category})
		s.logFailure(log, ai.LabelOneLiner, err)
		result.OneLiner = strings.TrimSpace(out)
	}

	result.ProductAdvice = s.adviseProducts(ctx, log, snap, refresh)

	if isEmptyResult(result) {
		log.Info("ai enrichment produced nothing, using fallbacks")
		return EnrichmentResult{Outcome: OutcomeFallback, Snapshot: snap, Summary: summary, Actions: actions}, nil
	}

	updated, analytics, err := s.ApplyAIEnrichment(ctx, tabID, result)
	if errors.Is(err, snapshot.ErrNoSnapshot) {
		// The tab closed while the model was running.
		return EnrichmentResult{Outcome: OutcomeNoSnapshot}, nil
	}
	if err != nil {
		return EnrichmentResult{}, fmt.Errorf("failed to apply enrichment: %w", err)
	}
	return EnrichmentResult{
		Outcome:   OutcomeEnriched,
		Snapshot:  updated,
		Analytics: analytics,
		Summary:   summary,
		Actions:   updated.Actions,
	}, nil
}

// adviseProducts asks for a pick among the best insight's top candidates.
// Fresh advice is reused unless refresh is set.
func (s *Service) adviseProducts(ctx context.Context, log *slog.Logger, snap *models.PageSnapshot, refresh bool) *models.ProductAdvice {
	if len(snap.ProductInsights) == 0 {
		return nil
	}
	if !refresh && snap.ProductAdvice != nil && s.now().Sub(snap.ProductAdvice.GeneratedAt) < s.cfg.AI.AdviceTTL {
		return nil
	}
	best := snap.ProductInsights[0]
	candidates := best.ScoredItems
	if len(candidates) > 3 {
		candidates = candidates[:3]
	}
	if len(candidates) == 0 {
		return nil
	}

	raw, err := s.ai.AdviseProducts(ctx, candidates, ai.PriceContext{
		Title:      best.Title,
		BestPrice:  best.BestPrice,
		Currency:   best.Currency,
		Comparison: best.Comparison,
	})
	if err != nil {
		s.logFailure(log, ai.LabelProductValue, err)
		return nil
	}
	return ai.PolishProductAdvice(raw, best.Title, fallbackReason(candidates[0], best.Currency), best.Comparison)
}

func fallbackReason(lead models.ScoredItem, currency string) string {
	rating := "solid"
	if lead.Rating > 0 {
		rating = fmt.Sprintf("%g", lead.Rating)
	}
	if currency == "" {
		currency = "$"
	}
	return fmt.Sprintf("Great value with %s rating and %s%.0f price point.", rating, currency, lead.PriceValue)
}

// settled reports a no-op outcome with renderable content.
func (s *Service) settled(o Outcome, snap *models.PageSnapshot) EnrichmentResult {
	summary := snap.AISummary
	if summary == "" {
		summary = ai.FallbackSummary(snap.Text)
	}
	return EnrichmentResult{Outcome: o, Snapshot: snap, Summary: summary, Actions: snap.Actions}
}

func (s *Service) logFailure(log *slog.Logger, label string, err error) {
	switch {
	case err == nil:
	case errors.Is(err, aiqueue.ErrBatteryLow):
		log.Info("ai skipped on low battery", "label", label)
	default:
		log.Warn("ai call failed, using fallback", "label", label, "error", err)
	}
}

func isEmptyResult(r models.AIResult) bool {
	return r.Category == "" && r.Summary == "" && len(r.Actions) == 0 &&
		r.OneLiner == "" && r.ProductAdvice == nil
}
