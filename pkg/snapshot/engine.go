// Package snapshot owns the per-tab PageSnapshot. Every mutation goes
// through Engine, which serializes read-modify-write cycles and drives the
// analytics, comparison, history and notification side effects.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dtnitsch/actionsense/models"
	"github.com/dtnitsch/actionsense/pkg/categorize"
	"github.com/dtnitsch/actionsense/pkg/compare"
)

// ErrNoSnapshot is returned when enrichment targets a tab that has never
// been ingested.
var ErrNoSnapshot = errors.New("NO_SNAPSHOT")

// Store is the persistence the engine needs. GetSnapshot returns nil, nil
// for an unknown tab.
type Store interface {
	GetSnapshot(ctx context.Context, tabID int) (*models.PageSnapshot, error)
	SaveSnapshot(ctx context.Context, snap *models.PageSnapshot) error
	DeleteSnapshot(ctx context.Context, tabID int) error
	ListSnapshots(ctx context.Context) ([]*models.PageSnapshot, error)
	UpdateCategoryAnalytics(ctx context.Context, prev, next models.Category) (models.CategoryAnalytics, error)
	CategoryAnalytics(ctx context.Context) (models.CategoryAnalytics, error)
	AppendActionHistory(ctx context.Context, e models.ActionHistoryEntry, limit int) error
}

type Options struct {
	TextClamp        int
	MaxActionHistory int
	Logger           *slog.Logger
	Now              func() time.Time
	NewID            func() string
}

type Engine struct {
	store Store
	bus   *Broadcaster
	opts  Options

	mu sync.Mutex
}

func NewEngine(store Store, bus *Broadcaster, opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if bus == nil {
		bus = NewBroadcaster()
	}
	return &Engine{store: store, bus: bus, opts: opts}
}

// Updates exposes the engine's broadcaster.
func (e *Engine) Updates() *Broadcaster { return e.bus }

// IngestPageSignal merges sig into the tab's snapshot. Only the snapshot
// write can fail the call; analytics and history failures are logged.
func (e *Engine) IngestPageSignal(ctx context.Context, sig models.PageSignal) (*models.PageSnapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	log := e.opts.Logger.With("tab_id", sig.TabID)

	prev, err := e.store.GetSnapshot(ctx, sig.TabID)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	text := clamp(sig.Text, e.opts.TextClamp)
	heuristic := categorize.Categorize(categorize.Page{
		URL:         sig.URL,
		Title:       sig.Title,
		Description: sig.Description,
		Text:        text,
		Keywords:    sig.Keywords,
	})

	hash := models.HashText(text)
	if sig.TextHash != nil {
		hash = *sig.TextHash
	}

	base := prev
	if base == nil {
		base = &models.PageSnapshot{}
	}
	prevVersion := base.ContentVersion
	version := resolveVersion(prevVersion, sig.ContentVersion, sig.MajorChange)

	provenance := stickyOnceSet(
		sticky[models.Category]{Value: base.Category, Locked: prev != nil && base.CategorySource == models.SourceAI},
		heuristic,
	)
	source := models.SourceHeuristic
	if provenance.Locked {
		source = models.SourceAI
	}

	textChanged := hash != "" && hash != base.TextHash
	needsRefresh := base.NeedsAIRefresh
	if textChanged && version > prevVersion {
		needsRefresh = base.HasAIContent()
	}

	next := base.Clone()
	next.TabID = sig.TabID
	next.WindowID = keepIfAbsent(base.WindowID, sig.WindowID)
	next.Title = overwriteAlways(base.Title, sig.Title)
	next.URL = overwriteAlways(base.URL, sig.URL)
	next.Description = overwriteAlways(base.Description, sig.Description)
	next.Text = overwriteAlways(base.Text, text)
	next.Keywords = overwriteAlways(base.Keywords, sig.Keywords)
	next.Products = overwriteAlways(base.Products, sig.Products)
	next.Language = keepIfAbsent(base.Language, sig.Language)

	next.HeuristicCategory = heuristic
	next.Category = provenance.Value
	next.CategorySource = source
	next.CategoryLabel = provenance.Value.Label()
	if source == models.SourceHeuristic {
		next.AIReason = ""
	}
	next.Actions = resolveActions(next)

	next.ContentVersion = version
	next.TextHash = keepIfAbsent(base.TextHash, hash)
	next.NeedsAIRefresh = needsRefresh
	next.MajorChange = textChanged
	next.UpdatedAt = e.opts.Now()

	if base.Category != next.Category {
		if _, err := e.store.UpdateCategoryAnalytics(ctx, base.Category, next.Category); err != nil {
			log.Warn("category analytics update failed", "from", base.Category, "to", next.Category, "error", err)
		}
	}

	next.ProductInsights = compare.Compare(sig.Products)
	next.BestDeal = compare.SummarizeBestDeal(next.ProductInsights)

	if next.BestDeal != "" && next.BestDeal != base.BestDeal {
		e.recordAction(ctx, log, next, next.BestDeal)
	}

	if err := e.store.SaveSnapshot(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to persist snapshot: %w", err)
	}

	e.notify(log, next)
	return next.Clone(), nil
}

// ApplyAIEnrichment merges an AI result into an existing snapshot and
// returns it with the current analytics. Omitted fields keep their values.
func (e *Engine) ApplyAIEnrichment(ctx context.Context, tabID int, r models.AIResult) (*models.PageSnapshot, models.CategoryAnalytics, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	log := e.opts.Logger.With("tab_id", tabID)

	prev, err := e.store.GetSnapshot(ctx, tabID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	if prev == nil {
		return nil, nil, ErrNoSnapshot
	}

	now := e.opts.Now()
	next := prev.Clone()

	provenance := sticky[models.Category]{Value: prev.Category, Locked: prev.CategorySource == models.SourceAI}
	if r.Category != "" {
		aiCategory := models.NormalizeCategory(r.Category)
		provenance = lock(aiCategory)
		next.AICategory = aiCategory
	}
	next.Category = provenance.Value
	next.CategoryLabel = provenance.Value.Label()
	if provenance.Locked {
		next.CategorySource = models.SourceAI
	}

	next.AISummary = keepIfAbsent(prev.AISummary, r.Summary)
	next.AIActions = keepSliceIfAbsent(prev.AIActions, nonEmpty(r.Actions))
	next.AIConfidence = keepPtrIfAbsent(prev.AIConfidence, r.Confidence)
	next.AINotes = keepIfAbsent(prev.AINotes, r.Notes)
	next.AIReason = keepIfAbsent(keepIfAbsent(prev.AIReason, r.Notes), r.Reason)
	next.OneLiner = keepIfAbsent(prev.OneLiner, r.OneLiner)
	next.BestDeal = keepIfAbsent(prev.BestDeal, r.BestDealNote)
	if r.ProductAdvice != nil && (r.ProductAdvice.BestTitle != "" || r.ProductAdvice.Reason != "") {
		advice := *r.ProductAdvice
		advice.GeneratedAt = now
		next.ProductAdvice = &advice
	}
	next.Actions = resolveActions(next)

	next.NeedsAIRefresh = false
	next.MajorChange = false
	next.AIUpdatedAt = now
	next.LastAIAt = now
	next.UpdatedAt = now

	if prev.Category != next.Category {
		if _, err := e.store.UpdateCategoryAnalytics(ctx, prev.Category, next.Category); err != nil {
			log.Warn("category analytics update failed", "from", prev.Category, "to", next.Category, "error", err)
		}
	}

	if err := e.store.SaveSnapshot(ctx, next); err != nil {
		return nil, nil, fmt.Errorf("failed to persist snapshot: %w", err)
	}

	e.notify(log, next)

	analytics, err := e.store.CategoryAnalytics(ctx)
	if err != nil {
		log.Warn("category analytics read failed", "error", err)
		analytics = models.CategoryAnalytics{}
	}
	return next.Clone(), analytics, nil
}

// Get returns the tab's snapshot or nil.
func (e *Engine) Get(ctx context.Context, tabID int) (*models.PageSnapshot, error) {
	snap, err := e.store.GetSnapshot(ctx, tabID)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return snap, nil
}

// Remove deletes the tab's snapshot.
func (e *Engine) Remove(ctx context.Context, tabID int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.DeleteSnapshot(ctx, tabID)
}

// List returns every stored snapshot.
func (e *Engine) List(ctx context.Context) ([]*models.PageSnapshot, error) {
	return e.store.ListSnapshots(ctx)
}

// Analytics returns the current category counts.
func (e *Engine) Analytics(ctx context.Context) (models.CategoryAnalytics, error) {
	return e.store.CategoryAnalytics(ctx)
}

func (e *Engine) recordAction(ctx context.Context, log *slog.Logger, snap *models.PageSnapshot, action string) {
	entry := models.ActionHistoryEntry{
		ID:        e.opts.NewID(),
		Category:  snap.Category,
		Action:    action,
		TabID:     snap.TabID,
		URL:       snap.URL,
		Timestamp: e.opts.Now(),
	}
	if err := e.store.AppendActionHistory(ctx, entry, e.opts.MaxActionHistory); err != nil {
		log.Warn("action history append failed", "error", err)
	}
}

func (e *Engine) notify(log *slog.Logger, snap *models.PageSnapshot) {
	if n := e.bus.Publish(Update{TabID: snap.TabID, Category: snap.Category}); n == 0 {
		log.Debug("snapshot update had no listeners")
	}
}

// resolveVersion trusts a declared version but never lets it fall below the
// stored one, and guarantees a bump when a major change is asserted.
func resolveVersion(prev int, declared *int, majorChange bool) int {
	version := prev
	if declared != nil && *declared > prev {
		version = *declared
	}
	if majorChange && version <= prev {
		version = prev + 1
	}
	return version
}

// resolveActions prefers AI actions for AI-classified pages and falls back
// to the category defaults.
func resolveActions(s *models.PageSnapshot) []string {
	if s.CategorySource == models.SourceAI && len(s.AIActions) > 0 {
		return append([]string(nil), s.AIActions...)
	}
	return categorize.ActionPoints(s.Category)
}

func nonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func clamp(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
