// Package pipeline is the background service. It routes inbound messages
// to the snapshot engine, the tab arena and the AI client, and answers the
// read-side queries the UI makes.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dtnitsch/actionsense/models"
	"github.com/dtnitsch/actionsense/pkg/ai"
	"github.com/dtnitsch/actionsense/pkg/compare"
	"github.com/dtnitsch/actionsense/pkg/snapshot"
	"github.com/dtnitsch/actionsense/pkg/tabs"
)

// Store is the persistence the service reads and writes besides what the
// snapshot engine already covers.
type Store interface {
	snapshot.Store
	AppendFocusEvent(ctx context.Context, ev models.FocusEvent, limit int) error
	FocusEvents(ctx context.Context) ([]models.FocusEvent, error)
	ActionHistory(ctx context.Context) ([]models.ActionHistoryEntry, error)
}

type Options struct {
	Config models.Config
	Logger *slog.Logger
	Now    func() time.Time
}

type Service struct {
	cfg    models.Config
	store  Store
	engine *snapshot.Engine
	arena  *tabs.Arena
	ai     ai.Provider
	logger *slog.Logger
	now    func() time.Time
	loc    *time.Location
}

func New(store Store, engine *snapshot.Engine, arena *tabs.Arena, provider ai.Provider, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if provider == nil {
		provider = ai.Unavailable{}
	}
	loc, err := opts.Config.Location()
	if err != nil {
		opts.Logger.Warn("falling back to local time", "error", err)
		loc = time.Local
	}
	return &Service{
		cfg:    opts.Config,
		store:  store,
		engine: engine,
		arena:  arena,
		ai:     provider,
		logger: opts.Logger,
		now:    opts.Now,
		loc:    loc,
	}
}

// HandlePageSignal ingests an extractor bundle and points the tab's focus
// session at the resulting category.
func (s *Service) HandlePageSignal(ctx context.Context, sig models.PageSignal) (*models.PageSnapshot, error) {
	snap, err := s.engine.IngestPageSignal(ctx, sig)
	if err != nil {
		return nil, err
	}
	s.arena.SetCategory(sig.TabID, snap.Category, s.now())
	return snap, nil
}

// Snapshot returns the tab's snapshot, nil if it has none.
func (s *Service) Snapshot(ctx context.Context, tabID int) (*models.PageSnapshot, error) {
	return s.engine.Get(ctx, tabID)
}

// ApplyAIEnrichment merges an externally produced AI result.
func (s *Service) ApplyAIEnrichment(ctx context.Context, tabID int, r models.AIResult) (*models.PageSnapshot, models.CategoryAnalytics, error) {
	snap, analytics, err := s.engine.ApplyAIEnrichment(ctx, tabID, r)
	if err != nil {
		return nil, nil, err
	}
	s.arena.SetCategory(tabID, snap.Category, s.now())
	return snap, analytics, nil
}

// VisibilityChanged opens or closes the tab's dwell session. Closing a long
// enough session records a focus event.
func (s *Service) VisibilityChanged(ctx context.Context, tabID int, visible bool) error {
	now := s.now()
	if visible {
		snap, err := s.engine.Get(ctx, tabID)
		if err != nil {
			return err
		}
		if snap != nil {
			s.arena.SetCategory(tabID, snap.Category, now)
		}
		s.arena.Show(tabID, now)
		return nil
	}

	if ev, ok := s.arena.Hide(tabID, now); ok {
		s.recordFocus(ctx, tabID, ev)
	}
	return nil
}

// TabClosed finalizes the tab's dwell session and deletes its snapshot.
func (s *Service) TabClosed(ctx context.Context, tabID int) error {
	if ev, ok := s.arena.Close(tabID, s.now()); ok {
		s.recordFocus(ctx, tabID, ev)
	}
	if err := s.engine.Remove(ctx, tabID); err != nil {
		return fmt.Errorf("failed to remove tab %d: %w", tabID, err)
	}
	return nil
}

func (s *Service) recordFocus(ctx context.Context, tabID int, ev models.FocusEvent) {
	if err := s.store.AppendFocusEvent(ctx, ev, s.cfg.Storage.MaxFocusEvents); err != nil {
		s.logger.Warn("focus event write failed", "tab_id", tabID, "category", ev.Category, "error", err)
	}
}

// CompareResult answers a product comparison query.
type CompareResult struct {
	Insights []models.ProductInsight `json:"insights"`
	BestDeal string                  `json:"bestDeal,omitempty"`
}

// Compare runs the comparator over the tab's cached products.
func (s *Service) Compare(ctx context.Context, tabID int) (CompareResult, error) {
	snap, err := s.engine.Get(ctx, tabID)
	if err != nil {
		return CompareResult{}, err
	}
	if snap == nil {
		return CompareResult{}, snapshot.ErrNoSnapshot
	}
	insights := compare.Compare(snap.Products)
	if insights == nil {
		insights = []models.ProductInsight{}
	}
	return CompareResult{Insights: insights, BestDeal: compare.SummarizeBestDeal(insights)}, nil
}

// Subscribe streams SnapshotUpdated notifications until cancel is called.
func (s *Service) Subscribe() (<-chan snapshot.Update, func()) {
	return s.engine.Updates().Subscribe()
}
