package pipeline

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/dtnitsch/actionsense/models"
	"github.com/dtnitsch/actionsense/pkg/ai"
	"github.com/dtnitsch/actionsense/pkg/focus"
)

const browsingHistoryLimit = 10

// Dashboard is the options-page payload.
type Dashboard struct {
	Analytics       models.CategoryAnalytics    `json:"analytics" yaml:"analytics"`
	ActionHistory   []models.ActionHistoryEntry `json:"actionHistory" yaml:"action_history"`
	Snapshots       []*models.PageSnapshot      `json:"snapshots" yaml:"snapshots"`
	FocusStats      models.FocusStats           `json:"focusStats" yaml:"focus_stats"`
	BrowsingHistory []ai.HistoryItem            `json:"browsingHistory" yaml:"browsing_history"`
	Coach           string                      `json:"coach,omitempty" yaml:"coach,omitempty"`
}

// Dashboard loads every dashboard input in parallel. With coach set it
// also asks the model for a focus coaching summary, falling back to a
// plain-text digest of the focus stats.
func (s *Service) Dashboard(ctx context.Context, coach bool) (*Dashboard, error) {
	var (
		d      Dashboard
		events []models.FocusEvent
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		d.Analytics, err = s.store.CategoryAnalytics(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		d.ActionHistory, err = s.store.ActionHistory(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		d.Snapshots, err = s.store.ListSnapshots(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		events, err = s.store.FocusEvents(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load dashboard: %w", err)
	}

	d.FocusStats = focus.Compute(events, s.now(), s.loc)
	d.BrowsingHistory = browsingHistory(d.Snapshots)

	if coach {
		text, err := s.ai.Coach(ctx, ai.CoachInput{
			Analytics: d.Analytics,
			History:   d.BrowsingHistory,
			Focus:     d.FocusStats,
		})
		s.logFailure(s.logger, ai.LabelFocusCoach, err)
		if text == "" {
			text = focusDigest(d.FocusStats)
		}
		d.Coach = text
	}
	return &d, nil
}

// browsingHistory lists the most recently updated categorized snapshots,
// described by their one-liner when there is one.
func browsingHistory(snaps []*models.PageSnapshot) []ai.HistoryItem {
	sorted := append([]*models.PageSnapshot(nil), snaps...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UpdatedAt.After(sorted[j].UpdatedAt)
	})

	out := []ai.HistoryItem{}
	for _, snap := range sorted {
		if snap.Category == "" {
			continue
		}
		activity := snap.OneLiner
		if activity == "" {
			activity = snap.Title
		}
		out = append(out, ai.HistoryItem{Category: snap.Category, Activity: activity, URL: snap.URL})
		if len(out) == browsingHistoryLimit {
			break
		}
	}
	return out
}

func focusDigest(st models.FocusStats) string {
	msg := fmt.Sprintf("Focus this week: %d%% (%+d vs last week).", st.FocusPct, st.TrendDelta)
	if st.Streak.Days > 0 {
		msg += fmt.Sprintf(" Productive streak: %d day(s).", st.Streak.Days)
	}
	return msg
}
