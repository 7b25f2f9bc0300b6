package report

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/dtnitsch/actionsense/internal/common"
	"github.com/dtnitsch/actionsense/models"
	"github.com/dtnitsch/actionsense/pkg/ai"
	"github.com/dtnitsch/actionsense/pkg/analytics"
	"github.com/dtnitsch/actionsense/pkg/maintenance"
)

// StatsAction prints the dashboard: analytics, focus stats and browsing
// history. --coach adds the AI coaching summary.
func StatsAction(c *cli.Context) error {
	logger := common.Logger(c)
	cfg, err := common.LoadConfig(c)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	var provider ai.Provider
	if c.Bool("coach") {
		provider = common.Provider(cfg, logger)
	}
	rt, err := common.Open(cfg, logger, provider)
	if err != nil {
		return err
	}
	defer rt.Close()

	d, err := rt.Service.Dashboard(common.Context(c), c.Bool("coach"))
	if err != nil {
		return err
	}

	if format := c.String("format"); format == "yaml" || format == "json" {
		return write(format, d)
	}
	printSummary(d.FocusStats, d.Analytics)
	printKeywords(d.Snapshots, c.Int("keywords"))
	if d.Coach != "" {
		fmt.Printf("\n%s\n", d.Coach)
	}
	return nil
}

// CleanupAction runs one maintenance pass: model-version check, then age
// and byte-budget eviction.
func CleanupAction(c *cli.Context) error {
	logger := common.Logger(c)
	cfg, err := common.LoadConfig(c)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if c.IsSet("max-age") {
		cfg.Cleanup.MaxAge = c.Duration("max-age")
	}
	if c.IsSet("max-bytes") {
		cfg.Cleanup.MaxBytes = c.Int64("max-bytes")
	}
	ctx := common.Context(c)

	rt, err := common.Open(cfg, logger, common.Provider(cfg, logger))
	if err != nil {
		return err
	}
	defer rt.Close()

	m := maintenance.New(rt.Store, rt.Provider, maintenance.Options{
		MaxAge:   cfg.Cleanup.MaxAge,
		MaxBytes: cfg.Cleanup.MaxBytes,
		Logger:   logger,
	})
	if _, err := m.EnsureModelVersion(ctx); err != nil {
		logger.Warn("model version check failed", "error", err)
	}
	r, err := m.Cleanup(ctx)
	if err != nil {
		return err
	}
	return write(c.String("format"), r)
}

func write(format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	}
}

func printSummary(st models.FocusStats, analytics models.CategoryAnalytics) {
	fmt.Printf("Focus this week: %d%% (%+d vs last week)\n", st.FocusPct, st.TrendDelta)
	fmt.Printf("Productive streak: %d day(s)\n\n", st.Streak.Days)

	fmt.Printf("%-15s %-8s\n", "Category", "Pages")
	fmt.Println(strings.Repeat("-", 24))
	for _, c := range models.Categories {
		if n := analytics[c]; n > 0 {
			fmt.Printf("%-15s %-8d\n", c, n)
		}
	}
	fmt.Printf("\nTotal: %d pages\n", analytics.Total())
}

// printKeywords ranks words across every stored page's text.
func printKeywords(snaps []*models.PageSnapshot, n int) {
	if n <= 0 || len(snaps) == 0 {
		return
	}
	pages := make([]map[string]int, 0, len(snaps))
	for _, s := range snaps {
		pages = append(pages, analytics.WordFrequency(s.Text, 4))
	}
	fmt.Printf("\nTop keywords across %d pages:\n", len(snaps))
	for i, wc := range analytics.Rank(analytics.Reduce(pages), n) {
		fmt.Printf("%d. %s: %d\n", i+1, wc.Word, wc.Count)
	}
}
