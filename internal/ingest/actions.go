package ingest

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/dtnitsch/actionsense/internal/common"
	"github.com/dtnitsch/actionsense/pkg/ai"
	"github.com/dtnitsch/actionsense/pkg/caching"
	"github.com/dtnitsch/actionsense/pkg/extractor"
	"github.com/dtnitsch/actionsense/pkg/fetcher"
)

// IngestAction extracts a page from --url or --file into the tab's
// snapshot, optionally enriches it, and prints the result as YAML.
func IngestAction(c *cli.Context) error {
	logger := common.Logger(c)
	cfg, err := common.LoadConfig(c)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	ctx := common.Context(c)

	pageURL := c.String("url")
	var html []byte
	switch {
	case c.IsSet("file"):
		if pageURL == "" {
			return fmt.Errorf("--file needs --url for the page address")
		}
		html, err = os.ReadFile(c.String("file"))
		if err != nil {
			return fmt.Errorf("failed to read page: %w", err)
		}
	case pageURL != "":
		html, err = fetchPage(c, pageURL)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("one of --url or --file is required")
	}

	sig, err := extractor.New(extractor.Options{}).Extract(pageURL, html)
	if err != nil {
		return err
	}
	sig.TabID = c.Int("tab")
	extractor.NewVersioner().Stamp(&sig)

	var provider ai.Provider
	if c.Bool("enrich") {
		provider = common.Provider(cfg, logger)
	}
	rt, err := common.Open(cfg, logger, provider)
	if err != nil {
		return err
	}
	defer rt.Close()

	snap, err := rt.Service.HandlePageSignal(ctx, sig)
	if err != nil {
		return err
	}
	logger.Info("page ingested", "tab_id", snap.TabID, "category", snap.Category, "version", snap.ContentVersion)

	out := map[string]any{"snapshot": snap}
	if c.Bool("enrich") {
		res, err := rt.Service.RequestEnrichment(ctx, sig.TabID, c.Bool("force"))
		if err != nil {
			return err
		}
		logger.Info("enrichment finished", "tab_id", sig.TabID, "outcome", res.Outcome)
		out = map[string]any{
			"outcome":  res.Outcome,
			"snapshot": res.Snapshot,
			"summary":  res.Summary,
			"actions":  res.Actions,
		}
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(out)
}

// fetchPage downloads pageURL, going through the page cache when
// --cache-dir is set.
func fetchPage(c *cli.Context, pageURL string) ([]byte, error) {
	var cache *caching.Cache
	if dir := c.String("cache-dir"); dir != "" {
		var err error
		cache, err = caching.NewCache(dir, c.Duration("cache-ttl"))
		if err != nil {
			return nil, err
		}
		if html, ok := cache.Get(pageURL); ok {
			return html, nil
		}
	}

	page, err := fetcher.NewFetcher(nil).GetHTML(common.Context(c), pageURL)
	if err != nil {
		return nil, err
	}
	if cache != nil {
		if err := cache.Set(pageURL, page.HTML); err != nil {
			return nil, err
		}
	}
	return page.HTML, nil
}
