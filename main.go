package main

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/actionsense/internal/ingest"
	"github.com/dtnitsch/actionsense/internal/report"
	"github.com/dtnitsch/actionsense/internal/serve"
)

func main() {
	app := &cli.App{
		Name:  "actionsense",
		Usage: "categorize browsing, enrich pages with a local model and track focus",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "actionsense.yaml",
				Usage:   "YAML config file; missing means defaults",
			},
			&cli.StringFlag{Name: "db", Usage: "SQLite database path (overrides config)"},
			&cli.BoolFlag{Name: "no-ai", Usage: "disable the AI provider"},
			&cli.StringFlag{Name: "model", Usage: "Ollama model name (overrides config)"},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "only log errors"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "debug logging"},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP bridge for the browser extension",
				Action: serve.ServeAction,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "listen", Usage: "listen address (overrides config)"},
				},
			},
			{
				Name:   "ingest",
				Usage:  "extract a page into a tab snapshot",
				Action: ingest.IngestAction,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "url", Usage: "page URL to fetch, or the address of --file"},
					&cli.StringFlag{Name: "file", Usage: "read HTML from a file instead of fetching"},
					&cli.IntFlag{Name: "tab", Value: 1, Usage: "tab id to store the snapshot under"},
					&cli.BoolFlag{Name: "enrich", Usage: "run AI enrichment after ingesting"},
					&cli.BoolFlag{Name: "force", Usage: "ignore cooldown and cached AI output"},
					&cli.StringFlag{Name: "cache-dir", Usage: "cache fetched pages in this directory"},
					&cli.DurationFlag{Name: "cache-ttl", Value: 24 * time.Hour, Usage: "reuse cached pages younger than this, 0 keeps them forever"},
				},
			},
			{
				Name:  "report",
				Usage: "inspect and maintain stored data",
				Subcommands: []*cli.Command{
					{
						Name:   "stats",
						Usage:  "category analytics and focus stats",
						Action: report.StatsAction,
						Flags: []cli.Flag{
							&cli.BoolFlag{Name: "coach", Usage: "add the AI focus coach summary"},
							&cli.IntFlag{Name: "keywords", Value: 15, Usage: "top keywords to list across stored pages"},
							&cli.StringFlag{Name: "format", Value: "table", Usage: "table, yaml or json"},
						},
					},
					{
						Name:   "cleanup",
						Usage:  "evict old snapshots and refresh on model change",
						Action: report.CleanupAction,
						Flags: []cli.Flag{
							&cli.DurationFlag{Name: "max-age", Usage: "override cleanup.max_age"},
							&cli.Int64Flag{Name: "max-bytes", Usage: "override cleanup.max_bytes"},
							&cli.StringFlag{Name: "format", Value: "yaml", Usage: "yaml or json"},
						},
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
