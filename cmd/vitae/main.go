// Copyright 2026 Vitae Works
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"github.com/vitaeworks/vitae/ai"
	"github.com/vitaeworks/vitae/ai/openai"
	"github.com/vitaeworks/vitae/core"
	"github.com/vitaeworks/vitae/ingest"
	"github.com/vitaeworks/vitae/pubmed"
	"github.com/vitaeworks/vitae/storage/badger"
)

func main() {
	app := &cli.App{
		Name:  "vitae",
		Usage: "CV ingestion and publication reconciliation engine",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "import",
				Usage:     "Ingest a CV text file into an owner's record",
				ArgsUsage: "FILE",
				Action:    importCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.Uint64Flag{
						Name:     "owner",
						Aliases:  []string{"o"},
						Usage:    "Owner record identifier",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "extraction-host",
						Usage: "Extraction service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "extraction-model",
						Usage: "Extraction model name",
						Value: "qwen2.5:3b",
					},
				},
			},
			{
				Name:  "pubmed",
				Usage: "PubMed reconciliation operations",
				Subcommands: []*cli.Command{
					{
						Name:   "sync",
						Usage:  "Reconcile subscriptions whose window has elapsed",
						Action: pubmedSyncCommand,
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:     "db",
								Aliases:  []string{"d"},
								Usage:    "Path to BadgerDB database directory",
								Required: true,
							},
							&cli.Uint64Flag{
								Name:    "owner",
								Aliases: []string{"o"},
								Usage:   "Reconcile only this owner, ignoring the schedule",
							},
							&cli.StringFlag{
								Name:  "api-key",
								Usage: "NCBI API key (raises the rate ceiling)",
							},
						},
					},
					{
						Name:   "enrich",
						Usage:  "Backfill missing PMIDs by title search",
						Action: pubmedEnrichCommand,
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:     "db",
								Aliases:  []string{"d"},
								Usage:    "Path to BadgerDB database directory",
								Required: true,
							},
							&cli.Uint64Flag{
								Name:     "owner",
								Aliases:  []string{"o"},
								Usage:    "Owner record identifier",
								Required: true,
							},
							&cli.StringFlag{
								Name:  "api-key",
								Usage: "NCBI API key (raises the rate ceiling)",
							},
						},
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func importCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one FILE argument")
	}
	text, err := os.ReadFile(c.Args().First())
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}

	stores, err := badger.OpenStores(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer stores.Close()

	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("extraction-host")),
		ai.WithModel(c.String("extraction-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid extraction configuration: %w", err)
	}

	extractor, err := openai.NewExtractor(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create extractor: %w", err)
	}

	pipeline, err := ingest.NewPipeline(stores.Jobs, stores.Categories, stores.Entries, extractor)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	owner := core.ID(c.Uint64("owner"))
	job, err := pipeline.Submit(ctx, owner, string(text))
	if err != nil {
		return fmt.Errorf("failed to submit job: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Job %d queued\n", job.Id)
	return pollJob(ctx, stores, job.Id)
}

// pollJob prints progress until the job reaches a terminal status.
func pollJob(ctx context.Context, stores *badger.Stores, jobID core.ID) error {
	lastProgress := -1
	for {
		job, err := stores.Jobs.GetJob(ctx, jobID)
		if err != nil {
			return fmt.Errorf("failed to read job: %w", err)
		}

		if job.Progress != lastProgress {
			fmt.Fprintf(os.Stderr, "Progress: %d%%\n", job.Progress)
			lastProgress = job.Progress
		}

		switch job.Status {
		case core.JobCompleted:
			fmt.Fprintf(os.Stderr, "Done: %d created, %d skipped as duplicates\n",
				job.CreatedCount, job.SkippedCount)
			return nil
		case core.JobFailed:
			return fmt.Errorf("job failed: %s", job.Error)
		}

		time.Sleep(250 * time.Millisecond)
	}
}

func pubmedSyncCommand(c *cli.Context) error {
	ctx := context.Background()

	stores, err := badger.OpenStores(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer stores.Close()

	client := pubmed.NewClient(pubmed.WithAPIKey(c.String("api-key")))
	reconciler, err := pubmed.NewReconciler(client,
		stores.Entries, stores.Candidates, stores.Subscriptions, stores.Activity)
	if err != nil {
		return fmt.Errorf("failed to create reconciler: %w", err)
	}

	if owner := core.ID(c.Uint64("owner")); owner != 0 {
		sub, err := stores.Subscriptions.GetSubscription(ctx, owner)
		if err != nil {
			return fmt.Errorf("failed to load subscription: %w", err)
		}
		staged, err := reconciler.SyncOwner(ctx, sub)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Staged %d new candidates\n", staged)
		return nil
	}

	return reconciler.RunDue(ctx)
}

func pubmedEnrichCommand(c *cli.Context) error {
	ctx := context.Background()

	stores, err := badger.OpenStores(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer stores.Close()

	client := pubmed.NewClient(pubmed.WithAPIKey(c.String("api-key")))
	enricher, err := pubmed.NewEnricher(client, stores.Entries, nil)
	if err != nil {
		return fmt.Errorf("failed to create enricher: %w", err)
	}

	result, err := enricher.Run(ctx, core.ID(c.Uint64("owner")))
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Enriched %d, no match for %d, failed %d\n",
		result.Enriched, result.Missed, result.Failed)
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
