// Copyright 2025 Poiesic Systems
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

	"github.com/poiesic/findit"
	"github.com/poiesic/findit/ai"
	"github.com/poiesic/findit/ai/openai"
	"github.com/poiesic/findit/core"
	"github.com/poiesic/findit/ingestion"
	"github.com/poiesic/findit/reembed"
	"github.com/poiesic/findit/search"
	"github.com/poiesic/findit/storage/badger"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "findit",
		Usage: "Retrieval assistant for property audit findings",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Log level: debug, info, warn, or error",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Load audit findings from a JSON file into the database",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Directory of the BadgerDB store",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to the JSON findings file",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Base URL of the embedding service",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Model used for embeddings (omit to store findings without vectors)",
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Size of the background processing pool",
					},
				},
			},
			{
				Name:   "reembed",
				Usage:  "Regenerate embedding vectors for stored findings",
				Action: reembedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Directory of the BadgerDB store",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Base URL of the embedding service",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Model used for embeddings",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Records embedded per batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "How often progress is printed, in records",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Embedding attempts per batch before giving up",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "First retry delay; doubled after every failure",
						Value: 1 * time.Second,
					},
					&cli.BoolFlag{
						Name:  "only-missing",
						Usage: "Embed only records that have no vector yet",
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "Ask a question about the stored audit findings",
				Action:    askCommand,
				ArgsUsage: "QUERY...",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Directory of the BadgerDB store",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "session",
						Aliases: []string{"s"},
						Usage:   "Session key for conversation continuity",
						Value:   "default",
					},
					&cli.IntFlag{
						Name:    "page",
						Aliases: []string{"p"},
						Usage:   "Result page for listing responses",
						Value:   1,
					},
					&cli.StringFlag{
						Name:  "completion-host",
						Usage: "Base URL of the completion service",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "completion-model",
						Usage: "Model used for completions",
						Value: "qwen2.5:3b",
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Base URL of the embedding service",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Model used for embeddings",
						Value: "embeddinggemma",
					},
					&cli.StringFlag{
						Name:  "tiktoken",
						Usage: "Tiktoken encoding for token estimation (e.g. cl100k_base)",
					},
					&cli.BoolFlag{
						Name:  "show-filters",
						Usage: "Print the pattern-extracted filters before answering",
					},
				},
			},
		},
	}
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	file, err := os.Open(c.String("file"))
	if err != nil {
		return fmt.Errorf("failed to open findings file: %w", err)
	}
	defer file.Close()

	records, err := ingestion.LoadRecordsJSON(file)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("findings file contains no records")
	}

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open the findings store: %w", err)
	}
	defer backend.Close()

	auditRepo := badger.NewAuditRepository(backend)
	defer auditRepo.Close()
	checkpointRepo := badger.NewCheckpointRepository(backend)

	// Findings are stored first and embedded in a synchronous pass
	// afterwards, so the command never exits with work still queued.
	var pipelineOpts []ingestion.Option
	if size := c.Int("pool-size"); size > 0 {
		pipelineOpts = append(pipelineOpts, ingestion.WithPoolSize(size))
	}
	pipeline, err := ingestion.NewPipeline(auditRepo, checkpointRepo, nil, pipelineOpts...)
	if err != nil {
		return fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}
	defer pipeline.Release()

	added, err := pipeline.Ingest(ctx, records...)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Stored %d findings in %s\n", len(added), c.String("db"))

	model := c.String("embedding-model")
	if model == "" {
		fmt.Fprintln(os.Stderr, "No embedding model configured; run 'findit reembed --only-missing' to embed later")
		return nil
	}

	embedder, err := newEmbedder(c.String("embedding-host"), model)
	if err != nil {
		return err
	}

	config := reembed.DefaultConfig()
	config.OnlyMissing = true
	if err := reembed.NewReembedder(auditRepo, embedder, config, os.Stderr).Run(ctx); err != nil {
		return fmt.Errorf("embedding failed: %w", err)
	}

	return nil
}

func reembedCommand(c *cli.Context) error {
	ctx := context.Background()

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open the findings store: %w", err)
	}
	defer backend.Close()

	repo := badger.NewAuditRepository(backend)
	defer repo.Close()

	embedder, err := newEmbedder(c.String("embedding-host"), c.String("embedding-model"))
	if err != nil {
		return err
	}

	config := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
		OnlyMissing:    c.Bool("only-missing"),
	}
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be positive")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be positive")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be positive")
	}

	fmt.Fprintf(os.Stderr, "Reembedding %s with %s at %s\n",
		c.String("db"), c.String("embedding-model"), c.String("embedding-host"))
	fmt.Fprintln(os.Stderr)

	if err := reembed.NewReembedder(repo, embedder, config, os.Stderr).Run(ctx); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}

	return nil
}

func askCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("query is required")
	}

	opts := []findit.Option{
		findit.WithAIConfig(ai.NewConfig(
			ai.WithCompletionHost(c.String("completion-host")),
			ai.WithCompletionModel(c.String("completion-model")),
			ai.WithEmbeddingHost(c.String("embedding-host")),
			ai.WithEmbeddingModel(c.String("embedding-model")),
		)),
	}
	if encoding := c.String("tiktoken"); encoding != "" {
		estimator, err := search.NewTiktokenEstimator(encoding)
		if err != nil {
			return fmt.Errorf("failed to load tiktoken encoding: %w", err)
		}
		opts = append(opts, findit.WithTokenEstimator(estimator))
	}

	assistant, err := findit.NewAssistant(c.String("db"), opts...)
	if err != nil {
		return fmt.Errorf("failed to open the findings store: %w", err)
	}
	defer assistant.Close()

	if c.Bool("show-filters") {
		printFilters(assistant.Extractor().ExtractWithPatterns(query))
	}

	response, err := assistant.Answer(context.Background(), c.String("session"), query, c.Int("page"))
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	fmt.Println(response.Answer)
	fmt.Fprintf(os.Stderr, "\n(intent: %s, strategy: %s, findings: %d, elapsed: %s)\n",
		response.Metadata.Intent,
		response.Metadata.Strategy,
		response.Metadata.SelectedCount,
		response.Metadata.Elapsed.Round(time.Millisecond))

	return nil
}

func newEmbedder(host, model string) (ai.Embedder, error) {
	config := ai.NewConfig(
		ai.WithEmbeddingHost(host),
		ai.WithEmbeddingModel(model),
	)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI config: %w", err)
	}

	embedder, err := openai.NewEmbedder(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding client: %w", err)
	}
	return embedder, nil
}

func setupLogger(c *cli.Context) error {
	var level slog.Level
	switch strings.ToLower(c.String("log-level")) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q (want debug, info, warn, or error)", c.String("log-level"))
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

// printFilters renders the set fields of the extracted filters, one per
// line.
func printFilters(filters *core.ExtractedFilters) {
	fmt.Fprintln(os.Stderr, "Extracted filters:")
	if filters.Year != "" {
		fmt.Fprintf(os.Stderr, "  year: %s\n", filters.Year)
	}
	if filters.ProjectType != "" {
		fmt.Fprintf(os.Stderr, "  project type: %s\n", filters.ProjectType)
	}
	if len(filters.Severity) > 0 {
		fmt.Fprintf(os.Stderr, "  severity: %v\n", filters.Severity)
	}
	if len(filters.Status) > 0 {
		fmt.Fprintf(os.Stderr, "  status: %v\n", filters.Status)
	}
	if filters.Department != "" {
		fmt.Fprintf(os.Stderr, "  department: %s\n", filters.Department)
	}
	if len(filters.Keywords) > 0 {
		fmt.Fprintf(os.Stderr, "  keywords: %s\n", strings.Join(filters.Keywords, ", "))
	}
	if filters.DateRange != nil {
		fmt.Fprintf(os.Stderr, "  date range: %s to %s\n",
			filters.DateRange.Start.Format("2006-01-02"),
			filters.DateRange.End.Format("2006-01-02"))
	}
	if filters.Empty() {
		fmt.Fprintln(os.Stderr, "  (none)")
	}
	fmt.Fprintln(os.Stderr)
}
