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


// Package findit answers natural-language questions about property
// audit findings. An Assistant owns the finding store, the AI services,
// and the query pipeline: intent recognition, context retrieval, and
// response formatting. Every AI capability is optional at runtime; the
// pipeline degrades to deterministic keyword retrieval with plain
// listings rather than failing.
package findit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/findit/ai"
	"github.com/poiesic/findit/ai/openai"
	"github.com/poiesic/findit/core"
	"github.com/poiesic/findit/ingestion"
	"github.com/poiesic/findit/intent"
	"github.com/poiesic/findit/reembed"
	"github.com/poiesic/findit/respond"
	"github.com/poiesic/findit/search"
	"github.com/poiesic/findit/session"
	"github.com/poiesic/findit/storage"
	"github.com/poiesic/findit/storage/badger"
)

// analysisSystemPrompt seeds every conversation opened for answer
// synthesis. Each turn carries the findings retrieved for its question.
const analysisSystemPrompt = `You are an assistant for internal audit findings on property and construction projects.
Every question comes with the audit findings retrieved for it. Ground every statement in those
findings and cite them by code (for example AUD-2024-001). When the findings do not answer the
question, say so plainly instead of speculating. Keep answers concise and concrete, and reply
in the language of the question.`

var errNoChatCapability = errors.New("session has no chat capability")

// Assistant is the root handle over one findings database and its query
// pipeline. It is safe for concurrent use.
type Assistant struct {
	backend        *badger.Backend
	auditRepo      storage.AuditRepository
	checkpointRepo storage.CheckpointRepository
	provider       ai.AIProvider
	recognizer     *intent.Recognizer
	builder        *search.ContextBuilder
	formatter      *respond.Formatter
	sessions       *session.Manager
	pipeline       *ingestion.Pipeline
	buildOpts      search.BuildOptions
	logger         *slog.Logger
}

// Option configures an Assistant.
type Option func(*assistantOptions)

type assistantOptions struct {
	aiConfig   *ai.Config
	provider   ai.AIProvider
	inMemory   bool
	pageSize   int
	buildOpts  search.BuildOptions
	sessionTTL time.Duration
	estimator  search.TokenEstimator
	logger     *slog.Logger
}

// WithAIConfig sets the configuration for the OpenAI-compatible AI
// services. Ignored when WithProvider is also given.
func WithAIConfig(config *ai.Config) Option {
	return func(o *assistantOptions) {
		o.aiConfig = config
	}
}

// WithProvider injects a pre-built AI provider instead of constructing
// one from the AI config. Intended for tests.
func WithProvider(provider ai.AIProvider) Option {
	return func(o *assistantOptions) {
		o.provider = provider
	}
}

// WithInMemory keeps the finding store in memory. The file path given
// to NewAssistant is ignored.
func WithInMemory() Option {
	return func(o *assistantOptions) {
		o.inMemory = true
	}
}

// WithPageSize sets the listing page size for formatted responses.
func WithPageSize(size int) Option {
	return func(o *assistantOptions) {
		o.pageSize = size
	}
}

// WithBuildOptions sets the context-build tuning applied to every
// query. The zero value selects all defaults.
func WithBuildOptions(opts search.BuildOptions) Option {
	return func(o *assistantOptions) {
		o.buildOpts = opts
	}
}

// WithSessionTTL sets how long an idle conversation keeps its chat
// history.
func WithSessionTTL(ttl time.Duration) Option {
	return func(o *assistantOptions) {
		o.sessionTTL = ttl
	}
}

// WithTokenEstimator replaces the token estimator used for the context
// budget.
func WithTokenEstimator(estimator search.TokenEstimator) Option {
	return func(o *assistantOptions) {
		o.estimator = estimator
	}
}

// WithLogger sets the logger for the assistant and its pipeline
// components.
func WithLogger(logger *slog.Logger) Option {
	return func(o *assistantOptions) {
		o.logger = logger
	}
}

// NewAssistant opens the finding store at filePath and wires the query
// pipeline around it. The caller owns the returned Assistant and must
// Close it.
func NewAssistant(filePath string, opts ...Option) (*Assistant, error) {
	options := &assistantOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	logger := options.logger
	if logger == nil {
		logger = slog.Default()
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	auditRepo := badger.NewAuditRepository(backend)
	checkpointRepo := badger.NewCheckpointRepository(backend)

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			auditRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	var recognizerOpts []intent.RecognizerOption
	if options.logger != nil {
		recognizerOpts = append(recognizerOpts, intent.WithLogger(options.logger.With("component", "intent")))
	}
	recognizer := intent.NewRecognizer(provider.Completer(), recognizerOpts...)

	builderOpts := []search.Option{
		search.WithTokenEstimator(options.estimator),
	}
	if options.logger != nil {
		builderOpts = append(builderOpts, search.WithLogger(options.logger))
	}
	builder, err := search.NewContextBuilder(search.NewEmbeddingSearcher(provider.Embedder()), builderOpts...)
	if err != nil {
		provider.Close()
		auditRepo.Close()
		backend.Close()
		return nil, err
	}

	var formatterOpts []respond.Option
	if options.pageSize > 0 {
		formatterOpts = append(formatterOpts, respond.WithPageSize(options.pageSize))
	}
	formatter, err := respond.NewFormatter(formatterOpts...)
	if err != nil {
		provider.Close()
		auditRepo.Close()
		backend.Close()
		return nil, err
	}

	sessionOpts := []session.Option{
		session.WithTTL(options.sessionTTL),
	}
	if options.logger != nil {
		sessionOpts = append(sessionOpts, session.WithLogger(options.logger.With("component", "session")))
	}
	sessions, err := session.NewManager(func(string) ai.Chat {
		return provider.OpenChat(analysisSystemPrompt)
	}, sessionOpts...)
	if err != nil {
		provider.Close()
		auditRepo.Close()
		backend.Close()
		return nil, err
	}

	pipeline, err := ingestion.NewPipeline(auditRepo, checkpointRepo, provider.Embedder())
	if err != nil {
		sessions.Close()
		provider.Close()
		auditRepo.Close()
		backend.Close()
		return nil, err
	}

	return &Assistant{
		backend:        backend,
		auditRepo:      auditRepo,
		checkpointRepo: checkpointRepo,
		provider:       provider,
		recognizer:     recognizer,
		builder:        builder,
		formatter:      formatter,
		sessions:       sessions,
		pipeline:       pipeline,
		buildOpts:      options.buildOpts,
		logger:         logger.With("component", "assistant"),
	}, nil
}

// Answer runs the query pipeline for one question and returns a
// formatted response. Analytical questions are answered with
// model-written prose through the session's conversation when the
// completion capability responds; on any downstream failure the answer
// degrades to a plain listing of the retrieved findings. An error is
// returned only when the finding store itself fails.
func (a *Assistant) Answer(ctx context.Context, sessionKey, query string, page int) (*core.QueryResponse, error) {
	started := time.Now()

	recognized := a.recognizer.RecognizeIntent(ctx, query)

	pool, err := a.auditRepo.GetAllAuditRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load findings: %w", err)
	}

	build := a.builder.BuildContext(ctx, query, pool, recognized.Filters, a.buildOpts)
	records := build.Records()

	if recognized.RequiresAnalysis && len(records) > 0 {
		analysis, err := a.synthesize(ctx, sessionKey, query, build.ContextString)
		if err == nil {
			meta := respond.BuildMetadata(recognized, build, time.Since(started))
			if recognized.Filters.HasSpecificFilters() {
				return a.formatter.FormatHybridResponse(records, analysis, meta, page), nil
			}
			return a.formatter.FormatAIResponse(analysis, records, meta), nil
		}
		a.logger.Warn("answer synthesis failed, returning plain results",
			"session", sessionKey,
			"err", err)
	}

	meta := respond.BuildMetadata(recognized, build, time.Since(started))
	return a.formatter.FormatSimpleResults(records, meta, page), nil
}

// synthesize sends the retrieved context and the question through the
// session's conversation, so follow-up questions resolve against
// earlier turns.
func (a *Assistant) synthesize(ctx context.Context, sessionKey, query, contextString string) (string, error) {
	conversation := a.sessions.Get(sessionKey)
	if conversation.Chat == nil {
		return "", errNoChatCapability
	}

	answer, err := conversation.Chat.Send(ctx, buildAnalysisMessage(query, contextString))
	if err != nil {
		return "", err
	}

	a.sessions.Touch(conversation)
	return answer, nil
}

func buildAnalysisMessage(query, contextString string) string {
	var sb strings.Builder
	sb.WriteString("Audit findings retrieved for this question:\n\n")
	sb.WriteString(contextString)
	sb.WriteString("\n\nQuestion: ")
	sb.WriteString(query)
	return sb.String()
}

// Ingest validates and stores the findings. Embeddings are generated in
// the background; PrewarmEmbeddings fills in any the background
// processing missed.
func (a *Assistant) Ingest(ctx context.Context, records ...*core.AuditRecord) ([]*core.AuditRecord, error) {
	return a.pipeline.Ingest(ctx, records...)
}

// PrewarmEmbeddings embeds every stored finding that has no vector yet.
// Progress is reported to the writer; a nil writer discards it.
func (a *Assistant) PrewarmEmbeddings(ctx context.Context, progress io.Writer) error {
	if progress == nil {
		progress = io.Discard
	}
	config := reembed.DefaultConfig()
	config.OnlyMissing = true
	return reembed.NewReembedder(a.auditRepo, a.provider.Embedder(), config, progress).Run(ctx)
}

// NewIngestionPipeline creates an ingestion pipeline over the
// assistant's store. The caller owns it and must Release it; the
// assistant's own pipeline behind Ingest is unaffected.
func (a *Assistant) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(a.auditRepo, a.checkpointRepo, a.provider.Embedder(), opts...)
}

// NewReembedder creates a reembedder over the assistant's store. A nil
// config selects the defaults.
func (a *Assistant) NewReembedder(config *reembed.Config, progress io.Writer) *reembed.Reembedder {
	if progress == nil {
		progress = io.Discard
	}
	return reembed.NewReembedder(a.auditRepo, a.provider.Embedder(), config, progress)
}

// AuditRepository exposes the finding store.
func (a *Assistant) AuditRepository() storage.AuditRepository {
	return a.auditRepo
}

// CheckpointRepository exposes the processing checkpoint store.
func (a *Assistant) CheckpointRepository() storage.CheckpointRepository {
	return a.checkpointRepo
}

// Extractor exposes the deterministic filter extractor, for callers
// that want the structured view of a query without running it.
func (a *Assistant) Extractor() *intent.Extractor {
	return a.recognizer.Extractor()
}

// Close releases the pipeline, the AI provider, and the finding store.
// Pending background embeddings are dropped; a later PrewarmEmbeddings
// picks the records up.
func (a *Assistant) Close() error {
	a.sessions.Close()
	a.pipeline.Release()

	if err := a.provider.Close(); err != nil {
		a.logger.Error("closing AI provider failed", "err", err)
	}

	if err := a.auditRepo.Close(); err != nil {
		a.logger.Error("closing audit repository failed", "err", err)
		return err
	}

	if err := a.backend.Close(); err != nil {
		a.logger.Error("closing storage backend failed", "err", err)
		return err
	}
	return nil
}
