package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/findit/core"
)

// Defaults applied to zero-valued BuildOptions fields.
const (
	DefaultMaxResults          = 20
	DefaultMaxTokens           = 10000
	DefaultMinThreshold        = 0.2
	DefaultPrefilterMultiplier = 3
)

// placeholderContext is the context string returned whenever no finding
// could be selected for a query.
const placeholderContext = "No relevant audit findings were found for this query."

// BuildOptions tune a single context build. The zero value selects all
// defaults with automatic strategy choice.
type BuildOptions struct {
	// MaxResults caps how many findings the selection may return.
	MaxResults int

	// MaxTokens is the context budget. Assembly stops before the first
	// finding whose rendering would exceed it.
	MaxTokens int

	// Strategy forces a selection strategy. Empty means automatic.
	Strategy core.Strategy

	// MinThreshold drops semantic similarity scores below it. Keyword
	// relevance is never thresholded.
	MinThreshold float64

	// PrefilterMultiplier sizes the keyword prefilter of the hybrid
	// strategy at MaxResults times this factor.
	PrefilterMultiplier int
}

func (o BuildOptions) withDefaults() BuildOptions {
	if o.MaxResults <= 0 {
		o.MaxResults = DefaultMaxResults
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = DefaultMaxTokens
	}
	if o.MinThreshold <= 0 {
		o.MinThreshold = DefaultMinThreshold
	}
	if o.PrefilterMultiplier <= 0 {
		o.PrefilterMultiplier = DefaultPrefilterMultiplier
	}
	return o
}

// ContextBuilder assembles the token-budgeted context for a query from
// a pool of candidate findings.
type ContextBuilder struct {
	searcher  SemanticSearcher
	estimator TokenEstimator
	logger    *slog.Logger
}

// Option configures a ContextBuilder.
type Option func(*ContextBuilder) error

// WithTokenEstimator replaces the default chars/4 heuristic.
// A nil estimator restores the heuristic.
func WithTokenEstimator(estimator TokenEstimator) Option {
	return func(b *ContextBuilder) error {
		if estimator == nil {
			estimator = HeuristicEstimator{}
		}
		b.estimator = estimator
		return nil
	}
}

// WithLogger routes build logging somewhere other than slog.Default().
// A nil logger keeps the default.
func WithLogger(logger *slog.Logger) Option {
	return func(b *ContextBuilder) error {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
		return nil
	}
}

// NewContextBuilder creates a builder over the given semantic searcher.
// The searcher may be nil or unavailable; every build then runs the
// keyword strategy.
func NewContextBuilder(searcher SemanticSearcher, opts ...Option) (*ContextBuilder, error) {
	b := &ContextBuilder{
		searcher:  searcher,
		estimator: HeuristicEstimator{},
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}

	return b, nil
}

// BuildContext selects findings for the query and assembles them into
// an LLM-ready context string. It always returns a usable result:
// selection failures degrade to weaker strategies and an empty
// selection yields the placeholder context.
func (b *ContextBuilder) BuildContext(ctx context.Context, query string, pool []*core.AuditRecord, filters *core.ExtractedFilters, opts BuildOptions) *core.ContextBuildResult {
	return b.BuildContextWithMonitor(ctx, query, pool, filters, opts, nil)
}

// BuildContextWithMonitor builds a context with stage callbacks.
// The monitor receives notifications at each stage of the build.
func (b *ContextBuilder) BuildContextWithMonitor(ctx context.Context, query string, pool []*core.AuditRecord, filters *core.ExtractedFilters, opts BuildOptions, monitor BuildMonitor) *core.ContextBuildResult {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	opts = opts.withDefaults()

	monitor.Start(query, len(pool))

	if len(pool) == 0 {
		result := b.emptyResult(core.StrategyKeyword)
		monitor.Finish(result)
		return result
	}

	// 1. Decide the strategy
	strategy := opts.Strategy
	switch strategy {
	case core.StrategyKeyword, core.StrategySemantic, core.StrategyHybrid:
		// explicit choice; an unavailable capability degrades below
	default:
		strategy = chooseStrategy(query, filters, b.semanticAvailable())
	}
	monitor.StrategySelected(strategy)

	// 2. Select and rank candidates
	candidates, used, err := b.selectorFor(strategy, monitor).selectCandidates(ctx, query, pool, filters, opts)
	if err != nil {
		b.logger.Error("candidate selection failed", "strategy", string(strategy), "err", err)
		candidates = nil
		used = core.StrategyKeyword
	}

	if len(candidates) == 0 {
		result := b.emptyResult(used)
		monitor.AfterSelection(nil)
		monitor.Finish(result)
		return result
	}

	totalCandidates := len(candidates)
	if len(candidates) > opts.MaxResults {
		candidates = candidates[:opts.MaxResults]
	}

	// 3. Assemble the context under the token budget
	contextString, selected, truncated := b.assemble(candidates, totalCandidates, opts, monitor)

	average := 0.0
	if len(selected) > 0 {
		sum := 0.0
		for _, candidate := range selected {
			sum += candidate.Relevance
		}
		average = sum / float64(len(selected))
	}

	result := &core.ContextBuildResult{
		ContextString:   contextString,
		SelectedRecords: selected,
		StrategyUsed:    used,
		EstimatedTokens: b.estimator.EstimateTokens(contextString),
		Metadata: core.ContextMetadata{
			TotalCandidates:  totalCandidates,
			SelectedCount:    len(selected),
			AverageRelevance: average,
			Truncated:        truncated,
		},
	}
	monitor.AfterSelection(selected)
	monitor.Finish(result)
	return result
}

func (b *ContextBuilder) semanticAvailable() bool {
	return b.searcher != nil && b.searcher.IsAvailable()
}

// selectorFor builds the selector graph for a strategy. Semantic and
// hybrid run behind a keyword fallback so selection never fails.
func (b *ContextBuilder) selectorFor(strategy core.Strategy, monitor BuildMonitor) selector {
	keyword := &keywordSelector{}
	switch strategy {
	case core.StrategySemantic:
		return &fallbackSelector{
			primary:  &semanticSelector{searcher: b.searcher},
			fallback: keyword,
			logger:   b.logger,
		}
	case core.StrategyHybrid:
		return &fallbackSelector{
			primary:  &hybridSelector{searcher: b.searcher, monitor: monitor},
			fallback: keyword,
			logger:   b.logger,
		}
	default:
		return keyword
	}
}

// assemble renders candidates into the context string in selection
// order, stopping before the first record whose rendering would push
// the token estimate past the budget.
func (b *ContextBuilder) assemble(candidates []core.ScoredCandidate, totalCandidates int, opts BuildOptions, monitor BuildMonitor) (string, []core.ScoredCandidate, bool) {
	var sb strings.Builder
	selected := make([]core.ScoredCandidate, 0, len(candidates))

	for _, candidate := range candidates {
		entry := formatRecord(candidate.Record)
		if b.estimator.EstimateTokens(sb.String()+entry) > opts.MaxTokens {
			omitted := totalCandidates - len(selected)
			fmt.Fprintf(&sb, "[%d more findings omitted to stay within the context budget]\n", omitted)
			monitor.Truncated(omitted)
			return sb.String(), selected, true
		}
		sb.WriteString(entry)
		selected = append(selected, candidate)
	}

	return sb.String(), selected, false
}

func (b *ContextBuilder) emptyResult(strategy core.Strategy) *core.ContextBuildResult {
	return &core.ContextBuildResult{
		ContextString:   placeholderContext,
		StrategyUsed:    strategy,
		EstimatedTokens: b.estimator.EstimateTokens(placeholderContext),
		Metadata:        core.ContextMetadata{},
	}
}

// formatRecord renders one finding in the fixed context template. Every
// field appears on its own labeled line so the model can cite them.
func formatRecord(r *core.AuditRecord) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Finding %s (record %d)\n", r.Code, uint64(r.Id))
	fmt.Fprintf(&sb, "Project: %s\n", r.Project)
	fmt.Fprintf(&sb, "Year: %d\n", r.Year)
	fmt.Fprintf(&sb, "Department: %s\n", r.Department)
	fmt.Fprintf(&sb, "Risk area: %s\n", r.RiskArea)
	fmt.Fprintf(&sb, "Severity: %s (score %d)\n", r.Severity(), r.Nilai)
	fmt.Fprintf(&sb, "Subholding: %s\n", r.Subholding)
	fmt.Fprintf(&sb, "Description: %s\n\n", r.Description)
	return sb.String()
}
