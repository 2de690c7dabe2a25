package search

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/findit/core"
)

// analyticalKeywords are the cues that a query wants explanation or
// synthesis rather than a plain listing. Matched as case-insensitive
// substrings, so "analyze" also covers "analyzes" and "analyzing".
var analyticalKeywords = []string{
	"why", "analyze", "analyse", "analysis", "trend", "recommend",
	"compare", "comparison", "summarize", "summarise", "summary",
	"explain", "insight", "root cause", "correlat",
	"mengapa", "kenapa", "analisa", "analisis", "tren", "rekomendasi",
	"bandingkan", "ringkasan", "penyebab",
}

// hasAnalyticalIntent scans the query for analytical cues.
func hasAnalyticalIntent(query string) bool {
	q := strings.ToLower(query)
	for _, keyword := range analyticalKeywords {
		if strings.Contains(q, keyword) {
			return true
		}
	}
	return false
}

// chooseStrategy picks the selection strategy for a query when the
// caller did not force one. Without a semantic capability the only
// possible strategy is keyword; otherwise analytical queries lean on
// semantic ranking and specific filters lean on keyword ranking.
func chooseStrategy(query string, filters *core.ExtractedFilters, semanticAvailable bool) core.Strategy {
	if !semanticAvailable {
		return core.StrategyKeyword
	}

	analytical := hasAnalyticalIntent(query)
	specific := filters.HasSpecificFilters()

	switch {
	case analytical && specific:
		return core.StrategyHybrid
	case analytical:
		return core.StrategySemantic
	case specific:
		return core.StrategyKeyword
	default:
		return core.StrategyHybrid
	}
}

// selector produces the ranked candidate set for one strategy. The
// returned strategy reports what actually ran, which differs from the
// requested one after a fallback.
type selector interface {
	selectCandidates(ctx context.Context, query string, pool []*core.AuditRecord, filters *core.ExtractedFilters, opts BuildOptions) ([]core.ScoredCandidate, core.Strategy, error)
}

type keywordSelector struct{}

func (s *keywordSelector) selectCandidates(_ context.Context, _ string, pool []*core.AuditRecord, filters *core.ExtractedFilters, _ BuildOptions) ([]core.ScoredCandidate, core.Strategy, error) {
	return scoreAndRank(pool, filters), core.StrategyKeyword, nil
}

type semanticSelector struct {
	searcher SemanticSearcher
}

func (s *semanticSelector) selectCandidates(ctx context.Context, query string, pool []*core.AuditRecord, _ *core.ExtractedFilters, opts BuildOptions) ([]core.ScoredCandidate, core.Strategy, error) {
	if s.searcher == nil {
		return nil, core.StrategySemantic, ErrSemanticUnavailable
	}
	candidates, err := s.searcher.Search(ctx, query, pool, opts.MaxResults, opts.MinThreshold)
	if err != nil {
		return nil, core.StrategySemantic, err
	}
	return candidates, core.StrategySemantic, nil
}

type hybridSelector struct {
	searcher SemanticSearcher
	monitor  BuildMonitor
}

func (s *hybridSelector) selectCandidates(ctx context.Context, query string, pool []*core.AuditRecord, filters *core.ExtractedFilters, opts BuildOptions) ([]core.ScoredCandidate, core.Strategy, error) {
	if s.searcher == nil {
		return nil, core.StrategyHybrid, ErrSemanticUnavailable
	}
	// The keyword prefilter bounds the number of similarity
	// computations; oversampling keeps enough recall for the re-rank.
	limit := opts.MaxResults * opts.PrefilterMultiplier

	narrowed := pool
	if scored := scoreAndRank(pool, filters); len(scored) > 0 {
		if len(scored) > limit {
			scored = scored[:limit]
		}
		narrowed = make([]*core.AuditRecord, 0, len(scored))
		for _, candidate := range scored {
			narrowed = append(narrowed, candidate.Record)
		}
	} else if len(narrowed) > limit {
		// No keyword signal to narrow on; cap the pool as-is
		narrowed = narrowed[:limit]
	}
	s.monitor.AfterKeywordPrefilter(narrowed)

	candidates, err := s.searcher.Search(ctx, query, narrowed, opts.MaxResults, opts.MinThreshold)
	if err != nil {
		return nil, core.StrategyHybrid, err
	}
	return candidates, core.StrategyHybrid, nil
}

// fallbackSelector runs a primary selector and switches to a second one
// when the primary fails. A semantic outage degrades to keyword ranking
// instead of aborting the query.
type fallbackSelector struct {
	primary  selector
	fallback selector
	logger   *slog.Logger
}

func (s *fallbackSelector) selectCandidates(ctx context.Context, query string, pool []*core.AuditRecord, filters *core.ExtractedFilters, opts BuildOptions) ([]core.ScoredCandidate, core.Strategy, error) {
	candidates, used, err := s.primary.selectCandidates(ctx, query, pool, filters, opts)
	if err == nil {
		return candidates, used, nil
	}
	s.logger.Warn("selection strategy failed, falling back", "strategy", string(used), "err", err)
	return s.fallback.selectCandidates(ctx, query, pool, filters, opts)
}
