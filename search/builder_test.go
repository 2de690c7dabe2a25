package search

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/poiesic/findit/ai/mock"
	"github.com/poiesic/findit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingMonitor captures build callbacks for assertions.
type recordingMonitor struct {
	startCalled      bool
	poolSize         int
	strategySelected core.Strategy
	prefilterSize    int
	prefilterCalled  bool
	truncatedOmitted int
	truncatedCalled  bool
	finishCalled     bool
}

var _ BuildMonitor = (*recordingMonitor)(nil)

func (m *recordingMonitor) Start(query string, poolSize int) {
	m.startCalled = true
	m.poolSize = poolSize
}

func (m *recordingMonitor) StrategySelected(strategy core.Strategy) {
	m.strategySelected = strategy
}

func (m *recordingMonitor) AfterKeywordPrefilter(narrowed []*core.AuditRecord) {
	m.prefilterCalled = true
	m.prefilterSize = len(narrowed)
}

func (m *recordingMonitor) AfterSelection(selected []core.ScoredCandidate) {}

func (m *recordingMonitor) Truncated(omitted int) {
	m.truncatedCalled = true
	m.truncatedOmitted = omitted
}

func (m *recordingMonitor) Finish(result *core.ContextBuildResult) {
	m.finishCalled = true
}

func alignedEmbedder() *mock.MockEmbedder {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}
	return embedder
}

func buildPool(n, year int) []*core.AuditRecord {
	pool := make([]*core.AuditRecord, 0, n)
	for i := 0; i < n; i++ {
		pool = append(pool, &core.AuditRecord{
			Id:          core.ID(i + 1),
			Project:     fmt.Sprintf("Project %02d", i+1),
			Year:        year,
			Department:  "Engineering",
			RiskArea:    "Compliance",
			Description: fmt.Sprintf("Sample finding number %d.", i+1),
			Code:        fmt.Sprintf("AUD-%d-%03d", year, i+1),
			Nilai:       12,
			Subholding:  "Group A",
			Vector:      []float32{1, 0, 0},
		})
	}
	return pool
}

func TestNewContextBuilder(t *testing.T) {
	t.Run("nil searcher is allowed", func(t *testing.T) {
		builder, err := NewContextBuilder(nil)
		require.NoError(t, err)
		assert.NotNil(t, builder)
		assert.False(t, builder.semanticAvailable())
	})

	t.Run("logger option", func(t *testing.T) {
		builder, err := NewContextBuilder(nil, WithLogger(slog.Default()))
		require.NoError(t, err)
		assert.NotNil(t, builder)
	})

	t.Run("nil logger keeps the default", func(t *testing.T) {
		builder, err := NewContextBuilder(nil, WithLogger(nil))
		require.NoError(t, err)
		assert.NotNil(t, builder)
	})

	t.Run("nil estimator falls back to heuristic", func(t *testing.T) {
		builder, err := NewContextBuilder(nil, WithTokenEstimator(nil))
		require.NoError(t, err)
		assert.NotNil(t, builder)
	})
}

func TestBuildContext_EmptyPool(t *testing.T) {
	builder, err := NewContextBuilder(nil)
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	result := builder.BuildContextWithMonitor(context.Background(), "any query", nil, nil, BuildOptions{}, monitor)

	require.NotNil(t, result)
	assert.Equal(t, placeholderContext, result.ContextString)
	assert.Equal(t, core.StrategyKeyword, result.StrategyUsed)
	assert.Empty(t, result.SelectedRecords)
	assert.Zero(t, result.Metadata.TotalCandidates)
	assert.Zero(t, result.Metadata.SelectedCount)
	assert.Zero(t, result.Metadata.AverageRelevance)
	assert.False(t, result.Metadata.Truncated)
	assert.Greater(t, result.EstimatedTokens, 0)
	assert.True(t, monitor.startCalled)
	assert.True(t, monitor.finishCalled)
}

func TestBuildContext_NoMatchesYieldsPlaceholder(t *testing.T) {
	builder, err := NewContextBuilder(nil)
	require.NoError(t, err)

	pool := buildPool(5, 2024)
	filters := &core.ExtractedFilters{Year: "1999"}
	result := builder.BuildContext(context.Background(), "findings from 1999", pool, filters, BuildOptions{})

	assert.Equal(t, placeholderContext, result.ContextString)
	assert.Equal(t, core.StrategyKeyword, result.StrategyUsed)
	assert.Zero(t, result.Metadata.SelectedCount)
	assert.False(t, result.Metadata.Truncated)
}

func TestBuildContext_KeywordSelection(t *testing.T) {
	builder, err := NewContextBuilder(nil)
	require.NoError(t, err)

	pool := buildPool(5, 2024)
	pool = append(pool, &core.AuditRecord{
		Id: 99, Project: "Old Project", Year: 2019,
		Description: "Stale finding.", Code: "AUD-2019-001", Nilai: 3,
	})
	filters := &core.ExtractedFilters{Year: "2024"}

	result := builder.BuildContext(context.Background(), "show me 2024 findings", pool, filters, BuildOptions{})

	assert.Equal(t, core.StrategyKeyword, result.StrategyUsed)
	assert.Equal(t, 5, result.Metadata.TotalCandidates)
	assert.Equal(t, 5, result.Metadata.SelectedCount)
	assert.False(t, result.Metadata.Truncated)
	assert.Contains(t, result.ContextString, "Finding AUD-2024-001")
	assert.Contains(t, result.ContextString, "Severity: High (score 12)")
	assert.NotContains(t, result.ContextString, "AUD-2019-001")
	assert.Equal(t, result.EstimatedTokens, HeuristicEstimator{}.EstimateTokens(result.ContextString))
}

func TestBuildContext_StrategySelection(t *testing.T) {
	searcher := NewEmbeddingSearcher(alignedEmbedder())
	builder, err := NewContextBuilder(searcher)
	require.NoError(t, err)

	specific := &core.ExtractedFilters{Year: "2024"}
	unspecific := &core.ExtractedFilters{Keywords: []string{"finding"}}

	tests := []struct {
		name    string
		query   string
		filters *core.ExtractedFilters
		want    core.Strategy
	}{
		{"analytical with filters", "why do these findings recur", specific, core.StrategyHybrid},
		{"analytical only", "why do these findings recur", unspecific, core.StrategySemantic},
		{"filters only", "show me the findings", specific, core.StrategyKeyword},
		{"neither", "show me the findings", unspecific, core.StrategyHybrid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			monitor := &recordingMonitor{}
			result := builder.BuildContextWithMonitor(context.Background(), tt.query, buildPool(6, 2024), tt.filters, BuildOptions{}, monitor)
			assert.Equal(t, tt.want, monitor.strategySelected)
			assert.Equal(t, tt.want, result.StrategyUsed)
			assert.NotZero(t, result.Metadata.SelectedCount)
		})
	}
}

func TestBuildContext_SemanticUnavailableForcesKeyword(t *testing.T) {
	builder, err := NewContextBuilder(NewEmbeddingSearcher(nil))
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	pool := buildPool(3, 2024)
	filters := &core.ExtractedFilters{Year: "2024"}
	result := builder.BuildContextWithMonitor(context.Background(), "why do these findings recur", pool, filters, BuildOptions{}, monitor)

	assert.Equal(t, core.StrategyKeyword, monitor.strategySelected)
	assert.Equal(t, core.StrategyKeyword, result.StrategyUsed)
	assert.Equal(t, 3, result.Metadata.SelectedCount)
}

func TestBuildContext_SemanticFailureFallsBackToKeyword(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, assert.AnError
	}
	builder, err := NewContextBuilder(NewEmbeddingSearcher(embedder))
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	pool := buildPool(4, 2024)
	filters := &core.ExtractedFilters{Year: "2024"}
	result := builder.BuildContextWithMonitor(context.Background(), "query", pool, filters, BuildOptions{Strategy: core.StrategySemantic}, monitor)

	// The chosen strategy was semantic; the one that ran was keyword
	assert.Equal(t, core.StrategySemantic, monitor.strategySelected)
	assert.Equal(t, core.StrategyKeyword, result.StrategyUsed)
	assert.Equal(t, 4, result.Metadata.SelectedCount)
}

func TestBuildContext_ExplicitStrategyOverridesAuto(t *testing.T) {
	builder, err := NewContextBuilder(NewEmbeddingSearcher(alignedEmbedder()))
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	pool := buildPool(3, 2024)
	filters := &core.ExtractedFilters{Year: "2024"}

	// The query is analytical but keyword is forced
	result := builder.BuildContextWithMonitor(context.Background(), "analyze these findings", pool, filters, BuildOptions{Strategy: core.StrategyKeyword}, monitor)

	assert.Equal(t, core.StrategyKeyword, monitor.strategySelected)
	assert.Equal(t, core.StrategyKeyword, result.StrategyUsed)
}

func TestBuildContext_HybridPrefilterSize(t *testing.T) {
	t.Run("pool larger than prefilter limit", func(t *testing.T) {
		builder, err := NewContextBuilder(NewEmbeddingSearcher(alignedEmbedder()))
		require.NoError(t, err)

		monitor := &recordingMonitor{}
		pool := buildPool(30, 2024)
		filters := &core.ExtractedFilters{Year: "2024"}
		opts := BuildOptions{Strategy: core.StrategyHybrid, MaxResults: 5}

		result := builder.BuildContextWithMonitor(context.Background(), "query", pool, filters, opts, monitor)

		require.True(t, monitor.prefilterCalled)
		assert.Equal(t, 15, monitor.prefilterSize) // MaxResults x default multiplier
		assert.Equal(t, core.StrategyHybrid, result.StrategyUsed)
		assert.Equal(t, 5, result.Metadata.SelectedCount)
	})

	t.Run("pool smaller than prefilter limit", func(t *testing.T) {
		builder, err := NewContextBuilder(NewEmbeddingSearcher(alignedEmbedder()))
		require.NoError(t, err)

		monitor := &recordingMonitor{}
		pool := buildPool(8, 2024)
		filters := &core.ExtractedFilters{Year: "2024"}
		opts := BuildOptions{Strategy: core.StrategyHybrid, MaxResults: 5}

		builder.BuildContextWithMonitor(context.Background(), "query", pool, filters, opts, monitor)

		require.True(t, monitor.prefilterCalled)
		assert.Equal(t, 8, monitor.prefilterSize)
	})

	t.Run("no keyword signal caps the raw pool", func(t *testing.T) {
		builder, err := NewContextBuilder(NewEmbeddingSearcher(alignedEmbedder()))
		require.NoError(t, err)

		monitor := &recordingMonitor{}
		pool := buildPool(30, 2024)
		opts := BuildOptions{Strategy: core.StrategyHybrid, MaxResults: 5}

		builder.BuildContextWithMonitor(context.Background(), "query", pool, nil, opts, monitor)

		require.True(t, monitor.prefilterCalled)
		assert.Equal(t, 15, monitor.prefilterSize)
	})
}

func TestBuildContext_TokenBudgetTruncation(t *testing.T) {
	builder, err := NewContextBuilder(nil)
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	pool := buildPool(10, 2024)
	filters := &core.ExtractedFilters{Year: "2024"}
	opts := BuildOptions{MaxTokens: 100}

	result := builder.BuildContextWithMonitor(context.Background(), "query", pool, filters, opts, monitor)

	assert.True(t, result.Metadata.Truncated)
	assert.Greater(t, result.Metadata.SelectedCount, 0)
	assert.Less(t, result.Metadata.SelectedCount, result.Metadata.TotalCandidates)

	omitted := result.Metadata.TotalCandidates - result.Metadata.SelectedCount
	assert.Contains(t, result.ContextString, fmt.Sprintf("[%d more findings omitted", omitted))
	assert.True(t, monitor.truncatedCalled)
	assert.Equal(t, omitted, monitor.truncatedOmitted)
}

func TestBuildContext_ResultCapDoesNotTruncate(t *testing.T) {
	builder, err := NewContextBuilder(nil)
	require.NoError(t, err)

	pool := buildPool(30, 2024)
	filters := &core.ExtractedFilters{Year: "2024"}
	opts := BuildOptions{MaxResults: 5}

	result := builder.BuildContext(context.Background(), "query", pool, filters, opts)

	assert.Equal(t, 30, result.Metadata.TotalCandidates)
	assert.Equal(t, 5, result.Metadata.SelectedCount)
	assert.False(t, result.Metadata.Truncated)
	assert.NotContains(t, result.ContextString, "omitted")
}

func TestBuildContext_AverageRelevance(t *testing.T) {
	builder, err := NewContextBuilder(nil)
	require.NoError(t, err)

	pool := buildPool(5, 2024)
	// Raise three records to Critical; they also gain the severity weight
	for i := 0; i < 3; i++ {
		pool[i].Nilai = 20
	}
	filters := &core.ExtractedFilters{
		Year:     "2024",
		Severity: []core.Severity{core.SeverityCritical},
	}

	result := builder.BuildContext(context.Background(), "query", pool, filters, BuildOptions{})

	// Three records at (25+15)/100, two at 25/100
	require.Equal(t, 5, result.Metadata.SelectedCount)
	expected := (3*0.40 + 2*0.25) / 5
	assert.InDelta(t, expected, result.Metadata.AverageRelevance, 1e-9)

	// Critical records sort ahead of the year-only matches
	assert.Equal(t, core.SeverityCritical, result.SelectedRecords[0].Record.Severity())
	assert.InDelta(t, 0.40, result.SelectedRecords[0].Relevance, 1e-9)
	assert.InDelta(t, 0.25, result.SelectedRecords[4].Relevance, 1e-9)
}

func TestBuildContext_SelectionOrderFollowsRelevance(t *testing.T) {
	builder, err := NewContextBuilder(nil)
	require.NoError(t, err)

	pool := buildPool(6, 2024)
	pool[3].Nilai = 20 // Critical
	filters := &core.ExtractedFilters{
		Year:     "2024",
		Severity: []core.Severity{core.SeverityCritical},
	}

	result := builder.BuildContext(context.Background(), "query", pool, filters, BuildOptions{})

	require.NotEmpty(t, result.SelectedRecords)
	assert.Equal(t, pool[3].Id, result.SelectedRecords[0].Record.Id)
	for i := 0; i < len(result.SelectedRecords)-1; i++ {
		assert.GreaterOrEqual(t,
			result.SelectedRecords[i].Relevance,
			result.SelectedRecords[i+1].Relevance)
	}
}
