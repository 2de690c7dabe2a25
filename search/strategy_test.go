package search

import (
	"testing"

	"github.com/poiesic/findit/core"
	"github.com/stretchr/testify/assert"
)

func TestHasAnalyticalIntent(t *testing.T) {
	assert.True(t, hasAnalyticalIntent("Why do drainage findings keep recurring?"))
	assert.True(t, hasAnalyticalIntent("ANALYZE the permit situation"))
	assert.True(t, hasAnalyticalIntent("what is the trend in procurement findings"))
	assert.True(t, hasAnalyticalIntent("bandingkan temuan 2023 dan 2024"))
	assert.False(t, hasAnalyticalIntent("show me critical findings from 2024"))
	assert.False(t, hasAnalyticalIntent(""))
}

func TestChooseStrategy(t *testing.T) {
	analytical := "why do these findings recur"
	plain := "show me the findings"
	specific := &core.ExtractedFilters{Year: "2024"}
	unspecific := &core.ExtractedFilters{Keywords: []string{"drainage"}}

	tests := []struct {
		name      string
		query     string
		filters   *core.ExtractedFilters
		available bool
		want      core.Strategy
	}{
		{"semantic unavailable forces keyword", analytical, specific, false, core.StrategyKeyword},
		{"analytical with specific filters", analytical, specific, true, core.StrategyHybrid},
		{"analytical only", analytical, unspecific, true, core.StrategySemantic},
		{"specific filters only", plain, specific, true, core.StrategyKeyword},
		{"neither defaults to hybrid", plain, unspecific, true, core.StrategyHybrid},
		{"nil filters default to hybrid", plain, nil, true, core.StrategyHybrid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, chooseStrategy(tt.query, tt.filters, tt.available))
		})
	}
}
