package search

import (
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/poiesic/findit/core"
)

// Weights of the rule-based relevance scorer. Raw scores live on a
// 0-100 scale and are divided by maxRawScore for the [0,1] relevance
// used everywhere else.
const (
	yearWeight        = 25
	departmentWeight  = 20
	projectTypeWeight = 15
	severityWeight    = 15
	keywordWeight     = 10
	maxRawScore       = 100
)

// scoreRecord computes the raw 0-100 relevance of one record under the
// extracted filters. A zero score means the record matched nothing.
func scoreRecord(record *core.AuditRecord, filters *core.ExtractedFilters) int {
	if filters.Empty() {
		return 0
	}

	score := 0

	if filters.Year != "" {
		if year, err := strconv.Atoi(filters.Year); err == nil && year == record.Year {
			score += yearWeight
		}
	}

	if filters.Department != "" &&
		strings.Contains(strings.ToLower(record.Department), strings.ToLower(filters.Department)) {
		score += departmentWeight
	}

	if filters.ProjectType != "" && matchesProjectType(record, filters.ProjectType) {
		score += projectTypeWeight
	}

	if len(filters.Severity) > 0 && slices.Contains(filters.Severity, record.Severity()) {
		score += severityWeight
	}

	if len(filters.Keywords) > 0 {
		lowerText := recordText(record)
		tokens := tokenSet(lowerText)
		for _, keyword := range filters.Keywords {
			if matchesKeyword(tokens, lowerText, keyword) {
				score += keywordWeight
			}
		}
	}

	if score > maxRawScore {
		score = maxRawScore
	}
	return score
}

// matchesProjectType checks a record against a project type filter.
// Records carry no dedicated project type field; the classification
// lives in ingest metadata when present, otherwise in the project name.
func matchesProjectType(record *core.AuditRecord, projectType string) bool {
	want := strings.ToLower(projectType)
	if meta, ok := record.Metadata["project_type"]; ok {
		return strings.ToLower(meta) == want
	}
	return strings.Contains(strings.ToLower(record.Project), want)
}

// recordText joins the searchable fields of a record, lowercased.
// Department is scored on its own weight and stays out of the keyword
// text so a department term cannot count twice.
func recordText(record *core.AuditRecord) string {
	return strings.ToLower(strings.Join([]string{
		record.Project,
		record.RiskArea,
		record.Description,
		record.Code,
		record.Subholding,
	}, " "))
}

// scoreAndRank scores the pool and returns every matching candidate in
// descending relevance order. Zero-score records are not candidates.
func scoreAndRank(pool []*core.AuditRecord, filters *core.ExtractedFilters) []core.ScoredCandidate {
	candidates := make([]core.ScoredCandidate, 0, len(pool))
	for _, record := range pool {
		if record == nil {
			continue
		}
		raw := scoreRecord(record, filters)
		if raw == 0 {
			continue
		}
		candidates = append(candidates, core.ScoredCandidate{
			Record:    record,
			Relevance: float64(raw) / float64(maxRawScore),
		})
	}

	// Stable sort keeps pool order among equal scores
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Relevance > candidates[j].Relevance
	})
	return candidates
}
