package intent

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/findit/core"
)

// fallbackConfidence is reported by every fallback classification.
const fallbackConfidence = 0.6

// The fallback carries its own tables so it keeps working when nothing
// else does. Canonical values stay in lockstep with core's enums.
var fallbackSeverityAliases = compileAliases(map[string]string{
	"critical": "Critical",
	"kritis":   "Critical",
	"high":     "High",
	"tinggi":   "High",
	"medium":   "Medium",
	"sedang":   "Medium",
	"low":      "Low",
	"rendah":   "Low",
})

var fallbackStatusAliases = compileAliases(map[string]string{
	"open":        "Open",
	"terbuka":     "Open",
	"in progress": "In Progress",
	"ongoing":     "In Progress",
	"closed":      "Closed",
	"selesai":     "Closed",
	"deferred":    "Deferred",
	"ditunda":     "Deferred",
})

// fallbackAnalysisKeywords mark queries that want reasoning, not a
// listing.
var fallbackAnalysisKeywords = []string{
	"why", "analyze", "analyse", "analysis", "trend", "compare",
	"comparison", "recommend", "summarize", "summarise", "summary",
	"explain", "insight", "pattern", "root cause",
	"mengapa", "kenapa", "analisa", "analisis", "tren", "bandingkan",
	"rekomendasi", "ringkasan", "jelaskan", "penyebab",
}

var (
	fallbackCurrentYearPattern  = regexp.MustCompile(`(?i)\b(?:this|current)\s+year\b|\btahun\s+ini\b`)
	fallbackPreviousYearPattern = regexp.MustCompile(`(?i)\b(?:last|previous)\s+year\b|\btahun\s+(?:lalu|kemarin)\b`)
	fallbackNextYearPattern     = regexp.MustCompile(`(?i)\bnext\s+year\b|\btahun\s+depan\b`)
	fallbackExplicitYearPattern = regexp.MustCompile(`\b(20\d{2})\b`)
)

// fallbackFilterWords are tokens the fallback already consumed as
// filters or analysis markers; they never become free keywords.
var fallbackFilterWords = buildFallbackFilterWords()

func buildFallbackFilterWords() map[string]bool {
	words := make(map[string]bool)
	for _, a := range fallbackSeverityAliases {
		for _, word := range strings.Fields(a.term) {
			words[word] = true
		}
	}
	for _, a := range fallbackStatusAliases {
		for _, word := range strings.Fields(a.term) {
			words[word] = true
		}
	}
	for _, keyword := range fallbackAnalysisKeywords {
		for _, word := range strings.Fields(keyword) {
			words[word] = true
		}
	}
	return words
}

// fallbackRecognize is the deterministic classification path. It never
// fails and never calls out.
func fallbackRecognize(query string, now time.Time) *core.RecognizedIntent {
	filters := &core.ExtractedFilters{}
	lowered := strings.ToLower(query)

	filters.Year = fallbackYear(query, now)

	for _, a := range fallbackSeverityAliases {
		if !a.re.MatchString(query) {
			continue
		}
		severity := core.Severity(a.canonical)
		if !slices.Contains(filters.Severity, severity) {
			filters.Severity = append(filters.Severity, severity)
		}
	}

	for _, a := range fallbackStatusAliases {
		if !a.re.MatchString(query) {
			continue
		}
		status := core.Status(a.canonical)
		if !slices.Contains(filters.Status, status) {
			filters.Status = append(filters.Status, status)
		}
	}

	analysisHit := false
	for _, keyword := range fallbackAnalysisKeywords {
		if strings.Contains(lowered, keyword) {
			analysisHit = true
			break
		}
	}

	filters.Keywords = fallbackKeywords(query)

	requiresAnalysis := analysisHit || len(filters.Keywords) > 0
	intentLabel := core.IntentSearchFindings
	if requiresAnalysis {
		intentLabel = core.IntentAnalyzeFindings
	}

	return &core.RecognizedIntent{
		Intent:           intentLabel,
		Filters:          filters,
		RequiresAnalysis: requiresAnalysis,
		Confidence:       fallbackConfidence,
		OriginalQuery:    query,
	}
}

func fallbackYear(query string, now time.Time) string {
	switch {
	case fallbackCurrentYearPattern.MatchString(query):
		return strconv.Itoa(now.Year())
	case fallbackPreviousYearPattern.MatchString(query):
		return strconv.Itoa(now.Year() - 1)
	case fallbackNextYearPattern.MatchString(query):
		return strconv.Itoa(now.Year() + 1)
	}
	if m := fallbackExplicitYearPattern.FindStringSubmatch(query); m != nil {
		return m[1]
	}
	return ""
}

// fallbackKeywords expands glossary acronyms first, then keeps
// alphabetic tokens that survive the stop-word and filter-word sets.
func fallbackKeywords(query string) []string {
	var keywords []string
	seen := make(map[string]bool)

	appendKeyword := func(keyword string) {
		lowered := strings.ToLower(keyword)
		if seen[lowered] {
			return
		}
		seen[lowered] = true
		keywords = append(keywords, keyword)
	}

	for _, expansion := range expandAcronyms(query) {
		appendKeyword(expansion)
	}

	for _, token := range alphaTokenPattern.FindAllString(query, -1) {
		lowered := strings.ToLower(token)
		if stopWords[lowered] || fallbackFilterWords[lowered] || departmentTerms[lowered] {
			continue
		}
		appendKeyword(token)
	}

	return keywords
}
