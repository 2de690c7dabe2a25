package core

import "time"

// Strategy identifies how candidate findings are selected and scored
// for a query.
type Strategy string

const (
	// StrategyKeyword matches structured filters against record fields.
	StrategyKeyword Strategy = "keyword"
	// StrategySemantic ranks records by embedding similarity to the query.
	StrategySemantic Strategy = "semantic"
	// StrategyHybrid narrows with keywords, then re-ranks semantically.
	StrategyHybrid Strategy = "hybrid"
)

// Canonical intent labels. The recognizer may pass through other labels
// produced by the language model; downstream behavior keys off
// RequiresAnalysis, not the label.
const (
	IntentSearchFindings  = "search_findings"
	IntentAnalyzeFindings = "analyze_findings"
)

// DateRange bounds a filter to findings between Start and End inclusive.
// Start must not be after End.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ExtractedFilters is the structured view of a query, produced by the
// pattern extractor or the intent recognizer. Every field is optional;
// the zero value means "no constraint".
type ExtractedFilters struct {
	Year        string // 4-digit year in 2000-2099
	ProjectType string // one of ProjectTypes
	Severity    []Severity
	Status      []Status
	Department  string
	Keywords    []string // distinct, first-seen casing, extraction order
	DateRange   *DateRange
}

// HasSpecificFilters reports whether the filters pin down a year,
// department, or project type. These are the signals that make
// rule-based matching precise enough to trust on its own.
func (f *ExtractedFilters) HasSpecificFilters() bool {
	if f == nil {
		return false
	}
	return f.Year != "" || f.Department != "" || f.ProjectType != ""
}

// Empty reports whether no filter field is set at all.
func (f *ExtractedFilters) Empty() bool {
	if f == nil {
		return true
	}
	return f.Year == "" && f.ProjectType == "" && f.Department == "" &&
		len(f.Severity) == 0 && len(f.Status) == 0 && len(f.Keywords) == 0 &&
		f.DateRange == nil
}

// RecognizedIntent is the classification of a single query. It is created
// once per query and never mutated afterwards.
type RecognizedIntent struct {
	Intent           string
	Filters          *ExtractedFilters
	RequiresAnalysis bool
	Confidence       float64 // always within [0,1]
	OriginalQuery    string
}

// ScoredCandidate pairs a record with its relevance under the active
// strategy. Keyword scores are normalized from a 0-100 raw scale,
// semantic scores are cosine similarity; both land in [0,1].
type ScoredCandidate struct {
	Record    *AuditRecord
	Relevance float64
}

// ContextMetadata describes how a context selection went.
type ContextMetadata struct {
	TotalCandidates  int
	SelectedCount    int
	AverageRelevance float64
	// Truncated is true only when a candidate was dropped for the token
	// budget. Cuts from the result cap alone do not set it.
	Truncated bool
}

// ContextBuildResult is the assembled, token-budgeted context for one
// query. Built fresh per query and never persisted.
type ContextBuildResult struct {
	ContextString   string
	SelectedRecords []ScoredCandidate
	StrategyUsed    Strategy
	EstimatedTokens int
	Metadata        ContextMetadata
}

// Records returns the selected records in selection order.
func (r *ContextBuildResult) Records() []*AuditRecord {
	records := make([]*AuditRecord, 0, len(r.SelectedRecords))
	for _, c := range r.SelectedRecords {
		records = append(records, c.Record)
	}
	return records
}

// ResponseType distinguishes the three response shapes an answer can take.
type ResponseType string

const (
	// ResponseSimple is a formatted listing with no model narrative.
	ResponseSimple ResponseType = "simple"
	// ResponseComplex is a model-written analysis with a source section.
	ResponseComplex ResponseType = "complex"
	// ResponseHybrid combines a structured listing with model analysis.
	ResponseHybrid ResponseType = "hybrid"
)

// FindingSummary is the compact listing row for a finding.
type FindingSummary struct {
	Id       ID
	Code     string
	Title    string
	Severity Severity
}

// Pagination describes the caller's position in a paged result set.
type Pagination struct {
	TotalCount  int
	CurrentPage int
	PageSize    int
	TotalPages  int
	HasMore     bool
}

// QueryMetadata carries pipeline diagnostics attached to every response.
type QueryMetadata struct {
	Intent           string
	Confidence       float64
	Strategy         Strategy
	TotalCandidates  int
	SelectedCount    int
	AverageRelevance float64
	EstimatedTokens  int
	Truncated        bool
	Elapsed          time.Duration
}

// QueryResponse is the terminal artifact returned to callers.
type QueryResponse struct {
	Type             ResponseType
	Answer           string
	FindingSummaries []FindingSummary
	Metadata         *QueryMetadata
	Pagination       *Pagination
}
