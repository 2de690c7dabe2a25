package intent

import (
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/poiesic/findit/core"
)

// alias binds a surface term to its canonical value. Tables are kept
// sorted longest-term-first so multi-word aliases win over their
// substrings ("kawasan industri" before "kawasan", "shopping center"
// before "mall").
type alias struct {
	term      string
	canonical string
	re        *regexp.Regexp
}

func compileAliases(raw map[string]string) []alias {
	aliases := make([]alias, 0, len(raw))
	for term, canonical := range raw {
		aliases = append(aliases, alias{
			term:      term,
			canonical: canonical,
			re:        regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`),
		})
	}
	sort.SliceStable(aliases, func(i, j int) bool {
		if len(aliases[i].term) != len(aliases[j].term) {
			return len(aliases[i].term) > len(aliases[j].term)
		}
		return aliases[i].term < aliases[j].term
	})
	return aliases
}

var projectTypeAliases = compileAliases(map[string]string{
	"mall":               "Mall",
	"shopping center":    "Mall",
	"shopping centre":    "Mall",
	"pusat perbelanjaan": "Mall",
	"office":             "Office",
	"perkantoran":        "Office",
	"apartment":          "Apartment",
	"apartemen":          "Apartment",
	"hotel":              "Hotel",
	"residential":        "Residential",
	"perumahan":          "Residential",
	"housing":            "Residential",
	"township":           "Township",
	"kota mandiri":       "Township",
	"kawasan":            "Township",
	"industrial estate":  "Industrial Estate",
	"kawasan industri":   "Industrial Estate",
	"hospital":           "Healthcare",
	"rumah sakit":        "Healthcare",
	"healthcare":         "Healthcare",
	"clinic":             "Healthcare",
	"klinik":             "Healthcare",
})

var severityAliases = compileAliases(map[string]string{
	"critical": "Critical",
	"kritis":   "Critical",
	"severe":   "Critical",
	"high":     "High",
	"tinggi":   "High",
	"major":    "High",
	"medium":   "Medium",
	"moderate": "Medium",
	"sedang":   "Medium",
	"low":      "Low",
	"minor":    "Low",
	"rendah":   "Low",
})

var statusAliases = compileAliases(map[string]string{
	"open":         "Open",
	"terbuka":      "Open",
	"in progress":  "In Progress",
	"ongoing":      "In Progress",
	"dalam proses": "In Progress",
	"closed":       "Closed",
	"resolved":     "Closed",
	"selesai":      "Closed",
	"deferred":     "Deferred",
	"postponed":    "Deferred",
	"ditunda":      "Deferred",
})

// departmentList is the fixed set of canonical department names.
var departmentList = []string{
	"Engineering",
	"Procurement",
	"Finance",
	"Legal",
	"Marketing",
	"Operations",
	"Human Resources",
	"Planning",
	"Construction",
	"Sales",
}

var departmentAliases = compileAliases(map[string]string{
	"engineering":     "Engineering",
	"teknik":          "Engineering",
	"procurement":     "Procurement",
	"pengadaan":       "Procurement",
	"purchasing":      "Procurement",
	"finance":         "Finance",
	"keuangan":        "Finance",
	"legal":           "Legal",
	"hukum":           "Legal",
	"marketing":       "Marketing",
	"pemasaran":       "Marketing",
	"operations":      "Operations",
	"operasional":     "Operations",
	"human resources": "Human Resources",
	"hr":              "Human Resources",
	"sdm":             "Human Resources",
	"planning":        "Planning",
	"perencanaan":     "Planning",
	"construction":    "Construction",
	"konstruksi":      "Construction",
	"sales":           "Sales",
	"penjualan":       "Sales",
})

var departmentNameAliases = compileAliases(func() map[string]string {
	m := make(map[string]string, len(departmentList))
	for _, name := range departmentList {
		m[strings.ToLower(name)] = name
	}
	return m
}())

// departmentTerms holds every department surface word, lowercased.
// These words never become free keywords.
var departmentTerms = buildDepartmentTerms()

func buildDepartmentTerms() map[string]bool {
	terms := map[string]bool{
		"department": true,
		"departemen": true,
		"dept":       true,
		"division":   true,
		"divisi":     true,
		"bagian":     true,
	}
	for _, a := range departmentAliases {
		for _, word := range strings.Fields(a.term) {
			terms[word] = true
		}
	}
	return terms
}

// stopWords are query fillers excluded from free keywords. English and
// Indonesian are mixed because queries arrive in both.
var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "was": true,
	"were": true, "with": true, "from": true, "about": true, "into": true,
	"that": true, "this": true, "these": true, "those": true, "there": true,
	"what": true, "which": true, "when": true, "where": true, "who": true,
	"how": true, "all": true, "any": true, "can": true, "you": true,
	"show": true, "give": true, "get": true, "list": true, "find": true,
	"tell": true, "please": true, "need": true, "want": true, "have": true,
	"has": true, "had": true, "does": true, "did": true, "not": true,
	"many": true, "much": true, "more": true, "most": true, "some": true,
	"few": true, "last": true, "next": true, "current": true, "previous": true,
	"finding": true, "findings": true, "issue": true, "issues": true,
	"problem": true, "problems": true, "audit": true, "audits": true,
	"year": true, "record": true, "records": true, "report": true,
	"reports": true, "result": true, "results": true, "project": true,
	"projects": true,
	"yang": true, "dan": true, "atau": true, "dari": true, "untuk": true,
	"dengan": true, "pada": true, "dalam": true, "adalah": true, "ada": true,
	"ini": true, "itu": true, "saya": true, "kami": true, "kita": true,
	"apa": true, "mana": true, "bagaimana": true, "kapan": true,
	"tampilkan": true, "tunjukkan": true, "cari": true, "carikan": true,
	"berikan": true, "tolong": true, "mohon": true, "semua": true,
	"temuan": true, "masalah": true, "tahun": true, "laporan": true,
	"hasil": true, "data": true, "tentang": true, "mengenai": true,
	"lalu": true, "depan": true, "kemarin": true, "sekarang": true,
	"proyek": true,
}

// Relative year phrases are checked before explicit years, so
// "last year" in a query that also quotes a number resolves against
// the clock, not the literal.
var (
	currentYearPattern  = regexp.MustCompile(`(?i)\b(?:this|current)\s+year\b|\btahun\s+ini\b`)
	previousYearPattern = regexp.MustCompile(`(?i)\b(?:last|previous)\s+year\b|\btahun\s+(?:lalu|kemarin)\b`)
	nextYearPattern     = regexp.MustCompile(`(?i)\bnext\s+year\b|\btahun\s+depan\b`)
	explicitYearPattern = regexp.MustCompile(`\b(20\d{2})\b`)
)

var (
	departmentBeforePattern  = regexp.MustCompile(`(?i)\b([a-z]+(?:\s+[a-z]+)?)\s+(?:department|dept|division)\b`)
	departmentAfterPattern   = regexp.MustCompile(`(?i)\b(?:department\s+of|dept\.?\s+of|departemen|divisi|bagian)\s+([a-z]+(?:\s+[a-z]+)?)`)
	departmentContextPattern = regexp.MustCompile(`(?i)\b(?:findings|issues|problems|temuan|masalah)\s+(?:in|from|at|di|dari)\s+(?:the\s+)?([a-z]+(?:\s+[a-z]+)?)`)
)

var (
	quotedPhrasePattern = regexp.MustCompile(`"([^"]+)"`)
	alphaTokenPattern   = regexp.MustCompile(`[a-zA-Z]{3,}`)
)

// Extractor derives structured filters from query text without a model
// call. All matching is deterministic; the clock only matters for
// relative year terms.
type Extractor struct {
	clock func() time.Time
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithClock replaces the time source used for relative year terms.
// A nil clock restores time.Now.
func WithClock(clock func() time.Time) ExtractorOption {
	return func(e *Extractor) {
		if clock == nil {
			clock = time.Now
		}
		e.clock = clock
	}
}

// NewExtractor creates a pattern-based filter extractor.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{clock: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractWithPatterns reads every recognizable filter out of the query.
// Unmatched fields stay at their zero values.
func (e *Extractor) ExtractWithPatterns(query string) *core.ExtractedFilters {
	filters := &core.ExtractedFilters{}

	filters.Year = e.extractYear(query)
	filters.ProjectType = extractProjectType(query)
	filters.Severity = extractSeverities(query)
	filters.Status = extractStatuses(query)
	filters.Department = extractDepartment(query)
	filters.Keywords = extractKeywords(query, filters.Department)

	return filters
}

func (e *Extractor) extractYear(query string) string {
	now := e.clock()
	switch {
	case currentYearPattern.MatchString(query):
		return strconv.Itoa(now.Year())
	case previousYearPattern.MatchString(query):
		return strconv.Itoa(now.Year() - 1)
	case nextYearPattern.MatchString(query):
		return strconv.Itoa(now.Year() + 1)
	}
	if m := explicitYearPattern.FindStringSubmatch(query); m != nil {
		return m[1]
	}
	return ""
}

func extractProjectType(query string) string {
	for _, a := range projectTypeAliases {
		if a.re.MatchString(query) {
			return a.canonical
		}
	}
	return ""
}

func extractSeverities(query string) []core.Severity {
	var severities []core.Severity
	for _, a := range severityAliases {
		if !a.re.MatchString(query) {
			continue
		}
		severity := core.Severity(a.canonical)
		if !slices.Contains(severities, severity) {
			severities = append(severities, severity)
		}
	}
	return severities
}

func extractStatuses(query string) []core.Status {
	var statuses []core.Status
	for _, a := range statusAliases {
		if !a.re.MatchString(query) {
			continue
		}
		status := core.Status(a.canonical)
		if !slices.Contains(statuses, status) {
			statuses = append(statuses, status)
		}
	}
	return statuses
}

// extractDepartment resolves a department in three tiers: explicit
// "X department" or "divisi X" phrasing, then a canonical name anywhere
// in the query, then a known alias right after a findings phrase.
// A phrasing capture that names no known department is kept as a
// free-form department, but only after every capture had its chance to
// canonicalize.
func extractDepartment(query string) string {
	var freeform string
	for _, pattern := range []*regexp.Regexp{departmentBeforePattern, departmentAfterPattern} {
		m := pattern.FindStringSubmatch(query)
		if m == nil {
			continue
		}
		captured := stripArticle(strings.TrimSpace(m[1]))
		if canonical, ok := canonicalDepartment(captured); ok {
			return canonical
		}
		if freeform == "" {
			freeform = titleCase(strings.ToLower(captured))
		}
	}
	if freeform != "" {
		return freeform
	}

	for _, a := range departmentNameAliases {
		if a.re.MatchString(query) {
			return a.canonical
		}
	}

	if m := departmentContextPattern.FindStringSubmatch(query); m != nil {
		if canonical, ok := canonicalDepartment(strings.TrimSpace(m[1])); ok {
			return canonical
		}
	}

	return ""
}

// canonicalDepartment maps a captured phrase onto the alias table. The
// capture can drag a neighboring word along, so the first and last
// words are retried individually.
func canonicalDepartment(captured string) (string, bool) {
	lowered := strings.ToLower(strings.TrimSpace(captured))
	if lowered == "" {
		return "", false
	}

	candidates := []string{lowered}
	if fields := strings.Fields(lowered); len(fields) > 1 {
		candidates = append(candidates, fields[0], fields[len(fields)-1])
	}

	for _, candidate := range candidates {
		for _, a := range departmentAliases {
			if a.term == candidate {
				return a.canonical, true
			}
		}
	}
	return "", false
}

func stripArticle(s string) string {
	fields := strings.Fields(s)
	if len(fields) > 1 {
		switch strings.ToLower(fields[0]) {
		case "the", "a", "an", "our", "di":
			return strings.Join(fields[1:], " ")
		}
	}
	return s
}

func titleCase(s string) string {
	fields := strings.Fields(s)
	for i, field := range fields {
		r := []rune(field)
		r[0] = unicode.ToUpper(r[0])
		fields[i] = string(r)
	}
	return strings.Join(fields, " ")
}

// extractKeywords pulls quoted phrases verbatim first, then alphabetic
// tokens of length three or more from the unquoted text. Stop words and
// department terms are excluded; duplicates are dropped
// case-insensitively keeping the first-seen casing.
func extractKeywords(query, department string) []string {
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

	for _, m := range quotedPhrasePattern.FindAllStringSubmatch(query, -1) {
		if phrase := strings.TrimSpace(m[1]); phrase != "" {
			appendKeyword(phrase)
		}
	}
	unquoted := quotedPhrasePattern.ReplaceAllString(query, " ")

	extracted := make(map[string]bool)
	for _, word := range strings.Fields(strings.ToLower(department)) {
		extracted[word] = true
	}

	for _, token := range alphaTokenPattern.FindAllString(unquoted, -1) {
		lowered := strings.ToLower(token)
		if stopWords[lowered] || departmentTerms[lowered] || extracted[lowered] {
			continue
		}
		appendKeyword(token)
	}

	return keywords
}

// FilterValidation reports the outcome of checking a filter set.
// Invalid entries are dropped from Sanitized and described in Errors;
// validation itself never fails.
type FilterValidation struct {
	Valid     bool
	Errors    []string
	Sanitized *core.ExtractedFilters
}

// ValidateFilters re-checks enum membership and ranges on a filter set,
// returning a sanitized copy alongside descriptions of anything dropped.
// The canonical sets are the same ones the extractor emits, so filters
// produced by ExtractWithPatterns always validate cleanly.
func (e *Extractor) ValidateFilters(filters *core.ExtractedFilters) FilterValidation {
	validation := FilterValidation{Sanitized: &core.ExtractedFilters{}}
	if filters == nil {
		validation.Valid = true
		return validation
	}

	sanitized := validation.Sanitized

	if filters.Year != "" {
		if err := core.ValidateYearFilter(filters.Year); err != nil {
			validation.Errors = append(validation.Errors, fmt.Sprintf("year %q dropped: %v", filters.Year, err))
		} else {
			sanitized.Year = filters.Year
		}
	}

	if filters.ProjectType != "" {
		if err := core.ValidateProjectType(filters.ProjectType); err != nil {
			validation.Errors = append(validation.Errors, fmt.Sprintf("project type %q dropped: %v", filters.ProjectType, err))
		} else {
			sanitized.ProjectType = filters.ProjectType
		}
	}

	for _, severity := range filters.Severity {
		if err := core.ValidateSeverity(severity); err != nil {
			validation.Errors = append(validation.Errors, fmt.Sprintf("severity %q dropped: %v", severity, err))
			continue
		}
		sanitized.Severity = append(sanitized.Severity, severity)
	}

	for _, status := range filters.Status {
		if err := core.ValidateStatus(status); err != nil {
			validation.Errors = append(validation.Errors, fmt.Sprintf("status %q dropped: %v", status, err))
			continue
		}
		sanitized.Status = append(sanitized.Status, status)
	}

	sanitized.Department = strings.TrimSpace(filters.Department)

	for _, keyword := range filters.Keywords {
		if keyword = strings.TrimSpace(keyword); keyword != "" {
			sanitized.Keywords = append(sanitized.Keywords, keyword)
		}
	}

	if filters.DateRange != nil {
		if err := core.ValidateDateRange(filters.DateRange); err != nil {
			validation.Errors = append(validation.Errors, fmt.Sprintf("date range dropped: %v", err))
		} else {
			rangeCopy := *filters.DateRange
			sanitized.DateRange = &rangeCopy
		}
	}

	validation.Valid = len(validation.Errors) == 0
	return validation
}
