package respond

import (
	"fmt"
	"strings"
	"time"

	"github.com/poiesic/findit/core"
)

// DefaultPageSize is the number of findings per listing page.
const DefaultPageSize = 10

const (
	noResultsMessage = "No audit findings matched your query."
	descriptionLimit = 120
	sectionRule      = "----------------------------------------"
)

// Formatter renders query responses. The zero value is not usable;
// construct with NewFormatter.
type Formatter struct {
	pageSize int
}

// Option configures a Formatter.
type Option func(*Formatter) error

// WithPageSize overrides the listing page size. Non-positive sizes
// restore the default.
func WithPageSize(size int) Option {
	return func(f *Formatter) error {
		if size <= 0 {
			size = DefaultPageSize
		}
		f.pageSize = size
		return nil
	}
}

// NewFormatter creates a response formatter.
func NewFormatter(opts ...Option) (*Formatter, error) {
	f := &Formatter{pageSize: DefaultPageSize}
	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// PageSize returns the configured listing page size.
func (f *Formatter) PageSize() int {
	return f.pageSize
}

// FormatSimpleResults renders a numbered, glyph-annotated listing of the
// records, paginated at the formatter's page size. Pagination metadata
// is attached whenever the full set exceeds one page; the requested
// page is clamped into range.
func (f *Formatter) FormatSimpleResults(records []*core.AuditRecord, meta *core.QueryMetadata, page int) *core.QueryResponse {
	total := len(records)
	if total == 0 {
		return &core.QueryResponse{
			Type:     core.ResponseSimple,
			Answer:   noResultsMessage,
			Metadata: meta,
		}
	}

	totalPages := (total + f.pageSize - 1) / f.pageSize
	page = clampPage(page, totalPages)
	start := (page - 1) * f.pageSize
	end := min(start+f.pageSize, total)
	pageRecords := records[start:end]

	var sb strings.Builder
	if total == 1 {
		sb.WriteString("Found 1 audit finding:\n\n")
	} else {
		fmt.Fprintf(&sb, "Found %d audit findings:\n\n", total)
	}

	for i, r := range pageRecords {
		writeFindingLine(&sb, start+i+1, r)
	}

	response := &core.QueryResponse{
		Type:             core.ResponseSimple,
		FindingSummaries: summarize(pageRecords),
		Metadata:         meta,
	}

	if totalPages > 1 {
		fmt.Fprintf(&sb, "\nPage %d of %d (%d findings, %d per page).\n",
			page, totalPages, total, f.pageSize)
		response.Pagination = &core.Pagination{
			TotalCount:  total,
			CurrentPage: page,
			PageSize:    f.pageSize,
			TotalPages:  totalPages,
			HasMore:     page < totalPages,
		}
	}

	response.Answer = sb.String()
	return response
}

// FormatAIResponse appends a deduplicated source-findings section to the
// model's answer so readers can audit what grounded it.
func (f *Formatter) FormatAIResponse(llmText string, records []*core.AuditRecord, meta *core.QueryMetadata) *core.QueryResponse {
	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(llmText))

	summaries := summarize(dedupeRecords(records))
	if len(summaries) > 0 {
		sb.WriteString("\n\nSource findings referenced:\n")
		for _, s := range summaries {
			fmt.Fprintf(&sb, "- %s %s (record %d): %s\n",
				severityGlyph(s.Severity), s.Code, uint64(s.Id), s.Title)
		}
	}

	return &core.QueryResponse{
		Type:             core.ResponseComplex,
		Answer:           sb.String(),
		FindingSummaries: summaries,
		Metadata:         meta,
	}
}

// FormatHybridResponse renders a database-results section under the
// simple listing rules, followed by a delimited AI-analysis section.
// An empty analysis leaves the listing section alone.
func (f *Formatter) FormatHybridResponse(records []*core.AuditRecord, llmAnalysis string, meta *core.QueryMetadata, page int) *core.QueryResponse {
	simple := f.FormatSimpleResults(records, meta, page)

	var sb strings.Builder
	sb.WriteString("Database results\n")
	sb.WriteString(sectionRule + "\n")
	sb.WriteString(simple.Answer)

	if analysis := strings.TrimSpace(llmAnalysis); analysis != "" {
		if !strings.HasSuffix(sb.String(), "\n") {
			sb.WriteString("\n")
		}
		sb.WriteString("\nAI analysis\n")
		sb.WriteString(sectionRule + "\n")
		sb.WriteString(analysis)
		sb.WriteString("\n")
	}

	return &core.QueryResponse{
		Type:             core.ResponseHybrid,
		Answer:           sb.String(),
		FindingSummaries: simple.FindingSummaries,
		Metadata:         meta,
		Pagination:       simple.Pagination,
	}
}

// BuildMetadata assembles the diagnostics block attached to every
// response. Nil inputs leave their fields zeroed.
func BuildMetadata(intent *core.RecognizedIntent, build *core.ContextBuildResult, elapsed time.Duration) *core.QueryMetadata {
	meta := &core.QueryMetadata{Elapsed: elapsed}

	if intent != nil {
		meta.Intent = intent.Intent
		meta.Confidence = intent.Confidence
	}

	if build != nil {
		meta.Strategy = build.StrategyUsed
		meta.TotalCandidates = build.Metadata.TotalCandidates
		meta.SelectedCount = build.Metadata.SelectedCount
		meta.AverageRelevance = build.Metadata.AverageRelevance
		meta.EstimatedTokens = build.EstimatedTokens
		meta.Truncated = build.Metadata.Truncated
	}

	return meta
}

func writeFindingLine(sb *strings.Builder, n int, r *core.AuditRecord) {
	fmt.Fprintf(sb, "%d. %s %s %s: %s (%s, %d)\n",
		n, severityGlyph(r.Severity()), statusGlyph(r.Status()),
		r.Code, r.Title(), r.Project, r.Year)
	if r.RiskArea != "" && r.Description != "" {
		fmt.Fprintf(sb, "   %s\n", truncate(r.Description, descriptionLimit))
	}
}

func summarize(records []*core.AuditRecord) []core.FindingSummary {
	summaries := make([]core.FindingSummary, 0, len(records))
	for _, r := range records {
		if r == nil {
			continue
		}
		summaries = append(summaries, core.FindingSummary{
			Id:       r.Id,
			Code:     r.Code,
			Title:    r.Title(),
			Severity: r.Severity(),
		})
	}
	return summaries
}

func dedupeRecords(records []*core.AuditRecord) []*core.AuditRecord {
	seen := make(map[core.ID]bool, len(records))
	deduped := make([]*core.AuditRecord, 0, len(records))
	for _, r := range records {
		if r == nil || seen[r.Id] {
			continue
		}
		seen[r.Id] = true
		deduped = append(deduped, r)
	}
	return deduped
}

func clampPage(page, totalPages int) int {
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && runes[cut] != ' ' {
		cut--
	}
	if cut == 0 {
		cut = limit
	}
	return strings.TrimRight(string(runes[:cut]), " ") + "..."
}
