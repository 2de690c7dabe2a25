package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID identifies a stored record. It is derived from record content, so
// the same finding keeps its ID across re-ingestions.
type ID uint64

// IDFromContent hashes text down to 64 bits with BLAKE2b. Identical
// content always yields the same ID.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil)
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// NewRecordID derives the stable identifier for an audit finding from its
// natural key: the audit code, project name, and audit year.
func NewRecordID(code, project string, year int) ID {
	return IDFromContent(fmt.Sprintf("%s|%s|%d", code, project, year))
}

// Severity is the qualitative rating of an audit finding.
type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityMedium   Severity = "Medium"
	SeverityLow      Severity = "Low"
)

// Severities lists every valid severity, highest first.
var Severities = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}

// SeverityFromNilai maps a finding's numeric risk score to its severity label.
// The boundaries are a reporting contract shared with the source audit sheets:
// 16 and up is Critical, 11 to 15 High, 6 to 10 Medium, everything below Low.
func SeverityFromNilai(nilai int) Severity {
	switch {
	case nilai >= 16:
		return SeverityCritical
	case nilai >= 11:
		return SeverityHigh
	case nilai >= 6:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// Status is the remediation state of a finding.
type Status string

const (
	StatusOpen       Status = "Open"
	StatusInProgress Status = "In Progress"
	StatusClosed     Status = "Closed"
	StatusDeferred   Status = "Deferred"
)

// Statuses lists every valid remediation status.
var Statuses = []Status{StatusOpen, StatusInProgress, StatusClosed, StatusDeferred}

// ProjectTypes is the canonical set of property project classifications.
// Filters and records must use these exact spellings.
var ProjectTypes = []string{
	"Mall",
	"Office",
	"Apartment",
	"Hotel",
	"Residential",
	"Township",
	"Industrial Estate",
	"Healthcare",
}

// AuditRecord is a single audit finding. Records are owned by the store;
// the retrieval pipeline treats them as read-only input.
type AuditRecord struct {
	Id          ID
	Project     string
	Year        int
	Department  string
	RiskArea    string
	Description string
	Code        string // audit code, e.g. "AUD-2024-017"
	Nilai       int    // numeric risk score, never negative
	Subholding  string
	Vector      []float32 // embedding for semantic search (populated by processors)
	InsertedAt  time.Time
	UpdatedAt   time.Time
	Metadata    map[string]string // optional provenance (e.g. "status", "source_row")
}

// Severity returns the qualitative rating derived from the record's risk score.
func (r *AuditRecord) Severity() Severity {
	return SeverityFromNilai(r.Nilai)
}

// Status returns the remediation state recorded at ingest, or the empty
// string when the source sheet carried none.
func (r *AuditRecord) Status() Status {
	return Status(r.Metadata["status"])
}

// Title returns a short display title for listings and source citations:
// the risk area when present, otherwise a truncated description.
func (r *AuditRecord) Title() string {
	if r.RiskArea != "" {
		return r.RiskArea
	}
	runes := []rune(strings.TrimSpace(r.Description))
	if len(runes) > 60 {
		return string(runes[:60]) + "..."
	}
	return string(runes)
}

// EmbeddingText returns the text that represents this finding for
// embedding generation and semantic comparison.
func (r *AuditRecord) EmbeddingText() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{r.Project, r.RiskArea, r.Description} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ". ")
}

// Checkpoint records a processor's high-water mark so long-running batch
// operations can resume after interruption.
type Checkpoint struct {
	ProcessorType string
	LastId        ID
	UpdatedAt     time.Time
}
