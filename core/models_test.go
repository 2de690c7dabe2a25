package core

import (
	"strings"
	"testing"
)

func TestIDFromContent(t *testing.T) {
	inputs := []struct {
		name string
		text string
	}{
		{"short text", "IMB renewal overdue"},
		{"empty string", ""},
		{"full finding", "Fire safety certificate for the Grand Plaza Mall east wing expired before the annual inspection was scheduled."},
	}

	for _, tt := range inputs {
		t.Run(tt.name, func(t *testing.T) {
			if a, b := IDFromContent(tt.text), IDFromContent(tt.text); a != b {
				t.Errorf("IDFromContent(%q) is not stable: %d vs %d", tt.text, a, b)
			}
		})
	}
}

func TestIDFromContent_DistinctInputs(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() collided on distinct inputs")
	}
}

func TestNewRecordID(t *testing.T) {
	id1 := NewRecordID("AUD-2024-017", "Grand Central Mall", 2024)
	id2 := NewRecordID("AUD-2024-017", "Grand Central Mall", 2024)
	if id1 != id2 {
		t.Errorf("NewRecordID() produced different IDs for same natural key: %d vs %d", id1, id2)
	}

	id3 := NewRecordID("AUD-2024-017", "Grand Central Mall", 2025)
	if id1 == id3 {
		t.Errorf("NewRecordID() produced same ID for different years")
	}

	id4 := NewRecordID("AUD-2024-018", "Grand Central Mall", 2024)
	if id1 == id4 {
		t.Errorf("NewRecordID() produced same ID for different codes")
	}
}

func TestSeverityFromNilai(t *testing.T) {
	tests := []struct {
		name  string
		nilai int
		want  Severity
	}{
		{name: "far above critical boundary", nilai: 25, want: SeverityCritical},
		{name: "critical boundary", nilai: 16, want: SeverityCritical},
		{name: "just below critical", nilai: 15, want: SeverityHigh},
		{name: "high boundary", nilai: 11, want: SeverityHigh},
		{name: "just below high", nilai: 10, want: SeverityMedium},
		{name: "medium boundary", nilai: 6, want: SeverityMedium},
		{name: "just below medium", nilai: 5, want: SeverityLow},
		{name: "zero", nilai: 0, want: SeverityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SeverityFromNilai(tt.nilai)
			if got != tt.want {
				t.Errorf("SeverityFromNilai(%d) = %v, want %v", tt.nilai, got, tt.want)
			}
		})
	}
}

func TestAuditRecord_Severity(t *testing.T) {
	record := AuditRecord{Nilai: 18}
	if got := record.Severity(); got != SeverityCritical {
		t.Errorf("Severity() = %v, want %v", got, SeverityCritical)
	}
}

func TestAuditRecord_Title(t *testing.T) {
	tests := []struct {
		name   string
		record AuditRecord
		want   string
	}{
		{
			name:   "risk area preferred",
			record: AuditRecord{RiskArea: "Permit Compliance", Description: "Building permit for tower B expired before handover."},
			want:   "Permit Compliance",
		},
		{
			name:   "short description",
			record: AuditRecord{Description: "Fire alarm untested."},
			want:   "Fire alarm untested.",
		},
		{
			name:   "long description truncated",
			record: AuditRecord{Description: strings.Repeat("a", 80)},
			want:   strings.Repeat("a", 60) + "...",
		},
		{
			name:   "description trimmed",
			record: AuditRecord{Description: "  padded  "},
			want:   "padded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.record.Title()
			if got != tt.want {
				t.Errorf("Title() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAuditRecord_EmbeddingText(t *testing.T) {
	record := AuditRecord{
		Project:     "Grand Central Mall",
		RiskArea:    "Permit Compliance",
		Description: "IMB renewal filed late.",
	}
	want := "Grand Central Mall. Permit Compliance. IMB renewal filed late."
	if got := record.EmbeddingText(); got != want {
		t.Errorf("EmbeddingText() = %q, want %q", got, want)
	}

	sparse := AuditRecord{Description: "IMB renewal filed late."}
	if got := sparse.EmbeddingText(); got != "IMB renewal filed late." {
		t.Errorf("EmbeddingText() with empty fields = %q", got)
	}
}
