package intent

import (
	"sort"
	"strings"
)

// acronymGlossary maps Indonesian property-audit acronyms to their
// expansions. Each entry carries the native expansion and an English
// gloss so either phrasing can match record text.
var acronymGlossary = map[string][]string{
	"PPJB":  {"Perjanjian Pengikatan Jual Beli", "preliminary sale and purchase agreement"},
	"AJB":   {"Akta Jual Beli", "deed of sale and purchase"},
	"SHGB":  {"Sertifikat Hak Guna Bangunan", "building use rights certificate"},
	"SHM":   {"Sertifikat Hak Milik", "freehold title certificate"},
	"IMB":   {"Izin Mendirikan Bangunan", "building permit"},
	"PBG":   {"Persetujuan Bangunan Gedung", "building approval"},
	"SLF":   {"Sertifikat Laik Fungsi", "certificate of proper function"},
	"KPR":   {"Kredit Pemilikan Rumah", "home ownership loan"},
	"BPHTB": {"Bea Perolehan Hak atas Tanah dan Bangunan", "land and building title transfer duty"},
	"PSU":   {"Prasarana Sarana dan Utilitas", "public infrastructure and utilities"},
	"RAB":   {"Rencana Anggaran Biaya", "cost budget plan"},
	"SPK":   {"Surat Perintah Kerja", "work order"},
}

// expandAcronyms returns every glossary acronym found in the query,
// each followed by its expansions. Acronyms are matched as lowercased
// substrings and emitted in sorted order.
func expandAcronyms(query string) []string {
	lowered := strings.ToLower(query)

	found := make([]string, 0, 2)
	for acronym := range acronymGlossary {
		if strings.Contains(lowered, strings.ToLower(acronym)) {
			found = append(found, acronym)
		}
	}
	sort.Strings(found)

	expanded := make([]string, 0, len(found)*3)
	for _, acronym := range found {
		expanded = append(expanded, acronym)
		expanded = append(expanded, acronymGlossary[acronym]...)
	}
	return expanded
}

// glossarySection renders the glossary for prompt embedding, one
// acronym per line in sorted order.
func glossarySection() string {
	acronyms := make([]string, 0, len(acronymGlossary))
	for acronym := range acronymGlossary {
		acronyms = append(acronyms, acronym)
	}
	sort.Strings(acronyms)

	var sb strings.Builder
	for _, acronym := range acronyms {
		sb.WriteString("- ")
		sb.WriteString(acronym)
		sb.WriteString(": ")
		sb.WriteString(strings.Join(acronymGlossary[acronym], "; "))
		sb.WriteString("\n")
	}
	return sb.String()
}
