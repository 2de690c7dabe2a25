package respond

import "github.com/poiesic/findit/core"

// neutralGlyph stands in for any severity or status outside the
// canonical sets. Unknown values render, they never error.
const neutralGlyph = "▫"

var severityGlyphs = map[core.Severity]string{
	core.SeverityCritical: "🔴",
	core.SeverityHigh:     "🟠",
	core.SeverityMedium:   "🟡",
	core.SeverityLow:      "🟢",
}

var statusGlyphs = map[core.Status]string{
	core.StatusOpen:       "⭕",
	core.StatusInProgress: "🔄",
	core.StatusClosed:     "✅",
	core.StatusDeferred:   "⏸",
}

func severityGlyph(severity core.Severity) string {
	if glyph, ok := severityGlyphs[severity]; ok {
		return glyph
	}
	return neutralGlyph
}

func statusGlyph(status core.Status) string {
	if glyph, ok := statusGlyphs[status]; ok {
		return glyph
	}
	return neutralGlyph
}
