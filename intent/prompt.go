package intent

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/findit/core"
)

const recognitionResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "intent": {
      "type": "string"
    },
    "confidence": {
      "type": "number",
      "minimum": 0,
      "maximum": 1
    },
    "requires_analysis": {
      "type": "boolean"
    },
    "filters": {
      "type": "object",
      "properties": {
        "year": {"type": "string", "pattern": "^20[0-9]{2}$"},
        "project_type": {"type": "string"},
        "severity": {"type": "array", "items": {"type": "string"}},
        "status": {"type": "array", "items": {"type": "string"}},
        "department": {"type": "string"},
        "keywords": {"type": "array", "items": {"type": "string"}},
        "date_start": {"type": "string", "format": "date"},
        "date_end": {"type": "string", "format": "date"}
      },
      "additionalProperties": false
    }
  },
  "required": ["intent", "filters"],
  "additionalProperties": false
}`

const recognitionPromptTemplate = `Classify the user's audit query and extract structured filters, returning them as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Intent is "search_findings" for listing or lookup queries and "analyze_findings" for queries that ask why,
compare, summarize, or recommend. Set requires_analysis to true for analyze_findings.

Rules:
- severity values must match exactly one of: %s.
- status values must match exactly one of: %s.
- project_type must match exactly one of: %s.
- year must be a four-digit year between 2000 and 2099; resolve relative terms like "last year" against the current date given with the query.
- Put department names in filters.department, never in keywords.
- Expand domain acronyms using the glossary below: keep the acronym verbatim in keywords and add its expansions as separate keywords.
- For acronyms NOT in the glossary, keep the acronym verbatim in keywords, add likely expansions, and set requires_analysis to true.
- Omit filters you are not sure about. An empty filter is better than a wrong one.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Glossary:
%s

Example (formal):
Input: "Show me critical findings from the Engineering department in 2024"
Output:
{
  "intent": "search_findings",
  "confidence": 0.9,
  "requires_analysis": false,
  "filters": {"year":"2024","severity":["Critical"],"department":"Engineering","keywords":[]}
}

---  // informal / mixed-language examples

Example (acronym expansion):
Input: "ada masalah PPJB di proyek apartemen?"
Output:
{
  "intent": "search_findings",
  "confidence": 0.8,
  "requires_analysis": false,
  "filters": {"project_type":"Apartment","keywords":["PPJB","Perjanjian Pengikatan Jual Beli","preliminary sale and purchase agreement"]}
}

Example (analysis request):
Input: "why do permit issues keep recurring in our township projects"
Output:
{
  "intent": "analyze_findings",
  "confidence": 0.85,
  "requires_analysis": true,
  "filters": {"project_type":"Township","keywords":["permit","recurring"]}
}

Example (relative year, informal):
Input: "temuan tahun lalu yg masih terbuka"
Output:
{
  "intent": "search_findings",
  "confidence": 0.75,
  "requires_analysis": false,
  "filters": {"year":"%s","status":["Open"],"keywords":[]}
}`

// buildRecognitionPrompt creates the system prompt with the canonical
// enums, the acronym glossary, and the clock-resolved example year
// embedded.
func buildRecognitionPrompt(now time.Time) string {
	return fmt.Sprintf(recognitionPromptTemplate,
		recognitionResponseSchema,
		joinSeverities(),
		joinStatuses(),
		strings.Join(core.ProjectTypes, ", "),
		glossarySection(),
		strconv.Itoa(now.Year()-1),
	)
}

func joinSeverities() string {
	names := make([]string, 0, len(core.Severities))
	for _, severity := range core.Severities {
		names = append(names, string(severity))
	}
	return strings.Join(names, ", ")
}

func joinStatuses() string {
	names := make([]string, 0, len(core.Statuses))
	for _, status := range core.Statuses {
		names = append(names, string(status))
	}
	return strings.Join(names, ", ")
}
