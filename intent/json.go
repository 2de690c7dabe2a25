// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package intent

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// llmIntent mirrors the JSON contract in the recognition prompt.
type llmIntent struct {
	Intent           string     `json:"intent"`
	Confidence       *float64   `json:"confidence"`
	RequiresAnalysis bool       `json:"requires_analysis"`
	Filters          llmFilters `json:"filters"`
}

type llmFilters struct {
	Year        string   `json:"year"`
	ProjectType string   `json:"project_type"`
	Severity    []string `json:"severity"`
	Status      []string `json:"status"`
	Department  string   `json:"department"`
	Keywords    []string `json:"keywords"`
	DateStart   string   `json:"date_start"`
	DateEnd     string   `json:"date_end"`
}

var errNoJSONObject = errors.New("no JSON object in model output")

// parseIntentJSON recovers a JSON object from raw model output.
// Markdown fences are stripped, the outermost brace pair is isolated,
// and a key-quoting repair pass runs before unmarshaling.
func parseIntentJSON(raw string) (*llmIntent, error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, errNoJSONObject
	}
	text = repairJSON(text[start : end+1])

	var parsed llmIntent
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, err
	}
	return &parsed, nil
}

// missingKeyQuote matches an object key that lost its opening quote: a
// brace or comma, then a bare word (interior spaces allowed), then the
// surviving close quote and colon. The close-quote requirement keeps
// commas inside string values from triggering a repair.
var missingKeyQuote = regexp.MustCompile(`([{,]\s*)([A-Za-z][A-Za-z0-9_]*(?: +[A-Za-z0-9_]+)*) *":`)

// repairJSON restores opening quotes that models drop from object keys,
// as in `{intent": "x"}`. Anything it does not recognize passes through
// untouched.
func repairJSON(s string) string {
	return missingKeyQuote.ReplaceAllString(s, `$1"$2":`)
}
