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
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/findit/ai"
	"github.com/poiesic/findit/core"
)

const (
	// recognizeAttempts bounds how often unparsable model output is retried.
	recognizeAttempts = 2

	// defaultConfidence is assumed when the model omits a confidence value.
	defaultConfidence = 0.7

	// DefaultTimeout bounds the model call for a single recognition.
	DefaultTimeout = 15 * time.Second
)

// Recognizer classifies queries. The language model is preferred; any
// failure on that path lands on the deterministic fallback, so
// RecognizeIntent always returns a usable intent.
type Recognizer struct {
	completer ai.Completer
	extractor *Extractor
	timeout   time.Duration
	clock     func() time.Time
	logger    *slog.Logger
}

// RecognizerOption configures a Recognizer.
type RecognizerOption func(*Recognizer)

// WithTimeout bounds each model call. Non-positive values restore the
// default.
func WithTimeout(timeout time.Duration) RecognizerOption {
	return func(r *Recognizer) {
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		r.timeout = timeout
	}
}

// WithRecognizerClock replaces the time source used for relative year
// terms and the prompt date. A nil clock restores time.Now.
func WithRecognizerClock(clock func() time.Time) RecognizerOption {
	return func(r *Recognizer) {
		if clock == nil {
			clock = time.Now
		}
		r.clock = clock
		r.extractor = NewExtractor(WithClock(clock))
	}
}

// WithLogger replaces the default logger. A nil logger restores
// slog.Default().
func WithLogger(logger *slog.Logger) RecognizerOption {
	return func(r *Recognizer) {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
	}
}

// NewRecognizer creates an intent recognizer. A nil completer is legal;
// every query then takes the fallback path.
func NewRecognizer(completer ai.Completer, opts ...RecognizerOption) *Recognizer {
	r := &Recognizer{
		completer: completer,
		extractor: NewExtractor(),
		timeout:   DefaultTimeout,
		clock:     time.Now,
		logger:    slog.Default().With("component", "intent"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Extractor returns the pattern extractor the recognizer shares its
// clock with. Model filters are validated against it.
func (r *Recognizer) Extractor() *Extractor {
	return r.extractor
}

// RecognizeIntent classifies the query. Unparsable model output is
// retried, transport errors are not; either way the fallback guarantees
// a result.
func (r *Recognizer) RecognizeIntent(ctx context.Context, query string) *core.RecognizedIntent {
	now := r.clock()

	if r.completer == nil {
		return fallbackRecognize(query, now)
	}

	prompt := fmt.Sprintf("%s\n\nCurrent date: %s\nQuery: %s",
		buildRecognitionPrompt(now), now.Format("2006-01-02"), query)

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt < recognizeAttempts; attempt++ {
		response, err := r.completer.Complete(callCtx, prompt)
		if err != nil {
			r.logger.Warn("intent completion failed", "attempt", attempt+1, "err", err)
			lastErr = err
			break
		}

		parsed, err := parseIntentJSON(response)
		if err != nil {
			r.logger.Warn("unparsable intent response",
				"attempt", attempt+1,
				"response", response,
				"err", err)
			lastErr = err
			continue
		}

		return r.fromModel(query, parsed)
	}

	r.logger.Warn("falling back to pattern recognition", "err", lastErr)
	return fallbackRecognize(query, now)
}

// fromModel converts parsed model output into a RecognizedIntent,
// sanitizing the filters and clamping confidence into [0,1]. Intent
// labels outside the canonical pair are preserved.
func (r *Recognizer) fromModel(query string, parsed *llmIntent) *core.RecognizedIntent {
	intentLabel := parsed.Intent
	if intentLabel == "" {
		intentLabel = core.IntentSearchFindings
	}

	confidence := defaultConfidence
	if parsed.Confidence != nil {
		confidence = *parsed.Confidence
		if confidence < 0 {
			confidence = 0
		}
		if confidence > 1 {
			confidence = 1
		}
	}

	filters := filtersFromModel(&parsed.Filters)
	validation := r.extractor.ValidateFilters(filters)
	if !validation.Valid {
		r.logger.Debug("model filters sanitized", "dropped", validation.Errors)
	}

	return &core.RecognizedIntent{
		Intent:           intentLabel,
		Filters:          validation.Sanitized,
		RequiresAnalysis: parsed.RequiresAnalysis || intentLabel == core.IntentAnalyzeFindings,
		Confidence:       confidence,
		OriginalQuery:    query,
	}
}

// filtersFromModel lifts the wire shape into core filters. Enum casing
// is normalized before validation; dates must be 2006-01-02 and both
// ends of a range must parse or the range is dropped.
func filtersFromModel(f *llmFilters) *core.ExtractedFilters {
	filters := &core.ExtractedFilters{
		Year:        strings.TrimSpace(f.Year),
		ProjectType: normalizeEnum(f.ProjectType),
		Department:  strings.TrimSpace(f.Department),
		Keywords:    f.Keywords,
	}

	for _, severity := range f.Severity {
		filters.Severity = append(filters.Severity, core.Severity(normalizeEnum(severity)))
	}
	for _, status := range f.Status {
		filters.Status = append(filters.Status, core.Status(normalizeEnum(status)))
	}

	if f.DateStart != "" && f.DateEnd != "" {
		start, errStart := time.Parse("2006-01-02", f.DateStart)
		end, errEnd := time.Parse("2006-01-02", f.DateEnd)
		if errStart == nil && errEnd == nil {
			filters.DateRange = &core.DateRange{Start: start, End: end}
		}
	}

	return filters
}

func normalizeEnum(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return titleCase(strings.ToLower(s))
}
