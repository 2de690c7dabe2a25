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

// Package intent classifies audit queries and extracts structured
// filters from them.
//
// Two paths produce a core.RecognizedIntent. The primary path asks a
// language model, constrained to a strict JSON contract, then repairs
// and validates whatever comes back. The fallback path is a
// deterministic recognizer built on alias tables and the acronym
// glossary; it runs whenever no model is configured or the model output
// cannot be used, so recognition itself never fails.
//
// The pattern Extractor is also usable on its own for callers that want
// filters without a classification, for example a --show-filters debug
// flag.
package intent
