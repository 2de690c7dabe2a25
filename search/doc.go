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


// Package search selects audit findings for a query and assembles them
// into a token-budgeted context string for language-model consumption.
//
// The ContextBuilder type implements a staged retrieval pipeline:
//   - Strategy selection between keyword, semantic, and hybrid ranking
//   - Deterministic rule-based scoring against extracted filters
//   - Embedding-based semantic ranking over stored record vectors
//   - Context assembly with a fixed per-record template and a token budget
//
// The semantic capability is optional. Every selection path degrades to
// keyword ranking when it is missing or fails, so building a context
// never aborts a query.
package search
