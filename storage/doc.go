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


// Package storage declares the persistence contracts for findit and the
// MUS codecs the backends share.
//
// Three interfaces cover the storage surface. Repository carries the
// lifecycle and transaction hooks common to every store. AuditRepository
// adds the audit record operations, including lookups through the year
// and department secondary indexes. CheckpointRepository persists
// per-processor ingestion checkpoints so interrupted batch runs can
// resume where they stopped.
//
// Backend packages return concrete types; consuming code holds the
// interfaces, so a test double or another backend slots in without
// touching the callers. The only backend in tree is storage/badger:
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
//	repo := badger.NewAuditRepository(backend)
//	defer repo.Close()
//
// Tests usually go through badger.NewMemoryRepositories, which opens an
// in-memory backend and both repositories in one call.
//
// Implementations are safe for concurrent use. Every method takes a
// context.Context and honors its cancellation.
package storage
