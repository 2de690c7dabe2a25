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


package core

import "errors"

// Validation sentinels. Callers match them with errors.Is.
var (
	// ErrInvalidAuditRecord wraps every validation failure on a record.
	ErrInvalidAuditRecord = errors.New("invalid audit record")

	// ErrEmptyProject rejects a record without a property name.
	ErrEmptyProject = errors.New("project cannot be empty")

	// ErrEmptyDescription rejects a record without finding text.
	ErrEmptyDescription = errors.New("description cannot be empty")

	// ErrNegativeNilai rejects a risk score below zero.
	ErrNegativeNilai = errors.New("nilai cannot be negative")

	// ErrYearOutOfRange rejects an audit year outside 1900-2100.
	ErrYearOutOfRange = errors.New("year must be between 1900 and 2100")

	// ErrInvalidSeverity rejects a severity outside the canonical set.
	ErrInvalidSeverity = errors.New("invalid severity")

	// ErrInvalidStatus rejects a status outside the canonical set.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidProjectType rejects a project type outside the canonical set.
	ErrInvalidProjectType = errors.New("invalid project type")

	// ErrInvalidYear rejects a year filter that is not a 4-digit year in
	// 2000-2099.
	ErrInvalidYear = errors.New("invalid year filter")

	// ErrInvalidDateRange rejects a date range whose start is after its end.
	ErrInvalidDateRange = errors.New("date range start cannot be after end")
)
