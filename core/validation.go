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

import (
	"fmt"
	"slices"
	"strconv"
)

// ValidateAuditRecord checks record against the domain rules:
//
//   - Project must not be empty
//   - Description must not be empty
//   - Nilai must not be negative
//   - Year, when set, must fall in 1900-2100 (0 means unknown)
//
// Vector and Metadata belong to the processing pipeline and stay
// unchecked here.
func ValidateAuditRecord(record *AuditRecord) error {
	if record == nil {
		return fmt.Errorf("%w: nil record", ErrInvalidAuditRecord)
	}

	if record.Project == "" {
		return fmt.Errorf("%w: %w", ErrInvalidAuditRecord, ErrEmptyProject)
	}

	if record.Description == "" {
		return fmt.Errorf("%w: %w", ErrInvalidAuditRecord, ErrEmptyDescription)
	}

	if record.Nilai < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidAuditRecord, ErrNegativeNilai)
	}

	if record.Year != 0 && (record.Year < 1900 || record.Year > 2100) {
		return fmt.Errorf("%w: %w (got %d)", ErrInvalidAuditRecord, ErrYearOutOfRange, record.Year)
	}

	return nil
}

// ValidateSeverity validates that a severity is one of the canonical values.
func ValidateSeverity(s Severity) error {
	if !slices.Contains(Severities, s) {
		return fmt.Errorf("%w: %q", ErrInvalidSeverity, s)
	}
	return nil
}

// ValidateStatus validates that a status is one of the canonical values.
func ValidateStatus(s Status) error {
	if !slices.Contains(Statuses, s) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return nil
}

// ValidateProjectType validates that a project type is one of the
// canonical classifications, exact spelling included.
func ValidateProjectType(t string) error {
	if !slices.Contains(ProjectTypes, t) {
		return fmt.Errorf("%w: %q", ErrInvalidProjectType, t)
	}
	return nil
}

// ValidateYearFilter validates a year filter string: exactly four digits
// and within 2000-2099.
func ValidateYearFilter(year string) error {
	if len(year) != 4 {
		return fmt.Errorf("%w: %q", ErrInvalidYear, year)
	}
	n, err := strconv.Atoi(year)
	if err != nil || n < 2000 || n > 2099 {
		return fmt.Errorf("%w: %q", ErrInvalidYear, year)
	}
	return nil
}

// ValidateDateRange validates that a range's start does not come after
// its end. A nil range is valid.
func ValidateDateRange(dr *DateRange) error {
	if dr == nil {
		return nil
	}
	if dr.Start.After(dr.End) {
		return ErrInvalidDateRange
	}
	return nil
}
