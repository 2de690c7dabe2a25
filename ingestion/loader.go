package ingestion

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/poiesic/findit/core"
)

// recordInput mirrors one finding in a JSON findings file.
type recordInput struct {
	Code        string            `json:"code"`
	Project     string            `json:"project"`
	ProjectType string            `json:"project_type,omitempty"`
	Year        int               `json:"year"`
	Department  string            `json:"department,omitempty"`
	RiskArea    string            `json:"risk_area,omitempty"`
	Description string            `json:"description"`
	Nilai       int               `json:"nilai"`
	Subholding  string            `json:"subholding,omitempty"`
	Status      string            `json:"status,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// LoadRecordsJSON parses a findings file into audit records.
// The file is a JSON array of findings. Project type and remediation
// status ride in the record metadata; a metadata object in the input is
// carried over, with the dedicated fields taking precedence.
func LoadRecordsJSON(r io.Reader) ([]*core.AuditRecord, error) {
	var inputs []recordInput
	if err := json.NewDecoder(r).Decode(&inputs); err != nil {
		return nil, fmt.Errorf("failed to parse findings file: %w", err)
	}

	records := make([]*core.AuditRecord, len(inputs))
	for i, in := range inputs {
		record := &core.AuditRecord{
			Code:        in.Code,
			Project:     in.Project,
			Year:        in.Year,
			Department:  in.Department,
			RiskArea:    in.RiskArea,
			Description: in.Description,
			Nilai:       in.Nilai,
			Subholding:  in.Subholding,
		}

		if len(in.Metadata) > 0 || in.ProjectType != "" || in.Status != "" {
			record.Metadata = make(map[string]string, len(in.Metadata)+2)
			for k, v := range in.Metadata {
				record.Metadata[k] = v
			}
			if in.ProjectType != "" {
				record.Metadata["project_type"] = in.ProjectType
			}
			if in.Status != "" {
				record.Metadata["status"] = in.Status
			}
		}

		records[i] = record
	}

	return records, nil
}
