package ingestion

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRecordsJSON(t *testing.T) {
	input := `[
		{
			"code": "AUD-2024-017",
			"project": "Grand Plaza Mall",
			"project_type": "Mall",
			"year": 2024,
			"department": "Engineering",
			"risk_area": "Fire Safety",
			"description": "Sprinkler coverage below standard on level 3.",
			"nilai": 17,
			"subholding": "Commercial",
			"status": "Open",
			"metadata": {"source_row": "42", "status": "stale value"}
		},
		{
			"code": "AUD-2023-004",
			"project": "Citra Residence",
			"year": 2023,
			"description": "PPJB documentation incomplete for tower B.",
			"nilai": 8
		}
	]`

	records, err := LoadRecordsJSON(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "AUD-2024-017", first.Code)
	assert.Equal(t, "Grand Plaza Mall", first.Project)
	assert.Equal(t, 2024, first.Year)
	assert.Equal(t, "Engineering", first.Department)
	assert.Equal(t, "Fire Safety", first.RiskArea)
	assert.Equal(t, 17, first.Nilai)
	assert.Equal(t, "Commercial", first.Subholding)
	assert.Equal(t, "Mall", first.Metadata["project_type"])
	assert.Equal(t, "42", first.Metadata["source_row"])
	// Dedicated fields win over metadata entries with the same key
	assert.Equal(t, "Open", first.Metadata["status"])

	second := records[1]
	assert.Equal(t, "AUD-2023-004", second.Code)
	assert.Equal(t, 2023, second.Year)
	assert.Nil(t, second.Metadata, "no metadata allocated for bare findings")
}

func TestLoadRecordsJSON_Empty(t *testing.T) {
	records, err := LoadRecordsJSON(strings.NewReader(`[]`))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLoadRecordsJSON_Invalid(t *testing.T) {
	_, err := LoadRecordsJSON(strings.NewReader(`{"not": "an array"`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse findings file")
}

func TestLoadRecordsJSON_StatusReadableViaRecord(t *testing.T) {
	input := `[{"code": "AUD-2024-001", "project": "Menara Office", "year": 2024,
		"description": "Elevator maintenance overdue.", "nilai": 5, "status": "In Progress"}]`

	records, err := LoadRecordsJSON(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "In Progress", string(records[0].Status()))
}
