package storage

import (
	"testing"
	"time"

	"github.com/poiesic/findit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"derived ID", core.NewRecordID("AUD-2024-017", "Grand Central Mall", 2024)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Invalid(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMarshalUnmarshalAuditRecord(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	original := &core.AuditRecord{
		Id:          core.NewRecordID("AUD-2024-017", "Grand Central Mall", 2024),
		Project:     "Grand Central Mall",
		Year:        2024,
		Department:  "Engineering",
		RiskArea:    "Permit Compliance",
		Description: "IMB renewal for the east wing was filed four months late.",
		Code:        "AUD-2024-017",
		Nilai:       17,
		Subholding:  "Retail Holdings",
		Vector:      []float32{0.1, 0.2, 0.3, 0.4, 0.5},
		InsertedAt:  now,
		UpdatedAt:   now,
		Metadata:    map[string]string{"status": "Open", "source_row": "42"},
	}

	data := MarshalAuditRecord(original)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalAuditRecord(data)
	require.NoError(t, err)
	require.NotNil(t, decoded)

	assert.Equal(t, original.Id, decoded.Id)
	assert.Equal(t, original.Project, decoded.Project)
	assert.Equal(t, original.Year, decoded.Year)
	assert.Equal(t, original.Department, decoded.Department)
	assert.Equal(t, original.RiskArea, decoded.RiskArea)
	assert.Equal(t, original.Description, decoded.Description)
	assert.Equal(t, original.Code, decoded.Code)
	assert.Equal(t, original.Nilai, decoded.Nilai)
	assert.Equal(t, original.Subholding, decoded.Subholding)
	assert.Equal(t, original.Vector, decoded.Vector)
	assert.True(t, original.InsertedAt.Equal(decoded.InsertedAt))
	assert.True(t, original.UpdatedAt.Equal(decoded.UpdatedAt))
	assert.Equal(t, original.Metadata, decoded.Metadata)
}

func TestMarshalUnmarshalAuditRecord_Sparse(t *testing.T) {
	// Vector and Metadata stay empty until processors fill them in.
	original := &core.AuditRecord{
		Id:          core.ID(7),
		Project:     "Harbor Office Park",
		Description: "Vendor selection file incomplete.",
	}

	data := MarshalAuditRecord(original)
	decoded, err := UnmarshalAuditRecord(data)
	require.NoError(t, err)

	assert.Equal(t, original.Id, decoded.Id)
	assert.Equal(t, original.Project, decoded.Project)
	assert.Equal(t, original.Description, decoded.Description)
	assert.Empty(t, decoded.Vector)
	assert.Empty(t, decoded.Metadata)
}

func TestUnmarshalAuditRecord_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty data", []byte{}},
		{"partial data", []byte{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalAuditRecord(tt.data)
			assert.ErrorIs(t, err, ErrSerializationFailed)
		})
	}
}

func TestMarshalUnmarshalCheckpoint(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	original := &core.Checkpoint{
		ProcessorType: "embedding",
		LastId:        core.ID(12345),
		UpdatedAt:     now,
	}

	data := MarshalCheckpoint(original)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalCheckpoint(data)
	require.NoError(t, err)
	assert.Equal(t, original.ProcessorType, decoded.ProcessorType)
	assert.Equal(t, original.LastId, decoded.LastId)
	assert.True(t, original.UpdatedAt.Equal(decoded.UpdatedAt))
}

func TestRepeatedRoundTrips(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	original := &core.AuditRecord{
		Id:          core.ID(999),
		Project:     "Lakeside Township",
		Year:        2023,
		Description: "Drainage plan not signed off before earthworks.",
		Nilai:       9,
		InsertedAt:  now,
		UpdatedAt:   now,
		Vector:      []float32{0.1, 0.2, 0.3},
	}

	current := original
	for i := 0; i < 3; i++ {
		data := MarshalAuditRecord(current)
		decoded, err := UnmarshalAuditRecord(data)
		require.NoError(t, err)
		current = decoded
	}

	assert.Equal(t, original.Id, current.Id)
	assert.Equal(t, original.Project, current.Project)
	assert.Equal(t, original.Description, current.Description)
	assert.Equal(t, original.Vector, current.Vector)
}
