package badger

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/poiesic/findit/core"
)

// Key prefixes for different data types. Prefixes must not be prefixes of
// each other, so prefix scans never see keys from another keyspace.
const (
	auditRecordPrefix     = "audr"
	auditYearPrefix       = "audy"
	auditDepartmentPrefix = "audd"
	checkpointPrefix      = "ckpt"
)

// makeAuditRecordKey generates a key for an audit record by ID.
// The ID is written in BigEndian order so lexicographic key order matches
// numeric ID order; full scans and checkpoint seeks rely on this.
func makeAuditRecordKey(id core.ID) []byte {
	prefix := auditRecordPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeYearKey generates a composite key for the year index.
// Format: prefix:year:id
func makeYearKey(year int, id core.ID) []byte {
	prefix := auditYearPrefix + ":"
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(year))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialYearKey generates a partial key for year index scans.
// Format: prefix:year
func makePartialYearKey(year int) []byte {
	prefix := auditYearPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(year))
	return buf
}

// departmentHash derives the index hash for a department name.
// Hashing is case-insensitive so "Engineering" and "engineering" share
// one index slot.
func departmentHash(department string) uint64 {
	return uint64(core.IDFromContent(strings.ToLower(strings.TrimSpace(department))))
}

// makeDepartmentKey generates a composite key for the department index.
// Format: prefix:hash(department):id
func makeDepartmentKey(department string, id core.ID) []byte {
	prefix := auditDepartmentPrefix + ":"
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], departmentHash(department))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialDepartmentKey generates a partial key for department index scans.
// Format: prefix:hash(department)
func makePartialDepartmentKey(department string) []byte {
	prefix := auditDepartmentPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], departmentHash(department))
	return buf
}

// makeCheckpointKey generates the key a processor's checkpoint lives
// under.
func makeCheckpointKey(processorType string) []byte {
	return []byte(fmt.Sprintf("%s:%s", checkpointPrefix, processorType))
}
