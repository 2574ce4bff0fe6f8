package procview

import (
	"strconv"
	"strings"
)

// SortField is a process table column. The numeric order is the persisted
// column index.
type SortField int

const (
	FieldPID SortField = iota
	FieldPPID
	FieldUser
	FieldPriority
	FieldNice
	FieldVirt
	FieldRes
	FieldShared
	FieldStatus
	FieldCPU
	FieldMem
	FieldTime
	FieldThreads
	FieldIORead
	FieldIOWrite
	FieldIO
	FieldCommand

	fieldCount
)

var fieldTitles = [fieldCount]string{
	FieldPID:      "PID",
	FieldPPID:     "PPID",
	FieldUser:     "USER",
	FieldPriority: "PRI",
	FieldNice:     "NI",
	FieldVirt:     "VIRT",
	FieldRes:      "RES",
	FieldShared:   "SHR",
	FieldStatus:   "S",
	FieldCPU:      "CPU%",
	FieldMem:      "MEM%",
	FieldTime:     "TIME+",
	FieldThreads:  "THR",
	FieldIORead:   "DISK READ",
	FieldIOWrite:  "DISK WRITE",
	FieldIO:       "DISK R/W",
	FieldCommand:  "Command",
}

// Fields returns every column in index order.
func Fields() []SortField {
	out := make([]SortField, fieldCount)
	for i := range out {
		out[i] = SortField(i)
	}
	return out
}

// Valid reports whether f is a known column.
func (f SortField) Valid() bool {
	return f >= 0 && f < fieldCount
}

// String returns the column header.
func (f SortField) String() string {
	if !f.Valid() {
		return "CPU%"
	}
	return fieldTitles[f]
}

// Next cycles to the next column.
func (f SortField) Next() SortField {
	return SortField((int(f) + 1) % int(fieldCount))
}

// Prev cycles to the previous column.
func (f SortField) Prev() SortField {
	return SortField((int(f) + int(fieldCount) - 1) % int(fieldCount))
}

// ParseSortField resolves a column by header ("CPU%"), short name ("cpu")
// or index. ok is false when nothing matches.
func ParseSortField(s string) (SortField, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	aliases := map[string]SortField{
		"pid": FieldPID, "ppid": FieldPPID, "user": FieldUser,
		"pri": FieldPriority, "priority": FieldPriority, "ni": FieldNice, "nice": FieldNice,
		"virt": FieldVirt, "res": FieldRes, "shr": FieldShared, "s": FieldStatus, "state": FieldStatus,
		"cpu": FieldCPU, "mem": FieldMem, "time": FieldTime, "thr": FieldThreads, "threads": FieldThreads,
		"read": FieldIORead, "write": FieldIOWrite, "io": FieldIO, "command": FieldCommand, "name": FieldCommand,
	}
	if f, ok := aliases[s]; ok {
		return f, true
	}
	for i, title := range fieldTitles {
		if strings.ToLower(title) == s {
			return SortField(i), true
		}
	}
	if n, err := strconv.Atoi(s); err == nil && SortField(n).Valid() {
		return SortField(n), true
	}
	return FieldCPU, false
}
