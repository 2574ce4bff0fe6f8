package process

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		input    string
		expected Status
	}{
		{"R", StatusRunning},
		{"running", StatusRunning},
		{"S", StatusSleeping},
		{"sleep", StatusSleeping},
		{"idle", StatusSleeping},
		{"I", StatusSleeping},
		{"D", StatusDiskSleep},
		{"blocked", StatusDiskSleep},
		{"T", StatusStopped},
		{"t", StatusStopped},
		{"stop", StatusStopped},
		{"Z", StatusZombie},
		{"zombie", StatusZombie},
		{"", StatusUnknown},
		{"X", StatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseStatus(tt.input))
		})
	}
}

func TestStatus_Symbol(t *testing.T) {
	assert.Equal(t, "R", StatusRunning.Symbol())
	assert.Equal(t, "S", StatusSleeping.Symbol())
	assert.Equal(t, "D", StatusDiskSleep.Symbol())
	assert.Equal(t, "T", StatusStopped.Symbol())
	assert.Equal(t, "Z", StatusZombie.Symbol())
	assert.Equal(t, "?", StatusUnknown.Symbol())
	assert.Equal(t, "zombie", StatusZombie.String())
}

func TestSnapshot_NamesSkipsThreads(t *testing.T) {
	snap := Snapshot{Records: []Record{
		{PID: 1, Name: "init"},
		{PID: 2, Name: "worker"},
		{PID: 3, Name: "tid:3", IsThread: true},
	}}

	names := snap.Names()

	assert.Equal(t, map[int32]string{1: "init", 2: "worker"}, names)
}

func TestRecord_IORate(t *testing.T) {
	r := Record{IOReadRate: 100, IOWriteRate: 50}
	assert.Equal(t, 150.0, r.IORate())
}
