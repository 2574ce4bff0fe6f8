package monitor

import (
	"testing"

	"github.com/rileyhilliard/pstop/internal/process"
	"github.com/stretchr/testify/assert"
)

func TestSnapshot_ProcessName(t *testing.T) {
	snap := Snapshot{Processes: process.Snapshot{Records: []process.Record{
		{PID: 10, Name: "postgres"},
		{PID: 11, PPID: 10, Name: "checkpointer", IsThread: true},
	}}}

	tests := []struct {
		pid    int32
		expect string
	}{
		{10, "postgres"},
		{11, "PID 11"},
		{99, "PID 99"},
	}
	for _, tt := range tests {
		t.Run(tt.expect, func(t *testing.T) {
			assert.Equal(t, tt.expect, snap.ProcessName(tt.pid))
		})
	}
}
