package process

import (
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignals(t *testing.T) {
	names := make([]string, len(Signals))
	for i, s := range Signals {
		names[i] = s.Name
	}

	assert.Equal(t, []string{"SIGTERM", "SIGKILL", "SIGHUP", "SIGINT", "SIGQUIT"}, names)
	assert.Equal(t, syscall.SIGTERM, Signals[0].Number)
	assert.Equal(t, syscall.SIGKILL, Signals[1].Number)
}

func TestClampNice(t *testing.T) {
	tests := []struct {
		in, expected int
	}{
		{-25, -20},
		{-20, -20},
		{0, 0},
		{19, 19},
		{30, 19},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, clampNice(tt.in))
	}
}

func TestOSController_SetAffinityRejectsEmpty(t *testing.T) {
	c := NewOSController(nil)
	assert.Error(t, c.SetAffinity(1, nil))
}

func TestIOPriorities(t *testing.T) {
	tests := []struct {
		label    string
		expected int
	}{
		{"Normal I/O Priority", 2<<13 | 4},
		{"Background Mode (Low I/O)", 3 << 13},
	}

	require.Len(t, IOPriorities, len(tests))
	for i, tt := range tests {
		assert.Equal(t, tt.label, IOPriorities[i].Label)
		assert.Equal(t, tt.expected, ioprioValue(IOPriorities[i]))
	}
}
