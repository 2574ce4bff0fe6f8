package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodes(t *testing.T) {
	codes := []string{
		ErrConfig,
		ErrSample,
		ErrProcess,
		ErrControl,
		ErrTerminal,
	}

	seen := make(map[string]bool)
	for _, code := range codes {
		assert.NotEmpty(t, code, "error code should not be empty")
		assert.False(t, seen[code], "error code %q should be unique", code)
		seen[code] = true
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		message    string
		suggestion string
	}{
		{
			name:       "config error",
			code:       ErrConfig,
			message:    "Invalid update_interval_ms in pstoprc",
			suggestion: "Use a value between 200 and 10000",
		},
		{
			name:       "control error",
			code:       ErrControl,
			message:    "Cannot change priority of pid 1",
			suggestion: "Run pstop as root to raise priorities",
		},
		{
			name:    "no suggestion",
			code:    ErrTerminal,
			message: "stdout is not a terminal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, tt.suggestion)

			require.NotNil(t, err)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.Equal(t, tt.suggestion, err.Suggestion)
			assert.Nil(t, err.Cause)
		})
	}
}

func TestWrap_DefaultsToSampleCode(t *testing.T) {
	cause := errors.New("open /proc/stat: no such file")
	err := Wrap(cause, "Failed to read CPU counters")

	assert.Equal(t, ErrSample, err.Code)
	assert.Equal(t, cause, err.Cause)
}

func TestError_Format(t *testing.T) {
	err := WrapWithCode(
		errors.New("operation not permitted"),
		ErrControl,
		"Failed to signal pid 42",
		"Check that you own the process",
	)

	msg := err.Error()
	lines := strings.Split(msg, "\n")

	assert.Equal(t, "✗ Failed to signal pid 42", lines[0])
	assert.Contains(t, msg, "  operation not permitted")
	assert.Contains(t, msg, "  Check that you own the process")
	assert.Less(t, strings.Index(msg, "not permitted"), strings.Index(msg, "Check that"))
}

func TestError_Unwrap(t *testing.T) {
	err := WrapWithCode(ErrPermission, ErrControl, "denied", "")
	wrapped := fmt.Errorf("kill: %w", err)

	assert.True(t, errors.Is(wrapped, ErrPermission))
	assert.True(t, IsCode(wrapped, ErrControl))
	assert.False(t, IsCode(wrapped, ErrConfig))
	assert.False(t, IsCode(nil, ErrControl))
	assert.False(t, IsCode(errors.New("plain"), ErrControl))
}
