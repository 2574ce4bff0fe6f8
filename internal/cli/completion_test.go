package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompletion(t *testing.T) {
	tests := []struct {
		shell string
		want  []string
	}{
		{"bash", []string{"# bash completion for pstop", "__start_pstop"}},
		{"zsh", []string{"#compdef pstop", "_pstop()"}},
		{"fish", []string{"complete -c pstop"}},
		{"powershell", []string{"Register-ArgumentCompleter", "pstop"}},
	}

	for _, tt := range tests {
		t.Run(tt.shell, func(t *testing.T) {
			out, err := execute(t, "completion", tt.shell)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
		})
	}
}

func TestCompletion_InvalidShell(t *testing.T) {
	_, err := execute(t, "completion", "tcsh")
	assert.Error(t, err)
}
