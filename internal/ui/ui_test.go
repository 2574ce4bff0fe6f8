package ui

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSimpleTable(t *testing.T) {
	DisableColors()
	out := ansi.Strip(RenderSimpleTable(
		[]TableColumn{{Title: "KEY", Width: 20}, {Title: "VALUE", Width: 10}},
		[][]string{{"update_interval_ms", "1500"}, {"color_scheme", "0"}},
	))

	assert.Contains(t, out, "KEY")
	assert.Contains(t, out, "VALUE")
	assert.Contains(t, out, "update_interval_ms")
	assert.Contains(t, out, "1500")
	assert.Contains(t, out, "color_scheme")
}

func TestRenderSimpleTable_Empty(t *testing.T) {
	assert.Empty(t, RenderSimpleTable([]TableColumn{{Title: "KEY", Width: 5}}, nil))
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(nil))

	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	defer f.Close()

	assert.False(t, IsTerminal(f), "regular files are not terminals")
	_, _, ok := TerminalSize(f)
	assert.False(t, ok)
}

func TestConfigureColor_NonTerminal(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	defer f.Close()

	assert.NotPanics(t, func() { ConfigureColor(false, f) })
	assert.Equal(t, "ok", SuccessStyle().Render("ok"), "plain output when not a terminal")
}

func TestStyles(t *testing.T) {
	DisableColors()
	for name, style := range map[string]func() string{
		"success": func() string { return SuccessStyle().Render("x") },
		"error":   func() string { return ErrorStyle().Render("x") },
		"warning": func() string { return WarningStyle().Render("x") },
		"muted":   func() string { return MutedStyle().Render("x") },
	} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, "x", style())
		})
	}
}
