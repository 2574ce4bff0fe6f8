package monitor

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/pstop/internal/config"
	"github.com/rileyhilliard/pstop/internal/procview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_OpenAndClose(t *testing.T) {
	for _, k := range []string{"f2", "S"} {
		t.Run(k, func(t *testing.T) {
			m := newTestModel(t, newFixture(), config.DefaultSettings(), Session{})

			m = press(t, m, k)
			require.Equal(t, ModeSetup, m.Mode())
			view := plainView(m)
			for _, want := range []string{"Setup", "Display options", "Colors", "Columns", "[ ] Hide kernel threads", "[x] Enable mouse control"} {
				assert.Contains(t, view, want)
			}

			m = press(t, m, "esc")
			assert.Equal(t, ModeNormal, m.Mode())
		})
	}
}

func TestSetup_DisplayOptions(t *testing.T) {
	m := newTestModel(t, newFixture(), config.DefaultSettings(), Session{})

	m = press(t, m, "f2", "right", "down", "down", "space")
	assert.True(t, m.State().HideKernel, "hide kernel threads applies to the view")
	assert.True(t, m.Settings().HideKernelThreads)
	assert.Contains(t, plainView(m), "[x] Hide kernel threads")

	m = press(t, m, "down", "space")
	assert.False(t, m.Settings().HighlightBaseName)

	assert.True(t, m.collector.freezeNames, "names are frozen by default")
	for i := 0; i < 6; i++ {
		m = press(t, m, "down")
	}
	m = press(t, m, "space")
	assert.True(t, m.Settings().UpdateProcessNames)
	assert.False(t, m.collector.freezeNames)
}

func TestSetup_HideKernelFollowsKToggle(t *testing.T) {
	m := newTestModel(t, newFixture(), config.DefaultSettings(), Session{})

	m = press(t, m, "K", "f2")
	assert.Contains(t, plainView(m), "[x] Hide kernel threads")

	m = press(t, m, "right", "down", "down", "space")
	assert.False(t, m.State().HideKernel)
}

func TestSetup_MouseToggleReturnsCommand(t *testing.T) {
	m := newTestModel(t, newFixture(), config.DefaultSettings(), Session{})
	m = press(t, m, "f2", "right", "end")

	cmd := m.HandleKeyMsg(keyMsg("space"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.DisableMouse(), cmd())
	assert.False(t, m.Settings().EnableMouse)

	cmd = m.HandleKeyMsg(keyMsg("space"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.EnableMouseCellMotion(), cmd())
}

func TestSetup_Colors(t *testing.T) {
	m := newTestModel(t, newFixture(), config.DefaultSettings(), Session{})

	m = press(t, m, "f2", "down", "right", "down", "down", "enter")
	assert.Equal(t, 2, m.Settings().ColorScheme)
	assert.Equal(t, Schemes[2].Name, m.scheme.Name)
	assert.Contains(t, plainView(m), "(*) "+Schemes[2].Name)
}

func TestSetup_Columns(t *testing.T) {
	m := newTestModel(t, newFixture(), config.DefaultSettings(), Session{})

	m = press(t, m, "f2", "up", "right", "space")
	assert.False(t, m.Settings().ColumnVisible(int(procview.FieldPID)))
	assert.NotEqual(t, procview.FieldPID, m.columns()[0].field)
	assert.Contains(t, plainView(m), "[ ] PID")

	m = press(t, m, "end")
	assert.Contains(t, plainView(m), "DISK R/W", "Command is not listed")
	assert.NotContains(t, m.setupItems(), "[x] Command")

	m = press(t, m, "home", "space")
	assert.True(t, m.Settings().ColumnVisible(int(procview.FieldPID)))
}

func TestSetup_CategoryNavigation(t *testing.T) {
	m := newTestModel(t, newFixture(), config.DefaultSettings(), Session{})
	m = press(t, m, "f2")

	assert.Equal(t, pageDisplay, m.page)
	m = press(t, m, "up")
	assert.Equal(t, pageColumns, m.page, "categories wrap")
	m = press(t, m, "down")
	assert.Equal(t, pageDisplay, m.page)

	m = press(t, m, "enter")
	assert.True(t, m.pageFocus)
	m = press(t, m, "left")
	assert.False(t, m.pageFocus)
}
