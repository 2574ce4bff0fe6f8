package monitor

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/pstop/internal/config"
	"github.com/rileyhilliard/pstop/internal/procview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestModel returns a model over the fixture that has sampled once and
// knows its window size.
func newTestModel(t *testing.T, f *fixture, settings config.Settings, session Session) Model {
	t.Helper()
	m := NewModel(context.Background(), f.collector(), settings, session)
	m.now = func() time.Time { return t0 }
	m = update(t, m, tickMsg(t0))
	return update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func rowPIDs(m Model) []int32 {
	rows := m.State().Rows()
	out := make([]int32, len(rows))
	for i, r := range rows {
		out[i] = r.PID
	}
	return out
}

func selectedPID(t *testing.T, m Model) int32 {
	t.Helper()
	r, ok := m.State().Selected()
	require.True(t, ok)
	return r.PID
}

func TestNewModel(t *testing.T) {
	settings := config.DefaultSettings()
	settings.SortField = int(procview.FieldMem)
	settings.SortAscending = true
	settings.ShowTreeByDefault = true
	settings.HideKernelThreads = true
	settings.UpdateIntervalMS = 500
	settings.ColorScheme = 3

	m := NewModel(context.Background(), newFixture().collector(), settings, Session{Filter: "nginx", User: "alice"})

	st := m.State()
	assert.Equal(t, procview.FieldMem, st.SortField)
	assert.True(t, st.Ascending)
	assert.True(t, st.Tree)
	assert.True(t, st.HideKernel)
	assert.Equal(t, "nginx", st.Filter)
	assert.Equal(t, "alice", st.User)
	assert.Equal(t, 500*time.Millisecond, m.interval)
	assert.Equal(t, "Light Terminal", m.scheme.Name)
	assert.Equal(t, TabMain, m.Tab())
	assert.Equal(t, ModeNormal, m.Mode())
}

func TestNewModel_SessionSort(t *testing.T) {
	tests := []struct {
		sort   string
		expect procview.SortField
	}{
		{"mem", procview.FieldMem},
		{"PID", procview.FieldPID},
		{"11", procview.FieldTime},
		{"bogus", procview.FieldCPU},
		{"", procview.FieldCPU},
	}
	for _, tt := range tests {
		t.Run(tt.sort, func(t *testing.T) {
			m := NewModel(context.Background(), newFixture().collector(), config.DefaultSettings(), Session{Sort: tt.sort})
			assert.Equal(t, tt.expect, m.State().SortField)
		})
	}
}

func TestModel_Init(t *testing.T) {
	m := NewModel(context.Background(), newFixture().collector(), config.DefaultSettings(), Session{})
	m.now = func() time.Time { return t0 }

	cmd := m.Init()
	require.NotNil(t, cmd)
	assert.Equal(t, tickMsg(t0), cmd())
}

func TestModel_TickSamples(t *testing.T) {
	f := newFixture()
	m := NewModel(context.Background(), f.collector(), config.DefaultSettings(), Session{})

	next, cmd := m.Update(tickMsg(t0))
	m = next.(Model)

	assert.NotNil(t, cmd, "every tick schedules the next")
	assert.Equal(t, []int32{200, 300, 100, 1}, rowPIDs(m), "sorted by CPU, highest first")
	assert.Equal(t, t0, m.snap.At)
}

func TestModel_PauseFreezesRows(t *testing.T) {
	f := newFixture()
	m := newTestModel(t, f, config.DefaultSettings(), Session{})

	m = press(t, m, "Z")
	f.procs.list = f.procs.list[:1]
	m = update(t, m, tickMsg(t0.Add(time.Second)))
	assert.Len(t, m.State().Rows(), 4)

	m = press(t, m, "ctrl+l")
	assert.False(t, m.collector.Paused())
	assert.Equal(t, []int32{1}, rowPIDs(m), "refresh resumes and samples immediately")
}

func TestModel_WindowSize(t *testing.T) {
	m := newTestModel(t, newFixture(), config.DefaultSettings(), Session{})

	// 4 cores in two columns, three info rows, one margin row
	assert.Equal(t, 6, m.headerHeight())
	assert.Equal(t, 8, m.tableTop())
	assert.Equal(t, 40-8-footerHeight, m.visibleRows())

	m.settings.HeaderMargin = false
	assert.Equal(t, 5, m.headerHeight())
}

func TestModel_VisibleRowsBeforeResize(t *testing.T) {
	m := NewModel(context.Background(), newFixture().collector(), config.DefaultSettings(), Session{})
	assert.Equal(t, procview.DefaultVisibleRows, m.visibleRows())
}

func TestModel_Settings(t *testing.T) {
	f := newFixture()
	m := newTestModel(t, f, config.DefaultSettings(), Session{})

	m = press(t, m, "M")
	m = press(t, m, "I")
	m = press(t, m, "t")
	m = press(t, m, "K")
	m = press(t, m, "p")
	m = press(t, m, "C")

	s := m.Settings()
	assert.Equal(t, int(procview.FieldMem), s.SortField)
	assert.True(t, s.SortAscending)
	assert.True(t, s.TreeView)
	assert.True(t, s.HideKernelThreads)
	assert.True(t, s.ShowFullPath)
	assert.Equal(t, 1, s.ColorScheme)
}

func TestModel_MouseSelectsRow(t *testing.T) {
	m := newTestModel(t, newFixture(), config.DefaultSettings(), Session{})
	require.Equal(t, int32(200), selectedPID(t, m))

	m = update(t, m, tea.MouseMsg{X: 5, Y: m.tableTop() + 2, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	assert.Equal(t, int32(100), selectedPID(t, m))

	m = update(t, m, tea.MouseMsg{Button: tea.MouseButtonWheelUp, Action: tea.MouseActionPress})
	assert.Equal(t, int32(200), selectedPID(t, m))

	m = update(t, m, tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
	assert.Equal(t, int32(1), selectedPID(t, m))

	m = update(t, m, tea.MouseMsg{X: 5, Y: 0, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	assert.Equal(t, int32(1), selectedPID(t, m), "clicks on the header are ignored")
}

func TestModel_MouseDisabled(t *testing.T) {
	settings := config.DefaultSettings()
	settings.EnableMouse = false
	m := newTestModel(t, newFixture(), settings, Session{})

	m = update(t, m, tea.MouseMsg{X: 5, Y: m.tableTop() + 2, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	assert.Equal(t, int32(200), selectedPID(t, m))
}

func TestModel_ViewEmptyWhenQuitting(t *testing.T) {
	m := newTestModel(t, newFixture(), config.DefaultSettings(), Session{})
	assert.NotEmpty(t, m.View())

	m = press(t, m, "q")
	assert.Empty(t, m.View())
}

func TestAuxCursor(t *testing.T) {
	var c auxCursor
	c.move(5, 3)
	assert.Equal(t, 2, c.selected)

	c.clamp(3, 2)
	assert.Equal(t, 1, c.offset)

	c.move(-10, 3)
	c.clamp(3, 2)
	assert.Equal(t, auxCursor{}, c)

	c.selected = 9
	c.clamp(0, 2)
	assert.Equal(t, auxCursor{}, c)
}
