package monitor

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/pstop/internal/config"
	"github.com/rileyhilliard/pstop/internal/procview"
)

// Session holds the per-run choices that are not persisted.
type Session struct {
	Filter string
	User   string
	// Sort is a column name, alias or index; empty keeps the saved field.
	Sort string
	// CurrentUser is used to shadow other users' processes.
	CurrentUser string
}

// Model is the Bubble Tea model for the process dashboard.
type Model struct {
	ctx       context.Context
	collector *Collector
	state     *procview.State
	settings  config.Settings
	scheme    Scheme
	session   Session

	snap Snapshot
	tab  Tab
	mode Mode
	aux  auxCursor

	input       textinput.Model
	menu        int
	affinity    []bool
	affinityPID int32
	page        setupPage
	pageFocus   bool
	pager       pager
	mouse       bool

	width    int
	height   int
	interval time.Duration
	message  string
	quitting bool
	now      func() time.Time
}

// tickMsg signals a periodic refresh.
type tickMsg time.Time

// NewModel creates a dashboard over collector, starting from the saved
// settings and the session overrides.
func NewModel(ctx context.Context, collector *Collector, settings config.Settings, session Session) Model {
	state := procview.NewState()
	if f := procview.SortField(settings.SortField); f.Valid() {
		state.SortField = f
	}
	state.Ascending = settings.SortAscending
	state.Tree = settings.TreeView || settings.ShowTreeByDefault
	state.HideKernel = settings.HideKernelThreads
	state.Filter = session.Filter
	state.User = session.User
	if session.Sort != "" {
		if f, ok := procview.ParseSortField(session.Sort); ok {
			state.SortField = f
		}
	}

	collector.SetUpdateNames(settings.UpdateProcessNames)

	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 128

	return Model{
		ctx:       ctx,
		collector: collector,
		state:     state,
		settings:  settings,
		scheme:    SchemeAt(settings.ColorScheme),
		session:   session,
		input:     ti,
		interval:  settings.Interval(),
		mouse:     settings.EnableMouse,
		now:       time.Now,
	}
}

// Init samples immediately; every tick schedules the next one.
func (m Model) Init() tea.Cmd {
	return func() tea.Msg {
		return tickMsg(m.now())
	}
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd := m.HandleKeyMsg(msg)
		return m, cmd

	case tea.MouseMsg:
		m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.state.SetVisibleRows(m.visibleRows())
		m.aux.clamp(m.auxLen(), m.visibleRows())

	case tickMsg:
		m.sample(time.Time(msg))
		return m, m.tickCmd()
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.renderDashboard()
}

// tickCmd returns a command that sends a tick after the refresh interval.
func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// sample runs one collection pass and re-derives every view.
func (m *Model) sample(now time.Time) {
	if m.collector.Paused() {
		return
	}
	m.snap = m.collector.Collect(m.ctx, now, m.state.ShowThreads)
	m.state.Update(m.snap.Processes.Records)
	m.aux.clamp(m.auxLen(), m.visibleRows())
}

// Settings returns the saved settings with every dashboard toggle applied.
func (m Model) Settings() config.Settings {
	s := m.settings
	s.SortField = int(m.state.SortField)
	s.SortAscending = m.state.Ascending
	s.TreeView = m.state.Tree
	s.HideKernelThreads = m.state.HideKernel
	return s
}

// State exposes the process view for inspection.
func (m Model) State() *procview.State {
	return m.state
}

// Tab returns the active tab.
func (m Model) Tab() Tab {
	return m.tab
}

// Mode returns the active input mode.
func (m Model) Mode() Mode {
	return m.mode
}

// Message returns the footer status message, if any.
func (m Model) Message() string {
	return m.message
}

// setTab switches the active tab. GPU counters are only read while the GPU
// tab is showing.
func (m *Model) setTab(t Tab) {
	m.tab = t
	m.collector.SetGPUActive(t == TabGPU)
	m.aux.clamp(m.auxLen(), m.visibleRows())
}

// auxLen is the row count of the active Net or GPU list.
func (m Model) auxLen() int {
	switch m.tab {
	case TabNet:
		return len(m.snap.Bandwidth)
	case TabGPU:
		return len(m.snap.GPU)
	}
	return 0
}

// visibleRows is the number of table rows that fit under the header.
func (m Model) visibleRows() int {
	if m.height == 0 {
		return procview.DefaultVisibleRows
	}
	return max(m.height-m.tableTop()-footerHeight, 1)
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if !m.mouse || m.mode != ModeNormal {
		return
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.scroll(-3)
	case tea.MouseButtonWheelDown:
		m.scroll(3)
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			return
		}
		row := msg.Y - m.tableTop()
		if row < 0 || row >= m.visibleRows() {
			return
		}
		if m.tab == TabNet || m.tab == TabGPU {
			m.aux.selected = m.aux.offset + row
			m.aux.clamp(m.auxLen(), m.visibleRows())
			return
		}
		_, offset := m.state.Cursor()
		if idx := offset + row; idx < len(m.state.Rows()) {
			m.state.SelectPID(m.state.Rows()[idx].PID)
		}
	}
}

func (m *Model) scroll(delta int) {
	if m.tab == TabNet || m.tab == TabGPU {
		m.aux.move(delta, m.auxLen())
		m.aux.clamp(m.auxLen(), m.visibleRows())
		return
	}
	for range abs(delta) {
		if delta < 0 {
			m.state.MoveUp()
		} else {
			m.state.MoveDown()
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
