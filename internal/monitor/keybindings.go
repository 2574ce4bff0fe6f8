package monitor

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/pstop/internal/process"
	"github.com/rileyhilliard/pstop/internal/procview"
)

// Tab is one of the dashboard's list views.
type Tab int

const (
	TabMain Tab = iota
	TabIO
	TabNet
	TabGPU

	tabCount
)

// String returns the tab bar label.
func (t Tab) String() string {
	switch t {
	case TabIO:
		return "I/O"
	case TabNet:
		return "Net"
	case TabGPU:
		return "GPU"
	default:
		return "Main"
	}
}

// Next cycles to the following tab.
func (t Tab) Next() Tab {
	return (t + 1) % tabCount
}

// Prev cycles to the preceding tab.
func (t Tab) Prev() Tab {
	return (t + tabCount - 1) % tabCount
}

// Mode decides which handler receives key presses.
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
	ModeFilter
	ModeHelp
	ModeSortSelect
	ModeKill
	ModeUserFilter
	ModeAffinity
	ModeSetup
	ModeDetails
	ModeHandles
	ModeIOPriority
)

type keyMap struct {
	Quit        key.Binding
	Help        key.Binding
	Up          key.Binding
	Down        key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	Home        key.Binding
	End         key.Binding
	NextTab     key.Binding
	PrevTab     key.Binding
	Search      key.Binding
	Filter      key.Binding
	Tree        key.Binding
	SortMenu    key.Binding
	SortPrev    key.Binding
	SortNext    key.Binding
	SortCPU     key.Binding
	SortMem     key.Binding
	SortTime    key.Binding
	SortPID     key.Binding
	Invert      key.Binding
	NiceMinus   key.Binding
	NicePlus    key.Binding
	Kill        key.Binding
	Users       key.Binding
	Affinity    key.Binding
	Follow      key.Binding
	Tag         key.Binding
	TagChildren key.Binding
	UntagAll    key.Binding
	Threads     key.Binding
	HideKernel  key.Binding
	Pause       key.Binding
	Refresh     key.Binding
	Expand      key.Binding
	Collapse    key.Binding
	ExpandAll   key.Binding
	FullPath    key.Binding
	Scheme      key.Binding
	Setup       key.Binding
	Details     key.Binding
	OpenFiles   key.Binding
	IOPriority  key.Binding
}

var keys = keyMap{
	Quit:        key.NewBinding(key.WithKeys("q", "f10", "ctrl+c"), key.WithHelp("q / F10", "Quit")),
	Help:        key.NewBinding(key.WithKeys("f1", "?", "h"), key.WithHelp("F1 / ? / h", "Show this help")),
	Up:          key.NewBinding(key.WithKeys("up", "alt+k"), key.WithHelp("↑ / Alt-k", "Select previous row")),
	Down:        key.NewBinding(key.WithKeys("down", "alt+j"), key.WithHelp("↓ / Alt-j", "Select next row")),
	PageUp:      key.NewBinding(key.WithKeys("pgup"), key.WithHelp("PgUp", "Page up")),
	PageDown:    key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("PgDn", "Page down")),
	Home:        key.NewBinding(key.WithKeys("home"), key.WithHelp("Home", "First row")),
	End:         key.NewBinding(key.WithKeys("end"), key.WithHelp("End", "Last row")),
	NextTab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("Tab", "Next tab")),
	PrevTab:     key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("S-Tab", "Previous tab")),
	Search:      key.NewBinding(key.WithKeys("f3", "/"), key.WithHelp("F3 / /", "Search (digits search by PID)")),
	Filter:      key.NewBinding(key.WithKeys("f4", "\\"), key.WithHelp("F4 / \\", "Filter (| separates terms)")),
	Tree:        key.NewBinding(key.WithKeys("f5", "t"), key.WithHelp("F5 / t", "Tree view")),
	SortMenu:    key.NewBinding(key.WithKeys("f6"), key.WithHelp("F6", "Choose sort column")),
	SortPrev:    key.NewBinding(key.WithKeys("<", ","), key.WithHelp("< / ,", "Sort by previous column")),
	SortNext:    key.NewBinding(key.WithKeys(">", "."), key.WithHelp("> / .", "Sort by next column")),
	SortCPU:     key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "Sort by CPU%")),
	SortMem:     key.NewBinding(key.WithKeys("M"), key.WithHelp("M", "Sort by MEM%")),
	SortTime:    key.NewBinding(key.WithKeys("T"), key.WithHelp("T", "Sort by TIME+")),
	SortPID:     key.NewBinding(key.WithKeys("N"), key.WithHelp("N", "Sort by PID")),
	Invert:      key.NewBinding(key.WithKeys("I"), key.WithHelp("I", "Invert sort order")),
	NiceMinus:   key.NewBinding(key.WithKeys("f7", "]"), key.WithHelp("F7 / ]", "Raise priority (nice -)")),
	NicePlus:    key.NewBinding(key.WithKeys("f8", "["), key.WithHelp("F8 / [", "Lower priority (nice +)")),
	Kill:        key.NewBinding(key.WithKeys("f9", "k"), key.WithHelp("F9 / k", "Send signal")),
	Users:       key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "Show one user's processes")),
	Affinity:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "Set CPU affinity")),
	Follow:      key.NewBinding(key.WithKeys("F"), key.WithHelp("F", "Follow selected process")),
	Tag:         key.NewBinding(key.WithKeys(" "), key.WithHelp("Space", "Tag process")),
	TagChildren: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "Tag process and children")),
	UntagAll:    key.NewBinding(key.WithKeys("U"), key.WithHelp("U", "Untag all")),
	Threads:     key.NewBinding(key.WithKeys("H"), key.WithHelp("H", "Show threads")),
	HideKernel:  key.NewBinding(key.WithKeys("K"), key.WithHelp("K", "Hide kernel processes")),
	Pause:       key.NewBinding(key.WithKeys("Z", "z"), key.WithHelp("Z", "Pause updates")),
	Refresh:     key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("Ctrl-L", "Resume and refresh")),
	Expand:      key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "Expand subtree")),
	Collapse:    key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "Collapse subtree")),
	ExpandAll:   key.NewBinding(key.WithKeys("*"), key.WithHelp("*", "Expand all")),
	FullPath:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "Show full command path")),
	Scheme:      key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "Next color scheme")),
	Setup:       key.NewBinding(key.WithKeys("f2", "S"), key.WithHelp("F2 / S", "Setup")),
	Details:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "Process details and environment")),
	OpenFiles:   key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "List open files")),
	IOPriority:  key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "Set I/O priority")),
}

// HandleKeyMsg dispatches a key press to the handler for the current mode.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	m.message = ""
	switch m.mode {
	case ModeSearch:
		return m.handleSearchKey(msg)
	case ModeFilter:
		return m.handleFilterKey(msg)
	case ModeHelp:
		switch msg.String() {
		case "esc", "enter", "q", "f1", "?":
			m.mode = ModeNormal
		}
		return nil
	case ModeSortSelect:
		return m.handleSortKey(msg)
	case ModeKill:
		return m.handleKillKey(msg)
	case ModeUserFilter:
		return m.handleUserKey(msg)
	case ModeAffinity:
		return m.handleAffinityKey(msg)
	case ModeSetup:
		return m.handleSetupKey(msg)
	case ModeDetails, ModeHandles:
		return m.handlePagerKey(msg)
	case ModeIOPriority:
		return m.handleIOPriorityKey(msg)
	default:
		return m.handleNormalKey(msg)
	}
}

func (m *Model) handleNormalKey(msg tea.KeyMsg) tea.Cmd {
	if m.navigate(msg) {
		return nil
	}

	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return tea.Quit
	case key.Matches(msg, keys.Help):
		m.mode = ModeHelp
	case key.Matches(msg, keys.NextTab):
		m.setTab(m.tab.Next())
	case key.Matches(msg, keys.PrevTab):
		m.setTab(m.tab.Prev())
	case key.Matches(msg, keys.Search):
		return m.openPrompt(ModeSearch, "")
	case key.Matches(msg, keys.Filter):
		return m.openPrompt(ModeFilter, m.state.Filter)
	case key.Matches(msg, keys.Tree):
		m.state.ToggleTree()
	case key.Matches(msg, keys.SortMenu):
		m.menu = int(m.state.SortField)
		m.mode = ModeSortSelect
	case key.Matches(msg, keys.SortPrev):
		m.state.SortField = m.state.SortField.Prev()
		m.state.Derive()
	case key.Matches(msg, keys.SortNext):
		m.state.SortField = m.state.SortField.Next()
		m.state.Derive()
	case key.Matches(msg, keys.SortCPU):
		m.state.SetSortField(procview.FieldCPU)
	case key.Matches(msg, keys.SortMem):
		m.state.SetSortField(procview.FieldMem)
	case key.Matches(msg, keys.SortTime):
		m.state.SetSortField(procview.FieldTime)
	case key.Matches(msg, keys.SortPID):
		m.state.SetSortField(procview.FieldPID)
	case key.Matches(msg, keys.Invert):
		m.state.InvertSort()
	case key.Matches(msg, keys.NiceMinus):
		m.report(m.collector.StepPriority(m.state.Targets(), -1))
	case key.Matches(msg, keys.NicePlus):
		m.report(m.collector.StepPriority(m.state.Targets(), 1))
	case key.Matches(msg, keys.Kill):
		if len(m.state.Targets()) > 0 {
			m.menu = 0
			m.mode = ModeKill
		}
	case key.Matches(msg, keys.Users):
		m.menu = 0
		m.mode = ModeUserFilter
	case key.Matches(msg, keys.Affinity):
		m.openAffinity()
	case key.Matches(msg, keys.Setup):
		m.openSetup()
	case key.Matches(msg, keys.Details):
		m.openDetails()
	case key.Matches(msg, keys.OpenFiles):
		m.openFiles()
	case key.Matches(msg, keys.IOPriority):
		if len(m.state.Targets()) > 0 {
			m.menu = 0
			m.mode = ModeIOPriority
		}
	case key.Matches(msg, keys.Follow):
		m.state.ToggleFollow()
	case key.Matches(msg, keys.Tag):
		m.state.ToggleTag()
		m.state.MoveDown()
	case key.Matches(msg, keys.TagChildren):
		m.state.TagWithChildren()
	case key.Matches(msg, keys.UntagAll):
		m.state.UntagAll()
	case key.Matches(msg, keys.Threads):
		m.state.ToggleThreads()
		m.sample(m.now())
	case key.Matches(msg, keys.HideKernel):
		m.state.ToggleHideKernel()
	case key.Matches(msg, keys.Pause):
		m.collector.TogglePause()
	case key.Matches(msg, keys.Refresh):
		m.collector.Resume()
		m.sample(m.now())
	case key.Matches(msg, keys.Expand):
		m.state.Expand()
	case key.Matches(msg, keys.Collapse):
		m.state.Collapse()
	case key.Matches(msg, keys.ExpandAll):
		m.state.ExpandAll()
	case key.Matches(msg, keys.FullPath):
		m.settings.ShowFullPath = !m.settings.ShowFullPath
	case key.Matches(msg, keys.Scheme):
		m.settings.ColorScheme = (m.settings.ColorScheme + 1) % len(Schemes)
		m.scheme = SchemeAt(m.settings.ColorScheme)
	case isDigit(msg):
		cmd := m.openPrompt(ModeSearch, string(msg.Runes))
		m.state.SetSearch(m.input.Value())
		return cmd
	}
	return nil
}

// navigate moves the cursor of the active tab. It reports whether msg was
// a navigation key.
func (m *Model) navigate(msg tea.KeyMsg) bool {
	if m.tab == TabNet || m.tab == TabGPU {
		n := m.auxLen()
		switch {
		case key.Matches(msg, keys.Up):
			m.aux.move(-1, n)
		case key.Matches(msg, keys.Down):
			m.aux.move(1, n)
		case key.Matches(msg, keys.PageUp):
			m.aux.move(-m.visibleRows(), n)
		case key.Matches(msg, keys.PageDown):
			m.aux.move(m.visibleRows(), n)
		case key.Matches(msg, keys.Home):
			m.aux.move(-n, n)
		case key.Matches(msg, keys.End):
			m.aux.move(n, n)
		default:
			return false
		}
		m.aux.clamp(n, m.visibleRows())
		return true
	}

	switch {
	case key.Matches(msg, keys.Up):
		m.state.MoveUp()
	case key.Matches(msg, keys.Down):
		m.state.MoveDown()
	case key.Matches(msg, keys.PageUp):
		m.state.PageUp()
	case key.Matches(msg, keys.PageDown):
		m.state.PageDown()
	case key.Matches(msg, keys.Home):
		m.state.Home()
	case key.Matches(msg, keys.End):
		m.state.End()
	default:
		return false
	}
	return true
}

func isDigit(msg tea.KeyMsg) bool {
	return msg.Type == tea.KeyRunes && len(msg.Runes) == 1 && msg.Runes[0] >= '0' && msg.Runes[0] <= '9'
}

func (m *Model) openPrompt(mode Mode, value string) tea.Cmd {
	m.mode = mode
	m.input.Reset()
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) closePrompt() {
	m.input.Blur()
	m.mode = ModeNormal
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.state.SetSearch("")
		m.closePrompt()
		return nil
	case "enter", "f3":
		m.state.SearchNext()
		return nil
	case "shift+f3":
		m.state.SearchPrev()
		return nil
	case "up":
		m.state.MoveUp()
		return nil
	case "down":
		m.state.MoveDown()
		return nil
	case "f10", "ctrl+c":
		m.quitting = true
		return tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != m.state.Search {
		m.state.SetSearch(v)
	}
	return cmd
}

func (m *Model) handleFilterKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.state.SetFilter("")
		m.closePrompt()
		return nil
	case "enter":
		m.closePrompt()
		return nil
	case "up":
		m.state.MoveUp()
		return nil
	case "down":
		m.state.MoveDown()
		return nil
	case "f10", "ctrl+c":
		m.quitting = true
		return tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != m.state.Filter {
		m.state.SetFilter(v)
	}
	return cmd
}

// menuKey moves the popup cursor over n entries. It reports whether the key
// was consumed.
func (m *Model) menuKey(msg tea.KeyMsg, n int) bool {
	switch msg.String() {
	case "esc":
		m.mode = ModeNormal
	case "up", "k":
		if m.menu > 0 {
			m.menu--
		}
	case "down", "j":
		if m.menu < n-1 {
			m.menu++
		}
	case "home":
		m.menu = 0
	case "end":
		m.menu = max(n-1, 0)
	default:
		return false
	}
	return true
}

func (m *Model) handleSortKey(msg tea.KeyMsg) tea.Cmd {
	fields := procview.Fields()
	if m.menuKey(msg, len(fields)) {
		return nil
	}
	if msg.String() == "enter" {
		m.state.SetSortField(fields[m.menu])
		m.mode = ModeNormal
	}
	return nil
}

func (m *Model) handleKillKey(msg tea.KeyMsg) tea.Cmd {
	if m.menuKey(msg, len(process.Signals)) {
		return nil
	}
	if msg.String() == "enter" {
		sig := process.Signals[m.menu]
		targets := m.state.Targets()
		m.report(m.collector.Signal(m.ctx, targets, sig.Number))
		m.state.UntagAll()
		m.mode = ModeNormal
	}
	return nil
}

func (m *Model) handleUserKey(msg tea.KeyMsg) tea.Cmd {
	users := m.state.Users()
	// Entry 0 is "All users".
	if m.menuKey(msg, len(users)+1) {
		return nil
	}
	if msg.String() == "enter" {
		if m.menu == 0 {
			m.state.SetUser("")
		} else {
			m.state.SetUser(users[m.menu-1])
		}
		m.mode = ModeNormal
	}
	return nil
}

func (m *Model) openAffinity() {
	rec, ok := m.state.Selected()
	if !ok || rec.IsThread {
		return
	}
	cpus, err := m.collector.Affinity(rec.PID)
	if err != nil {
		m.report(err)
		return
	}

	n := max(len(m.snap.System.CPU.PerCore), m.snap.System.CPU.Logical)
	for _, cpu := range cpus {
		n = max(n, cpu+1)
	}
	m.affinity = make([]bool, n)
	for _, cpu := range cpus {
		m.affinity[cpu] = true
	}
	m.affinityPID = rec.PID
	m.menu = 0
	m.mode = ModeAffinity
}

func (m *Model) handleAffinityKey(msg tea.KeyMsg) tea.Cmd {
	if m.menuKey(msg, len(m.affinity)) {
		return nil
	}
	switch msg.String() {
	case " ":
		if m.menu < len(m.affinity) {
			m.affinity[m.menu] = !m.affinity[m.menu]
		}
	case "a":
		all := !allSet(m.affinity)
		for i := range m.affinity {
			m.affinity[i] = all
		}
	case "enter":
		var cpus []int
		for i, on := range m.affinity {
			if on {
				cpus = append(cpus, i)
			}
		}
		if len(cpus) == 0 {
			m.message = "Select at least one CPU"
			return nil
		}
		m.report(m.collector.SetAffinity(m.affinityPID, cpus))
		m.mode = ModeNormal
	}
	return nil
}

func allSet(b []bool) bool {
	for _, v := range b {
		if !v {
			return false
		}
	}
	return true
}

// report shows err in the footer until the next key press.
func (m *Model) report(err error) {
	if err == nil {
		return
	}
	m.message = strings.ReplaceAll(err.Error(), "\n", "; ")
}

// auxCursor is the selection of the Net and GPU lists.
type auxCursor struct {
	selected int
	offset   int
}

func (c *auxCursor) move(delta, n int) {
	c.selected = min(max(c.selected+delta, 0), max(n-1, 0))
}

func (c *auxCursor) clamp(n, visible int) {
	c.selected = min(max(c.selected, 0), max(n-1, 0))
	if c.selected < c.offset {
		c.offset = c.selected
	}
	if visible > 0 && c.selected >= c.offset+visible {
		c.offset = c.selected - visible + 1
	}
	c.offset = min(c.offset, max(n-visible, 0))
}
