package monitor

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/pstop/internal/config"
	"github.com/rileyhilliard/pstop/internal/procview"
)

// setupPage is one category of the setup screen.
type setupPage int

const (
	pageDisplay setupPage = iota
	pageColors
	pageColumns

	pageCount
)

func (p setupPage) String() string {
	switch p {
	case pageColors:
		return "Colors"
	case pageColumns:
		return "Columns"
	default:
		return "Display options"
	}
}

// displayOption is one checkbox of the Display options page.
type displayOption struct {
	label string
	field func(s *config.Settings) *bool
}

var displayOptions = []displayOption{
	{"Tree view by default", func(s *config.Settings) *bool { return &s.ShowTreeByDefault }},
	{"Shadow other users' processes", func(s *config.Settings) *bool { return &s.ShadowOtherUsers }},
	{"Hide kernel threads", func(s *config.Settings) *bool { return &s.HideKernelThreads }},
	{"Highlight program base name", func(s *config.Settings) *bool { return &s.HighlightBaseName }},
	{"Highlight large numbers (megabytes)", func(s *config.Settings) *bool { return &s.HighlightMegabytes }},
	{"Display threads in a different color", func(s *config.Settings) *bool { return &s.HighlightThreads }},
	{"Leave a margin around header", func(s *config.Settings) *bool { return &s.HeaderMargin }},
	{"TIME+ shows CPU time, not run time", func(s *config.Settings) *bool { return &s.DetailedCPUTime }},
	{"Count CPUs from zero instead of one", func(s *config.Settings) *bool { return &s.CPUCountFromZero }},
	{"Update process names on every refresh", func(s *config.Settings) *bool { return &s.UpdateProcessNames }},
	{"Show custom thread names", func(s *config.Settings) *bool { return &s.ShowThreadNames }},
	{"Show full program paths", func(s *config.Settings) *bool { return &s.ShowFullPath }},
	{"Show merged command", func(s *config.Settings) *bool { return &s.ShowMergedCommand }},
	{"Enable mouse control", func(s *config.Settings) *bool { return &s.EnableMouse }},
}

// setupColumns are the columns the user may hide. Command is always shown.
func setupColumns() []procview.SortField {
	var out []procview.SortField
	for _, f := range procview.Fields() {
		if f != procview.FieldCommand {
			out = append(out, f)
		}
	}
	return out
}

func (p setupPage) len() int {
	switch p {
	case pageColors:
		return len(Schemes)
	case pageColumns:
		return len(setupColumns())
	default:
		return len(displayOptions)
	}
}

func (m *Model) openSetup() {
	m.settings.HideKernelThreads = m.state.HideKernel
	m.page = pageDisplay
	m.pageFocus = false
	m.menu = 0
	m.mode = ModeSetup
}

// handleSetupKey drives the setup screen. The category list and the option
// list take focus in turn; changes apply immediately.
func (m *Model) handleSetupKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "f2", "q":
		m.mode = ModeNormal
		return nil
	case "left", "h":
		m.pageFocus = false
		return nil
	case "right", "l", "tab":
		m.pageFocus = true
		m.menu = min(m.menu, m.page.len()-1)
		return nil
	}

	if !m.pageFocus {
		switch msg.String() {
		case "up", "k":
			m.page = (m.page + pageCount - 1) % pageCount
			m.menu = 0
		case "down", "j":
			m.page = (m.page + 1) % pageCount
			m.menu = 0
		case "enter":
			m.pageFocus = true
		}
		return nil
	}

	switch msg.String() {
	case "up", "k":
		m.menu = max(m.menu-1, 0)
	case "down", "j":
		m.menu = min(m.menu+1, m.page.len()-1)
	case "home":
		m.menu = 0
	case "end":
		m.menu = m.page.len() - 1
	case " ", "enter":
		return m.applySetup()
	}
	return nil
}

// applySetup toggles or selects the entry under the cursor.
func (m *Model) applySetup() tea.Cmd {
	switch m.page {
	case pageColors:
		m.settings.ColorScheme = m.menu
		m.scheme = SchemeAt(m.menu)
	case pageColumns:
		f := int(setupColumns()[m.menu])
		m.settings.SetColumnVisible(f, !m.settings.ColumnVisible(f))
	default:
		v := displayOptions[m.menu].field(&m.settings)
		*v = !*v
		return m.syncSettings()
	}
	return nil
}

// syncSettings pushes display settings into the parts of the model that
// cache them.
func (m *Model) syncSettings() tea.Cmd {
	if m.state.HideKernel != m.settings.HideKernelThreads {
		m.state.ToggleHideKernel()
	}
	m.collector.SetUpdateNames(m.settings.UpdateProcessNames)
	m.state.SetVisibleRows(m.visibleRows())

	if m.settings.EnableMouse == m.mouse {
		return nil
	}
	m.mouse = m.settings.EnableMouse
	if m.mouse {
		return tea.EnableMouseCellMotion
	}
	return tea.DisableMouse
}

// setupItems returns the option list of the current page.
func (m Model) setupItems() []string {
	check := func(on bool) string {
		if on {
			return "[x] "
		}
		return "[ ] "
	}

	var items []string
	switch m.page {
	case pageColors:
		for i, sc := range Schemes {
			mark := "( ) "
			if i == m.settings.ColorScheme {
				mark = "(*) "
			}
			items = append(items, mark+fmt.Sprintf("%-15s %s", sc.Name, sc.Description))
		}
	case pageColumns:
		for _, f := range setupColumns() {
			items = append(items, check(m.settings.ColumnVisible(int(f)))+f.String())
		}
	default:
		s := m.settings
		for _, o := range displayOptions {
			items = append(items, check(*o.field(&s))+o.label)
		}
	}
	return items
}

func (m Model) renderSetup() string {
	s := m.scheme
	selected := lipgloss.NewStyle().Foreground(s.TabActiveFg).Background(s.TabActiveBg)
	if s.Reverse {
		selected = selected.Reverse(true)
	}
	current := fg(s.Prompt).Bold(true)
	text := fg(s.Text)

	var pages []string
	for p := setupPage(0); p < pageCount; p++ {
		label := " " + p.String() + " "
		switch {
		case p == m.page && !m.pageFocus:
			pages = append(pages, selected.Render(label))
		case p == m.page:
			pages = append(pages, current.Render(label))
		default:
			pages = append(pages, text.Render(label))
		}
	}

	items := m.setupItems()
	height := max(m.height-8, 5)
	start := 0
	if m.menu >= height {
		start = m.menu - height + 1
	}
	var rows []string
	for i := start; i < min(start+height, len(items)); i++ {
		if m.pageFocus && i == m.menu {
			rows = append(rows, selected.Render(" "+items[i]+" "))
		} else {
			rows = append(rows, text.Render(" "+items[i]+" "))
		}
	}

	border := lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, true, false, false).
		BorderForeground(s.Border).PaddingRight(1)
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		border.Render(strings.Join(pages, "\n")),
		lipgloss.NewStyle().PaddingLeft(1).Render(strings.Join(rows, "\n")))

	content := strings.Join([]string{
		current.Render("Setup"),
		"",
		body,
		"",
		fg(s.Shadow).Render("←/→ switch list · ↑/↓ move · Space toggle · Esc/F2 done"),
	}, "\n")

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.Border).
		Padding(0, 1).
		Render(content)
	return lipgloss.Place(m.viewWidth(), max(m.height, lipgloss.Height(box)), lipgloss.Center, lipgloss.Center, box)
}
