package monitor

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/pstop/internal/process"
	"github.com/rileyhilliard/pstop/internal/util"
)

// pager is a scrollable read-only text view.
type pager struct {
	title  string
	lines  []string
	offset int
	// closeKey closes the view in addition to Esc and q.
	closeKey string
}

func (p *pager) scroll(delta, visible int) {
	p.offset = min(max(p.offset+delta, 0), max(len(p.lines)-visible, 0))
}

func (m Model) pagerRows() int {
	return max(m.height-6, 5)
}

func (m *Model) handlePagerKey(msg tea.KeyMsg) tea.Cmd {
	rows := m.pagerRows()
	switch msg.String() {
	case "esc", "q", m.pager.closeKey:
		m.mode = ModeNormal
	case "up", "k":
		m.pager.scroll(-1, rows)
	case "down", "j":
		m.pager.scroll(1, rows)
	case "pgup":
		m.pager.scroll(-rows, rows)
	case "pgdown":
		m.pager.scroll(rows, rows)
	case "home":
		m.pager.offset = 0
	case "end":
		m.pager.scroll(len(m.pager.lines), rows)
	}
	return nil
}

// inspected returns the selected process row, skipping thread rows.
func (m *Model) inspected() (process.Record, bool) {
	rec, ok := m.state.Selected()
	if !ok || rec.IsThread {
		return process.Record{}, false
	}
	return rec, true
}

// openDetails shows the selected process's fields, executable, working
// directory and environment. Unreadable detail is noted in the view.
func (m *Model) openDetails() {
	rec, ok := m.inspected()
	if !ok {
		return
	}
	d, err := m.collector.Details(m.ctx, rec.PID)
	m.pager = pager{
		title:    fmt.Sprintf("Process %d: %s", rec.PID, rec.Name),
		lines:    detailLines(rec, d, err),
		closeKey: "e",
	}
	m.mode = ModeDetails
}

func detailLines(r process.Record, d process.Details, err error) []string {
	field := func(label, value string) string {
		return fmt.Sprintf("%-14s %s", label+":", value)
	}
	orNone := func(s string) string {
		if s == "" {
			return "-"
		}
		return s
	}

	lines := []string{
		field("Name", r.Name),
		field("PID", fmt.Sprint(r.PID)),
		field("Parent PID", fmt.Sprint(r.PPID)),
		field("User", orNone(r.User)),
		field("State", r.Status.String()),
		field("Priority", fmt.Sprintf("%d (nice %d)", r.Priority, r.Nice)),
		field("Threads", fmt.Sprint(r.Threads)),
		field("Memory", fmt.Sprintf("%s resident, %s virtual (%.1f%%)",
			util.FormatBytes(r.ResBytes), util.FormatBytes(r.VirtBytes), r.MemPercent)),
		field("CPU", fmt.Sprintf("%.1f%%, %s total", r.CPUPercent, util.FormatTime(r.CPUTime))),
		field("Running for", util.FormatUptime(r.RunTime)),
		field("Disk I/O", fmt.Sprintf("read %s, write %s",
			util.FormatIORate(r.IOReadRate), util.FormatIORate(r.IOWriteRate))),
		field("Command", orNone(r.Command)),
		field("Executable", orNone(d.Exe)),
		field("Working dir", orNone(d.Cwd)),
		"",
	}
	if err != nil {
		return append(lines, "Environment: unavailable ("+err.Error()+")")
	}
	lines = append(lines, fmt.Sprintf("Environment (%d):", len(d.Environ)))
	for _, kv := range d.Environ {
		lines = append(lines, "  "+kv)
	}
	return lines
}

// openFiles shows the descriptors the selected process holds open.
func (m *Model) openFiles() {
	rec, ok := m.inspected()
	if !ok {
		return
	}
	files, err := m.collector.OpenFiles(m.ctx, rec.PID)
	m.pager = pager{
		title:    fmt.Sprintf("Open files of %d: %s", rec.PID, rec.Name),
		lines:    openFileLines(files, err),
		closeKey: "l",
	}
	m.mode = ModeHandles
}

func openFileLines(files []process.OpenFile, err error) []string {
	if err != nil || len(files) == 0 {
		line := "Unable to enumerate open files"
		if err != nil {
			line += " (" + err.Error() + ")"
		}
		return []string{line}
	}
	lines := []string{
		fmt.Sprintf("Total: %d %s", len(files), util.Pluralize(len(files), "file", "files")),
		"",
		fmt.Sprintf("%5s  %s", "FD", "PATH"),
	}
	for _, f := range files {
		lines = append(lines, fmt.Sprintf("%5d  %s", f.FD, f.Path))
	}
	return lines
}

func (m Model) renderPager() string {
	s := m.scheme
	rows := m.pagerRows()
	end := min(m.pager.offset+rows, len(m.pager.lines))
	width := max(m.viewWidth()-8, 20)

	body := make([]string, 0, rows)
	for _, l := range m.pager.lines[m.pager.offset:end] {
		body = append(body, fg(s.Text).Render(util.Truncate(l, width)))
	}

	hint := "↑/↓ scroll · Esc close"
	if len(m.pager.lines) > rows {
		hint = fmt.Sprintf("%d-%d of %d · %s", m.pager.offset+1, end, len(m.pager.lines), hint)
	}
	content := strings.Join([]string{
		fg(s.Prompt).Bold(true).Render(m.pager.title),
		"",
		strings.Join(body, "\n"),
		"",
		fg(s.Shadow).Render(hint),
	}, "\n")

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.Border).
		Padding(0, 1).
		Render(content)
	return lipgloss.Place(m.viewWidth(), max(m.height, lipgloss.Height(box)), lipgloss.Center, lipgloss.Center, box)
}

func (m *Model) handleIOPriorityKey(msg tea.KeyMsg) tea.Cmd {
	if m.menuKey(msg, len(process.IOPriorities)) {
		return nil
	}
	if msg.String() == "enter" {
		m.report(m.collector.SetIOPriority(m.state.Targets(), process.IOPriorities[m.menu]))
		m.mode = ModeNormal
	}
	return nil
}
