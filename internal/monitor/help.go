package monitor

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// ShortHelp returns the bindings shown when help is collapsed.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Search, k.Filter, k.Tree, k.SortMenu, k.Kill, k.Quit}
}

// FullHelp returns every binding, one column per group.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Home, k.End, k.NextTab, k.PrevTab, k.Search, k.Filter, k.Users, k.Setup, k.Help, k.Quit},
		{k.Tree, k.Expand, k.Collapse, k.ExpandAll, k.SortMenu, k.SortPrev, k.SortNext, k.SortCPU, k.SortMem, k.SortTime, k.SortPID, k.Invert},
		{k.Tag, k.TagChildren, k.UntagAll, k.Follow, k.NiceMinus, k.NicePlus, k.Kill, k.Affinity, k.IOPriority, k.Details, k.OpenFiles, k.Threads, k.HideKernel, k.FullPath, k.Scheme, k.Pause, k.Refresh},
	}
}

// renderHelpOverlay renders a centered box listing every key binding.
func (m Model) renderHelpOverlay() string {
	s := m.scheme

	h := help.New()
	h.ShowAll = true
	h.FullSeparator = "    "
	h.Styles.FullKey = fg(s.Prompt).Bold(true)
	h.Styles.FullDesc = fg(s.Text)
	h.Styles.FullSeparator = fg(s.Shadow)

	content := strings.Join([]string{
		fg(s.Prompt).Bold(true).MarginBottom(1).Render("Keyboard Shortcuts"),
		h.View(keys),
		"",
		fg(s.Shadow).Render("Press Esc or F1 to close"),
	}, "\n")

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.Border).
		Padding(1, 2).
		Render(content)

	return lipgloss.Place(
		m.viewWidth(),
		max(m.height, lipgloss.Height(box)),
		lipgloss.Center,
		lipgloss.Center,
		box,
		lipgloss.WithWhitespaceChars(" "),
	)
}
