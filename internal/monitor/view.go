package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/rileyhilliard/pstop/internal/netstat"
	"github.com/rileyhilliard/pstop/internal/process"
	"github.com/rileyhilliard/pstop/internal/procview"
	"github.com/rileyhilliard/pstop/internal/util"
)

const (
	defaultWidth = 80
	footerHeight = 1
	// infoRows is the Mem/Swp/Net block under the CPU meters.
	infoRows = 3
)

// renderDashboard renders the complete dashboard view.
func (m Model) renderDashboard() string {
	switch m.mode {
	case ModeHelp:
		return m.renderHelpOverlay()
	case ModeSortSelect, ModeKill, ModeUserFilter, ModeAffinity, ModeIOPriority:
		return m.renderMenu()
	case ModeSetup:
		return m.renderSetup()
	case ModeDetails, ModeHandles:
		return m.renderPager()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTabBar())
	b.WriteString("\n")
	b.WriteString(m.renderTable())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return fitWidth(b.String(), m.viewWidth())
}

// fitWidth cuts every line to width cells so nothing wraps.
func fitWidth(s string, width int) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = ansi.Truncate(l, width, "")
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewWidth() int {
	if m.width <= 0 {
		return defaultWidth
	}
	return m.width
}

func (m Model) coreCount() int {
	return max(len(m.snap.System.CPU.PerCore), 1)
}

// headerHeight is the number of lines renderHeader produces.
func (m Model) headerHeight() int {
	h := (m.coreCount()+1)/2 + infoRows
	if m.settings.HeaderMargin {
		h++
	}
	return h
}

// tableTop is the screen row of the first table row.
func (m Model) tableTop() int {
	// header, tab bar, column titles
	return m.headerHeight() + 2
}

// renderHeader renders the CPU, memory and host summary meters.
func (m Model) renderHeader() string {
	width := m.viewWidth()
	half := width / 2
	sys := m.snap.System
	s := m.scheme

	var lines []string

	cores := sys.CPU.PerCore
	if len(cores) == 0 {
		cores = []float64{sys.CPU.Total}
	}
	rows := (len(cores) + 1) / 2
	labelWidth := max(len(fmt.Sprint(len(cores))), 3)
	for r := 0; r < rows; r++ {
		left := m.cpuMeter(r, cores, labelWidth, half)
		right := ""
		if j := r + rows; j < len(cores) {
			right = m.cpuMeter(j, cores, labelWidth, width-half)
		}
		lines = append(lines, joinColumns(left, right, half))
	}

	mem := sys.Memory
	memText := util.FormatBytes(mem.Used) + "/" + util.FormatBytes(mem.Total)
	cachePct := 0.0
	if mem.Total > 0 {
		cachePct = float64(mem.Cached+mem.Buffers) / float64(mem.Total) * 100
	}
	memLine := s.Meter(pad("Mem", labelWidth+1, false), half-1, memText,
		MeterSegment{Percent: mem.UsedPercent(), Color: s.MemUsed},
		MeterSegment{Percent: cachePct, Color: s.MemCache})
	swpText := util.FormatBytes(mem.SwapUsed) + "/" + util.FormatBytes(mem.SwapTotal)
	swpLine := s.Meter(pad("Swp", labelWidth+1, false), half-1, swpText,
		MeterSegment{Percent: mem.SwapPercent(), Color: s.Swap})
	netLine := m.info("Net: ", fmt.Sprintf("↓ %s  ↑ %s",
		util.FormatRate(sys.Network.RxRate), util.FormatRate(sys.Network.TxRate)))

	tasks := m.snap.Processes.Tasks
	tasksLine := m.info("Tasks: ", fmt.Sprintf("%d, %d thr; %d running", tasks.Total, tasks.Threads, tasks.Running))
	loadLine := m.info("Load average: ", fmt.Sprintf("%.2f %.2f %.2f", sys.Load.One, sys.Load.Five, sys.Load.Fifteen))
	uptimeLine := m.info("Uptime: ", util.FormatUptime(sys.Uptime))

	lines = append(lines,
		joinColumns(memLine, tasksLine, half),
		joinColumns(swpLine, loadLine, half),
		joinColumns(netLine, uptimeLine, half),
	)
	if m.settings.HeaderMargin {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m Model) cpuMeter(i int, cores []float64, labelWidth, width int) string {
	s := m.scheme
	n := i
	if !m.settings.CPUCountFromZero {
		n++
	}
	label := pad(fmt.Sprint(n), labelWidth, true) + " "
	if len(m.snap.System.CPU.PerCore) == 0 {
		label = pad("CPU", labelWidth+1, false)
	}

	text := percentText(cores[i])
	if mhz := coreFreq(m.snap.System.CPU.FreqMHz, i); mhz > 0 && width >= 36 {
		text = fmt.Sprintf("%.2fGHz %s", mhz/1000, text)
	}
	return s.Meter(label, width-1, text, MeterSegment{Percent: cores[i], Color: s.CPUBar})
}

func coreFreq(freq []float64, i int) float64 {
	switch {
	case i < len(freq):
		return freq[i]
	case len(freq) == 1:
		return freq[0]
	}
	return 0
}

func (m Model) info(label, value string) string {
	return fg(m.scheme.Label).Bold(true).Render(label) + fg(m.scheme.Value).Bold(true).Render(value)
}

// joinColumns places right at column half.
func joinColumns(left, right string, half int) string {
	gap := half - lipgloss.Width(left)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

// renderTabBar renders the tab labels and the active view indicators.
func (m Model) renderTabBar() string {
	s := m.scheme
	active := lipgloss.NewStyle().Foreground(s.TabActiveFg).Background(s.TabActiveBg).Bold(true).Padding(0, 1)
	inactive := lipgloss.NewStyle().Foreground(s.TabInactive).Padding(0, 1)
	if s.Reverse {
		active = active.Reverse(true)
	}

	var b strings.Builder
	for t := TabMain; t < tabCount; t++ {
		if t == m.tab {
			b.WriteString(active.Render(t.String()))
		} else {
			b.WriteString(inactive.Render(t.String()))
		}
	}

	var badges []string
	if m.collector.Paused() {
		badges = append(badges, "PAUSED")
	}
	if pid, ok := m.state.Following(); ok {
		badges = append(badges, fmt.Sprintf("FOLLOW %d", pid))
	}
	if m.state.User != "" {
		badges = append(badges, "user: "+m.state.User)
	}
	if m.state.Filter != "" && m.mode != ModeFilter {
		badges = append(badges, "filter: "+m.state.Filter)
	}
	if m.state.ShowThreads {
		badges = append(badges, "threads")
	}
	if m.state.HideKernel {
		badges = append(badges, "no kernel")
	}
	if n := len(m.state.Tagged()); n > 0 {
		badges = append(badges, fmt.Sprintf("%d tagged", n))
	}
	if m.tab == TabGPU && m.snap.GPUAvailable && m.snap.Adapter.Name != "" {
		a := m.snap.Adapter
		badges = append(badges, fmt.Sprintf("%s %.1f%% ded %s shr %s", a.Name, a.Usage,
			util.FormatBytes(a.DedicatedMemory), util.FormatBytes(a.SharedMemory)))
	}

	left := b.String()
	if len(badges) == 0 {
		return left
	}
	right := fg(s.Prompt).Render("[" + strings.Join(badges, "] [") + "]")
	return joinColumns(left, right, max(m.viewWidth()-lipgloss.Width(right), lipgloss.Width(left)+1))
}

// renderTable renders the column titles and the visible rows of the
// active tab, padded to the table height.
func (m Model) renderTable() string {
	var lines []string
	switch m.tab {
	case TabNet:
		lines = m.netLines()
	case TabGPU:
		lines = m.gpuLines()
	default:
		lines = m.processLines()
	}

	height := m.visibleRows() + 1
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines[:height], "\n")
}

// column describes a process table cell.
type column struct {
	field procview.SortField
	width int
	left  bool
}

var columnSpecs = map[procview.SortField]column{
	procview.FieldPID:      {width: 7},
	procview.FieldPPID:     {width: 7},
	procview.FieldUser:     {width: 9, left: true},
	procview.FieldPriority: {width: 4},
	procview.FieldNice:     {width: 4},
	procview.FieldVirt:     {width: 7},
	procview.FieldRes:      {width: 7},
	procview.FieldShared:   {width: 7},
	procview.FieldStatus:   {width: 2},
	procview.FieldCPU:      {width: 6},
	procview.FieldMem:      {width: 6},
	procview.FieldTime:     {width: 10},
	procview.FieldThreads:  {width: 5},
	procview.FieldIORead:   {width: 11},
	procview.FieldIOWrite:  {width: 11},
	procview.FieldIO:       {width: 11},
	procview.FieldCommand:  {left: true},
}

var ioColumns = []procview.SortField{
	procview.FieldPID, procview.FieldUser, procview.FieldIORead,
	procview.FieldIOWrite, procview.FieldIO, procview.FieldCommand,
}

// columns returns the cells shown on the active tab. Command is always
// last and takes the remaining width.
func (m Model) columns() []column {
	var fields []procview.SortField
	if m.tab == TabIO {
		fields = ioColumns
	} else {
		for _, f := range procview.Fields() {
			if f != procview.FieldCommand && m.settings.ColumnVisible(int(f)) {
				fields = append(fields, f)
			}
		}
		fields = append(fields, procview.FieldCommand)
	}

	cols := make([]column, 0, len(fields))
	used := 0
	for _, f := range fields {
		c := columnSpecs[f]
		c.field = f
		used += c.width
		cols = append(cols, c)
	}
	cols[len(cols)-1].width = max(m.viewWidth()-used, 10)
	return cols
}

func (m Model) processLines() []string {
	s := m.scheme
	cols := m.columns()

	header := lipgloss.NewStyle().Foreground(s.HeaderFg).Background(s.HeaderBg)
	sorted := lipgloss.NewStyle().Foreground(s.SortFg).Background(s.SortBg).Bold(true)
	if s.Reverse {
		header = header.Reverse(true)
		sorted = sorted.Reverse(true).Bold(true)
	}

	var title strings.Builder
	for _, c := range cols {
		text := c.field.String()
		st := header
		if c.field == m.state.SortField {
			st = sorted
			if m.state.Ascending {
				text += "▲"
			} else {
				text += "▼"
			}
		}
		title.WriteString(st.Render(cell(text, c)))
	}
	lines := []string{title.String()}

	rows := m.state.Rows()
	selected, offset := m.state.Cursor()
	end := min(offset+m.visibleRows(), len(rows))
	for i := offset; i < end; i++ {
		lines = append(lines, m.processRow(rows[i], cols, i == selected))
	}
	if len(rows) == 0 {
		lines = append(lines, fg(s.Shadow).Render(" no processes match"))
	}
	return lines
}

// cell pads or truncates text to the column width, keeping one space of
// separation.
func cell(text string, c column) string {
	w := max(c.width-1, 1)
	text = util.Truncate(text, w)
	if c.left {
		return pad(text, w, false) + " "
	}
	return pad(text, w, true) + " "
}

func pad(s string, w int, right bool) string {
	n := w - lipgloss.Width(s)
	if n <= 0 {
		return s
	}
	if right {
		return strings.Repeat(" ", n) + s
	}
	return s + strings.Repeat(" ", n)
}

func (m Model) processRow(r process.Record, cols []column, selected bool) string {
	s := m.scheme
	base := lipgloss.NewStyle().Foreground(s.Text)
	if selected {
		base = base.Foreground(s.SelectedFg).Background(s.SelectedBg)
		if s.Reverse {
			base = base.Reverse(true)
		}
	}
	shadow := m.settings.ShadowOtherUsers && m.session.CurrentUser != "" &&
		!strings.EqualFold(r.User, m.session.CurrentUser)

	var b strings.Builder
	for _, c := range cols {
		st := base
		if !shadow && !selected {
			st = st.Foreground(m.cellColor(r, c.field))
		} else if shadow && !selected {
			st = st.Foreground(s.Shadow)
		}
		if c.field == procview.FieldCommand {
			b.WriteString(m.commandCell(r, c, st, shadow || selected))
			continue
		}
		b.WriteString(st.Render(cell(m.cellText(r, c.field), c)))
	}
	return b.String()
}

func (m Model) cellText(r process.Record, f procview.SortField) string {
	switch f {
	case procview.FieldPID:
		return fmt.Sprint(r.PID)
	case procview.FieldPPID:
		return fmt.Sprint(r.PPID)
	case procview.FieldUser:
		return r.User
	case procview.FieldPriority:
		return fmt.Sprint(r.Priority)
	case procview.FieldNice:
		return fmt.Sprint(r.Nice)
	case procview.FieldVirt:
		return util.FormatBytes(r.VirtBytes)
	case procview.FieldRes:
		return util.FormatBytes(r.ResBytes)
	case procview.FieldShared:
		return util.FormatBytes(r.SharedBytes)
	case procview.FieldStatus:
		return r.Status.Symbol()
	case procview.FieldCPU:
		return fmt.Sprintf("%.1f", r.CPUPercent)
	case procview.FieldMem:
		return fmt.Sprintf("%.1f", r.MemPercent)
	case procview.FieldTime:
		if m.settings.DetailedCPUTime {
			return util.FormatTime(r.CPUTime)
		}
		return util.FormatTime(r.RunTime)
	case procview.FieldThreads:
		return fmt.Sprint(r.Threads)
	case procview.FieldIORead:
		return util.FormatIORate(r.IOReadRate)
	case procview.FieldIOWrite:
		return util.FormatIORate(r.IOWriteRate)
	case procview.FieldIO:
		return util.FormatIORate(r.IORate())
	}
	return ""
}

const (
	mib = 1 << 20
	gib = 1 << 30
)

func (m Model) cellColor(r process.Record, f procview.SortField) lipgloss.TerminalColor {
	s := m.scheme
	switch f {
	case procview.FieldPID:
		if m.state.IsTagged(r.PID) {
			return s.Tagged
		}
		return s.PID
	case procview.FieldCPU:
		return s.LoadColor(r.CPUPercent)
	case procview.FieldMem:
		switch {
		case r.MemPercent > 50:
			return s.High
		case r.MemPercent > 20:
			return s.Medium
		}
	case procview.FieldVirt, procview.FieldRes:
		v := r.ResBytes
		if f == procview.FieldVirt {
			v = r.VirtBytes
		}
		if m.settings.HighlightMegabytes {
			switch {
			case v >= gib:
				return s.High
			case v >= 100*mib:
				return s.Medium
			}
		}
	case procview.FieldStatus:
		switch r.Status {
		case process.StatusRunning:
			return s.Low
		case process.StatusDiskSleep, process.StatusStopped:
			return s.High
		case process.StatusZombie:
			return s.Zombie
		case process.StatusUnknown:
			return s.Shadow
		}
	case procview.FieldThreads:
		if m.settings.HighlightThreads && r.Threads > 10 {
			return s.Thread
		}
	case procview.FieldIORead:
		return s.Medium
	case procview.FieldIOWrite:
		return s.Zombie
	}
	if m.state.IsTagged(r.PID) {
		return s.Tagged
	}
	return s.Text
}

// commandText is the Command cell content without the tree prefix.
func (m Model) commandText(r process.Record) string {
	if r.IsThread {
		if !m.settings.ShowThreadNames {
			return m.snap.ProcessName(r.PPID)
		}
		return r.Name
	}
	switch {
	case m.settings.ShowMergedCommand && r.Command != "" && r.Command != r.Name:
		return r.Name + " " + r.Command
	case m.settings.ShowFullPath && r.Command != "":
		return r.Command
	}
	return r.Name
}

func treePrefix(r process.Record) string {
	if r.Depth == 0 {
		return ""
	}
	prefix := strings.Repeat("│ ", r.Depth-1)
	if r.IsLastChild {
		return prefix + "└─"
	}
	return prefix + "├─"
}

func (m Model) commandCell(r process.Record, c column, st lipgloss.Style, plain bool) string {
	s := m.scheme
	prefix := ""
	if m.state.Tree {
		prefix = treePrefix(r)
		if m.state.IsCollapsed(r.PID) {
			prefix += "+"
		}
	}
	text := util.Truncate(prefix+m.commandText(r), c.width)
	rest := pad(text, c.width, false)

	if plain {
		return st.Render(rest)
	}
	if r.IsThread && m.settings.HighlightThreads {
		return st.Foreground(s.Thread).Render(rest)
	}
	cmd := st.Foreground(s.Command)
	if !m.settings.HighlightBaseName {
		return cmd.Render(rest)
	}
	i := strings.Index(rest, r.Name)
	if i < 0 || r.Name == "" {
		return cmd.Render(rest)
	}
	j := i + len(r.Name)
	return cmd.Render(rest[:i]) + st.Foreground(s.BaseName).Bold(true).Render(rest[i:j]) + cmd.Render(rest[j:])
}

var netColumns = []column{{width: 7}, {width: 16, left: true}, {width: 12}, {width: 12}, {width: 8}}

func (m Model) netLines() []string {
	s := m.scheme
	header := lipgloss.NewStyle().Foreground(s.HeaderFg).Background(s.HeaderBg)
	if s.Reverse {
		header = header.Reverse(true)
	}
	titles := []string{"PID", "Process", "Download", "Upload", "Conns"}
	var t strings.Builder
	for i, c := range netColumns {
		t.WriteString(header.Render(cell(titles[i], c)))
	}
	note := ""
	if m.snap.Instrumentation == netstat.Disabled {
		note = " (connection counts only: run as root for bandwidth)"
	}
	t.WriteString(header.Render(pad(note, max(m.viewWidth()-lipgloss.Width(t.String()), 0), false)))
	lines := []string{t.String()}

	end := min(m.aux.offset+m.visibleRows(), len(m.snap.Bandwidth))
	for i := m.aux.offset; i < end; i++ {
		p := m.snap.Bandwidth[i]
		st := m.auxRowStyle(i)
		vals := []string{fmt.Sprint(p.PID), p.Name, util.FormatBandwidth(p.DownloadRate), util.FormatBandwidth(p.UploadRate), fmt.Sprint(p.Connections)}
		colors := []lipgloss.TerminalColor{s.PID, s.BaseName, bandwidthColor(s, p.DownloadRate), bandwidthColor(s, p.UploadRate), s.Text}
		lines = append(lines, m.auxRow(st, i, vals, colors, netColumns))
	}
	if len(m.snap.Bandwidth) == 0 {
		lines = append(lines, fg(s.Shadow).Render(" no open connections"))
	}
	return lines
}

func bandwidthColor(s Scheme, bps float64) lipgloss.TerminalColor {
	switch {
	case bps >= 10*mib:
		return s.High
	case bps >= mib:
		return s.Medium
	case bps >= 1024:
		return s.Low
	}
	return s.Shadow
}

var gpuColumns = []column{{width: 7}, {width: 16, left: true}, {width: 8}, {width: 14, left: true}, {width: 10}, {width: 10}, {width: 10}}

func (m Model) gpuLines() []string {
	s := m.scheme
	header := lipgloss.NewStyle().Foreground(s.HeaderFg).Background(s.HeaderBg)
	if s.Reverse {
		header = header.Reverse(true)
	}
	titles := []string{"PID", "Process", "GPU%", "Engine", "Ded.Mem", "Shr.Mem", "Total"}
	var t strings.Builder
	for i, c := range gpuColumns {
		t.WriteString(header.Render(cell(titles[i], c)))
	}
	t.WriteString(header.Render(pad("", max(m.viewWidth()-lipgloss.Width(t.String()), 0), false)))
	lines := []string{t.String()}

	if !m.snap.GPUAvailable {
		return append(lines, fg(s.Shadow).Render(" GPU counters are not available on this system"))
	}

	end := min(m.aux.offset+m.visibleRows(), len(m.snap.GPU))
	for i := m.aux.offset; i < end; i++ {
		g := m.snap.GPU[i]
		engine := g.Engine
		if engine == "" {
			engine = "---"
		}
		vals := []string{
			fmt.Sprint(g.PID), m.snap.ProcessName(g.PID), fmt.Sprintf("%.1f%%", g.Usage), engine,
			util.FormatBytes(g.DedicatedMemory), util.FormatBytes(g.SharedMemory),
			util.FormatBytes(g.DedicatedMemory + g.SharedMemory),
		}
		colors := []lipgloss.TerminalColor{s.PID, s.BaseName, s.LoadColor(g.Usage), s.Value, s.Text, s.Text, s.Text}
		lines = append(lines, m.auxRow(m.auxRowStyle(i), i, vals, colors, gpuColumns))
	}
	if len(m.snap.GPU) == 0 {
		lines = append(lines, fg(s.Shadow).Render(" no processes are using the GPU"))
	}
	return lines
}

func (m Model) auxRowStyle(i int) lipgloss.Style {
	s := m.scheme
	st := lipgloss.NewStyle()
	if i == m.aux.selected {
		st = st.Foreground(s.SelectedFg).Background(s.SelectedBg)
		if s.Reverse {
			st = st.Reverse(true)
		}
	}
	return st
}

func (m Model) auxRow(st lipgloss.Style, i int, vals []string, colors []lipgloss.TerminalColor, cols []column) string {
	var b strings.Builder
	for j, c := range cols {
		cs := st
		if i != m.aux.selected {
			cs = cs.Foreground(colors[j])
		}
		b.WriteString(cs.Render(cell(vals[j], c)))
	}
	return b.String()
}

type fkey struct{ key, label string }

var normalKeys = []fkey{
	{"F1", "Help"}, {"F2", "Setup"}, {"F3", "Search"}, {"F4", "Filter"}, {"F5", "Tree"}, {"F6", "SortBy"},
	{"F7", "Nice -"}, {"F8", "Nice +"}, {"F9", "Kill"}, {"F10", "Quit"},
}

// renderFooter renders the function key legend, the active prompt, or the
// last status message.
func (m Model) renderFooter() string {
	s := m.scheme
	label := fg(s.Prompt).Bold(true)
	switch m.mode {
	case ModeSearch:
		line := label.Render("Search: ") + m.input.View()
		if m.state.SearchNotFound {
			line += fg(s.High).Render("   not found")
		}
		return line
	case ModeFilter:
		return label.Render("Filter: ") + m.input.View()
	}
	if m.message != "" {
		return fg(s.High).Render(m.message)
	}

	keyStyle := lipgloss.NewStyle().Foreground(s.KeyFg).Background(s.KeyBg)
	if s.Reverse {
		keyStyle = keyStyle.Reverse(true)
	}
	labelStyle := fg(s.KeyLabel)
	var b strings.Builder
	for _, k := range normalKeys {
		b.WriteString(keyStyle.Render(k.key))
		b.WriteString(labelStyle.Render(pad(k.label, 7, false)))
	}
	return b.String()
}

// renderMenu renders the active popup list centered on screen.
func (m Model) renderMenu() string {
	var title string
	var items []string
	switch m.mode {
	case ModeSortSelect:
		title = "Sort by"
		for _, f := range procview.Fields() {
			items = append(items, f.String())
		}
	case ModeKill:
		title = fmt.Sprintf("Send signal to %d %s", len(m.state.Targets()),
			util.Pluralize(len(m.state.Targets()), "process", "processes"))
		for _, sig := range process.Signals {
			items = append(items, fmt.Sprintf("%2d %-8s %s", int(sig.Number), sig.Name, sig.Label))
		}
	case ModeUserFilter:
		title = "Show processes of"
		items = append(items, "All users")
		items = append(items, m.state.Users()...)
	case ModeAffinity:
		title = fmt.Sprintf("CPU affinity of %d (space toggles, a all)", m.affinityPID)
		for i, on := range m.affinity {
			mark := "[ ]"
			if on {
				mark = "[x]"
			}
			items = append(items, fmt.Sprintf("%s CPU %d", mark, i))
		}
	case ModeIOPriority:
		title = fmt.Sprintf("I/O priority of %d %s", len(m.state.Targets()),
			util.Pluralize(len(m.state.Targets()), "process", "processes"))
		for _, p := range process.IOPriorities {
			items = append(items, p.Label)
		}
	}
	return m.renderPopup(title, items, m.menu)
}

func (m Model) renderPopup(title string, items []string, cursor int) string {
	s := m.scheme
	height := max(m.height-6, 5)
	start := 0
	if cursor >= height {
		start = cursor - height + 1
	}
	end := min(start+height, len(items))

	selected := lipgloss.NewStyle().Foreground(s.TabActiveFg).Background(s.TabActiveBg)
	if s.Reverse {
		selected = selected.Reverse(true)
	}
	lines := []string{fg(s.Prompt).Bold(true).Render(title), ""}
	for i := start; i < end; i++ {
		if i == cursor {
			lines = append(lines, selected.Render(" "+items[i]+" "))
		} else {
			lines = append(lines, fg(s.Text).Render(" "+items[i]+" "))
		}
	}
	lines = append(lines, "", fg(s.Shadow).Render("Enter select · Esc cancel"))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.Border).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
	return lipgloss.Place(m.viewWidth(), max(m.height, lipgloss.Height(box)), lipgloss.Center, lipgloss.Center, box)
}
