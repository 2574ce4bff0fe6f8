package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Scheme is a dashboard palette. Only its index in Schemes is persisted.
type Scheme struct {
	Name        string
	Description string

	Background lipgloss.TerminalColor

	// Header meters
	CPUBar   lipgloss.TerminalColor
	MemUsed  lipgloss.TerminalColor
	MemCache lipgloss.TerminalColor
	Swap     lipgloss.TerminalColor
	BarTrack lipgloss.TerminalColor
	Label    lipgloss.TerminalColor
	Value    lipgloss.TerminalColor

	// Table header
	HeaderFg lipgloss.TerminalColor
	HeaderBg lipgloss.TerminalColor
	SortFg   lipgloss.TerminalColor
	SortBg   lipgloss.TerminalColor

	// Table rows
	Text       lipgloss.TerminalColor
	Shadow     lipgloss.TerminalColor
	SelectedFg lipgloss.TerminalColor
	SelectedBg lipgloss.TerminalColor
	PID        lipgloss.TerminalColor
	Tagged     lipgloss.TerminalColor
	Command    lipgloss.TerminalColor
	BaseName   lipgloss.TerminalColor
	Thread     lipgloss.TerminalColor
	High       lipgloss.TerminalColor
	Medium     lipgloss.TerminalColor
	Low        lipgloss.TerminalColor
	Zombie     lipgloss.TerminalColor

	// Footer, tabs and popups
	KeyFg       lipgloss.TerminalColor
	KeyBg       lipgloss.TerminalColor
	KeyLabel    lipgloss.TerminalColor
	TabActiveFg lipgloss.TerminalColor
	TabActiveBg lipgloss.TerminalColor
	TabInactive lipgloss.TerminalColor
	Border      lipgloss.TerminalColor
	Prompt      lipgloss.TerminalColor

	// Reverse marks the selected row with reverse video instead of colors.
	Reverse bool
}

// Load thresholds for CPU and GPU cells.
const (
	MediumThreshold = 50.0
	HighThreshold   = 90.0
)

type hue = lipgloss.Color

var none = lipgloss.NoColor{}

func defaultScheme() Scheme {
	return Scheme{
		Name: "Default", Description: "Classic dark theme",
		Background: none,
		CPUBar:     hue("2"), MemUsed: hue("2"), MemCache: hue("3"), Swap: hue("1"),
		BarTrack: hue("8"), Label: hue("7"), Value: hue("6"),
		HeaderFg: hue("0"), HeaderBg: hue("6"), SortFg: hue("0"), SortBg: hue("2"),
		Text: hue("7"), Shadow: hue("8"), SelectedFg: hue("15"), SelectedBg: hue("236"),
		PID: hue("2"), Tagged: hue("3"), Command: hue("7"), BaseName: hue("2"), Thread: hue("4"),
		High: hue("1"), Medium: hue("3"), Low: hue("2"), Zombie: hue("5"),
		KeyFg: hue("0"), KeyBg: hue("6"), KeyLabel: hue("252"),
		TabActiveFg: hue("0"), TabActiveBg: hue("6"), TabInactive: hue("8"),
		Border: hue("6"), Prompt: hue("6"),
	}
}

func monochromeScheme() Scheme {
	return Scheme{
		Name: "Monochrome", Description: "No colors",
		Background: none,
		CPUBar:     none, MemUsed: none, MemCache: none, Swap: none,
		BarTrack: none, Label: none, Value: none,
		HeaderFg: none, HeaderBg: none, SortFg: none, SortBg: none,
		Text: none, Shadow: none, SelectedFg: none, SelectedBg: none,
		PID: none, Tagged: none, Command: none, BaseName: none, Thread: none,
		High: none, Medium: none, Low: none, Zombie: none,
		KeyFg: none, KeyBg: none, KeyLabel: none,
		TabActiveFg: none, TabActiveBg: none, TabInactive: none,
		Border: none, Prompt: none,
		Reverse: true,
	}
}

func blackNightScheme() Scheme {
	s := defaultScheme()
	s.Name, s.Description = "Black Night", "Dark theme for dark terminals"
	s.Background = hue("0")
	s.BarTrack = hue("238")
	s.HeaderFg, s.HeaderBg = hue("15"), hue("238")
	s.Text, s.Command = hue("250"), hue("250")
	s.SelectedBg = hue("238")
	s.TabActiveFg, s.TabActiveBg = hue("15"), hue("238")
	return s
}

func lightTerminalScheme() Scheme {
	s := defaultScheme()
	s.Name, s.Description = "Light Terminal", "For light terminal backgrounds"
	s.Background = hue("15")
	s.BarTrack, s.Label, s.Value = hue("252"), hue("0"), hue("4")
	s.HeaderFg, s.HeaderBg = hue("15"), hue("4")
	s.Text, s.Command, s.Shadow = hue("0"), hue("0"), hue("244")
	s.SelectedFg, s.SelectedBg = hue("0"), hue("153")
	s.PID, s.BaseName = hue("4"), hue("4")
	s.KeyLabel = hue("0")
	s.TabActiveFg, s.TabActiveBg = hue("15"), hue("4")
	s.Border, s.Prompt = hue("4"), hue("4")
	return s
}

func mcScheme() Scheme {
	s := defaultScheme()
	s.Name, s.Description = "MC", "Midnight Commander style"
	s.Background = hue("4")
	s.BarTrack = hue("17")
	s.HeaderFg, s.HeaderBg = hue("0"), hue("6")
	s.SortFg, s.SortBg = hue("0"), hue("3")
	s.Text, s.Command = hue("15"), hue("15")
	s.SelectedFg, s.SelectedBg = hue("0"), hue("6")
	s.PID, s.BaseName = hue("14"), hue("11")
	s.Border, s.Prompt = hue("11"), hue("11")
	return s
}

func blackOnWhiteScheme() Scheme {
	s := lightTerminalScheme()
	s.Name, s.Description = "Black on White", "Black text on white background"
	s.CPUBar, s.MemUsed = hue("22"), hue("22")
	s.HeaderFg, s.HeaderBg = hue("0"), hue("250")
	s.SortFg, s.SortBg = hue("15"), hue("22")
	s.PID, s.BaseName, s.Low = hue("22"), hue("22"), hue("22")
	s.SelectedBg = hue("252")
	s.KeyFg, s.KeyBg = hue("15"), hue("0")
	s.TabActiveFg, s.TabActiveBg = hue("15"), hue("0")
	s.Border, s.Prompt = hue("0"), hue("0")
	return s
}

func darkVividScheme() Scheme {
	s := defaultScheme()
	s.Name, s.Description = "Dark Vivid", "Vivid dark colors with contrast"
	s.Background = hue("0")
	s.CPUBar, s.MemUsed, s.Low, s.PID, s.BaseName = hue("46"), hue("46"), hue("46"), hue("46"), hue("46")
	s.MemCache, s.Medium = hue("226"), hue("226")
	s.Swap, s.High = hue("196"), hue("196")
	s.BarTrack = hue("235")
	s.HeaderFg, s.HeaderBg = hue("15"), hue("236")
	s.SortFg, s.SortBg = hue("0"), hue("46")
	s.Text, s.Command = hue("252"), hue("252")
	s.Zombie, s.Thread = hue("201"), hue("39")
	s.KeyBg, s.TabActiveBg, s.Border, s.Prompt = hue("51"), hue("51"), hue("51"), hue("51")
	return s
}

// Schemes lists the built-in palettes in persisted index order.
var Schemes = []Scheme{
	defaultScheme(),
	monochromeScheme(),
	blackNightScheme(),
	lightTerminalScheme(),
	mcScheme(),
	blackOnWhiteScheme(),
	darkVividScheme(),
}

// SchemeAt returns the palette for a persisted index. Unknown indices
// select Default.
func SchemeAt(i int) Scheme {
	if i < 0 || i >= len(Schemes) {
		return Schemes[0]
	}
	return Schemes[i]
}

// LoadColor picks the High, Medium or Low color for a percentage.
func (s Scheme) LoadColor(percent float64) lipgloss.TerminalColor {
	switch {
	case percent > HighThreshold:
		return s.High
	case percent > MediumThreshold:
		return s.Medium
	default:
		return s.Low
	}
}

// fg returns a style with foreground col.
func fg(col lipgloss.TerminalColor) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(col)
}

// Meter renders an htop style bar: label[|||||      52.3%]. Segments are
// filled in order, each with its own color; values are percentages of the
// bar and are clamped to what is left.
func (s Scheme) Meter(label string, width int, text string, segments ...MeterSegment) string {
	inner := width - lipgloss.Width(label) - 2
	if inner < 1 {
		inner = 1
	}

	var b strings.Builder
	b.WriteString(fg(s.Label).Bold(true).Render(label))
	b.WriteString(fg(s.Label).Bold(true).Render("["))

	used := 0
	for _, seg := range segments {
		pct := min(max(seg.Percent, 0), 100)
		n := min(int(pct/100*float64(inner)+0.5), inner-used)
		if n <= 0 {
			continue
		}
		b.WriteString(fg(seg.Color).Render(strings.Repeat("|", n)))
		used += n
	}

	text = truncateLeft(text, inner-used)
	gap := inner - used - lipgloss.Width(text)
	b.WriteString(strings.Repeat(" ", max(gap, 0)))
	b.WriteString(fg(s.BarTrack).Render(text))
	b.WriteString(fg(s.Label).Bold(true).Render("]"))
	return b.String()
}

// MeterSegment is one colored run of a Meter.
type MeterSegment struct {
	Percent float64
	Color   lipgloss.TerminalColor
}

func truncateLeft(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}

// percentText formats a meter caption.
func percentText(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}
