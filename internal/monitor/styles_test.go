package monitor

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestSchemes(t *testing.T) {
	names := make([]string, 0, len(Schemes))
	for _, s := range Schemes {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{
		"Default", "Monochrome", "Black Night", "Light Terminal", "MC", "Black on White", "Dark Vivid",
	}, names)
	assert.True(t, Schemes[1].Reverse, "monochrome marks the selection with reverse video")
}

func TestSchemeAt(t *testing.T) {
	tests := []struct {
		index  int
		expect string
	}{
		{0, "Default"},
		{4, "MC"},
		{6, "Dark Vivid"},
		{7, "Default"},
		{42, "Default"},
		{-1, "Default"},
	}
	for _, tt := range tests {
		t.Run(tt.expect, func(t *testing.T) {
			assert.Equal(t, tt.expect, SchemeAt(tt.index).Name)
		})
	}
}

func TestScheme_LoadColor(t *testing.T) {
	s := SchemeAt(0)
	tests := []struct {
		name    string
		percent float64
		expect  lipgloss.TerminalColor
	}{
		{"idle", 0, s.Low},
		{"at medium threshold", 50, s.Low},
		{"above medium", 50.1, s.Medium},
		{"at high threshold", 90, s.Medium},
		{"above high", 95, s.High},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, s.LoadColor(tt.percent))
		})
	}
}

func TestScheme_Meter(t *testing.T) {
	s := SchemeAt(0)

	tests := []struct {
		name     string
		segments []MeterSegment
		text     string
		expect   string
	}{
		{"half", []MeterSegment{{Percent: 50, Color: s.CPUBar}}, "50.0%", "0 [||||||||   50.0%]"},
		{"empty", []MeterSegment{{Percent: 0, Color: s.CPUBar}}, "0.0%", "0 [            0.0%]"},
		{"segments stack", []MeterSegment{{Percent: 25, Color: s.MemUsed}, {Percent: 25, Color: s.MemCache}}, "", "0 [||||||||        ]"},
		{"overflow clamps", []MeterSegment{{Percent: 150, Color: s.CPUBar}}, "100.0%", "0 [||||||||||||||||]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Meter("0 ", 20, tt.text, tt.segments...)
			assert.Equal(t, 20, lipgloss.Width(got))
			assert.Equal(t, tt.expect, stripANSI(got))
		})
	}
}

func TestTruncateLeft(t *testing.T) {
	assert.Equal(t, "", truncateLeft("abc", 0))
	assert.Equal(t, "abc", truncateLeft("abc", 5))
	assert.Equal(t, "bc", truncateLeft("abc", 2))
}
