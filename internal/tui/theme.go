package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jrnewell/goog-webfont-dl/internal/download"
)

const (
	colorAccent = lipgloss.Color("#7AA2F7")
	colorHot    = lipgloss.Color("#F7768E")
	colorGood   = lipgloss.Color("#9ECE6A")
	colorWarn   = lipgloss.Color("#E0AF68")
	colorPlain  = lipgloss.Color("#C0CAF5")
	colorMuted  = lipgloss.Color("#565F89")
	colorFace   = lipgloss.Color("#BB9AF7")
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	labelStyle  = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	faceStyle   = lipgloss.NewStyle().Foreground(colorFace).PaddingLeft(2)
	failStyle   = lipgloss.NewStyle().Foreground(colorHot).Bold(true)
	statsStyle  = lipgloss.NewStyle().Foreground(colorPlain)
	summaryBox  = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(colorGood).
			Padding(0, 2)
)

type logStyle struct {
	glyph string
	style lipgloss.Style
}

var logStyles = map[download.ProgressLevel]logStyle{
	download.LevelError:   {"x", lipgloss.NewStyle().Foreground(colorHot)},
	download.LevelWarning: {"!", lipgloss.NewStyle().Foreground(colorWarn)},
	download.LevelSuccess: {"+", lipgloss.NewStyle().Foreground(colorGood)},
	download.LevelInfo:    {">", lipgloss.NewStyle().Foreground(colorPlain)},
	download.LevelVerbose: {"-", mutedStyle},
}
