package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the UI.
func (m Model) View() string {
	var body string
	switch m.phase {
	case phaseEditing:
		body = m.editingView()
	case phaseFetching:
		body = lipgloss.JoinVertical(lipgloss.Left,
			m.spinner.View()+" "+labelStyle.Render("Fetching stylesheets for "+m.opts.Font),
			"",
			m.journalView(),
		)
	case phaseDownloading:
		body = m.downloadingView()
	case phaseDone:
		body = summaryBox.Render(fmt.Sprintf("Done\n\nFaces:      %d\nFiles:      %d\nReceived:   %s\nStylesheet: %s",
			len(m.faces), m.filesDone, kib(m.received), m.out))
	case phaseFailed:
		body = failStyle.Render("Failed: ") + fmt.Sprint(m.err)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Render("webfont-dl"),
		mutedStyle.Render("local copies of hosted webfonts"),
		"",
		body,
		"",
		mutedStyle.Render(m.keyHelp()),
	)
}

func (m Model) editingView() string {
	lines := []string{
		labelStyle.Render("Font family"),
		m.input.View(),
		"",
		labelStyle.Render("Formats"),
	}
	for _, fk := range formatKeys {
		lines = append(lines, fmt.Sprintf("  %s %-5s  %s", checkbox(m.formats[fk.format]), fk.format, mutedStyle.Render(fk.key)))
	}
	lines = append(lines, fmt.Sprintf("  %s %-5s  %s", checkbox(m.verbose), "log", mutedStyle.Render("v")))

	if strings.TrimSpace(m.input.Value()) != "" {
		opts := m.runOptions()
		if err := opts.Normalize(); err == nil {
			lines = append(lines, "", mutedStyle.Render(fmt.Sprintf("fonts to %s/, stylesheet to %s", opts.Destination, opts.Out)))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) downloadingView() string {
	lines := []string{labelStyle.Render(fmt.Sprintf("%d faces", len(m.faces)))}
	const shown = 8
	for i, face := range m.faces {
		if i == shown {
			lines = append(lines, mutedStyle.Render(fmt.Sprintf("  %d more", len(m.faces)-shown)))
			break
		}
		lines = append(lines, faceStyle.Render(face))
	}

	lines = append(lines,
		"",
		m.bar.ViewAs(m.fraction()),
		statsStyle.Render(fmt.Sprintf("%d of %d files, %s", m.filesDone, m.filesTotal, kib(m.received))),
		"",
		m.journalView(),
	)
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) journalView() string {
	lines := make([]string, 0, len(m.journal))
	for _, ev := range m.journal {
		ls, ok := logStyles[ev.Level]
		if !ok {
			ls = logStyles[0]
		}
		lines = append(lines, ls.style.Render(ls.glyph+" "+ev.Message))
	}
	return strings.Join(lines, "\n")
}

func (m Model) keyHelp() string {
	switch m.phase {
	case phaseEditing:
		if m.input.Focused() {
			return "enter start | tab formats | esc quit"
		}
		return "t e w W s formats | v log | tab font | enter start | esc quit"
	case phaseFetching, phaseDownloading:
		return "esc cancel"
	default:
		return "r again | q quit"
	}
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func kib(n int64) string {
	return fmt.Sprintf("%.1f KiB", float64(n)/1024)
}
