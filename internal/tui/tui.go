// Package tui provides a Bubble Tea terminal user interface for webfont-dl.
package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jrnewell/goog-webfont-dl/internal/config"
	"github.com/jrnewell/goog-webfont-dl/internal/download"
	ioutils "github.com/jrnewell/goog-webfont-dl/internal/io"
	"github.com/jrnewell/goog-webfont-dl/internal/model"
)

var errCancelled = errors.New("cancelled by user")

type phase int

const (
	phaseEditing phase = iota
	phaseFetching
	phaseDownloading
	phaseDone
	phaseFailed
)

const journalSize = 10

// formatKeys maps option keys to formats, in display order.
var formatKeys = []struct {
	key    string
	format model.Format
}{
	{"t", model.FormatTTF},
	{"e", model.FormatEOT},
	{"w", model.FormatWOFF},
	{"W", model.FormatWOFF2},
	{"s", model.FormatSVG},
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	phase    phase
	input    textinput.Model
	spinner  spinner.Model
	bar      progress.Model
	settings *config.Settings
	log      *zap.Logger

	formats map[model.Format]bool
	verbose bool

	// current run
	ctx     context.Context
	cancel  context.CancelFunc
	opts    config.Options
	out     string
	manager *download.Manager
	events  chan download.ProgressEvent
	journal []download.ProgressEvent
	faces   []string
	err     error

	filesTotal int32
	filesDone  int32
	received   int64
}

// NewModel creates a new TUI model. Run options start with woff2 and woff
// selected.
func NewModel(settings *config.Settings, log *zap.Logger) Model {
	if log == nil {
		log = zap.NewNop()
	}

	in := textinput.New()
	in.Placeholder = "Open Sans"
	in.CharLimit = 200
	in.Width = 48
	in.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.MiniDot))
	sp.Style = headerStyle

	ctx, cancel := context.WithCancel(context.Background())
	return Model{
		phase:    phaseEditing,
		input:    in,
		spinner:  sp,
		bar:      progress.New(progress.WithGradient(string(colorAccent), string(colorGood)), progress.WithWidth(48)),
		settings: settings,
		log:      log.Named("tui"),
		formats:  map[model.Format]bool{model.FormatWOFF2: true, model.FormatWOFF: true},
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

type (
	eventMsg  download.ProgressEvent
	mergedMsg struct {
		manager *download.Manager
		faces   []string
		err     error
	}
	finishedMsg struct{ err error }
	pollMsg     struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bar.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case eventMsg:
		if msg.Level != download.LevelVerbose || m.verbose {
			m.journal = append(m.journal, download.ProgressEvent(msg))
			if n := len(m.journal); n > journalSize {
				m.journal = m.journal[n-journalSize:]
			}
		}
		return m, m.nextEvent()

	case mergedMsg:
		if m.phase != phaseFetching {
			return m, nil
		}
		if msg.err != nil {
			return m.fail(msg.err), nil
		}
		m.manager, m.faces = msg.manager, msg.faces
		m.syncProgress()
		m.phase = phaseDownloading
		return m, tea.Batch(m.download(), poll())

	case finishedMsg:
		if m.phase != phaseDownloading {
			return m, nil
		}
		m.syncProgress()
		switch {
		case m.ctx.Err() != nil:
			return m.fail(errCancelled), nil
		case msg.err != nil:
			return m.fail(msg.err), nil
		}
		m.phase = phaseDone
		return m, nil

	case pollMsg:
		if m.phase != phaseDownloading {
			return m, nil
		}
		m.syncProgress()
		return m, tea.Batch(m.bar.SetPercent(m.fraction()), poll())

	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}

	if m.phase == phaseEditing && m.input.Focused() {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		m.cancel()
		return m, tea.Quit
	}

	switch m.phase {
	case phaseFetching, phaseDownloading:
		if key == "esc" {
			m.cancel()
			return m.fail(errCancelled), nil
		}
		return m, nil

	case phaseDone, phaseFailed:
		switch key {
		case "q", "esc":
			return m, tea.Quit
		case "r":
			return m.reset()
		}
		return m, nil
	}

	switch key {
	case "esc":
		return m, tea.Quit
	case "tab":
		if m.input.Focused() {
			m.input.Blur()
			return m, nil
		}
		return m, m.input.Focus()
	case "enter":
		if strings.TrimSpace(m.input.Value()) == "" {
			return m, nil
		}
		return m.start()
	}

	if !m.input.Focused() {
		m.toggle(key)
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) toggle(key string) {
	if key == "v" {
		m.verbose = !m.verbose
		return
	}
	for _, fk := range formatKeys {
		if fk.key == key {
			m.formats[fk.format] = !m.formats[fk.format]
		}
	}
}

func (m Model) start() (tea.Model, tea.Cmd) {
	m.opts = m.runOptions()
	m.out = m.opts.Out
	m.events = make(chan download.ProgressEvent, 64)
	m.journal = nil
	m.phase = phaseFetching
	return m, tea.Batch(m.merge(), m.nextEvent(), m.spinner.Tick)
}

func (m Model) fail(err error) Model {
	m.phase = phaseFailed
	m.err = err
	m.log.Warn("Run failed", zap.String("font", m.opts.Font), zap.Error(err))
	return m
}

func (m Model) reset() (tea.Model, tea.Cmd) {
	m.cancel()
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.phase = phaseEditing
	m.manager, m.events = nil, nil
	m.journal, m.faces, m.err = nil, nil, nil
	m.filesTotal, m.filesDone, m.received = 0, 0, 0
	m.input.SetValue("")
	return m, m.input.Focus()
}

func (m *Model) syncProgress() {
	if m.manager != nil {
		m.received, m.filesDone, m.filesTotal = m.manager.GetProgress()
	}
}

func (m Model) fraction() float64 {
	if m.filesTotal == 0 {
		return 0
	}
	return float64(m.filesDone) / float64(m.filesTotal)
}

// runOptions builds run options from the input and toggles.
func (m Model) runOptions() config.Options {
	font := strings.TrimSpace(m.input.Value())
	opts := config.Options{
		Font:    font,
		Out:     ioutils.SanitizeFileName(strings.ReplaceAll(font, "+", " ")) + ".css",
		Verbose: m.verbose,
	}
	for _, fk := range formatKeys {
		if m.formats[fk.format] {
			opts.Formats = append(opts.Formats, fk.format.String())
		}
	}
	return opts
}

func poll() tea.Cmd {
	return tea.Tick(150*time.Millisecond, func(time.Time) tea.Msg { return pollMsg{} })
}

// nextEvent delivers the next progress event of the current run.
func (m Model) nextEvent() tea.Cmd {
	events, ctx := m.events, m.ctx
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case ev := <-events:
			return eventMsg(ev)
		case <-ctx.Done():
			return nil
		}
	}
}

// merge fetches the stylesheets of every selected format and merges them.
func (m Model) merge() tea.Cmd {
	ctx, events, opts := m.ctx, m.events, m.opts
	settings, log := m.settings, m.log
	return func() tea.Msg {
		manager := download.NewManager(settings, log, func(ev download.ProgressEvent) {
			select {
			case events <- ev:
			case <-ctx.Done():
			}
		})
		if err := manager.Initialize(ctx, &opts); err != nil {
			return mergedMsg{err: err}
		}

		faces := make([]string, 0, manager.Tree().Len())
		for key := range manager.Tree().Faces() {
			faces = append(faces, key.String())
		}
		return mergedMsg{manager: manager, faces: faces}
	}
}

// download fetches the font files and writes the stylesheet.
func (m Model) download() tea.Cmd {
	ctx, manager := m.ctx, m.manager
	return func() tea.Msg {
		if err := manager.StartDownloads(ctx); err != nil {
			return finishedMsg{err: err}
		}
		_, err := manager.WriteStylesheet()
		return finishedMsg{err: err}
	}
}

// Run starts the TUI application.
func Run(settings *config.Settings, log *zap.Logger) error {
	_, err := tea.NewProgram(NewModel(settings, log), tea.WithAltScreen()).Run()
	return err
}
