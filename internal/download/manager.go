package download

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jrnewell/goog-webfont-dl/internal/config"
	"github.com/jrnewell/goog-webfont-dl/internal/http"
	ioutils "github.com/jrnewell/goog-webfont-dl/internal/io"
	"github.com/jrnewell/goog-webfont-dl/internal/merge"
	"github.com/jrnewell/goog-webfont-dl/internal/model"
	"github.com/jrnewell/goog-webfont-dl/internal/stylesheet"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a download progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// Result is the outcome of a run.
type Result struct {
	// CSS is the generated stylesheet. Empty for dry runs.
	CSS string

	Tree  *model.Tree
	Tasks []model.DownloadTask

	// Specimen is the path of the preview image, empty when none was made.
	Specimen string
}

// Manager runs one font download: fetch every format, merge, download the
// font files and write the stylesheet.
type Manager struct {
	settings   *config.Settings
	opts       *config.Options
	base       *zap.Logger
	log        *zap.Logger
	httpClient *http.Client
	parser     *stylesheet.Parser
	stdout     io.Writer

	tree  *model.Tree
	tasks []model.DownloadTask

	receivedBytes   int64
	totalFiles      int32
	downloadedFiles int32

	onProgress func(ProgressEvent)
}

// NewManager creates a new download Manager.
func NewManager(settings *config.Settings, log *zap.Logger, onProgress func(ProgressEvent)) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		settings:   settings,
		base:       log,
		log:        log.Named("download"),
		parser:     stylesheet.NewParser(log),
		stdout:     os.Stdout,
		onProgress: onProgress,
	}
}

// SetStdout redirects stylesheets written to "-".
func (m *Manager) SetStdout(w io.Writer) {
	m.stdout = w
}

// Run performs a complete download and returns its result. The first
// failure aborts the run before any stylesheet is written.
func (m *Manager) Run(ctx context.Context, opts *config.Options) (*Result, error) {
	if err := m.Initialize(ctx, opts); err != nil {
		return nil, err
	}

	res := &Result{Tree: m.tree, Tasks: m.tasks}
	if opts.DryRun {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Dry run: %d files would be downloaded", len(m.tasks)), Level: LevelInfo})
		return res, nil
	}

	if err := m.StartDownloads(ctx); err != nil {
		return nil, err
	}

	css, err := m.WriteStylesheet()
	if err != nil {
		return nil, err
	}
	res.CSS = css

	if opts.Preview || m.settings.Download.Preview.Enable {
		res.Specimen = m.Preview(ctx)
	}
	return res, nil
}

// Initialize validates opts, fetches the stylesheet for every requested
// format concurrently and merges the results in format order.
func (m *Manager) Initialize(ctx context.Context, opts *config.Options) error {
	if err := opts.Normalize(); err != nil {
		return err
	}
	formats, err := opts.ParsedFormats()
	if err != nil {
		return err
	}
	m.opts = opts

	proxy := m.settings.Fetch.Proxy
	if opts.Proxy != "" {
		proxy = opts.Proxy
	}
	m.httpClient, err = http.NewClient(http.Options{
		Timeout:   m.settings.Fetch.Timeout,
		Proxy:     proxy,
		UserAgent: m.settings.Download.UserAgent,
	}, m.base)
	if err != nil {
		return model.NewError(model.KindValidation, "proxy", err)
	}

	requestURL := opts.RequestURL(m.settings.Fetch.Endpoint)
	m.log.Debug("Stylesheet request", zap.String("url", requestURL), zap.Strings("formats", opts.Formats))

	results := make([][]stylesheet.Face, len(formats))
	g, gctx := errgroup.WithContext(ctx)
	for i, format := range formats {
		g.Go(func() error {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Fetching %s stylesheet", format), Level: LevelVerbose})

			css, err := m.httpClient.GetStylesheet(gctx, requestURL, m.settings.Fetch.UserAgents.For(format))
			if err != nil {
				return model.NewError(model.KindNetwork, "fetch "+format.String(), err)
			}
			faces, err := m.parser.Parse(format, opts.Font, []byte(css))
			if err != nil {
				return err
			}
			results[i] = faces
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	eng := merge.NewEngine(opts.Prefix, m.base)
	for i, format := range formats {
		for _, f := range results[i] {
			eng.Merge(format, f.Key, f.PartialFace)
		}
		m.progress(ProgressEvent{Message: fmt.Sprintf("Found %d %s faces", len(results[i]), format), Level: LevelVerbose})
	}

	m.tree = eng.Tree()
	m.tasks = eng.Tasks()
	atomic.StoreInt32(&m.totalFiles, int32(len(m.tasks)))

	m.progress(ProgressEvent{
		Message: fmt.Sprintf("Found %d faces of %s in %d subsets", m.tree.Len(), opts.Font, len(m.tree.Subsets())),
		Level:   LevelInfo,
	})
	return nil
}

// StartDownloads downloads every collected font file into the destination
// directory. The first failure cancels the remaining downloads.
func (m *Manager) StartDownloads(ctx context.Context) error {
	if err := ioutils.EnsureDir(m.opts.Destination); err != nil {
		return model.NewError(model.KindDownload, m.opts.Destination, err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.settings.Download.MaxConcurrent)

	for _, task := range m.tasks {
		g.Go(func() error {
			return m.downloadFont(ctx, task)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	m.progress(ProgressEvent{Message: fmt.Sprintf("Downloaded %d files to %s", len(m.tasks), m.opts.Destination), Level: LevelSuccess})
	return nil
}

func (m *Manager) downloadFont(ctx context.Context, task model.DownloadTask) error {
	dest, err := ioutils.ResolveInDir(m.opts.Destination, task.Name)
	if err != nil {
		return model.NewError(model.KindDownload, task.Name, err)
	}

	var prev int64
	err = m.httpClient.DownloadFile(ctx, task.URL, dest, func(written, total int64) {
		atomic.AddInt64(&m.receivedBytes, written-prev)
		prev = written
	})
	if err != nil {
		return model.NewError(model.KindDownload, task.Name, err)
	}

	atomic.AddInt32(&m.downloadedFiles, 1)
	m.progress(ProgressEvent{Message: fmt.Sprintf("Downloaded: %s", task.Name), Level: LevelVerbose})
	return nil
}

// WriteStylesheet generates the stylesheet and delivers it to the configured
// output. It returns the stylesheet text.
func (m *Manager) WriteStylesheet() (string, error) {
	sink := ioutils.NewSink(m.opts.Out, m.stdout)
	if err := stylesheet.Generate(sink, m.tree); err != nil {
		return "", model.NewError(model.KindWrite, "generate", err)
	}
	if err := sink.Commit(); err != nil {
		return "", err
	}

	if m.opts.Verbose && !sink.InMemory() && sink.Destination() != ioutils.Stdout {
		m.progress(ProgressEvent{Message: fmt.Sprintf("CSS output was successfully written to %s", sink.Destination()), Level: LevelSuccess})
	}
	return sink.String(), nil
}

// Preview renders the downloaded TrueType files into a specimen sheet in
// the destination directory and returns its path. Failures are reported as
// warnings and yield an empty path.
func (m *Manager) Preview(ctx context.Context) string {
	var specimens []ioutils.Specimen
	seen := make(map[string]bool)
	for _, task := range m.tasks {
		if seen[task.Name] {
			continue
		}
		seen[task.Name] = true

		data, err := os.ReadFile(filepath.Join(m.opts.Destination, task.Name))
		if err != nil || !ioutils.IsTrueType(data) {
			continue
		}
		specimens = append(specimens, ioutils.Specimen{Label: task.Name, Data: data})
	}
	if len(specimens) == 0 {
		m.progress(ProgressEvent{Message: "No TrueType fonts to preview, include the ttf format", Level: LevelWarning})
		return ""
	}

	svc := ioutils.NewPreviewService()
	svc.Size = m.settings.Download.Preview.Size
	svc.Width = m.settings.Download.Preview.Width
	svc.Text = m.settings.Download.Preview.Text

	img, err := svc.RenderSpecimen(ctx, specimens)
	if err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Unable to render preview: %v", err), Level: LevelWarning})
		return ""
	}

	dest := filepath.Join(m.opts.Destination, ioutils.SanitizeFileName(m.opts.Font)+"-specimen.png")
	if err := ioutils.WriteFileAtomic(dest, img); err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Unable to save preview: %v", err), Level: LevelWarning})
		return ""
	}
	m.progress(ProgressEvent{Message: fmt.Sprintf("Preview saved to %s", dest), Level: LevelSuccess})
	return dest
}

// Tree returns the merged faces after Initialize.
func (m *Manager) Tree() *model.Tree {
	return m.tree
}

// Tasks returns the download tasks after Initialize.
func (m *Manager) Tasks() []model.DownloadTask {
	return m.tasks
}

// GetProgress returns current download progress.
func (m *Manager) GetProgress() (received int64, filesReceived, filesTotal int32) {
	return atomic.LoadInt64(&m.receivedBytes), atomic.LoadInt32(&m.downloadedFiles), atomic.LoadInt32(&m.totalFiles)
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}

// Run downloads a font with a fresh Manager. With an empty opts.Out the
// stylesheet is only returned in the result.
func Run(ctx context.Context, settings *config.Settings, opts config.Options, log *zap.Logger) (*Result, error) {
	return NewManager(settings, log, nil).Run(ctx, &opts)
}
