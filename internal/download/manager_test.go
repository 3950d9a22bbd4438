package download

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/jrnewell/goog-webfont-dl/internal/config"
	"github.com/jrnewell/goog-webfont-dl/internal/model"
)

const (
	woff2Sheet = `/* latin */
@font-face {
  font-family: 'Open Sans';
  font-style: normal;
  font-weight: 400;
  src: local('Open Sans'), local('OpenSans'), url(%[1]s/s/latin400.woff2) format('woff2');
  unicode-range: U+0000-00FF;
}
`
	eotSheet = `@font-face {
  font-family: 'Open Sans';
  font-style: normal;
  font-weight: 400;
  src: url(%[1]s/s/400.eot);
}
`
	ttfSheet = `@font-face {
  font-family: 'Open Sans';
  font-style: normal;
  font-weight: 400;
  src: local('Open Sans'), local('OpenSans'), url(%[1]s/s/400.ttf) format('truetype');
}
`
)

// provider imitates the stylesheet service: the stylesheet depends on the
// User-Agent and font files are served under /s/.
type provider struct {
	srv *httptest.Server

	mu         sync.Mutex
	failFormat string
	failFonts  bool
	fontAgents []string
}

func newProvider(t *testing.T) *provider {
	t.Helper()
	p := &provider{}
	p.srv = httptest.NewServer(http.HandlerFunc(p.serve))
	t.Cleanup(p.srv.Close)
	return p
}

func (p *provider) serve(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if strings.HasPrefix(r.URL.Path, "/s/") {
		p.fontAgents = append(p.fontAgents, r.Header.Get("User-Agent"))
		if p.failFonts {
			http.NotFound(w, r)
			return
		}
		if strings.HasSuffix(r.URL.Path, ".ttf") {
			w.Write(goregular.TTF)
			return
		}
		fmt.Fprintf(w, "font data for %s", r.URL.Path)
		return
	}

	if r.URL.Query().Get("family") != "Open Sans:400" {
		http.Error(w, "unexpected family", http.StatusBadRequest)
		return
	}

	var format, sheet string
	switch ua := r.Header.Get("User-Agent"); {
	case strings.Contains(ua, "Firefox"):
		format, sheet = "woff2", woff2Sheet
	case strings.Contains(ua, "MSIE 8.0"):
		format, sheet = "eot", eotSheet
	case ua == "node.js":
		format, sheet = "ttf", ttfSheet
	default:
		http.Error(w, "unknown agent", http.StatusBadRequest)
		return
	}
	if format == p.failFormat {
		http.Error(w, "backend error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	fmt.Fprintf(w, sheet, p.srv.URL)
}

func (p *provider) agents() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.fontAgents...)
}

func testSettings(t *testing.T, p *provider) *config.Settings {
	t.Helper()
	s, err := config.DefaultSettings()
	if err != nil {
		t.Fatalf("DefaultSettings() error = %v", err)
	}
	s.Fetch.Endpoint = p.srv.URL + "/css"
	return s
}

func testOptions(dir string) config.Options {
	return config.Options{
		Font:        "Open+Sans",
		Formats:     []string{"woff2", "eot", "ttf"},
		Styles:      "400",
		Prefix:      "fonts",
		Destination: filepath.Join(dir, "fonts"),
	}
}

const wantCSS = `/* latin */
@font-face {
  font-family: 'Open Sans';
  font-style: normal;
  font-weight: 400;
  src: local('Open Sans'), local('OpenSans'), url(fonts/Open-Sans-latin.woff2) format('woff2');
  unicode-range: U+0000-00FF;
}

@font-face {
  font-family: 'Open Sans';
  font-style: normal;
  font-weight: 400;
  src: url(fonts/Open-Sans.eot?#iefix);
  src: local('Open Sans'), local('OpenSans'), url(fonts/Open-Sans.eot) format('embedded-opentype'), url(fonts/Open-Sans.ttf) format('truetype');
}

`

func TestRun_InMemory(t *testing.T) {
	p := newProvider(t)
	dir := t.TempDir()

	res, err := Run(context.Background(), testSettings(t, p), testOptions(dir), nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if diff := cmp.Diff(wantCSS, res.CSS); diff != "" {
		t.Errorf("CSS mismatch (-want +got):\n%s", diff)
	}

	for _, name := range []string{"Open-Sans-latin.woff2", "Open-Sans.eot", "Open-Sans.ttf"} {
		if _, err := os.Stat(filepath.Join(dir, "fonts", name)); err != nil {
			t.Errorf("font %s not downloaded: %v", name, err)
		}
	}

	wantTasks := []model.DownloadTask{
		{URL: p.srv.URL + "/s/latin400.woff2", Name: "Open-Sans-latin.woff2"},
		{URL: p.srv.URL + "/s/400.eot", Name: "Open-Sans.eot"},
		{URL: p.srv.URL + "/s/400.ttf", Name: "Open-Sans.ttf"},
	}
	if diff := cmp.Diff(wantTasks, res.Tasks); diff != "" {
		t.Errorf("Tasks mismatch (-want +got):\n%s", diff)
	}

	for _, ua := range p.agents() {
		if ua != "webfont-dl" {
			t.Errorf("font download User-Agent = %q", ua)
		}
	}
	if res.Specimen != "" {
		t.Errorf("Specimen = %q, want none", res.Specimen)
	}
}

func TestRun_WritesFile(t *testing.T) {
	p := newProvider(t)
	dir := t.TempDir()

	var events []ProgressEvent
	var mu sync.Mutex
	m := NewManager(testSettings(t, p), nil, func(e ProgressEvent) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	})

	opts := testOptions(dir)
	opts.Out = filepath.Join(dir, "css", "open-sans.css")
	opts.Verbose = true
	if _, err := m.Run(context.Background(), &opts); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	data, err := os.ReadFile(opts.Out)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if diff := cmp.Diff(wantCSS, string(data)); diff != "" {
		t.Errorf("CSS file mismatch (-want +got):\n%s", diff)
	}

	received, done, total := m.GetProgress()
	if done != 3 || total != 3 {
		t.Errorf("GetProgress() files = %d/%d, want 3/3", done, total)
	}
	if received <= 0 {
		t.Errorf("GetProgress() received = %d bytes", received)
	}

	var written bool
	for _, e := range events {
		if e.Level == LevelSuccess && strings.Contains(e.Message, "successfully written to "+opts.Out) {
			written = true
		}
	}
	if !written {
		t.Error("missing success event for written stylesheet")
	}
}

func TestRun_QuietHasNoWriteMessage(t *testing.T) {
	p := newProvider(t)
	dir := t.TempDir()

	var events []ProgressEvent
	var mu sync.Mutex
	m := NewManager(testSettings(t, p), nil, func(e ProgressEvent) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	})

	opts := testOptions(dir)
	opts.Out = filepath.Join(dir, "out.css")
	if _, err := m.Run(context.Background(), &opts); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for _, e := range events {
		if strings.Contains(e.Message, "successfully written") {
			t.Errorf("unexpected event %q without verbose", e.Message)
		}
	}
}

func TestRun_Stdout(t *testing.T) {
	p := newProvider(t)
	dir := t.TempDir()

	var out bytes.Buffer
	m := NewManager(testSettings(t, p), nil, nil)
	m.SetStdout(&out)

	opts := testOptions(dir)
	opts.Out = "-"
	if _, err := m.Run(context.Background(), &opts); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if diff := cmp.Diff(wantCSS, out.String()); diff != "" {
		t.Errorf("stdout mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_FormatFailureAbortsEverything(t *testing.T) {
	p := newProvider(t)
	p.failFormat = "eot"
	dir := t.TempDir()

	opts := testOptions(dir)
	opts.Out = filepath.Join(dir, "out.css")

	_, err := Run(context.Background(), testSettings(t, p), opts, nil)
	if !model.IsKind(err, model.KindNetwork) {
		t.Fatalf("Run() error = %v, want network error", err)
	}
	if _, err := os.Stat(opts.Destination); !os.IsNotExist(err) {
		t.Errorf("destination exists after failed fetch: %v", err)
	}
	if _, err := os.Stat(opts.Out); !os.IsNotExist(err) {
		t.Errorf("stylesheet written after failed fetch: %v", err)
	}
	if n := len(p.agents()); n != 0 {
		t.Errorf("%d font downloads attempted", n)
	}
}

func TestRun_DownloadFailureSkipsStylesheet(t *testing.T) {
	p := newProvider(t)
	p.failFonts = true
	dir := t.TempDir()

	opts := testOptions(dir)
	opts.Out = filepath.Join(dir, "out.css")

	_, err := Run(context.Background(), testSettings(t, p), opts, nil)
	if !model.IsKind(err, model.KindDownload) {
		t.Fatalf("Run() error = %v, want download error", err)
	}
	if _, err := os.Stat(opts.Out); !os.IsNotExist(err) {
		t.Errorf("stylesheet written after failed download: %v", err)
	}
}

func TestRun_Validation(t *testing.T) {
	p := newProvider(t)
	opts := config.Options{Font: "Open Sans"}

	_, err := Run(context.Background(), testSettings(t, p), opts, nil)
	if !model.IsKind(err, model.KindValidation) {
		t.Errorf("Run() error = %v, want validation error", err)
	}
}

func TestRun_DryRun(t *testing.T) {
	p := newProvider(t)
	dir := t.TempDir()

	opts := testOptions(dir)
	opts.DryRun = true
	res, err := Run(context.Background(), testSettings(t, p), opts, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(res.Tasks) != 3 {
		t.Errorf("got %d tasks, want 3", len(res.Tasks))
	}
	if res.Tree.Len() != 2 {
		t.Errorf("tree has %d faces, want 2", res.Tree.Len())
	}
	if res.CSS != "" {
		t.Error("dry run produced CSS")
	}
	if _, err := os.Stat(opts.Destination); !os.IsNotExist(err) {
		t.Errorf("destination created during dry run: %v", err)
	}
}

func TestRun_Preview(t *testing.T) {
	p := newProvider(t)
	dir := t.TempDir()

	opts := testOptions(dir)
	opts.Preview = true
	res, err := Run(context.Background(), testSettings(t, p), opts, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := filepath.Join(dir, "fonts", "Open Sans-specimen.png")
	if res.Specimen != want {
		t.Fatalf("Specimen = %q, want %q", res.Specimen, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("specimen missing: %v", err)
	}
}

func TestRun_PreviewWithoutTrueTypeWarns(t *testing.T) {
	p := newProvider(t)
	dir := t.TempDir()

	var warned bool
	var mu sync.Mutex
	m := NewManager(testSettings(t, p), nil, func(e ProgressEvent) {
		mu.Lock()
		if e.Level == LevelWarning {
			warned = true
		}
		mu.Unlock()
	})

	opts := testOptions(dir)
	opts.Formats = []string{"woff2"}
	opts.Preview = true
	res, err := m.Run(context.Background(), &opts)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Specimen != "" {
		t.Errorf("Specimen = %q, want none", res.Specimen)
	}
	if !warned {
		t.Error("expected a warning event")
	}
}
