package ioutils

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/jrnewell/goog-webfont-dl/internal/model"
)

func TestSink_Memory(t *testing.T) {
	s := NewSink("", nil)
	s.Write([]byte("@font-face {}\n"))
	if err := s.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if !s.InMemory() {
		t.Error("InMemory() = false, want true")
	}
	if s.String() != "@font-face {}\n" {
		t.Errorf("String() = %q", s.String())
	}
}

func TestSink_Stdout(t *testing.T) {
	var out bytes.Buffer
	s := NewSink(Stdout, &out)
	s.Write([]byte("a"))
	s.Write([]byte("b"))
	if out.Len() != 0 {
		t.Error("sink wrote before Commit")
	}
	if err := s.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if out.String() != "ab" {
		t.Errorf("stdout = %q, want %q", out.String(), "ab")
	}
}

func TestSink_File(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "css", "Open Sans.css")
	s := NewSink(dest, nil)
	s.Write([]byte("body {}"))
	if err := s.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != "body {}" {
		t.Errorf("file = %q", got)
	}
	entries, _ := os.ReadDir(filepath.Dir(dest))
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want 1", len(entries))
	}
}

func TestSink_FileError(t *testing.T) {
	dir := t.TempDir()
	// A regular file where a directory is expected.
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewSink(filepath.Join(blocker, "out.css"), nil)
	s.Write([]byte("x"))
	err := s.Commit()
	if !model.IsKind(err, model.KindWrite) {
		t.Errorf("Commit() error = %v, want write error", err)
	}
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("closed pipe") }

func TestSink_StdoutError(t *testing.T) {
	s := NewSink(Stdout, brokenWriter{})
	s.Write([]byte("x"))
	if err := s.Commit(); !model.IsKind(err, model.KindWrite) {
		t.Errorf("Commit() error = %v, want write error", err)
	}
}

func TestResolveInDir(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"Open-Sans.woff2", false},
		{"Open-Sans-latin-ext.ttf", false},
		{"../escape.ttf", true},
		{"/abs.ttf", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveInDir("fonts", tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolveInDir(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if !tt.wantErr && got != filepath.Join("fonts", tt.name) {
				t.Errorf("ResolveInDir(%q) = %q", tt.name, got)
			}
		})
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Open Sans", "Open Sans"},
		{"Noto Sans: JP", "Noto Sans_ JP"},
		{"a/b\\c", "a_b_c"},
		{"Font...", "Font"},
		{"Font   Name  ", "Font Name"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := SanitizeFileName(tt.input); got != tt.want {
				t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsTrueType(t *testing.T) {
	if !IsTrueType(goregular.TTF) {
		t.Error("IsTrueType(goregular) = false, want true")
	}
	if IsTrueType([]byte("wOF2 not a ttf")) {
		t.Error("IsTrueType(woff2) = true, want false")
	}
}

func TestRenderSpecimen(t *testing.T) {
	svc := NewPreviewService()
	svc.Width = 400

	data, err := svc.RenderSpecimen(context.Background(), []Specimen{
		{Label: "default/normal/400", Data: goregular.TTF},
		{Label: "latin/normal/400", Data: goregular.TTF},
	})
	if err != nil {
		t.Fatalf("RenderSpecimen() error = %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if img.Bounds().Dx() != 400 {
		t.Errorf("width = %d, want 400", img.Bounds().Dx())
	}
	if img.Bounds().Dy() <= 2*32 {
		t.Errorf("height = %d, too small for two rows", img.Bounds().Dy())
	}
}

func TestRenderSpecimen_Errors(t *testing.T) {
	svc := NewPreviewService()

	if _, err := svc.RenderSpecimen(context.Background(), nil); err == nil {
		t.Error("expected error for empty specimen list")
	}
	if _, err := svc.RenderSpecimen(context.Background(), []Specimen{{Label: "bad", Data: []byte("nope")}}); err == nil {
		t.Error("expected error for invalid font data")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.RenderSpecimen(ctx, []Specimen{{Label: "x", Data: goregular.TTF}}); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
