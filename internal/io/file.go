package ioutils

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/jrnewell/goog-webfont-dl/internal/model"
)

// Stdout is the destination marker that sends the stylesheet to standard
// output.
const Stdout = "-"

// Sink collects the generated stylesheet and delivers it on Commit.
//
// The destination is one of:
//   - "" keeps the text in memory only, see String
//   - Stdout ("-") writes to the provided stdout writer
//   - any other value is a file path, replaced atomically
//
// Example:
//
//	sink := NewSink(opts.Out, os.Stdout)
//	if err := stylesheet.Generate(sink, tree); err != nil {
//	    return err
//	}
//	err := sink.Commit()
type Sink struct {
	dest   string
	stdout io.Writer
	buf    bytes.Buffer
}

// NewSink creates a sink for dest. stdout is only used for the Stdout marker.
func NewSink(dest string, stdout io.Writer) *Sink {
	if stdout == nil {
		stdout = os.Stdout
	}
	return &Sink{dest: dest, stdout: stdout}
}

// Write implements io.Writer. Nothing reaches the destination before Commit.
func (s *Sink) Write(p []byte) (int, error) {
	return s.buf.Write(p)
}

// String returns everything written so far.
func (s *Sink) String() string {
	return s.buf.String()
}

// Destination returns the configured destination.
func (s *Sink) Destination() string {
	return s.dest
}

// InMemory reports whether the sink only keeps its text in memory.
func (s *Sink) InMemory() bool {
	return s.dest == ""
}

// Commit delivers the buffered text. Failures are KindWrite errors.
func (s *Sink) Commit() error {
	switch s.dest {
	case "":
		return nil
	case Stdout:
		if _, err := s.stdout.Write(s.buf.Bytes()); err != nil {
			return model.NewError(model.KindWrite, "stdout", err)
		}
		return nil
	default:
		if err := WriteFileAtomic(s.dest, s.buf.Bytes()); err != nil {
			return model.NewError(model.KindWrite, s.dest, err)
		}
		return nil
	}
}

// WriteFileAtomic writes data to a temporary file in the directory of path
// and renames it over path, so readers never observe a partial file.
// Missing parent directories are created.
func WriteFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := EnsureDir(dir); err != nil {
		return err
	}

	tmp := filepath.Join(dir, "."+uuid.New().String()+".tmp")
	defer func() {
		if err != nil {
			if rerr := os.Remove(tmp); rerr != nil && !os.IsNotExist(rerr) {
				err = multierr.Append(err, rerr)
			}
		}
	}()

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err = f.Write(data); err != nil {
		return multierr.Append(err, f.Close())
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}

// ResolveInDir joins name onto dir and rejects names that would land
// outside of dir. File names are derived from provider supplied local font
// names, so they are not trusted.
//
// Example:
//
//	ResolveInDir("fonts", "Open-Sans.woff2")  // Returns "fonts/Open-Sans.woff2"
//	ResolveInDir("fonts", "../../etc/passwd") // Returns an error
func ResolveInDir(dir, name string) (string, error) {
	if !filepath.IsLocal(name) {
		return "", fmt.Errorf("file name %q escapes destination directory", name)
	}
	return filepath.Join(dir, name), nil
}

var (
	invalidChars  = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	trailingDots  = regexp.MustCompile(`\.+$`)
	whitespaceRun = regexp.MustCompile(`\s+`)
)

// SanitizeFileName removes or replaces characters that are invalid in file/folder names.
//
// The following transformations are applied:
//   - Invalid characters (<>:"/\|?* and control chars 0x00-0x1f) → underscore
//   - Trailing dots → removed (Windows limitation)
//   - Multiple whitespace → single space
//   - Trailing whitespace → removed
//
// Example:
//
//	SanitizeFileName("Noto Sans: JP")  // Returns "Noto Sans_ JP"
//	SanitizeFileName("Font...")        // Returns "Font"
func SanitizeFileName(name string) string {
	name = invalidChars.ReplaceAllString(name, "_")
	name = trailingDots.ReplaceAllString(name, "")
	name = whitespaceRun.ReplaceAllString(name, " ")
	return strings.TrimRight(name, " ")
}
