package stylesheet

import (
	"fmt"
	"io"
	"strings"

	"github.com/jrnewell/goog-webfont-dl/internal/model"
)

// errWriter remembers the first write error so generation code can stay
// linear.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

// Generate writes the stylesheet for tree to w, iterating faces in discovery
// order. Faces outside the default subset are preceded by a comment naming
// their subset.
func Generate(w io.Writer, tree *model.Tree) error {
	ew := &errWriter{w: w}
	for key, face := range tree.Faces() {
		writeFace(ew, key, face)
	}
	return ew.err
}

func writeFace(ew *errWriter, key model.FaceKey, face *model.Face) {
	if key.Subset != model.DefaultSubset {
		ew.printf("/* %s */\n", key.Subset)
	}
	ew.printf("@font-face {\n")
	ew.printf("  font-family: '%s';\n", key.Family)
	ew.printf("  font-style: %s;\n", key.Style)
	ew.printf("  font-weight: %s;\n", key.Weight)

	if eot, ok := face.URLs.Get(model.TokenEmbeddedOpenType); ok {
		ew.printf("  src: url(%s?#iefix);\n", eot.Path)
	}

	entries := make([]string, 0, len(face.LocalNames)+face.URLs.Len())
	for _, name := range face.LocalNames {
		entries = append(entries, fmt.Sprintf("local('%s')", name))
	}
	for src := range face.URLs.All() {
		path := src.Path
		if src.Token == model.TokenSVG {
			path += "#" + model.StripWhitespace(key.Family)
		}
		entries = append(entries, fmt.Sprintf("url(%s) format('%s')", path, src.Token))
	}
	ew.printf("  src: %s;\n", strings.Join(entries, ", "))

	if face.UnicodeRange != "" {
		ew.printf("  unicode-range: %s;\n", face.UnicodeRange)
	}
	ew.printf("}\n\n")
}
