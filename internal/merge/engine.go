package merge

import (
	"net/url"
	"path"

	"go.uber.org/zap"

	"github.com/jrnewell/goog-webfont-dl/internal/model"
)

// Engine folds per-format faces into a single model.Tree and collects the
// download tasks for every referenced font file.
//
// An Engine is not safe for concurrent use. Callers merge formats one after
// another in a fixed order so the resulting tree is deterministic.
type Engine struct {
	prefix string
	tree   *model.Tree
	tasks  []model.DownloadTask
	log    *zap.Logger
}

// NewEngine creates an engine whose rewritten paths are joined onto prefix.
func NewEngine(prefix string, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		prefix: prefix,
		tree:   model.NewTree(),
		log:    log.Named("merge"),
	}
}

// Merge records the contribution of one @font-face rule fetched for format.
//
// The face for key is created on first sight and its default local name is
// fixed at that moment. Every url entry gets a local file name derived from
// that default name, the subset and the url's extension.
func (e *Engine) Merge(format model.Format, key model.FaceKey, partial model.PartialFace) {
	face, created := e.tree.Ensure(key)
	if created {
		e.log.Debug("New face", zap.Stringer("key", key), zap.Stringer("format", format))
	}

	if face.DefaultLocalName == "" {
		face.DefaultLocalName = defaultLocalName(key, face, partial)
	}
	face.AddLocalNames(partial.LocalNames...)

	for _, entry := range partial.URLs {
		if prev, ok := face.URLs.Get(entry.Token); ok && prev.Format != format {
			e.log.Debug("Format token already provided by another request, skipping",
				zap.Stringer("key", key), zap.String("token", entry.Token),
				zap.Stringer("kept", prev.Format), zap.Stringer("skipped", format))
			continue
		}

		name := fileName(face.DefaultLocalName, key.Subset, extension(entry))
		face.URLs.Set(model.Source{
			Token:  entry.Token,
			Path:   path.Join(e.prefix, name),
			Format: format,
		})
		e.tasks = append(e.tasks, model.DownloadTask{URL: entry.URL, Name: name})
	}

	if partial.UnicodeRange != "" {
		face.UnicodeRange = partial.UnicodeRange
	}
}

// Tree returns the merged tree.
func (e *Engine) Tree() *model.Tree {
	return e.tree
}

// Tasks returns download tasks in the order they were collected.
func (e *Engine) Tasks() []model.DownloadTask {
	return e.tasks
}

func defaultLocalName(key model.FaceKey, face *model.Face, partial model.PartialFace) string {
	switch {
	case len(face.LocalNames) > 0:
		return model.HyphenateName(face.LocalNames[0])
	case len(partial.LocalNames) > 0:
		return model.HyphenateName(partial.LocalNames[0])
	default:
		return model.HyphenateName(key.Family + "-" + key.Style + "-" + key.Weight)
	}
}

func fileName(base, subset, ext string) string {
	if subset == model.DefaultSubset {
		return base + ext
	}
	return base + "-" + subset + ext
}

// extension returns the extension of the url path, ".svg" for extensionless
// svg references.
func extension(entry model.URLEntry) string {
	p := entry.URL
	if u, err := url.Parse(entry.URL); err == nil {
		p = u.Path
	}
	ext := path.Ext(p)
	if ext == "" && entry.Token == model.TokenSVG {
		ext = ".svg"
	}
	return ext
}
