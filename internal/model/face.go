package model

import (
	"iter"
	"regexp"
	"slices"
)

// DefaultSubset is the subset assigned to faces that are not preceded by a
// subset comment in the provider stylesheet.
const DefaultSubset = "default"

// FaceKey identifies one logical font face across all formats.
//
// Faces fetched in different formats are merged when their keys are equal.
// Subset is DefaultSubset when the stylesheet did not name one.
type FaceKey struct {
	Subset string
	Family string
	Style  string
	Weight string
}

// String returns the key as "subset/family/style/weight".
func (k FaceKey) String() string {
	return k.Subset + "/" + k.Family + "/" + k.Style + "/" + k.Weight
}

// URLEntry is a remote font reference found in a src declaration.
type URLEntry struct {
	// URL is the remote location as written by the provider.
	URL string

	// Token is the format() token, e.g. "woff2" or "embedded-opentype".
	Token string
}

// PartialFace is what a single @font-face rule contributes for one format.
type PartialFace struct {
	// LocalNames are the names from local() references, in source order.
	LocalNames []string

	// URLs are the remote references with their format tokens, in source order.
	URLs []URLEntry

	// UnicodeRange is the unicode-range declaration, empty when absent.
	UnicodeRange string
}

// Source is a rewritten font reference stored on a Face.
type Source struct {
	// Token is the format() token of the reference.
	Token string

	// Path is the prefixed local path written into the output stylesheet.
	Path string

	// Format is the fetch pass that recorded the reference.
	Format Format
}

// Sources is an insertion-ordered mapping from format token to Source.
//
// The zero value is ready to use.
type Sources struct {
	list  []Source
	index map[string]int
}

// Set records src under its token. A token that is already present keeps its
// position and has its value replaced.
func (s *Sources) Set(src Source) {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if i, ok := s.index[src.Token]; ok {
		s.list[i] = src
		return
	}
	s.index[src.Token] = len(s.list)
	s.list = append(s.list, src)
}

// Get returns the source recorded for token.
func (s *Sources) Get(token string) (Source, bool) {
	if i, ok := s.index[token]; ok {
		return s.list[i], true
	}
	return Source{}, false
}

// Len returns the number of recorded tokens.
func (s *Sources) Len() int {
	return len(s.list)
}

// Tokens returns recorded tokens in insertion order.
func (s *Sources) Tokens() []string {
	tokens := make([]string, 0, len(s.list))
	for _, src := range s.list {
		tokens = append(tokens, src.Token)
	}
	return tokens
}

// All iterates over recorded sources in insertion order.
func (s *Sources) All() iter.Seq[Source] {
	return func(yield func(Source) bool) {
		for _, src := range s.list {
			if !yield(src) {
				return
			}
		}
	}
}

// Face is the merged record of one FaceKey across all fetched formats.
type Face struct {
	// LocalNames holds local() names without duplicates, first seen first.
	LocalNames []string

	// DefaultLocalName is the base for local file names. It is set once, by
	// the first format that establishes the face, and never changes.
	DefaultLocalName string

	// URLs maps format tokens to rewritten local paths.
	URLs Sources

	// UnicodeRange is the last non-empty unicode-range seen for the face.
	UnicodeRange string
}

// AddLocalNames appends names that are not yet present, preserving order.
func (f *Face) AddLocalNames(names ...string) {
	for _, name := range names {
		if !slices.Contains(f.LocalNames, name) {
			f.LocalNames = append(f.LocalNames, name)
		}
	}
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// HyphenateName replaces every run of whitespace in name with a single hyphen.
//
// Example:
//
//	HyphenateName("Open Sans Bold") // Returns "Open-Sans-Bold"
func HyphenateName(name string) string {
	return whitespaceRun.ReplaceAllString(name, "-")
}

// StripWhitespace removes all whitespace from name. It is used for the SVG
// fragment identifier in generated stylesheets.
func StripWhitespace(name string) string {
	return whitespaceRun.ReplaceAllString(name, "")
}

// DownloadTask is one remote font file to fetch and its local file name.
type DownloadTask struct {
	URL  string
	Name string
}
