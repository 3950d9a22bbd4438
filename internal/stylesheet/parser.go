package stylesheet

import (
	"bytes"
	"errors"
	"io"
	"regexp"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"

	"github.com/jrnewell/goog-webfont-dl/internal/model"
)

var (
	localPattern     = regexp.MustCompile(`local\(\s*['"]?(.+?)['"]?\s*\)`)
	urlFormatPattern = regexp.MustCompile(`url\(\s*['"]?(\S+?)['"]?\s*\)\s*format\(\s*['"]?([^'"\s)]+)['"]?\s*\)`)
	bareURLPattern   = regexp.MustCompile(`url\(\s*['"]?(\S+?)['"]?\s*\)`)
)

var errNoFontFace = errors.New("no @font-face rules found")

// Face is one usable @font-face rule of a provider stylesheet.
type Face struct {
	Key model.FaceKey
	model.PartialFace
}

// Parser extracts font faces from provider stylesheets.
//
// Only the parts of the stylesheet grammar the provider uses are
// interpreted: top-level comments naming the subset of the following rule,
// @font-face blocks and their font-family, font-style, font-weight, src and
// unicode-range declarations. Everything else is skipped.
//
// Example usage:
//
//	p := NewParser(log)
//	faces, err := p.Parse(model.FormatWOFF2, "Open Sans", body)
//	if err != nil {
//	    return err
//	}
//	for _, f := range faces {
//	    fmt.Println(f.Key, f.URLs)
//	}
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new stylesheet parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("stylesheet")}
}

// declaration is a property with a copy of its value tokens.
type declaration struct {
	name   string
	values []css.Token
}

// Parse returns the faces of the stylesheet fetched for format, in source
// order. fontName is the requested family; faces of another family are kept
// but logged.
//
// Returns a KindParse *model.Error when the text cannot be read as a
// stylesheet or holds no @font-face rule at all, e.g. when the provider
// answered with an HTML error page. Blank input yields no faces.
func (p *Parser) Parse(format model.Format, fontName string, data []byte) ([]Face, error) {
	p.log.Debug("Parsing stylesheet", zap.Stringer("format", format), zap.Int("bytes", len(data)))

	parser := css.NewParser(parse.NewInputBytes(data), false)

	var (
		cursor subsetCursor
		faces  []Face
		rules  int
	)
	for {
		gt, _, text := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			if err := parser.Err(); err != nil && !errors.Is(err, io.EOF) {
				return nil, model.NewError(model.KindParse, format.String()+" stylesheet", err)
			}
			if rules == 0 && len(bytes.TrimSpace(data)) > 0 {
				return nil, model.NewError(model.KindParse, format.String()+" stylesheet", errNoFontFace)
			}
			p.log.Debug("Parsed stylesheet", zap.Stringer("format", format), zap.Int("faces", len(faces)))
			return faces, nil

		case css.CommentGrammar:
			cursor.observe(commentText(text))

		case css.BeginAtRuleGrammar:
			if !bytes.EqualFold(text, []byte("@font-face")) {
				p.log.Debug("Skipping @-rule", zap.ByteString("rule", text))
				skipBlock(parser)
				cursor.reset()
				continue
			}
			rules++
			decls := readDeclarations(parser)
			subset := cursor.take()
			if len(decls) == 0 {
				continue
			}
			if face, ok := p.buildFace(format, fontName, subset, decls); ok {
				faces = append(faces, face)
			}

		case css.BeginRulesetGrammar:
			skipBlock(parser)
			cursor.reset()

		default:
			cursor.reset()
		}
	}
}

// buildFace interprets the declarations of one @font-face rule.
func (p *Parser) buildFace(format model.Format, fontName, subset string, decls []declaration) (Face, bool) {
	var (
		face                              = Face{Key: model.FaceKey{Subset: subset}}
		haveFamily, haveStyle, haveWeight bool
		synthesizeLocal                   bool
	)

	for _, d := range decls {
		switch d.name {
		case "font-family":
			face.Key.Family = stripQuotes(tokensText(d.values))
			haveFamily = true
			if face.Key.Family != fontName {
				p.log.Warn("Provider returned a different font-family than requested",
					zap.String("family", face.Key.Family), zap.String("requested", fontName))
			}
		case "font-style":
			face.Key.Style = stripQuotes(tokensText(d.values))
			haveStyle = true
		case "font-weight":
			face.Key.Weight = stripQuotes(tokensText(d.values))
			haveWeight = true
		case "src":
			if p.parseSources(format, d.values, &face.PartialFace) {
				synthesizeLocal = true
			}
		case "unicode-range":
			face.UnicodeRange = stripQuotes(tokensText(d.values))
		}
	}

	if synthesizeLocal && len(face.LocalNames) == 0 && face.Key.Family != "" {
		face.LocalNames = append(face.LocalNames, face.Key.Family)
	}

	if len(face.URLs) == 0 || !haveFamily || !haveStyle || !haveWeight {
		p.log.Debug("Discarding incomplete @font-face", zap.Stringer("format", format), zap.Stringer("key", face.Key))
		return Face{}, false
	}
	return face, true
}

// parseSources splits a src value into its comma separated entries and
// records local names and urls. It reports whether a legacy url without a
// local name was seen, in which case the family name stands in for one.
func (p *Parser) parseSources(format model.Format, values []css.Token, face *model.PartialFace) (needLocal bool) {
	for _, entry := range splitOnCommas(values) {
		token := strings.TrimRight(strings.TrimLeft(tokensText(entry), " \t\r\n\f"), " \t\r\n\f;")
		if token == "" {
			continue
		}

		if m := localPattern.FindStringSubmatch(token); m != nil {
			face.LocalNames = append(face.LocalNames, m[1])
			continue
		}

		if format == model.FormatEOT {
			if m := bareURLPattern.FindStringSubmatch(token); m != nil {
				face.URLs = append(face.URLs, model.URLEntry{URL: m[1], Token: model.TokenEmbeddedOpenType})
				if len(face.LocalNames) == 0 {
					needLocal = true
				}
				continue
			}
		} else if m := urlFormatPattern.FindStringSubmatch(token); m != nil {
			face.URLs = append(face.URLs, model.URLEntry{URL: m[1], Token: m[2]})
			continue
		}

		p.log.Debug("Skipping unrecognized src entry", zap.Stringer("format", format), zap.String("entry", token))
	}
	return needLocal
}

// readDeclarations collects declarations until the end of the current block.
// Value tokens are copied since the parser reuses its buffers.
func readDeclarations(parser *css.Parser) []declaration {
	var decls []declaration
	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar, css.EndAtRuleGrammar, css.EndRulesetGrammar:
			return decls

		case css.DeclarationGrammar:
			values := parser.Values()
			if len(values) == 0 {
				continue
			}
			d := declaration{name: strings.ToLower(string(data)), values: make([]css.Token, len(values))}
			for i, v := range values {
				d.values[i] = css.Token{TokenType: v.TokenType, Data: bytes.Clone(v.Data)}
			}
			decls = append(decls, d)

		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			skipBlock(parser)
		}
	}
}

// skipBlock skips tokens until the matching end of the block just opened.
func skipBlock(parser *css.Parser) {
	depth := 1
	for depth > 0 {
		gt, _, _ := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			return
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			depth++
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			depth--
		}
	}
}

// splitOnCommas splits value tokens on commas outside of parentheses.
func splitOnCommas(values []css.Token) [][]css.Token {
	var (
		parts [][]css.Token
		cur   []css.Token
		depth int
	)
	for _, t := range values {
		switch t.TokenType {
		case css.FunctionToken, css.LeftParenthesisToken:
			depth++
		case css.RightParenthesisToken:
			if depth > 0 {
				depth--
			}
		case css.CommaToken:
			if depth == 0 {
				parts = append(parts, cur)
				cur = nil
				continue
			}
		}
		cur = append(cur, t)
	}
	return append(parts, cur)
}

// tokensText joins token data. Whitespace runs collapse into one space and
// commas are always followed by a single space.
func tokensText(values []css.Token) string {
	var (
		sb    strings.Builder
		space bool
	)
	for _, t := range values {
		switch t.TokenType {
		case css.WhitespaceToken:
			space = true
			continue
		case css.CommaToken:
			sb.WriteString(", ")
			space = false
			continue
		}
		if space && sb.Len() > 0 && !strings.HasSuffix(sb.String(), " ") {
			sb.WriteByte(' ')
		}
		space = false
		sb.Write(t.Data)
	}
	return strings.TrimSpace(sb.String())
}

// commentText returns the trimmed body of a /* ... */ comment.
func commentText(data []byte) string {
	s := string(data)
	s = strings.TrimPrefix(s, "/*")
	s = strings.TrimSuffix(s, "*/")
	return strings.TrimSpace(s)
}

func stripQuotes(s string) string {
	return strings.Trim(strings.TrimSpace(s), `'"`)
}
