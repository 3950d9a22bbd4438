// Package stylesheet reads and writes the @font-face stylesheets served by
// the web font provider.
//
// # Parsing
//
// The provider answers the same request with different stylesheets depending
// on the client's User-Agent, so every format is parsed separately:
//
//	p := stylesheet.NewParser(log)
//	faces, err := p.Parse(model.FormatEOT, "Open Sans", body)
//
// A comment right before an @font-face rule names the subset of that rule
// (e.g. "/* latin */"). Rules without one belong to model.DefaultSubset.
//
// The legacy embedded-opentype stylesheet carries bare url() references
// without a format() hint. Those are recorded with the embedded-opentype
// token and, when the rule has no local() name, the family name is used as
// one.
//
// # Generation
//
// Generate writes a merged model.Tree back out, pointing every src at the
// rewritten local paths:
//
//	var buf bytes.Buffer
//	if err := stylesheet.Generate(&buf, tree); err != nil {
//	    return err
//	}
package stylesheet
