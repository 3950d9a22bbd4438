package config

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	validator "github.com/go-playground/validator/v10"
	"github.com/rupor-github/gencfg"

	"github.com/jrnewell/goog-webfont-dl/internal/model"
)

// DefaultStyles is requested when no style list is given.
const DefaultStyles = "100,300,400,700,900,100italic,300italic,400italic,700italic,900italic"

// Options is the configuration of a single download run.
type Options struct {
	// Font is the family name, e.g. "Open Sans". "+" is accepted in place
	// of spaces.
	Font string `validate:"required"`

	// Formats lists the formats to fetch: ttf, eot, woff, woff2 or svg.
	Formats []string `validate:"required,min=1,dive,oneof=ttf eot woff woff2 svg"`

	// Styles is the comma separated weight/style list sent to the provider.
	Styles string `validate:"required"`

	// Prefix is prepended to font file names in the generated stylesheet.
	// Defaults to "../fonts/<Font>".
	Prefix string

	// Destination is the directory font files are saved to. Defaults to Font.
	Destination string

	// Out is the stylesheet destination: a path, "-" for stdout or empty to
	// only return the text.
	Out string

	// Subset is an optional subset filter, e.g. "latin,cyrillic".
	Subset string

	// Proxy overrides the proxy from the settings file.
	Proxy string `validate:"omitempty,url"`

	// Verbose enables informational messages.
	Verbose bool

	// Preview renders a specimen sheet of the downloaded TrueType faces.
	Preview bool

	// DryRun stops after merging; nothing is downloaded or written.
	DryRun bool
}

// Normalize applies defaults and validates o in place. Failures are
// KindValidation errors.
func (o *Options) Normalize() error {
	o.Font = strings.TrimSpace(strings.ReplaceAll(o.Font, "+", " "))
	o.Styles = strings.TrimSpace(o.Styles)
	if o.Styles == "" {
		o.Styles = DefaultStyles
	}
	if o.Prefix == "" && o.Font != "" {
		o.Prefix = path.Join("..", "fonts", o.Font)
	}
	if o.Destination == "" {
		o.Destination = o.Font
	}

	seen := make(map[string]bool, len(o.Formats))
	formats := make([]string, 0, len(o.Formats))
	for _, f := range o.Formats {
		f = strings.ToLower(strings.TrimSpace(f))
		if !seen[f] {
			seen[f] = true
			formats = append(formats, f)
		}
	}
	o.Formats = formats

	if err := gencfg.Validate(o); err != nil {
		return model.NewError(model.KindValidation, "options", describe(err))
	}
	return nil
}

// describe turns validator output into messages meant for users.
func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch {
		case fe.Field() == "Font":
			msgs = append(msgs, "a font name is required")
		case fe.Field() == "Formats":
			msgs = append(msgs, "at least one format is required")
		case strings.HasPrefix(fe.Field(), "Formats["):
			msgs = append(msgs, fmt.Sprintf("unknown format %q, expected one of %s",
				fe.Value(), strings.Join(model.FormatNames(), ", ")))
		case fe.Field() == "Proxy":
			msgs = append(msgs, fmt.Sprintf("invalid proxy url %q", fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("invalid %s (%s)", strings.ToLower(fe.Field()), fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

// ParsedFormats returns Formats as model values. It must be called after a
// successful Normalize.
func (o *Options) ParsedFormats() ([]model.Format, error) {
	out := make([]model.Format, 0, len(o.Formats))
	for _, name := range o.Formats {
		f, err := model.ParseFormat(name)
		if err != nil {
			return nil, model.NewError(model.KindValidation, "options", err)
		}
		out = append(out, f)
	}
	return out, nil
}

// RequestURL builds the stylesheet request for endpoint:
// <endpoint>?family=<font>:<styles>[&subset=<subset>].
func (o *Options) RequestURL(endpoint string) string {
	var sb strings.Builder
	sb.WriteString(endpoint)
	if strings.Contains(endpoint, "?") {
		sb.WriteByte('&')
	} else {
		sb.WriteByte('?')
	}
	sb.WriteString("family=")
	sb.WriteString(url.QueryEscape(o.Font))
	sb.WriteByte(':')
	sb.WriteString(o.Styles)
	if o.Subset != "" {
		sb.WriteString("&subset=")
		sb.WriteString(o.Subset)
	}
	return sb.String()
}
