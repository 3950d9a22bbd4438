package model

import (
	"fmt"
	"strings"
)

// Format is a font encoding the provider serves to one class of client.
//
// The provider decides which encoding to return from the client
// identification sent with the stylesheet request, so every Format is
// fetched with its own request.
type Format int

const (
	// FormatTTF requests TrueType fonts.
	FormatTTF Format = iota

	// FormatEOT requests Embedded OpenType fonts (legacy Internet Explorer).
	// Stylesheets for this format carry a bare url() without a format() hint.
	FormatEOT

	// FormatWOFF requests WOFF fonts.
	FormatWOFF

	// FormatWOFF2 requests WOFF2 fonts.
	FormatWOFF2

	// FormatSVG requests SVG fonts (legacy mobile Safari).
	FormatSVG
)

// Format tokens as they appear inside CSS format() hints.
const (
	TokenTrueType         = "truetype"
	TokenEmbeddedOpenType = "embedded-opentype"
	TokenWOFF             = "woff"
	TokenWOFF2            = "woff2"
	TokenSVG              = "svg"
)

var formatNames = [...]string{
	FormatTTF:   "ttf",
	FormatEOT:   "eot",
	FormatWOFF:  "woff",
	FormatWOFF2: "woff2",
	FormatSVG:   "svg",
}

// AllFormats returns every supported format in canonical order.
func AllFormats() []Format {
	return []Format{FormatTTF, FormatEOT, FormatWOFF, FormatWOFF2, FormatSVG}
}

// FormatNames returns the option names of all supported formats.
func FormatNames() []string {
	return append([]string(nil), formatNames[:]...)
}

// ParseFormat converts an option name like "woff2" into a Format.
func ParseFormat(name string) (Format, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range formatNames {
		if n == name {
			return Format(i), nil
		}
	}
	return 0, fmt.Errorf("unknown font format %q", name)
}

// String returns the option name of the format.
func (f Format) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return fmt.Sprintf("Format(%d)", int(f))
	}
	return formatNames[f]
}

// Token returns the format() token the provider labels this encoding with.
//
// Returns:
//   - "truetype" for FormatTTF
//   - "embedded-opentype" for FormatEOT
//   - "woff" for FormatWOFF
//   - "woff2" for FormatWOFF2
//   - "svg" for FormatSVG
func (f Format) Token() string {
	switch f {
	case FormatTTF:
		return TokenTrueType
	case FormatEOT:
		return TokenEmbeddedOpenType
	case FormatWOFF:
		return TokenWOFF
	case FormatWOFF2:
		return TokenWOFF2
	case FormatSVG:
		return TokenSVG
	default:
		return ""
	}
}

// Extension returns the usual file extension for the format, including the dot.
func (f Format) Extension() string {
	switch f {
	case FormatTTF:
		return ".ttf"
	case FormatEOT:
		return ".eot"
	case FormatWOFF:
		return ".woff"
	case FormatWOFF2:
		return ".woff2"
	case FormatSVG:
		return ".svg"
	default:
		return ""
	}
}
