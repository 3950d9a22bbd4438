package ioutils

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/h2non/filetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// DefaultSpecimenText is rendered for every face when no text is given.
const DefaultSpecimenText = "The quick brown fox jumps over the lazy dog 0123456789"

// Specimen is one downloaded font face to preview.
type Specimen struct {
	// Label is printed above the sample line, e.g. "latin/normal/400".
	Label string

	// Data is the raw font file.
	Data []byte
}

// IsTrueType reports whether data looks like a TrueType font file.
func IsTrueType(data []byte) bool {
	return filetype.Is(data, "ttf")
}

// PreviewService renders specimen sheets for downloaded fonts.
//
// Example usage:
//
//	svc := NewPreviewService()
//	img, err := svc.RenderSpecimen(ctx, []Specimen{{Label: "normal 400", Data: ttf}})
//	err = WriteFileAtomic("Open Sans/Open Sans-specimen.png", img)
type PreviewService struct {
	// Size is the sample point size.
	Size float64

	// Width of the sheet in pixels.
	Width int

	// Text is the sample sentence.
	Text string
}

// NewPreviewService creates a PreviewService with default settings.
func NewPreviewService() *PreviewService {
	return &PreviewService{
		Size:  32,
		Width: 1200,
		Text:  DefaultSpecimenText,
	}
}

var errNoSpecimens = errors.New("no fonts to preview")

// RenderSpecimen draws one labelled sample line per specimen and returns the
// sheet as PNG-encoded bytes.
//
// Only TrueType and OpenType data can be rendered; other formats fail with
// an error naming the offending label.
func (s *PreviewService) RenderSpecimen(ctx context.Context, specimens []Specimen) ([]byte, error) {
	if len(specimens) == 0 {
		return nil, errNoSpecimens
	}

	faces := make([]font.Face, 0, len(specimens))
	defer func() {
		for _, f := range faces {
			f.Close()
		}
	}()
	for _, sp := range specimens {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		parsed, err := opentype.Parse(sp.Data)
		if err != nil {
			return nil, fmt.Errorf("parse font %s: %w", sp.Label, err)
		}
		face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
			Size:    s.Size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			return nil, fmt.Errorf("create font face %s: %w", sp.Label, err)
		}
		faces = append(faces, face)
	}

	const margin = 16
	label := basicfont.Face7x13
	labelHeight := label.Metrics().Height.Ceil()

	rowHeights := make([]int, len(faces))
	height := margin
	for i, f := range faces {
		rowHeights[i] = labelHeight + f.Metrics().Height.Ceil() + margin
		height += rowHeights[i]
	}

	dst := image.NewRGBA(image.Rect(0, 0, s.Width, height))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)

	y := margin
	for i, f := range faces {
		labelDrawer := font.Drawer{
			Dst:  dst,
			Src:  image.NewUniform(color.Gray{Y: 0x80}),
			Face: label,
			Dot:  fixed.P(margin, y+label.Metrics().Ascent.Ceil()),
		}
		labelDrawer.DrawString(specimens[i].Label)

		sample := font.Drawer{
			Dst:  dst,
			Src:  image.Black,
			Face: f,
			Dot:  fixed.P(margin, y+labelHeight+f.Metrics().Ascent.Ceil()),
		}
		sample.DrawString(s.Text)

		y += rowHeights[i]
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
