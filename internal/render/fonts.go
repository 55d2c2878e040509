package render

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Align selects how DrawString interprets its x coordinate.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// FontSet holds the bold faces used across the layout, keyed by point size.
type FontSet struct {
	Size8  font.Face
	Size10 font.Face
	Size12 font.Face
	Size18 font.Face
	Size24 font.Face
}

// LoadFonts parses the embedded bold font once and derives the faces the
// layout uses.
func LoadFonts() (*FontSet, error) {
	ft, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded font: %w", err)
	}

	fs := &FontSet{}
	sizes := []struct {
		pt  float64
		dst *font.Face
	}{
		{8, &fs.Size8},
		{10, &fs.Size10},
		{12, &fs.Size12},
		{18, &fs.Size18},
		{24, &fs.Size24},
	}
	for _, s := range sizes {
		face, err := opentype.NewFace(ft, &opentype.FaceOptions{
			Size:    s.pt,
			DPI:     96,
			Hinting: font.HintingFull,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create %gpt face: %w", s.pt, err)
		}
		*s.dst = face
	}
	return fs, nil
}

// DrawString renders s with its ink top edge at y. The x coordinate is the
// left edge, center or right edge of the rendered text depending on align.
func (c *Canvas) DrawString(x, y int, s string, face font.Face, align Align, shade uint8) {
	w := StringWidth(face, s)
	h := StringHeight(face, s)
	switch align {
	case AlignRight:
		x -= w
	case AlignCenter:
		x -= w / 2
	}
	d := font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(color.Gray{Y: shade}),
		Face: face,
		Dot:  fixed.P(x, y+h),
	}
	d.DrawString(s)
}

// StringWidth returns the ink width of s in pixels.
func StringWidth(face font.Face, s string) int {
	b, _ := font.BoundString(face, s)
	return (b.Max.X - b.Min.X).Ceil()
}

// StringHeight returns the ink height of s in pixels.
func StringHeight(face font.Face, s string) int {
	b, _ := font.BoundString(face, s)
	return (b.Max.Y - b.Min.Y).Ceil()
}
