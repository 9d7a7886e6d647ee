// Package bdf converts BDF bitmap fonts into packed fonts indexed by code
// point.
package bdf

import (
	"errors"
	"image"
	"io"

	gobdf "github.com/zachomedia/go-bdf"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/fixed"

	"github.com/three-0-3/makefont/internal/bitfont"
)

var (
	// ErrRange is returned when Last precedes First.
	ErrRange = errors.New("empty code point range")
	// ErrHeight is returned when neither the options nor the font give a
	// glyph height.
	ErrHeight = errors.New("bdf: font has no height")
)

type Options struct {
	// Height of a glyph cell. Zero uses the font ascent plus descent.
	Height int
	// First and Last bound the code points to convert. A zero Last
	// converts up to 255.
	First, Last rune
}

// Decode reads a BDF font and draws the glyphs First to Last into 8 pixel
// wide cells, the baseline placed at the font ascent. Pixels at least half
// covered are set. Code points the font lacks become blank glyphs, so the
// glyph for code c is always at index c-First.
func Decode(r io.Reader, options *Options) (*bitfont.Font, error) {
	var opts Options
	if options != nil {
		opts = *options
	}
	if opts.Last == 0 {
		opts.Last = 255
	}
	if opts.Last < opts.First || opts.First < 0 {
		return nil, ErrRange
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	bf, err := gobdf.Parse(data)
	if err != nil {
		return nil, err
	}
	face := bf.NewFace()
	defer face.Close()

	m := face.Metrics()
	ascent := m.Ascent.Ceil()
	if opts.Height == 0 {
		opts.Height = ascent + m.Descent.Ceil()
	}
	if opts.Height <= 0 {
		return nil, ErrHeight
	}

	cell := image.NewAlpha(image.Rect(0, 0, 8, opts.Height))
	font := &bitfont.Font{
		Width:  8,
		Height: opts.Height,
		Rows:   make([]byte, 0, int(opts.Last-opts.First+1)*opts.Height),
	}
	blank := 0
	for c := opts.First; c <= opts.Last; c++ {
		clear(cell.Pix)
		dr, mask, maskp, _, ok := face.Glyph(fixed.P(0, ascent), c)
		if ok {
			draw.DrawMask(cell, dr, image.Opaque, image.Point{}, mask, maskp, draw.Over)
		}

		empty := true
		for y := 0; y < opts.Height; y++ {
			var b byte
			for x := 0; x < 8; x++ {
				b <<= 1
				if cell.AlphaAt(x, y).A >= 0x80 {
					b |= 1
				}
			}
			if b != 0 {
				empty = false
			}
			font.Rows = append(font.Rows, b)
		}
		if empty {
			blank++
		}
	}

	bitfont.Logger().Info("converted bdf font",
		"glyphs", font.Len(), "blank", blank, "height", opts.Height)
	return font, nil
}
