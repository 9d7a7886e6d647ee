// Package image converts between raster images and packed bitmap fonts.
// Decode traces a grid of glyphs drawn in a single ink colour on a solid
// background; Render lays the glyphs of a font out as a preview sheet.
package image

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/three-0-3/makefont/internal/bitfont"
)

// ErrCell is returned for a glyph cell that cannot be packed one byte
// per row.
var ErrCell = errors.New("glyph cells must be 1 to 8 pixels wide and at least 1 pixel high")

type Options struct {
	// Offset and Size select the part of the image holding the glyphs.
	// A zero Size component extends the window to the image edge.
	Offset image.Point
	Size   image.Point

	// Width and Height of one glyph cell, 8 and 16 if zero.
	Width, Height int
}

// Decode reads an image and slices its window into glyph cells, left to
// right and top to bottom. Partial cells at the right and bottom edges
// are ignored.
func Decode(r io.Reader, options *Options) (*bitfont.Font, error) {
	var opts Options
	if options != nil {
		opts = *options
	}
	if opts.Width == 0 {
		opts.Width = 8
	}
	if opts.Height == 0 {
		opts.Height = 16
	}
	if opts.Width < 0 || opts.Width > 8 || opts.Height < 0 {
		return nil, ErrCell
	}

	img, format, err := image.Decode(r)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	window := bounds
	window.Min = bounds.Min.Add(opts.Offset)
	if opts.Size.X != 0 {
		window.Max.X = window.Min.X + opts.Size.X
	}
	if opts.Size.Y != 0 {
		window.Max.Y = window.Min.Y + opts.Size.Y
	}
	window = window.Intersect(bounds)

	ink := inkLevels(img)

	cols := window.Dx() / opts.Width
	rows := window.Dy() / opts.Height
	fnt := &bitfont.Font{
		Width:  opts.Width,
		Height: opts.Height,
		Rows:   make([]byte, 0, cols*rows*opts.Height),
	}
	for cy := 0; cy < rows; cy++ {
		for cx := 0; cx < cols; cx++ {
			x0 := window.Min.X + cx*opts.Width
			y0 := window.Min.Y + cy*opts.Height
			for y := y0; y < y0+opts.Height; y++ {
				var b byte
				for x := x0; x < x0+opts.Width; x++ {
					b <<= 1
					gc := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
					if ink[gc.Y] {
						b |= 1
					}
				}
				fnt.Rows = append(fnt.Rows, b)
			}
		}
	}

	bitfont.Logger().Info("traced font image",
		"format", format, "window", window, "glyphs", cols*rows)
	return fnt, nil
}

// inkLevels classifies the grey levels of img. The background is assumed
// to be fairly solid, so its levels occur much more often than the ink
// levels: the count threshold is halved until the levels above it cover
// at least half of the image.
func inkLevels(img image.Image) (ink [256]bool) {
	var clrs [256]int
	b := img.Bounds()
	pxc := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			gc := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			clrs[gc.Y]++
			pxc++
		}
	}

	pxt := pxc
	pxd := 0
	for pxd < (pxc/2) && pxt > 0 {
		pxt /= 2
		pxd = 0
		for _, n := range clrs {
			if n > pxt {
				pxd += n
			}
		}
	}

	for level, n := range clrs {
		ink[level] = n > 0 && n <= pxt
	}
	bitfont.Logger().Debug("background threshold", "pixels", pxc, "threshold", pxt)
	return ink
}

type RenderOptions struct {
	// Columns is the number of glyphs per line of the sheet, 16 if zero.
	Columns int
	// Scale is the size of a font pixel on the sheet, 1 if zero.
	Scale int
	// Labels prints the code of each glyph above it.
	Labels bool
}

var sheetPalette = color.Palette{
	color.White,
	color.Black,
	color.RGBA{0x80, 0x80, 0x80, 0xff},
}

// Render draws every complete glyph of f on a sheet. Cells are separated
// and surrounded by a gap of one font pixel.
func Render(f *bitfont.Font, options *RenderOptions) *image.Paletted {
	var opts RenderOptions
	if options != nil {
		opts = *options
	}
	if opts.Columns <= 0 {
		opts.Columns = 16
	}
	if opts.Scale <= 0 {
		opts.Scale = 1
	}

	n := f.Len()
	w, h := f.RowWidth(), max(f.Height, 0)
	gap := opts.Scale
	glyphW, glyphH := w*opts.Scale, h*opts.Scale

	face := basicfont.Face7x13
	labelH := 0
	format := fmt.Sprintf("%%0%dx", len(fmt.Sprintf("%02x", max(n-1, 0))))
	cellW := glyphW
	if opts.Labels {
		labelH = face.Height
		cellW = max(cellW, font.MeasureString(face, fmt.Sprintf(format, 0)).Ceil())
	}
	cellH := labelH + glyphH

	cols := min(opts.Columns, n)
	lines := 0
	if cols > 0 {
		lines = (n + cols - 1) / cols
	}
	sheet := image.NewPaletted(image.Rect(0, 0,
		gap+cols*(cellW+gap), gap+lines*(cellH+gap)), sheetPalette)

	glyph := image.NewPaletted(image.Rect(0, 0, w, h), sheetPalette)
	labels := &font.Drawer{
		Dst:  sheet,
		Src:  image.NewUniform(sheetPalette[2]),
		Face: face,
	}
	for code := 0; code < n; code++ {
		x0 := gap + (code%cols)*(cellW+gap)
		y0 := gap + (code/cols)*(cellH+gap)

		if opts.Labels {
			labels.Dot = fixed.P(x0, y0+face.Ascent)
			labels.DrawString(fmt.Sprintf(format, code))
		}

		for y, row := range f.Glyph(code) {
			for x := 0; x < w; x++ {
				var c uint8
				if f.Pixel(row, x) {
					c = 1
				}
				glyph.SetColorIndex(x, y, c)
			}
		}
		dr := image.Rect(x0, y0+labelH, x0+glyphW, y0+labelH+glyphH)
		draw.NearestNeighbor.Scale(sheet, dr, glyph, glyph.Bounds(), draw.Src, nil)
	}
	return sheet
}

// Encode writes img as "png" or "bmp".
func Encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case "png":
		return png.Encode(w, img)
	case "bmp":
		return bmp.Encode(w, img)
	}
	return fmt.Errorf("unsupported image format %q", format)
}
