// Package bitfont holds the packed representation shared by the font
// source converters: one byte per glyph row, glyphs stored back to back.
package bitfont

// Font is a fixed-width bitmap font packed one byte per row.
type Font struct {
	// Width is the number of pixels per row, held in the low Width bits
	// of each row byte with the leftmost pixel in the highest of them.
	// At most 8.
	Width int
	// Height is the number of rows per glyph.
	Height int
	Rows   []byte
}

// Len returns the number of complete glyphs in f.
func (f *Font) Len() int {
	if f.Height <= 0 {
		return 0
	}
	return len(f.Rows) / f.Height
}

// Glyph returns the rows of the glyph for code, or nil if the glyph lies
// outside the packed data. Glyphs are addressed as Height*code, the same
// way the console renderer looks them up.
func (f *Font) Glyph(code int) []byte {
	if code < 0 || code >= f.Len() {
		return nil
	}
	i := code * f.Height
	return f.Rows[i : i+f.Height : i+f.Height]
}

// RowWidth returns Width, or 8 when Width is unset or larger than a byte.
func (f *Font) RowWidth() int {
	if f.Width <= 0 || f.Width > 8 {
		return 8
	}
	return f.Width
}

// Pixel reports whether pixel x of row is set, x counting from the left.
func (f *Font) Pixel(row byte, x int) bool {
	w := f.RowWidth()
	if x < 0 || x >= w {
		return false
	}
	return row&(1<<(w-1-x)) != 0
}
