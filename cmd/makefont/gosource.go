package main

import (
	"bytes"
	"fmt"
	"go/format"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/three-0-3/makefont/internal/bitfont"
)

// writeGoSource writes font as a Go file declaring the byte slice Font in
// package name, one glyph per line.
func writeGoSource(w io.Writer, name string, font *bitfont.Font) error {
	var buf bytes.Buffer

	// draw a comment header using the new font
	if banner := drawString(font, name); banner != "" {
		buf.WriteString(banner)
		buf.WriteString("//\n")
	}

	height := font.Height
	if height <= 0 {
		height = max(len(font.Rows), 1)
	}
	fmt.Fprintf(&buf, "// Code generated by makefont. DO NOT EDIT.\n\npackage %s\n\n", name)
	fmt.Fprintf(&buf, "// Font holds %d glyphs of %dx%d pixels, one byte per row. The rows of\n", font.Len(), font.RowWidth(), height)
	fmt.Fprintf(&buf, "// glyph c start at Font[%d*c].\n", height)
	buf.WriteString("var Font = []byte{\n")
	for i := 0; i < len(font.Rows); i += height {
		end := min(i+height, len(font.Rows))
		for _, b := range font.Rows[i:end] {
			fmt.Fprintf(&buf, "0x%02x, ", b)
		}
		code := i / height
		fmt.Fprintf(&buf, "// 0x%02x", code)
		if code < utf8.RuneSelf && strconv.IsPrint(rune(code)) {
			buf.WriteString(" " + strconv.QuoteRune(rune(code)))
		}
		if end-i < height {
			buf.WriteString(" (partial)")
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")

	code, err := format.Source(buf.Bytes())
	if err != nil {
		return err
	}
	_, err = w.Write(code)
	return err
}

// drawString renders s with font as comment lines, or returns "" when the
// font lacks a glyph for one of its characters or draws nothing.
func drawString(font *bitfont.Font, s string) string {
	var glyphs [][]byte
	for _, r := range s {
		g := font.Glyph(int(r))
		if g == nil {
			return ""
		}
		glyphs = append(glyphs, g)
	}

	var sb strings.Builder
	inked := false
	for y := 0; y < font.Height; y++ {
		var line strings.Builder
		for _, g := range glyphs {
			for x := 0; x < font.RowWidth(); x++ {
				if font.Pixel(g[y], x) {
					line.WriteByte('@')
					inked = true
				} else {
					line.WriteByte(' ')
				}
			}
		}
		if l := strings.TrimRight(line.String(), " "); l != "" {
			sb.WriteString("// " + l + "\n")
		}
	}
	if !inked {
		return ""
	}
	return sb.String()
}
