// Package text compiles font sources written as rows of '.' (unset) and
// '@' (set) pixels into packed bytes, one byte per row:
//
//	0x41 'A'
//	........
//	...@@...
//	..@..@..   trailing text is ignored
//	.@....@.
//
// Lines that do not start with '.' or '@' are skipped. The first row
// character becomes the most significant bit of the row value.
package text

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	encunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/three-0-3/makefont/internal/bitfont"
)

// ErrWidth is returned for a row width that does not fit a byte.
var ErrWidth = errors.New("row width must be between 1 and 8")

// RowWidthMismatchError reports a row whose width differs from the
// expected one.
type RowWidthMismatchError struct {
	Line  int // 1-based, in the source as given
	Width int
	Want  int
}

func (err *RowWidthMismatchError) Error() string {
	return "line " + strconv.Itoa(err.Line) + ": row is " +
		strconv.Itoa(err.Width) + " pixels wide, want " + strconv.Itoa(err.Want)
}

type Options struct {
	// Width is the number of pixels every row must have. Zero accepts rows
	// of any width and keeps the low 8 bits of their value.
	Width int
}

// Compile converts src into packed rows. It never fails: rows wider than
// 8 pixels are truncated to their last 8 pixels.
func Compile(src string) []byte {
	out, _ := compile(strings.NewReader(src), 0)
	return out
}

// Decode reads a font source from r and compiles it. The source is UTF-8
// unless it starts with a UTF-16 byte order mark.
func Decode(r io.Reader, options *Options) ([]byte, error) {
	var want int
	if options != nil {
		want = options.Width
	}
	if want < 0 || want > 8 {
		return nil, ErrWidth
	}
	r = transform.NewReader(r, encunicode.BOMOverride(encunicode.UTF8.NewDecoder()))
	return compile(r, want)
}

func compile(r io.Reader, want int) ([]byte, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, math.MaxInt)
	scanner.Split(scanLines)

	var out []byte
	line, skipped := 0, 0
	leading := true
	for scanner.Scan() {
		line++
		s := scanner.Text()
		if leading {
			// leading whitespace of the whole source is dropped, including
			// the indentation of the first non-blank line
			s = strings.TrimLeftFunc(s, isSpace)
			if s == "" {
				continue
			}
			leading = false
		}

		row := matchRow(s)
		if row == "" {
			skipped++
			continue
		}
		if want > 0 && len(row) != want {
			return nil, &RowWidthMismatchError{Line: line, Width: len(row), Want: want}
		}
		out = append(out, rowToByte(row))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	bitfont.Logger().Debug("compiled font source",
		"lines", line, "rows", len(out), "skipped", skipped)
	return out, nil
}

// matchRow returns the run of '.' and '@' at the start of s.
func matchRow(s string) string {
	i := 0
	for i < len(s) && (s[i] == '.' || s[i] == '@') {
		i++
	}
	return s[:i]
}

// rowToByte folds a row MSB first. Shifting a byte drops the bits a wider
// row would carry past the eighth, so the result is the row value modulo
// 256.
func rowToByte(row string) byte {
	var b byte
	for i := 0; i < len(row); i++ {
		b <<= 1
		if row[i] == '@' {
			b |= 1
		}
	}
	return b
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// scanLines is a bufio.SplitFunc breaking at \n, \r\n and \r, and at the
// other Unicode line boundaries (\v, \f, \x1c-\x1e, NEL, LS, PS). The
// terminator is not part of the token.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	for i := 0; i < len(data); {
		if !atEOF && !utf8.FullRune(data[i:]) {
			return 0, nil, nil
		}
		r, n := utf8.DecodeRune(data[i:])
		switch r {
		case '\r':
			if i+1 == len(data) && !atEOF {
				// a \n may follow
				return 0, nil, nil
			}
			if i+1 < len(data) && data[i+1] == '\n' {
				n++
			}
			return i + n, data[:i], nil
		case '\n', '\v', '\f', 0x1c, 0x1d, 0x1e, 0x85, 0x2028, 0x2029:
			return i + n, data[:i], nil
		}
		i += n
	}
	if atEOF && len(data) > 0 {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// Encode writes f as font source. Each glyph gets a header line with its
// code, which the compiler skips, followed by one line per row. Rows left
// over after the last complete glyph are written under their own header.
func Encode(w io.Writer, f *bitfont.Font) error {
	bw := bufio.NewWriter(w)
	height := f.Height
	if height <= 0 {
		height = len(f.Rows)
	}
	width := f.RowWidth()

	line := make([]byte, width+1)
	line[width] = '\n'
	for i := 0; i < len(f.Rows); i += height {
		code := i / height
		end := min(i+height, len(f.Rows))
		header := fmt.Sprintf("0x%02x", code)
		if code < utf8.RuneSelf && strconv.IsPrint(rune(code)) {
			header += " " + strconv.QuoteRune(rune(code))
		}
		if end-i < height {
			header += " (partial)"
		}
		if _, err := fmt.Fprintln(bw, header); err != nil {
			return err
		}
		for _, row := range f.Rows[i:end] {
			for x := 0; x < width; x++ {
				if f.Pixel(row, x) {
					line[x] = '@'
				} else {
					line[x] = '.'
				}
			}
			if _, err := bw.Write(line); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}
