package text

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/encoding/unicode"

	"github.com/three-0-3/makefont/internal/bitfont"
)

func TestCompile(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []byte
	}{
		{"single row", "@@@.....", []byte{0xe0}},
		{"all unset", "........\n", []byte{0x00}},
		{"all set", "@@@@@@@@\n", []byte{0xff}},
		{"no rows", "hello\nworld\n", nil},
		{"empty", "", nil},
		{"source order", ".@......\n@.......\n", []byte{0x40, 0x80}},
		{"trailing comment", "@@@..... # comment\n", []byte{0xe0}},
		{"leading whitespace", "\n\n   \t@@@.....\n.......@\n", []byte{0xe0, 0x01}},
		{"indented later line", "@.......\n  @.......\n", []byte{0x80}},
		{"interspersed", "0x41 'A'\n@.......\n\n# note\n.@......\nfoo\n", []byte{0x80, 0x40}},
		{"crlf", "@.......\r\n.@......\r\n", []byte{0x80, 0x40}},
		{"lone cr", "@.......\r.@......\r", []byte{0x80, 0x40}},
		{"form feed", "@.......\f.@......", []byte{0x80, 0x40}},
		{"line separator", "@.......\u2028.@......", []byte{0x80, 0x40}},
		// rows not 8 pixels wide fold to their value modulo 256
		{"narrow row", "@.@\n", []byte{0x05}},
		{"wide row", "@@@@@@@@@@\n", []byte{0xff}},
		{"wide row high bits dropped", "@.........\n", []byte{0x00}},
		{"single pixel", "@", []byte{0x01}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compile(tt.src)
			if d := cmp.Diff(tt.want, got, cmp.Comparer(bytes.Equal)); d != "" {
				t.Errorf("Compile(%q) (-want +got):\n%s", tt.src, d)
			}
		})
	}
}

func TestCompileFraming(t *testing.T) {
	var src strings.Builder
	rows := 0
	for i := 0; i < 300; i++ {
		switch i % 3 {
		case 0:
			src.WriteString("@.@.@.@.\n")
			rows++
		case 1:
			src.WriteString("not a row @@@@\n")
		case 2:
			src.WriteString("\n")
		}
	}

	first := Compile(src.String())
	if len(first) != rows {
		t.Fatalf("expected %d bytes, got %d", rows, len(first))
	}
	for i, b := range first {
		if b != 0xaa {
			t.Fatalf("byte %d: expected %08b got %08b", i, 0xaa, b)
		}
	}

	if second := Compile(src.String()); !bytes.Equal(first, second) {
		t.Error("compiling the same source twice gave different output")
	}
}

func TestCompileBitOrder(t *testing.T) {
	for bit := 0; bit < 8; bit++ {
		row := []byte("........")
		row[bit] = '@'
		got := Compile(string(row))
		want := byte(0x80 >> bit)
		if len(got) != 1 || got[0] != want {
			t.Errorf("row %s: expected %08b got %08b", row, want, got)
		}
	}
}

func TestCompileLongLine(t *testing.T) {
	// longer than bufio's default token limit
	src := "@......." + strings.Repeat(" ", 128*1024) + "\n.@......\n"
	got := Compile(src)
	if d := cmp.Diff([]byte{0x80, 0x40}, got); d != "" {
		t.Errorf("(-want +got):\n%s", d)
	}
}

func TestDecodeStrict(t *testing.T) {
	src := "\n\n0x00\n........\n@@@@@@@@\n@@@@@@@@@ too wide\n"
	_, err := Decode(strings.NewReader(src), &Options{Width: 8})

	var mismatch *RowWidthMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected a RowWidthMismatchError, got %v", err)
	}
	want := RowWidthMismatchError{Line: 6, Width: 9, Want: 8}
	if *mismatch != want {
		t.Errorf("expected %+v, got %+v", want, *mismatch)
	}
	if msg := err.Error(); msg != "line 6: row is 9 pixels wide, want 8" {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestDecodeStrictCRLF(t *testing.T) {
	src := "........\r\n@@@@@@@@\r\n@@@@\r\n"
	_, err := Decode(strings.NewReader(src), &Options{Width: 8})

	var mismatch *RowWidthMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected a RowWidthMismatchError, got %v", err)
	}
	if mismatch.Line != 3 || mismatch.Width != 4 {
		t.Errorf("unexpected mismatch %+v", *mismatch)
	}
}

func TestDecodeNarrowWidth(t *testing.T) {
	got, err := Decode(strings.NewReader("@.@.@\n.@.@.\n"), &Options{Width: 5})
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff([]byte{0b10101, 0b01010}, got); d != "" {
		t.Errorf("(-want +got):\n%s", d)
	}
}

func TestDecodePermissive(t *testing.T) {
	src := "@.@\n@@@@@@@@@@\n"
	for _, options := range []*Options{nil, {}} {
		got, err := Decode(strings.NewReader(src), options)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, Compile(src)) {
			t.Errorf("options %v: expected %v got %v", options, Compile(src), got)
		}
	}
}

func TestDecodeBadWidth(t *testing.T) {
	for _, w := range []int{-1, 9, 16} {
		_, err := Decode(strings.NewReader("@"), &Options{Width: w})
		if !errors.Is(err, ErrWidth) {
			t.Errorf("width %d: expected ErrWidth, got %v", w, err)
		}
	}
}

func TestDecodeUTF16(t *testing.T) {
	src := "  glyph\r\n@@@.....\r\n.......@\r\n"
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	utf16, err := enc.String(src)
	if err != nil {
		t.Fatal(err)
	}

	got, err := Decode(strings.NewReader(utf16), &Options{Width: 8})
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff([]byte{0xe0, 0x01}, got); d != "" {
		t.Errorf("(-want +got):\n%s", d)
	}
}

func TestDecodeUTF8BOM(t *testing.T) {
	got, err := Decode(strings.NewReader("\ufeff@@@.....\n"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff([]byte{0xe0}, got); d != "" {
		t.Errorf("(-want +got):\n%s", d)
	}
}

type failingReader struct{}

var errRead = errors.New("read failed")

func (failingReader) Read([]byte) (int, error) { return 0, errRead }

func TestDecodeReadError(t *testing.T) {
	_, err := Decode(failingReader{}, nil)
	if !errors.Is(err, errRead) {
		t.Errorf("expected the read error, got %v", err)
	}
}

func TestEncode(t *testing.T) {
	f := &bitfont.Font{
		Width:  8,
		Height: 2,
		Rows:   []byte{0xe0, 0x01, 0xff, 0x00},
	}
	var buf bytes.Buffer
	if err := Encode(&buf, f); err != nil {
		t.Fatal(err)
	}

	want := `0x00
@@@.....
.......@
0x01
@@@@@@@@
........
`
	if d := cmp.Diff(want, buf.String()); d != "" {
		t.Errorf("(-want +got):\n%s", d)
	}
}

func TestEncodeHeaders(t *testing.T) {
	rows := make([]byte, 0x43)
	f := &bitfont.Font{Width: 3, Height: 1, Rows: rows}

	var buf bytes.Buffer
	if err := Encode(&buf, f); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, header := range []string{"0x41 'A'\n...\n", "0x20 ' '\n", "0x0a\n"} {
		if !strings.Contains(out, header) {
			t.Errorf("output lacks %q", header)
		}
	}
}

func TestEncodePartial(t *testing.T) {
	f := &bitfont.Font{Width: 8, Height: 2, Rows: []byte{0x80, 0x40, 0x20}}
	var buf bytes.Buffer
	if err := Encode(&buf, f); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "0x01 (partial)\n..@.....\n") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestEncodeCompile(t *testing.T) {
	tests := []*bitfont.Font{
		{Width: 8, Height: 16, Rows: seq(16 * 4)},
		{Width: 8, Height: 8, Rows: seq(8*3 + 5)},
		{Width: 5, Height: 2, Rows: []byte{0b10101, 0b01010, 0b11111, 0}},
		{Rows: seq(10)},
	}

	for _, f := range tests {
		var buf bytes.Buffer
		if err := Encode(&buf, f); err != nil {
			t.Fatal(err)
		}
		got, err := Decode(&buf, &Options{Width: f.RowWidth()})
		if err != nil {
			t.Fatal(err)
		}
		if d := cmp.Diff(f.Rows, got); d != "" {
			t.Errorf("width %d height %d (-want +got):\n%s", f.Width, f.Height, d)
		}
	}
}

func seq(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i * 37)
	}
	return b
}
