// makefont is a commandline tool for compiling bitmap fonts into the raw
// form used by the console: one byte per glyph row, glyphs back to back.
// Fonts are drawn in a text file with '.' for unset and '@' for set
// pixels, one row per line:
//
//	0x41 'A'
//	........
//	...@@...
//	..@..@..
//
// Lines not starting with '.' or '@' are ignored. Then simply run:
//
//	./makefont -o hankaku.bin hankaku.txt
//
// BDF fonts and images of glyph grids can be converted the same way, and
// -dump writes any of them back out as text for editing.
package main

import (
	"errors"
	"flag"
	"fmt"
	"go/token"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"github.com/three-0-3/makefont/internal/bitfont"
	"github.com/three-0-3/makefont/internal/bitfont/bdf"
	fimg "github.com/three-0-3/makefont/internal/bitfont/image"
	"github.com/three-0-3/makefont/internal/bitfont/text"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type config struct {
	input   string
	kind    string
	output  string
	width   int
	height  int
	pkg     string
	dump    bool
	preview string
}

// run executes the command and returns its exit status: 0 on success, 1
// when reading, converting or writing fails, 2 for bad usage.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("makefont", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var cfg config
	fs.StringVar(&cfg.output, "o", "font.out", "path to an output file, - for standard output")
	fs.StringVar(&cfg.kind, "from", "", "input kind: text, bdf or image (default by file extension)")
	fs.IntVar(&cfg.width, "w", 8, "row width in pixels; 0 accepts rows of any width")
	fs.IntVar(&cfg.height, "h", 16, "glyph height in rows")
	fs.StringVar(&cfg.pkg, "pkg", "", "write Go source for package `name` instead of binary")
	fs.BoolVar(&cfg.dump, "dump", false, "write the font as .@ text instead of binary")
	fs.StringVar(&cfg.preview, "preview", "", "also write a glyph sheet to `path` (.png or .bmp)")
	verbose := fs.Bool("v", false, "log conversion details")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: makefont [flags] font")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	cfg.input = fs.Arg(0)

	outputSet := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "o" {
			outputSet = true
		}
	})
	if cfg.pkg != "" && !outputSet {
		cfg.output = cfg.pkg + ".go"
	}

	if err := cfg.check(); err != nil {
		fmt.Fprintln(stderr, "makefont:", err)
		fs.Usage()
		return 2
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	bitfont.SetLogger(logger)
	defer bitfont.SetLogger(nil)

	if err := cfg.execute(stdout); err != nil {
		fmt.Fprintln(stderr, "makefont:", err)
		return 1
	}
	return 0
}

var imageExts = map[string]bool{
	".png": true, ".gif": true, ".jpg": true, ".jpeg": true, ".bmp": true,
}

func (cfg *config) check() error {
	if cfg.kind == "" {
		ext := strings.ToLower(filepath.Ext(cfg.input))
		switch {
		case ext == ".bdf":
			cfg.kind = "bdf"
		case imageExts[ext]:
			cfg.kind = "image"
		default:
			cfg.kind = "text"
		}
	}
	switch cfg.kind {
	case "text", "bdf", "image":
	default:
		return fmt.Errorf("unknown input kind %q", cfg.kind)
	}

	if cfg.width < 0 || cfg.width > 8 {
		return text.ErrWidth
	}
	if cfg.height <= 0 {
		return errors.New("glyph height must be positive")
	}
	if cfg.pkg != "" {
		if cfg.dump {
			return errors.New("-pkg and -dump cannot be combined")
		}
		if !token.IsIdentifier(cfg.pkg) {
			return fmt.Errorf("%q is not a valid package name", cfg.pkg)
		}
	}
	if cfg.preview != "" {
		if _, err := previewFormat(cfg.preview); err != nil {
			return err
		}
	}
	return nil
}

func previewFormat(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "png", nil
	case ".bmp":
		return "bmp", nil
	}
	return "", fmt.Errorf("preview %s: use a .png or .bmp file name", path)
}

func (cfg *config) execute(stdout io.Writer) error {
	font, err := cfg.load()
	if err != nil {
		return err
	}

	write := func(w io.Writer) error {
		switch {
		case cfg.dump:
			return text.Encode(w, font)
		case cfg.pkg != "":
			return writeGoSource(w, cfg.pkg, font)
		}
		_, err := w.Write(font.Rows)
		return err
	}

	if cfg.output == "-" {
		if !cfg.dump && cfg.pkg == "" && isTerminal(stdout) {
			return errors.New("refusing to write font data to a terminal, use -o or -dump")
		}
		if err := write(stdout); err != nil {
			return err
		}
	} else {
		if err := writeFile(cfg.output, write); err != nil {
			return err
		}
		bitfont.Logger().Info("wrote font", "path", cfg.output, "rows", len(font.Rows), "glyphs", font.Len())
	}

	if cfg.preview != "" {
		format, _ := previewFormat(cfg.preview)
		sheet := fimg.Render(font, &fimg.RenderOptions{Scale: 2, Labels: true})
		err := writeFile(cfg.preview, func(w io.Writer) error {
			return fimg.Encode(w, sheet, format)
		})
		if err != nil {
			return err
		}
		bitfont.Logger().Info("wrote preview", "path", cfg.preview)
	}
	return nil
}

// load reads the input file and converts it to a packed font.
func (cfg *config) load() (*bitfont.Font, error) {
	f, err := os.Open(cfg.input)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var font *bitfont.Font
	switch cfg.kind {
	case "bdf":
		font, err = bdf.Decode(f, &bdf.Options{Height: cfg.height})
	case "image":
		font, err = fimg.Decode(f, &fimg.Options{Width: cfg.width, Height: cfg.height})
	default:
		var rows []byte
		rows, err = text.Decode(f, &text.Options{Width: cfg.width})
		font = &bitfont.Font{Width: cfg.width, Height: cfg.height, Rows: rows}
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.input, err)
	}
	return font, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
