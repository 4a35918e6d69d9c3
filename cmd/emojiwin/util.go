package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"

	"github.com/emojiwin/emojiwin/font"
	"github.com/flopp/go-findfont"
	"github.com/tdewolff/prompt"
	"golang.org/x/term"
)

var extMimetype = map[string]string{
	".ttf":   "font/truetype",
	".otf":   "font/opentype",
	".woff2": "font/woff2",
}

func formatBytes(size uint64) string {
	if size < 10 {
		return fmt.Sprintf("%d B", size)
	}

	units := []string{"B", "kB", "MB", "GB", "TB", "PB", "EB"}
	scale := int(math.Floor((math.Log10(float64(size)) + math.Log10(2.0)) / 3.0))
	value := float64(size) / math.Pow10(scale*3.0)
	format := "%.0f %s"
	if value < 10.0 {
		format = "%.1f %s"
	}
	return fmt.Sprintf(format, value, units[scale])
}

// resolveFont returns the filename of the input. Names that are not an existing file are looked up as system fonts, eg. "Apple Color Emoji.ttc".
func resolveFont(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("input file name not set")
	} else if name == "-" {
		return name, nil
	}
	if _, err := os.Stat(name); err == nil || !errors.Is(err, fs.ErrNotExist) {
		return name, nil
	}
	filename, err := findfont.Find(name)
	if err != nil || filename == "" {
		return "", fmt.Errorf("%s: %w", name, fs.ErrNotExist)
	}
	Info.Printf("%s: using system font %s", name, filename)
	return filename, nil
}

func readFont(filename string, index int) (*font.SFNT, int, error) {
	var err error
	var r *os.File
	if filename == "-" {
		r = os.Stdin
	} else if r, err = os.Open(filename); err != nil {
		return nil, 0, err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		r.Close()
		return nil, 0, err
	} else if err := r.Close(); err != nil {
		return nil, 0, err
	}

	n := len(b)
	if b, err = font.ToSFNT(b); err != nil {
		return nil, 0, err
	}
	sfnt, err := font.ParseSFNT(b, index)
	if err != nil {
		return nil, 0, err
	}
	return sfnt, n, nil
}

// confirmOverwrite asks before an existing file is overwritten.
func confirmOverwrite(filename string, force bool) error {
	if filename == "-" || force {
		return nil
	}
	if _, err := os.Stat(filename); err == nil {
		if !prompt.YesNo(fmt.Sprintf("%s already exists, overwrite?", filename), false) {
			return fmt.Errorf("%s: file already exists", filename)
		}
	}
	return nil
}

// console prints the conversion events and progress to stderr. On a terminal the progress is a single line that is redrawn in place, otherwise each step is printed on its own line.
type console struct {
	quiet bool
	tty   bool
	width int
	line  string
}

func newConsole(quiet bool) *console {
	c := &console{quiet: quiet}
	fd := int(os.Stderr.Fd())
	if !quiet && term.IsTerminal(fd) {
		c.tty = true
		if width, _, err := term.GetSize(fd); err == nil {
			c.width = width
		}
	}
	return c
}

// Printf receives the events of the conversion.
func (c *console) Printf(format string, args ...interface{}) {
	c.clear()
	Info.Printf(format, args...)
	c.draw()
}

// Warnf receives the warnings of the conversion.
func (c *console) Warnf(format string, args ...interface{}) {
	c.clear()
	Warning.Printf(format, args...)
	c.draw()
}

// Progress receives the progress of the conversion.
func (c *console) Progress(step, total int, desc string) {
	if c.quiet {
		return
	}
	line := fmt.Sprintf("[%d/%d] %s", step, total, desc)
	if !c.tty {
		Info.Println(line)
		return
	}
	c.clear()
	if 0 < c.width && c.width <= len(line) {
		line = line[:c.width-1]
	}
	c.line = line
	c.draw()
}

// Done ends the progress line.
func (c *console) Done() {
	if c.tty && c.line != "" {
		fmt.Fprintln(os.Stderr)
		c.line = ""
	}
}

func (c *console) clear() {
	if c.tty && c.line != "" {
		fmt.Fprint(os.Stderr, "\r\x1b[K")
	}
}

func (c *console) draw() {
	if c.tty && c.line != "" {
		fmt.Fprint(os.Stderr, c.line)
	}
}
