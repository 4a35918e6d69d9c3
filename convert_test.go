package emojiwin

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/emojiwin/emojiwin/font"
	"github.com/emojiwin/emojiwin/internal/fonttest"
	"github.com/tdewolff/test"
)

type testLogger struct {
	lines    []string
	warnings []string
}

func (l *testLogger) Printf(format string, args ...interface{}) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func (l *testLogger) Warnf(format string, args ...interface{}) {
	l.warnings = append(l.warnings, fmt.Sprintf(format, args...))
}

func (l *testLogger) Contains(s string) bool {
	return containsLine(l.lines, s)
}

func (l *testLogger) Warned(s string) bool {
	return containsLine(l.warnings, s)
}

func containsLine(lines []string, s string) bool {
	for _, line := range lines {
		if strings.Contains(line, s) {
			return true
		}
	}
	return false
}

func loadFont(t *testing.T, f fonttest.Font) *font.SFNT {
	t.Helper()
	sfnt, err := font.ParseSFNT(f.Bytes(), 0)
	test.Error(t, err)
	return sfnt
}

// reload writes and parses the font again.
func reload(t *testing.T, sfnt *font.SFNT) *font.SFNT {
	t.Helper()
	b, err := sfnt.Write()
	test.Error(t, err)
	sfnt, err = font.ParseSFNT(b, 0)
	test.Error(t, err)
	test.T(t, len(sfnt.TableErrors), 0)
	return sfnt
}

// appleFont looks like Apple Color Emoji: no Windows BMP character map, glyph names, bold style, and an old OS/2 table.
func appleFont(strikes ...fonttest.Strike) fonttest.Font {
	return fonttest.Font{
		NumGlyphs:   4,
		Cmap:        map[rune]uint16{'#': 1, 0x2764: 2, 0x1F600: 3},
		CmapRecords: []fonttest.CmapRecord{{Platform: 0, Encoding: 3, Format: 4}, {Platform: 3, Encoding: 10, Format: 12}},
		OS2Version:  1,
		MacStyle:    0x0001,
		PostNames:   true,
		Strikes:     strikes,
	}
}

// appleStrike is a 137×137 strike with two PNG glyphs and a corrupt glyph.
func appleStrike() fonttest.Strike {
	png := fonttest.PNG(137, 137)
	return fonttest.Strike{
		PPEMX:     137,
		PPEMY:     137,
		Ascender:  110,
		Descender: -27,
		Glyphs: []fonttest.Glyph{
			{ID: 1, Image: png, Width: 137, Height: 137},
			{ID: 2, Image: png, Width: 137, Height: 137},
			{ID: 3, Record: []byte{1, 2, 3, 4, 5}},
		},
	}
}

func TestConvertFont(t *testing.T) {
	sfnt := loadFont(t, appleFont(appleStrike()))

	steps := []int{}
	log := &testLogger{}
	result, err := ConvertFont(sfnt, &Options{
		Workers: 2,
		Log:     log,
		Progress: func(step, total int, desc string) {
			test.T(t, total, NumSteps)
			steps = append(steps, step)
		},
	})
	test.Error(t, err)
	test.T(t, steps, []int{2, 3, 4, 5, 6, 7, 8, 9, 10, 10})
	test.T(t, result.Cmap, CmapReport{SynthesizedBMP: true, BMPCount: 2})
	test.T(t, result.BitmapsFixed, true)
	test.T(t, result.Strikes.Modified, 1)
	test.T(t, result.GlyphCount, uint16(4))
	test.T(t, result.Tables, []string{"CBDT", "CBLC", "OS/2", "cmap", "head", "hhea", "maxp", "name", "post"})
	test.That(t, log.Contains("found CBDT/CBLC color bitmap tables"))
	test.That(t, log.Warned("missing essential tables: hmtx"))
	test.That(t, !log.Contains("missing essential tables"), "warnings are not events")
	test.That(t, !log.Warned("bitmap resizing failed"))

	out := reload(t, sfnt)
	test.T(t, out.Cmap.Find(font.PlatformWindows, font.EncodingWindowsUnicodeBMP) != -1, true)
	test.T(t, out.Name.Get(font.NameFontFamily)[0].String(), "Segoe UI Emoji")
	test.T(t, out.OS2.Version, uint16(4))
	test.T(t, out.Head.MacStyle, [16]bool{})
	test.T(t, out.Post.Version, uint32(0x00030000))
	test.T(t, out.CBLC.Strikes[0].PPEMX, uint8(128))

	// only advisory notes remain
	test.T(t, Analyze(out).Notes, []string{
		"Font uses CBDT/CBLC bitmaps, Windows prefers COLR/CPAL and some applications may not render them",
		"Missing essential tables: hmtx",
	})
	test.T(t, len(Diagnose(out).Issues), 0)
}

func TestConvertFontNoBitmaps(t *testing.T) {
	sfnt := loadFont(t, appleFont())
	log := &testLogger{}
	result, err := ConvertFont(sfnt, &Options{Log: log})
	test.Error(t, err)
	test.T(t, result.BitmapsFixed, false)
	test.T(t, len(result.Strikes.Strikes), 0)
	test.That(t, log.Contains("color: no color tables found"))
	test.That(t, !log.Warned("bitmap resizing failed"))
}

func TestConvertFontBitmapsUnchanged(t *testing.T) {
	png := fonttest.PNG(64, 64)
	sfnt := loadFont(t, appleFont(fonttest.Strike{
		PPEMX:  64,
		PPEMY:  64,
		Glyphs: []fonttest.Glyph{{ID: 1, Image: png, Width: 64, Height: 64}},
	}))
	cblc := sfnt.Table("CBLC")

	log := &testLogger{}
	result, err := ConvertFont(sfnt, &Options{Log: log})
	test.Error(t, err)
	test.T(t, result.BitmapsFixed, false)
	test.T(t, result.Strikes.Strikes[0].Compatible, true)
	test.That(t, log.Warned("bitmap resizing failed"))
	test.Bytes(t, sfnt.Table("CBLC"), cblc)
}

func TestConvertFontNames(t *testing.T) {
	sfnt := loadFont(t, appleFont())
	_, err := ConvertFont(sfnt, &Options{
		Names: []NameString{{font.NameFontFamily, "Noto Color Emoji"}},
	})
	test.Error(t, err)

	out := reload(t, sfnt)
	test.T(t, len(out.Name.NameRecord), 3)
	for _, record := range out.Name.NameRecord {
		test.T(t, record.String(), "Noto Color Emoji")
	}
}

func TestConvert(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "AppleColorEmoji.ttf")
	test.Error(t, os.WriteFile(input, appleFont(appleStrike()).Bytes(), 0644))

	for _, name := range []string{"out.ttf", "out.woff2"} {
		t.Run(name, func(t *testing.T) {
			output := filepath.Join(dir, name)
			descs := []string{}
			result, err := Convert(input, output, &Options{
				Progress: func(step, total int, desc string) {
					descs = append(descs, desc)
				},
			})
			test.Error(t, err)
			test.T(t, result.GlyphCount, uint16(4))
			test.T(t, result.BitmapsFixed, true)
			test.T(t, descs[0], "Loading font...")
			test.T(t, descs[len(descs)-1], "Saving font...")

			b, err := os.ReadFile(output)
			test.Error(t, err)
			mediatype, err := font.MediaType(b)
			test.Error(t, err)
			if name == "out.woff2" {
				test.T(t, mediatype, "font/woff2")
			} else {
				test.T(t, mediatype, "font/truetype")
			}

			out, err := font.Load(output)
			test.Error(t, err)
			test.T(t, out.Name.Get(font.NameFontFamily)[0].String(), "Segoe UI Emoji")
			test.T(t, out.CBLC.Strikes[0].PPEMY, uint8(128))
			test.T(t, out.OS2.FsSelection&0x0080, uint16(0x0080))
		})
	}

	_, err := Convert(filepath.Join(dir, "missing.ttf"), filepath.Join(dir, "out.ttf"), nil)
	test.That(t, errors.Is(err, os.ErrNotExist))

	_, err = Convert(input, filepath.Join(dir, "missing", "out.ttf"), nil)
	test.That(t, err != nil, "output directory does not exist")
}
