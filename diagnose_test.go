package emojiwin

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/emojiwin/emojiwin/internal/fonttest"
	"github.com/emojiwin/emojiwin/raster"
	"github.com/tdewolff/test"
)

func TestDiagnose(t *testing.T) {
	png := fonttest.PNG(8, 8)
	var tests = []struct {
		name      string
		strike    fonttest.Strike
		probes    [2]string
		issues    []string
		solutions []string
	}{
		{"unusual size", fonttest.Strike{
			PPEMX:  137,
			PPEMY:  137,
			Glyphs: []fonttest.Glyph{{ID: 1, Image: png, Width: 137, Height: 137}},
		}, [2]string{"strike", "ppem"}, []string{
			"Strike 0: Unusual size 137x137 - DirectWrite prefers [16 20 24 32 40 48 64 96 128]",
		}, []string{
			"Add standard DirectWrite bitmap sizes",
		}},
		{"big metrics", fonttest.Strike{
			PPEMX:       64,
			PPEMY:       64,
			ImageFormat: 18,
			Glyphs:      []fonttest.Glyph{{ID: 1, Image: png, Width: 64, Height: 64}},
		}, [2]string{"strike", "ppem"}, []string{
			"Strike 0: DirectWrite prefers PNG format (17), found 18 (PNG with big metrics)",
		}, []string{
			"Convert bitmap formats to PNG (format 17)",
		}},
		{"size from glyph", fonttest.Strike{
			Glyphs: []fonttest.Glyph{{ID: 1, Image: png, Width: 64, Height: 64}},
		}, [2]string{"strike", "glyph metrics"}, nil, []string{}},
		{"empty", fonttest.Strike{NoSubtables: true}, [2]string{}, []string{
			"Strike 0: Cannot determine image format - this is critical for DirectWrite",
			"Strike 0: Cannot determine strike size",
			"Strike 0: Missing or empty index subtables",
		}, []string{
			"Convert bitmap formats to PNG (format 17)",
			"Add standard DirectWrite bitmap sizes",
			"Fix glyph index table structure",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Diagnose(loadFont(t, appleFont(tt.strike)))
			test.T(t, d.HasCBLC, true)
			test.T(t, d.HasCBDT, true)
			test.T(t, d.HasSbix, false)
			test.T(t, len(d.Strikes), 1)
			test.T(t, d.NumGlyphs, uint16(4))

			info := d.Strikes[0]
			test.T(t, info.FormatProbe, tt.probes[0])
			test.T(t, info.SizeProbe, tt.probes[1])
			test.T(t, info.Issues, tt.issues)
			test.T(t, d.Issues, tt.issues)
			test.T(t, d.Solutions(), tt.solutions)
		})
	}
}

func TestDiagnoseStrikeInfo(t *testing.T) {
	png := fonttest.PNG(8, 8)
	d := Diagnose(loadFont(t, appleFont(fonttest.Strike{
		PPEMX: 96,
		PPEMY: 96,
		Glyphs: []fonttest.Glyph{
			{ID: 2, Image: png, Width: 96, Height: 96},
			{ID: 3, Image: png, Width: 96, Height: 96},
		},
	})))
	info := d.Strikes[0]
	test.T(t, info.Name(), "Strike 0")
	test.T(t, info.Format, uint16(17))
	test.T(t, info.FormatFound, true)
	test.T(t, info.Image, raster.PNG)
	test.T(t, info.Width, 96)
	test.T(t, info.Height, 96)
	test.T(t, info.NumSubtables, 1)
	test.T(t, info.NumGlyphs, 2)
	test.T(t, d.Covered, uint(2))
	test.T(t, len(d.Issues), 0)

	buf := &bytes.Buffer{}
	_, err := d.WriteTo(buf)
	test.Error(t, err)
	report := buf.String()
	test.That(t, strings.HasPrefix(report, "=== CBDT/CBLC DIRECTWRITE DIAGNOSTIC ===\n"))
	test.That(t, strings.Contains(report, "Bitmap glyphs: 2 of 4 glyphs\n"))
	test.That(t, strings.Contains(report, "  Image format: PNG with small metrics (code: 17, from strike)\n"))
	test.That(t, strings.Contains(report, "  Size: 96x96 pixels (from ppem)\n"))
	test.That(t, strings.Contains(report, "✓ No obvious CBDT/CBLC DirectWrite compatibility issues found\n"))
	test.That(t, !strings.Contains(report, "POTENTIAL SOLUTIONS"))
}

func TestDiagnoseSbix(t *testing.T) {
	f := appleFont()
	f.Tables = map[string][]byte{"sbix": fonttest.Sbix(4, 160, map[uint16][]byte{1: fonttest.PNG(8, 8), 3: fonttest.PNG(8, 8)})}
	d := Diagnose(loadFont(t, f))
	test.T(t, d.HasCBLC, false)
	test.T(t, d.HasSbix, true)
	test.T(t, len(d.Strikes), 1)

	info := d.Strikes[0]
	test.T(t, info.Name(), "sbix strike 0")
	test.T(t, info.Format, uint16(17))
	test.T(t, info.FormatProbe, "strike")
	test.T(t, info.SizeProbe, "combined ppem")
	test.T(t, info.NumGlyphs, 2)
	test.T(t, d.Covered, uint(2))
	test.T(t, d.Issues, []string{
		"sbix strike 0: Unusual size 160x160 - DirectWrite prefers [16 20 24 32 40 48 64 96 128]",
	})

	buf := &bytes.Buffer{}
	_, err := d.WriteTo(buf)
	test.Error(t, err)
	test.That(t, strings.Contains(buf.String(), "⚠ No CBDT/CBLC tables found\n"))
	test.That(t, strings.Contains(buf.String(), "ROOT CAUSE ANALYSIS:\n"))
	test.That(t, strings.Contains(buf.String(), "• Add standard DirectWrite bitmap sizes\n"))
}

func TestDiagnoseDamaged(t *testing.T) {
	f := appleFont(appleStrike())
	sfnt := loadFont(t, f)
	cblc := append([]byte{}, sfnt.Table("CBLC")...)
	binary.BigEndian.PutUint32(cblc[4:], 5)
	f.Tables = map[string][]byte{"CBLC": cblc}

	d := Diagnose(loadFont(t, f))
	test.T(t, d.HasCBLC, true)
	test.T(t, len(d.Strikes), 0)
	test.T(t, len(d.Issues), 1)
	test.That(t, strings.HasPrefix(d.Issues[0], "CBLC: Unreadable table: "))

	// glyph data beyond CBDT
	f.Tables = map[string][]byte{"CBDT": {0, 3, 0, 0}}
	d = Diagnose(loadFont(t, f))
	test.That(t, 0 < len(d.Issues))
	test.That(t, strings.HasPrefix(d.Issues[0], "Strike 0: "))
	test.T(t, d.Strikes[0].FormatFound, true)

	// no font tables at all
	sfnt = loadFont(t, appleFont())
	sfnt.Maxp = nil
	d = Diagnose(sfnt)
	test.T(t, d.NumGlyphs, uint16(0))
	test.T(t, len(d.Strikes), 0)
	test.T(t, len(d.Issues), 0)
	buf := &bytes.Buffer{}
	_, err := d.WriteTo(buf)
	test.Error(t, err)
	test.That(t, strings.Contains(buf.String(), "Found 0 bitmap strikes\n"))
}
