package emojiwin

import (
	"bytes"
	"encoding/binary"
	"image/color"
	"image/png"
	"testing"

	"github.com/emojiwin/emojiwin/internal/fonttest"
	"github.com/tdewolff/test"
)

func TestRewriteStrikes(t *testing.T) {
	sfnt := loadFont(t, appleFont(appleStrike()))

	descs := []string{}
	report, err := RewriteStrikes(sfnt, &Options{
		Workers: 2,
		Progress: func(step, total int, desc string) {
			descs = append(descs, desc)
		},
	})
	test.Error(t, err)
	test.T(t, descs, []string{"Processing bitmaps: strike 1/1"})
	test.T(t, report.Success, true)
	test.T(t, report.Modified, 1)

	result := report.Strikes[0]
	test.T(t, result.PPEMX, uint8(137))
	test.T(t, result.Target, 128)
	test.T(t, result.Attempted, 3)
	test.T(t, result.Resampled, 2)
	test.T(t, result.Skipped, 1)
	test.T(t, result.MetadataOnly, false)
	test.T(t, result.Glyphs[2], GlyphResult{GlyphID: 3, Reason: "image data too small"})

	out := reload(t, sfnt)
	strike := out.CBLC.Strikes[0]
	test.T(t, strike.PPEMX, uint8(128))
	test.T(t, strike.PPEMY, uint8(128))
	test.T(t, strike.Hori.Ascender, int8(102))
	test.T(t, strike.Hori.Descender, int8(-25))
	test.T(t, strike.Vert.Ascender, int8(102))

	data := out.CBDT.Strikes[0]
	for _, glyphID := range []uint16{1, 2} {
		glyph := data.Glyphs[glyphID]
		test.T(t, glyph.Format, uint16(17))
		test.T(t, glyph.Small.Width, uint8(128))
		test.T(t, glyph.Small.Height, uint8(128))
		test.T(t, glyph.Small.BearingY, int8(118))

		config, err := png.DecodeConfig(bytes.NewReader(glyph.Image))
		test.Error(t, err)
		test.T(t, config.Width, 128)
		test.T(t, config.Height, 128)
		test.That(t, config.ColorModel == color.NRGBAModel, "PNG must have color type 6")
	}
	test.Bytes(t, data.Glyphs[3].Raw, []byte{1, 2, 3, 4, 5})

	// canonical strikes are left untouched
	cblc, cbdt := out.Table("CBLC"), out.Table("CBDT")
	report, err = RewriteStrikes(out, nil)
	test.Error(t, err)
	test.T(t, report.Success, false)
	test.T(t, report.Strikes[0].Compatible, true)
	test.T(t, report.Strikes[0].Modified, false)
	test.Bytes(t, out.Table("CBLC"), cblc)
	test.Bytes(t, out.Table("CBDT"), cbdt)
}

func TestRewriteStrikesFallback(t *testing.T) {
	var tests = []struct {
		name     string
		strikes  []fonttest.Strike
		empty    bool
		success  bool
		modified int
	}{
		{"corrupt glyphs", []fonttest.Strike{{
			PPEMX:     137,
			PPEMY:     137,
			Ascender:  110,
			Descender: -27,
			Glyphs:    []fonttest.Glyph{{ID: 1, Record: []byte{1, 2, 3, 4, 5}}},
		}}, false, true, 1},
		{"only empty strike", []fonttest.Strike{{
			PPEMX:       137,
			PPEMY:       137,
			Ascender:    110,
			Descender:   -27,
			NoSubtables: true,
		}}, true, false, 0},
		{"empty and resampled strikes", []fonttest.Strike{{
			PPEMX:       137,
			PPEMY:       137,
			Ascender:    110,
			Descender:   -27,
			NoSubtables: true,
		}, {
			PPEMX:  60,
			PPEMY:  60,
			Glyphs: []fonttest.Glyph{{ID: 2, Image: fonttest.PNG(60, 60), Width: 60, Height: 60}},
		}}, true, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sfnt := loadFont(t, appleFont(tt.strikes...))
			report, err := RewriteStrikes(sfnt, nil)
			test.Error(t, err)
			test.T(t, report.Success, tt.success)
			test.T(t, report.Modified, tt.modified)

			result := report.Strikes[0]
			test.T(t, result.MetadataOnly, true)
			test.T(t, result.Modified, true)
			test.T(t, result.Empty, tt.empty)
			test.T(t, result.Resampled, 0)

			out := reload(t, sfnt)
			strike := out.CBLC.Strikes[0]
			test.T(t, strike.PPEMX, uint8(128))
			test.T(t, strike.PPEMY, uint8(128))
			test.T(t, strike.Hori.Ascender, int8(102))
			test.T(t, strike.Hori.Descender, int8(-25))
			test.T(t, strike.Vert.Descender, int8(-25))
		})
	}
}

func TestRewriteStrikesSkip(t *testing.T) {
	image := fonttest.PNG(8, 8)
	sfnt := loadFont(t, appleFont(
		fonttest.Strike{NoSubtables: true},
		fonttest.Strike{
			PPEMX:  128,
			PPEMY:  96,
			Glyphs: []fonttest.Glyph{{ID: 1, Image: image, Width: 128, Height: 96}},
		},
	))
	log := &testLogger{}
	report, err := RewriteStrikes(sfnt, &Options{Log: log})
	test.Error(t, err)
	test.T(t, report.Success, false)
	test.T(t, report.Strikes[0].Reason, "no strike size")
	test.T(t, report.Strikes[0].Modified, false)
	test.T(t, report.Strikes[1].Compatible, true)
	test.T(t, report.Strikes[1].Target, 128)
	test.That(t, log.Contains("bitmaps: strike 0: cannot determine size, skipped"))
	test.That(t, log.Contains("bitmaps: no strikes were modified"))
}

func TestRewriteStrikesDamaged(t *testing.T) {
	f := appleFont(appleStrike())
	sfnt := loadFont(t, f)

	// index subtable offset beyond the table
	cblc := append([]byte{}, sfnt.Table("CBLC")...)
	binary.BigEndian.PutUint32(cblc[8+48+4:], 0xFFFF)
	f.Tables = map[string][]byte{"CBLC": cblc}
	sfnt = loadFont(t, f)
	report, err := RewriteStrikes(sfnt, nil)
	test.Error(t, err)
	test.T(t, report.Success, false)
	test.That(t, report.Strikes[0].Reason != "", "unreadable strike must be skipped")
	test.T(t, report.Strikes[0].Modified, false)
	test.T(t, sfnt.CBLC.Strikes[0].PPEMX, uint8(137))

	// CBLC claims more strikes than it holds
	binary.BigEndian.PutUint32(cblc[4:], 5)
	sfnt = loadFont(t, f)
	_, err = RewriteStrikes(sfnt, nil)
	test.That(t, err != nil && err == sfnt.TableErrors["CBLC"], "damaged table must be reported")

	_, err = RewriteStrikes(loadFont(t, appleFont()), nil)
	test.That(t, err != nil, "font has no bitmap strikes")
}

func TestRewriteStrikesDamagedStrike(t *testing.T) {
	f := appleFont(appleStrike(), appleStrike())
	sfnt := loadFont(t, f)

	// index subtable array of the second strike beyond the table
	cblc := append([]byte{}, sfnt.Table("CBLC")...)
	binary.BigEndian.PutUint32(cblc[8+48:], 0xFFFFFF)
	f.Tables = map[string][]byte{"CBLC": cblc}
	sfnt = loadFont(t, f)
	test.That(t, sfnt.CBLC.Strikes[1].Err != nil, "second strike must be unreadable")

	log := &testLogger{}
	report, err := RewriteStrikes(sfnt, &Options{Log: log})
	test.Error(t, err)
	test.T(t, report.Success, true)
	test.T(t, report.Modified, 1)
	test.T(t, report.Strikes[0].Modified, true)
	test.T(t, report.Strikes[0].Dropped, false)
	test.T(t, report.Strikes[1].Modified, false)
	test.T(t, report.Strikes[1].Dropped, true)
	test.That(t, report.Strikes[1].Reason != "", "unreadable strike must have a reason")
	test.That(t, log.Warned("strike 1: index data unreadable"))

	out := reload(t, sfnt)
	test.T(t, len(out.CBLC.Strikes), 1)
	test.T(t, len(out.CBDT.Strikes), 1)
	test.T(t, out.CBLC.Strikes[0].PPEMX, uint8(128))
	test.T(t, out.CBDT.Strikes[0].Glyphs[1].Small.Width, uint8(128))

	// the damaged strike is kept when nothing else changed
	sfnt = loadFont(t, f)
	sfnt.CBLC.Strikes[0].PPEMX = 128
	sfnt.CBLC.Strikes[0].PPEMY = 128
	report, err = RewriteStrikes(sfnt, nil)
	test.Error(t, err)
	test.T(t, report.Success, false)
	test.T(t, report.Strikes[1].Dropped, false)
	test.T(t, len(sfnt.CBLC.Strikes), 2)
	test.Bytes(t, sfnt.Table("CBLC"), cblc)

	// the conversion keeps the healthy strike
	result, err := ConvertFont(loadFont(t, f), nil)
	test.Error(t, err)
	test.T(t, result.BitmapsFixed, true)
}

func TestScaleMetrics(t *testing.T) {
	test.T(t, scaleInt8(110, 128.0/137.0), int8(102))
	test.T(t, scaleInt8(-27, 128.0/137.0), int8(-25))
	test.T(t, scaleInt8(100, 2.0), int8(127))
	test.T(t, scaleInt8(-100, 2.0), int8(-128))
	test.T(t, scaleUint8(200, 2.0), uint8(255))
	test.T(t, scaleUint8(136, 0.5), uint8(68))
}
