package emojiwin

import (
	"testing"

	"github.com/emojiwin/emojiwin/font"
	"github.com/emojiwin/emojiwin/internal/fonttest"
	"github.com/google/go-cmp/cmp"
	"github.com/tdewolff/test"
)

func TestNormalizeCmap(t *testing.T) {
	var tests = []struct {
		name    string
		cmap    map[rune]uint16
		records []fonttest.CmapRecord
		report  CmapReport
	}{
		{"synthesize BMP", map[rune]uint16{0x41: 1, 0x1F600: 2}, []fonttest.CmapRecord{{Platform: 0, Encoding: 3, Format: 4}, {Platform: 3, Encoding: 10, Format: 12}}, CmapReport{SynthesizedBMP: true, BMPCount: 1}},
		{"convert format 4", map[rune]uint16{0x41: 1, 0x263A: 2}, []fonttest.CmapRecord{{Platform: 3, Encoding: 1, Format: 4}, {Platform: 3, Encoding: 10, Format: 4}}, CmapReport{ConvertedFormat12: true}},
		{"both", map[rune]uint16{0x41: 1, 0x263A: 2}, []fonttest.CmapRecord{{Platform: 3, Encoding: 10, Format: 4}}, CmapReport{SynthesizedBMP: true, BMPCount: 2, ConvertedFormat12: true}},
		{"unchanged", map[rune]uint16{0x41: 1, 0x1F600: 2}, []fonttest.CmapRecord{{Platform: 3, Encoding: 1, Format: 4}, {Platform: 3, Encoding: 10, Format: 12}}, CmapReport{}},
		{"missing", map[rune]uint16{0x41: 1, 0x1F600: 2}, []fonttest.CmapRecord{{Platform: 0, Encoding: 3, Format: 4}, {Platform: 0, Encoding: 4, Format: 12}}, CmapReport{MissingUnicode: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sfnt := loadFont(t, fonttest.Font{
				NumGlyphs:   3,
				Cmap:        tt.cmap,
				CmapRecords: tt.records,
			})
			table := sfnt.Table("cmap")

			report, err := NormalizeCmap(sfnt, nil)
			test.Error(t, err)
			test.T(t, report, tt.report)
			if !report.Changed() {
				test.Bytes(t, sfnt.Table("cmap"), table)
				return
			}

			out := reload(t, sfnt)
			bmp := map[rune]uint16{}
			for r, glyphID := range tt.cmap {
				if r <= 0xFFFF {
					bmp[r] = glyphID
				}
			}
			i := out.Cmap.Find(font.PlatformWindows, font.EncodingWindowsUnicodeBMP)
			test.That(t, i != -1, "Windows BMP subtable must exist")
			test.T(t, out.Cmap.EncodingRecords[i].Format, uint16(4))
			if diff := cmp.Diff(bmp, out.Cmap.Subtable(i).Mapping()); diff != "" {
				t.Errorf("BMP mapping (-want +got):\n%s", diff)
			}

			i = out.Cmap.Find(font.PlatformWindows, font.EncodingWindowsUnicodeFullRepertoire)
			test.T(t, out.Cmap.EncodingRecords[i].Format, uint16(12))
			if diff := cmp.Diff(tt.cmap, out.Cmap.Subtable(i).Mapping()); diff != "" {
				t.Errorf("full Unicode mapping (-want +got):\n%s", diff)
			}
			test.T(t, len(out.Cmap.EncodingRecords), len(tt.records)+btoi(report.SynthesizedBMP))
		})
	}
}

func TestNormalizeCmapInsertAfterFull(t *testing.T) {
	sfnt := loadFont(t, fonttest.Font{
		NumGlyphs:   3,
		Cmap:        map[rune]uint16{0x41: 1, 0x1F600: 2},
		CmapRecords: []fonttest.CmapRecord{{Platform: 0, Encoding: 3, Format: 4}, {Platform: 3, Encoding: 10, Format: 12}},
	})
	log := &testLogger{}
	_, err := NormalizeCmap(sfnt, log)
	test.Error(t, err)
	test.T(t, sfnt.Cmap.Find(font.PlatformWindows, font.EncodingWindowsUnicodeBMP), 2)
	test.T(t, sfnt.Cmap.Get(0x1F600), uint16(2))
	test.That(t, log.Contains("cmap: added Windows Unicode BMP subtable with 1 characters"))

	// the supplementary character is not in the BMP subtable
	_, ok := sfnt.Cmap.Subtable(2).Get(0x1F600)
	test.T(t, ok, false)
}

func TestNormalizeCmapMissing(t *testing.T) {
	sfnt := loadFont(t, fonttest.Font{
		NumGlyphs:   3,
		Cmap:        map[rune]uint16{0x41: 1},
		CmapRecords: []fonttest.CmapRecord{{Platform: 0, Encoding: 3, Format: 4}},
	})
	log := &testLogger{}
	report, err := NormalizeCmap(sfnt, log)
	test.Error(t, err)
	test.T(t, report.MissingUnicode, true)
	test.T(t, report.Changed(), false)
	test.That(t, log.Contains("cmap: no Windows Unicode subtable"))

	sfnt.Cmap = nil
	report, err = NormalizeCmap(sfnt, log)
	test.Error(t, err)
	test.T(t, report.MissingUnicode, true)
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}
