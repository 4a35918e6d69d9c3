package font

import (
	"testing"

	"github.com/emojiwin/emojiwin/internal/fonttest"
	"github.com/google/go-cmp/cmp"
	"github.com/tdewolff/test"
)

func TestCmapParse(t *testing.T) {
	sfnt := parseTestFont(t, testFont())
	test.T(t, len(sfnt.Cmap.EncodingRecords), 2)
	test.T(t, sfnt.Cmap.EncodingRecords[0], CmapEncodingRecord{PlatformUnicode, EncodingUnicode2BMP, 4, 0})
	test.T(t, sfnt.Cmap.EncodingRecords[1], CmapEncodingRecord{PlatformWindows, EncodingWindowsUnicodeFullRepertoire, 12, 1})

	bmp := sfnt.Cmap.Subtable(0)
	if diff := cmp.Diff(map[rune]uint16{'A': 1, 0x2764: 2}, bmp.Mapping()); diff != "" {
		t.Errorf("format 4 mapping (-want +got):\n%s", diff)
	}
	full := sfnt.Cmap.Subtable(1)
	if diff := cmp.Diff(map[rune]uint16{'A': 1, 0x2764: 2, 0x1F600: 3}, full.Mapping()); diff != "" {
		t.Errorf("format 12 mapping (-want +got):\n%s", diff)
	}

	r, ok := full.ToUnicode(3)
	test.T(t, ok, true)
	test.T(t, r, rune(0x1F600))
	test.T(t, sfnt.Cmap.ToUnicode(2), rune(0x2764))
	test.T(t, sfnt.Cmap.Find(PlatformWindows, EncodingWindowsUnicodeBMP), -1)
	test.T(t, sfnt.Cmap.Find(PlatformWindows, EncodingWindowsUnicodeFullRepertoire), 1)
}

func TestCmapParseErrors(t *testing.T) {
	f := testFont()
	f.Cmap = map[rune]uint16{'A': 9} // glyph ID beyond numGlyphs
	_, err := ParseSFNT(f.Bytes(), 0)
	test.That(t, err != nil, "glyph ID out of range")

	f = testFont()
	f.Tables = map[string][]byte{"cmap": {0, 1, 0, 0}}
	_, err = ParseSFNT(f.Bytes(), 0)
	test.That(t, err != nil, "bad version")

	f.Tables = map[string][]byte{"cmap": {0, 0, 0, 1, 0, 3, 0, 1, 0, 0, 0, 0}}
	_, err = ParseSFNT(f.Bytes(), 0)
	test.That(t, err != nil, "bad subtable")
}

func TestNewCmapSubtable(t *testing.T) {
	mapping := map[rune]uint16{'A': 1, 'B': 2, 'C': 3, 'Z': 5, 0x2764: 4, 0x1F600: 6}

	sub, err := NewCmapSubtable(12, mapping, 7)
	test.Error(t, err)
	test.T(t, sub.Format(), uint16(12))
	if diff := cmp.Diff(mapping, sub.Mapping()); diff != "" {
		t.Errorf("format 12 mapping (-want +got):\n%s", diff)
	}
	glyphID, ok := sub.Get(0x1F600)
	test.T(t, ok, true)
	test.T(t, glyphID, uint16(6))

	delete(mapping, 0x1F600)
	sub, err = NewCmapSubtable(4, mapping, 7)
	test.Error(t, err)
	test.T(t, sub.Format(), uint16(4))
	if diff := cmp.Diff(mapping, sub.Mapping()); diff != "" {
		t.Errorf("format 4 mapping (-want +got):\n%s", diff)
	}

	_, err = NewCmapSubtable(4, map[rune]uint16{0x1F600: 1}, 7)
	test.That(t, err != nil, "format 4 cannot hold characters outside the BMP")
	_, err = NewCmapSubtable(12, map[rune]uint16{'A': 7}, 7)
	test.That(t, err != nil, "glyph ID out of range")
	_, err = NewCmapSubtable(6, mapping, 7)
	test.That(t, err != nil, "format 6 cannot be written")

	sub, err = NewCmapSubtable(4, map[rune]uint16{}, 7)
	test.Error(t, err)
	test.T(t, len(sub.Mapping()), 0)
}

func TestCmapInsertReplace(t *testing.T) {
	sfnt := parseTestFont(t, fonttest.Font{
		NumGlyphs:   4,
		Cmap:        map[rune]uint16{'A': 1, 0x1F600: 3},
		CmapRecords: []fonttest.CmapRecord{{Platform: 3, Encoding: 10, Format: 4}, {Platform: 0, Encoding: 3, Format: 4}},
	})
	cmap := sfnt.Cmap
	test.T(t, len(cmap.Subtables), 2)

	full, err := NewCmapSubtable(12, map[rune]uint16{'A': 1, 0x1F600: 3}, 4)
	test.Error(t, err)
	cmap.Replace(0, full)
	test.T(t, cmap.EncodingRecords[0].Format, uint16(12))
	test.T(t, cmap.EncodingRecords[1].Format, uint16(4))

	bmp, err := NewCmapSubtable(4, map[rune]uint16{'A': 1}, 4)
	test.Error(t, err)
	cmap.Insert(1, PlatformWindows, EncodingWindowsUnicodeBMP, bmp)
	test.T(t, cmap.EncodingRecords[1].PlatformID, PlatformWindows)
	test.T(t, cmap.EncodingRecords[1].EncodingID, EncodingWindowsUnicodeBMP)
	test.T(t, cmap.Get(0x1F600), uint16(3))

	sfnt.SetTable("cmap", cmap.Write())
	b, err := sfnt.Write()
	test.Error(t, err)
	sfnt, err = ParseSFNT(b, 0)
	test.Error(t, err)

	// records are sorted on write
	records := sfnt.Cmap.EncodingRecords
	test.T(t, len(records), 3)
	test.T(t, records[0], CmapEncodingRecord{PlatformUnicode, EncodingUnicode2BMP, 4, 0})
	test.T(t, records[1], CmapEncodingRecord{PlatformWindows, EncodingWindowsUnicodeBMP, 4, 1})
	test.T(t, records[2], CmapEncodingRecord{PlatformWindows, EncodingWindowsUnicodeFullRepertoire, 12, 2})
	test.T(t, sfnt.Cmap.Get(0x1F600), uint16(3))
}

func TestCmapReplaceShared(t *testing.T) {
	sfnt := parseTestFont(t, testFont())
	cmap := sfnt.Cmap
	cmap.EncodingRecords = append(cmap.EncodingRecords, CmapEncodingRecord{PlatformWindows, EncodingWindowsUnicodeBMP, 4, 0})
	test.T(t, len(cmap.Write()), len(sfnt.Table("cmap"))+8) // shared subtable is written once

	sub, err := NewCmapSubtable(12, map[rune]uint16{'A': 1}, 4)
	test.Error(t, err)
	cmap.Replace(2, sub)
	test.T(t, len(cmap.Subtables), 3)
	test.T(t, cmap.EncodingRecords[0].Subtable, uint16(0))
	test.T(t, cmap.EncodingRecords[2].Subtable, uint16(2))
}
