package font

import (
	"testing"

	"github.com/tdewolff/test"
)

func TestNewNameRecord(t *testing.T) {
	record, err := NewNameRecord(PlatformWindows, EncodingWindowsUnicodeBMP, 0x0409, NameFontFamily, "Segoe UI Emoji")
	test.Error(t, err)
	test.T(t, len(record.Value), 28)
	test.Bytes(t, record.Value[:4], []byte{0, 'S', 0, 'e'})
	test.T(t, record.String(), "Segoe UI Emoji")

	record, err = NewNameRecord(PlatformMacintosh, EncodingMacintoshRoman, 0, NameFontFamily, "Café")
	test.Error(t, err)
	test.Bytes(t, record.Value, []byte{'C', 'a', 'f', 0x8E})
	test.T(t, record.String(), "Café")

	_, err = NewNameRecord(PlatformMacintosh, EncodingID(1), 0, NameFontFamily, "x")
	test.That(t, err != nil, "unsupported encoding")
}

func TestNameWrite(t *testing.T) {
	sfnt := parseTestFont(t, testFont())
	test.T(t, len(sfnt.Name.NameRecord), 2)

	sfnt.Name.NameRecord = nil
	for _, name := range []NameID{NameFull, NameFontFamily} {
		for _, platform := range []PlatformID{PlatformWindows, PlatformMacintosh} {
			record, err := NewNameRecord(platform, 0, 0, name, "Segoe UI Emoji")
			test.Error(t, err)
			sfnt.Name.NameRecord = append(sfnt.Name.NameRecord, record)
		}
	}
	b, err := sfnt.Name.Write()
	test.Error(t, err)
	test.T(t, len(b), 6+4*12+28+14) // identical strings share storage
	sfnt.SetTable("name", b)

	b, err = sfnt.Write()
	test.Error(t, err)
	sfnt, err = ParseSFNT(b, 0)
	test.Error(t, err)

	records := sfnt.Name.NameRecord
	test.T(t, len(records), 4)
	test.T(t, records[0].Platform, PlatformMacintosh)
	test.T(t, records[0].Name, NameFontFamily)
	test.T(t, records[1].Name, NameFull)
	test.T(t, records[2].Platform, PlatformWindows)
	for _, record := range records {
		test.T(t, record.String(), "Segoe UI Emoji")
	}
	test.T(t, len(sfnt.Name.Get(NameFull)), 2)
}
