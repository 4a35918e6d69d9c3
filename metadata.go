package emojiwin

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/emojiwin/emojiwin/font"
)

// NameString is a name ID with its string value.
type NameString struct {
	ID    font.NameID
	Value string
}

// WindowsNames are the names of the Windows system emoji font.
var WindowsNames = []NameString{
	{font.NameFontFamily, "Segoe UI Emoji"},
	{font.NameFontSubfamily, "Regular"},
	{font.NameUniqueIdentifier, "Microsoft:Segoe UI Emoji Regular:2023"},
	{font.NameFull, "Segoe UI Emoji"},
	{font.NameVersion, "Version 1.00"},
	{font.NamePostScript, "SegoeUIEmoji"},
	{font.NamePreferredFamily, "Segoe UI Emoji"},
	{font.NamePreferredSubfamily, "Regular"},
	{font.NameWWSFamily, "Segoe UI Emoji"},
	{font.NameWWSSubfamily, "Regular"},
}

// namePlatforms are the platform, encoding, and language combinations that each name is written for.
var namePlatforms = []struct {
	platform font.PlatformID
	encoding font.EncodingID
	language uint16
}{
	{font.PlatformWindows, font.EncodingWindowsUnicodeBMP, 0x0409},
	{font.PlatformWindows, font.EncodingWindowsUnicodeFullRepertoire, 0x0409},
	{font.PlatformMacintosh, font.EncodingMacintoshRoman, 0},
}

// RewriteNames replaces all name records by the given names for each of the Windows BMP, Windows full Unicode, and Macintosh Roman platforms. Duplicate records are written once.
func RewriteNames(sfnt *font.SFNT, names []NameString, log Logger) error {
	log = orDiscard(log)
	if sfnt.Name == nil {
		log.Printf("name: missing table, skipped")
		return nil
	}

	records := make([]font.NameRecord, 0, len(names)*len(namePlatforms))
	for _, p := range namePlatforms {
		for _, name := range names {
			record, err := font.NewNameRecord(p.platform, p.encoding, p.language, name.ID, name.Value)
			if err != nil {
				return fmt.Errorf("name %d: %w", name.ID, err)
			}
			records = append(records, record)
		}
	}
	records = uniqueNameRecords(records)

	sfnt.Name.NameRecord = records
	sfnt.Name.LangTag = nil
	b, err := sfnt.Name.Write()
	if err != nil {
		return err
	}
	sfnt.SetTable("name", b)
	log.Printf("name: added %d name records", len(records))
	return nil
}

func uniqueNameRecords(records []font.NameRecord) []font.NameRecord {
	type key struct {
		platform font.PlatformID
		encoding font.EncodingID
		language uint16
		name     font.NameID
	}
	seen := map[key]bool{}
	n := 0
	for _, record := range records {
		k := key{record.Platform, record.Encoding, record.Language, record.Name}
		if !seen[k] {
			seen[k] = true
			records[n] = record
			n++
		}
	}
	return records[:n]
}

// Unicode range bits of OS/2, see https://learn.microsoft.com/en-us/typography/opentype/spec/os2#ulunicoderange1-bits-031ulunicoderange2-bits-3263ulunicoderange3-bits-6495ulunicoderange4-bits-96127
var windowsUnicodeRanges = []uint{
	0,  // Basic Latin
	1,  // Latin-1 Supplement
	57, // Non-Plane 0
	58, // Phags-pa
	59, // CJK Unified Ideographs
}

// RewriteOS2 sets the OS/2 table to version 4 with the metrics and flags of the Windows system emoji font. The USE_TYPO_METRICS flag makes DirectWrite use the typographic metrics instead of those of hhea.
func RewriteOS2(sfnt *font.SFNT, log Logger) {
	log = orDiscard(log)
	os2 := sfnt.OS2
	if os2 == nil {
		log.Printf("OS/2: missing table, skipped")
		return
	}

	if os2.Version < 2 {
		// defaults for fields that did not exist before version 2
		os2.SxHeight = 0
		os2.SCapHeight = 0
		os2.UsDefaultChar = 0
		os2.UsBreakChar = 0x20
		os2.UsMaxContext = 1
	}
	os2.Version = 4
	os2.UsWeightClass = 400
	os2.UsWidthClass = 5
	os2.FsType = 0
	os2.SFamilyClass = 0

	os2.STypoAscender = 1069
	os2.STypoDescender = -293
	os2.STypoLineGap = 0
	os2.FsSelection = 0x0040 | 0x0080 // REGULAR | USE_TYPO_METRICS

	os2.UsFirstCharIndex = 0x20
	os2.UsLastCharIndex = clampUint16(0x1F6FF)

	var ranges bitset.BitSet
	for _, bit := range windowsUnicodeRanges {
		ranges.Set(bit)
	}
	var words [4]uint32
	for i, ok := ranges.NextSet(0); ok && i < 128; i, ok = ranges.NextSet(i + 1) {
		words[i/32] |= 1 << (i % 32)
	}
	os2.UlUnicodeRange1 = words[0]
	os2.UlUnicodeRange2 = words[1]
	os2.UlUnicodeRange3 = 0
	os2.UlUnicodeRange4 = 0

	os2.BFamilyType = 5 // decorative
	os2.BSerifStyle = 0
	os2.BWeight = 5 // medium
	os2.BProportion = 0
	os2.BContrast = 0
	os2.BStrokeVariation = 0
	os2.BArmStyle = 0
	os2.BLetterform = 0
	os2.BMidline = 0
	os2.BXHeight = 0

	sfnt.SetTable("OS/2", os2.Write())
	log.Printf("OS/2: set typographic metrics %d/%d/%d and USE_TYPO_METRICS", os2.STypoAscender, os2.STypoDescender, os2.STypoLineGap)
}

// clampUint16 returns the codepoint clamped to the 16-bit character index fields.
func clampUint16(r rune) uint16 {
	if 0xFFFF < r {
		return 0xFFFF
	} else if r < 0 {
		return 0
	}
	return uint16(r)
}

// RewriteHead clears the macStyle flags.
func RewriteHead(sfnt *font.SFNT, log Logger) {
	log = orDiscard(log)
	if sfnt.Head == nil {
		log.Printf("head: missing table, skipped")
		return
	}
	sfnt.Head.MacStyle = [16]bool{}
	sfnt.SetTable("head", sfnt.Head.Write())
	log.Printf("head: cleared macStyle")
}

// RewritePost sets the post table to version 3.0, which has no glyph names.
func RewritePost(sfnt *font.SFNT, log Logger) {
	log = orDiscard(log)
	if sfnt.Post == nil {
		log.Printf("post: missing table, skipped")
		return
	}
	sfnt.Post.SetVersion3()
	sfnt.SetTable("post", sfnt.Post.Write())
	log.Printf("post: set version 3.0")
}
