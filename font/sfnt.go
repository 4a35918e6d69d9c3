package font

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/tdewolff/parse/v2"
)

// MaxCmapSegments is the maximum number of cmap segments that will be accepted.
const MaxCmapSegments = 20000

// SFNT is a parsed OpenType font.
type SFNT struct {
	Length            uint32
	Version           string
	IsCFF, IsTrueType bool // only one can be true
	Tables            map[string][]byte

	// TableErrors holds the parse errors of optional tables, their raw data is kept in Tables.
	TableErrors map[string]error

	// required
	Cmap *CmapTable
	Head *HeadTable
	Hhea *HheaTable
	Maxp *MaxpTable
	Name *NameTable
	OS2  *OS2Table
	Post *PostTable

	// color bitmaps
	CBLC *CBLCTable
	CBDT *CBDTTable
	Sbix *SbixTable
}

// NumGlyphs returns the number of glyphs the font contains.
func (sfnt *SFNT) NumGlyphs() uint16 {
	return sfnt.Maxp.NumGlyphs
}

// GlyphIndex returns the glyphID for a given rune. When the rune is not defined it returns 0.
func (sfnt *SFNT) GlyphIndex(r rune) uint16 {
	return sfnt.Cmap.Get(r)
}

// GlyphName returns the name of the glyph. It returns an empty string when no name exists.
func (sfnt *SFNT) GlyphName(glyphID uint16) string {
	if sfnt.Post == nil {
		return ""
	}
	return sfnt.Post.Get(glyphID)
}

// HasTable returns true if the font contains a table with the given tag.
func (sfnt *SFNT) HasTable(tag string) bool {
	_, ok := sfnt.Tables[tag]
	return ok
}

// Table returns the raw table data for the given tag, or nil if absent.
func (sfnt *SFNT) Table(tag string) []byte {
	return sfnt.Tables[tag]
}

// SetTable sets the raw table data for the given tag. Parsed tables are not updated.
func (sfnt *SFNT) SetTable(tag string, b []byte) {
	if len(tag) != 4 {
		panic("table tag must be four characters")
	}
	sfnt.Tables[tag] = b
}

// DeleteTable removes the table with the given tag.
func (sfnt *SFNT) DeleteTable(tag string) {
	delete(sfnt.Tables, tag)
	delete(sfnt.TableErrors, tag)
}

// Tags returns the table tags in sorted order.
func (sfnt *SFNT) Tags() []string {
	tags := make([]string, 0, len(sfnt.Tables))
	for tag := range sfnt.Tables {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// TableErrorTags returns the tags of the tables that could not be parsed in sorted order.
func (sfnt *SFNT) TableErrorTags() []string {
	tags := make([]string, 0, len(sfnt.TableErrors))
	for tag := range sfnt.TableErrors {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// VerticalMetrics returns the ascender, descender, and line gap values. It returns the "win" values, or the "typo" values if OS/2.FsSelection.USE_TYPO_METRICS is set. If those are zero or not set, default to the "hhea" values.
func (sfnt *SFNT) VerticalMetrics() (uint16, uint16, uint16) {
	// see https://learn.microsoft.com/en-us/typography/opentype/spec/recom#baseline-to-baseline-distances
	var ascender, descender, lineGap uint16
	if 0 < sfnt.Hhea.Ascender {
		ascender = uint16(sfnt.Hhea.Ascender)
	}
	if sfnt.Hhea.Descender < 0 {
		descender = uint16(-sfnt.Hhea.Descender)
	}
	if 0 < sfnt.Hhea.LineGap {
		lineGap = uint16(sfnt.Hhea.LineGap)
	}
	if sfnt.OS2 == nil {
		return ascender, descender, lineGap
	}

	if (sfnt.OS2.FsSelection & 0x0080) != 0 { // USE_TYPO_METRICS
		if 0 < sfnt.OS2.STypoAscender && sfnt.OS2.STypoDescender < 0 {
			ascender = uint16(sfnt.OS2.STypoAscender)
			descender = uint16(-sfnt.OS2.STypoDescender)
			if 0 < sfnt.OS2.STypoLineGap {
				lineGap = uint16(sfnt.OS2.STypoLineGap)
			} else {
				lineGap = 0
			}
		}
	} else if sfnt.OS2.UsWinAscent != 0 && sfnt.OS2.UsWinDescent != 0 {
		ascender, descender = sfnt.OS2.UsWinAscent, sfnt.OS2.UsWinDescent
		externalLeading := int(sfnt.Hhea.Ascender-sfnt.Hhea.Descender+sfnt.Hhea.LineGap) - int(sfnt.OS2.UsWinAscent+sfnt.OS2.UsWinDescent)
		if 0 < externalLeading {
			lineGap = uint16(externalLeading)
		} else {
			lineGap = 0
		}
	}
	return ascender, descender, lineGap
}

// ParseSFNT parses an OpenType file format (TTF, OTF, TTC). The index is used for font collections to select a single font.
func ParseSFNT(b []byte, index int) (*SFNT, error) {
	if len(b) < 12 || uint(math.MaxUint32) < uint(len(b)) {
		return nil, ErrInvalidFontData
	}

	r := parse.NewBinaryReader(b)
	sfntVersion := r.ReadString(4)
	isCollection := sfntVersion == "ttcf"
	if isCollection {
		majorVersion := r.ReadUint16()
		minorVersion := r.ReadUint16()
		if majorVersion != 1 && majorVersion != 2 || minorVersion != 0 {
			return nil, fmt.Errorf("bad TTC version")
		}

		numFonts := r.ReadUint32()
		if index < 0 || numFonts <= uint32(index) {
			return nil, fmt.Errorf("bad font index %d", index)
		}
		if r.Len() < 4*numFonts {
			return nil, ErrInvalidFontData
		}

		_ = r.ReadBytes(uint32(4 * index))
		offset := r.ReadUint32()
		if uint32(len(b))-12 < offset {
			return nil, ErrInvalidFontData
		}
		r.Seek(offset)
		sfntVersion = r.ReadString(4)
	} else if index != 0 {
		return nil, fmt.Errorf("bad font index %d", index)
	}
	if sfntVersion != "OTTO" && sfntVersion != "true" && binary.BigEndian.Uint32([]byte(sfntVersion)) != 0x00010000 {
		return nil, fmt.Errorf("bad SFNT version")
	}
	numTables := r.ReadUint16()
	_ = r.ReadUint16()                  // searchRange
	_ = r.ReadUint16()                  // entrySelector
	_ = r.ReadUint16()                  // rangeShift
	if r.Len() < 16*uint32(numTables) { // can never exceed uint32 as numTables is uint16
		return nil, ErrInvalidFontData
	}

	tables := make(map[string][]byte, numTables)
	for i := 0; i < int(numTables); i++ {
		tag := r.ReadString(4)
		_ = r.ReadUint32() // checksum
		offset := r.ReadUint32()
		length := r.ReadUint32()

		if uint32(len(b)) <= offset || uint32(len(b))-offset < length {
			return nil, ErrInvalidFontData
		}
		if _, ok := tables[tag]; ok {
			return nil, fmt.Errorf("%s: table defined more than once", tag)
		}
		tables[tag] = b[offset : offset+length : offset+length]
	}

	sfnt := &SFNT{}
	sfnt.Length = uint32(len(b))
	sfnt.Version = sfntVersion
	sfnt.IsCFF = sfntVersion == "OTTO"
	sfnt.IsTrueType = !sfnt.IsCFF
	sfnt.Tables = tables
	sfnt.TableErrors = map[string]error{}

	// OS/2 is not required by TrueType, glyph outlines are not required for bitmap fonts
	requiredTables := []string{"cmap", "head", "hhea", "maxp", "name", "post"}
	for _, requiredTable := range requiredTables {
		if _, ok := tables[requiredTable]; !ok {
			return nil, fmt.Errorf("%s: missing table", requiredTable)
		}
	}

	// required tables before parsing other tables
	if err := sfnt.parseHead(); err != nil {
		return nil, err
	} else if err := sfnt.parseMaxp(); err != nil {
		return nil, err
	}

	for _, tag := range sfnt.Tags() {
		var err error
		switch tag {
		case "cmap":
			err = sfnt.parseCmap()
		case "hhea":
			err = sfnt.parseHhea()
		case "name":
			err = sfnt.parseName()
		case "OS/2":
			err = sfnt.parseOS2()
		case "post":
			err = sfnt.parsePost()
		}
		if err != nil {
			return nil, err
		}
	}

	// color tables are optional, a damaged color table is recorded but does not fail the font
	if _, ok := tables["CBLC"]; ok {
		if err := sfnt.parseCBLC(); err != nil {
			sfnt.CBLC = nil
			sfnt.TableErrors["CBLC"] = err
		} else if _, ok := tables["CBDT"]; ok {
			if err := sfnt.parseCBDT(); err != nil {
				sfnt.CBDT = nil
				sfnt.TableErrors["CBDT"] = err
			}
		}
	}
	if _, ok := tables["sbix"]; ok {
		if err := sfnt.parseSbix(); err != nil {
			sfnt.Sbix = nil
			sfnt.TableErrors["sbix"] = err
		}
	}
	return sfnt, nil
}

// Write writes out the SFNT file.
func (sfnt *SFNT) Write() ([]byte, error) {
	tables, err := sfnt.outputTables()
	if err != nil {
		return nil, err
	}

	version := binary.BigEndian.Uint32([]byte(sfnt.Version))
	if sfnt.Version == "ttcf" {
		version = 0x00010000
	}
	return writeSFNT(version, tables), nil
}

// outputTables returns the tables to write, with the modified time of the head table set to now.
func (sfnt *SFNT) outputTables() (map[string][]byte, error) {
	if _, ok := sfnt.Tables["head"]; !ok {
		return nil, fmt.Errorf("head: missing table")
	} else if len(sfnt.Tables["head"]) < 54 {
		return nil, fmt.Errorf("head: bad table")
	}

	head := make([]byte, len(sfnt.Tables["head"]))
	copy(head, sfnt.Tables["head"])
	binary.BigEndian.PutUint64(head[28:], longDateTime(time.Now().UTC())) // modified

	tables := make(map[string][]byte, len(sfnt.Tables))
	for tag, table := range sfnt.Tables {
		tables[tag] = table
	}
	tables["head"] = head
	return tables, nil
}

func writeSFNT(version uint32, tables map[string][]byte) []byte {
	tags := make([]string, 0, len(tables))
	for tag := range tables {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	// write header
	w := parse.NewBinaryWriter([]byte{})
	w.WriteUint32(version) // sfntVersion
	numTables := uint16(len(tags))
	var entrySelector uint16
	if 0 < numTables {
		entrySelector = uint16(math.Log2(float64(numTables)))
	}
	searchRange := uint16(1 << (entrySelector + 4))
	w.WriteUint16(numTables)                  // numTables
	w.WriteUint16(searchRange)                // searchRange
	w.WriteUint16(entrySelector)              // entrySelector
	w.WriteUint16(numTables<<4 - searchRange) // rangeShift

	// we'll write the table records at the end
	w.WriteBytes(make([]byte, uint32(numTables)<<4))

	// write tables
	checksumAdjustmentPos := -1
	offsets, lengths := make([]uint32, numTables), make([]uint32, numTables)
	for i, tag := range tags {
		offsets[i] = w.Len()
		table := tables[tag]
		if tag == "head" && 12 <= len(table) {
			checksumAdjustmentPos = int(w.Len()) + 8
			w.WriteBytes(table[:8])
			w.WriteUint32(0) // checksumAdjustment
			w.WriteBytes(table[12:])
		} else {
			w.WriteBytes(table)
		}
		lengths[i] = w.Len() - offsets[i]

		for j := 0; j < int(padding(lengths[i])); j++ {
			w.WriteByte(0)
		}
	}

	// add table record entries
	buf := w.Bytes()
	for i, tag := range tags {
		pos := 12 + i<<4
		copy(buf[pos:], []byte(tag))
		checksum := calcChecksum(buf[offsets[i] : offsets[i]+lengths[i]])
		binary.BigEndian.PutUint32(buf[pos+4:], checksum)
		binary.BigEndian.PutUint32(buf[pos+8:], offsets[i])
		binary.BigEndian.PutUint32(buf[pos+12:], lengths[i])
	}
	if checksumAdjustmentPos != -1 {
		binary.BigEndian.PutUint32(buf[checksumAdjustmentPos:], 0xB1B0AFBA-calcChecksum(buf))
	}
	return buf
}

////////////////////////////////////////////////////////////////

// HeadTable is the font header table.
type HeadTable struct {
	FontRevision           uint32
	Flags                  [16]bool
	UnitsPerEm             uint16
	Created, Modified      time.Time
	XMin, YMin, XMax, YMax int16
	MacStyle               [16]bool
	LowestRecPPEM          uint16
	FontDirectionHint      int16
	IndexToLocFormat       int16
	GlyphDataFormat        int16
}

func (sfnt *SFNT) parseHead() error {
	b, ok := sfnt.Tables["head"]
	if !ok {
		return fmt.Errorf("head: missing table")
	} else if len(b) != 54 {
		return fmt.Errorf("head: bad table")
	}

	sfnt.Head = &HeadTable{}
	r := parse.NewBinaryReader(b)
	majorVersion := r.ReadUint16()
	minorVersion := r.ReadUint16()
	if majorVersion != 1 || minorVersion != 0 {
		return fmt.Errorf("head: bad version")
	}
	sfnt.Head.FontRevision = r.ReadUint32()
	_ = r.ReadUint32()                // checksumAdjustment
	if r.ReadUint32() != 0x5F0F3CF5 { // magicNumber
		return fmt.Errorf("head: bad magic version")
	}
	sfnt.Head.Flags = Uint16ToFlags(r.ReadUint16())
	sfnt.Head.UnitsPerEm = r.ReadUint16()
	created := r.ReadUint64()
	modified := r.ReadUint64()
	if sfnt.Head.Created, ok = fromLongDateTime(created); !ok {
		return fmt.Errorf("head: created date too large")
	} else if sfnt.Head.Modified, ok = fromLongDateTime(modified); !ok {
		return fmt.Errorf("head: modified date too large")
	}
	sfnt.Head.XMin = r.ReadInt16()
	sfnt.Head.YMin = r.ReadInt16()
	sfnt.Head.XMax = r.ReadInt16()
	sfnt.Head.YMax = r.ReadInt16()
	sfnt.Head.MacStyle = Uint16ToFlags(r.ReadUint16())
	sfnt.Head.LowestRecPPEM = r.ReadUint16()
	sfnt.Head.FontDirectionHint = r.ReadInt16()
	sfnt.Head.IndexToLocFormat = r.ReadInt16()
	if sfnt.Head.IndexToLocFormat != 0 && sfnt.Head.IndexToLocFormat != 1 {
		return fmt.Errorf("head: bad indexToLocFormat")
	}
	sfnt.Head.GlyphDataFormat = r.ReadInt16()
	return nil
}

// Write returns the table data. The checksum adjustment is left zero and is set when writing the font.
func (head *HeadTable) Write() []byte {
	w := parse.NewBinaryWriter(make([]byte, 0, 54))
	w.WriteUint16(1) // majorVersion
	w.WriteUint16(0) // minorVersion
	w.WriteUint32(head.FontRevision)
	w.WriteUint32(0)          // checksumAdjustment
	w.WriteUint32(0x5F0F3CF5) // magicNumber
	w.WriteUint16(FlagsToUint16(head.Flags))
	w.WriteUint16(head.UnitsPerEm)
	w.WriteInt64(int64(longDateTime(head.Created)))
	w.WriteInt64(int64(longDateTime(head.Modified)))
	w.WriteInt16(head.XMin)
	w.WriteInt16(head.YMin)
	w.WriteInt16(head.XMax)
	w.WriteInt16(head.YMax)
	w.WriteUint16(FlagsToUint16(head.MacStyle))
	w.WriteUint16(head.LowestRecPPEM)
	w.WriteInt16(head.FontDirectionHint)
	w.WriteInt16(head.IndexToLocFormat)
	w.WriteInt16(head.GlyphDataFormat)
	return w.Bytes()
}

////////////////////////////////////////////////////////////////

// HheaTable is the horizontal header table.
type HheaTable struct {
	Ascender            int16
	Descender           int16
	LineGap             int16
	AdvanceWidthMax     uint16
	MinLeftSideBearing  int16
	MinRightSideBearing int16
	XMaxExtent          int16
	CaretSlopeRise      int16
	CaretSlopeRun       int16
	CaretOffset         int16
	MetricDataFormat    int16
	NumberOfHMetrics    uint16
}

func (sfnt *SFNT) parseHhea() error {
	if sfnt.Maxp == nil {
		return fmt.Errorf("hhea: missing maxp table")
	}

	b, ok := sfnt.Tables["hhea"]
	if !ok {
		return fmt.Errorf("hhea: missing table")
	} else if len(b) != 36 {
		return fmt.Errorf("hhea: bad table")
	}

	sfnt.Hhea = &HheaTable{}
	r := parse.NewBinaryReader(b)
	majorVersion := r.ReadUint16()
	minorVersion := r.ReadUint16()
	if majorVersion != 1 || minorVersion != 0 {
		return fmt.Errorf("hhea: bad version")
	}
	sfnt.Hhea.Ascender = r.ReadInt16()
	sfnt.Hhea.Descender = r.ReadInt16()
	sfnt.Hhea.LineGap = r.ReadInt16()
	sfnt.Hhea.AdvanceWidthMax = r.ReadUint16()
	sfnt.Hhea.MinLeftSideBearing = r.ReadInt16()
	sfnt.Hhea.MinRightSideBearing = r.ReadInt16()
	sfnt.Hhea.XMaxExtent = r.ReadInt16()
	sfnt.Hhea.CaretSlopeRise = r.ReadInt16()
	sfnt.Hhea.CaretSlopeRun = r.ReadInt16()
	sfnt.Hhea.CaretOffset = r.ReadInt16()
	_ = r.ReadBytes(8) // reserved
	sfnt.Hhea.MetricDataFormat = r.ReadInt16()
	sfnt.Hhea.NumberOfHMetrics = r.ReadUint16()
	if sfnt.Maxp.NumGlyphs < sfnt.Hhea.NumberOfHMetrics || sfnt.Hhea.NumberOfHMetrics == 0 {
		return fmt.Errorf("hhea: bad numberOfHMetrics")
	}
	return nil
}

// Write returns the table data.
func (hhea *HheaTable) Write() []byte {
	w := parse.NewBinaryWriter(make([]byte, 0, 36))
	w.WriteUint16(1) // majorVersion
	w.WriteUint16(0) // minorVersion
	w.WriteInt16(hhea.Ascender)
	w.WriteInt16(hhea.Descender)
	w.WriteInt16(hhea.LineGap)
	w.WriteUint16(hhea.AdvanceWidthMax)
	w.WriteInt16(hhea.MinLeftSideBearing)
	w.WriteInt16(hhea.MinRightSideBearing)
	w.WriteInt16(hhea.XMaxExtent)
	w.WriteInt16(hhea.CaretSlopeRise)
	w.WriteInt16(hhea.CaretSlopeRun)
	w.WriteInt16(hhea.CaretOffset)
	w.WriteBytes(make([]byte, 8)) // reserved
	w.WriteInt16(hhea.MetricDataFormat)
	w.WriteUint16(hhea.NumberOfHMetrics)
	return w.Bytes()
}

////////////////////////////////////////////////////////////////

// MaxpTable is the maximum profile table, only the number of glyphs is used.
type MaxpTable struct {
	Version   uint32
	NumGlyphs uint16
}

func (sfnt *SFNT) parseMaxp() error {
	b, ok := sfnt.Tables["maxp"]
	if !ok {
		return fmt.Errorf("maxp: missing table")
	}

	sfnt.Maxp = &MaxpTable{}
	r := parse.NewBinaryReader(b)
	sfnt.Maxp.Version = r.ReadUint32()
	sfnt.Maxp.NumGlyphs = r.ReadUint16()
	if r.EOF() {
		return fmt.Errorf("maxp: bad table")
	} else if sfnt.Maxp.Version == 0x00005000 && len(b) == 6 || sfnt.Maxp.Version == 0x00010000 && len(b) == 32 {
		return nil
	}
	return fmt.Errorf("maxp: bad table")
}

////////////////////////////////////////////////////////////////

// PostTable is the PostScript table.
type PostTable struct {
	Version            uint32
	ItalicAngle        float64
	UnderlinePosition  int16
	UnderlineThickness int16
	IsFixedPitch       uint32
	MinMemType42       uint32
	MaxMemType42       uint32
	MinMemType1        uint32
	MaxMemType1        uint32

	// version 2
	NumGlyphs      uint16
	GlyphNameIndex []uint16
	stringData     [][]byte
}

// Get returns the glyph name for the glyph ID, or an empty string when the table has no names.
func (post *PostTable) Get(glyphID uint16) string {
	if len(post.GlyphNameIndex) <= int(glyphID) {
		return ""
	}
	index := post.GlyphNameIndex[glyphID]
	if index < 258 {
		return macintoshGlyphName(index)
	} else if len(post.stringData) <= int(index)-258 {
		return ""
	}
	return string(post.stringData[index-258])
}

func (sfnt *SFNT) parsePost() error {
	if sfnt.Maxp == nil {
		return fmt.Errorf("post: missing maxp table")
	}

	b, ok := sfnt.Tables["post"]
	if !ok {
		return fmt.Errorf("post: missing table")
	} else if len(b) < 32 {
		return fmt.Errorf("post: bad table")
	}

	sfnt.Post = &PostTable{}
	r := parse.NewBinaryReader(b)
	sfnt.Post.Version = r.ReadUint32()
	sfnt.Post.ItalicAngle = float64(r.ReadInt32()) / (1 << 16)
	sfnt.Post.UnderlinePosition = r.ReadInt16()
	sfnt.Post.UnderlineThickness = r.ReadInt16()
	sfnt.Post.IsFixedPitch = r.ReadUint32()
	sfnt.Post.MinMemType42 = r.ReadUint32()
	sfnt.Post.MaxMemType42 = r.ReadUint32()
	sfnt.Post.MinMemType1 = r.ReadUint32()
	sfnt.Post.MaxMemType1 = r.ReadUint32()
	switch sfnt.Post.Version {
	case 0x00010000:
		sfnt.Post.GlyphNameIndex = make([]uint16, 258)
		for i := 0; i < 258; i++ {
			sfnt.Post.GlyphNameIndex[i] = uint16(i)
		}
		return nil
	case 0x00020000:
		if len(b) < 34 {
			return fmt.Errorf("post: bad table")
		}
		sfnt.Post.NumGlyphs = r.ReadUint16()
		if sfnt.Post.NumGlyphs != sfnt.Maxp.NumGlyphs {
			return fmt.Errorf("post: numGlyphs does not match maxp table numGlyphs")
		} else if uint32(len(b)) < 34+2*uint32(sfnt.Post.NumGlyphs) {
			return fmt.Errorf("post: bad table")
		}

		numStrings := 0
		sfnt.Post.GlyphNameIndex = make([]uint16, sfnt.Post.NumGlyphs)
		for i := 0; i < int(sfnt.Post.NumGlyphs); i++ {
			sfnt.Post.GlyphNameIndex[i] = r.ReadUint16()
			if 258 <= sfnt.Post.GlyphNameIndex[i] {
				numStrings++
			}
		}

		sfnt.Post.stringData = make([][]byte, 0, numStrings)
		for 1 <= r.Len() {
			length := r.ReadUint8()
			if r.Len() < uint32(length) {
				return fmt.Errorf("post: bad stringData")
			}
			sfnt.Post.stringData = append(sfnt.Post.stringData, r.ReadBytes(uint32(length)))
		}
		if len(sfnt.Post.stringData) < numStrings {
			return fmt.Errorf("post: bad stringData")
		}
		return nil
	case 0x00025000:
		// deprecated and rarely used, keep the header only
		return nil
	case 0x00030000:
		// no PostScript glyph names provided
		return nil
	}
	return fmt.Errorf("post: bad version")
}

// Write returns the table data. Glyph names are only written for version 2.0.
func (post *PostTable) Write() []byte {
	w := parse.NewBinaryWriter(make([]byte, 0, 32))
	version := post.Version
	if version == 0x00020000 && len(post.GlyphNameIndex) == 0 || version == 0x00025000 {
		version = 0x00030000
	}
	w.WriteUint32(version)
	w.WriteUint32(uint32(int32(math.Round(post.ItalicAngle * (1 << 16)))))
	w.WriteInt16(post.UnderlinePosition)
	w.WriteInt16(post.UnderlineThickness)
	w.WriteUint32(post.IsFixedPitch)
	w.WriteUint32(post.MinMemType42)
	w.WriteUint32(post.MaxMemType42)
	w.WriteUint32(post.MinMemType1)
	w.WriteUint32(post.MaxMemType1)
	if version == 0x00020000 {
		w.WriteUint16(uint16(len(post.GlyphNameIndex)))
		for _, index := range post.GlyphNameIndex {
			w.WriteUint16(index)
		}
		for _, s := range post.stringData {
			w.WriteUint8(uint8(len(s)))
			w.WriteBytes(s)
		}
	}
	return w.Bytes()
}

// SetVersion3 drops the glyph names and sets the table to version 3.0.
func (post *PostTable) SetVersion3() {
	post.Version = 0x00030000
	post.NumGlyphs = 0
	post.GlyphNameIndex = nil
	post.stringData = nil
}
