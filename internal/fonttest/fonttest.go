// Package fonttest builds small synthetic fonts for tests. The tables are encoded independently of package font so that its parsers can be tested against them.
package fonttest

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"sort"
	"unicode/utf16"

	"github.com/tdewolff/parse/v2"
)

// CmapRecord is a cmap encoding record, its subtable holds the font's mapping in the given format. Format 4 subtables only hold the BMP characters.
type CmapRecord struct {
	Platform, Encoding, Format uint16
}

// Glyph is a bitmap glyph of a strike.
type Glyph struct {
	ID            uint16
	Image         []byte
	Width, Height uint8

	// Record replaces the glyph record in CBDT when set.
	Record []byte
}

// Strike is a CBLC/CBDT bitmap strike.
type Strike struct {
	PPEMX, PPEMY        uint8
	Ascender, Descender int8
	ImageFormat         uint16 // 17 when zero
	IndexFormat         uint16 // 1 or 5, 1 when zero
	Glyphs              []Glyph

	// NoSubtables writes the strike without index subtables.
	NoSubtables bool
}

// Font describes a synthetic font.
type Font struct {
	NumGlyphs   uint16
	Cmap        map[rune]uint16
	CmapRecords []CmapRecord // (3,10) format 12 when nil
	OS2Version  int          // no OS/2 table when negative
	MacStyle    uint16
	PostNames   bool // write post version 2.0 with glyph names
	Strikes     []Strike
	Tables      map[string][]byte
}

// Bytes returns the font as a TTF file.
func (f Font) Bytes() []byte {
	numGlyphs := f.NumGlyphs
	if numGlyphs == 0 {
		numGlyphs = 1
	}

	tables := map[string][]byte{
		"head": f.head(),
		"hhea": f.hhea(),
		"maxp": f.maxp(numGlyphs),
		"name": f.name(),
		"post": f.post(numGlyphs),
		"cmap": f.cmap(),
	}
	if 0 <= f.OS2Version {
		tables["OS/2"] = f.os2()
	}
	if f.Strikes != nil {
		tables["CBLC"], tables["CBDT"] = f.bitmaps()
	}
	for tag, table := range f.Tables {
		tables[tag] = table
	}
	return SFNT(tables)
}

// SFNT returns a TTF file with the given tables.
func SFNT(tables map[string][]byte) []byte {
	tags := make([]string, 0, len(tables))
	for tag := range tables {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	w := parse.NewBinaryWriter([]byte{})
	w.WriteUint32(0x00010000)
	w.WriteUint16(uint16(len(tags)))
	w.WriteUint16(0) // searchRange
	w.WriteUint16(0) // entrySelector
	w.WriteUint16(0) // rangeShift
	offset := 12 + 16*uint32(len(tags))
	for _, tag := range tags {
		n := uint32(len(tables[tag]))
		w.WriteString(tag)
		w.WriteUint32(0) // checksum
		w.WriteUint32(offset)
		w.WriteUint32(n)
		offset += (n + 3) &^ 3
	}
	for _, tag := range tags {
		w.WriteBytes(tables[tag])
		for n := len(tables[tag]); n%4 != 0; n++ {
			w.WriteByte(0)
		}
	}
	return w.Bytes()
}

func (f Font) head() []byte {
	w := parse.NewBinaryWriter([]byte{})
	w.WriteUint16(1)          // majorVersion
	w.WriteUint16(0)          // minorVersion
	w.WriteUint32(0x00010000) // fontRevision
	w.WriteUint32(0)          // checksumAdjustment
	w.WriteUint32(0x5F0F3CF5) // magicNumber
	w.WriteUint16(0x000B)     // flags
	w.WriteUint16(2048)       // unitsPerEm
	w.WriteInt64(3600000000) // created
	w.WriteInt64(3600000000) // modified
	w.WriteInt16(0)           // xMin
	w.WriteInt16(-300)        // yMin
	w.WriteInt16(2550)        // xMax
	w.WriteInt16(1800)        // yMax
	w.WriteUint16(f.MacStyle)
	w.WriteUint16(8) // lowestRecPPEM
	w.WriteInt16(2)  // fontDirectionHint
	w.WriteInt16(0)  // indexToLocFormat
	w.WriteInt16(0)  // glyphDataFormat
	return w.Bytes()
}

func (f Font) hhea() []byte {
	w := parse.NewBinaryWriter([]byte{})
	w.WriteUint16(1)    // majorVersion
	w.WriteUint16(0)    // minorVersion
	w.WriteInt16(1600)  // ascender
	w.WriteInt16(-400)  // descender
	w.WriteInt16(0)     // lineGap
	w.WriteUint16(2550) // advanceWidthMax
	w.WriteBytes(make([]byte, 2*6+8))
	w.WriteInt16(0)  // metricDataFormat
	w.WriteUint16(1) // numberOfHMetrics
	return w.Bytes()
}

func (f Font) maxp(numGlyphs uint16) []byte {
	w := parse.NewBinaryWriter([]byte{})
	w.WriteUint32(0x00005000)
	w.WriteUint16(numGlyphs)
	return w.Bytes()
}

func (f Font) name() []byte {
	value := []byte{}
	for _, c := range utf16.Encode([]rune("Apple Color Emoji")) {
		value = append(value, byte(c>>8), byte(c))
	}
	w := parse.NewBinaryWriter([]byte{})
	w.WriteUint16(0)      // version
	w.WriteUint16(2)      // count
	w.WriteUint16(6 + 24) // storageOffset
	for _, name := range []uint16{1, 4} {
		w.WriteUint16(3)      // platformID
		w.WriteUint16(1)      // encodingID
		w.WriteUint16(0x0409) // languageID
		w.WriteUint16(name)
		w.WriteUint16(uint16(len(value)))
		w.WriteUint16(0) // offset
	}
	w.WriteBytes(value)
	return w.Bytes()
}

func (f Font) post(numGlyphs uint16) []byte {
	w := parse.NewBinaryWriter([]byte{})
	if f.PostNames {
		w.WriteUint32(0x00020000)
	} else {
		w.WriteUint32(0x00030000)
	}
	w.WriteBytes(make([]byte, 28))
	if f.PostNames {
		w.WriteUint16(numGlyphs)
		for i := uint16(0); i < numGlyphs; i++ {
			if i == 0 {
				w.WriteUint16(0) // .notdef
			} else {
				w.WriteUint16(258 + i - 1)
			}
		}
		for i := uint16(1); i < numGlyphs; i++ {
			s := "u" + string(rune('A'+i%26))
			w.WriteUint8(uint8(len(s)))
			w.WriteString(s)
		}
	}
	return w.Bytes()
}

func (f Font) os2() []byte {
	version := uint16(f.OS2Version)
	w := parse.NewBinaryWriter([]byte{})
	w.WriteUint16(version)
	w.WriteInt16(2550) // xAvgCharWidth
	w.WriteUint16(700) // usWeightClass
	w.WriteUint16(5)   // usWidthClass
	w.WriteUint16(8)   // fsType
	w.WriteBytes(make([]byte, 2*11))
	w.WriteBytes([]byte{2, 11, 6, 9, 4, 2, 2, 2, 2, 4}) // panose
	w.WriteUint32(1)                                    // ulUnicodeRange1
	w.WriteBytes(make([]byte, 12))
	w.WriteString("APPL")
	w.WriteUint16(0x0020) // fsSelection BOLD
	w.WriteUint16(0x0023) // usFirstCharIndex
	w.WriteUint16(0xFFFF) // usLastCharIndex
	w.WriteInt16(1600)    // sTypoAscender
	w.WriteInt16(-400)    // sTypoDescender
	w.WriteInt16(0)       // sTypoLineGap
	w.WriteUint16(1800)   // usWinAscent
	w.WriteUint16(300)    // usWinDescent
	if version == 0 {
		return w.Bytes()
	}
	w.WriteUint32(1) // ulCodePageRange1
	w.WriteUint32(0) // ulCodePageRange2
	if version == 1 {
		return w.Bytes()
	}
	w.WriteInt16(1000)  // sxHeight
	w.WriteInt16(1400)  // sCapHeight
	w.WriteUint16(0)    // usDefaultChar
	w.WriteUint16(0x20) // usBreakChar
	w.WriteUint16(3)    // usMaxContext
	if version <= 4 {
		return w.Bytes()
	}
	w.WriteUint16(0)
	w.WriteUint16(0xFFFF)
	return w.Bytes()
}

func (f Font) cmap() []byte {
	records := f.CmapRecords
	if records == nil {
		records = []CmapRecord{{3, 10, 12}}
	}

	rs := make([]rune, 0, len(f.Cmap))
	for r := range f.Cmap {
		rs = append(rs, r)
	}
	sort.Slice(rs, func(i, j int) bool { return rs[i] < rs[j] })

	w := parse.NewBinaryWriter([]byte{})
	w.WriteUint16(0) // version
	w.WriteUint16(uint16(len(records)))
	subtables := [][]byte{}
	offset := 4 + 8*uint32(len(records))
	for _, record := range records {
		var subtable []byte
		if record.Format == 4 {
			subtable = cmapFormat4(rs, f.Cmap)
		} else {
			subtable = cmapFormat12(rs, f.Cmap)
		}
		w.WriteUint16(record.Platform)
		w.WriteUint16(record.Encoding)
		w.WriteUint32(offset)
		offset += uint32(len(subtable))
		subtables = append(subtables, subtable)
	}
	for _, subtable := range subtables {
		w.WriteBytes(subtable)
	}
	return w.Bytes()
}

// cmapFormat4 writes one segment per character followed by the final 0xFFFF segment.
func cmapFormat4(rs []rune, mapping map[rune]uint16) []byte {
	bmp := []rune{}
	for _, r := range rs {
		if r < 0xFFFF {
			bmp = append(bmp, r)
		}
	}
	bmp = append(bmp, 0xFFFF)
	segCountX2 := uint16(2 * len(bmp))

	w := parse.NewBinaryWriter([]byte{})
	w.WriteUint16(4)
	w.WriteUint16(16 + 4*segCountX2) // length
	w.WriteUint16(0)                 // language
	w.WriteUint16(segCountX2)
	w.WriteBytes(make([]byte, 6)) // searchRange, entrySelector, rangeShift
	for _, r := range bmp {
		w.WriteUint16(uint16(r)) // endCode
	}
	w.WriteUint16(0) // reservedPad
	for _, r := range bmp {
		w.WriteUint16(uint16(r)) // startCode
	}
	for _, r := range bmp {
		if r == 0xFFFF {
			w.WriteUint16(1) // idDelta
		} else {
			w.WriteUint16(mapping[r] - uint16(r)) // idDelta
		}
	}
	for range bmp {
		w.WriteUint16(0) // idRangeOffset
	}
	return w.Bytes()
}

// cmapFormat12 writes one group per character.
func cmapFormat12(rs []rune, mapping map[rune]uint16) []byte {
	w := parse.NewBinaryWriter([]byte{})
	w.WriteUint16(12)
	w.WriteUint16(0) // reserved
	w.WriteUint32(16 + 12*uint32(len(rs)))
	w.WriteUint32(0) // language
	w.WriteUint32(uint32(len(rs)))
	for _, r := range rs {
		w.WriteUint32(uint32(r))
		w.WriteUint32(uint32(r))
		w.WriteUint32(uint32(mapping[r]))
	}
	return w.Bytes()
}

// Record returns a glyph record in the given image format.
func Record(format uint16, glyph Glyph) []byte {
	w := parse.NewBinaryWriter([]byte{})
	switch format {
	case 17:
		w.WriteUint8(glyph.Height)
		w.WriteUint8(glyph.Width)
		w.WriteUint8(0)                      // bearingX
		w.WriteUint8(min(glyph.Height, 127)) // bearingY
		w.WriteUint8(glyph.Width)            // advance
	case 18:
		w.WriteUint8(glyph.Height)
		w.WriteUint8(glyph.Width)
		w.WriteUint8(0)                      // horiBearingX
		w.WriteUint8(min(glyph.Height, 127)) // horiBearingY
		w.WriteUint8(glyph.Width)            // horiAdvance
		w.WriteUint8(0)                      // vertBearingX
		w.WriteUint8(0)                      // vertBearingY
		w.WriteUint8(glyph.Height)           // vertAdvance
	}
	w.WriteUint32(uint32(len(glyph.Image)))
	w.WriteBytes(glyph.Image)
	return w.Bytes()
}

func (f Font) bitmaps() ([]byte, []byte) {
	data := parse.NewBinaryWriter([]byte{})
	data.WriteUint16(3) // majorVersion
	data.WriteUint16(0) // minorVersion

	indices := [][]byte{}
	numSubtables := []uint32{}
	for _, strike := range f.Strikes {
		if strike.NoSubtables || len(strike.Glyphs) == 0 {
			indices = append(indices, nil)
			numSubtables = append(numSubtables, 0)
			continue
		}

		imageFormat := strike.ImageFormat
		if imageFormat == 0 {
			imageFormat = 17
		}
		glyphs := make([]Glyph, len(strike.Glyphs))
		copy(glyphs, strike.Glyphs)
		sort.Slice(glyphs, func(i, j int) bool { return glyphs[i].ID < glyphs[j].ID })
		first, last := glyphs[0].ID, glyphs[len(glyphs)-1].ID

		imageDataOffset := data.Len()
		records := make([][]byte, len(glyphs))
		for i, glyph := range glyphs {
			records[i] = glyph.Record
			if records[i] == nil {
				records[i] = Record(imageFormat, glyph)
			}
			data.WriteBytes(records[i])
		}

		index := parse.NewBinaryWriter([]byte{})
		index.WriteUint16(first)
		index.WriteUint16(last)
		index.WriteUint32(8) // additionalOffsetToIndexSubtable
		if strike.IndexFormat == 5 {
			index.WriteUint16(5)
			index.WriteUint16(imageFormat)
			index.WriteUint32(imageDataOffset)
			index.WriteUint32(uint32(len(records[0]))) // imageSize
			index.WriteUint8(glyphs[0].Height)
			index.WriteUint8(glyphs[0].Width)
			index.WriteUint8(0)                          // horiBearingX
			index.WriteUint8(min(glyphs[0].Height, 127)) // horiBearingY
			index.WriteUint8(glyphs[0].Width)            // horiAdvance
			index.WriteUint8(0)                          // vertBearingX
			index.WriteUint8(0)                          // vertBearingY
			index.WriteUint8(glyphs[0].Height)           // vertAdvance
			index.WriteUint32(uint32(len(glyphs)))       // numGlyphs
			for _, glyph := range glyphs {
				index.WriteUint16(glyph.ID)
			}
		} else {
			index.WriteUint16(1)
			index.WriteUint16(imageFormat)
			index.WriteUint32(imageDataOffset)
			offset, k := uint32(0), 0
			for glyphID := uint32(first); glyphID <= uint32(last); glyphID++ {
				index.WriteUint32(offset)
				if k < len(glyphs) && uint32(glyphs[k].ID) == glyphID {
					offset += uint32(len(records[k]))
					k++
				}
			}
			index.WriteUint32(offset)
		}
		for index.Len()%4 != 0 {
			index.WriteByte(0)
		}
		indices = append(indices, index.Bytes())
		numSubtables = append(numSubtables, 1)
	}

	w := parse.NewBinaryWriter([]byte{})
	w.WriteUint16(3) // majorVersion
	w.WriteUint16(0) // minorVersion
	w.WriteUint32(uint32(len(f.Strikes)))
	offset := 8 + 48*uint32(len(f.Strikes))
	for i, strike := range f.Strikes {
		w.WriteUint32(offset)                  // indexSubTableArrayOffset
		w.WriteUint32(uint32(len(indices[i]))) // indexTablesSize
		w.WriteUint32(numSubtables[i])         // numberOfIndexSubTables
		w.WriteUint32(0)                       // colorRef
		for k := 0; k < 2; k++ {
			w.WriteUint8(uint8(strike.Ascender))
			w.WriteUint8(uint8(strike.Descender))
			w.WriteBytes(make([]byte, 10))
		}
		var start, end uint16
		if 0 < len(strike.Glyphs) {
			start, end = strike.Glyphs[0].ID, strike.Glyphs[0].ID
			for _, glyph := range strike.Glyphs {
				start = min(start, glyph.ID)
				end = max(end, glyph.ID)
			}
		}
		w.WriteUint16(start)
		w.WriteUint16(end)
		w.WriteUint8(strike.PPEMX)
		w.WriteUint8(strike.PPEMY)
		w.WriteUint8(32) // bitDepth
		w.WriteUint8(1)  // flags
		offset += uint32(len(indices[i]))
	}
	for _, index := range indices {
		w.WriteBytes(index)
	}
	return w.Bytes(), data.Bytes()
}

func testImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(255 * x / w), uint8(255 * y / h), 128, 255})
		}
	}
	return img
}

// PNG returns an opaque w×h image encoded as PNG. The encoder leaves out the alpha channel.
func PNG(w, h int) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage(w, h)); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// JPEG returns a w×h image encoded as JPEG.
func JPEG(w, h int) []byte {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, testImage(w, h), nil); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// Sbix returns an sbix table with one strike, graphics are PNG.
func Sbix(numGlyphs uint16, ppem uint16, graphics map[uint16][]byte) []byte {
	w := parse.NewBinaryWriter([]byte{})
	w.WriteUint16(1) // version
	w.WriteUint16(1) // flags
	w.WriteUint32(1) // numStrikes
	w.WriteUint32(12)

	w.WriteUint16(ppem)
	w.WriteUint16(72) // ppi
	offset := 4 + 4*(uint32(numGlyphs)+1)
	for glyphID := uint16(0); glyphID < numGlyphs; glyphID++ {
		w.WriteUint32(offset)
		if data, ok := graphics[glyphID]; ok {
			offset += 8 + uint32(len(data))
		}
	}
	w.WriteUint32(offset)
	for glyphID := uint16(0); glyphID < numGlyphs; glyphID++ {
		if data, ok := graphics[glyphID]; ok {
			w.WriteInt16(0)
			w.WriteInt16(0)
			w.WriteString("png ")
			w.WriteBytes(data)
		}
	}
	return w.Bytes()
}
