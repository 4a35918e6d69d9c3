package font

import (
	"fmt"
	"sort"

	"github.com/tdewolff/parse/v2"
)

// SbitLineMetrics are the line metrics of a bitmap strike in one direction.
type SbitLineMetrics struct {
	Ascender              int8
	Descender             int8
	WidthMax              uint8
	CaretSlopeNumerator   int8
	CaretSlopeDenominator int8
	CaretOffset           int8
	MinOriginSB           int8
	MinAdvanceSB          int8
	MaxBeforeBL           int8
	MinAfterBL            int8
	Pad1, Pad2            int8
}

func readSbitLineMetrics(r *parse.BinaryReader) *SbitLineMetrics {
	return &SbitLineMetrics{
		Ascender:              r.ReadInt8(),
		Descender:             r.ReadInt8(),
		WidthMax:              r.ReadUint8(),
		CaretSlopeNumerator:   r.ReadInt8(),
		CaretSlopeDenominator: r.ReadInt8(),
		CaretOffset:           r.ReadInt8(),
		MinOriginSB:           r.ReadInt8(),
		MinAdvanceSB:          r.ReadInt8(),
		MaxBeforeBL:           r.ReadInt8(),
		MinAfterBL:            r.ReadInt8(),
		Pad1:                  r.ReadInt8(),
		Pad2:                  r.ReadInt8(),
	}
}

func writeSbitLineMetrics(w *parse.BinaryWriter, m *SbitLineMetrics) {
	if m == nil {
		w.WriteBytes(make([]byte, 12))
		return
	}
	w.WriteUint8(uint8(m.Ascender))
	w.WriteUint8(uint8(m.Descender))
	w.WriteUint8(m.WidthMax)
	w.WriteUint8(uint8(m.CaretSlopeNumerator))
	w.WriteUint8(uint8(m.CaretSlopeDenominator))
	w.WriteUint8(uint8(m.CaretOffset))
	w.WriteUint8(uint8(m.MinOriginSB))
	w.WriteUint8(uint8(m.MinAdvanceSB))
	w.WriteUint8(uint8(m.MaxBeforeBL))
	w.WriteUint8(uint8(m.MinAfterBL))
	w.WriteUint8(uint8(m.Pad1))
	w.WriteUint8(uint8(m.Pad2))
}

// SmallGlyphMetrics are the metrics of a bitmap glyph in one direction.
type SmallGlyphMetrics struct {
	Height   uint8
	Width    uint8
	BearingX int8
	BearingY int8
	Advance  uint8
}

// BigGlyphMetrics are the metrics of a bitmap glyph in both directions.
type BigGlyphMetrics struct {
	Height       uint8
	Width        uint8
	HoriBearingX int8
	HoriBearingY int8
	HoriAdvance  uint8
	VertBearingX int8
	VertBearingY int8
	VertAdvance  uint8
}

func readBigGlyphMetrics(r *parse.BinaryReader) *BigGlyphMetrics {
	return &BigGlyphMetrics{
		Height:       r.ReadUint8(),
		Width:        r.ReadUint8(),
		HoriBearingX: r.ReadInt8(),
		HoriBearingY: r.ReadInt8(),
		HoriAdvance:  r.ReadUint8(),
		VertBearingX: r.ReadInt8(),
		VertBearingY: r.ReadInt8(),
		VertAdvance:  r.ReadUint8(),
	}
}

func writeBigGlyphMetrics(w *parse.BinaryWriter, m *BigGlyphMetrics) {
	if m == nil {
		w.WriteBytes(make([]byte, 8))
		return
	}
	w.WriteUint8(m.Height)
	w.WriteUint8(m.Width)
	w.WriteUint8(uint8(m.HoriBearingX))
	w.WriteUint8(uint8(m.HoriBearingY))
	w.WriteUint8(m.HoriAdvance)
	w.WriteUint8(uint8(m.VertBearingX))
	w.WriteUint8(uint8(m.VertBearingY))
	w.WriteUint8(m.VertAdvance)
}

////////////////////////////////////////////////////////////////

type glyphLocation struct {
	offset, length uint32 // in CBDT
}

// IndexSubtable locates the bitmap data of a range of glyphs in CBDT.
type IndexSubtable struct {
	FirstGlyphIndex uint16
	LastGlyphIndex  uint16
	IndexFormat     uint16
	ImageFormat     uint16
	ImageDataOffset uint32

	// formats 2 and 5
	ImageSize  uint32
	BigMetrics *BigGlyphMetrics

	// GlyphIDs are the glyphs of the range that have bitmap data, in order of appearance
	GlyphIDs []uint16

	locations []glyphLocation
}

// BitmapStrike is a set of bitmap glyphs for one pixel size.
type BitmapStrike struct {
	ColorRef        uint32
	Hori, Vert      *SbitLineMetrics
	StartGlyphIndex uint16
	EndGlyphIndex   uint16
	PPEMX, PPEMY    uint8
	BitDepth        uint8
	Flags           int8

	IndexSubtables []IndexSubtable

	// Err is set when the index data of the strike could not be read.
	Err error
}

// ImageFormat returns the image format shared by all index subtables. It returns false if there are no index subtables or when they differ.
func (strike *BitmapStrike) ImageFormat() (uint16, bool) {
	if len(strike.IndexSubtables) == 0 {
		return 0, false
	}
	format := strike.IndexSubtables[0].ImageFormat
	for _, sub := range strike.IndexSubtables[1:] {
		if sub.ImageFormat != format {
			return 0, false
		}
	}
	return format, true
}

// NumGlyphs returns the number of glyphs with bitmap data.
func (strike *BitmapStrike) NumGlyphs() int {
	n := 0
	for _, sub := range strike.IndexSubtables {
		n += len(sub.GlyphIDs)
	}
	return n
}

// CBLCTable is the color bitmap location table.
type CBLCTable struct {
	MajorVersion uint16
	MinorVersion uint16
	Strikes      []BitmapStrike
}

func (sfnt *SFNT) parseCBLC() error {
	b, ok := sfnt.Tables["CBLC"]
	if !ok {
		return fmt.Errorf("CBLC: missing table")
	} else if len(b) < 8 {
		return fmt.Errorf("CBLC: bad table")
	}

	sfnt.CBLC = &CBLCTable{}
	r := parse.NewBinaryReader(b)
	sfnt.CBLC.MajorVersion = r.ReadUint16()
	sfnt.CBLC.MinorVersion = r.ReadUint16()
	if sfnt.CBLC.MajorVersion != 2 && sfnt.CBLC.MajorVersion != 3 {
		return fmt.Errorf("CBLC: bad version")
	}
	numSizes := r.ReadUint32()
	if uint64(r.Len()) < 48*uint64(numSizes) {
		return fmt.Errorf("CBLC: bad table")
	}

	sfnt.CBLC.Strikes = make([]BitmapStrike, numSizes)
	for i := range sfnt.CBLC.Strikes {
		strike := &sfnt.CBLC.Strikes[i]
		indexSubTableArrayOffset := r.ReadUint32()
		_ = r.ReadUint32() // indexTablesSize
		numberOfIndexSubTables := r.ReadUint32()
		strike.ColorRef = r.ReadUint32()
		strike.Hori = readSbitLineMetrics(r)
		strike.Vert = readSbitLineMetrics(r)
		strike.StartGlyphIndex = r.ReadUint16()
		strike.EndGlyphIndex = r.ReadUint16()
		strike.PPEMX = r.ReadUint8()
		strike.PPEMY = r.ReadUint8()
		strike.BitDepth = r.ReadUint8()
		strike.Flags = r.ReadInt8()

		subtables, err := parseIndexSubtables(b, indexSubTableArrayOffset, numberOfIndexSubTables)
		if err != nil {
			strike.Err = fmt.Errorf("CBLC: strike %d: %w", i, err)
			continue
		}
		strike.IndexSubtables = subtables
	}
	return nil
}

func parseIndexSubtables(b []byte, arrayOffset, n uint32) ([]IndexSubtable, error) {
	if uint64(len(b)) < uint64(arrayOffset)+8*uint64(n) {
		return nil, fmt.Errorf("bad indexSubTableArray")
	}

	subtables := make([]IndexSubtable, n)
	r := parse.NewBinaryReader(b[arrayOffset:])
	for j := range subtables {
		sub := &subtables[j]
		sub.FirstGlyphIndex = r.ReadUint16()
		sub.LastGlyphIndex = r.ReadUint16()
		additionalOffset := r.ReadUint32()
		if sub.LastGlyphIndex < sub.FirstGlyphIndex {
			return nil, fmt.Errorf("bad glyph range in index subtable %d", j)
		} else if uint64(len(b)) < uint64(arrayOffset)+uint64(additionalOffset)+8 {
			return nil, fmt.Errorf("bad index subtable %d", j)
		}
		if err := sub.parse(b[arrayOffset+additionalOffset:]); err != nil {
			return nil, fmt.Errorf("%v in index subtable %d", err, j)
		}
	}
	return subtables, nil
}

func (sub *IndexSubtable) parse(b []byte) error {
	r := parse.NewBinaryReader(b)
	sub.IndexFormat = r.ReadUint16()
	sub.ImageFormat = r.ReadUint16()
	sub.ImageDataOffset = r.ReadUint32()

	n := uint32(sub.LastGlyphIndex-sub.FirstGlyphIndex) + 1
	addLocation := func(glyphID uint16, offset, length uint32) {
		sub.GlyphIDs = append(sub.GlyphIDs, glyphID)
		sub.locations = append(sub.locations, glyphLocation{sub.ImageDataOffset + offset, length})
	}

	switch sub.IndexFormat {
	case 1, 3:
		size := uint32(4)
		if sub.IndexFormat == 3 {
			size = 2
		}
		if r.Len() < size*(n+1) {
			return fmt.Errorf("bad format %d", sub.IndexFormat)
		}
		offsets := make([]uint32, n+1)
		for i := range offsets {
			if size == 4 {
				offsets[i] = r.ReadUint32()
			} else {
				offsets[i] = uint32(r.ReadUint16())
			}
			if 0 < i && offsets[i] < offsets[i-1] {
				return fmt.Errorf("bad offsets")
			}
		}
		for i := uint32(0); i < n; i++ {
			if offsets[i] < offsets[i+1] {
				addLocation(sub.FirstGlyphIndex+uint16(i), offsets[i], offsets[i+1]-offsets[i])
			}
		}
	case 2:
		if r.Len() < 12 {
			return fmt.Errorf("bad format 2")
		}
		sub.ImageSize = r.ReadUint32()
		sub.BigMetrics = readBigGlyphMetrics(r)
		for i := uint32(0); i < n; i++ {
			addLocation(sub.FirstGlyphIndex+uint16(i), i*sub.ImageSize, sub.ImageSize)
		}
	case 4:
		if r.Len() < 4 {
			return fmt.Errorf("bad format 4")
		}
		numGlyphs := r.ReadUint32()
		if uint64(r.Len()) < 4*(uint64(numGlyphs)+1) {
			return fmt.Errorf("bad format 4")
		}
		glyphIDs := make([]uint16, numGlyphs+1)
		offsets := make([]uint32, numGlyphs+1)
		for i := range offsets {
			glyphIDs[i] = r.ReadUint16()
			offsets[i] = uint32(r.ReadUint16())
			if 0 < i && offsets[i] < offsets[i-1] {
				return fmt.Errorf("bad offsets")
			}
		}
		for i := uint32(0); i < numGlyphs; i++ {
			if glyphIDs[i] < sub.FirstGlyphIndex || sub.LastGlyphIndex < glyphIDs[i] {
				return fmt.Errorf("bad glyphID")
			} else if offsets[i] < offsets[i+1] {
				addLocation(glyphIDs[i], offsets[i], offsets[i+1]-offsets[i])
			}
		}
	case 5:
		if r.Len() < 16 {
			return fmt.Errorf("bad format 5")
		}
		sub.ImageSize = r.ReadUint32()
		sub.BigMetrics = readBigGlyphMetrics(r)
		numGlyphs := r.ReadUint32()
		if uint64(r.Len()) < 2*uint64(numGlyphs) {
			return fmt.Errorf("bad format 5")
		}
		for i := uint32(0); i < numGlyphs; i++ {
			glyphID := r.ReadUint16()
			if glyphID < sub.FirstGlyphIndex || sub.LastGlyphIndex < glyphID {
				return fmt.Errorf("bad glyphID")
			}
			addLocation(glyphID, i*sub.ImageSize, sub.ImageSize)
		}
	default:
		return fmt.Errorf("unsupported index format %d", sub.IndexFormat)
	}
	return nil
}

// RemoveStrike removes strike i from CBLC and its glyph data from CBDT.
func (cblc *CBLCTable) RemoveStrike(cbdt *CBDTTable, i int) {
	if i < 0 || len(cblc.Strikes) <= i {
		return
	}
	cblc.Strikes = append(cblc.Strikes[:i], cblc.Strikes[i+1:]...)
	if cbdt != nil && i < len(cbdt.Strikes) {
		cbdt.Strikes = append(cbdt.Strikes[:i], cbdt.Strikes[i+1:]...)
	}
}

////////////////////////////////////////////////////////////////

// Write returns the CBLC and CBDT table data. Strikes with unreadable index data cannot be written and must be removed first. Index subtables are written in format 1, or are kept in format 2 or 5 when none of their glyphs changed. Image format 19 becomes 18 when written in format 1.
func (cblc *CBLCTable) Write(cbdt *CBDTTable) ([]byte, []byte, error) {
	if cbdt == nil || len(cbdt.Strikes) != len(cblc.Strikes) {
		return nil, nil, fmt.Errorf("CBLC: strikes do not match CBDT")
	}

	data := parse.NewBinaryWriter([]byte{})
	data.WriteUint16(cbdt.MajorVersion)
	data.WriteUint16(cbdt.MinorVersion)

	indices := make([][]byte, len(cblc.Strikes))
	for i := range cblc.Strikes {
		strike := &cblc.Strikes[i]
		if strike.Err != nil {
			return nil, nil, fmt.Errorf("CBLC: strike %d cannot be written: %w", i, strike.Err)
		}

		index, err := writeStrike(strike, &cbdt.Strikes[i], data)
		if err != nil {
			return nil, nil, fmt.Errorf("CBLC: strike %d: %w", i, err)
		}
		indices[i] = index
	}

	w := parse.NewBinaryWriter([]byte{})
	w.WriteUint16(cblc.MajorVersion)
	w.WriteUint16(cblc.MinorVersion)
	w.WriteUint32(uint32(len(cblc.Strikes)))
	offset := 8 + 48*uint32(len(cblc.Strikes))
	for i, strike := range cblc.Strikes {
		numberOfIndexSubTables := uint32(len(strike.IndexSubtables))
		w.WriteUint32(offset)                  // indexSubTableArrayOffset
		w.WriteUint32(uint32(len(indices[i]))) // indexTablesSize
		w.WriteUint32(numberOfIndexSubTables)  // numberOfIndexSubTables
		w.WriteUint32(strike.ColorRef)
		writeSbitLineMetrics(w, strike.Hori)
		writeSbitLineMetrics(w, strike.Vert)
		w.WriteUint16(strike.StartGlyphIndex)
		w.WriteUint16(strike.EndGlyphIndex)
		w.WriteUint8(strike.PPEMX)
		w.WriteUint8(strike.PPEMY)
		w.WriteUint8(strike.BitDepth)
		w.WriteUint8(uint8(strike.Flags))
		offset += uint32(len(indices[i]))
	}
	for _, index := range indices {
		w.WriteBytes(index)
	}
	return w.Bytes(), data.Bytes(), nil
}

// writeStrike appends the glyph records to data and returns the IndexSubTableArray with its subtables. The strike's index subtables are updated to the new layout.
func writeStrike(strike *BitmapStrike, glyphs *StrikeData, data *parse.BinaryWriter) ([]byte, error) {
	n := uint32(len(strike.IndexSubtables))
	array := parse.NewBinaryWriter([]byte{})
	tables := parse.NewBinaryWriter([]byte{})
	for j := range strike.IndexSubtables {
		sub := &strike.IndexSubtables[j]
		constant := (sub.IndexFormat == 2 || sub.IndexFormat == 5) && sub.ImageSize != 0
		for _, glyphID := range sub.GlyphIDs {
			glyph, ok := glyphs.Glyphs[glyphID]
			if !ok || glyph.Raw == nil || uint32(len(glyph.Raw)) != sub.ImageSize {
				constant = false
				break
			}
		}

		order := sub.GlyphIDs
		imageFormat := sub.ImageFormat
		if !constant {
			order = sortGlyphIDs(sub.GlyphIDs)
			if imageFormat == 19 {
				imageFormat = 18
			}
		}
		imageDataOffset := data.Len()
		locations := make([]glyphLocation, 0, len(order))
		glyphIDs := make([]uint16, 0, len(order))
		for _, glyphID := range order {
			glyph, ok := glyphs.Glyphs[glyphID]
			if !ok {
				continue
			}
			record, err := glyph.record(imageFormat, sub.BigMetrics)
			if err != nil {
				return nil, fmt.Errorf("glyph %d: %w", glyphID, err)
			} else if len(record) == 0 {
				continue
			}
			locations = append(locations, glyphLocation{data.Len(), uint32(len(record))})
			glyphIDs = append(glyphIDs, glyphID)
			data.WriteBytes(record)
		}

		array.WriteUint16(sub.FirstGlyphIndex)
		array.WriteUint16(sub.LastGlyphIndex)
		array.WriteUint32(8*n + tables.Len()) // additionalOffsetToIndexSubtable

		if !constant {
			sub.IndexFormat = 1
			sub.ImageSize = 0
		}
		sub.ImageFormat = imageFormat
		sub.ImageDataOffset = imageDataOffset
		sub.GlyphIDs = glyphIDs
		sub.locations = locations

		tables.WriteUint16(sub.IndexFormat)
		tables.WriteUint16(sub.ImageFormat)
		tables.WriteUint32(sub.ImageDataOffset)
		switch sub.IndexFormat {
		case 1:
			k := 0
			offset := uint32(0)
			for glyphID := uint32(sub.FirstGlyphIndex); glyphID <= uint32(sub.LastGlyphIndex); glyphID++ {
				tables.WriteUint32(offset)
				if k < len(glyphIDs) && uint32(glyphIDs[k]) == glyphID {
					offset += locations[k].length
					k++
				}
			}
			tables.WriteUint32(offset)
		case 2:
			if len(glyphIDs) != int(sub.LastGlyphIndex-sub.FirstGlyphIndex)+1 {
				return nil, fmt.Errorf("index subtable %d: missing glyphs in format 2", j)
			}
			tables.WriteUint32(sub.ImageSize)
			writeBigGlyphMetrics(tables, sub.BigMetrics)
		case 5:
			tables.WriteUint32(sub.ImageSize)
			writeBigGlyphMetrics(tables, sub.BigMetrics)
			tables.WriteUint32(uint32(len(glyphIDs)))
			for _, glyphID := range glyphIDs {
				tables.WriteUint16(glyphID)
			}
		}
		for k := padding(tables.Len()); 0 < k; k-- {
			tables.WriteByte(0)
		}
	}

	if 0 < n {
		strike.StartGlyphIndex = strike.IndexSubtables[0].FirstGlyphIndex
		strike.EndGlyphIndex = strike.IndexSubtables[0].LastGlyphIndex
		for _, sub := range strike.IndexSubtables[1:] {
			if sub.FirstGlyphIndex < strike.StartGlyphIndex {
				strike.StartGlyphIndex = sub.FirstGlyphIndex
			}
			if strike.EndGlyphIndex < sub.LastGlyphIndex {
				strike.EndGlyphIndex = sub.LastGlyphIndex
			}
		}
	}
	array.WriteBytes(tables.Bytes())
	return array.Bytes(), nil
}

func sortGlyphIDs(glyphIDs []uint16) []uint16 {
	sorted := make([]uint16, len(glyphIDs))
	copy(sorted, glyphIDs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	n := 0
	for i, glyphID := range sorted {
		if i == 0 || glyphID != sorted[n-1] {
			sorted[n] = glyphID
			n++
		}
	}
	return sorted[:n]
}
