package font

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/tdewolff/parse/v2"
)

// CmapSubtable is a character to glyph mapping of a single format.
type CmapSubtable interface {
	Format() uint16
	Get(rune) (uint16, bool)
	ToUnicode(uint16) (rune, bool)

	// Mapping returns all mapped characters, characters mapped to .notdef are left out.
	Mapping() map[rune]uint16

	data() []byte
}

// cmapRaw holds the subtable as stored in the font, it is written back unchanged.
type cmapRaw struct {
	raw []byte
}

func (subtable *cmapRaw) data() []byte {
	return subtable.raw
}

type cmapFormat0 struct {
	cmapRaw
	GlyphIdArray [256]uint8

	unicodeMap map[uint16]rune
	once       sync.Once
}

func (subtable *cmapFormat0) Format() uint16 {
	return 0
}

func (subtable *cmapFormat0) Get(r rune) (uint16, bool) {
	if r < 0 || 256 <= r {
		return 0, false
	}
	return uint16(subtable.GlyphIdArray[r]), true
}

func (subtable *cmapFormat0) ToUnicode(glyphID uint16) (rune, bool) {
	if 256 <= glyphID {
		return 0, false
	}
	subtable.once.Do(func() {
		subtable.unicodeMap = make(map[uint16]rune, 256)
		for r, id := range subtable.GlyphIdArray {
			if _, ok := subtable.unicodeMap[uint16(id)]; !ok {
				subtable.unicodeMap[uint16(id)] = rune(r)
			}
		}
	})
	r, ok := subtable.unicodeMap[glyphID]
	return r, ok
}

func (subtable *cmapFormat0) Mapping() map[rune]uint16 {
	m := map[rune]uint16{}
	for r, id := range subtable.GlyphIdArray {
		if id != 0 {
			m[rune(r)] = uint16(id)
		}
	}
	return m
}

type cmapFormat4 struct {
	cmapRaw
	StartCode     []uint16
	EndCode       []uint16
	IdDelta       []int16
	IdRangeOffset []uint16
	GlyphIdArray  []uint16

	unicodeMap map[uint16]rune
	once       sync.Once
}

func (subtable *cmapFormat4) Format() uint16 {
	return 4
}

func (subtable *cmapFormat4) glyphID(i int, r rune) uint16 {
	if subtable.IdRangeOffset[i] == 0 {
		// is modulo 65536 with the idDelta cast and addition overflow
		return uint16(subtable.IdDelta[i]) + uint16(r)
	}
	// idRangeOffset/2  ->  offset value to index of words
	// r-startCode  ->  difference of rune with startCode
	// -(n-i)  ->  subtract offset from the current idRangeOffset item
	index := int(subtable.IdRangeOffset[i]/2) + int(uint16(r)-subtable.StartCode[i]) - (len(subtable.StartCode) - i)
	glyphID := subtable.GlyphIdArray[index] // index is always valid
	if glyphID != 0 {
		glyphID += uint16(subtable.IdDelta[i])
	}
	return glyphID
}

func (subtable *cmapFormat4) Get(r rune) (uint16, bool) {
	if r < 0 || 65536 <= r {
		return 0, false
	}
	// segments are sorted by endCode
	n := len(subtable.EndCode)
	i := sort.Search(n, func(i int) bool { return uint16(r) <= subtable.EndCode[i] })
	if i < n && subtable.StartCode[i] <= uint16(r) {
		return subtable.glyphID(i, r), true
	}
	return 0, false
}

func (subtable *cmapFormat4) ToUnicode(glyphID uint16) (rune, bool) {
	subtable.once.Do(func() {
		subtable.unicodeMap = map[uint16]rune{}
		for i := 0; i < len(subtable.StartCode); i++ {
			for r := rune(subtable.StartCode[i]); r <= rune(subtable.EndCode[i]); r++ {
				id := subtable.glyphID(i, r)
				if _, ok := subtable.unicodeMap[id]; !ok {
					subtable.unicodeMap[id] = r
				}
			}
		}
	})
	r, ok := subtable.unicodeMap[glyphID]
	return r, ok
}

func (subtable *cmapFormat4) Mapping() map[rune]uint16 {
	m := map[rune]uint16{}
	for i := 0; i < len(subtable.StartCode); i++ {
		for r := rune(subtable.StartCode[i]); r <= rune(subtable.EndCode[i]); r++ {
			if r == 0xFFFF {
				break
			} else if id := subtable.glyphID(i, r); id != 0 {
				m[r] = id
			}
		}
	}
	return m
}

type cmapFormat6 struct {
	cmapRaw
	FirstCode    uint16
	GlyphIdArray []uint16
}

func (subtable *cmapFormat6) Format() uint16 {
	return 6
}

func (subtable *cmapFormat6) Get(r rune) (uint16, bool) {
	if r < int32(subtable.FirstCode) || uint32(len(subtable.GlyphIdArray)) <= uint32(r)-uint32(subtable.FirstCode) {
		return 0, false
	}
	return subtable.GlyphIdArray[uint32(r)-uint32(subtable.FirstCode)], true
}

func (subtable *cmapFormat6) ToUnicode(glyphID uint16) (rune, bool) {
	for i, id := range subtable.GlyphIdArray {
		if id == glyphID {
			return rune(subtable.FirstCode) + rune(i), true
		}
	}
	return 0, false
}

func (subtable *cmapFormat6) Mapping() map[rune]uint16 {
	m := map[rune]uint16{}
	for i, id := range subtable.GlyphIdArray {
		if id != 0 {
			m[rune(subtable.FirstCode)+rune(i)] = id
		}
	}
	return m
}

type cmapFormat12 struct {
	cmapRaw
	StartCharCode []uint32
	EndCharCode   []uint32
	StartGlyphID  []uint32

	unicodeMap map[uint16]rune
	once       sync.Once
}

func (subtable *cmapFormat12) Format() uint16 {
	return 12
}

func (subtable *cmapFormat12) Get(r rune) (uint16, bool) {
	if r < 0 {
		return 0, false
	}
	n := len(subtable.EndCharCode)
	i := sort.Search(n, func(i int) bool { return uint32(r) <= subtable.EndCharCode[i] })
	if i < n && subtable.StartCharCode[i] <= uint32(r) {
		return uint16((uint32(r) - subtable.StartCharCode[i]) + subtable.StartGlyphID[i]), true
	}
	return 0, false
}

func (subtable *cmapFormat12) ToUnicode(glyphID uint16) (rune, bool) {
	subtable.once.Do(func() {
		subtable.unicodeMap = map[uint16]rune{}
		for i := 0; i < len(subtable.StartCharCode); i++ {
			for r := subtable.StartCharCode[i]; r <= subtable.EndCharCode[i]; r++ {
				id := uint16((r - subtable.StartCharCode[i]) + subtable.StartGlyphID[i])
				if _, ok := subtable.unicodeMap[id]; !ok {
					subtable.unicodeMap[id] = rune(r)
				}
			}
		}
	})
	r, ok := subtable.unicodeMap[glyphID]
	return r, ok
}

func (subtable *cmapFormat12) Mapping() map[rune]uint16 {
	m := map[rune]uint16{}
	for i := 0; i < len(subtable.StartCharCode); i++ {
		for r := subtable.StartCharCode[i]; r <= subtable.EndCharCode[i]; r++ {
			if id := uint16((r - subtable.StartCharCode[i]) + subtable.StartGlyphID[i]); id != 0 {
				m[rune(r)] = id
			}
		}
	}
	return m
}

// cmapFormat14 holds the non-default glyphs of Unicode variation sequences, keyed by base character.
type cmapFormat14 struct {
	cmapRaw
	glyphIDMap map[rune]uint16

	unicodeMap map[uint16]rune
	once       sync.Once
}

func (subtable *cmapFormat14) Format() uint16 {
	return 14
}

func (subtable *cmapFormat14) Get(r rune) (uint16, bool) {
	glyphID, ok := subtable.glyphIDMap[r]
	return glyphID, ok
}

func (subtable *cmapFormat14) ToUnicode(glyphID uint16) (rune, bool) {
	subtable.once.Do(func() {
		subtable.unicodeMap = make(map[uint16]rune, len(subtable.glyphIDMap))
		for r, glyphID := range subtable.glyphIDMap {
			subtable.unicodeMap[glyphID] = r
		}
	})
	r, ok := subtable.unicodeMap[glyphID]
	return r, ok
}

func (subtable *cmapFormat14) Mapping() map[rune]uint16 {
	m := make(map[rune]uint16, len(subtable.glyphIDMap))
	for r, glyphID := range subtable.glyphIDMap {
		m[r] = glyphID
	}
	return m
}

// cmapFormatOther is a subtable of a format that is not interpreted.
type cmapFormatOther struct {
	cmapRaw
	format uint16
}

func (subtable *cmapFormatOther) Format() uint16 {
	return subtable.format
}

func (subtable *cmapFormatOther) Get(r rune) (uint16, bool) {
	return 0, false
}

func (subtable *cmapFormatOther) ToUnicode(glyphID uint16) (rune, bool) {
	return 0, false
}

func (subtable *cmapFormatOther) Mapping() map[rune]uint16 {
	return map[rune]uint16{}
}

////////////////////////////////////////////////////////////////

func cmapWriteFormat4(w *parse.BinaryWriter, rs []rune, runeMap map[rune]uint16) error {
	data := cmapFormat4{}
	useRange := []bool{}
	addSegment := func(firstCode, lastCode rune, glyphIDs []uint16, contiguous bool) {
		data.EndCode = append(data.EndCode, uint16(lastCode))
		data.StartCode = append(data.StartCode, uint16(firstCode))
		if contiguous {
			// use idDelta
			firstGlyph := glyphIDs[0]
			delta := int(firstGlyph) - int(firstCode)
			if math.MaxInt16 < delta {
				delta -= 65536
			} else if delta < math.MinInt16 {
				delta += 65536
			}
			data.IdDelta = append(data.IdDelta, int16(delta))
			data.IdRangeOffset = append(data.IdRangeOffset, 0)
			useRange = append(useRange, false)
		} else {
			// use idRangeOffset
			// set the value of IdRangeOffset to the offset in GlyphIdArray, updated below
			data.IdDelta = append(data.IdDelta, 0)
			data.IdRangeOffset = append(data.IdRangeOffset, uint16(len(data.GlyphIdArray)))
			data.GlyphIdArray = append(data.GlyphIdArray, glyphIDs...)
			useRange = append(useRange, true)
		}
	}

	if 0 < len(rs) {
		i0 := 0
		glyphIDs := []uint16{runeMap[rs[0]]}
		for i := 1; i <= len(rs); i++ {
			if i == len(rs) || rs[i-1]+1 != rs[i] {
				// Find subsets of glyphIDs that are contiguous for at least 9 glyphs in a row.
				// Track index before which is already written as segment (j0) and track index
				// before which glyph indices are not contiguous (jc).
				j0, jc := 0, 0
				for j := 1; j <= len(glyphIDs); j++ {
					if j == len(glyphIDs) || glyphIDs[j-1]+1 != glyphIDs[j] && 8 < j-jc {
						if 8 < j-jc && j0 != jc {
							addSegment(rs[i0+j0], rs[i0+(jc-1)], glyphIDs[j0:jc], false)
							addSegment(rs[i0+jc], rs[i0+(j-1)], glyphIDs[jc:j], true)
							j0, jc = j, j
						} else if j == len(glyphIDs) {
							addSegment(rs[i0+j0], rs[i0+(j-1)], glyphIDs[j0:j], j0 == jc)
						}
						if j == len(glyphIDs) {
							break
						}
					} else if glyphIDs[j-1]+1 != glyphIDs[j] {
						jc = j
					}
				}
				if i == len(rs) {
					break
				}
				glyphIDs = glyphIDs[:0]
				i0 = i
			}
			glyphIDs = append(glyphIDs, runeMap[rs[i]])
		}
	}
	if len(rs) == 0 || rs[len(rs)-1] != 0xFFFF {
		addSegment(0xFFFF, 0xFFFF, []uint16{0}, true) // map to .notdef
	}

	start := w.Len()
	w.WriteUint16(4) // format
	w.WriteUint16(0) // length (set later)
	w.WriteUint16(0) // language

	segCount := uint16(len(data.StartCode))
	searchRange := uint16(math.Exp2(math.Floor(math.Log2(float64(segCount)))))
	entrySelector := uint16(math.Log2(float64(searchRange)))
	w.WriteUint16(segCount * 2)                 // segCountX2
	w.WriteUint16(searchRange * 2)              // searchRange
	w.WriteUint16(entrySelector)                // entrySelector
	w.WriteUint16((segCount - searchRange) * 2) // rangeShift

	for _, endCode := range data.EndCode {
		w.WriteUint16(endCode)
	}
	w.WriteUint16(0) // reservedPad
	for _, startCode := range data.StartCode {
		w.WriteUint16(startCode)
	}
	for _, idDelta := range data.IdDelta {
		w.WriteInt16(idDelta)
	}
	for i, idRangeOffset := range data.IdRangeOffset {
		if !useRange[i] {
			w.WriteUint16(0)
		} else {
			glyphIdArrayStart := uint16(len(data.IdRangeOffset) - i)
			w.WriteUint16((glyphIdArrayStart + idRangeOffset) * 2) // times 2 since entries are 16 bit
		}
	}
	for _, glyphID := range data.GlyphIdArray {
		w.WriteUint16(glyphID)
	}

	if 0xFFFF < w.Len()-start {
		return fmt.Errorf("cmap: format 4 subtable exceeds 65535 bytes")
	}
	binary.BigEndian.PutUint16(w.Bytes()[start+2:], uint16(w.Len()-start)) // set length
	return nil
}

func cmapWriteFormat12(w *parse.BinaryWriter, rs []rune, runeMap map[rune]uint16) {
	start := w.Len()
	w.WriteUint16(12) // format
	w.WriteUint16(0)  // reserved
	w.WriteUint32(0)  // length (set later)
	w.WriteUint32(0)  // language
	w.WriteUint32(0)  // numGroups (set later)

	numGroups := uint32(0)
	if 0 < len(rs) {
		numGroups = 1
		startCharCode := uint32(rs[0])
		startGlyphID := uint32(runeMap[rs[0]])
		n := uint32(1)
		for i := 1; i < len(rs); i++ {
			r := rs[i]
			glyphID := runeMap[r]
			if r == rs[i-1] {
				continue
			} else if uint32(r) == startCharCode+n && uint32(glyphID) == startGlyphID+n {
				n++
			} else {
				w.WriteUint32(startCharCode)         // startCharCode
				w.WriteUint32(startCharCode + n - 1) // endCharCode
				w.WriteUint32(startGlyphID)          // startGlyphID
				numGroups++
				startCharCode = uint32(r)
				startGlyphID = uint32(glyphID)
				n = 1
			}
		}
		w.WriteUint32(startCharCode)         // startCharCode
		w.WriteUint32(startCharCode + n - 1) // endCharCode
		w.WriteUint32(startGlyphID)          // startGlyphID
	}

	binary.BigEndian.PutUint32(w.Bytes()[start+4:], w.Len()-start) // set length
	binary.BigEndian.PutUint32(w.Bytes()[start+12:], numGroups)    // set numGroups
}

// NewCmapSubtable returns a subtable of format 4 or 12 holding the given mapping. Characters mapped to .notdef are left out.
func NewCmapSubtable(format uint16, mapping map[rune]uint16, numGlyphs uint16) (CmapSubtable, error) {
	rs := make([]rune, 0, len(mapping))
	for r, glyphID := range mapping {
		if r < 0 || 0x10FFFF < r {
			return nil, fmt.Errorf("cmap: bad character %#x", r)
		} else if numGlyphs <= glyphID {
			return nil, fmt.Errorf("cmap: bad glyphID %d for character %#x", glyphID, r)
		} else if glyphID != 0 {
			rs = append(rs, r)
		}
	}
	sort.Slice(rs, func(i, j int) bool { return rs[i] < rs[j] })

	w := parse.NewBinaryWriter([]byte{})
	switch format {
	case 4:
		if 0 < len(rs) && 0xFFFF < rs[len(rs)-1] {
			return nil, fmt.Errorf("cmap: character %#x outside the BMP in format 4", rs[len(rs)-1])
		} else if err := cmapWriteFormat4(w, rs, mapping); err != nil {
			return nil, err
		}
	case 12:
		cmapWriteFormat12(w, rs, mapping)
	default:
		return nil, fmt.Errorf("cmap: cannot write format %d", format)
	}
	return parseCmapSubtable(w.Bytes(), numGlyphs)
}

////////////////////////////////////////////////////////////////

// CmapEncodingRecord maps a platform and encoding to a subtable.
type CmapEncodingRecord struct {
	PlatformID PlatformID
	EncodingID EncodingID
	Format     uint16
	Subtable   uint16
}

// CmapTable is the character to glyph index mapping table.
type CmapTable struct {
	EncodingRecords []CmapEncodingRecord
	Subtables       []CmapSubtable
}

// Get returns the glyph ID for the corresponding rune. It looks in the subtables in the order of the encoding records and returns the first match, or 0 when no match is found. Variation sequence subtables are skipped.
func (cmap *CmapTable) Get(r rune) uint16 {
	for _, record := range cmap.EncodingRecords {
		if record.Format == 14 {
			continue
		} else if glyphID, ok := cmap.Subtables[record.Subtable].Get(r); ok && glyphID != 0 {
			return glyphID
		}
	}
	return 0
}

// ToUnicode returns the rune for the corresponding glyph ID. It looks in the subtables in the order of the encoding records and returns the first match, or 0 when no match is found.
func (cmap *CmapTable) ToUnicode(glyphID uint16) rune {
	for _, record := range cmap.EncodingRecords {
		if record.Format == 14 {
			continue
		} else if r, ok := cmap.Subtables[record.Subtable].ToUnicode(glyphID); ok {
			return r
		}
	}
	return 0
}

// Find returns the index of the first encoding record with the given platform and encoding, or -1.
func (cmap *CmapTable) Find(platform PlatformID, encoding EncodingID) int {
	for i, record := range cmap.EncodingRecords {
		if record.PlatformID == platform && record.EncodingID == encoding {
			return i
		}
	}
	return -1
}

// Subtable returns the subtable of the i-th encoding record.
func (cmap *CmapTable) Subtable(i int) CmapSubtable {
	return cmap.Subtables[cmap.EncodingRecords[i].Subtable]
}

// Insert adds an encoding record with its own subtable at position i.
func (cmap *CmapTable) Insert(i int, platform PlatformID, encoding EncodingID, subtable CmapSubtable) {
	if i < 0 || len(cmap.EncodingRecords) < i {
		i = len(cmap.EncodingRecords)
	}
	cmap.Subtables = append(cmap.Subtables, subtable)
	record := CmapEncodingRecord{
		PlatformID: platform,
		EncodingID: encoding,
		Format:     subtable.Format(),
		Subtable:   uint16(len(cmap.Subtables) - 1),
	}
	cmap.EncodingRecords = append(cmap.EncodingRecords, CmapEncodingRecord{})
	copy(cmap.EncodingRecords[i+1:], cmap.EncodingRecords[i:])
	cmap.EncodingRecords[i] = record
}

// Replace sets the subtable of the i-th encoding record. Other records sharing the old subtable keep it.
func (cmap *CmapTable) Replace(i int, subtable CmapSubtable) {
	index := cmap.EncodingRecords[i].Subtable
	shared := false
	for j, record := range cmap.EncodingRecords {
		if j != i && record.Subtable == index {
			shared = true
			break
		}
	}
	if shared {
		cmap.Subtables = append(cmap.Subtables, subtable)
		cmap.EncodingRecords[i].Subtable = uint16(len(cmap.Subtables) - 1)
	} else {
		cmap.Subtables[index] = subtable
	}
	cmap.EncodingRecords[i].Format = subtable.Format()
}

// Write returns the table data. Encoding records are sorted by platform and encoding, each referenced subtable is written once.
func (cmap *CmapTable) Write() []byte {
	records := make([]CmapEncodingRecord, len(cmap.EncodingRecords))
	copy(records, cmap.EncodingRecords)
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].PlatformID != records[j].PlatformID {
			return records[i].PlatformID < records[j].PlatformID
		}
		return records[i].EncodingID < records[j].EncodingID
	})

	w := parse.NewBinaryWriter([]byte{})
	w.WriteUint16(0) // version
	w.WriteUint16(uint16(len(records)))

	offset := 4 + 8*uint32(len(records))
	offsets := map[uint16]uint32{}
	order := []uint16{}
	for _, record := range records {
		subtableOffset, ok := offsets[record.Subtable]
		if !ok {
			subtableOffset = offset
			offsets[record.Subtable] = offset
			order = append(order, record.Subtable)
			offset += uint32(len(cmap.Subtables[record.Subtable].data()))
		}
		w.WriteUint16(uint16(record.PlatformID))
		w.WriteUint16(uint16(record.EncodingID))
		w.WriteUint32(subtableOffset)
	}
	for _, index := range order {
		w.WriteBytes(cmap.Subtables[index].data())
	}
	return w.Bytes()
}

func (sfnt *SFNT) parseCmap() error {
	if sfnt.Maxp == nil {
		return fmt.Errorf("cmap: missing maxp table")
	}

	b, ok := sfnt.Tables["cmap"]
	if !ok {
		return fmt.Errorf("cmap: missing table")
	} else if len(b) < 4 {
		return fmt.Errorf("cmap: bad table")
	}

	sfnt.Cmap = &CmapTable{}
	r := parse.NewBinaryReader(b)
	if r.ReadUint16() != 0 {
		return fmt.Errorf("cmap: bad version")
	}
	numTables := r.ReadUint16()
	if uint32(len(b)) < 4+8*uint32(numTables) {
		return fmt.Errorf("cmap: bad table")
	}

	// find and extract subtables and make sure they don't overlap each other
	offsets, lengths := []uint32{0}, []uint32{4 + 8*uint32(numTables)}
	for j := 0; j < int(numTables); j++ {
		platformID := PlatformID(r.ReadUint16())
		encodingID := EncodingID(r.ReadUint16())
		subtableID := -1

		offset := r.ReadUint32()
		if uint32(len(b))-8 < offset { // to extract the subtable format and length
			return fmt.Errorf("cmap: bad subtable %d", j)
		}

		format, length, err := cmapSubtableLength(b[offset:])
		if err != nil {
			return fmt.Errorf("cmap: %v for subtable %d", err, j)
		} else if uint32(len(b))-offset < length {
			return fmt.Errorf("cmap: bad subtable %d", j)
		}
		for i := 0; i < len(offsets); i++ {
			if 0 < i && offset == offsets[i] && length == lengths[i] {
				subtableID = i - 1
				break
			} else if offset < offsets[i]+lengths[i] && offsets[i] < offset+length {
				return fmt.Errorf("cmap: bad subtable %d", j)
			}
		}
		if format == 14 && (platformID != PlatformUnicode || encodingID != EncodingUnicodeVariationSequences) {
			return fmt.Errorf("cmap: bad subtable %d", j)
		}

		if subtableID == -1 {
			subtable, err := parseCmapSubtable(b[offset:offset+length:offset+length], sfnt.Maxp.NumGlyphs)
			if err != nil {
				return fmt.Errorf("%v in subtable %d", err, j)
			}
			subtableID = len(sfnt.Cmap.Subtables)
			offsets = append(offsets, offset)
			lengths = append(lengths, length)
			sfnt.Cmap.Subtables = append(sfnt.Cmap.Subtables, subtable)
		}
		sfnt.Cmap.EncodingRecords = append(sfnt.Cmap.EncodingRecords, CmapEncodingRecord{
			PlatformID: platformID,
			EncodingID: encodingID,
			Format:     format,
			Subtable:   uint16(subtableID),
		})
	}
	return nil
}

func cmapSubtableLength(b []byte) (uint16, uint32, error) {
	rs := parse.NewBinaryReader(b)
	format := rs.ReadUint16()
	var length uint32
	if format == 0 || format == 2 || format == 4 || format == 6 {
		length = uint32(rs.ReadUint16())
	} else if format == 8 || format == 10 || format == 12 || format == 13 {
		_ = rs.ReadUint16() // reserved
		length = rs.ReadUint32()
	} else if format == 14 {
		length = rs.ReadUint32()
	} else {
		return format, 0, fmt.Errorf("bad format %d", format)
	}
	if rs.EOF() || length < 8 {
		return format, 0, fmt.Errorf("bad length")
	}
	return format, length, nil
}

func parseCmapSubtable(b []byte, numGlyphs uint16) (CmapSubtable, error) {
	format, length, err := cmapSubtableLength(b)
	if err != nil {
		return nil, fmt.Errorf("cmap: %v", err)
	} else if uint32(len(b)) < length {
		return nil, fmt.Errorf("cmap: bad length")
	}
	b = b[:length:length]

	rs := parse.NewBinaryReader(b)
	switch format {
	case 0:
		if length < 262 {
			return nil, fmt.Errorf("cmap: bad format 0")
		}
		_ = rs.ReadBytes(6) // format, length, language

		subtable := &cmapFormat0{cmapRaw: cmapRaw{b}}
		copy(subtable.GlyphIdArray[:], rs.ReadBytes(256))
		for _, glyphID := range subtable.GlyphIdArray {
			if numGlyphs <= uint16(glyphID) {
				return nil, fmt.Errorf("cmap: bad glyphID")
			}
		}
		return subtable, nil
	case 4:
		if length < 16 {
			return nil, fmt.Errorf("cmap: bad format 4")
		}
		_ = rs.ReadBytes(6) // format, length, language

		segCount := rs.ReadUint16()
		if segCount%2 != 0 || segCount == 0 {
			return nil, fmt.Errorf("cmap: bad segCount")
		}
		segCount /= 2
		if MaxCmapSegments < segCount {
			return nil, fmt.Errorf("cmap: too many segments")
		}
		_ = rs.ReadUint16() // searchRange
		_ = rs.ReadUint16() // entrySelector
		_ = rs.ReadUint16() // rangeShift

		subtable := &cmapFormat4{cmapRaw: cmapRaw{b}}
		if rs.Len() < 2+8*uint32(segCount) {
			return nil, fmt.Errorf("cmap: bad format 4")
		}
		subtable.EndCode = make([]uint16, segCount)
		for i := 0; i < int(segCount); i++ {
			endCode := rs.ReadUint16()
			if 0 < i && endCode <= subtable.EndCode[i-1] {
				return nil, fmt.Errorf("cmap: bad endCode")
			}
			subtable.EndCode[i] = endCode
		}
		_ = rs.ReadUint16() // reservedPad
		subtable.StartCode = make([]uint16, segCount)
		for i := 0; i < int(segCount); i++ {
			startCode := rs.ReadUint16()
			if subtable.EndCode[i] < startCode || 0 < i && startCode <= subtable.EndCode[i-1] {
				return nil, fmt.Errorf("cmap: bad startCode")
			}
			subtable.StartCode[i] = startCode
		}
		if subtable.StartCode[segCount-1] != 0xFFFF || subtable.EndCode[segCount-1] != 0xFFFF {
			return nil, fmt.Errorf("cmap: bad last startCode or endCode")
		}

		subtable.IdDelta = make([]int16, segCount)
		for i := 0; i < int(segCount-1); i++ {
			subtable.IdDelta[i] = rs.ReadInt16()
		}
		_ = rs.ReadUint16() // last value may be invalid
		subtable.IdDelta[segCount-1] = 1

		glyphIdArrayLength := rs.Len() - 2*uint32(segCount)
		if glyphIdArrayLength%2 != 0 {
			return nil, fmt.Errorf("cmap: bad format 4")
		}
		glyphIdArrayLength /= 2

		subtable.IdRangeOffset = make([]uint16, segCount)
		for i := 0; i < int(segCount-1); i++ {
			idRangeOffset := rs.ReadUint16()
			if idRangeOffset%2 != 0 {
				return nil, fmt.Errorf("cmap: bad idRangeOffset")
			} else if idRangeOffset != 0 {
				index := int(idRangeOffset/2) + int(subtable.EndCode[i]-subtable.StartCode[i]) - (int(segCount) - i)
				if index < 0 || glyphIdArrayLength <= uint32(index) || int(idRangeOffset/2) < int(segCount)-i {
					return nil, fmt.Errorf("cmap: bad idRangeOffset")
				}
			}
			subtable.IdRangeOffset[i] = idRangeOffset
		}
		_ = rs.ReadUint16() // last value may be invalid
		subtable.IdRangeOffset[segCount-1] = 0

		subtable.GlyphIdArray = make([]uint16, glyphIdArrayLength)
		for i := 0; i < int(glyphIdArrayLength); i++ {
			glyphID := rs.ReadUint16()
			if numGlyphs <= glyphID {
				return nil, fmt.Errorf("cmap: bad glyphID")
			}
			subtable.GlyphIdArray[i] = glyphID
		}
		return subtable, nil
	case 6:
		if length < 10 {
			return nil, fmt.Errorf("cmap: bad format 6")
		}
		_ = rs.ReadBytes(6) // format, length, language

		subtable := &cmapFormat6{cmapRaw: cmapRaw{b}}
		subtable.FirstCode = rs.ReadUint16()
		entryCount := rs.ReadUint16()
		if rs.Len() < 2*uint32(entryCount) {
			return nil, fmt.Errorf("cmap: bad format 6")
		}
		subtable.GlyphIdArray = make([]uint16, entryCount)
		for i := 0; i < int(entryCount); i++ {
			subtable.GlyphIdArray[i] = rs.ReadUint16()
		}
		return subtable, nil
	case 12:
		if length < 16 {
			return nil, fmt.Errorf("cmap: bad format 12")
		}
		_ = rs.ReadBytes(12) // format, reserved, length, language
		numGroups := rs.ReadUint32()
		if MaxCmapSegments < numGroups {
			return nil, fmt.Errorf("cmap: too many segments")
		} else if rs.Len() < 12*numGroups {
			return nil, fmt.Errorf("cmap: bad format 12")
		}

		subtable := &cmapFormat12{cmapRaw: cmapRaw{b}}
		subtable.StartCharCode = make([]uint32, numGroups)
		subtable.EndCharCode = make([]uint32, numGroups)
		subtable.StartGlyphID = make([]uint32, numGroups)
		for i := 0; i < int(numGroups); i++ {
			startCharCode := rs.ReadUint32()
			endCharCode := rs.ReadUint32()
			startGlyphID := rs.ReadUint32()
			if endCharCode < startCharCode || 0 < i && startCharCode <= subtable.EndCharCode[i-1] {
				return nil, fmt.Errorf("cmap: bad character code range")
			} else if uint32(numGlyphs) <= endCharCode-startCharCode || uint32(numGlyphs)-(endCharCode-startCharCode) <= startGlyphID {
				return nil, fmt.Errorf("cmap: bad glyphID")
			}
			subtable.StartCharCode[i] = startCharCode
			subtable.EndCharCode[i] = endCharCode
			subtable.StartGlyphID[i] = startGlyphID
		}
		return subtable, nil
	case 14:
		_ = rs.ReadBytes(6) // format, length
		numVarSelectorRecords := rs.ReadUint32()
		if MaxCmapSegments < numVarSelectorRecords || rs.Len() < 11*numVarSelectorRecords {
			return nil, fmt.Errorf("cmap: bad format 14")
		}
		subtable := &cmapFormat14{cmapRaw: cmapRaw{b}, glyphIDMap: map[rune]uint16{}}
		for i := 0; i < int(numVarSelectorRecords); i++ {
			_ = rs.ReadBytes(3) // varSelector
			_ = rs.ReadUint32() // defaultUVSOffset
			nonDefaultUVSOffset := rs.ReadUint32()
			if nonDefaultUVSOffset == 0 {
				continue
			} else if length-4 < nonDefaultUVSOffset {
				return nil, fmt.Errorf("cmap: bad format 14")
			}
			ru := parse.NewBinaryReader(b[nonDefaultUVSOffset:])
			numUVSMappings := ru.ReadUint32()
			if MaxCmapSegments < numUVSMappings || ru.Len() < 5*numUVSMappings {
				return nil, fmt.Errorf("cmap: bad format 14")
			}
			for k := 0; k < int(numUVSMappings); k++ {
				unicodeValue := ru.ReadBytes(3)
				glyphID := ru.ReadUint16()
				if numGlyphs <= glyphID {
					return nil, fmt.Errorf("cmap: bad glyphID")
				}
				r := rune(unicodeValue[0])<<16 | rune(unicodeValue[1])<<8 | rune(unicodeValue[2])
				if _, ok := subtable.glyphIDMap[r]; !ok {
					subtable.glyphIDMap[r] = glyphID
				}
			}
		}
		return subtable, nil
	}
	return &cmapFormatOther{cmapRaw: cmapRaw{b}, format: format}, nil
}
