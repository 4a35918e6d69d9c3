package font

import (
	"fmt"

	"github.com/tdewolff/parse/v2"
)

// SbixGlyph is the graphic of a glyph in an sbix strike.
type SbixGlyph struct {
	GlyphID       uint16
	OriginOffsetX int16
	OriginOffsetY int16
	GraphicType   string // such as png, jpg, tiff, or dupe
	Data          []byte
}

// SbixStrike is a set of glyph graphics for one pixel size.
type SbixStrike struct {
	PPEM   uint16
	PPI    uint16
	Glyphs []SbixGlyph // glyphs with data, in glyph order
}

// SbixTable is the standard bitmap graphics table. It is only read.
type SbixTable struct {
	Version uint16
	Flags   uint16
	Strikes []SbixStrike
}

func (sfnt *SFNT) parseSbix() error {
	b, ok := sfnt.Tables["sbix"]
	if !ok {
		return fmt.Errorf("sbix: missing table")
	} else if len(b) < 8 {
		return fmt.Errorf("sbix: bad table")
	}

	sfnt.Sbix = &SbixTable{}
	r := parse.NewBinaryReader(b)
	sfnt.Sbix.Version = r.ReadUint16()
	sfnt.Sbix.Flags = r.ReadUint16()
	if sfnt.Sbix.Version != 1 {
		return fmt.Errorf("sbix: bad version")
	}
	numStrikes := r.ReadUint32()
	if uint64(r.Len()) < 4*uint64(numStrikes) {
		return fmt.Errorf("sbix: bad table")
	}

	numGlyphs := uint32(sfnt.NumGlyphs())
	sfnt.Sbix.Strikes = make([]SbixStrike, numStrikes)
	for i := range sfnt.Sbix.Strikes {
		offset := r.ReadUint32()
		if uint64(len(b)) < uint64(offset)+4+4*(uint64(numGlyphs)+1) {
			return fmt.Errorf("sbix: bad strike %d", i)
		}
		strike := &sfnt.Sbix.Strikes[i]
		rs := parse.NewBinaryReader(b[offset:])
		strike.PPEM = rs.ReadUint16()
		strike.PPI = rs.ReadUint16()
		offsets := make([]uint32, numGlyphs+1)
		for j := range offsets {
			offsets[j] = rs.ReadUint32()
			if 0 < j && offsets[j] < offsets[j-1] {
				return fmt.Errorf("sbix: bad glyph offsets in strike %d", i)
			}
		}
		if uint64(len(b)) < uint64(offset)+uint64(offsets[numGlyphs]) {
			return fmt.Errorf("sbix: bad strike %d", i)
		}
		for j := uint32(0); j < numGlyphs; j++ {
			length := offsets[j+1] - offsets[j]
			if length == 0 {
				continue
			} else if length < 8 {
				return fmt.Errorf("sbix: bad glyph %d in strike %d", j, i)
			}
			rg := parse.NewBinaryReader(b[offset+offsets[j] : offset+offsets[j+1]])
			strike.Glyphs = append(strike.Glyphs, SbixGlyph{
				GlyphID:       uint16(j),
				OriginOffsetX: rg.ReadInt16(),
				OriginOffsetY: rg.ReadInt16(),
				GraphicType:   rg.ReadString(4),
				Data:          rg.ReadBytes(length - 8),
			})
		}
	}
	return nil
}
