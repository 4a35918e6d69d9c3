package font

import (
	"encoding/binary"
	"fmt"

	"github.com/tdewolff/parse/v2"
)

// BitmapGlyph is the bitmap data of a glyph in a strike.
type BitmapGlyph struct {
	Format uint16
	Small  *SmallGlyphMetrics // format 17
	Big    *BigGlyphMetrics   // format 18

	// Raw is the record as stored in the font, it is nil for glyphs that have been changed
	Raw []byte

	// Image is the embedded image, or nil if the record could not be read
	Image []byte
}

// Size returns the width and height of the glyph from its metrics. The shared metrics of the index subtable are used for format 19.
func (glyph *BitmapGlyph) Size(shared *BigGlyphMetrics) (int, int, bool) {
	if glyph.Small != nil {
		return int(glyph.Small.Width), int(glyph.Small.Height), true
	} else if glyph.Big != nil {
		return int(glyph.Big.Width), int(glyph.Big.Height), true
	} else if shared != nil {
		return int(shared.Width), int(shared.Height), true
	}
	return 0, 0, false
}

func parseBitmapGlyph(format uint16, b []byte) *BitmapGlyph {
	glyph := &BitmapGlyph{
		Format: format,
		Raw:    b,
	}
	r := parse.NewBinaryReader(b)
	switch format {
	case 17:
		if len(b) < 9 {
			return glyph
		}
		glyph.Small = &SmallGlyphMetrics{
			Height:   r.ReadUint8(),
			Width:    r.ReadUint8(),
			BearingX: r.ReadInt8(),
			BearingY: r.ReadInt8(),
			Advance:  r.ReadUint8(),
		}
	case 18:
		if len(b) < 12 {
			return glyph
		}
		glyph.Big = readBigGlyphMetrics(r)
	case 19:
		if len(b) < 4 {
			return glyph
		}
	default:
		return glyph
	}
	dataLen := r.ReadUint32()
	if dataLen <= r.Len() {
		glyph.Image = r.ReadBytes(dataLen)
	}
	return glyph
}

// record returns the glyph record in the given image format. Unchanged glyphs are returned as stored, except for format 19 which is converted to format 18 using the shared metrics.
func (glyph *BitmapGlyph) record(format uint16, shared *BigGlyphMetrics) ([]byte, error) {
	if glyph.Raw != nil && glyph.Format == format {
		return glyph.Raw, nil
	}

	image := glyph.Image
	if image == nil && glyph.Raw != nil && glyph.Format == 19 && 4 <= len(glyph.Raw) {
		image = glyph.Raw[4:]
	}
	if glyph.Format != format && (glyph.Format != 19 || format != 18) {
		return nil, fmt.Errorf("image format %d does not match index subtable format %d", glyph.Format, format)
	}

	w := parse.NewBinaryWriter([]byte{})
	switch format {
	case 17:
		if glyph.Small == nil {
			w.WriteBytes(make([]byte, 5))
		} else {
			w.WriteUint8(glyph.Small.Height)
			w.WriteUint8(glyph.Small.Width)
			w.WriteUint8(uint8(glyph.Small.BearingX))
			w.WriteUint8(uint8(glyph.Small.BearingY))
			w.WriteUint8(glyph.Small.Advance)
		}
	case 18:
		big := glyph.Big
		if big == nil {
			big = shared
		}
		writeBigGlyphMetrics(w, big)
	case 19:
	default:
		return nil, fmt.Errorf("cannot write image format %d", format)
	}
	w.WriteUint32(uint32(len(image)))
	w.WriteBytes(image)
	return w.Bytes(), nil
}

// StrikeData holds the bitmap glyphs of a strike.
type StrikeData struct {
	Glyphs map[uint16]*BitmapGlyph

	// Err is set when glyph locations fall outside the table, those glyphs are left out.
	Err error
}

// CBDTTable is the color bitmap data table. Its strikes correspond to the strikes of CBLC.
type CBDTTable struct {
	MajorVersion uint16
	MinorVersion uint16
	Strikes      []StrikeData
}

func (sfnt *SFNT) parseCBDT() error {
	if sfnt.CBLC == nil {
		return fmt.Errorf("CBDT: missing CBLC table")
	}

	b, ok := sfnt.Tables["CBDT"]
	if !ok {
		return fmt.Errorf("CBDT: missing table")
	} else if len(b) < 4 {
		return fmt.Errorf("CBDT: bad table")
	}

	sfnt.CBDT = &CBDTTable{}
	sfnt.CBDT.MajorVersion = binary.BigEndian.Uint16(b)
	sfnt.CBDT.MinorVersion = binary.BigEndian.Uint16(b[2:])
	if sfnt.CBDT.MajorVersion != 2 && sfnt.CBDT.MajorVersion != 3 {
		return fmt.Errorf("CBDT: bad version")
	}

	sfnt.CBDT.Strikes = make([]StrikeData, len(sfnt.CBLC.Strikes))
	for i, strike := range sfnt.CBLC.Strikes {
		data := &sfnt.CBDT.Strikes[i]
		data.Glyphs = map[uint16]*BitmapGlyph{}
		for _, sub := range strike.IndexSubtables {
			for k, glyphID := range sub.GlyphIDs {
				loc := sub.locations[k]
				if uint64(len(b)) < uint64(loc.offset)+uint64(loc.length) {
					if data.Err == nil {
						data.Err = fmt.Errorf("CBDT: strike %d: glyph %d out of bounds", i, glyphID)
					}
					continue
				}
				data.Glyphs[glyphID] = parseBitmapGlyph(sub.ImageFormat, b[loc.offset:loc.offset+loc.length:loc.offset+loc.length])
			}
		}
	}
	return nil
}
