package font

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/andybalholm/brotli"
	"github.com/tdewolff/parse/v2"
)

// Specification:
// https://www.w3.org/TR/WOFF2/

type woff2Table struct {
	tag              string
	origLength       uint32
	transformVersion int
	data             []byte
}

var woff2TableTags = []string{
	"cmap", "head", "hhea", "hmtx",
	"maxp", "name", "OS/2", "post",
	"cvt ", "fpgm", "glyf", "loca",
	"prep", "CFF ", "VORG", "EBDT",
	"EBLC", "gasp", "hdmx", "kern",
	"LTSH", "PCLT", "VDMX", "vhea",
	"vmtx", "BASE", "GDEF", "GPOS",
	"GSUB", "EBSC", "JSTF", "MATH",
	"CBDT", "CBLC", "COLR", "CPAL",
	"SVG ", "sbix", "acnt", "avar",
	"bdat", "bloc", "bsln", "cvar",
	"fdsc", "feat", "fmtx", "fvar",
	"gvar", "hsty", "just", "lcar",
	"mort", "morx", "opbd", "prop",
	"trak", "Zapf", "Silf", "Glat",
	"Gloc", "Feat", "Sill",
}

// ParseWOFF2 parses the WOFF2 font format and returns its contained SFNT font format (TTF or OTF). Only fonts without table transformations are supported, which is what WriteWOFF2 produces. See https://www.w3.org/TR/WOFF2/
func ParseWOFF2(b []byte) ([]byte, error) {
	if len(b) < 48 {
		return nil, ErrInvalidFontData
	}

	r := parse.NewBinaryReader(b)
	signature := r.ReadString(4)
	if signature != "wOF2" {
		return nil, fmt.Errorf("bad signature")
	}
	flavor := r.ReadUint32()
	if uint32ToString(flavor) == "ttcf" {
		return nil, fmt.Errorf("collections are unsupported")
	}
	length := r.ReadUint32()              // length
	numTables := r.ReadUint16()           // numTables
	reserved := r.ReadUint16()            // reserved
	_ = r.ReadUint32()                    // totalSfntSize
	totalCompressedSize := r.ReadUint32() // totalCompressedSize
	_ = r.ReadUint16()                    // majorVersion
	_ = r.ReadUint16()                    // minorVersion
	_ = r.ReadUint32()                    // metaOffset
	_ = r.ReadUint32()                    // metaLength
	_ = r.ReadUint32()                    // metaOrigLength
	_ = r.ReadUint32()                    // privOffset
	_ = r.ReadUint32()                    // privLength
	if r.EOF() {
		return nil, ErrInvalidFontData
	} else if length != uint32(len(b)) {
		return nil, fmt.Errorf("length in header must match file size")
	} else if numTables == 0 {
		return nil, fmt.Errorf("numTables in header must not be zero")
	} else if reserved != 0 {
		return nil, fmt.Errorf("reserved in header must be zero")
	}

	tags := []string{}
	tagTableIndex := map[string]int{}
	tables := []woff2Table{}
	var uncompressedSize uint32
	for i := 0; i < int(numTables); i++ {
		flags := r.ReadByte()
		tagIndex := int(flags & 0x3F)
		transformVersion := int((flags & 0xC0) >> 6)

		var tag string
		if tagIndex == 63 {
			tag = uint32ToString(r.ReadUint32())
		} else {
			tag = woff2TableTags[tagIndex]
		}

		origLength, err := readUintBase128(r) // if EOF is encountered above
		if err != nil {
			return nil, err
		}

		if (tag == "glyf" || tag == "loca") && transformVersion == 0 || tag == "hmtx" && transformVersion == 1 {
			return nil, fmt.Errorf("%s: transformed tables are unsupported", tag)
		} else if transformVersion == 0 || transformVersion == 3 && (tag == "glyf" || tag == "loca") {
			if math.MaxUint32-uncompressedSize < origLength {
				return nil, ErrInvalidFontData
			}
			uncompressedSize += origLength
		} else {
			return nil, fmt.Errorf("%s: invalid transformation", tag)
		}

		if _, ok := tagTableIndex[tag]; ok {
			return nil, fmt.Errorf("%s: table defined more than once", tag)
		}
		tags = append(tags, tag)
		tagTableIndex[tag] = len(tables)
		tables = append(tables, woff2Table{
			tag:              tag,
			origLength:       origLength,
			transformVersion: transformVersion,
		})
	}

	// decompress font data using Brotli
	compData := r.ReadBytes(totalCompressedSize)
	if r.EOF() {
		return nil, ErrInvalidFontData
	} else if MaxMemory < uncompressedSize {
		return nil, ErrExceedsMemory
	}
	rBrotli := brotli.NewReader(bytes.NewReader(compData)) // err is always nil
	dataBuf := bytes.NewBuffer(make([]byte, 0, uncompressedSize))
	if _, err := io.Copy(dataBuf, io.LimitReader(rBrotli, int64(uncompressedSize)+1)); err != nil {
		return nil, err
	}
	data := dataBuf.Bytes()
	if uint32(len(data)) != uncompressedSize {
		return nil, fmt.Errorf("sum of table lengths must match decompressed font data size")
	}

	// read font data
	var offset uint32
	for i := range tables {
		n := tables[i].origLength
		tables[i].data = data[offset : offset+n : offset+n]
		offset += n
	}

	// set checkSumAdjustment to zero to enable calculation of table checksum and overal checksum
	iHead, hasHead := tagTableIndex["head"]
	if !hasHead || len(tables[iHead].data) < 18 {
		return nil, fmt.Errorf("head: must be present")
	}
	binary.BigEndian.PutUint32(tables[iHead].data[8:], 0x00000000) // clear checkSumAdjustment
	if flags := binary.BigEndian.Uint16(tables[iHead].data[16:]); flags&0x0800 == 0 {
		return nil, fmt.Errorf("head: bit 11 in flags must be set")
	}

	if _, hasDSIG := tagTableIndex["DSIG"]; hasDSIG {
		return nil, fmt.Errorf("DSIG: must be removed")
	}

	sfntTables := make(map[string][]byte, len(tables))
	for _, table := range tables {
		sfntTables[table.tag] = table.data
	}
	return writeSFNT(flavor, sfntTables), nil
}

func readUintBase128(r *parse.BinaryReader) (uint32, error) {
	// see https://www.w3.org/TR/WOFF2/#DataTypes
	var accum uint32
	for i := 0; i < 5; i++ {
		dataByte := r.ReadByte()
		if r.EOF() {
			return 0, ErrInvalidFontData
		}
		if i == 0 && dataByte == 0x80 {
			return 0, fmt.Errorf("readUintBase128: must not start with leading zeros")
		}
		if (accum & 0xFE000000) != 0 {
			return 0, fmt.Errorf("readUintBase128: overflow")
		}
		accum = (accum << 7) | uint32(dataByte&0x7F)
		if (dataByte & 0x80) == 0 {
			return accum, nil
		}
	}
	return 0, fmt.Errorf("readUintBase128: exceeds 5 bytes")
}

// WriteWOFF2 writes out the font in the WOFF2 format. Tables are stored without transformations, and the DSIG table is left out.
func (sfnt *SFNT) WriteWOFF2() ([]byte, error) {
	tables, err := sfnt.outputTables()
	if err != nil {
		return nil, err
	}
	delete(tables, "DSIG")

	tags := make([]string, 0, len(tables))
	totalSfntSize := 12 + 16*uint32(len(tables))
	for tag, table := range tables {
		tags = append(tags, tag)
		totalSfntSize += uint32(len(table)) + padding(uint32(len(table)))
	}
	sort.Strings(tags)

	w := parse.NewBinaryWriter([]byte{})
	w.WriteString("wOF2")            // signature
	w.WriteString(sfnt.Version)      // flavor
	w.WriteUint32(0)                 // length (set later)
	w.WriteUint16(uint16(len(tags))) // numTables
	w.WriteUint16(0)                 // reserved
	w.WriteUint32(totalSfntSize)     // totalSfntSize
	w.WriteUint32(0)                 // totalCompressedSize (set later)
	w.WriteUint16(1)                 // majorVersion
	w.WriteUint16(0)                 // minorVersion
	w.WriteUint32(0)                 // metaOffset
	w.WriteUint32(0)                 // metaLength
	w.WriteUint32(0)                 // metaOrigLength
	w.WriteUint32(0)                 // privOffset
	w.WriteUint32(0)                 // privLength

	for _, tag := range tags {
		tagIndex := -1
		for index, woff2Tag := range woff2TableTags {
			if woff2Tag == tag {
				tagIndex = index
				break
			}
		}

		transformVersion := 0
		if tag == "glyf" || tag == "loca" {
			transformVersion = 3 // null transform
		}
		if tagIndex == -1 {
			w.WriteUint8(byte(transformVersion)<<6 | 0x3F) // flags
			w.WriteString(tag)                             // tag
		} else {
			w.WriteUint8(byte(transformVersion)<<6 | byte(tagIndex)) // flags
		}
		writeUintBase128(w, uint32(len(tables[tag])))
	}

	var compressed bytes.Buffer
	wBrotli := brotli.NewWriter(&compressed)
	for _, tag := range tags {
		table := tables[tag]
		if tag == "head" {
			// head is a copy made by outputTables
			flags := binary.BigEndian.Uint16(table[16:])
			flags |= 0x0800 // set bit 11, font is compressed
			binary.BigEndian.PutUint16(table[16:], flags)
		}
		if _, err := wBrotli.Write(table); err != nil {
			return nil, err
		}
	}
	if err := wBrotli.Close(); err != nil {
		return nil, err
	}
	totalCompressedSize := uint32(compressed.Len())
	w.WriteBytes(compressed.Bytes())

	// pad to 4-byte boundary
	// apparently not in the specification, but required by at least Firefox
	for i := padding(w.Len()); 0 < i; i-- {
		w.WriteByte(0)
	}

	b := w.Bytes()
	binary.BigEndian.PutUint32(b[8:], uint32(len(b)))       // length
	binary.BigEndian.PutUint32(b[20:], totalCompressedSize) // totalCompressedSize
	return b, nil
}

func writeUintBase128(w *parse.BinaryWriter, accum uint32) {
	// see https://www.w3.org/TR/WOFF2/#DataTypes
	if accum == 0 {
		w.WriteByte(0)
	}
	written := false
	for i := 4; 0 <= i; i-- {
		mask := uint32(0x7F) << (i * 7)
		if v := accum & mask; written || v != 0 {
			v >>= i * 7
			if i != 0 {
				v |= 0x80
			}
			w.WriteByte(byte(v))
			written = true
		}
	}
}
