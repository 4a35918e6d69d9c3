package main

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/emojiwin/emojiwin/font"
	"github.com/tdewolff/parse/v2"
)

type Info struct {
	Index int    `short:"i" desc:"Font index for font collections."`
	Input string `index:"0" desc:"Input font file or system font name."`
}

func (cmd *Info) Run() error {
	filename, err := resolveFont(cmd.Input)
	if err != nil {
		return err
	}

	var b []byte
	if filename == "-" {
		b, err = io.ReadAll(os.Stdin)
	} else {
		b, err = os.ReadFile(filename)
	}
	if err != nil {
		return err
	}
	mimetype, _ := font.MediaType(b)
	if b, err = font.ToSFNT(b); err != nil {
		return err
	}

	r := parse.NewBinaryReader(b)
	sfntVersion := r.ReadString(4)
	version := "TrueType"
	if sfntVersion == "OTTO" {
		version = "CFF"
	} else if sfntVersion == "ttcf" {
		version = "Collection"
		_ = r.ReadUint32() // majorVersion and minorVersion
		numFonts := r.ReadUint32()
		if numFonts <= uint32(cmd.Index) || cmd.Index < 0 {
			return fmt.Errorf("font index %d out of range, collection has %d fonts", cmd.Index, numFonts)
		}
		_ = r.ReadBytes(4 * uint32(cmd.Index))
		offset := r.ReadUint32()
		if uint32(len(b)) < offset+4 {
			return font.ErrInvalidFontData
		}
		r = parse.NewBinaryReader(b[offset+4:])
	}
	numTables := int(r.ReadUint16())
	_ = r.ReadBytes(6)
	if r.EOF() {
		return font.ErrInvalidFontData
	}

	fmt.Printf("File: %s (%s)\n\n", filename, mimetype)
	fmt.Printf("sfntVersion: 0x%08X (%s)\n", sfntVersion, version)
	fmt.Printf("\nTable directory:\n")

	nLen := int(math.Log10(float64(len(b))) + 1)
	for i := 0; i < numTables; i++ {
		tag := r.ReadString(4)
		checksum := r.ReadUint32()
		offset := r.ReadUint32()
		length := r.ReadUint32()
		fmt.Printf("  %2d  %s  checksum=0x%08X  offset=%*d  length=%*d\n", i, tag, checksum, nLen, offset, nLen, length)
	}

	sfnt, err := font.ParseSFNT(b, cmd.Index)
	if err != nil {
		return err
	}
	fmt.Printf("\nGlyphs: %d\n", sfnt.NumGlyphs())
	if sfnt.Name != nil {
		if family := sfnt.Name.Get(font.NameFontFamily); 0 < len(family) {
			fmt.Printf("Family: %s\n", family[0].String())
		}
	}
	if sfnt.CBLC != nil {
		fmt.Printf("\nCBLC strikes:\n")
		for i, strike := range sfnt.CBLC.Strikes {
			format, _ := strike.ImageFormat()
			fmt.Printf("  %2d  %3dx%-3d  glyphs=%d-%d  subtables=%d  format=%d\n", i, strike.PPEMX, strike.PPEMY, strike.StartGlyphIndex, strike.EndGlyphIndex, len(strike.IndexSubtables), format)
		}
	}
	if sfnt.Sbix != nil {
		fmt.Printf("\nsbix strikes:\n")
		for i, strike := range sfnt.Sbix.Strikes {
			fmt.Printf("  %2d  ppem=%d  ppi=%d  glyphs=%d\n", i, strike.PPEM, strike.PPI, len(strike.Glyphs))
		}
	}
	for _, tag := range sfnt.TableErrorTags() {
		Warning.Printf("%s: %v\n", tag, sfnt.TableErrors[tag])
	}
	return nil
}
