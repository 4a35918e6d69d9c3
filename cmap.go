package emojiwin

import (
	"fmt"

	"github.com/emojiwin/emojiwin/font"
)

// CmapReport describes the changes made to the character map.
type CmapReport struct {
	SynthesizedBMP    bool // a (3,1) subtable was added
	BMPCount          int  // number of characters in the added (3,1) subtable
	ConvertedFormat12 bool // the (3,10) subtable was converted to format 12
	MissingUnicode    bool // there is neither a (3,1) nor a (3,10) subtable
}

// Changed returns true if the character map was modified.
func (r CmapReport) Changed() bool {
	return r.SynthesizedBMP || r.ConvertedFormat12
}

// NormalizeCmap makes sure the font has the Windows character maps. When the Windows BMP subtable (3,1) is missing, it is synthesized from the characters in the BMP of the Windows full Unicode subtable (3,10) and inserted right after it. Supplementary characters stay in (3,10) only. The (3,10) subtable is converted to format 12 when it has another format.
func NormalizeCmap(sfnt *font.SFNT, log Logger) (CmapReport, error) {
	log = orDiscard(log)
	report := CmapReport{}
	if sfnt.Cmap == nil {
		log.Printf("cmap: missing table")
		report.MissingUnicode = true
		return report, nil
	}

	cmap := sfnt.Cmap
	iBMP := cmap.Find(font.PlatformWindows, font.EncodingWindowsUnicodeBMP)
	iFull := cmap.Find(font.PlatformWindows, font.EncodingWindowsUnicodeFullRepertoire)
	if iBMP == -1 && iFull == -1 {
		log.Printf("cmap: no Windows Unicode subtable, characters may not be found on Windows")
		report.MissingUnicode = true
		return report, nil
	}

	if iBMP == -1 {
		full := cmap.Subtable(iFull).Mapping()
		bmp := make(map[rune]uint16, len(full))
		for r, glyphID := range full {
			if 0 <= r && r <= 0xFFFF {
				bmp[r] = glyphID
			}
		}
		subtable, err := font.NewCmapSubtable(4, bmp, sfnt.NumGlyphs())
		if err != nil {
			return report, fmt.Errorf("cmap: synthesize BMP subtable: %w", err)
		}
		cmap.Insert(iFull+1, font.PlatformWindows, font.EncodingWindowsUnicodeBMP, subtable)
		report.SynthesizedBMP = true
		report.BMPCount = len(subtable.Mapping())
		log.Printf("cmap: added Windows Unicode BMP subtable with %d characters, supplementary characters stay in the full Unicode subtable", report.BMPCount)
	}

	if iFull != -1 {
		if format := cmap.Subtable(iFull).Format(); format != 12 {
			subtable, err := font.NewCmapSubtable(12, cmap.Subtable(iFull).Mapping(), sfnt.NumGlyphs())
			if err != nil {
				return report, fmt.Errorf("cmap: convert to format 12: %w", err)
			}
			cmap.Replace(iFull, subtable)
			report.ConvertedFormat12 = true
			log.Printf("cmap: converted Windows full Unicode subtable from format %d to format 12", format)
		}
	}

	if report.Changed() {
		sfnt.SetTable("cmap", cmap.Write())
	}
	return report, nil
}
