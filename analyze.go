package emojiwin

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/emojiwin/emojiwin/font"
)

// EssentialTables are the tables that applications on Windows expect.
var EssentialTables = []string{"maxp", "hhea", "hmtx", "cmap", "name", "OS/2", "head", "post"}

// CmapInfo summarizes a cmap encoding record.
type CmapInfo struct {
	Platform font.PlatformID
	Encoding font.EncodingID
	Format   uint16
	Count    int
}

func (info CmapInfo) String() string {
	return fmt.Sprintf("%v %s (format %d, %d chars)", info.Platform, font.EncodingName(info.Platform, info.Encoding), info.Format, info.Count)
}

// Analysis is a summary of the font's structure with regard to Windows compatibility.
type Analysis struct {
	OS2                          *font.OS2Table
	Ascender, Descender, LineGap uint16 // effective vertical metrics

	Cmap []CmapInfo

	HasSbix, HasCOLR, HasCBDT, HasGlyf bool
	StrikeSizes                        [][2]int

	Missing []string // essential tables
	Notes   []string
}

// Analyze inspects the font structure. It never modifies the font.
func Analyze(sfnt *font.SFNT) *Analysis {
	a := &Analysis{
		OS2:     sfnt.OS2,
		HasSbix: sfnt.HasTable("sbix"),
		HasCOLR: sfnt.HasTable("COLR") && sfnt.HasTable("CPAL"),
		HasCBDT: sfnt.HasTable("CBDT") && sfnt.HasTable("CBLC"),
		HasGlyf: sfnt.HasTable("glyf"),
	}
	if sfnt.Hhea != nil {
		a.Ascender, a.Descender, a.LineGap = sfnt.VerticalMetrics()
	}

	if sfnt.Cmap != nil {
		for i, record := range sfnt.Cmap.EncodingRecords {
			a.Cmap = append(a.Cmap, CmapInfo{
				Platform: record.PlatformID,
				Encoding: record.EncodingID,
				Format:   record.Format,
				Count:    len(sfnt.Cmap.Subtable(i).Mapping()),
			})
		}
	}
	if sfnt.CBLC != nil {
		for _, strike := range sfnt.CBLC.Strikes {
			a.StrikeSizes = append(a.StrikeSizes, [2]int{int(strike.PPEMX), int(strike.PPEMY)})
		}
	}
	for _, tag := range EssentialTables {
		if !sfnt.HasTable(tag) {
			a.Missing = append(a.Missing, tag)
		}
	}
	a.Notes = a.troubleshoot(sfnt)
	return a
}

func (a *Analysis) troubleshoot(sfnt *font.SFNT) []string {
	notes := []string{}
	if a.OS2 == nil {
		notes = append(notes, "OS/2 table is missing, DirectWrite needs it for the vertical metrics")
	} else if a.OS2.FsSelection&0x0080 == 0 {
		notes = append(notes, "USE_TYPO_METRICS is not set, DirectWrite uses the hhea metrics and emoji may be clipped or empty")
	}

	if sfnt.Cmap == nil || sfnt.Cmap.Find(font.PlatformWindows, font.EncodingWindowsUnicodeBMP) == -1 {
		notes = append(notes, "No Windows Unicode BMP (3,1) cmap subtable, Windows may not find any characters")
	}
	if sfnt.Cmap == nil {
		notes = append(notes, "No Windows full Unicode (3,10) cmap subtable, emoji outside the BMP cannot be found")
	} else if i := sfnt.Cmap.Find(font.PlatformWindows, font.EncodingWindowsUnicodeFullRepertoire); i == -1 {
		notes = append(notes, "No Windows full Unicode (3,10) cmap subtable, emoji outside the BMP cannot be found")
	} else if sfnt.Cmap.EncodingRecords[i].Format != 12 {
		notes = append(notes, fmt.Sprintf("Windows full Unicode (3,10) cmap subtable has format %d instead of 12", sfnt.Cmap.EncodingRecords[i].Format))
	}

	if !a.HasSbix && !a.HasCOLR && !a.HasCBDT && !a.HasGlyf {
		notes = append(notes, "No emoji formats detected")
	} else if a.HasSbix && !a.HasCOLR && !a.HasCBDT {
		notes = append(notes, "Only Apple sbix color bitmaps are present, DirectWrite does not render them")
	}
	if a.HasCBDT && !a.HasCOLR {
		notes = append(notes, "Font uses CBDT/CBLC bitmaps, Windows prefers COLR/CPAL and some applications may not render them")
	}
	sizes := []string{}
	for _, size := range a.StrikeSizes {
		if !IsCanonicalSize(size[0]) || !IsCanonicalSize(size[1]) {
			sizes = append(sizes, fmt.Sprintf("%dx%d", size[0], size[1]))
		}
	}
	if 0 < len(sizes) {
		notes = append(notes, fmt.Sprintf("Bitmap strike sizes %s are not in %v, DirectWrite may drop them", strings.Join(sizes, ", "), CanonicalSizes))
	}
	if 0 < len(a.Missing) {
		notes = append(notes, fmt.Sprintf("Missing essential tables: %s", strings.Join(a.Missing, ", ")))
	}
	tags := make([]string, 0, len(sfnt.TableErrors))
	for tag := range sfnt.TableErrors {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	for _, tag := range tags {
		notes = append(notes, fmt.Sprintf("%s table is damaged: %v", tag, sfnt.TableErrors[tag]))
	}
	return notes
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// WriteTo writes the plain-text report. The sections are OS/2, CMAP, COLOR FORMATS, ESSENTIAL TABLES, and TROUBLESHOOTING, in that order.
func (a *Analysis) WriteTo(w io.Writer) (int64, error) {
	buf := &bytes.Buffer{}
	fmt.Fprintf(buf, "== OS/2 ==\n")
	if a.OS2 == nil {
		fmt.Fprintf(buf, "Missing table\n")
	} else {
		fmt.Fprintf(buf, "Version: %d\n", a.OS2.Version)
		fmt.Fprintf(buf, "Weight: %d\n", a.OS2.UsWeightClass)
		fmt.Fprintf(buf, "USE_TYPO_METRICS: %s\n", yesNo(a.OS2.FsSelection&0x0080 != 0))
		fmt.Fprintf(buf, "Typographic metrics: ascender=%d descender=%d lineGap=%d\n", a.OS2.STypoAscender, a.OS2.STypoDescender, a.OS2.STypoLineGap)
		fmt.Fprintf(buf, "Character range: U+%04X to U+%04X\n", a.OS2.UsFirstCharIndex, a.OS2.UsLastCharIndex)
	}
	fmt.Fprintf(buf, "Effective vertical metrics: ascender=%d descender=%d lineGap=%d\n", a.Ascender, a.Descender, a.LineGap)

	fmt.Fprintf(buf, "\n== CMAP ==\n")
	fmt.Fprintf(buf, "Subtables: %d\n", len(a.Cmap))
	for _, info := range a.Cmap {
		fmt.Fprintf(buf, "- %v\n", info)
	}

	fmt.Fprintf(buf, "\n== COLOR FORMATS ==\n")
	fmt.Fprintf(buf, "sbix: %s\n", yesNo(a.HasSbix))
	fmt.Fprintf(buf, "COLR/CPAL: %s\n", yesNo(a.HasCOLR))
	if a.HasCBDT {
		sizes := make([]string, len(a.StrikeSizes))
		for i, size := range a.StrikeSizes {
			sizes[i] = fmt.Sprintf("%dx%d", size[0], size[1])
		}
		fmt.Fprintf(buf, "CBDT/CBLC: yes (strikes: %s)\n", strings.Join(sizes, ", "))
	} else {
		fmt.Fprintf(buf, "CBDT/CBLC: no\n")
	}
	fmt.Fprintf(buf, "glyf: %s\n", yesNo(a.HasGlyf))

	fmt.Fprintf(buf, "\n== ESSENTIAL TABLES ==\n")
	for _, tag := range EssentialTables {
		status := "present"
		for _, missing := range a.Missing {
			if tag == missing {
				status = "missing"
				break
			}
		}
		fmt.Fprintf(buf, "%s: %s\n", tag, status)
	}

	fmt.Fprintf(buf, "\n== TROUBLESHOOTING ==\n")
	if len(a.Notes) == 0 {
		fmt.Fprintf(buf, "No problems found\n")
	}
	for _, note := range a.Notes {
		fmt.Fprintf(buf, "- %s\n", note)
	}
	n, err := w.Write(buf.Bytes())
	return int64(n), err
}
