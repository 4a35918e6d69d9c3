package emojiwin

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/bits-and-blooms/bitset"
	"github.com/emojiwin/emojiwin/font"
	"github.com/emojiwin/emojiwin/raster"
)

// StrikeInfo is what is known about a bitmap strike. Fields that could not be determined have their Found flag unset.
type StrikeInfo struct {
	Table string // CBLC or sbix
	Index int

	Format      uint16
	FormatFound bool
	FormatProbe string // how the format was found
	Image       raster.Format

	Width, Height int
	SizeFound     bool
	SizeProbe     string // how the size was found

	NumSubtables int // CBLC only
	NumGlyphs    int
	Err          error

	Issues []string
}

// Name returns the strike's name as used in issues.
func (info *StrikeInfo) Name() string {
	if info.Table == "sbix" {
		return fmt.Sprintf("sbix strike %d", info.Index)
	}
	return fmt.Sprintf("Strike %d", info.Index)
}

// strikeSource is a CBLC strike with its data, or an sbix strike.
type strikeSource struct {
	cblc *font.BitmapStrike
	data *font.StrikeData
	sbix *font.SbixStrike
}

// firstPayload returns the image data of the first glyph of the strike.
func (src strikeSource) firstPayload() []byte {
	if src.sbix != nil {
		for _, glyph := range src.sbix.Glyphs {
			if strings.TrimSpace(glyph.GraphicType) != "dupe" {
				return glyph.Data
			}
		}
		return nil
	}
	glyph, _ := src.firstGlyph()
	if glyph == nil {
		return nil
	} else if glyph.Image != nil {
		return glyph.Image
	}
	if i, _ := raster.Locate(glyph.Raw); i != -1 {
		return glyph.Raw[i:]
	}
	return nil
}

func (src strikeSource) firstGlyph() (*font.BitmapGlyph, *font.BigGlyphMetrics) {
	if src.cblc == nil || src.data == nil {
		return nil, nil
	}
	for _, sub := range src.cblc.IndexSubtables {
		for _, glyphID := range sub.GlyphIDs {
			if glyph, ok := src.data.Glyphs[glyphID]; ok {
				return glyph, sub.BigMetrics
			}
		}
	}
	return nil, nil
}

type formatProbe struct {
	name  string
	probe func(strikeSource) (uint16, bool)
}

// formatProbes are tried in order until one finds the image format.
var formatProbes = []formatProbe{
	{"strike", func(src strikeSource) (uint16, bool) {
		if src.cblc != nil {
			return src.cblc.ImageFormat()
		} else if src.sbix != nil && 0 < len(src.sbix.Glyphs) {
			switch strings.TrimSpace(src.sbix.Glyphs[0].GraphicType) {
			case "png":
				return 17, true
			case "jpg":
				return 18, true
			}
		}
		return 0, false
	}},
	{"index subtable", func(src strikeSource) (uint16, bool) {
		if src.cblc != nil && 0 < len(src.cblc.IndexSubtables) {
			return src.cblc.IndexSubtables[0].ImageFormat, true
		}
		return 0, false
	}},
	{"image signature", func(src strikeSource) (uint16, bool) {
		switch format, _ := raster.Sniff(src.firstPayload()); format {
		case raster.PNG:
			return 17, true
		case raster.JPEG:
			return 18, true
		}
		return 0, false
	}},
}

type sizeProbe struct {
	name  string
	probe func(strikeSource) (int, int, bool)
}

// sizeProbes are tried in order until one finds the strike size.
var sizeProbes = []sizeProbe{
	{"ppem", func(src strikeSource) (int, int, bool) {
		if src.cblc != nil && (src.cblc.PPEMX != 0 || src.cblc.PPEMY != 0) {
			return int(src.cblc.PPEMX), int(src.cblc.PPEMY), true
		}
		return 0, 0, false
	}},
	{"combined ppem", func(src strikeSource) (int, int, bool) {
		if src.sbix != nil && src.sbix.PPEM != 0 {
			return int(src.sbix.PPEM), int(src.sbix.PPEM), true
		}
		return 0, 0, false
	}},
	{"glyph metrics", func(src strikeSource) (int, int, bool) {
		if glyph, shared := src.firstGlyph(); glyph != nil {
			if w, h, ok := glyph.Size(shared); ok && (w != 0 || h != 0) {
				return w, h, true
			}
		}
		if payload := src.firstPayload(); payload != nil {
			if w, h, err := raster.Dimensions(payload); err == nil {
				return w, h, true
			}
		}
		return 0, 0, false
	}},
}

func newStrikeInfo(table string, index int, src strikeSource) *StrikeInfo {
	info := &StrikeInfo{
		Table: table,
		Index: index,
	}
	info.Image, _ = raster.Sniff(src.firstPayload())
	for _, p := range formatProbes {
		if format, ok := p.probe(src); ok {
			info.Format, info.FormatFound, info.FormatProbe = format, true, p.name
			break
		}
	}
	for _, p := range sizeProbes {
		if w, h, ok := p.probe(src); ok {
			info.Width, info.Height, info.SizeFound, info.SizeProbe = w, h, true, p.name
			break
		}
	}
	if src.cblc != nil {
		info.NumSubtables = len(src.cblc.IndexSubtables)
		info.NumGlyphs = src.cblc.NumGlyphs()
		info.Err = src.cblc.Err
	} else if src.sbix != nil {
		info.NumGlyphs = len(src.sbix.Glyphs)
	}

	name := info.Name()
	if !info.FormatFound {
		info.Issues = append(info.Issues, fmt.Sprintf("%s: Cannot determine image format - this is critical for DirectWrite", name))
	} else if info.Format != 17 {
		info.Issues = append(info.Issues, fmt.Sprintf("%s: DirectWrite prefers PNG format (17), found %d (%s)", name, info.Format, imageFormatName(info.Format)))
	}
	if !info.SizeFound {
		info.Issues = append(info.Issues, fmt.Sprintf("%s: Cannot determine strike size", name))
	} else if !IsCanonicalSize(info.Width) || !IsCanonicalSize(info.Height) {
		info.Issues = append(info.Issues, fmt.Sprintf("%s: Unusual size %dx%d - DirectWrite prefers %v", name, info.Width, info.Height, CanonicalSizes))
	}
	if info.Err != nil {
		info.Issues = append(info.Issues, fmt.Sprintf("%s: Unreadable index data: %v", name, info.Err))
	} else if table == "CBLC" && info.NumSubtables == 0 {
		info.Issues = append(info.Issues, fmt.Sprintf("%s: Missing or empty index subtables", name))
	}
	return info
}

func imageFormatName(format uint16) string {
	switch format {
	case 17:
		return "PNG with small metrics"
	case 18:
		return "PNG with big metrics"
	case 19:
		return "PNG with shared metrics"
	}
	if 1 <= format && format <= 9 {
		return fmt.Sprintf("EBDT bitmap format %d", format)
	}
	return fmt.Sprintf("unknown format %d", format)
}

// Diagnosis is a report on the DirectWrite compatibility of a font's bitmap strikes.
type Diagnosis struct {
	HasCBLC, HasCBDT, HasSbix bool
	Strikes                   []*StrikeInfo

	// Covered is the number of glyphs that have a bitmap in at least one strike.
	Covered   uint
	NumGlyphs uint16

	Issues []string
}

// Diagnose inspects the CBLC/CBDT and sbix strikes of the font. It never fails, information that cannot be determined is reported as an issue.
func Diagnose(sfnt *font.SFNT) *Diagnosis {
	d := &Diagnosis{
		HasCBLC: sfnt.HasTable("CBLC"),
		HasCBDT: sfnt.HasTable("CBDT"),
		HasSbix: sfnt.HasTable("sbix"),
	}
	if sfnt.Maxp != nil {
		d.NumGlyphs = sfnt.NumGlyphs()
	}

	for _, tag := range sfnt.TableErrorTags() {
		d.Issues = append(d.Issues, fmt.Sprintf("%s: Unreadable table: %v", tag, sfnt.TableErrors[tag]))
	}
	if d.HasCBLC && !d.HasCBDT {
		d.Issues = append(d.Issues, "CBDT: Missing table, CBLC strikes have no bitmap data")
	}

	var covered bitset.BitSet
	if sfnt.CBLC != nil {
		var numData int
		if sfnt.CBDT != nil {
			numData = len(sfnt.CBDT.Strikes)
			if numData != len(sfnt.CBLC.Strikes) {
				d.Issues = append(d.Issues, fmt.Sprintf("CBLC has %d strikes but CBDT has %d", len(sfnt.CBLC.Strikes), numData))
			}
		}
		for i := range sfnt.CBLC.Strikes {
			src := strikeSource{cblc: &sfnt.CBLC.Strikes[i]}
			if i < numData {
				src.data = &sfnt.CBDT.Strikes[i]
				if err := src.data.Err; err != nil {
					d.Issues = append(d.Issues, fmt.Sprintf("Strike %d: %v", i, err))
				}
			}
			for _, sub := range src.cblc.IndexSubtables {
				for _, glyphID := range sub.GlyphIDs {
					covered.Set(uint(glyphID))
				}
			}
			d.addStrike(newStrikeInfo("CBLC", i, src))
		}
	}
	if sfnt.Sbix != nil {
		for i := range sfnt.Sbix.Strikes {
			src := strikeSource{sbix: &sfnt.Sbix.Strikes[i]}
			for _, glyph := range src.sbix.Glyphs {
				covered.Set(uint(glyph.GlyphID))
			}
			d.addStrike(newStrikeInfo("sbix", i, src))
		}
	}
	d.Covered = covered.Count()
	return d
}

func (d *Diagnosis) addStrike(info *StrikeInfo) {
	d.Strikes = append(d.Strikes, info)
	d.Issues = append(d.Issues, info.Issues...)
}

// WriteTo writes the human-readable report.
func (d *Diagnosis) WriteTo(w io.Writer) (int64, error) {
	buf := &bytes.Buffer{}
	fmt.Fprintf(buf, "=== CBDT/CBLC DIRECTWRITE DIAGNOSTIC ===\n")
	if !d.HasCBLC || !d.HasCBDT {
		fmt.Fprintf(buf, "⚠ No CBDT/CBLC tables found\n")
	}
	fmt.Fprintf(buf, "Found %d bitmap strikes\n", len(d.Strikes))
	if 0 < d.NumGlyphs {
		fmt.Fprintf(buf, "Bitmap glyphs: %d of %d glyphs\n", d.Covered, d.NumGlyphs)
	}

	for _, info := range d.Strikes {
		fmt.Fprintf(buf, "\n%s analysis:\n", info.Name())
		if info.FormatFound {
			fmt.Fprintf(buf, "  Image format: %s (code: %d, from %s)\n", imageFormatName(info.Format), info.Format, info.FormatProbe)
			if info.Format == 17 {
				fmt.Fprintf(buf, "  ✓ PNG format - DirectWrite compatible\n")
			}
		}
		if info.Image != raster.Unknown {
			fmt.Fprintf(buf, "  Embedded image: %v\n", info.Image)
		}
		if info.SizeFound {
			fmt.Fprintf(buf, "  Size: %dx%d pixels (from %s)\n", info.Width, info.Height, info.SizeProbe)
			if IsCanonicalSize(info.Width) && IsCanonicalSize(info.Height) {
				fmt.Fprintf(buf, "  ✓ Standard size - DirectWrite compatible\n")
			}
		}
		if info.Table == "CBLC" && 0 < info.NumSubtables {
			fmt.Fprintf(buf, "  Index subtables: %d\n", info.NumSubtables)
			fmt.Fprintf(buf, "  ✓ Has glyph index data\n")
		}
		fmt.Fprintf(buf, "  Glyphs: %d\n", info.NumGlyphs)
		for _, issue := range info.Issues {
			fmt.Fprintf(buf, "  ✗ %s\n", issue)
		}
	}

	fmt.Fprintf(buf, "\n=== DIRECTWRITE COMPATIBILITY SUMMARY ===\n")
	if len(d.Issues) == 0 {
		fmt.Fprintf(buf, "✓ No obvious CBDT/CBLC DirectWrite compatibility issues found\n")
		fmt.Fprintf(buf, "  The issue may be in other font tables or DirectWrite validation\n")
	} else {
		fmt.Fprintf(buf, "✗ Found %d potential DirectWrite issues:\n", len(d.Issues))
		for _, issue := range d.Issues {
			fmt.Fprintf(buf, "  • %s\n", issue)
		}

		fmt.Fprintf(buf, "\nROOT CAUSE ANALYSIS:\n")
		fmt.Fprintf(buf, "DirectWrite shows empty spaces because:\n")
		fmt.Fprintf(buf, "1. Font claims to support emoji characters (cmap table)\n")
		fmt.Fprintf(buf, "2. DirectWrite finds CBDT/CBLC bitmap data\n")
		fmt.Fprintf(buf, "3. DirectWrite validates bitmap format and fails\n")
		fmt.Fprintf(buf, "4. Instead of fallback, DirectWrite shows empty space\n")

		fmt.Fprintf(buf, "\nPOTENTIAL SOLUTIONS:\n")
		for _, solution := range d.Solutions() {
			fmt.Fprintf(buf, "• %s\n", solution)
		}
	}
	n, err := w.Write(buf.Bytes())
	return int64(n), err
}

var solutions = []struct {
	keyword  string
	solution string
}{
	{"format", "Convert bitmap formats to PNG (format 17)"},
	{"size", "Add standard DirectWrite bitmap sizes"},
	{"index", "Fix glyph index table structure"},
}

// Solutions returns the suggested fixes for the issues found.
func (d *Diagnosis) Solutions() []string {
	list := []string{}
	for _, s := range solutions {
		for _, issue := range d.Issues {
			if strings.Contains(strings.ToLower(issue), s.keyword) {
				list = append(list, s.solution)
				break
			}
		}
	}
	return list
}
