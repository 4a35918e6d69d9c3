package emojiwin

import (
	"bytes"
	"strings"
	"testing"

	"github.com/emojiwin/emojiwin/font"
	"github.com/emojiwin/emojiwin/internal/fonttest"
	"github.com/tdewolff/test"
)

func TestAnalyze(t *testing.T) {
	sfnt := loadFont(t, appleFont(appleStrike()))
	a := Analyze(sfnt)
	test.T(t, a.OS2.Version, uint16(1))
	test.T(t, a.Ascender, uint16(1800))
	test.T(t, a.Descender, uint16(300))
	test.T(t, a.Cmap, []CmapInfo{
		{font.PlatformUnicode, font.EncodingUnicode2BMP, 4, 2},
		{font.PlatformWindows, font.EncodingWindowsUnicodeFullRepertoire, 12, 3},
	})
	test.T(t, a.HasCBDT, true)
	test.T(t, a.HasSbix, false)
	test.T(t, a.StrikeSizes, [][2]int{{137, 137}})
	test.T(t, a.Missing, []string{"hmtx"})
	test.T(t, a.Notes, []string{
		"USE_TYPO_METRICS is not set, DirectWrite uses the hhea metrics and emoji may be clipped or empty",
		"No Windows Unicode BMP (3,1) cmap subtable, Windows may not find any characters",
		"Font uses CBDT/CBLC bitmaps, Windows prefers COLR/CPAL and some applications may not render them",
		"Bitmap strike sizes 137x137 are not in [16 20 24 32 40 48 64 96 128], DirectWrite may drop them",
		"Missing essential tables: hmtx",
	})

	// analysis is read-only
	test.Bytes(t, sfnt.Table("OS/2"), loadFont(t, appleFont(appleStrike())).Table("OS/2"))
}

func TestAnalyzeNotes(t *testing.T) {
	f := appleFont()
	f.OS2Version = -1
	f.CmapRecords = []fonttest.CmapRecord{{Platform: 3, Encoding: 1, Format: 4}, {Platform: 3, Encoding: 10, Format: 4}}
	f.Cmap = map[rune]uint16{'#': 1, 0x2764: 2}
	f.Tables = map[string][]byte{"sbix": fonttest.Sbix(4, 160, map[uint16][]byte{1: fonttest.PNG(8, 8)})}

	a := Analyze(loadFont(t, f))
	test.T(t, a.OS2 == nil, true)
	test.T(t, a.HasSbix, true)
	test.T(t, a.Missing, []string{"hmtx", "OS/2"})
	test.T(t, a.Notes, []string{
		"OS/2 table is missing, DirectWrite needs it for the vertical metrics",
		"Windows full Unicode (3,10) cmap subtable has format 4 instead of 12",
		"Only Apple sbix color bitmaps are present, DirectWrite does not render them",
		"Missing essential tables: hmtx, OS/2",
	})

	f.Tables = map[string][]byte{"sbix": {0, 1, 0, 1, 0, 0, 0, 9}}
	a = Analyze(loadFont(t, f))
	test.That(t, strings.HasPrefix(a.Notes[len(a.Notes)-1], "sbix table is damaged: "))
}

func TestAnalyzeReport(t *testing.T) {
	a := Analyze(loadFont(t, appleFont(appleStrike())))
	buf := &bytes.Buffer{}
	n, err := a.WriteTo(buf)
	test.Error(t, err)
	test.T(t, n, int64(buf.Len()))

	report := buf.String()
	sections := []string{"== OS/2 ==", "== CMAP ==", "== COLOR FORMATS ==", "== ESSENTIAL TABLES ==", "== TROUBLESHOOTING =="}
	prev := -1
	for _, section := range sections {
		i := strings.Index(report, section)
		test.That(t, prev < i, section+" must follow the previous section")
		prev = i
	}
	test.That(t, strings.Contains(report, "USE_TYPO_METRICS: no\n"))
	test.That(t, strings.Contains(report, "Character range: U+0023 to U+FFFF\n"))
	test.That(t, strings.Contains(report, "CBDT/CBLC: yes (strikes: 137x137)\n"))
	test.That(t, strings.Contains(report, "hmtx: missing\n"))
	test.That(t, strings.Contains(report, "cmap: present\n"))
	test.That(t, !strings.Contains(report, "No problems found"))
}
