package font

import (
	"testing"

	"github.com/emojiwin/emojiwin/internal/fonttest"
)

func FuzzParseSFNT(f *testing.F) {
	f.Add(testFont().Bytes())
	f.Add(bitmapFont(fonttest.Strike{
		PPEMX:  109,
		PPEMY:  109,
		Glyphs: []fonttest.Glyph{{ID: 1, Image: fonttest.PNG(4, 4), Width: 4, Height: 4}},
	}).Bytes())
	f.Fuzz(func(t *testing.T, b []byte) {
		sfnt, err := ParseSFNT(b, 0)
		if err != nil {
			return
		}
		if sfnt.CBLC != nil && sfnt.CBDT != nil {
			_, _, _ = sfnt.CBLC.Write(sfnt.CBDT)
		}
		_, _ = sfnt.Write()
	})
}

func FuzzParseWOFF2(f *testing.F) {
	sfnt, err := ParseSFNT(testFont().Bytes(), 0)
	if err != nil {
		f.Fatal(err)
	}
	b, err := sfnt.WriteWOFF2()
	if err != nil {
		f.Fatal(err)
	}
	f.Add(b)
	f.Fuzz(func(t *testing.T, b []byte) {
		_, _ = ParseWOFF2(b)
	})
}
