package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/tdewolff/test"
)

func testImage(w, h int, opaque bool) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := uint8(255)
			if !opaque && (x+y)%3 == 0 {
				a = uint8(x * 7)
			}
			img.SetNRGBA(x, y, color.NRGBA{uint8(x * 13), uint8(y * 17), uint8(x + y), a})
		}
	}
	return img
}

func TestSniff(t *testing.T) {
	var tests = []struct {
		data   string
		format Format
		ok     bool
	}{
		{"\x89PNG\r\n\x1a\n\x00\x00", PNG, true},
		{"\xFF\xD8\xFF\xE0", JPEG, true},
		{"GIF89a", GIF, true},
		{"II*\x00", TIFF, true},
		{"MM\x00*", TIFF, true},
		{"BM\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00", BMP, true},
		{"RIFF\x00\x00\x00\x00WEBPVP8 ", WebP, true},
		{"\x89PN", Unknown, false},
		{"\x00\x89PNG\r\n\x1a\n", Unknown, false},
		{"", Unknown, false},
	}
	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			format, ok := Sniff([]byte(tt.data))
			test.T(t, format, tt.format)
			test.T(t, ok, tt.ok)
		})
	}
}

func TestLocate(t *testing.T) {
	i, format := Locate([]byte("\x80\x80\x00\x00\x00\x00\x00\x00\x00\x89PNG\r\n\x1a\n"))
	test.T(t, i, 9)
	test.T(t, format, PNG)

	i, format = Locate([]byte("abc\xFF\xD8\xFF\xE0"))
	test.T(t, i, 3)
	test.T(t, format, JPEG)

	i, format = Locate([]byte("abcde"))
	test.T(t, i, -1)
	test.T(t, format, Unknown)
}

func TestEncodePNG(t *testing.T) {
	src := testImage(7, 5, false)
	b, err := EncodePNG(src)
	test.Error(t, err)
	test.T(t, b[25], byte(6)) // color type

	img, err := png.Decode(bytes.NewReader(b))
	test.Error(t, err)
	dst, ok := img.(*image.NRGBA)
	test.That(t, ok, "decoded image must be NRGBA")
	test.Bytes(t, dst.Pix, src.Pix)
}

func TestEncodePNGOpaque(t *testing.T) {
	b, err := EncodePNG(testImage(4, 4, true))
	test.Error(t, err)
	test.T(t, b[25], byte(6)) // alpha is kept for opaque images

	_, err = EncodePNG(image.NewNRGBA(image.Rect(0, 0, 0, 0)))
	test.T(t, err, ErrTooSmall)
}

func TestResample(t *testing.T) {
	var opaque bytes.Buffer
	test.Error(t, png.Encode(&opaque, testImage(137, 137, true)))
	var transparent bytes.Buffer
	test.Error(t, png.Encode(&transparent, testImage(40, 30, false)))
	var photo bytes.Buffer
	test.Error(t, jpeg.Encode(&photo, testImage(50, 50, true), nil))

	for _, size := range []int{16, 64, 128} {
		for _, src := range [][]byte{opaque.Bytes(), transparent.Bytes(), photo.Bytes()} {
			b, err := Resample(src, size)
			test.Error(t, err)
			test.T(t, b[25], byte(6))

			img, err := Decode(b)
			test.Error(t, err)
			test.T(t, img.Bounds(), image.Rect(0, 0, size, size))
			_, ok := img.(*image.NRGBA)
			test.That(t, ok, "resampled image must have an alpha channel")
		}
	}
}

func TestResampleErrors(t *testing.T) {
	_, err := Resample([]byte("\x89PNG\r"), 128)
	test.T(t, err, ErrTooSmall)

	_, err = Resample([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\x00"), 128)
	test.That(t, err != nil, "truncated PNG must fail")

	_, err = Resample(make([]byte, 32), 128)
	test.That(t, err != nil, "unknown format must fail")

	_, err = Resample(make([]byte, 32), 0)
	test.That(t, err != nil, "zero size must fail")
}

func TestDimensions(t *testing.T) {
	var buf bytes.Buffer
	test.Error(t, png.Encode(&buf, testImage(12, 9, false)))
	w, h, err := Dimensions(buf.Bytes())
	test.Error(t, err)
	test.T(t, w, 12)
	test.T(t, h, 9)

	_, _, err = Dimensions([]byte("abc"))
	test.That(t, err != nil)
}
