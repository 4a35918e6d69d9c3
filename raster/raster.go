// Package raster decodes, resizes and re-encodes the images embedded in color bitmap fonts.
package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Format is an image container format identified by its signature.
type Format int

// see Sniff
const (
	Unknown Format = iota
	PNG
	JPEG
	GIF
	TIFF
	BMP
	WebP
)

func (f Format) String() string {
	switch f {
	case PNG:
		return "PNG"
	case JPEG:
		return "JPEG"
	case GIF:
		return "GIF"
	case TIFF:
		return "TIFF"
	case BMP:
		return "BMP"
	case WebP:
		return "WebP"
	}
	return "unknown"
}

var (
	pngMagic  = []byte("\x89PNG\r\n\x1a\n")
	jpegMagic = []byte("\xFF\xD8\xFF")
)

// ErrTooSmall is returned for payloads that are too short to hold an image.
var ErrTooSmall = fmt.Errorf("image data too small")

// MinSize is the minimum payload size of an embedded image.
const MinSize = 10

// Sniff returns the image format from the signature at the start of b.
func Sniff(b []byte) (Format, bool) {
	switch {
	case bytes.HasPrefix(b, pngMagic):
		return PNG, true
	case bytes.HasPrefix(b, jpegMagic):
		return JPEG, true
	case bytes.HasPrefix(b, []byte("GIF87a")), bytes.HasPrefix(b, []byte("GIF89a")):
		return GIF, true
	case bytes.HasPrefix(b, []byte("II*\x00")), bytes.HasPrefix(b, []byte("MM\x00*")):
		return TIFF, true
	case bytes.HasPrefix(b, []byte("BM")) && 14 <= len(b):
		return BMP, true
	case 12 <= len(b) && string(b[:4]) == "RIFF" && string(b[8:12]) == "WEBP":
		return WebP, true
	}
	return Unknown, false
}

// Locate returns the offset of the first PNG signature in b, or else of the first JPEG start-of-image marker. Embedded image records may carry header bytes before the image.
func Locate(b []byte) (int, Format) {
	if i := bytes.Index(b, pngMagic); i != -1 {
		return i, PNG
	} else if i := bytes.Index(b, jpegMagic); i != -1 {
		return i, JPEG
	}
	return -1, Unknown
}

// Decode decodes an image of any of the registered formats: PNG, JPEG, GIF, TIFF, BMP, and WebP.
func Decode(b []byte) (image.Image, error) {
	if len(b) < MinSize {
		return nil, ErrTooSmall
	}
	img, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	return img, nil
}

// Dimensions returns the width and height from the image header without decoding the pixels.
func Dimensions(b []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(b))
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

// Resize scales the image to w×h using Catmull-Rom interpolation. The result is always non-premultiplied RGBA.
func Resize(img image.Image, w, h int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}

// Resample decodes the image, resizes it to size×size, and encodes it as an RGBA PNG.
func Resample(b []byte, size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("bad size %d", size)
	}
	img, err := Decode(b)
	if err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("empty image")
	}
	return EncodePNG(Resize(img, size, size))
}

// toNRGBA converts an image to non-premultiplied RGBA without copying when possible.
func toNRGBA(img image.Image) *image.NRGBA {
	if m, ok := img.(*image.NRGBA); ok && m.Rect.Min == (image.Point{}) {
		return m
	}
	bounds := img.Bounds()
	m := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			m.SetNRGBA(x-bounds.Min.X, y-bounds.Min.Y, c)
		}
	}
	return m
}
