package raster

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"hash/crc32"
	"image"
)

// Specification:
// https://www.w3.org/TR/png/

// EncodePNG encodes the image as an 8-bit PNG with color type 6 (truecolor with alpha). Unlike image/png, the alpha channel is written for opaque images too.
func EncodePNG(img image.Image) ([]byte, error) {
	m := toNRGBA(img)
	w, h := m.Rect.Dx(), m.Rect.Dy()
	if w <= 0 || h <= 0 {
		return nil, ErrTooSmall
	}

	var buf bytes.Buffer
	buf.Write(pngMagic)

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], uint32(w))
	binary.BigEndian.PutUint32(ihdr[4:], uint32(h))
	ihdr[8] = 8  // bit depth
	ihdr[9] = 6  // color type RGBA
	ihdr[10] = 0 // compression
	ihdr[11] = 0 // filter
	ihdr[12] = 0 // interlace
	writeChunk(&buf, "IHDR", ihdr)

	var idat bytes.Buffer
	zw, err := zlib.NewWriterLevel(&idat, zlib.BestCompression)
	if err != nil {
		return nil, err
	}
	stride := 4 * w
	prev := make([]byte, stride)
	filtered := make([][]byte, 5)
	for i := range filtered {
		filtered[i] = make([]byte, 1+stride)
		filtered[i][0] = byte(i)
	}
	for y := 0; y < h; y++ {
		cur := m.Pix[y*m.Stride : y*m.Stride+stride]
		row := filterRow(filtered, cur, prev)
		if _, err := zw.Write(row); err != nil {
			return nil, err
		}
		prev = cur
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	writeChunk(&buf, "IDAT", idat.Bytes())
	writeChunk(&buf, "IEND", nil)
	return buf.Bytes(), nil
}

func writeChunk(buf *bytes.Buffer, tag string, data []byte) {
	var header [8]byte
	binary.BigEndian.PutUint32(header[:4], uint32(len(data)))
	copy(header[4:], tag)
	buf.Write(header[:])
	buf.Write(data)

	crc := crc32.NewIEEE()
	crc.Write(header[4:])
	crc.Write(data)
	var sum [4]byte
	binary.BigEndian.PutUint32(sum[:], crc.Sum32())
	buf.Write(sum[:])
}

// filterRow applies all five filter types and returns the one with the smallest sum of absolute values, the heuristic recommended for PNG encoders.
func filterRow(filtered [][]byte, cur, prev []byte) []byte {
	const bpp = 4
	none, sub, up, avg, paeth := filtered[0][1:], filtered[1][1:], filtered[2][1:], filtered[3][1:], filtered[4][1:]
	for i := range cur {
		var a, c int
		if bpp <= i {
			a = int(cur[i-bpp])
			c = int(prev[i-bpp])
		}
		b := int(prev[i])
		x := cur[i]
		none[i] = x
		sub[i] = x - byte(a)
		up[i] = x - byte(b)
		avg[i] = x - byte((a+b)/2)
		paeth[i] = x - byte(paethPredictor(a, b, c))
	}

	best, bestSum := 0, -1
	for k, row := range filtered {
		sum := 0
		for _, v := range row[1:] {
			sum += abs8(v)
			if bestSum != -1 && bestSum <= sum {
				break
			}
		}
		if bestSum == -1 || sum < bestSum {
			best, bestSum = k, sum
		}
	}
	return filtered[best]
}

func paethPredictor(a, b, c int) int {
	p := a + b - c
	pa, pb, pc := absInt(p-a), absInt(p-b), absInt(p-c)
	if pa <= pb && pa <= pc {
		return a
	} else if pb <= pc {
		return b
	}
	return c
}

func abs8(v byte) int {
	if v < 128 {
		return int(v)
	}
	return 256 - int(v)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
