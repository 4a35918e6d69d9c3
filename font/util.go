package font

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// MaxMemory is the maximum memory that can be allocated when decompressing a font.
var MaxMemory uint32 = 60 * 1024 * 1024

// ErrExceedsMemory is returned if the decompressed font exceeds MaxMemory.
var ErrExceedsMemory = fmt.Errorf("memory limit exceded")

// ErrInvalidFontData is returned if the font is malformed.
var ErrInvalidFontData = fmt.Errorf("invalid font data")

// calcChecksum sums the big-endian words of b, a trailing partial word is padded with zeros.
func calcChecksum(b []byte) uint32 {
	var sum uint32
	n := len(b) &^ 3
	for i := 0; i < n; i += 4 {
		sum += binary.BigEndian.Uint32(b[i:])
	}
	if n < len(b) {
		var last [4]byte
		copy(last[:], b[n:])
		sum += binary.BigEndian.Uint32(last[:])
	}
	return sum
}

// Uint16ToFlags converts a uint16 in 16 booleans from least to most significant.
func Uint16ToFlags(v uint16) (flags [16]bool) {
	for i := 0; i < 16; i++ {
		flags[i] = v&(1<<i) != 0
	}
	return
}

// FlagsToUint16 converts 16 booleans from least to most significant into a uint16.
func FlagsToUint16(flags [16]bool) (v uint16) {
	for i := 0; i < 16; i++ {
		if flags[i] {
			v |= 1 << i
		}
	}
	return
}

// LONGDATETIME is the number of seconds since 1904-01-01 00:00 UTC.
var longDateTimeEpoch = time.Date(1904, 1, 1, 0, 0, 0, 0, time.UTC)

func fromLongDateTime(v uint64) (time.Time, bool) {
	if math.MaxInt64/uint64(time.Second) < v {
		return time.Time{}, false
	}
	return longDateTimeEpoch.Add(time.Second * time.Duration(v)), true
}

func longDateTime(t time.Time) uint64 {
	if t.Before(longDateTimeEpoch) {
		return 0
	}
	return uint64(t.Sub(longDateTimeEpoch) / time.Second)
}

func uint32ToString(v uint32) string {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return string(b)
}

// padding returns the number of bytes that align n to four bytes.
func padding(n uint32) uint32 {
	return (4 - n&3) & 3
}
