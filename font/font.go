package font

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MediaType returns the media type (MIME) for a given font.
func MediaType(b []byte) (string, error) {
	if len(b) < 4 {
		return "", fmt.Errorf("empty font file")
	}

	tag := string(b[:4])
	switch tag {
	case "wOF2":
		return "font/woff2", nil
	case "wOFF":
		return "font/woff", nil
	case "true", "ttcf":
		return "font/truetype", nil
	case "OTTO":
		return "font/opentype", nil
	}
	if binary.BigEndian.Uint32(b) == 0x00010000 {
		return "font/truetype", nil
	}
	return "", fmt.Errorf("unrecognized font file format")
}

// ToSFNT takes a byte slice and transforms it into an SFNT font file (TTF, OTF, or TTC). WOFF2 fonts are decompressed.
func ToSFNT(b []byte) ([]byte, error) {
	mediatype, err := MediaType(b)
	if err != nil {
		return nil, err
	}

	switch mediatype {
	case "font/truetype", "font/opentype":
		return b, nil
	case "font/woff2":
		sfnt, err := ParseWOFF2(b)
		if err != nil {
			return nil, fmt.Errorf("WOFF2: %w", err)
		}
		return sfnt, nil
	}
	return nil, fmt.Errorf("unsupported font format %s", mediatype)
}

// Load reads and parses the font file at the given path. For font collections the first font is used.
func Load(filename string) (*SFNT, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	if b, err = ToSFNT(b); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	sfnt, err := ParseSFNT(b, 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return sfnt, nil
}

// Save writes the font to the given path. Fonts are written as WOFF2 when the extension is .woff2 and as TTF otherwise.
func (sfnt *SFNT) Save(filename string) error {
	var b []byte
	var err error
	if strings.EqualFold(filepath.Ext(filename), ".woff2") {
		b, err = sfnt.WriteWOFF2()
	} else {
		b, err = sfnt.Write()
	}
	if err != nil {
		return err
	}
	return os.WriteFile(filename, b, 0644)
}
