package font

import (
	"fmt"
	"sort"

	"github.com/tdewolff/parse/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// NameRecord is a single string of the naming table.
type NameRecord struct {
	Platform PlatformID
	Encoding EncodingID
	Language uint16
	Name     NameID
	Value    []byte
}

// NewNameRecord returns a name record with the string encoded for the given platform and encoding.
func NewNameRecord(platform PlatformID, encodingID EncodingID, language uint16, name NameID, s string) (NameRecord, error) {
	var encoder *encoding.Encoder
	if platform == PlatformUnicode || platform == PlatformWindows {
		encoder = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewEncoder()
	} else if platform == PlatformMacintosh && encodingID == EncodingMacintoshRoman {
		encoder = charmap.Macintosh.NewEncoder()
	} else {
		return NameRecord{}, fmt.Errorf("name: unsupported platform %d and encoding %d", platform, encodingID)
	}
	value, _, err := transform.Bytes(encoder, []byte(s))
	if err != nil {
		return NameRecord{}, fmt.Errorf("name: %w", err)
	} else if 0xFFFF < len(value) {
		return NameRecord{}, fmt.Errorf("name: string too long")
	}
	return NameRecord{
		Platform: platform,
		Encoding: encodingID,
		Language: language,
		Name:     name,
		Value:    value,
	}, nil
}

func (record NameRecord) String() string {
	var decoder *encoding.Decoder
	if record.Platform == PlatformUnicode || record.Platform == PlatformWindows {
		decoder = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
	} else if record.Platform == PlatformMacintosh && record.Encoding == EncodingMacintoshRoman {
		decoder = charmap.Macintosh.NewDecoder()
	} else {
		return string(record.Value)
	}
	s, _, err := transform.String(decoder, string(record.Value))
	if err == nil {
		return s
	}
	return string(record.Value)
}

// NameLangTagRecord is a language-tag record of a version 1 naming table.
type NameLangTagRecord struct {
	Value []byte
}

func (record NameLangTagRecord) String() string {
	decoder := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
	s, _, err := transform.String(decoder, string(record.Value))
	if err == nil {
		return s
	}
	return string(record.Value)
}

// NameTable is the naming table.
type NameTable struct {
	NameRecord []NameRecord
	LangTag    []NameLangTagRecord
}

// Get returns all records with the given name ID.
func (t *NameTable) Get(name NameID) []NameRecord {
	records := []NameRecord{}
	for _, record := range t.NameRecord {
		if record.Name == name {
			records = append(records, record)
		}
	}
	return records
}

func (sfnt *SFNT) parseName() error {
	b, ok := sfnt.Tables["name"]
	if !ok {
		return fmt.Errorf("name: missing table")
	} else if len(b) < 6 {
		return fmt.Errorf("name: bad table")
	}

	sfnt.Name = &NameTable{}
	r := parse.NewBinaryReader(b)
	version := r.ReadUint16()
	if version != 0 && version != 1 {
		return fmt.Errorf("name: bad version")
	}
	count := r.ReadUint16()
	storageOffset := uint32(r.ReadUint16())
	if uint32(len(b)) < 6+12*uint32(count) || uint32(len(b)) < storageOffset {
		return fmt.Errorf("name: bad table")
	}
	sfnt.Name.NameRecord = make([]NameRecord, count)
	for i := 0; i < int(count); i++ {
		sfnt.Name.NameRecord[i].Platform = PlatformID(r.ReadUint16())
		sfnt.Name.NameRecord[i].Encoding = EncodingID(r.ReadUint16())
		sfnt.Name.NameRecord[i].Language = r.ReadUint16()
		sfnt.Name.NameRecord[i].Name = NameID(r.ReadUint16())

		length := uint32(r.ReadUint16())
		offset := uint32(r.ReadUint16())
		if uint32(len(b))-storageOffset < offset || uint32(len(b))-storageOffset-offset < length {
			return fmt.Errorf("name: bad table")
		}
		sfnt.Name.NameRecord[i].Value = b[storageOffset+offset : storageOffset+offset+length]
	}
	if version == 1 {
		if uint32(len(b)) < 6+12*uint32(count)+2 {
			return fmt.Errorf("name: bad table")
		}
		langTagCount := r.ReadUint16()
		if uint32(len(b)) < 6+12*uint32(count)+2+4*uint32(langTagCount) {
			return fmt.Errorf("name: bad table")
		}
		sfnt.Name.LangTag = make([]NameLangTagRecord, langTagCount)
		for i := 0; i < int(langTagCount); i++ {
			length := uint32(r.ReadUint16())
			offset := uint32(r.ReadUint16())
			if uint32(len(b))-storageOffset < offset || uint32(len(b))-storageOffset-offset < length {
				return fmt.Errorf("name: bad table")
			}
			sfnt.Name.LangTag[i].Value = b[storageOffset+offset : storageOffset+offset+length]
		}
	}
	if r.Pos() != storageOffset {
		return fmt.Errorf("name: bad storageOffset")
	}
	return nil
}

// Write returns the table data. Records are sorted by platform, encoding, language, and name ID, and identical strings share storage.
func (t *NameTable) Write() ([]byte, error) {
	records := make([]NameRecord, len(t.NameRecord))
	copy(records, t.NameRecord)
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Platform != b.Platform {
			return a.Platform < b.Platform
		} else if a.Encoding != b.Encoding {
			return a.Encoding < b.Encoding
		} else if a.Language != b.Language {
			return a.Language < b.Language
		}
		return a.Name < b.Name
	})

	version := uint16(0)
	if 0 < len(t.LangTag) {
		version = 1
	}
	headerLength := 6 + 12*uint32(len(records))
	if version == 1 {
		headerLength += 2 + 4*uint32(len(t.LangTag))
	}
	if 0xFFFF < headerLength {
		return nil, fmt.Errorf("name: too many records")
	}

	storage := parse.NewBinaryWriter([]byte{})
	stored := map[string]uint32{}
	store := func(value []byte) (uint16, error) {
		offset, ok := stored[string(value)]
		if !ok {
			offset = storage.Len()
			stored[string(value)] = offset
			storage.WriteBytes(value)
		}
		if 0xFFFF < offset {
			return 0, fmt.Errorf("name: string storage too large")
		}
		return uint16(offset), nil
	}

	w := parse.NewBinaryWriter([]byte{})
	w.WriteUint16(version)
	w.WriteUint16(uint16(len(records)))
	w.WriteUint16(uint16(headerLength)) // storageOffset
	for _, record := range records {
		offset, err := store(record.Value)
		if err != nil {
			return nil, err
		}
		w.WriteUint16(uint16(record.Platform))
		w.WriteUint16(uint16(record.Encoding))
		w.WriteUint16(record.Language)
		w.WriteUint16(uint16(record.Name))
		w.WriteUint16(uint16(len(record.Value)))
		w.WriteUint16(offset)
	}
	if version == 1 {
		w.WriteUint16(uint16(len(t.LangTag)))
		for _, langTag := range t.LangTag {
			offset, err := store(langTag.Value)
			if err != nil {
				return nil, err
			}
			w.WriteUint16(uint16(len(langTag.Value)))
			w.WriteUint16(offset)
		}
	}
	w.WriteBytes(storage.Bytes())
	return w.Bytes(), nil
}
