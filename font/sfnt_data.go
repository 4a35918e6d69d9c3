package font

import (
	"fmt"
	"strings"
)

// PlatformID is the platform identifier of cmap subtables and name records.
type PlatformID uint16

// see PlatformID
const (
	PlatformUnicode   = PlatformID(0)
	PlatformMacintosh = PlatformID(1)
	PlatformISO       = PlatformID(2)
	PlatformWindows   = PlatformID(3)
	PlatformCustom    = PlatformID(4)
)

func (id PlatformID) String() string {
	switch id {
	case PlatformUnicode:
		return "Unicode"
	case PlatformMacintosh:
		return "Apple"
	case PlatformISO:
		return "ISO"
	case PlatformWindows:
		return "Microsoft"
	}
	return fmt.Sprintf("Platform %d", uint16(id))
}

// EncodingID is the platform-specific encoding identifier.
type EncodingID uint16

// see EncodingID
const (
	EncodingUnicode2BMP                  = EncodingID(3)
	EncodingUnicode2FullRepertoire       = EncodingID(4)
	EncodingUnicodeVariationSequences    = EncodingID(5)
	EncodingUnicodeFullRepertoire        = EncodingID(6)
	EncodingMacintoshRoman               = EncodingID(0)
	EncodingWindowsSymbol                = EncodingID(0)
	EncodingWindowsUnicodeBMP            = EncodingID(1)
	EncodingWindowsUnicodeFullRepertoire = EncodingID(10)
)

// EncodingName returns a human-readable name for the encoding of the given platform.
func EncodingName(platform PlatformID, encoding EncodingID) string {
	switch platform {
	case PlatformWindows:
		switch encoding {
		case EncodingWindowsSymbol:
			return "Symbol"
		case EncodingWindowsUnicodeBMP:
			return "Unicode BMP"
		case EncodingWindowsUnicodeFullRepertoire:
			return "Unicode Full"
		}
	case PlatformMacintosh:
		if encoding == EncodingMacintoshRoman {
			return "Roman"
		}
	}
	return fmt.Sprintf("Encoding %d", uint16(encoding))
}

// NameID is the name identifier of name records.
type NameID uint16

// see NameID
const (
	NameCopyrightNotice        = NameID(0)
	NameFontFamily             = NameID(1)
	NameFontSubfamily          = NameID(2)
	NameUniqueIdentifier       = NameID(3)
	NameFull                   = NameID(4)
	NameVersion                = NameID(5)
	NamePostScript             = NameID(6)
	NameTrademark              = NameID(7)
	NameManufacturer           = NameID(8)
	NameDesigner               = NameID(9)
	NameDescription            = NameID(10)
	NameVendorURL              = NameID(11)
	NameDesignerURL            = NameID(12)
	NameLicense                = NameID(13)
	NameLicenseURL             = NameID(14)
	NamePreferredFamily        = NameID(16)
	NamePreferredSubfamily     = NameID(17)
	NameCompatibleFull         = NameID(18)
	NameSampleText             = NameID(19)
	NamePostScriptCID          = NameID(20)
	NameWWSFamily              = NameID(21)
	NameWWSSubfamily           = NameID(22)
	NameLightBackgroundPalette = NameID(23)
	NameDarkBackgroundPalette  = NameID(24)
)

func macintoshGlyphName(index uint16) string {
	if int(index) < len(macintoshGlyphNames) {
		return macintoshGlyphNames[index]
	}
	return ""
}

// standard Macintosh glyph order used by post table versions 1.0 and 2.0
var macintoshGlyphNames = strings.Fields(`
.notdef .null nonmarkingreturn space exclam quotedbl numbersign dollar percent ampersand
quotesingle parenleft parenright asterisk plus comma hyphen period slash zero one two three four
five six seven eight nine colon semicolon less equal greater question at A B C D E F G H I J K L M
N O P Q R S T U V W X Y Z bracketleft backslash bracketright asciicircum underscore grave a b c d e
f g h i j k l m n o p q r s t u v w x y z braceleft bar braceright asciitilde Adieresis Aring
Ccedilla Eacute Ntilde Odieresis Udieresis aacute agrave acircumflex adieresis atilde aring
ccedilla eacute egrave ecircumflex edieresis iacute igrave icircumflex idieresis ntilde oacute
ograve ocircumflex odieresis otilde uacute ugrave ucircumflex udieresis dagger degree cent sterling
section bullet paragraph germandbls registered copyright trademark acute dieresis notequal AE
Oslash infinity plusminus lessequal greaterequal yen mu partialdiff summation product pi integral
ordfeminine ordmasculine Omega ae oslash questiondown exclamdown logicalnot radical florin
approxequal Delta guillemotleft guillemotright ellipsis nonbreakingspace Agrave Atilde Otilde OE oe
endash emdash quotedblleft quotedblright quoteleft quoteright divide lozenge ydieresis Ydieresis
fraction currency guilsinglleft guilsinglright fi fl daggerdbl periodcentered quotesinglbase
quotedblbase perthousand Acircumflex Ecircumflex Aacute Edieresis Egrave Iacute Icircumflex
Idieresis Igrave Oacute Ocircumflex apple Ograve Uacute Ucircumflex Ugrave dotlessi circumflex
tilde macron breve dotaccent ring cedilla hungarumlaut ogonek caron Lslash lslash Scaron scaron
Zcaron zcaron brokenbar Eth eth Yacute yacute Thorn thorn minus multiply onesuperior twosuperior
threesuperior onehalf onequarter threequarters franc Gbreve gbreve Idotaccent Scedilla scedilla
Cacute cacute Ccaron ccaron dcroat
`)
