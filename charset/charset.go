package charset

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
)

type family uint8

const (
	familyASCII family = iota
	familyBinary
	familyUTF8
	familyUTF16
	familyUTF32
	familyCodePage
)

// Encoding names a byte encoding together with the properties the rope layer
// needs to reason about it. Encodings are compared by identity; Lookup always
// hands out the same *Encoding for a given canonical name.
type Encoding struct {
	name            string
	family          family
	asciiCompatible bool
	bigEndian       bool
	minLength       int // minimum bytes per character
	maxLength       int // maximum bytes per character
	codepage        *charmap.Charmap
}

// Predefined encodings.
var (
	ASCII   = &Encoding{name: "US-ASCII", family: familyASCII, asciiCompatible: true, minLength: 1, maxLength: 1}
	Binary  = &Encoding{name: "ASCII-8BIT", family: familyBinary, asciiCompatible: true, minLength: 1, maxLength: 1}
	UTF8    = &Encoding{name: "UTF-8", family: familyUTF8, asciiCompatible: true, minLength: 1, maxLength: 4}
	UTF16LE = &Encoding{name: "UTF-16LE", family: familyUTF16, minLength: 2, maxLength: 4}
	UTF16BE = &Encoding{name: "UTF-16BE", family: familyUTF16, bigEndian: true, minLength: 2, maxLength: 4}
	UTF32LE = &Encoding{name: "UTF-32LE", family: familyUTF32, minLength: 4, maxLength: 4}
	UTF32BE = &Encoding{name: "UTF-32BE", family: familyUTF32, bigEndian: true, minLength: 4, maxLength: 4}
)

var builtin = map[string]*Encoding{
	"US-ASCII":   ASCII,
	"ASCII":      ASCII,
	"ASCII-8BIT": Binary,
	"BINARY":     Binary,
	"UTF-8":      UTF8,
	"UTF8":       UTF8,
	"UTF-16LE":   UTF16LE,
	"UTF-16BE":   UTF16BE,
	"UTF-32LE":   UTF32LE,
	"UTF-32BE":   UTF32BE,
}

var codepages = struct {
	sync.Mutex
	byName map[string]*Encoding
}{byName: make(map[string]*Encoding)}

// Lookup resolves an encoding by name. Names are matched case-insensitively
// against the predefined encodings first, then against the IANA registry,
// which also resolves aliases such as "latin1" or "cp1252". Code pages are
// named by their preferred MIME name where there is one.
//
// Only encodings the classifier understands are returned; other registered
// encodings (e.g., Shift_JIS) yield ErrUnknownEncoding.
func Lookup(name string) (*Encoding, error) {
	key := strings.ToUpper(strings.TrimSpace(name))
	if enc, ok := builtin[key]; ok {
		return enc, nil
	}
	e, err := ianaindex.IANA.Encoding(name)
	if err != nil || e == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	canonical, err := ianaindex.MIME.Name(e)
	if err != nil || canonical == "" {
		if canonical, err = ianaindex.IANA.Name(e); err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
		}
	}
	if enc, ok := builtin[strings.ToUpper(canonical)]; ok {
		return enc, nil
	}
	cm, ok := e.(*charmap.Charmap)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a single-byte code page", ErrUnknownEncoding, name)
	}
	return codepage(canonical, cm), nil
}

// MustLookup is like Lookup, but panics if the name cannot be resolved.
func MustLookup(name string) *Encoding {
	enc, err := Lookup(name)
	if err != nil {
		panic(err)
	}
	return enc
}

func codepage(name string, cm *charmap.Charmap) *Encoding {
	codepages.Lock()
	defer codepages.Unlock()
	if enc, ok := codepages.byName[name]; ok {
		return enc
	}
	compatible := true
	for b := 0; b < 0x80; b++ {
		if cm.DecodeByte(byte(b)) != rune(b) {
			compatible = false
			break
		}
	}
	enc := &Encoding{
		name:            name,
		family:          familyCodePage,
		asciiCompatible: compatible,
		minLength:       1,
		maxLength:       1,
		codepage:        cm,
	}
	codepages.byName[name] = enc
	tracer().Debugf("charset: registered code page %s (ASCII compatible: %v)", name, compatible)
	return enc
}

// Name returns the canonical name of the encoding.
func (enc *Encoding) Name() string {
	return enc.name
}

func (enc *Encoding) String() string {
	return enc.name
}

// IsASCIICompatible reports whether bytes 0x00…0x7f denote the ASCII
// characters under this encoding.
func (enc *Encoding) IsASCIICompatible() bool {
	return enc.asciiCompatible
}

// MinLength is the minimum number of bytes a character occupies.
func (enc *Encoding) MinLength() int {
	return enc.minLength
}

// MaxLength is the maximum number of bytes a character occupies.
func (enc *Encoding) MaxLength() int {
	return enc.maxLength
}

// IsSingleByte reports whether every character occupies exactly one byte.
func (enc *Encoding) IsSingleByte() bool {
	return enc.maxLength == 1
}

// SplitPoint returns the largest byte offset ≤ at where b may be cut without
// separating the bytes of a well-formed character. If no such offset can be
// found close to at, at itself is returned.
func (enc *Encoding) SplitPoint(b []byte, at int) int {
	if at <= 0 {
		return 0
	}
	if at >= len(b) {
		return len(b)
	}
	switch enc.family {
	case familyUTF8:
		for i := at; i > 0 && i > at-utf8MaxBack; i-- {
			if isRuneStart(b[i]) {
				return i
			}
		}
		return at
	case familyUTF16:
		at -= at % 2
		if at >= 2 && isHighSurrogate(enc.unit16(b[at-2:])) {
			return at - 2
		}
		return at
	case familyUTF32:
		return at - at%4
	}
	return at
}

const utf8MaxBack = 4

func isRuneStart(b byte) bool {
	return b&0xc0 != 0x80
}
