package charset

import (
	"unicode/utf16"
	"unicode/utf8"
)

// CodeRange classifies a byte sequence against its encoding.
//
// The classes are ordered by specificity: SevenBit is the most specific,
// Broken the least. Unknown is not a class but the state of a sequence
// whose classification has been deferred.
type CodeRange int8

const (
	Unknown  CodeRange = iota // classification not yet computed
	SevenBit                  // every byte < 0x80, ASCII-compatible encoding
	Valid                     // well-formed characters throughout
	Broken                    // at least one malformed sequence
)

func (cr CodeRange) String() string {
	switch cr {
	case SevenBit:
		return "7bit"
	case Valid:
		return "valid"
	case Broken:
		return "broken"
	}
	return "unknown"
}

// IsKnown reports whether cr is an actual classification.
func (cr CodeRange) IsKnown() bool {
	return cr >= SevenBit && cr <= Broken
}

// Combine derives the code range of a concatenation from the code ranges of
// its parts, without scanning bytes. The result is never more specific than
// the coarser of a and b.
func Combine(a, b CodeRange, enc *Encoding) CodeRange {
	switch {
	case !a.IsKnown() || !b.IsKnown():
		return Unknown
	case a == Broken || b == Broken:
		return Broken
	case a == SevenBit && b == SevenBit && enc.asciiCompatible:
		return SevenBit
	}
	return Valid
}

// SingleByteOptimizable reports whether every character of a sequence with
// code range cr under enc occupies exactly one byte.
func SingleByteOptimizable(cr CodeRange, enc *Encoding) bool {
	if enc.IsSingleByte() {
		return true
	}
	return cr == SevenBit && enc.asciiCompatible
}

// Classify scans b once and returns its code range under enc together with
// its character count. Malformed sequences count one character per offending
// byte (per code unit for UTF-16/32), so the count never exceeds len(b).
func Classify(b []byte, enc *Encoding) (CodeRange, int) {
	switch enc.family {
	case familyASCII:
		return classifyASCII(b)
	case familyBinary:
		if isSevenBit(b) {
			return SevenBit, len(b)
		}
		return Valid, len(b)
	case familyUTF8:
		return classifyUTF8(b)
	case familyUTF16:
		return enc.classifyUTF16(b)
	case familyUTF32:
		return enc.classifyUTF32(b)
	case familyCodePage:
		return enc.classifyCodePage(b)
	}
	panic("charset: encoding of unknown family")
}

func isSevenBit(b []byte) bool {
	for _, c := range b {
		if c >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func classifyASCII(b []byte) (CodeRange, int) {
	if isSevenBit(b) {
		return SevenBit, len(b)
	}
	return Broken, len(b)
}

func classifyUTF8(b []byte) (CodeRange, int) {
	i := 0
	for i < len(b) && b[i] < utf8.RuneSelf {
		i++
	}
	if i == len(b) {
		return SevenBit, len(b)
	}
	cr, chars := Valid, i
	for i < len(b) {
		if b[i] < utf8.RuneSelf {
			i++
			chars++
			continue
		}
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			cr = Broken
			size = 1
		}
		i += size
		chars++
	}
	return cr, chars
}

func (enc *Encoding) unit16(b []byte) uint16 {
	if enc.bigEndian {
		return uint16(b[0])<<8 | uint16(b[1])
	}
	return uint16(b[1])<<8 | uint16(b[0])
}

func (enc *Encoding) unit32(b []byte) uint32 {
	if enc.bigEndian {
		return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	}
	return uint32(b[3])<<24 | uint32(b[2])<<16 | uint32(b[1])<<8 | uint32(b[0])
}

func isHighSurrogate(u uint16) bool {
	return u >= 0xd800 && u < 0xdc00
}

func isLowSurrogate(u uint16) bool {
	return u >= 0xdc00 && u < 0xe000
}

func (enc *Encoding) classifyUTF16(b []byte) (CodeRange, int) {
	cr, chars := Valid, 0
	i := 0
	for ; i+1 < len(b); i += 2 {
		u := enc.unit16(b[i:])
		chars++
		switch {
		case isHighSurrogate(u):
			if i+3 < len(b) && isLowSurrogate(enc.unit16(b[i+2:])) {
				i += 2
				continue
			}
			cr = Broken
		case isLowSurrogate(u):
			cr = Broken
		}
	}
	if i < len(b) { // dangling odd byte
		cr = Broken
		chars++
	}
	return cr, chars
}

func (enc *Encoding) classifyUTF32(b []byte) (CodeRange, int) {
	cr, chars := Valid, 0
	i := 0
	for ; i+3 < len(b); i += 4 {
		r := enc.unit32(b[i:])
		chars++
		if r > utf8.MaxRune || utf16.IsSurrogate(rune(r)) {
			cr = Broken
		}
	}
	if i < len(b) {
		cr = Broken
		chars++
	}
	return cr, chars
}

func (enc *Encoding) classifyCodePage(b []byte) (CodeRange, int) {
	if enc.asciiCompatible && isSevenBit(b) {
		return SevenBit, len(b)
	}
	for _, c := range b {
		if enc.codepage.DecodeByte(c) == utf8.RuneError {
			return Broken, len(b)
		}
	}
	return Valid, len(b)
}
