/*
Package charset names byte encodings and classifies byte sequences against them.

A classification is called a code range. It tells whether a byte sequence is
7-bit clean, a valid sequence of characters under its encoding, or broken.
Code ranges are cheap to combine: concatenating two classified sequences
never needs another byte scan, which is why ropes cache them at all.

Supported encodings are US-ASCII, ASCII-8BIT (binary), UTF-8, UTF-16 and
UTF-32 in both byte orders, plus the single-byte code pages of
golang.org/x/text/encoding/charmap, resolved by IANA name or alias.

_________________________________________________________________________

# BSD 3-Clause License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the LICENSE file for details.
*/
package charset

import (
	"errors"

	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'ropes'
func tracer() tracing.Trace {
	return tracing.Select("ropes")
}

// ErrUnknownEncoding is returned by Lookup for names which do not denote a
// supported encoding.
var ErrUnknownEncoding = errors.New("charset: unknown or unsupported encoding")
