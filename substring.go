package ropes

import (
	"math"

	"github.com/npillmayer/ropes/charset"
)

// Substring returns the byte range [offset, offset+length) of base as a rope.
// Bytes are never copied. An out-of-range request is a caller error and
// panics with ErrIndexOutOfBounds.
//
// Requests are resolved as close to the leaves as possible: a range lying
// inside one child of a concatenation (or inside one period of a repetition)
// becomes a substring of that child, and substrings of substrings collapse
// to a single view.
func Substring(base *Rope, offset, length int) *Rope {
	assert(base != nil, ErrIllegalArguments, "substring of nil rope")
	assert(offset >= 0 && length >= 0 && offset <= base.byteLen-length, ErrIndexOutOfBounds,
		"substring [%d:+%d] of rope of length %d", offset, length, base.byteLen)
	if length == 0 {
		return Empty(base.enc)
	}
	if offset == 0 && length == base.byteLen {
		return base
	}
	switch n := base.node.(type) {
	case substringNode:
		return restamp(Substring(n.base, n.offset+offset, length), base.enc)
	case concatNode:
		ll := n.left.byteLen
		if offset+length <= ll {
			return restamp(Substring(n.left, offset, length), base.enc)
		}
		if offset >= ll {
			return restamp(Substring(n.right, offset-ll, length), base.enc)
		}
	case repeatNode:
		bl := n.base.byteLen
		start := offset % bl
		if start+length <= bl {
			return restamp(Substring(n.base, start, length), base.enc)
		}
	}
	r := newRope(substringNode{base: base, offset: offset}, base.enc, length, base.depth+1)
	if raw, ok := base.raw.peek(); ok {
		r.raw.set(raw[offset : offset+length : offset+length])
	}
	return r
}

// Repeat returns base repeated count times. A negative count, or a result
// too long to be addressed, is a caller error and panics with
// ErrIllegalArguments.
func Repeat(base *Rope, count int) *Rope {
	assert(base != nil, ErrIllegalArguments, "repetition of nil rope")
	assert(count >= 0, ErrIllegalArguments, "negative repeat count %d", count)
	if count == 0 || base.IsEmpty() {
		return Empty(base.enc)
	}
	if count == 1 {
		return base
	}
	assert(base.byteLen <= math.MaxInt/count, ErrIllegalArguments,
		"repeating %d bytes %d times overflows", base.byteLen, count)
	r := newRope(repeatNode{base: base, count: count}, base.enc, base.byteLen*count, base.depth+1)
	if b, ok := base.stats.peek(); ok {
		r.stats.set(stats{codeRange: b.codeRange, chars: b.chars * count, sbo: b.sbo})
	}
	return r
}

// WithEncoding returns a rope sharing the structure and bytes of r, stamped
// with a different encoding. This is a fast metadata operation and only
// legal if the code range stays the same; if cr differs from r's code
// range, WithEncoding fails with ErrUnsupportedOperation and callers should
// fall back to Reencode.
//
// The caller vouches that r's characters are the same under enc, i.e., that
// the character length carries over.
func (r *Rope) WithEncoding(enc *charset.Encoding, cr charset.CodeRange) (*Rope, error) {
	assert(enc != nil, ErrIllegalArguments, "re-encoding without encoding")
	current := r.metadata()
	if cr != current.codeRange {
		return nil, wrap(ErrUnsupportedOperation,
			"cannot fast-path updating encoding with different code range (%s to %s)", current.codeRange, cr)
	}
	if enc == r.enc {
		return r, nil
	}
	out := newRope(r.node, enc, r.byteLen, r.depth)
	out.stats.set(stats{codeRange: cr, chars: current.chars, sbo: charset.SingleByteOptimizable(cr, enc)})
	if raw, ok := r.raw.peek(); ok {
		out.raw.set(raw)
	}
	return out, nil
}

// Reencode returns r's bytes as a flat rope of encoding enc, classified from
// scratch. This is the always-correct counterpart of WithEncoding.
func (r *Rope) Reencode(enc *charset.Encoding) *Rope {
	assert(enc != nil, ErrIllegalArguments, "re-encoding without encoding")
	leaf := makeLeaf(r.Bytes(), enc)
	leaf.metadata()
	return leaf
}
