package ropes

import (
	"bytes"

	"github.com/npillmayer/ropes/charset"
)

// NewLeaf creates a flat rope from a copy of b and classifies it right away.
func NewLeaf(b []byte, enc *charset.Encoding) *Rope {
	r := NewLeafDeferred(b, enc)
	r.metadata()
	return r
}

// NewLeafDeferred creates a flat rope from a copy of b. Classification is
// deferred until code range or character length are first requested.
func NewLeafDeferred(b []byte, enc *charset.Encoding) *Rope {
	return makeLeaf(bytes.Clone(b), enc)
}

// NewLeafClassified creates a flat rope from a copy of b with metadata
// supplied by the caller, who vouches for its correctness.
func NewLeafClassified(b []byte, enc *charset.Encoding, cr charset.CodeRange, chars int) *Rope {
	assert(cr.IsKnown(), ErrIllegalArguments, "leaf must be created with a known code range")
	assert(chars >= 0 && chars <= len(b), ErrIllegalArguments, "character length %d for %d bytes", chars, len(b))
	r := makeLeaf(bytes.Clone(b), enc)
	r.stats.set(stats{codeRange: cr, chars: chars, sbo: charset.SingleByteOptimizable(cr, enc)})
	return r
}

// FromString creates a UTF-8 rope from a Go string.
func FromString(s string) *Rope {
	return NewLeaf([]byte(s), charset.UTF8)
}

// Empty returns an empty rope of encoding enc.
func Empty(enc *charset.Encoding) *Rope {
	return NewLeaf(nil, enc)
}

// makeLeaf takes ownership of buf.
func makeLeaf(buf []byte, enc *charset.Encoding) *Rope {
	if buf == nil {
		buf = []byte{}
	}
	r := newRope(leafNode{bytes: buf}, enc, len(buf), 0)
	r.raw.set(buf)
	return r
}

// ToLeaf returns a flat rope with the content, encoding and metadata of r.
// Leaves are returned unchanged; other ropes are flattened, and the leaf
// shares r's flat buffer. Substrings are copied, as their flat buffer may be
// a view into a much larger base.
func ToLeaf(r *Rope) *Rope {
	if r.Kind() == LeafKind {
		return r
	}
	buf := r.Bytes()
	if r.Kind() == SubstringKind {
		buf = bytes.Clone(buf)
	}
	leaf := makeLeaf(buf, r.enc)
	if st, ok := r.stats.peek(); ok && st.codeRange != charset.Broken {
		leaf.stats.set(st)
	}
	if hc := r.hash.Load(); hc != nil {
		leaf.hash.Store(hc)
	}
	return leaf
}
