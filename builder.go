package ropes

import (
	"github.com/npillmayer/ropes/charset"
)

// MaxLeafSize is the size up to which a Builder fills a leaf before starting
// the next one.
var MaxLeafSize = 4096

// Builder incrementally stages bytes and finalizes them into a balanced Rope.
//
// Builder collects bytes into leaves of at most MaxLeafSize bytes, cutting
// only at character boundaries of its encoding, and materializes the tree
// only when Rope() is called.
type Builder struct {
	enc    *charset.Encoding
	parts  []*Rope // completed fragments, in logical order
	buf    []byte  // pending tail
	length int

	done bool
	rope *Rope
}

// NewBuilder creates a new and empty rope builder for encoding enc.
func NewBuilder(enc *charset.Encoding) *Builder {
	assert(enc != nil, ErrIllegalArguments, "builder without encoding")
	return &Builder{enc: enc}
}

// Rope returns the rope built from all staged fragments.
//
// It is illegal to continue adding fragments after Rope has been called, but
// Rope may be called multiple times.
func (b *Builder) Rope() *Rope {
	if b.rope == nil {
		b.flush(len(b.buf))
		b.rope = Join(b.enc, b.parts...)
		b.parts = nil
	}
	b.done = true
	if b.rope.IsEmpty() {
		tracer().Debugf("rope builder: rope is void")
	}
	return b.rope
}

// Reset drops the staged build and prepares the builder for a fresh build.
func (b *Builder) Reset() {
	b.parts = nil
	b.buf = nil
	b.length = 0
	b.done = false
	b.rope = nil
}

// Len returns the number of bytes staged so far.
func (b *Builder) Len() int {
	return b.length
}

// AppendString appends the bytes of text to the staged build.
func (b *Builder) AppendString(text string) error {
	return b.AppendBytes([]byte(text))
}

// AppendBytes appends a copy of p to the staged build.
func (b *Builder) AppendBytes(p []byte) error {
	if b.done {
		return ErrBuilderCompleted
	}
	b.buf = append(b.buf, p...)
	b.length += len(p)
	for len(b.buf) >= MaxLeafSize {
		cut := b.enc.SplitPoint(b.buf, MaxLeafSize)
		if cut == 0 {
			cut = MaxLeafSize
		}
		b.flush(cut)
	}
	return nil
}

// AppendRope appends a rope to the staged build. The rope is shared, not
// copied. It must be compatible with the builder's encoding.
func (b *Builder) AppendRope(r *Rope) error {
	if b.done {
		return ErrBuilderCompleted
	}
	if r.IsEmpty() {
		return nil
	}
	if !compatible(r, b.enc) {
		return wrap(ErrEncodingMismatch, "cannot append %s rope to %s builder", r.enc, b.enc)
	}
	b.flush(len(b.buf))
	b.parts = append(b.parts, r)
	b.length += r.byteLen
	return nil
}

// flush moves the first n pending bytes into a new leaf.
func (b *Builder) flush(n int) {
	if n == 0 {
		return
	}
	b.parts = append(b.parts, NewLeaf(b.buf[:n], b.enc))
	rest := copy(b.buf, b.buf[n:])
	b.buf = b.buf[:rest]
}
