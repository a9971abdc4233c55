package ropes

/*
BSD 3-Clause License

Copyright (c) 2020–21, Norbert Pillmayer

Please refer to the License file in the repository root.

*/

import (
	"sync/atomic"

	"github.com/npillmayer/ropes/charset"
	"github.com/npillmayer/ropes/hashing"
)

// Kind tags the variant of a rope node.
type Kind uint8

const (
	LeafKind Kind = iota
	ConcatKind
	SubstringKind
	RepeatKind
)

func (k Kind) String() string {
	switch k {
	case LeafKind:
		return "leaf"
	case ConcatKind:
		return "concat"
	case SubstringKind:
		return "substring"
	case RepeatKind:
		return "repeat"
	}
	return "?"
}

// Rope is an immutable byte string with an encoding.
//
// A rope is a common envelope of attributes (byte length, encoding, depth and
// lazily derived metadata) around one of four node variants. Ropes are always
// handled by pointer and must not be copied.
//
// Due to their internal structure ropes do have performance characteristics
// differing from Go strings or byte slices.
//
//	Operation     |   Rope             |  []byte
//	--------------+--------------------+--------
//	Index         |   O(depth)         |   O(1)
//	Substring     |   O(1)             |   O(1)
//	Concatenate   |   O(1)             |   O(n)
//	Repeat        |   O(1)             |   O(n·k)
//	Flatten       |   O(n), once       |   –
//
// Indexing becomes O(1) as soon as a rope has been flattened.
type Rope struct {
	node    node
	enc     *charset.Encoding
	byteLen int
	depth   int
	stats   cell[stats]
	raw     cell[[]byte]
	hash    atomic.Pointer[hashCode]
}

// node is the variant part of a rope. It is one of leafNode, concatNode,
// substringNode or repeatNode.
type node interface {
	kind() Kind
}

type leafNode struct {
	bytes []byte
}

type concatNode struct {
	left, right *Rope
	balanced    bool
}

type substringNode struct {
	base   *Rope
	offset int
}

type repeatNode struct {
	base  *Rope
	count int
}

func (leafNode) kind() Kind      { return LeafKind }
func (concatNode) kind() Kind    { return ConcatKind }
func (substringNode) kind() Kind { return SubstringKind }
func (repeatNode) kind() Kind    { return RepeatKind }

// stats holds the metadata derived from a rope's bytes under its encoding.
type stats struct {
	codeRange charset.CodeRange
	chars     int
	sbo       bool // single-byte optimizable
}

type hashCode struct {
	owner *hashing.Hashing
	value int64
}

func newRope(n node, enc *charset.Encoding, byteLen, depth int) *Rope {
	assert(enc != nil, ErrIllegalArguments, "rope without encoding")
	return &Rope{
		node:    n,
		enc:     enc,
		byteLen: byteLen,
		depth:   depth,
	}
}

// Kind returns the variant of the rope's root node.
func (r *Rope) Kind() Kind {
	return r.node.kind()
}

// ByteLength returns the length of the rope in bytes.
func (r *Rope) ByteLength() int {
	return r.byteLen
}

// IsEmpty reports whether the rope has no bytes.
func (r *Rope) IsEmpty() bool {
	return r.byteLen == 0
}

// Encoding returns the encoding of the rope.
func (r *Rope) Encoding() *charset.Encoding {
	return r.enc
}

// Depth returns the length of the longest path from r to a leaf.
func (r *Rope) Depth() int {
	return r.depth
}

// CharacterLength returns the number of characters of the rope under its
// encoding. May trigger a deferred classification.
func (r *Rope) CharacterLength() int {
	return r.metadata().chars
}

// CodeRange returns the classification of the rope's bytes under its
// encoding. It never returns charset.Unknown; a deferred classification is
// computed on first request.
func (r *Rope) CodeRange() charset.CodeRange {
	return r.metadata().codeRange
}

// IsSingleByteOptimizable reports whether every character of the rope
// occupies exactly one byte.
func (r *Rope) IsSingleByteOptimizable() bool {
	return r.metadata().sbo
}

// IsBalanced reports whether the rope satisfies the depth bound. Nodes other
// than concatenations are always considered balanced.
func (r *Rope) IsBalanced() bool {
	if c, ok := r.node.(concatNode); ok {
		return c.balanced
	}
	return true
}

// Left returns the left child of a concatenation, or nil.
func (r *Rope) Left() *Rope {
	if c, ok := r.node.(concatNode); ok {
		return c.left
	}
	return nil
}

// Right returns the right child of a concatenation, or nil.
func (r *Rope) Right() *Rope {
	if c, ok := r.node.(concatNode); ok {
		return c.right
	}
	return nil
}

// Base returns the base rope of a substring or repetition, or nil.
func (r *Rope) Base() *Rope {
	switch n := r.node.(type) {
	case substringNode:
		return n.base
	case repeatNode:
		return n.base
	}
	return nil
}

// IsFlat reports whether the rope's bytes are available as one contiguous
// buffer, either because r is a leaf or because it has been flattened.
func (r *Rope) IsFlat() bool {
	_, ok := r.raw.peek()
	return ok
}

func (r *Rope) metadata() stats {
	return r.stats.get(r.classify)
}

// classify derives the metadata of r. For leaves and substrings it scans the
// bytes; other variants derive it from their children.
func (r *Rope) classify() stats {
	switch n := r.node.(type) {
	case concatNode:
		l, rt := n.left.metadata(), n.right.metadata()
		return stats{
			codeRange: charset.Combine(l.codeRange, rt.codeRange, r.enc),
			chars:     l.chars + rt.chars,
			sbo:       l.sbo && rt.sbo,
		}
	case repeatNode:
		b := n.base.metadata()
		return stats{codeRange: b.codeRange, chars: b.chars * n.count, sbo: b.sbo}
	case substringNode:
		if b, ok := n.base.stats.peek(); ok && b.codeRange == charset.SevenBit {
			return stats{codeRange: charset.SevenBit, chars: r.byteLen, sbo: b.sbo}
		}
	}
	cr, chars := charset.Classify(r.Bytes(), r.enc)
	tracer().Debugf("rope: classified %s of %d bytes as %s", r.Kind(), r.byteLen, cr)
	return stats{codeRange: cr, chars: chars, sbo: charset.SingleByteOptimizable(cr, r.enc)}
}
