package ropes

import (
	"math/bits"

	"github.com/npillmayer/ropes/charset"
)

// CoalesceThreshold is the maximum combined length up to which Rebalance
// merges adjacent short fragments into a single flat leaf.
var CoalesceThreshold = 512

// Rebalance returns a rope with the content of r and a depth logarithmic in
// the number of its fragments. Balanced ropes are returned unchanged.
//
// The tree is taken apart into its fragments (leaves, substrings and
// repetitions), runs of adjacent short fragments are flattened into single
// leaves, as are fragments too short for their own depth, and a new tree is built on top by repeated halving.
func Rebalance(r *Rope) *Rope {
	if r.IsBalanced() {
		return r
	}
	atoms := collectAtoms(r, nil)
	atoms = coalesce(atoms, r.enc)
	atoms = flattenDeep(atoms)
	out := buildBalanced(atoms, r.enc)
	tracer().Debugf("rope: rebalanced %d bytes, depth %d → %d, %d fragments",
		r.byteLen, r.depth, out.depth, len(atoms))
	return out
}

// Join concatenates ropes under encoding enc into a balanced tree. The ropes
// themselves are not taken apart.
func Join(enc *charset.Encoding, ropes ...*Rope) *Rope {
	parts := make([]*Rope, 0, len(ropes))
	for _, r := range ropes {
		if !r.IsEmpty() {
			parts = append(parts, r)
		}
	}
	return buildBalanced(parts, enc)
}

// collectAtoms appends the non-concatenation nodes of r, left to right.
// Substrings and repetitions of unbalanced trees are re-rooted on a
// rebalanced base.
func collectAtoms(r *Rope, atoms []*Rope) []*Rope {
	for {
		c, ok := r.node.(concatNode)
		if !ok {
			if !r.IsEmpty() {
				atoms = append(atoms, rebalanceBase(r))
			}
			return atoms
		}
		atoms = collectAtoms(c.left, atoms)
		r = c.right
	}
}

func rebalanceBase(r *Rope) *Rope {
	switch n := r.node.(type) {
	case substringNode:
		if !n.base.IsBalanced() {
			return restamp(Substring(Rebalance(n.base), n.offset, r.byteLen), r.enc)
		}
	case repeatNode:
		if !n.base.IsBalanced() {
			return restamp(Repeat(Rebalance(n.base), n.count), r.enc)
		}
	}
	return r
}

// coalesce flattens runs of adjacent atoms whose combined length does not
// exceed CoalesceThreshold into single leaves.
func coalesce(atoms []*Rope, enc *charset.Encoding) []*Rope {
	out := make([]*Rope, 0, len(atoms))
	run := make([]*Rope, 0, 8)
	runLen := 0
	flush := func() {
		switch len(run) {
		case 0:
		case 1:
			out = append(out, run[0])
		default:
			out = append(out, mergeLeaves(run, runLen, enc))
		}
		run, runLen = run[:0], 0
	}
	for _, a := range atoms {
		if runLen+a.byteLen > CoalesceThreshold {
			flush()
		}
		if a.byteLen > CoalesceThreshold {
			out = append(out, a)
			continue
		}
		run = append(run, a)
		runLen += a.byteLen
	}
	flush()
	return out
}

// mergeLeaves flattens a run of ropes into one leaf. If the run is known to
// be well-formed, its metadata carries over; otherwise the leaf is
// classified afresh, as byte sequences broken at fragment borders may
// combine into valid characters.
func mergeLeaves(run []*Rope, length int, enc *charset.Encoding) *Rope {
	buf := make([]byte, 0, length)
	cr, chars := charset.SevenBit, 0
	for i, r := range run {
		buf = append(buf, r.Bytes()...)
		st := r.metadata()
		if i == 0 {
			cr = st.codeRange
		} else {
			cr = charset.Combine(cr, st.codeRange, enc)
		}
		chars += st.chars
	}
	leaf := makeLeaf(buf, enc)
	if cr == charset.SevenBit || cr == charset.Valid {
		leaf.stats.set(stats{codeRange: cr, chars: chars, sbo: charset.SingleByteOptimizable(cr, enc)})
	}
	return leaf
}

// flattenDeep turns fragments into leaves if their own depth would break the
// Fibonacci bound once placed in a tree built by buildBalanced. A substring of
// a few bytes over a deep base is the typical case. Every fragment kept has
// at least fib(depth+h+2) bytes, with h the height of the halving tree, so
// each node of that tree is balanced. Flattened fragments are short with
// respect to their depth.
func flattenDeep(atoms []*Rope) []*Rope {
	if len(atoms) == 0 {
		return atoms
	}
	h := bits.Len(uint(len(atoms) - 1))
	for i, a := range atoms {
		if a.depth > 0 && !isBalanced(a.byteLen, a.depth+h) {
			atoms[i] = ToLeaf(a)
		}
	}
	return atoms
}

// buildBalanced concatenates parts by recursive halving. With k non-empty
// flat parts the result has depth ⌈log₂ k⌉, which satisfies the Fibonacci
// bound.
func buildBalanced(parts []*Rope, enc *charset.Encoding) *Rope {
	switch len(parts) {
	case 0:
		return Empty(enc)
	case 1:
		return restamp(parts[0], enc)
	}
	mid := len(parts) / 2
	return Concat(buildBalanced(parts[:mid], enc), buildBalanced(parts[mid:], enc), enc)
}
