package ropes

import (
	"math"

	"github.com/npillmayer/ropes/charset"
)

// fibonacci[i] is the i-th Fibonacci number, saturating at MaxInt.
var fibonacci = func() [94]int {
	var f [94]int
	f[1] = 1
	for i := 2; i < len(f); i++ {
		if f[i-1] > math.MaxInt-f[i-2] {
			f[i] = math.MaxInt
		} else {
			f[i] = f[i-1] + f[i-2]
		}
	}
	return f
}()

// isBalanced applies the depth bound of Boehm et al.: a node of depth d is
// balanced if it holds at least Fib(d+2) bytes. This limits depth to about
// log_φ(n).
func isBalanced(byteLen, depth int) bool {
	if depth+2 >= len(fibonacci) {
		return false
	}
	return byteLen >= fibonacci[depth+2]
}

// NewConcat creates a concatenation node with metadata supplied by the caller.
// If cr is charset.Unknown, code range, character length and sbo are derived
// from the children on first request and sbo is ignored.
func NewConcat(left, right *Rope, enc *charset.Encoding, cr charset.CodeRange,
	sbo bool, depth int, balanced bool) *Rope {
	//
	assert(left != nil && right != nil, ErrIllegalArguments, "concatenation of nil rope")
	assert(left.byteLen <= math.MaxInt-right.byteLen, ErrIllegalArguments, "concatenation too long")
	r := newRope(concatNode{left: left, right: right, balanced: balanced},
		enc, left.byteLen+right.byteLen, depth)
	if cr.IsKnown() {
		r.stats.set(stats{
			codeRange: cr,
			chars:     left.CharacterLength() + right.CharacterLength(),
			sbo:       sbo,
		})
	}
	return r
}

// Concat concatenates two ropes into a rope of encoding enc.
//
// Both ropes have to be of encoding enc, with two exceptions: empty ropes are
// accepted in any encoding, and a 7-bit clean rope may be combined under any
// ASCII-compatible encoding if its own encoding is ASCII-compatible, too.
// Any other combination is a caller error and panics with ErrEncodingMismatch.
//
// Concat does not rebalance. The result carries a balance flag which callers
// may consult to decide on a later Rebalance; see Append.
func Concat(left, right *Rope, enc *charset.Encoding) *Rope {
	assert(left != nil && right != nil, ErrIllegalArguments, "concatenation of nil rope")
	if left.IsEmpty() {
		return restamp(right, enc)
	}
	if right.IsEmpty() {
		return restamp(left, enc)
	}
	assert(compatible(left, enc), ErrEncodingMismatch, "cannot concatenate %s onto %s", left.enc, enc)
	assert(compatible(right, enc), ErrEncodingMismatch, "cannot concatenate %s onto %s", right.enc, enc)
	l, rt := left.metadata(), right.metadata()
	cr := charset.Combine(l.codeRange, rt.codeRange, enc)
	depth := max(left.depth, right.depth) + 1
	assert(left.byteLen <= math.MaxInt-right.byteLen, ErrIllegalArguments, "concatenation too long")
	byteLen := left.byteLen + right.byteLen
	return NewConcat(left, right, enc, cr, l.sbo && rt.sbo, depth, isBalanced(byteLen, depth))
}

// rebalanceDepth is the depth above which Append rebalances unbalanced results.
const rebalanceDepth = 32

// Append concatenates left and right like Concat, but rebalances the result
// if it has become deep and unbalanced. Use Append for repeated appends to a
// growing rope.
func Append(left, right *Rope, enc *charset.Encoding) *Rope {
	r := Concat(left, right, enc)
	if r.depth > rebalanceDepth && !r.IsBalanced() {
		return Rebalance(r)
	}
	return r
}

func compatible(r *Rope, enc *charset.Encoding) bool {
	if r.enc == enc || r.IsEmpty() {
		return true
	}
	return enc.IsASCIICompatible() && r.enc.IsASCIICompatible() && r.CodeRange() == charset.SevenBit
}

// restamp returns r under encoding enc. r has to be compatible with enc.
func restamp(r *Rope, enc *charset.Encoding) *Rope {
	if r.enc == enc {
		return r
	}
	if r.IsEmpty() {
		return Empty(enc)
	}
	assert(compatible(r, enc), ErrEncodingMismatch, "cannot use %s as %s", r.enc, enc)
	out, err := r.WithEncoding(enc, charset.SevenBit)
	assert(err == nil, ErrEncodingMismatch, "cannot use %s as %s", r.enc, enc)
	return out
}
