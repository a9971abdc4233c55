/*
Package ropes implements the immutable, structure-sharing byte strings backing
a dynamic language's string values.

Ropes

Ropes organize fragments of immutable bytes in a tree. Concatenation and
substring extraction create new nodes which reference existing ones instead
of copying bytes; bytes are materialized only when a contiguous buffer is
actually required. Every rope carries its encoding and a lazily derived
code range (see package charset), so that validity and character counts of
concatenations follow from those of their parts without another byte scan.

A rope node is one of

	Leaf       an immutable flat byte buffer
	Concat     left and right child ropes
	Substring  a byte range view onto a base rope
	Repeat     a base rope repeated n times

Nodes never point to their parents, so subtrees may be shared between any
number of ropes, and ropes may be shared between goroutines without locking.
The only state written after construction are write-once caches (flat bytes,
classification, hash code), which are published atomically.

_________________________________________________________________________

From a paper by Hans-J. Boehm, Russ Atkinson and Michael Plass, 1995:

Ropes, an Alternative to Strings

[…] We desire the following characteristics:

1. Immutable strings, i.e. strings that cannot be modified in place, should be well
supported. […]

2. Commonly occurring operations on strings should be efficient. In particular (non-destructive)
concatenation of strings and non-destructive substring operations should be fast,
and should not require excessive amounts of space.

3. Common string operations should scale to long strings. […]

The balancing criterion of this package is taken from that paper: a
concatenation node of depth d is balanced if it holds at least Fib(d+2) bytes.

_________________________________________________________________________

BSD 3-Clause License

Copyright (c) 2020–21, Norbert Pillmayer

All rights reserved.

Redistribution and use in source and binary forms, with or without
modification, are permitted provided that the following conditions are met:

1. Redistributions of source code must retain the above copyright notice, this
list of conditions and the following disclaimer.

2. Redistributions in binary form must reproduce the above copyright notice,
this list of conditions and the following disclaimer in the documentation
and/or other materials provided with the distribution.

3. Neither the name of the copyright holder nor the names of its
contributors may be used to endorse or promote products derived from
this software without specific prior written permission.

THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE LIABLE
FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR CONSEQUENTIAL
DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER
CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY,
OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.

*/
package ropes

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'ropes'
func tracer() tracing.Trace {
	return tracing.Select("ropes")
}

// RopeError is an error type for the ropes module
type RopeError string

func (e RopeError) Error() string {
	return string(e)
}

// ErrUnsupportedOperation signals that a fast path cannot serve a request.
// Callers are expected to fall back to the general (slower) operation.
const ErrUnsupportedOperation = RopeError("unsupported operation")

// ErrIndexOutOfBounds is flagged whenever a rope position is
// greater than the length of the rope.
const ErrIndexOutOfBounds = RopeError("index out of bounds")

// ErrIllegalArguments is flagged whenever function parameters are invalid.
const ErrIllegalArguments = RopeError("illegal arguments")

// ErrEncodingMismatch is flagged when ropes of incompatible encodings are combined.
const ErrEncodingMismatch = RopeError("incompatible encodings")

// ErrBuilderCompleted signals that a rope builder has already completed a rope and
// it's illegal to further add fragments.
const ErrBuilderCompleted = RopeError("forbidden to add fragments; rope has been completed")

// assert panics on violated caller contracts. The panic value wraps err.
func assert(condition bool, err error, format string, args ...any) {
	if !condition {
		panic(wrap(err, format, args...))
	}
}

func wrap(err error, format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{err}, args...)...)
}
