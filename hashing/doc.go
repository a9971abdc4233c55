/*
Package hashing provides the seeded mixing hash used for equality-class
lookups of ropes (hash maps, interning, deduplication).

The hash is a murmur2-style mix over a stream of 64-bit words. It is not a
cryptographic hash. All arithmetic wraps at 64 bits and results are
bit-exact across platforms.

Every Hashing carries one seed, chosen once at construction: a fixed
constant in deterministic mode (for reproducible hash ordering, e.g. in
tests), otherwise a value drawn from the operating system's entropy source.
There is no way to reseed; the seed is threaded explicitly to every call site
by passing the *Hashing around.

_________________________________________________________________________

# BSD 3-Clause License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the LICENSE file for details.
*/
package hashing

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'ropes'
func tracer() tracing.Trace {
	return tracing.Select("ropes")
}
