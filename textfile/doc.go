/*
Package textfile provides API helpers to load text files as ropes.

Files are read in fragments, concurrently, and every fragment becomes a leaf
of the resulting rope. Fragment borders are moved to character boundaries of
the file's encoding, so no leaf starts or ends in the middle of a character.
Leaves are classified lazily, on first request.

Clients interested in load progress subscribe to a Loader before starting
the load; each fragment read is broadcast as a Fragment event.

_________________________________________________________________________

# BSD 3-Clause License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the LICENSE file for details.
*/
package textfile

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'ropes'
func tracer() tracing.Trace {
	return tracing.Select("ropes")
}
