/*
Package intern deduplicates ropes by content.

A Table hands out one canonical flat rope per distinct (content, encoding)
pair. Clients holding many equal strings, e.g. symbol names or hash keys,
intern them to share one buffer and to compare interned ropes by identity.
Tables are bounded: the least recently used content is dropped once the
table holds more distinct hash codes than its capacity.

_________________________________________________________________________

# BSD 3-Clause License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the LICENSE file for details.
*/
package intern

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'ropes'
func tracer() tracing.Trace {
	return tracing.Select("ropes")
}
