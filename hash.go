package ropes

import (
	"bytes"

	"github.com/npillmayer/ropes/hashing"
)

// HashCode returns the content hash of r under h. The rope's bytes are
// streamed leaf by leaf, so r is not flattened. The hash depends on the bytes
// only: ropes of equal content have equal hash codes regardless of their
// tree shape.
//
// The result is cached in r for the first Hashing it is computed with;
// requests with another Hashing are computed but not cached.
func (r *Rope) HashCode(h *hashing.Hashing) int64 {
	if hc := r.hash.Load(); hc != nil && hc.owner == h {
		return hc.value
	}
	s := h.NewStream(0)
	_ = r.Each(func(segment []byte) error {
		_, err := s.Write(segment)
		return err
	})
	v := s.Sum()
	r.hash.CompareAndSwap(nil, &hashCode{owner: h, value: v})
	return v
}

// CachedHashCode returns the cached hash code of r, if there is one for h.
func (r *Rope) CachedHashCode(h *hashing.Hashing) (int64, bool) {
	if hc := r.hash.Load(); hc != nil && hc.owner == h {
		return hc.value, true
	}
	return 0, false
}

// Equal reports whether a and b hold the same bytes. Encodings are not
// compared. Cached hash codes are used to detect inequality early; neither
// rope is flattened.
func Equal(a, b *Rope) bool {
	if a == b {
		return true
	}
	if a.byteLen != b.byteLen {
		return false
	}
	if ha, hb := a.hash.Load(), b.hash.Load(); ha != nil && hb != nil &&
		ha.owner == hb.owner && ha.value != hb.value {
		return false
	}
	offset := 0
	err := a.Each(func(segment []byte) error {
		n := len(segment)
		err := eachSegment(b, offset, n, func(other []byte) error {
			if !bytes.Equal(segment[:len(other)], other) {
				return errStop
			}
			segment = segment[len(other):]
			return nil
		})
		offset += n
		return err
	})
	return err == nil
}

// errStop ends segment iteration early.
const errStop = RopeError("stop iteration")
