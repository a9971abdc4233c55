package ropes

import (
	"io"
	"iter"
)

// GetByteSlow returns the byte at index by descending the tree, without
// materializing anything. Cost is O(depth). An index outside
// [0, ByteLength) is a caller error and panics with ErrIndexOutOfBounds.
func (r *Rope) GetByteSlow(index int) byte {
	assert(index >= 0 && index < r.byteLen, ErrIndexOutOfBounds,
		"index %d of rope of length %d", index, r.byteLen)
	for {
		switch n := r.node.(type) {
		case leafNode:
			return n.bytes[index]
		case concatNode:
			if index < n.left.byteLen {
				r = n.left
			} else {
				index -= n.left.byteLen
				r = n.right
			}
		case substringNode:
			index += n.offset
			r = n.base
		case repeatNode:
			index %= n.base.byteLen
			r = n.base
		}
	}
}

// ByteAt returns the byte at index. It uses the flat buffer if r has been
// flattened and falls back to GetByteSlow otherwise. Callers needing many
// random accesses should call Bytes first.
func (r *Rope) ByteAt(index int) byte {
	if raw, ok := r.raw.peek(); ok {
		assert(index >= 0 && index < len(raw), ErrIndexOutOfBounds,
			"index %d of rope of length %d", index, r.byteLen)
		return raw[index]
	}
	return r.GetByteSlow(index)
}

// Flatten returns the content of r as one contiguous buffer; see Rope.Bytes.
func Flatten(r *Rope) []byte {
	return r.Bytes()
}

// Bytes returns the content of r as one contiguous buffer. The buffer is
// computed once and cached; subsequent calls return the identical slice.
// Clients must not modify it.
func (r *Rope) Bytes() []byte {
	return r.raw.get(r.materialize)
}

// String returns the rope's bytes as a Go string. This may be an expensive
// operation, as it will flatten the rope.
func (r *Rope) String() string {
	return string(r.Bytes())
}

func (r *Rope) materialize() []byte {
	if r.byteLen >= largeRope {
		tracer().Debugf("rope: flattening %s node of %d bytes, depth %d", r.Kind(), r.byteLen, r.depth)
	}
	buf := make([]byte, r.byteLen)
	copyTo(buf, r, 0)
	return buf
}

const largeRope = 1 << 20

// copyTo copies r[offset:offset+len(dst)] to dst. Subtrees which have
// already been flattened are copied from their buffers.
func copyTo(dst []byte, r *Rope, offset int) {
	for len(dst) > 0 {
		if raw, ok := r.raw.peek(); ok {
			copy(dst, raw[offset:])
			return
		}
		switch n := r.node.(type) {
		case concatNode:
			ll := n.left.byteLen
			if offset < ll {
				k := min(len(dst), ll-offset)
				copyTo(dst[:k], n.left, offset)
				dst = dst[k:]
				offset = ll
			}
			offset -= ll
			r = n.right
		case substringNode:
			offset += n.offset
			r = n.base
		case repeatNode:
			period := n.base.Bytes()
			start := offset % len(period)
			for len(dst) > 0 {
				k := copy(dst, period[start:])
				dst = dst[k:]
				start = 0
			}
			return
		default:
			panic("ropes: leaf without bytes")
		}
	}
}

// Each calls f for consecutive segments of r's bytes, in order, until f
// returns an error. Segments alias internal buffers; f must neither modify
// nor retain them. Each does not flatten r.
func (r *Rope) Each(f func(segment []byte) error) error {
	return eachSegment(r, 0, r.byteLen, f)
}

func eachSegment(r *Rope, offset, length int, f func([]byte) error) error {
	for length > 0 {
		if raw, ok := r.raw.peek(); ok {
			return f(raw[offset : offset+length])
		}
		switch n := r.node.(type) {
		case concatNode:
			ll := n.left.byteLen
			if offset < ll {
				k := min(length, ll-offset)
				if err := eachSegment(n.left, offset, k, f); err != nil {
					return err
				}
				length -= k
				offset = ll
			}
			offset -= ll
			r = n.right
		case substringNode:
			offset += n.offset
			r = n.base
		case repeatNode:
			bl := n.base.byteLen
			start := offset % bl
			for length > 0 {
				k := min(length, bl-start)
				if err := eachSegment(n.base, start, k, f); err != nil {
					return err
				}
				length -= k
				start = 0
			}
			return nil
		default:
			panic("ropes: leaf without bytes")
		}
	}
	return nil
}

// Segments returns an iterator over consecutive segments of r's bytes.
// The same restrictions as for Each apply.
func (r *Rope) Segments() iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		_ = r.Each(func(segment []byte) error {
			if !yield(segment) {
				return errStop
			}
			return nil
		})
	}
}

// WriteTo writes r's bytes to w without flattening r. It implements
// io.WriterTo.
func (r *Rope) WriteTo(w io.Writer) (int64, error) {
	var total int64
	err := r.Each(func(segment []byte) error {
		n, err := w.Write(segment)
		total += int64(n)
		return err
	})
	return total, err
}
