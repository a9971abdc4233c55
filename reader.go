package ropes

import "io"

// Reader returns a reader for the bytes of a rope. Reading does not flatten
// the rope.
func (r *Rope) Reader() io.Reader {
	return &ropeReader{rope: r}
}

type ropeReader struct {
	rope   *Rope
	cursor int
}

func (rr *ropeReader) Read(p []byte) (n int, err error) {
	if len(p) == 0 {
		return 0, nil
	}
	l := min(len(p), rr.rope.byteLen-rr.cursor)
	if l == 0 {
		return 0, io.EOF
	}
	copyTo(p[:l], rr.rope, rr.cursor)
	rr.cursor += l
	return l, nil
}
