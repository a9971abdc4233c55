package hashing

import "encoding/binary"

// Stream hashes a sequence of bytes as little-endian 64-bit words. A trailing
// partial word is zero-padded, and the total byte count is mixed in at the
// end, so "a" and "a\x00" hash differently.
//
// The sum depends only on the bytes written and their order, never on how
// they were split into Write calls. Stream implements io.Writer; writes never
// fail. A Stream is not safe for concurrent use.
type Stream struct {
	hash  int64
	word  uint64
	fill  uint // bytes buffered in word
	count uint64
}

// NewStream starts a byte stream hash from seed.
func (h *Hashing) NewStream(seed int64) *Stream {
	return &Stream{hash: h.Start(seed)}
}

// Bytes hashes b in one go.
func (h *Hashing) Bytes(seed int64, b []byte) int64 {
	s := h.NewStream(seed)
	_, _ = s.Write(b)
	return s.Sum()
}

func (s *Stream) Write(p []byte) (int, error) {
	n := len(p)
	s.count += uint64(n)
	for s.fill > 0 && len(p) > 0 {
		s.push(p[0])
		p = p[1:]
	}
	for len(p) >= 8 {
		s.hash = Update(s.hash, int64(binary.LittleEndian.Uint64(p)))
		p = p[8:]
	}
	for _, b := range p {
		s.push(b)
	}
	return n, nil
}

func (s *Stream) push(b byte) {
	s.word |= uint64(b) << (8 * s.fill)
	s.fill++
	if s.fill == 8 {
		s.hash = Update(s.hash, int64(s.word))
		s.word, s.fill = 0, 0
	}
}

// Len returns the number of bytes written so far.
func (s *Stream) Len() uint64 {
	return s.count
}

// Sum returns the hash of the bytes written so far. It does not change the
// state of the stream.
func (s *Stream) Sum() int64 {
	h := s.hash
	if s.fill > 0 {
		h = Update(h, int64(s.word))
	}
	return End(Update(h, int64(s.count)))
}
