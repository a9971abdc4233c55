package ropes

import (
	"errors"
	"sync"
	"testing"

	"github.com/npillmayer/ropes/charset"
	"github.com/npillmayer/ropes/hashing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

// expectPanic runs f and checks that it panics with an error wrapping err.
func expectPanic(t *testing.T, err error, f func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatalf("expected panic with %v, got none", err)
		}
		e, ok := r.(error)
		if !ok || !errors.Is(e, err) {
			t.Fatalf("expected panic with %v, got %v", err, r)
		}
		t.Logf("panic: %v", e)
	}()
	f()
}

func TestConcatLeaves(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ropes")
	defer teardown()
	//
	r := Concat(FromString("abc"), FromString("def"), charset.UTF8)
	if r.Kind() != ConcatKind {
		t.Fatalf("expected concatenation, is %s", r.Kind())
	}
	if r.ByteLength() != 6 || r.CharacterLength() != 6 {
		t.Errorf("expected length 6/6, is %d/%d", r.ByteLength(), r.CharacterLength())
	}
	for i, c := range []byte("abcdef") {
		if b := r.GetByteSlow(i); b != c {
			t.Errorf("getByteSlow(%d) = %q, expected %q", i, b, c)
		}
	}
	if r.IsFlat() {
		t.Errorf("byte access should not have flattened the rope")
	}
	if s := string(Flatten(r)); s != "abcdef" {
		t.Errorf("expected flattened rope to be 'abcdef', is %q", s)
	}
	if r.CodeRange() != charset.SevenBit || !r.IsSingleByteOptimizable() {
		t.Errorf("expected 7bit single-byte rope, is %s", r.CodeRange())
	}
	if r.Depth() != 1 || !r.IsBalanced() {
		t.Errorf("expected balanced rope of depth 1, depth is %d", r.Depth())
	}
}

func TestConcatBrokenWithSevenBit(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ropes")
	defer teardown()
	//
	broken := NewLeaf([]byte("ab\xff"), charset.UTF8)
	if broken.CodeRange() != charset.Broken {
		t.Fatalf("expected broken leaf, is %s", broken.CodeRange())
	}
	clean := FromString("xyz")
	for _, r := range []*Rope{
		Concat(broken, clean, charset.UTF8),
		Concat(clean, broken, charset.UTF8),
	} {
		if r.CodeRange() != charset.Broken {
			t.Errorf("expected broken concatenation, is %s", r.CodeRange())
		}
		if r.CharacterLength() != 6 {
			t.Errorf("expected 6 characters, have %d", r.CharacterLength())
		}
	}
}

func TestConcatIsNeverMoreSpecific(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ropes")
	defer teardown()
	//
	valid := FromString("Grüße")
	clean := FromString(", Welt")
	r := Concat(valid, clean, charset.UTF8)
	if r.CodeRange() != charset.Valid {
		t.Errorf("expected valid concatenation, is %s", r.CodeRange())
	}
	if r.CharacterLength() != 11 {
		t.Errorf("expected 11 characters, have %d", r.CharacterLength())
	}
	if r.IsSingleByteOptimizable() {
		t.Errorf("expected multi-byte rope not to be single-byte optimizable")
	}
}

func TestConcatEmpty(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ropes")
	defer teardown()
	//
	abc := FromString("abc")
	if r := Concat(Empty(charset.UTF8), abc, charset.UTF8); r != abc {
		t.Errorf("expected concatenation with empty rope to return the other operand")
	}
	r := Concat(abc, Empty(charset.UTF16LE), charset.ASCII)
	if r.Encoding() != charset.ASCII || r.String() != "abc" {
		t.Errorf("expected abc/US-ASCII, have %q/%s", r.String(), r.Encoding())
	}
	if e := Concat(Empty(charset.UTF8), Empty(charset.UTF8), charset.UTF8); !e.IsEmpty() {
		t.Errorf("expected empty result")
	}
}

func TestConcatAcrossCompatibleEncodings(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ropes")
	defer teardown()
	//
	ascii := NewLeaf([]byte("Gr"), charset.ASCII)
	utf8 := FromString("üße")
	r := Concat(ascii, utf8, charset.UTF8)
	if r.Encoding() != charset.UTF8 {
		t.Errorf("expected UTF-8 concatenation, is %s", r.Encoding())
	}
	if s := Substring(r, 0, 2); s.Encoding() != charset.UTF8 || s.String() != "Gr" {
		t.Errorf("expected substring of 7bit child to be UTF-8 'Gr', is %s %q", s.Encoding(), s.String())
	}
	if r.CodeRange() != charset.Valid || r.CharacterLength() != 5 {
		t.Errorf("expected valid/5, have %s/%d", r.CodeRange(), r.CharacterLength())
	}
}

func TestConcatEncodingMismatch(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ropes")
	defer teardown()
	//
	wide := NewLeaf([]byte{'a', 0}, charset.UTF16LE)
	expectPanic(t, ErrEncodingMismatch, func() {
		Concat(FromString("abc"), wide, charset.UTF8)
	})
	latin := FromString("ü")
	expectPanic(t, ErrEncodingMismatch, func() {
		Concat(latin, NewLeaf([]byte("x"), charset.ASCII), charset.ASCII)
	})
}

func TestGetByteSlowOutOfRange(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ropes")
	defer teardown()
	//
	r := Concat(FromString("abc"), FromString("def"), charset.UTF8)
	expectPanic(t, ErrIndexOutOfBounds, func() { r.GetByteSlow(6) })
	expectPanic(t, ErrIndexOutOfBounds, func() { r.GetByteSlow(-1) })
	expectPanic(t, ErrIndexOutOfBounds, func() { r.ByteAt(6) })
}

func TestFlattenIsCached(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ropes")
	defer teardown()
	//
	r := Concat(FromString("Hello "), FromString("World"), charset.UTF8)
	b1 := r.Bytes()
	b2 := Flatten(r)
	if &b1[0] != &b2[0] {
		t.Errorf("expected flattening to return the cached buffer")
	}
	if !r.IsFlat() {
		t.Errorf("expected rope to be flat after flattening")
	}
	if r.ByteAt(6) != 'W' {
		t.Errorf("expected byte 6 to be 'W', is %q", r.ByteAt(6))
	}
}

func TestSlowAccessAgreesWithFlatten(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ropes")
	defer teardown()
	//
	for _, r := range sampleRopes() {
		flat := string(Flatten(r))
		if len(flat) != r.ByteLength() {
			t.Fatalf("flattened %d bytes for a rope of length %d", len(flat), r.ByteLength())
		}
		for i := 0; i < r.ByteLength(); i++ {
			if b := r.GetByteSlow(i); b != flat[i] {
				t.Fatalf("%s rope: getByteSlow(%d) = %q, flattened has %q", r.Kind(), i, b, flat[i])
			}
		}
	}
}

func TestDeferredClassification(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ropes")
	defer teardown()
	//
	r := NewLeafDeferred([]byte("Grüße"), charset.UTF8)
	if _, ok := r.stats.peek(); ok {
		t.Fatalf("expected classification to be deferred")
	}
	c := Concat(r, FromString("!"), charset.UTF8)
	if c.CodeRange() != charset.Valid || c.CharacterLength() != 6 {
		t.Errorf("expected valid/6, have %s/%d", c.CodeRange(), c.CharacterLength())
	}
	if r.CodeRange() != charset.Valid || r.CharacterLength() != 5 {
		t.Errorf("expected valid/5, have %s/%d", r.CodeRange(), r.CharacterLength())
	}
}

func TestNewConcatWithSuppliedMetadata(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ropes")
	defer teardown()
	//
	l, r := FromString("ab"), FromString("cd")
	c := NewConcat(l, r, charset.UTF8, charset.SevenBit, true, 1, true)
	if c.CodeRange() != charset.SevenBit || c.CharacterLength() != 4 || !c.IsSingleByteOptimizable() {
		t.Errorf("expected supplied metadata to be kept")
	}
	u := NewConcat(l, FromString("ü"), charset.UTF8, charset.Unknown, true, 1, true)
	if u.CodeRange() != charset.Valid || u.IsSingleByteOptimizable() {
		t.Errorf("expected unknown code range to be derived from children, is %s", u.CodeRange())
	}
	if u.Depth() != 1 || !u.IsBalanced() {
		t.Errorf("expected supplied depth and balance flag to be kept")
	}
}

func TestToLeaf(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ropes")
	defer teardown()
	//
	r := Concat(FromString("Grü"), FromString("ße"), charset.UTF8)
	leaf := ToLeaf(r)
	if leaf.Kind() != LeafKind || leaf.String() != "Grüße" {
		t.Fatalf("expected leaf 'Grüße', have %s %q", leaf.Kind(), leaf.String())
	}
	if st, ok := leaf.stats.peek(); !ok || st.chars != 5 {
		t.Errorf("expected metadata to carry over to the leaf")
	}
	if ToLeaf(leaf) != leaf {
		t.Errorf("expected leaf to be returned unchanged")
	}
}

func TestToLeafCopiesSubstringViews(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ropes")
	defer teardown()
	//
	base := NewLeaf(make([]byte, 1<<16), charset.UTF8)
	sub := Substring(base, 100, 5)
	if &sub.Bytes()[0] != &base.Bytes()[100] {
		t.Fatalf("expected substring of a flat rope to be a view")
	}
	leaf := ToLeaf(sub)
	if leaf.ByteLength() != 5 || cap(leaf.Bytes()) >= 1024 {
		t.Errorf("expected a compact leaf of 5 bytes, have capacity %d", cap(leaf.Bytes()))
	}
	if &leaf.Bytes()[0] == &base.Bytes()[100] {
		t.Errorf("expected leaf not to share the base's buffer")
	}
}

func TestConcurrentFirstComputation(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ropes")
	defer teardown()
	//
	h := hashing.New(true)
	want := h.Bytes(0, []byte("Grüße aus Köln"))
	const workers = 16
	for round := 0; round < 20; round++ {
		left := NewLeafDeferred([]byte("Grüße "), charset.UTF8)
		r := NewConcat(left, FromString("aus Köln"), charset.UTF8, charset.Unknown, false, 1, true)
		var wg sync.WaitGroup
		start := make(chan struct{})
		bufs := make([][]byte, workers)
		ranges := make([]charset.CodeRange, workers)
		leftRanges := make([]charset.CodeRange, workers)
		hashes := make([]int64, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				<-start
				bufs[i] = r.Bytes()
				ranges[i] = r.CodeRange()
				leftRanges[i] = left.CodeRange()
				hashes[i] = r.HashCode(h)
			}(i)
		}
		close(start)
		wg.Wait()
		for i := 0; i < workers; i++ {
			if &bufs[i][0] != &bufs[0][0] || string(bufs[i]) != "Grüße aus Köln" {
				t.Fatalf("round %d: worker %d sees a different flat buffer", round, i)
			}
			if ranges[i] != charset.Valid || leftRanges[i] != charset.Valid {
				t.Fatalf("round %d: worker %d sees code ranges %s/%s", round, i, ranges[i], leftRanges[i])
			}
			if hashes[i] != want {
				t.Fatalf("round %d: worker %d sees hash %#x, expected %#x", round, i, hashes[i], want)
			}
		}
		if cached, ok := r.CachedHashCode(h); !ok || cached != want {
			t.Errorf("round %d: expected hash to be cached", round)
		}
	}
}

// sampleRopes returns ropes of every kind, nested.
func sampleRopes() []*Rope {
	abc, def := FromString("abc"), FromString("defgh")
	cat := Concat(abc, def, charset.UTF8)
	rep := Repeat(cat, 3)
	sub := Substring(rep, 4, 15)
	mixed := Concat(Concat(sub, FromString("Grüße"), charset.UTF8), Repeat(FromString("xy"), 4), charset.UTF8)
	return []*Rope{abc, cat, rep, sub, mixed, Substring(mixed, 2, 20)}
}
