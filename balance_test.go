package ropes

import (
	"strings"
	"testing"

	"github.com/npillmayer/ropes/charset"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestFibonacciBound(t *testing.T) {
	if fibonacci[2] != 1 || fibonacci[10] != 55 {
		t.Errorf("unexpected Fibonacci numbers %d, %d", fibonacci[2], fibonacci[10])
	}
	if !isBalanced(2, 1) || isBalanced(4, 3) || !isBalanced(5, 3) {
		t.Errorf("unexpected balance decisions")
	}
	if isBalanced(1<<40, 200) {
		t.Errorf("expected excessive depth to be unbalanced")
	}
}

func TestLeftDeepChainIsUnbalanced(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ropes")
	defer teardown()
	//
	r := chain(100, "x")
	if r.Depth() != 99 || r.IsBalanced() {
		t.Errorf("expected unbalanced rope of depth 99, have depth %d", r.Depth())
	}
}

func TestRebalance(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ropes")
	defer teardown()
	//
	defer func(threshold int) { CoalesceThreshold = threshold }(CoalesceThreshold)
	CoalesceThreshold = 0
	r := chain(100, "x")
	b := Rebalance(r)
	if !b.IsBalanced() || b.Depth() != 7 {
		t.Errorf("expected balanced rope of depth 7, have depth %d", b.Depth())
	}
	if b.String() != strings.Repeat("x", 100) || b.CharacterLength() != 100 {
		t.Errorf("rebalancing changed the content")
	}
	if Rebalance(b) != b {
		t.Errorf("expected balanced rope to be returned unchanged")
	}
}

func TestRebalanceCoalescesShortFragments(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ropes")
	defer teardown()
	//
	r := chain(100, "ab")
	b := Rebalance(r)
	if b.Kind() != LeafKind || b.String() != strings.Repeat("ab", 100) {
		t.Errorf("expected a single leaf, have %s of depth %d", b.Kind(), b.Depth())
	}
}

func TestRebalanceReclassifiesMergedFragments(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ropes")
	defer teardown()
	//
	r := FromString("a")
	for _, s := range []string{"\xc3", "\xbc", "b"} {
		r = Concat(r, NewLeaf([]byte(s), charset.UTF8), charset.UTF8)
	}
	if r.IsBalanced() || r.CodeRange() != charset.Broken {
		t.Fatalf("expected unbalanced broken rope, have %s", r.CodeRange())
	}
	b := Rebalance(r)
	if b.String() != "aüb" || b.CodeRange() != charset.Valid || b.CharacterLength() != 3 {
		t.Errorf("expected valid 'aüb' of 3 characters, have %q %s/%d", b.String(), b.CodeRange(), b.CharacterLength())
	}
}

func TestRebalanceKeepsSubstringsAndRepeats(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ropes")
	defer teardown()
	//
	defer func(threshold int) { CoalesceThreshold = threshold }(CoalesceThreshold)
	CoalesceThreshold = 0
	deep := chain(40, "yz")
	r := Concat(Concat(Repeat(deep, 2), Substring(deep, 3, 50), charset.UTF8), chain(30, "q"), charset.UTF8)
	want := r.String()
	b := Rebalance(r)
	if b.String() != want {
		t.Errorf("rebalancing changed the content")
	}
	for _, atom := range collectAtoms(b, nil) {
		if base := atom.Base(); base != nil && !base.IsBalanced() {
			t.Errorf("expected %s to be re-rooted on a balanced base", atom.Kind())
		}
	}
}

func TestRebalanceFlattensShortDeepFragments(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ropes")
	defer teardown()
	//
	base := Repeat(FromString("x"), 1e9)
	for i := 1; i < 40; i++ {
		base = Concat(base, Repeat(FromString("x"), 1e9), charset.UTF8)
	}
	if base.Depth() != 40 || !base.IsBalanced() {
		t.Fatalf("expected balanced base of depth 40, have depth %d", base.Depth())
	}
	sub := Substring(base, base.Left().ByteLength()-300, 600)
	if sub.Kind() != SubstringKind || sub.Depth() != 41 {
		t.Fatalf("expected substring of depth 41, have %s of depth %d", sub.Kind(), sub.Depth())
	}
	a, b := strings.Repeat("a", 600), strings.Repeat("b", 600)
	r := Concat(FromString(a), Concat(sub, FromString(b), charset.UTF8), charset.UTF8)
	if r.IsBalanced() {
		t.Fatalf("expected unbalanced rope of depth %d", r.Depth())
	}
	want := a + strings.Repeat("x", 600) + b
	rb := Rebalance(r)
	if !rb.IsBalanced() || rb.Depth() > 2 {
		t.Errorf("expected balanced rope of depth 2, have depth %d", rb.Depth())
	}
	if rb.String() != want {
		t.Errorf("rebalancing changed the content")
	}
	appended := Append(r, FromString("!"), charset.UTF8)
	if !appended.IsBalanced() || appended.Depth() > rebalanceDepth {
		t.Errorf("expected append to yield a balanced rope, have depth %d", appended.Depth())
	}
	if appended.String() != want+"!" {
		t.Errorf("appending produced wrong content")
	}
}

func TestAppendBoundsDepth(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ropes")
	defer teardown()
	//
	r := Empty(charset.UTF8)
	var sb strings.Builder
	for i := 0; i < 2000; i++ {
		s := string(rune('a' + i%26))
		r = Append(r, FromString(s), charset.UTF8)
		sb.WriteString(s)
	}
	if r.Depth() > rebalanceDepth+1 {
		t.Errorf("expected depth to stay bounded, is %d", r.Depth())
	}
	if r.String() != sb.String() {
		t.Errorf("appending produced wrong content")
	}
}

func TestJoin(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ropes")
	defer teardown()
	//
	parts := []*Rope{FromString("a"), Empty(charset.UTF8), FromString("b"), FromString("c"), FromString("d")}
	r := Join(charset.UTF8, parts...)
	if r.String() != "abcd" || r.Depth() != 2 || !r.IsBalanced() {
		t.Errorf("expected balanced 'abcd' of depth 2, have %q of depth %d", r.String(), r.Depth())
	}
	if !Join(charset.UTF8).IsEmpty() {
		t.Errorf("expected empty join to be empty")
	}
}

// chain builds a left-deep concatenation of n leaves holding s.
func chain(n int, s string) *Rope {
	r := FromString(s)
	for i := 1; i < n; i++ {
		r = Concat(r, FromString(s), charset.UTF8)
	}
	return r
}
