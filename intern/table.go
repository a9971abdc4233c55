package intern

import (
	"errors"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/npillmayer/ropes"
	"github.com/npillmayer/ropes/hashing"
)

// ErrCapacity is returned for a table capacity < 1.
var ErrCapacity = errors.New("intern table capacity must be positive")

// Table is a bounded set of canonical ropes. It is safe for concurrent use.
type Table struct {
	mu      sync.Mutex
	hashing *hashing.Hashing
	buckets *lru.Cache[int64, []*ropes.Rope] // content hash → ropes
	count   int
}

// New creates an intern table hashing with h and holding at most capacity
// distinct hash codes.
func New(h *hashing.Hashing, capacity int) (*Table, error) {
	if h == nil {
		return nil, fmt.Errorf("intern table without hashing: %w", ropes.ErrIllegalArguments)
	}
	if capacity < 1 {
		return nil, fmt.Errorf("%w: %d", ErrCapacity, capacity)
	}
	t := &Table{hashing: h}
	cache, err := lru.NewWithEvict(capacity, t.evicted)
	if err != nil {
		return nil, err
	}
	t.buckets = cache
	return t, nil
}

// evicted is called by the LRU, with t.mu held.
func (t *Table) evicted(hash int64, bucket []*ropes.Rope) {
	t.count -= len(bucket)
	tracer().Debugf("intern: evicted %d rope(s) with hash %#x", len(bucket), hash)
}

// Intern returns the canonical rope for r's content and encoding. If the
// table holds none yet, r is flattened into a leaf of its own, which becomes
// the canonical rope and is returned.
func (t *Table) Intern(r *ropes.Rope) *ropes.Rope {
	hash := r.HashCode(t.hashing)
	t.mu.Lock()
	defer t.mu.Unlock()
	bucket, _ := t.buckets.Get(hash)
	for _, c := range bucket {
		if c.Encoding() == r.Encoding() && ropes.Equal(c, r) {
			return c
		}
	}
	leaf := ropes.ToLeaf(r)
	t.buckets.Add(hash, append(bucket[:len(bucket):len(bucket)], leaf))
	t.count++
	return leaf
}

// Lookup returns the canonical rope for r's content and encoding, if there
// is one. Unlike Intern, Lookup never adds to the table.
func (t *Table) Lookup(r *ropes.Rope) (*ropes.Rope, bool) {
	hash := r.HashCode(t.hashing)
	t.mu.Lock()
	defer t.mu.Unlock()
	bucket, _ := t.buckets.Get(hash)
	for _, c := range bucket {
		if c.Encoding() == r.Encoding() && ropes.Equal(c, r) {
			return c, true
		}
	}
	return nil, false
}

// Len returns the number of canonical ropes in the table.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}

// Purge drops all canonical ropes.
func (t *Table) Purge() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buckets.Purge()
	t.count = 0
}
