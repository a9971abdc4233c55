package ropes

import "sync/atomic"

// cell is a write-once cache slot. Concurrent first computations may race;
// the first value published wins and every reader observes that value.
// This is only correct for computations which are pure functions of the
// (immutable) rope content.
type cell[T any] struct {
	p atomic.Pointer[T]
}

func (c *cell[T]) get(compute func() T) T {
	if v := c.p.Load(); v != nil {
		return *v
	}
	v := compute()
	c.p.CompareAndSwap(nil, &v)
	return *c.p.Load()
}

func (c *cell[T]) peek() (T, bool) {
	if v := c.p.Load(); v != nil {
		return *v, true
	}
	var zero T
	return zero, false
}

// set initializes the cell during construction, before the rope is shared.
func (c *cell[T]) set(v T) {
	c.p.Store(&v)
}
