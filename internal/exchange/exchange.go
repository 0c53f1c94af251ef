// Package exchange hands immutable values from one goroutine to others
// without locks.
//
// A [Cell] holds the most recently published value. Publishing replaces
// the pointer atomically; readers always observe either the old or the new
// value in full, never a partially written one. Values must not be mutated
// after they are published.
//
// A [Tracker] tells a reader whether the value it loads differs from the
// one it saw last. It only holds a weak reference, so superseded values are
// reclaimed by the garbage collector as soon as no reader uses them.
package exchange

import (
	"sync/atomic"
	"weak"
)

type Cell[T any] struct {
	p atomic.Pointer[T]
}

// NewCell returns a cell holding v, which may be nil.
func NewCell[T any](v *T) *Cell[T] {
	c := &Cell[T]{}
	c.p.Store(v)
	return c
}

// Publish makes v the current value. Ownership of v passes to the cell.
func (c *Cell[T]) Publish(v *T) {
	c.p.Store(v)
}

// Load returns the current value or nil if nothing was published.
func (c *Cell[T]) Load() *T {
	return c.p.Load()
}

// Swap publishes v and returns the value it replaced.
func (c *Cell[T]) Swap(v *T) *T {
	return c.p.Swap(v)
}

// Tracker detects changes of identity between successive values observed by
// a single reader. It is not safe for concurrent use.
type Tracker[T any] struct {
	last weak.Pointer[T]
}

// Observe records v and reports whether it differs from the previously
// observed value. A nil v is never reported as a change.
func (t *Tracker[T]) Observe(v *T) bool {
	if v == nil {
		return false
	}
	if t.last.Value() == v {
		return false
	}
	t.last = weak.Make(v)
	return true
}

// Reset forgets the last observed value so the next Observe reports a change.
func (t *Tracker[T]) Reset() {
	t.last = weak.Pointer[T]{}
}
