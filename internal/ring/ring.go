// Package ring provides a fixed-capacity buffer that overwrites its oldest
// item when full.
package ring

import "time"

// Buffer holds at most its capacity of items, oldest first. It is not safe
// for concurrent use; owners guard it.
type Buffer[T any] struct {
	items []T
	next  int
	full  bool
}

// New returns a buffer holding at most capacity items. capacity must be
// positive.
func New[T any](capacity int) *Buffer[T] {
	return &Buffer[T]{items: make([]T, capacity)}
}

// Push stores v, overwriting the oldest item when the buffer is full.
func (b *Buffer[T]) Push(v T) {
	b.items[b.next] = v
	b.next = (b.next + 1) % len(b.items)
	if b.next == 0 {
		b.full = true
	}
}

// Len returns the number of stored items.
func (b *Buffer[T]) Len() int {
	if b.full {
		return len(b.items)
	}
	return b.next
}

// Cap returns the buffer's capacity.
func (b *Buffer[T]) Cap() int { return len(b.items) }

// Each visits stored items oldest first. fn may modify the item in place.
func (b *Buffer[T]) Each(fn func(v *T)) {
	n := b.Len()
	start := 0
	if b.full {
		start = b.next
	}
	for k := range n {
		fn(&b.items[(start+k)%len(b.items)])
	}
}

// Snapshot returns a copy of the items, oldest first.
func (b *Buffer[T]) Snapshot() []T {
	out := make([]T, 0, b.Len())
	b.Each(func(v *T) { out = append(out, *v) })
	return out
}

// Reset empties the buffer.
func (b *Buffer[T]) Reset() {
	clear(b.items)
	b.next = 0
	b.full = false
}

// Since keeps the items whose timestamp is at or after cutoff.
func Since[T any](items []T, cutoff time.Time, ts func(T) time.Time) []T {
	out := items[:0:0]
	for _, it := range items {
		if !ts(it).Before(cutoff) {
			out = append(out, it)
		}
	}
	return out
}
