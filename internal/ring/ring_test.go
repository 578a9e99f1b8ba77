package ring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuffer_FillsThenOverwritesOldest(t *testing.T) {
	b := New[int](3)
	assert.Zero(t, b.Len())
	assert.Empty(t, b.Snapshot())

	b.Push(1)
	b.Push(2)
	assert.Equal(t, []int{1, 2}, b.Snapshot())

	b.Push(3)
	b.Push(4)
	b.Push(5)
	assert.Equal(t, 3, b.Len())
	assert.Equal(t, 3, b.Cap())
	assert.Equal(t, []int{3, 4, 5}, b.Snapshot())
}

func TestBuffer_EachModifiesInPlace(t *testing.T) {
	b := New[int](2)
	b.Push(1)
	b.Push(2)
	b.Push(3)

	b.Each(func(v *int) { *v *= 10 })
	assert.Equal(t, []int{20, 30}, b.Snapshot())
}

func TestBuffer_SnapshotIsACopy(t *testing.T) {
	b := New[string](2)
	b.Push("a")
	snap := b.Snapshot()
	snap[0] = "z"
	assert.Equal(t, []string{"a"}, b.Snapshot())
}

func TestBuffer_Reset(t *testing.T) {
	b := New[int](2)
	b.Push(1)
	b.Push(2)
	b.Push(3)
	b.Reset()
	assert.Zero(t, b.Len())

	b.Push(7)
	assert.Equal(t, []int{7}, b.Snapshot())
}

func TestSince(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	items := []time.Time{base, base.Add(time.Minute), base.Add(2 * time.Minute)}

	got := Since(items, base.Add(time.Minute), func(t time.Time) time.Time { return t })
	assert.Equal(t, items[1:], got)

	got[0] = base
	assert.Equal(t, base.Add(time.Minute), items[1], "Since must not alias its input")
}
