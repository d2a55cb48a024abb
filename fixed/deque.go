package fixed

import (
	"fmt"
	"iter"
)

// Deque is a double-ended circular buffer with a fixed capacity.
// All capacity cells are usable.
type Deque[T any] struct {
	buf   []T
	start int // first element
	len   int
}

// NewDeque creates an empty Deque that can hold capacity values.
func NewDeque[T any](capacity int) *Deque[T] {
	if capacity <= 0 {
		panic(fmt.Sprintf("capacity must be > 0, got %d", capacity))
	}
	return &Deque[T]{buf: make([]T, capacity)}
}

func (d *Deque[T]) wrap(i int) int {
	if i >= len(d.buf) {
		return i - len(d.buf)
	}
	return i
}

// PushBack appends v. It returns false if the Deque is full.
func (d *Deque[T]) PushBack(v T) bool {
	if d.IsFull() {
		return false
	}
	d.buf[d.wrap(d.start+d.len)] = v
	d.len++
	return true
}

// PushFront prepends v. It returns false if the Deque is full.
func (d *Deque[T]) PushFront(v T) bool {
	if d.IsFull() {
		return false
	}
	d.start = d.wrap(d.start + len(d.buf) - 1)
	d.buf[d.start] = v
	d.len++
	return true
}

func (d *Deque[T]) PopFront() (T, bool) {
	var zero T
	if d.len == 0 {
		return zero, false
	}
	v := d.buf[d.start]
	d.buf[d.start] = zero
	d.start = d.wrap(d.start + 1)
	d.len--
	return v, true
}

func (d *Deque[T]) PopBack() (T, bool) {
	var zero T
	if d.len == 0 {
		return zero, false
	}
	d.len--
	i := d.wrap(d.start + d.len)
	v := d.buf[i]
	d.buf[i] = zero
	return v, true
}

// Get returns the i-th value from the front.
func (d *Deque[T]) Get(i int) (T, bool) {
	if i < 0 || i >= d.len {
		var zero T
		return zero, false
	}
	return d.buf[d.wrap(d.start+i)], true
}

// At is Get that panics on an out of range index.
func (d *Deque[T]) At(i int) T {
	v, ok := d.Get(i)
	if !ok {
		panic(fmt.Sprintf("deque index %d out of range [0, %d)", i, d.len))
	}
	return v
}

// Slices returns the contents in order as two runs of the underlying storage.
func (d *Deque[T]) Slices() ([]T, []T) {
	end := d.start + d.len
	if end <= len(d.buf) {
		return d.buf[d.start:end], nil
	}
	return d.buf[d.start:], d.buf[:end-len(d.buf)]
}

func (d *Deque[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := 0; i < d.len; i++ {
			if !yield(i, d.buf[d.wrap(d.start+i)]) {
				return
			}
		}
	}
}

func (d *Deque[T]) Clear() {
	clear(d.buf)
	d.start = 0
	d.len = 0
}

func (d *Deque[T]) Len() int      { return d.len }
func (d *Deque[T]) Cap() int      { return len(d.buf) }
func (d *Deque[T]) IsEmpty() bool { return d.len == 0 }
func (d *Deque[T]) IsFull() bool  { return d.len == len(d.buf) }
