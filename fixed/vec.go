// Package fixed provides single-goroutine containers with a capacity fixed at
// construction. None of them allocates after New.
package fixed

import (
	"fmt"
	"iter"
)

// Vec is a contiguous array with a fixed capacity.
type Vec[T any] struct {
	buf []T
	len int
}

// NewVec creates an empty Vec that can hold capacity values.
func NewVec[T any](capacity int) *Vec[T] {
	if capacity <= 0 {
		panic(fmt.Sprintf("capacity must be > 0, got %d", capacity))
	}
	return &Vec[T]{buf: make([]T, capacity)}
}

// Push appends v. It returns false if the Vec is full.
func (v *Vec[T]) Push(x T) bool {
	if v.len == len(v.buf) {
		return false
	}
	v.buf[v.len] = x
	v.len++
	return true
}

// Extend appends every value of xs, or none of them if they do not all fit.
func (v *Vec[T]) Extend(xs ...T) bool {
	if len(xs) > len(v.buf)-v.len {
		return false
	}
	v.len += copy(v.buf[v.len:], xs)
	return true
}

// Pop removes the last value.
func (v *Vec[T]) Pop() (T, bool) {
	var zero T
	if v.len == 0 {
		return zero, false
	}
	v.len--
	x := v.buf[v.len]
	v.buf[v.len] = zero
	return x, true
}

// SwapRemove removes the value at i and moves the last value into its place.
// It panics if i is out of range.
func (v *Vec[T]) SwapRemove(i int) T {
	if i < 0 || i >= v.len {
		panic(fmt.Sprintf("swap remove index %d out of range [0, %d)", i, v.len))
	}
	var zero T
	x := v.buf[i]
	last := v.len - 1
	v.buf[i] = v.buf[last]
	v.buf[last] = zero
	v.len = last
	return x
}

// Truncate keeps the first n values. It does nothing if n >= Len.
func (v *Vec[T]) Truncate(n int) {
	if n < 0 || n >= v.len {
		return
	}
	clear(v.buf[n:v.len])
	v.len = n
}

func (v *Vec[T]) Clear() {
	v.Truncate(0)
}

// At returns the value at i. It panics if i is out of range.
func (v *Vec[T]) At(i int) T {
	return v.Slice()[i]
}

// Slice exposes the stored values. It aliases the Vec storage.
func (v *Vec[T]) Slice() []T {
	return v.buf[:v.len:v.len]
}

func (v *Vec[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := 0; i < v.len; i++ {
			if !yield(i, v.buf[i]) {
				return
			}
		}
	}
}

func (v *Vec[T]) Len() int      { return v.len }
func (v *Vec[T]) Cap() int      { return len(v.buf) }
func (v *Vec[T]) IsEmpty() bool { return v.len == 0 }
func (v *Vec[T]) IsFull() bool  { return v.len == len(v.buf) }
