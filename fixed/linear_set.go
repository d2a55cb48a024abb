package fixed

import "iter"

// LinearSet is a small set backed by a Vec and searched linearly.
type LinearSet[T comparable] struct {
	vec *Vec[T]
}

func NewLinearSet[T comparable](capacity int) *LinearSet[T] {
	return &LinearSet[T]{vec: NewVec[T](capacity)}
}

// Index returns the position of v, or -1.
func (s *LinearSet[T]) Index(v T) int {
	for i, x := range s.vec.Slice() {
		if x == v {
			return i
		}
	}
	return -1
}

// Get returns the stored element equal to v.
func (s *LinearSet[T]) Get(v T) (T, bool) {
	if i := s.Index(v); i >= 0 {
		return s.vec.buf[i], true
	}
	var zero T
	return zero, false
}

func (s *LinearSet[T]) Contains(v T) bool {
	return s.Index(v) >= 0
}

// Insert adds v. inserted is false if v was already present; ok is false if
// v is new and the set is full.
func (s *LinearSet[T]) Insert(v T) (inserted bool, ok bool) {
	if s.Contains(v) {
		return false, true
	}
	if !s.vec.Push(v) {
		return false, false
	}
	return true, true
}

func (s *LinearSet[T]) Remove(v T) bool {
	i := s.Index(v)
	if i < 0 {
		return false
	}
	s.vec.SwapRemove(i)
	return true
}

func (s *LinearSet[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, x := range s.vec.Slice() {
			if !yield(x) {
				return
			}
		}
	}
}

func (s *LinearSet[T]) Clear()        { s.vec.Clear() }
func (s *LinearSet[T]) Len() int      { return s.vec.Len() }
func (s *LinearSet[T]) Cap() int      { return s.vec.Cap() }
func (s *LinearSet[T]) IsEmpty() bool { return s.vec.IsEmpty() }
func (s *LinearSet[T]) IsFull() bool  { return s.vec.IsFull() }
