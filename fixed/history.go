package fixed

import "fmt"

// History remembers the last capacity inserted values, overwriting the oldest.
// It serves as a dedup window: Contains reports whether a value was seen recently.
type History[T comparable] struct {
	logs []T
	last int // next cell to overwrite
	full bool
}

func NewHistory[T comparable](capacity int) *History[T] {
	if capacity <= 0 {
		panic(fmt.Sprintf("capacity must be > 0, got %d", capacity))
	}
	return &History[T]{logs: make([]T, capacity)}
}

func (h *History[T]) Insert(v T) {
	h.logs[h.last] = v
	h.last++
	if h.last == len(h.logs) {
		h.last = 0
		h.full = true
	}
}

func (h *History[T]) Contains(v T) bool {
	for _, x := range h.Slice() {
		if x == v {
			return true
		}
	}
	return false
}

// Slice exposes the remembered values in storage order (not insertion order
// once the history has wrapped).
func (h *History[T]) Slice() []T {
	if h.full {
		return h.logs
	}
	return h.logs[:h.last]
}

func (h *History[T]) Len() int { return len(h.Slice()) }
func (h *History[T]) Cap() int { return len(h.logs) }
