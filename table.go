package fixedqueue

import (
	"fmt"
	"iter"
)

// Table is a fixed array of mailboxes used as a concurrent unordered bag.
// Push and Pop pick the first suitable slot in ascending index order; a value
// keeps its index only while it stays in the table.
type Table[T any] struct {
	slots []Mailbox[T]
}

// NewTable creates a table with n slots.
func NewTable[T any](n int) *Table[T] {
	if n <= 0 {
		panic(fmt.Sprintf("table size must be > 0, got %d", n))
	}
	return &Table[T]{slots: make([]Mailbox[T], n)}
}

// Push stores v in the first empty slot and returns its index.
// It returns (-1, false) if no slot accepted the value.
func (t *Table[T]) Push(v T) (int, bool) {
	for i := range t.slots {
		if t.slots[i].Push(v) {
			return i, true
		}
	}
	return -1, false
}

// Pop takes the value out of the first slot that holds an unborrowed value.
func (t *Table[T]) Pop() (T, bool) {
	for i := range t.slots {
		if v, ok := t.slots[i].Take(); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Get borrows the value at index i. It panics if i is out of range.
func (t *Table[T]) Get(i int) (Ref[T], error) {
	if i < 0 || i >= len(t.slots) {
		panic(fmt.Sprintf("table index %d out of range [0, %d)", i, len(t.slots)))
	}
	return t.slots[i].Borrow()
}

// All borrows every live value in ascending index order for the duration of
// the yield call. Slots that cannot be borrowed at that moment are skipped.
func (t *Table[T]) All() iter.Seq2[int, *T] {
	return func(yield func(int, *T) bool) {
		for i := range t.slots {
			if !t.visit(i, yield) {
				return
			}
		}
	}
}

func (t *Table[T]) visit(i int, yield func(int, *T) bool) bool {
	ref, err := t.slots[i].Borrow()
	if err != nil {
		return true
	}
	defer ref.Release()
	return yield(i, ref.Value())
}

// Len returns a snapshot of the number of occupied slots.
func (t *Table[T]) Len() int {
	n := 0
	for i := range t.slots {
		if t.slots[i].IsSome() {
			n++
		}
	}
	return n
}

func (t *Table[T]) IsEmpty() bool {
	for i := range t.slots {
		if !t.slots[i].IsNone() {
			return false
		}
	}
	return true
}

func (t *Table[T]) IsFull() bool {
	for i := range t.slots {
		if !t.slots[i].IsSome() {
			return false
		}
	}
	return true
}

func (t *Table[T]) Cap() int {
	return len(t.slots)
}

// Clear drops every stored value.
// IMPORTANT: the caller must have exclusive access to the table.
func (t *Table[T]) Clear() {
	for i := range t.slots {
		t.slots[i].Clear()
	}
}
