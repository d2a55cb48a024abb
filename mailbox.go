package fixedqueue

import (
	"fmt"
	"math"
	"sync/atomic"
)

// State is the observable state of a Mailbox.
// Values from StateFull upwards mean "holds a value"; StateFull+k means k
// read-only borrows are outstanding.
type State uint32

const (
	StateEmpty State = iota
	StateWriting
	StateReading
	StateFull
)

// MaxBorrows is the default limit of simultaneous borrows of one mailbox.
const MaxBorrows = math.MaxUint32 - uint32(StateFull)

// Borrows returns the number of outstanding borrows, or -1 if s holds no value.
func (s State) Borrows() int {
	if s < StateFull {
		return -1
	}
	return int(s - StateFull)
}

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateWriting:
		return "writing"
	case StateReading:
		return "reading"
	case StateFull:
		return "full"
	}
	return fmt.Sprintf("full+%d", s.Borrows())
}

// Mailbox is a concurrent optional value: one cell, one state word.
// The zero value is an empty mailbox ready to use.
type Mailbox[T any] struct {
	state           atomic.Uint32
	removeOnRelease atomic.Bool
	limit           uint32 // simultaneous borrows; 0 means MaxBorrows
	val             T
}

// Push stores v if the mailbox is empty. It returns false otherwise.
func (m *Mailbox[T]) Push(v T) bool {
	if !m.state.CompareAndSwap(uint32(StateEmpty), uint32(StateWriting)) {
		return false
	}
	m.val = v
	m.state.Store(uint32(StateFull))
	return true
}

// Take moves the value out. It fails while the mailbox is empty, being
// written, or borrowed.
func (m *Mailbox[T]) Take() (T, bool) {
	var zero T
	if !m.state.CompareAndSwap(uint32(StateFull), uint32(StateReading)) {
		return zero, false
	}
	v := m.val
	m.val = zero
	m.removeOnRelease.Store(false)
	m.state.Store(uint32(StateEmpty))
	return v, true
}

// Borrow grants shared read-only access to the stored value.
// On failure the error is a *StateError carrying the state that refused it.
func (m *Mailbox[T]) Borrow() (Ref[T], error) {
	limit := m.limit
	if limit == 0 {
		limit = MaxBorrows
	}
	for {
		s := State(m.state.Load())
		if s < StateFull || uint32(s.Borrows()) >= limit {
			return Ref[T]{}, &StateError{State: s}
		}
		if m.state.CompareAndSwap(uint32(s), uint32(s+1)) {
			return Ref[T]{m: m}, nil
		}
	}
}

func (m *Mailbox[T]) State() State {
	return State(m.state.Load())
}

func (m *Mailbox[T]) IsSome() bool {
	return m.State() >= StateFull
}

func (m *Mailbox[T]) IsNone() bool {
	return m.State() == StateEmpty
}

// Clear drops the stored value, if any.
// IMPORTANT: the caller must have exclusive access to the mailbox.
func (m *Mailbox[T]) Clear() {
	var zero T
	if m.IsSome() {
		drop(m.val)
	}
	m.val = zero
	m.removeOnRelease.Store(false)
	m.state.Store(uint32(StateEmpty))
}

func (m *Mailbox[T]) release() {
	for {
		s := State(m.state.Load())
		if s <= StateFull {
			panic("fixedqueue: release of a mailbox that is not borrowed")
		}
		if s == StateFull+1 && m.removeOnRelease.Load() {
			if !m.state.CompareAndSwap(uint32(s), uint32(StateReading)) {
				continue
			}
			var zero T
			v := m.val
			m.val = zero
			m.removeOnRelease.Store(false)
			m.state.Store(uint32(StateEmpty))
			drop(v)
			return
		}
		if m.state.CompareAndSwap(uint32(s), uint32(s-1)) {
			return
		}
	}
}

// Ref is an outstanding borrow of a Mailbox value.
type Ref[T any] struct {
	m *Mailbox[T]
}

// Value points at the borrowed value. It must be treated as read-only and not
// retained after Release. Value returns nil on a released Ref.
func (r *Ref[T]) Value() *T {
	if r.m == nil {
		return nil
	}
	return &r.m.val
}

// RemoveOnRelease asks the mailbox to drop its value and become empty when the
// last outstanding borrow is released.
func (r *Ref[T]) RemoveOnRelease() {
	if r.m != nil {
		r.m.removeOnRelease.Store(true)
	}
}

// Release ends the borrow. Releasing twice is a no-op.
func (r *Ref[T]) Release() {
	if m := r.m; m != nil {
		r.m = nil
		m.release()
	}
}
