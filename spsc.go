package fixedqueue

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// SPSC is a bounded single-producer/single-consumer channel.
//
// At most one Sender and one Receiver may be outstanding at any time, which is
// what lets the data path run without per-slot state: only the sender writes
// end, only the receiver writes start, and the atomic cursor stores publish the
// cell contents. All capacity cells are usable; cursors wrap at the largest
// multiple of capacity so a distance of 0 (empty) and capacity (full) never alias.
type SPSC[T any] struct {
	_     cpu.CacheLinePad
	cur   cursor
	buf   []T
	_     cpu.CacheLinePad
	end   atomic.Uint64 // written by the sender only
	_     cpu.CacheLinePad
	start atomic.Uint64 // written by the receiver only
	_     cpu.CacheLinePad

	// Role words: even means free, odd means taken. Every take and every
	// close bumps the word, so a handle only works while the word still
	// equals the value it was issued with.
	sender   atomic.Uint64
	receiver atomic.Uint64
}

// Sender is the producing end of an SPSC channel.
// The zero Sender is closed. A handle must not be used concurrently with its
// own Close.
type Sender[T any] struct {
	ch    *SPSC[T]
	token uint64
}

// Receiver is the consuming end of an SPSC channel.
// The zero Receiver is closed.
type Receiver[T any] struct {
	ch    *SPSC[T]
	token uint64
}

// NewSPSC creates a channel holding up to capacity values.
func NewSPSC[T any](capacity int) *SPSC[T] {
	return &SPSC[T]{
		cur: newPlainCursor(capacity),
		buf: make([]T, capacity),
	}
}

// takeRole moves a free role word to taken and returns the new value.
func takeRole(role *atomic.Uint64) (uint64, bool) {
	for {
		w := role.Load()
		if w&1 == 1 {
			return 0, false
		}
		if role.CompareAndSwap(w, w+1) {
			return w + 1, true
		}
	}
}

// TakeSender hands out the sender, or returns false if it is already taken.
func (ch *SPSC[T]) TakeSender() (Sender[T], bool) {
	token, ok := takeRole(&ch.sender)
	if !ok {
		return Sender[T]{}, false
	}
	return Sender[T]{ch: ch, token: token}, true
}

// TakeReceiver hands out the receiver, or returns false if it is already taken.
func (ch *SPSC[T]) TakeReceiver() (Receiver[T], bool) {
	token, ok := takeRole(&ch.receiver)
	if !ok {
		return Receiver[T]{}, false
	}
	return Receiver[T]{ch: ch, token: token}, true
}

func (s Sender[T]) live() bool {
	return s.ch != nil && s.ch.sender.Load() == s.token
}

// Send appends v. It returns false if the channel is full or the sender was
// closed. A closed sender stays dead after the role is taken again.
func (s Sender[T]) Send(v T) bool {
	if !s.live() {
		return false
	}
	ch := s.ch
	end := ch.end.Load()
	if ch.cur.distance(ch.start.Load(), end) == ch.cur.capacity {
		return false
	}
	ch.buf[ch.cur.index(end)] = v
	ch.end.Store(ch.cur.next(end))
	return true
}

// Close gives the sender role back to the channel so it can be taken again.
// Close is idempotent, and closing a copy of the handle closes them all.
func (s Sender[T]) Close() {
	if s.ch != nil {
		s.ch.sender.CompareAndSwap(s.token, s.token+1)
	}
}

func (r Receiver[T]) live() bool {
	return r.ch != nil && r.ch.receiver.Load() == r.token
}

// TryRecv removes the oldest value. It returns (zero, false) if the channel is
// empty or the receiver was closed.
func (r Receiver[T]) TryRecv() (T, bool) {
	var zero T
	if !r.live() {
		return zero, false
	}
	ch := r.ch
	start := ch.start.Load()
	if start == ch.end.Load() {
		return zero, false
	}
	idx := ch.cur.index(start)
	v := ch.buf[idx]
	ch.buf[idx] = zero
	ch.start.Store(ch.cur.next(start))
	return v, true
}

// Close gives the receiver role back to the channel so it can be taken again.
// Close is idempotent, and closing a copy of the handle closes them all.
func (r Receiver[T]) Close() {
	if r.ch != nil {
		r.ch.receiver.CompareAndSwap(r.token, r.token+1)
	}
}

// Len returns a snapshot of the number of queued values.
func (ch *SPSC[T]) Len() int {
	start := ch.start.Load()
	return int(ch.cur.distance(start, ch.end.Load()))
}

func (ch *SPSC[T]) IsEmpty() bool {
	return ch.Len() == 0
}

func (ch *SPSC[T]) IsFull() bool {
	return ch.Len() == int(ch.cur.capacity)
}

// Cap returns the fixed channel capacity.
func (ch *SPSC[T]) Cap() int {
	return int(ch.cur.capacity)
}

// Clear drops every queued value and rewinds the cursors.
// IMPORTANT: no Send or TryRecv may run concurrently.
func (ch *SPSC[T]) Clear() {
	var zero T
	start, end := ch.start.Load(), ch.end.Load()
	for pos := start; pos != end; pos = ch.cur.next(pos) {
		idx := ch.cur.index(pos)
		drop(ch.buf[idx])
		ch.buf[idx] = zero
	}
	ch.start.Store(0)
	ch.end.Store(0)
}
