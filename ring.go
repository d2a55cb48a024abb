package fixedqueue

import (
	"runtime"
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// Ring is a bounded multi-producer/multi-consumer queue.
//
// Each cell carries a state word tagged with the lap (generation) it belongs to,
// so any capacity works (no power-of-two masking) and all capacity cells are usable.
// Producers and consumers race for a logical position by CAS on the cell, not on
// the cursor; the cursor is advanced afterwards on a best-effort basis and any
// goroutine that finds it stale helps move it forward.
type Ring[T any] struct {
	_      cpu.CacheLinePad
	cur    cursor
	states []slotState
	buf    []T
	_      cpu.CacheLinePad
	end    atomic.Uint64 // next logical position to produce
	_      cpu.CacheLinePad
	start  atomic.Uint64 // next logical position to consume
	_      cpu.CacheLinePad
	stats  ringCounters
}

const goschedEvery = 64 // reduce runtime.Gosched() frequency in hot loops

type ringCounters struct {
	pushAttempts atomic.Uint64
	pushFull     atomic.Uint64
	pushRetries  atomic.Uint64
	popAttempts  atomic.Uint64
	popEmpty     atomic.Uint64
	popRetries   atomic.Uint64
}

// RingStats is a snapshot of a ring's counters.
type RingStats struct {
	PushAttempts uint64
	PushFull     uint64
	// PushRetries counts lost claims and stale end cursors.
	PushRetries uint64

	PopAttempts uint64
	PopEmpty    uint64
	PopRetries  uint64
}

// NewRing creates a ring holding up to capacity values.
func NewRing[T any](capacity int) *Ring[T] {
	r := &Ring[T]{
		cur:    newCursor(capacity),
		states: make([]slotState, capacity),
		buf:    make([]T, capacity),
	}
	return r
}

// Push appends v. It returns false if the ring is full; the ring keeps no
// reference to a rejected value.
// Push may also report full while a consumer is still moving the oldest value
// out of the slot v would go to.
// Safe to call concurrently from many goroutines.
func (r *Ring[T]) Push(v T) bool {
	r.stats.pushAttempts.Add(1)
	var spins uint32
	for {
		start := r.start.Load()
		end := r.end.Load()
		if r.cur.distance(start, end) >= r.cur.capacity {
			r.stats.pushFull.Add(1)
			return false
		}

		gen := r.cur.generation(end)
		idx := r.cur.index(end)
		s := &r.states[idx]
		if s.tryClaimWrite(gen) {
			r.advance(&r.end, end)
			r.buf[idx] = v
			s.commitWrite(gen)
			return true
		}

		o := s.load()
		switch d := o.lapsAhead(gen); {
		case d < 0:
			// The previous lap still owns the slot.
			r.stats.pushFull.Add(1)
			return false
		case d == 0 && o.lifecycle == Empty:
			// Lost the claim race, the winner moves end.
		default:
			// Position already produced: end is stale.
			r.advance(&r.end, end)
		}

		r.stats.pushRetries.Add(1)
		spins++
		if spins%goschedEvery == 0 {
			runtime.Gosched()
		}
	}
}

// Pop removes the oldest value. It returns (zero, false) if the ring is empty
// or the producer of the next position has not committed yet.
// Safe to call concurrently from many goroutines.
func (r *Ring[T]) Pop() (T, bool) {
	var zero T
	var spins uint32
	r.stats.popAttempts.Add(1)
	for {
		start := r.start.Load()
		end := r.end.Load()
		if start == end {
			r.stats.popEmpty.Add(1)
			return zero, false
		}

		gen := r.cur.generation(start)
		idx := r.cur.index(start)
		s := &r.states[idx]
		if s.tryClaimRead(gen) {
			r.advance(&r.start, start)
			v := r.buf[idx]
			r.buf[idx] = zero
			s.commitRead(gen)
			return v, true
		}

		o := s.load()
		switch d := o.lapsAhead(gen); {
		case d < 0, d == 0 && (o.lifecycle == Empty || o.lifecycle == Writing):
			// Producer of this position has not committed yet.
			r.stats.popEmpty.Add(1)
			return zero, false
		case d == 0 && o.lifecycle == Full:
			// Lost the claim race, the winner moves start.
		default:
			// Position already consumed: start is stale.
			r.advance(&r.start, start)
		}

		r.stats.popRetries.Add(1)
		spins++
		if spins%goschedEvery == 0 {
			runtime.Gosched()
		}
	}
}

func (r *Ring[T]) advance(c *atomic.Uint64, old uint64) {
	c.CompareAndSwap(old, r.cur.next(old))
}

// Len returns a snapshot of the number of queued values.
// Under contention it is a bound, not an exact count.
func (r *Ring[T]) Len() int {
	start := r.start.Load()
	end := r.end.Load()
	n := r.cur.distance(start, end)
	if n > r.cur.capacity {
		n = r.cur.capacity
	}
	return int(n)
}

func (r *Ring[T]) IsEmpty() bool {
	return r.Len() == 0
}

func (r *Ring[T]) IsFull() bool {
	return r.Len() == int(r.cur.capacity)
}

// Cap returns the fixed ring capacity.
func (r *Ring[T]) Cap() int {
	return int(r.cur.capacity)
}

// Clear drops every queued value and rewinds the ring.
// IMPORTANT: the caller must have exclusive access to the ring.
func (r *Ring[T]) Clear() {
	var zero T
	for i := range r.states {
		if r.states[i].load().lifecycle == Full {
			drop(r.buf[i])
		}
		r.buf[i] = zero
		r.states[i].reset(0)
	}
	r.start.Store(0)
	r.end.Store(0)
}

// Stats retrieves the current counters of the ring.
func (r *Ring[T]) Stats() RingStats {
	return RingStats{
		PushAttempts: r.stats.pushAttempts.Load(),
		PushFull:     r.stats.pushFull.Load(),
		PushRetries:  r.stats.pushRetries.Load(),
		PopAttempts:  r.stats.popAttempts.Load(),
		PopEmpty:     r.stats.popEmpty.Load(),
		PopRetries:   r.stats.popRetries.Load(),
	}
}
