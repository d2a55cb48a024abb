package fixedqueue

import (
	"fmt"
	"math"
)

// MaxCapacity is the largest capacity accepted by the ring constructors.
// It keeps capacity<<32 inside uint64 so cursor wrap stays a multiple of
// every generation lap.
const MaxCapacity = 1 << 31

// cursor maps a logical position to (slot index, generation).
// Positions are not wrapped at 2^64 but at the largest multiple of
// capacity*2^32, so index and generation stay continuous across the wrap.
type cursor struct {
	capacity uint64
	wrap     uint64
}

func checkCapacity(capacity int) uint64 {
	if capacity <= 0 || capacity > MaxCapacity {
		panic(fmt.Sprintf("capacity must be in [1, %d], got %d", MaxCapacity, capacity))
	}
	return uint64(capacity)
}

func newCursor(capacity int) cursor {
	c := checkCapacity(capacity)
	lap := c << generationShift
	return cursor{
		capacity: c,
		wrap:     math.MaxUint64 / lap * lap,
	}
}

// newPlainCursor wraps at the largest multiple of capacity; used where no
// generation is derived from the position.
func newPlainCursor(capacity int) cursor {
	c := checkCapacity(capacity)
	return cursor{
		capacity: c,
		wrap:     math.MaxUint64 / c * c,
	}
}

func (c cursor) index(pos uint64) uint64 {
	return pos % c.capacity
}

func (c cursor) generation(pos uint64) uint32 {
	return uint32(pos / c.capacity)
}

func (c cursor) next(pos uint64) uint64 {
	if pos == c.wrap-1 {
		return 0
	}
	return pos + 1
}

// distance is the number of positions from start up to end.
func (c cursor) distance(start, end uint64) uint64 {
	if end >= start {
		return end - start
	}
	return c.wrap - start + end
}
