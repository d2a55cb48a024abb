package fixedqueue

import "sync/atomic"

// Every concurrent structure in this package guards its cells with one state word.
// The word packs the slot lifecycle with the generation (lap) the cell belongs to,
// so a producer that arrives at a physical slot with a stale cursor can tell
// "free for my lap" from "still holding the previous lap".
//
// Lifecycle of one cell: Empty(g) -> Writing(g) -> Full(g) -> Reading(g) -> Empty(g+1)

// Lifecycle is the ownership phase of a slot.
type Lifecycle uint32

const (
	Empty Lifecycle = iota
	Writing
	Full
	Reading
)

func (l Lifecycle) String() string {
	switch l {
	case Empty:
		return "empty"
	case Writing:
		return "writing"
	case Full:
		return "full"
	case Reading:
		return "reading"
	}
	return "invalid"
}

const (
	generationShift = 32
	lifecycleMask   = 1<<generationShift - 1
)

// op is a decoded state word.
type op struct {
	generation uint32
	lifecycle  Lifecycle
}

func packOp(generation uint32, l Lifecycle) uint64 {
	return uint64(generation)<<generationShift | uint64(l)
}

func unpackOp(word uint64) op {
	return op{
		generation: uint32(word >> generationShift),
		lifecycle:  Lifecycle(word & lifecycleMask),
	}
}

// lapsAhead reports how many laps the slot is ahead of gen (negative: behind).
// Generations wrap, distances are always tiny.
func (o op) lapsAhead(gen uint32) int32 {
	return int32(o.generation - gen)
}

// slotState is the control word of one cell.
type slotState struct {
	word atomic.Uint64
}

func (s *slotState) load() op {
	return unpackOp(s.word.Load())
}

func (s *slotState) reset(generation uint32) {
	s.word.Store(packOp(generation, Empty))
}

// tryClaimWrite grants the caller the exclusive right to fill the cell for lap gen.
func (s *slotState) tryClaimWrite(gen uint32) bool {
	return s.word.CompareAndSwap(packOp(gen, Empty), packOp(gen, Writing))
}

// commitWrite publishes the value written after a successful tryClaimWrite.
func (s *slotState) commitWrite(gen uint32) {
	s.word.Store(packOp(gen, Full))
}

// tryClaimRead grants the caller the exclusive right to move the value out for lap gen.
func (s *slotState) tryClaimRead(gen uint32) bool {
	return s.word.CompareAndSwap(packOp(gen, Full), packOp(gen, Reading))
}

// commitRead frees the cell for the next lap.
func (s *slotState) commitRead(gen uint32) {
	s.word.Store(packOp(gen+1, Empty))
}
