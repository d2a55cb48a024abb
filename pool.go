package fixedqueue

import "runtime"

// indexPool hands out the integers [0, n) to at most one owner at a time.
// It is a free list kept in a Ring, so acquire and release never lock.
type indexPool struct {
	free *Ring[int]
}

func newIndexPool(n int) *indexPool {
	p := &indexPool{free: NewRing[int](n)}
	for i := 0; i < n; i++ {
		if !p.free.Push(i) {
			panic("unreached")
		}
	}
	return p
}

// acquire takes a free index. It returns false if every index is owned.
// May be called concurrently from many goroutines.
func (p *indexPool) acquire() (int, bool) {
	return p.free.Pop()
}

// release returns an index obtained from acquire.
// May be called concurrently from many goroutines.
// Note: release for one index should be called once per acquire.
func (p *indexPool) release(i int) {
	// The ring always has room for an index that is out; Push can only fail
	// while a concurrent acquire is still moving the oldest entry out of the
	// target slot.
	for !p.free.Push(i) {
		runtime.Gosched()
	}
}

func (p *indexPool) available() int {
	return p.free.Len()
}
