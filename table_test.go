package fixedqueue

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
)

// Push and Pop use the lowest suitable index.
func TestTableBase(t *testing.T) {
	tbl := NewTable[int](3)
	for i, v := range []int{1, 2, 3} {
		idx, ok := tbl.Push(v)
		if !ok || idx != i {
			t.Fatalf("push %d: expected index %d, got %d (ok=%v)", v, i, idx, ok)
		}
	}
	if idx, ok := tbl.Push(4); ok || idx != -1 {
		t.Fatalf("push into full table should fail, got index %d", idx)
	}
	if !tbl.IsFull() || tbl.Len() != 3 {
		t.Fatalf("expected full table, len=%d", tbl.Len())
	}
	if v, ok := tbl.Pop(); !ok || v != 1 {
		t.Fatalf("expected 1, got %d (ok=%v)", v, ok)
	}
	if idx, ok := tbl.Push(5); !ok || idx != 0 {
		t.Fatalf("expected 5 at index 0, got %d (ok=%v)", idx, ok)
	}
	for _, want := range []int{5, 2, 3} {
		if v, ok := tbl.Pop(); !ok || v != want {
			t.Fatalf("expected %d, got %d (ok=%v)", want, v, ok)
		}
	}
	if _, ok := tbl.Pop(); ok {
		t.Fatal("pop from empty table should fail")
	}
	if !tbl.IsEmpty() {
		t.Fatal("table should be empty")
	}
	if _, ok := tbl.Push(6); !ok {
		t.Fatal("push 6 failed")
	}
}

func TestNewTablePanicsOnBadSize(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for zero size")
		}
	}()
	NewTable[int](0)
}

func TestTableGet(t *testing.T) {
	tbl := NewTable[string](2)
	tbl.Push("a")

	ref, err := tbl.Get(0)
	if err != nil {
		t.Fatalf("get 0 failed: %v", err)
	}
	if *ref.Value() != "a" {
		t.Fatalf("expected a, got %q", *ref.Value())
	}
	// A borrowed slot is neither popped nor overwritten.
	if _, ok := tbl.Pop(); ok {
		t.Fatal("pop must skip borrowed slots")
	}
	if idx, _ := tbl.Push("b"); idx != 1 {
		t.Fatalf("expected b at index 1, got %d", idx)
	}
	ref.Release()

	ref, err = tbl.Get(1)
	if err != nil {
		t.Fatalf("get 1 failed: %v", err)
	}
	ref.Release()
	tbl.Pop()
	tbl.Pop()
	if _, err := tbl.Get(0); err == nil {
		t.Fatal("get on empty slot should fail")
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for out of range index")
		}
	}()
	tbl.Get(2)
}

func TestTableAll(t *testing.T) {
	tbl := NewTable[int](5)
	for _, v := range []int{10, 20, 30, 40} {
		tbl.Push(v)
	}
	tbl.Pop()
	tbl.Pop()

	var idxs, vals []int
	for i, v := range tbl.All() {
		idxs = append(idxs, i)
		vals = append(vals, *v)
		if tbl.slots[i].State().Borrows() != 1 {
			t.Fatalf("slot %d should be borrowed during the visit", i)
		}
	}
	if len(idxs) != 2 || idxs[0] != 2 || idxs[1] != 3 || vals[0] != 30 || vals[1] != 40 {
		t.Fatalf("unexpected visit: indexes %v values %v", idxs, vals)
	}
	for i := range tbl.slots {
		if tbl.slots[i].State() > StateFull {
			t.Fatalf("slot %d still borrowed after iteration", i)
		}
	}

	// Early break releases the current slot too.
	for range tbl.All() {
		break
	}
	if v, ok := tbl.Pop(); !ok || v != 30 {
		t.Fatalf("expected 30, got %d (ok=%v)", v, ok)
	}
}

func TestTableClear(t *testing.T) {
	tbl := NewTable[*counted](4)
	var drops atomic.Int32
	for i := 0; i < 3; i++ {
		tbl.Push(&counted{v: i, drops: &drops})
	}
	tbl.Clear()
	if drops.Load() != 3 || !tbl.IsEmpty() {
		t.Fatalf("expected 3 drops and an empty table, got %d drops, len=%d", drops.Load(), tbl.Len())
	}
}

// Concurrent pushers and poppers: every value is popped exactly once.
func TestTableConcurrent(t *testing.T) {
	const (
		capacity = 100
		N        = 1000
	)
	tbl := NewTable[int](capacity)
	seen := make([]int32, N)

	var wg sync.WaitGroup
	wg.Add(2 * N)
	for i := 0; i < N; i++ {
		go func(v int) {
			defer wg.Done()
			for {
				if _, ok := tbl.Push(v); ok {
					return
				}
				runtime.Gosched()
			}
		}(i)
		go func() {
			defer wg.Done()
			for {
				if v, ok := tbl.Pop(); ok {
					atomic.AddInt32(&seen[v], 1)
					return
				}
				runtime.Gosched()
			}
		}()
	}
	wg.Wait()

	for i := 0; i < N; i++ {
		if seen[i] != 1 {
			t.Fatalf("value %d popped %d times (expected 1)", i, seen[i])
		}
	}
	if !tbl.IsEmpty() {
		t.Fatalf("expected empty table, len=%d", tbl.Len())
	}
}
