package fixedqueue

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func recvAll[T any](s *Subscription[T]) []T {
	var out []T
	for {
		v, ok := s.TryRecv()
		if !ok {
			return out
		}
		out = append(out, v)
	}
}

func expectRecv(t *testing.T, s *Subscription[int], want ...int) {
	t.Helper()
	for _, w := range want {
		v, ok := s.TryRecv()
		if !ok || v != w {
			t.Fatalf("expected %d, got %d (ok=%v)", w, v, ok)
		}
	}
}

// A full subscriber misses values; a closed one stops receiving.
func TestPublisherFanOut(t *testing.T) {
	p := NewPublisher[int](2, 3)
	s1, ok := p.Subscribe()
	if !ok {
		t.Fatal("first subscribe failed")
	}
	s2, ok := p.Subscribe()
	if !ok {
		t.Fatal("second subscribe failed")
	}
	if _, ok := p.Subscribe(); ok {
		t.Fatal("third subscribe should fail")
	}
	if p.Subscribers() != 2 {
		t.Fatalf("expected 2 subscribers, got %d", p.Subscribers())
	}

	for _, v := range []int{1, 2, 3, 4} {
		p.Send(v)
	}
	if s1.Len() != 3 || s2.Len() != 3 {
		t.Fatalf("expected both queues full, got %d and %d", s1.Len(), s2.Len())
	}

	expectRecv(t, &s1, 1)
	s2.Close()
	if _, ok := s2.TryRecv(); ok {
		t.Fatal("closed subscription must not receive")
	}
	if s2.Len() != 0 {
		t.Fatalf("closed subscription must report 0, got %d", s2.Len())
	}
	if p.Subscribers() != 1 {
		t.Fatalf("expected 1 subscriber after close, got %d", p.Subscribers())
	}

	p.Send(5)
	expectRecv(t, &s1, 2, 3, 5)
	if _, ok := s1.TryRecv(); ok {
		t.Fatal("s1 should be drained")
	}
}

// A subscriber slot is recycled with an empty queue.
func TestPublisherResubscribe(t *testing.T) {
	p := NewPublisher[int](1, 4)
	s, _ := p.Subscribe()
	p.Send(1)
	p.Send(2)
	s.Close()
	s.Close()

	s, ok := p.Subscribe()
	if !ok {
		t.Fatal("subscribe after close failed")
	}
	if s.Len() != 0 {
		t.Fatalf("recycled queue should be empty, len=%d", s.Len())
	}
	p.Send(3)
	expectRecv(t, &s, 3)
}

func TestPublisherNoSubscribers(t *testing.T) {
	p := NewPublisher[int](2, 2)
	p.Send(1)
	s, _ := p.Subscribe()
	if _, ok := s.TryRecv(); ok {
		t.Fatal("values sent before subscribing must not be delivered")
	}
}

// With a clone func every subscriber gets its own copy and a copy nobody
// accepted is dropped.
func TestPublisherClone(t *testing.T) {
	var drops, clones atomic.Int32
	p := NewPublisherFunc[*counted](2, 1, func(c *counted) *counted {
		clones.Add(1)
		return &counted{v: c.v, drops: c.drops}
	})
	s1, _ := p.Subscribe()
	s2, _ := p.Subscribe()

	src := &counted{v: 1, drops: &drops}
	p.Send(src)
	a, _ := s1.TryRecv()
	b, _ := s2.TryRecv()
	if a == b || a == src || a.v != 1 || b.v != 1 {
		t.Fatal("each subscriber must receive its own copy")
	}
	if clones.Load() != 2 {
		t.Fatalf("expected 2 clones, got %d", clones.Load())
	}

	p.Send(&counted{v: 2, drops: &drops})
	// Both queues are full; the rejected copy is reused and then dropped once.
	p.Send(&counted{v: 3, drops: &drops})
	if clones.Load() != 5 {
		t.Fatalf("expected 5 clones, got %d", clones.Load())
	}
	if drops.Load() != 1 {
		t.Fatalf("expected the unaccepted copy to be dropped once, got %d", drops.Load())
	}

	// Closing a subscription drops the copies still queued for it.
	s1.Close()
	if drops.Load() != 2 {
		t.Fatalf("expected queued copy to be dropped on close, got %d", drops.Load())
	}
	s1, _ = p.Subscribe()
	if drops.Load() != 2 || s1.Len() != 0 {
		t.Fatalf("resubscribing must not drop again, got %d drops, len=%d", drops.Load(), s1.Len())
	}
	if got := recvAll(&s2); len(got) != 1 || got[0].v != 2 {
		t.Fatalf("unexpected s2 values %v", got)
	}
}

func cloneCounted(c *counted) *counted {
	return &counted{v: c.v, drops: c.drops}
}

// Undelivered copies are dropped when the subscription closes, even if
// nobody subscribes again.
func TestPublisherCloseDropsUndelivered(t *testing.T) {
	var drops atomic.Int32
	p := NewPublisherFunc[*counted](1, 4, cloneCounted)
	s, _ := p.Subscribe()
	p.Send(&counted{v: 1, drops: &drops})
	p.Send(&counted{v: 2, drops: &drops})

	s.Close()
	if drops.Load() != 2 {
		t.Fatalf("expected 2 drops after close, got %d", drops.Load())
	}
	if p.Subscribers() != 0 {
		t.Fatalf("expected no subscribers, got %d", p.Subscribers())
	}
	s.Close()
	if drops.Load() != 2 {
		t.Fatalf("second close must not drop again, got %d", drops.Load())
	}
}

// A Send that still holds the subscriber when it closes delays the drop
// until it lets go.
func TestPublisherCloseDuringSend(t *testing.T) {
	var drops atomic.Int32
	p := NewPublisherFunc[*counted](1, 4, cloneCounted)
	s, _ := p.Subscribe()
	p.Send(&counted{v: 1, drops: &drops})

	inflight, err := p.table.Get(0)
	if err != nil {
		t.Fatalf("borrow failed: %v", err)
	}
	s.Close()
	if drops.Load() != 0 {
		t.Fatal("queue dropped while a Send still holds it")
	}
	if _, ok := p.Subscribe(); ok {
		t.Fatal("queue must not be leased again while a Send holds it")
	}

	inflight.Release()
	if drops.Load() != 1 {
		t.Fatalf("expected 1 drop once the Send let go, got %d", drops.Load())
	}
	if _, ok := p.Subscribe(); !ok {
		t.Fatal("subscribe failed after the queue was recycled")
	}
}

// Senders, a steady subscriber and churning subscribers run together.
// The steady subscriber sees each sender's values in order.
func TestPublisherConcurrent(t *testing.T) {
	const (
		senders = 4
		N       = 20_000
		churn   = 4
	)
	p := NewPublisher[int](churn+1, 64)
	steady, ok := p.Subscribe()
	if !ok {
		t.Fatal("subscribe failed")
	}

	var stop atomic.Bool
	var wg sync.WaitGroup
	wg.Add(senders)
	for s := 0; s < senders; s++ {
		go func(id int) {
			defer wg.Done()
			for i := 0; i < N; i++ {
				p.Send(id*N + i)
				if i%64 == 0 {
					runtime.Gosched()
				}
			}
		}(s)
	}

	var churners sync.WaitGroup
	churners.Add(churn)
	for c := 0; c < churn; c++ {
		go func() {
			defer churners.Done()
			for !stop.Load() {
				sub, ok := p.Subscribe()
				if !ok {
					runtime.Gosched()
					continue
				}
				sub.TryRecv()
				sub.Close()
			}
		}()
	}

	last := make([]int, senders)
	for i := range last {
		last[i] = -1
	}
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	check := func(v int) {
		id, n := v/N, v%N
		if n <= last[id] {
			t.Fatalf("sender %d: got %d after %d", id, n, last[id])
		}
		last[id] = n
	}

	deadline := time.After(30 * time.Second)
loop:
	for {
		if v, ok := steady.TryRecv(); ok {
			check(v)
			continue
		}
		select {
		case <-done:
			break loop
		case <-deadline:
			t.Fatal("timeout waiting for senders")
		default:
			runtime.Gosched()
		}
	}
	for _, v := range recvAll(&steady) {
		check(v)
	}
	stop.Store(true)
	churners.Wait()

	steady.Close()
	for i := 0; i <= churn; i++ {
		if _, ok := p.Subscribe(); !ok {
			t.Fatalf("subscribe %d failed after every subscription closed", i)
		}
	}
}
