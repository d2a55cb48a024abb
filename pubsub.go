package fixedqueue

// Publisher broadcasts values to a fixed number of subscribers.
//
// Each subscriber owns a Ring allocated with the publisher; subscribing leases
// one of them through a Table slot that frees itself when the last borrow of
// it is released. Delivery is best effort: a subscriber whose ring is full
// misses the value and the publisher is never told.
type Publisher[T any] struct {
	subs  []subscriber[T]
	free  *indexPool
	table *Table[*subscriber[T]]
	clone func(T) T
}

// subscriber is the per-subscription queue owned by a Publisher.
type subscriber[T any] struct {
	ring *Ring[T]
	id   int
	free *indexPool
}

// Drop runs once the table slot is vacated: no Send can reach the ring any
// more, so undelivered values are dropped before the ring goes back to the pool.
func (s *subscriber[T]) Drop() {
	s.ring.Clear()
	s.free.release(s.id)
}

// Subscription is a lease on one of the publisher's subscriber queues.
// Close it to unsubscribe.
type Subscription[T any] struct {
	ref Ref[*subscriber[T]]
}

// NewPublisher creates a publisher for up to subscribers concurrent
// subscriptions, each buffering up to capacity values. Values are copied by
// assignment for each subscriber.
func NewPublisher[T any](subscribers, capacity int) *Publisher[T] {
	return NewPublisherFunc[T](subscribers, capacity, nil)
}

// NewPublisherFunc is like NewPublisher but produces each subscriber's copy
// with clone. Copies that no subscriber accepted are dropped.
func NewPublisherFunc[T any](subscribers, capacity int, clone func(T) T) *Publisher[T] {
	p := &Publisher[T]{
		subs:  make([]subscriber[T], subscribers),
		free:  newIndexPool(subscribers),
		table: NewTable[*subscriber[T]](subscribers),
		clone: clone,
	}
	for i := range p.subs {
		p.subs[i] = subscriber[T]{
			ring: NewRing[T](capacity),
			id:   i,
			free: p.free,
		}
	}
	return p
}

// Subscribe leases an empty subscriber queue. It returns false when every
// subscriber is already leased. It may also fail for a moment right after a
// Close, until the last Send holding that subscriber lets go of it.
// Safe to call concurrently with Send and other Subscribe calls.
func (p *Publisher[T]) Subscribe() (Subscription[T], bool) {
	id, ok := p.free.acquire()
	if !ok {
		return Subscription[T]{}, false
	}
	// A ring in the pool was cleared when its last lease ended.
	sub := &p.subs[id]
	i, ok := p.table.Push(sub)
	if !ok {
		p.free.release(id)
		return Subscription[T]{}, false
	}
	ref, err := p.table.Get(i)
	if err != nil {
		panic("unreached")
	}
	ref.RemoveOnRelease()
	return Subscription[T]{ref: ref}, true
}

// Send delivers a copy of v to every live subscriber.
// Subscribers whose queue is full silently miss it.
// Safe to call concurrently from many goroutines.
func (p *Publisher[T]) Send(v T) {
	var pending T
	var hasPending bool
	for _, sub := range p.table.All() {
		val := pending
		if !hasPending {
			val = p.copy(v)
		}
		if (*sub).ring.Push(val) {
			hasPending = false
		} else {
			pending, hasPending = val, true
		}
	}
	if hasPending && p.clone != nil {
		drop(pending)
	}
}

func (p *Publisher[T]) copy(v T) T {
	if p.clone == nil {
		return v
	}
	return p.clone(v)
}

// Subscribers returns a snapshot of the number of live subscriptions.
func (p *Publisher[T]) Subscribers() int {
	return p.table.Len()
}

// TryRecv removes the oldest value delivered to this subscription.
// It returns false on an empty queue or a closed subscription.
func (s *Subscription[T]) TryRecv() (T, bool) {
	sub := s.ref.Value()
	if sub == nil {
		var zero T
		return zero, false
	}
	return (*sub).ring.Pop()
}

// Len returns a snapshot of the number of undelivered values.
func (s *Subscription[T]) Len() int {
	sub := s.ref.Value()
	if sub == nil {
		return 0
	}
	return (*sub).ring.Len()
}

// Close ends the subscription. Once no Send holds the queue any more, its
// undelivered values are dropped and the queue is recycled.
// Close is idempotent.
func (s *Subscription[T]) Close() {
	s.ref.Release()
}
