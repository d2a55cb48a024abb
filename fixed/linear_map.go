package fixed

import "iter"

type entry[K comparable, V any] struct {
	key K
	val V
}

// LinearMap is a small map backed by a Vec of entries and searched linearly.
// Removal swaps the last entry into the hole, so iteration order is not stable.
type LinearMap[K comparable, V any] struct {
	vec *Vec[entry[K, V]]
}

func NewLinearMap[K comparable, V any](capacity int) *LinearMap[K, V] {
	return &LinearMap[K, V]{vec: NewVec[entry[K, V]](capacity)}
}

func (m *LinearMap[K, V]) index(k K) int {
	for i, e := range m.vec.Slice() {
		if e.key == k {
			return i
		}
	}
	return -1
}

func (m *LinearMap[K, V]) Get(k K) (V, bool) {
	if i := m.index(k); i >= 0 {
		return m.vec.buf[i].val, true
	}
	var zero V
	return zero, false
}

func (m *LinearMap[K, V]) ContainsKey(k K) bool {
	return m.index(k) >= 0
}

// Insert sets k to v. An existing value is replaced and returned with
// replaced set. ok is false if k is new and the map is full.
func (m *LinearMap[K, V]) Insert(k K, v V) (old V, replaced bool, ok bool) {
	if i := m.index(k); i >= 0 {
		old = m.vec.buf[i].val
		m.vec.buf[i].val = v
		return old, true, true
	}
	return old, false, m.vec.Push(entry[K, V]{key: k, val: v})
}

func (m *LinearMap[K, V]) Remove(k K) (V, bool) {
	if i := m.index(k); i >= 0 {
		return m.vec.SwapRemove(i).val, true
	}
	var zero V
	return zero, false
}

func (m *LinearMap[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, e := range m.vec.Slice() {
			if !yield(e.key, e.val) {
				return
			}
		}
	}
}

func (m *LinearMap[K, V]) Clear()        { m.vec.Clear() }
func (m *LinearMap[K, V]) Len() int      { return m.vec.Len() }
func (m *LinearMap[K, V]) Cap() int      { return m.vec.Cap() }
func (m *LinearMap[K, V]) IsEmpty() bool { return m.vec.IsEmpty() }
func (m *LinearMap[K, V]) IsFull() bool  { return m.vec.IsFull() }
