// Package arena provides a generation-checked object arena whose handles can
// anchor subscriptions.
//
// Objects in an arena are released explicitly rather than by the garbage
// collector. A Handle keeps working as an anchor.Capture: it resolves while
// its slot still holds the object it was issued for, and the engine is told
// the moment the object is released. A slot reused by a later Alloc carries a
// new generation, so old handles never resolve to the new occupant.
//
//	nodes := arena.New[Node]()
//	h := nodes.Alloc(Node{Tag: "div"})
//	color.OnChange(apply, []anchor.Capture{h}, nil)
//	nodes.Release(h) // subscription is torn down on the next sweep
package arena

import (
	"sync"
	"sync/atomic"
)

var arenaIDCounter atomic.Uint64

// Arena stores values of type T in reusable slots.
type Arena[T any] struct {
	id uint64

	mu    sync.Mutex
	slots []slot[T]
	free  []uint32
	live  int
}

type slot[T any] struct {
	value    T
	gen      uint32
	occupied bool

	// watchers run once when the current occupant is released.
	watchers []func()
}

// New returns an empty arena.
func New[T any]() *Arena[T] {
	return &Arena[T]{id: arenaIDCounter.Add(1)}
}

// ID returns the arena's unique identifier.
func (a *Arena[T]) ID() uint64 {
	return a.id
}

// Alloc stores v and returns a handle to it. Freed slots are reused first.
func (a *Arena[T]) Alloc(v T) Handle {
	a.mu.Lock()
	defer a.mu.Unlock()

	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		idx = uint32(len(a.slots))
		a.slots = append(a.slots, slot[T]{})
	}

	s := &a.slots[idx]
	s.value = v
	s.occupied = true
	a.live++

	return Handle{owner: a, index: idx, gen: s.gen}
}

// Get returns the value h refers to, or false if h was released or belongs
// to another arena.
func (a *Arena[T]) Get(h Handle) (T, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, ok := a.lookup(h)
	if !ok {
		var zero T
		return zero, false
	}
	return s.value, true
}

// Set replaces the value h refers to. It returns false if h is stale.
func (a *Arena[T]) Set(h Handle, v T) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, ok := a.lookup(h)
	if !ok {
		return false
	}
	s.value = v
	return true
}

// Release frees the slot h refers to and runs every unreachability callback
// registered through h. It returns false if h was already released.
func (a *Arena[T]) Release(h Handle) bool {
	a.mu.Lock()
	s, ok := a.lookup(h)
	if !ok {
		a.mu.Unlock()
		return false
	}

	var zero T
	s.value = zero
	s.occupied = false
	s.gen++
	watchers := s.watchers
	s.watchers = nil
	a.free = append(a.free, h.index)
	a.live--
	a.mu.Unlock()

	for _, fn := range watchers {
		fn()
	}
	return true
}

// Len returns the number of live objects.
func (a *Arena[T]) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.live
}

// Watchers returns the number of release callbacks pending on h, or 0 if h
// is stale.
func (a *Arena[T]) Watchers(h Handle) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, ok := a.lookup(h)
	if !ok {
		return 0
	}
	return len(s.watchers)
}

// lookup must be called with a.mu held.
func (a *Arena[T]) lookup(h Handle) (*slot[T], bool) {
	if h.owner != a || int(h.index) >= len(a.slots) {
		return nil, false
	}
	s := &a.slots[h.index]
	if !s.occupied || s.gen != h.gen {
		return nil, false
	}
	return s, true
}

// resolve implements handleOwner.
func (a *Arena[T]) resolve(h Handle) (any, bool) {
	v, ok := a.Get(h)
	if !ok {
		return nil, false
	}
	return v, true
}

// watch implements handleOwner. fn runs immediately if h is already stale.
func (a *Arena[T]) watch(h Handle, fn func()) {
	a.mu.Lock()
	s, ok := a.lookup(h)
	if ok {
		s.watchers = append(s.watchers, fn)
	}
	a.mu.Unlock()

	if !ok {
		fn()
	}
}

func (a *Arena[T]) arenaID() uint64 {
	return a.id
}
