package anchor

import (
	"sync"
	"weak"
)

// registry maps capture keys to the subscriptions they anchor.
//
// Entries hold weak pointers to subscriptions, so a subscription whose
// container has been collected disappears on its own. When the host reports a
// capture unreachable its key is queued; drain resolves every subscription
// still registered under the key and tears it down.
type registry struct {
	mu      sync.Mutex
	entries map[any][]weak.Pointer[Subscription]
	pending []any
}

func newRegistry() *registry {
	return &registry{
		entries: make(map[any][]weak.Pointer[Subscription]),
	}
}

// add records that key anchors s. The unreachability hook is installed the
// first time a key enters the registry; the entry then stays until drain
// removes it, so each captured object is hooked exactly once.
func (r *registry) add(c Capture, key any, s *Subscription) {
	r.mu.Lock()
	list, ok := r.entries[key]
	r.entries[key] = append(list, weak.Make(s))
	r.mu.Unlock()

	if !ok {
		c.OnUnreachable(func() { r.enqueue(key) })
	}
}

// forget removes s from every key it was registered under. Emptied entries
// are kept so a later add under the same key does not hook the object again.
func (r *registry) forget(s *Subscription) {
	wp := weak.Make(s)

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, key := range s.keys {
		list, ok := r.entries[key]
		if !ok {
			continue
		}
		for i, existing := range list {
			if existing == wp {
				list = append(list[:i], list[i+1:]...)
				break
			}
		}
		r.entries[key] = list
	}
}

// enqueue may be called from any goroutine, including the runtime's cleanup
// goroutine.
func (r *registry) enqueue(key any) {
	r.mu.Lock()
	r.pending = append(r.pending, key)
	r.mu.Unlock()
}

// drain returns the live subscriptions anchored by every queued key and
// removes those keys from the registry.
func (r *registry) drain() []*Subscription {
	r.mu.Lock()
	if len(r.pending) == 0 {
		r.mu.Unlock()
		return nil
	}
	keys := r.pending
	r.pending = nil

	var subs []*Subscription
	for _, key := range keys {
		for _, wp := range r.entries[key] {
			if s := wp.Value(); s != nil {
				subs = append(subs, s)
			}
		}
		delete(r.entries, key)
	}
	r.mu.Unlock()

	return subs
}

// size returns the number of capture keys anchoring at least one
// subscription.
func (r *registry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, list := range r.entries {
		if len(list) > 0 {
			n++
		}
	}
	return n
}

// hooked returns the number of capture keys whose unreachability hook is
// installed and not yet drained.
func (r *registry) hooked() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
