package anchortest

import (
	"sync"

	"github.com/vango-dev/anchor/pkg/anchor"
)

// Object is a capture with simulated reachability. It stays reachable until
// Collect is called, regardless of what the garbage collector thinks.
type Object struct {
	Name string

	mu        sync.Mutex
	collected bool
	callbacks []func()
}

var _ anchor.Capture = (*Object)(nil)

// NewObject returns a reachable Object.
func NewObject(name string) *Object {
	return &Object{Name: name}
}

// Collect marks the object unreachable and runs every unreachability
// callback registered so far. Later calls do nothing.
func (o *Object) Collect() {
	o.mu.Lock()
	if o.collected {
		o.mu.Unlock()
		return
	}
	o.collected = true
	callbacks := o.callbacks
	o.callbacks = nil
	o.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}

// Collected reports whether Collect has been called.
func (o *Object) Collected() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.collected
}

// Watchers returns the number of pending unreachability callbacks.
func (o *Object) Watchers() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.callbacks)
}

// Weak implements anchor.Capture.
func (o *Object) Weak() anchor.WeakRef {
	return objectRef{o: o}
}

// Key implements anchor.Capture.
func (o *Object) Key() any {
	return o
}

// OnUnreachable implements anchor.Capture. If the object is already
// collected fn runs immediately.
func (o *Object) OnUnreachable(fn func()) {
	o.mu.Lock()
	if !o.collected {
		o.callbacks = append(o.callbacks, fn)
		o.mu.Unlock()
		return
	}
	o.mu.Unlock()
	fn()
}

// String returns the object's name.
func (o *Object) String() string {
	return o.Name
}

type objectRef struct {
	o *Object
}

func (r objectRef) Resolve() (any, bool) {
	if r.o.Collected() {
		return nil, false
	}
	return r.o, true
}
