package anchor

import (
	"runtime"
	"weak"
)

// WeakRef is a reference that does not keep its target alive.
type WeakRef interface {
	// Resolve returns the target, or false if it is no longer reachable.
	Resolve() (any, bool)
}

// Capture is a host object whose reachability anchors a subscription.
//
// The engine never stores a Capture itself. At registration it asks for a
// WeakRef (resolved on every invocation), a comparable Key identifying the
// object without keeping it alive, and a notification for when the object
// becomes unreachable.
type Capture interface {
	Weak() WeakRef
	Key() any

	// OnUnreachable arranges for fn to be called at some later, unspecified
	// time after the object becomes unreachable. fn may never run.
	OnUnreachable(fn func())
}

// Ref returns a Capture for p backed by the runtime's weak pointers and
// cleanups. The object must be heap allocated and must not be a zero-sized
// value.
func Ref[T any](p *T) Capture {
	if p == nil {
		panic("anchor: Ref of nil pointer")
	}
	return pointerCapture[T]{p: p}
}

type pointerCapture[T any] struct {
	p *T
}

func (c pointerCapture[T]) Weak() WeakRef {
	return pointerRef[T]{wp: weak.Make(c.p)}
}

func (c pointerCapture[T]) Key() any {
	return weak.Make(c.p)
}

func (c pointerCapture[T]) OnUnreachable(fn func()) {
	runtime.AddCleanup(c.p, func(f func()) { f() }, fn)
}

type pointerRef[T any] struct {
	wp weak.Pointer[T]
}

func (r pointerRef[T]) Resolve() (any, bool) {
	p := r.wp.Value()
	if p == nil {
		return nil, false
	}
	return p, true
}
