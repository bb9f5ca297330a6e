package anchor

import (
	"sync"
	"sync/atomic"
)

// subscriberList is implemented by every Container[T] so that a
// Subscription can detach itself without knowing T.
type subscriberList interface {
	ID() uint64
	removeSubscription(s *Subscription) bool
}

// Subscription binds a handler to a container, a list of weakly held
// captures, and the Context of subscriptions it spawned on its last
// invocation. Once removed it never runs again.
type Subscription struct {
	id     uint64
	engine *Engine
	owner  subscriberList

	// handler is a Handler[T] for the owner's T.
	handler any

	// refs are the weak references resolved on every invocation.
	refs []WeakRef

	// keys are the registry keys of the captures, parallel to refs.
	keys []any

	// mu protects child and parent.
	mu sync.Mutex

	// child owns subscriptions created during the last invocation.
	child *Context

	// parent is the Context this subscription was registered into.
	parent *Context

	removed atomic.Bool
}

func newSubscription(e *Engine, owner subscriberList, handler any, captures []Capture) *Subscription {
	s := &Subscription{
		id:      nextID(),
		engine:  e,
		owner:   owner,
		handler: handler,
		refs:    make([]WeakRef, len(captures)),
		keys:    make([]any, len(captures)),
		child:   NewContext(),
	}
	for i, c := range captures {
		s.refs[i] = c.Weak()
		s.keys[i] = c.Key()
	}
	return s
}

// ID returns the unique identifier for this subscription.
func (s *Subscription) ID() uint64 {
	return s.id
}

// Removed reports whether the subscription has been removed.
func (s *Subscription) Removed() bool {
	return s.removed.Load()
}

// Context returns the Context holding the subscriptions created by the most
// recent invocation.
func (s *Subscription) Context() *Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.child
}

// Unsubscribe removes the subscription from its container and disposes
// every subscription it spawned. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.teardown(RemovedExplicit)
}

// resolve dereferences every capture. It returns false if any capture is
// gone.
func (s *Subscription) resolve() ([]any, bool) {
	captures := make([]any, len(s.refs))
	for i, ref := range s.refs {
		v, ok := ref.Resolve()
		if !ok {
			return nil, false
		}
		captures[i] = v
	}
	return captures, true
}

// beginInvocation disposes the previous child Context and installs a fresh
// one. It returns nil if the subscription was removed meanwhile.
func (s *Subscription) beginInvocation() *Context {
	fresh := NewContext()

	s.mu.Lock()
	old := s.child
	s.child = fresh
	s.mu.Unlock()

	old.Dispose()

	if s.removed.Load() {
		fresh.Dispose()
		return nil
	}
	return fresh
}

// teardown removes s for reason. It returns false if s was already removed.
func (s *Subscription) teardown(reason RemoveReason) bool {
	if s.removed.Swap(true) {
		return false
	}

	s.owner.removeSubscription(s)

	s.mu.Lock()
	child := s.child
	parent := s.parent
	s.parent = nil
	s.mu.Unlock()

	if parent != nil {
		parent.remove(s)
	}
	child.Dispose()

	if len(s.keys) > 0 {
		s.engine.registry.forget(s)
	}
	s.engine.subscriptionRemoved(s, reason)
	return true
}
