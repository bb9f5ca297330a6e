package anchor

import "sync"

// Context is an ordered set of subscriptions owned by a scope.
//
// Clearing a Context unsubscribes every member and, recursively, everything
// those members spawned. A disposed Context additionally refuses new
// registrations, which is how the engine catches continuations that resume
// after their scope has ended.
//
// The zero value is not usable; create contexts with NewContext.
type Context struct {
	mu       sync.Mutex
	subs     []*Subscription
	disposed bool
}

// NewContext returns an empty Context.
func NewContext() *Context {
	return &Context{}
}

// Len returns the number of subscriptions currently owned.
func (c *Context) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

// IsDisposed reports whether Dispose has been called.
func (c *Context) IsDisposed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disposed
}

// add appends s. It returns false if the Context is disposed.
func (c *Context) add(s *Subscription) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return false
	}
	c.subs = append(c.subs, s)
	return true
}

// remove drops s from the member list without tearing it down.
func (c *Context) remove(s *Subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, existing := range c.subs {
		if existing == s {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			return
		}
	}
}

// Clear unsubscribes every member, recursively disposing what each member
// spawned, and leaves the Context empty and usable. Members already removed
// through another path are skipped. Clear is safe to call from inside a
// handler and safe to call repeatedly.
func (c *Context) Clear() {
	if c == nil {
		return
	}

	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	for _, s := range subs {
		s.teardown(RemovedContext)
	}
}

// Dispose clears the Context and refuses every later registration.
func (c *Context) Dispose() {
	if c == nil {
		return
	}

	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	c.mu.Unlock()

	c.Clear()
}

// disposedContext returns a Context that refuses all registrations.
func disposedContext() *Context {
	return &Context{disposed: true}
}
