package anchor

import (
	"fmt"
	"sync"
	"time"
)

// Handler is called when a container's value is written.
//
// captures holds the resolved capture objects in registration order. ctx is
// a fresh Context owning anything the handler registers; it is disposed
// before the next invocation. next is the value being written and current is
// the value held before the write.
type Handler[T any] func(captures []any, ctx *Context, next, current T)

// Container is a reactive value cell. Every write notifies every live
// subscription, in registration order, even when the value is unchanged.
type Container[T any] struct {
	id     uint64
	engine *Engine

	// value is the current value.
	value T

	// mu protects value.
	mu sync.RWMutex

	// subs are the live subscriptions in registration order.
	subs []*Subscription

	// subMu protects subs. It is never held while a handler runs.
	subMu sync.RWMutex
}

// NewContainer creates a container holding initial. A nil engine selects
// Default().
func NewContainer[T any](e *Engine, initial T) *Container[T] {
	if e == nil {
		e = Default()
	}
	return &Container[T]{
		id:     nextID(),
		engine: e,
		value:  initial,
	}
}

// ID returns the unique identifier for this container.
func (c *Container[T]) ID() uint64 {
	return c.id
}

// Engine returns the engine this container belongs to.
func (c *Container[T]) Engine() *Engine {
	return c.engine
}

// Get returns the current value.
func (c *Container[T]) Get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Len returns the number of live subscriptions.
func (c *Container[T]) Len() int {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	return len(c.subs)
}

// Set runs a notification pass and then stores v.
//
// The pass visits a snapshot of the subscriber list taken before the first
// handler runs: subscriptions added during the pass wait for the next write,
// and subscriptions removed during the pass are skipped. A subscription with
// a collected capture is torn down instead of invoked. Get called from a
// handler returns the value held before this write.
//
// v is stored once the pass ends, even if a handler panicked. Handlers may
// write to any container, including this one. A nested write runs its own
// pass and stores its value before the outer pass resumes, so the outer
// write's value lands last.
func (c *Container[T]) Set(v T) {
	e := c.engine
	e.Sweep()

	prev := c.Get()
	defer func() {
		c.mu.Lock()
		c.value = v
		c.mu.Unlock()
	}()

	depth, ok := e.enterPass()
	defer e.exitPass()
	if !ok {
		e.logger.Warn("notification pass skipped",
			"code", "A004",
			"container_id", c.id,
			"depth", depth,
			"error", ErrPassDepthExceeded,
		)
		return
	}

	info := PassInfo{
		ContainerID: c.id,
		Depth:       depth,
		Start:       time.Now(),
	}

	subs := c.subSnapshot()
	info.Snapshot = len(subs)

	for _, s := range subs {
		switch c.fire(s, v, prev) {
		case fireInvoked:
			info.Invoked++
		case fireStale:
			info.Stale++
		case fireFailed:
			info.Invoked++
			info.Failed++
		}
	}

	e.passFinished(info)
}

// Update sets the value to fn applied to the current value.
func (c *Container[T]) Update(fn func(T) T) {
	c.Set(fn(c.Get()))
}

// OnChange registers h to run on every later write.
//
// The subscription is anchored by captures: the engine keeps only weak
// references to them and removes the subscription once any of them is gone.
// It is also appended to ctx, so clearing ctx removes it. ctx may be nil when
// at least one capture is given.
//
// The handler does not run at registration unless FireImmediately is given.
// A registration into a disposed Context is refused and the returned
// subscription is already removed.
func (c *Container[T]) OnChange(h Handler[T], captures []Capture, ctx *Context, opts ...SubscribeOption) *Subscription {
	if h == nil {
		panic("anchor: OnChange with nil handler")
	}

	var cfg subscribeConfig
	for _, opt := range opts {
		opt.applySubscribe(&cfg)
	}

	e := c.engine
	e.Sweep()

	s := newSubscription(e, c, h, captures)

	if ctx == nil && len(captures) == 0 {
		switch e.orphans {
		case OrphanPanic:
			panic(fmt.Errorf("%w (container %d)", ErrOrphanSubscription, c.id))
		case OrphanReject:
			e.reject(s, ErrOrphanSubscription)
			return s
		default:
			e.logger.Warn("orphan subscription registered",
				"code", "A002",
				"subscription_id", s.id,
				"container_id", c.id,
			)
		}
	}

	if ctx != nil {
		s.parent = ctx
		if !ctx.add(s) {
			s.parent = nil
			e.reject(s, ErrContextDisposed)
			return s
		}
	}

	c.subMu.Lock()
	c.subs = append(c.subs, s)
	c.subMu.Unlock()

	for i, capture := range captures {
		e.registry.add(capture, s.keys[i], s)
	}

	e.subscriptionRegistered(s)

	if cfg.fireImmediately {
		current := c.Get()
		if c.fire(s, current, current) == fireFailed {
			e.logger.Debug("immediate invocation failed", "subscription_id", s.id)
		}
	}

	return s
}

type fireResult uint8

const (
	fireSkipped fireResult = iota
	fireInvoked
	fireStale
	fireFailed
)

// fire runs a single subscription for one write.
func (c *Container[T]) fire(s *Subscription, next, current T) fireResult {
	if s.Removed() {
		return fireSkipped
	}

	captures, ok := s.resolve()
	if !ok {
		s.teardown(RemovedStale)
		return fireStale
	}

	ctx := s.beginInvocation()
	if ctx == nil {
		return fireSkipped
	}

	h := s.handler.(Handler[T])
	if herr := c.engine.invoke(s, func() { h(captures, ctx, next, current) }); herr != nil {
		return fireFailed
	}
	return fireInvoked
}

// subSnapshot copies the subscriber list.
func (c *Container[T]) subSnapshot() []*Subscription {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	subs := make([]*Subscription, len(c.subs))
	copy(subs, c.subs)
	return subs
}

// removeSubscription implements subscriberList. Order of the remaining
// subscriptions is preserved.
func (c *Container[T]) removeSubscription(s *Subscription) bool {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for i, existing := range c.subs {
		if existing == s {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			return true
		}
	}
	return false
}
