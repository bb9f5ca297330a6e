package anchor

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// Engine owns the capture registry and the policies shared by a group of
// containers. Engines are independent of each other; containers created on
// one engine never interact with another engine's registry.
type Engine struct {
	id uint64

	registry *registry

	logger   *slog.Logger
	observer Observer
	orphans  OrphanPolicy
	maxDepth int
	onError  func(*HandlerError)

	// depth is the current notification pass nesting.
	depth atomic.Int32

	registered    atomic.Uint64
	removed       [RemovedContext + 1]atomic.Uint64
	rejected      atomic.Uint64
	handlerErrors atomic.Uint64
	passes        atomic.Uint64
}

// NewEngine creates an engine configured by opts.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		id:       nextID(),
		registry: newRegistry(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "anchor", "engine_id", e.id)
	return e
}

var (
	defaultEngine     *Engine
	defaultEngineOnce sync.Once
)

// Default returns the process engine used when a nil *Engine is passed to
// NewContainer. It is created on first use with default options.
func Default() *Engine {
	defaultEngineOnce.Do(func() {
		defaultEngine = NewEngine()
	})
	return defaultEngine
}

// ID returns the unique identifier for this engine.
func (e *Engine) ID() uint64 {
	return e.id
}

// Logger returns the engine's logger.
func (e *Engine) Logger() *slog.Logger {
	return e.logger
}

// Sweep tears down every subscription anchored by a capture the host has
// reported unreachable since the last sweep. It returns the number of
// subscriptions removed.
//
// Set and OnChange sweep on entry, so calling Sweep directly is only needed
// by hosts that want to release memory while no writes happen.
func (e *Engine) Sweep() int {
	subs := e.registry.drain()
	n := 0
	for _, s := range subs {
		if s.teardown(RemovedCollected) {
			n++
		}
	}
	return n
}

// Stats is a snapshot of engine counters.
type Stats struct {
	Registered    uint64
	Rejected      uint64
	Removed       map[RemoveReason]uint64
	HandlerErrors uint64
	Passes        uint64

	// Anchors is the number of capture keys anchoring at least one live
	// subscription.
	Anchors int
	// Hooked is the number of captured objects with an unreachability hook
	// installed. A hook stays until the object is reported unreachable.
	Hooked int
}

// Live returns the number of registered subscriptions not yet removed.
func (s Stats) Live() uint64 {
	var removed uint64
	for _, n := range s.Removed {
		removed += n
	}
	return s.Registered - removed
}

// Stats returns a snapshot of the engine counters.
func (e *Engine) Stats() Stats {
	st := Stats{
		Registered:    e.registered.Load(),
		Rejected:      e.rejected.Load(),
		Removed:       make(map[RemoveReason]uint64, len(e.removed)-1),
		HandlerErrors: e.handlerErrors.Load(),
		Passes:        e.passes.Load(),
		Anchors:       e.registry.size(),
		Hooked:        e.registry.hooked(),
	}
	for r := RemovedExplicit; r <= RemovedContext; r++ {
		st.Removed[r] = e.removed[r].Load()
	}
	return st
}

// enterPass increments the pass depth and reports whether the pass may run.
// exitPass must be called in either case.
func (e *Engine) enterPass() (int, bool) {
	d := int(e.depth.Add(1))
	if e.maxDepth > 0 && d > e.maxDepth {
		return d, false
	}
	return d, true
}

func (e *Engine) exitPass() {
	e.depth.Add(-1)
}

// invoke runs fn, recovering a panic into a HandlerError.
func (e *Engine) invoke(s *Subscription, fn func()) (herr *HandlerError) {
	defer func() {
		if r := recover(); r != nil {
			herr = &HandlerError{
				SubscriptionID: s.id,
				ContainerID:    s.owner.ID(),
				Value:          r,
				Stack:          debug.Stack(),
			}
			e.handlerFailed(herr)
		}
	}()
	fn()
	return nil
}

func (e *Engine) handlerFailed(herr *HandlerError) {
	e.handlerErrors.Add(1)
	e.logger.Error("handler panicked",
		"code", "A001",
		"subscription_id", herr.SubscriptionID,
		"container_id", herr.ContainerID,
		"panic", fmt.Sprint(herr.Value),
	)
	if e.observer != nil {
		e.observer.ObserveHandlerError(herr)
	}
	if e.onError != nil {
		e.onError(herr)
	}
}

func (e *Engine) subscriptionRegistered(s *Subscription) {
	e.registered.Add(1)
	if e.observer != nil {
		e.observer.ObserveRegistration(s.id, s.owner.ID(), len(s.refs))
	}
}

func (e *Engine) subscriptionRemoved(s *Subscription, reason RemoveReason) {
	e.removed[reason].Add(1)
	if reason == RemovedStale || reason == RemovedCollected {
		e.logger.Debug("subscription released by capture",
			"subscription_id", s.id,
			"container_id", s.owner.ID(),
			"reason", reason.String(),
		)
	}
	if e.observer != nil {
		e.observer.ObserveRemoval(s.id, s.owner.ID(), reason)
	}
}

// reject marks s removed without it ever having been registered.
func (e *Engine) reject(s *Subscription, err error) {
	s.removed.Store(true)
	e.rejected.Add(1)
	code := "A002"
	if err == ErrContextDisposed {
		code = "A003"
	}
	e.logger.Warn("subscription rejected",
		"code", code,
		"subscription_id", s.id,
		"container_id", s.owner.ID(),
		"error", err,
	)
}

func (e *Engine) passFinished(info PassInfo) {
	e.passes.Add(1)
	if e.observer != nil {
		info.Duration = time.Since(info.Start)
		e.observer.ObservePass(info)
	}
}
