package anchor_test

import (
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vango-dev/anchor/pkg/anchor"
	"github.com/vango-dev/anchor/pkg/anchor/anchortest"
)

// silentCapture goes stale without ever notifying the engine, like a host
// whose finalizer has not run yet.
type silentCapture struct {
	gone bool
}

func (c *silentCapture) Weak() anchor.WeakRef { return silentRef{c} }
func (c *silentCapture) Key() any             { return c }
func (c *silentCapture) OnUnreachable(func()) {}

type silentRef struct{ c *silentCapture }

func (r silentRef) Resolve() (any, bool) {
	if r.c.gone {
		return nil, false
	}
	return r.c, true
}

func TestStaleCaptureTornDownAtInvocation(t *testing.T) {
	e := anchor.NewEngine()
	c := anchor.NewContainer(e, 0)
	capture := &silentCapture{}
	rec := anchortest.NewRecorder[int]()
	s := c.OnChange(rec.Handler(), []anchor.Capture{capture}, nil)

	capture.gone = true
	c.Set(1)

	if rec.Count() != 0 {
		t.Errorf("stale subscription invoked %d times", rec.Count())
	}
	if !s.Removed() {
		t.Error("stale subscription should be removed")
	}
	if got := e.Stats().Removed[anchor.RemovedStale]; got != 1 {
		t.Errorf("expected 1 stale removal, got %d", got)
	}
}

func TestAnyCollectedCaptureRemoves(t *testing.T) {
	c := anchor.NewContainer(anchor.NewEngine(), 0)
	a := anchortest.NewObject("a")
	b := anchortest.NewObject("b")
	rec := anchortest.NewRecorder[int]()
	c.OnChange(rec.Handler(), []anchor.Capture{a, b}, nil)

	c.Set(1)
	b.Collect()
	c.Set(2)

	if rec.Count() != 1 {
		t.Errorf("expected 1 invocation, got %d", rec.Count())
	}
	got, _ := rec.Last()
	if len(got.Captures) != 2 || got.Captures[0] != a || got.Captures[1] != b {
		t.Errorf("captures not resolved in order: %v", got.Captures)
	}
}

func TestCollectionRemovesAcrossContainers(t *testing.T) {
	e := anchor.NewEngine()
	a := anchor.NewContainer(e, 0)
	b := anchor.NewContainer(e, "")
	node := anchortest.NewObject("node")

	a.OnChange(func(_ []any, _ *anchor.Context, _, _ int) {}, []anchor.Capture{node}, nil)
	a.OnChange(func(_ []any, _ *anchor.Context, _, _ int) {}, []anchor.Capture{node}, nil)
	b.OnChange(func(_ []any, _ *anchor.Context, _, _ string) {}, []anchor.Capture{node}, nil)

	if node.Watchers() != 1 {
		t.Errorf("expected a single unreachability hook per capture, got %d", node.Watchers())
	}

	node.Collect()
	if n := e.Sweep(); n != 3 {
		t.Errorf("expected sweep to remove 3 subscriptions, got %d", n)
	}
	if a.Len() != 0 || b.Len() != 0 {
		t.Errorf("expected no subscriptions, got a=%d b=%d", a.Len(), b.Len())
	}
	if n := e.Sweep(); n != 0 {
		t.Errorf("second sweep should remove nothing, got %d", n)
	}
	if got := e.Stats().Removed[anchor.RemovedCollected]; got != 3 {
		t.Errorf("expected 3 collected removals, got %d", got)
	}
}

func TestCollectionAlsoDisposesSpawned(t *testing.T) {
	e := anchor.NewEngine()
	outer := anchor.NewContainer(e, 0)
	inner := anchor.NewContainer(e, 0)
	node := anchortest.NewObject("node")

	outer.OnChange(func(_ []any, ctx *anchor.Context, _, _ int) {
		inner.OnChange(func(_ []any, _ *anchor.Context, _, _ int) {}, nil, ctx)
	}, []anchor.Capture{node}, nil, anchor.FireImmediately())

	if inner.Len() != 1 {
		t.Fatalf("expected a nested subscription, got %d", inner.Len())
	}

	node.Collect()
	e.Sweep()

	if inner.Len() != 0 {
		t.Errorf("nested subscription should go with its parent, got %d", inner.Len())
	}
}

func TestRespawnedSubscriptionHooksCaptureOnce(t *testing.T) {
	e := anchor.NewEngine()
	outer := anchor.NewContainer(e, 0)
	inner := anchor.NewContainer(e, 0)
	node := anchortest.NewObject("node")
	leaf := anchortest.NewObject("leaf")

	outer.OnChange(func(_ []any, ctx *anchor.Context, _, _ int) {
		inner.OnChange(func(_ []any, _ *anchor.Context, _, _ int) {}, []anchor.Capture{leaf}, ctx)
	}, []anchor.Capture{node}, nil)

	for i := 1; i <= 100; i++ {
		outer.Set(i)
	}

	if inner.Len() != 1 {
		t.Fatalf("expected one nested subscription, got %d", inner.Len())
	}
	if got := leaf.Watchers(); got != 1 {
		t.Errorf("leaf hooked %d times, want 1", got)
	}
	if got := node.Watchers(); got != 1 {
		t.Errorf("node hooked %d times, want 1", got)
	}
	if got := e.Stats().Hooked; got != 2 {
		t.Errorf("expected 2 hooked objects, got %d", got)
	}

	leaf.Collect()
	e.Sweep()

	if inner.Len() != 0 {
		t.Errorf("nested subscription should go with its leaf, got %d", inner.Len())
	}
	if got := e.Stats().Hooked; got != 1 {
		t.Errorf("drained leaf should leave 1 hooked object, got %d", got)
	}
}

func TestRegisterWithCollectedCapture(t *testing.T) {
	e := anchor.NewEngine()
	c := anchor.NewContainer(e, 0)
	node := anchortest.NewObject("node")
	node.Collect()

	rec := anchortest.NewRecorder[int]()
	s := c.OnChange(rec.Handler(), []anchor.Capture{node}, nil)
	c.Set(1)

	if rec.Count() != 0 || !s.Removed() {
		t.Errorf("subscription anchored by a collected capture should never run")
	}
}

func TestRefNilPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for nil pointer")
		}
	}()
	var p *struct{ name string }
	anchor.Ref(p)
}

type element struct {
	tag   string
	style map[string]string
}

func newElement(tag string) *element {
	return &element{tag: tag, style: make(map[string]string)}
}

func TestRefResolvesLiveObject(t *testing.T) {
	c := anchor.NewContainer(anchor.NewEngine(), "red")
	el := newElement("div")

	c.OnChange(func(caps []any, _ *anchor.Context, next, _ string) {
		caps[0].(*element).style["color"] = next
	}, []anchor.Capture{anchor.Ref(el)}, nil)

	c.Set("blue")

	if el.style["color"] != "blue" {
		t.Errorf("expected color blue, got %q", el.style["color"])
	}
	runtime.KeepAlive(el)
}

// subscribeTemporary registers a subscription anchored by an element that
// becomes unreachable as soon as this function returns.
//
//go:noinline
func subscribeTemporary(c *anchor.Container[int], calls *atomic.Int32) *anchor.Subscription {
	el := newElement("span")
	return c.OnChange(func(_ []any, _ *anchor.Context, _, _ int) {
		calls.Add(1)
	}, []anchor.Capture{anchor.Ref(el)}, nil)
}

func TestRefReleasedAfterGC(t *testing.T) {
	e := anchor.NewEngine()
	c := anchor.NewContainer(e, 0)
	var calls atomic.Int32
	s := subscribeTemporary(c, &calls)

	for i := 0; i < 10 && !s.Removed(); i++ {
		runtime.GC()
		c.Set(i)
	}

	if !s.Removed() {
		t.Fatal("subscription should be removed once its capture is collected")
	}
	before := calls.Load()
	c.Set(100)
	if calls.Load() != before {
		t.Error("removed subscription was invoked")
	}
}

func TestRefCleanupQueuesSweep(t *testing.T) {
	e := anchor.NewEngine()
	c := anchor.NewContainer(e, 0)
	var calls atomic.Int32
	s := subscribeTemporary(c, &calls)

	deadline := time.Now().Add(5 * time.Second)
	for !s.Removed() && time.Now().Before(deadline) {
		runtime.GC()
		e.Sweep()
		time.Sleep(10 * time.Millisecond)
	}

	if !s.Removed() {
		t.Fatal("host cleanup should let Sweep remove the subscription")
	}
	if got := e.Stats().Removed[anchor.RemovedCollected]; got != 1 {
		t.Errorf("expected 1 collected removal, got %d", got)
	}
	if calls.Load() != 0 {
		t.Errorf("handler should never have run, got %d calls", calls.Load())
	}
}
