package anchor_test

import (
	"runtime"
	"strings"
	"testing"

	"github.com/vango-dev/anchor/pkg/anchor"
	"github.com/vango-dev/anchor/pkg/anchor/anchortest"
)

func TestDeriveInitialValue(t *testing.T) {
	src := anchor.NewContainer(anchor.NewEngine(), "blue")
	calls := 0
	upper := anchor.Derive(src, func(_ []any, _ *anchor.Context, v string) string {
		calls++
		return strings.ToUpper(v)
	}, nil, nil)

	if upper.Get() != "BLUE" {
		t.Errorf("expected BLUE before any write, got %q", upper.Get())
	}
	if calls != 1 {
		t.Errorf("expected 1 computation, got %d", calls)
	}
}

func TestDeriveFollowsSource(t *testing.T) {
	src := anchor.NewContainer(anchor.NewEngine(), 2)
	doubled := anchor.Map(src, func(n int) int { return n * 2 }, nil)
	rec := anchortest.NewRecorder[int]()
	doubled.OnChange(rec.Handler(), []anchor.Capture{anchortest.NewObject("view")}, nil)

	src.Set(5)
	src.Set(7)

	if doubled.Get() != 14 {
		t.Errorf("expected 14, got %d", doubled.Get())
	}
	got := rec.Changes()
	if len(got) != 2 || got[0].Next != 10 || got[0].Current != 4 || got[1].Next != 14 || got[1].Current != 10 {
		t.Errorf("unexpected derived deliveries: %+v", got)
	}
}

func TestDeriveChain(t *testing.T) {
	src := anchor.NewContainer(anchor.NewEngine(), 1)
	plusOne := anchor.Map(src, func(n int) int { return n + 1 }, nil)
	squared := anchor.Map(plusOne, func(n int) int { return n * n }, nil)

	if squared.Get() != 4 {
		t.Errorf("expected 4, got %d", squared.Get())
	}
	src.Set(4)
	if squared.Get() != 25 {
		t.Errorf("expected 25, got %d", squared.Get())
	}
	// Intermediate derived containers are only weakly held by their source.
	runtime.KeepAlive(plusOne)
}

func TestDeriveWithCaptures(t *testing.T) {
	src := anchor.NewContainer(anchor.NewEngine(), "red")
	prefix := anchortest.NewObject("label")

	derived := anchor.Derive(src, func(caps []any, _ *anchor.Context, v string) string {
		return caps[0].(*anchortest.Object).Name + ":" + v
	}, []anchor.Capture{prefix}, nil)

	if derived.Get() != "label:red" {
		t.Errorf("expected label:red, got %q", derived.Get())
	}

	src.Set("blue")
	if derived.Get() != "label:blue" {
		t.Errorf("expected label:blue, got %q", derived.Get())
	}

	prefix.Collect()
	src.Set("green")
	if derived.Get() != "label:blue" {
		t.Errorf("derived value should stop following, got %q", derived.Get())
	}
	if src.Len() != 0 {
		t.Errorf("expected update subscription removed, got %d", src.Len())
	}
}

func TestDeriveUnderContext(t *testing.T) {
	src := anchor.NewContainer(anchor.NewEngine(), 1)
	ctx := anchor.NewContext()
	derived := anchor.Map(src, func(n int) int { return -n }, ctx)

	src.Set(2)
	ctx.Clear()
	src.Set(3)

	if derived.Get() != -2 {
		t.Errorf("expected last value -2 after clear, got %d", derived.Get())
	}
}

func TestDeriveIntoDisposedContext(t *testing.T) {
	src := anchor.NewContainer(anchor.NewEngine(), 3)
	ctx := anchor.NewContext()
	ctx.Dispose()

	derived := anchor.Map(src, func(n int) int { return n * 10 }, ctx)
	if derived.Get() != 30 {
		t.Errorf("derived value should be initialized even when refused, got %d", derived.Get())
	}
	src.Set(4)
	if derived.Get() != 30 {
		t.Errorf("refused derivation should not follow, got %d", derived.Get())
	}
}

func TestDeriveFromCollectedCapture(t *testing.T) {
	src := anchor.NewContainer(anchor.NewEngine(), 3)
	gone := anchortest.NewObject("gone")
	gone.Collect()

	derived := anchor.Derive(src, func(_ []any, _ *anchor.Context, n int) int {
		return n
	}, []anchor.Capture{gone}, nil)

	if derived.Get() != 0 {
		t.Errorf("expected zero value, got %d", derived.Get())
	}
	if src.Len() != 0 {
		t.Errorf("expected no update subscription, got %d", src.Len())
	}
}

func TestDeriveHandlerNestedRegistrations(t *testing.T) {
	e := anchor.NewEngine()
	src := anchor.NewContainer(e, 0)
	other := anchor.NewContainer(e, 0)

	anchor.Derive(src, func(_ []any, ctx *anchor.Context, v int) int {
		other.OnChange(func(_ []any, _ *anchor.Context, _, _ int) {}, nil, ctx)
		return v
	}, nil, nil)

	for i := 0; i < 10; i++ {
		src.Set(i)
	}
	// derived is unreferenced here but may not be collected yet; either
	// way nested registrations never pile up.
	if other.Len() > 1 {
		t.Errorf("expected at most 1 nested subscription, got %d", other.Len())
	}
}

//go:noinline
func deriveAndDrop(src *anchor.Container[int]) {
	anchor.Map(src, func(n int) int { return n + 1 }, nil)
}

func TestDeriveReleasedWhenUnreferenced(t *testing.T) {
	src := anchor.NewContainer(anchor.NewEngine(), 0)
	deriveAndDrop(src)

	if src.Len() != 1 {
		t.Fatalf("expected 1 update subscription, got %d", src.Len())
	}

	for i := 0; i < 10 && src.Len() > 0; i++ {
		runtime.GC()
		src.Set(i)
	}

	if src.Len() != 0 {
		t.Errorf("unreferenced derived container should release its update path, got %d", src.Len())
	}
}
