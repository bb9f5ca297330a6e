package demo

import (
	"strings"
	"sync"

	"github.com/vango-dev/anchor/pkg/anchor"
)

// App holds the containers shared by every Example.
type App struct {
	Color      *anchor.Container[string]
	Background *anchor.Container[string]

	mu      sync.Mutex
	label   *anchor.Container[string]
	pending []continuation
}

// continuation is work an invocation deferred until Resume.
type continuation struct {
	ctx *anchor.Context
}

// ResumeResult counts the continuations run by Resume.
type ResumeResult struct {
	Accepted int
	Rejected int
}

// NewApp creates the color and background containers on e. A nil engine
// selects anchor.Default().
func NewApp(e *anchor.Engine, color, background string) *App {
	return &App{
		Color:      anchor.NewContainer(e, color),
		Background: anchor.NewContainer(e, background),
	}
}

// Example creates a div whose text color follows Color. The subscription is
// anchored by the div, so it goes away once the caller drops the node.
func (a *App) Example(ctx *anchor.Context) *Node {
	div := CreateElement("div")

	a.Color.OnChange(func(captures []any, ctx *anchor.Context, next, _ string) {
		div := captures[0].(*Node)
		div.SetStyle("color", next)
		a.Nested(ctx)
		a.AsyncNested(ctx)
	}, []anchor.Capture{anchor.Ref(div)}, ctx, anchor.FireImmediately())

	return div
}

// Nested subscribes to Background with no captures, relying on ctx alone,
// and derives an upper-cased label from it.
func (a *App) Nested(ctx *anchor.Context) *anchor.Container[string] {
	a.Background.OnChange(func([]any, *anchor.Context, string, string) {}, nil, ctx)

	label := anchor.Map(a.Background, strings.ToUpper, ctx)

	a.mu.Lock()
	a.label = label
	a.mu.Unlock()
	return label
}

// AsyncNested queues a registration into ctx that runs on the next Resume,
// the way an awaited callback resumes after its caller has returned.
func (a *App) AsyncNested(ctx *anchor.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pending = append(a.pending, continuation{ctx: ctx})
}

// Pending returns the number of queued continuations.
func (a *App) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pending)
}

// Resume runs every queued continuation. A continuation whose invocation
// has since been superseded finds its Context disposed and its registration
// is refused.
func (a *App) Resume() ResumeResult {
	a.mu.Lock()
	pending := a.pending
	a.pending = nil
	a.mu.Unlock()

	var res ResumeResult
	for _, c := range pending {
		s := a.Background.OnChange(func([]any, *anchor.Context, string, string) {}, nil, c.ctx)
		if s.Removed() {
			res.Rejected++
		} else {
			res.Accepted++
		}
	}
	return res
}

// Label returns the value of the most recently derived background label.
func (a *App) Label() string {
	a.mu.Lock()
	label := a.label
	a.mu.Unlock()
	if label == nil {
		return ""
	}
	return label.Get()
}
