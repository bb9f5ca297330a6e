// Package anchor provides a small reactive value container whose change
// handlers are owned by the objects they touch.
//
// A handler is registered together with a list of captures. The engine keeps
// only weak references to captures, and when any capture becomes unreachable
// the handler is torn down. Handlers may register further handlers from
// inside their body; those nested registrations live in a per-invocation
// Context that is disposed before the next invocation, so repeated firings
// never accumulate duplicates.
//
// # Core Types
//
// Container[T] holds a value:
//
//	color := anchor.NewContainer(nil, "red")
//	color.Set("blue") // notifies every live subscription
//
// OnChange registers a handler anchored by captures:
//
//	div := &Node{}
//	color.OnChange(func(caps []any, ctx *anchor.Context, next, current string) {
//	    caps[0].(*Node).Style["color"] = next
//	}, []anchor.Capture{anchor.Ref(div)}, scope)
//
// Derive builds a Container whose value follows another one:
//
//	upper := anchor.Map(color, strings.ToUpper, scope)
//
// # Contexts
//
// A Context owns the subscriptions registered into it. Clear unsubscribes all
// of them (recursively), Dispose additionally refuses any later registration.
// Each handler invocation receives a fresh Context, and the previous one is
// disposed first.
//
// # Hazards
//
// A subscription registered with no captures is kept alive only by its
// Context. Registering one with no Context at all creates an orphan the engine
// can never clean up; see OrphanPolicy. Handlers must not close over their
// captures directly: a closure reference is a strong reference and pins the
// capture forever. Use the resolved captures passed to the handler instead.
//
// # Threading
//
// An Engine and its containers are meant to be driven from one logical thread
// at a time. Subscriber lists are copied before notification, so handlers may
// write to any container, including the one being notified. Host
// finalization runs on the runtime's cleanup goroutine and only queues work;
// the queue is drained by Sweep, which Set and OnChange call on entry.
package anchor
