// Package demo is a small host for anchor containers: a node tree whose
// styles follow two color containers.
//
// Example registers a color handler anchored by the node it styles. Every
// invocation calls Nested, which subscribes to the background synchronously,
// and AsyncNested, which subscribes from a continuation that only runs when
// Resume is called. Because each invocation owns a fresh Context that is
// disposed before the next one, nested registrations never pile up, and a
// continuation resumed after its invocation was superseded is refused.
//
//	app := demo.NewApp(nil, "red", "white")
//	root := anchor.NewContext()
//	div := app.Example(root)
//	app.Color.Set("blue")   // div.Style("color") == "blue"
//	app.Resume()            // late continuations are rejected
package demo
