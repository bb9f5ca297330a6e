// Package anchortest provides helpers for testing code built on anchor.
//
// Object is a capture whose collection is simulated on demand, which makes
// capture-driven teardown deterministic:
//
//	node := anchortest.NewObject("div")
//	rec := anchortest.NewRecorder[string]()
//	color.OnChange(rec.Handler(), []anchor.Capture{node}, nil)
//
//	color.Set("blue")
//	node.Collect()
//	color.Set("green") // rec still holds a single change
//
// Recorder records every (next, current) pair a handler receives.
package anchortest
