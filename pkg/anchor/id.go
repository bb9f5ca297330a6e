package anchor

import "sync/atomic"

// idCounter is the source of unique IDs for engines, containers and
// subscriptions. IDs are monotonically increasing and never reused.
var idCounter atomic.Uint64

func nextID() uint64 {
	return idCounter.Add(1)
}
