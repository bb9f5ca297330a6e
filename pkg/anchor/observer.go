package anchor

import "time"

// RemoveReason records why a subscription was removed.
type RemoveReason uint8

const (
	// RemovedExplicit is an Unsubscribe call.
	RemovedExplicit RemoveReason = iota + 1

	// RemovedStale is a capture found collected at invocation time.
	RemovedStale

	// RemovedCollected is a capture reported unreachable by the host.
	RemovedCollected

	// RemovedContext is the enclosing Context being cleared or disposed.
	RemovedContext
)

// String returns a human-readable name for the reason.
func (r RemoveReason) String() string {
	switch r {
	case RemovedExplicit:
		return "explicit"
	case RemovedStale:
		return "stale"
	case RemovedCollected:
		return "collected"
	case RemovedContext:
		return "context"
	default:
		return "unknown"
	}
}

// PassInfo summarizes one notification pass.
type PassInfo struct {
	ContainerID uint64

	// Depth is 1 for a top-level write and grows with reentrant writes.
	Depth int

	Start    time.Time
	Duration time.Duration

	// Snapshot is the number of subscriptions in the snapshot.
	Snapshot int
	Invoked  int
	Stale    int
	Failed   int
}

// Observer receives engine events. Implementations must be cheap; they are
// called synchronously on the engine's thread.
type Observer interface {
	ObservePass(info PassInfo)
	ObserveRegistration(subscriptionID, containerID uint64, captures int)
	ObserveRemoval(subscriptionID, containerID uint64, reason RemoveReason)
	ObserveHandlerError(err *HandlerError)
}
