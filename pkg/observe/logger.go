package observe

import (
	"log/slog"

	"github.com/vango-dev/anchor/pkg/anchor"
)

// LogObserver logs engine events.
type LogObserver struct {
	logger *slog.Logger
}

// Logger returns an observer logging every event at Debug level. Handler
// panics are already reported by the engine under A001; this observer adds
// the stack at Debug. A nil logger selects slog.Default().
func Logger(logger *slog.Logger) *LogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogObserver{logger: logger.With("component", "anchor.observe")}
}

// ObservePass implements anchor.Observer.
func (o *LogObserver) ObservePass(info anchor.PassInfo) {
	o.logger.Debug("notification pass",
		"container_id", info.ContainerID,
		"depth", info.Depth,
		"snapshot", info.Snapshot,
		"invoked", info.Invoked,
		"stale", info.Stale,
		"failed", info.Failed,
		"duration", info.Duration,
	)
}

// ObserveRegistration implements anchor.Observer.
func (o *LogObserver) ObserveRegistration(subscriptionID, containerID uint64, captures int) {
	o.logger.Debug("subscription registered",
		"subscription_id", subscriptionID,
		"container_id", containerID,
		"captures", captures,
	)
}

// ObserveRemoval implements anchor.Observer.
func (o *LogObserver) ObserveRemoval(subscriptionID, containerID uint64, reason anchor.RemoveReason) {
	o.logger.Debug("subscription removed",
		"subscription_id", subscriptionID,
		"container_id", containerID,
		"reason", reason.String(),
	)
}

// ObserveHandlerError implements anchor.Observer.
func (o *LogObserver) ObserveHandlerError(err *anchor.HandlerError) {
	o.logger.Debug("handler panicked",
		"subscription_id", err.SubscriptionID,
		"container_id", err.ContainerID,
		"error", err.Error(),
		"stack", string(err.Stack),
	)
}

var _ anchor.Observer = (*LogObserver)(nil)
