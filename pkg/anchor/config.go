package anchor

import "log/slog"

// =============================================================================
// Engine Options
// =============================================================================

// OrphanPolicy controls what happens when a subscription is registered with
// no captures and no Context.
type OrphanPolicy int

const (
	// OrphanWarn logs ErrOrphanSubscription and registers the subscription.
	// It will only ever be removed by an explicit Unsubscribe.
	OrphanWarn OrphanPolicy = iota

	// OrphanReject logs ErrOrphanSubscription and returns a subscription that
	// is already removed. The handler never runs.
	OrphanReject

	// OrphanPanic panics. Use this during development and testing.
	OrphanPanic
)

// String returns a human-readable name for the policy.
func (p OrphanPolicy) String() string {
	switch p {
	case OrphanWarn:
		return "warn"
	case OrphanReject:
		return "reject"
	case OrphanPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// ParseOrphanPolicy parses the names produced by OrphanPolicy.String.
func ParseOrphanPolicy(s string) (OrphanPolicy, bool) {
	switch s {
	case "warn", "":
		return OrphanWarn, true
	case "reject":
		return OrphanReject, true
	case "panic":
		return OrphanPanic, true
	default:
		return OrphanWarn, false
	}
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithObserver sets the observer notified of passes, registrations,
// removals and handler failures.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		e.observer = o
	}
}

// WithOrphanPolicy sets the orphan policy. Defaults to OrphanWarn.
func WithOrphanPolicy(p OrphanPolicy) Option {
	return func(e *Engine) {
		e.orphans = p
	}
}

// WithMaxPassDepth limits how deeply reentrant writes may nest.
// Zero, the default, means no limit.
func WithMaxPassDepth(n int) Option {
	return func(e *Engine) {
		if n < 0 {
			n = 0
		}
		e.maxDepth = n
	}
}

// WithErrorHandler sets a function called for every handler panic, after it
// has been logged.
func WithErrorHandler(fn func(*HandlerError)) Option {
	return func(e *Engine) {
		e.onError = fn
	}
}

// =============================================================================
// Subscribe Options
// =============================================================================

// SubscribeOption configures a single registration.
type SubscribeOption interface {
	applySubscribe(c *subscribeConfig)
}

type subscribeConfig struct {
	fireImmediately bool
}

type subscribeOptionFunc func(*subscribeConfig)

func (f subscribeOptionFunc) applySubscribe(c *subscribeConfig) { f(c) }

// FireImmediately invokes the handler once right after registration, with
// the container's current value as both next and current.
//
//	color.OnChange(apply, []anchor.Capture{anchor.Ref(div)}, ctx, anchor.FireImmediately())
func FireImmediately() SubscribeOption {
	return subscribeOptionFunc(func(c *subscribeConfig) {
		c.fireImmediately = true
	})
}
