package anchor

import (
	"errors"
	"fmt"
)

// ErrOrphanSubscription is reported when a subscription is registered with
// no captures and no Context. Nothing can ever clean such a subscription up:
// it has no capture whose collection would remove it and no scope whose
// disposal would.
var ErrOrphanSubscription = errors.New("anchor: subscription has no captures and no context")

// ErrContextDisposed is reported when a subscription is registered into a
// Context that has already been disposed. This is typically a continuation
// that resumed after the handler invocation that started it was superseded.
// The registration is refused.
var ErrContextDisposed = errors.New("anchor: registration into disposed context")

// ErrPassDepthExceeded is reported when reentrant writes nest deeper than the
// engine's configured limit. The value is stored but that write's
// notification pass is skipped.
var ErrPassDepthExceeded = errors.New("anchor: notification pass depth exceeded")

// ErrCaptureCollected is reported when Derive is given a capture that is
// already gone.
var ErrCaptureCollected = errors.New("anchor: capture already collected")

// HandlerError describes a handler that panicked during invocation.
// The subscription stays registered and the notification pass continues.
type HandlerError struct {
	SubscriptionID uint64
	ContainerID    uint64

	// Value is the value passed to panic.
	Value any

	// Stack is the goroutine stack captured at recovery.
	Stack []byte
}

// Error implements the error interface.
func (e *HandlerError) Error() string {
	return fmt.Sprintf("anchor: handler for subscription %d on container %d panicked: %v",
		e.SubscriptionID, e.ContainerID, e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *HandlerError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
