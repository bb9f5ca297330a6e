package observe

import "github.com/vango-dev/anchor/pkg/anchor"

type multi []anchor.Observer

// Multi returns an observer forwarding every event to each of observers in
// order. Nil observers are skipped. With a single observer it is returned
// as is.
func Multi(observers ...anchor.Observer) anchor.Observer {
	var m multi
	for _, o := range observers {
		if o != nil {
			m = append(m, o)
		}
	}
	if len(m) == 1 {
		return m[0]
	}
	return m
}

func (m multi) ObservePass(info anchor.PassInfo) {
	for _, o := range m {
		o.ObservePass(info)
	}
}

func (m multi) ObserveRegistration(subscriptionID, containerID uint64, captures int) {
	for _, o := range m {
		o.ObserveRegistration(subscriptionID, containerID, captures)
	}
}

func (m multi) ObserveRemoval(subscriptionID, containerID uint64, reason anchor.RemoveReason) {
	for _, o := range m {
		o.ObserveRemoval(subscriptionID, containerID, reason)
	}
}

func (m multi) ObserveHandlerError(err *anchor.HandlerError) {
	for _, o := range m {
		o.ObserveHandlerError(err)
	}
}
