package arena

import (
	"fmt"

	"github.com/vango-dev/anchor/pkg/anchor"
)

// handleOwner is implemented by every Arena[T] so Handle need not be generic.
type handleOwner interface {
	arenaID() uint64
	resolve(h Handle) (any, bool)
	watch(h Handle, fn func())
}

// Handle refers to one object in an arena. The zero Handle refers to nothing.
//
// Handle implements anchor.Capture. Captures resolve to the stored value T,
// not to a pointer into the arena.
type Handle struct {
	owner handleOwner
	index uint32
	gen   uint32
}

var _ anchor.Capture = Handle{}

// Key identifies a handle without referring to its arena.
type Key struct {
	Arena      uint64
	Index      uint32
	Generation uint32
}

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool {
	return h.owner == nil
}

// Valid reports whether h still refers to a live object.
func (h Handle) Valid() bool {
	if h.owner == nil {
		return false
	}
	_, ok := h.owner.resolve(h)
	return ok
}

// Key implements anchor.Capture.
func (h Handle) Key() any {
	if h.owner == nil {
		return Key{Index: h.index, Generation: h.gen}
	}
	return Key{Arena: h.owner.arenaID(), Index: h.index, Generation: h.gen}
}

// Weak implements anchor.Capture.
func (h Handle) Weak() anchor.WeakRef {
	return handleRef{h: h}
}

// OnUnreachable implements anchor.Capture. fn runs when the object is
// released, or immediately if it already has been.
func (h Handle) OnUnreachable(fn func()) {
	if h.owner == nil {
		fn()
		return
	}
	h.owner.watch(h, fn)
}

// String returns a short form like "arena3[7@2]".
func (h Handle) String() string {
	if h.owner == nil {
		return "arena[nil]"
	}
	return fmt.Sprintf("arena%d[%d@%d]", h.owner.arenaID(), h.index, h.gen)
}

type handleRef struct {
	h Handle
}

func (r handleRef) Resolve() (any, bool) {
	if r.h.owner == nil {
		return nil, false
	}
	return r.h.owner.resolve(r.h)
}
