package anchortest

import (
	"sync"

	"github.com/vango-dev/anchor/pkg/anchor"
)

// Change is one handler invocation.
type Change[T any] struct {
	Next    T
	Current T

	// Captures are the resolved captures passed to the handler.
	Captures []any
}

// Recorder records handler invocations.
type Recorder[T any] struct {
	mu      sync.Mutex
	changes []Change[T]
}

// NewRecorder returns an empty Recorder.
func NewRecorder[T any]() *Recorder[T] {
	return &Recorder[T]{}
}

// Handler returns a handler appending to the recorder.
func (r *Recorder[T]) Handler() anchor.Handler[T] {
	return func(captures []any, _ *anchor.Context, next, current T) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.changes = append(r.changes, Change[T]{Next: next, Current: current, Captures: captures})
	}
}

// Changes returns a copy of the recorded changes.
func (r *Recorder[T]) Changes() []Change[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Change[T], len(r.changes))
	copy(out, r.changes)
	return out
}

// Count returns the number of recorded changes.
func (r *Recorder[T]) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.changes)
}

// Last returns the most recent change.
func (r *Recorder[T]) Last() (Change[T], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.changes) == 0 {
		return Change[T]{}, false
	}
	return r.changes[len(r.changes)-1], true
}

// Reset discards recorded changes.
func (r *Recorder[T]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = nil
}
