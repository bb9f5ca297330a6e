package anchor

// DeriveHandler computes a derived value from the resolved captures and the
// source value. ctx owns anything it registers, as for Handler.
type DeriveHandler[T, U any] func(captures []any, ctx *Context, value T) U

// Derive returns a container whose value is h applied to src's value,
// recomputed on every write to src.
//
// The initial value is computed before Derive returns. The update
// subscription on src is registered into ctx with the derived container
// itself as its first capture, followed by captures: once nothing else
// references the derived container, the update path is released with it.
//
// If a capture is already gone, the derived container holds the zero value
// and follows nothing.
func Derive[T, U any](src *Container[T], h DeriveHandler[T, U], captures []Capture, ctx *Context) *Container[U] {
	if h == nil {
		panic("anchor: Derive with nil handler")
	}

	e := src.engine
	var zero U
	derived := NewContainer(e, zero)

	anchors := make([]Capture, 0, len(captures)+1)
	anchors = append(anchors, Ref(derived))
	anchors = append(anchors, captures...)

	update := func(caps []any, ctx *Context, next, _ T) {
		d := caps[0].(*Container[U])
		d.Set(h(caps[1:], ctx, next))
	}

	s := src.OnChange(update, anchors, ctx, FireImmediately())
	if !s.Removed() {
		return derived
	}

	// The registration was refused. Compute the value once so the caller
	// never observes an uninitialized container; nothing registered by h
	// can outlive this call.
	resolved := make([]any, len(captures))
	for i, c := range captures {
		v, ok := c.Weak().Resolve()
		if !ok {
			e.logger.Debug("derive from collected capture", "error", ErrCaptureCollected)
			return derived
		}
		resolved[i] = v
	}
	derived.value = h(resolved, disposedContext(), src.Get())
	return derived
}

// Map is Derive for a plain function of the source value.
func Map[T, U any](src *Container[T], fn func(T) U, ctx *Context) *Container[U] {
	return Derive(src, func(_ []any, _ *Context, v T) U {
		return fn(v)
	}, nil, ctx)
}
