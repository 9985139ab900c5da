package sharedstream

import "context"

// Shared is the single-goroutine cloneable handle produced by [Share].
//
// All clones of a handle share one cache and one source; each clone keeps
// its own cursor. Shared performs no synchronization: handles and all
// their clones must stay on one goroutine, and calls must not reenter
// (a source must never call back into a handle it is wrapped by). None of
// the three methods is reentrant: SizeHint and IsExhausted also panic
// when called from inside a running Next. Misuse fails fast with a panic
// instead of silently corrupting the cache. Use [AShare] when handles
// cross goroutines.
type Shared[T any] struct {
	inner *sharedInner[T]
	idx   int
}

type sharedInner[T any] struct {
	state state[T]
	// busy guards against reentrant access, the one way a single
	// goroutine can hold two live views of the state at once.
	busy bool
}

// Share wraps src into a cloneable single-goroutine handle. It consumes
// the source: the returned handle's container becomes its sole driver,
// and src must not be used directly afterwards.
func Share[T any](src Source[T], opts ...Option) *Shared[T] {
	return &Shared[T]{
		inner: &sharedInner[T]{state: newState(src, newObserver("shared", opts))},
	}
}

// Clone returns an independent cursor over the same cache. The clone
// starts at this handle's current position; neither handle's progress
// affects the other. O(1), never touches the source.
func (s *Shared[T]) Clone() *Shared[T] {
	s.inner.state.obs.cloned()
	return &Shared[T]{inner: s.inner, idx: s.idx}
}

// Next returns the item at this handle's cursor, advancing the shared
// cache through the source if the item was never produced before. The
// cursor moves forward by one on every yielded item, including cached
// source errors; it does not move on io.EOF or a context error.
func (s *Shared[T]) Next(ctx context.Context) (T, error) {
	in := s.inner
	if in.busy {
		panic("sharedstream: reentrant access to Shared stream; use AShare for concurrent access")
	}
	in.busy = true
	defer func() { in.busy = false }()

	e, err := in.state.getItem(ctx, s.idx)
	if err != nil {
		var zero T
		return zero, err
	}
	s.idx++
	return e.val, e.err
}

// SizeHint estimates this cursor's remaining items without touching the
// source. While the source is running the hint is the source's own hint
// plus the cached items this cursor has not read yet; once finished both
// bounds are exact. Not reentrant: calling it from inside a running Next
// panics.
func (s *Shared[T]) SizeHint() (lower, upper int, bounded bool) {
	in := s.inner
	if in.busy {
		panic("sharedstream: reentrant access to Shared stream; use AShare for concurrent access")
	}
	return in.state.sizeHint(s.idx)
}

// IsExhausted reports whether this cursor can never yield another item:
// false while the source is running, true once the source has finished
// and the cursor has consumed the whole cache. Not reentrant: calling it
// from inside a running Next panics.
func (s *Shared[T]) IsExhausted() bool {
	in := s.inner
	if in.busy {
		panic("sharedstream: reentrant access to Shared stream; use AShare for concurrent access")
	}
	return in.state.exhausted(s.idx)
}
