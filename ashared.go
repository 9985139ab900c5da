package sharedstream

import (
	"context"
	"sync"
)

// AShared is the cross-goroutine cloneable handle produced by [AShare].
//
// The contract matches [Shared], but the shared cache is guarded by a
// reader-writer lock: handles and their clones may be used and cloned
// from any goroutine. Next holds the write lock for the whole call, even
// on cache hits — one lock discipline instead of a read-to-write upgrade
// that would have to handle the cache growing in between. SizeHint and
// IsExhausted take the read lock.
//
// Each handle is one cursor. Give every goroutine its own clone; calling
// Next on the same handle from two goroutines races on its cursor.
type AShared[T any] struct {
	inner *asharedInner[T]
	idx   int
}

type asharedInner[T any] struct {
	mu       sync.RWMutex
	state    state[T]
	poisoned bool
}

// AShare wraps src into a cloneable handle that is safe for concurrent
// use. It consumes the source. The source itself is never called
// concurrently: advances are strictly serialized by the write lock, so it
// only needs to tolerate being called from different goroutines over time.
func AShare[T any](src Source[T], opts ...Option) *AShared[T] {
	return &AShared[T]{
		inner: &asharedInner[T]{state: newState(src, newObserver("ashared", opts))},
	}
}

// Clone returns an independent cursor over the same cache, starting at
// this handle's current position. Clones may be handed to other
// goroutines. O(1), never touches the source.
func (a *AShared[T]) Clone() *AShared[T] {
	a.inner.state.obs.cloned()
	return &AShared[T]{inner: a.inner, idx: a.idx}
}

// Next returns the item at this handle's cursor, advancing the shared
// cache through the source if needed. Concurrent calls from different
// clones are serialized; a call that was blocked on the lock re-checks
// the grown cache before deciding to touch the source itself.
//
// If a previous advance panicked the state is poisoned and Next fails
// permanently with [ErrPoisoned].
func (a *AShared[T]) Next(ctx context.Context) (T, error) {
	in := a.inner
	in.mu.Lock()
	defer in.mu.Unlock()

	var zero T
	if in.poisoned {
		return zero, ErrPoisoned
	}
	defer func() {
		if r := recover(); r != nil {
			// Mark before unwinding: the append-only invariant may have
			// been violated mid-mutation.
			in.poisoned = true
			in.state.obs.poisoned()
			panic(r)
		}
	}()

	e, err := in.state.getItem(ctx, a.idx)
	if err != nil {
		return zero, err
	}
	a.idx++
	return e.val, e.err
}

// SizeHint estimates this cursor's remaining items under the read lock.
// It panics with [ErrPoisoned] once the state is poisoned.
func (a *AShared[T]) SizeHint() (lower, upper int, bounded bool) {
	in := a.inner
	in.mu.RLock()
	defer in.mu.RUnlock()
	if in.poisoned {
		panic(ErrPoisoned)
	}
	return in.state.sizeHint(a.idx)
}

// IsExhausted reports whether this cursor can never yield another item,
// under the read lock. It panics with [ErrPoisoned] once the state is
// poisoned.
func (a *AShared[T]) IsExhausted() bool {
	in := a.inner
	in.mu.RLock()
	defer in.mu.RUnlock()
	if in.poisoned {
		panic(ErrPoisoned)
	}
	return in.state.exhausted(a.idx)
}
