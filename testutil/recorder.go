package testutil

import (
	"context"
	"sync"

	"github.com/BaSui01/sharedstream"
)

// Recorder wraps a Source and records every item it emits. The log is
// safe to read from any goroutine, so tests can assert on it while clones
// are still draining elsewhere.
type Recorder[T any] struct {
	src sharedstream.Source[T]

	mu    sync.Mutex
	seen  []T
	calls int
}

// Record wraps src in a Recorder.
func Record[T any](src sharedstream.Source[T]) *Recorder[T] {
	return &Recorder[T]{src: src}
}

func (r *Recorder[T]) Next(ctx context.Context) (T, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()

	v, err := r.src.Next(ctx)
	if err == nil {
		r.mu.Lock()
		r.seen = append(r.seen, v)
		r.mu.Unlock()
	}
	return v, err
}

func (r *Recorder[T]) SizeHint() (int, int, bool) { return r.src.SizeHint() }
func (r *Recorder[T]) IsExhausted() bool          { return r.src.IsExhausted() }

// Seen returns a copy of every item emitted so far, in emission order.
func (r *Recorder[T]) Seen() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]T, len(r.seen))
	copy(out, r.seen)
	return out
}

// Calls returns how many times Next was invoked on the wrapped source,
// including the final call that returned io.EOF.
func (r *Recorder[T]) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}
