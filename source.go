package sharedstream

import (
	"context"
	"io"
)

// Source is the pull-stream contract consumed and produced by this package.
//
// Next returns the next item, io.EOF once the sequence has ended, or
// ctx.Err() if the context is done before an item is ready. After io.EOF
// every further call must keep returning io.EOF.
//
// SizeHint estimates the remaining items without mutating the stream:
// lower <= remaining, and remaining <= upper when bounded is true. When
// bounded is false the upper value is meaningless.
//
// IsExhausted reports whether the stream is known to permanently produce
// no more items. It is a fused flag: once true it stays true and Next is
// a guaranteed no-op io.EOF.
type Source[T any] interface {
	Next(ctx context.Context) (T, error)
	SizeHint() (lower, upper int, bounded bool)
	IsExhausted() bool
}

// FromSlice returns a Source yielding the elements of items in order.
func FromSlice[T any](items []T) Source[T] {
	return &sliceSource[T]{items: items}
}

type sliceSource[T any] struct {
	items []T
	idx   int
}

func (s *sliceSource[T]) Next(ctx context.Context) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	if s.idx >= len(s.items) {
		return zero, io.EOF
	}
	v := s.items[s.idx]
	s.idx++
	return v, nil
}

func (s *sliceSource[T]) SizeHint() (int, int, bool) {
	n := len(s.items) - s.idx
	return n, n, true
}

func (s *sliceSource[T]) IsExhausted() bool {
	return s.idx >= len(s.items)
}

// FromChan returns a Source that receives from ch until it is closed.
// The size hint is unbounded while the channel is open.
func FromChan[T any](ch <-chan T) Source[T] {
	return &chanSource[T]{ch: ch}
}

type chanSource[T any] struct {
	ch   <-chan T
	done bool
}

func (s *chanSource[T]) Next(ctx context.Context) (T, error) {
	var zero T
	if s.done {
		return zero, io.EOF
	}
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case v, ok := <-s.ch:
		if !ok {
			s.done = true
			return zero, io.EOF
		}
		return v, nil
	}
}

func (s *chanSource[T]) SizeHint() (int, int, bool) {
	if s.done {
		return 0, 0, true
	}
	return 0, 0, false
}

func (s *chanSource[T]) IsExhausted() bool { return s.done }

// FromFunc returns a Source backed by fn. fn signals the end of the
// sequence by returning io.EOF; after that the source is fused and fn is
// never called again.
func FromFunc[T any](fn func(ctx context.Context) (T, error)) Source[T] {
	return &funcSource[T]{fn: fn}
}

type funcSource[T any] struct {
	fn   func(ctx context.Context) (T, error)
	done bool
}

func (s *funcSource[T]) Next(ctx context.Context) (T, error) {
	if s.done {
		var zero T
		return zero, io.EOF
	}
	v, err := s.fn(ctx)
	if err == io.EOF {
		s.done = true
	}
	return v, err
}

func (s *funcSource[T]) SizeHint() (int, int, bool) {
	if s.done {
		return 0, 0, true
	}
	return 0, 0, false
}

func (s *funcSource[T]) IsExhausted() bool { return s.done }
