package sharedstream

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// Take limits src to its next n items. Shared handles are Sources, so
// Take(h.Clone(), 1) reads one item without disturbing other cursors.
func Take[T any](src Source[T], n int) Source[T] {
	return &takeSource[T]{src: src, left: n}
}

type takeSource[T any] struct {
	src  Source[T]
	left int
}

func (s *takeSource[T]) Next(ctx context.Context) (T, error) {
	if s.left <= 0 {
		var zero T
		return zero, io.EOF
	}
	v, err := s.src.Next(ctx)
	if err == nil {
		s.left--
	}
	return v, err
}

func (s *takeSource[T]) SizeHint() (int, int, bool) {
	lower, upper, bounded := s.src.SizeHint()
	if lower > s.left {
		lower = s.left
	}
	if !bounded || upper > s.left {
		upper = s.left
	}
	return lower, upper, true
}

func (s *takeSource[T]) IsExhausted() bool {
	return s.left <= 0 || s.src.IsExhausted()
}

// Skip discards the next n items of src before yielding.
func Skip[T any](src Source[T], n int) Source[T] {
	return &skipSource[T]{src: src, pending: n}
}

type skipSource[T any] struct {
	src     Source[T]
	pending int
}

func (s *skipSource[T]) Next(ctx context.Context) (T, error) {
	for s.pending > 0 {
		if _, err := s.src.Next(ctx); err != nil {
			var zero T
			return zero, err
		}
		s.pending--
	}
	return s.src.Next(ctx)
}

func (s *skipSource[T]) SizeHint() (int, int, bool) {
	lower, upper, bounded := s.src.SizeHint()
	lower -= s.pending
	if lower < 0 {
		lower = 0
	}
	if !bounded {
		return lower, 0, false
	}
	upper -= s.pending
	if upper < 0 {
		upper = 0
	}
	return lower, upper, true
}

func (s *skipSource[T]) IsExhausted() bool { return s.src.IsExhausted() }

// Inspect calls fn on every item yielded by src, passing items through
// unchanged. Useful for observing side effects, e.g. recording what a
// wrapped source actually produced.
func Inspect[T any](src Source[T], fn func(T)) Source[T] {
	return &inspectSource[T]{src: src, fn: fn}
}

type inspectSource[T any] struct {
	src Source[T]
	fn  func(T)
}

func (s *inspectSource[T]) Next(ctx context.Context) (T, error) {
	v, err := s.src.Next(ctx)
	if err == nil {
		s.fn(v)
	}
	return v, err
}

func (s *inspectSource[T]) SizeHint() (int, int, bool) { return s.src.SizeHint() }
func (s *inspectSource[T]) IsExhausted() bool          { return s.src.IsExhausted() }

// Throttle limits how fast items are pulled from src using a token-bucket
// limiter. Each Next waits for one token before touching src.
func Throttle[T any](src Source[T], limiter *rate.Limiter) Source[T] {
	return &throttleSource[T]{src: src, limiter: limiter}
}

type throttleSource[T any] struct {
	src     Source[T]
	limiter *rate.Limiter
}

func (s *throttleSource[T]) Next(ctx context.Context) (T, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		var zero T
		return zero, err
	}
	return s.src.Next(ctx)
}

func (s *throttleSource[T]) SizeHint() (int, int, bool) { return s.src.SizeHint() }
func (s *throttleSource[T]) IsExhausted() bool          { return s.src.IsExhausted() }

// Collect drains src into a slice, stopping at io.EOF. Any other error is
// returned with the items collected so far.
func Collect[T any](ctx context.Context, src Source[T]) ([]T, error) {
	var items []T
	for {
		v, err := src.Next(ctx)
		if err == io.EOF {
			return items, nil
		}
		if err != nil {
			return items, err
		}
		items = append(items, v)
	}
}

// ForEach applies fn to every item of src until io.EOF. It stops early and
// returns the first error from src or fn.
func ForEach[T any](ctx context.Context, src Source[T], fn func(T) error) error {
	for {
		v, err := src.Next(ctx)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(v); err != nil {
			return err
		}
	}
}
