package testutil

import (
	"context"
	"io"

	"github.com/BaSui01/sharedstream"
)

// Step is one scripted emission: a value, or a non-nil error.
type Step[T any] struct {
	Val T
	Err error
}

// Script returns a Source that replays steps in order and then ends.
// A step's error is returned as-is; the script only terminates on its own
// io.EOF after the last step.
func Script[T any](steps ...Step[T]) sharedstream.Source[T] {
	return &scriptSource[T]{steps: steps}
}

type scriptSource[T any] struct {
	steps []Step[T]
	idx   int
}

func (s *scriptSource[T]) Next(ctx context.Context) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	if s.idx >= len(s.steps) {
		return zero, io.EOF
	}
	st := s.steps[s.idx]
	s.idx++
	if st.Err != nil {
		return zero, st.Err
	}
	return st.Val, nil
}

func (s *scriptSource[T]) SizeHint() (int, int, bool) {
	n := len(s.steps) - s.idx
	return n, n, true
}

func (s *scriptSource[T]) IsExhausted() bool { return s.idx >= len(s.steps) }
