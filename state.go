package sharedstream

import (
	"context"
	"errors"
	"io"
)

// entry is one cached slot. err carries a non-EOF error produced by the
// source at this position; it is replayed to every cursor like a value.
type entry[T any] struct {
	val T
	err error
}

// state is the cache state machine shared by every clone of a handle.
// The cache is append-only. upstream == nil means finished: the cache is
// static and the source has been released.
//
// state is not synchronized; the handle variants gate access to it.
type state[T any] struct {
	cache    []entry[T]
	upstream Source[T]
	obs      *observer
}

func newState[T any](src Source[T], obs *observer) state[T] {
	return state[T]{upstream: src, obs: obs}
}

// getItem returns the entry at idx, driving the source forward as needed.
// It returns io.EOF when idx lies past the end of a finished cache, or a
// context error when the source blocks until ctx is done — in that case
// nothing was cached and the call can simply be retried.
//
// The loop re-checks the cache after every append so the source is driven
// at most once per produced item, globally, no matter how many cursors
// ever request that index.
func (s *state[T]) getItem(ctx context.Context, idx int) (entry[T], error) {
	if idx < len(s.cache) {
		s.obs.hit()
	} else if s.upstream != nil {
		s.obs.miss()
	}
	for {
		if idx < len(s.cache) {
			return s.cache[idx], nil
		}
		if s.upstream == nil {
			return entry[T]{}, io.EOF
		}
		if err := s.step(ctx); err != nil {
			return entry[T]{}, err
		}
	}
}

// step drives the source exactly one item forward. Produced items and
// source errors are appended to the cache; io.EOF moves the machine to
// finished and releases the source. An error caused by ctx being done is
// returned untouched and leaves the state unchanged.
//
// A done ctx alone is not enough to treat an error as caller-local: the
// source may have produced a genuine error item in the same instant, and
// dropping it would desynchronize every cursor. Only errors that match the
// context's own error are transparent; everything else non-EOF is cached.
func (s *state[T]) step(ctx context.Context) error {
	stepCtx, span := s.obs.startAdvance(ctx, len(s.cache))
	val, err := s.upstream.Next(stepCtx)
	if span != nil {
		span.End()
	}

	switch {
	case err == nil:
		s.cache = append(s.cache, entry[T]{val: val})
		s.obs.polled(len(s.cache))
	case err == io.EOF:
		s.upstream = nil
		s.obs.finished(len(s.cache))
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		// Caller-local: the waiting cursor gave up, the stream itself is
		// untouched.
		return err
	default:
		s.cache = append(s.cache, entry[T]{err: err})
		s.obs.polled(len(s.cache))
	}
	return nil
}

// sizeHint estimates the items remaining for a cursor at idx. While
// running it is the source's own hint plus the cached-but-unread items;
// once finished both bounds are exact.
func (s *state[T]) sizeHint(idx int) (int, int, bool) {
	unread := len(s.cache) - idx
	if s.upstream == nil {
		return unread, unread, true
	}
	lower, upper, bounded := s.upstream.SizeHint()
	if !bounded {
		return lower + unread, 0, false
	}
	return lower + unread, upper + unread, true
}

// exhausted reports whether a cursor at idx can never yield again.
func (s *state[T]) exhausted(idx int) bool {
	return s.upstream == nil && idx >= len(s.cache)
}
