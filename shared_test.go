package sharedstream_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/sharedstream"
	"github.com/BaSui01/sharedstream/testutil"
)

func assertHint[T any](t *testing.T, src sharedstream.Source[T], lower, upper int, bounded bool) {
	t.Helper()
	l, u, b := src.SizeHint()
	assert.Equal(t, bounded, b, "bounded")
	assert.Equal(t, lower, l, "lower bound")
	if bounded {
		assert.Equal(t, upper, u, "upper bound")
	}
}

func letters() []string { return []string{"a", "b", "c"} }

// TestShared_FanOutReplaysWithoutReRunningSource walks the canonical
// fan-out scenario: an early partial read, a later full drain, two cursors
// at different offsets, and a step-by-step drain with hint/exhaustion
// checks — all against one wrapped source whose emission log must end up
// with exactly one entry per item.
func TestShared_FanOutReplaysWithoutReRunningSource(t *testing.T) {
	ctx := testutil.TestContext(t)
	rec := testutil.Record(sharedstream.FromSlice(letters()))
	orig := sharedstream.Share[string](rec, sharedstream.WithName("fanout"))

	require.Empty(t, rec.Seen())
	assertHint[string](t, orig, 3, 3, true)
	require.False(t, orig.IsExhausted())

	// One clone takes a single item; only "a" is produced.
	got, err := sharedstream.Collect(ctx, sharedstream.Take[string](orig.Clone(), 1))
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, got)
	assert.Equal(t, []string{"a"}, rec.Seen())
	assertHint[string](t, orig, 3, 3, true)
	assert.False(t, orig.IsExhausted())

	// A full drain produces the rest exactly once.
	got, err = sharedstream.Collect(ctx, orig.Clone())
	require.NoError(t, err)
	assert.Equal(t, letters(), got)
	assert.Equal(t, letters(), rec.Seen())
	assertHint[string](t, orig, 3, 3, true)
	assert.False(t, orig.IsExhausted())

	// Two cursors at different offsets replay from the cache.
	s1 := sharedstream.Skip[string](orig.Clone(), 1)
	assertHint[string](t, s1, 2, 2, true)
	s2 := orig.Clone()

	got1, err := sharedstream.Collect(ctx, s1)
	require.NoError(t, err)
	got2, err := sharedstream.Collect(ctx, s2)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, got1)
	assert.Equal(t, letters(), got2)
	assert.Equal(t, letters(), rec.Seen(), "cache replay must not touch the source")

	// Step-by-step drain: bounds shrink by exactly one per item, the
	// exhaustion flag flips only on the final cached length.
	h := orig.Clone()
	for i, want := range letters() {
		assert.False(t, h.IsExhausted())
		v, err := h.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, v)
		assertHint[string](t, h, 2-i, 2-i, true)
	}
	assert.True(t, h.IsExhausted())

	// Past the end: io.EOF forever, no further source calls.
	_, err = h.Next(ctx)
	assert.Equal(t, io.EOF, err)
	_, err = h.Next(ctx)
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, 4, rec.Calls(), "3 items + 1 end-of-stream probe")

	// The original handle never moved.
	assertHint[string](t, orig, 3, 3, true)
	assert.False(t, orig.IsExhausted())
}

func TestShared_CloneCopiesCursor(t *testing.T) {
	ctx := testutil.TestContext(t)
	h := sharedstream.Share(sharedstream.FromSlice(letters()))

	v, err := h.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, "a", v)

	// The clone starts where its parent stands, then progresses alone.
	c := h.Clone()
	cv, err := c.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", cv)

	hv, err := h.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", hv, "parent cursor unaffected by clone progress")
}

func TestShared_SizeHintWhileRunning(t *testing.T) {
	ctx := testutil.TestContext(t)
	h := sharedstream.Share(sharedstream.FromSlice([]int{1, 2, 3}))

	assertHint[int](t, h, 3, 3, true)
	_, err := h.Next(ctx)
	require.NoError(t, err)
	assertHint[int](t, h, 2, 2, true)
	assert.False(t, h.IsExhausted())

	// A cursor still at zero counts the cached item it has not read.
	behind := sharedstream.Share(sharedstream.FromSlice([]int{1, 2, 3}))
	ahead := behind.Clone()
	_, err = ahead.Next(ctx)
	require.NoError(t, err)
	assertHint[int](t, behind, 3, 3, true) // upstream 2 + 1 cached-unread
}

func TestShared_SizeHintUnboundedSource(t *testing.T) {
	ctx := testutil.TestContext(t)
	ch := make(chan string, 2)
	ch <- "x"
	ch <- "y"

	h := sharedstream.Share(sharedstream.FromChan(ch))
	assertHint[string](t, h, 0, 0, false)
	lag := h.Clone()

	v, err := h.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, "x", v)

	// The lagging clone counts the cached-unread item; still unbounded.
	assertHint[string](t, lag, 1, 0, false)
	assertHint[string](t, h, 0, 0, false)

	close(ch)
	got, err := sharedstream.Collect(ctx, h)
	require.NoError(t, err)
	assert.Equal(t, []string{"y"}, got)
	assert.True(t, h.IsExhausted())
	assertHint[string](t, h, 0, 0, true)

	// Once finished, even the lagging cursor gets exact bounds.
	assertHint[string](t, lag, 2, 2, true)
	assert.False(t, lag.IsExhausted())
}

func TestShared_ErrorItemsAreCachedExactlyOnce(t *testing.T) {
	ctx := testutil.TestContext(t)
	boom := errors.New("boom")
	rec := testutil.Record(testutil.Script(
		testutil.Step[string]{Val: "a"},
		testutil.Step[string]{Err: boom},
		testutil.Step[string]{Val: "b"},
	))
	h := sharedstream.Share[string](rec)

	drain := func(c *sharedstream.Shared[string]) ([]string, []error) {
		var vals []string
		var errs []error
		for {
			v, err := c.Next(ctx)
			if err == io.EOF {
				return vals, errs
			}
			if err != nil {
				errs = append(errs, err)
				continue
			}
			vals = append(vals, v)
		}
	}

	v1, e1 := drain(h.Clone())
	v2, e2 := drain(h.Clone())

	assert.Equal(t, []string{"a", "b"}, v1)
	assert.Equal(t, []string{"a", "b"}, v2)
	require.Len(t, e1, 1)
	require.Len(t, e2, 1)
	assert.ErrorIs(t, e1[0], boom)
	assert.ErrorIs(t, e2[0], boom, "second cursor replays the identical cached error")

	// 4 productive steps (a, boom, b, EOF); the replay added none.
	assert.Equal(t, 4, rec.Calls())
}

func TestShared_ContextErrorIsTransparent(t *testing.T) {
	ch := make(chan int)
	rec := testutil.Record(sharedstream.FromChan(ch))
	h := sharedstream.Share[int](rec)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := h.Next(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// Nothing was cached and the cursor did not move: the retried call
	// yields the first item.
	go func() { ch <- 42; close(ch) }()
	v, err := h.Next(testutil.TestContext(t))
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, []int{42}, rec.Seen())
}

// TestShared_ErrorItemUnderDoneContextIsCached pins the race where the
// source yields a genuine error item at the very moment the caller's
// context is already done. The error is an item, not a cancellation: it
// must land in the cache and replay at its index to every cursor, never
// vanish behind a retry.
func TestShared_ErrorItemUnderDoneContextIsCached(t *testing.T) {
	boom := errors.New("boom")
	emitted := 0
	rec := testutil.Record(sharedstream.FromFunc(func(context.Context) (string, error) {
		// Ignores the caller's context, like a source whose item was
		// already ready when the caller gave up.
		emitted++
		switch emitted {
		case 1:
			return "", boom
		case 2:
			return "b", nil
		default:
			return "", io.EOF
		}
	}))
	h := sharedstream.Share[string](rec)
	lag := h.Clone()

	done, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := h.Next(done)
	require.ErrorIs(t, err, boom, "a produced error item must not be dropped")

	// The cursor moved past the cached error; the live retry yields the
	// next index, not a re-poll of index 0.
	ctx := testutil.TestContext(t)
	v, err := h.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", v)
	assert.Equal(t, 2, rec.Calls())

	// The lagging cursor replays the identical cached error from index 0.
	_, err = lag.Next(ctx)
	assert.ErrorIs(t, err, boom)
	v, err = lag.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", v)
	assert.Equal(t, 2, rec.Calls(), "replay must not touch the source")
}

func TestShared_ReentrantAccessFailsFast(t *testing.T) {
	ctx := testutil.TestContext(t)

	var h *sharedstream.Shared[int]
	src := sharedstream.FromFunc(func(ctx context.Context) (int, error) {
		// A source calling back into its own handle is a programming
		// error and must not corrupt the cache.
		return h.Next(ctx)
	})
	h = sharedstream.Share(src)

	assert.PanicsWithValue(t,
		"sharedstream: reentrant access to Shared stream; use AShare for concurrent access",
		func() { _, _ = h.Next(ctx) },
	)
}

// TestShared_AccessorsAreNotReentrant: the read-only methods share the
// same fail-fast guard, so a source peeking at its own handle mid-Next
// panics instead of observing the state mid-step.
func TestShared_AccessorsAreNotReentrant(t *testing.T) {
	ctx := testutil.TestContext(t)
	const msg = "sharedstream: reentrant access to Shared stream; use AShare for concurrent access"

	var h *sharedstream.Shared[int]
	hintSrc := sharedstream.FromFunc(func(context.Context) (int, error) {
		h.SizeHint()
		return 0, io.EOF
	})
	h = sharedstream.Share(hintSrc)
	assert.PanicsWithValue(t, msg, func() { _, _ = h.Next(ctx) })

	var g *sharedstream.Shared[int]
	exhaustedSrc := sharedstream.FromFunc(func(context.Context) (int, error) {
		g.IsExhausted()
		return 0, io.EOF
	})
	g = sharedstream.Share(exhaustedSrc)
	assert.PanicsWithValue(t, msg, func() { _, _ = g.Next(ctx) })
}

func TestShared_EmptySource(t *testing.T) {
	ctx := testutil.TestContext(t)
	rec := testutil.Record(sharedstream.FromSlice([]string{}))
	h := sharedstream.Share[string](rec)

	assert.False(t, h.IsExhausted())
	_, err := h.Next(ctx)
	assert.Equal(t, io.EOF, err)
	assert.True(t, h.IsExhausted())
	assertHint[string](t, h, 0, 0, true)

	c := h.Clone()
	assert.True(t, c.IsExhausted())
	_, err = c.Next(ctx)
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, 1, rec.Calls())
}
