/*
Package sharedstream turns a single-consumption pull stream into a cloneable
handle. Every item the underlying source ever produces is cached once, and
any number of independent cursors can replay the sequence without re-running
the source's side effects.

# Overview

A [Source] is driven exactly once per item, globally, no matter how many
handles read from it, in what order, or from which position. Each handle
carries its own cursor; cloning a handle copies the cursor and shares the
cache, so a clone continues from wherever its parent stood.

Two handle variants cover the two sharing regimes:

  - [Shared] — single-goroutine use. No synchronization; reentrant or
    concurrent misuse fails fast instead of corrupting the cache.
  - [AShared] — safe for concurrent use from any number of goroutines.
    Advancing the stream is serialized by a write lock; size and
    termination queries take a read lock.

# Usage

	src := sharedstream.FromSlice([]string{"a", "b", "c"})
	h := sharedstream.Share(src)

	first, _ := sharedstream.Collect(ctx, sharedstream.Take[string](h.Clone(), 1))
	// first == ["a"], source driven once

	all, _ := sharedstream.Collect(ctx, h.Clone())
	// all == ["a", "b", "c"], "a" served from cache

For cross-goroutine fan-out, use [AShare] and hand a clone to each consumer.

# Observability

Handles accept functional options: [WithLogger] (zap), [WithMetrics]
(Prometheus counters for upstream polls, cache hits and finishes),
[WithTracerProvider] (a span per upstream advance) and [WithName] (the
stream label used by all three; defaults to a random UUID).

# Semantics worth knowing

The cache is unbounded and append-only; there is no eviction and no
backward seeking. A non-EOF error returned by the source is cached like an
item and replayed to every cursor at that index; only [io.EOF] terminates
the stream, and only context errors are transparent (never cached, the
call can simply be retried). After a source panic inside [AShared.Next]
the shared state is poisoned and every later call fails with
[ErrPoisoned].
*/
package sharedstream
