/*
Package testutil provides shared helpers for sharedstream tests.

  - Context helpers: TestContext / TestContextWithTimeout register a
    Cleanup so no test leaks a timer.
  - Recorder: a Source wrapper that records every item the wrapped source
    actually emits, safely across goroutines. It is the observable for the
    central correctness property: a source wrapped once is driven at most
    once per item no matter how many cursors read from it.
  - Script: a Source that replays a fixed sequence of (value, error)
    steps, for exercising error passthrough and fused behavior.
*/
package testutil
