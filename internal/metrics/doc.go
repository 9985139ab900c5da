/*
Package metrics provides Prometheus metrics collection for shared streams.
This package is internal and should not be imported by external projects;
consumers enable it through the root package's WithMetrics option.

Metrics are registered against a caller-supplied Registerer and grouped
under one namespace:

  - upstream_polls_total — items actually pulled from a wrapped source.
  - cache_hits_total / cache_misses_total — cursor reads answered from the
    cache vs. reads that had to advance the source.
  - cache_length — current number of cached items per stream.
  - streams_finished_total — sources drained to completion.
  - handles_cloned_total — cursor clones taken.
  - poisonings_total — fatal panics observed while advancing.

All metrics carry a "stream" label (the WithName value, or a generated
UUID). Registration tolerates AlreadyRegisteredError so several streams can
share one Registerer.
*/
package metrics
