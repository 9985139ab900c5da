package sharedstream

import "errors"

// ErrPoisoned is returned by [AShared.Next] once the shared cache state has
// been poisoned by a panic during a previous advance. The append-only
// invariant can no longer be trusted, so the condition is permanent:
// every subsequent access fails, and [AShared.SizeHint] and
// [AShared.IsExhausted] panic with this error since they have no error
// return.
var ErrPoisoned = errors.New("sharedstream: shared state poisoned by a previous panic")
