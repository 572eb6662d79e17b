// Package clock wraps the runtime's time source so that it can be stubbed in
// tests. It lives under `internal` because callers should treat it as an
// implementation detail of the scheduler and channel packages.
package clock

import "time"

// NowFunc returns current time. Override in tests for determinism.
var NowFunc = time.Now

// Now is a thin wrapper around NowFunc.
func Now() time.Time { return NowFunc() }
