// Package lyra provides the concurrent execution core of the Lyra language
// runtime: a scheduler that multiplexes many lightweight, isolated processes
// onto a small pool of worker goroutines, and a bounded, reference-counted
// channel type used to transfer exclusively-owned values between them.
//
// The core comes with pluggable service layers:
//
//   - scheduler – the worker pool hosting process execution
//   - channel   – bounded FIFO message passing with wait queues
//   - event     – process lifecycle notifications
//   - tracing   – OpenTelemetry spans covering process lifetimes
//
// Lyra's compiler guarantees that a value handed to a channel has exactly one
// reachable owner at that point, so the runtime never locks user data – only
// channel metadata. Embedders typically interact with the core through the
// Runtime façade exposed by this package:
//
//	rt, _ := lyra.New()
//	_ = rt.Start(ctx)
//	p, _ := rt.Spawn(ctx, func(x *process.Proc) error { ... })
//	_ = p.Wait(ctx)
//	rt.Shutdown()
package lyra
