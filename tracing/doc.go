// Package tracing integrates observability back-ends with the Lyra runtime
// core to provide tracing information about process lifecycles.  All
// instrumentation is kept in a separate package so that embedders which do
// not require tracing can exclude it from their build.
package tracing
