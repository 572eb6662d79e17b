// Package channel implements the bounded, reference-counted FIFO queue Lyra
// processes use to transfer exclusively-owned values between each other.
//
// A channel is a value handle: Clone increments the reference count and
// yields an equivalent handle to the same buffer; once the last handle is
// released the buffer is drained and every remaining value individually
// released. The compiler guarantees a sent value has no live alias at the
// moment of the send, so the runtime only ever locks channel metadata, never
// the payload.
package channel
