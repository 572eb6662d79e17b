// Package process defines the unit of execution scheduled by the Lyra
// runtime: an isolated process with its own lifecycle state machine and a
// cooperative suspend/resume protocol.
//
// Each process runs its entry function on a dedicated goroutine, but the
// goroutine only executes while a scheduler worker holds it resumed; at all
// other times it is parked on the resume handshake. The goroutine's stack is
// therefore the suspended-call-stack snapshot of the process, and the entry
// closure's state is its private memory region. Processes never share
// mutable data; values move between them through channels which transfer
// ownership of the value rather than locking it.
package process
