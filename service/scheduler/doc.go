// Package scheduler hosts the workers that execute Lyra processes.  A fixed
// pool of worker goroutines multiplexes an arbitrary number of processes
// (M:N): every worker owns a ready queue, pops the next ready process,
// resumes it, and based on the outcome either drops it (terminated),
// re-enqueues it (fairness quota exhausted) or leaves it parked on the wait
// queue it registered itself on before yielding.
package scheduler
